package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/F1R3FLY-io/mettatron/internal/config"
)

func TestDefaultDisablesWorkerPool(t *testing.T) {
	c := config.Default()
	assert.Equal(t, 0, c.Workers)
}

func TestDefaultMatchesMemoAndArityDefaultsUsedElsewhere(t *testing.T) {
	c := config.Default()
	assert.Equal(t, 4096, c.MemoCapacity)
	assert.Equal(t, 4, c.ParallelArityThreshold)
	assert.False(t, c.Merkleize)
}
