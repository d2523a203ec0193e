// Package config defines the small set of tunables the evaluator and
// CLI need at startup, populated from cobra flags.
package config

// Config is the flat set of engine tunables. Everything else the
// evaluator needs — grounded registry contents, module search paths —
// is assembled by the caller, not read from here.
type Config struct {
	// Workers is the persistent worker pool size for parallel sibling
	// reduction. 0 disables the pool.
	Workers int

	// MemoCapacity mirrors memo.DefaultCapacity. No component reads
	// it: memo tables are created with memo.DefaultCapacity.
	MemoCapacity int

	// ParallelArityThreshold is the minimum argument count above which
	// independent sibling arguments are dispatched to the worker pool
	// instead of evaluated leftmost-first inline.
	ParallelArityThreshold int

	// Merkleize is the default value of the persisted-snapshot
	// merkleization flag.
	Merkleize bool
}

// Default returns the Config used when no flags override it.
func Default() Config {
	return Config{
		Workers:                0,
		MemoCapacity:           4096,
		ParallelArityThreshold: 4,
		Merkleize:              false,
	}
}
