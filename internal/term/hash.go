package term

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Hash is the structural hash used to key a MemoTable entry. It is derived from the same
// canonical encoding the FactIndex uses, so two structurally equal
// terms always hash identically regardless of which component
// computed the hash.
type Hash [32]byte

var hasherPool = sync.Pool{
	New: func() any {
		h, err := blake2b.New256(nil)
		if err != nil {
			// blake2b.New256 with a nil key only fails on an invalid
			// key size, which nil never triggers.
			panic(err)
		}
		return h
	},
}

// StructuralHash hashes t's canonical encoding with blake2b-256.
func StructuralHash(t Term) Hash {
	h := hasherPool.Get().(interface {
		Reset()
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	})
	defer hasherPool.Put(h)
	h.Reset()
	_, _ = h.Write(Encode(t))
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Uint64 folds a Hash down to a uint64, for use as a plain map key
// where the full 32 bytes aren't needed (e.g. a fast pre-check before
// a full Hash comparison).
func (h Hash) Uint64() uint64 {
	return binary.BigEndian.Uint64(h[:8])
}
