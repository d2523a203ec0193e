// Package snapshot implements the persisted-state metadata record:
// version, creation time, term count, path count, and a merkleization
// flag. The byte layout of the trie snapshot itself is a delegated
// concern; this package only covers the metadata record that
// accompanies it.
package snapshot

import (
	"crypto/sha256"
	"encoding/json"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/F1R3FLY-io/mettatron/internal/mettaerr"
)

// FormatVersion identifies the metadata record's wire shape.
const FormatVersion uint16 = 1

// Metadata is the explicit record accompanying a persisted trie
// snapshot.
type Metadata struct {
	Version      uint16 `cbor:"1,keyasint" json:"version"`
	CreatedAtUTC int64  `cbor:"2,keyasint" json:"created_at_utc"`
	TermCount    uint64 `cbor:"3,keyasint" json:"term_count"`
	PathCount    uint64 `cbor:"4,keyasint" json:"path_count"`
	Merkleized   bool   `cbor:"5,keyasint" json:"merkleized"`
}

// schemaDoc is the JSON Schema a Metadata record must satisfy before
// being trusted.
const schemaDoc = `{
  "type": "object",
  "required": ["version", "created_at_utc", "term_count", "path_count", "merkleized"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "created_at_utc": {"type": "integer", "minimum": 0},
    "term_count": {"type": "integer", "minimum": 0},
    "path_count": {"type": "integer", "minimum": 0},
    "merkleized": {"type": "boolean"}
  }
}`

var compiledSchema *jsonschema.Schema

func init() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("metadata.json", strings.NewReader(schemaDoc)); err != nil {
		panic(err)
	}
	compiledSchema = c.MustCompile("metadata.json")
}

// encOpts produces a deterministic byte encoding: same Metadata value
// always encodes to the same bytes, which both the snapshot's on-disk
// record and its hash depend on.
var encOpts = cbor.CanonicalEncOptions()

// Encode serializes m with canonical CBOR (deterministic map key
// ordering), distinct from term.Encode's tag-byte format, which is
// reserved for FactIndex keys rather than this metadata record
//.
func Encode(m Metadata) ([]byte, error) {
	mode, err := encOpts.EncMode()
	if err != nil {
		return nil, mettaerr.Wrap(mettaerr.ErrSnapshot, "building CBOR encoder", err)
	}
	b, err := mode.Marshal(m)
	if err != nil {
		return nil, mettaerr.Wrap(mettaerr.ErrSnapshot, "encoding snapshot metadata", err)
	}
	return b, nil
}

// Decode parses a previously Encoded Metadata record.
func Decode(b []byte) (Metadata, error) {
	var m Metadata
	if err := cbor.Unmarshal(b, &m); err != nil {
		return Metadata{}, mettaerr.Wrap(mettaerr.ErrSnapshot, "decoding snapshot metadata", err)
	}
	return m, nil
}

// Hash returns the sha256 digest of m's canonical encoding — sha256
// here, rather than the blake2b used for term.StructuralHash, since
// this hash identifies an on-disk artifact rather than a memoization
// key.
func Hash(m Metadata) ([32]byte, error) {
	b, err := Encode(m)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

// Validate checks m against the metadata JSON Schema.
func Validate(m Metadata) error {
	asJSON, err := json.Marshal(m)
	if err != nil {
		return mettaerr.Wrap(mettaerr.ErrSnapshot, "marshaling metadata for validation", err)
	}
	var asAny any
	if err := json.Unmarshal(asJSON, &asAny); err != nil {
		return mettaerr.Wrap(mettaerr.ErrSnapshot, "unmarshaling metadata for validation", err)
	}
	if err := compiledSchema.Validate(asAny); err != nil {
		return mettaerr.Wrap(mettaerr.ErrSnapshot, "metadata failed schema validation", err)
	}
	return nil
}
