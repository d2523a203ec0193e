package term

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tag bytes for the canonical encoding. Expr uses explicit open/close
// markers rather than a length prefix so that the encoding of a
// leading sub-sequence of an Expression's items is always a literal
// byte-prefix of the encoding of the full Expression — this is what
// lets the type subindex restrict the FactIndex trie to the prefix of
// "(: name" and match every "(: name <type>)" fact.
const (
	tagSymbol byte = iota + 1
	tagVariable
	tagInt
	tagFloat
	tagBool
	tagString
	tagExprOpen
	tagExprClose
	tagNil
	tagUnit
	tagError
	tagType
	tagHandle
	tagEmpty
	tagWildcard
)

// Encode produces the canonical byte encoding of a ground Term: the
// single encoding shared by the FactIndex, the type subindex, and the
// persisted snapshot format. It is deterministic and
// injective for ground terms. Variables are encodable (callers may
// need to encode a pattern for diagnostics) but are never valid
// FactIndex keys — Insert/Lookup callers must reject them before
// calling Encode if they need that guarantee; Encode itself does not
// enforce it, since patterns are occasionally encoded for other
// purposes (e.g. logging).
func Encode(t Term) []byte {
	var buf []byte
	buf = appendEncoded(buf, t)
	return buf
}

// EncodePrefix encodes an open Expression whose items are the given
// sequence of Terms, but omits the matching tagExprClose terminator.
// The result is a valid byte-prefix for restricting a trie to every
// complete Expression that begins with exactly these items — this is
// how the type subindex is built from `(: name)` to match every
// `(: name <type>)` fact.
func EncodePrefix(items []Term) []byte {
	buf := []byte{tagExprOpen}
	for _, it := range items {
		buf = appendEncoded(buf, it)
	}
	return buf
}

func appendEncoded(buf []byte, t Term) []byte {
	switch v := t.(type) {
	case Symbol:
		buf = append(buf, tagSymbol)
		return appendLenPrefixed(buf, []byte(v))
	case Variable:
		buf = append(buf, tagVariable)
		return appendLenPrefixed(buf, []byte(v))
	case Wildcard:
		return append(buf, tagWildcard)
	case Int:
		buf = append(buf, tagInt)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v))
		return append(buf, b[:]...)
	case Float:
		buf = append(buf, tagFloat)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(float64(v)))
		return append(buf, b[:]...)
	case Bool:
		buf = append(buf, tagBool)
		if v {
			return append(buf, 1)
		}
		return append(buf, 0)
	case String:
		buf = append(buf, tagString)
		return appendLenPrefixed(buf, []byte(v))
	case Expr:
		buf = append(buf, tagExprOpen)
		for _, it := range v.Items {
			buf = appendEncoded(buf, it)
		}
		return append(buf, tagExprClose)
	case Nil:
		return append(buf, tagNil)
	case Unit:
		return append(buf, tagUnit)
	case Error:
		buf = append(buf, tagError)
		buf = appendLenPrefixed(buf, []byte(v.Message))
		return appendEncoded(buf, v.Detail)
	case TypeTag:
		buf = append(buf, tagType)
		return appendEncoded(buf, v.Inner)
	case SpaceHandle:
		return appendHandle(buf, v.Ref)
	case StateCell:
		return appendHandle(buf, v.Ref)
	case MemoHandle:
		return appendHandle(buf, v.Ref)
	case Empty:
		return append(buf, tagEmpty)
	default:
		panic(fmt.Sprintf("term: unencodable Term shape %T", t))
	}
}

func appendHandle(buf []byte, h Handle) []byte {
	buf = append(buf, tagHandle, byte(h.HandleKind()))
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h.HandleID())
	return append(buf, b[:]...)
}

func appendLenPrefixed(buf []byte, data []byte) []byte {
	var lb [4]byte
	binary.BigEndian.PutUint32(lb[:], uint32(len(data)))
	buf = append(buf, lb[:]...)
	return append(buf, data...)
}
