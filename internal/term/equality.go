package term

// StructuralEqual is strict structural equality: every Term shape is
// compared by kind and payload, with no special cases. This is the
// equality the Unifier and the trie-key encoding rely on.
func StructuralEqual(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Symbol:
		return av == b.(Symbol)
	case Variable:
		return av == b.(Variable)
	case Wildcard:
		return true
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case Bool:
		return av == b.(Bool)
	case String:
		return av == b.(String)
	case Expr:
		bv := b.(Expr)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !StructuralEqual(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case Nil:
		return true
	case Unit:
		return true
	case Error:
		bv := b.(Error)
		return av.Message == bv.Message && StructuralEqual(av.Detail, bv.Detail)
	case TypeTag:
		bv := b.(TypeTag)
		return StructuralEqual(av.Inner, bv.Inner)
	case SpaceHandle:
		return av.Ref.HandleID() == b.(SpaceHandle).Ref.HandleID()
	case StateCell:
		return av.Ref.HandleID() == b.(StateCell).Ref.HandleID()
	case MemoHandle:
		return av.Ref.HandleID() == b.(MemoHandle).Ref.HandleID()
	case Empty:
		return true
	default:
		return false
	}
}

// isHEUnit reports whether t is one of the three terms the `==`
// operator treats as equivalent: Nil, Unit, or an empty Expression.
// This is the single audited site for that HE-compatibility rule.
func isHEUnit(t Term) bool {
	switch v := t.(type) {
	case Nil:
		return true
	case Unit:
		return true
	case Expr:
		return len(v.Items) == 0
	default:
		return false
	}
}

// HEEqual is the equality predicate backing the grounded `==`/`!=`
// operators: structural equality, except Nil, Unit, and an empty
// Expression are all considered equal to one another.
func HEEqual(a, b Term) bool {
	if isHEUnit(a) && isHEUnit(b) {
		return true
	}
	return StructuralEqual(a, b)
}
