package types

// IsSubtype returns whether sub is a subtype of super.  Every type is a
// subtype of itself.  Primitive widening, composite inheritance, protocol
// satisfaction, and union inclusion are the only other sources of subtyping.
func IsSubtype(sub, super Type) bool {
	sub = Dealias(sub)
	super = Dealias(super)

	if Equals(sub, super) {
		return true
	}

	switch sv := super.(type) {
	case *PrimitiveType:
		if spt, ok := sub.(*PrimitiveType); ok {
			return primitiveMoreGeneral(spt.Kind, sv.Kind)
		}

		return false
	case *CompositeType:
		if sv.Kind == KindProtocol {
			return sv.SupportedBy(sub)
		}

		if sct, ok := sub.(*CompositeType); ok {
			return compositeHasAncestor(sct, sv)
		}

		if _, ok := sub.(*PrimitiveType); ok && IsNull(sub) {
			// Null is a subtype of every reference type.
			return sv.Kind == KindClass || sv.Kind == KindInterface
		}

		return false
	case *UnionType:
		// A type is a subtype of a union that includes it.
		return sv.Includes(sub)
	case *AddressType:
		if sat, ok := sub.(*AddressType); ok {
			return Equals(sat.Pointee, sv.Pointee)
		}

		return IsNull(sub)
	default:
		return false
	}
}

// primitiveMoreGeneral returns whether the primitive kind general can
// represent every value of the primitive kind specific without loss.
func primitiveMoreGeneral(specific, general PrimKind) bool {
	type widening struct {
		from, to PrimKind
	}

	// Direct widenings; the relation is the transitive closure.
	widenings := [...]widening{
		{PrimInt8, PrimInt16},
		{PrimInt16, PrimInt32},
		{PrimInt32, PrimInt64},
		{PrimUint8, PrimUint16},
		{PrimUint8, PrimInt16},
		{PrimUint16, PrimUint32},
		{PrimUint16, PrimInt32},
		{PrimUint32, PrimUint64},
		{PrimUint32, PrimInt64},
		{PrimChar, PrimUint32},
		{PrimFloat, PrimDouble},
		{PrimInt32, PrimDouble},
	}

	if specific == general {
		return true
	}

	for _, w := range widenings {
		if w.from == specific && (w.to == general || primitiveMoreGeneral(w.to, general)) {
			return true
		}
	}

	return false
}

// compositeHasAncestor returns whether ancestor appears anywhere in sub's
// transitive base set.
func compositeHasAncestor(sub, ancestor *CompositeType) bool {
	for _, base := range sub.Bases {
		if base.equals(ancestor) || compositeHasAncestor(base, ancestor) {
			return true
		}
	}

	return false
}

/* -------------------------------------------------------------------------- */

// CommonBase returns the most specific type that both a and b are subtypes
// of, or nil if there is none.  Used when folding lower-bound constraints.
func CommonBase(a, b Type) Type {
	a = Dealias(a)
	b = Dealias(b)

	if IsSubtype(a, b) {
		return b
	}

	if IsSubtype(b, a) {
		return a
	}

	act, aOk := a.(*CompositeType)
	bct, bOk := b.(*CompositeType)
	if aOk && bOk {
		// Walk a's primary-base chain looking for the first ancestor of b.
		for super := act.Super(); super != nil; super = super.Super() {
			if compositeHasAncestor(bct, super) || super.equals(bct) {
				return super
			}
		}

		return nil
	}

	// For primitives, fall back to bidirectional conversion preference.
	return findCommonConvertible(a, b)
}

// findCommonConvertible picks whichever of the two types the other converts
// to at the higher rank, or nil if neither direction is better.
func findCommonConvertible(a, b Type) Type {
	toA, _ := Convert(b, a, 0)
	toB, _ := Convert(a, b, 0)

	if toA > toB {
		return a
	} else if toB > toA {
		return b
	}

	return nil
}

/* -------------------------------------------------------------------------- */

// typeOrderRank assigns each type class its position in the fixed lexical
// ordering used to canonicalise union member lists: composites and compounds
// order before primitives, and the unsized sentinels order last of all.
func typeOrderRank(typ Type) int {
	switch v := typ.(type) {
	case *CompositeType:
		return 0
	case *EnumType:
		return 1
	case *TupleType:
		return 2
	case *FunctionType:
		return 3
	case *AddressType:
		return 4
	case *NativeArrayType:
		return 5
	case *TypeLiteralType:
		return 6
	case *UnionType:
		return 7
	case *PrimitiveType:
		switch v.Kind {
		case PrimVoid:
			return 10
		case PrimNull:
			return 11
		case PrimBad:
			return 12
		default:
			return 8
		}
	default:
		return 9
	}
}

// LexicalLess is the fixed lexical ordering over types: first by class rank,
// then by representative string.  It is total over dealiased singular types.
func LexicalLess(a, b Type) bool {
	ra, rb := typeOrderRank(a), typeOrderRank(b)
	if ra != rb {
		return ra < rb
	}

	return a.Repr() < b.Repr()
}
