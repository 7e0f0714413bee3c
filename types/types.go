package types

// Type represents a Lumen data type.  All types are constructed and uniqued by
// the registry: two structurally equal types constructed through the same
// registry are the same handle, so handle equality implies semantic equality
// once aliases and assignments have been dereferenced.
type Type interface {
	// Returns whether this type is equal to the other type.  This does not
	// account for inner types/type unwrapping: it should only be called within
	// methods of type instances.
	equals(other Type) bool

	// Returns the representative string for this type.
	Repr() string
}

// Equals returns whether two types are equal.  Aliases and solved type
// assignments are dereferenced before comparison.
func Equals(a, b Type) bool {
	return Dealias(a).equals(Dealias(b))
}

// Dealias returns the "inner" type of typ: it follows alias targets and the
// solved values of type assignments until it reaches a concrete type.  For
// most types this is the identity function.
func Dealias(typ Type) Type {
	for {
		switch v := typ.(type) {
		case *AliasType:
			if v.target == nil {
				return v
			}

			typ = v.target
		case *TypeAssignment:
			if v.Value == nil {
				return v
			}

			typ = v.Value
		case *TypeVariable:
			if v.Value == nil {
				return v
			}

			typ = v.Value
		default:
			return typ
		}
	}
}

/* -------------------------------------------------------------------------- */

// IsVoid returns whether the given type is the void type.
func IsVoid(typ Type) bool {
	pt, ok := Dealias(typ).(*PrimitiveType)
	return ok && pt.Kind == PrimVoid
}

// IsNull returns whether the given type is the null type.
func IsNull(typ Type) bool {
	pt, ok := Dealias(typ).(*PrimitiveType)
	return ok && pt.Kind == PrimNull
}

// IsBad returns whether the given type is the error-recovery sentinel type.
func IsBad(typ Type) bool {
	pt, ok := Dealias(typ).(*PrimitiveType)
	return ok && pt.Kind == PrimBad
}

// IsReferenceType returns whether values of the given type are represented as
// references to heap objects: classes and interfaces, null, and function
// values.
func IsReferenceType(typ Type) bool {
	switch v := Dealias(typ).(type) {
	case *PrimitiveType:
		return v.Kind == PrimNull
	case *CompositeType:
		return v.Kind == KindClass || v.Kind == KindInterface
	case *FunctionType:
		return true
	case *UnionType:
		// A union of references only is itself a bare reference.
		return v.NumValueTypes == 0 && !v.HasVoid
	default:
		return false
	}
}

// IsSingular returns whether the given type is fully monomorphised: no
// unbound type variables remain anywhere within it.
func IsSingular(typ Type) bool {
	switch v := Dealias(typ).(type) {
	case *TypeVariable:
		return false
	case *TypeAssignment:
		return v.Value != nil && IsSingular(v.Value)
	case *CompositeType:
		return v.defn == nil || v.defn.IsSingular()
	case *FunctionType:
		for _, param := range v.Params {
			if !IsSingular(param.Type) {
				return false
			}
		}

		if v.Self != nil && !IsSingular(v.Self) {
			return false
		}

		return IsSingular(v.Return)
	case *TupleType:
		for _, member := range v.Members {
			if !IsSingular(member) {
				return false
			}
		}

		return true
	case *UnionType:
		for _, member := range v.Members {
			if !IsSingular(member) {
				return false
			}
		}

		return true
	case *AddressType:
		return IsSingular(v.Pointee)
	case *NativeArrayType:
		return IsSingular(v.Elem)
	case *TypeLiteralType:
		return IsSingular(v.Referent)
	default:
		return true
	}
}
