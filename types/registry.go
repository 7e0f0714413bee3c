package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Registry constructs and uniques all type values for one compilation.  Every
// constructor canonicalises its inputs and returns an interned handle:
// repeated calls with structurally-equal inputs return the same handle.
// Construction has no side effects beyond interning.
//
// The registry is owned by the compilation context and passed explicitly to
// the analyses that need it; it is never stored in a process global.
type Registry struct {
	composites map[TypeDefn]*CompositeType
	enums      map[TypeDefn]*EnumType
	aliases    map[TypeDefn]*AliasType
	functions  map[string]*FunctionType
	tuples     map[string]*TupleType
	unions     map[string]*UnionType
	addresses  map[string]*AddressType
	arrays     map[string]*NativeArrayType
	typeLits   map[string]*TypeLiteralType

	// The counter used to number type variables and assignments.
	nextVarID int
}

// NewRegistry creates a new, empty type registry.
func NewRegistry() *Registry {
	return &Registry{
		composites: make(map[TypeDefn]*CompositeType),
		enums:      make(map[TypeDefn]*EnumType),
		aliases:    make(map[TypeDefn]*AliasType),
		functions:  make(map[string]*FunctionType),
		tuples:     make(map[string]*TupleType),
		unions:     make(map[string]*UnionType),
		addresses:  make(map[string]*AddressType),
		arrays:     make(map[string]*NativeArrayType),
		typeLits:   make(map[string]*TypeLiteralType),
	}
}

// Primitive returns the singleton primitive type of the given kind.
func (r *Registry) Primitive(kind PrimKind) *PrimitiveType {
	return primitives[kind]
}

// Composite returns the composite type owned by the given definition,
// creating it on first request.  Composite identity is definition identity.
func (r *Registry) Composite(kind CompositeKind, defn TypeDefn) *CompositeType {
	if ct, ok := r.composites[defn]; ok {
		return ct
	}

	ct := &CompositeType{Kind: kind, defn: defn}
	r.composites[defn] = ct
	return ct
}

// Enum returns the enum type owned by the given definition, creating it on
// first request.
func (r *Registry) Enum(defn TypeDefn, base *PrimitiveType, values []string) *EnumType {
	if et, ok := r.enums[defn]; ok {
		return et
	}

	et := &EnumType{defn: defn, Base: base, Values: values}
	r.enums[defn] = et
	return et
}

// Alias returns the alias type owned by the given defining symbol, creating
// it unresolved on first request.
func (r *Registry) Alias(defn TypeDefn) *AliasType {
	if at, ok := r.aliases[defn]; ok {
		return at
	}

	at := &AliasType{defn: defn}
	r.aliases[defn] = at
	return at
}

// Function interns a function type by its signature tuple.
func (r *Registry) Function(ret Type, params []Param, self Type, static bool) *FunctionType {
	ft := &FunctionType{Return: ret, Params: params, Self: self, Static: static}

	key := internKey(ft)
	if existing, ok := r.functions[key]; ok {
		return existing
	}

	r.functions[key] = ft
	return ft
}

// Tuple interns a tuple type by its member sequence.
func (r *Registry) Tuple(members []Type) *TupleType {
	tt := &TupleType{Members: members}

	key := internKey(tt)
	if existing, ok := r.tuples[key]; ok {
		return existing
	}

	r.tuples[key] = tt
	return tt
}

// Union interns a union type by its canonical member set.  Canonicalisation
// dealiases the members, drops duplicates and members subsumed by other
// members, and sorts by the fixed lexical ordering.  A union that
// canonicalises to a single member is that member.
func (r *Registry) Union(members []Type) Type {
	canonical := canonicaliseUnion(members)

	if len(canonical) == 1 {
		return canonical[0]
	}

	ut := newUnionType(canonical)

	key := internKey(ut)
	if existing, ok := r.unions[key]; ok {
		return existing
	}

	r.unions[key] = ut
	return ut
}

// Address interns an address type by its pointee.
func (r *Registry) Address(pointee Type) *AddressType {
	key := internKey(pointee)
	if existing, ok := r.addresses[key]; ok {
		return existing
	}

	at := &AddressType{Pointee: pointee}
	r.addresses[key] = at
	return at
}

// NativeArray interns a native array type by its element type and length.
func (r *Registry) NativeArray(elem Type, length int) *NativeArrayType {
	key := internKey(elem) + ";" + strconv.Itoa(length)
	if existing, ok := r.arrays[key]; ok {
		return existing
	}

	nat := &NativeArrayType{Elem: elem, Length: length}
	r.arrays[key] = nat
	return nat
}

// TypeLiteral interns a type-literal type by its referent.
func (r *Registry) TypeLiteral(referent Type) *TypeLiteralType {
	key := internKey(referent)
	if existing, ok := r.typeLits[key]; ok {
		return existing
	}

	tlt := &TypeLiteralType{Referent: referent}
	r.typeLits[key] = tlt
	return tlt
}

// TypeVar creates a fresh type variable.  Type variables are never interned:
// each has its own identity.
func (r *Registry) TypeVar(name string, upperBound Type) *TypeVariable {
	r.nextVarID++
	return &TypeVariable{ID: r.nextVarID, Name: name, UpperBound: upperBound}
}

// TypeAssign creates a fresh assignment of the given variable in the given
// inference scope.  Assignments are never interned.
func (r *Registry) TypeAssign(target *TypeVariable, scope interface{}) *TypeAssignment {
	r.nextVarID++
	return &TypeAssignment{Target: target, Scope: scope, SequenceNum: r.nextVarID}
}

/* -------------------------------------------------------------------------- */

// internKey computes the string the registry uses to unique a type.  The key
// follows the linkage-name form but distinguishes unsolved type variables and
// assignments by identity, since those are never structurally equal to
// anything but themselves.
func internKey(typ Type) string {
	sb := strings.Builder{}
	writeInternKey(&sb, typ)
	return sb.String()
}

func writeInternKey(sb *strings.Builder, typ Type) {
	switch v := Dealias(typ).(type) {
	case *TypeVariable:
		fmt.Fprintf(sb, "?v%p", v)
	case *TypeAssignment:
		fmt.Fprintf(sb, "?a%p", v)
	case *FunctionType:
		sb.WriteString("fn")
		if v.Static {
			sb.WriteRune('!')
		}

		if v.Self != nil {
			sb.WriteRune(':')
			writeInternKey(sb, v.Self)
		}

		sb.WriteRune('(')
		for i, param := range v.Params {
			if i != 0 {
				sb.WriteRune(',')
			}

			writeInternKey(sb, param.Type)
			if param.Variadic {
				sb.WriteString("...")
			}
			if param.ByRef {
				sb.WriteRune('&')
			}
			if param.Keyword {
				sb.WriteRune('=')
			}
		}
		sb.WriteRune(')')

		sb.WriteString("->")
		writeInternKey(sb, v.Return)
	case *TupleType:
		sb.WriteRune('(')
		for i, member := range v.Members {
			if i != 0 {
				sb.WriteRune(',')
			}

			writeInternKey(sb, member)
		}
		sb.WriteRune(')')
	case *UnionType:
		for i, member := range v.Members {
			if i != 0 {
				sb.WriteRune('|')
			}

			writeInternKey(sb, member)
		}
	case *AddressType:
		writeInternKey(sb, v.Pointee)
		sb.WriteRune('^')
	case *NativeArrayType:
		writeInternKey(sb, v.Elem)
		fmt.Fprintf(sb, "[%d]", v.Length)
	case *TypeLiteralType:
		sb.WriteString("typeof(")
		writeInternKey(sb, v.Referent)
		sb.WriteRune(')')
	case *CompositeType:
		sb.WriteString(v.Defn().DefnLinkageName())
	case *EnumType:
		sb.WriteString(v.Defn().DefnLinkageName())
	case *AliasType:
		// An unresolved alias keys by its defining symbol.
		sb.WriteString(v.Defn().DefnLinkageName())
	default:
		sb.WriteString(v.Repr())
	}
}
