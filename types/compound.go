package types

import (
	"fmt"
	"strings"

	"lumenc/util"
)

// FunctionType represents a function or method signature.  Function types are
// interned by their full signature tuple.
type FunctionType struct {
	// The return type of the function.
	Return Type

	// The parameters of the function, in declaration order.
	Params []Param

	// The type of the implicit self parameter for instance methods; nil for
	// free functions.
	Self Type

	// Whether the function is static.
	Static bool

	// IntrinsicName names the backend intrinsic the function lowers to.  It
	// does not participate in type identity; it only makes code generation
	// easier.
	IntrinsicName string
}

// Param is a single parameter within a function type.
type Param struct {
	// The parameter's name.
	Name string

	// The parameter's type.
	Type Type

	// The parameter's flags.
	Variadic bool
	ByRef    bool
	Keyword  bool
}

func (ft *FunctionType) equals(other Type) bool {
	oft, ok := other.(*FunctionType)
	if !ok {
		return false
	}

	if len(ft.Params) != len(oft.Params) || ft.Static != oft.Static {
		return false
	}

	for i, param := range ft.Params {
		oparam := oft.Params[i]
		if param.Variadic != oparam.Variadic || param.ByRef != oparam.ByRef || param.Keyword != oparam.Keyword {
			return false
		}

		if !Equals(param.Type, oparam.Type) {
			return false
		}
	}

	if (ft.Self == nil) != (oft.Self == nil) {
		return false
	}

	if ft.Self != nil && !Equals(ft.Self, oft.Self) {
		return false
	}

	return Equals(ft.Return, oft.Return)
}

// equalsIgnoringSelf compares two signatures structurally, ignoring the self
// parameter.  This is the comparison used for protocol satisfaction, where a
// more specific self is irrelevant.
func (ft *FunctionType) equalsIgnoringSelf(oft *FunctionType) bool {
	if len(ft.Params) != len(oft.Params) {
		return false
	}

	for i, param := range ft.Params {
		if !Equals(param.Type, oft.Params[i].Type) {
			return false
		}
	}

	return Equals(ft.Return, oft.Return)
}

// SameSignature returns whether two signatures collide for overloading
// purposes: their parameter tuples are structurally equal, ignoring self and
// the return type.
func (ft *FunctionType) SameSignature(oft *FunctionType) bool {
	if len(ft.Params) != len(oft.Params) {
		return false
	}

	for i, param := range ft.Params {
		if !Equals(param.Type, oft.Params[i].Type) {
			return false
		}
	}

	return true
}

func (ft *FunctionType) Repr() string {
	sb := strings.Builder{}

	sb.WriteRune('(')
	for i, param := range ft.Params {
		if i != 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(param.Type.Repr())
		if param.Variadic {
			sb.WriteString("...")
		}
	}
	sb.WriteString(") -> ")
	sb.WriteString(ft.Return.Repr())

	return sb.String()
}

// ParamTypes returns the tuple of the function's parameter types.
func (ft *FunctionType) ParamTypes() []Type {
	return util.Map(ft.Params, func(p Param) Type { return p.Type })
}

/* -------------------------------------------------------------------------- */

// TupleType represents an ordered tuple of member types.
type TupleType struct {
	// The member types of the tuple.
	Members []Type
}

func (tt *TupleType) equals(other Type) bool {
	if ott, ok := other.(*TupleType); ok {
		if len(tt.Members) != len(ott.Members) {
			return false
		}

		for i, member := range tt.Members {
			if !Equals(member, ott.Members[i]) {
				return false
			}
		}

		return true
	}

	return false
}

func (tt *TupleType) Repr() string {
	sb := strings.Builder{}

	sb.WriteRune('(')
	for i, member := range tt.Members {
		if i != 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(member.Repr())
	}
	sb.WriteRune(')')

	return sb.String()
}

/* -------------------------------------------------------------------------- */

// AddressType represents a machine address of a pointee type.
type AddressType struct {
	// The pointee type.
	Pointee Type
}

func (at *AddressType) equals(other Type) bool {
	if oat, ok := other.(*AddressType); ok {
		return Equals(at.Pointee, oat.Pointee)
	}

	return false
}

func (at *AddressType) Repr() string {
	return at.Pointee.Repr() + "^"
}

/* -------------------------------------------------------------------------- */

// NativeArrayType represents a fixed-length native array.
type NativeArrayType struct {
	// The element type.
	Elem Type

	// The fixed length of the array.
	Length int
}

func (nat *NativeArrayType) equals(other Type) bool {
	if onat, ok := other.(*NativeArrayType); ok {
		return nat.Length == onat.Length && Equals(nat.Elem, onat.Elem)
	}

	return false
}

func (nat *NativeArrayType) Repr() string {
	return fmt.Sprintf("NativeArray[%s, %d]", nat.Elem.Repr(), nat.Length)
}

/* -------------------------------------------------------------------------- */

// TypeLiteralType is the type of an expression that denotes a type: eg. the
// type of `Int32` when used as a value.
type TypeLiteralType struct {
	// The type the literal refers to.
	Referent Type
}

func (tlt *TypeLiteralType) equals(other Type) bool {
	if otlt, ok := other.(*TypeLiteralType); ok {
		return Equals(tlt.Referent, otlt.Referent)
	}

	return false
}

func (tlt *TypeLiteralType) Repr() string {
	return "typeof(" + tlt.Referent.Repr() + ")"
}

/* -------------------------------------------------------------------------- */

// AliasType represents a declared type alias.  The target is resolved lazily:
// the alias is created when its definition is first seen and its target filled
// in when the aliased expression is analyzed.
type AliasType struct {
	// The defining definition.
	defn TypeDefn

	// The resolved target type.  Nil until resolution.
	target Type
}

func (at *AliasType) equals(other Type) bool {
	// Equals dealiases both sides first, so reaching here means the alias is
	// still unresolved: it can only equal itself.
	if oat, ok := other.(*AliasType); ok {
		return at.defn == oat.defn
	}

	return false
}

func (at *AliasType) Repr() string {
	return at.defn.QualifiedName()
}

// Defn returns the alias's defining definition.
func (at *AliasType) Defn() TypeDefn {
	return at.defn
}

// Target returns the alias's resolved target, or nil before resolution.
func (at *AliasType) Target() Type {
	return at.target
}

// Resolve records the alias's target type.
func (at *AliasType) Resolve(target Type) {
	at.target = target
}

/* -------------------------------------------------------------------------- */

// EnumType represents an enumerated type with a base integer type.
type EnumType struct {
	// The owning definition.
	defn TypeDefn

	// The base integer type of the enum.
	Base *PrimitiveType

	// The declared value names in declaration order.
	Values []string
}

func (et *EnumType) equals(other Type) bool {
	if oet, ok := other.(*EnumType); ok {
		return et.defn == oet.defn
	}

	return false
}

func (et *EnumType) Repr() string {
	return et.defn.QualifiedName()
}

// Defn returns the enum's owning definition.
func (et *EnumType) Defn() TypeDefn {
	return et.defn
}

// DerefEnum returns the base type of an enum type and the identity of any
// other type.
func DerefEnum(typ Type) Type {
	if et, ok := Dealias(typ).(*EnumType); ok {
		return et.Base
	}

	return typ
}
