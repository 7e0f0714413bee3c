package types

// PrimKind identifies a primitive type.  This must be one of the enumerated
// primitive kinds below.
type PrimKind int

// Enumeration of primitive kinds.  When union members are sorted, Void, Null,
// and Bad are placed after every sized type; the other primitives sort by
// their representative names, not by this order.
const (
	PrimBool = PrimKind(iota)
	PrimChar
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimFloat
	PrimDouble
	PrimUnsizedInt
	PrimVoid
	PrimNull
	PrimBad
)

// PrimitiveType represents a primitive type.  There is exactly one instance
// per kind: the registry always returns the singletons below.
type PrimitiveType struct {
	// The kind of the primitive.
	Kind PrimKind
}

// Singleton instances of every primitive type.
var primitives = [...]*PrimitiveType{
	PrimBool:       {Kind: PrimBool},
	PrimChar:       {Kind: PrimChar},
	PrimInt8:       {Kind: PrimInt8},
	PrimInt16:      {Kind: PrimInt16},
	PrimInt32:      {Kind: PrimInt32},
	PrimInt64:      {Kind: PrimInt64},
	PrimUint8:      {Kind: PrimUint8},
	PrimUint16:     {Kind: PrimUint16},
	PrimUint32:     {Kind: PrimUint32},
	PrimUint64:     {Kind: PrimUint64},
	PrimFloat:      {Kind: PrimFloat},
	PrimDouble:     {Kind: PrimDouble},
	PrimUnsizedInt: {Kind: PrimUnsizedInt},
	PrimVoid:       {Kind: PrimVoid},
	PrimNull:       {Kind: PrimNull},
	PrimBad:        {Kind: PrimBad},
}

// Convenient named handles for the common primitives.
var (
	BoolType       = primitives[PrimBool]
	CharType       = primitives[PrimChar]
	Int8Type       = primitives[PrimInt8]
	Int16Type      = primitives[PrimInt16]
	Int32Type      = primitives[PrimInt32]
	Int64Type      = primitives[PrimInt64]
	Uint8Type      = primitives[PrimUint8]
	Uint16Type     = primitives[PrimUint16]
	Uint32Type     = primitives[PrimUint32]
	Uint64Type     = primitives[PrimUint64]
	FloatType      = primitives[PrimFloat]
	DoubleType     = primitives[PrimDouble]
	UnsizedIntType = primitives[PrimUnsizedInt]
	VoidType       = primitives[PrimVoid]
	NullType       = primitives[PrimNull]
	BadType        = primitives[PrimBad]
)

func (pt *PrimitiveType) equals(other Type) bool {
	if opt, ok := other.(*PrimitiveType); ok {
		return pt.Kind == opt.Kind
	}

	return false
}

func (pt *PrimitiveType) Repr() string {
	switch pt.Kind {
	case PrimBool:
		return "bool"
	case PrimChar:
		return "char"
	case PrimInt8:
		return "int8"
	case PrimInt16:
		return "int16"
	case PrimInt32:
		return "int32"
	case PrimInt64:
		return "int64"
	case PrimUint8:
		return "uint8"
	case PrimUint16:
		return "uint16"
	case PrimUint32:
		return "uint32"
	case PrimUint64:
		return "uint64"
	case PrimFloat:
		return "float"
	case PrimDouble:
		return "double"
	case PrimUnsizedInt:
		return "{integer}"
	case PrimVoid:
		return "void"
	case PrimNull:
		return "null"
	default:
		return "<error>"
	}
}

// NumBits returns the usable width of the primitive in bits.  Void, null and
// the sentinel types have no width.
func (pt *PrimitiveType) NumBits() int {
	switch pt.Kind {
	case PrimBool:
		return 1
	case PrimChar:
		return 32
	case PrimInt8, PrimUint8:
		return 8
	case PrimInt16, PrimUint16:
		return 16
	case PrimInt32, PrimUint32, PrimFloat:
		return 32
	case PrimInt64, PrimUint64, PrimDouble, PrimUnsizedInt:
		return 64
	default:
		return 0
	}
}

// IsIntegral returns whether this primitive is an integral type.
func (pt *PrimitiveType) IsIntegral() bool {
	switch pt.Kind {
	case PrimInt8, PrimInt16, PrimInt32, PrimInt64,
		PrimUint8, PrimUint16, PrimUint32, PrimUint64,
		PrimChar, PrimUnsizedInt:
		return true
	default:
		return false
	}
}

// IsSigned returns whether this primitive is a signed integral type.
func (pt *PrimitiveType) IsSigned() bool {
	switch pt.Kind {
	case PrimInt8, PrimInt16, PrimInt32, PrimInt64, PrimUnsizedInt:
		return true
	default:
		return false
	}
}

// IsFloating returns whether this primitive type is a floating-point type.
func (pt *PrimitiveType) IsFloating() bool {
	return pt.Kind == PrimFloat || pt.Kind == PrimDouble
}

// FitIntegerType returns the smallest signed or unsigned integer type that
// holds the given number of bits.
func FitIntegerType(nBits int, unsigned bool) *PrimitiveType {
	if unsigned {
		switch {
		case nBits <= 8:
			return Uint8Type
		case nBits <= 16:
			return Uint16Type
		case nBits <= 32:
			return Uint32Type
		default:
			return Uint64Type
		}
	}

	switch {
	case nBits <= 8:
		return Int8Type
	case nBits <= 16:
		return Int16Type
	case nBits <= 32:
		return Int32Type
	default:
		return Int64Type
	}
}
