package types

import "fmt"

// TypeShape is the storage category of a type, determining its ABI treatment.
// This must be one of the enumerated shapes below.
type TypeShape int

// Enumeration of type shapes.
const (
	ShapePrimitive   = TypeShape(iota) // Fits in a register; passed by value.
	ShapeSmallRValue                   // Small aggregate; passed by value.
	ShapeLargeValue                    // Large aggregate; passed by pointer.
	ShapeReference                     // Heap reference; passed as a pointer.
)

// EstimateSize returns the byte size of a value of the given type under the
// given pointer width (in bytes).  The estimate ignores padding: it exists to
// order types by size, not to compute final layouts.
func EstimateSize(typ Type, ptrSize int) int {
	switch v := Dealias(typ).(type) {
	case *PrimitiveType:
		if v.Kind == PrimNull {
			return ptrSize
		}

		return (v.NumBits() + 7) / 8
	case *CompositeType:
		if v.Kind == KindClass || v.Kind == KindInterface {
			return ptrSize
		}

		// Struct and protocol values embed their fields directly.
		size := 0
		if v.Super() != nil {
			size += EstimateSize(v.Super(), ptrSize)
		}

		for _, field := range v.InstanceFields {
			if field != nil {
				size += EstimateSize(field.Type, ptrSize)
			}
		}

		return size
	case *EnumType:
		return EstimateSize(v.Base, ptrSize)
	case *FunctionType:
		return ptrSize
	case *AddressType:
		return ptrSize
	case *TupleType:
		size := 0
		for _, member := range v.Members {
			size += EstimateSize(member, ptrSize)
		}

		return size
	case *NativeArrayType:
		return v.Length * EstimateSize(v.Elem, ptrSize)
	case *UnionType:
		layout, err := v.Layout()
		if err != nil {
			return ptrSize
		}

		size := EstimateSize(layout.LargestMember, ptrSize)
		if layout.DiscriminatorBits > 0 {
			size += (layout.DiscriminatorBits + 7) / 8
		}

		return size
	case *TypeLiteralType:
		return ptrSize
	default:
		return ptrSize
	}
}

// ShapeOf returns the storage category of the given type.
func ShapeOf(typ Type) TypeShape {
	switch v := Dealias(typ).(type) {
	case *PrimitiveType:
		return ShapePrimitive
	case *EnumType:
		return ShapePrimitive
	case *CompositeType:
		if v.Kind == KindClass || v.Kind == KindInterface {
			return ShapeReference
		}

		return valueShape(v)
	case *FunctionType, *AddressType, *TypeLiteralType:
		return ShapeReference
	case *UnionType:
		layout, err := v.Layout()
		if err != nil {
			return ShapeLargeValue
		}

		return layout.Shape
	default:
		return valueShape(v)
	}
}

// valueShape classifies a value type as small or large by estimating its
// 64-bit size: anything larger than two pointers is passed by pointer.
func valueShape(typ Type) TypeShape {
	if EstimateSize(typ, 8) > 16 {
		return ShapeLargeValue
	}

	return ShapeSmallRValue
}

/* -------------------------------------------------------------------------- */

// UnionLayout is the storage plan for a union type, computed independently of
// the target pointer size.
type UnionLayout struct {
	// The storage category of the union as a whole.  ShapePrimitive means the
	// union is stored as a bare pointer with no discriminator.
	Shape TypeShape

	// The width of the discriminator field in bits: 0, 1, 8, 16, or 32.
	// Zero when the union is a bare pointer.
	DiscriminatorBits int

	// The member whose storage the payload slot is sized for.  It is the
	// largest member under both 32-bit and 64-bit pointer widths.
	LargestMember Type
}

// LayoutConflictError reports that a union's largest member differs between
// the 32-bit and 64-bit pointer models, so no single layout serves both.
type LayoutConflictError struct {
	Union     *UnionType
	Largest32 Type
	Largest64 Type
}

func (e *LayoutConflictError) Error() string {
	return fmt.Sprintf(
		"conflict generating union type %s: largest member is %s on 32-bit targets but %s on 64-bit targets",
		e.Union.Repr(), e.Largest32.Repr(), e.Largest64.Repr(),
	)
}

// Layout plans the union's storage.  The plan is target-independent: member
// sizes are estimated for both 32-bit and 64-bit pointer widths and the
// member that is largest on BOTH widths is chosen.  If the winner differs
// between widths the layout fails with a LayoutConflictError.
func (ut *UnionType) Layout() (*UnionLayout, error) {
	var largestSize32, largestSize64 int
	var largestType32, largestType64 Type

	shape := ShapeSmallRValue

	for _, member := range ut.Members {
		member = Dealias(member)

		if ShapeOf(member) == ShapeLargeValue {
			shape = ShapeLargeValue
		}

		size32 := EstimateSize(member, 4)
		size64 := EstimateSize(member, 8)

		if size32 > largestSize32 || (size32 == largestSize32 && size64 > largestSize64) {
			largestSize32 = size32
			largestType32 = member
		}

		if size64 > largestSize64 || (size64 == largestSize64 && size32 > largestSize32) {
			largestSize64 = size64
			largestType64 = member
		}
	}

	if largestType32 != largestType64 {
		return nil, &LayoutConflictError{Union: ut, Largest32: largestType32, Largest64: largestType64}
	}

	if ut.NumValueTypes > 0 || ut.HasVoid {
		// Discriminated pair: (discriminator, payload).
		return &UnionLayout{
			Shape:             shape,
			DiscriminatorBits: ut.discriminatorBits(),
			LargestMember:     largestType32,
		}, nil
	} else if ut.HasNull && ut.NumReferenceTypes == 1 {
		// Null or a single reference type: the union IS that reference.
		return &UnionLayout{
			Shape:         ShapePrimitive,
			LargestMember: ut.FirstNonVoidType(),
		}, nil
	}

	// All members are references: the union is a bare pointer discriminated
	// by subclass tests.
	return &UnionLayout{
		Shape:         ShapePrimitive,
		LargestMember: largestType32,
	}, nil
}

// discriminatorBits returns the smallest of {1, 8, 16, 32} bits that
// enumerates the union's discriminator states.
func (ut *UnionType) discriminatorBits() int {
	numStates := ut.NumValueTypes
	if ut.NumReferenceTypes > 0 || ut.HasVoid || ut.HasNull {
		numStates++
	}

	switch {
	case numStates <= 2:
		return 1
	case numStates <= 256:
		return 8
	case numStates <= 0x10000:
		return 16
	default:
		return 32
	}
}
