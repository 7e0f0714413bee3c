package types

import "testing"

// testDefn is a minimal stand-in for a definition-graph node.
type testDefn struct {
	name     string
	abstract bool
}

func (td *testDefn) DefnName() string        { return td.name }
func (td *testDefn) QualifiedName() string   { return td.name }
func (td *testDefn) DefnLinkageName() string { return td.name }
func (td *testDefn) IsAbstract() bool        { return td.abstract }
func (td *testDefn) IsSingular() bool        { return true }

func newTestClass(r *Registry, name string, super *CompositeType) *CompositeType {
	ct := r.Composite(KindClass, &testDefn{name: name})
	if super != nil {
		ct.Bases = append(ct.Bases, super)
		ct.SetSuper(super)
	}

	return ct
}

func TestPrimitiveSingletons(t *testing.T) {
	r := NewRegistry()

	if r.Primitive(PrimInt32) != Int32Type {
		t.Errorf("registry did not return the Int32 singleton")
	}

	if !Equals(r.Primitive(PrimBool), BoolType) {
		t.Errorf("bool primitives should be equal")
	}

	if Equals(Int32Type, Int64Type) {
		t.Errorf("distinct primitives should not be equal")
	}
}

func TestFunctionInterning(t *testing.T) {
	r := NewRegistry()

	params := []Param{{Name: "x", Type: Int32Type}}
	f1 := r.Function(VoidType, params, nil, false)
	f2 := r.Function(VoidType, []Param{{Name: "x", Type: Int32Type}}, nil, false)

	if f1 != f2 {
		t.Errorf("structurally equal function types should intern to the same handle")
	}

	f3 := r.Function(VoidType, params, nil, true)
	if f1 == f3 {
		t.Errorf("static flag should participate in function identity")
	}
}

func TestTupleAndAddressInterning(t *testing.T) {
	r := NewRegistry()

	t1 := r.Tuple([]Type{Int32Type, BoolType})
	t2 := r.Tuple([]Type{Int32Type, BoolType})
	if t1 != t2 {
		t.Errorf("equal tuples should intern to the same handle")
	}

	a1 := r.Address(Int32Type)
	a2 := r.Address(Int32Type)
	if a1 != a2 {
		t.Errorf("equal addresses should intern to the same handle")
	}

	n1 := r.NativeArray(Int8Type, 16)
	n2 := r.NativeArray(Int8Type, 16)
	if n1 != n2 {
		t.Errorf("equal native arrays should intern to the same handle")
	}

	if r.NativeArray(Int8Type, 8) == n1 {
		t.Errorf("length should participate in native array identity")
	}
}

func TestAliasDereferencing(t *testing.T) {
	r := NewRegistry()

	alias := r.Alias(&testDefn{name: "MyInt"})
	alias.Resolve(Int32Type)

	if !Equals(alias, Int32Type) {
		t.Errorf("alias should compare equal to its target")
	}

	if Dealias(alias) != Int32Type {
		t.Errorf("Dealias should reach the alias target")
	}
}

func TestPrimitiveSubtyping(t *testing.T) {
	tests := []struct {
		sub, super Type
		want       bool
	}{
		{Int8Type, Int32Type, true},
		{Int8Type, Int64Type, true},
		{Uint8Type, Int16Type, true},
		{Uint16Type, Int32Type, true},
		{Int32Type, Int8Type, false},
		{Uint32Type, Int32Type, false},
		{FloatType, DoubleType, true},
		{DoubleType, FloatType, false},
		{CharType, Uint32Type, true},
		{Int32Type, Int32Type, true},
	}

	for _, tt := range tests {
		if got := IsSubtype(tt.sub, tt.super); got != tt.want {
			t.Errorf("IsSubtype(%s, %s) = %v, want %v", tt.sub.Repr(), tt.super.Repr(), got, tt.want)
		}
	}
}

func TestCompositeSubtyping(t *testing.T) {
	r := NewRegistry()

	object := newTestClass(r, "Object", nil)
	base := newTestClass(r, "Base", object)
	derived := newTestClass(r, "Derived", base)

	if !IsSubtype(derived, base) || !IsSubtype(derived, object) {
		t.Errorf("derived class should be a subtype of its ancestors")
	}

	if IsSubtype(base, derived) {
		t.Errorf("base class should not be a subtype of its derivative")
	}

	if !IsSubtype(NullType, base) {
		t.Errorf("null should be a subtype of reference types")
	}
}

func TestCommonBase(t *testing.T) {
	r := NewRegistry()

	object := newTestClass(r, "Object", nil)
	base := newTestClass(r, "Base", object)
	left := newTestClass(r, "Left", base)
	right := newTestClass(r, "Right", base)

	if got := CommonBase(left, right); got != base {
		t.Errorf("CommonBase(Left, Right) = %v, want Base", got)
	}

	if got := CommonBase(left, base); got != base {
		t.Errorf("CommonBase(Left, Base) = %v, want Base", got)
	}

	if got := CommonBase(Int8Type, Int32Type); got != Int32Type {
		t.Errorf("CommonBase(int8, int32) = %v, want int32", got)
	}
}

func TestConversionRanks(t *testing.T) {
	tests := []struct {
		from, to Type
		want     ConversionRank
	}{
		{Int32Type, Int32Type, IdenticalTypes},
		{Int8Type, Int32Type, ExactConversion},
		{Int32Type, Int8Type, Truncation},
		{Int32Type, Uint32Type, SignedUnsigned},
		{Int32Type, BoolType, IntegerToBool},
		{BoolType, Int32Type, NonPreferred},
		{Int32Type, DoubleType, ExactConversion},
		{Int64Type, DoubleType, PrecisionLoss},
		{FloatType, DoubleType, ExactConversion},
		{DoubleType, FloatType, PrecisionLoss},
		{DoubleType, Int32Type, Truncation},
		{UnsizedIntType, Int64Type, ExactConversion},
		{BoolType, DoubleType, Incompatible},
	}

	for _, tt := range tests {
		if got, _ := Convert(tt.from, tt.to, 0); got != tt.want {
			t.Errorf("Convert(%s, %s) = %s, want %s", tt.from.Repr(), tt.to.Repr(), got, tt.want)
		}
	}
}

func TestConvertIdenticalProperty(t *testing.T) {
	r := NewRegistry()
	object := newTestClass(r, "Object", nil)

	for _, typ := range []Type{Int32Type, BoolType, DoubleType, object} {
		if rank, _ := Convert(typ, typ, 0); rank != IdenticalTypes {
			t.Errorf("Convert(%s, %s) should be IdenticalTypes, got %s", typ.Repr(), typ.Repr(), rank)
		}
	}
}

func TestUpcastConversion(t *testing.T) {
	r := NewRegistry()

	object := newTestClass(r, "Object", nil)
	derived := newTestClass(r, "Derived", object)

	rank, cast := Convert(derived, object, 0)
	if rank != ExactConversion {
		t.Errorf("upcast rank = %s, want ExactConversion", rank)
	}

	if cast == nil || cast.Kind != CastUpcast {
		t.Errorf("upcast should produce a CastUpcast expression")
	}
}

func TestCoerceRequiresConverterPass(t *testing.T) {
	r := NewRegistry()
	target := newTestClass(r, "Wrapper", nil)

	defer func() {
		if recover() == nil {
			t.Errorf("conversion with coerce before the converter pass should panic")
		}
	}()

	Convert(Int32Type, target, ConvertCoerce)
}

func TestCoerceConversion(t *testing.T) {
	r := NewRegistry()
	target := newTestClass(r, "Wrapper", nil)
	target.ConvertersReady = true
	target.Coercers = append(target.Coercers, &MethodSlot{
		Name:      "coerce",
		Signature: r.Function(target, []Param{{Name: "value", Type: Int32Type}}, nil, true),
		HasImpl:   true,
	})

	rank, cast := Convert(Int32Type, target, ConvertCoerce)
	if rank == Incompatible {
		t.Fatalf("coerce conversion should succeed")
	}

	if cast == nil || cast.Kind != CastCoerce {
		t.Errorf("coerce conversion should produce a CastCoerce expression")
	}

	// A narrower source converts through the same coercer at widening rank.
	rank, _ = Convert(Int8Type, target, ConvertCoerce)
	if rank != ExactConversion {
		t.Errorf("two-hop coerce rank = %s, want ExactConversion", rank)
	}
}

func TestFitIntegerType(t *testing.T) {
	if FitIntegerType(7, false) != Int8Type {
		t.Errorf("7 bits should fit int8")
	}

	if FitIntegerType(13, false) != Int16Type {
		t.Errorf("13 bits should fit int16")
	}

	if FitIntegerType(40, true) != Uint64Type {
		t.Errorf("40 bits unsigned should fit uint64")
	}
}

func TestLinkageNames(t *testing.T) {
	r := NewRegistry()
	object := newTestClass(r, "Object", nil)

	fn := r.Function(Int32Type, []Param{{Name: "x", Type: Int32Type}}, object, false)
	if got := LinkageName(fn); got != "fn:Object(int32)->int32" {
		t.Errorf("function linkage name = %q", got)
	}

	tuple := r.Tuple([]Type{Int32Type, BoolType})
	if got := LinkageName(tuple); got != "(int32,bool)" {
		t.Errorf("tuple linkage name = %q", got)
	}

	addr := r.Address(Int8Type)
	if got := LinkageName(addr); got != "int8^" {
		t.Errorf("address linkage name = %q", got)
	}

	arr := r.NativeArray(Int8Type, 4)
	if got := LinkageName(arr); got != "NativeArray[int8,4]" {
		t.Errorf("native array linkage name = %q", got)
	}

	// Linkage names are stable across repeated computation.
	if LinkageName(fn) != LinkageName(fn) {
		t.Errorf("linkage names should be stable")
	}
}
