package infer

import (
	"testing"

	"lumenc/depm"
	"lumenc/types"
)

func newFuncDefn(name string, sig *types.FunctionType) *depm.Defn {
	d := depm.NewSyntheticDefn(depm.DefnFunction, nil, name)
	d.AddTrait(depm.TraitSingular)
	d.Type = sig
	d.HasBody = true
	return d
}

func TestRankOverloadsPrefersExact(t *testing.T) {
	r := types.NewRegistry()

	fInt := r.Function(types.VoidType, []types.Param{{Name: "x", Type: types.Int32Type}}, nil, false)
	fDouble := r.Function(types.VoidType, []types.Param{{Name: "x", Type: types.DoubleType}}, nil, false)

	candidates := []Candidate{
		{Defn: newFuncDefn("f", fInt), Signature: fInt},
		{Defn: newFuncDefn("f", fDouble), Signature: fDouble},
	}

	res, err := RankOverloads("f", candidates, []types.Type{types.Int32Type}, 0)
	if err != nil {
		t.Fatalf("resolution failed: %s", err)
	}

	if res.Index != 0 {
		t.Errorf("int32 argument should pick the int32 overload, picked %d", res.Index)
	}

	if res.Rank != types.IdenticalTypes {
		t.Errorf("winning rank = %s, want IdenticalTypes", res.Rank)
	}
}

func TestRankOverloadsNoMatch(t *testing.T) {
	r := types.NewRegistry()

	fBool := r.Function(types.VoidType, []types.Param{{Name: "x", Type: types.BoolType}}, nil, false)

	candidates := []Candidate{{Defn: newFuncDefn("f", fBool), Signature: fBool}}

	_, err := RankOverloads("f", candidates, []types.Type{types.DoubleType}, 0)
	if _, ok := err.(*NoMatchError); !ok {
		t.Errorf("expected NoMatchError, got %v", err)
	}
}

func TestRankOverloadsWideningSpecificity(t *testing.T) {
	r := types.NewRegistry()

	// Both overloads accept int8 by exact widening; the int32 overload wins
	// on specificity since int32 widens into int64.
	fA := r.Function(types.VoidType, []types.Param{{Name: "x", Type: types.Int32Type}}, nil, false)
	fB := r.Function(types.VoidType, []types.Param{{Name: "x", Type: types.Int64Type}}, nil, false)

	candidates := []Candidate{
		{Defn: newFuncDefn("f", fA), Signature: fA},
		{Defn: newFuncDefn("f", fB), Signature: fB},
	}

	res, err := RankOverloads("f", candidates, []types.Type{types.Int8Type}, 0)
	if err != nil {
		t.Fatalf("resolution failed: %s", err)
	}

	if res.Index != 0 {
		t.Errorf("specificity should pick the int32 overload, picked %d", res.Index)
	}
}

func TestRankOverloadsAmbiguous(t *testing.T) {
	r := types.NewRegistry()

	// int32 converts exactly into both int64 and double, and neither
	// parameter tuple is more specific than the other.
	fA := r.Function(types.VoidType, []types.Param{{Name: "x", Type: types.Int64Type}}, nil, false)
	fB := r.Function(types.VoidType, []types.Param{{Name: "x", Type: types.DoubleType}}, nil, false)

	candidates := []Candidate{
		{Defn: newFuncDefn("f", fA), Signature: fA},
		{Defn: newFuncDefn("f", fB), Signature: fB},
	}

	_, err := RankOverloads("f", candidates, []types.Type{types.Int32Type}, 0)
	if _, ok := err.(*AmbiguousCallError); !ok {
		t.Errorf("expected AmbiguousCallError, got %v", err)
	}
}

func TestRankOverloadsSpecificity(t *testing.T) {
	r := types.NewRegistry()

	object := r.Composite(types.KindClass, &fakeTypeDefn{name: "Object"})
	derived := r.Composite(types.KindClass, &fakeTypeDefn{name: "Derived"})
	derived.Bases = append(derived.Bases, object)
	derived.SetSuper(object)

	fObject := r.Function(types.VoidType, []types.Param{{Name: "x", Type: object}}, nil, false)
	fDerived := r.Function(types.VoidType, []types.Param{{Name: "x", Type: derived}}, nil, false)

	candidates := []Candidate{
		{Defn: newFuncDefn("f", fObject), Signature: fObject},
		{Defn: newFuncDefn("f", fDerived), Signature: fDerived},
	}

	res, err := RankOverloads("f", candidates, []types.Type{derived}, 0)
	if err != nil {
		t.Fatalf("resolution failed: %s", err)
	}

	if res.Index != 1 {
		t.Errorf("derived argument should pick the derived overload")
	}
}

type fakeTypeDefn struct {
	name string
}

func (f *fakeTypeDefn) DefnName() string        { return f.name }
func (f *fakeTypeDefn) QualifiedName() string   { return f.name }
func (f *fakeTypeDefn) DefnLinkageName() string { return f.name }
func (f *fakeTypeDefn) IsAbstract() bool        { return false }
func (f *fakeTypeDefn) IsSingular() bool        { return true }

/* -------------------------------------------------------------------------- */

func TestSubstituteFunction(t *testing.T) {
	r := types.NewRegistry()

	tv := r.TypeVar("T", nil)
	sig := r.Function(tv, []types.Param{{Name: "x", Type: tv}}, nil, false)

	env := NewBindingEnv()
	env.Bind(tv, types.Int32Type)

	got := Substitute(r, sig, env.Lookup).(*types.FunctionType)

	if !types.Equals(got.Return, types.Int32Type) || !types.Equals(got.Params[0].Type, types.Int32Type) {
		t.Errorf("substitution did not replace the type variable: %s", got.Repr())
	}

	// Substituting again with the same environment yields the interned
	// handle.
	if Substitute(r, sig, env.Lookup) != got {
		t.Errorf("substitution should return interned handles")
	}
}

func TestInstantiateCacheIdentity(t *testing.T) {
	ctx := depm.NewContext()

	arrayTemplate := ctx.Universe.Array

	env := NewBindingEnv()
	env.Bind(arrayTemplate.TemplateSig.TypeVars[0], types.Int32Type)

	inst1, err := Instantiate(ctx, arrayTemplate, env, nil)
	if err != nil {
		t.Fatalf("instantiation failed: %s", err)
	}

	env2 := NewBindingEnv()
	env2.Bind(arrayTemplate.TemplateSig.TypeVars[0], types.Int32Type)

	inst2, err := Instantiate(ctx, arrayTemplate, env2, nil)
	if err != nil {
		t.Fatalf("second instantiation failed: %s", err)
	}

	if inst1 != inst2 {
		t.Errorf("equal environments should return the identical instance")
	}

	if got := inst1.LinkageName(); got != "Array[int32]" {
		t.Errorf("instance linkage name = %q", got)
	}

	elems := inst1.Members.Lookup("element_type", false)
	if len(elems) != 1 || !types.Equals(elems[0].Type, types.Int32Type) {
		t.Errorf("element_type member should resolve to int32")
	}
}

func TestInstantiateUnboundVariable(t *testing.T) {
	ctx := depm.NewContext()

	if _, err := Instantiate(ctx, ctx.Universe.Array, NewBindingEnv(), nil); err == nil {
		t.Errorf("instantiation with unbound variables should fail")
	}
}

func TestInstantiateUpperBound(t *testing.T) {
	ctx := depm.NewContext()
	r := ctx.Registry

	object := ctx.Universe.Object.CompositeType()

	owner := depm.NewSyntheticDefn(depm.DefnTypeDef, nil, "Ref")
	tsig := depm.NewTemplateSignature(owner)
	tv := r.TypeVar("T", object)
	tsig.TypeVars = append(tsig.TypeVars, tv)
	tsig.Populate = func(inst *depm.Defn, args []types.Type) {
		inst.Type = r.Composite(types.KindClass, inst)
	}
	owner.TemplateSig = tsig

	// int32 does not satisfy the Object bound.
	env := NewBindingEnv()
	env.Bind(tv, types.Int32Type)
	if _, err := Instantiate(ctx, owner, env, nil); err == nil {
		t.Errorf("bound violation should fail instantiation")
	}

	// String satisfies it.
	env2 := NewBindingEnv()
	env2.Bind(tv, ctx.Universe.String.Type)
	if _, err := Instantiate(ctx, owner, env2, nil); err != nil {
		t.Errorf("bound-satisfying instantiation failed: %s", err)
	}
}

/* -------------------------------------------------------------------------- */

func TestInferenceSolvesCallSignature(t *testing.T) {
	ctx := depm.NewContext()
	r := ctx.Registry

	tv := r.TypeVar("T", nil)
	sig := r.Function(tv, []types.Param{{Name: "x", Type: tv}}, nil, false)

	inf := NewInference(ctx)
	opened := inf.OpenSignature(sig, []*types.TypeVariable{tv})

	if !inf.Constrain(types.ConstraintLowerBound, opened.Params[0].Type, types.Int32Type, 0) {
		t.Fatalf("constraint application failed")
	}

	if _, ok := inf.Solve(); !ok {
		t.Fatalf("solving failed")
	}

	env := inf.Env([]*types.TypeVariable{tv})
	bound, ok := env.Get(tv)
	if !ok || !types.Equals(bound, types.Int32Type) {
		t.Errorf("T should infer to int32, got %v", bound)
	}
}

func TestInferenceConflict(t *testing.T) {
	ctx := depm.NewContext()
	r := ctx.Registry

	tv := r.TypeVar("T", nil)

	inf := NewInference(ctx)
	ta := inf.AssignmentFor(tv)

	inf.Constrain(types.ConstraintExact, ta, types.Int32Type, 0)
	inf.Constrain(types.ConstraintExact, ta, types.BoolType, 0)

	if _, ok := inf.Solve(); ok {
		t.Errorf("conflicting exact constraints should fail to solve")
	}
}
