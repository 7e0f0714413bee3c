package depm

import (
	"testing"

	"lumenc/types"
)

func TestScopeInsertionOrder(t *testing.T) {
	scope := NewScope(nil, nil)

	names := []string{"zeta", "alpha", "mid", "alpha"}
	for _, name := range names {
		scope.Define(&Defn{Kind: DefnVar, Name: name, DispatchIndex: -1})
	}

	if got := scope.Names(); len(got) != 3 {
		t.Fatalf("scope has %d names, want 3", len(got))
	}

	want := []string{"zeta", "alpha", "mid"}
	for i, name := range scope.Names() {
		if name != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, name, want[i])
		}
	}

	if len(scope.Get("alpha")) != 2 {
		t.Errorf("alpha should bind two definitions")
	}
}

func TestScopeInheritedLookup(t *testing.T) {
	ctx := NewContext()

	baseDefn := &Defn{Kind: DefnTypeDef, Name: "Base", DispatchIndex: -1, traits: TraitSingular}
	baseDefn.Members = NewScope(nil, baseDefn)
	baseCt := ctx.Registry.Composite(types.KindClass, baseDefn)
	baseDefn.Type = baseCt

	field := &Defn{Kind: DefnVar, Name: "count", DispatchIndex: -1, Storage: StorageInstance}
	baseDefn.Members.Define(field)

	derivedDefn := &Defn{Kind: DefnTypeDef, Name: "Derived", DispatchIndex: -1, traits: TraitSingular}
	derivedDefn.Members = NewScope(nil, derivedDefn)
	derivedCt := ctx.Registry.Composite(types.KindClass, derivedDefn)
	derivedCt.Bases = append(derivedCt.Bases, baseCt)
	derivedCt.SetSuper(baseCt)
	derivedDefn.Type = derivedCt

	if got := derivedDefn.Members.Lookup("count", false); got != nil {
		t.Errorf("non-inheriting lookup should not find base members")
	}

	got := derivedDefn.Members.Lookup("count", true)
	if len(got) != 1 || got[0] != field {
		t.Errorf("inheriting lookup should find the base field")
	}
}

func TestPassLifecycle(t *testing.T) {
	var ps Passes

	ok, circular := ps.Begin(PassBaseTypes, false)
	if !ok || circular {
		t.Fatalf("first Begin should succeed")
	}

	// Re-entry of a running pass is a circular dependency.
	if _, circular := ps.Begin(PassBaseTypes, false); !circular {
		t.Errorf("re-entrant Begin should report a circular dependency")
	}

	// Re-entry with allowReentry set is a silent skip.
	if ok, circular := ps.Begin(PassBaseTypes, true); ok || circular {
		t.Errorf("allowed re-entry should skip without error")
	}

	ps.Finish(PassBaseTypes)

	if !ps.IsFinished(PassBaseTypes) || ps.IsRunning(PassBaseTypes) {
		t.Errorf("Finish should move the pass from running to finished")
	}

	// A finished pass never begins again.
	if ok, _ := ps.Begin(PassBaseTypes, false); ok {
		t.Errorf("finished pass should not begin again")
	}
}

func TestPassFailureFlag(t *testing.T) {
	var ps Passes

	ps.Begin(PassOverloading, false)
	ps.FinishFailed(PassOverloading)

	if !ps.IsFinished(PassOverloading) {
		t.Errorf("failed pass should still count as finished")
	}

	if !ps.HasFailed(PassOverloading) {
		t.Errorf("failure flag should be set")
	}
}

func TestTaskPassSets(t *testing.T) {
	construction := TaskPasses(TaskPrepConstruction)

	for _, p := range []Pass{PassScopeCreation, PassBaseTypes, PassAttributes, PassNamingConflict, PassConstructor} {
		if !construction.Contains(p) {
			t.Errorf("construction task should require %s", p)
		}
	}

	if construction.Contains(PassOverloading) {
		t.Errorf("construction task should not require overloading")
	}

	codegen := TaskPasses(TaskPrepCodeGeneration)
	if !codegen.Contains(PassCompletion) {
		t.Errorf("code generation task should require completion")
	}
}

func TestQualifiedAndLinkageNames(t *testing.T) {
	mod := &Module{Name: "app"}
	root := &Defn{Kind: DefnModule, Name: "app", Module: mod}
	root.Members = NewScope(nil, root)
	mod.Root = root

	outer := &Defn{Kind: DefnTypeDef, Name: "Outer", Module: mod, DispatchIndex: -1}
	outer.Members = NewScope(root.Members, outer)
	root.Members.Define(outer)

	inner := &Defn{Kind: DefnFunction, Name: "run", Module: mod, DispatchIndex: -1}
	outer.Members.Define(inner)

	if got := inner.QualifiedName(); got != "app.Outer.run" {
		t.Errorf("qualified name = %q", got)
	}

	if got := inner.LinkageName(); got != "app.Outer.run" {
		t.Errorf("linkage name = %q", got)
	}
}

func TestTemplateInstanceLinkageName(t *testing.T) {
	template := &Defn{Kind: DefnTypeDef, Name: "Box", DispatchIndex: -1}

	inst := &Defn{
		Kind:          DefnTypeDef,
		Name:          "Box",
		DispatchIndex: -1,
		TemplateInst: &TemplateInstance{
			Template: template,
			Args:     []types.Type{types.Int32Type, types.BoolType},
		},
	}

	if got := inst.LinkageName(); got != "Box[int32,bool]" {
		t.Errorf("template instance linkage name = %q", got)
	}
}

func TestNameTableInterning(t *testing.T) {
	nt := NewNameTable()

	a := nt.Intern("alpha")
	b := nt.Intern("beta")
	a2 := nt.Intern("alpha")

	if a != a2 {
		t.Errorf("interning the same name twice should return the same index")
	}

	if a == b {
		t.Errorf("distinct names should get distinct indices")
	}

	if nt.Get(a) != "alpha" || nt.Len() != 2 {
		t.Errorf("name table contents wrong")
	}
}

func TestTemplateInstanceCacheKey(t *testing.T) {
	owner := &Defn{Kind: DefnTypeDef, Name: "Box", DispatchIndex: -1}
	tsig := NewTemplateSignature(owner)

	args := []types.Type{types.Int32Type}
	inst := &Defn{Kind: DefnTypeDef, Name: "Box", DispatchIndex: -1}

	if _, ok := tsig.LookupInstance(args); ok {
		t.Fatalf("cache should start empty")
	}

	tsig.StoreInstance(args, inst)

	got, ok := tsig.LookupInstance([]types.Type{types.Int32Type})
	if !ok || got != inst {
		t.Errorf("cache lookup with an equal argument tuple should return the stored instance")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"app", "_x", "Module2"}
	invalid := []string{"", "2app", "has-dash", "a.b"}

	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("%q should be a valid identifier", s)
		}
	}

	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("%q should not be a valid identifier", s)
		}
	}
}
