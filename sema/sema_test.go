package sema_test

import (
	"testing"

	"lumenc/ast"
	"lumenc/depm"
	"lumenc/report"
	"lumenc/sema"
	"lumenc/types"
)

/* AST construction helpers */

func id(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

func classDecl(name string, mods ast.Modifiers, bases []ast.ASTNode, members ...ast.Decl) *ast.TypeDecl {
	return &ast.TypeDecl{
		DeclBase: ast.DeclBase{Name: name, Modifiers: mods},
		Kind:     ast.TypeDeclClass,
		Bases:    bases,
		Members:  members,
	}
}

func structDecl(name string, members ...ast.Decl) *ast.TypeDecl {
	return &ast.TypeDecl{
		DeclBase: ast.DeclBase{Name: name},
		Kind:     ast.TypeDeclStruct,
		Members:  members,
	}
}

func ifaceDecl(name string, bases []ast.ASTNode, members ...ast.Decl) *ast.TypeDecl {
	return &ast.TypeDecl{
		DeclBase: ast.DeclBase{Name: name},
		Kind:     ast.TypeDeclInterface,
		Bases:    bases,
		Members:  members,
	}
}

func funcDecl(name string, mods ast.Modifiers, params []*ast.ParamDecl, ret ast.ASTNode, hasBody bool) *ast.FuncDecl {
	return &ast.FuncDecl{
		DeclBase:   ast.DeclBase{Name: name, Modifiers: mods},
		Params:     params,
		ReturnType: ret,
		HasBody:    hasBody,
	}
}

func param(name string, typ ast.ASTNode) *ast.ParamDecl {
	return &ast.ParamDecl{Name: name, Type: typ}
}

func varDecl(name string, typ, init ast.ASTNode) *ast.VarDecl {
	return &ast.VarDecl{
		DeclBase:    ast.DeclBase{Name: name},
		Type:        typ,
		Init:        init,
		InitIsConst: init != nil,
	}
}

func intLit(text string) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, Value: text}
}

/* analysis driver */

func analyze(t *testing.T, decls ...ast.Decl) (*depm.Context, *depm.Module) {
	t.Helper()

	report.ResetReporter(report.LogLevelSilent)

	ctx := depm.NewContext()
	mod := depm.NewModule(&ast.ModuleAST{
		PkgName:  "test",
		AbsPath:  "/test/mod.lum",
		ReprPath: "mod.lum",
		Decls:    decls,
	})
	ctx.AddModule(mod)

	sema.AnalyzeModule(ctx, mod)
	return ctx, mod
}

func lookupType(t *testing.T, mod *depm.Module, name string) *depm.Defn {
	t.Helper()

	defns := mod.GlobalScope().Lookup(name, false)
	if len(defns) != 1 {
		t.Fatalf("expected exactly one definition of %s, got %d", name, len(defns))
	}

	return defns[0]
}

func hasDiagnostic(kind report.ErrorKind) bool {
	for _, d := range report.Diagnostics() {
		if d.Kind == kind && d.IsError {
			return true
		}
	}

	return false
}

func hasWarning() bool {
	for _, d := range report.Diagnostics() {
		if !d.IsError {
			return true
		}
	}

	return false
}

/* -------------------------------------------------------------------------- */

func TestPrimaryBasePlacement(t *testing.T) {
	// A declares bases [I, B]: after base analysis the class base B is
	// promoted to the front and becomes the primary base.
	_, mod := analyze(t,
		ifaceDecl("I", nil),
		classDecl("B", 0, nil),
		classDecl("A", 0, []ast.ASTNode{id("I"), id("B")}),
	)

	a := lookupType(t, mod, "A")
	b := lookupType(t, mod, "B")

	ct := a.CompositeType()
	if ct.Super() != b.CompositeType() {
		t.Errorf("primary base of A should be B")
	}

	if len(ct.Bases) != 2 || ct.Bases[0] != b.CompositeType() {
		t.Errorf("A's base list should lead with B")
	}

	iface := lookupType(t, mod, "I")
	if ct.Bases[1] != iface.CompositeType() {
		t.Errorf("A's base list should retain I after the primary base")
	}
}

func TestClassDefaultsToObjectBase(t *testing.T) {
	ctx, mod := analyze(t, classDecl("C", 0, nil))

	c := lookupType(t, mod, "C")
	if c.CompositeType().Super() != ctx.Universe.Object.CompositeType() {
		t.Errorf("a class without an explicit base should derive Object")
	}
}

func TestIllegalBaseKind(t *testing.T) {
	analyze(t,
		classDecl("C", 0, nil),
		&ast.TypeDecl{
			DeclBase: ast.DeclBase{Name: "S"},
			Kind:     ast.TypeDeclStruct,
			Bases:    []ast.ASTNode{id("C")},
		},
	)

	if !hasDiagnostic(report.KindIllegalBase) {
		t.Errorf("struct deriving a class should report an illegal base")
	}
}

func TestCircularInheritance(t *testing.T) {
	analyze(t,
		classDecl("A", 0, []ast.ASTNode{id("B")}),
		classDecl("B", 0, []ast.ASTNode{id("A")}),
	)

	if !hasDiagnostic(report.KindCircularDependency) {
		t.Errorf("mutually inheriting classes should report a circular dependency")
	}
}

/* -------------------------------------------------------------------------- */

func TestOverrideDetection(t *testing.T) {
	_, mod := analyze(t,
		classDecl("Base", 0, nil,
			funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Int32"))}, id("Int32"), true),
		),
		classDecl("Derived", 0, []ast.ASTNode{id("Base")},
			funcDecl("f", ast.ModOverride, []*ast.ParamDecl{param("x", id("Int32"))}, id("Int32"), true),
		),
	)

	base := lookupType(t, mod, "Base")
	derived := lookupType(t, mod, "Derived")

	baseCt := base.CompositeType()
	derivedCt := derived.CompositeType()

	if len(derivedCt.InstanceMethods) != len(baseCt.InstanceMethods) {
		t.Fatalf("override should not grow the method table: %d vs %d",
			len(derivedCt.InstanceMethods), len(baseCt.InstanceMethods))
	}

	baseF := base.Members.Lookup("f", false)[0]
	derivedF := derived.Members.Lookup("f", false)[0]

	if baseF.DispatchIndex < 0 {
		t.Fatalf("Base.f should have a dispatch index")
	}

	slot := derivedCt.InstanceMethods[baseF.DispatchIndex]
	if slot.Defn != derivedF {
		t.Errorf("Derived's table at Base.f's index should point to Derived.f")
	}

	if derivedF.DispatchIndex != baseF.DispatchIndex {
		t.Errorf("dispatch index should be stable across subclasses")
	}

	if _, ok := derivedF.Overridden[baseF]; !ok || len(derivedF.Overridden) != 1 {
		t.Errorf("Derived.f should record exactly Base.f as overridden")
	}
}

func TestMethodTablePrefixInvariant(t *testing.T) {
	_, mod := analyze(t,
		classDecl("Base", 0, nil,
			funcDecl("f", 0, nil, nil, true),
			funcDecl("g", 0, nil, nil, true),
		),
		classDecl("Derived", 0, []ast.ASTNode{id("Base")},
			funcDecl("h", 0, nil, nil, true),
		),
	)

	base := lookupType(t, mod, "Base").CompositeType()
	derived := lookupType(t, mod, "Derived").CompositeType()

	if len(derived.InstanceMethods) != len(base.InstanceMethods)+1 {
		t.Fatalf("Derived should add exactly one method slot")
	}

	for i, slot := range base.InstanceMethods {
		if derived.InstanceMethods[i] != slot {
			t.Errorf("Derived's table should begin with Base's table (slot %d differs)", i)
		}
	}
}

func TestOverrideWithoutModifierWarns(t *testing.T) {
	analyze(t,
		classDecl("Base", 0, nil,
			funcDecl("f", 0, nil, nil, true),
		),
		classDecl("Derived", 0, []ast.ASTNode{id("Base")},
			funcDecl("f", 0, nil, nil, true),
		),
	)

	if !hasWarning() {
		t.Errorf("overriding a method with a body without `override` should warn")
	}
}

func TestMissingImplementation(t *testing.T) {
	analyze(t,
		ifaceDecl("I", nil,
			funcDecl("g", 0, nil, nil, false),
		),
		classDecl("C", 0, []ast.ASTNode{id("I")}),
	)

	if !hasDiagnostic(report.KindMissingImplementation) {
		t.Fatalf("concrete class with an unimplemented interface method should fail")
	}

	found := false
	for _, d := range report.Diagnostics() {
		if d.Kind == report.KindMissingImplementation {
			for _, rel := range d.Related {
				if rel == "`g`" {
					found = true
				}
			}
		}
	}

	if !found {
		t.Errorf("the missing-implementation diagnostic should name `g`")
	}
}

func TestAbstractClassMayOmitImplementations(t *testing.T) {
	analyze(t,
		ifaceDecl("I", nil,
			funcDecl("g", 0, nil, nil, false),
		),
		classDecl("C", ast.ModAbstract, []ast.ASTNode{id("I")}),
	)

	if hasDiagnostic(report.KindMissingImplementation) {
		t.Errorf("abstract classes may leave interface methods unimplemented")
	}
}

func TestInterfaceTableParallelToInterface(t *testing.T) {
	_, mod := analyze(t,
		ifaceDecl("I", nil,
			funcDecl("g", 0, nil, nil, false),
			funcDecl("h", 0, nil, nil, false),
		),
		classDecl("C", 0, []ast.ASTNode{id("I")},
			funcDecl("g", ast.ModOverride, nil, nil, true),
			funcDecl("h", ast.ModOverride, nil, nil, true),
		),
	)

	iface := lookupType(t, mod, "I").CompositeType()
	c := lookupType(t, mod, "C").CompositeType()

	itable := c.ImplementationOf(iface)
	if itable == nil {
		t.Fatalf("C should carry a dispatch table for I")
	}

	if len(itable.Methods) != len(iface.InstanceMethods) {
		t.Errorf("itable length %d should parallel interface method count %d",
			len(itable.Methods), len(iface.InstanceMethods))
	}

	for i, slot := range itable.Methods {
		if !slot.HasImpl {
			t.Errorf("itable slot %d should be filled by C's methods", i)
		}
	}
}

func TestPrimaryBaseInterfaceElided(t *testing.T) {
	// J's primary base is I, so J's own dispatch table subsumes I's and no
	// separate table for I is created.
	_, mod := analyze(t,
		ifaceDecl("I", nil,
			funcDecl("g", 0, nil, nil, false),
		),
		ifaceDecl("J", []ast.ASTNode{id("I")},
			funcDecl("h", 0, nil, nil, false),
		),
		classDecl("C", 0, []ast.ASTNode{id("J")},
			funcDecl("g", ast.ModOverride, nil, nil, true),
			funcDecl("h", ast.ModOverride, nil, nil, true),
		),
	)

	iface := lookupType(t, mod, "I").CompositeType()
	j := lookupType(t, mod, "J").CompositeType()
	c := lookupType(t, mod, "C").CompositeType()

	// J's method table begins with I's methods.
	if len(j.InstanceMethods) != 2 {
		t.Fatalf("J should inherit I's method and add its own")
	}

	if c.ImplementationOf(iface) != nil {
		t.Errorf("I's table should be elided: it is the primary base of J")
	}

	if c.ImplementationOf(j) == nil {
		t.Errorf("C should carry a dispatch table for J")
	}
}

/* -------------------------------------------------------------------------- */

func TestConstructorSynthesis(t *testing.T) {
	// struct P { var x: Int32; var y: Int32 = 0 } yields a synthesised
	// construct(x, y = 0) assigning both fields.
	_, mod := analyze(t,
		structDecl("P",
			varDecl("x", id("Int32"), nil),
			varDecl("y", id("Int32"), intLit("0")),
		),
	)

	p := lookupType(t, mod, "P")

	ctors := p.Members.Lookup("construct", false)
	if len(ctors) != 1 {
		t.Fatalf("P should have exactly one synthesised constructor, got %d", len(ctors))
	}

	ctor := ctors[0]
	if !ctor.IsCtor() || !ctor.IsSynthetic() {
		t.Errorf("synthesised constructor should carry the Ctor and Synthetic traits")
	}

	ft := ctor.FuncType()
	if len(ft.Params) != 2 {
		t.Fatalf("constructor should take two parameters, got %d", len(ft.Params))
	}

	if ft.Params[0].Name != "x" || ft.Params[0].Keyword {
		t.Errorf("first parameter should be the required x")
	}

	if ft.Params[1].Name != "y" || !ft.Params[1].Keyword {
		t.Errorf("second parameter should be the optional y")
	}

	if !types.IsVoid(ft.Return) {
		t.Errorf("constructor return type should be void")
	}

	if len(ctor.CtorInits) != 2 {
		t.Fatalf("constructor body should assign both fields")
	}

	if ctor.CtorInits[0].Field.Name != "x" || ctor.CtorInits[1].Field.Name != "y" {
		t.Errorf("constructor should assign fields in declaration order")
	}
}

func TestDefaultConstructorNoFields(t *testing.T) {
	_, mod := analyze(t, classDecl("Empty", 0, nil))

	empty := lookupType(t, mod, "Empty")

	ctors := empty.Members.Lookup("construct", false)
	if len(ctors) != 1 {
		t.Fatalf("class without constructors should get a default one")
	}

	if len(ctors[0].FuncType().Params) != 0 {
		t.Errorf("default constructor of a fieldless class should take no parameters")
	}
}

func TestPrivateFieldWithoutDefault(t *testing.T) {
	analyze(t,
		classDecl("C", 0, nil,
			&ast.VarDecl{DeclBase: ast.DeclBase{Name: "secret", Modifiers: ast.ModPrivate}, Type: id("Int32")},
		),
	)

	if !hasDiagnostic(report.KindMissingInit) {
		t.Errorf("private defaultless field should fail constructor synthesis")
	}
}

func TestDeclaredConstructorSuppressesSynthesis(t *testing.T) {
	_, mod := analyze(t,
		classDecl("C", 0, nil,
			funcDecl("construct", 0, []*ast.ParamDecl{param("n", id("Int32"))}, nil, true),
		),
	)

	c := lookupType(t, mod, "C")

	ctors := c.Members.Lookup("construct", false)
	if len(ctors) != 1 {
		t.Fatalf("expected only the declared constructor")
	}

	if ctors[0].IsSynthetic() {
		t.Errorf("declared constructor should not be replaced by a synthesised one")
	}

	if !ctors[0].IsCtor() {
		t.Errorf("declared constructor should be marked Ctor")
	}
}

/* -------------------------------------------------------------------------- */

func TestFieldLayout(t *testing.T) {
	_, mod := analyze(t,
		classDecl("Base", 0, nil,
			varDecl("a", id("Int32"), intLit("1")),
		),
		classDecl("Derived", 0, []ast.ASTNode{id("Base")},
			varDecl("b", id("Int32"), intLit("2")),
		),
	)

	derived := lookupType(t, mod, "Derived").CompositeType()

	if len(derived.InstanceFields) != 2 {
		t.Fatalf("Derived layout should be [super, b], got %d slots", len(derived.InstanceFields))
	}

	if derived.InstanceFields[0] != nil {
		t.Errorf("slot 0 should be reserved for the super instance")
	}

	if derived.InstanceFields[1].Name != "b" {
		t.Errorf("declared field should follow the super slot")
	}

	// Base stores one field (a, recursive index 0), so b continues the flat
	// numbering at 1.
	if derived.InstanceFields[1].RecursiveIndex != 1 {
		t.Errorf("recursive index should continue the super's numbering, got %d",
			derived.InstanceFields[1].RecursiveIndex)
	}
}

func TestConstantLetNeedsNoStorage(t *testing.T) {
	_, mod := analyze(t,
		classDecl("C", 0, nil,
			&ast.VarDecl{DeclBase: ast.DeclBase{Name: "limit"}, IsLet: true,
				Type: id("Int32"), Init: intLit("10"), InitIsConst: true},
			varDecl("value", id("Int32"), intLit("0")),
		),
	)

	c := lookupType(t, mod, "C").CompositeType()

	for _, field := range c.InstanceFields {
		if field != nil && field.Name == "limit" {
			t.Errorf("constant let should occupy no storage slot")
		}
	}
}

func TestInterfaceForbidsStorage(t *testing.T) {
	analyze(t,
		ifaceDecl("I", nil,
			varDecl("x", id("Int32"), nil),
		),
	)

	if !report.AnyErrors() {
		t.Errorf("interface with a data member should report an error")
	}
}

/* -------------------------------------------------------------------------- */

func TestNamingConflict(t *testing.T) {
	analyze(t,
		classDecl("C", 0, nil,
			varDecl("thing", id("Int32"), intLit("0")),
			funcDecl("thing", 0, nil, nil, true),
		),
	)

	if !hasDiagnostic(report.KindDuplicateDefinition) {
		t.Errorf("mixed-kind name binding should report a duplicate definition")
	}
}

func TestSignatureConflict(t *testing.T) {
	analyze(t,
		classDecl("C", 0, nil,
			funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Int32"))}, nil, true),
			funcDecl("f", 0, []*ast.ParamDecl{param("y", id("Int32"))}, id("Int32"), true),
		),
	)

	if !hasDiagnostic(report.KindSignatureConflict) {
		t.Errorf("same parameter tuple under one name should report a signature conflict")
	}
}

func TestOverloadsWithDistinctSignatures(t *testing.T) {
	analyze(t,
		classDecl("C", 0, nil,
			funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Int32"))}, nil, true),
			funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Double"))}, nil, true),
		),
	)

	if report.AnyErrors() {
		t.Errorf("distinct overloads should not conflict")
	}
}

/* -------------------------------------------------------------------------- */

func TestUnionTypeExpression(t *testing.T) {
	_, mod := analyze(t,
		varDecl("u", &ast.LogicalOr{Operands: []ast.ASTNode{id("String"), id("Int32")}}, nil),
	)

	u := lookupType(t, mod, "u")

	ut, ok := types.Dealias(u.Type).(*types.UnionType)
	if !ok {
		t.Fatalf("u should have a union type, got %T", u.Type)
	}

	if len(ut.Members) != 2 || ut.NumReferenceTypes != 1 || ut.NumValueTypes != 1 {
		t.Errorf("union category counts wrong: %s", ut.Repr())
	}

	// Composites order before primitives in the canonical member list.
	if _, ok := types.Dealias(ut.Members[0]).(*types.CompositeType); !ok {
		t.Errorf("canonical order should place the composite first")
	}
}

func TestArraySugarInstantiatesTemplate(t *testing.T) {
	_, mod := analyze(t,
		varDecl("a", &ast.ArrayExpr{Elem: id("Int32")}, nil),
		varDecl("b", &ast.ArrayExpr{Elem: id("Int32")}, nil),
	)

	a := lookupType(t, mod, "a")
	b := lookupType(t, mod, "b")

	if a.Type != b.Type {
		t.Errorf("repeated array sugar should reuse the cached template instance")
	}

	ct, ok := types.Dealias(a.Type).(*types.CompositeType)
	if !ok {
		t.Fatalf("array type should be a composite")
	}

	inst, ok := ct.Defn().(*depm.Defn)
	if !ok {
		t.Fatalf("array composite should be owned by a definition")
	}

	if got := inst.LinkageName(); got != "Array[int32]" {
		t.Errorf("array instance linkage name = %q", got)
	}

	elems := inst.Members.Lookup("element_type", false)
	if len(elems) != 1 || !types.Equals(elems[0].Type, types.Int32Type) {
		t.Errorf("element_type should resolve to int32")
	}
}

func TestExplicitSpecialization(t *testing.T) {
	_, mod := analyze(t,
		varDecl("a", &ast.Specialize{Root: id("Array"), TypeArgs: []ast.ASTNode{id("Double")}}, nil),
	)

	a := lookupType(t, mod, "a")

	ct, ok := types.Dealias(a.Type).(*types.CompositeType)
	if !ok {
		t.Fatalf("specialization should produce a composite type")
	}

	inst := ct.Defn().(*depm.Defn)
	if got := inst.LinkageName(); got != "Array[double]" {
		t.Errorf("specialized linkage name = %q", got)
	}
}

func TestUnresolvedName(t *testing.T) {
	analyze(t,
		varDecl("x", id("NoSuchType"), nil),
	)

	if !hasDiagnostic(report.KindUnresolvedName) {
		t.Errorf("unknown type name should report an unresolved name")
	}
}

func TestCoercerGathering(t *testing.T) {
	_, mod := analyze(t,
		classDecl("Wrapper", 0, nil,
			funcDecl("coerce", ast.ModStatic, []*ast.ParamDecl{param("v", id("Int32"))}, id("Wrapper"), true),
		),
	)

	w := lookupType(t, mod, "Wrapper").CompositeType()

	if !w.ConvertersReady {
		t.Fatalf("converter pass should have run")
	}

	if len(w.Coercers) != 1 {
		t.Fatalf("Wrapper should have one coercer, got %d", len(w.Coercers))
	}

	rank, cast := types.Convert(types.Int32Type, w, types.ConvertCoerce)
	if rank == types.Incompatible || cast == nil || cast.Kind != types.CastCoerce {
		t.Errorf("int32 should coerce into Wrapper via the declared coercer")
	}
}
