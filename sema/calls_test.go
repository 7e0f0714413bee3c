package sema_test

import (
	"testing"

	"lumenc/ast"
	"lumenc/report"
	"lumenc/types"
)

func call(fn string, args ...ast.ASTNode) *ast.Call {
	return &ast.Call{Func: id(fn), Args: args}
}

func TestCallOverloadResolution(t *testing.T) {
	_, mod := analyze(t,
		funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Int32"))}, id("Int32"), true),
		funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Double"))}, id("Double"), true),
		varDecl("n", id("Int32"), nil),
		&ast.VarDecl{DeclBase: ast.DeclBase{Name: "r"}, Init: call("f", id("n"))},
	)

	if report.AnyErrors() {
		t.Fatalf("analysis failed: %+v", report.Diagnostics())
	}

	r := lookupType(t, mod, "r")
	if !types.Equals(r.Type, types.Int32Type) {
		t.Errorf("call should resolve to the int32 overload, got %s", r.Type.Repr())
	}
}

func TestCallAmbiguity(t *testing.T) {
	analyze(t,
		funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Int64"))}, nil, true),
		funcDecl("f", 0, []*ast.ParamDecl{param("x", id("Double"))}, nil, true),
		varDecl("n", id("Int32"), nil),
		&ast.VarDecl{DeclBase: ast.DeclBase{Name: "r"}, Init: call("f", id("n"))},
	)

	if !hasDiagnostic(report.KindAmbiguousCall) {
		t.Errorf("equally-ranked overloads should report an ambiguous call")
	}
}

func TestTemplateFunctionInference(t *testing.T) {
	identity := &ast.FuncDecl{
		DeclBase:   ast.DeclBase{Name: "pass"},
		TypeParams: []ast.TypeParam{{Name: "T"}},
		Params:     []*ast.ParamDecl{param("x", id("T"))},
		ReturnType: id("T"),
		HasBody:    true,
	}

	_, mod := analyze(t,
		identity,
		varDecl("n", id("Int32"), nil),
		&ast.VarDecl{DeclBase: ast.DeclBase{Name: "r"}, Init: call("pass", id("n"))},
	)

	if report.AnyErrors() {
		t.Fatalf("analysis failed: %+v", report.Diagnostics())
	}

	r := lookupType(t, mod, "r")
	if !types.Equals(r.Type, types.Int32Type) {
		t.Errorf("template argument should infer to int32, got %s", r.Type.Repr())
	}
}

func TestConstructorCall(t *testing.T) {
	_, mod := analyze(t,
		structDecl("P",
			varDecl("x", id("Int32"), nil),
		),
		varDecl("n", id("Int32"), nil),
		&ast.VarDecl{DeclBase: ast.DeclBase{Name: "p"}, Init: call("P", id("n"))},
	)

	if report.AnyErrors() {
		t.Fatalf("analysis failed: %+v", report.Diagnostics())
	}

	p := lookupType(t, mod, "p")
	structP := lookupType(t, mod, "P")

	if !types.Equals(p.Type, structP.Type) {
		t.Errorf("constructing P should yield a P, got %s", p.Type.Repr())
	}
}

func TestCallToUndefinedFunction(t *testing.T) {
	analyze(t,
		&ast.VarDecl{DeclBase: ast.DeclBase{Name: "r"}, Init: call("missing")},
	)

	if !report.AnyErrors() {
		t.Errorf("calling an undefined function should report an error")
	}
}
