package codegen

import (
	"strings"
	"testing"

	"lumenc/ast"
	"lumenc/depm"
	"lumenc/report"
	"lumenc/sema"
)

func analyzeModule(t *testing.T, decls ...ast.Decl) (*depm.Context, *depm.Module) {
	t.Helper()

	report.ResetReporter(report.LogLevelSilent)

	ctx := depm.NewContext()
	mod := depm.NewModule(&ast.ModuleAST{
		PkgName:  "gen",
		AbsPath:  "/gen/mod.lum",
		ReprPath: "mod.lum",
		Decls:    decls,
	})
	ctx.AddModule(mod)

	if !sema.AnalyzeModule(ctx, mod) {
		t.Fatalf("analysis failed: %+v", report.Diagnostics())
	}

	return ctx, mod
}

func TestGenerateClassArtifacts(t *testing.T) {
	ctx, mod := analyzeModule(t,
		&ast.TypeDecl{
			DeclBase: ast.DeclBase{Name: "Point"},
			Kind:     ast.TypeDeclClass,
			Members: []ast.Decl{
				&ast.VarDecl{DeclBase: ast.DeclBase{Name: "x"}, Type: &ast.Identifier{Name: "Int32"},
					Init: &ast.Literal{Kind: ast.LitInt, Value: "0"}, InitIsConst: true},
				&ast.FuncDecl{DeclBase: ast.DeclBase{Name: "norm"},
					ReturnType: &ast.Identifier{Name: "Double"}, HasBody: true},
			},
		},
	)

	g := NewGenerator(ctx, mod)
	ir := g.Generate().String()

	if !strings.Contains(ir, "gen.Point") {
		t.Errorf("IR should define the Point struct type")
	}

	if !strings.Contains(ir, "gen.Point.vtable") {
		t.Errorf("IR should define Point's vtable global")
	}

	if !strings.Contains(ir, "gen.Point.norm") {
		t.Errorf("IR should declare Point.norm")
	}
}

func TestGenerateGlobalVar(t *testing.T) {
	ctx, mod := analyzeModule(t,
		&ast.VarDecl{DeclBase: ast.DeclBase{Name: "counter"}, Type: &ast.Identifier{Name: "Int64"}},
	)

	g := NewGenerator(ctx, mod)
	ir := g.Generate().String()

	if !strings.Contains(ir, "gen.counter") {
		t.Errorf("IR should define the module-level variable")
	}
}
