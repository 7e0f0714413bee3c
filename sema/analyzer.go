package sema

import (
	"lumenc/ast"
	"lumenc/depm"
	"lumenc/report"
	"lumenc/types"
)

// Analyzer drives semantic analysis for one module.  It owns the active scope
// stack and routes preparation requests to the right per-definition analyses,
// making sure prerequisite passes have run first.
type Analyzer struct {
	// The compilation context.
	ctx *depm.Context

	// The module under analysis.
	mod *depm.Module

	// The active scope stack, innermost last.
	scopes []*depm.Scope
}

// NewAnalyzer creates an analyzer for the given module.
func NewAnalyzer(ctx *depm.Context, mod *depm.Module) *Analyzer {
	return &Analyzer{
		ctx:    ctx,
		mod:    mod,
		scopes: []*depm.Scope{mod.GlobalScope()},
	}
}

// AnalyzeModule runs the full analysis pipeline for one module: scope
// creation, import resolution, then preparation of every top-level definition
// for code generation.  It returns whether analysis succeeded.
func AnalyzeModule(ctx *depm.Context, mod *depm.Module) bool {
	a := NewAnalyzer(ctx, mod)

	a.createModuleMembers()
	a.resolveImports()

	if !report.ShouldProceed() {
		return false
	}

	mod.GlobalScope().Members(func(d *depm.Defn) bool {
		a.PrepareDefn(d, depm.TaskPrepCodeGeneration)
		return true
	})

	a.collectExports()

	return report.ShouldProceed()
}

/* -------------------------------------------------------------------------- */

// PrepareDefn ensures the given definition has been analyzed at least as far
// as the given task requires.
func (a *Analyzer) PrepareDefn(d *depm.Defn, task depm.AnalysisTask) bool {
	defer report.CatchErrors(a.mod.AbsPath, a.mod.ReprPath)

	switch d.Kind {
	case depm.DefnTypeDef:
		return a.prepareTypeDefn(d, task)
	case depm.DefnFunction, depm.DefnMacro:
		return a.analyzeFuncDefn(d, task)
	case depm.DefnVar, depm.DefnLet, depm.DefnParameter:
		return a.analyzeValueDefn(d, task)
	case depm.DefnProperty, depm.DefnIndexer:
		return a.analyzePropertyDefn(d, task)
	case depm.DefnNamespace:
		if d.Members != nil {
			d.Members.Members(func(member *depm.Defn) bool {
				a.PrepareDefn(member, task)
				return true
			})
		}

		return true
	case depm.DefnExplicitImport:
		return true
	default:
		return true
	}
}

// prepareTypeDefn routes preparation of a type definition by the flavor of
// type it declares.
func (a *Analyzer) prepareTypeDefn(d *depm.Defn, task depm.AnalysisTask) bool {
	decl, _ := d.AST.(*ast.TypeDecl)

	if decl != nil {
		switch decl.Kind {
		case ast.TypeDeclEnum:
			return a.analyzeEnumDefn(d)
		case ast.TypeDeclAlias:
			return a.analyzeAliasDefn(d)
		}
	}

	ca := &ClassAnalyzer{a: a, target: d}
	return ca.Analyze(task)
}

// PrepareType ensures the definition behind a type (if any) has been analyzed
// as far as the given task requires.
func (a *Analyzer) PrepareType(typ types.Type, task depm.AnalysisTask) {
	switch v := types.Dealias(typ).(type) {
	case *types.CompositeType:
		if d, ok := v.Defn().(*depm.Defn); ok {
			a.PrepareDefn(d, task)
		}
	case *types.UnionType:
		for _, member := range v.Members {
			a.PrepareType(member, task)
		}
	case *types.AddressType:
		a.PrepareType(v.Pointee, task)
	case *types.NativeArrayType:
		a.PrepareType(v.Elem, task)
	}
}

/* -------------------------------------------------------------------------- */

// pushScope makes the given scope the innermost active scope.
func (a *Analyzer) pushScope(s *depm.Scope) {
	a.scopes = append(a.scopes, s)
}

// popScope removes the innermost active scope.
func (a *Analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

// currentScope returns the innermost active scope.
func (a *Analyzer) currentScope() *depm.Scope {
	return a.scopes[len(a.scopes)-1]
}

// errorOn reports a compile error of the given kind at the given span.
func (a *Analyzer) errorOn(kind report.ErrorKind, span *report.TextSpan, msg string, args ...interface{}) {
	report.ReportCompileError(kind, a.mod.AbsPath, a.mod.ReprPath, span, msg, args...)
}

// warnOn reports a compile warning at the given span.
func (a *Analyzer) warnOn(span *report.TextSpan, msg string, args ...interface{}) {
	report.ReportCompileWarning(a.mod.AbsPath, a.mod.ReprPath, span, msg, args...)
}

/* -------------------------------------------------------------------------- */

// collectExports records every public top-level definition as an export of
// the module.
func (a *Analyzer) collectExports() {
	a.mod.GlobalScope().Members(func(d *depm.Defn) bool {
		if d.Visibility == depm.Public && d.Kind != depm.DefnExplicitImport {
			a.mod.AddExport(d)
		}

		return true
	})
}
