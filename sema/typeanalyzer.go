package sema

import (
	"lumenc/ast"
	"lumenc/depm"
	"lumenc/infer"
	"lumenc/report"
	"lumenc/types"
	"lumenc/util"
)

// TypeFromAST translates an AST type expression into a type handle,
// recursively instantiating templates as needed.  Resolution failures are
// reported and yield the Bad sentinel type so dependents can continue.
func (a *Analyzer) TypeFromAST(node ast.ASTNode) types.Type {
	switch v := node.(type) {
	case *ast.Identifier, *ast.MemberRef, *ast.Specialize, *ast.BuiltIn:
		return a.typeFromName(node)
	case *ast.ArrayExpr:
		elemType := a.TypeFromAST(v.Elem)
		if types.IsBad(elemType) {
			return elemType
		}

		return a.arrayTypeFor(elemType, v.Span())
	case *ast.LogicalOr:
		members := make([]types.Type, len(v.Operands))
		for i, operand := range v.Operands {
			memberType := a.TypeFromAST(operand)
			if types.IsBad(memberType) {
				return memberType
			}

			members[i] = memberType
		}

		return a.ctx.Registry.Union(members)
	case *ast.AnonFn:
		return a.typeFromAnonFn(v)
	default:
		panic(report.Raise(node.Span(), "invalid type expression"))
	}
}

// typeFromName resolves a name expression and requires the single result to
// be a type definition.
func (a *Analyzer) typeFromName(node ast.ASTNode) types.Type {
	var defns []*depm.Defn

	func() {
		defer func() {
			if x := recover(); x != nil {
				if cerr, ok := x.(*report.LocalCompileError); ok {
					report.ReportDiagnostic(&report.Diagnostic{
						Kind:     cerr.Kind,
						IsError:  true,
						AbsPath:  a.mod.AbsPath,
						ReprPath: a.mod.ReprPath,
						Span:     cerr.Span,
						Message:  cerr.Message,
					})
					return
				}

				panic(x)
			}
		}()

		defns = a.LookupName(node)
	}()

	if len(defns) == 0 {
		return types.BadType
	}

	typeDefns := util.Filter(defns, func(d *depm.Defn) bool {
		return d.Kind == depm.DefnTypeDef
	})

	if len(typeDefns) == 0 {
		a.errorOn(report.KindGeneral, node.Span(), "`%s` is not a type", nameOf(node))
		return types.BadType
	}

	if len(typeDefns) > 1 {
		a.errorOn(report.KindAmbiguousType, node.Span(), "multiple definitions for `%s`", nameOf(node))
		return types.BadType
	}

	tdef := typeDefns[0]

	if tdef.IsTemplate() {
		a.errorOn(report.KindNotSingular, node.Span(),
			"template `%s` used without type arguments", tdef.Name)
		return types.BadType
	}

	a.PrepareDefn(tdef, depm.TaskPrepTypeComparison)

	if tdef.Type == nil {
		return types.BadType
	}

	return tdef.Type
}

// arrayTypeFor lowers array type sugar onto the builtin Array template.
func (a *Analyzer) arrayTypeFor(elemType types.Type, span *report.TextSpan) types.Type {
	arrayTemplate := a.ctx.Universe.Array

	env := infer.NewBindingEnv()
	env.Bind(arrayTemplate.TemplateSig.TypeVars[0], elemType)

	inst, err := infer.Instantiate(a.ctx, arrayTemplate, env, span)
	if err != nil {
		a.errorOn(report.KindGeneral, span, "%s", err)
		return types.BadType
	}

	return inst.Type
}

// typeFromAnonFn builds a function type from an anonymous signature,
// defaulting a missing return type to void.
func (a *Analyzer) typeFromAnonFn(fn *ast.AnonFn) types.Type {
	params := make([]types.Param, len(fn.Params))
	for i, paramDecl := range fn.Params {
		var paramType types.Type = types.BadType
		if paramDecl.Type != nil {
			paramType = a.TypeFromAST(paramDecl.Type)
		}

		params[i] = types.Param{
			Name:     paramDecl.Name,
			Type:     paramType,
			Variadic: paramDecl.Variadic,
			ByRef:    paramDecl.ByRef,
			Keyword:  paramDecl.Keyword,
		}
	}

	var returnType types.Type = types.VoidType
	if fn.ReturnType != nil {
		returnType = a.TypeFromAST(fn.ReturnType)
	}

	return a.ctx.Registry.Function(returnType, params, nil, false)
}
