package sema

import (
	"lumenc/ast"
	"lumenc/depm"
	"lumenc/report"
	"lumenc/types"
)

// analyzeFuncDefn resolves a function definition's signature, and for
// code-generation tasks walks its body.  Signature resolution is guarded by
// the method pass; full analysis by the completion pass.
func (a *Analyzer) analyzeFuncDefn(d *depm.Defn, task depm.AnalysisTask) bool {
	if d.IsTemplate() || d.IsTemplateMember() {
		// Unbound templates resolve no further than their signature scope.
		return true
	}

	if ok, circular := d.Passes.Begin(depm.PassMethod, false); circular {
		a.errorOn(report.KindCircularDependency, d.Span,
			"circular dependency while resolving signature of `%s`", d.Name)
		return false
	} else if ok {
		a.resolveFuncSignature(d)
		d.Passes.Finish(depm.PassMethod)
	}

	if task != depm.TaskPrepCodeGeneration {
		return true
	}

	if ok, _ := d.Passes.Begin(depm.PassCompletion, true); ok {
		if d.HasBody {
			a.analyzeFuncBody(d)
		}

		d.Passes.Finish(depm.PassCompletion)
	}

	return !d.Passes.HasFailed(depm.PassMethod)
}

// resolveFuncSignature builds the function type of a function definition from
// its declared parameter and return types.
func (a *Analyzer) resolveFuncSignature(d *depm.Defn) {
	decl, ok := d.AST.(*ast.FuncDecl)
	if !ok {
		// Synthesised functions carry their type from birth.
		return
	}

	if d.TemplateSig != nil && d.TemplateSig.ParamScope != nil {
		a.pushScope(d.TemplateSig.ParamScope)
		defer a.popScope()
	}

	params := make([]types.Param, len(decl.Params))
	d.Params = make([]*depm.Defn, len(decl.Params))

	for i, paramDecl := range decl.Params {
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

		paramDefn := depm.NewSyntheticDefn(depm.DefnParameter, a.mod, paramDecl.Name)
		paramDefn.Parent = d
		paramDefn.Type = paramType
		paramDefn.Storage = depm.StorageLocal
		paramDefn.Init = paramDecl.Default
		a.ctx.Names.Intern(paramDecl.Name)
		d.Params[i] = paramDefn
	}

	var returnType types.Type = types.VoidType
	if decl.ReturnType != nil {
		returnType = a.TypeFromAST(decl.ReturnType)
	}

	var selfType types.Type
	if d.Storage == depm.StorageInstance {
		if enclosing := d.EnclosingTypeDefn(); enclosing != nil {
			selfType = enclosing.Type
		}
	}

	d.Type = a.ctx.Registry.Function(returnType, params, selfType, d.Storage == depm.StorageStatic)
}

/* -------------------------------------------------------------------------- */

// analyzeValueDefn resolves the type of a var, let, or parameter definition.
func (a *Analyzer) analyzeValueDefn(d *depm.Defn, task depm.AnalysisTask) bool {
	if ok, circular := d.Passes.Begin(depm.PassField, false); circular {
		a.errorOn(report.KindCircularDependency, d.Span,
			"circular dependency while resolving type of `%s`", d.Name)
		return false
	} else if !ok {
		return !d.Passes.HasFailed(depm.PassField)
	}

	defer d.Passes.Finish(depm.PassField)

	decl, ok := d.AST.(*ast.VarDecl)
	if !ok {
		// Parameters and synthesised variables are typed at creation.
		return true
	}

	if decl.Type != nil {
		d.Type = a.TypeFromAST(decl.Type)
	} else if decl.Init != nil {
		d.Type = a.typeOfExpr(decl.Init)
	} else {
		a.errorOn(report.KindGeneral, d.Span,
			"`%s` needs a type annotation or an initializer", d.Name)
		d.Type = types.BadType
		return false
	}

	// A non-constant let is a final var with a required initializer.
	if d.Kind == depm.DefnLet && !d.InitIsConst && decl.Init == nil {
		a.errorOn(report.KindMissingInit, d.Span,
			"`%s` must be initialized where it is declared", d.Name)
		return false
	}

	if task == depm.TaskPrepCodeGeneration {
		a.PrepareType(d.Type, depm.TaskPrepTypeGeneration)
	}

	return true
}

// analyzePropertyDefn resolves a property or indexer definition and its
// accessors.
func (a *Analyzer) analyzePropertyDefn(d *depm.Defn, task depm.AnalysisTask) bool {
	if ok, circular := d.Passes.Begin(depm.PassMethod, false); circular {
		a.errorOn(report.KindCircularDependency, d.Span,
			"circular dependency while resolving property `%s`", d.Name)
		return false
	} else if ok {
		switch decl := d.AST.(type) {
		case *ast.PropertyDecl:
			if decl.Type != nil {
				d.Type = a.TypeFromAST(decl.Type)
			}
		case *ast.IndexerDecl:
			if decl.Type != nil {
				d.Type = a.TypeFromAST(decl.Type)
			}
		}

		if d.Getter != nil {
			a.analyzeFuncDefn(d.Getter, task)

			// A getter takes no parameters and returns the property type.
			if d.Getter.Type == nil && d.Type != nil {
				selfType := a.selfTypeFor(d)
				d.Getter.Type = a.ctx.Registry.Function(d.Type, nil, selfType, false)
			}
		}

		if d.Setter != nil {
			a.analyzeFuncDefn(d.Setter, task)

			if d.Setter.Type == nil && d.Type != nil {
				selfType := a.selfTypeFor(d)
				d.Setter.Type = a.ctx.Registry.Function(types.VoidType,
					[]types.Param{{Name: "value", Type: d.Type}}, selfType, false)
			}
		}

		d.Passes.Finish(depm.PassMethod)
	}

	return true
}

// selfTypeFor returns the enclosing composite type of a member definition.
func (a *Analyzer) selfTypeFor(d *depm.Defn) types.Type {
	if enclosing := d.EnclosingTypeDefn(); enclosing != nil {
		return enclosing.Type
	}

	return nil
}

/* -------------------------------------------------------------------------- */

// analyzeEnumDefn finalises an enum definition.  The enum's base type and
// value list are recorded at scope creation; analysis only validates them.
func (a *Analyzer) analyzeEnumDefn(d *depm.Defn) bool {
	if ok, _ := d.Passes.Begin(depm.PassCompletion, true); !ok {
		return true
	}

	defer d.Passes.Finish(depm.PassCompletion)

	et := d.Type.(*types.EnumType)
	seen := make(map[string]struct{}, len(et.Values))
	for _, value := range et.Values {
		if _, ok := seen[value]; ok {
			a.errorOn(report.KindDuplicateDefinition, d.Span,
				"enum value `%s` defined multiple times", value)
		}

		seen[value] = struct{}{}
		a.ctx.Names.Intern(value)
	}

	return true
}

// analyzeAliasDefn resolves the target of a type alias.
func (a *Analyzer) analyzeAliasDefn(d *depm.Defn) bool {
	if ok, circular := d.Passes.Begin(depm.PassCompletion, false); circular {
		a.errorOn(report.KindCircularDependency, d.Span,
			"alias `%s` refers to itself", d.Name)
		return false
	} else if !ok {
		return true
	}

	defer d.Passes.Finish(depm.PassCompletion)

	decl := d.AST.(*ast.TypeDecl)
	at := d.Type.(*types.AliasType)
	at.Resolve(a.TypeFromAST(decl.Target))

	return true
}
