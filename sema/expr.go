package sema

import (
	"lumenc/ast"
	"lumenc/depm"
	"lumenc/infer"
	"lumenc/report"
	"lumenc/types"
)

// analyzeFuncBody type-checks a function body.  The body is analyzed inside a
// scope binding the function's parameters; the body expression's type must
// convert to the declared return type.
func (a *Analyzer) analyzeFuncBody(d *depm.Defn) {
	bodyScope := depm.NewScope(a.currentScope(), d)
	for _, param := range d.Params {
		bodyScope.Define(param)
	}

	a.pushScope(bodyScope)
	defer a.popScope()

	decl, ok := d.AST.(*ast.FuncDecl)
	if !ok || decl.Body == nil {
		return
	}

	bodyType := a.typeOfExpr(decl.Body)

	ft := d.FuncType()
	if ft == nil || types.IsVoid(ft.Return) || types.IsBad(bodyType) {
		return
	}

	rank, _ := types.Convert(bodyType, ft.Return, types.ConvertCoerce)
	if rank == types.Incompatible {
		a.errorOn(report.KindConversionError, decl.Body.Span(),
			"cannot convert body of type `%s` to return type `%s`",
			bodyType.Repr(), ft.Return.Repr())
	}
}

// typeOfExpr computes the type yielded by an expression.  Errors are reported
// and yield the Bad sentinel so analysis continues.
func (a *Analyzer) typeOfExpr(node ast.ASTNode) types.Type {
	switch v := node.(type) {
	case *ast.Literal:
		return a.typeOfLiteral(v)
	case *ast.Identifier, *ast.MemberRef, *ast.Specialize, *ast.BuiltIn:
		return a.typeOfNameExpr(node)
	case *ast.Call:
		return a.typeOfCall(v)
	case *ast.UnaryOp:
		return a.typeOfExpr(v.Operand)
	case *ast.NaryOp:
		return a.typeOfNaryOp(v)
	case *ast.ArrayExpr:
		elemType := a.typeOfExpr(v.Elem)
		return a.arrayTypeFor(elemType, v.Span())
	case *ast.LogicalOr:
		// In expression position, `or` is boolean.
		for _, operand := range v.Operands {
			a.typeOfExpr(operand)
		}

		return types.BoolType
	default:
		return types.BadType
	}
}

// typeOfLiteral assigns each literal its natural type.  Integer literals are
// unsized until inference settles them.
func (a *Analyzer) typeOfLiteral(lit *ast.Literal) types.Type {
	switch lit.Kind {
	case ast.LitInt:
		return types.UnsizedIntType
	case ast.LitFloat:
		return types.DoubleType
	case ast.LitChar:
		return types.CharType
	case ast.LitString:
		return a.ctx.Universe.String.Type
	case ast.LitBool:
		return types.BoolType
	default:
		return types.NullType
	}
}

// typeOfNameExpr resolves a name used in expression position.  A value
// definition yields its type; a type definition yields a type literal.
func (a *Analyzer) typeOfNameExpr(node ast.ASTNode) types.Type {
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

	d := defns[0]

	switch d.Kind {
	case depm.DefnTypeDef:
		a.PrepareDefn(d, depm.TaskPrepTypeComparison)
		if d.Type == nil {
			return types.BadType
		}

		return a.ctx.Registry.TypeLiteral(d.Type)
	case depm.DefnFunction, depm.DefnMacro:
		a.PrepareDefn(d, depm.TaskPrepTypeComparison)
		if d.Type == nil {
			return types.BadType
		}

		return d.Type
	default:
		a.PrepareDefn(d, depm.TaskPrepTypeComparison)
		a.mod.AddXRef(d)

		if d.Type == nil {
			return types.BadType
		}

		return d.Type
	}
}

/* -------------------------------------------------------------------------- */

// typeOfCall resolves a call expression: candidate overloads are gathered,
// template candidates are settled by inference, and the survivors are ranked
// by conversion quality.
func (a *Analyzer) typeOfCall(call *ast.Call) types.Type {
	argTypes := make([]types.Type, 0, len(call.Args)+len(call.KeywordArgs))
	for _, arg := range call.Args {
		argTypes = append(argTypes, a.typeOfExpr(arg))
	}
	for _, kw := range call.KeywordArgs {
		argTypes = append(argTypes, a.typeOfExpr(kw.Value))
	}

	for _, at := range argTypes {
		if types.IsBad(at) {
			return types.BadType
		}
	}

	// Calling a type literal constructs the type: resolve against its
	// constructors.
	defns := a.callCandidates(call.Func)
	if len(defns) == 0 {
		// Not a named callee: a function-typed expression is called
		// directly.
		calleeType := a.typeOfExpr(call.Func)
		if ft, ok := types.Dealias(calleeType).(*types.FunctionType); ok {
			return ft.Return
		}

		if !types.IsBad(calleeType) {
			a.errorOn(report.KindGeneral, call.Span(),
				"`%s` is not callable", calleeType.Repr())
		}

		return types.BadType
	}

	resolution := a.resolveOverloads(nameOf(call.Func), defns, argTypes, call.Span())
	if resolution == nil {
		return types.BadType
	}

	winner := resolution.Candidate.Defn
	a.mod.AddXRef(winner)

	if winner.IsCtor() || (winner.Storage == depm.StorageStatic && winner.Name == "create") {
		if enclosing := winner.EnclosingTypeDefn(); enclosing != nil && winner.IsCtor() {
			return enclosing.Type
		}
	}

	return resolution.Candidate.Signature.Return
}

// callCandidates gathers the overload set for a call's callee expression.
// Calls on type literals resolve to the type's constructors.
func (a *Analyzer) callCandidates(callee ast.ASTNode) []*depm.Defn {
	switch callee.(type) {
	case *ast.Identifier, *ast.MemberRef, *ast.Specialize, *ast.BuiltIn:
	default:
		return nil
	}

	var defns []*depm.Defn

	func() {
		defer func() {
			if x := recover(); x != nil {
				if _, ok := x.(*report.LocalCompileError); ok {
					return
				}

				panic(x)
			}
		}()

		defns = a.LookupName(callee)
	}()

	if len(defns) == 1 && defns[0].Kind == depm.DefnTypeDef {
		// Construction: the candidates are the type's constructors.
		typeDefn := defns[0]
		a.PrepareDefn(typeDefn, depm.TaskPrepConstruction)

		if typeDefn.Members == nil {
			return nil
		}

		ctors := typeDefn.Members.Lookup("construct", false)
		if len(ctors) == 0 {
			ctors = typeDefn.Members.Lookup("create", false)
		}

		return ctors
	}

	var callable []*depm.Defn
	for _, d := range defns {
		if d.Kind == depm.DefnFunction || d.Kind == depm.DefnMacro {
			callable = append(callable, d)
		}
	}

	return callable
}

// resolveOverloads settles template candidates through inference, ranks the
// concrete survivors, and reports resolution failures.
func (a *Analyzer) resolveOverloads(name string, defns []*depm.Defn, argTypes []types.Type, span *report.TextSpan) *infer.Resolution {
	var candidates []infer.Candidate

	for i, d := range defns {
		a.PrepareDefn(d, depm.TaskPrepTypeComparison)

		if d.IsTemplate() {
			if settled := a.settleTemplateCandidate(d, argTypes, i, span); settled != nil {
				candidates = append(candidates, infer.Candidate{Defn: settled, Signature: settled.FuncType()})
			}

			continue
		}

		ft := d.FuncType()
		if ft == nil {
			continue
		}

		candidates = append(candidates, infer.Candidate{Defn: d, Signature: ft})
	}

	if len(candidates) == 0 {
		a.errorOn(report.KindConversionError, span,
			"no overload of `%s` accepts the given arguments", name)
		return nil
	}

	resolution, err := infer.RankOverloads(name, candidates, argTypes, types.ConvertCoerce)
	if err != nil {
		switch err.(type) {
		case *infer.AmbiguousCallError:
			a.errorOn(report.KindAmbiguousCall, span, "%s", err)
		default:
			a.errorOn(report.KindConversionError, span, "%s", err)
		}

		return nil
	}

	return resolution
}

// settleTemplateCandidate infers template arguments for one candidate from
// the call's argument types, returning the concrete instance on success.
func (a *Analyzer) settleTemplateCandidate(template *depm.Defn, argTypes []types.Type, candIndex int, span *report.TextSpan) *depm.Defn {
	ft := template.FuncType()
	if ft == nil {
		a.resolveFuncSignature(template)
		ft = template.FuncType()
		if ft == nil {
			return nil
		}
	}

	inf := infer.NewInference(a.ctx)
	provision := types.ProvisionFor(candIndex)

	opened := inf.OpenSignature(ft, template.TemplateSig.TypeVars)
	inf.SetLiveProvisions(provision)

	for i, argType := range argTypes {
		if i >= len(opened.Params) {
			break
		}

		// Each argument bounds its parameter from below: the parameter must
		// accept the argument.
		if !inf.Constrain(types.ConstraintLowerBound, opened.Params[i].Type, argType, provision) {
			return nil
		}
	}

	if _, ok := inf.Solve(); !ok {
		return nil
	}

	env := inf.Env(template.TemplateSig.TypeVars)
	if !env.CoversAll(template.TemplateSig.TypeVars) {
		return nil
	}

	inst, err := infer.Instantiate(a.ctx, template, env, span)
	if err != nil {
		return nil
	}

	if inst.Type == nil {
		// Fresh function instance: its signature is the template's with the
		// bindings substituted.
		inst.Type = infer.Substitute(a.ctx.Registry, ft, env.Lookup)
		inst.HasBody = template.HasBody
		inst.IsExtern = template.IsExtern
		inst.IsIntrinsic = template.IsIntrinsic
	}

	return inst
}

/* -------------------------------------------------------------------------- */

// typeOfNaryOp types an n-ary operator application by folding the operands'
// common type.  Comparison operators yield bool.
func (a *Analyzer) typeOfNaryOp(op *ast.NaryOp) types.Type {
	switch op.OpName {
	case "==", "!=", "<", ">", "<=", ">=":
		for _, operand := range op.Operands {
			a.typeOfExpr(operand)
		}

		return types.BoolType
	}

	var result types.Type
	for _, operand := range op.Operands {
		operandType := a.typeOfExpr(operand)
		if types.IsBad(operandType) {
			return operandType
		}

		if result == nil {
			result = operandType
		} else if common := types.CommonBase(result, operandType); common != nil {
			result = common
		} else {
			a.errorOn(report.KindConversionError, op.Span(),
				"operands of `%s` have incompatible types `%s` and `%s`",
				op.OpName, result.Repr(), operandType.Repr())
			return types.BadType
		}
	}

	if result == nil {
		return types.BadType
	}

	return result
}
