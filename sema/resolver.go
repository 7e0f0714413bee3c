package sema

import (
	"lumenc/ast"
	"lumenc/depm"
	"lumenc/infer"
	"lumenc/report"
)

// LookupName resolves an AST name expression to the set of candidate
// definitions.  A zero-candidate result raises an unresolved-name error.
func (a *Analyzer) LookupName(node ast.ASTNode) []*depm.Defn {
	switch v := node.(type) {
	case *ast.Identifier:
		defns := a.lookupId(v.Name)
		if len(defns) == 0 {
			panic(report.RaiseKind(report.KindUnresolvedName, v.Span(), "undefined symbol: `%s`", v.Name))
		}

		return defns
	case *ast.MemberRef:
		return a.lookupMember(v)
	case *ast.Specialize:
		return []*depm.Defn{a.specialize(v)}
	case *ast.BuiltIn:
		if d, ok := v.Value.(*depm.Defn); ok {
			return []*depm.Defn{d}
		}

		report.ReportICE("builtin AST node does not reference a definition")
		return nil
	default:
		panic(report.Raise(node.Span(), "expected a name expression"))
	}
}

// lookupId walks the scope chain for a simple name: the active scopes from
// innermost out (searching composite bases where applicable), the enclosing
// module's global scope, the imported namespaces, and finally the universe.
func (a *Analyzer) lookupId(name string) []*depm.Defn {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		scope := a.scopes[i]

		if defns := scope.Lookup(name, true); len(defns) > 0 {
			// Explicit import definitions stand in for their bound values.
			if defns[0].Kind == depm.DefnExplicitImport {
				return defns[0].ImportedValues
			}

			return a.filterVisible(defns, scope.Owner())
		}

		// Template parameter scopes shadow between a member scope and its
		// enclosing scope.
		if owner := scope.Owner(); owner != nil && owner.TemplateSig != nil && owner.TemplateSig.ParamScope != nil {
			if defns := owner.TemplateSig.ParamScope.Lookup(name, false); len(defns) > 0 {
				return defns
			}
		}
	}

	// Explicit imports bind names in the global scope; whole-module imports
	// are searched next.
	for _, imported := range a.mod.ImportedNamespaces {
		if defns := imported.GlobalScope().Lookup(name, false); len(defns) > 0 {
			defns = visibleAcrossModules(defns)
			if len(defns) > 0 {
				for _, d := range defns {
					a.mod.AddXRef(d)
				}

				return defns
			}
		}
	}

	if defns, ok := a.ctx.Universe.GetSymbol(name); ok {
		return defns
	}

	return nil
}

// lookupMember resolves a qualified member access.  The qualifier must be
// prepared for member lookup before its scope is searched.
func (a *Analyzer) lookupMember(ref *ast.MemberRef) []*depm.Defn {
	qualifiers := a.LookupName(ref.Root)

	if len(qualifiers) != 1 {
		panic(report.RaiseKind(report.KindAmbiguousType, ref.Span(),
			"ambiguous qualifier in member reference"))
	}

	qual := qualifiers[0]

	switch qual.Kind {
	case depm.DefnTypeDef:
		a.PrepareDefn(qual, depm.TaskPrepMemberLookup)

		if qual.Members != nil {
			if defns := qual.Members.Lookup(ref.MemberName, true); len(defns) > 0 {
				return a.filterVisible(defns, qual)
			}
		}
	case depm.DefnNamespace, depm.DefnModule:
		if defns := qual.Members.Lookup(ref.MemberName, false); len(defns) > 0 {
			return a.filterVisible(defns, qual)
		}
	case depm.DefnExplicitImport:
		for _, bound := range qual.ImportedValues {
			if bound.Name == ref.MemberName {
				return []*depm.Defn{bound}
			}
		}
	}

	panic(report.RaiseKind(report.KindUnresolvedName, ref.Span(),
		"`%s` has no member named `%s`", qual.Name, ref.MemberName))
}

// specialize resolves an explicit template specialization: the template name
// is resolved, the type arguments analyzed, and the instance produced.
func (a *Analyzer) specialize(sp *ast.Specialize) *depm.Defn {
	candidates := a.LookupName(sp.Root)

	var template *depm.Defn
	for _, cand := range candidates {
		if cand.TemplateSig != nil {
			if template != nil {
				panic(report.RaiseKind(report.KindAmbiguousType, sp.Span(),
					"multiple templates match specialization"))
			}

			template = cand
		}
	}

	if template == nil {
		panic(report.Raise(sp.Span(), "`%s` is not a template", nameOf(sp.Root)))
	}

	if len(sp.TypeArgs) != len(template.TemplateSig.TypeVars) {
		panic(report.Raise(sp.Span(), "template `%s` takes %d type arguments but %d were given",
			template.Name, len(template.TemplateSig.TypeVars), len(sp.TypeArgs)))
	}

	env := infer.NewBindingEnv()
	for i, argAST := range sp.TypeArgs {
		env.Bind(template.TemplateSig.TypeVars[i], a.TypeFromAST(argAST))
	}

	inst, err := infer.Instantiate(a.ctx, template, env, sp.Span())
	if err != nil {
		panic(report.Raise(sp.Span(), "%s", err))
	}

	a.scheduleInstance(inst)
	return inst
}

// scheduleInstance runs the analysis a freshly-created template instance
// needs.  Builtin instances come back complete; source instances run their
// member-creation passes here.
func (a *Analyzer) scheduleInstance(inst *depm.Defn) {
	switch inst.Kind {
	case depm.DefnTypeDef:
		if !inst.Passes.IsFinished(depm.PassScopeCreation) {
			a.PrepareDefn(inst, depm.TaskPrepMemberLookup)
		}
	case depm.DefnFunction, depm.DefnMacro:
		if inst.Type == nil {
			a.analyzeFuncDefn(inst, depm.TaskPrepTypeComparison)
		}
	}
}

// filterVisible filters a candidate list by visibility from the current
// analysis position.
func (a *Analyzer) filterVisible(defns []*depm.Defn, owner *depm.Defn) []*depm.Defn {
	var visible []*depm.Defn

	for _, d := range defns {
		switch d.Visibility {
		case depm.Public:
			visible = append(visible, d)
		case depm.Protected, depm.Private:
			// Private and protected members are visible while analysis is
			// inside the declaring type (or module, for module-level names).
			if d.Module == a.mod && a.withinDefn(d.Parent) {
				visible = append(visible, d)
			}
		}
	}

	return visible
}

// withinDefn returns whether the current scope stack is enclosed by the given
// definition.
func (a *Analyzer) withinDefn(d *depm.Defn) bool {
	if d == nil {
		return true
	}

	for i := len(a.scopes) - 1; i >= 0; i-- {
		for owner := a.scopes[i].Owner(); owner != nil; owner = owner.Parent {
			if owner == d {
				return true
			}
		}
	}

	return false
}

// nameOf renders a name expression for diagnostics.
func nameOf(node ast.ASTNode) string {
	switch v := node.(type) {
	case *ast.Identifier:
		return v.Name
	case *ast.MemberRef:
		return nameOf(v.Root) + "." + v.MemberName
	case *ast.Specialize:
		return nameOf(v.Root)
	default:
		return "<expr>"
	}
}
