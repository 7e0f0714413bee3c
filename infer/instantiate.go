package infer

import (
	"fmt"

	"lumenc/depm"
	"lumenc/report"
	"lumenc/types"
)

// Instantiate produces the definition for a template bound through the given
// environment.  Every template variable must be bound.  Instances are cached
// on the template signature keyed by the tuple of bound types: repeated
// instantiation with an equal environment returns the identical definition.
//
// The returned instance refers to the same AST as the template; the caller is
// responsible for scheduling its analysis passes.  Builtin templates carry a
// populate hook instead of an AST and come back fully analyzed.
func Instantiate(ctx *depm.Context, template *depm.Defn, env *BindingEnv, span *report.TextSpan) (*depm.Defn, error) {
	tsig := template.TemplateSig
	if tsig == nil {
		return nil, fmt.Errorf("`%s` is not a template", template.Name)
	}

	if !env.CoversAll(tsig.TypeVars) {
		return nil, fmt.Errorf("missing bindings for template parameters of `%s`", template.Name)
	}

	// Check declared upper bounds before anything else.
	for _, tv := range tsig.TypeVars {
		bound, _ := env.Get(tv)
		if tv.UpperBound != nil && !types.IsSubtype(bound, tv.UpperBound) {
			return nil, fmt.Errorf("type `%s` does not satisfy the bound `%s` of parameter `%s`",
				bound.Repr(), tv.UpperBound.Repr(), tv.Name)
		}
	}

	args := env.ArgsFor(tsig.TypeVars)

	if inst, ok := tsig.LookupInstance(args); ok {
		return inst, nil
	}

	inst := &depm.Defn{
		Kind:          template.Kind,
		Name:          template.Name,
		Parent:        template.Parent,
		Module:        template.Module,
		Visibility:    template.Visibility,
		Storage:       template.Storage,
		AST:           template.AST,
		Span:          span,
		DispatchIndex: -1,
		TemplateInst: &depm.TemplateInstance{
			Template: template,
			Args:     args,
		},
	}
	inst.CopyTrait(template, depm.TraitFinal|depm.TraitAbstract|depm.TraitNonreflective)
	inst.AddTrait(depm.TraitSynthetic)

	if allSingular(args) {
		inst.AddTrait(depm.TraitSingular)
	}

	if template.Members != nil {
		inst.Members = depm.NewScope(template.Members.Parent(), inst)
	}

	// Rebind the template parameter names to the bound types so names inside
	// the instance's members resolve without further substitution.
	if tsig.ParamScope != nil {
		instSig := depm.NewTemplateSignature(inst)
		instSig.TypeVars = tsig.TypeVars
		instSig.ParamScope = depm.NewScope(tsig.ParamScope.Parent(), inst)

		for i, tv := range tsig.TypeVars {
			bound := depm.NewSyntheticDefn(depm.DefnTypeDef, inst.Module, tv.Name)
			bound.Parent = inst
			bound.Type = args[i]
			bound.AddTrait(depm.TraitSingular)
			instSig.ParamScope.Define(bound)
		}

		inst.TemplateSig = instSig
	}

	// Type templates declare their composite up front, like any other type
	// definition, so base lists and member lookups have a type to hang off.
	if inst.Kind == depm.DefnTypeDef && tsig.Populate == nil {
		if tct := template.CompositeType(); tct != nil {
			inst.Type = ctx.Registry.Composite(tct.Kind, inst)
		}
	}

	// The instance enters the cache before population so recursive uses of
	// the template inside its own members resolve to this instance.
	tsig.StoreInstance(args, inst)

	if tsig.Populate != nil {
		tsig.Populate(inst, args)
	}

	return inst, nil
}

func allSingular(args []types.Type) bool {
	for _, arg := range args {
		if !types.IsSingular(arg) {
			return false
		}
	}

	return true
}
