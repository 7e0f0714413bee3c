package infer

import (
	"lumenc/depm"
	"lumenc/types"
)

// Inference is one constraint-solving scope: typically the resolution of a
// single call or specialization.  It owns the type assignments opened for the
// template variables involved and accumulates constraints on them until
// solving.
type Inference struct {
	ctx *depm.Context

	// The assignments opened in this scope, keyed by their variables.
	assignments map[*types.TypeVariable]*types.TypeAssignment

	// The assignments in open order.
	order []*types.TypeAssignment
}

// NewInference creates a fresh inference scope.
func NewInference(ctx *depm.Context) *Inference {
	return &Inference{
		ctx:         ctx,
		assignments: make(map[*types.TypeVariable]*types.TypeAssignment),
	}
}

// AssignmentFor returns the scope's assignment for the given variable,
// opening one on first request.
func (inf *Inference) AssignmentFor(tv *types.TypeVariable) *types.TypeAssignment {
	if ta, ok := inf.assignments[tv]; ok {
		return ta
	}

	ta := inf.ctx.Registry.TypeAssign(tv, inf)
	if tv.UpperBound != nil {
		ta.AddConstraint(&types.Constraint{
			Kind:  types.ConstraintUpperBound,
			Value: tv.UpperBound,
		})
	}

	inf.assignments[tv] = ta
	inf.order = append(inf.order, ta)
	return ta
}

// OpenSignature rewrites a template function signature, replacing each of the
// given variables with this scope's assignment for it.  Constraints applied
// against the opened signature accumulate on the assignments.
func (inf *Inference) OpenSignature(sig *types.FunctionType, tvs []*types.TypeVariable) *types.FunctionType {
	opened := Substitute(inf.ctx.Registry, sig, func(tv *types.TypeVariable) types.Type {
		for _, candidate := range tvs {
			if candidate == tv {
				return inf.AssignmentFor(tv)
			}
		}

		return nil
	})

	return opened.(*types.FunctionType)
}

// SetLiveProvisions narrows which overload candidates are still live,
// enabling and disabling guarded constraints accordingly.
func (inf *Inference) SetLiveProvisions(live types.ProvisionSet) {
	for _, ta := range inf.order {
		ta.LiveProvisions = live
	}
}

/* -------------------------------------------------------------------------- */

// Constrain applies a constraint of the given kind between a target type
// (which may contain open assignments) and a value type.  It returns whether
// the constraint is satisfiable as far as can be known without solving.
func (inf *Inference) Constrain(kind types.ConstraintKind, target, value types.Type, provisions types.ProvisionSet) bool {
	target = types.DerefAssignment(types.Dealias(target))
	value = types.DerefAssignment(types.Dealias(value))

	if ta, ok := target.(*types.TypeAssignment); ok {
		ta.AddConstraint(&types.Constraint{Kind: kind, Value: value, Provisions: provisions})
		return true
	}

	if ta, ok := value.(*types.TypeAssignment); ok {
		ta.AddConstraint(&types.Constraint{Kind: flipBound(kind), Value: target, Provisions: provisions})
		return true
	}

	// Both sides concrete at this level: recurse structurally where the
	// shapes match, otherwise check the bound directly.
	switch tv := target.(type) {
	case *types.FunctionType:
		if fv, ok := value.(*types.FunctionType); ok && len(tv.Params) == len(fv.Params) {
			for i, param := range tv.Params {
				// Parameter positions are invariant.
				if !inf.Constrain(types.ConstraintExact, param.Type, fv.Params[i].Type, provisions) {
					return false
				}
			}

			return inf.Constrain(kind, tv.Return, fv.Return, provisions)
		}
	case *types.TupleType:
		if vv, ok := value.(*types.TupleType); ok && len(tv.Members) == len(vv.Members) {
			for i, member := range tv.Members {
				if !inf.Constrain(kind, member, vv.Members[i], provisions) {
					return false
				}
			}

			return true
		}
	case *types.AddressType:
		if vv, ok := value.(*types.AddressType); ok {
			return inf.Constrain(types.ConstraintExact, tv.Pointee, vv.Pointee, provisions)
		}
	case *types.NativeArrayType:
		if vv, ok := value.(*types.NativeArrayType); ok && tv.Length == vv.Length {
			return inf.Constrain(types.ConstraintExact, tv.Elem, vv.Elem, provisions)
		}
	}

	return satisfies(kind, target, value)
}

// flipBound mirrors a constraint kind across the relation: a lower bound on
// one side is an upper bound on the other.
func flipBound(kind types.ConstraintKind) types.ConstraintKind {
	switch kind {
	case types.ConstraintLowerBound:
		return types.ConstraintUpperBound
	case types.ConstraintUpperBound:
		return types.ConstraintLowerBound
	default:
		return types.ConstraintExact
	}
}

// satisfies checks a fully-concrete constraint.
func satisfies(kind types.ConstraintKind, target, value types.Type) bool {
	switch kind {
	case types.ConstraintExact:
		return types.Equals(target, value)
	case types.ConstraintLowerBound:
		// The target must accept a value of the bound's type.
		if types.IsSubtype(value, target) {
			return true
		}

		rank, _ := types.Convert(value, target, 0)
		return rank != types.Incompatible
	default:
		return types.IsSubtype(target, value)
	}
}

/* -------------------------------------------------------------------------- */

// Solve finds a singular solution for every assignment in the scope.  It
// returns the unsolved assignment on failure so the caller can name it in a
// diagnostic.
func (inf *Inference) Solve() (failed *types.TypeAssignment, ok bool) {
	for _, ta := range inf.order {
		if ta.FindSingularSolution() == nil {
			return ta, false
		}
	}

	return nil, true
}

// Env builds a binding environment from the solved assignments for the given
// variables.
func (inf *Inference) Env(tvs []*types.TypeVariable) *BindingEnv {
	env := NewBindingEnv()
	for _, tv := range tvs {
		if ta, ok := inf.assignments[tv]; ok && ta.Value != nil {
			env.Bind(tv, ta.Value)
		}
	}

	return env
}
