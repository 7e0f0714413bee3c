package infer

import "lumenc/types"

// BindingEnv maps a template's type variables to the types bound to them.
// Environments are built up during inference or supplied directly from
// explicit specialization arguments.
type BindingEnv struct {
	bindings map[*types.TypeVariable]types.Type
}

// NewBindingEnv creates an empty binding environment.
func NewBindingEnv() *BindingEnv {
	return &BindingEnv{bindings: make(map[*types.TypeVariable]types.Type)}
}

// Bind records the type bound to a variable.  Binding dereferences solved
// assignments so environments only ever hold settled types.
func (env *BindingEnv) Bind(tv *types.TypeVariable, typ types.Type) {
	env.bindings[tv] = types.Dealias(typ)
}

// Get returns the binding for a variable, if one exists.
func (env *BindingEnv) Get(tv *types.TypeVariable) (types.Type, bool) {
	typ, ok := env.bindings[tv]
	return typ, ok
}

// Lookup is the substitution view of the environment: it returns nil for
// unbound variables.
func (env *BindingEnv) Lookup(tv *types.TypeVariable) types.Type {
	return env.bindings[tv]
}

// CoversAll returns whether every one of the given variables is bound.
func (env *BindingEnv) CoversAll(tvs []*types.TypeVariable) bool {
	for _, tv := range tvs {
		if _, ok := env.bindings[tv]; !ok {
			return false
		}
	}

	return true
}

// ArgsFor returns the bound types in the order of the given variables.
func (env *BindingEnv) ArgsFor(tvs []*types.TypeVariable) []types.Type {
	args := make([]types.Type, len(tvs))
	for i, tv := range tvs {
		args[i] = env.bindings[tv]
	}

	return args
}
