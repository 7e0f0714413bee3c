package depm

import (
	"strings"

	"lumenc/types"
)

// TemplateSignature is the generic signature of a template definition: its
// ordered type variables and the scope they are visible in.  The pattern the
// signature describes is the owning definition's AST.
type TemplateSignature struct {
	// The definition owning the signature.
	Owner *Defn

	// The ordered template type variables, each with an optional upper-bound
	// constraint.
	TypeVars []*types.TypeVariable

	// The scope binding the type-variable names for name resolution within
	// the template body.
	ParamScope *Scope

	// The instance cache, keyed by the linkage spelling of the bound type
	// tuple.
	instances map[string]*Defn

	// Populate fills in a freshly-created instance of an AST-less template.
	// Templates declared in source leave this nil: their instances are built
	// by walking the declaring AST.
	Populate func(inst *Defn, args []types.Type)
}

// NewTemplateSignature creates an empty template signature for the given
// definition.
func NewTemplateSignature(owner *Defn) *TemplateSignature {
	return &TemplateSignature{
		Owner:     owner,
		instances: make(map[string]*Defn),
	}
}

// InstanceKey computes the cache key for a tuple of bound types.
func (ts *TemplateSignature) InstanceKey(args []types.Type) string {
	sb := strings.Builder{}
	for i, arg := range args {
		if i != 0 {
			sb.WriteRune(',')
		}

		sb.WriteString(types.LinkageName(arg))
	}

	return sb.String()
}

// LookupInstance returns the cached instance for the given bound types, if
// one exists.
func (ts *TemplateSignature) LookupInstance(args []types.Type) (*Defn, bool) {
	inst, ok := ts.instances[ts.InstanceKey(args)]
	return inst, ok
}

// StoreInstance records a freshly-synthesised instance in the cache.
func (ts *TemplateSignature) StoreInstance(args []types.Type, inst *Defn) {
	ts.instances[ts.InstanceKey(args)] = inst
}

// TemplateInstance records how an instantiated definition was produced: the
// template it came from and the tuple of types bound to its variables.
type TemplateInstance struct {
	// The template definition this instance was cloned from.
	Template *Defn

	// The bound types, parallel to the template's type variables.
	Args []types.Type
}
