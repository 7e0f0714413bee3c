package depm

import "lumenc/types"

// Scope is an order-preserving multimap from names to definition lists, with
// an explicit parent link.  Member iteration is insertion-ordered: field
// numbering and constructor synthesis depend on declaration order.
//
// Scopes are mutated only during their owning definition's scope-creation
// pass; afterwards the member list is read-only aside from the orchestrator
// appending synthesised definitions.
type Scope struct {
	// The scope's parent, if any.
	parent *Scope

	// The definition owning the scope, if any.
	owner *Defn

	// The ordered list of defined names, without duplicates.
	names []string

	// The definition lists keyed by name.
	table map[string][]*Defn
}

// NewScope creates a new scope with the given parent and owner.
func NewScope(parent *Scope, owner *Defn) *Scope {
	return &Scope{
		parent: parent,
		owner:  owner,
		table:  make(map[string][]*Defn),
	}
}

// Parent returns the scope's parent scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Owner returns the definition owning the scope.
func (s *Scope) Owner() *Defn {
	return s.owner
}

// Define appends a definition to the scope under its name and links the
// definition to the scope's owner.
func (s *Scope) Define(d *Defn) {
	if _, ok := s.table[d.Name]; !ok {
		s.names = append(s.names, d.Name)
	}

	s.table[d.Name] = append(s.table[d.Name], d)

	if d.Parent == nil {
		d.Parent = s.owner
	}
}

// Lookup returns the definitions bound to the given name.  When inherit is
// set and the scope belongs to a composite type, the type's bases are
// searched as well, primary base first, breadth-first.
func (s *Scope) Lookup(name string, inherit bool) []*Defn {
	if defns, ok := s.table[name]; ok {
		return defns
	}

	if !inherit || s.owner == nil {
		return nil
	}

	ct := s.owner.CompositeType()
	if ct == nil {
		return nil
	}

	// Breadth-first over the base graph; the base list already leads with the
	// primary base.
	queue := append([]*types.CompositeType(nil), ct.Bases...)
	visited := make(map[*types.CompositeType]struct{})

	for len(queue) > 0 {
		base := queue[0]
		queue = queue[1:]

		if _, ok := visited[base]; ok {
			continue
		}
		visited[base] = struct{}{}

		if baseDefn, ok := base.Defn().(*Defn); ok && baseDefn.Members != nil {
			if defns, ok := baseDefn.Members.table[name]; ok {
				return defns
			}
		}

		queue = append(queue, base.Bases...)
	}

	return nil
}

// Names returns the defined names in insertion order.
func (s *Scope) Names() []string {
	return s.names
}

// Get returns the definitions bound locally to the given name.
func (s *Scope) Get(name string) []*Defn {
	return s.table[name]
}

// Members iterates over all definitions in insertion order.  Definitions
// sharing a name are visited in definition order.
func (s *Scope) Members(visit func(d *Defn) bool) {
	for _, name := range s.names {
		for _, d := range s.table[name] {
			if !visit(d) {
				return
			}
		}
	}
}

// Entries iterates over the name table in insertion order, handing each name
// its full definition list.
func (s *Scope) Entries(visit func(name string, defns []*Defn) bool) {
	for _, name := range s.names {
		if !visit(name, s.table[name]) {
			return
		}
	}
}
