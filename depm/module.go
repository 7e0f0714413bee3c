package depm

import (
	"hash/fnv"

	"lumenc/ast"
	"lumenc/types"
)

// Module is one compiled module: the unit of separate analysis and the unit
// the emitter consumes.
type Module struct {
	// The module's unique ID, derived from its absolute path.
	ID uint64

	// The module's dotted package name.
	Name string

	// The absolute and representative paths of the module's source.
	AbsPath, ReprPath string

	// The module's root definition.  Its member scope is the module's global
	// scope.
	Root *Defn

	// The module AST the parser delivered.
	AST *ast.ModuleAST

	// The namespaces imported into the module's files.
	ImportedNamespaces []*Module

	// The set of definitions this module exports.
	Exports []*Defn

	// The set of external definitions this module references.
	XRefs map[*Defn]struct{}
}

// NewModule creates a new module and its root definition for the given AST.
func NewModule(moduleAST *ast.ModuleAST) *Module {
	mod := &Module{
		ID:       GenerateIDFromPath(moduleAST.AbsPath),
		Name:     moduleAST.PkgName,
		AbsPath:  moduleAST.AbsPath,
		ReprPath: moduleAST.ReprPath,
		AST:      moduleAST,
		XRefs:    make(map[*Defn]struct{}),
	}

	root := &Defn{
		Kind:          DefnModule,
		Name:          moduleAST.PkgName,
		Module:        mod,
		DispatchIndex: -1,
		traits:        TraitSingular,
	}
	root.Members = NewScope(nil, root)

	mod.Root = root
	return mod
}

// GlobalScope returns the module's global scope.
func (m *Module) GlobalScope() *Scope {
	return m.Root.Members
}

// AddExport records a definition the module exports.
func (m *Module) AddExport(d *Defn) {
	m.Exports = append(m.Exports, d)
}

// AddXRef records an external definition referenced by the module.  Local
// definitions are ignored.
func (m *Module) AddXRef(d *Defn) {
	if d.Module != m {
		m.XRefs[d] = struct{}{}
	}
}

// GenerateIDFromPath generates a module ID from an absolute path.
func GenerateIDFromPath(abspath string) uint64 {
	a := fnv.New64a()
	a.Write([]byte(abspath))
	return a.Sum64()
}

/* -------------------------------------------------------------------------- */

// Context is the per-compilation state threaded explicitly through all
// analyses: the type registry, the name interner, the builtin universe, and
// the module graph.  Nothing here lives in a process global.
type Context struct {
	// The type registry for the compilation.
	Registry *types.Registry

	// The name table for the compilation.
	Names *NameTable

	// The universe of builtin definitions.
	Universe *Universe

	// The modules under compilation, keyed by ID.
	Modules map[uint64]*Module
}

// NewContext creates a fresh compilation context with its universe
// initialized.
func NewContext() *Context {
	ctx := &Context{
		Registry: types.NewRegistry(),
		Names:    NewNameTable(),
		Modules:  make(map[uint64]*Module),
	}

	ctx.Universe = NewUniverse(ctx)
	return ctx
}

// AddModule registers a module with the context.
func (ctx *Context) AddModule(m *Module) {
	ctx.Modules[m.ID] = m
}
