package codegen

import (
	"lumenc/depm"
	"lumenc/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
)

// Generator converts one analyzed module into an LLVM module: type
// definitions for its composites, dispatch-table globals, function
// declarations for its functions, and globals for its variables.  Function
// bodies belong to the emitter proper; the middle-end's output boundary is
// the declarations and layouts generated here.
type Generator struct {
	// ctx is the compilation context.
	ctx *depm.Context

	// pkg is the module being converted.
	pkg *depm.Module

	// mod is the LLVM module being generated.
	mod *ir.Module

	// globalTypes caches the named struct types of lowered composites.
	globalTypes map[*types.CompositeType]lltypes.Type

	// funcDecls caches declared functions by definition.
	funcDecls map[*depm.Defn]*ir.Func
}

// NewGenerator creates a generator for the given module.
func NewGenerator(ctx *depm.Context, pkg *depm.Module) *Generator {
	return &Generator{
		ctx:         ctx,
		pkg:         pkg,
		mod:         ir.NewModule(),
		globalTypes: make(map[*types.CompositeType]lltypes.Type),
		funcDecls:   make(map[*depm.Defn]*ir.Func),
	}
}

// Generate produces the LLVM module for the package.
func (g *Generator) Generate() *ir.Module {
	// Declare referenced external definitions first so local definitions can
	// refer to them.
	for xref := range g.pkg.XRefs {
		g.genDefn(xref, true)
	}

	g.pkg.GlobalScope().Members(func(d *depm.Defn) bool {
		g.genDefn(d, false)
		return true
	})

	return g.mod
}

// genDefn generates the declarations for one definition.
func (g *Generator) genDefn(d *depm.Defn, external bool) {
	if !d.IsSingular() || d.IsTemplate() {
		// Nothing is emitted for unbound templates.
		return
	}

	switch d.Kind {
	case depm.DefnTypeDef:
		g.genTypeDefn(d)
	case depm.DefnFunction:
		g.genFuncDecl(d)
	case depm.DefnVar, depm.DefnLet:
		g.genGlobalVar(d, external)
	case depm.DefnNamespace:
		if d.Members != nil {
			d.Members.Members(func(member *depm.Defn) bool {
				g.genDefn(member, external)
				return true
			})
		}
	}
}

// genTypeDefn lowers a type definition: the struct body, the instance-method
// vtable, and one itable global per implemented interface.
func (g *Generator) genTypeDefn(d *depm.Defn) {
	ct := d.CompositeType()
	if ct == nil {
		return
	}

	g.compositeBodyType(ct)

	if ct.Kind != types.KindClass {
		return
	}

	g.genDispatchTable(d.LinkageName()+".vtable", ct.InstanceMethods)

	for _, itable := range ct.Interfaces {
		name := d.LinkageName() + ".itable." + types.LinkageName(itable.Iface)
		g.genDispatchTable(name, itable.Methods)
	}

	// Emit member declarations for the type's methods.
	if d.Members != nil {
		d.Members.Members(func(member *depm.Defn) bool {
			if member.Kind == depm.DefnFunction && member.IsSingular() {
				g.genFuncDecl(member)
			}

			return true
		})
	}
}

// genDispatchTable emits a dispatch table as a global array of function
// pointers, parallel to the method slots.
func (g *Generator) genDispatchTable(name string, slots []*types.MethodSlot) {
	entries := make([]constant.Constant, len(slots))
	for i, slot := range slots {
		fn := g.methodFuncDecl(slot)
		if fn != nil {
			entries[i] = constant.NewBitCast(fn, lltypes.I8Ptr)
		} else {
			entries[i] = constant.NewNull(lltypes.I8Ptr)
		}
	}

	arr := constant.NewArray(lltypes.NewArray(uint64(len(entries)), lltypes.I8Ptr), entries...)
	g.mod.NewGlobalDef(name, arr)
}

// methodFuncDecl returns the function declaration backing a dispatch slot,
// declaring it on first use.
func (g *Generator) methodFuncDecl(slot *types.MethodSlot) *ir.Func {
	d, ok := slot.Defn.(*depm.Defn)
	if !ok {
		return nil
	}

	return g.genFuncDecl(d)
}

// genFuncDecl declares a function with its mangled name and lowered
// signature.
func (g *Generator) genFuncDecl(d *depm.Defn) *ir.Func {
	if fn, ok := g.funcDecls[d]; ok {
		return fn
	}

	ft := d.FuncType()
	if ft == nil {
		return nil
	}

	var params []*ir.Param
	if ft.Self != nil {
		params = append(params, ir.NewParam("self", g.convParamType(ft.Self)))
	}

	for _, param := range ft.Params {
		paramType := g.convParamType(param.Type)
		if param.ByRef {
			paramType = lltypes.NewPointer(g.convType(param.Type))
		}

		params = append(params, ir.NewParam(param.Name, paramType))
	}

	fn := g.mod.NewFunc(d.LinkageName(), g.convParamType(ft.Return), params...)
	g.funcDecls[d] = fn
	return fn
}

// genGlobalVar declares a module-level variable.  Externals are declared
// without initializers; locals get a zero initializer and let the emitter
// fill in constant values.
func (g *Generator) genGlobalVar(d *depm.Defn, external bool) {
	llType := g.convType(d.Type)

	if external {
		g.mod.NewGlobal(d.LinkageName(), llType)
		return
	}

	g.mod.NewGlobalDef(d.LinkageName(), constant.NewZeroInitializer(llType))
}
