package depm

import "lumenc/types"

// Universe is the set of definitions visible in every module without being
// imported: the root class, the builtin reference types, and the builtin
// templates the type analyzer lowers sugar onto.
type Universe struct {
	// The root scope: the final stop of every name lookup chain.
	Scope *Scope

	// Object is the implicit root class of all classes.
	Object *Defn

	// String is the builtin string class.
	String *Defn

	// Array is the builtin growable-array class template.  Array type sugar
	// (`[]T`) instantiates it.
	Array *Defn
}

// NewUniverse creates the universe for one compilation.
func NewUniverse(ctx *Context) *Universe {
	u := &Universe{Scope: NewScope(nil, nil)}

	u.Object = u.defineClass(ctx, "Object", nil)
	u.String = u.defineClass(ctx, "String", u.Object)
	u.Array = u.defineArrayTemplate(ctx)

	for name, prim := range builtinPrimitives {
		u.definePrimitive(ctx, name, prim)
	}

	return u
}

// builtinPrimitives names the primitive types visible in every scope.
var builtinPrimitives = map[string]*types.PrimitiveType{
	"Void":   types.VoidType,
	"Bool":   types.BoolType,
	"Char":   types.CharType,
	"Int8":   types.Int8Type,
	"Int16":  types.Int16Type,
	"Int32":  types.Int32Type,
	"Int64":  types.Int64Type,
	"UInt8":  types.Uint8Type,
	"UInt16": types.Uint16Type,
	"UInt32": types.Uint32Type,
	"UInt64": types.Uint64Type,
	"Float":  types.FloatType,
	"Double": types.DoubleType,
}

// definePrimitive creates the type definition binding a primitive's name.
func (u *Universe) definePrimitive(ctx *Context, name string, prim *types.PrimitiveType) {
	d := &Defn{
		Kind:          DefnTypeDef,
		Name:          name,
		DispatchIndex: -1,
		traits:        TraitSingular,
		Type:          prim,
	}

	for p := Pass(0); p < PassCount; p++ {
		d.Passes.Finish(p)
	}

	ctx.Names.Intern(name)
	u.Scope.Define(d)
}

// GetSymbol attempts to get a definition with the given name from the
// universe.
func (u *Universe) GetSymbol(name string) ([]*Defn, bool) {
	defns := u.Scope.Lookup(name, false)
	return defns, len(defns) > 0
}

// defineClass creates an AST-less builtin class.  The compiler is responsible
// for the base list of definitions it creates itself.
func (u *Universe) defineClass(ctx *Context, name string, super *Defn) *Defn {
	d := &Defn{
		Kind:          DefnTypeDef,
		Name:          name,
		DispatchIndex: -1,
		traits:        TraitSingular,
	}
	d.Members = NewScope(u.Scope, d)

	ct := ctx.Registry.Composite(types.KindClass, d)
	if super != nil {
		superCt := super.CompositeType()
		ct.Bases = append(ct.Bases, superCt)
		ct.SetSuper(superCt)
	}

	// Builtin classes carry no analyzable AST: their passes are final.
	for p := Pass(0); p < PassCount; p++ {
		d.Passes.Finish(p)
	}

	d.Type = ct
	ctx.Names.Intern(name)
	u.Scope.Define(d)
	return d
}

// defineArrayTemplate creates the builtin Array[T] class template.
func (u *Universe) defineArrayTemplate(ctx *Context) *Defn {
	d := &Defn{
		Kind:          DefnTypeDef,
		Name:          "Array",
		DispatchIndex: -1,
	}
	d.Members = NewScope(u.Scope, d)

	tsig := NewTemplateSignature(d)
	elemVar := ctx.Registry.TypeVar("T", nil)
	tsig.TypeVars = append(tsig.TypeVars, elemVar)
	tsig.ParamScope = NewScope(u.Scope, d)

	// Instances are populated directly since there is no AST to walk: each
	// instance is a class deriving Object with its element type recorded as a
	// constant member.
	tsig.Populate = func(inst *Defn, args []types.Type) {
		ct := ctx.Registry.Composite(types.KindClass, inst)
		objectCt := u.Object.CompositeType()
		ct.Bases = append(ct.Bases, objectCt)
		ct.SetSuper(objectCt)
		inst.Type = ct

		elemType := &Defn{
			Kind:          DefnLet,
			Name:          "element_type",
			Module:        inst.Module,
			Parent:        inst,
			Storage:       StorageStatic,
			DispatchIndex: -1,
			InitIsConst:   true,
			traits:        TraitSingular | TraitSynthetic | TraitFinal,
			Type:          args[0],
		}

		ctx.Names.Intern(elemType.Name)
		inst.Members.Define(elemType)

		for p := Pass(0); p < PassCount; p++ {
			inst.Passes.Finish(p)
		}
	}

	d.TemplateSig = tsig
	ctx.Names.Intern(d.Name)
	u.Scope.Define(d)
	return d
}
