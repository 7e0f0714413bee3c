package depm

import (
	"strings"

	"lumenc/ast"
	"lumenc/report"
	"lumenc/types"
)

// DefnKind identifies what kind of program entity a definition declares.
// This must be one of the enumerated definition kinds below.
type DefnKind int

// Enumeration of definition kinds.
const (
	DefnModule = DefnKind(iota)
	DefnNamespace
	DefnTypeDef
	DefnVar
	DefnLet
	DefnProperty
	DefnIndexer
	DefnFunction
	DefnMacro
	DefnParameter
	DefnExplicitImport
)

func (dk DefnKind) String() string {
	switch dk {
	case DefnModule:
		return "module"
	case DefnNamespace:
		return "namespace"
	case DefnTypeDef:
		return "type"
	case DefnVar:
		return "var"
	case DefnLet:
		return "let"
	case DefnProperty:
		return "property"
	case DefnIndexer:
		return "indexer"
	case DefnFunction:
		return "def"
	case DefnMacro:
		return "macro"
	case DefnParameter:
		return "param"
	default:
		return "import"
	}
}

// IsOverloadable returns whether multiple definitions of this kind may share
// one name in a scope.
func (dk DefnKind) IsOverloadable() bool {
	return dk == DefnFunction || dk == DefnMacro || dk == DefnIndexer
}

// Trait is a bitset of definition modifier flags.
type Trait uint16

// Enumeration of definition traits.
const (
	TraitFinal = Trait(1 << iota)
	TraitAbstract
	TraitUndef
	TraitReadOnly
	TraitSynthetic
	TraitSingular
	TraitCtor
	TraitNonreflective
	TraitOverride
)

// Visibility is a definition's access level.  This must be one of the
// enumerated visibilities below.
type Visibility int

// Enumeration of visibilities.
const (
	Public = Visibility(iota)
	Protected
	Private
)

// Storage is a definition's storage class.  This must be one of the
// enumerated storage classes below.
type Storage int

// Enumeration of storage classes.
const (
	StorageGlobal = Storage(iota)
	StorageStatic
	StorageInstance
	StorageLocal
)

/* -------------------------------------------------------------------------- */

// Defn is a single definition in the program graph: one declared (or
// synthesised) named entity.  The kind determines which payload fields are
// meaningful.
type Defn struct {
	// The kind of the definition.
	Kind DefnKind

	// The definition's simple name.
	Name string

	// The lazily-computed qualified and linkage names.
	qname    string
	linkName string

	// The enclosing definition, if any.
	Parent *Defn

	// The enclosing module.
	Module *Module

	// The definition's modifier traits.
	traits Trait

	// The definition's visibility.
	Visibility Visibility

	// The definition's storage class.
	Storage Storage

	// The definition's template signature, if it is a template.
	TemplateSig *TemplateSignature

	// The definition's template instance record, if it was produced by
	// instantiating a template.
	TemplateInst *TemplateInstance

	// The AST declaration the definition was created from.  Nil for
	// synthesised definitions.
	AST ast.Decl

	// The attribute expressions attached to the definition.
	Attributes []ast.ASTNode

	// The span the definition occurs at, for diagnostics.
	Span *report.TextSpan

	// The definition's analysis pass state.
	Passes Passes

	// The definition's type: the declared type value for type definitions,
	// the value type for variables and properties, the signature for
	// functions.
	Type types.Type

	// The member scope for modules, namespaces, and type definitions.
	Members *Scope

	/* variable payload */

	// The initializer expression, if any.
	Init ast.ASTNode

	// Whether the initializer is constant-foldable.
	InitIsConst bool

	// The field's index within its declaring type, and within the flattened
	// layout including super fields.
	MemberIndex    int
	RecursiveIndex int

	/* function payload */

	// The parameter definitions, in order.
	Params []*Defn

	// Whether the function has a body, or is marked extern or intrinsic.
	HasBody     bool
	IsExtern    bool
	IsIntrinsic bool

	// The function's position in its declaring class's instance-method
	// table; -1 while unassigned.
	DispatchIndex int

	// The set of methods this method overrides.
	Overridden map[*Defn]struct{}

	// The dispatch-table slot backed by this method, once class analysis has
	// placed it.
	Slot *types.MethodSlot

	// For synthesised constructors, the field initializations forming the
	// constructor body: `self.field = param_or_default`, in field order.
	CtorInits []CtorInit

	/* property payload */

	// The accessor functions of a property or indexer.
	Getter, Setter *Defn

	/* explicit import payload */

	// The definitions an explicit import binds.
	ImportedValues []*Defn
}

// CtorInit is one field initialization within a synthesised constructor body.
type CtorInit struct {
	// The field being initialized.
	Field *Defn

	// The parameter supplying the value, or nil when the field's declared
	// default is used.
	Param *Defn
}

// NewDefn creates a new definition of the given kind from an AST declaration.
func NewDefn(kind DefnKind, mod *Module, decl ast.Decl) *Defn {
	d := &Defn{
		Kind:          kind,
		Name:          decl.DeclName(),
		Module:        mod,
		AST:           decl,
		Span:          decl.Span(),
		DispatchIndex: -1,
	}

	mods := decl.Mods()
	if mods.Has(ast.ModFinal) {
		d.AddTrait(TraitFinal)
	}
	if mods.Has(ast.ModAbstract) {
		d.AddTrait(TraitAbstract)
	}
	if mods.Has(ast.ModUndef) {
		d.AddTrait(TraitUndef)
	}
	if mods.Has(ast.ModReadOnly) {
		d.AddTrait(TraitReadOnly)
	}
	if mods.Has(ast.ModOverride) {
		d.AddTrait(TraitOverride)
	}

	switch {
	case mods.Has(ast.ModPrivate):
		d.Visibility = Private
	case mods.Has(ast.ModProtected):
		d.Visibility = Protected
	}

	if mods.Has(ast.ModStatic) {
		d.Storage = StorageStatic
	}

	return d
}

// NewSyntheticDefn creates a new compiler-synthesised definition.
func NewSyntheticDefn(kind DefnKind, mod *Module, name string) *Defn {
	return &Defn{
		Kind:          kind,
		Name:          name,
		Module:        mod,
		DispatchIndex: -1,
		traits:        TraitSynthetic,
	}
}

/* -------------------------------------------------------------------------- */

// AddTrait adds a modifier trait to the definition.
func (d *Defn) AddTrait(t Trait) {
	d.traits |= t
}

// RemoveTrait removes a modifier trait from the definition.
func (d *Defn) RemoveTrait(t Trait) {
	d.traits &^= t
}

// HasTrait returns whether the definition carries all the given traits.
func (d *Defn) HasTrait(t Trait) bool {
	return d.traits&t == t
}

// CopyTrait copies the given trait from another definition if present there.
func (d *Defn) CopyTrait(from *Defn, t Trait) {
	d.traits |= from.traits & t
}

func (d *Defn) IsFinal() bool     { return d.HasTrait(TraitFinal) }
func (d *Defn) IsAbstract() bool  { return d.HasTrait(TraitAbstract) }
func (d *Defn) IsUndefined() bool { return d.HasTrait(TraitUndef) }
func (d *Defn) IsSynthetic() bool { return d.HasTrait(TraitSynthetic) }
func (d *Defn) IsCtor() bool      { return d.HasTrait(TraitCtor) }
func (d *Defn) IsOverride() bool  { return d.HasTrait(TraitOverride) }

// IsSingular returns whether the definition is fully monomorphised: it is not
// an uninstantiated template and is not enclosed in one.
func (d *Defn) IsSingular() bool {
	return d.HasTrait(TraitSingular)
}

// IsTemplate returns whether the definition declares unbound type parameters.
func (d *Defn) IsTemplate() bool {
	return d.TemplateSig != nil && d.TemplateInst == nil
}

// IsTemplateInstance returns whether the definition was produced by template
// instantiation.
func (d *Defn) IsTemplateInstance() bool {
	return d.TemplateInst != nil
}

// IsTemplateMember returns whether the definition is enclosed (at any depth)
// in an uninstantiated template.
func (d *Defn) IsTemplateMember() bool {
	for p := d.Parent; p != nil; p = p.Parent {
		if p.IsTemplate() {
			return true
		}
	}

	return false
}

// QualifiedName returns the definition's dot-qualified name, computing and
// caching it on first use.
func (d *Defn) QualifiedName() string {
	if d.qname == "" {
		if d.Parent != nil && d.Parent.Kind != DefnModule {
			d.qname = d.Parent.QualifiedName() + "." + d.Name
		} else if d.Parent != nil {
			if pkgName := d.Parent.Name; pkgName != "" {
				d.qname = pkgName + "." + d.Name
			} else {
				d.qname = d.Name
			}
		} else {
			d.qname = d.Name
		}
	}

	return d.qname
}

// LinkageName returns the definition's mangled linkage name, computing and
// caching it on first use.  Template instance arguments are embedded in
// bracketed form: `base[T1,T2]`.
func (d *Defn) LinkageName() string {
	if d.linkName == "" {
		if d.Parent != nil && d.Parent.Kind != DefnModule {
			d.linkName = d.Parent.LinkageName() + "." + d.Name
		} else {
			d.linkName = d.QualifiedName()
		}

		if d.TemplateInst != nil {
			sb := strings.Builder{}
			sb.WriteString(d.linkName)
			sb.WriteRune('[')

			for i, arg := range d.TemplateInst.Args {
				if i != 0 {
					sb.WriteRune(',')
				}

				sb.WriteString(types.LinkageName(arg))
			}

			sb.WriteRune(']')
			d.linkName = sb.String()
		}
	}

	return d.linkName
}

// EnclosingTypeDefn returns the nearest enclosing type definition, if any.
func (d *Defn) EnclosingTypeDefn() *Defn {
	for p := d.Parent; p != nil; p = p.Parent {
		if p.Kind == DefnTypeDef {
			return p
		}
	}

	return nil
}

// CompositeType returns the composite type declared by a type definition, or
// nil if the definition does not declare one.
func (d *Defn) CompositeType() *types.CompositeType {
	ct, _ := d.Type.(*types.CompositeType)
	return ct
}

// FuncType returns the function type of a function definition, or nil before
// signature resolution.
func (d *Defn) FuncType() *types.FunctionType {
	ft, _ := d.Type.(*types.FunctionType)
	return ft
}

// AddOverridden records that this method overrides the given method.
func (d *Defn) AddOverridden(m *Defn) {
	if d.Overridden == nil {
		d.Overridden = make(map[*Defn]struct{})
	}

	d.Overridden[m] = struct{}{}
}

/* -------------------------------------------------------------------------- */

// The types package's abstract views of the definition graph.

func (d *Defn) DefnName() string            { return d.Name }
func (d *Defn) DefnLinkageName() string     { return d.LinkageName() }
func (d *Defn) MethodName() string          { return d.Name }
func (d *Defn) MethodQualifiedName() string { return d.QualifiedName() }

var _ types.TypeDefn = (*Defn)(nil)
var _ types.MethodDefn = (*Defn)(nil)
