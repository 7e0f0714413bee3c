package types

// CompositeKind identifies which flavor of user-declared aggregate a composite
// type is.  This must be one of the enumerated composite kinds below.
type CompositeKind int

// Enumeration of composite kinds.
const (
	KindClass = CompositeKind(iota)
	KindStruct
	KindInterface
	KindProtocol
)

func (ck CompositeKind) String() string {
	switch ck {
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	default:
		return "protocol"
	}
}

// TypeDefn is the registry's view of the definition that declares a named
// type.  The definition graph implements this interface; keeping it abstract
// here prevents the type registry from depending on the graph.
type TypeDefn interface {
	// The definition's simple name.
	DefnName() string

	// The definition's dot-qualified name.
	QualifiedName() string

	// The definition's linkage name, including template instance arguments.
	DefnLinkageName() string

	// Whether the definition is declared abstract.
	IsAbstract() bool

	// Whether the definition is fully monomorphised.
	IsSingular() bool
}

// MethodDefn is the registry's view of a method definition referenced from a
// dispatch-table slot.
type MethodDefn interface {
	// The method's simple name.
	MethodName() string

	// The method's dot-qualified name.
	MethodQualifiedName() string
}

/* -------------------------------------------------------------------------- */

// CompositeType represents a user-declared aggregate type: a class, struct,
// interface, or protocol.  Two composite types are equal exactly when they
// are declared by the same definition.
//
// The base list, field lists, method table, and interface tables are filled
// in by the class analysis passes; until those passes run they are empty.
type CompositeType struct {
	// The kind of the composite.
	Kind CompositeKind

	// The owning definition.
	defn TypeDefn

	// The ordered base list.  After base analysis, the primary base (if any)
	// is always the first entry.
	Bases []*CompositeType

	// The primary base: the single base used for instance-method-table
	// inheritance.  Nil only for types with no concrete base.
	super *CompositeType

	// The instance fields in layout order.  If the type has a super, slot 0
	// is reserved for the embedded super instance and holds nil.
	InstanceFields []*FieldSlot

	// The static fields in declaration order.
	StaticFields []*FieldSlot

	// The instance-method dispatch table.  Always begins with a copy of the
	// super's table so dispatch indices are stable in every subclass.
	InstanceMethods []*MethodSlot

	// The per-interface dispatch tables.
	Interfaces []*InterfaceTable

	// The declared `coerce` conversion methods, gathered by the converter
	// pass.
	Coercers []*MethodSlot

	// Whether the converter pass has run.  Conversion with the coerce option
	// requires it.
	ConvertersReady bool
}

// FieldSlot is one storage slot within a composite's field layout.
type FieldSlot struct {
	// The field's name.
	Name string

	// The field's type.
	Type Type

	// The field's index within this type's own fields.
	MemberIndex int

	// The field's index within the flattened layout including every super's
	// fields.
	RecursiveIndex int

	// Whether the field has a default initializer.
	HasDefault bool

	// Whether the field is publicly visible.
	Public bool
}

// MethodSlot is one entry in an instance-method table or interface dispatch
// table.
type MethodSlot struct {
	// The method's name.
	Name string

	// For property and indexer accessors, the name of the owning property.
	// Empty for plain methods.  Accessor override matching is keyed by both
	// names.
	PropertyName string

	// The method's signature.
	Signature *FunctionType

	// The defining method in the definition graph.
	Defn MethodDefn

	// Whether the method has a body or an extern/intrinsic marker.
	HasImpl bool

	// Whether the method is final.
	Final bool
}

// InterfaceTable is the dispatch table a type carries for one interface it
// implements.  The table is parallel in length and order to the interface's
// own instance-method table.
type InterfaceTable struct {
	// The interface the table dispatches for.
	Iface *CompositeType

	// The table entries, one per interface method.
	Methods []*MethodSlot
}

func (ct *CompositeType) equals(other Type) bool {
	if oct, ok := other.(*CompositeType); ok {
		return ct.defn == oct.defn
	}

	return false
}

func (ct *CompositeType) Repr() string {
	if ct.defn == nil {
		return "<anonymous " + ct.Kind.String() + ">"
	}

	return ct.defn.QualifiedName()
}

// Defn returns the owning definition of the composite.
func (ct *CompositeType) Defn() TypeDefn {
	return ct.defn
}

// Super returns the composite's primary base, or nil if it has none.
func (ct *CompositeType) Super() *CompositeType {
	return ct.super
}

// SetSuper records the primary base.  Called exactly once, by base-type
// analysis.
func (ct *CompositeType) SetSuper(super *CompositeType) {
	ct.super = super
}

// InstanceFieldCountRecursive returns the number of instance fields in the
// flattened layout, including all supers' fields.
func (ct *CompositeType) InstanceFieldCountRecursive() int {
	n := len(ct.InstanceFields)
	if ct.super != nil {
		// Slot 0 stands in for the embedded super instance.
		n += ct.super.InstanceFieldCountRecursive() - 1
	}

	return n
}

// AncestorClasses collects the transitive set of the composite's bases into
// out, keyed by identity.
func (ct *CompositeType) AncestorClasses(out map[*CompositeType]struct{}) {
	for _, base := range ct.Bases {
		if _, ok := out[base]; !ok {
			out[base] = struct{}{}
			base.AncestorClasses(out)
		}
	}
}

// FindBaseImplementationOf searches the composite's bases for an existing
// dispatch table covering the given interface.
func (ct *CompositeType) FindBaseImplementationOf(iface *CompositeType) *InterfaceTable {
	for _, base := range ct.Bases {
		for _, itable := range base.Interfaces {
			if itable.Iface == iface {
				return itable
			}
		}

		if found := base.FindBaseImplementationOf(iface); found != nil {
			return found
		}
	}

	return nil
}

// ImplementationOf returns the composite's own dispatch table for the given
// interface, if one exists.
func (ct *CompositeType) ImplementationOf(iface *CompositeType) *InterfaceTable {
	for _, itable := range ct.Interfaces {
		if itable.Iface == iface {
			return itable
		}
	}

	return nil
}

// SupportedBy returns whether the given type structurally satisfies this
// protocol: every instance method of the protocol must have a same-named
// member with an equal signature in typ.  Only meaningful on protocols.
func (ct *CompositeType) SupportedBy(typ Type) bool {
	oct, ok := Dealias(typ).(*CompositeType)
	if !ok {
		return false
	}

	for _, required := range ct.InstanceMethods {
		if required.Signature == nil {
			continue
		}

		found := false
		for _, slot := range oct.InstanceMethods {
			if slot.Name == required.Name && slot.Signature != nil &&
				slot.Signature.equalsIgnoringSelf(required.Signature) {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}
