package sema

import (
	"lumenc/depm"
	"lumenc/report"
	"lumenc/types"
)

// analyzeOverloading computes the instance-method table and the per-interface
// dispatch tables: the super's table is copied in, interface tables created
// or inherited, declared methods matched against overridable slots, and
// remaining methods appended at fresh dispatch indices.  Finally, concrete
// types must leave no slot unimplemented.
func (ca *ClassAnalyzer) analyzeOverloading() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassOverloading, false); !ok {
		return !ca.target.Passes.HasFailed(depm.PassOverloading)
	}

	typ := ca.targetType()

	// Do overload analysis on all bases first.
	for _, base := range typ.Bases {
		if baseDefn, ok := base.Defn().(*depm.Defn); ok {
			baseCA := &ClassAnalyzer{a: ca.a, target: baseDefn}
			baseCA.Analyze(depm.TaskPrepEvaluation)
		}
	}

	ca.copyBaseClassMethods()
	ca.createInterfaceTables()
	ca.overrideMembers()
	ca.addNewMethods()

	if !ca.checkForRequiredMethods() {
		ca.target.Passes.FinishFailed(depm.PassOverloading)
		return false
	}

	ca.target.Passes.Finish(depm.PassOverloading)
	return true
}

// copyBaseClassMethods seeds the instance-method table with a copy of the
// super's table, preserving order so dispatch indices stay stable in every
// subclass.
func (ca *ClassAnalyzer) copyBaseClassMethods() {
	typ := ca.targetType()

	superClass := typ.Super()
	if superClass == nil &&
		(typ.Kind == types.KindInterface || typ.Kind == types.KindStruct) &&
		len(typ.Bases) > 0 {
		superClass = typ.Bases[0]
	}

	if superClass != nil {
		typ.InstanceMethods = append(typ.InstanceMethods, superClass.InstanceMethods...)
	}
}

// createInterfaceTables builds the set of interfaces this type must carry
// dispatch tables for, and seeds each table from the interface itself or from
// a parent class's existing implementation.
func (ca *ClassAnalyzer) createInterfaceTables() {
	typ := ca.targetType()

	// Get the set of all ancestor types.
	ancestors := make(map[*types.CompositeType]struct{})
	typ.AncestorClasses(ancestors)

	// Remove from the set every type that is the primary base of some other
	// ancestor (or of this type): those reuse the parent's dispatch table,
	// since the itable of any type is a superset of the itable of its primary
	// base.
	interfaceTypes := make(map[*types.CompositeType]struct{}, len(ancestors))
	for anc := range ancestors {
		interfaceTypes[anc] = struct{}{}
	}

	withSelf := make([]*types.CompositeType, 0, len(ancestors)+1)
	withSelf = append(withSelf, typ)
	for anc := range ancestors {
		withSelf = append(withSelf, anc)
	}

	for _, base := range withSelf {
		if len(base.Bases) > 0 {
			delete(interfaceTypes, base.Bases[0])
		}
	}

	// Create the tables for each interface that remains, in base-list order
	// for determinism.
	ordered := orderedInterfaces(typ, interfaceTypes)

	for _, itype := range ordered {
		if itype.Kind != types.KindInterface {
			continue
		}

		// Search before pushing the new entry so we don't find ourselves.
		parentImpl := typ.FindBaseImplementationOf(itype)

		itable := &types.InterfaceTable{Iface: itype}
		if parentImpl != nil {
			itable.Methods = append(itable.Methods, parentImpl.Methods...)
		} else {
			itable.Methods = append(itable.Methods, itype.InstanceMethods...)
		}

		typ.Interfaces = append(typ.Interfaces, itable)
	}
}

// orderedInterfaces flattens an interface set into a deterministic order
// following the base lists depth-first.
func orderedInterfaces(typ *types.CompositeType, keep map[*types.CompositeType]struct{}) []*types.CompositeType {
	var ordered []*types.CompositeType
	seen := make(map[*types.CompositeType]struct{})

	var walk func(ct *types.CompositeType)
	walk = func(ct *types.CompositeType) {
		for _, base := range ct.Bases {
			if _, done := seen[base]; done {
				continue
			}
			seen[base] = struct{}{}

			if _, ok := keep[base]; ok {
				ordered = append(ordered, base)
			}

			walk(base)
		}
	}

	walk(typ)
	return ordered
}

/* -------------------------------------------------------------------------- */

// overrideMembers matches every declared instance method and property
// accessor against same-named overridable slots in the instance-method table
// and every interface table.
func (ca *ClassAnalyzer) overrideMembers() {
	typ := ca.targetType()

	ca.target.Members.Entries(func(name string, defns []*depm.Defn) bool {
		var methods []*depm.Defn
		var getters, setters []*depm.Defn
		var prop *depm.Defn

		for _, d := range defns {
			switch d.Kind {
			case depm.DefnFunction:
				if d.IsSingular() && d.Storage == depm.StorageInstance && !d.IsCtor() {
					methods = append(methods, d)
				}
			case depm.DefnProperty, depm.DefnIndexer:
				prop = d
				if d.Storage == depm.StorageInstance && d.IsSingular() {
					if d.Getter != nil {
						getters = append(getters, d.Getter)
					}

					if d.Setter != nil {
						setters = append(setters, d.Setter)
					}
				}
			}
		}

		if len(methods) > 0 {
			ca.overrideMethods(typ.InstanceMethods, methods, true)
			for _, itable := range typ.Interfaces {
				ca.overrideMethods(itable.Methods, methods, false)
			}
		}

		if len(getters) > 0 {
			ca.overridePropertyAccessors(typ.InstanceMethods, prop, getters, true)
			for _, itable := range typ.Interfaces {
				ca.overridePropertyAccessors(itable.Methods, prop, getters, false)
			}
		}

		if len(setters) > 0 {
			ca.overridePropertyAccessors(typ.InstanceMethods, prop, setters, true)
			for _, itable := range typ.Interfaces {
				ca.overridePropertyAccessors(itable.Methods, prop, setters, false)
			}
		}

		return true
	})
}

// overrideMethods updates a dispatch table in place: table is the inherited
// slots, overrides are the same-named methods declared by this type, and
// canHide is true when the table is the class's own instance-method table.
func (ca *ClassAnalyzer) overrideMethods(table []*types.MethodSlot, overrides []*depm.Defn, canHide bool) {
	name := overrides[0].Name

	for i, slot := range table {
		if slot.Name != name || slot.PropertyName != "" {
			continue
		}

		newMethod := findOverride(slot, overrides)
		if newMethod == nil {
			if canHide {
				ca.a.warnOn(overrides[0].Span,
					"definition of `%s` in `%s` is hidden", name, slotOwnerName(slot))
			}

			continue
		}

		table[i] = ca.methodSlotFor(newMethod)

		if canHide && newMethod.DispatchIndex < 0 {
			newMethod.DispatchIndex = i
		}

		if slot.HasImpl && !newMethod.IsOverride() {
			ca.a.warnOn(newMethod.Span,
				"method `%s` overrides a method in `%s` and should be declared with `override`",
				name, slotOwnerName(slot))
		}

		if slotDefn, ok := slot.Defn.(*depm.Defn); ok {
			newMethod.AddOverridden(slotDefn)
		}
	}
}

// overridePropertyAccessors does the same for property accessors, keyed by
// property name as well as accessor name.
func (ca *ClassAnalyzer) overridePropertyAccessors(table []*types.MethodSlot, prop *depm.Defn, accessors []*depm.Defn, canHide bool) {
	name := accessors[0].Name

	for i, slot := range table {
		if slot.PropertyName == "" || slot.Name != name || slot.PropertyName != prop.Name {
			continue
		}

		newAccessor := findOverride(slot, accessors)
		if newAccessor == nil {
			ca.a.warnOn(accessors[0].Span,
				"invalid override of property accessor `%s.%s` by accessor of incompatible type",
				prop.Name, name)
			continue
		}

		newSlot := ca.methodSlotFor(newAccessor)
		newSlot.PropertyName = prop.Name
		table[i] = newSlot

		if canHide && newAccessor.DispatchIndex < 0 {
			newAccessor.DispatchIndex = i
		}

		if slotDefn, ok := slot.Defn.(*depm.Defn); ok {
			newAccessor.AddOverridden(slotDefn)
		}
	}
}

// findOverride returns the first of the declared methods that can override
// the given slot.
func findOverride(slot *types.MethodSlot, overrides []*depm.Defn) *depm.Defn {
	for _, d := range overrides {
		if canOverride(d, slot) {
			return d
		}
	}

	return nil
}

// canOverride returns whether a method's signature is compatible with a
// slot's: parameter types invariant, return type covariant, and a more
// specific self allowed.
func canOverride(d *depm.Defn, slot *types.MethodSlot) bool {
	ft := d.FuncType()
	if ft == nil || slot.Signature == nil {
		return false
	}

	if len(ft.Params) != len(slot.Signature.Params) {
		return false
	}

	for i, param := range ft.Params {
		if !types.Equals(param.Type, slot.Signature.Params[i].Type) {
			return false
		}
	}

	if !types.IsSubtype(ft.Return, slot.Signature.Return) {
		return false
	}

	if ft.Self != nil && slot.Signature.Self != nil {
		return types.IsSubtype(ft.Self, slot.Signature.Self)
	}

	return true
}

// slotOwnerName names the type that declared a slot's method, for
// diagnostics.
func slotOwnerName(slot *types.MethodSlot) string {
	if d, ok := slot.Defn.(*depm.Defn); ok {
		if enclosing := d.EnclosingTypeDefn(); enclosing != nil {
			return enclosing.QualifiedName()
		}
	}

	return "<base>"
}

/* -------------------------------------------------------------------------- */

// addNewMethods appends every declared instance method that did not consume
// an existing slot, giving it a fresh dispatch index.  Final methods are
// never dispatched through the table and constructors are not virtual.
func (ca *ClassAnalyzer) addNewMethods() {
	typ := ca.targetType()

	ca.target.Members.Members(func(d *depm.Defn) bool {
		if d.Storage != depm.StorageInstance || !d.IsSingular() {
			return true
		}

		switch d.Kind {
		case depm.DefnFunction:
			if d.IsUndefined() && len(d.Overridden) == 0 {
				if !d.IsCtor() || len(d.Params) > 0 {
					ca.a.errorOn(report.KindGeneral, d.Span,
						"method `%s` declared `undef` but does not override a base class method", d.Name)
				}
			}

			if !d.IsCtor() && !d.IsFinal() && d.DispatchIndex < 0 {
				d.DispatchIndex = len(typ.InstanceMethods)
				typ.InstanceMethods = append(typ.InstanceMethods, ca.methodSlotFor(d))
			}
		case depm.DefnProperty, depm.DefnIndexer:
			for _, accessor := range []*depm.Defn{d.Getter, d.Setter} {
				if accessor == nil || accessor.IsFinal() || accessor.DispatchIndex >= 0 {
					continue
				}

				slot := ca.methodSlotFor(accessor)
				slot.PropertyName = d.Name
				accessor.DispatchIndex = len(typ.InstanceMethods)
				typ.InstanceMethods = append(typ.InstanceMethods, slot)
			}
		}

		return true
	})
}

// checkForRequiredMethods requires every slot of a concrete type to resolve
// to a method with a body or an extern/intrinsic marker.
func (ca *ClassAnalyzer) checkForRequiredMethods() bool {
	if ca.target.IsAbstract() {
		return true
	}

	typ := ca.targetType()
	if typ.Kind == types.KindInterface || typ.Kind == types.KindProtocol {
		return true
	}

	var missing []string
	for _, slot := range typ.InstanceMethods {
		if !slot.HasImpl {
			missing = append(missing, slot.Name)
		}
	}

	if len(missing) > 0 {
		ca.reportMissing("", missing)
		return false
	}

	for _, itable := range typ.Interfaces {
		missing = missing[:0]
		for _, slot := range itable.Methods {
			if !slot.HasImpl {
				missing = append(missing, slot.Name)
			}
		}

		if len(missing) > 0 {
			ca.reportMissing(itable.Iface.Repr(), missing)
			return false
		}
	}

	return true
}

// reportMissing emits the missing-implementation diagnostic, naming each
// unimplemented method.
func (ca *ClassAnalyzer) reportMissing(ifaceName string, missing []string) {
	msg := "concrete type `" + ca.target.QualifiedName() + "` lacks definitions for the following methods:"
	if ifaceName != "" {
		msg = "concrete type `" + ca.target.QualifiedName() + "` implements interface `" +
			ifaceName + "` but lacks implementations for:"
	}

	related := make([]string, len(missing))
	for i, name := range missing {
		related[i] = "`" + name + "`"
	}

	report.ReportDiagnostic(&report.Diagnostic{
		Kind:     report.KindMissingImplementation,
		IsError:  true,
		AbsPath:  ca.a.mod.AbsPath,
		ReprPath: ca.a.mod.ReprPath,
		Span:     ca.target.Span,
		Message:  msg,
		Related:  related,
	})
}

/* -------------------------------------------------------------------------- */

// methodSlotFor returns the dispatch-table slot backed by a method,
// creating it on first request.
func (ca *ClassAnalyzer) methodSlotFor(d *depm.Defn) *types.MethodSlot {
	if d.Slot != nil {
		return d.Slot
	}

	d.Slot = &types.MethodSlot{
		Name:      d.Name,
		Signature: d.FuncType(),
		Defn:      d,
		HasImpl:   d.HasBody || d.IsExtern || d.IsIntrinsic,
		Final:     d.IsFinal(),
	}

	return d.Slot
}
