package sema

import (
	"lumenc/ast"
	"lumenc/depm"
	"lumenc/report"
	"lumenc/types"
)

// ClassAnalyzer runs the per-composite-type analysis pipeline: base
// resolution, conflict checking, member typing, field layout, constructor
// synthesis, method gathering, override and dispatch-table resolution, and
// completion.
type ClassAnalyzer struct {
	a      *Analyzer
	target *depm.Defn
}

// targetType returns the composite type under analysis.
func (ca *ClassAnalyzer) targetType() *types.CompositeType {
	return ca.target.CompositeType()
}

// Analyze runs the passes the given task requires, skipping any that have
// already finished.
func (ca *ClassAnalyzer) Analyze(task depm.AnalysisTask) bool {
	return ca.runPasses(depm.TaskPasses(task))
}

func (ca *ClassAnalyzer) runPasses(passesToRun depm.PassSet) bool {
	passesToRun = passesToRun.RemoveAll(ca.target.Passes.Finished())
	if passesToRun.Empty() {
		return true
	}

	// Definitions with neither an AST nor a member scope were created
	// internally and have nothing left to analyze.
	if ca.target.Members == nil {
		return true
	}

	// Member analysis resolves names inside the type's own scope; template
	// parameters are found through the scope owner's signature.
	ca.a.pushScope(ca.target.Members)
	defer ca.a.popScope()

	// Templates with unbound parameters run only scope creation and base
	// resolution; members of templates run no passes at all.
	if ca.target.IsTemplate() {
		if passesToRun.Contains(depm.PassScopeCreation) {
			if ok, _ := ca.target.Passes.Begin(depm.PassScopeCreation, false); ok {
				ca.createMembers()
				ca.target.Passes.Finish(depm.PassScopeCreation)
			}
		}

		if passesToRun.Contains(depm.PassBaseTypes) && !ca.analyzeBaseClasses() {
			return false
		}

		return true
	}

	if ca.target.IsTemplateMember() {
		return true
	}

	type passStep struct {
		pass depm.Pass
		run  func() bool
	}

	steps := []passStep{
		{depm.PassScopeCreation, ca.wrapSimple(depm.PassScopeCreation, ca.createMembers)},
		{depm.PassAttributes, ca.wrapSimple(depm.PassAttributes, ca.resolveAttributes)},
		{depm.PassNamingConflict, ca.checkNameConflicts},
		{depm.PassBaseTypes, ca.analyzeBaseClasses},
		{depm.PassMemberType, ca.analyzeMemberTypes},
		{depm.PassField, ca.analyzeFields},
		{depm.PassConverter, ca.analyzeConverters},
		{depm.PassConstructor, ca.analyzeConstructors},
		{depm.PassMethod, ca.analyzeMethods},
		{depm.PassOverloading, ca.analyzeOverloading},
		{depm.PassFieldType, ca.analyzeFieldTypes},
		{depm.PassCompletion, ca.analyzeCompletely},
	}

	for _, step := range steps {
		if passesToRun.Contains(step.pass) && !step.run() {
			return false
		}
	}

	return true
}

// wrapSimple wraps a pass body with standard begin/finish bookkeeping.
func (ca *ClassAnalyzer) wrapSimple(pass depm.Pass, body func()) func() bool {
	return func() bool {
		if ok, _ := ca.target.Passes.Begin(pass, false); ok {
			body()
			ca.target.Passes.Finish(pass)
		}

		return true
	}
}

/* -------------------------------------------------------------------------- */

// createMembers creates definitions for every member declaration of the type.
func (ca *ClassAnalyzer) createMembers() {
	decl, ok := ca.target.AST.(*ast.TypeDecl)
	if !ok {
		// Synthesised types populate their own scopes.
		return
	}

	for _, memberDecl := range decl.Members {
		if d := ca.a.createDefn(memberDecl, ca.target.Members); d != nil {
			d.Parent = ca.target
			ca.target.Members.Define(d)

			// Members of templates are never singular until instantiated.
			if d.IsTemplateMember() {
				d.RemoveTrait(depm.TraitSingular)
			}
		}
	}
}

// resolveAttributes applies the type's attribute expressions.
func (ca *ClassAnalyzer) resolveAttributes() {
	for _, attr := range attributesOf(ca.target) {
		switch attrName(attr) {
		case "Nonreflective":
			ca.target.AddTrait(depm.TraitNonreflective)
		}
	}
}

// attributesOf returns a definition's attribute expressions.
func attributesOf(d *depm.Defn) []ast.ASTNode {
	if decl, ok := d.AST.(*ast.TypeDecl); ok {
		return append(decl.Attributes, d.Attributes...)
	}

	return d.Attributes
}

// attrName extracts the name of an attribute expression.
func attrName(attr ast.ASTNode) string {
	switch v := attr.(type) {
	case *ast.Identifier:
		return v.Name
	case *ast.Call:
		return attrName(v.Func)
	default:
		return ""
	}
}

// checkNameConflicts requires every name in the member table to bind to
// definitions of a single kind, with only overloadable kinds allowed multiple
// definitions per name.
func (ca *ClassAnalyzer) checkNameConflicts() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassNamingConflict, false); !ok {
		return true
	}

	success := true
	ca.target.Members.Entries(func(name string, defns []*depm.Defn) bool {
		kind := defns[0].Kind

		for _, d := range defns[1:] {
			if d.Kind != kind {
				ca.a.errorOn(report.KindDuplicateDefinition, d.Span,
					"definition of `%s` as %s conflicts with earlier definition as %s",
					name, d.Kind, kind)
				success = false
				break
			}
		}

		if len(defns) > 1 && !kind.IsOverloadable() {
			ca.a.errorOn(report.KindDuplicateDefinition, defns[1].Span,
				"`%s` defined multiple times", name)
			success = false
		}

		return true
	})

	ca.target.Passes.Finish(depm.PassNamingConflict)
	return success
}

/* -------------------------------------------------------------------------- */

// analyzeBaseClasses resolves each base AST to a composite, validates kind
// compatibility, and promotes the single concrete base to the primary slot.
func (ca *ClassAnalyzer) analyzeBaseClasses() bool {
	if ca.target.Passes.IsRunning(depm.PassBaseTypes) {
		ca.a.errorOn(report.KindCircularDependency, ca.target.Span,
			"circular inheritance not allowed")
		return false
	}

	if ok, _ := ca.target.Passes.Begin(depm.PassBaseTypes, false); !ok {
		return !ca.target.Passes.HasFailed(depm.PassBaseTypes)
	}

	result := ca.analyzeBaseClassesImpl()
	if result {
		ca.target.Passes.Finish(depm.PassBaseTypes)
	} else {
		ca.target.Passes.FinishFailed(depm.PassBaseTypes)
	}

	return result
}

func (ca *ClassAnalyzer) analyzeBaseClassesImpl() bool {
	// Definitions with no AST were created internally, and the compiler is
	// responsible for their base lists.
	decl, ok := ca.target.AST.(*ast.TypeDecl)
	if !ok {
		return true
	}

	typ := ca.targetType()
	if typ == nil {
		return true
	}

	// Check for valid finality.
	if ca.target.IsFinal() {
		if typ.Kind == types.KindInterface || typ.Kind == types.KindProtocol {
			ca.a.errorOn(report.KindGeneral, ca.target.Span,
				"%s type cannot be final", typ.Kind)
		}
	}

	if ca.target.IsTemplate() && ca.target.TemplateSig.ParamScope != nil {
		ca.a.pushScope(ca.target.TemplateSig.ParamScope)
		defer ca.a.popScope()
	}

	var primaryBase *types.CompositeType

	for _, baseAST := range decl.Bases {
		baseType := ca.a.TypeFromAST(baseAST)
		if types.IsBad(baseType) {
			return false
		}

		baseCt, ok := types.Dealias(baseType).(*types.CompositeType)
		if !ok {
			ca.a.errorOn(report.KindIllegalBase, baseAST.Span(),
				"cannot inherit from `%s`", baseType.Repr())
			return false
		}

		baseDefn, _ := baseCt.Defn().(*depm.Defn)
		if baseDefn != nil {
			if baseDefn.IsTemplate() {
				ca.a.errorOn(report.KindNotSingular, baseAST.Span(),
					"base type `%s` is a template, not a type", baseDefn.Name)
				return false
			}

			if baseDefn.IsFinal() {
				ca.a.errorOn(report.KindIllegalBase, baseAST.Span(),
					"base type `%s` is final", baseDefn.Name)
			}

			// Recursively analyze the bases of the base.
			baseCA := &ClassAnalyzer{a: ca.a, target: baseDefn}
			if !baseCA.Analyze(depm.TaskPrepMemberLookup) {
				return false
			}
		}

		isPrimary := false
		switch typ.Kind {
		case types.KindClass:
			if baseCt.Kind == types.KindClass {
				if primaryBase == nil {
					isPrimary = true
				} else {
					ca.a.errorOn(report.KindIllegalBase, baseAST.Span(),
						"classes can only have a single concrete supertype")
				}
			} else if baseCt.Kind != types.KindInterface {
				ca.a.errorOn(report.KindIllegalBase, baseAST.Span(),
					"a class can only inherit from a class or interface")
			}
		case types.KindStruct:
			if baseCt.Kind != types.KindStruct && baseCt.Kind != types.KindProtocol {
				ca.a.errorOn(report.KindIllegalBase, baseAST.Span(),
					"a struct can only derive from a struct or protocol")
			} else if primaryBase == nil && baseCt.Kind == types.KindStruct {
				isPrimary = true
			}
		case types.KindInterface, types.KindProtocol:
			if baseCt.Kind != types.KindInterface && baseCt.Kind != types.KindProtocol {
				ca.a.errorOn(report.KindIllegalBase, baseAST.Span(),
					"an interface can only inherit from an interface or protocol")
			} else if primaryBase == nil {
				isPrimary = true
			}
		}

		if baseDefn != nil {
			ca.a.mod.AddXRef(baseDefn)
		}

		if isPrimary {
			primaryBase = baseCt
		} else {
			typ.Bases = append(typ.Bases, baseCt)
		}
	}

	// If no class base was specified, classes fall back to Object.
	objectDefn := ca.a.ctx.Universe.Object
	if typ.Kind == types.KindClass && primaryBase == nil && ca.target != objectDefn {
		primaryBase = objectDefn.CompositeType()
	}

	typ.SetSuper(primaryBase)

	if primaryBase != nil {
		// Move the primary base to the front of the base list.
		typ.Bases = append([]*types.CompositeType{primaryBase}, typ.Bases...)

		if superDefn, ok := primaryBase.Defn().(*depm.Defn); ok {
			ca.target.CopyTrait(superDefn, depm.TraitNonreflective)
		}
	}

	return true
}

/* -------------------------------------------------------------------------- */

// analyzeMemberTypes propagates inherited attributes to enclosed type
// definitions.
func (ca *ClassAnalyzer) analyzeMemberTypes() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassMemberType, false); !ok {
		return true
	}

	ca.target.Members.Members(func(member *depm.Defn) bool {
		if member.Kind == depm.DefnTypeDef {
			member.CopyTrait(ca.target, depm.TraitNonreflective)
		}

		return true
	})

	ca.target.Passes.Finish(depm.PassMemberType)
	return true
}

// analyzeFields computes the composite's field layout.  Slot 0 is reserved
// for the super instance; declared vars and lets follow in source order.  A
// let whose initializer is constant-foldable needs no storage.
func (ca *ClassAnalyzer) analyzeFields() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassField, false); !ok {
		return true
	}

	typ := ca.targetType()
	super := typ.Super()

	instanceFieldCount := 0
	recursiveCount := 0
	if super != nil {
		if superDefn, ok := super.Defn().(*depm.Defn); ok {
			if !superDefn.Passes.IsFinished(depm.PassField) {
				superCA := &ClassAnalyzer{a: ca.a, target: superDefn}
				superCA.runPasses(depm.PassSetOf(depm.PassScopeCreation, depm.PassBaseTypes, depm.PassField))
			}
		}

		// Reserve one slot for the superclass instance.
		typ.InstanceFields = append(typ.InstanceFields, nil)
		instanceFieldCount = 1
		recursiveCount = super.InstanceFieldCountRecursive()
	}

	ca.target.Members.Members(func(member *depm.Defn) bool {
		if member.Kind != depm.DefnVar && member.Kind != depm.DefnLet {
			return true
		}

		member.CopyTrait(ca.target, depm.TraitFinal)
		ca.a.analyzeValueDefn(member, depm.TaskPrepTypeComparison)

		// A constant-foldable let is materialized at its uses, not stored.
		storageRequired := true
		if member.Kind == depm.DefnLet && member.InitIsConst {
			storageRequired = false
		}

		if !storageRequired {
			return true
		}

		if typ.Kind == types.KindInterface || typ.Kind == types.KindProtocol {
			ca.a.errorOn(report.KindGeneral, member.Span,
				"data member not allowed in %s: `%s`", typ.Kind, member.Name)
			return true
		}

		slot := &types.FieldSlot{
			Name:       member.Name,
			Type:       member.Type,
			HasDefault: member.Init != nil,
			Public:     member.Visibility == depm.Public,
		}

		switch member.Storage {
		case depm.StorageInstance:
			member.MemberIndex = instanceFieldCount
			member.RecursiveIndex = recursiveCount
			slot.MemberIndex = instanceFieldCount
			slot.RecursiveIndex = recursiveCount
			instanceFieldCount++
			recursiveCount++
			typ.InstanceFields = append(typ.InstanceFields, slot)
		case depm.StorageStatic:
			typ.StaticFields = append(typ.StaticFields, slot)
		}

		return true
	})

	ca.target.Passes.Finish(depm.PassField)
	return true
}

// analyzeConverters gathers every static coerce function usable as an
// implicit conversion entry point.  Coerce methods are not inherited.
func (ca *ClassAnalyzer) analyzeConverters() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassConverter, false); !ok {
		return true
	}

	typ := ca.targetType()

	if typ.Kind == types.KindClass || typ.Kind == types.KindStruct {
		for _, d := range ca.target.Members.Lookup("coerce", false) {
			if d.Kind != depm.DefnFunction {
				continue
			}

			ca.a.analyzeFuncDefn(d, depm.TaskPrepTypeComparison)

			ft := d.FuncType()
			if ft == nil || d.Storage != depm.StorageStatic || len(ft.Params) != 1 || types.IsVoid(ft.Return) {
				continue
			}

			if ca.target.IsSingular() {
				d.AddTrait(depm.TraitSingular)
			}

			typ.Coercers = append(typ.Coercers, ca.methodSlotFor(d))
		}
	}

	typ.ConvertersReady = true
	ca.target.Passes.Finish(depm.PassConverter)
	return true
}

/* -------------------------------------------------------------------------- */

// analyzeConstructors gathers declared construct methods and create
// factories, synthesising a default constructor when neither exists.
func (ca *ClassAnalyzer) analyzeConstructors() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassConstructor, false); !ok {
		return true
	}

	typ := ca.targetType()

	if typ.Kind == types.KindClass || typ.Kind == types.KindStruct {
		// Analyze superclass constructors first.
		if super := typ.Super(); super != nil {
			if superDefn, ok := super.Defn().(*depm.Defn); ok &&
				!superDefn.Passes.IsFinished(depm.PassConstructor) &&
				!superDefn.Passes.IsRunning(depm.PassConstructor) {
				superCA := &ClassAnalyzer{a: ca.a, target: superDefn}
				if !superCA.Analyze(depm.TaskPrepConstruction) {
					ca.target.Passes.FinishFailed(depm.PassConstructor)
					return false
				}
			}
		}

		hasConstructors := false

		for _, ctor := range ca.target.Members.Lookup("construct", false) {
			if ctor.Kind != depm.DefnFunction {
				ca.a.errorOn(report.KindGeneral, ctor.Span,
					"member named `construct` must be a method")
				break
			}

			hasConstructors = true
			ctor.AddTrait(depm.TraitCtor)

			if !ca.a.analyzeFuncDefn(ctor, depm.TaskPrepTypeComparison) {
				continue
			}

			ft := ctor.FuncType()
			if ft != nil && !types.IsVoid(ft.Return) {
				ca.a.errorOn(report.KindGeneral, ctor.Span,
					"constructor cannot declare a return type")
				continue
			}

			if ctor.Storage != depm.StorageInstance {
				ca.a.errorOn(report.KindGeneral, ctor.Span,
					"constructor must be an instance method")
				continue
			}

			if ca.target.IsSingular() {
				ctor.AddTrait(depm.TraitSingular)
			}
		}

		// Static create factories also count as constructors.
		for _, factory := range ca.target.Members.Lookup("create", false) {
			if factory.Kind == depm.DefnFunction {
				if factory.Storage == depm.StorageStatic {
					hasConstructors = true
				}

				ca.a.analyzeFuncDefn(factory, depm.TaskPrepTypeComparison)
			}
		}

		if !hasConstructors {
			ca.createDefaultConstructor()
		}
	}

	ca.target.Passes.Finish(depm.PassConstructor)
	return true
}

// createDefaultConstructor synthesises the default constructor: required
// parameters for public defaultless vars in declaration order, optional
// parameters for public defaulted vars after them, and a body assigning each
// field from its parameter or default.
func (ca *ClassAnalyzer) createDefaultConstructor() {
	var requiredParams, optionalParams []*depm.Defn
	var requiredInits, optionalInits []depm.CtorInit
	var defaultInits []depm.CtorInit

	ok := true
	ca.target.Members.Members(func(member *depm.Defn) bool {
		if member.Storage != depm.StorageInstance {
			return true
		}

		switch member.Kind {
		case depm.DefnLet:
			// Constant lets need no construction; non-constant lets behave as
			// required vars and were already diagnosed if uninitialized.
			return true
		case depm.DefnVar:
			ca.a.analyzeValueDefn(member, depm.TaskPrepConstruction)

			hasDefault := member.Init != nil

			if member.Visibility == depm.Public {
				param := depm.NewSyntheticDefn(depm.DefnParameter, ca.a.mod, member.Name)
				param.Parent = ca.target
				param.Type = member.Type
				param.Storage = depm.StorageLocal
				param.Init = member.Init
				param.AddTrait(depm.TraitSingular)

				if hasDefault {
					optionalParams = append(optionalParams, param)
					optionalInits = append(optionalInits, depm.CtorInit{Field: member, Param: param})
				} else {
					requiredParams = append(requiredParams, param)
					requiredInits = append(requiredInits, depm.CtorInit{Field: member, Param: param})
				}
			} else {
				if !hasDefault {
					ca.a.errorOn(report.KindMissingInit, member.Span,
						"private field `%s` has no default value and cannot be initialized", member.Name)
					ok = false
					return true
				}

				defaultInits = append(defaultInits, depm.CtorInit{Field: member})
			}
		}

		return true
	})

	if !ok {
		return
	}

	// Optional params go after required params.
	params := append(requiredParams, optionalParams...)
	inits := append(append(requiredInits, optionalInits...), defaultInits...)

	ctor := depm.NewSyntheticDefn(depm.DefnFunction, ca.a.mod, "construct")
	ctor.Parent = ca.target
	ctor.Storage = depm.StorageInstance
	ctor.Visibility = depm.Public
	ctor.AddTrait(depm.TraitCtor)
	ctor.CopyTrait(ca.target, depm.TraitSynthetic)
	ctor.HasBody = true
	ctor.Params = params
	ctor.CtorInits = inits

	typeParams := make([]types.Param, len(params))
	for i, param := range params {
		typeParams[i] = types.Param{
			Name:    param.Name,
			Type:    param.Type,
			Keyword: param.Init != nil,
		}
	}

	ctor.Type = ca.a.ctx.Registry.Function(types.VoidType, typeParams, ca.target.Type, false)

	if ca.target.IsSingular() {
		ctor.AddTrait(depm.TraitSingular)
	}

	// Signature resolution is already done by construction.
	ctor.Passes.Finish(depm.PassMethod)

	ca.target.Members.Define(ctor)
	ca.a.ctx.Names.Intern(ctor.Name)
}

/* -------------------------------------------------------------------------- */

// analyzeMethods resolves every method and property signature and requires
// same-named members to have distinct signatures.
func (ca *ClassAnalyzer) analyzeMethods() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassMethod, false); !ok {
		return true
	}

	typ := ca.targetType()
	isIfaceLike := typ.Kind == types.KindInterface || typ.Kind == types.KindProtocol

	ca.target.Members.Members(func(member *depm.Defn) bool {
		switch member.Kind {
		case depm.DefnFunction, depm.DefnMacro, depm.DefnProperty, depm.DefnIndexer:
			if member.IsTemplate() {
				return true
			}

			if isIfaceLike {
				if member.IsFinal() {
					ca.a.errorOn(report.KindGeneral, member.Span,
						"%s method cannot be final", typ.Kind)
				} else if member.Visibility != depm.Public {
					ca.a.errorOn(report.KindGeneral, member.Span,
						"%s method cannot be non-public", typ.Kind)
				}
			}

			ca.a.PrepareDefn(member, depm.TaskPrepTypeComparison)
		}

		return true
	})

	// Check that members of the same name have distinct signatures.
	ca.target.Members.Entries(func(name string, defns []*depm.Defn) bool {
		if len(defns) < 2 || defns[0].Kind != depm.DefnFunction {
			return true
		}

		for i, d := range defns {
			ft := d.FuncType()
			if ft == nil {
				continue
			}

			for _, prev := range defns[:i] {
				pft := prev.FuncType()
				if pft == nil {
					continue
				}

				if ft.SameSignature(pft) {
					report.ReportDiagnostic(&report.Diagnostic{
						Kind:     report.KindSignatureConflict,
						IsError:  true,
						AbsPath:  ca.a.mod.AbsPath,
						ReprPath: ca.a.mod.ReprPath,
						Span:     d.Span,
						Message:  "member type signature conflict: `" + name + "`",
						Related:  []string{"conflicts with earlier definition of `" + prev.QualifiedName() + "`"},
					})
				}
			}
		}

		return true
	})

	ca.target.Passes.Finish(depm.PassMethod)
	return true
}

/* -------------------------------------------------------------------------- */

// analyzeFieldTypes finalises the types of every stored field.
func (ca *ClassAnalyzer) analyzeFieldTypes() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassFieldType, true); !ok {
		return true
	}

	typ := ca.targetType()

	if super := typ.Super(); super != nil {
		ca.a.PrepareType(super, depm.TaskPrepTypeGeneration)
	}

	for _, field := range typ.InstanceFields {
		if field != nil {
			ca.a.PrepareType(field.Type, depm.TaskPrepTypeGeneration)
		}
	}

	ca.target.Passes.Finish(depm.PassFieldType)
	return true
}

// analyzeCompletely recursively analyses every member for code generation.
// Re-entry is allowed: all that matters is that completion eventually
// happens, not that it happens immediately.
func (ca *ClassAnalyzer) analyzeCompletely() bool {
	if ok, _ := ca.target.Passes.Begin(depm.PassCompletion, true); !ok {
		return true
	}

	// A type whose dispatch tables failed is not finalised.
	if ca.target.Passes.HasFailed(depm.PassOverloading) {
		ca.target.Passes.FinishFailed(depm.PassCompletion)
		return false
	}

	if super := ca.targetType().Super(); super != nil {
		ca.a.PrepareType(super, depm.TaskPrepCodeGeneration)
	}

	ca.target.Members.Members(func(member *depm.Defn) bool {
		ca.a.PrepareDefn(member, depm.TaskPrepCodeGeneration)
		return true
	})

	ca.target.Passes.Finish(depm.PassCompletion)
	return true
}
