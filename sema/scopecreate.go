package sema

import (
	"lumenc/ast"
	"lumenc/depm"
	"lumenc/report"
	"lumenc/types"
)

// createModuleMembers creates definitions for every top-level declaration and
// import in the module's AST.
func (a *Analyzer) createModuleMembers() {
	global := a.mod.GlobalScope()

	for _, imp := range a.mod.AST.Imports {
		d := depm.NewDefn(depm.DefnExplicitImport, a.mod, imp)
		a.ctx.Names.Intern(d.Name)
		global.Define(d)
	}

	for _, decl := range a.mod.AST.Decls {
		if d := a.createDefn(decl, global); d != nil {
			global.Define(d)
		}
	}
}

// createDefn creates the definition for one declaration.  Nested members are
// created immediately for namespaces; type members wait for the scope
// creation pass so that template handling can intervene.
func (a *Analyzer) createDefn(decl ast.Decl, enclosing *depm.Scope) *depm.Defn {
	var d *depm.Defn

	switch v := decl.(type) {
	case *ast.TypeDecl:
		d = depm.NewDefn(depm.DefnTypeDef, a.mod, decl)
		d.Members = depm.NewScope(enclosing, d)

		if len(v.TypeParams) > 0 {
			a.createTemplateSignature(d, v.TypeParams, enclosing)
		} else if !d.IsTemplateMember() {
			d.AddTrait(depm.TraitSingular)
		}

		// The composite (or enum/alias) type value exists from the moment the
		// definition does, so references resolve before analysis.
		switch v.Kind {
		case ast.TypeDeclClass:
			d.Type = a.ctx.Registry.Composite(types.KindClass, d)
		case ast.TypeDeclStruct:
			d.Type = a.ctx.Registry.Composite(types.KindStruct, d)
		case ast.TypeDeclInterface:
			d.Type = a.ctx.Registry.Composite(types.KindInterface, d)
		case ast.TypeDeclProtocol:
			d.Type = a.ctx.Registry.Composite(types.KindProtocol, d)
		case ast.TypeDeclEnum:
			d.Type = a.ctx.Registry.Enum(d, types.Int32Type, v.EnumValues)
		case ast.TypeDeclAlias:
			d.Type = a.ctx.Registry.Alias(d)
		}
	case *ast.FuncDecl:
		kind := depm.DefnFunction
		if v.IsMacro {
			kind = depm.DefnMacro
		}

		d = depm.NewDefn(kind, a.mod, decl)
		d.HasBody = v.HasBody
		d.IsExtern = v.IsExtern
		d.IsIntrinsic = v.IsIntrinsic

		if len(v.TypeParams) > 0 {
			a.createTemplateSignature(d, v.TypeParams, enclosing)
		} else if !d.IsTemplateMember() {
			d.AddTrait(depm.TraitSingular)
		}

		if enclosing.Owner() != nil && enclosing.Owner().Kind == depm.DefnTypeDef && d.Storage != depm.StorageStatic {
			d.Storage = depm.StorageInstance
		}
	case *ast.VarDecl:
		kind := depm.DefnVar
		if v.IsLet {
			kind = depm.DefnLet
		}

		d = depm.NewDefn(kind, a.mod, decl)
		d.Init = v.Init
		d.InitIsConst = v.InitIsConst

		if v.IsLet {
			d.AddTrait(depm.TraitFinal)
		}

		if enclosing.Owner() != nil && enclosing.Owner().Kind == depm.DefnTypeDef {
			if d.Storage != depm.StorageStatic {
				d.Storage = depm.StorageInstance
			}
		} else {
			d.Storage = depm.StorageGlobal
		}
	case *ast.PropertyDecl:
		d = depm.NewDefn(depm.DefnProperty, a.mod, decl)
		d.Storage = depm.StorageInstance
		a.createAccessors(d, v.Getter, v.Setter, enclosing)
	case *ast.IndexerDecl:
		d = depm.NewDefn(depm.DefnIndexer, a.mod, decl)
		d.Storage = depm.StorageInstance
		a.createAccessors(d, v.Getter, v.Setter, enclosing)
	case *ast.NamespaceDecl:
		d = depm.NewDefn(depm.DefnNamespace, a.mod, decl)
		d.Members = depm.NewScope(enclosing, d)

		for _, member := range v.Members {
			if md := a.createDefn(member, d.Members); md != nil {
				d.Members.Define(md)
			}
		}
	default:
		report.ReportICE("cannot create definition for declaration %T", decl)
		return nil
	}

	a.ctx.Names.Intern(d.Name)

	if !d.HasTrait(depm.TraitSingular) && d.TemplateSig == nil && !d.IsTemplateMember() {
		d.AddTrait(depm.TraitSingular)
	}

	return d
}

// createAccessors creates the getter/setter function definitions of a
// property or indexer.
func (a *Analyzer) createAccessors(prop *depm.Defn, getter, setter *ast.FuncDecl, enclosing *depm.Scope) {
	if getter != nil {
		g := depm.NewDefn(depm.DefnFunction, a.mod, getter)
		g.Parent = prop
		g.Storage = depm.StorageInstance
		g.HasBody = getter.HasBody
		prop.Getter = g
	}

	if setter != nil {
		s := depm.NewDefn(depm.DefnFunction, a.mod, setter)
		s.Parent = prop
		s.Storage = depm.StorageInstance
		s.HasBody = setter.HasBody
		prop.Setter = s
	}
}

// createTemplateSignature builds the template signature for a definition with
// declared type parameters.
func (a *Analyzer) createTemplateSignature(d *depm.Defn, typeParams []ast.TypeParam, enclosing *depm.Scope) {
	tsig := depm.NewTemplateSignature(d)
	tsig.ParamScope = depm.NewScope(enclosing, d)

	for _, tp := range typeParams {
		var upperBound types.Type
		if tp.UpperBound != nil {
			upperBound = a.TypeFromAST(tp.UpperBound)
		}

		tv := a.ctx.Registry.TypeVar(tp.Name, upperBound)
		tsig.TypeVars = append(tsig.TypeVars, tv)

		// Bind the parameter name in the template's scope so the body can
		// refer to it.
		paramDefn := depm.NewSyntheticDefn(depm.DefnTypeDef, a.mod, tp.Name)
		paramDefn.Type = tv
		paramDefn.Parent = d
		tsig.ParamScope.Define(paramDefn)
	}

	d.TemplateSig = tsig
}

/* -------------------------------------------------------------------------- */

// resolveImports binds every explicit import definition to the exported
// definitions of the imported module.
func (a *Analyzer) resolveImports() {
	a.mod.GlobalScope().Members(func(d *depm.Defn) bool {
		if d.Kind != depm.DefnExplicitImport {
			return true
		}

		imp := d.AST.(*ast.ImportDecl)

		imported := a.findModule(imp.ModulePath)
		if imported == nil {
			a.errorOn(report.KindUnresolvedName, d.Span, "no module named `%s`", imp.ModulePath)
			return true
		}

		if len(imp.Names) == 0 {
			a.mod.ImportedNamespaces = append(a.mod.ImportedNamespaces, imported)
			return true
		}

		for _, name := range imp.Names {
			defns := imported.GlobalScope().Lookup(name, false)
			defns = visibleAcrossModules(defns)

			if len(defns) == 0 {
				a.errorOn(report.KindUnresolvedName, d.Span,
					"no public symbol named `%s` in module `%s`", name, imp.ModulePath)
				continue
			}

			d.ImportedValues = append(d.ImportedValues, defns...)

			for _, imported := range defns {
				a.mod.AddXRef(imported)
			}
		}

		return true
	})
}

// findModule locates a module in the context by dotted package name.
func (a *Analyzer) findModule(pkgName string) *depm.Module {
	for _, mod := range a.ctx.Modules {
		if mod.Name == pkgName {
			return mod
		}
	}

	return nil
}

// visibleAcrossModules filters a definition list down to those visible from
// another module.
func visibleAcrossModules(defns []*depm.Defn) []*depm.Defn {
	var visible []*depm.Defn
	for _, d := range defns {
		if d.Visibility == depm.Public {
			visible = append(visible, d)
		}
	}

	return visible
}
