package ast

// Decl is the interface for all declaration nodes: the top-level and
// type-member declarations the middle-end creates definitions from.
type Decl interface {
	ASTNode

	// DeclName returns the declared name.
	DeclName() string

	// Mods returns the declaration's modifier flags.
	Mods() Modifiers
}

// Modifiers is a bitset of declaration modifier flags.
type Modifiers uint16

// Enumeration of modifier flags.
const (
	ModFinal = Modifiers(1 << iota)
	ModAbstract
	ModUndef
	ModReadOnly
	ModStatic
	ModOverride
	ModProtected
	ModPrivate
)

// Has returns whether the modifier set contains all the given flags.
func (m Modifiers) Has(flags Modifiers) bool {
	return m&flags == flags
}

// DeclBase is the base struct for all declaration nodes.
type DeclBase struct {
	ASTBase

	Name      string
	Modifiers Modifiers

	// The attribute expressions attached to the declaration.
	Attributes []ASTNode
}

// NewDeclBase creates a new declaration base.
func NewDeclBase(base ASTBase, name string, mods Modifiers) DeclBase {
	return DeclBase{ASTBase: base, Name: name, Modifiers: mods}
}

func (db *DeclBase) DeclName() string {
	return db.Name
}

func (db *DeclBase) Mods() Modifiers {
	return db.Modifiers
}

/* -------------------------------------------------------------------------- */

// TypeDecl declares a named type: a class, struct, interface, protocol, enum,
// or type alias.
type TypeDecl struct {
	DeclBase

	// The kind of type being declared.  This must be one of the enumerated
	// type declaration kinds below.
	Kind int

	// The declared type parameters, if the type is a template.
	TypeParams []TypeParam

	// The base type expressions, in declaration order.
	Bases []ASTNode

	// The member declarations, in declaration order.
	Members []Decl

	// For alias declarations, the aliased type expression.
	Target ASTNode

	// For enum declarations, the declared value names in order.
	EnumValues []string
}

// Enumeration of type declaration kinds.
const (
	TypeDeclClass = iota
	TypeDeclStruct
	TypeDeclInterface
	TypeDeclProtocol
	TypeDeclEnum
	TypeDeclAlias
)

// TypeParam is a declared template type parameter with an optional
// upper-bound constraint.
type TypeParam struct {
	Name       string
	UpperBound ASTNode
}

// FuncDecl declares a function, method, or macro.
type FuncDecl struct {
	DeclBase

	// Whether the declaration is a macro rather than a function.
	IsMacro bool

	TypeParams []TypeParam
	Params     []*ParamDecl

	// The return type expression.  May be nil, in which case the return type
	// is void.
	ReturnType ASTNode

	// Whether the function has a body.  The middle-end does not look inside
	// bodies except to drive expression analysis; abstract and interface
	// methods have none.
	HasBody bool

	// Whether the function is declared extern or intrinsic: such functions
	// need no body to be considered implemented.
	IsExtern    bool
	IsIntrinsic bool

	// The body expression, if any.
	Body ASTNode
}

// ParamDecl declares a function parameter.
type ParamDecl struct {
	ASTBase

	Name string

	// The parameter's type expression.  May be nil for anonymous-function
	// parameters whose type is picked up from a default value.
	Type ASTNode

	// The default value expression, if any.
	Default ASTNode

	Variadic bool
	ByRef    bool
	Keyword  bool
}

// VarDecl declares a `var` or `let` binding: a field at type scope, a global
// at module scope.
type VarDecl struct {
	DeclBase

	// Whether the declaration is a `let` (single-assignment) binding.
	IsLet bool

	// The declared type expression.  May be nil when inferred from the
	// initializer.
	Type ASTNode

	// The initializer expression, if any.
	Init ASTNode

	// Whether the initializer is constant-foldable.  The parser's constant
	// folder marks this; `let` bindings with constant initializers need no
	// storage.
	InitIsConst bool
}

// PropertyDecl declares a property: a named getter/setter pair.
type PropertyDecl struct {
	DeclBase

	Type   ASTNode
	Getter *FuncDecl
	Setter *FuncDecl
}

// IndexerDecl declares an indexer: a subscript getter/setter pair.
type IndexerDecl struct {
	DeclBase

	Params []*ParamDecl
	Type   ASTNode
	Getter *FuncDecl
	Setter *FuncDecl
}

// NamespaceDecl declares a nested namespace.
type NamespaceDecl struct {
	DeclBase

	Members []Decl
}

// ImportDecl imports names from another module.
type ImportDecl struct {
	DeclBase

	// The dotted path of the module being imported.
	ModulePath string

	// The names imported from the module.  Empty for whole-module imports.
	Names []string
}

// ModuleAST is the root node the parser delivers for a single module.
type ModuleAST struct {
	ASTBase

	// The module's dotted package name.
	PkgName string

	// The absolute and representative paths of the module's source file.
	AbsPath, ReprPath string

	Imports []*ImportDecl
	Decls   []Decl
}
