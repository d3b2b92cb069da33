package typegraph

import (
	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/resolve"
	"github.com/jetleaf/typegraph/internal/source"
	"github.com/jetleaf/typegraph/internal/store"
)

// Public type aliases for the internal graph model. These are Go type
// aliases (=), identical to the internal types at compile time, so callers
// never import internals directly.
type (
	RuntimeType = decl.RuntimeType
	TypeKind    = decl.TypeKind
	Variance    = decl.Variance
	Package     = decl.Package

	Declaration        = decl.Declaration
	LibraryDeclaration = decl.LibraryDeclaration
	ClassDeclaration   = decl.ClassDeclaration
	EnumDeclaration    = decl.EnumDeclaration
	MixinDeclaration   = decl.MixinDeclaration

	TypeLink                = decl.TypeLink
	LinkDeclaration         = decl.LinkDeclaration
	FunctionLinkDeclaration = decl.FunctionLinkDeclaration
	RecordLinkDeclaration   = decl.RecordLinkDeclaration
	RecordFieldDeclaration  = decl.RecordFieldDeclaration

	FieldDeclaration       = decl.FieldDeclaration
	MethodDeclaration      = decl.MethodDeclaration
	ConstructorDeclaration = decl.ConstructorDeclaration
	ParameterDeclaration   = decl.ParameterDeclaration
	EnumFieldDeclaration   = decl.EnumFieldDeclaration

	AnnotationDeclaration      = decl.AnnotationDeclaration
	AnnotationFieldDeclaration = decl.AnnotationFieldDeclaration
)

// Declaration kinds.
const (
	KindClass   = decl.KindClass
	KindEnum    = decl.KindEnum
	KindMixin   = decl.KindMixin
	KindTypedef = decl.KindTypedef
	KindRecord  = decl.KindRecord
	KindUnknown = decl.KindUnknown
)

// Variance values.
const (
	Covariant     = decl.Covariant
	Contravariant = decl.Contravariant
	Invariant     = decl.Invariant
)

// RuntimeTypeOf derives a stable runtime type identity from a display name.
func RuntimeTypeOf(name string) RuntimeType { return decl.RuntimeTypeOf(name) }

// Terminal link constructors.
var (
	NewDynamicLink = decl.NewDynamicLink
	NewVoidLink    = decl.NewVoidLink
	NewObjectLink  = decl.NewObjectLink
)

// Instantiation errors.
var (
	ErrNoMatchingConstructor = decl.ErrNoMatchingConstructor
	ErrPrivateConstructor    = decl.ErrPrivateConstructor
	ErrNoAccessor            = decl.ErrNoAccessor
)

// Oracle contracts. A Session needs the reflection source; the other three
// are optional and degrade precision, never correctness, when absent.
type (
	ReflectionSource = source.ReflectionSource
	StaticSource     = source.StaticSource
	TextProvider     = source.TextProvider
	Registry         = source.Registry
)

// Warning is a non-fatal problem recorded during a scan.
type Warning = resolve.Warning

// Index row types returned by the query surface.
type (
	DeclarationRow = store.Declaration
	MemberRow      = store.Member
	ParameterRow   = store.Parameter
	LinkRow        = store.TypeLink
	LibraryRow     = store.Library
	WarningRow     = store.Warning
	ScanRow        = store.Scan
)

// Link roles used by the index.
const (
	RoleSupertype    = store.RoleSupertype
	RoleInterface    = store.RoleInterface
	RoleMixin        = store.RoleMixin
	RoleOn           = store.RoleOn
	RoleAlias        = store.RoleAlias
	RoleTypeArgument = store.RoleTypeArgument
	RoleTypeParam    = store.RoleTypeParam
)
