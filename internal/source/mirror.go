// Package source defines the contracts of the four external collaborators
// the resolution engine consumes: the runtime reflection source, the
// static-analysis source, the source-text provider, and the package
// registry. The engine treats the first two as opaque oracles over the same
// program; each may be missing facts the other has.
package source

import "github.com/jetleaf/typegraph/internal/decl"

// Position is the structural usage position of a type reference, used to
// derive a variance tendency for type variables.
type Position int

const (
	PositionNone Position = iota
	PositionReturn
	PositionParameter
)

// TypeMirror is the reflection source's view of one type reference. Lookups
// return ok=false when the runtime cannot answer ("unsupported" responses
// are never fatal).
type TypeMirror interface {
	// SimpleName is the runtime's name for the type.
	SimpleName() (string, bool)
	// ReflectedType is the concrete, possibly parameterized runtime type.
	ReflectedType() (decl.RuntimeType, bool)
	// DeclarationType is the raw, unparameterized runtime type.
	DeclarationType() (decl.RuntimeType, bool)
	// LibraryURI is the declaring library as the runtime sees it.
	LibraryURI() (string, bool)
	// TypeArguments are the declared argument mirrors, in order.
	TypeArguments() []TypeMirror
	// IsTypeVariable marks a type-parameter reference.
	IsTypeVariable() bool
	// UpperBound is the declared bound of a type variable.
	UpperBound() (TypeMirror, bool)
	// UsagePosition is where this reference appears structurally.
	UsagePosition() Position
	// IsFunction marks a callable type.
	IsFunction() bool
	// Function returns the callable shape of a function type.
	Function() (FunctionMirror, bool)
	// IsPrivate is the runtime's privacy flag.
	IsPrivate() bool
}

// FunctionMirror is the reflection source's view of a callable type.
type FunctionMirror interface {
	ReturnType() (TypeMirror, bool)
	ParameterTypes() []TypeMirror
	TypeVariables() []TypeMirror
	// Hash identifies the callable in the runtime; callables and nominal
	// types live in distinct identity namespaces.
	Hash() uint64
	// IsNullable reports the callable reference's own nullability when the
	// runtime knows it.
	IsNullable() bool
}

// ClassMirror is the reflection source's view of a type declaration.
type ClassMirror interface {
	TypeMirror

	// KindHint is the runtime's best guess at the declaration kind. It
	// cannot always distinguish a mixin declaration from a class applied
	// as a mixin; the engine refines it from source text.
	KindHint() decl.TypeKind
	Superclass() (TypeMirror, bool)
	Interfaces() []TypeMirror
	Mixins() []TypeMirror
	TypeVariables() []TypeMirror
	IsAbstract() bool
	// Referent is the aliased type of a typedef.
	Referent() (TypeMirror, bool)

	// Member enumerations, each in its own declaration order.
	Constructors() []MethodMirror
	Fields() []VariableMirror
	Methods() []MethodMirror

	Metadata() []InstanceMirror
	SourceURI() (string, bool)
}

// VariableMirror is the reflection source's view of a field or top-level
// variable.
type VariableMirror interface {
	MemberName() string
	Type() (TypeMirror, bool)
	IsStatic() bool
	IsFinal() bool
	IsConst() bool
	IsPrivate() bool
	Metadata() []InstanceMirror
	// StaticValue is the current value of a static or const variable.
	StaticValue() (any, bool)
	// Accessors returns bound get/set operations; either may be nil.
	Accessors() (get func() (any, error), set func(v any) error)
}

// MethodMirror is the reflection source's view of a method, getter, setter,
// constructor, or top-level function.
type MethodMirror interface {
	MemberName() string
	ReturnType() (TypeMirror, bool)
	Parameters() []ParameterMirror
	IsStatic() bool
	IsAbstract() bool
	IsGetter() bool
	IsSetter() bool
	IsFactory() bool
	IsConstConstructor() bool
	IsExternal() bool
	IsPrivate() bool
	Metadata() []InstanceMirror
	SourceURI() (string, bool)
	// Invoker returns the bound invocation operation, or nil.
	Invoker() func(args map[string]any) (any, error)
}

// ParameterMirror is the reflection source's view of a formal parameter.
type ParameterMirror interface {
	ParamName() string
	Type() (TypeMirror, bool)
	IsNamed() bool
	IsOptional() bool
	HasDefault() bool
	DefaultValue() (any, bool)
	IsRequired() bool
}

// InstanceMirror is a reified runtime value, used for annotation instances
// and enum values.
type InstanceMirror interface {
	Type() (TypeMirror, bool)
	Value() (any, bool)
	// Arguments is the raw user-provided value map of an annotation
	// application, keyed by field name.
	Arguments() map[string]any
}

// LibraryMirror is the reflection source's view of one library.
type LibraryMirror interface {
	URI() string
	// DeclaredTypes enumerates the library's type declarations in the
	// runtime's declaration-enumeration order.
	DeclaredTypes() []ClassMirror
	TopLevelFields() []VariableMirror
	TopLevelFunctions() []MethodMirror
}

// ReflectionSource is the runtime-introspection oracle. It is authoritative
// for a type's existence and runtime identity.
type ReflectionSource interface {
	Libraries() []LibraryMirror
	Library(uri string) (LibraryMirror, bool)
	// GenericOverride consults the annotation side-channel that records the
	// originally intended parameterized type for types the runtime erased
	// to a raw form.
	GenericOverride(t decl.RuntimeType) (decl.RuntimeType, bool)
}
