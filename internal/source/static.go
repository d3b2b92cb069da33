package source

import (
	"context"
	"hash/fnv"

	"github.com/jetleaf/typegraph/internal/decl"
)

// StaticKind tags the shape of a static type.
type StaticKind int

const (
	StaticNominal StaticKind = iota
	StaticFunction
	StaticRecord
	StaticTypeParameter
	StaticDynamic
	StaticVoid
)

// StaticType is the analyzer's rendering of a type as written in source,
// including facts the runtime does not expose: nullability suffixes, record
// shapes, and type-parameter bounds.
type StaticType struct {
	Kind StaticKind

	// Name is the bare type name; Display the full rendering including
	// type arguments and nullability, e.g. "Box<int>?".
	Name    string
	Display string

	LibraryURI string
	IsNullable bool

	TypeArguments []*StaticType

	// Bound is the declared upper bound of a type parameter.
	Bound *StaticType

	// Callable shape, for StaticFunction.
	Return         *StaticType
	Parameters     []StaticParam
	TypeParameters []*StaticType

	// Record shape, for StaticRecord. Named fields preserve declaration
	// order.
	PositionalFields []*StaticType
	NamedFields      []StaticRecordField
}

// StaticParam is one formal parameter of a static function type.
type StaticParam struct {
	Name string
	Type *StaticType
}

// StaticRecordField is one named field of a static record type.
type StaticRecordField struct {
	Name string
	Type *StaticType
}

// HashValue is a stable hash of the display string, used as the static half
// of composite cycle identities.
func (t *StaticType) HashValue() uint64 {
	if t == nil {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(t.Display))
	return h.Sum64()
}

// IsRecord reports whether the type is a structural record, unwrapping
// function return types recursively: a function whose (possibly nested)
// return type is a record is treated as record-bearing by the link
// generator's record check.
func (t *StaticType) IsRecord() bool {
	if t == nil {
		return false
	}
	if t.Kind == StaticRecord {
		return true
	}
	return false
}

// RecordShape returns the record type carried by t: t itself when it is a
// record, or the innermost function return type that is one.
func (t *StaticType) RecordShape() *StaticType {
	for t != nil {
		if t.Kind == StaticRecord {
			return t
		}
		if t.Kind == StaticFunction {
			t = t.Return
			continue
		}
		return nil
	}
	return nil
}

// ElementKind tags a static element's declaration shape.
type ElementKind string

const (
	ElementClass       ElementKind = "class"
	ElementEnum        ElementKind = "enum"
	ElementMixin       ElementKind = "mixin"
	ElementTypedef     ElementKind = "typedef"
	ElementField       ElementKind = "field"
	ElementMethod      ElementKind = "method"
	ElementConstructor ElementKind = "constructor"
	ElementParameter   ElementKind = "parameter"
	ElementFunction    ElementKind = "function"
)

// Element is the analyzer's view of one declared entity.
type Element struct {
	Name       string
	Kind       ElementKind
	SourceURI  string
	LibraryURI string

	Type *StaticType

	IsPrivate   bool
	IsSynthetic bool

	// IsNonNull marks a field the source explicitly annotates as non-null;
	// it participates in the derived annotation-field nullability.
	IsNonNull bool

	TypeParameters []*StaticType
	Supertype      *StaticType
	Interfaces     []*StaticType
	Mixins         []*StaticType
	OnTypes        []*StaticType

	// Members and Parameters preserve the analyzer's declaration order,
	// which may diverge from the runtime's enumeration order.
	Members    []*Element
	Parameters []*Element

	Metadata []*StaticAnnotation

	HasDefault   bool
	DefaultValue any
}

// Member finds a direct member element by name.
func (e *Element) Member(name string) *Element {
	if e == nil {
		return nil
	}
	for _, m := range e.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// StaticAnnotation is the analyzer's view of one applied annotation.
type StaticAnnotation struct {
	Name   string
	Type   *StaticType
	Values map[string]any
}

// StaticSource is the static-analysis oracle. It may return nil for
// entities the analyzer has no information about; the engine must still
// function, with reduced precision, from the reflection source alone.
type StaticSource interface {
	// ElementByName resolves an element by simple name and declaring
	// source URI. A nil element with nil error means "unknown".
	ElementByName(ctx context.Context, name, sourceURI string) (*Element, error)
}

// TextProvider supplies raw source text by URI, used for modifier detection
// and nullability heuristics. Failures degrade the heuristic, never the walk.
type TextProvider interface {
	Text(ctx context.Context, uri string) (string, error)
}

// Registry maps URIs and names to package metadata and known runtime types.
type Registry interface {
	// PackageFor resolves which package owns the given library URI.
	PackageFor(uri string) (*decl.Package, bool)
	// KnownType resolves a display name against the registry of reified
	// runtime types, used when only the analyzer can see a type.
	KnownType(name string) (decl.RuntimeType, bool)
}
