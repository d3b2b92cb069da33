// Package decl defines the immutable declaration graph produced by a scan
// session: classes, enums, mixins, typedefs, libraries, members, annotations,
// and the lightweight type links that tie them together. Declarations are
// built once per session and must not be mutated after their assembler
// returns them.
package decl

import (
	"fmt"
	"hash/fnv"
)

// RuntimeType identifies a reified runtime type. It is comparable and serves
// as the key for the session type cache. Hash is the runtime identity hash;
// Name is the runtime's rendering of the type (parameterized types carry
// their arguments, e.g. "Box<int>").
type RuntimeType struct {
	Name string
	Hash uint64
}

// IsZero reports whether the runtime type is the absent value.
func (t RuntimeType) IsZero() bool {
	return t.Name == "" && t.Hash == 0
}

func (t RuntimeType) String() string {
	return t.Name
}

// RuntimeTypeOf derives a RuntimeType from a display name alone, used when
// only the static-analysis side can name a type and no reified runtime type
// exists. The hash is stable across sessions for the same name.
func RuntimeTypeOf(name string) RuntimeType {
	h := fnv.New64a()
	h.Write([]byte(name))
	return RuntimeType{Name: name, Hash: h.Sum64()}
}

// Well-known terminal types of the modeled language.
var (
	DynamicType = RuntimeTypeOf("dynamic")
	VoidType    = RuntimeTypeOf("void")
	ObjectType  = RuntimeTypeOf("Object")
)

// CoreLibraryURI is the placeholder library the runtime reports for built-in
// types. A more specific static-analysis URI is always preferred over it.
const CoreLibraryURI = "dart:core"

// Variance describes how a type parameter's subtyping relationship
// propagates to the parameterized type.
type Variance string

const (
	Covariant     Variance = "covariant"
	Contravariant Variance = "contravariant"
	Invariant     Variance = "invariant"
)

// TypeKind tags the shape of a nominal declaration.
type TypeKind string

const (
	KindClass   TypeKind = "class"
	KindEnum    TypeKind = "enum"
	KindMixin   TypeKind = "mixin"
	KindTypedef TypeKind = "typedef"
	KindRecord  TypeKind = "record"
	KindUnknown TypeKind = "unknown"
)

// Declaration is the root of every graph entity. Identity is the computed
// debug identifier, not Go object identity: the same conceptual type may be
// independently reconstructed from the two metadata sources and must compare
// equal.
type Declaration interface {
	// DeclName is the declaration's simple name.
	DeclName() string
	// Identity is the declaration's resolved runtime type.
	Identity() RuntimeType
	// Public reports whether the declaration is publicly visible.
	Public() bool
	// Synthetic reports whether the declaration was generated rather than
	// written by the user.
	Synthetic() bool
	// DebugID is the stable string key used for equality.
	DebugID() string
	// ToJSON returns the JSON-serializable projection.
	ToJSON() map[string]any
}

// Equal reports whether two declarations denote the same entity.
func Equal(a, b Declaration) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.DebugID() == b.DebugID()
}

// Base carries the fields shared by every declaration.
type Base struct {
	Name        string
	Type        RuntimeType
	IsPublic    bool
	IsSynthetic bool
}

func (b *Base) DeclName() string      { return b.Name }
func (b *Base) Identity() RuntimeType { return b.Type }
func (b *Base) Public() bool          { return b.IsPublic }
func (b *Base) Synthetic() bool       { return b.IsSynthetic }

// SourceBase extends Base for declarations that originate in a library:
// they know their declaring library URI, their annotations, and optionally
// the exact source location they were written at.
type SourceBase struct {
	Base
	LibraryURI  string
	SourceURI   string
	Package     *Package
	Annotations []*AnnotationDeclaration
}

// debugID builds the composite identity key for a source declaration.
func (s *SourceBase) debugID(kind string) string {
	return fmt.Sprintf("%s:%s@%s#%d", kind, s.Name, s.LibraryURI, s.Type.Hash)
}

// Package describes one package of the scanned program.
type Package struct {
	Name            string
	Version         string
	LanguageVersion string
	IsRoot          bool
	Path            string
}

// ToJSON returns the package's JSON projection.
func (p *Package) ToJSON() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"name":             p.Name,
		"version":          p.Version,
		"language_version": p.LanguageVersion,
		"is_root":          p.IsRoot,
		"path":             p.Path,
	}
}

// annotationsJSON projects an annotation list, tolerating nil.
func annotationsJSON(anns []*AnnotationDeclaration) []map[string]any {
	if len(anns) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(anns))
	for _, a := range anns {
		out = append(out, a.ToJSON())
	}
	return out
}
