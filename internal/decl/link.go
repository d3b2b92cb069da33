package decl

import "fmt"

// TypeLink is a reference to a type: its name, type arguments, bounds, and
// source locations, as opposed to the type's full member-level definition.
// It is implemented by exactly three variants: *LinkDeclaration,
// *FunctionLinkDeclaration, and *RecordLinkDeclaration.
type TypeLink interface {
	// Link returns the shared link core of the variant.
	Link() *LinkDeclaration
	// ToJSON returns the JSON projection of the full variant.
	ToJSON() map[string]any
}

// LinkDeclaration is a lightweight pointer to a type plus its type
// arguments, upper bound, variance, and source locations.
type LinkDeclaration struct {
	Base

	// RawType is the unparameterized pointer type (e.g. Box for Box<int>).
	RawType RuntimeType
	// ResolvedType is the fully parameterized runtime type.
	ResolvedType RuntimeType

	TypeArguments []TypeLink

	// DeclaringURI is the canonical library the linked type lives in.
	DeclaringURI string
	// ReferenceURI is the library the link was written in. It differs from
	// DeclaringURI when the type is referenced through an alias or import.
	ReferenceURI string

	// UpperBound is set for bounded type parameters; nil means unbounded
	// (the universal top bound is omitted).
	UpperBound TypeLink

	Variance Variance
}

func (l *LinkDeclaration) Link() *LinkDeclaration { return l }

// DebugID is the stable identity key of the link.
func (l *LinkDeclaration) DebugID() string {
	return fmt.Sprintf("link:%s@%s#%d", l.Name, l.DeclaringURI, l.ResolvedType.Hash)
}

// ToJSON returns the link's JSON projection.
func (l *LinkDeclaration) ToJSON() map[string]any {
	return l.coreJSON()
}

func (l *LinkDeclaration) coreJSON() map[string]any {
	m := map[string]any{
		"name":          l.Name,
		"raw_type":      l.RawType.Name,
		"resolved_type": l.ResolvedType.Name,
		"declaring_uri": l.DeclaringURI,
		"reference_uri": l.ReferenceURI,
		"variance":      string(l.Variance),
		"is_public":     l.IsPublic,
		"is_synthetic":  l.IsSynthetic,
	}
	if len(l.TypeArguments) > 0 {
		args := make([]map[string]any, 0, len(l.TypeArguments))
		for _, a := range l.TypeArguments {
			args = append(args, a.ToJSON())
		}
		m["type_arguments"] = args
	}
	if l.UpperBound != nil {
		m["upper_bound"] = l.UpperBound.ToJSON()
	}
	return m
}

// newTerminalLink builds the shared shape of the three terminal links:
// public, non-synthetic, no type arguments, invariant.
func newTerminalLink(t RuntimeType, uri string) *LinkDeclaration {
	return &LinkDeclaration{
		Base: Base{
			Name:     t.Name,
			Type:     t,
			IsPublic: true,
		},
		RawType:      t,
		ResolvedType: t,
		DeclaringURI: uri,
		ReferenceURI: uri,
		Variance:     Invariant,
	}
}

// NewDynamicLink returns the terminal link for the dynamic type.
func NewDynamicLink() *LinkDeclaration { return newTerminalLink(DynamicType, CoreLibraryURI) }

// NewVoidLink returns the terminal link for the void type.
func NewVoidLink() *LinkDeclaration { return newTerminalLink(VoidType, CoreLibraryURI) }

// NewObjectLink returns the terminal link for the universal top type, used
// as the fallback for references that could not be resolved at all.
func NewObjectLink() *LinkDeclaration { return newTerminalLink(ObjectType, CoreLibraryURI) }

// FunctionLinkDeclaration is the callable-type variant of a link.
type FunctionLinkDeclaration struct {
	LinkDeclaration

	ReturnType     TypeLink
	ParameterTypes []TypeLink
	TypeParameters []TypeLink

	// IsNullable marks the callable reference itself as nullable
	// (`void Function()?`), independent of the return type's nullability.
	IsNullable bool

	// Signature is the human-readable rendering,
	// e.g. "int<T>(String, T)?".
	Signature string
}

func (f *FunctionLinkDeclaration) Link() *LinkDeclaration { return &f.LinkDeclaration }

// ToJSON returns the function link's JSON projection.
func (f *FunctionLinkDeclaration) ToJSON() map[string]any {
	m := f.coreJSON()
	m["is_function"] = true
	m["is_nullable"] = f.IsNullable
	m["signature"] = f.Signature
	if f.ReturnType != nil {
		m["return_type"] = f.ReturnType.ToJSON()
	}
	if len(f.ParameterTypes) > 0 {
		params := make([]map[string]any, 0, len(f.ParameterTypes))
		for _, p := range f.ParameterTypes {
			params = append(params, p.ToJSON())
		}
		m["parameter_types"] = params
	}
	if len(f.TypeParameters) > 0 {
		tps := make([]map[string]any, 0, len(f.TypeParameters))
		for _, tp := range f.TypeParameters {
			tps = append(tps, tp.ToJSON())
		}
		m["type_parameters"] = tps
	}
	return m
}

// RecordLinkDeclaration is the structural-record variant of a link.
type RecordLinkDeclaration struct {
	LinkDeclaration

	Fields []*RecordFieldDeclaration

	// IsNullable is the record type's own nullability suffix, independent
	// of any field's nullability.
	IsNullable bool
}

func (r *RecordLinkDeclaration) Link() *LinkDeclaration { return &r.LinkDeclaration }

// ToJSON returns the record link's JSON projection.
func (r *RecordLinkDeclaration) ToJSON() map[string]any {
	m := r.coreJSON()
	m["is_record"] = true
	m["is_nullable"] = r.IsNullable
	fields := make([]map[string]any, 0, len(r.Fields))
	for _, f := range r.Fields {
		fields = append(fields, f.ToJSON())
	}
	m["fields"] = fields
	return m
}

// RecordFieldDeclaration is one field of a structural record type.
type RecordFieldDeclaration struct {
	// Name is set for named fields and empty for positional ones.
	Name string
	// Position is the zero-based positional index, or -1 for named fields.
	Position int
	Type     TypeLink
	// IsNullable is the field's own declared nullability.
	IsNullable bool
	IsNamed    bool
}

// ToJSON returns the record field's JSON projection.
func (f *RecordFieldDeclaration) ToJSON() map[string]any {
	m := map[string]any{
		"name":        f.Name,
		"position":    f.Position,
		"is_named":    f.IsNamed,
		"is_nullable": f.IsNullable,
	}
	if f.Type != nil {
		m["type"] = f.Type.ToJSON()
	}
	return m
}
