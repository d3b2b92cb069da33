package resolve

import (
	"context"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// decomposeRecord splits a structural record type into its named and
// positional fields, each resolved to a link. Records exist only in the
// static-analysis view; the reflection source treats them as opaque, so
// each field gets a synthetic reflection-equivalent reference purely for
// link-generation uniformity.
func (s *Session) decomposeRecord(ctx context.Context, rec *source.StaticType, pkg *decl.Package, libURI string) decl.TypeLink {
	id := recordIdentity(rec, libURI)
	if cached, ok := s.links[id]; ok {
		return cached
	}

	var fields []*decl.RecordFieldDeclaration

	// Named fields first, preserving declaration order. They are not
	// positional, signaled by position -1.
	for _, nf := range rec.NamedFields {
		fields = append(fields, &decl.RecordFieldDeclaration{
			Name:       nf.Name,
			Position:   -1,
			IsNamed:    true,
			IsNullable: nf.Type != nil && nf.Type.IsNullable,
			Type:       s.recordFieldLink(ctx, nf.Type, pkg, libURI),
		})
	}
	for i, pf := range rec.PositionalFields {
		fields = append(fields, &decl.RecordFieldDeclaration{
			Position:   i,
			IsNullable: pf != nil && pf.IsNullable,
			Type:       s.recordFieldLink(ctx, pf, pkg, libURI),
		})
	}

	// Records have no declaring class; the qualified name is the string
	// rendering of the full shape.
	shape := rec.Display
	if shape == "" {
		shape = "Record"
	}

	link := &decl.RecordLinkDeclaration{
		LinkDeclaration: decl.LinkDeclaration{
			Base: decl.Base{
				Name:        shape,
				Type:        decl.RuntimeTypeOf(shape),
				IsPublic:    true,
				IsSynthetic: true,
			},
			RawType:      decl.RuntimeTypeOf("Record"),
			ResolvedType: decl.RuntimeTypeOf(shape),
			DeclaringURI: libURI,
			ReferenceURI: libURI,
			Variance:     decl.Invariant,
		},
		Fields: fields,
		// The record's own nullability suffix, independent of any field's.
		IsNullable: rec.IsNullable,
	}
	s.links[id] = link
	return link
}

// recordFieldLink resolves one record field's type. The field's runtime
// type comes from the known-type registry when the name is reified there.
func (s *Session) recordFieldLink(ctx context.Context, ft *source.StaticType, pkg *decl.Package, libURI string) decl.TypeLink {
	if ft == nil {
		return decl.NewDynamicLink()
	}
	var tm source.TypeMirror
	if rt, ok := s.knownType(ft.Name); ok {
		tm = newSyntheticMirror(ft.Name, rt, libURI)
	}
	return s.GetLink(ctx, tm, pkg, libURI, ft)
}

// syntheticMirror is a reflection-equivalent reference built from a known
// runtime type, so that analyzer-only constructs flow through the same link
// pipeline as reflected ones.
type syntheticMirror struct {
	name   string
	rt     decl.RuntimeType
	libURI string
}

func newSyntheticMirror(name string, rt decl.RuntimeType, libURI string) *syntheticMirror {
	return &syntheticMirror{name: name, rt: rt, libURI: libURI}
}

func (m *syntheticMirror) SimpleName() (string, bool)                { return m.name, true }
func (m *syntheticMirror) ReflectedType() (decl.RuntimeType, bool)   { return m.rt, true }
func (m *syntheticMirror) DeclarationType() (decl.RuntimeType, bool) { return m.rt, true }
func (m *syntheticMirror) LibraryURI() (string, bool)                { return m.libURI, m.libURI != "" }
func (m *syntheticMirror) TypeArguments() []source.TypeMirror        { return nil }
func (m *syntheticMirror) IsTypeVariable() bool                      { return false }
func (m *syntheticMirror) UpperBound() (source.TypeMirror, bool)     { return nil, false }
func (m *syntheticMirror) UsagePosition() source.Position            { return source.PositionNone }
func (m *syntheticMirror) IsFunction() bool                          { return false }
func (m *syntheticMirror) Function() (source.FunctionMirror, bool)   { return nil, false }
func (m *syntheticMirror) IsPrivate() bool                           { return false }
