package resolve

import (
	"context"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// ExtractAnnotations resolves the metadata annotations applied to a
// declaration. Reflection metadata is matched to static-analysis metadata
// by index first, then by name, the opposite fallback order from parameter
// matching. Extraction is cycle-protected in its
// own identity namespace, since an annotation class can be annotated with
// itself.
func (s *Session) ExtractAnnotations(ctx context.Context, meta []source.InstanceMirror, libURI, sourceURI string, pkg *decl.Package, staticMeta []*source.StaticAnnotation) []*decl.AnnotationDeclaration {
	var anns []*decl.AnnotationDeclaration
	for i, im := range meta {
		st := staticAnnotationFor(staticMeta, i, annotationName(im))
		if ann := s.extractAnnotation(ctx, im, st, libURI, sourceURI, pkg); ann != nil {
			anns = append(anns, ann)
		}
	}
	return anns
}

// staticAnnotationFor matches reflection metadata at position idx to its
// analyzer counterpart: the same index when in bounds, else a name search.
func staticAnnotationFor(staticMeta []*source.StaticAnnotation, idx int, name string) *source.StaticAnnotation {
	if idx >= 0 && idx < len(staticMeta) {
		return staticMeta[idx]
	}
	for _, st := range staticMeta {
		if st.Name == name {
			return st
		}
	}
	return nil
}

func annotationName(im source.InstanceMirror) string {
	if tm, ok := im.Type(); ok {
		if name, ok := tm.SimpleName(); ok {
			return name
		}
	}
	return ""
}

func (s *Session) extractAnnotation(ctx context.Context, im source.InstanceMirror, st *source.StaticAnnotation, libURI, sourceURI string, pkg *decl.Package) *decl.AnnotationDeclaration {
	name := annotationName(im)
	if name == "" && st != nil {
		name = st.Name
	}
	if name == "" {
		s.warnf("annotation", sourceURI, "annotation with no resolvable type")
		return nil
	}

	var hash uint64
	var tm source.TypeMirror
	if t, ok := im.Type(); ok {
		tm = t
		if rt, ok := t.ReflectedType(); ok {
			hash = rt.Hash
		}
	}
	id := annotationIdentity(name, hash, libURI)
	if !s.tracker.Begin(id) {
		s.warnf("annotation", name, "cyclic annotation reference, skipped")
		return nil
	}
	defer s.tracker.End(id)

	var stType *source.StaticType
	if st != nil {
		stType = st.Type
	}
	typeLink := s.GetLink(ctx, tm, pkg, libURI, stType)

	// Raw user-provided values: the mirror's application arguments,
	// augmented by the analyzer's when the mirror has none.
	values := im.Arguments()
	if len(values) == 0 && st != nil {
		values = st.Values
	}

	var instance any
	if v, ok := im.Value(); ok {
		instance = v
	}

	return &decl.AnnotationDeclaration{
		Type:     typeLink,
		Instance: instance,
		Values:   values,
		Fields:   s.annotationFields(ctx, typeLink, values, libURI),
	}
}

// annotationFields resolves the annotation class's declared fields and
// pairs each with its default and the user-supplied value. Field
// nullability is derived, never user-settable: nullable means no default,
// no user value, and no explicit non-null marker in source.
func (s *Session) annotationFields(ctx context.Context, typeLink decl.TypeLink, values map[string]any, libURI string) map[string]*decl.AnnotationFieldDeclaration {
	link := typeLink.Link()
	classEl := s.staticElement(ctx, link.Name, link.DeclaringURI)
	if classEl == nil {
		return nil
	}

	fields := make(map[string]*decl.AnnotationFieldDeclaration)
	for _, m := range classEl.Members {
		if m.Kind != source.ElementField {
			continue
		}
		value, hasValue := values[m.Name]
		fields[m.Name] = &decl.AnnotationFieldDeclaration{
			Name:         m.Name,
			DefaultValue: m.DefaultValue,
			HasDefault:   m.HasDefault,
			Value:        value,
			HasValue:     hasValue,
			IsNullable:   !m.HasDefault && !hasValue && !m.IsNonNull,
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
