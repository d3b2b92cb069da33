package decl

// AnnotationDeclaration is one metadata annotation applied to a declaration:
// a link to the annotation's class, the runtime instance when the reflection
// source can produce one, and the per-field value breakdown.
type AnnotationDeclaration struct {
	// Type links to the annotation's class.
	Type TypeLink
	// Instance is the reified annotation instance, or nil.
	Instance any
	// Fields maps field name to its resolved declaration.
	Fields map[string]*AnnotationFieldDeclaration
	// Values is the raw user-provided value map, as written at the
	// application site.
	Values map[string]any
}

// Name is the simple name of the annotation's class.
func (a *AnnotationDeclaration) Name() string {
	if a.Type == nil {
		return ""
	}
	return a.Type.Link().Name
}

// ToJSON returns the annotation's JSON projection.
func (a *AnnotationDeclaration) ToJSON() map[string]any {
	m := map[string]any{"name": a.Name()}
	if a.Type != nil {
		m["type"] = a.Type.ToJSON()
	}
	if len(a.Values) > 0 {
		values := make(map[string]any, len(a.Values))
		for k, v := range a.Values {
			values[k] = renderValue(v)
		}
		m["values"] = values
	}
	if len(a.Fields) > 0 {
		fields := make(map[string]any, len(a.Fields))
		for name, f := range a.Fields {
			fields[name] = f.ToJSON()
		}
		m["fields"] = fields
	}
	return m
}

// AnnotationFieldDeclaration is one field of an applied annotation: the
// declared field, its default, and the user-supplied value when present.
type AnnotationFieldDeclaration struct {
	Name string
	// Field is the declared field on the annotation class, when resolvable.
	Field *FieldDeclaration

	DefaultValue any
	HasDefault   bool

	Value    any
	HasValue bool

	// IsNullable is derived, never user-settable: a field is nullable when
	// it has no default, no user-supplied value, and the source does not
	// mark it non-null.
	IsNullable bool
}

// EffectiveValue returns the user-supplied value when present, else the
// default, else nil.
func (f *AnnotationFieldDeclaration) EffectiveValue() any {
	if f.HasValue {
		return f.Value
	}
	if f.HasDefault {
		return f.DefaultValue
	}
	return nil
}

// ToJSON returns the annotation field's JSON projection.
func (f *AnnotationFieldDeclaration) ToJSON() map[string]any {
	m := map[string]any{
		"name":        f.Name,
		"has_default": f.HasDefault,
		"has_value":   f.HasValue,
		"is_nullable": f.IsNullable,
	}
	if f.HasDefault {
		m["default_value"] = renderValue(f.DefaultValue)
	}
	if f.HasValue {
		m["value"] = renderValue(f.Value)
	}
	return m
}
