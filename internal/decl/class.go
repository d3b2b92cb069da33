package decl

// ClassDeclaration is the full definition of a nominal type: its members,
// supertype, interfaces, mixins, type parameters, and modifier flags.
type ClassDeclaration struct {
	SourceBase

	Kind TypeKind

	Constructors []*ConstructorDeclaration
	Fields       []*FieldDeclaration
	Methods      []*MethodDeclaration

	// Superclass is nil for the universal top type itself.
	Superclass TypeLink
	Interfaces []TypeLink
	Mixins     []TypeLink

	TypeParameters []TypeLink

	// Aliased is the referent of a typedef; nil for every other kind.
	Aliased TypeLink

	IsAbstract   bool
	IsSealed     bool
	IsBase       bool
	IsInterface  bool
	IsFinal      bool
	IsMixinClass bool
	IsRecord     bool
}

// DebugID is the class's stable identity key.
func (c *ClassDeclaration) DebugID() string { return c.debugID(string(c.Kind)) }

// ToJSON returns the class's JSON projection.
func (c *ClassDeclaration) ToJSON() map[string]any {
	m := map[string]any{
		"name":         c.Name,
		"kind":         string(c.Kind),
		"type":         c.Type.Name,
		"library_uri":  c.LibraryURI,
		"source_uri":   c.SourceURI,
		"is_public":    c.IsPublic,
		"is_synthetic": c.IsSynthetic,
		"is_abstract":  c.IsAbstract,
	}
	for flag, set := range map[string]bool{
		"is_sealed":      c.IsSealed,
		"is_base":        c.IsBase,
		"is_interface":   c.IsInterface,
		"is_final":       c.IsFinal,
		"is_mixin_class": c.IsMixinClass,
		"is_record":      c.IsRecord,
	} {
		if set {
			m[flag] = true
		}
	}
	if c.Superclass != nil {
		m["superclass"] = c.Superclass.ToJSON()
	}
	if c.Aliased != nil {
		m["aliased"] = c.Aliased.ToJSON()
	}
	m["interfaces"] = linksJSON(c.Interfaces)
	m["mixins"] = linksJSON(c.Mixins)
	m["type_parameters"] = linksJSON(c.TypeParameters)
	if len(c.Constructors) > 0 {
		ctors := make([]map[string]any, 0, len(c.Constructors))
		for _, ct := range c.Constructors {
			ctors = append(ctors, ct.ToJSON())
		}
		m["constructors"] = ctors
	}
	if len(c.Fields) > 0 {
		fields := make([]map[string]any, 0, len(c.Fields))
		for _, f := range c.Fields {
			fields = append(fields, f.ToJSON())
		}
		m["fields"] = fields
	}
	if len(c.Methods) > 0 {
		methods := make([]map[string]any, 0, len(c.Methods))
		for _, mm := range c.Methods {
			methods = append(methods, mm.ToJSON())
		}
		m["methods"] = methods
	}
	if anns := annotationsJSON(c.Annotations); anns != nil {
		m["annotations"] = anns
	}
	return m
}

func linksJSON(links []TypeLink) []map[string]any {
	out := make([]map[string]any, 0, len(links))
	for _, l := range links {
		if l != nil {
			out = append(out, l.ToJSON())
		}
	}
	return out
}

// EnumDeclaration refines ClassDeclaration with the enum's ordered values.
type EnumDeclaration struct {
	ClassDeclaration

	Values []*EnumFieldDeclaration
}

// ToJSON returns the enum's JSON projection.
func (e *EnumDeclaration) ToJSON() map[string]any {
	m := e.ClassDeclaration.ToJSON()
	values := make([]map[string]any, 0, len(e.Values))
	for _, v := range e.Values {
		values = append(values, v.ToJSON())
	}
	m["values"] = values
	return m
}

// EnumFieldDeclaration is one enum value: its name, runtime value, and
// declaration position.
type EnumFieldDeclaration struct {
	Name       string
	Value      any
	Position   int
	IsNullable bool
}

// ToJSON returns the enum field's JSON projection.
func (v *EnumFieldDeclaration) ToJSON() map[string]any {
	return map[string]any{
		"name":        v.Name,
		"position":    v.Position,
		"is_nullable": v.IsNullable,
		"value":       renderValue(v.Value),
	}
}

// MixinDeclaration refines ClassDeclaration with the mixin's `on`-clause
// constraint links.
type MixinDeclaration struct {
	ClassDeclaration

	OnTypes []TypeLink
}

// ToJSON returns the mixin's JSON projection.
func (x *MixinDeclaration) ToJSON() map[string]any {
	m := x.ClassDeclaration.ToJSON()
	m["on_types"] = linksJSON(x.OnTypes)
	return m
}

// LibraryDeclaration owns a URI, its package, and the ordered list of all
// top-level declarations discovered in the library.
type LibraryDeclaration struct {
	URI          string
	Package      *Package
	Declarations []Declaration
}

// ToJSON returns the library's JSON projection.
func (l *LibraryDeclaration) ToJSON() map[string]any {
	decls := make([]map[string]any, 0, len(l.Declarations))
	for _, d := range l.Declarations {
		decls = append(decls, d.ToJSON())
	}
	return map[string]any{
		"uri":          l.URI,
		"package":      l.Package.ToJSON(),
		"declarations": decls,
	}
}
