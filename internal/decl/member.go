package decl

import (
	"errors"
	"fmt"
)

// Capability interfaces replace reflective member access by string name:
// each concrete declaration shape implements exactly the capabilities it
// supports.

// Readable is a declaration whose current value can be read.
type Readable interface {
	Read() (any, error)
}

// Writable is a declaration whose value can be written.
type Writable interface {
	Write(v any) error
}

// Invocable is a declaration that can be invoked with named arguments.
type Invocable interface {
	Invoke(args map[string]any) (any, error)
}

// ErrNoAccessor is returned when a field has no bound accessor, e.g. an
// instance field read at scan time with no instance bound.
var ErrNoAccessor = errors.New("decl: no bound accessor")

// MemberBase carries the fields shared by fields, methods, and constructors.
type MemberBase struct {
	SourceBase

	// Owner links back to the declaring class; nil for top-level members.
	Owner TypeLink

	IsStatic   bool
	IsAbstract bool
}

func (m *MemberBase) memberJSON(kind string) map[string]any {
	j := map[string]any{
		"name":         m.Name,
		"kind":         kind,
		"library_uri":  m.LibraryURI,
		"is_public":    m.IsPublic,
		"is_synthetic": m.IsSynthetic,
		"is_static":    m.IsStatic,
		"is_abstract":  m.IsAbstract,
	}
	if m.Owner != nil {
		j["owner"] = m.Owner.Link().Name
	}
	if anns := annotationsJSON(m.Annotations); anns != nil {
		j["annotations"] = anns
	}
	return j
}

// FieldDeclaration is a field or top-level variable.
type FieldDeclaration struct {
	MemberBase

	FieldType TypeLink

	IsFinal    bool
	IsConst    bool
	IsLate     bool
	IsTopLevel bool
	IsNullable bool

	// Getter and Setter are accessors bound to a runtime instance-or-null;
	// nil when no binding is available.
	Getter func() (any, error)
	Setter func(v any) error
}

// Read returns the field's current value through its bound getter.
func (f *FieldDeclaration) Read() (any, error) {
	if f.Getter == nil {
		return nil, fmt.Errorf("read field %s: %w", f.Name, ErrNoAccessor)
	}
	return f.Getter()
}

// Write sets the field's value through its bound setter.
func (f *FieldDeclaration) Write(v any) error {
	if f.Setter == nil {
		return fmt.Errorf("write field %s: %w", f.Name, ErrNoAccessor)
	}
	if f.IsFinal || f.IsConst {
		return fmt.Errorf("write field %s: field is immutable", f.Name)
	}
	return f.Setter(v)
}

// DebugID is the field's stable identity key.
func (f *FieldDeclaration) DebugID() string { return f.debugID("field") }

// ToJSON returns the field's JSON projection.
func (f *FieldDeclaration) ToJSON() map[string]any {
	m := f.memberJSON("field")
	m["is_final"] = f.IsFinal
	m["is_const"] = f.IsConst
	m["is_late"] = f.IsLate
	m["is_top_level"] = f.IsTopLevel
	m["is_nullable"] = f.IsNullable
	if f.FieldType != nil {
		m["type"] = f.FieldType.ToJSON()
	}
	return m
}

// MethodDeclaration is an instance, static, or top-level method, including
// getters and setters.
type MethodDeclaration struct {
	MemberBase

	ReturnType TypeLink
	Parameters []*ParameterDeclaration

	IsGetter        bool
	IsSetter        bool
	IsFactory       bool
	IsConst         bool
	IsExternal      bool
	ReturnsNullable bool

	// Invoker is the bound invocation operation; nil when the runtime
	// offers none for this member.
	Invoker func(args map[string]any) (any, error)
}

// Invoke calls the method through its bound invoker.
func (m *MethodDeclaration) Invoke(args map[string]any) (any, error) {
	if m.Invoker == nil {
		return nil, fmt.Errorf("invoke method %s: %w", m.Name, ErrNoAccessor)
	}
	return m.Invoker(args)
}

// DebugID is the method's stable identity key.
func (m *MethodDeclaration) DebugID() string { return m.debugID("method") }

// ToJSON returns the method's JSON projection.
func (m *MethodDeclaration) ToJSON() map[string]any {
	j := m.memberJSON("method")
	j["is_getter"] = m.IsGetter
	j["is_setter"] = m.IsSetter
	j["is_factory"] = m.IsFactory
	j["is_const"] = m.IsConst
	j["is_external"] = m.IsExternal
	j["returns_nullable"] = m.ReturnsNullable
	if m.ReturnType != nil {
		j["return_type"] = m.ReturnType.ToJSON()
	}
	j["parameters"] = parametersJSON(m.Parameters)
	return j
}

// ConstructorDeclaration is one constructor of a class. The empty name
// denotes the unnamed constructor.
type ConstructorDeclaration struct {
	MemberBase

	Parameters []*ParameterDeclaration

	IsFactory bool
	IsConst   bool

	// Factory is the bound instantiation operation.
	Factory func(args map[string]any) (any, error)
}

// Invoke instantiates through this constructor without argument matching;
// use ClassDeclaration.Instantiate to select a constructor first.
func (c *ConstructorDeclaration) Invoke(args map[string]any) (any, error) {
	if !c.IsPublic {
		return nil, fmt.Errorf("constructor %s: %w", c.Name, ErrPrivateConstructor)
	}
	if c.Factory == nil {
		return nil, fmt.Errorf("invoke constructor %s: %w", c.Name, ErrNoAccessor)
	}
	return c.Factory(args)
}

// DebugID is the constructor's stable identity key.
func (c *ConstructorDeclaration) DebugID() string { return c.debugID("constructor") }

// ToJSON returns the constructor's JSON projection.
func (c *ConstructorDeclaration) ToJSON() map[string]any {
	j := c.memberJSON("constructor")
	j["is_factory"] = c.IsFactory
	j["is_const"] = c.IsConst
	j["parameters"] = parametersJSON(c.Parameters)
	return j
}

// ParameterDeclaration is one formal parameter of a method or constructor.
type ParameterDeclaration struct {
	SourceBase

	ParamType TypeLink

	// Index is the zero-based positional index; named parameters keep the
	// index they occupy in the declaration for matching purposes.
	Index int

	IsNamed    bool
	IsRequired bool
	IsOptional bool
	HasDefault bool
	IsNullable bool

	DefaultValue any
}

// DebugID is the parameter's stable identity key.
func (p *ParameterDeclaration) DebugID() string { return p.debugID("parameter") }

// ToJSON returns the parameter's JSON projection.
func (p *ParameterDeclaration) ToJSON() map[string]any {
	m := map[string]any{
		"name":        p.Name,
		"index":       p.Index,
		"is_named":    p.IsNamed,
		"is_required": p.IsRequired,
		"is_optional": p.IsOptional,
		"has_default": p.HasDefault,
		"is_nullable": p.IsNullable,
	}
	if p.HasDefault {
		m["default_value"] = renderValue(p.DefaultValue)
	}
	if p.ParamType != nil {
		m["type"] = p.ParamType.ToJSON()
	}
	return m
}

func parametersJSON(params []*ParameterDeclaration) []map[string]any {
	out := make([]map[string]any, 0, len(params))
	for _, p := range params {
		out = append(out, p.ToJSON())
	}
	return out
}

// renderValue keeps JSON projections serializable for arbitrary runtime
// values: primitives pass through, everything else is stringified.
func renderValue(v any) any {
	switch v.(type) {
	case nil, bool, int, int64, float64, string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
