package fixture

import (
	"strings"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// The reflection view reads the specs directly through thin adapters. Every
// "unsupported" answer is an ok=false, never an error, matching how a real
// runtime degrades.

// Reflection returns the universe's runtime-introspection face.
func (u *Universe) Reflection() source.ReflectionSource {
	return reflectionView{u: u}
}

type reflectionView struct {
	u *Universe
}

func (v reflectionView) Libraries() []source.LibraryMirror {
	out := make([]source.LibraryMirror, 0, len(v.u.Libraries))
	for _, l := range v.u.Libraries {
		out = append(out, &libraryMirror{u: v.u, l: l})
	}
	return out
}

func (v reflectionView) Library(uri string) (source.LibraryMirror, bool) {
	l, ok := v.u.byURI[uri]
	if !ok {
		return nil, false
	}
	return &libraryMirror{u: v.u, l: l}, true
}

func (v reflectionView) GenericOverride(t decl.RuntimeType) (decl.RuntimeType, bool) {
	return v.u.GenericOverride(t)
}

type libraryMirror struct {
	u *Universe
	l *LibrarySpec
}

func (m *libraryMirror) URI() string { return m.l.URI }

func (m *libraryMirror) DeclaredTypes() []source.ClassMirror {
	out := make([]source.ClassMirror, 0, len(m.l.Classes))
	for _, c := range m.l.Classes {
		out = append(out, newClassMirror(m.u, m.l, c))
	}
	return out
}

func (m *libraryMirror) TopLevelFields() []source.VariableMirror {
	out := make([]source.VariableMirror, 0, len(m.l.Fields))
	for _, f := range m.l.Fields {
		out = append(out, &variableMirror{u: m.u, l: m.l, f: f})
	}
	return out
}

func (m *libraryMirror) TopLevelFunctions() []source.MethodMirror {
	out := make([]source.MethodMirror, 0, len(m.l.Functions))
	for _, fn := range m.l.Functions {
		out = append(out, &methodMirror{u: m.u, l: m.l, m: fn})
	}
	return out
}

type typeMirror struct {
	u *Universe
	t *TypeSpec
}

func (m *typeMirror) mirror(t *TypeSpec) source.TypeMirror {
	if t == nil {
		return nil
	}
	return &typeMirror{u: m.u, t: t}
}

func (m *typeMirror) SimpleName() (string, bool) {
	if m.t.NoMirror {
		return "", false
	}
	name := m.t.Name
	if name == "" && m.t.Function != nil {
		name = "Function"
	}
	return name, name != ""
}

func (m *typeMirror) ReflectedType() (decl.RuntimeType, bool) {
	if m.t.NoMirror {
		return decl.RuntimeType{}, false
	}
	return decl.RuntimeTypeOf(m.t.runtimeName()), true
}

func (m *typeMirror) DeclarationType() (decl.RuntimeType, bool) {
	if m.t.NoMirror || m.t.Name == "" {
		return decl.RuntimeType{}, false
	}
	return decl.RuntimeTypeOf(m.t.Name), true
}

func (m *typeMirror) LibraryURI() (string, bool) {
	if m.t.NoMirror {
		return "", false
	}
	return m.u.libraryOf(m.t)
}

func (m *typeMirror) TypeArguments() []source.TypeMirror {
	if m.t.NoMirror || m.t.ErasedArgs {
		return nil
	}
	out := make([]source.TypeMirror, 0, len(m.t.Args))
	for _, a := range m.t.Args {
		out = append(out, m.mirror(a))
	}
	return out
}

func (m *typeMirror) IsTypeVariable() bool { return m.t.TypeVariable }

func (m *typeMirror) UpperBound() (source.TypeMirror, bool) {
	if m.t.Bound == nil {
		return nil, false
	}
	return m.mirror(m.t.Bound), true
}

func (m *typeMirror) UsagePosition() source.Position {
	switch m.t.Position {
	case "return":
		return source.PositionReturn
	case "param", "parameter":
		return source.PositionParameter
	default:
		return source.PositionNone
	}
}

func (m *typeMirror) IsFunction() bool {
	return m.t.Function != nil && !m.t.NoMirror
}

func (m *typeMirror) Function() (source.FunctionMirror, bool) {
	if !m.IsFunction() {
		return nil, false
	}
	return &functionMirror{u: m.u, t: m.t}, true
}

func (m *typeMirror) IsPrivate() bool {
	return m.t.Private || strings.HasPrefix(m.t.Name, "_")
}

type functionMirror struct {
	u *Universe
	t *TypeSpec
}

func (m *functionMirror) ReturnType() (source.TypeMirror, bool) {
	if m.t.Function.Returns == nil {
		return nil, false
	}
	return &typeMirror{u: m.u, t: m.t.Function.Returns}, true
}

func (m *functionMirror) ParameterTypes() []source.TypeMirror {
	var out []source.TypeMirror
	for _, p := range m.t.Function.Params {
		if p.Type == nil {
			out = append(out, &typeMirror{u: m.u, t: &TypeSpec{Name: "dynamic"}})
			continue
		}
		out = append(out, &typeMirror{u: m.u, t: p.Type})
	}
	return out
}

func (m *functionMirror) TypeVariables() []source.TypeMirror {
	var out []source.TypeMirror
	for _, tp := range m.t.Function.TypeParams {
		out = append(out, &typeMirror{u: m.u, t: asTypeVar(tp)})
	}
	return out
}

func (m *functionMirror) Hash() uint64 { return hashOf(m.t.runtimeName()) }

func (m *functionMirror) IsNullable() bool { return m.t.Nullable }

type classMirror struct {
	typeMirror
	l *LibrarySpec
	c *ClassSpec
}

func newClassMirror(u *Universe, l *LibrarySpec, c *ClassSpec) *classMirror {
	self := &TypeSpec{Name: c.Name, Library: l.URI, Private: c.Private}
	for _, tp := range c.TypeParams {
		self.Args = append(self.Args, asTypeVar(tp))
	}
	return &classMirror{typeMirror: typeMirror{u: u, t: self}, l: l, c: c}
}

func (m *classMirror) KindHint() decl.TypeKind {
	switch m.c.Kind {
	case "enum":
		return decl.KindEnum
	case "mixin":
		return decl.KindMixin
	case "typedef":
		return decl.KindTypedef
	case "", "class":
		return decl.KindClass
	default:
		return decl.KindUnknown
	}
}

func (m *classMirror) Superclass() (source.TypeMirror, bool) {
	if m.c.Supertype == nil {
		return nil, false
	}
	return m.mirror(m.c.Supertype), true
}

func (m *classMirror) Interfaces() []source.TypeMirror {
	var out []source.TypeMirror
	for _, i := range m.c.Interfaces {
		out = append(out, m.mirror(i))
	}
	return out
}

func (m *classMirror) Mixins() []source.TypeMirror {
	var out []source.TypeMirror
	for _, mx := range m.c.Mixins {
		out = append(out, m.mirror(mx))
	}
	return out
}

func (m *classMirror) TypeVariables() []source.TypeMirror {
	var out []source.TypeMirror
	for _, tp := range m.c.TypeParams {
		out = append(out, m.mirror(asTypeVar(tp)))
	}
	return out
}

func (m *classMirror) IsAbstract() bool { return m.c.Abstract }

func (m *classMirror) Referent() (source.TypeMirror, bool) {
	if m.c.Aliased == nil {
		return nil, false
	}
	return m.mirror(m.c.Aliased), true
}

func (m *classMirror) Constructors() []source.MethodMirror {
	var out []source.MethodMirror
	for _, ct := range m.c.Constructors {
		out = append(out, &ctorMirror{u: m.u, l: m.l, c: m.c, ct: ct})
	}
	return out
}

func (m *classMirror) Fields() []source.VariableMirror {
	var out []source.VariableMirror
	for _, v := range m.c.Values {
		out = append(out, &valueMirror{u: m.u, l: m.l, c: m.c, v: v})
	}
	for _, f := range m.c.Fields {
		out = append(out, &variableMirror{u: m.u, l: m.l, f: f})
	}
	return out
}

func (m *classMirror) Methods() []source.MethodMirror {
	var out []source.MethodMirror
	for _, fn := range m.c.Methods {
		out = append(out, &methodMirror{u: m.u, l: m.l, m: fn})
	}
	return out
}

func (m *classMirror) Metadata() []source.InstanceMirror {
	return instanceMirrors(m.u, m.c.Annotations)
}

func (m *classMirror) SourceURI() (string, bool) { return m.l.URI, true }

// selfType builds the self-reference spec of a declaring class, used as the
// type of its enum values and constructor returns.
func selfType(l *LibrarySpec, c *ClassSpec) *TypeSpec {
	self := &TypeSpec{Name: c.Name, Library: l.URI}
	for _, tp := range c.TypeParams {
		self.Args = append(self.Args, asTypeVar(tp))
	}
	return self
}

type variableMirror struct {
	u *Universe
	l *LibrarySpec
	f *FieldSpec
}

func (m *variableMirror) MemberName() string { return m.f.Name }

func (m *variableMirror) Type() (source.TypeMirror, bool) {
	if m.f.Type == nil {
		return nil, false
	}
	return &typeMirror{u: m.u, t: m.f.Type}, true
}

func (m *variableMirror) IsStatic() bool { return m.f.Static }
func (m *variableMirror) IsFinal() bool  { return m.f.Final }
func (m *variableMirror) IsConst() bool  { return m.f.Const }

func (m *variableMirror) IsPrivate() bool {
	return m.f.Private || strings.HasPrefix(m.f.Name, "_")
}

func (m *variableMirror) Metadata() []source.InstanceMirror {
	return instanceMirrors(m.u, m.f.Annotations)
}

func (m *variableMirror) StaticValue() (any, bool) {
	if m.f.hasCurrent {
		return m.f.current, true
	}
	return m.f.Value, m.f.Value != nil
}

func (m *variableMirror) Accessors() (func() (any, error), func(v any) error) {
	f := m.f
	get := func() (any, error) {
		if f.hasCurrent {
			return f.current, nil
		}
		return f.Value, nil
	}
	if f.Final || f.Const {
		return get, nil
	}
	set := func(v any) error {
		f.current, f.hasCurrent = v, true
		return nil
	}
	return get, set
}

// valueMirror presents one enum value as a static const field whose type is
// the declaring enum itself.
type valueMirror struct {
	u *Universe
	l *LibrarySpec
	c *ClassSpec
	v *EnumValueSpec
}

func (m *valueMirror) MemberName() string { return m.v.Name }

func (m *valueMirror) Type() (source.TypeMirror, bool) {
	return &typeMirror{u: m.u, t: selfType(m.l, m.c)}, true
}

func (m *valueMirror) IsStatic() bool                       { return true }
func (m *valueMirror) IsFinal() bool                        { return false }
func (m *valueMirror) IsConst() bool                        { return true }
func (m *valueMirror) IsPrivate() bool                      { return false }
func (m *valueMirror) Metadata() []source.InstanceMirror    { return nil }
func (m *valueMirror) StaticValue() (any, bool)             { return m.v.Value, true }
func (m *valueMirror) Accessors() (func() (any, error), func(v any) error) {
	v := m.v
	return func() (any, error) { return v.Value, nil }, nil
}

type methodMirror struct {
	u *Universe
	l *LibrarySpec
	m *MethodSpec
}

func (m *methodMirror) MemberName() string { return m.m.Name }

func (m *methodMirror) ReturnType() (source.TypeMirror, bool) {
	if m.m.Returns == nil {
		return nil, false
	}
	return &typeMirror{u: m.u, t: m.m.Returns}, true
}

func (m *methodMirror) Parameters() []source.ParameterMirror {
	return paramMirrors(m.u, m.m.Params)
}

func (m *methodMirror) IsStatic() bool           { return m.m.Static }
func (m *methodMirror) IsAbstract() bool         { return m.m.Abstract }
func (m *methodMirror) IsGetter() bool           { return m.m.Getter }
func (m *methodMirror) IsSetter() bool           { return m.m.Setter }
func (m *methodMirror) IsFactory() bool          { return false }
func (m *methodMirror) IsConstConstructor() bool { return false }
func (m *methodMirror) IsExternal() bool         { return m.m.External }

func (m *methodMirror) IsPrivate() bool {
	return m.m.Private || strings.HasPrefix(m.m.Name, "_")
}

func (m *methodMirror) Metadata() []source.InstanceMirror {
	return instanceMirrors(m.u, m.m.Annotations)
}

func (m *methodMirror) SourceURI() (string, bool) { return m.l.URI, true }

func (m *methodMirror) Invoker() func(args map[string]any) (any, error) {
	if m.m.Abstract {
		return nil
	}
	result := m.m.Result
	return func(map[string]any) (any, error) { return result, nil }
}

type ctorMirror struct {
	u  *Universe
	l  *LibrarySpec
	c  *ClassSpec
	ct *ConstructorSpec
}

func (m *ctorMirror) MemberName() string { return m.ct.Name }

func (m *ctorMirror) ReturnType() (source.TypeMirror, bool) {
	return &typeMirror{u: m.u, t: selfType(m.l, m.c)}, true
}

func (m *ctorMirror) Parameters() []source.ParameterMirror {
	return paramMirrors(m.u, m.ct.Params)
}

func (m *ctorMirror) IsStatic() bool           { return false }
func (m *ctorMirror) IsAbstract() bool         { return false }
func (m *ctorMirror) IsGetter() bool           { return false }
func (m *ctorMirror) IsSetter() bool           { return false }
func (m *ctorMirror) IsFactory() bool          { return m.ct.Factory }
func (m *ctorMirror) IsConstConstructor() bool { return m.ct.Const }
func (m *ctorMirror) IsExternal() bool         { return false }

func (m *ctorMirror) IsPrivate() bool {
	return m.ct.Private || strings.HasPrefix(m.ct.Name, "_")
}

func (m *ctorMirror) Metadata() []source.InstanceMirror {
	return instanceMirrors(m.u, m.ct.Annotations)
}

func (m *ctorMirror) SourceURI() (string, bool) { return m.l.URI, true }

func (m *ctorMirror) Invoker() func(args map[string]any) (any, error) {
	class, ctor := m.c.Name, m.ct.Name
	return func(args map[string]any) (any, error) {
		copied := make(map[string]any, len(args))
		for k, v := range args {
			copied[k] = v
		}
		return &Instance{Class: class, Constructor: ctor, Args: copied}, nil
	}
}

type paramMirror struct {
	u *Universe
	p *ParamSpec
}

func paramMirrors(u *Universe, params []*ParamSpec) []source.ParameterMirror {
	var out []source.ParameterMirror
	for _, p := range params {
		out = append(out, &paramMirror{u: u, p: p})
	}
	return out
}

func (m *paramMirror) ParamName() string { return m.p.Name }

func (m *paramMirror) Type() (source.TypeMirror, bool) {
	if m.p.Type == nil {
		return nil, false
	}
	return &typeMirror{u: m.u, t: m.p.Type}, true
}

func (m *paramMirror) IsNamed() bool { return m.p.Named }

func (m *paramMirror) IsOptional() bool {
	return m.p.Optional || (m.p.Named && !m.p.Required)
}

func (m *paramMirror) HasDefault() bool { return m.p.hasDefault() }

func (m *paramMirror) DefaultValue() (any, bool) {
	return m.p.Default, m.p.hasDefault()
}

func (m *paramMirror) IsRequired() bool {
	return m.p.Required || (!m.p.Named && !m.p.Optional)
}

type instanceMirror struct {
	u *Universe
	a *AnnotationSpec
}

func instanceMirrors(u *Universe, anns []*AnnotationSpec) []source.InstanceMirror {
	var out []source.InstanceMirror
	for _, a := range anns {
		out = append(out, &instanceMirror{u: u, a: a})
	}
	return out
}

func (m *instanceMirror) Type() (source.TypeMirror, bool) {
	return &typeMirror{u: m.u, t: m.a.typeSpec()}, true
}

func (m *instanceMirror) Value() (any, bool) {
	return m.a.Value, m.a.Value != nil
}

func (m *instanceMirror) Arguments() map[string]any { return m.a.Values }
