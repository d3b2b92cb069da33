// Package fixture provides a declarative, YAML-loadable type universe that
// stands in for all four metadata oracles at once. A Universe compiles its
// specs into both a reflection view and a static-analysis view of the same
// program, so tests and the CLI can exercise the resolution engine without
// a live runtime or analyzer behind it.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// Universe is the root of a fixture description. After Compile it
// implements source.ReflectionSource, source.StaticSource,
// source.TextProvider, and source.Registry.
type Universe struct {
	Packages  []*PackageSpec  `yaml:"packages"`
	Libraries []*LibrarySpec  `yaml:"libraries"`
	Overrides []*OverrideSpec `yaml:"generic_overrides"`

	byURI      map[string]*LibrarySpec
	packages   map[string]*decl.Package
	declaredIn map[string]string
	elements   map[string]map[string]*source.Element
	overrides  map[decl.RuntimeType]decl.RuntimeType
}

// PackageSpec declares one package owning a set of library URIs.
type PackageSpec struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	LanguageVersion string `yaml:"language_version"`
	Root            bool   `yaml:"root"`
	Path            string `yaml:"path"`
}

// LibrarySpec declares one library: its URI, owning package, optional raw
// source text for the heuristics, and its declarations in source order.
type LibrarySpec struct {
	URI     string `yaml:"uri"`
	Package string `yaml:"package"`
	Source  string `yaml:"source"`

	Classes   []*ClassSpec  `yaml:"classes"`
	Fields    []*FieldSpec  `yaml:"fields"`
	Functions []*MethodSpec `yaml:"functions"`
}

// ClassSpec declares a class, enum, mixin, or typedef. Kind defaults to
// "class".
type ClassSpec struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Abstract bool   `yaml:"abstract"`
	Private  bool   `yaml:"private"`

	TypeParams []*TypeSpec `yaml:"type_params"`
	Supertype  *TypeSpec   `yaml:"supertype"`
	Interfaces []*TypeSpec `yaml:"interfaces"`
	Mixins     []*TypeSpec `yaml:"mixins"`
	On         []*TypeSpec `yaml:"on"`
	Aliased    *TypeSpec   `yaml:"aliased"`

	Values       []*EnumValueSpec   `yaml:"values"`
	Fields       []*FieldSpec       `yaml:"fields"`
	Methods      []*MethodSpec      `yaml:"methods"`
	Constructors []*ConstructorSpec `yaml:"constructors"`
	Annotations  []*AnnotationSpec  `yaml:"annotations"`

	// NoStatic hides the declaration from the static-analysis view,
	// forcing reflection-only resolution.
	NoStatic bool `yaml:"no_static"`
}

// EnumValueSpec declares one enum value.
type EnumValueSpec struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// FieldSpec declares a field or top-level variable.
type FieldSpec struct {
	Name    string    `yaml:"name"`
	Type    *TypeSpec `yaml:"type"`
	Static  bool      `yaml:"static"`
	Final   bool      `yaml:"final"`
	Const   bool      `yaml:"const"`
	Private bool      `yaml:"private"`

	// Value is the current value of a static or const variable.
	Value any `yaml:"value"`

	// Default feeds annotation-field defaults on annotation classes.
	Default    any  `yaml:"default"`
	HasDefault bool `yaml:"has_default"`

	// NonNull marks an explicit non-null source annotation.
	NonNull bool `yaml:"non_null"`

	Annotations []*AnnotationSpec `yaml:"annotations"`
	NoStatic    bool              `yaml:"no_static"`

	current    any
	hasCurrent bool
}

// MethodSpec declares a method, getter, setter, or top-level function.
type MethodSpec struct {
	Name     string       `yaml:"name"`
	Returns  *TypeSpec    `yaml:"returns"`
	Params   []*ParamSpec `yaml:"params"`
	Static   bool         `yaml:"static"`
	Abstract bool         `yaml:"abstract"`
	Getter   bool         `yaml:"getter"`
	Setter   bool         `yaml:"setter"`
	External bool         `yaml:"external"`
	Private  bool         `yaml:"private"`

	// Result is the canned value the bound invoker returns.
	Result any `yaml:"result"`

	Annotations []*AnnotationSpec `yaml:"annotations"`
	NoStatic    bool              `yaml:"no_static"`
}

// ConstructorSpec declares a constructor. An empty Name is the unnamed
// constructor.
type ConstructorSpec struct {
	Name    string       `yaml:"name"`
	Params  []*ParamSpec `yaml:"params"`
	Factory bool         `yaml:"factory"`
	Const   bool         `yaml:"const"`
	Private bool         `yaml:"private"`

	Annotations []*AnnotationSpec `yaml:"annotations"`
	NoStatic    bool              `yaml:"no_static"`
}

// ParamSpec declares one formal parameter.
type ParamSpec struct {
	Name       string    `yaml:"name"`
	Type       *TypeSpec `yaml:"type"`
	Named      bool      `yaml:"named"`
	Optional   bool      `yaml:"optional"`
	Required   bool      `yaml:"required"`
	Default    any       `yaml:"default"`
	HasDefault bool      `yaml:"has_default"`
}

func (p *ParamSpec) hasDefault() bool {
	return p.HasDefault || p.Default != nil
}

// AnnotationSpec declares one applied annotation. Type defaults to a
// nominal reference named after the annotation.
type AnnotationSpec struct {
	Name   string         `yaml:"name"`
	Type   *TypeSpec      `yaml:"type"`
	Values map[string]any `yaml:"values"`
	Value  any            `yaml:"value"`
}

func (a *AnnotationSpec) typeSpec() *TypeSpec {
	if a.Type != nil {
		return a.Type
	}
	return &TypeSpec{Name: a.Name}
}

// OverrideSpec records a generic-override side-channel entry: the raw form
// the runtime erased to, and the originally intended parameterized form.
type OverrideSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// TypeSpec is a type reference. In YAML it accepts either a full mapping or
// a shorthand scalar like "Map<String, int?>?".
type TypeSpec struct {
	Name         string    `yaml:"name"`
	Display      string    `yaml:"display"`
	Library      string    `yaml:"library"`
	Nullable     bool      `yaml:"nullable"`
	TypeVariable bool      `yaml:"type_variable"`
	Position     string    `yaml:"position"`
	Private      bool      `yaml:"private"`
	Bound        *TypeSpec `yaml:"bound"`

	Args     []*TypeSpec   `yaml:"args"`
	Function *FunctionSpec `yaml:"function"`
	Record   *RecordSpec   `yaml:"record"`

	// NoMirror hides the reference from the reflection view; NoStatic from
	// the analyzer view; ErasedArgs drops only the reflection-side type
	// arguments, modeling runtime erasure.
	NoMirror   bool `yaml:"no_mirror"`
	NoStatic   bool `yaml:"no_static"`
	ErasedArgs bool `yaml:"erased_args"`
}

// FunctionSpec is the callable shape of a function type.
type FunctionSpec struct {
	Returns    *TypeSpec    `yaml:"returns"`
	Params     []*ParamSpec `yaml:"params"`
	TypeParams []*TypeSpec  `yaml:"type_params"`
}

// RecordSpec is the structural shape of a record type.
type RecordSpec struct {
	Positional []*TypeSpec       `yaml:"positional"`
	Named      []*NamedFieldSpec `yaml:"named"`
}

// NamedFieldSpec is one named record field.
type NamedFieldSpec struct {
	Name string    `yaml:"name"`
	Type *TypeSpec `yaml:"type"`
}

// Instance is what fixture constructor invokers produce, so tests can
// assert on which constructor ran and with which arguments.
type Instance struct {
	Class       string
	Constructor string
	Args        map[string]any
}

type rawTypeSpec TypeSpec

// UnmarshalYAML accepts the scalar shorthand in addition to the mapping
// form.
func (t *TypeSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		parsed, err := parseTypeExpr(s)
		if err != nil {
			return err
		}
		*t = *parsed
		return nil
	}
	var raw rawTypeSpec
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*t = TypeSpec(raw)
	return nil
}

// parseTypeExpr parses the shorthand form: a name, optional angle-bracket
// arguments, optional trailing "?".
func parseTypeExpr(s string) (*TypeSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty type expression")
	}
	t := &TypeSpec{}
	if strings.HasSuffix(s, "?") {
		t.Nullable = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "?"))
	}
	open := strings.IndexByte(s, '<')
	if open < 0 {
		t.Name = s
		return t, nil
	}
	if !strings.HasSuffix(s, ">") {
		return nil, fmt.Errorf("unbalanced type arguments in %q", s)
	}
	t.Name = strings.TrimSpace(s[:open])
	for _, part := range splitArgs(s[open+1 : len(s)-1]) {
		arg, err := parseTypeExpr(part)
		if err != nil {
			return nil, err
		}
		t.Args = append(t.Args, arg)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("missing type name in %q", s)
	}
	return t, nil
}

// splitArgs splits a type-argument list on commas outside nested brackets.
func splitArgs(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// Parse decodes a YAML universe description and compiles it.
func Parse(data []byte) (*Universe, error) {
	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	if err := u.Compile(); err != nil {
		return nil, err
	}
	return &u, nil
}

// LoadFile reads and compiles a universe description from disk.
func LoadFile(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	return Parse(data)
}

// Compile indexes the specs and builds the static-analysis view. It must
// run once before the universe is handed to a session; Parse and LoadFile
// call it themselves.
func (u *Universe) Compile() error {
	u.byURI = make(map[string]*LibrarySpec, len(u.Libraries))
	u.packages = make(map[string]*decl.Package, len(u.Packages))
	u.declaredIn = make(map[string]string)
	u.elements = make(map[string]map[string]*source.Element, len(u.Libraries))
	u.overrides = make(map[decl.RuntimeType]decl.RuntimeType, len(u.Overrides))

	for _, p := range u.Packages {
		if p.Name == "" {
			return errors.New("package with no name")
		}
		u.packages[p.Name] = &decl.Package{
			Name:            p.Name,
			Version:         p.Version,
			LanguageVersion: p.LanguageVersion,
			IsRoot:          p.Root,
			Path:            p.Path,
		}
	}

	for _, l := range u.Libraries {
		if l.URI == "" {
			return errors.New("library with no uri")
		}
		if _, dup := u.byURI[l.URI]; dup {
			return fmt.Errorf("duplicate library %q", l.URI)
		}
		u.byURI[l.URI] = l
		for _, c := range l.Classes {
			if c.Name == "" {
				return fmt.Errorf("library %q: class with no name", l.URI)
			}
			u.declaredIn[c.Name] = l.URI
		}
	}

	for _, o := range u.Overrides {
		u.overrides[decl.RuntimeTypeOf(o.From)] = decl.RuntimeTypeOf(o.To)
	}

	// The reflection view reads the specs directly; only the analyzer view
	// needs a compiled form.
	for _, l := range u.Libraries {
		byName := make(map[string]*source.Element)
		for _, c := range l.Classes {
			if c.NoStatic {
				continue
			}
			byName[c.Name] = u.classElement(l, c)
		}
		for _, f := range l.Fields {
			if f.NoStatic {
				continue
			}
			byName[f.Name] = u.fieldElement(l, f)
		}
		for _, fn := range l.Functions {
			if fn.NoStatic {
				continue
			}
			byName[fn.Name] = u.methodElement(l, fn, source.ElementFunction)
		}
		u.elements[l.URI] = byName
	}
	return nil
}

// ElementByName implements source.StaticSource. A miss on the exact source
// URI falls back to a scan of every library, mirroring an analyzer that
// indexes by name globally.
func (u *Universe) ElementByName(_ context.Context, name, sourceURI string) (*source.Element, error) {
	if byName, ok := u.elements[sourceURI]; ok {
		if el, ok := byName[name]; ok {
			return el, nil
		}
	}
	for _, byName := range u.elements {
		if el, ok := byName[name]; ok {
			return el, nil
		}
	}
	return nil, nil
}

// Text implements source.TextProvider.
func (u *Universe) Text(_ context.Context, uri string) (string, error) {
	l, ok := u.byURI[uri]
	if !ok || l.Source == "" {
		return "", fmt.Errorf("no source text for %q", uri)
	}
	return l.Source, nil
}

// PackageFor implements source.Registry.
func (u *Universe) PackageFor(uri string) (*decl.Package, bool) {
	if l, ok := u.byURI[uri]; ok && l.Package != "" {
		if p, ok := u.packages[l.Package]; ok {
			return p, true
		}
	}
	if rest, ok := strings.CutPrefix(uri, "package:"); ok {
		name, _, _ := strings.Cut(rest, "/")
		if p, ok := u.packages[name]; ok {
			return p, true
		}
	}
	return nil, false
}

// KnownType implements source.Registry: a display name resolves when its
// bare name is a declared type or a language builtin.
func (u *Universe) KnownType(name string) (decl.RuntimeType, bool) {
	if name == "" {
		return decl.RuntimeType{}, false
	}
	bare := name
	if i := strings.IndexByte(bare, '<'); i >= 0 {
		bare = bare[:i]
	}
	if _, ok := u.declaredIn[bare]; ok {
		return decl.RuntimeTypeOf(name), true
	}
	if _, ok := builtinTypes[bare]; ok {
		return decl.RuntimeTypeOf(name), true
	}
	return decl.RuntimeType{}, false
}

// GenericOverride implements the reflection source's erasure side-channel.
func (u *Universe) GenericOverride(t decl.RuntimeType) (decl.RuntimeType, bool) {
	to, ok := u.overrides[t]
	return to, ok
}

var builtinTypes = map[string]struct{}{
	"dynamic": {}, "void": {}, "Null": {}, "Never": {},
	"Object": {}, "bool": {}, "int": {}, "double": {}, "num": {},
	"String": {}, "Symbol": {}, "Type": {}, "Function": {}, "Record": {},
	"List": {}, "Map": {}, "Set": {}, "Iterable": {},
	"Future": {}, "FutureOr": {}, "Stream": {},
	"Duration": {}, "DateTime": {},
}

// libraryOf resolves the declaring library URI of a type reference: an
// explicit override, then the declaration index, then the core library for
// builtins.
func (u *Universe) libraryOf(t *TypeSpec) (string, bool) {
	if t.Library != "" {
		return t.Library, true
	}
	if uri, ok := u.declaredIn[t.Name]; ok {
		return uri, true
	}
	if _, ok := builtinTypes[t.Name]; ok {
		return decl.CoreLibraryURI, true
	}
	return "", false
}

func (t *TypeSpec) display() string {
	if t.Display != "" {
		return t.Display
	}
	d := t.baseDisplay()
	if t.Nullable {
		d += "?"
	}
	return d
}

func (t *TypeSpec) runtimeName() string {
	return strings.TrimSuffix(t.display(), "?")
}

func (t *TypeSpec) baseDisplay() string {
	switch {
	case t.Record != nil:
		var parts []string
		for _, f := range t.Record.Positional {
			parts = append(parts, f.display())
		}
		if len(t.Record.Named) > 0 {
			var named []string
			for _, f := range t.Record.Named {
				named = append(named, f.Type.display()+" "+f.Name)
			}
			parts = append(parts, "{"+strings.Join(named, ", ")+"}")
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case t.Function != nil:
		ret := "dynamic"
		if t.Function.Returns != nil {
			ret = t.Function.Returns.display()
		}
		var tps string
		if len(t.Function.TypeParams) > 0 {
			var names []string
			for _, tp := range t.Function.TypeParams {
				names = append(names, tp.display())
			}
			tps = "<" + strings.Join(names, ", ") + ">"
		}
		var params []string
		for _, p := range t.Function.Params {
			if p.Type != nil {
				params = append(params, p.Type.display())
			} else {
				params = append(params, "dynamic")
			}
		}
		return ret + " Function" + tps + "(" + strings.Join(params, ", ") + ")"
	default:
		if len(t.Args) == 0 {
			return t.Name
		}
		var args []string
		for _, a := range t.Args {
			args = append(args, a.display())
		}
		return t.Name + "<" + strings.Join(args, ", ") + ">"
	}
}

// asTypeVar marks a type-parameter spec as a type variable without
// requiring fixture authors to set the flag on every declaration site.
func asTypeVar(t *TypeSpec) *TypeSpec {
	if t.TypeVariable {
		return t
	}
	c := *t
	c.TypeVariable = true
	return &c
}

// staticTypeOf compiles a type reference into the analyzer's rendering.
func (u *Universe) staticTypeOf(t *TypeSpec) *source.StaticType {
	if t == nil || t.NoStatic {
		return nil
	}
	st := &source.StaticType{
		Name:       t.Name,
		Display:    t.display(),
		IsNullable: t.Nullable,
	}
	if uri, ok := u.libraryOf(t); ok {
		st.LibraryURI = uri
	}
	switch {
	case t.Record != nil:
		st.Kind = source.StaticRecord
		for _, f := range t.Record.Positional {
			st.PositionalFields = append(st.PositionalFields, u.staticTypeOf(f))
		}
		for _, f := range t.Record.Named {
			st.NamedFields = append(st.NamedFields, source.StaticRecordField{
				Name: f.Name,
				Type: u.staticTypeOf(f.Type),
			})
		}
	case t.Function != nil:
		st.Kind = source.StaticFunction
		st.Return = u.staticTypeOf(t.Function.Returns)
		for _, p := range t.Function.Params {
			st.Parameters = append(st.Parameters, source.StaticParam{
				Name: p.Name,
				Type: u.staticTypeOf(p.Type),
			})
		}
		for _, tp := range t.Function.TypeParams {
			st.TypeParameters = append(st.TypeParameters, u.staticTypeOf(asTypeVar(tp)))
		}
	case t.TypeVariable:
		st.Kind = source.StaticTypeParameter
		st.Bound = u.staticTypeOf(t.Bound)
	case t.Name == "dynamic":
		st.Kind = source.StaticDynamic
	case t.Name == "void":
		st.Kind = source.StaticVoid
	default:
		st.Kind = source.StaticNominal
		for _, a := range t.Args {
			st.TypeArguments = append(st.TypeArguments, u.staticTypeOf(a))
		}
	}
	return st
}

// selfStatic is the analyzer's rendering of a declaration's own type.
func (u *Universe) selfStatic(l *LibrarySpec, c *ClassSpec) *source.StaticType {
	self := &TypeSpec{Name: c.Name, Library: l.URI}
	for _, tp := range c.TypeParams {
		self.Args = append(self.Args, asTypeVar(tp))
	}
	return u.staticTypeOf(self)
}

func elementKindOf(kind string) source.ElementKind {
	switch kind {
	case "enum":
		return source.ElementEnum
	case "mixin":
		return source.ElementMixin
	case "typedef":
		return source.ElementTypedef
	default:
		return source.ElementClass
	}
}

func (u *Universe) classElement(l *LibrarySpec, c *ClassSpec) *source.Element {
	el := &source.Element{
		Name:       c.Name,
		Kind:       elementKindOf(c.Kind),
		SourceURI:  l.URI,
		LibraryURI: l.URI,
		IsPrivate:  c.Private || strings.HasPrefix(c.Name, "_"),
		Type:       u.selfStatic(l, c),
		Metadata:   u.staticAnnotations(c.Annotations),
	}
	if el.Kind == source.ElementTypedef && c.Aliased != nil {
		el.Type = u.staticTypeOf(c.Aliased)
	}
	for _, tp := range c.TypeParams {
		el.TypeParameters = append(el.TypeParameters, u.staticTypeOf(asTypeVar(tp)))
	}
	el.Supertype = u.staticTypeOf(c.Supertype)
	for _, i := range c.Interfaces {
		el.Interfaces = append(el.Interfaces, u.staticTypeOf(i))
	}
	for _, m := range c.Mixins {
		el.Mixins = append(el.Mixins, u.staticTypeOf(m))
	}
	for _, o := range c.On {
		el.OnTypes = append(el.OnTypes, u.staticTypeOf(o))
	}

	// Within each member shape the analyzer order must track the mirror
	// enumeration, since counterpart matching trusts the within-shape index.
	for _, ct := range c.Constructors {
		if ct.NoStatic {
			continue
		}
		el.Members = append(el.Members, u.constructorElement(l, ct))
	}
	for _, v := range c.Values {
		el.Members = append(el.Members, &source.Element{
			Name:       v.Name,
			Kind:       source.ElementField,
			SourceURI:  l.URI,
			LibraryURI: l.URI,
			Type:       u.selfStatic(l, c),
		})
	}
	for _, f := range c.Fields {
		if f.NoStatic {
			continue
		}
		el.Members = append(el.Members, u.fieldElement(l, f))
	}
	for _, m := range c.Methods {
		if m.NoStatic {
			continue
		}
		el.Members = append(el.Members, u.methodElement(l, m, source.ElementMethod))
	}
	return el
}

func (u *Universe) fieldElement(l *LibrarySpec, f *FieldSpec) *source.Element {
	return &source.Element{
		Name:         f.Name,
		Kind:         source.ElementField,
		SourceURI:    l.URI,
		LibraryURI:   l.URI,
		Type:         u.staticTypeOf(f.Type),
		IsPrivate:    f.Private || strings.HasPrefix(f.Name, "_"),
		IsNonNull:    f.NonNull,
		HasDefault:   f.HasDefault || f.Default != nil,
		DefaultValue: f.Default,
		Metadata:     u.staticAnnotations(f.Annotations),
	}
}

func (u *Universe) methodElement(l *LibrarySpec, m *MethodSpec, kind source.ElementKind) *source.Element {
	return &source.Element{
		Name:       m.Name,
		Kind:       kind,
		SourceURI:  l.URI,
		LibraryURI: l.URI,
		Type:       u.staticTypeOf(m.Returns),
		IsPrivate:  m.Private || strings.HasPrefix(m.Name, "_"),
		Parameters: u.paramElements(l, m.Params),
		Metadata:   u.staticAnnotations(m.Annotations),
	}
}

func (u *Universe) constructorElement(l *LibrarySpec, ct *ConstructorSpec) *source.Element {
	return &source.Element{
		Name:       ct.Name,
		Kind:       source.ElementConstructor,
		SourceURI:  l.URI,
		LibraryURI: l.URI,
		IsPrivate:  ct.Private || strings.HasPrefix(ct.Name, "_"),
		Parameters: u.paramElements(l, ct.Params),
		Metadata:   u.staticAnnotations(ct.Annotations),
	}
}

func (u *Universe) paramElements(l *LibrarySpec, params []*ParamSpec) []*source.Element {
	var els []*source.Element
	for _, p := range params {
		els = append(els, &source.Element{
			Name:         p.Name,
			Kind:         source.ElementParameter,
			SourceURI:    l.URI,
			LibraryURI:   l.URI,
			Type:         u.staticTypeOf(p.Type),
			HasDefault:   p.hasDefault(),
			DefaultValue: p.Default,
		})
	}
	return els
}

func (u *Universe) staticAnnotations(anns []*AnnotationSpec) []*source.StaticAnnotation {
	var out []*source.StaticAnnotation
	for _, a := range anns {
		out = append(out, &source.StaticAnnotation{
			Name:   a.Name,
			Type:   u.staticTypeOf(a.typeSpec()),
			Values: a.Values,
		})
	}
	return out
}

func hashOf(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
