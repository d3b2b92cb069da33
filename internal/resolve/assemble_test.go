package resolve

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/fixture"
)

// scanUniverse compiles a YAML universe, wires a session over its two
// oracle faces, and resolves every library. Returned in enumeration order.
func scanUniverse(t *testing.T, yamlSrc string) (*Session, []*decl.LibraryDeclaration) {
	t.Helper()
	u, err := fixture.Parse([]byte(yamlSrc))
	require.NoError(t, err)

	s := NewSession(u.Reflection(), u, u, u)
	var libs []*decl.LibraryDeclaration
	for _, lm := range u.Reflection().Libraries() {
		lib, err := s.GenerateLibrary(context.Background(), lm)
		require.NoError(t, err)
		libs = append(libs, lib)
	}
	return s, libs
}

func classNamed(t *testing.T, lib *decl.LibraryDeclaration, name string) *decl.ClassDeclaration {
	t.Helper()
	for _, d := range lib.Declarations {
		if cd, ok := d.(*decl.ClassDeclaration); ok && cd.Name == name {
			return cd
		}
	}
	t.Fatalf("no class %q in %s", name, lib.URI)
	return nil
}

// =============================================================================
// Class assembly
// =============================================================================

const pointUniverse = `
packages:
  - name: geometry
    version: "1.0.0"
    root: true
libraries:
  - uri: package:geometry/point.dart
    package: geometry
    classes:
      - name: Point
        fields:
          - name: x
            type: double
            final: true
          - name: y
            type: double
            final: true
        constructors:
          - name: ""
            params:
              - name: x
                type: double
              - name: y
                type: double
        methods:
          - name: distanceTo
            returns: double
            params:
              - name: other
                type: Point
            result: 5.0
`

func TestGenerateLibrary_PointScenario(t *testing.T) {
	t.Parallel()
	s, libs := scanUniverse(t, pointUniverse)
	require.Len(t, libs, 1)
	lib := libs[0]

	require.Len(t, lib.Declarations, 1)
	point := classNamed(t, lib, "Point")

	assert.Equal(t, decl.KindClass, point.Kind)
	assert.True(t, point.IsPublic)
	assert.Equal(t, "geometry", point.Package.Name)
	assert.Equal(t, "package:geometry/point.dart", point.LibraryURI)

	require.Len(t, point.Fields, 2)
	x := point.Fields[0]
	assert.Equal(t, "x", x.Name)
	assert.True(t, x.IsFinal)
	assert.False(t, x.IsNullable)
	assert.Equal(t, "double", x.FieldType.Link().ResolvedType.Name)
	assert.Equal(t, decl.CoreLibraryURI, x.FieldType.Link().DeclaringURI)

	require.Len(t, point.Constructors, 1)
	ctor := point.Constructors[0]
	assert.Equal(t, "", ctor.Name)
	require.Len(t, ctor.Parameters, 2)
	assert.Equal(t, "x", ctor.Parameters[0].Name)
	assert.Equal(t, 0, ctor.Parameters[0].Index)
	assert.Equal(t, "y", ctor.Parameters[1].Name)
	assert.True(t, ctor.Parameters[0].Required())

	require.Len(t, point.Methods, 1)
	dist := point.Methods[0]
	assert.Equal(t, "distanceTo", dist.Name)
	assert.Equal(t, "double", dist.ReturnType.Link().Name)
	require.Len(t, dist.Parameters, 1)
	assert.Equal(t, "Point", dist.Parameters[0].ParamType.Link().Name)

	got, err := dist.Invoke(map[string]any{"other": nil})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	assert.Empty(t, s.Warnings())
}

func TestGenerateLibrary_MemoizedPerURI(t *testing.T) {
	t.Parallel()
	u, err := fixture.Parse([]byte(pointUniverse))
	require.NoError(t, err)

	s := NewSession(u.Reflection(), u, u, u)
	lm := u.Reflection().Libraries()[0]

	first, err := s.GenerateLibrary(context.Background(), lm)
	require.NoError(t, err)
	second, err := s.GenerateLibrary(context.Background(), lm)
	require.NoError(t, err)
	assert.Same(t, first, second)

	cached, ok := s.Cached(decl.RuntimeTypeOf("Point"))
	require.True(t, ok)
	assert.Equal(t, "Point", cached.DeclName())
}

func TestReset_ClearsAllSessionState(t *testing.T) {
	t.Parallel()
	s, _ := scanUniverse(t, pointUniverse)
	require.NotEmpty(t, s.Types())

	s.Reset()
	assert.Empty(t, s.Types())
	assert.Empty(t, s.Warnings())

	_, ok := s.Cached(decl.RuntimeTypeOf("Point"))
	assert.False(t, ok)
}

func TestGenerateLibrary_PrivateClassAndMembers(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:app/hidden.dart
    classes:
      - name: _Hidden
        fields:
          - name: _secret
            type: int
          - name: open
            type: int
`)
	hidden := classNamed(t, libs[0], "_Hidden")
	assert.False(t, hidden.IsPublic)

	require.Len(t, hidden.Fields, 2)
	assert.False(t, hidden.Fields[0].IsPublic)
	assert.True(t, hidden.Fields[1].IsPublic)
}

func TestGenerateLibrary_SourceTextModifiers(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:app/token.dart
    source: |
      sealed class Token {}
      final class EndToken extends Token {}
    classes:
      - name: Token
        abstract: true
      - name: EndToken
        supertype: Token
`)
	token := classNamed(t, libs[0], "Token")
	assert.True(t, token.IsSealed)
	assert.True(t, token.IsAbstract)

	end := classNamed(t, libs[0], "EndToken")
	assert.True(t, end.IsFinal)
	require.NotNil(t, end.Superclass)
	assert.Equal(t, "Token", end.Superclass.Link().Name)
}

// =============================================================================
// Hierarchy links
// =============================================================================

func TestGenerateClass_SupertypeInterfacesMixins(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:zoo/zoo.dart
    classes:
      - name: Animal
        abstract: true
      - name: Pet
        abstract: true
      - name: Walks
        kind: mixin
        on: [Animal]
      - name: Dog
        supertype: Animal
        interfaces: [Pet]
        mixins: [Walks]
`)
	dog := classNamed(t, libs[0], "Dog")

	require.NotNil(t, dog.Superclass)
	assert.Equal(t, "Animal", dog.Superclass.Link().Name)
	assert.Equal(t, "package:zoo/zoo.dart", dog.Superclass.Link().DeclaringURI)

	require.Len(t, dog.Interfaces, 1)
	assert.Equal(t, "Pet", dog.Interfaces[0].Link().Name)

	require.Len(t, dog.Mixins, 1)
	assert.Equal(t, "Walks", dog.Mixins[0].Link().Name)
}

func TestGenerateMixin_OnClauseConstraints(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:zoo/zoo.dart
    classes:
      - name: Animal
      - name: Walks
        kind: mixin
        on: [Animal]
`)
	var mixin *decl.MixinDeclaration
	for _, d := range libs[0].Declarations {
		if m, ok := d.(*decl.MixinDeclaration); ok {
			mixin = m
		}
	}
	require.NotNil(t, mixin)
	assert.Equal(t, decl.KindMixin, mixin.Kind)
	require.Len(t, mixin.OnTypes, 1)
	assert.Equal(t, "Animal", mixin.OnTypes[0].Link().Name)
}

func TestGenerateClass_BoundedTypeParameter(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:box/box.dart
    classes:
      - name: Box
        type_params:
          - name: T
            bound: num
`)
	box := classNamed(t, libs[0], "Box")
	assert.Equal(t, "Box<T>", box.Type.Name)

	require.Len(t, box.TypeParameters, 1)
	tp := box.TypeParameters[0].Link()
	assert.Equal(t, "T", tp.Name)
	require.NotNil(t, tp.UpperBound)
	assert.Equal(t, "num", tp.UpperBound.Link().Name)
}

func TestGenerateClass_TopBoundOmitted(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:box/box.dart
    classes:
      - name: Box
        type_params:
          - name: T
            bound: Object
`)
	box := classNamed(t, libs[0], "Box")
	require.Len(t, box.TypeParameters, 1)
	assert.Nil(t, box.TypeParameters[0].Link().UpperBound)
}

func TestGenerateLink_FBoundedParameterTerminates(t *testing.T) {
	t.Parallel()
	s, libs := scanUniverse(t, `
libraries:
  - uri: package:cmp/cmp.dart
    classes:
      - name: Comparable
        type_params:
          - name: T
      - name: Sorter
        type_params:
          - name: T
            bound: Comparable<T>
`)
	// The self-referential bound must terminate, never hang or panic.
	sorter := classNamed(t, libs[0], "Sorter")
	require.Len(t, sorter.TypeParameters, 1)
	bound := sorter.TypeParameters[0].Link().UpperBound
	require.NotNil(t, bound)
	assert.Equal(t, "Comparable", bound.Link().Name)
	assert.Equal(t, 0, s.tracker.InProgress())
}

func TestGenerateClass_MutualSupertypesTerminate(t *testing.T) {
	t.Parallel()
	s, libs := scanUniverse(t, `
libraries:
  - uri: package:odd/odd.dart
    classes:
      - name: Yin
        supertype: Yang
      - name: Yang
        supertype: Yin
`)
	yin := classNamed(t, libs[0], "Yin")
	yang := classNamed(t, libs[0], "Yang")
	assert.Equal(t, "Yang", yin.Superclass.Link().Name)
	assert.Equal(t, "Yin", yang.Superclass.Link().Name)
	assert.Equal(t, 0, s.tracker.InProgress())
}

// =============================================================================
// Structural types
// =============================================================================

func TestGenerateField_RecordType(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:rec/rec.dart
    classes:
      - name: Holder
        fields:
          - name: pair
            type:
              record:
                positional: [int]
                named:
                  - name: name
                    type: String
`)
	holder := classNamed(t, libs[0], "Holder")
	require.Len(t, holder.Fields, 1)

	rec, ok := holder.Fields[0].FieldType.(*decl.RecordLinkDeclaration)
	require.True(t, ok, "expected a record link, got %T", holder.Fields[0].FieldType)
	assert.Equal(t, "(int, {String name})", rec.Name)
	assert.True(t, rec.IsSynthetic)
	assert.False(t, rec.IsNullable)

	// Named fields precede positional ones in the decomposition.
	require.Len(t, rec.Fields, 2)
	named := rec.Fields[0]
	assert.Equal(t, "name", named.Name)
	assert.Equal(t, -1, named.Position)
	assert.True(t, named.IsNamed)
	assert.Equal(t, "String", named.Type.Link().Name)

	positional := rec.Fields[1]
	assert.Equal(t, 0, positional.Position)
	assert.Equal(t, "int", positional.Type.Link().Name)
}

func TestGenerateField_NullableFunctionType(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:cb/cb.dart
    classes:
      - name: Button
        fields:
          - name: onTap
            type:
              nullable: true
              function:
                returns: void
`)
	button := classNamed(t, libs[0], "Button")
	require.Len(t, button.Fields, 1)
	field := button.Fields[0]

	fn, ok := field.FieldType.(*decl.FunctionLinkDeclaration)
	require.True(t, ok, "expected a function link, got %T", field.FieldType)
	assert.True(t, fn.IsNullable)
	assert.Equal(t, "void", fn.ReturnType.Link().Name)
	assert.Empty(t, fn.ParameterTypes)
	assert.True(t, strings.HasSuffix(fn.Signature, "?"))

	// The field itself is nullable because the declared type is.
	assert.True(t, field.IsNullable)
}

func TestGenerateTypedef_AliasedFunction(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:pred/pred.dart
    classes:
      - name: Predicate
        kind: typedef
        aliased:
          name: Function
          function:
            returns: bool
            params:
              - name: value
                type: Object
`)
	pred := classNamed(t, libs[0], "Predicate")
	assert.Equal(t, decl.KindTypedef, pred.Kind)
	// The alias keeps its own identity; the referent hangs off Aliased.
	assert.Equal(t, "Predicate", pred.Type.Name)

	fn, ok := pred.Aliased.(*decl.FunctionLinkDeclaration)
	require.True(t, ok, "expected a function link, got %T", pred.Aliased)
	assert.Equal(t, "bool", fn.ReturnType.Link().Name)
	require.Len(t, fn.ParameterTypes, 1)
	assert.Equal(t, "Object", fn.ParameterTypes[0].Link().Name)
}

// =============================================================================
// Enums
// =============================================================================

func TestGenerateEnum_ValuePrePass(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:paint/paint.dart
    classes:
      - name: Color
        kind: enum
        values:
          - name: red
            value: 0
          - name: green
            value: 1
          - name: blue
            value: 2
        methods:
          - name: describe
            returns: String
            result: ok
`)
	var enum *decl.EnumDeclaration
	for _, d := range libs[0].Declarations {
		if e, ok := d.(*decl.EnumDeclaration); ok {
			enum = e
		}
	}
	require.NotNil(t, enum)
	assert.Equal(t, decl.KindEnum, enum.Kind)

	require.Len(t, enum.Values, 3)
	for i, name := range []string{"red", "green", "blue"} {
		assert.Equal(t, name, enum.Values[i].Name)
		assert.Equal(t, i, enum.Values[i].Position)
		assert.Equal(t, i, enum.Values[i].Value)
	}

	// The general field loop must not re-extract the values.
	assert.Empty(t, enum.Fields)
	require.Len(t, enum.Methods, 1)
	assert.Equal(t, "describe", enum.Methods[0].Name)

	for _, v := range enum.Values {
		assert.False(t, v.IsNullable, "value %s", v.Name)
	}
}

func TestGenerateEnum_NullableValueNullability(t *testing.T) {
	t.Parallel()
	// A static member of the enum's own type declared with a nullable
	// static type counts as a value, and the analyzer's nullability
	// survives onto it.
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:paint/paint.dart
    classes:
      - name: Color
        kind: enum
        values:
          - name: red
            value: 0
        fields:
          - name: unknown
            static: true
            value: 99
            type:
              name: Color
              nullable: true
`)
	var enum *decl.EnumDeclaration
	for _, d := range libs[0].Declarations {
		if e, ok := d.(*decl.EnumDeclaration); ok {
			enum = e
		}
	}
	require.NotNil(t, enum)

	require.Len(t, enum.Values, 2)
	assert.Equal(t, "red", enum.Values[0].Name)
	assert.False(t, enum.Values[0].IsNullable)

	unknown := enum.Values[1]
	assert.Equal(t, "unknown", unknown.Name)
	assert.Equal(t, 1, unknown.Position)
	assert.Equal(t, 99, unknown.Value)
	assert.True(t, unknown.IsNullable)

	assert.Empty(t, enum.Fields)
}

// =============================================================================
// Dual-source arbitration
// =============================================================================

func TestGenerateField_ErasedArgumentsAugmentedByAnalyzer(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:bag/bag.dart
    classes:
      - name: Bag
        fields:
          - name: items
            type:
              name: List
              args: [int]
              erased_args: true
`)
	bag := classNamed(t, libs[0], "Bag")
	require.Len(t, bag.Fields, 1)
	link := bag.Fields[0].FieldType.Link()

	// The runtime erased the arguments; the analyzer still names them.
	require.Len(t, link.TypeArguments, 1)
	assert.Equal(t, "int", link.TypeArguments[0].Link().Name)
}

func TestResolveTypeInfo_GenericOverrideSubstitutes(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:box/box.dart
    classes:
      - name: Box
      - name: Holder
        fields:
          - name: box
            type: Box
generic_overrides:
  - from: Box
    to: Box<int>
`)
	holder := classNamed(t, libs[0], "Holder")
	require.Len(t, holder.Fields, 1)
	link := holder.Fields[0].FieldType.Link()

	assert.Equal(t, "Box<int>", link.ResolvedType.Name)
	assert.Equal(t, "Box", link.RawType.Name)
}

func TestGenerateField_StaticOnlyReference(t *testing.T) {
	t.Parallel()
	// The runtime never saw the type; the analyzer names it.
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:w/w.dart
    classes:
      - name: Widget
      - name: Screen
        fields:
          - name: root
            type:
              name: Widget
              no_mirror: true
`)
	screen := classNamed(t, libs[0], "Screen")
	require.Len(t, screen.Fields, 1)
	assert.Equal(t, "Widget", screen.Fields[0].FieldType.Link().Name)
}

func TestGenerateField_UnresolvableFallsBackToTopType(t *testing.T) {
	t.Parallel()
	s, libs := scanUniverse(t, `
libraries:
  - uri: package:g/g.dart
    classes:
      - name: Haunted
        fields:
          - name: ghost
            type:
              name: Ghost
              no_mirror: true
              no_static: true
`)
	haunted := classNamed(t, libs[0], "Haunted")
	require.Len(t, haunted.Fields, 1)
	assert.Equal(t, decl.ObjectType.Name, haunted.Fields[0].FieldType.Link().Name)

	// The failure is a warning, not an error, and it names its session.
	require.NotEmpty(t, s.Warnings())
	found := false
	for _, w := range s.Warnings() {
		if w.Stage == "link" {
			found = true
		}
		assert.Equal(t, s.ID, w.Session)
	}
	assert.True(t, found, "expected a link-stage warning, got %v", s.Warnings())
}

func TestGenerateClass_ReflectionOnlyDeclaration(t *testing.T) {
	t.Parallel()
	// no_static hides the class from the analyzer entirely; resolution
	// still succeeds on the reflection answers alone.
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:solo/solo.dart
    classes:
      - name: Solo
        no_static: true
        fields:
          - name: tag
            type: String
`)
	solo := classNamed(t, libs[0], "Solo")
	assert.True(t, solo.IsPublic)
	require.Len(t, solo.Fields, 1)
	assert.Equal(t, "String", solo.Fields[0].FieldType.Link().Name)
	assert.False(t, solo.Fields[0].IsNullable)
}

// =============================================================================
// Parameters
// =============================================================================

func TestGenerateParameters_ShapesAndDefaults(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:conf/conf.dart
    classes:
      - name: Config
        constructors:
          - name: ""
            params:
              - name: host
                type: String
              - name: port
                type: int
                named: true
                default: 8080
              - name: tls
                type: bool
                named: true
                required: true
`)
	config := classNamed(t, libs[0], "Config")
	require.Len(t, config.Constructors, 1)
	params := config.Constructors[0].Parameters
	require.Len(t, params, 3)

	host := params[0]
	assert.False(t, host.IsNamed)
	assert.True(t, host.IsRequired)
	assert.False(t, host.HasDefault)

	port := params[1]
	assert.True(t, port.IsNamed)
	assert.True(t, port.IsOptional)
	assert.True(t, port.HasDefault)
	assert.Equal(t, 8080, port.DefaultValue)
	assert.False(t, port.Required())

	tls := params[2]
	assert.True(t, tls.IsNamed)
	assert.True(t, tls.IsRequired)
	assert.False(t, tls.IsOptional)
}

func TestGenerateConstructor_InvokerProducesInstance(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, pointUniverse)
	point := classNamed(t, libs[0], "Point")

	got, err := point.Instantiate(map[string]any{"x": 1.0, "y": 2.0})
	require.NoError(t, err)
	inst, ok := got.(*fixture.Instance)
	require.True(t, ok)
	assert.Equal(t, "Point", inst.Class)
	assert.Equal(t, "", inst.Constructor)
	assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, inst.Args)
}

// =============================================================================
// Annotations
// =============================================================================

func TestExtractAnnotations_FieldValuesAndNullability(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:meta/meta.dart
    classes:
      - name: tracked
        fields:
          - name: reason
            type: String
            final: true
            has_default: true
            default: ""
          - name: note
            type: String
            final: true
      - name: Legacy
        annotations:
          - name: tracked
            values:
              reason: pre-rewrite
`)
	legacy := classNamed(t, libs[0], "Legacy")
	require.Len(t, legacy.Annotations, 1)
	ann := legacy.Annotations[0]
	assert.Equal(t, "tracked", ann.Name())

	require.Contains(t, ann.Fields, "reason")
	reason := ann.Fields["reason"]
	assert.True(t, reason.HasValue)
	assert.Equal(t, "pre-rewrite", reason.Value)
	assert.Equal(t, "pre-rewrite", reason.EffectiveValue())
	assert.False(t, reason.IsNullable)

	// No default, no user value, no non-null marker: nullable.
	require.Contains(t, ann.Fields, "note")
	note := ann.Fields["note"]
	assert.False(t, note.HasValue)
	assert.False(t, note.HasDefault)
	assert.True(t, note.IsNullable)
	assert.Nil(t, note.EffectiveValue())
}

func TestExtractAnnotations_SelfAnnotatedClassTerminates(t *testing.T) {
	t.Parallel()
	s, libs := scanUniverse(t, `
libraries:
  - uri: package:meta/meta.dart
    classes:
      - name: sticky
        annotations:
          - name: sticky
`)
	sticky := classNamed(t, libs[0], "sticky")
	// The self-application is either resolved once or cut by the tracker;
	// both are acceptable, hanging is not.
	assert.NotNil(t, sticky)
	assert.Equal(t, 0, s.tracker.InProgress())
}

// =============================================================================
// Top-level members
// =============================================================================

func TestGenerateLibrary_TopLevelFieldsAndFunctions(t *testing.T) {
	t.Parallel()
	_, libs := scanUniverse(t, `
libraries:
  - uri: package:top/top.dart
    classes:
      - name: Shape
    fields:
      - name: origin
        type: Shape
        final: true
    functions:
      - name: describe
        returns: String
        params:
          - name: shape
            type: Shape
        result: ok
`)
	lib := libs[0]
	require.Len(t, lib.Declarations, 3)

	var field *decl.FieldDeclaration
	var method *decl.MethodDeclaration
	for _, d := range lib.Declarations {
		switch v := d.(type) {
		case *decl.FieldDeclaration:
			field = v
		case *decl.MethodDeclaration:
			method = v
		}
	}

	require.NotNil(t, field)
	assert.True(t, field.IsTopLevel)
	assert.Equal(t, "Shape", field.FieldType.Link().Name)

	require.NotNil(t, method)
	assert.Equal(t, "describe", method.Name)
	assert.Equal(t, "String", method.ReturnType.Link().Name)
	require.Len(t, method.Parameters, 1)

	got, err := method.Invoke(nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
