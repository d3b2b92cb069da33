package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClass(name string, ctors ...*ConstructorDeclaration) *ClassDeclaration {
	return &ClassDeclaration{
		SourceBase: SourceBase{
			Base: Base{
				Name:     name,
				Type:     RuntimeTypeOf(name),
				IsPublic: true,
			},
			LibraryURI: "package:app/app.dart",
		},
		Kind:         KindClass,
		Constructors: ctors,
	}
}

func newTestConstructor(name string, params ...*ParameterDeclaration) *ConstructorDeclaration {
	return &ConstructorDeclaration{
		MemberBase: MemberBase{
			SourceBase: SourceBase{
				Base: Base{Name: name, IsPublic: true},
			},
		},
		Parameters: params,
		Factory: func(args map[string]any) (any, error) {
			return args, nil
		},
	}
}

func param(name string, opts ...func(*ParameterDeclaration)) *ParameterDeclaration {
	p := &ParameterDeclaration{
		SourceBase: SourceBase{Base: Base{Name: name, IsPublic: true}},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func nullable(p *ParameterDeclaration)    { p.IsNullable = true }
func withDefault(p *ParameterDeclaration) { p.HasDefault = true }

// =============================================================================
// Identity
// =============================================================================

func TestRuntimeTypeOf_StableAcrossCalls(t *testing.T) {
	t.Parallel()
	a := RuntimeTypeOf("Box<int>")
	b := RuntimeTypeOf("Box<int>")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, RuntimeTypeOf("Box<String>"))
	assert.False(t, a.IsZero())
	assert.True(t, RuntimeType{}.IsZero())
}

func TestEqual_SameDebugIDFromSeparateConstruction(t *testing.T) {
	t.Parallel()
	// The same conceptual type rebuilt independently must compare equal.
	a := newTestClass("Point")
	b := newTestClass("Point")

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, newTestClass("Line")))
	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}

func TestDebugID_DistinguishesKindAndLibrary(t *testing.T) {
	t.Parallel()
	class := newTestClass("Color")
	enum := &EnumDeclaration{ClassDeclaration: *newTestClass("Color")}
	enum.Kind = KindEnum

	assert.NotEqual(t, class.DebugID(), enum.DebugID())

	other := newTestClass("Color")
	other.LibraryURI = "package:other/other.dart"
	assert.NotEqual(t, class.DebugID(), other.DebugID())
}

// =============================================================================
// Constructor matching
// =============================================================================

func TestMatchConstructor_FirstDeclaredWins(t *testing.T) {
	t.Parallel()
	cl := newTestClass("Point",
		newTestConstructor("", param("x"), param("y")),
		newTestConstructor("fromJson", param("json")),
	)

	c, err := cl.MatchConstructor(map[string]any{"x": 1.0, "y": 2.0})
	require.NoError(t, err)
	assert.Equal(t, "", c.Name)

	c, err = cl.MatchConstructor(map[string]any{"json": "{}"})
	require.NoError(t, err)
	assert.Equal(t, "fromJson", c.Name)
}

func TestMatchConstructor_UnknownKeyRejectsCandidate(t *testing.T) {
	t.Parallel()
	cl := newTestClass("Point", newTestConstructor("", param("x", nullable)))

	_, err := cl.MatchConstructor(map[string]any{"x": 1, "z": 9})
	assert.ErrorIs(t, err, ErrNoMatchingConstructor)
}

func TestMatchConstructor_MissingRequiredRejectsCandidate(t *testing.T) {
	t.Parallel()
	cl := newTestClass("Point", newTestConstructor("", param("x"), param("y")))

	_, err := cl.MatchConstructor(map[string]any{"x": 1})
	assert.ErrorIs(t, err, ErrNoMatchingConstructor)
}

func TestMatchConstructor_DefaultedParameterIsNotRequired(t *testing.T) {
	t.Parallel()
	cl := newTestClass("Point",
		newTestConstructor("", param("x"), param("y", withDefault)),
	)

	c, err := cl.MatchConstructor(map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "", c.Name)
}

func TestMatchConstructor_EmptyArgsPrefersZeroParameter(t *testing.T) {
	t.Parallel()
	cl := newTestClass("Config",
		newTestConstructor("full", param("a"), param("b")),
		newTestConstructor("empty"),
		newTestConstructor("lenient", param("a", nullable)),
	)

	c, err := cl.MatchConstructor(nil)
	require.NoError(t, err)
	// "empty" matches directly since it has no required parameters; it is
	// also the zero-parameter fallback. Either way it must win over "full".
	assert.Equal(t, "empty", c.Name)
}

func TestMatchConstructor_EmptyArgsFallsBackToAllNullable(t *testing.T) {
	t.Parallel()
	cl := newTestClass("Config",
		newTestConstructor("strict", param("a")),
	)
	lenient := newTestConstructor("lenient", param("a", nullable))
	cl.Constructors = append(cl.Constructors, lenient)

	c, err := cl.MatchConstructor(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "lenient", c.Name)
}

func TestInstantiate_InvokesMatchedFactory(t *testing.T) {
	t.Parallel()
	cl := newTestClass("Point", newTestConstructor("", param("x"), param("y")))

	got, err := cl.Instantiate(map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, got)
}

func TestInstantiate_PrivateConstructorRefused(t *testing.T) {
	t.Parallel()
	private := newTestConstructor("_internal")
	private.IsPublic = false
	cl := newTestClass("Singleton", private)

	_, err := cl.Instantiate(nil)
	assert.ErrorIs(t, err, ErrPrivateConstructor)
}

func TestConstructorInvoke_NoFactoryBound(t *testing.T) {
	t.Parallel()
	c := newTestConstructor("")
	c.Factory = nil

	_, err := c.Invoke(nil)
	assert.ErrorIs(t, err, ErrNoAccessor)
}

// =============================================================================
// Field capabilities
// =============================================================================

func TestFieldReadWrite_BoundAccessors(t *testing.T) {
	t.Parallel()
	current := any(42)
	f := &FieldDeclaration{
		MemberBase: MemberBase{SourceBase: SourceBase{Base: Base{Name: "count", IsPublic: true}}},
		Getter:     func() (any, error) { return current, nil },
		Setter:     func(v any) error { current = v; return nil },
	}

	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	require.NoError(t, f.Write(7))
	got, err = f.Read()
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestFieldWrite_ImmutableRefused(t *testing.T) {
	t.Parallel()
	f := &FieldDeclaration{
		MemberBase: MemberBase{SourceBase: SourceBase{Base: Base{Name: "pi"}}},
		IsFinal:    true,
		Setter:     func(v any) error { return nil },
	}

	err := f.Write(3.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

func TestFieldRead_NoAccessor(t *testing.T) {
	t.Parallel()
	f := &FieldDeclaration{
		MemberBase: MemberBase{SourceBase: SourceBase{Base: Base{Name: "x"}}},
	}

	_, err := f.Read()
	assert.ErrorIs(t, err, ErrNoAccessor)
}

// =============================================================================
// Annotations
// =============================================================================

func TestAnnotationFieldEffectiveValue_Precedence(t *testing.T) {
	t.Parallel()
	f := &AnnotationFieldDeclaration{Name: "reason"}
	assert.Nil(t, f.EffectiveValue())

	f.HasDefault = true
	f.DefaultValue = "none"
	assert.Equal(t, "none", f.EffectiveValue())

	f.HasValue = true
	f.Value = "legacy"
	assert.Equal(t, "legacy", f.EffectiveValue())
}

func TestAnnotationName_FromTypeLink(t *testing.T) {
	t.Parallel()
	a := &AnnotationDeclaration{
		Type: &LinkDeclaration{Base: Base{Name: "tracked"}},
	}
	assert.Equal(t, "tracked", a.Name())
	assert.Equal(t, "", (&AnnotationDeclaration{}).Name())
}

// =============================================================================
// Links
// =============================================================================

func TestTerminalLinks_ShapeAndIdentity(t *testing.T) {
	t.Parallel()
	d := NewDynamicLink()
	assert.Equal(t, "dynamic", d.Name)
	assert.Equal(t, CoreLibraryURI, d.DeclaringURI)
	assert.Equal(t, d.RawType, d.ResolvedType)
	assert.True(t, d.IsPublic)

	assert.Equal(t, "void", NewVoidLink().Name)
	assert.Equal(t, "Object", NewObjectLink().Name)

	// Two calls produce interchangeable links.
	assert.Equal(t, NewDynamicLink().DebugID(), NewDynamicLink().DebugID())
}

func TestFunctionLink_VariantExposesSharedCore(t *testing.T) {
	t.Parallel()
	f := &FunctionLinkDeclaration{
		LinkDeclaration: LinkDeclaration{Base: Base{Name: "Function"}},
		Signature:       "void Function()",
		IsNullable:      true,
	}
	assert.Equal(t, "Function", f.Link().Name)

	j := f.ToJSON()
	assert.Equal(t, true, j["is_function"])
	assert.Equal(t, true, j["is_nullable"])
	assert.Equal(t, "void Function()", j["signature"])
}

func TestRecordLink_FieldProjection(t *testing.T) {
	t.Parallel()
	r := &RecordLinkDeclaration{
		LinkDeclaration: LinkDeclaration{Base: Base{Name: "(int, {String name})"}},
		Fields: []*RecordFieldDeclaration{
			{Position: 0, Type: NewObjectLink()},
			{Name: "name", Position: -1, IsNamed: true},
		},
	}

	j := r.ToJSON()
	fields, ok := j["fields"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, false, fields[0]["is_named"])
	assert.Equal(t, "name", fields[1]["name"])
	assert.Equal(t, -1, fields[1]["position"])
}
