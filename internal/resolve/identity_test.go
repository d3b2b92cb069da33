package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetleaf/typegraph/internal/fixture"
	"github.com/jetleaf/typegraph/internal/source"
)

// =============================================================================
// Tracker
// =============================================================================

func TestTracker_BeginEnd(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	id := Identity{Kind: identType, MirrorName: "Point", LibraryURI: "package:a/a.dart"}

	require.True(t, tr.Begin(id))
	assert.Equal(t, 1, tr.InProgress())

	// Re-entering the same identity signals a cycle.
	assert.False(t, tr.Begin(id))

	tr.End(id)
	assert.Equal(t, 0, tr.InProgress())
	assert.True(t, tr.Begin(id))
}

func TestTracker_IndependentIdentities(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	a := Identity{Kind: identType, MirrorName: "A"}
	b := Identity{Kind: identType, MirrorName: "B"}

	require.True(t, tr.Begin(a))
	require.True(t, tr.Begin(b))
	assert.Equal(t, 2, tr.InProgress())
}

func TestTracker_KindsDoNotCollide(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	asType := Identity{Kind: identType, MirrorName: "tracked", LibraryURI: "package:a/a.dart"}
	asAnnotation := asType
	asAnnotation.Kind = identAnnotation

	require.True(t, tr.Begin(asType))
	assert.True(t, tr.Begin(asAnnotation))
}

// =============================================================================
// Identity construction
// =============================================================================

func typeSpecMirror(t *testing.T, spec string) source.TypeMirror {
	t.Helper()
	u, err := fixture.Parse([]byte(`
libraries:
  - uri: package:id/id.dart
    classes:
      - name: Holder
        fields:
          - name: probe
            type: ` + spec + `
`))
	require.NoError(t, err)
	classes := u.Reflection().Libraries()[0].DeclaredTypes()
	require.Len(t, classes, 1)
	fields := classes[0].Fields()
	require.Len(t, fields, 1)
	tm, ok := fields[0].Type()
	require.True(t, ok)
	return tm
}

func TestTypeIdentity_DistinguishesTypes(t *testing.T) {
	t.Parallel()

	intID := typeIdentity(typeSpecMirror(t, "int"), nil, "package:id/id.dart")
	strID := typeIdentity(typeSpecMirror(t, "String"), nil, "package:id/id.dart")
	assert.NotEqual(t, intID, strID)

	// The same reference seen twice keys identically.
	again := typeIdentity(typeSpecMirror(t, "int"), nil, "package:id/id.dart")
	assert.Equal(t, intID, again)
}

func TestTypeIdentity_LibraryScoped(t *testing.T) {
	t.Parallel()
	tm := typeSpecMirror(t, "int")

	a := typeIdentity(tm, nil, "package:a/a.dart")
	b := typeIdentity(tm, nil, "package:b/b.dart")
	assert.NotEqual(t, a, b)
}

func TestTypeIdentity_ParameterizedDiffersFromRaw(t *testing.T) {
	t.Parallel()

	raw := typeIdentity(typeSpecMirror(t, "List"), nil, "package:id/id.dart")
	parameterized := typeIdentity(typeSpecMirror(t, "List<int>"), nil, "package:id/id.dart")
	assert.NotEqual(t, raw, parameterized)
}

func TestTypeIdentity_StaticSideOnly(t *testing.T) {
	t.Parallel()

	st := &source.StaticType{Name: "Widget", Display: "Widget"}
	id := typeIdentity(nil, st, "package:w/w.dart")
	assert.Empty(t, id.MirrorName)
	assert.Equal(t, "Widget", id.StaticDisplay)
	assert.NotZero(t, id.StaticHash)

	other := &source.StaticType{Name: "Screen", Display: "Screen"}
	assert.NotEqual(t, id, typeIdentity(nil, other, "package:w/w.dart"))
}

func TestStaticCallableIdentity(t *testing.T) {
	t.Parallel()

	fn := &source.StaticType{Kind: source.StaticFunction, Name: "Function", Display: "void Function()"}
	id := staticCallableIdentity(fn, "package:cb/cb.dart")
	assert.Equal(t, identStaticCallable, id.Kind)

	nullable := &source.StaticType{Kind: source.StaticFunction, Name: "Function", Display: "void Function()?"}
	assert.NotEqual(t, id, staticCallableIdentity(nullable, "package:cb/cb.dart"))
}

func TestAnnotationIdentity_OwnNamespace(t *testing.T) {
	t.Parallel()

	ann := annotationIdentity("tracked", 42, "package:m/m.dart")
	assert.Equal(t, identAnnotation, ann.Kind)
	assert.Equal(t, "tracked", ann.MirrorName)
	assert.Equal(t, uint64(42), ann.MirrorHash)
}
