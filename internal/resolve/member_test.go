package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetleaf/typegraph/internal/source"
)

func el(kind source.ElementKind, name string) *source.Element {
	return &source.Element{Name: name, Kind: kind}
}

// =============================================================================
// Counterpart lookup: members
// =============================================================================

func TestStaticMemberFor_IndexWinsOverName(t *testing.T) {
	t.Parallel()
	// The analyzer enumerates y before x. The runtime asks for "x" at
	// index 0; the in-bounds index decides, so it gets y.
	classEl := &source.Element{Members: []*source.Element{
		el(source.ElementField, "y"),
		el(source.ElementField, "x"),
	}}

	got := staticMemberFor(classEl, source.ElementField, "x", 0)
	require.NotNil(t, got)
	assert.Equal(t, "y", got.Name)
}

func TestStaticMemberFor_OutOfBoundsFallsBackToName(t *testing.T) {
	t.Parallel()
	classEl := &source.Element{Members: []*source.Element{
		el(source.ElementField, "x"),
	}}

	got := staticMemberFor(classEl, source.ElementField, "x", 5)
	require.NotNil(t, got)
	assert.Equal(t, "x", got.Name)

	assert.Nil(t, staticMemberFor(classEl, source.ElementField, "ghost", 5))
}

func TestStaticMemberFor_IndexCountsWithinShape(t *testing.T) {
	t.Parallel()
	// Constructors precede fields in the element's member list; the field
	// lookup at index 0 must skip past them.
	classEl := &source.Element{Members: []*source.Element{
		el(source.ElementConstructor, ""),
		el(source.ElementConstructor, "origin"),
		el(source.ElementField, "x"),
		el(source.ElementMethod, "distanceTo"),
	}}

	field := staticMemberFor(classEl, source.ElementField, "x", 0)
	require.NotNil(t, field)
	assert.Equal(t, "x", field.Name)

	method := staticMemberFor(classEl, source.ElementMethod, "distanceTo", 0)
	require.NotNil(t, method)
	assert.Equal(t, "distanceTo", method.Name)

	named := staticMemberFor(classEl, source.ElementConstructor, "origin", 1)
	require.NotNil(t, named)
	assert.Equal(t, "origin", named.Name)
}

func TestStaticMemberFor_FunctionMatchesMethodLookup(t *testing.T) {
	t.Parallel()
	// Top-level functions come tagged as functions, but the runtime face
	// enumerates them as methods.
	classEl := &source.Element{Members: []*source.Element{
		el(source.ElementFunction, "describe"),
	}}

	got := staticMemberFor(classEl, source.ElementMethod, "describe", 0)
	require.NotNil(t, got)
	assert.Equal(t, "describe", got.Name)
}

func TestStaticMemberFor_NilClassElement(t *testing.T) {
	t.Parallel()
	assert.Nil(t, staticMemberFor(nil, source.ElementField, "x", 0))
}

// =============================================================================
// Counterpart lookup: parameters
// =============================================================================

func TestStaticParamFor_NameWinsOverIndex(t *testing.T) {
	t.Parallel()
	// Parameter matching runs the other way round: a name match beats the
	// positional one.
	params := []*source.Element{
		el(source.ElementParameter, "y"),
		el(source.ElementParameter, "x"),
	}

	got := staticParamFor(params, "x", 0)
	require.NotNil(t, got)
	assert.Equal(t, "x", got.Name)
}

func TestStaticParamFor_UnknownNameFallsBackToIndex(t *testing.T) {
	t.Parallel()
	params := []*source.Element{
		el(source.ElementParameter, "a"),
		el(source.ElementParameter, "b"),
	}

	got := staticParamFor(params, "renamed", 1)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Name)

	assert.Nil(t, staticParamFor(params, "renamed", 7))
}
