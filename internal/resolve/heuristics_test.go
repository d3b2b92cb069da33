package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Modifier detection
// =============================================================================

func TestDetectModifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		decl string
		want classModifiers
	}{
		{
			name: "plain class",
			text: "class Point {}",
			decl: "Point",
			want: classModifiers{},
		},
		{
			name: "sealed class",
			text: "sealed class Token {}",
			decl: "Token",
			want: classModifiers{Sealed: true},
		},
		{
			name: "sealed abstract class",
			text: "sealed abstract class Node {}",
			decl: "Node",
			want: classModifiers{Sealed: true},
		},
		{
			name: "base class",
			text: "base class Vehicle {}",
			decl: "Vehicle",
			want: classModifiers{Base: true},
		},
		{
			name: "interface class",
			text: "interface class Comparable {}",
			decl: "Comparable",
			want: classModifiers{Interface: true},
		},
		{
			name: "final class",
			text: "final class EndToken extends Token {}",
			decl: "EndToken",
			want: classModifiers{Final: true},
		},
		{
			name: "mixin declaration",
			text: "mixin Logged on Shape {}",
			decl: "Logged",
			want: classModifiers{Mixin: true},
		},
		{
			name: "mixin class",
			text: "mixin class Reusable {}",
			decl: "Reusable",
			want: classModifiers{MixinClass: true},
		},
		{
			name: "base mixin",
			text: "base mixin Walks {}",
			decl: "Walks",
			want: classModifiers{Mixin: true, Base: true},
		},
		{
			name: "name collision with another declaration",
			text: "sealed class Token {}\nclass TokenList {}",
			decl: "TokenList",
			want: classModifiers{},
		},
		{
			name: "empty source",
			text: "",
			decl: "Point",
			want: classModifiers{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detectModifiers(tt.text, tt.decl))
		})
	}
}

// =============================================================================
// Parameter-list parsing
// =============================================================================

func TestParseParameterList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		member string
		want   []string
		ok     bool
	}{
		{
			name:   "simple positional list",
			text:   "double distanceTo(Point other, double scale) {}",
			member: "distanceTo",
			want:   []string{"Point other", "double scale"},
			ok:     true,
		},
		{
			name:   "named group kept as one nested fragment",
			text:   "Config(String host, {int port = 8080, required bool tls}) {}",
			member: "Config",
			want:   []string{"String host", "int port = 8080, required bool tls"},
			ok:     true,
		},
		{
			name:   "generic argument commas stay nested",
			text:   "void put(Map<String, int> counts) {}",
			member: "put",
			want:   []string{"Map<String, int> counts"},
			ok:     true,
		},
		{
			name:   "empty list",
			text:   "void reset() {}",
			member: "reset",
			want:   nil,
			ok:     true,
		},
		{
			name:   "call site through receiver is skipped",
			text:   "void run() { other.update(1); }\nvoid update(int v) {}",
			member: "update",
			want:   []string{"int v"},
			ok:     true,
		},
		{
			name:   "substring of longer identifier is skipped",
			text:   "void refreshAll() {}\nvoid refresh(bool deep) {}",
			member: "refresh",
			want:   []string{"bool deep"},
			ok:     true,
		},
		{
			name:   "no declaration site",
			text:   "class Empty {}",
			member: "missing",
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseParameterList(tt.text, tt.member)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeclaredParamName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		param string
		want  string
	}{
		{"Point other", "other"},
		{"int port = 8080", "port"},
		{"required bool tls", "tls"},
		{"this.x", "x"},
		{"double this.radius", "radius"},
		{"super.key", "key"},
		{"void Function(int)? onTap", "onTap"},
		{"int cb(int a)", "cb"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, declaredParamName(tt.param))
		})
	}
}

// =============================================================================
// Nullability text scans
// =============================================================================

func TestTypeTextNullable(t *testing.T) {
	t.Parallel()

	assert.True(t, typeTextNullable("String?"))
	assert.True(t, typeTextNullable("Map<String, int>? "))
	assert.True(t, typeTextNullable("Null"))
	assert.False(t, typeTextNullable("String"))
	assert.False(t, typeTextNullable(""))
}

func TestRegexNullability(t *testing.T) {
	t.Parallel()

	assert.True(t, regexNullability("final String? label;", "label"))
	assert.True(t, regexNullability("Map<String, int>? counts;", "counts"))
	assert.True(t, regexNullability("Null marker;", "marker"))
	assert.False(t, regexNullability("final String label;", "label"))
	// A different member's nullability must not bleed over.
	assert.False(t, regexNullability("String? title; String label;", "label"))
}

// =============================================================================
// Splitting primitives
// =============================================================================

func TestSplitTopLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"int a", "Map<String, int> b", "void Function(int, int) cb"},
		splitTopLevel("int a, Map<String, int> b, void Function(int, int) cb", ','))
	assert.Equal(t,
		[]string{"String host", "int port"},
		splitTopLevel("String host, {int port}", ','))
	assert.Empty(t, splitTopLevel("", ','))
}

func TestTopLevelIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6, topLevelIndex("int x = 1", '='))
	assert.Equal(t, -1, topLevelIndex("Map<String, int> m", '='))
	// The '=' inside the nested default does not count.
	assert.Equal(t, -1, topLevelIndex("f({int x = 1}) cb", '='))
}

func TestBalancedParens(t *testing.T) {
	t.Parallel()

	body, ok := balancedParens("(int a, (int, int) pair) {}")
	require.True(t, ok)
	assert.Equal(t, "int a, (int, int) pair", body)

	_, ok = balancedParens("(never closed")
	assert.False(t, ok)
}

func TestFormalTarget(t *testing.T) {
	t.Parallel()

	typeText, isThis := formalTarget("this.x", "x")
	assert.Empty(t, typeText)
	assert.True(t, isThis)

	typeText, isThis = formalTarget("double? this.radius", "radius")
	assert.Equal(t, "double?", typeText)
	assert.True(t, isThis)

	typeText, isThis = formalTarget("super.key", "key")
	assert.Empty(t, typeText)
	assert.False(t, isThis)

	typeText, isThis = formalTarget("Point other", "other")
	assert.Empty(t, typeText)
	assert.False(t, isThis)
}
