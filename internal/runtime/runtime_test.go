package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/store"
)

func nominalLink(name, uri string) *decl.LinkDeclaration {
	rt := decl.RuntimeTypeOf(name)
	return &decl.LinkDeclaration{
		Base:         decl.Base{Name: name, Type: rt, IsPublic: true},
		RawType:      rt,
		ResolvedType: rt,
		DeclaringURI: uri,
		ReferenceURI: uri,
		Variance:     decl.Invariant,
	}
}

// indexedRuntime builds a Runtime over a freshly indexed two-class graph:
// Animal, and Dog extends Animal with one method taking one parameter.
func indexedRuntime(t *testing.T) *Runtime {
	t.Helper()
	const uri = "package:zoo/zoo.dart"
	pkg := &decl.Package{Name: "zoo", IsRoot: true}

	animal := &decl.ClassDeclaration{
		SourceBase: decl.SourceBase{
			Base:       decl.Base{Name: "Animal", Type: decl.RuntimeTypeOf("Animal"), IsPublic: true},
			LibraryURI: uri, SourceURI: uri, Package: pkg,
		},
		Kind:       decl.KindClass,
		IsAbstract: true,
	}
	dog := &decl.ClassDeclaration{
		SourceBase: decl.SourceBase{
			Base:       decl.Base{Name: "Dog", Type: decl.RuntimeTypeOf("Dog"), IsPublic: true},
			LibraryURI: uri, SourceURI: uri, Package: pkg,
		},
		Kind:       decl.KindClass,
		Superclass: nominalLink("Animal", uri),
		Methods: []*decl.MethodDeclaration{{
			MemberBase: decl.MemberBase{SourceBase: decl.SourceBase{
				Base: decl.Base{Name: "speak", IsPublic: true},
			}},
			ReturnType: nominalLink("String", "dart:core"),
			Parameters: []*decl.ParameterDeclaration{{
				SourceBase: decl.SourceBase{Base: decl.Base{Name: "times", IsPublic: true}},
				ParamType:  nominalLink("int", "dart:core"),
				Index:      0,
				IsRequired: true,
			}},
		}},
	}

	st, err := store.NewStore("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate())
	require.NoError(t, st.IndexGraph("zoo-session", []*decl.LibraryDeclaration{{
		URI: uri, Package: pkg, Declarations: []decl.Declaration{animal, dog},
	}}, []store.Warning{{Stage: "link", Subject: "Ghost", Detail: "could not resolve"}}))

	return NewRuntime(st, "")
}

// =============================================================================
// Host functions
// =============================================================================

func TestRunSource_DeclarationQueries(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `
dogs := declarations_by_name("Dog")
assert(len(dogs) == 1, "expected one Dog declaration")
assert(dogs[0]["kind"] == "class")
assert(dogs[0]["is_public"])

classes := declarations_by_kind("class")
assert(len(classes) == 2)

in_lib := declarations_in_library("package:zoo/zoo.dart")
assert(len(in_lib) == 2)
assert(in_lib[0]["name"] == "Animal")
assert(in_lib[0]["is_abstract"])
`, nil)
	require.NoError(t, err)
}

func TestRunSource_MembersAndParameters(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `
members := members_of("Dog")
assert(len(members) == 1)
speak := members[0]
assert(speak["name"] == "speak")
assert(speak["kind"] == "method")
assert(speak["type_display"] == "String")

params := parameters_of(speak["id"])
assert(len(params) == 1)
assert(params[0]["name"] == "times")
assert(params[0]["is_required"])
`, nil)
	require.NoError(t, err)
}

func TestRunSource_HierarchyQueries(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `
chain := supertype_chain("Dog")
assert(len(chain) == 1, "unexpected chain length")
assert(chain[0] == "Animal")

subs := subtypes_of("Animal")
assert(len(subs) == 1)
assert(subs[0]["name"] == "Dog")

links := links_of("Dog", "supertype")
assert(len(links) == 1)
assert(links[0]["resolved_name"] == "Animal")
assert(links[0]["is_resolved"])
`, nil)
	require.NoError(t, err)
}

func TestRunSource_WarningsAndCounts(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `
warnings := graph_warnings()
assert(len(warnings) == 1)
assert(warnings[0]["stage"] == "link")
assert(warnings[0]["subject"] == "Ghost")
assert(warnings[0]["session"] == "zoo-session")

counts := counts_by_kind()
assert(counts["class"] == 2)

assert(len(unresolved_links()) == 0)
`, nil)
	require.NoError(t, err)
}

// =============================================================================
// db_query bridge
// =============================================================================

func TestRunSource_DBQuery(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `
rows := db_query("SELECT name FROM declarations WHERE kind = ? ORDER BY name", "class")
assert(len(rows) == 2)
assert(rows[0]["name"] == "Animal")
assert(rows[1]["name"] == "Dog")
`, nil)
	require.NoError(t, err)
}

func TestRunSource_DBQueryRejectsWrites(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `db_query("DELETE FROM declarations")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only SELECT queries are allowed")
}

func TestRunSource_ParametersOfRequiresInt(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `parameters_of("speak")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "member id must be an int")
}

// =============================================================================
// Globals and script loading
// =============================================================================

func TestRunSource_ExtraGlobals(t *testing.T) {
	t.Parallel()
	r := indexedRuntime(t)

	err := r.RunSource(context.Background(), `
assert(target == "Dog")
assert(len(declarations_by_name(target)) == 1)
`, map[string]any{"target": "Dog"})
	require.NoError(t, err)
}

func TestRunSource_NilStoreKeepsLogOnly(t *testing.T) {
	t.Parallel()
	r := NewRuntime(nil, "")

	require.NoError(t, r.RunSource(context.Background(), `log.Info("no index bound")`, nil))

	err := r.RunSource(context.Background(), `declarations_by_name("Dog")`, nil)
	require.Error(t, err)
}

func TestRunScript_RelativeToScriptsDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := filepath.Join(dir, "probe.risor")
	require.NoError(t, os.WriteFile(script, []byte(`assert(len(declarations_by_name("Dog")) == 1)`), 0o644))

	indexed := indexedRuntime(t)
	r := NewRuntime(indexed.store, dir)
	require.NoError(t, r.RunScript(context.Background(), "probe.risor", nil))
}

func TestRunScript_MissingFile(t *testing.T) {
	t.Parallel()
	r := NewRuntime(nil, t.TempDir())

	err := r.RunScript(context.Background(), "absent.risor", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading script")
}

func TestRunScript_FromFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"embedded.risor": &fstest.MapFile{Data: []byte(`assert(counts_by_kind()["class"] == 2)`)},
	}

	indexed := indexedRuntime(t)
	r := NewRuntime(indexed.store, "", WithRuntimeFS(fsys))
	require.NoError(t, r.RunScript(context.Background(), "embedded.risor", nil))
}

func TestLoadScript_TrimsLeadingSlashForFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"report.risor": &fstest.MapFile{Data: []byte(`x := 1`)},
	}
	r := NewRuntime(nil, "", WithRuntimeFS(fsys))

	src, err := r.LoadScript("/report.risor")
	require.NoError(t, err)
	assert.Equal(t, "x := 1", src)
}
