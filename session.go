package typegraph

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jetleaf/typegraph/internal/resolve"
	"github.com/jetleaf/typegraph/internal/runtime"
	"github.com/jetleaf/typegraph/internal/store"
)

// Sources bundles the oracles a scan reads from. Reflection is required;
// the other three may be nil, in which case the resolver works from the
// reflection view alone with reduced precision (no nullability refinement,
// no source-text heuristics, no constructor invocation registry).
type Sources struct {
	Reflection ReflectionSource
	Static     StaticSource
	Text       TextProvider
	Registry   Registry
}

// Session orchestrates the full pipeline: resolve every library the
// reflection source enumerates into a declaration graph, index the graph
// into SQLite, and answer queries (Go API or Risor scripts) against it.
//
// A Session is single-threaded. Callers needing concurrent scans must use
// one Session per scan.
type Session struct {
	sources  Sources
	resolver *resolve.Session
	store    *store.Store
	runtime  *runtime.Runtime

	indexPath  string
	scriptsDir string
	scriptsFS  fs.FS

	// libraries holds the resolved libraries in scan order. Re-scanning a
	// URI replaces its entry in place rather than appending.
	libraries []*LibraryDeclaration
}

// Option configures a Session.
type Option func(*Session)

// WithIndexPath backs the query index with a SQLite file at the given path
// instead of an in-memory database. Useful when another process wants to
// inspect the index after the scan.
func WithIndexPath(path string) Option {
	return func(s *Session) {
		s.indexPath = path
	}
}

// WithScriptsDir points RunScript at a directory of Risor scripts on disk.
func WithScriptsDir(dir string) Option {
	return func(s *Session) {
		s.scriptsDir = dir
	}
}

// WithScriptsFS loads Risor scripts from the given filesystem instead of
// from the scripts directory. This enables embedding scripts via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(s *Session) {
		s.scriptsFS = fsys
	}
}

// NewSession creates a Session over the given sources. The query index is
// created and migrated eagerly so that a configuration problem surfaces
// here rather than mid-scan.
func NewSession(sources Sources, opts ...Option) (*Session, error) {
	if sources.Reflection == nil {
		return nil, fmt.Errorf("typegraph: a reflection source is required")
	}

	s := &Session{sources: sources}
	for _, opt := range opts {
		opt(s)
	}

	st, err := store.NewStore(s.indexPath)
	if err != nil {
		return nil, fmt.Errorf("typegraph: create index: %w", err)
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("typegraph: migrate index: %w", err)
	}
	s.store = st

	var rtOpts []runtime.RuntimeOption
	if s.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(s.scriptsFS))
	}
	s.runtime = runtime.NewRuntime(st, s.scriptsDir, rtOpts...)

	s.resolver = resolve.NewSession(sources.Reflection, sources.Static, sources.Text, sources.Registry)
	return s, nil
}

// ID identifies this session in warnings and debug output.
func (s *Session) ID() string {
	return s.resolver.ID
}

// Close releases the Session's database resources.
func (s *Session) Close() error {
	return s.store.Close()
}

// Scan resolves every library the reflection source enumerates and indexes
// the resulting graph. Scanning again starts from scratch: caches, cycle
// state, warnings, and the index are all cleared first.
//
// A library that fails outright aborts the scan; per-type and per-member
// problems degrade to warnings instead, so a partial graph with warnings is
// the common outcome for imperfect inputs.
func (s *Session) Scan(ctx context.Context) error {
	if len(s.libraries) > 0 {
		if err := s.Reset(); err != nil {
			return err
		}
	}
	for _, lm := range s.sources.Reflection.Libraries() {
		lib, err := s.resolver.GenerateLibrary(ctx, lm)
		if err != nil {
			return fmt.Errorf("typegraph: scan %s: %w", lm.URI(), err)
		}
		s.libraries = append(s.libraries, lib)
	}
	return s.index()
}

// ScanLibrary resolves a single library by URI and refreshes the index.
// Types in other libraries that the library references are resolved on
// demand, but only the named library's declarations join the scan order.
func (s *Session) ScanLibrary(ctx context.Context, uri string) (*LibraryDeclaration, error) {
	lm, ok := s.sources.Reflection.Library(uri)
	if !ok {
		return nil, fmt.Errorf("typegraph: unknown library %q", uri)
	}
	lib, err := s.resolver.GenerateLibrary(ctx, lm)
	if err != nil {
		return nil, fmt.Errorf("typegraph: scan %s: %w", uri, err)
	}
	replaced := false
	for i, have := range s.libraries {
		if have.URI == lib.URI {
			s.libraries[i] = lib
			replaced = true
			break
		}
	}
	if !replaced {
		s.libraries = append(s.libraries, lib)
	}
	return lib, s.index()
}

// index rebuilds the SQLite index from the current graph and warnings.
func (s *Session) index() error {
	resolved := s.resolver.Warnings()
	warnings := make([]store.Warning, 0, len(resolved))
	for _, w := range resolved {
		warnings = append(warnings, store.Warning{
			SessionID: w.Session,
			Stage:     w.Stage,
			Subject:   w.Subject,
			Detail:    w.Detail,
		})
	}
	if err := s.store.IndexGraph(s.resolver.ID, s.libraries, warnings); err != nil {
		return fmt.Errorf("typegraph: index graph: %w", err)
	}
	return nil
}

// Libraries returns the resolved libraries in scan order.
func (s *Session) Libraries() []*LibraryDeclaration {
	return s.libraries
}

// Types returns the session type cache keyed by runtime type. The map is
// the live cache, not a copy; treat it as read-only.
func (s *Session) Types() map[RuntimeType]Declaration {
	return s.resolver.Types()
}

// Declaration returns the cached declaration for a runtime type, if the
// scan has produced one.
func (s *Session) Declaration(t RuntimeType) (Declaration, bool) {
	return s.resolver.Cached(t)
}

// Warnings returns the non-fatal problems accumulated by scans so far.
func (s *Session) Warnings() []Warning {
	return s.resolver.Warnings()
}

// Reset clears the resolver caches, the resolved libraries, and the query
// index. The Session is then ready for a fresh scan.
func (s *Session) Reset() error {
	s.resolver.Reset()
	s.libraries = nil
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("typegraph: clear index: %w", err)
	}
	return nil
}

// Instantiate finds the class named name anywhere in the scanned graph and
// constructs an instance from args, matching a constructor by parameter
// names. Enum and mixin declarations are not instantiable through this
// path.
func (s *Session) Instantiate(name string, args map[string]any) (any, error) {
	for _, lib := range s.libraries {
		for _, d := range lib.Declarations {
			cd, ok := d.(*ClassDeclaration)
			if !ok || cd.Name != name {
				continue
			}
			return cd.Instantiate(args)
		}
	}
	return nil, fmt.Errorf("typegraph: no class named %q", name)
}

// Eval runs a Risor script source string against the indexed graph.
func (s *Session) Eval(ctx context.Context, source string) error {
	return s.runtime.RunSource(ctx, source, nil)
}

// RunScript runs a Risor script by path, resolved against the scripts
// directory or filesystem configured at construction time.
func (s *Session) RunScript(ctx context.Context, path string) error {
	return s.runtime.RunScript(ctx, path, nil)
}
