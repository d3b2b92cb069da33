// Package runtime embeds a Risor VM over the graph index, exposing query
// host functions so scans can be scripted and inspected without recompiling.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jetleaf/typegraph/internal/store"
)

// Runtime embeds a Risor VM and provides graph query host functions to
// scripts.
type Runtime struct {
	store      *store.Store
	scriptsDir string
	fsys       fs.FS
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk, and wires the Risor importer accordingly.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// NewRuntime creates a Runtime wired to the given Store and scripts
// directory.
func NewRuntime(s *store.Store, scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		store:      s,
		scriptsDir: scriptsDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a Risor script with all standard globals
// plus any extra globals provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly with all standard globals
// plus any extra globals. Useful for testing without script files.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	_, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's
// script source, or nil when neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code. When an
// fs.FS is configured, reads from it; otherwise from disk relative to
// scriptsDir.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{prefix: "typegraph"}),
	}

	// Expose the Store if available (nil during some tests). Risor cannot
	// construct Go struct pointers, so the host functions return maps.
	if r.store != nil {
		globals["db"] = mustProxy(r.store)

		globals["declarations_by_name"] = makeDeclarationsByNameFn(r.store)
		globals["declarations_by_kind"] = makeDeclarationsByKindFn(r.store)
		globals["declarations_in_library"] = makeDeclarationsInLibraryFn(r.store)
		globals["annotated_with"] = makeAnnotatedWithFn(r.store)
		globals["members_of"] = makeMembersOfFn(r.store)
		globals["parameters_of"] = makeParametersOfFn(r.store)
		globals["links_of"] = makeLinksOfFn(r.store)
		globals["supertype_chain"] = makeSupertypeChainFn(r.store)
		globals["subtypes_of"] = makeSubtypesOfFn(r.store)
		globals["unresolved_links"] = makeUnresolvedLinksFn(r.store)
		globals["graph_warnings"] = makeWarningsFn(r.store)
		globals["counts_by_kind"] = makeCountsByKindFn(r.store)
		globals["db_query"] = makeDBQueryFn(r.store)
	}

	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Printf("[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Printf("[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Printf("[%s] ERROR: %s\n", l.prefix, msg)
}
