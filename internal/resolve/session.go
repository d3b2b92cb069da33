// Package resolve implements the link/type resolution and
// declaration-generation engine: it reconciles the runtime reflection view
// and the static-analysis view of a program's type universe into one
// canonical declaration graph, with cycle detection, identity caching, and
// fallback arbitration between the two sources.
package resolve

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// Warning records a non-fatal resolution problem. The walk continues; the
// caller decides whether warnings are fatal for its use case. Session is the
// ID of the session that recorded it.
type Warning struct {
	Session string
	Stage   string
	Subject string
	Detail  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Stage, w.Subject, w.Detail)
}

/// Session owns all per-walk mutable state: the type, library, link, and
// source-text caches, the cycle tracker, and the accumulated warnings.
// A Session is single-threaded; callers running concurrent walks must use
// one Session per walk.
type Session struct {
	// ID identifies this session in warnings and downstream indexes.
	ID string

	refl     source.ReflectionSource
	static   source.StaticSource
	text     source.TextProvider
	registry source.Registry

	types      map[decl.RuntimeType]decl.Declaration
	libraries  map[string]*decl.LibraryDeclaration
	sourceText map[string]string
	links      map[Identity]decl.TypeLink

	tracker  *Tracker
	warnings []Warning
}

// NewSession creates a Session over the four collaborators. static, text,
// and registry may each be nil; the engine then works from the reflection
// source alone with reduced precision.
func NewSession(refl source.ReflectionSource, static source.StaticSource, text source.TextProvider, registry source.Registry) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		refl:     refl,
		static:   static,
		text:     text,
		registry: registry,
		tracker:  NewTracker(),
	}
	s.Reset()
	return s
}

// Reset clears all processing caches and warnings. Call it before a library
// walk that must not see stale cross-library cycle state; do not call it
// between types of the same walk, since legitimate cross-references must hit
// the shared caches.
func (s *Session) Reset() {
	s.types = make(map[decl.RuntimeType]decl.Declaration)
	s.libraries = make(map[string]*decl.LibraryDeclaration)
	s.sourceText = make(map[string]string)
	s.links = make(map[Identity]decl.TypeLink)
	s.tracker = NewTracker()
	s.warnings = nil
}

// Warnings returns the warnings accumulated so far.
func (s *Session) Warnings() []Warning {
	return s.warnings
}

func (s *Session) warnf(stage, subject, format string, args ...any) {
	s.warnings = append(s.warnings, Warning{
		Session: s.ID,
		Stage:   stage,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	})
}

// Types returns the session type cache, keyed by resolved runtime type.
func (s *Session) Types() map[decl.RuntimeType]decl.Declaration {
	return s.types
}

// Cached returns the cached declaration for a resolved runtime type.
func (s *Session) Cached(t decl.RuntimeType) (decl.Declaration, bool) {
	d, ok := s.types[t]
	return d, ok
}

// readSource returns the text of uri through the session's memoizing cache.
// Read failures degrade to "" and a warning; they never abort the walk.
func (s *Session) readSource(ctx context.Context, uri string) string {
	if uri == "" || s.text == nil {
		return ""
	}
	if text, ok := s.sourceText[uri]; ok {
		return text
	}
	text, err := s.text.Text(ctx, uri)
	if err != nil {
		s.warnf("source", uri, "read failed: %v", err)
		text = ""
	}
	s.sourceText[uri] = text
	return text
}

// staticElement looks up an element in the static-analysis source,
// degrading lookup failures to nil.
func (s *Session) staticElement(ctx context.Context, name, sourceURI string) *source.Element {
	if s.static == nil || name == "" {
		return nil
	}
	el, err := s.static.ElementByName(ctx, name, sourceURI)
	if err != nil {
		s.warnf("static", name, "element lookup failed: %v", err)
		return nil
	}
	return el
}

// packageFor resolves the owning package of a library URI, tolerating an
// absent registry.
func (s *Session) packageFor(uri string) *decl.Package {
	if s.registry == nil {
		return nil
	}
	if pkg, ok := s.registry.PackageFor(uri); ok {
		return pkg
	}
	return nil
}
