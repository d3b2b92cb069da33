package resolve

import (
	"github.com/jetleaf/typegraph/internal/source"
)

// identityKind separates the identity namespaces: callables and nominal
// types carry independent hashes in the runtime and must not collide, and
// annotation extraction tracks its own re-entrancy.
type identityKind uint8

const (
	identType identityKind = iota
	identCallable
	identStaticCallable
	identRecord
	identAnnotation
)

// Identity is the composite key used to detect re-entrant resolution of the
// same type during one recursive walk. Neither source alone is guaranteed
// unique, so the key combines the reflection name and hash with the
// static-analysis display string and hash, plus the declaring library URI.
type Identity struct {
	Kind          identityKind
	MirrorName    string
	MirrorHash    uint64
	StaticDisplay string
	StaticHash    uint64
	LibraryURI    string
}

// typeIdentity builds the nominal-type identity for a mirror/static pair.
func typeIdentity(tm source.TypeMirror, st *source.StaticType, libURI string) Identity {
	id := Identity{Kind: identType, LibraryURI: libURI}
	if tm != nil {
		if name, ok := tm.SimpleName(); ok {
			id.MirrorName = name
		}
		if rt, ok := tm.ReflectedType(); ok {
			id.MirrorHash = rt.Hash
		}
	}
	if st != nil {
		id.StaticDisplay = st.Display
		id.StaticHash = st.HashValue()
	}
	return id
}

// callableIdentity keys a reflection-sourced function type.
func callableIdentity(fm source.FunctionMirror, libURI string) Identity {
	return Identity{Kind: identCallable, MirrorHash: fm.Hash(), LibraryURI: libURI}
}

// staticCallableIdentity keys an analyzer-only function type.
func staticCallableIdentity(st *source.StaticType, libURI string) Identity {
	return Identity{
		Kind:          identStaticCallable,
		StaticDisplay: st.Display,
		StaticHash:    st.HashValue(),
		LibraryURI:    libURI,
	}
}

// recordIdentity keys a structural record type by its rendered shape, which
// includes field types, names, and the nullability suffix.
func recordIdentity(rec *source.StaticType, libURI string) Identity {
	return Identity{
		Kind:          identRecord,
		StaticDisplay: rec.Display,
		StaticHash:    rec.HashValue(),
		LibraryURI:    libURI,
	}
}

// annotationIdentity keys one annotation extraction.
func annotationIdentity(name string, hash uint64, libURI string) Identity {
	return Identity{Kind: identAnnotation, MirrorName: name, MirrorHash: hash, LibraryURI: libURI}
}

// Tracker maintains the set of identities currently being resolved on the
// call stack. It is not safe for concurrent use; the session model is
// single-threaded by design.
type Tracker struct {
	active map[Identity]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[Identity]struct{})}
}

// Begin marks an identity as in progress. It returns false when the
// identity is already being resolved; the caller must abort that branch and
// treat the result as absent.
func (t *Tracker) Begin(id Identity) bool {
	if _, ok := t.active[id]; ok {
		return false
	}
	t.active[id] = struct{}{}
	return true
}

// End releases an in-progress identity. Callers pair it with Begin in a
// defer so it runs even on early returns.
func (t *Tracker) End(id Identity) {
	delete(t.active, id)
}

// InProgress reports the number of identities currently being resolved.
func (t *Tracker) InProgress() int {
	return len(t.active)
}
