package resolve

import (
	"strings"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// typeInfo is the core identity of one type reference after dual-source
// arbitration.
type typeInfo struct {
	// Name is the canonical simple name; empty means both sources failed
	// to name the type, a hard resolution failure for this one reference.
	Name string
	// DisplayName is the human rendering; the static-analysis source
	// formats generics and function types better and is preferred.
	DisplayName string
	// Resolved is the concrete, possibly parameterized runtime type.
	Resolved decl.RuntimeType
	// Raw is the unparameterized base type.
	Raw decl.RuntimeType
	// LibraryURI is the declaring library.
	LibraryURI string
}

// resolveTypeInfo extracts the core identity of a type reference. The
// reflection source is authoritative for existence and runtime identity;
// the static-analysis source for rendering and, when more specific than the
// core-library placeholder, the declaring URI.
func (s *Session) resolveTypeInfo(tm source.TypeMirror, st *source.StaticType, libURI string) typeInfo {
	var info typeInfo

	if tm != nil {
		if name, ok := tm.SimpleName(); ok {
			info.Name = name
		}
		if uri, ok := tm.LibraryURI(); ok {
			info.LibraryURI = uri
		}
		if rt, ok := tm.ReflectedType(); ok {
			// Generic-annotation override: substitute the originally
			// intended parameterized type when the runtime erased it.
			if over, ok := s.refl.GenericOverride(rt); ok {
				rt = over
			}
			info.Resolved = rt
		}
		if raw, ok := tm.DeclarationType(); ok {
			info.Raw = raw
		}
	}

	// Full fallback to the static-analysis source when the reflection
	// source cannot produce the fact.
	if info.Name == "" && st != nil {
		info.Name = st.Name
	}
	if info.Resolved.IsZero() && st != nil {
		if rt, ok := s.knownType(st.Name); ok {
			info.Resolved = rt
		} else if st.Display != "" {
			info.Resolved = decl.RuntimeTypeOf(strings.TrimSuffix(st.Display, "?"))
		}
	}
	if info.Raw.IsZero() {
		if st != nil {
			if rt, ok := s.knownType(st.Name); ok {
				info.Raw = rt
			}
		}
		if info.Raw.IsZero() {
			info.Raw = info.Resolved
		}
	}

	// Display name: prefer the static rendering, never for identity.
	info.DisplayName = info.Name
	if st != nil && st.Display != "" {
		info.DisplayName = st.Display
	}

	// Library URI: prefer the static answer when it is more specific than
	// the runtime's core-library placeholder.
	if st != nil && st.LibraryURI != "" {
		if info.LibraryURI == "" || (st.LibraryURI != decl.CoreLibraryURI && st.LibraryURI != info.LibraryURI) {
			info.LibraryURI = st.LibraryURI
		}
	}
	if info.LibraryURI == "" {
		info.LibraryURI = libURI
	}

	return info
}

func (s *Session) knownType(name string) (decl.RuntimeType, bool) {
	if s.registry == nil || name == "" {
		return decl.RuntimeType{}, false
	}
	return s.registry.KnownType(name)
}

// resolveVisibility applies the three-tier visibility check: reflection
// privacy flag, then static-analysis flags, then the naming-convention
// heuristic. The first "not public" or "synthetic" answer wins, so the
// naming heuristic is the final, most conservative tier.
func resolveVisibility(tm source.TypeMirror, el *source.Element, name string) (public, synthetic bool) {
	private := false
	if tm != nil && tm.IsPrivate() {
		private = true
	}
	if el != nil {
		if el.IsPrivate {
			private = true
		}
		if el.IsSynthetic {
			synthetic = true
		}
	}
	if strings.HasPrefix(name, "_") {
		private = true
	}
	if syntheticByName(name) {
		synthetic = true
	}
	return !private, synthetic
}

// syntheticByName is the naming heuristic for generated entities: signature
// strings and compiler-synthesized names are not user-written declarations.
func syntheticByName(name string) bool {
	return strings.ContainsAny(name, "()") || strings.HasPrefix(name, "_$")
}
