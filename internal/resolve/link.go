package resolve

import (
	"context"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// GetLink resolves one type reference into a canonical link. It never fails
// outright: a reference neither source can resolve, and a cyclic reference,
// degrade to the universal-top-type fallback link.
func (s *Session) GetLink(ctx context.Context, tm source.TypeMirror, pkg *decl.Package, libURI string, st *source.StaticType) decl.TypeLink {
	if link := s.generateLink(ctx, tm, st, pkg, libURI); link != nil {
		return link
	}
	return decl.NewObjectLink()
}

// generateLink is the central recursive pipeline: record check, function
// check, cycle check, core-info extraction, type arguments, variance and
// bounds, assembly. It returns nil on cycle detection or when both sources
// fail to name the type; callers substitute the top-type fallback.
func (s *Session) generateLink(ctx context.Context, tm source.TypeMirror, st *source.StaticType, pkg *decl.Package, libURI string) decl.TypeLink {
	// Records are a purely static-analysis concept; a record anywhere in a
	// function type's return chain also short-circuits here.
	if rec := st.RecordShape(); rec != nil {
		return s.decomposeRecord(ctx, rec, pkg, libURI)
	}

	if (tm != nil && tm.IsFunction()) || (st != nil && st.Kind == source.StaticFunction) {
		return s.extractFunction(ctx, tm, st, pkg, libURI)
	}

	// Terminal types bypass the pipeline entirely.
	switch referenceName(tm, st) {
	case decl.DynamicType.Name:
		return decl.NewDynamicLink()
	case decl.VoidType.Name:
		return decl.NewVoidLink()
	}

	id := typeIdentity(tm, st, libURI)
	if cached, ok := s.links[id]; ok {
		return cached
	}
	if !s.tracker.Begin(id) {
		s.warnf("link", referenceName(tm, st), "cyclic type reference, returning absent")
		return nil
	}
	defer s.tracker.End(id)

	info := s.resolveTypeInfo(tm, st, libURI)
	if info.Name == "" {
		s.warnf("link", id.StaticDisplay, "neither source could name the type")
		return nil
	}

	args := s.generateTypeArguments(ctx, tm, st, pkg, libURI)

	variance := decl.Invariant
	var bound decl.TypeLink
	if tm != nil && tm.IsTypeVariable() {
		variance = resolveVariance(tm)
		bound = s.resolveUpperBound(ctx, tm, st, pkg, libURI)
	}

	el := s.staticElement(ctx, info.Name, info.LibraryURI)
	public, synthetic := resolveVisibility(tm, el, info.Name)

	link := &decl.LinkDeclaration{
		Base: decl.Base{
			Name:        info.Name,
			Type:        info.Resolved,
			IsPublic:    public,
			IsSynthetic: synthetic,
		},
		RawType:       info.Raw,
		ResolvedType:  info.Resolved,
		TypeArguments: args,
		DeclaringURI:  info.LibraryURI,
		ReferenceURI:  libURI,
		UpperBound:    bound,
		Variance:      variance,
	}
	s.links[id] = link
	return link
}

// generateTypeArguments recursively resolves the reference's type-argument
// links. Reflection-source arguments are matched to static counterparts by
// display-name equality; a mismatch means no static augmentation for that
// one argument, never a failure. Arguments are deduplicated by composite
// identity within the call, since the same argument can surface through two
// code paths.
func (s *Session) generateTypeArguments(ctx context.Context, tm source.TypeMirror, st *source.StaticType, pkg *decl.Package, libURI string) []decl.TypeLink {
	var staticArgs []*source.StaticType
	if st != nil {
		staticArgs = st.TypeArguments
	}

	var mirrorArgs []source.TypeMirror
	if tm != nil {
		mirrorArgs = tm.TypeArguments()
	}

	seen := make(map[Identity]bool)
	var links []decl.TypeLink

	if len(mirrorArgs) > 0 {
		for _, arg := range mirrorArgs {
			stArg := matchStaticArgument(arg, staticArgs)
			id := typeIdentity(arg, stArg, libURI)
			if seen[id] {
				continue
			}
			seen[id] = true
			if link := s.generateLink(ctx, arg, stArg, pkg, libURI); link != nil {
				links = append(links, link)
			}
		}
		return links
	}

	// Static-only augmentation: the runtime erased the arguments but the
	// analyzer still sees them.
	for _, stArg := range staticArgs {
		id := typeIdentity(nil, stArg, libURI)
		if seen[id] {
			continue
		}
		seen[id] = true
		if link := s.generateLink(ctx, nil, stArg, pkg, libURI); link != nil {
			links = append(links, link)
		}
	}
	return links
}

// matchStaticArgument finds the static counterpart of one reflection-source
// type argument by display-name equality, best-effort.
func matchStaticArgument(arg source.TypeMirror, staticArgs []*source.StaticType) *source.StaticType {
	name, ok := arg.SimpleName()
	if !ok {
		return nil
	}
	for _, st := range staticArgs {
		if st.Name == name || st.Display == name {
			return st
		}
	}
	return nil
}

// referenceName is the best available simple name of a reference, for
// terminal-type checks and diagnostics.
func referenceName(tm source.TypeMirror, st *source.StaticType) string {
	if tm != nil {
		if name, ok := tm.SimpleName(); ok && name != "" {
			return name
		}
	}
	if st != nil {
		if st.Kind == source.StaticDynamic {
			return decl.DynamicType.Name
		}
		if st.Kind == source.StaticVoid {
			return decl.VoidType.Name
		}
		return st.Name
	}
	return ""
}
