package resolve

import (
	"context"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// resolveVariance computes the variance tag of a type reference. Only
// type-parameter references carry variance; ordinary class references are
// always invariant. The tendency comes from the reference's structural
// usage position in the reflection source.
func resolveVariance(tm source.TypeMirror) decl.Variance {
	if tm == nil || !tm.IsTypeVariable() {
		return decl.Invariant
	}
	switch tm.UsagePosition() {
	case source.PositionReturn:
		return decl.Covariant
	case source.PositionParameter:
		return decl.Contravariant
	default:
		return decl.Invariant
	}
}

// resolveUpperBound resolves a type variable's bound link through the link
// generator, refined by the static-analysis bound when present. The
// universal top bound is omitted entirely, i.e. "unbounded". Bound
// resolution is cycle-protected by the generator itself, since
// `T extends SomeGeneric<T>` is legal and must terminate.
func (s *Session) resolveUpperBound(ctx context.Context, tm source.TypeMirror, st *source.StaticType, pkg *decl.Package, libURI string) decl.TypeLink {
	var boundMirror source.TypeMirror
	if tm != nil {
		if bm, ok := tm.UpperBound(); ok {
			boundMirror = bm
		}
	}
	var boundStatic *source.StaticType
	if st != nil {
		boundStatic = st.Bound
	}
	if boundMirror == nil && boundStatic == nil {
		return nil
	}
	if isTopBound(boundMirror, boundStatic) {
		return nil
	}
	return s.generateLink(ctx, boundMirror, boundStatic, pkg, libURI)
}

// isTopBound reports whether the declared bound is the universal top type.
func isTopBound(tm source.TypeMirror, st *source.StaticType) bool {
	if tm != nil {
		if name, ok := tm.SimpleName(); ok {
			return name == decl.ObjectType.Name || name == decl.DynamicType.Name
		}
	}
	if st != nil {
		return st.Name == decl.ObjectType.Name || st.Kind == source.StaticDynamic
	}
	return false
}
