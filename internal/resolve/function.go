package resolve

import (
	"context"
	"strings"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// extractFunction decomposes a callable type into a FunctionLinkDeclaration.
// When the reflection source exposes a function-type mirror it drives the
// decomposition, augmented positionally by the static counterpart; when the
// type exists only in the analyzer a parallel static-only path resolves it.
func (s *Session) extractFunction(ctx context.Context, tm source.TypeMirror, st *source.StaticType, pkg *decl.Package, libURI string) decl.TypeLink {
	if tm != nil {
		if fm, ok := tm.Function(); ok {
			return s.functionFromMirror(ctx, fm, st, pkg, libURI)
		}
	}
	if st != nil && st.Kind == source.StaticFunction {
		return s.functionFromStatic(ctx, st, pkg, libURI)
	}
	s.warnf("function", referenceName(tm, st), "callable type with no usable shape in either source")
	return nil
}

func (s *Session) functionFromMirror(ctx context.Context, fm source.FunctionMirror, st *source.StaticType, pkg *decl.Package, libURI string) decl.TypeLink {
	// Callables live in their own identity namespace, keyed on the
	// callable's runtime hash plus the library URI.
	id := callableIdentity(fm, libURI)
	if cached, ok := s.links[id]; ok {
		return cached
	}
	if !s.tracker.Begin(id) {
		s.warnf("function", libURI, "cyclic callable reference, returning absent")
		return nil
	}
	defer s.tracker.End(id)

	var stReturn *source.StaticType
	var stParams []source.StaticParam
	var stTypeParams []*source.StaticType
	if st != nil && st.Kind == source.StaticFunction {
		stReturn = st.Return
		stParams = st.Parameters
		stTypeParams = st.TypeParameters
	}

	var ret decl.TypeLink
	if rm, ok := fm.ReturnType(); ok {
		ret = s.GetLink(ctx, rm, pkg, libURI, stReturn)
	} else if stReturn != nil {
		ret = s.GetLink(ctx, nil, pkg, libURI, stReturn)
	} else {
		ret = decl.NewDynamicLink()
	}

	// Parameter types match positionally; the static type at the same
	// position augments only when the names agree.
	var params []decl.TypeLink
	for i, pm := range fm.ParameterTypes() {
		var stParam *source.StaticType
		if i < len(stParams) && staticTypeAgrees(pm, stParams[i].Type) {
			stParam = stParams[i].Type
		}
		params = append(params, s.GetLink(ctx, pm, pkg, libURI, stParam))
	}

	var typeParams []decl.TypeLink
	for i, tv := range fm.TypeVariables() {
		var stTP *source.StaticType
		if i < len(stTypeParams) {
			stTP = stTypeParams[i]
		}
		if link := s.generateLink(ctx, tv, stTP, pkg, libURI); link != nil {
			typeParams = append(typeParams, link)
		}
	}

	nullable := fm.IsNullable()
	if st != nil {
		nullable = st.IsNullable
	}

	sig := functionSignature(ret, typeParams, params, nullable)

	link := assembleFunctionLink(ret, params, typeParams, nullable, sig, libURI)
	s.links[id] = link
	return link
}

// functionFromStatic resolves a callable the reflection source never saw,
// e.g. an analyzer-inferred type. Each constituent routes back through the
// link generator, cycle-protected on the static-callable namespace.
func (s *Session) functionFromStatic(ctx context.Context, st *source.StaticType, pkg *decl.Package, libURI string) decl.TypeLink {
	id := staticCallableIdentity(st, libURI)
	if cached, ok := s.links[id]; ok {
		return cached
	}
	if !s.tracker.Begin(id) {
		s.warnf("function", st.Display, "cyclic callable reference, returning absent")
		return nil
	}
	defer s.tracker.End(id)

	var ret decl.TypeLink
	if st.Return != nil {
		ret = s.GetLink(ctx, nil, pkg, libURI, st.Return)
	} else {
		ret = decl.NewDynamicLink()
	}

	var params []decl.TypeLink
	for _, p := range st.Parameters {
		params = append(params, s.GetLink(ctx, nil, pkg, libURI, p.Type))
	}

	var typeParams []decl.TypeLink
	for _, tp := range st.TypeParameters {
		if link := s.generateLink(ctx, nil, tp, pkg, libURI); link != nil {
			typeParams = append(typeParams, link)
		}
	}

	sig := functionSignature(ret, typeParams, params, st.IsNullable)

	link := assembleFunctionLink(ret, params, typeParams, st.IsNullable, sig, libURI)
	s.links[id] = link
	return link
}

func assembleFunctionLink(ret decl.TypeLink, params, typeParams []decl.TypeLink, nullable bool, sig, libURI string) *decl.FunctionLinkDeclaration {
	// The concatenated type-argument list: type parameters first, then the
	// parameter types.
	args := make([]decl.TypeLink, 0, len(typeParams)+len(params))
	args = append(args, typeParams...)
	args = append(args, params...)

	return &decl.FunctionLinkDeclaration{
		LinkDeclaration: decl.LinkDeclaration{
			Base: decl.Base{
				Name:        sig,
				Type:        decl.RuntimeTypeOf(sig),
				IsPublic:    !strings.HasPrefix(sig, "_"),
				IsSynthetic: syntheticByName(sig),
			},
			RawType:       decl.RuntimeTypeOf("Function"),
			ResolvedType:  decl.RuntimeTypeOf(sig),
			TypeArguments: args,
			DeclaringURI:  libURI,
			ReferenceURI:  libURI,
			Variance:      decl.Invariant,
		},
		ReturnType:     ret,
		ParameterTypes: params,
		TypeParameters: typeParams,
		IsNullable:     nullable,
		Signature:      sig,
	}
}

// functionSignature renders "ReturnType<TypeParams>(ParamTypes)?".
func functionSignature(ret decl.TypeLink, typeParams, params []decl.TypeLink, nullable bool) string {
	var b strings.Builder
	b.WriteString(linkName(ret))
	if len(typeParams) > 0 {
		b.WriteByte('<')
		for i, tp := range typeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(linkName(tp))
		}
		b.WriteByte('>')
	}
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(linkName(p))
	}
	b.WriteByte(')')
	if nullable {
		b.WriteByte('?')
	}
	return b.String()
}

func linkName(l decl.TypeLink) string {
	if l == nil {
		return decl.DynamicType.Name
	}
	return l.Link().Name
}

// staticTypeAgrees reports whether a static type plausibly describes the
// mirror: bare-name equality, best-effort.
func staticTypeAgrees(tm source.TypeMirror, st *source.StaticType) bool {
	if st == nil {
		return false
	}
	name, ok := tm.SimpleName()
	if !ok {
		return true // nothing to disagree with
	}
	return st.Name == name || st.Display == name
}
