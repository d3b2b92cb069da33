package resolve

import (
	"context"
	"strings"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// memberContext carries the owning package/library/class context shared by
// all member generators.
type memberContext struct {
	pkg     *decl.Package
	libURI  string
	srcURI  string
	owner   decl.TypeLink
	classEl *source.Element
}

// staticMemberFor locates a member's analyzer counterpart among the class
// element's members of the same shape. The analyzer's within-shape order is
// trusted first: an in-bounds index wins outright, and the name search runs
// only when the index misses. Parameter matching goes the opposite way.
func staticMemberFor(classEl *source.Element, kind source.ElementKind, name string, idx int) *source.Element {
	if classEl == nil {
		return nil
	}
	var shaped []*source.Element
	for _, m := range classEl.Members {
		if memberShapeMatches(m.Kind, kind) {
			shaped = append(shaped, m)
		}
	}
	if idx >= 0 && idx < len(shaped) {
		return shaped[idx]
	}
	for _, m := range shaped {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// memberShapeMatches treats top-level functions and methods as one shape;
// the analyzer tags them differently, the runtime does not.
func memberShapeMatches(have, want source.ElementKind) bool {
	if have == want {
		return true
	}
	return want == source.ElementMethod && have == source.ElementFunction
}

// staticParamFor matches a reflection-source parameter to its analyzer
// counterpart by name, then by index.
func staticParamFor(params []*source.Element, name string, idx int) *source.Element {
	for _, p := range params {
		if p.Name == name {
			return p
		}
	}
	if idx >= 0 && idx < len(params) {
		return params[idx]
	}
	return nil
}

// generateField builds a FieldDeclaration from a variable mirror and its
// optional static counterpart.
func (s *Session) generateField(ctx context.Context, vm source.VariableMirror, idx int, mc memberContext, topLevel bool) *decl.FieldDeclaration {
	name := vm.MemberName()
	stEl := staticMemberFor(mc.classEl, source.ElementField, name, idx)

	var stType *source.StaticType
	if stEl != nil {
		stType = stEl.Type
	}
	var tm source.TypeMirror
	if t, ok := vm.Type(); ok {
		tm = t
	}
	link := s.GetLink(ctx, tm, mc.pkg, mc.libURI, stType)

	nullable := false
	switch {
	case stType != nil:
		nullable = stType.IsNullable
	default:
		nullable = s.fieldNullability(ctx, mc.srcURI, name, mc.classEl)
	}

	public, synthetic := resolveVisibility(nil, stEl, name)
	if vm.IsPrivate() {
		public = false
	}

	get, set := vm.Accessors()

	field := &decl.FieldDeclaration{
		MemberBase: decl.MemberBase{
			SourceBase: decl.SourceBase{
				Base: decl.Base{
					Name:        name,
					Type:        link.Link().ResolvedType,
					IsPublic:    public,
					IsSynthetic: synthetic,
				},
				LibraryURI:  mc.libURI,
				SourceURI:   mc.srcURI,
				Package:     mc.pkg,
				Annotations: s.memberAnnotations(ctx, vm.Metadata(), stEl, mc),
			},
			Owner:    mc.owner,
			IsStatic: vm.IsStatic(),
		},
		FieldType:  link,
		IsFinal:    vm.IsFinal(),
		IsConst:    vm.IsConst(),
		IsLate:     s.fieldIsLate(ctx, mc.srcURI, name),
		IsTopLevel: topLevel,
		IsNullable: nullable,
		Getter:     get,
		Setter:     set,
	}
	return field
}

// generateMethod builds a MethodDeclaration from a method mirror and its
// optional static counterpart.
func (s *Session) generateMethod(ctx context.Context, mm source.MethodMirror, idx int, mc memberContext) *decl.MethodDeclaration {
	name := mm.MemberName()
	stEl := staticMemberFor(mc.classEl, source.ElementMethod, name, idx)

	// A method element's Type is its return type.
	var stReturn *source.StaticType
	if stEl != nil {
		stReturn = stEl.Type
	}
	var retMirror source.TypeMirror
	if rt, ok := mm.ReturnType(); ok {
		retMirror = rt
	}
	retLink := s.GetLink(ctx, retMirror, mc.pkg, mc.libURI, stReturn)

	returnsNullable := false
	if stReturn != nil {
		returnsNullable = stReturn.IsNullable
	}

	params := s.generateParameters(ctx, mm.Parameters(), stEl, name, mc)

	public, synthetic := resolveVisibility(nil, stEl, name)
	if mm.IsPrivate() {
		public = false
	}

	return &decl.MethodDeclaration{
		MemberBase: decl.MemberBase{
			SourceBase: decl.SourceBase{
				Base: decl.Base{
					Name:        name,
					Type:        retLink.Link().ResolvedType,
					IsPublic:    public,
					IsSynthetic: synthetic,
				},
				LibraryURI:  mc.libURI,
				SourceURI:   mc.srcURI,
				Package:     mc.pkg,
				Annotations: s.memberAnnotations(ctx, mm.Metadata(), stEl, mc),
			},
			Owner:      mc.owner,
			IsStatic:   mm.IsStatic(),
			IsAbstract: mm.IsAbstract(),
		},
		ReturnType:      retLink,
		Parameters:      params,
		IsGetter:        mm.IsGetter(),
		IsSetter:        mm.IsSetter(),
		IsFactory:       mm.IsFactory(),
		IsConst:         mm.IsConstConstructor(),
		IsExternal:      mm.IsExternal(),
		ReturnsNullable: returnsNullable,
		Invoker:         mm.Invoker(),
	}
}

// generateConstructor builds a ConstructorDeclaration. className qualifies
// the declaration site in source text: the unnamed constructor is written
// as the class name, named ones as ClassName.name.
func (s *Session) generateConstructor(ctx context.Context, mm source.MethodMirror, idx int, className string, mc memberContext) *decl.ConstructorDeclaration {
	name := mm.MemberName()
	stEl := staticMemberFor(mc.classEl, source.ElementConstructor, name, idx)

	sourceName := className
	if name != "" {
		sourceName = className + "." + name
	}

	params := s.generateParameters(ctx, mm.Parameters(), stEl, sourceName, mc)

	public, synthetic := resolveVisibility(nil, stEl, name)
	if mm.IsPrivate() || strings.HasPrefix(name, "_") {
		public = false
	}

	return &decl.ConstructorDeclaration{
		MemberBase: decl.MemberBase{
			SourceBase: decl.SourceBase{
				Base: decl.Base{
					Name:        name,
					Type:        ownerType(mc.owner),
					IsPublic:    public,
					IsSynthetic: synthetic,
				},
				LibraryURI:  mc.libURI,
				SourceURI:   mc.srcURI,
				Package:     mc.pkg,
				Annotations: s.memberAnnotations(ctx, mm.Metadata(), stEl, mc),
			},
			Owner: mc.owner,
		},
		Parameters: params,
		IsFactory:  mm.IsFactory(),
		IsConst:    mm.IsConstConstructor(),
		Factory:    mm.Invoker(),
	}
}

// generateParameters builds the ordered parameter declarations of a
// callable member. sourceName is the member's spelling at its declaration
// site, used to locate the parameter list in source text.
func (s *Session) generateParameters(ctx context.Context, mirrors []source.ParameterMirror, memberEl *source.Element, sourceName string, mc memberContext) []*decl.ParameterDeclaration {
	var staticParams []*source.Element
	if memberEl != nil {
		staticParams = memberEl.Parameters
	}

	var params []*decl.ParameterDeclaration
	for i, pm := range mirrors {
		params = append(params, s.generateParameter(ctx, pm, i, staticParams, sourceName, mc))
	}
	return params
}

func (s *Session) generateParameter(ctx context.Context, pm source.ParameterMirror, idx int, staticParams []*source.Element, sourceName string, mc memberContext) *decl.ParameterDeclaration {
	name := pm.ParamName()
	stp := staticParamFor(staticParams, name, idx)

	var stType *source.StaticType
	if stp != nil {
		stType = stp.Type
	}
	var tm source.TypeMirror
	if t, ok := pm.Type(); ok {
		tm = t
	}
	link := s.GetLink(ctx, tm, mc.pkg, mc.libURI, stType)

	// Nullability is advisory metadata: the analyzer's answer when it has
	// one, else the source-text heuristics, else false.
	nullable := false
	if stType != nil {
		nullable = stType.IsNullable
	} else {
		nullable = s.parameterNullability(ctx, mc.srcURI, sourceName, name, mc.classEl)
	}

	hasDefault := pm.HasDefault()
	var defaultValue any
	if v, ok := pm.DefaultValue(); ok {
		defaultValue = v
	} else if stp != nil && stp.HasDefault {
		hasDefault = true
		defaultValue = stp.DefaultValue
	}

	return &decl.ParameterDeclaration{
		SourceBase: decl.SourceBase{
			Base: decl.Base{
				Name:     name,
				Type:     link.Link().ResolvedType,
				IsPublic: !strings.HasPrefix(name, "_"),
			},
			LibraryURI: mc.libURI,
			SourceURI:  mc.srcURI,
			Package:    mc.pkg,
		},
		ParamType:    link,
		Index:        idx,
		IsNamed:      pm.IsNamed(),
		IsRequired:   pm.IsRequired(),
		IsOptional:   pm.IsOptional(),
		HasDefault:   hasDefault,
		IsNullable:   nullable,
		DefaultValue: defaultValue,
	}
}

// memberAnnotations extracts a member's annotations, pairing the mirror
// metadata with the analyzer's when the member element is known.
func (s *Session) memberAnnotations(ctx context.Context, meta []source.InstanceMirror, stEl *source.Element, mc memberContext) []*decl.AnnotationDeclaration {
	var staticMeta []*source.StaticAnnotation
	if stEl != nil {
		staticMeta = stEl.Metadata
	}
	return s.ExtractAnnotations(ctx, meta, mc.libURI, mc.srcURI, mc.pkg, staticMeta)
}

func ownerType(owner decl.TypeLink) decl.RuntimeType {
	if owner == nil {
		return decl.RuntimeType{}
	}
	return owner.Link().ResolvedType
}
