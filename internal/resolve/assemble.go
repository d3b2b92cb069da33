package resolve

import (
	"context"
	"errors"

	"github.com/jetleaf/typegraph/internal/decl"
	"github.com/jetleaf/typegraph/internal/source"
)

// ErrUnnamedType is returned when a type mirror cannot be named by either
// source; the enclosing walk records a warning and omits the type.
var ErrUnnamedType = errors.New("resolve: type has no resolvable name")

// GenerateLibrary walks one library's declared types and top-level members,
// producing its LibraryDeclaration. Results are memoized per session.
// Failures of individual types degrade to warnings; the library walk always
// produces a partial but usable result.
func (s *Session) GenerateLibrary(ctx context.Context, lm source.LibraryMirror) (*decl.LibraryDeclaration, error) {
	if lm == nil {
		return nil, errors.New("resolve: nil library mirror")
	}
	uri := lm.URI()
	if cached, ok := s.libraries[uri]; ok {
		return cached, nil
	}

	pkg := s.packageFor(uri)
	lib := &decl.LibraryDeclaration{URI: uri, Package: pkg}

	// Classes in the reflection source's declaration-enumeration order.
	for _, cm := range lm.DeclaredTypes() {
		s.capture("library", uri, func() {
			if d := s.generateType(ctx, cm, pkg, uri); d != nil {
				lib.Declarations = append(lib.Declarations, d)
			}
		})
	}

	for i, vm := range lm.TopLevelFields() {
		idx, mirror := i, vm
		s.capture("library", uri, func() {
			mc := s.topLevelContext(ctx, mirror.MemberName(), pkg, uri)
			lib.Declarations = append(lib.Declarations, s.generateField(ctx, mirror, idx, mc, true))
		})
	}
	for i, mm := range lm.TopLevelFunctions() {
		idx, mirror := i, mm
		s.capture("library", uri, func() {
			mc := s.topLevelContext(ctx, mirror.MemberName(), pkg, uri)
			lib.Declarations = append(lib.Declarations, s.generateMethod(ctx, mirror, idx, mc))
		})
	}

	s.libraries[uri] = lib
	return lib, nil
}

// generateType dispatches one type mirror to the assembler matching its
// kind. The runtime's kind hint is refined by the source text, since
// reflection cannot always distinguish a true mixin declaration from a
// class applied as a mixin.
func (s *Session) generateType(ctx context.Context, cm source.ClassMirror, pkg *decl.Package, libURI string) decl.Declaration {
	name, ok := cm.SimpleName()
	if !ok || name == "" {
		s.warnf("assemble", libURI, "skipping unnamed type declaration")
		return nil
	}
	srcURI := classSourceURI(cm, libURI)
	mods := detectModifiers(s.readSource(ctx, srcURI), name)

	kind := cm.KindHint()
	if kind == decl.KindClass && mods.Mixin {
		kind = decl.KindMixin
	}

	var (
		d   decl.Declaration
		err error
	)
	switch kind {
	case decl.KindEnum:
		d, err = s.GenerateEnum(ctx, cm, pkg, libURI)
	case decl.KindMixin:
		d, err = s.GenerateMixin(ctx, cm, pkg, libURI)
	case decl.KindTypedef:
		d, err = s.GenerateTypedef(ctx, cm, pkg, libURI)
	default:
		d, err = s.GenerateClass(ctx, cm, pkg, libURI)
	}
	if err != nil {
		s.warnf("assemble", name, "omitted: %v", err)
		return nil
	}
	return d
}

// GenerateClass assembles the full declaration of a nominal class type and
// inserts it into the session type cache.
func (s *Session) GenerateClass(ctx context.Context, cm source.ClassMirror, pkg *decl.Package, libURI string) (*decl.ClassDeclaration, error) {
	shell, el, err := s.classShell(ctx, cm, pkg, libURI, decl.KindClass)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.types[shell.Type]; ok {
		if cd, ok := cached.(*decl.ClassDeclaration); ok {
			return cd, nil
		}
	}
	// Insert before member extraction so self-referential members resolve
	// through the cache instead of re-entering the assembler.
	s.types[shell.Type] = shell
	s.fillClass(ctx, shell, cm, el, pkg, libURI, decl.RuntimeType{})
	return shell, nil
}

// GenerateEnum assembles an enum declaration. Enum values are static fields
// of the enum's own type and need their own declaration shape, so they are
// extracted in a dedicated pre-pass and the general field loop skips them to
// avoid double-counting.
func (s *Session) GenerateEnum(ctx context.Context, cm source.ClassMirror, pkg *decl.Package, libURI string) (*decl.EnumDeclaration, error) {
	shell, el, err := s.classShell(ctx, cm, pkg, libURI, decl.KindEnum)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.types[shell.Type]; ok {
		if ed, ok := cached.(*decl.EnumDeclaration); ok {
			return ed, nil
		}
	}
	enum := &decl.EnumDeclaration{ClassDeclaration: *shell}
	s.types[enum.Type] = enum

	// Pre-pass: extract the enum's values before the general field loop.
	// Nullability comes from the analyzer's view of the value field; the
	// enum's own self type never carries it, so a true here means the value
	// was declared with an explicitly nullable static type.
	position := 0
	for _, vm := range cm.Fields() {
		if !s.isEnumValue(vm, enum.Type) {
			continue
		}
		value, _ := vm.StaticValue()
		nullable := false
		if stEl := staticMemberFor(el, source.ElementField, vm.MemberName(), position); stEl != nil && stEl.Type != nil {
			nullable = stEl.Type.IsNullable
		}
		enum.Values = append(enum.Values, &decl.EnumFieldDeclaration{
			Name:       vm.MemberName(),
			Value:      value,
			Position:   position,
			IsNullable: nullable,
		})
		position++
	}

	s.fillClass(ctx, &enum.ClassDeclaration, cm, el, pkg, libURI, enum.Type)
	return enum, nil
}

// GenerateMixin assembles a mixin declaration, including its `on`-clause
// constraint links, which only the analyzer exposes.
func (s *Session) GenerateMixin(ctx context.Context, cm source.ClassMirror, pkg *decl.Package, libURI string) (*decl.MixinDeclaration, error) {
	shell, el, err := s.classShell(ctx, cm, pkg, libURI, decl.KindMixin)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.types[shell.Type]; ok {
		if md, ok := cached.(*decl.MixinDeclaration); ok {
			return md, nil
		}
	}
	mixin := &decl.MixinDeclaration{ClassDeclaration: *shell}
	s.types[mixin.Type] = mixin

	if el != nil {
		for _, on := range el.OnTypes {
			mixin.OnTypes = append(mixin.OnTypes, s.GetLink(ctx, nil, pkg, libURI, on))
		}
	}

	s.fillClass(ctx, &mixin.ClassDeclaration, cm, el, pkg, libURI, decl.RuntimeType{})
	return mixin, nil
}

// GenerateTypedef assembles a type alias: no member walk, just the aliased
// link.
func (s *Session) GenerateTypedef(ctx context.Context, cm source.ClassMirror, pkg *decl.Package, libURI string) (*decl.ClassDeclaration, error) {
	shell, el, err := s.classShell(ctx, cm, pkg, libURI, decl.KindTypedef)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.types[shell.Type]; ok {
		if cd, ok := cached.(*decl.ClassDeclaration); ok && cd.Kind == decl.KindTypedef {
			return cd, nil
		}
	}
	s.types[shell.Type] = shell

	var stAliased *source.StaticType
	if el != nil {
		stAliased = el.Type
	}
	var refMirror source.TypeMirror
	if rm, ok := cm.Referent(); ok {
		refMirror = rm
	}
	if refMirror != nil || stAliased != nil {
		shell.Aliased = s.GetLink(ctx, refMirror, pkg, libURI, stAliased)
	}

	shell.Annotations = s.ExtractAnnotations(ctx, cm.Metadata(), libURI, shell.SourceURI, pkg, staticMetadata(el))
	return shell, nil
}

// classShell resolves a type's core identity, static element, modifiers,
// and visibility into an empty ClassDeclaration ready for member filling.
func (s *Session) classShell(ctx context.Context, cm source.ClassMirror, pkg *decl.Package, libURI string, kind decl.TypeKind) (*decl.ClassDeclaration, *source.Element, error) {
	name, ok := cm.SimpleName()
	if !ok || name == "" {
		return nil, nil, ErrUnnamedType
	}
	srcURI := classSourceURI(cm, libURI)
	el := s.staticElement(ctx, name, srcURI)

	// A typedef element's Type is its referent, not its own identity.
	var stType *source.StaticType
	if el != nil && kind != decl.KindTypedef {
		stType = el.Type
	}
	info := s.resolveTypeInfo(cm, stType, libURI)
	if info.Name == "" {
		return nil, nil, ErrUnnamedType
	}

	mods := detectModifiers(s.readSource(ctx, srcURI), info.Name)
	public, synthetic := resolveVisibility(cm, el, info.Name)

	shell := &decl.ClassDeclaration{
		SourceBase: decl.SourceBase{
			Base: decl.Base{
				Name:        info.Name,
				Type:        info.Resolved,
				IsPublic:    public,
				IsSynthetic: synthetic,
			},
			LibraryURI: info.LibraryURI,
			SourceURI:  srcURI,
			Package:    pkg,
		},
		Kind:         kind,
		IsAbstract:   cm.IsAbstract(),
		IsSealed:     mods.Sealed,
		IsBase:       mods.Base,
		IsInterface:  mods.Interface,
		IsFinal:      mods.Final,
		IsMixinClass: mods.MixinClass,
	}
	return shell, el, nil
}

// fillClass resolves annotations, hierarchy links, type parameters, and all
// declared (non-inherited) members into cd. enumType, when set, causes the
// field loop to skip the enum's own values.
func (s *Session) fillClass(ctx context.Context, cd *decl.ClassDeclaration, cm source.ClassMirror, el *source.Element, pkg *decl.Package, libURI string, enumType decl.RuntimeType) {
	cd.Annotations = s.ExtractAnnotations(ctx, cm.Metadata(), libURI, cd.SourceURI, pkg, staticMetadata(el))

	var elTypeParams []*source.StaticType
	var elInterfaces, elMixins []*source.StaticType
	var elSupertype *source.StaticType
	if el != nil {
		elTypeParams = el.TypeParameters
		elInterfaces = el.Interfaces
		elMixins = el.Mixins
		elSupertype = el.Supertype
	}

	for i, tv := range cm.TypeVariables() {
		var st *source.StaticType
		if i < len(elTypeParams) {
			st = elTypeParams[i]
		}
		if link := s.generateLink(ctx, tv, st, pkg, libURI); link != nil {
			cd.TypeParameters = append(cd.TypeParameters, link)
		}
	}

	if super, ok := cm.Superclass(); ok {
		cd.Superclass = s.GetLink(ctx, super, pkg, libURI, elSupertype)
	} else if elSupertype != nil {
		cd.Superclass = s.GetLink(ctx, nil, pkg, libURI, elSupertype)
	}

	for _, iface := range cm.Interfaces() {
		cd.Interfaces = append(cd.Interfaces, s.GetLink(ctx, iface, pkg, libURI, matchStaticClause(iface, elInterfaces)))
	}
	for _, mix := range cm.Mixins() {
		cd.Mixins = append(cd.Mixins, s.GetLink(ctx, mix, pkg, libURI, matchStaticClause(mix, elMixins)))
	}

	mc := memberContext{
		pkg:     pkg,
		libURI:  libURI,
		srcURI:  cd.SourceURI,
		owner:   s.ownerLink(cd),
		classEl: el,
	}

	// Constructors, fields, and methods each walk their own enumeration
	// order. A catastrophic failure omits the one member, never the class.
	for i, mm := range cm.Constructors() {
		idx, mirror := i, mm
		s.capture("constructor", cd.Name, func() {
			cd.Constructors = append(cd.Constructors, s.generateConstructor(ctx, mirror, idx, cd.Name, mc))
		})
	}
	for i, vm := range cm.Fields() {
		idx, mirror := i, vm
		if !enumType.IsZero() && s.isEnumValue(mirror, enumType) {
			continue // extracted by the enum-value pre-pass
		}
		s.capture("field", cd.Name, func() {
			cd.Fields = append(cd.Fields, s.generateField(ctx, mirror, idx, mc, false))
		})
	}
	for i, mm := range cm.Methods() {
		idx, mirror := i, mm
		s.capture("method", cd.Name, func() {
			cd.Methods = append(cd.Methods, s.generateMethod(ctx, mirror, idx, mc))
		})
	}
}

// isEnumValue reports whether a static field's reflected type is the enum's
// own type, the condition shared by the value pre-pass and the field-loop
// skip.
func (s *Session) isEnumValue(vm source.VariableMirror, enumType decl.RuntimeType) bool {
	if !vm.IsStatic() {
		return false
	}
	tm, ok := vm.Type()
	if !ok {
		return false
	}
	if rt, ok := tm.ReflectedType(); ok && rt == enumType {
		return true
	}
	if raw, ok := tm.DeclarationType(); ok && raw == enumType {
		return true
	}
	return false
}

// ownerLink builds the owning-class link members point back at.
func (s *Session) ownerLink(cd *decl.ClassDeclaration) decl.TypeLink {
	return &decl.LinkDeclaration{
		Base: decl.Base{
			Name:        cd.Name,
			Type:        cd.Type,
			IsPublic:    cd.IsPublic,
			IsSynthetic: cd.IsSynthetic,
		},
		RawType:      cd.Type,
		ResolvedType: cd.Type,
		DeclaringURI: cd.LibraryURI,
		ReferenceURI: cd.LibraryURI,
		Variance:     decl.Invariant,
	}
}

// topLevelContext builds the member context for a library-level member,
// wrapping its individually looked-up static element so name matching works
// unchanged.
func (s *Session) topLevelContext(ctx context.Context, name string, pkg *decl.Package, libURI string) memberContext {
	mc := memberContext{pkg: pkg, libURI: libURI, srcURI: libURI}
	if el := s.staticElement(ctx, name, libURI); el != nil {
		mc.classEl = &source.Element{Members: []*source.Element{el}}
	}
	return mc
}

// capture runs one per-type or per-member step, converting an unexpected
// panic into a warning so siblings keep processing.
func (s *Session) capture(stage, subject string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.warnf(stage, subject, "skipped after unexpected failure: %v", r)
		}
	}()
	fn()
}

func classSourceURI(cm source.ClassMirror, libURI string) string {
	if uri, ok := cm.SourceURI(); ok && uri != "" {
		return uri
	}
	return libURI
}

func staticMetadata(el *source.Element) []*source.StaticAnnotation {
	if el == nil {
		return nil
	}
	return el.Metadata
}

// matchStaticClause finds the static clause type matching a mirror by bare
// name, best-effort.
func matchStaticClause(tm source.TypeMirror, clauses []*source.StaticType) *source.StaticType {
	name, ok := tm.SimpleName()
	if !ok {
		return nil
	}
	for _, st := range clauses {
		if st.Name == name || st.Display == name {
			return st
		}
	}
	return nil
}
