package store

import (
	"database/sql"
	"fmt"

	"github.com/jetleaf/typegraph/internal/decl"
)

// IndexGraph replaces the index contents with a flattened projection of the
// given libraries and warnings, in one transaction. The in-memory graph
// stays authoritative; the index exists to be queried. sessionID records
// which session produced the graph; it lands on the scan row and on every
// warning that does not already carry one.
func (s *Store) IndexGraph(sessionID string, libs []*decl.LibraryDeclaration, warnings []Warning) error {
	if err := s.Clear(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO scans (session_id) VALUES (?)", sessionID); err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	ix := &indexer{tx: tx, packages: make(map[string]int64)}
	for _, lib := range libs {
		if err := ix.library(lib); err != nil {
			return err
		}
	}
	for _, w := range warnings {
		sid := w.SessionID
		if sid == "" {
			sid = sessionID
		}
		if _, err := tx.Exec(
			"INSERT INTO warnings (session_id, stage, subject, detail) VALUES (?, ?, ?, ?)",
			sid, w.Stage, w.Subject, w.Detail,
		); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}
	return tx.Commit()
}

// indexer walks one graph into one transaction.
type indexer struct {
	tx       *sql.Tx
	packages map[string]int64
}

func (ix *indexer) library(lib *decl.LibraryDeclaration) error {
	var pkgID *int64
	if lib.Package != nil {
		id, err := ix.pkg(lib.Package)
		if err != nil {
			return err
		}
		pkgID = &id
	}
	res, err := ix.tx.Exec("INSERT INTO libraries (uri, package_id) VALUES (?, ?)", lib.URI, pkgID)
	if err != nil {
		return fmt.Errorf("insert library %s: %w", lib.URI, err)
	}
	libID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("library id: %w", err)
	}
	for _, d := range lib.Declarations {
		if err := ix.declaration(libID, d); err != nil {
			return fmt.Errorf("library %s: %w", lib.URI, err)
		}
	}
	return nil
}

func (ix *indexer) pkg(p *decl.Package) (int64, error) {
	if id, ok := ix.packages[p.Name]; ok {
		return id, nil
	}
	res, err := ix.tx.Exec(
		"INSERT INTO packages (name, version, language_version, is_root, path) VALUES (?, ?, ?, ?, ?)",
		p.Name, p.Version, p.LanguageVersion, p.IsRoot, p.Path,
	)
	if err != nil {
		return 0, fmt.Errorf("insert package %s: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("package id: %w", err)
	}
	ix.packages[p.Name] = id
	return id, nil
}

func (ix *indexer) declaration(libID int64, d decl.Declaration) error {
	switch v := d.(type) {
	case *decl.EnumDeclaration:
		id, err := ix.class(libID, &v.ClassDeclaration, v.DebugID())
		if err != nil {
			return err
		}
		for _, val := range v.Values {
			if _, err := ix.tx.Exec(
				"INSERT INTO members (declaration_id, name, kind, type_display, is_static, is_const, is_nullable, is_public) VALUES (?, ?, ?, ?, TRUE, TRUE, ?, TRUE)",
				id, val.Name, MemberEnumValue, v.Name, val.IsNullable,
			); err != nil {
				return fmt.Errorf("insert enum value %s.%s: %w", v.Name, val.Name, err)
			}
		}
		return nil
	case *decl.MixinDeclaration:
		id, err := ix.class(libID, &v.ClassDeclaration, v.DebugID())
		if err != nil {
			return err
		}
		return ix.links(id, RoleOn, v.OnTypes)
	case *decl.ClassDeclaration:
		_, err := ix.class(libID, v, v.DebugID())
		return err
	case *decl.FieldDeclaration:
		return ix.topLevelField(libID, v)
	case *decl.MethodDeclaration:
		return ix.topLevelFunction(libID, v)
	case nil:
		return nil
	default:
		return fmt.Errorf("unindexable declaration %T", d)
	}
}

func (ix *indexer) class(libID int64, c *decl.ClassDeclaration, debugID string) (int64, error) {
	res, err := ix.tx.Exec(`INSERT INTO declarations
		(library_id, name, kind, type_name, type_hash, source_uri, is_public, is_synthetic,
		 is_abstract, is_sealed, is_base, is_interface, is_final, is_mixin_class, debug_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		libID, c.Name, string(c.Kind), c.Type.Name, int64(c.Type.Hash), c.SourceURI,
		c.IsPublic, c.IsSynthetic, c.IsAbstract, c.IsSealed, c.IsBase, c.IsInterface,
		c.IsFinal, c.IsMixinClass, debugID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert declaration %s: %w", c.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("declaration id: %w", err)
	}

	if err := ix.link(id, RoleSupertype, 0, c.Superclass); err != nil {
		return 0, err
	}
	if err := ix.links(id, RoleInterface, c.Interfaces); err != nil {
		return 0, err
	}
	if err := ix.links(id, RoleMixin, c.Mixins); err != nil {
		return 0, err
	}
	if err := ix.links(id, RoleTypeParam, c.TypeParameters); err != nil {
		return 0, err
	}
	if err := ix.link(id, RoleAlias, 0, c.Aliased); err != nil {
		return 0, err
	}
	if err := ix.annotations(id, 0, c.Annotations); err != nil {
		return 0, err
	}

	for _, ct := range c.Constructors {
		if err := ix.constructor(id, ct); err != nil {
			return 0, err
		}
	}
	for _, f := range c.Fields {
		if _, err := ix.field(id, f); err != nil {
			return 0, err
		}
	}
	for _, m := range c.Methods {
		if _, err := ix.method(id, m); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// topLevelField indexes a top-level variable as a declaration carrying a
// single field member.
func (ix *indexer) topLevelField(libID int64, f *decl.FieldDeclaration) error {
	res, err := ix.tx.Exec(
		"INSERT INTO declarations (library_id, name, kind, type_name, type_hash, source_uri, is_public, is_synthetic, debug_id) VALUES (?, ?, 'field', ?, ?, ?, ?, ?, ?)",
		libID, f.Name, f.Type.Name, int64(f.Type.Hash), f.SourceURI, f.IsPublic, f.IsSynthetic, f.DebugID(),
	)
	if err != nil {
		return fmt.Errorf("insert top-level field %s: %w", f.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = ix.field(id, f)
	return err
}

func (ix *indexer) topLevelFunction(libID int64, m *decl.MethodDeclaration) error {
	res, err := ix.tx.Exec(
		"INSERT INTO declarations (library_id, name, kind, type_name, type_hash, source_uri, is_public, is_synthetic, debug_id) VALUES (?, ?, 'function', ?, ?, ?, ?, ?, ?)",
		libID, m.Name, m.Type.Name, int64(m.Type.Hash), m.SourceURI, m.IsPublic, m.IsSynthetic, m.DebugID(),
	)
	if err != nil {
		return fmt.Errorf("insert top-level function %s: %w", m.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = ix.method(id, m)
	return err
}

func (ix *indexer) field(declID int64, f *decl.FieldDeclaration) (int64, error) {
	res, err := ix.tx.Exec(`INSERT INTO members
		(declaration_id, name, kind, type_display, is_static, is_final, is_const, is_late, is_nullable, is_public, is_synthetic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		declID, f.Name, MemberField, linkDisplay(f.FieldType), f.IsStatic, f.IsFinal,
		f.IsConst, f.IsLate, f.IsNullable, f.IsPublic, f.IsSynthetic,
	)
	if err != nil {
		return 0, fmt.Errorf("insert field %s: %w", f.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, ix.annotations(0, id, f.Annotations)
}

func (ix *indexer) method(declID int64, m *decl.MethodDeclaration) (int64, error) {
	res, err := ix.tx.Exec(`INSERT INTO members
		(declaration_id, name, kind, type_display, is_static, is_abstract, is_const, is_factory, is_getter, is_setter, is_nullable, is_public, is_synthetic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		declID, m.Name, MemberMethod, linkDisplay(m.ReturnType), m.IsStatic, m.IsAbstract,
		m.IsConst, m.IsFactory, m.IsGetter, m.IsSetter, m.ReturnsNullable, m.IsPublic, m.IsSynthetic,
	)
	if err != nil {
		return 0, fmt.Errorf("insert method %s: %w", m.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := ix.parameters(id, m.Parameters); err != nil {
		return 0, err
	}
	return id, ix.annotations(0, id, m.Annotations)
}

func (ix *indexer) constructor(declID int64, c *decl.ConstructorDeclaration) error {
	res, err := ix.tx.Exec(`INSERT INTO members
		(declaration_id, name, kind, is_static, is_const, is_factory, is_public, is_synthetic)
		VALUES (?, ?, ?, FALSE, ?, ?, ?, ?)`,
		declID, c.Name, MemberConstructor, c.IsConst, c.IsFactory, c.IsPublic, c.IsSynthetic,
	)
	if err != nil {
		return fmt.Errorf("insert constructor %s: %w", c.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := ix.parameters(id, c.Parameters); err != nil {
		return err
	}
	return ix.annotations(0, id, c.Annotations)
}

func (ix *indexer) parameters(memberID int64, params []*decl.ParameterDeclaration) error {
	for _, p := range params {
		var defaultExpr string
		if p.HasDefault {
			defaultExpr = fmt.Sprintf("%v", p.DefaultValue)
		}
		if _, err := ix.tx.Exec(`INSERT INTO parameters
			(member_id, name, ordinal, type_display, is_named, is_required, is_optional, has_default, is_nullable, default_expr)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			memberID, p.Name, p.Index, linkDisplay(p.ParamType), p.IsNamed, p.IsRequired,
			p.IsOptional, p.HasDefault, p.IsNullable, defaultExpr,
		); err != nil {
			return fmt.Errorf("insert parameter %s: %w", p.Name, err)
		}
	}
	return nil
}

func (ix *indexer) links(declID int64, role string, links []decl.TypeLink) error {
	for i, l := range links {
		if err := ix.link(declID, role, i, l); err != nil {
			return err
		}
	}
	return nil
}

func (ix *indexer) link(declID int64, role string, ordinal int, l decl.TypeLink) error {
	if l == nil {
		return nil
	}
	core := l.Link()

	kind := LinkNominal
	nullable := false
	switch v := l.(type) {
	case *decl.FunctionLinkDeclaration:
		kind, nullable = LinkFunction, v.IsNullable
	case *decl.RecordLinkDeclaration:
		kind, nullable = LinkRecord, v.IsNullable
	}

	resolved := !core.ResolvedType.IsZero()
	if _, err := ix.tx.Exec(`INSERT INTO type_links
		(declaration_id, role, ordinal, name, display, kind, declaring_uri, reference_uri, is_nullable, variance, is_resolved, resolved_name, resolved_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		declID, role, ordinal, core.Name, linkDisplay(l), kind,
		core.DeclaringURI, core.ReferenceURI, nullable, string(core.Variance),
		resolved, core.ResolvedType.Name, int64(core.ResolvedType.Hash),
	); err != nil {
		return fmt.Errorf("insert %s link %s: %w", role, core.Name, err)
	}
	return nil
}

func (ix *indexer) annotations(declID, memberID int64, anns []*decl.AnnotationDeclaration) error {
	for _, a := range anns {
		var dID, mID *int64
		if declID != 0 {
			dID = &declID
		}
		if memberID != 0 {
			mID = &memberID
		}
		if _, err := ix.tx.Exec(
			"INSERT INTO graph_annotations (declaration_id, member_id, name, values_json) VALUES (?, ?, ?, ?)",
			dID, mID, a.Name(), valuesJSON(a.Values),
		); err != nil {
			return fmt.Errorf("insert annotation %s: %w", a.Name(), err)
		}
	}
	return nil
}

// linkDisplay is the human-readable rendering stored for a link: the
// callable signature for function links, the record shape for record links,
// the resolved type name otherwise.
func linkDisplay(l decl.TypeLink) string {
	switch v := l.(type) {
	case nil:
		return ""
	case *decl.FunctionLinkDeclaration:
		return v.Signature
	case *decl.RecordLinkDeclaration:
		return v.Name
	default:
		core := l.Link()
		if !core.ResolvedType.IsZero() {
			return core.ResolvedType.Name
		}
		return core.Name
	}
}
