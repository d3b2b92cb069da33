package store

import (
	"database/sql"
	"fmt"
)

const declarationColumns = `d.id, d.library_id, d.name, d.kind, d.type_name, d.type_hash,
	d.source_uri, d.is_public, d.is_synthetic, d.is_abstract, d.is_sealed, d.is_base,
	d.is_interface, d.is_final, d.is_mixin_class, d.debug_id`

func scanDeclaration(rows *sql.Rows) (*Declaration, error) {
	var d Declaration
	if err := rows.Scan(
		&d.ID, &d.LibraryID, &d.Name, &d.Kind, &d.TypeName, &d.TypeHash,
		&d.SourceURI, &d.IsPublic, &d.IsSynthetic, &d.IsAbstract, &d.IsSealed, &d.IsBase,
		&d.IsInterface, &d.IsFinal, &d.IsMixinClass, &d.DebugID,
	); err != nil {
		return nil, fmt.Errorf("scan declaration: %w", err)
	}
	return &d, nil
}

func (s *Store) queryDeclarations(query string, args ...any) ([]*Declaration, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()
	var out []*Declaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeclarationsByName returns every indexed declaration with the given
// simple name.
func (s *Store) DeclarationsByName(name string) ([]*Declaration, error) {
	return s.queryDeclarations(
		"SELECT "+declarationColumns+" FROM declarations d WHERE d.name = ? ORDER BY d.id", name)
}

// DeclarationsByKind returns every indexed declaration of the given kind.
func (s *Store) DeclarationsByKind(kind string) ([]*Declaration, error) {
	return s.queryDeclarations(
		"SELECT "+declarationColumns+" FROM declarations d WHERE d.kind = ? ORDER BY d.name", kind)
}

// DeclarationsInLibrary returns a library's declarations in index order.
func (s *Store) DeclarationsInLibrary(uri string) ([]*Declaration, error) {
	return s.queryDeclarations(
		"SELECT "+declarationColumns+` FROM declarations d
		 JOIN libraries l ON l.id = d.library_id WHERE l.uri = ? ORDER BY d.id`, uri)
}

// AnnotatedWith returns declarations carrying an annotation of the given
// name.
func (s *Store) AnnotatedWith(name string) ([]*Declaration, error) {
	return s.queryDeclarations(
		"SELECT DISTINCT "+declarationColumns+` FROM declarations d
		 JOIN graph_annotations a ON a.declaration_id = d.id WHERE a.name = ? ORDER BY d.name`, name)
}

// MembersOf returns the members of the named declaration, constructors
// first, in index order.
func (s *Store) MembersOf(declName string) ([]*Member, error) {
	rows, err := s.db.Query(`SELECT m.id, m.declaration_id, m.name, m.kind, m.type_display,
		m.is_static, m.is_abstract, m.is_final, m.is_const, m.is_late, m.is_factory,
		m.is_getter, m.is_setter, m.is_nullable, m.is_public, m.is_synthetic
		FROM members m JOIN declarations d ON d.id = m.declaration_id
		WHERE d.name = ? ORDER BY m.id`, declName)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()
	var out []*Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(
			&m.ID, &m.DeclarationID, &m.Name, &m.Kind, &m.TypeDisplay,
			&m.IsStatic, &m.IsAbstract, &m.IsFinal, &m.IsConst, &m.IsLate, &m.IsFactory,
			&m.IsGetter, &m.IsSetter, &m.IsNullable, &m.IsPublic, &m.IsSynthetic,
		); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// ParametersOf returns a member's parameters in declaration order.
func (s *Store) ParametersOf(memberID int64) ([]*Parameter, error) {
	rows, err := s.db.Query(`SELECT id, member_id, name, ordinal, type_display,
		is_named, is_required, is_optional, has_default, is_nullable, default_expr
		FROM parameters WHERE member_id = ? ORDER BY ordinal`, memberID)
	if err != nil {
		return nil, fmt.Errorf("query parameters: %w", err)
	}
	defer rows.Close()
	var out []*Parameter
	for rows.Next() {
		var p Parameter
		if err := rows.Scan(
			&p.ID, &p.MemberID, &p.Name, &p.Ordinal, &p.TypeDisplay,
			&p.IsNamed, &p.IsRequired, &p.IsOptional, &p.HasDefault, &p.IsNullable, &p.DefaultExpr,
		); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// LinksOf returns a declaration's outgoing type links, optionally filtered
// by role. An empty role returns all of them.
func (s *Store) LinksOf(declName, role string) ([]*TypeLink, error) {
	query := `SELECT t.id, t.declaration_id, t.role, t.ordinal, t.name, t.display, t.kind,
		t.declaring_uri, t.reference_uri, t.is_nullable, t.variance, t.is_resolved,
		t.resolved_name, t.resolved_hash
		FROM type_links t JOIN declarations d ON d.id = t.declaration_id
		WHERE d.name = ?`
	args := []any{declName}
	if role != "" {
		query += " AND t.role = ?"
		args = append(args, role)
	}
	query += " ORDER BY t.role, t.ordinal"
	return s.queryLinks(query, args...)
}

// UnresolvedLinks returns every link whose target never resolved to a
// runtime type.
func (s *Store) UnresolvedLinks() ([]*TypeLink, error) {
	return s.queryLinks(`SELECT t.id, t.declaration_id, t.role, t.ordinal, t.name, t.display,
		t.kind, t.declaring_uri, t.reference_uri, t.is_nullable, t.variance, t.is_resolved,
		t.resolved_name, t.resolved_hash
		FROM type_links t WHERE t.is_resolved = FALSE ORDER BY t.id`)
}

func (s *Store) queryLinks(query string, args ...any) ([]*TypeLink, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()
	var out []*TypeLink
	for rows.Next() {
		var t TypeLink
		if err := rows.Scan(
			&t.ID, &t.DeclarationID, &t.Role, &t.Ordinal, &t.Name, &t.Display, &t.Kind,
			&t.DeclaringURI, &t.ReferenceURI, &t.IsNullable, &t.Variance, &t.IsResolved,
			&t.ResolvedName, &t.ResolvedHash,
		); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// SupertypeChain walks supertype edges from the named declaration upward,
// returning names in order, nearest first. The walk follows declarations
// the index knows about and stops at the first edge leaving the graph.
func (s *Store) SupertypeChain(name string) ([]string, error) {
	rows, err := s.db.Query(`WITH RECURSIVE chain(name, depth) AS (
			SELECT t.resolved_name, 1
			FROM type_links t JOIN declarations d ON d.id = t.declaration_id
			WHERE d.name = ? AND t.role = ?
			UNION ALL
			SELECT t.resolved_name, c.depth + 1
			FROM chain c
			JOIN declarations d ON d.name = c.name
			JOIN type_links t ON t.declaration_id = d.id AND t.role = ?
			WHERE c.depth < 64
		)
		SELECT name FROM chain ORDER BY depth`, name, RoleSupertype, RoleSupertype)
	if err != nil {
		return nil, fmt.Errorf("query supertype chain: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan supertype: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SubtypesOf returns declarations whose supertype, interface, or mixin
// edges resolve to the given name.
func (s *Store) SubtypesOf(name string) ([]*Declaration, error) {
	return s.queryDeclarations(
		"SELECT DISTINCT "+declarationColumns+` FROM declarations d
		 JOIN type_links t ON t.declaration_id = d.id
		 WHERE t.resolved_name = ? AND t.role IN (?, ?, ?) ORDER BY d.name`,
		name, RoleSupertype, RoleInterface, RoleMixin)
}

// Libraries returns every indexed library with its owning package name.
func (s *Store) Libraries() ([]*Library, error) {
	rows, err := s.db.Query("SELECT id, uri, package_id FROM libraries ORDER BY uri")
	if err != nil {
		return nil, fmt.Errorf("query libraries: %w", err)
	}
	defer rows.Close()
	var out []*Library
	for rows.Next() {
		var l Library
		if err := rows.Scan(&l.ID, &l.URI, &l.PackageID); err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// Warnings returns every recorded scan warning in emission order.
func (s *Store) Warnings() ([]*Warning, error) {
	rows, err := s.db.Query("SELECT id, session_id, stage, subject, detail FROM warnings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()
	var out []*Warning
	for rows.Next() {
		var w Warning
		if err := rows.Scan(&w.ID, &w.SessionID, &w.Stage, &w.Subject, &w.Detail); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// LastScan returns the scan row of the most recent IndexGraph call, or nil
// when nothing has been indexed yet.
func (s *Store) LastScan() (*Scan, error) {
	var sc Scan
	err := s.db.QueryRow("SELECT id, session_id, indexed_at FROM scans ORDER BY id DESC LIMIT 1").
		Scan(&sc.ID, &sc.SessionID, &sc.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query scan: %w", err)
	}
	return &sc, nil
}

// CountsByKind returns declaration counts grouped by kind.
func (s *Store) CountsByKind() (map[string]int, error) {
	rows, err := s.db.Query("SELECT kind, COUNT(*) FROM declarations GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
