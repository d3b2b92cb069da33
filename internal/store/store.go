// Package store is the SQLite query index over a resolved declaration
// graph. The graph itself lives in memory for the lifetime of a session;
// the index is a flattened, queryable projection of it, defaulting to an
// in-memory database so nothing outlives the session.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is the SQLite data access layer for the graph index.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath. An empty path means
// in-memory.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// The graph is written in one transaction and read from many; a single
	// connection keeps an in-memory database from splitting into private
	// copies per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS packages (
  id               INTEGER PRIMARY KEY,
  name             TEXT NOT NULL UNIQUE,
  version          TEXT,
  language_version TEXT,
  is_root          BOOLEAN DEFAULT FALSE,
  path             TEXT
);

CREATE TABLE IF NOT EXISTS libraries (
  id              INTEGER PRIMARY KEY,
  uri             TEXT NOT NULL UNIQUE,
  package_id      INTEGER REFERENCES packages(id)
);

CREATE TABLE IF NOT EXISTS declarations (
  id              INTEGER PRIMARY KEY,
  library_id      INTEGER REFERENCES libraries(id),
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  type_name       TEXT,
  type_hash       INTEGER,
  source_uri      TEXT,
  is_public       BOOLEAN DEFAULT TRUE,
  is_synthetic    BOOLEAN DEFAULT FALSE,
  is_abstract     BOOLEAN DEFAULT FALSE,
  is_sealed       BOOLEAN DEFAULT FALSE,
  is_base         BOOLEAN DEFAULT FALSE,
  is_interface    BOOLEAN DEFAULT FALSE,
  is_final        BOOLEAN DEFAULT FALSE,
  is_mixin_class  BOOLEAN DEFAULT FALSE,
  debug_id        TEXT
);

CREATE TABLE IF NOT EXISTS members (
  id               INTEGER PRIMARY KEY,
  declaration_id   INTEGER NOT NULL REFERENCES declarations(id),
  name             TEXT NOT NULL,
  kind             TEXT NOT NULL,
  type_display     TEXT,
  is_static        BOOLEAN DEFAULT FALSE,
  is_abstract      BOOLEAN DEFAULT FALSE,
  is_final         BOOLEAN DEFAULT FALSE,
  is_const         BOOLEAN DEFAULT FALSE,
  is_late          BOOLEAN DEFAULT FALSE,
  is_factory       BOOLEAN DEFAULT FALSE,
  is_getter        BOOLEAN DEFAULT FALSE,
  is_setter        BOOLEAN DEFAULT FALSE,
  is_nullable      BOOLEAN DEFAULT FALSE,
  is_public        BOOLEAN DEFAULT TRUE,
  is_synthetic     BOOLEAN DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS parameters (
  id              INTEGER PRIMARY KEY,
  member_id       INTEGER NOT NULL REFERENCES members(id),
  name            TEXT,
  ordinal         INTEGER NOT NULL,
  type_display    TEXT,
  is_named        BOOLEAN DEFAULT FALSE,
  is_required     BOOLEAN DEFAULT FALSE,
  is_optional     BOOLEAN DEFAULT FALSE,
  has_default     BOOLEAN DEFAULT FALSE,
  is_nullable     BOOLEAN DEFAULT FALSE,
  default_expr    TEXT
);

CREATE TABLE IF NOT EXISTS type_links (
  id              INTEGER PRIMARY KEY,
  declaration_id  INTEGER NOT NULL REFERENCES declarations(id),
  role            TEXT NOT NULL,
  ordinal         INTEGER DEFAULT 0,
  name            TEXT,
  display         TEXT,
  kind            TEXT NOT NULL,
  declaring_uri   TEXT,
  reference_uri   TEXT,
  is_nullable     BOOLEAN DEFAULT FALSE,
  variance        TEXT,
  is_resolved     BOOLEAN DEFAULT FALSE,
  resolved_name   TEXT,
  resolved_hash   INTEGER
);

CREATE TABLE IF NOT EXISTS graph_annotations (
  id              INTEGER PRIMARY KEY,
  declaration_id  INTEGER REFERENCES declarations(id),
  member_id       INTEGER REFERENCES members(id),
  name            TEXT NOT NULL,
  values_json     TEXT
);

CREATE TABLE IF NOT EXISTS warnings (
  id              INTEGER PRIMARY KEY,
  session_id      TEXT,
  stage           TEXT NOT NULL,
  subject         TEXT,
  detail          TEXT
);

CREATE TABLE IF NOT EXISTS scans (
  id              INTEGER PRIMARY KEY,
  session_id      TEXT NOT NULL,
  indexed_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_libraries_package ON libraries(package_id);
CREATE INDEX IF NOT EXISTS idx_declarations_library ON declarations(library_id);
CREATE INDEX IF NOT EXISTS idx_declarations_name ON declarations(name);
CREATE INDEX IF NOT EXISTS idx_declarations_kind ON declarations(kind);
CREATE INDEX IF NOT EXISTS idx_declarations_type_name ON declarations(type_name);
CREATE INDEX IF NOT EXISTS idx_members_declaration ON members(declaration_id);
CREATE INDEX IF NOT EXISTS idx_members_name ON members(name);
CREATE INDEX IF NOT EXISTS idx_parameters_member ON parameters(member_id);
CREATE INDEX IF NOT EXISTS idx_type_links_declaration ON type_links(declaration_id);
CREATE INDEX IF NOT EXISTS idx_type_links_role ON type_links(role);
CREATE INDEX IF NOT EXISTS idx_type_links_resolved_name ON type_links(resolved_name);
CREATE INDEX IF NOT EXISTS idx_graph_annotations_declaration ON graph_annotations(declaration_id);
CREATE INDEX IF NOT EXISTS idx_graph_annotations_member ON graph_annotations(member_id);
CREATE INDEX IF NOT EXISTS idx_graph_annotations_name ON graph_annotations(name);
`

// Clear removes all indexed data, in reverse-dependency order. Used when a
// session is reset and rescanned into the same store.
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM scans",
		"DELETE FROM warnings",
		"DELETE FROM graph_annotations",
		"DELETE FROM type_links",
		"DELETE FROM parameters",
		"DELETE FROM members",
		"DELETE FROM declarations",
		"DELETE FROM libraries",
		"DELETE FROM packages",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
	}
	return tx.Commit()
}
