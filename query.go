package typegraph

import (
	"fmt"
)

// The query surface reads the SQLite index built by Scan. All of it works
// on the flattened row model, so results reflect the last indexed graph,
// not in-flight resolver state.

// DeclarationsByName returns every indexed declaration with the given
// simple name, across all libraries.
func (s *Session) DeclarationsByName(name string) ([]*DeclarationRow, error) {
	return s.store.DeclarationsByName(name)
}

// DeclarationsByKind returns every indexed declaration of the given kind
// (class, enum, mixin, typedef, record, function, field).
func (s *Session) DeclarationsByKind(kind string) ([]*DeclarationRow, error) {
	return s.store.DeclarationsByKind(kind)
}

// DeclarationsInLibrary returns the declarations indexed for one library
// URI.
func (s *Session) DeclarationsInLibrary(uri string) ([]*DeclarationRow, error) {
	return s.store.DeclarationsInLibrary(uri)
}

// AnnotatedWith returns the declarations carrying an annotation with the
// given name.
func (s *Session) AnnotatedWith(name string) ([]*DeclarationRow, error) {
	return s.store.AnnotatedWith(name)
}

// MembersOf returns the fields, methods, constructors, and enum values of
// the named declaration, in declaration order.
func (s *Session) MembersOf(declName string) ([]*MemberRow, error) {
	return s.store.MembersOf(declName)
}

// ParametersOf returns the parameters of a member row, ordered by index.
func (s *Session) ParametersOf(memberID int64) ([]*ParameterRow, error) {
	return s.store.ParametersOf(memberID)
}

// LinksOf returns the outgoing type links of the named declaration. An
// empty role returns all roles; otherwise role filters to one of
// supertype, interface, mixin, on, alias, type_argument, or type_param.
func (s *Session) LinksOf(declName, role string) ([]*LinkRow, error) {
	return s.store.LinksOf(declName, role)
}

// SupertypeChain returns the named declaration's supertype names in order,
// nearest first, following only resolved supertype links. Cycles are cut
// by a depth bound rather than reported as errors.
func (s *Session) SupertypeChain(name string) ([]string, error) {
	return s.store.SupertypeChain(name)
}

// SubtypesOf returns the declarations whose supertype, interface, or mixin
// links resolve to the given name.
func (s *Session) SubtypesOf(name string) ([]*DeclarationRow, error) {
	return s.store.SubtypesOf(name)
}

// UnresolvedLinks returns every indexed type link that no scanned
// declaration satisfied. A clean graph returns an empty slice.
func (s *Session) UnresolvedLinks() ([]*LinkRow, error) {
	return s.store.UnresolvedLinks()
}

// WarningRows returns the scan warnings as indexed rows.
func (s *Session) WarningRows() ([]*WarningRow, error) {
	return s.store.Warnings()
}

// LibraryRows returns the indexed libraries.
func (s *Session) LibraryRows() ([]*LibraryRow, error) {
	return s.store.Libraries()
}

// LastScan returns the scan row of the most recent index build: the ID of
// the session that produced the graph and when it was indexed. It returns
// nil before the first Scan.
func (s *Session) LastScan() (*ScanRow, error) {
	return s.store.LastScan()
}

// CountsByKind returns how many declarations of each kind the index holds.
func (s *Session) CountsByKind() (map[string]int, error) {
	return s.store.CountsByKind()
}

// Describe returns a one-line human summary of the named declaration, or
// an error if the index has no declaration by that name.
func (s *Session) Describe(name string) (string, error) {
	decls, err := s.store.DeclarationsByName(name)
	if err != nil {
		return "", err
	}
	if len(decls) == 0 {
		return "", fmt.Errorf("typegraph: no declaration named %q", name)
	}
	d := decls[0]
	members, err := s.store.MembersOf(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s (%s) with %d members", d.Kind, d.Name, d.SourceURI, len(members)), nil
}
