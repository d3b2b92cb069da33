// Package typegraph builds a canonical declaration graph for a modeled
// program by reconciling two metadata oracles that describe it: a runtime
// reflection source, authoritative for which types exist and their runtime
// identity, and a static-analysis source, authoritative for nullability,
// display names, and source locations. Neither oracle is complete; the
// graph builder arbitrates between them fact by fact.
//
// # Pipeline
//
// A scan operates in two phases:
//
//  1. Resolve: walk every library the reflection source enumerates,
//     generating class, enum, mixin, and typedef declarations with their
//     members, type links, and annotations. Resolution is cycle-safe
//     (self-referential generics terminate), memoized (the same type
//     reference resolves once), and degrades per member: a failure to
//     resolve one member becomes a warning, never a lost class.
//
//  2. Index: flatten the resolved graph into an in-memory SQLite database
//     so it can be queried with SQL, the query helpers, or scripted with
//     Risor.
//
// # Usage
//
// Create a Session over the four collaborators, scan, and query:
//
//	u, err := fixture.LoadFile("universe.yaml")
//	if err != nil { ... }
//
//	s, err := typegraph.NewSession(typegraph.Sources{
//		Reflection: u.Reflection(),
//		Static:     u,
//		Text:       u,
//		Registry:   u,
//	})
//	if err != nil { ... }
//	defer s.Close()
//
//	if err := s.Scan(ctx); err != nil { ... }
//
//	decls, err := s.DeclarationsByName("Point")
//	chain, err := s.SupertypeChain("Dog")
//
// # Graph model
//
// Declarations come in two weights. A [TypeLink] is a lightweight pointer
// to a type: name, type arguments, bound, variance, and source locations.
// A [ClassDeclaration] (and its enum/mixin refinements) is the full
// definition with members. Links break the recursion that full definitions
// would force: a class's superclass is a link, not another class.
//
// Type links have exactly three variants: nominal ([LinkDeclaration]),
// callable ([FunctionLinkDeclaration]), and structural record
// ([RecordLinkDeclaration]).
//
// # Scripting
//
// [Session.Eval] runs a Risor script against the index with graph query
// host functions (declarations_by_name, members_of, supertype_chain,
// subtypes_of, unresolved_links, db_query, ...). See the internal/runtime
// package for the full set of globals exposed to scripts.
package typegraph
