package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jetleaf/typegraph/internal/store"
)

// Query host functions wrap Store read methods. Each takes primitive
// arguments and returns Risor lists of maps, since scripts cannot hold Go
// struct pointers.

// makeNameQueryFn builds a host function of the common shape
// name → list of declaration maps.
func makeNameQueryFn(fnName string, query func(string) ([]*store.Declaration, error)) *object.Builtin {
	return object.NewBuiltin(fnName, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError(fnName, 1, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("%s: %v", fnName, err)
		}
		decls, queryErr := query(name)
		if queryErr != nil {
			return object.Errorf("%s: %v", fnName, queryErr)
		}
		return declarationList(decls)
	})
}

func makeDeclarationsByNameFn(s *store.Store) *object.Builtin {
	return makeNameQueryFn("declarations_by_name", s.DeclarationsByName)
}

func makeDeclarationsByKindFn(s *store.Store) *object.Builtin {
	return makeNameQueryFn("declarations_by_kind", s.DeclarationsByKind)
}

func makeDeclarationsInLibraryFn(s *store.Store) *object.Builtin {
	return makeNameQueryFn("declarations_in_library", s.DeclarationsInLibrary)
}

func makeAnnotatedWithFn(s *store.Store) *object.Builtin {
	return makeNameQueryFn("annotated_with", s.AnnotatedWith)
}

func makeSubtypesOfFn(s *store.Store) *object.Builtin {
	return makeNameQueryFn("subtypes_of", s.SubtypesOf)
}

func makeMembersOfFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("members_of", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("members_of", 1, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("members_of: %v", err)
		}
		members, queryErr := s.MembersOf(name)
		if queryErr != nil {
			return object.Errorf("members_of: %v", queryErr)
		}
		out := make([]object.Object, 0, len(members))
		for _, m := range members {
			out = append(out, memberToMap(m))
		}
		return object.NewList(out)
	})
}

func makeParametersOfFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("parameters_of", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("parameters_of", 1, len(args))
		}
		id, ok := args[0].(*object.Int)
		if !ok {
			return object.Errorf("parameters_of: member id must be an int, got %s", args[0].Type())
		}
		params, queryErr := s.ParametersOf(id.Value())
		if queryErr != nil {
			return object.Errorf("parameters_of: %v", queryErr)
		}
		out := make([]object.Object, 0, len(params))
		for _, p := range params {
			out = append(out, parameterToMap(p))
		}
		return object.NewList(out)
	})
}

func makeLinksOfFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("links_of", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.Errorf("links_of: expected 1 or 2 arguments (name, optional role), got %d", len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("links_of: %v", err)
		}
		var role string
		if len(args) == 2 {
			role, err = toString(args[1])
			if err != nil {
				return object.Errorf("links_of: %v", err)
			}
		}
		links, queryErr := s.LinksOf(name, role)
		if queryErr != nil {
			return object.Errorf("links_of: %v", queryErr)
		}
		return linkList(links)
	})
}

func makeSupertypeChainFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("supertype_chain", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("supertype_chain", 1, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("supertype_chain: %v", err)
		}
		chain, queryErr := s.SupertypeChain(name)
		if queryErr != nil {
			return object.Errorf("supertype_chain: %v", queryErr)
		}
		out := make([]object.Object, 0, len(chain))
		for _, n := range chain {
			out = append(out, object.NewString(n))
		}
		return object.NewList(out)
	})
}

func makeUnresolvedLinksFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("unresolved_links", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("unresolved_links", 0, len(args))
		}
		links, err := s.UnresolvedLinks()
		if err != nil {
			return object.Errorf("unresolved_links: %v", err)
		}
		return linkList(links)
	})
}

func makeWarningsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("graph_warnings", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("graph_warnings", 0, len(args))
		}
		warnings, err := s.Warnings()
		if err != nil {
			return object.Errorf("graph_warnings: %v", err)
		}
		out := make([]object.Object, 0, len(warnings))
		for _, w := range warnings {
			out = append(out, object.NewMap(map[string]object.Object{
				"session": object.NewString(w.SessionID),
				"stage":   object.NewString(w.Stage),
				"subject": object.NewString(w.Subject),
				"detail":  object.NewString(w.Detail),
			}))
		}
		return object.NewList(out)
	})
}

func makeCountsByKindFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("counts_by_kind", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("counts_by_kind", 0, len(args))
		}
		counts, err := s.CountsByKind()
		if err != nil {
			return object.Errorf("counts_by_kind: %v", err)
		}
		m := make(map[string]object.Object, len(counts))
		for kind, n := range counts {
			m[kind] = object.NewInt(int64(n))
		}
		return object.NewMap(m)
	})
}

// makeDBQueryFn creates a db_query bridge that executes arbitrary read-only
// SQL against the index.
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got %d", len(args))
		}
		sqlStr, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}

		// Only allow SELECT statements.
		trimmed := strings.TrimSpace(strings.ToUpper(sqlStr))
		if !strings.HasPrefix(trimmed, "SELECT") && !strings.HasPrefix(trimmed, "WITH") {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}

		var queryArgs []any
		for _, arg := range args[1:] {
			switch v := arg.(type) {
			case *object.Int:
				queryArgs = append(queryArgs, v.Value())
			case *object.Float:
				queryArgs = append(queryArgs, v.Value())
			case *object.String:
				queryArgs = append(queryArgs, v.Value())
			case *object.Bool:
				queryArgs = append(queryArgs, v.Value())
			case *object.NilType:
				queryArgs = append(queryArgs, nil)
			default:
				queryArgs = append(queryArgs, fmt.Sprintf("%v", arg))
			}
		}

		rows, queryErr := s.DB().QueryContext(ctx, sqlStr, queryArgs...)
		if queryErr != nil {
			return object.Errorf("db_query: %v", queryErr)
		}
		defer rows.Close()

		cols, colErr := rows.Columns()
		if colErr != nil {
			return object.Errorf("db_query: columns: %v", colErr)
		}

		var results []object.Object
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return object.Errorf("db_query: scan: %v", err)
			}
			row := make(map[string]object.Object, len(cols))
			for i, col := range cols {
				row[col] = sqlValueToObject(values[i])
			}
			results = append(results, object.NewMap(row))
		}
		if err := rows.Err(); err != nil {
			return object.Errorf("db_query: rows: %v", err)
		}
		if results == nil {
			results = []object.Object{}
		}
		return object.NewList(results)
	})
}

func declarationList(decls []*store.Declaration) object.Object {
	out := make([]object.Object, 0, len(decls))
	for _, d := range decls {
		out = append(out, declarationToMap(d))
	}
	return object.NewList(out)
}

func linkList(links []*store.TypeLink) object.Object {
	out := make([]object.Object, 0, len(links))
	for _, l := range links {
		out = append(out, linkToMap(l))
	}
	return object.NewList(out)
}

func declarationToMap(d *store.Declaration) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":             object.NewInt(d.ID),
		"name":           object.NewString(d.Name),
		"kind":           object.NewString(d.Kind),
		"type_name":      object.NewString(d.TypeName),
		"source_uri":     object.NewString(d.SourceURI),
		"is_public":      object.NewBool(d.IsPublic),
		"is_synthetic":   object.NewBool(d.IsSynthetic),
		"is_abstract":    object.NewBool(d.IsAbstract),
		"is_sealed":      object.NewBool(d.IsSealed),
		"is_base":        object.NewBool(d.IsBase),
		"is_interface":   object.NewBool(d.IsInterface),
		"is_final":       object.NewBool(d.IsFinal),
		"is_mixin_class": object.NewBool(d.IsMixinClass),
		"debug_id":       object.NewString(d.DebugID),
	})
}

func memberToMap(m *store.Member) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":           object.NewInt(m.ID),
		"name":         object.NewString(m.Name),
		"kind":         object.NewString(m.Kind),
		"type_display": object.NewString(m.TypeDisplay),
		"is_static":    object.NewBool(m.IsStatic),
		"is_abstract":  object.NewBool(m.IsAbstract),
		"is_final":     object.NewBool(m.IsFinal),
		"is_const":     object.NewBool(m.IsConst),
		"is_late":      object.NewBool(m.IsLate),
		"is_factory":   object.NewBool(m.IsFactory),
		"is_getter":    object.NewBool(m.IsGetter),
		"is_setter":    object.NewBool(m.IsSetter),
		"is_nullable":  object.NewBool(m.IsNullable),
		"is_public":    object.NewBool(m.IsPublic),
		"is_synthetic": object.NewBool(m.IsSynthetic),
	})
}

func parameterToMap(p *store.Parameter) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":           object.NewInt(p.ID),
		"name":         object.NewString(p.Name),
		"ordinal":      object.NewInt(int64(p.Ordinal)),
		"type_display": object.NewString(p.TypeDisplay),
		"is_named":     object.NewBool(p.IsNamed),
		"is_required":  object.NewBool(p.IsRequired),
		"is_optional":  object.NewBool(p.IsOptional),
		"has_default":  object.NewBool(p.HasDefault),
		"is_nullable":  object.NewBool(p.IsNullable),
		"default_expr": object.NewString(p.DefaultExpr),
	})
}

func linkToMap(l *store.TypeLink) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":            object.NewInt(l.ID),
		"role":          object.NewString(l.Role),
		"ordinal":       object.NewInt(int64(l.Ordinal)),
		"name":          object.NewString(l.Name),
		"display":       object.NewString(l.Display),
		"kind":          object.NewString(l.Kind),
		"declaring_uri": object.NewString(l.DeclaringURI),
		"reference_uri": object.NewString(l.ReferenceURI),
		"is_nullable":   object.NewBool(l.IsNullable),
		"variance":      object.NewString(l.Variance),
		"is_resolved":   object.NewBool(l.IsResolved),
		"resolved_name": object.NewString(l.ResolvedName),
	})
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func sqlValueToObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}
