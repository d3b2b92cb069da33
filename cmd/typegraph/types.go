package main

import "github.com/jetleaf/typegraph/internal/store"

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIDeclaration is a JSON-friendly declaration row.
type CLIDeclaration struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Type      string   `json:"type,omitempty"`
	SourceURI string   `json:"source_uri,omitempty"`
	Public    bool     `json:"public"`
	Synthetic bool     `json:"synthetic,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	DebugID   string   `json:"debug_id,omitempty"`
}

// CLIMember is a JSON-friendly member row with its parameters inlined.
type CLIMember struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Type       string         `json:"type,omitempty"`
	Modifiers  []string       `json:"modifiers,omitempty"`
	Nullable   bool           `json:"nullable,omitempty"`
	Public     bool           `json:"public"`
	Parameters []CLIParameter `json:"parameters,omitempty"`
}

// CLIParameter is a JSON-friendly parameter row.
type CLIParameter struct {
	Name       string `json:"name"`
	Ordinal    int    `json:"ordinal"`
	Type       string `json:"type,omitempty"`
	Named      bool   `json:"named,omitempty"`
	Required   bool   `json:"required,omitempty"`
	Optional   bool   `json:"optional,omitempty"`
	Nullable   bool   `json:"nullable,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
	Default    string `json:"default,omitempty"`
}

// CLILink is a JSON-friendly type link row.
type CLILink struct {
	From         int64  `json:"from"`
	Role         string `json:"role"`
	Ordinal      int    `json:"ordinal"`
	Name         string `json:"name"`
	Display      string `json:"display,omitempty"`
	Kind         string `json:"kind"`
	Nullable     bool   `json:"nullable,omitempty"`
	Variance     string `json:"variance,omitempty"`
	Resolved     bool   `json:"resolved"`
	ResolvedName string `json:"resolved_name,omitempty"`
}

// CLILibrary is a JSON-friendly library row.
type CLILibrary struct {
	ID  int64  `json:"id"`
	URI string `json:"uri"`
}

// CLIWarning is a JSON-friendly scan warning.
type CLIWarning struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

func toCLIDeclarations(decls []*store.Declaration) []CLIDeclaration {
	out := make([]CLIDeclaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, CLIDeclaration{
			ID:        d.ID,
			Name:      d.Name,
			Kind:      d.Kind,
			Type:      d.TypeName,
			SourceURI: d.SourceURI,
			Public:    d.IsPublic,
			Synthetic: d.IsSynthetic,
			Modifiers: declarationModifiers(d),
			DebugID:   d.DebugID,
		})
	}
	return out
}

func declarationModifiers(d *store.Declaration) []string {
	var mods []string
	if d.IsAbstract {
		mods = append(mods, "abstract")
	}
	if d.IsSealed {
		mods = append(mods, "sealed")
	}
	if d.IsBase {
		mods = append(mods, "base")
	}
	if d.IsInterface {
		mods = append(mods, "interface")
	}
	if d.IsFinal {
		mods = append(mods, "final")
	}
	if d.IsMixinClass {
		mods = append(mods, "mixin")
	}
	return mods
}

func toCLIMember(m *store.Member, params []*store.Parameter) CLIMember {
	out := CLIMember{
		ID:        m.ID,
		Name:      m.Name,
		Kind:      m.Kind,
		Type:      m.TypeDisplay,
		Modifiers: memberModifiers(m),
		Nullable:  m.IsNullable,
		Public:    m.IsPublic,
	}
	for _, p := range params {
		out.Parameters = append(out.Parameters, CLIParameter{
			Name:       p.Name,
			Ordinal:    p.Ordinal,
			Type:       p.TypeDisplay,
			Named:      p.IsNamed,
			Required:   p.IsRequired,
			Optional:   p.IsOptional,
			Nullable:   p.IsNullable,
			HasDefault: p.HasDefault,
			Default:    p.DefaultExpr,
		})
	}
	return out
}

func memberModifiers(m *store.Member) []string {
	var mods []string
	if m.IsStatic {
		mods = append(mods, "static")
	}
	if m.IsAbstract {
		mods = append(mods, "abstract")
	}
	if m.IsFinal {
		mods = append(mods, "final")
	}
	if m.IsConst {
		mods = append(mods, "const")
	}
	if m.IsLate {
		mods = append(mods, "late")
	}
	if m.IsFactory {
		mods = append(mods, "factory")
	}
	if m.IsGetter {
		mods = append(mods, "getter")
	}
	if m.IsSetter {
		mods = append(mods, "setter")
	}
	return mods
}

func toCLILinks(links []*store.TypeLink) []CLILink {
	out := make([]CLILink, 0, len(links))
	for _, l := range links {
		out = append(out, CLILink{
			From:         l.DeclarationID,
			Role:         l.Role,
			Ordinal:      l.Ordinal,
			Name:         l.Name,
			Display:      l.Display,
			Kind:         l.Kind,
			Nullable:     l.IsNullable,
			Variance:     l.Variance,
			Resolved:     l.IsResolved,
			ResolvedName: l.ResolvedName,
		})
	}
	return out
}
