package store

import "time"

// Row types mirror the index schema one to one. They are projections of the
// in-memory graph, not the graph itself; pointers and cycles are flattened
// into name references.

type Package struct {
	ID              int64
	Name            string
	Version         string
	LanguageVersion string
	IsRoot          bool
	Path            string
}

type Library struct {
	ID        int64
	URI       string
	PackageID *int64
}

type Declaration struct {
	ID          int64
	LibraryID   *int64
	Name        string
	Kind        string
	TypeName    string
	TypeHash    int64
	SourceURI   string
	IsPublic    bool
	IsSynthetic bool

	// Class modifier flags; zero for non-class kinds.
	IsAbstract   bool
	IsSealed     bool
	IsBase       bool
	IsInterface  bool
	IsFinal      bool
	IsMixinClass bool

	DebugID string
}

type Member struct {
	ID            int64
	DeclarationID int64
	Name          string
	Kind          string
	TypeDisplay   string
	IsStatic      bool
	IsAbstract    bool
	IsFinal       bool
	IsConst       bool
	IsLate        bool
	IsFactory     bool
	IsGetter      bool
	IsSetter      bool
	IsNullable    bool
	IsPublic      bool
	IsSynthetic   bool
}

type Parameter struct {
	ID          int64
	MemberID    int64
	Name        string
	Ordinal     int
	TypeDisplay string
	IsNamed     bool
	IsRequired  bool
	IsOptional  bool
	HasDefault  bool
	IsNullable  bool
	DefaultExpr string
}

// TypeLink is one edge of the graph: a declaration's reference to a type,
// tagged with the structural role the reference plays.
type TypeLink struct {
	ID            int64
	DeclarationID int64
	Role          string
	Ordinal       int
	Name          string
	Display       string
	Kind          string
	DeclaringURI  string
	ReferenceURI  string
	IsNullable    bool
	Variance      string
	IsResolved    bool
	ResolvedName  string
	ResolvedHash  int64
}

// Link roles.
const (
	RoleSupertype    = "supertype"
	RoleInterface    = "interface"
	RoleMixin        = "mixin"
	RoleOn           = "on"
	RoleAlias        = "alias"
	RoleTypeArgument = "type_argument"
	RoleTypeParam    = "type_param"
)

// Link kinds.
const (
	LinkNominal  = "nominal"
	LinkFunction = "function"
	LinkRecord   = "record"
)

// Member kinds.
const (
	MemberField       = "field"
	MemberMethod      = "method"
	MemberConstructor = "constructor"
	MemberEnumValue   = "enum_value"
)

type Annotation struct {
	ID            int64
	DeclarationID *int64
	MemberID      *int64
	Name          string
	ValuesJSON    string
}

type Warning struct {
	ID        int64
	SessionID string
	Stage     string
	Subject   string
	Detail    string
}

// Scan records which resolve session produced the currently indexed graph,
// and when it was indexed.
type Scan struct {
	ID        int64
	SessionID string
	IndexedAt time.Time
}
