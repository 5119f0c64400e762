package models

// PrimaryKeyChoice is the tri-state primary key decision carried through the
// whole pipeline. Collapsing Unspecified and ExplicitNone would lose a
// user-visible distinction: Unspecified means "add a synthetic surrogate
// key", ExplicitNone means "no primary key at all".
type PrimaryKeyChoice struct {
	kind   pkKind
	column string
}

type pkKind int

const (
	pkUnspecified pkKind = iota
	pkExplicitNone
	pkNamed
)

// PKUnspecified returns the choice that asks for a synthetic surrogate key.
func PKUnspecified() PrimaryKeyChoice {
	return PrimaryKeyChoice{kind: pkUnspecified}
}

// PKNone returns the choice that forbids any primary key.
func PKNone() PrimaryKeyChoice {
	return PrimaryKeyChoice{kind: pkExplicitNone}
}

// PKNamed returns the choice that selects an existing column.
func PKNamed(column string) PrimaryKeyChoice {
	return PrimaryKeyChoice{kind: pkNamed, column: column}
}

// IsUnspecified reports whether no choice was made (synthetic key wanted).
func (p PrimaryKeyChoice) IsUnspecified() bool { return p.kind == pkUnspecified }

// IsNone reports whether the caller explicitly wants no primary key.
func (p PrimaryKeyChoice) IsNone() bool { return p.kind == pkExplicitNone }

// Column returns the named column and whether one was named.
func (p PrimaryKeyChoice) Column() (string, bool) {
	return p.column, p.kind == pkNamed
}

// ParsePrimaryKeyOverride is the single deserialization point that maps any
// wire-format convention onto the tri-state choice. The sentinel encodings
// ("__AUTO__", "__NONE__", absent field, empty string) drifted across
// revisions of this logic; every transport must go through here.
//
// present=false (field absent)  -> Unspecified (auto synthetic key)
// present=true, value ""        -> ExplicitNone (no primary key)
// present=true, value "name"    -> Named("name")
func ParsePrimaryKeyOverride(value string, present bool) PrimaryKeyChoice {
	if !present {
		return PKUnspecified()
	}
	if value == "" {
		return PKNone()
	}
	return PKNamed(value)
}

// ForeignKey is a proposed foreign-key relationship. Inference never checks
// the referenced table exists; the sink rejects invalid references at
// execution time.
type ForeignKey struct {
	Column           string `json:"column"`
	ReferencesTable  string `json:"references_table"`
	ReferencesColumn string `json:"references_column"`
}

// KeyDecision is the Key Inference Engine's output.
type KeyDecision struct {
	PrimaryKey  PrimaryKeyChoice
	ForeignKeys []ForeignKey
}
