package models

// Source kinds for a loaded table.
const (
	SourceKindFile     = "file"
	SourceKindURL      = "url"
	SourceKindPostgres = "postgres"
)

// SourceInfo describes where a table was loaded from.
type SourceInfo struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
}

func (s SourceInfo) String() string {
	return s.Kind + ":" + s.Location
}
