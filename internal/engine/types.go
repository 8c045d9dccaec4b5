package engine

import (
	"time"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/parser"
)

// Table is one supporting table in a response
type Table struct {
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// Citation names a data source consulted while producing an answer
type Citation struct {
	Dataset      string `json:"dataset"`
	SnapshotTime string `json:"snapshot_time"`
	Detail       string `json:"detail"`
}

// Debug carries routing information for troubleshooting
type Debug struct {
	Intent string        `json:"intent"`
	Params parser.Params `json:"params"`
}

// Envelope is the uniform response shape. Failure paths return it too,
// with empty tables and citations and an explanatory answer.
type Envelope struct {
	Answer    string     `json:"answer"`
	Tables    []Table    `json:"tables"`
	Citations []Citation `json:"citations"`
	Debug     *Debug     `json:"debug,omitempty"`
}

// NewEnvelope creates an envelope with non-nil table and citation slices
// so the JSON shape stays uniform
func NewEnvelope(answer string) *Envelope {
	return &Envelope{
		Answer:    answer,
		Tables:    []Table{},
		Citations: []Citation{},
	}
}

// Cite builds a citation from a snapshot source descriptor
func Cite(src dataset.SourceInfo, detail string) Citation {
	return Citation{
		Dataset:      src.Dataset,
		SnapshotTime: src.SnapshotTime.UTC().Format(time.RFC3339),
		Detail:       detail,
	}
}

// Handler is one analytical routine bound to a single intent
type Handler interface {
	// Name describes the handler in routing errors and logs
	Name() string

	// Execute runs the analysis against a harmonized snapshot. It must
	// validate its required parameters before touching data.
	Execute(params parser.Params, snap *dataset.Snapshot) (*Envelope, error)
}
