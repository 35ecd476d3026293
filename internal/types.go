package internal

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Provenance string

const (
	ProvenancePDF         Provenance = "pdf"
	ProvenanceTable       Provenance = "table"
	ProvenanceErrorReport Provenance = "error_report"
)

type Status string

// StatusRejected is the only status this pipeline emits. The value is what the
// payment processor expects on the wire.
const StatusRejected Status = "rechazada"

type TransactionRecord struct {
	Identifier           string
	Name                 string
	Amount               decimal.Decimal
	Reference            string
	Status               Status
	RejectionCode        string
	RejectionDescription string

	Provenance Provenance
	SourceLine int
}

type PDFDocument struct {
	Text string
	Rows []string
}

// Lines returns the non-blank text lines of the document, falling back to the
// extracted rows when no plain text is available.
func (d PDFDocument) Lines() []string {
	out := []string{}
	src := d.Rows
	if strings.TrimSpace(d.Text) != "" {
		src = strings.Split(strings.ReplaceAll(d.Text, "\r\n", "\n"), "\n")
	}
	for _, ln := range src {
		if strings.TrimSpace(ln) != "" {
			out = append(out, ln)
		}
	}
	return out
}

// FullText is Text, or the rows joined by newlines when Text is empty.
func (d PDFDocument) FullText() string {
	if strings.TrimSpace(d.Text) != "" {
		return d.Text
	}
	return strings.Join(d.Rows, "\n")
}

type Documents struct {
	PDF         *PDFDocument
	Lines       []string
	Table       [][]string
	ErrorReport [][]string
}

type Warning struct {
	Stage   string `json:"stage"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

type RunRow struct {
	ID          int
	RunID       string
	Variant     string
	DefaultCode string
	Sources     []string
	Count       int
	AmountSum   decimal.Decimal
	Warnings    []Warning
	Timings     map[string]float64
	CreatedAt   string
}

type SubmissionRow struct {
	ID         int
	RunID      string
	StatusCode int
	Body       string
	CreatedAt  string
}
