package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"rechazos/internal"
	"rechazos/internal/classify"
	"rechazos/internal/util"
	"rechazos/internal/variant"
)

var ErrNoDefaultCode = errors.New("no default rejection code")

type RunOptions struct {
	// DefaultCode is the operator's choice for rows without an observation.
	// Empty means the variant default.
	DefaultCode string
}

type Result struct {
	Assembly
	// Skipped counts candidates whose status line confirmed the payment.
	Skipped  int
	Warnings []internal.Warning
}

// Engine reconciles the documents of one run for a single bank variant. It
// holds no per-run state and can be reused.
type Engine struct {
	variant   variant.Config
	codes     classify.CodeTable
	selection *regexp.Regexp
	ids       *regexp.Regexp
}

func NewEngine(v variant.Config) (*Engine, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	codes, err := v.CodeTable()
	if err != nil {
		return nil, err
	}

	e := &Engine{variant: v, codes: codes}
	if e.ids, err = regexp.Compile(v.IdentifierPattern()); err != nil {
		return nil, fmt.Errorf("variant %s: identifier pattern: %w", v.Name, err)
	}
	if v.Selection.Strategy == variant.StrategyPositional {
		if e.selection, err = regexp.Compile(v.Selection.Pattern); err != nil {
			return nil, fmt.Errorf("variant %s: selection pattern: %w", v.Name, err)
		}
	}
	return e, nil
}

// DefaultCode resolves the code used for rows without an observation.
func (e *Engine) DefaultCode(opts RunOptions) (classify.Code, error) {
	code := strings.ToUpper(strings.TrimSpace(opts.DefaultCode))
	if code == "" {
		code = e.variant.DefaultCode
	}
	if code == "" {
		code = e.variant.Fallback.Code
	}
	if code == "" {
		return classify.Code{}, fmt.Errorf("variant %s: %w", e.variant.Name, ErrNoDefaultCode)
	}
	return e.codes.Lookup(code)
}

// Reconcile runs selection, projection, classification, merge and assembly
// once over docs. Problems with the documents come back as warnings; an error
// means the run itself is misconfigured. The error report is joined even when
// the PDF gave no candidates.
func (e *Engine) Reconcile(docs internal.Documents, opts RunOptions) (Result, error) {
	res := Result{}
	def, err := e.DefaultCode(opts)
	if err != nil {
		return res, err
	}

	candidates, warnings := e.selectCandidates(docs)
	res.Warnings = append(res.Warnings, warnings...)
	if len(candidates) > 0 {
		res.Warnings = append(res.Warnings, e.observe(docs, candidates)...)
	}

	records := make([]internal.TransactionRecord, 0, len(candidates))
	for _, c := range candidates {
		cls, keep := e.classifyObservation(c.observation, def)
		if !keep {
			res.Skipped++
			continue
		}
		rec := e.project(c.line, c.cells)
		rec.Provenance = e.provenance()
		rec.SourceLine = c.lineNo
		rec.RejectionCode = cls.Code
		rec.RejectionDescription = cls.Description
		records = append(records, rec)
	}

	extra, skipped, warnings := e.errorReportRecords(docs, def)
	res.Skipped += skipped
	res.Warnings = append(res.Warnings, warnings...)
	records = MergeErrorReport(records, extra)

	res.Assembly, err = Assembler{Codes: e.codes}.Assemble(OutputColumns, records)
	if err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) provenance() internal.Provenance {
	if e.variant.Selection.Strategy == variant.StrategyColumn {
		return internal.ProvenanceTable
	}
	return internal.ProvenancePDF
}

// project extracts the output fields from a fixed-width line or a table row.
// Missing or short fields give "" and a zero amount.
func (e *Engine) project(line string, cells []string) internal.TransactionRecord {
	var identifier, name, amount, reference string
	if cells == nil {
		layout := e.variant.Layout
		identifier = layout.Get(line, "identifier")
		name = layout.Get(line, "name")
		amount = layout.Get(line, "amount")
		reference = layout.Get(line, "reference")
	} else {
		cols := e.variant.Columns
		identifier = util.Cell(cells, cols.Identifier)
		name = util.Cell(cells, cols.Name)
		if name == "" {
			name = util.Cell(cells, cols.NameFallback)
		}
		amount = util.Cell(cells, cols.Amount)
		reference = util.Cell(cells, cols.Reference)
	}

	rec := internal.TransactionRecord{
		Identifier: identifier,
		Name:       util.NormalizeSpaces(name),
		Reference:  reference,
		Status:     internal.StatusRejected,
	}
	if e.variant.AmountMode == variant.AmountCents {
		rec.Amount = util.NormalizeCents(amount)
	} else {
		rec.Amount = util.NormalizeAmount(amount)
	}
	return rec
}

// classifyObservation returns false when the observation confirms the
// payment and the row must be left out.
func (e *Engine) classifyObservation(observation string, def classify.Code) (classify.Classification, bool) {
	if util.IsBlank(observation) {
		return classify.Classification{Code: def.Code, Description: def.Description}, true
	}
	fallback := def
	if e.variant.Fallback.Code != "" {
		fallback = e.variant.Fallback
	}
	if e.variant.MarkerOrder != "" {
		return classify.ClassifyByKnownMarkers(observation, e.variant.MarkerOrder, e.variant.Rules, e.codes, fallback)
	}
	return classify.Classify(observation, e.variant.Rules, e.codes, fallback), true
}

func (e *Engine) dataRows(table [][]string) [][]string {
	if e.variant.HeaderRows >= len(table) {
		return nil
	}
	return table[e.variant.HeaderRows:]
}

func (e *Engine) headerRows(table [][]string) [][]string {
	n := e.variant.HeaderRows
	if n > len(table) {
		n = len(table)
	}
	return table[:n]
}

func warn(stage, source, format string, args ...any) internal.Warning {
	return internal.Warning{Stage: stage, Source: source, Message: fmt.Sprintf(format, args...)}
}
