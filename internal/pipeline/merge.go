package pipeline

import (
	"regexp"
	"strconv"

	"rechazos/internal"
	"rechazos/internal/classify"
	"rechazos/internal/lineindex"
	"rechazos/internal/util"
	"rechazos/internal/variant"
)

var reLineNumber = regexp.MustCompile(`\d+`)

// errorReportRecords turns the rows of a bank error report into records by
// joining each row to the primary source, by line number or by identifier.
// Line numbers count non-blank lines only, the way banks number them.
func (e *Engine) errorReportRecords(docs internal.Documents, def classify.Code) ([]internal.TransactionRecord, int, []internal.Warning) {
	report := e.variant.ErrorReport
	if report == nil || len(docs.ErrorReport) == 0 {
		return nil, 0, nil
	}

	rows := docs.ErrorReport
	if report.HeaderRows >= len(rows) {
		return nil, 0, []internal.Warning{warn("merge", "error_report", "error report has no data rows")}
	}
	rows = rows[report.HeaderRows:]

	idx := e.sourceIndex(docs)
	out := []internal.TransactionRecord{}
	skipped, unmatched := 0, 0
	for _, row := range rows {
		key := util.Cell(row, report.KeyColumn)
		if key == "" {
			continue
		}

		var entry lineindex.Entry
		var ok bool
		switch report.Join {
		case variant.JoinByLine:
			n, err := strconv.Atoi(reLineNumber.FindString(key))
			if err == nil {
				entry, ok = idx.ByLine[n]
			}
		case variant.JoinByIdentifier:
			entry, ok = idx.ByIdentifier[key]
		}
		if !ok {
			unmatched++
			continue
		}

		cls, keep := e.classifyObservation(util.Cell(row, report.ObservationColumn), def)
		if !keep {
			skipped++
			continue
		}
		rec := e.project(entry.Raw, entry.Cells)
		rec.Provenance = internal.ProvenanceErrorReport
		rec.SourceLine = entry.LineNo
		rec.RejectionCode = cls.Code
		rec.RejectionDescription = cls.Description
		out = append(out, rec)
	}

	var warnings []internal.Warning
	if unmatched > 0 {
		warnings = append(warnings, warn("merge", "error_report", "%d error report rows did not match the source document", unmatched))
	}
	return out, skipped, warnings
}

func (e *Engine) sourceIndex(docs internal.Documents) *lineindex.Index {
	if e.variant.Selection.Target == variant.TargetLines {
		field, _ := e.variant.Layout.Field("identifier")
		return lineindex.Build(docs.Lines, field)
	}
	return lineindex.BuildRows(e.dataRows(docs.Table), e.variant.Columns.Identifier)
}

// MergeErrorReport folds error report records into the primary records. A
// report record replaces the primary records of the same payment, matched by
// identifier and reference, taking the place of the first of them; report
// records with no primary counterpart are appended. When the report repeats
// a payment the last row wins. Primary records are never merged with each
// other, and records without an identifier are always kept.
func MergeErrorReport(primary, report []internal.TransactionRecord) []internal.TransactionRecord {
	latest := map[paymentKey]internal.TransactionRecord{}
	order := []paymentKey{}
	out := make([]internal.TransactionRecord, 0, len(primary)+len(report))
	for _, r := range report {
		if r.Identifier == "" {
			continue
		}
		key := keyOf(r)
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = r
	}

	placed := map[paymentKey]bool{}
	for _, r := range primary {
		key := keyOf(r)
		rep, ok := latest[key]
		if r.Identifier == "" || !ok {
			out = append(out, r)
			continue
		}
		if !placed[key] {
			out = append(out, rep)
			placed[key] = true
		}
	}
	for _, key := range order {
		if !placed[key] {
			out = append(out, latest[key])
		}
	}
	for _, r := range report {
		if r.Identifier == "" {
			out = append(out, r)
		}
	}
	return out
}

type paymentKey struct {
	identifier string
	reference  string
}

func keyOf(r internal.TransactionRecord) paymentKey {
	return paymentKey{identifier: r.Identifier, reference: r.Reference}
}
