package pipeline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"rechazos/internal"
	"rechazos/internal/util"
	"rechazos/internal/variant"
)

// candidate is one selected TXT line or table data row. lineNo is the
// physical line number, or the 1-based position among data rows.
type candidate struct {
	lineNo      int
	line        string
	cells       []string
	observation string
}

var reSituation = regexp.MustCompile(`(?i)\bsituaci`)

func (e *Engine) selectCandidates(docs internal.Documents) ([]candidate, []internal.Warning) {
	switch e.variant.Selection.Strategy {
	case variant.StrategyPositional:
		return e.selectPositional(docs)
	case variant.StrategyIdentifier:
		return e.selectByIdentifier(docs)
	case variant.StrategyColumn:
		return e.selectByColumn(docs)
	}
	return nil, []internal.Warning{warn("selection", e.variant.Name, "unsupported strategy %q", e.variant.Selection.Strategy)}
}

// selectPositional turns "Registro N" style tokens into target positions:
// N*Multiplier+Offset, deduplicated and sorted. Targets outside the target
// document are dropped.
func (e *Engine) selectPositional(docs internal.Documents) ([]candidate, []internal.Warning) {
	text := pdfText(docs)
	if text == "" {
		return nil, []internal.Warning{warn("selection", "pdf", "no PDF text to read record tokens from")}
	}

	sel := e.variant.Selection
	multiplier := sel.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}

	segments := map[int]string{}
	matches := e.selection.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		target := n*multiplier + sel.Offset
		if _, seen := segments[target]; seen {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segments[target] = tokenObservation(text[m[1]:end])
	}
	if len(segments) == 0 {
		return nil, []internal.Warning{warn("selection", "pdf", "no record tokens matching %q found in PDF", sel.Pattern)}
	}

	targets := make([]int, 0, len(segments))
	for t := range segments {
		targets = append(targets, t)
	}
	sort.Ints(targets)

	out := []candidate{}
	for _, target := range targets {
		c := candidate{lineNo: target}
		switch sel.Target {
		case variant.TargetLines:
			if target < 1 || target > len(docs.Lines) || util.IsBlank(docs.Lines[target-1]) {
				continue
			}
			c.line = docs.Lines[target-1]
		case variant.TargetTable:
			data := e.dataRows(docs.Table)
			if target < 1 || target > len(data) {
				continue
			}
			c.cells = data[target-1]
		}
		if e.variant.Observation == variant.ObservationPDFLine {
			c.observation = segments[target]
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, []internal.Warning{warn("selection", string(sel.Target), "all %d record positions fall outside the source document", len(targets))}
	}
	return out, nil
}

// tokenObservation is the text after a record token on the same line, or
// the next non-blank line when the token ends its line.
func tokenObservation(segment string) string {
	for _, line := range strings.Split(segment, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// selectByIdentifier keeps the rows where any cell equals an identifier
// found in the PDF text.
func (e *Engine) selectByIdentifier(docs internal.Documents) ([]candidate, []internal.Warning) {
	text := pdfText(docs)
	if text == "" {
		return nil, []internal.Warning{warn("selection", "pdf", "no PDF text to read identifiers from")}
	}
	ids := map[string]bool{}
	for _, id := range e.ids.FindAllString(text, -1) {
		ids[id] = true
	}
	if len(ids) == 0 {
		return nil, []internal.Warning{warn("selection", "pdf", "no identifiers found in PDF")}
	}

	out := []candidate{}
	if e.variant.Selection.Target == variant.TargetLines {
		for i, line := range docs.Lines {
			if ids[e.variant.Layout.Get(line, "identifier")] {
				out = append(out, candidate{lineNo: i + 1, line: line})
			}
		}
	} else {
		for i, row := range e.dataRows(docs.Table) {
			for _, cell := range row {
				if ids[strings.TrimSpace(cell)] {
					out = append(out, candidate{lineNo: i + 1, cells: row})
					break
				}
			}
		}
	}
	if len(out) == 0 {
		return nil, []internal.Warning{warn("selection", string(e.variant.Selection.Target), "none of the %d PDF identifiers appear in the source document", len(ids))}
	}
	return out, nil
}

// selectByColumn keeps data rows whose selection column is not empty.
func (e *Engine) selectByColumn(docs internal.Documents) ([]candidate, []internal.Warning) {
	col := e.variant.Selection.Column
	out := []candidate{}
	for i, row := range e.dataRows(docs.Table) {
		if util.Cell(row, col) != "" {
			out = append(out, candidate{lineNo: i + 1, cells: row})
		}
	}
	if len(out) == 0 {
		return nil, []internal.Warning{warn("selection", "table", "no rows with a value in column %d", col+1)}
	}
	return out, nil
}

// observe fills the observation of candidates whose text lives outside the
// PDF record line: in the row itself, in id/situation pairs of the PDF, or
// in a column found by its header.
func (e *Engine) observe(docs internal.Documents, candidates []candidate) []internal.Warning {
	switch e.variant.Observation {
	case variant.ObservationRow:
		col := e.observationColumn(docs.Table)
		for i := range candidates {
			if candidates[i].cells == nil {
				candidates[i].observation = e.variant.Layout.Get(candidates[i].line, "observation")
				continue
			}
			candidates[i].observation = util.Cell(candidates[i].cells, col)
		}
	case variant.ObservationPDFPairs:
		pairs := situationPairs(pdfLines(docs), e.ids)
		if len(pairs) > 0 {
			for i := range candidates {
				candidates[i].observation = e.pairedObservation(candidates[i], pairs)
			}
			return nil
		}
		col := e.observationColumn(docs.Table)
		if col < 0 {
			return []internal.Warning{warn("classification", "pdf", "no identifier/situation pairs in PDF and no situation column in the table; default code applied")}
		}
		for i := range candidates {
			candidates[i].observation = util.Cell(candidates[i].cells, col)
		}
	}
	return nil
}

func (e *Engine) pairedObservation(c candidate, pairs map[string]string) string {
	cells := c.cells
	if cells == nil {
		cells = []string{c.line}
	}
	for _, cell := range cells {
		for _, id := range e.ids.FindAllString(cell, -1) {
			if situation, ok := pairs[id]; ok {
				return situation
			}
		}
	}
	return ""
}

func (e *Engine) observationColumn(table [][]string) int {
	if e.variant.Columns.Observation >= 0 {
		return e.variant.Columns.Observation
	}
	if e.variant.ObservationHeader == "" {
		return -1
	}
	return findHeaderColumn(e.headerRows(table), e.variant.ObservationHeader)
}

// findHeaderColumn looks for a header equal to or starting with key after
// folding, then for one merely containing its first six letters.
func findHeaderColumn(headers [][]string, key string) int {
	key = util.FoldHeader(key)
	if key == "" {
		return -1
	}
	for _, row := range headers {
		for i, cell := range row {
			if strings.HasPrefix(util.FoldHeader(cell), key) {
				return i
			}
		}
	}
	stem := key
	if len(stem) > 6 {
		stem = stem[:6]
	}
	for _, row := range headers {
		for i, cell := range row {
			if strings.Contains(util.FoldHeader(cell), stem) {
				return i
			}
		}
	}
	return -1
}

// situationPairs maps identifiers to the situation text of PDF lines that
// mention "situación". The identifier may sit on the same line, up to two
// lines away, or inside the situation text itself.
func situationPairs(lines []string, ids *regexp.Regexp) map[string]string {
	pairs := map[string]string{}
	for idx, line := range lines {
		if !reSituation.MatchString(line) {
			continue
		}
		situation := strings.TrimSpace(line)
		if _, after, ok := strings.Cut(line, ":"); ok {
			situation = strings.TrimSpace(after)
		}

		if here := ids.FindAllString(line, -1); len(here) > 0 {
			for _, id := range here {
				pairs[id] = situation
			}
			continue
		}

		found := false
		for _, rel := range []int{-2, -1, 1, 2} {
			ni := idx + rel
			if ni < 0 || ni >= len(lines) {
				continue
			}
			near := ids.FindAllString(lines[ni], -1)
			if len(near) == 0 {
				continue
			}
			for _, id := range near {
				pairs[id] = situation
			}
			found = true
			break
		}
		if found {
			continue
		}

		if inside := ids.FindAllString(situation, -1); len(inside) > 0 {
			cleaned := strings.TrimSpace(ids.ReplaceAllString(situation, ""))
			for _, id := range inside {
				pairs[id] = cleaned
			}
		}
	}
	return pairs
}

func pdfText(docs internal.Documents) string {
	if docs.PDF == nil {
		return ""
	}
	return strings.TrimSpace(docs.PDF.FullText())
}

func pdfLines(docs internal.Documents) []string {
	if docs.PDF == nil {
		return nil
	}
	return docs.PDF.Lines()
}
