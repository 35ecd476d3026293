package lineindex

import (
	"strings"

	"rechazos/internal/fixedwidth"
)

// Entry is one non-blank line or row of a source document. LineNo counts
// non-blank entries only, starting at 1.
type Entry struct {
	LineNo     int
	Identifier string
	Raw        string
	Cells      []string
}

type Index struct {
	ByIdentifier map[string]Entry
	ByLine       map[int]Entry
}

// Build indexes fixed-width lines by the identifier field and by their
// position among non-blank lines. A later line with the same identifier
// replaces an earlier one.
func Build(lines []string, identifier fixedwidth.FieldSpec) *Index {
	idx := newIndex()
	lineNo := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo++
		entry := Entry{LineNo: lineNo, Identifier: identifier.Extract(line), Raw: line}
		idx.add(entry)
	}
	return idx
}

// BuildRows is Build for table rows, keyed by the cell at idCol.
func BuildRows(rows [][]string, idCol int) *Index {
	idx := newIndex()
	lineNo := 0
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		lineNo++
		entry := Entry{LineNo: lineNo, Raw: strings.Join(row, " | "), Cells: row}
		if idCol >= 0 && idCol < len(row) {
			entry.Identifier = strings.TrimSpace(row[idCol])
		}
		idx.add(entry)
	}
	return idx
}

func (i *Index) Len() int {
	return len(i.ByLine)
}

func newIndex() *Index {
	return &Index{
		ByIdentifier: map[string]Entry{},
		ByLine:       map[int]Entry{},
	}
}

func (i *Index) add(entry Entry) {
	i.ByLine[entry.LineNo] = entry
	if entry.Identifier != "" {
		i.ByIdentifier[entry.Identifier] = entry
	}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
