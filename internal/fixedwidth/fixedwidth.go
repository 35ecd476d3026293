// Package fixedwidth carves named fields out of positionally encoded bank
// ledger lines. Columns are 1-based and inclusive on both ends.
package fixedwidth

import "strings"

// FieldSpec names an inclusive 1-based column range.
type FieldSpec struct {
	Name  string `yaml:"name" json:"name"`
	Start int    `yaml:"start" json:"start"`
	End   int    `yaml:"end" json:"end"`
}

// Slice returns the trimmed text between columns start and end. Short lines
// and inverted or out-of-range bounds yield "".
func Slice(line string, start, end int) string {
	runes := []rune(line)
	idx := start - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(runes) {
		return ""
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end <= idx {
		return ""
	}
	return strings.TrimSpace(string(runes[idx:end]))
}

func (f FieldSpec) Extract(line string) string {
	return Slice(line, f.Start, f.End)
}

func (f FieldSpec) IsZero() bool {
	return f.Start == 0 && f.End == 0
}

// Layout is a bank variant's field table.
type Layout []FieldSpec

func (l Layout) Field(name string) (FieldSpec, bool) {
	for _, f := range l {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Get extracts a single named field; unknown names give "".
func (l Layout) Get(line, name string) string {
	f, ok := l.Field(name)
	if !ok {
		return ""
	}
	return f.Extract(line)
}

func (l Layout) Extract(line string) map[string]string {
	out := make(map[string]string, len(l))
	for _, f := range l {
		out[f.Name] = f.Extract(line)
	}
	return out
}
