package classify

import (
	"regexp"

	"rechazos/internal/util"
)

type MarkerOrder string

const (
	// MarkersFirst skips a line carrying a success marker before any keyword
	// is looked at.
	MarkersFirst MarkerOrder = "markers-first"
	// KeywordsFirst lets a rejection keyword win over a success marker on the
	// same line.
	KeywordsFirst MarkerOrder = "keywords-first"
)

var reSuccessMarker = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])OK(?:$|[^\p{L}\p{N}])`)

// HasSuccessMarker reports whether a bank status line confirms the payment,
// tolerating look-alike Cyrillic, Greek and fullwidth letters.
func HasSuccessMarker(line string) bool {
	return reSuccessMarker.MatchString(util.FoldHomoglyphs(line))
}

// ClassifyByKnownMarkers classifies a PDF status line. The boolean is false
// when the line reads as accepted and the transaction should be skipped.
func ClassifyByKnownMarkers(line string, order MarkerOrder, rules []KeywordRule, table CodeTable, fallback Code) (Classification, bool) {
	if order == KeywordsFirst {
		if c := Classify(line, rules, table, fallback); c.Matched {
			return c, true
		}
		if HasSuccessMarker(line) {
			return Classification{}, false
		}
		return Classification{Code: fallback.Code, Description: fallback.Description}, true
	}

	if HasSuccessMarker(line) {
		return Classification{}, false
	}
	return Classify(line, rules, table, fallback), true
}
