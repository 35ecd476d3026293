package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reNonWord   = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	accentFolds = strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
		"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
	)
	// Cyrillic, Greek and fullwidth letters that PDF extraction tends to
	// emit in place of Latin O and K.
	homoglyphFolds = strings.NewReplacer(
		"О", "O", "о", "o", "Ο", "O", "ο", "o", "Ｏ", "O", "ｏ", "o",
		"К", "K", "к", "k", "Κ", "K", "κ", "k", "Ｋ", "K", "ｋ", "k",
	)
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(strings.ReplaceAll(input, "\u00a0", " "), " "))
}

// FoldObservation case-folds free text and collapses internal whitespace so
// keyword lookups are insensitive to how the bank laid the text out.
func FoldObservation(input string) string {
	return strings.ToLower(NormalizeSpaces(input))
}

func FoldHomoglyphs(input string) string {
	return homoglyphFolds.Replace(input)
}

// FoldHeader reduces a column header to lowercase ASCII letters and digits,
// e.g. "Situación:" -> "situacion".
func FoldHeader(input string) string {
	s := accentFolds.Replace(strings.TrimSpace(input))
	s = strings.ToLower(s)
	return reNonWord.ReplaceAllString(s, "")
}

func IsBlank(input string) bool {
	return strings.TrimSpace(input) == ""
}

func Cell(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}
