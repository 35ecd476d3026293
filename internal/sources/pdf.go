package sources

import (
	"bytes"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"rechazos/internal"
)

// ReadPDF extracts the plain text of every page, concatenated, plus one
// string per visual text row.
func ReadPDF(content []byte) (doc internal.PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf: unreadable document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return internal.PDFDocument{}, err
	}

	var text strings.Builder
	rows := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		if plain, err := p.GetPlainText(nil); err == nil {
			text.WriteString(plain)
			if !strings.HasSuffix(plain, "\n") {
				text.WriteString("\n")
			}
		}
		byRow, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range byRow {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					words = append(words, s)
				}
			}
			if len(words) > 0 {
				rows = append(rows, strings.Join(words, " "))
			}
		}
	}

	return internal.PDFDocument{Text: text.String(), Rows: rows}, nil
}
