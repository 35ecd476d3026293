package sources

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedTable = errors.New("unsupported table format")

// ReadTable decodes a spreadsheet into string cells, never typed values, so
// identifiers and references keep their leading zeros. The format is chosen
// by file extension.
func ReadTable(name string, content []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return readXLSX(content)
	case ".xls":
		if looksLikeHTML(content) {
			return readHTMLTable(content)
		}
		return readXLS(content)
	case ".csv", ".txt":
		return readCSV(content)
	case ".html", ".htm":
		return readHTMLTable(content)
	case ".zip":
		inner, innerName, err := FirstSpreadsheetInZip(content)
		if err != nil {
			return nil, err
		}
		return ReadTable(innerName, inner)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTable, name)
	}
}

func readXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("xlsx: no sheets found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return normalizeRows(rows), nil
}

func readXLS(content []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("xls: no sheets found")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("xls: could not read first sheet")
	}

	out := [][]string{}
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			out = append(out, []string{})
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		out = append(out, cells)
	}
	return normalizeRows(out), nil
}

func readCSV(content []byte) ([][]string, error) {
	text := DecodeText(content)
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if first, _, _ := strings.Cut(text, "\n"); strings.Count(first, ";") > strings.Count(first, ",") {
		reader.Comma = ';'
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return normalizeRows(rows), nil
}

// readHTMLTable reads the largest <table>. Several banks export "xls" files
// that are really HTML.
func readHTMLTable(content []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(DecodeText(content)))
	if err != nil {
		return nil, err
	}

	var best [][]string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := [][]string{}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := []string{}
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cell.Text())
			})
			rows = append(rows, cells)
		})
		if len(rows) > len(best) {
			best = rows
		}
	})
	if best == nil {
		return nil, errors.New("html: no table found")
	}
	return normalizeRows(best), nil
}

func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<table")
}

func normalizeRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, strings.TrimSpace(strings.ReplaceAll(c, "\u00a0", " ")))
		}
		out = append(out, cells)
	}
	return out
}
