package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"rechazos/internal"
	"rechazos/internal/sources"
)

const SheetName = "Rechazos"

var submissionHeaders = []string{"Referencia", "Estado", "Codigo de Rechazo", "Descripcion de Rechazo"}

// WriteAssemblyXLSX writes the full record table for download.
func WriteAssemblyXLSX(a Assembly, outputPath string) error {
	f, err := newRechazosFile(OutputHeaders)
	if err != nil {
		return err
	}
	defer f.Close()

	for i, r := range a.Records {
		row := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, value)
		}

		set(1, r.Identifier)
		set(2, r.Name)
		set(3, r.Amount.InexactFloat64())
		set(4, r.Reference)
		set(5, string(r.Status))
		set(6, r.RejectionCode)
		set(7, r.RejectionDescription)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// SubmissionXLSX serializes the narrow submission projection of a.
func SubmissionXLSX(a Assembly) ([]byte, error) {
	f, err := newRechazosFile(submissionHeaders)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, r := range a.Records {
		row := i + 2
		values := []any{r.Reference, string(r.Status), r.RejectionCode, r.RejectionDescription}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
	}

	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadAssemblyXLSX reads a record table previously written by
// WriteAssemblyXLSX, possibly edited by hand.
func ReadAssemblyXLSX(content []byte) ([]internal.TransactionRecord, error) {
	rows, err := sources.ReadTable("rechazos.xlsx", content)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("xlsx: empty record table")
	}
	return RecordsFromTable(rows[0], rows[1:])
}

func newRechazosFile(headers []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	return f, nil
}
