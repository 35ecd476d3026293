package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rechazos/internal"
	"rechazos/internal/classify"
	"rechazos/internal/util"
)

var ErrSchemaMismatch = errors.New("output columns do not match the expected schema")

// OutputColumns is the fixed column order of every reconciled record set.
var OutputColumns = []string{
	"identifier", "name", "amount", "reference", "status", "rejection_code", "rejection_description",
}

// OutputHeaders are the spreadsheet labels of OutputColumns, in the same
// order.
var OutputHeaders = []string{
	"dni/cex", "nombre", "importe", "Referencia", "Estado", "Codigo de Rechazo", "Descripcion de Rechazo",
}

// SubmissionColumns is the projection sent to the payment processor.
var SubmissionColumns = []string{"reference", "status", "rejection_code", "rejection_description"}

type Assembly struct {
	Records   []internal.TransactionRecord
	Count     int
	AmountSum decimal.Decimal
}

func emptyAssembly() Assembly {
	return Assembly{Records: []internal.TransactionRecord{}, AmountSum: decimal.Zero}
}

// ValidateColumns accepts either the column keys or the spreadsheet labels,
// in exactly the fixed order.
func ValidateColumns(columns []string) error {
	if equalColumns(columns, OutputColumns) || equalColumns(columns, OutputHeaders) {
		return nil
	}
	return fmt.Errorf("%w: got [%s], want [%s]", ErrSchemaMismatch, strings.Join(columns, ", "), strings.Join(OutputColumns, ", "))
}

func equalColumns(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

type Assembler struct {
	Codes classify.CodeTable
}

// Assemble checks the column contract, rederives every description from its
// code and totals the records. Count and sum are informational.
func (a Assembler) Assemble(columns []string, records []internal.TransactionRecord) (Assembly, error) {
	if err := ValidateColumns(columns); err != nil {
		return Assembly{}, err
	}

	out := emptyAssembly()
	for i, r := range records {
		r.RejectionCode = strings.ToUpper(strings.TrimSpace(r.RejectionCode))
		code, err := a.Codes.Lookup(r.RejectionCode)
		if err != nil {
			return Assembly{}, fmt.Errorf("record %d (%s): %w", i+1, r.Identifier, err)
		}
		r.RejectionDescription = code.Description
		if r.Status == "" {
			r.Status = internal.StatusRejected
		}
		out.Records = append(out.Records, r)
		out.AmountSum = out.AmountSum.Add(r.Amount)
	}
	out.Count = len(out.Records)
	return out, nil
}

// RecordsFromTable reads back a downloaded record table, typically after an
// operator edited codes by hand. The header must match the contract.
func RecordsFromTable(header []string, rows [][]string) ([]internal.TransactionRecord, error) {
	if err := ValidateColumns(header); err != nil {
		return nil, err
	}

	out := []internal.TransactionRecord{}
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		status := internal.Status(util.Cell(row, 4))
		if status == "" {
			status = internal.StatusRejected
		}
		out = append(out, internal.TransactionRecord{
			Identifier:           util.Cell(row, 0),
			Name:                 util.Cell(row, 1),
			Amount:               util.NormalizeAmount(util.Cell(row, 2)),
			Reference:            util.Cell(row, 3),
			Status:               status,
			RejectionCode:        util.Cell(row, 5),
			RejectionDescription: util.Cell(row, 6),
			SourceLine:           i + 1,
		})
	}
	return out, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if !util.IsBlank(c) {
			return false
		}
	}
	return true
}
