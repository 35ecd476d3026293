package variant

import (
	"rechazos/internal/classify"
	"rechazos/internal/fixedwidth"
)

var noTitularKeywords = []string{
	"no es titular",
	"beneficiario no",
	"cliente no titular",
	"no titular",
	"continuar",
	"puedes continuar",
	"si deseas, puedes continuar",
}

// bcpRules read the free text that follows a "Registro N" token.
var bcpRules = []classify.KeywordRule{
	{Code: "R001", Keywords: []string{"doc. no corresponde", "documento"}},
	{Code: "R007", Keywords: []string{"cci"}},
	{Code: "R002", Keywords: []string{"cuenta"}},
}

var bcpTableColumns = Columns{Identifier: 0, Name: 3, NameFallback: 1, Amount: 12, Reference: 7, Observation: -1}

func BCPPreTXT() Config {
	return Config{
		Name:        "bcp-pre-txt",
		Description: "BCP pre-validation: PDF 'Registro N' tokens point at every other line of the payroll TXT",
		Selection: Selection{
			Strategy:   StrategyPositional,
			Target:     TargetLines,
			Pattern:    `Registro\s+(\d{1,5})`,
			Multiplier: 2,
		},
		Layout: fixedwidth.Layout{
			{Name: "identifier", Start: 25, End: 33},
			{Name: "name", Start: 40, End: 85},
			{Name: "reference", Start: 115, End: 126},
			{Name: "amount", Start: 186, End: 195},
		},
		AmountMode:  AmountCents,
		Observation: ObservationPDFLine,
		MarkerOrder: classify.MarkersFirst,
		Codes:       classify.BaseCodes,
		Rules:       bcpRules,
		DefaultCode: "R002",
		ErrorReport: &ErrorReport{HeaderRows: 1, Join: JoinByLine, KeyColumn: 0, ObservationColumn: 1},
	}
}

func BCPPreXLSX() Config {
	return Config{
		Name:        "bcp-pre-xlsx",
		Description: "BCP pre-validation: PDF 'Registro N' tokens point at rows of the bulk spreadsheet",
		Selection: Selection{
			Strategy:   StrategyPositional,
			Target:     TargetTable,
			Pattern:    `Registro\s+(\d+)`,
			Offset:     1,
			Multiplier: 1,
		},
		Columns:     bcpTableColumns,
		HeaderRows:  1,
		AmountMode:  AmountDecimal,
		Observation: ObservationPDFLine,
		MarkerOrder: classify.MarkersFirst,
		Codes:       classify.BaseCodes,
		Rules:       bcpRules,
		DefaultCode: "R002",
	}
}

func BCPPostXLSX() Config {
	return Config{
		Name:        "bcp-post-xlsx",
		Description: "BCP post-processing: document numbers listed in the PDF select spreadsheet rows",
		Selection: Selection{
			Strategy: StrategyIdentifier,
			Target:   TargetTable,
			Pattern:  DefaultIdentifierPattern,
		},
		Columns:     bcpTableColumns,
		HeaderRows:  1,
		AmountMode:  AmountDecimal,
		Observation: ObservationNone,
		Codes:       classify.BaseCodes,
		DefaultCode: "R001",
	}
}

func IBK() Config {
	return Config{
		Name:        "ibk",
		Description: "Interbank rejection report: rows with an observation are rejected",
		Selection: Selection{
			Strategy: StrategyColumn,
			Target:   TargetTable,
			Column:   14,
		},
		Columns:     Columns{Identifier: 4, Name: 5, NameFallback: -1, Amount: 13, Reference: 7, Observation: 14},
		HeaderRows:  12,
		AmountMode:  AmountDecimal,
		Observation: ObservationRow,
		Codes: append(append([]classify.Code{}, classify.BaseCodes...),
			classify.Code{Code: classify.CodeNotHolder, Description: classify.CodeNotHolderDescrip}),
		Rules:       []classify.KeywordRule{{Code: classify.CodeNotHolder, Keywords: noTitularKeywords}},
		Fallback:    classify.Code{Code: "R002", Description: "CUENTA INVALIDA"},
		DefaultCode: "R002",
	}
}

func BBVA() Config {
	return Config{
		Name:        "bbva",
		Description: "BBVA: PDF document numbers select rows, the 'Situación' text decides the code",
		Selection: Selection{
			Strategy: StrategyIdentifier,
			Target:   TargetTable,
			Pattern:  DefaultIdentifierPattern,
		},
		Columns:           bcpTableColumns,
		HeaderRows:        1,
		AmountMode:        AmountDecimal,
		Observation:       ObservationPDFPairs,
		ObservationHeader: "situacion",
		MarkerOrder:       classify.KeywordsFirst,
		Codes:             classify.BaseCodes,
		Rules: []classify.KeywordRule{
			{Code: "R001", Keywords: []string{"DOC. NO CORRESPONDE"}},
			{Code: "R007", Keywords: []string{"REGISTRO CON ERRORES", "CUENTA NO ENCONTRADA"}},
			{Code: "R002", Keywords: []string{"CUENTA INEXISTENTE", "CTA C/ERR NO IDENTIF"}},
		},
		Fallback:    classify.Code{Code: "R002", Description: "CUENTA INVALIDA"},
		DefaultCode: "R002",
		ErrorReport: &ErrorReport{HeaderRows: 1, Join: JoinByIdentifier, KeyColumn: 0, ObservationColumn: 1},
	}
}

func Builtin() []Config {
	return []Config{BCPPreTXT(), BCPPreXLSX(), BCPPostXLSX(), IBK(), BBVA()}
}

func DefaultRegistry() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}
