// Package variant describes how each bank's documents are reconciled. A
// variant is data, not code: the pipeline engine runs every variant through
// the same stages.
package variant

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"rechazos/internal/classify"
	"rechazos/internal/fixedwidth"
)

type Strategy string

const (
	StrategyPositional Strategy = "positional"
	StrategyIdentifier Strategy = "identifier"
	StrategyColumn     Strategy = "column"
)

type Target string

const (
	TargetLines Target = "lines"
	TargetTable Target = "table"
)

type AmountMode string

const (
	AmountDecimal AmountMode = "decimal"
	AmountCents   AmountMode = "cents"
)

type ObservationSource string

const (
	ObservationNone     ObservationSource = "none"
	ObservationRow      ObservationSource = "row"
	ObservationPDFLine  ObservationSource = "pdf-line"
	ObservationPDFPairs ObservationSource = "pdf-pairs"
)

type JoinKey string

const (
	JoinByLine       JoinKey = "line"
	JoinByIdentifier JoinKey = "identifier"
)

const DefaultIdentifierPattern = `\b\d{6,9}\b`

type Selection struct {
	Strategy Strategy `yaml:"strategy"`
	Target   Target   `yaml:"target"`
	// Pattern must have one capture group of digits for positional
	// selection; for identifier selection the whole match is the id.
	Pattern    string `yaml:"pattern"`
	Offset     int    `yaml:"offset"`
	Multiplier int    `yaml:"multiplier"`
	// Column is the 0-based column tested by the column strategy.
	Column int `yaml:"column"`
}

// Columns are 0-based table positions; -1 means absent.
type Columns struct {
	Identifier   int `yaml:"identifier"`
	Name         int `yaml:"name"`
	NameFallback int `yaml:"name_fallback"`
	Amount       int `yaml:"amount"`
	Reference    int `yaml:"reference"`
	Observation  int `yaml:"observation"`
}

type ErrorReport struct {
	HeaderRows        int     `yaml:"header_rows"`
	Join              JoinKey `yaml:"join"`
	KeyColumn         int     `yaml:"key_column"`
	ObservationColumn int     `yaml:"observation_column"`
}

type Config struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Selection  Selection         `yaml:"selection"`
	Layout     fixedwidth.Layout `yaml:"layout"`
	Columns    Columns           `yaml:"columns"`
	HeaderRows int               `yaml:"header_rows"`
	AmountMode AmountMode        `yaml:"amount_mode"`

	Observation ObservationSource `yaml:"observation"`
	// ObservationHeader locates the observation column by folded header
	// text when Columns.Observation is absent.
	ObservationHeader string               `yaml:"observation_header"`
	MarkerOrder       classify.MarkerOrder `yaml:"marker_order"`

	Codes       []classify.Code        `yaml:"codes"`
	Rules       []classify.KeywordRule `yaml:"rules"`
	Fallback    classify.Code          `yaml:"fallback"`
	DefaultCode string                 `yaml:"default_code"`

	ErrorReport *ErrorReport `yaml:"error_report"`
}

func (c Config) CodeTable() (classify.CodeTable, error) {
	codes := append([]classify.Code{}, c.Codes...)
	if c.Fallback.Code != "" {
		codes = append(codes, c.Fallback)
	}
	return classify.NewCodeTable(codes)
}

// Validate checks everything the engine relies on before a run starts.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("variant without name")
	}
	table, err := c.CodeTable()
	if err != nil {
		return fmt.Errorf("variant %s: %w", c.Name, err)
	}
	switch c.Selection.Strategy {
	case StrategyPositional:
		re, err := regexp.Compile(c.Selection.Pattern)
		if err != nil {
			return fmt.Errorf("variant %s: selection pattern: %w", c.Name, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("variant %s: positional pattern needs a capture group", c.Name)
		}
	case StrategyIdentifier:
		if _, err := regexp.Compile(c.identifierPattern()); err != nil {
			return fmt.Errorf("variant %s: identifier pattern: %w", c.Name, err)
		}
	case StrategyColumn:
		if c.Selection.Column < 0 {
			return fmt.Errorf("variant %s: column strategy needs a column", c.Name)
		}
	default:
		return fmt.Errorf("variant %s: unsupported selection strategy %q", c.Name, c.Selection.Strategy)
	}
	if c.Selection.Target != TargetLines && c.Selection.Target != TargetTable {
		return fmt.Errorf("variant %s: unsupported selection target %q", c.Name, c.Selection.Target)
	}
	if c.Selection.Target == TargetLines {
		if f, ok := c.Layout.Field("identifier"); !ok || f.IsZero() {
			return fmt.Errorf("variant %s: line target needs an identifier field in its layout", c.Name)
		}
	}
	for _, rule := range c.Rules {
		if !table.Has(rule.Code) {
			return fmt.Errorf("variant %s: rule code %s is not in the code table", c.Name, rule.Code)
		}
	}
	if c.DefaultCode != "" && !table.Has(c.DefaultCode) {
		return fmt.Errorf("variant %s: default code %s is not in the code table", c.Name, c.DefaultCode)
	}
	if c.ErrorReport != nil && c.ErrorReport.Join != JoinByLine && c.ErrorReport.Join != JoinByIdentifier {
		return fmt.Errorf("variant %s: unsupported error report join %q", c.Name, c.ErrorReport.Join)
	}
	return nil
}

func (c Config) IdentifierPattern() string {
	return c.identifierPattern()
}

func (c Config) identifierPattern() string {
	if strings.TrimSpace(c.Selection.Pattern) == "" {
		return DefaultIdentifierPattern
	}
	return c.Selection.Pattern
}

// Registry holds the variants available to a run, keyed by name.
type Registry struct {
	byName map[string]Config
}

func NewRegistry(configs ...Config) (*Registry, error) {
	r := &Registry{byName: map[string]Config{}}
	for _, c := range configs {
		if err := r.Put(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Put(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.byName[strings.ToLower(c.Name)] = c
	return nil
}

func (r *Registry) Get(name string) (Config, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, fmt.Errorf("unknown variant: %s", name)
	}
	return c, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
