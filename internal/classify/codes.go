package classify

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownCode = errors.New("unknown rejection code")

// CodeTable is a closed rejection code -> description mapping.
type CodeTable struct {
	entries map[string]string
}

type Code struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
}

var BaseCodes = []Code{
	{Code: "R001", Description: "DOCUMENTO ERRADO"},
	{Code: "R002", Description: "CUENTA INVALIDA"},
	{Code: "R007", Description: "RECHAZO POR CCI"},
}

const (
	CodeNotHolder        = "R016"
	CodeNotHolderDescrip = "CLIENTE NO TITULAR DE LA CUENTA"
)

func NewCodeTable(codes []Code) (CodeTable, error) {
	t := CodeTable{entries: make(map[string]string, len(codes))}
	for _, c := range codes {
		if c.Code == "" {
			return CodeTable{}, errors.New("empty rejection code")
		}
		if prev, ok := t.entries[c.Code]; ok && prev != c.Description {
			return CodeTable{}, fmt.Errorf("rejection code %s has two descriptions", c.Code)
		}
		t.entries[c.Code] = c.Description
	}
	return t, nil
}

func MustCodeTable(codes []Code) CodeTable {
	t, err := NewCodeTable(codes)
	if err != nil {
		panic(err)
	}
	return t
}

func (t CodeTable) Describe(code string) (string, bool) {
	desc, ok := t.entries[code]
	return desc, ok
}

func (t CodeTable) Has(code string) bool {
	_, ok := t.entries[code]
	return ok
}

// Lookup is Describe as a Code, or ErrUnknownCode.
func (t CodeTable) Lookup(code string) (Code, error) {
	desc, ok := t.entries[code]
	if !ok {
		return Code{}, fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
	return Code{Code: code, Description: desc}, nil
}

func (t CodeTable) Codes() []Code {
	out := make([]Code, 0, len(t.entries))
	for code, desc := range t.entries {
		out = append(out, Code{Code: code, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
