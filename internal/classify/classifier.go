package classify

import (
	"strings"

	"rechazos/internal/util"
)

// KeywordRule assigns Code when any keyword occurs in the observation.
type KeywordRule struct {
	Code     string   `yaml:"code" json:"code"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

type Classification struct {
	Code        string
	Description string
	Matched     bool
}

// Classify walks rules in order and returns the first rule whose keyword is a
// case-insensitive substring of observation. Rule order decides between
// overlapping phrases. Without a hit the fallback is returned unchanged.
func Classify(observation string, rules []KeywordRule, table CodeTable, fallback Code) Classification {
	folded := util.FoldObservation(observation)
	if folded != "" {
		for _, rule := range rules {
			for _, kw := range rule.Keywords {
				kw = util.FoldObservation(kw)
				if kw == "" || !strings.Contains(folded, kw) {
					continue
				}
				desc, ok := table.Describe(rule.Code)
				if !ok {
					desc = fallback.Description
				}
				return Classification{Code: rule.Code, Description: desc, Matched: true}
			}
		}
	}
	return Classification{Code: fallback.Code, Description: fallback.Description}
}
