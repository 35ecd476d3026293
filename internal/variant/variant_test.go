package variant

import (
	"testing"

	"rechazos/internal/classify"
	"rechazos/internal/fixedwidth"
)

func TestBuiltinVariantsValidate(t *testing.T) {
	r := DefaultRegistry()
	names := r.Names()
	if len(names) != 5 {
		t.Fatalf("names=%v", names)
	}
	for _, name := range names {
		cfg, err := r.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	if _, err := r.Get(" BBVA "); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get("scotiabank"); err == nil {
		t.Fatal("expected unknown variant error")
	}
}

func TestBBVAKeepsRuleOrder(t *testing.T) {
	cfg := BBVA()
	got := []string{}
	for _, rule := range cfg.Rules {
		got = append(got, rule.Code)
	}
	if len(got) != 3 || got[0] != "R001" || got[1] != "R007" || got[2] != "R002" {
		t.Fatalf("order=%v", got)
	}
	if cfg.MarkerOrder != classify.KeywordsFirst || BCPPreTXT().MarkerOrder != classify.MarkersFirst {
		t.Fatal("marker order changed")
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := map[string]func(c *Config){
		"no capture group": func(c *Config) { c.Selection.Pattern = `Registro\s+\d+` },
		"bad strategy":     func(c *Config) { c.Selection.Strategy = "guess" },
		"rule outside table": func(c *Config) {
			c.Rules = []classify.KeywordRule{{Code: "R099", Keywords: []string{"x"}}}
		},
		"default outside table": func(c *Config) { c.DefaultCode = "R099" },
		"missing layout":        func(c *Config) { c.Layout = nil },
		"identifier without columns": func(c *Config) {
			c.Layout[0] = fixedwidth.FieldSpec{Name: "identifier"}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := BCPPreTXT()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadOverridesAndNewVariants(t *testing.T) {
	r := DefaultRegistry()
	blob := []byte(`
variants:
  - name: bcp-pre-txt
    selection:
      multiplier: 3
  - name: scotiabank
    base: bbva
    default_code: R007
  - name: plain
    description: column predicate over a csv
    selection:
      strategy: column
      target: table
      column: 2
    columns:
      identifier: 0
      name: 1
      observation: 2
    codes:
      - code: R002
        description: CUENTA INVALIDA
    default_code: R002
`)
	if err := Load(blob, r); err != nil {
		t.Fatal(err)
	}

	txt, _ := r.Get("bcp-pre-txt")
	if txt.Selection.Multiplier != 3 || txt.Selection.Pattern != BCPPreTXT().Selection.Pattern {
		t.Fatalf("override lost fields: %+v", txt.Selection)
	}
	scotia, err := r.Get("scotiabank")
	if err != nil {
		t.Fatal(err)
	}
	if scotia.DefaultCode != "R007" || len(scotia.Rules) != 3 {
		t.Fatalf("scotiabank=%+v", scotia)
	}
	plain, _ := r.Get("plain")
	if plain.Columns.Amount != -1 || plain.Columns.Observation != 2 {
		t.Fatalf("plain columns=%+v", plain.Columns)
	}
	bbva, _ := r.Get("bbva")
	if bbva.DefaultCode != "R002" {
		t.Fatal("base variant mutated by override")
	}
}

func TestLoadUnknownBase(t *testing.T) {
	err := Load([]byte("variants:\n  - name: x\n    base: nope\n"), DefaultRegistry())
	if err == nil {
		t.Fatal("expected unknown base error")
	}
}
