package variant

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	Variants []yaml.Node `yaml:"variants"`
}

type overrideHead struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`
}

// LoadFile applies a YAML variants file on top of r. An entry that names an
// existing variant, or a `base`, starts from that variant and only replaces
// the keys it sets.
func LoadFile(path string, r *Registry) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Load(blob, r)
}

func Load(blob []byte, r *Registry) error {
	var file overrideFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return fmt.Errorf("variants file: %w", err)
	}

	for i := range file.Variants {
		node := &file.Variants[i]
		var head overrideHead
		if err := node.Decode(&head); err != nil {
			return fmt.Errorf("variants file entry %d: %w", i+1, err)
		}
		name := strings.ToLower(strings.TrimSpace(head.Name))
		base := strings.ToLower(strings.TrimSpace(head.Base))
		if name == "" {
			name = base
		}
		if name == "" {
			return fmt.Errorf("variants file entry %d: missing name", i+1)
		}

		cfg := Config{Columns: Columns{Identifier: -1, Name: -1, NameFallback: -1, Amount: -1, Reference: -1, Observation: -1}}
		if base == "" {
			base = name
		}
		if existing, err := r.Get(base); err == nil {
			cfg = existing
			if cfg.ErrorReport != nil {
				report := *cfg.ErrorReport
				cfg.ErrorReport = &report
			}
		} else if head.Base != "" {
			return fmt.Errorf("variants file entry %s: %w", name, err)
		}

		if err := node.Decode(&cfg); err != nil {
			return fmt.Errorf("variants file entry %s: %w", name, err)
		}
		cfg.Name = name
		if err := r.Put(cfg); err != nil {
			return err
		}
	}
	return nil
}
