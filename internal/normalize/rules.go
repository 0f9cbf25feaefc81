package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules is the extendable part of the normalizer: extra abbreviation
// expansions and legal-suffix patterns loaded from a YAML file, so the
// tables can grow without touching matching logic.
type Rules struct {
	Abbreviations []Rule   `yaml:"abbreviations"`
	Suffixes      []string `yaml:"suffixes"`
}

// LoadRules reads extra normalization rules from a YAML file.
// An empty path yields empty Rules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return Rules{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "normalize: read rules file %s", path)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, eris.Wrapf(err, "normalize: parse rules file %s", path)
	}

	return rules, nil
}

// FromConfig builds a Normalizer honoring an optional rules file.
func FromConfig(rulesFile string) (*Normalizer, error) {
	rules, err := LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}

	n, err := NewWithRules(rules)
	if err != nil {
		return nil, eris.Wrap(err, "normalize: compile rules")
	}
	return n, nil
}
