package workflow

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// RuleConfig is the on-disk shape of a workflow rules override file.
type RuleConfig struct {
	Rules []RuleDefinition `yaml:"rules"`
}

type RuleDefinition struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// LoadRules reads a YAML rules file and compiles it. Every pattern must
// compile and expose at least one capture group, since group 1 is the id.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var config RuleConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if len(config.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}

	return compileDefinitions(config.Rules)
}

// compileDefinitions validates and compiles rule definitions.
func compileDefinitions(defs []RuleDefinition) ([]Rule, error) {
	rules := make([]Rule, 0, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("rule %d has no name", i)
		}
		pattern, err := regexp.Compile(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q has invalid pattern: %w", def.Name, err)
		}
		if pattern.NumSubexp() < 1 {
			return nil, fmt.Errorf("rule %q needs a capture group for the id", def.Name)
		}
		rules = append(rules, Rule{Name: def.Name, Pattern: pattern})
	}

	return rules, nil
}
