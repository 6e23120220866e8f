package signal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is one declarative signal rule from the definitions file.
// All conditions must hold for the rule to score at all.
type Definition struct {
	Description string         `yaml:"description"`
	Conditions  map[string]any `yaml:"conditions"`
	Score       ScoreSpec      `yaml:"score"`
	TimeDecay   *DecaySpec     `yaml:"time_decay"`
}

type ScoreSpec struct {
	Base       int    `yaml:"base"`
	Multiplier string `yaml:"multiplier"`
	Max        int    `yaml:"max"`
}

type DecaySpec struct {
	Enabled      bool    `yaml:"enabled"`
	HalfLifeDays float64 `yaml:"half_life_days"`
}

type namedDefinition struct {
	name string
	def  Definition
}

// loadDefinitions reads the rule file and returns the definitions in file
// order. Primary-intent tie-breaking depends on that order, so the YAML
// mapping is walked node by node instead of decoded into a Go map.
func loadDefinitions(path string) ([]namedDefinition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signal definitions: %w", err)
	}

	var doc struct {
		Signals yaml.Node `yaml:"signals"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse signal definitions: %w", err)
	}
	if doc.Signals.Kind == 0 {
		return nil, fmt.Errorf("signal definitions file %s has no signals section", path)
	}
	if doc.Signals.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("signals section must be a mapping")
	}

	defs := make([]namedDefinition, 0, len(doc.Signals.Content)/2)
	for i := 0; i+1 < len(doc.Signals.Content); i += 2 {
		keyNode := doc.Signals.Content[i]
		valNode := doc.Signals.Content[i+1]
		var def Definition
		if err := valNode.Decode(&def); err != nil {
			return nil, fmt.Errorf("parse signal %q: %w", keyNode.Value, err)
		}
		defs = append(defs, namedDefinition{name: keyNode.Value, def: def})
	}
	return defs, nil
}
