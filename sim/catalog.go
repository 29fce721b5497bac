package sim

import (
	_ "embed"
	"fmt"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var rawScenarios []byte

var catalog []Scenario

func init() {
	var c struct {
		Elements []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(rawScenarios, &c); err != nil {
		panic(err)
	}
	catalog = c.Elements
}

// Catalog returns the built-in scenarios.
func Catalog() []Scenario {
	return catalog
}

// FindScenario looks up a built-in scenario by name.
func FindScenario(name string) (*Scenario, error) {
	i := slices.IndexFunc(catalog, func(sc Scenario) bool { return sc.Name == name })
	if i < 0 {
		return nil, fmt.Errorf("sim: unknown scenario %q", name)
	}
	sc := catalog[i]
	return &sc, nil
}
