package sim

import (
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Scenario describes a reproducible interrupt workload: the sources to
// declare, their priority levels, and an ordered list of trigger events.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Sources     []SourceSpec `yaml:"sources"`
	Events      []Event      `yaml:"events"`
}

// SourceSpec declares one interrupt source.
type SourceSpec struct {
	Name     string `yaml:"name"`
	Priority string `yaml:"priority"`
}

// Event triggers a source. Repeat of 0 means once. Preempt names sources
// raised from inside the fired handler while it holds the shared lock,
// modeling a higher-priority interrupt arriving mid-update; it is only
// meaningful on low-priority sources.
type Event struct {
	Fire    string   `yaml:"fire"`
	Repeat  int      `yaml:"repeat,omitempty"`
	Preempt []string `yaml:"preempt,omitempty"`
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sim: read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("sim: parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks internal consistency.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("sim: scenario has no name")
	}
	if len(sc.Sources) == 0 {
		return fmt.Errorf("sim: scenario %q declares no sources", sc.Name)
	}
	names := make([]string, 0, len(sc.Sources))
	for _, src := range sc.Sources {
		if src.Name == "" {
			return fmt.Errorf("sim: scenario %q: source with empty name", sc.Name)
		}
		if slices.Contains(names, src.Name) {
			return fmt.Errorf("sim: scenario %q: duplicate source %q", sc.Name, src.Name)
		}
		if _, err := ParsePriority(src.Priority); err != nil {
			return fmt.Errorf("sim: scenario %q: source %q: %w", sc.Name, src.Name, err)
		}
		names = append(names, src.Name)
	}
	for i, ev := range sc.Events {
		if !slices.Contains(names, ev.Fire) {
			return fmt.Errorf("sim: scenario %q: event %d fires undeclared source %q", sc.Name, i, ev.Fire)
		}
		if ev.Repeat < 0 {
			return fmt.Errorf("sim: scenario %q: event %d has negative repeat", sc.Name, i)
		}
		if len(ev.Preempt) > 0 && sc.priorityOf(ev.Fire) != Low {
			return fmt.Errorf("sim: scenario %q: event %d: preempt requires a low-priority source", sc.Name, i)
		}
		for _, p := range ev.Preempt {
			if !slices.Contains(names, p) {
				return fmt.Errorf("sim: scenario %q: event %d preempts undeclared source %q", sc.Name, i, p)
			}
		}
	}
	return nil
}

// SourceNames returns the declared source names in order.
func (sc *Scenario) SourceNames() []string {
	names := make([]string, len(sc.Sources))
	for i, src := range sc.Sources {
		names[i] = src.Name
	}
	return names
}

// Levels returns the per-source priority map. The scenario must have been
// validated.
func (sc *Scenario) Levels() map[string]Priority {
	levels := make(map[string]Priority, len(sc.Sources))
	for _, src := range sc.Sources {
		p, err := ParsePriority(src.Priority)
		if err != nil {
			panic(err)
		}
		levels[src.Name] = p
	}
	return levels
}

func (sc *Scenario) priorityOf(name string) Priority {
	for _, src := range sc.Sources {
		if src.Name == name {
			p, _ := ParsePriority(src.Priority)
			return p
		}
	}
	return Low
}
