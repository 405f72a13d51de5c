package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a replay test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Model is the path to the model file (.cue, .pnml, .yaml).
	// Relative paths are resolved against the scenario file location.
	Model string `yaml:"model"`

	// Net selects one net of a multi-net model.
	Net string `yaml:"net,omitempty"`

	// SilentMarker overrides the default silent marker.
	SilentMarker string `yaml:"silent_marker,omitempty"`

	// Session is an optional fixed session id for deterministic tests.
	// If empty, defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Traces are inline activity sequences; case ids are their 1-based
	// positions. Exactly one of Traces and Log must be set.
	Traces [][]string `yaml:"traces,omitempty"`

	// Log is the path to a .csv or .xes event log, resolved like Model.
	Log string `yaml:"log,omitempty"`

	// Expect holds the conformance numbers the replay must produce.
	Expect Expect `yaml:"expect"`
}

// Expect lists expected replay outcomes. Nil fields are not checked.
type Expect struct {
	Fitness       *float64       `yaml:"fitness,omitempty"`
	Consumed      *int           `yaml:"consumed,omitempty"`
	Produced      *int           `yaml:"produced,omitempty"`
	Missing       map[string]int `yaml:"missing,omitempty"`
	Remaining     map[string]int `yaml:"remaining,omitempty"`
	FittingTraces *int           `yaml:"fitting_traces,omitempty"`
	Skipped       []string       `yaml:"skipped,omitempty"`
}

// empty reports whether no expectation is set.
func (e Expect) empty() bool {
	return e.Fitness == nil && e.Consumed == nil && e.Produced == nil &&
		e.Missing == nil && e.Remaining == nil && e.FittingTraces == nil && e.Skipped == nil
}

// LoadScenario reads and parses a scenario YAML file, resolving model and
// log paths relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expected:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Model = resolve(base, scenario.Model)
	scenario.Log = resolve(base, scenario.Log)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string)
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("scenario name %q used by both %s and %s", s.Name, prev, p)
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if _, err := os.Stat(s.Model); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.Model)
	}

	switch {
	case len(s.Traces) == 0 && s.Log == "":
		return fmt.Errorf("one of traces or log is required")
	case len(s.Traces) > 0 && s.Log != "":
		return fmt.Errorf("traces and log are mutually exclusive")
	}
	if s.Log != "" {
		if _, err := os.Stat(s.Log); os.IsNotExist(err) {
			return fmt.Errorf("log file not found: %s", s.Log)
		}
	}

	if s.Expect.empty() {
		return fmt.Errorf("expect must set at least one field")
	}
	if f := s.Expect.Fitness; f != nil && (*f < 0 || *f > 1) {
		return fmt.Errorf("expect.fitness must be within [0, 1], got %v", *f)
	}
	for _, field := range []struct {
		name string
		v    *int
	}{
		{"consumed", s.Expect.Consumed},
		{"produced", s.Expect.Produced},
		{"fitting_traces", s.Expect.FittingTraces},
	} {
		if field.v != nil && *field.v < 0 {
			return fmt.Errorf("expect.%s must be non-negative", field.name)
		}
	}
	return nil
}
