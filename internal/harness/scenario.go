package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance test case: an input block, the
// dialect to render under, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name for golden scenarios.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the block body to transform, inline in the scenario.
	// Exactly one of Source and SourceFile must be set.
	Source string `yaml:"source,omitempty"`

	// SourceFile is a path to the block body, relative to the scenario
	// file location.
	SourceFile string `yaml:"source_file,omitempty"`

	// Dialect is an optional path to a dialect CUE file, relative to
	// the scenario file location. Empty selects the built-in default.
	Dialect string `yaml:"dialect,omitempty"`

	// Expect specifies the expected outcome. A nil clause means the
	// transform must succeed with no warnings.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Golden enables canonical-JSON snapshot comparison of the result
	// against testdata/golden/{Name}.golden.
	Golden bool `yaml:"golden,omitempty"`
}

// ExpectClause specifies the expected transform outcome.
type ExpectClause struct {
	// ErrorCode is the expected fatal error code (e.g. "SYNTAX_ERROR",
	// "UNRESOLVED_REFERENCE"). Empty means the transform must succeed.
	ErrorCode string `yaml:"error_code,omitempty"`

	// Warnings lists substrings that must each appear in some warning.
	// The count must match exactly: len(Warnings) warnings expected.
	Warnings []string `yaml:"warnings,omitempty"`
}

// Known error codes a scenario may expect.
var knownErrorCodes = map[string]bool{
	"SYNTAX_ERROR":         true,
	"DIRECTION_MISMATCH":   true,
	"DUPLICATE_PATTERN":    true,
	"UNSUPPORTED_CONTEXT":  true,
	"UNRESOLVED_REFERENCE": true,
}

// LoadScenario reads and parses a scenario YAML file. Relative
// source_file and dialect paths are resolved against the scenario
// file's directory.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve referenced paths relative to the scenario file BEFORE validation
	base := filepath.Dir(path)
	if scenario.SourceFile != "" && !filepath.IsAbs(scenario.SourceFile) {
		scenario.SourceFile = filepath.Join(base, scenario.SourceFile)
	}
	if scenario.Dialect != "" && !filepath.IsAbs(scenario.Dialect) {
		scenario.Dialect = filepath.Join(base, scenario.Dialect)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by
// file name.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Source == "" && s.SourceFile == "" {
		return fmt.Errorf("one of source or source_file is required")
	}
	if s.Source != "" && s.SourceFile != "" {
		return fmt.Errorf("source and source_file are mutually exclusive")
	}

	if s.SourceFile != "" {
		if _, err := os.Stat(s.SourceFile); os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", s.SourceFile)
		}
	}
	if s.Dialect != "" {
		if _, err := os.Stat(s.Dialect); os.IsNotExist(err) {
			return fmt.Errorf("dialect file not found: %s", s.Dialect)
		}
	}

	if s.Expect != nil && s.Expect.ErrorCode != "" {
		if !knownErrorCodes[s.Expect.ErrorCode] {
			return fmt.Errorf("unknown error_code %q", s.Expect.ErrorCode)
		}
		if len(s.Expect.Warnings) > 0 {
			return fmt.Errorf("error_code and warnings are mutually exclusive")
		}
		if s.Golden {
			return fmt.Errorf("golden scenarios cannot expect an error")
		}
	}

	return nil
}

// sourceText returns the scenario's block body, reading SourceFile
// when set.
func (s *Scenario) sourceText() (string, string, error) {
	if s.SourceFile != "" {
		data, err := os.ReadFile(s.SourceFile)
		if err != nil {
			return "", "", fmt.Errorf("reading source file: %w", err)
		}
		return string(data), s.SourceFile, nil
	}
	return s.Source, s.Name, nil
}
