package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// RunWithGolden executes a scenario and compares the result against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution or an expectation fails. Test
// failure (via goldie) occurs if the snapshot doesn't match the golden
// file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares a result against the golden file named by
// scenarioName, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := ir.MarshalCanonical(result.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)

	return nil
}

// toCanonicalMap converts a Result to a map[string]any for canonical
// JSON serialization. Warnings are always present so snapshots keep a
// stable shape.
func (r *Result) toCanonicalMap() map[string]any {
	warnings := make([]any, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = w
	}

	return map[string]any{
		"scenario_name": r.ScenarioName,
		"output":        r.Output,
		"warnings":      warnings,
		"asm_blocks":    r.AsmBlocks,
		"declarations":  r.Declarations,
	}
}
