package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gaoxiaojun/rusty-asm/internal/dialect"
	"github.com/gaoxiaojun/rusty-asm/internal/engine"
	"github.com/gaoxiaojun/rusty-asm/internal/ir"
	"github.com/gaoxiaojun/rusty-asm/internal/parser"
)

// Result captures one scenario execution.
type Result struct {
	ScenarioName string

	// Output is the rewritten block; empty when the transform failed.
	Output string

	// ErrorCode is the fatal error code, or "" on success.
	ErrorCode string

	// ErrorMessage is the rendered error, or "" on success.
	ErrorMessage string

	// Warnings are the rendered diagnostics, in emission order.
	Warnings []string

	AsmBlocks    int
	Declarations int
}

// Run executes a scenario and verifies its expectations. The returned
// error is non-nil when the scenario infrastructure fails (unreadable
// inputs) or when an expectation is violated; the Result is returned in
// both cases when execution got far enough to produce one.
func Run(scenario *Scenario) (*Result, error) {
	source, name, err := scenario.sourceText()
	if err != nil {
		return nil, err
	}

	spec := ir.DefaultDialect()
	if scenario.Dialect != "" {
		spec, err = dialect.Load(scenario.Dialect)
		if err != nil {
			return nil, fmt.Errorf("loading dialect: %w", err)
		}
	}

	result := &Result{ScenarioName: scenario.Name}

	eng := engine.New(spec)
	res, err := eng.TransformSource(name, source)
	if err != nil {
		result.ErrorCode = errorCode(err)
		result.ErrorMessage = err.Error()
		return result, checkExpectations(scenario, result)
	}

	result.Output = res.Output
	result.AsmBlocks = res.AsmBlocks
	result.Declarations = res.Declarations
	result.Warnings = make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	return result, checkExpectations(scenario, result)
}

// errorCode extracts the scenario-facing code from a transform failure.
func errorCode(err error) string {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	var te *engine.TransformError
	if errors.As(err, &te) {
		return string(te.Code)
	}
	return "UNKNOWN"
}

// checkExpectations verifies the result against the scenario's expect
// clause. A nil clause demands a clean transform with no warnings.
func checkExpectations(scenario *Scenario, result *Result) error {
	var expect ExpectClause
	if scenario.Expect != nil {
		expect = *scenario.Expect
	}

	if expect.ErrorCode != "" {
		if result.ErrorCode != expect.ErrorCode {
			return fmt.Errorf("scenario %s: expected error %s, got %s (%s)",
				scenario.Name, expect.ErrorCode, orNone(result.ErrorCode), result.ErrorMessage)
		}
		return nil
	}

	if result.ErrorCode != "" {
		return fmt.Errorf("scenario %s: unexpected error %s: %s",
			scenario.Name, result.ErrorCode, result.ErrorMessage)
	}

	if len(result.Warnings) != len(expect.Warnings) {
		return fmt.Errorf("scenario %s: expected %d warning(s), got %d: %v",
			scenario.Name, len(expect.Warnings), len(result.Warnings), result.Warnings)
	}
	for _, want := range expect.Warnings {
		if !warningsContain(result.Warnings, want) {
			return fmt.Errorf("scenario %s: no warning contains %q; got %v",
				scenario.Name, want, result.Warnings)
		}
	}

	return nil
}

func warningsContain(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func orNone(code string) string {
	if code == "" {
		return "none"
	}
	return code
}
