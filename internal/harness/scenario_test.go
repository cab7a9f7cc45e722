package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenarioFile(t, `name: basic
description: A minimal scenario.
source: |
  let x: in("r") = 1;
  asm { "mov $x, $x" }
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "basic", s.Name)
	assert.Contains(t, s.Source, "asm {")
	assert.Nil(t, s.Expect)
	assert.False(t, s.Golden)
}

func TestLoadScenario_MissingName(t *testing.T) {
	path := writeScenarioFile(t, `description: No name.
source: "let x = 1;"
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_MissingSource(t *testing.T) {
	path := writeScenarioFile(t, `name: no-source
description: No input at all.
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source or source_file")
}

func TestLoadScenario_SourceAndSourceFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "input.block")
	require.NoError(t, os.WriteFile(srcPath, []byte("let x = 1;"), 0644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: both
description: Conflicting inputs.
source: "let x = 1;"
source_file: input.block
`), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoadScenario_ResolvesSourceFileRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input.block"), []byte("let x = 1;"), 0644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: relative
description: Source file resolved next to the scenario.
source_file: input.block
`), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "input.block"), s.SourceFile)

	source, _, err := s.sourceText()
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;", source)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	// "expects" is a typo for "expect" and must be rejected
	path := writeScenarioFile(t, `name: typo
description: Typo in field name.
source: "let x = 1;"
expects:
  error_code: SYNTAX_ERROR
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_UnknownErrorCode(t *testing.T) {
	path := writeScenarioFile(t, `name: bad-code
description: Unknown error code.
source: "let x = 1;"
expect:
  error_code: NOT_A_CODE
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown error_code")
}

func TestLoadScenario_GoldenCannotExpectError(t *testing.T) {
	path := writeScenarioFile(t, `name: golden-error
description: Golden with an expected error.
source: "let x = 1;"
golden: true
expect:
  error_code: SYNTAX_ERROR
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot expect an error")
}

func TestLoadScenarioDir(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(scenarios), 6)

	names := make(map[string]bool)
	for _, s := range scenarios {
		names[s.Name] = true
	}
	assert.True(t, names["swap-inout"])
	assert.True(t, names["unresolved-reference"])
}

func TestLoadScenarioDir_Empty(t *testing.T) {
	_, err := LoadScenarioDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files")
}
