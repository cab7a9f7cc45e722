package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_CleanSource(t *testing.T) {
	out, _, err := execute(t, simpleSource, "check", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "1 asm block(s)")
	assert.Contains(t, out, "1 declaration(s)")
	// check never emits the rewritten source
	assert.NotContains(t, out, "asm!(")
}

func TestCheck_JSONFormat(t *testing.T) {
	out, _, err := execute(t, simpleSource, "--format", "json", "check", "-")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["asm_blocks"])
	assert.Equal(t, "<stdin>", data["source"])
	assert.Equal(t, "llvm", data["dialect"])
}

func TestCheck_ReportsWarnings(t *testing.T) {
	source := `let x: in("r") = 5;
asm { "nop" }
`
	out, _, err := execute(t, source, "check", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "x")
}

func TestCheck_UnresolvedReference(t *testing.T) {
	out, _, err := execute(t, `asm { "add $y, 1" }`, "check", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeUnresolved)
}

func TestCheck_DuplicatePattern(t *testing.T) {
	out, _, err := execute(t, `let (a, b): in("r") = pair;`, "check", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeDuplicatePattern)
}

func TestCheck_UnsupportedContext(t *testing.T) {
	out, _, err := execute(t, `if let x: in("r") = y { }`, "check", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeUnsupportedContext)
}
