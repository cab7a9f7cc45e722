package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, _, err := execute(t, "", "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestTrace_ListsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	path := writeSourceFile(t, simpleSource)

	_, _, err := execute(t, "", "rewrite", path, "--cache", dbPath)
	require.NoError(t, err)

	out, _, err := execute(t, "", "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "input.block")
	assert.Contains(t, out, "llvm")
	assert.Contains(t, out, "1 run(s), 0 failed")
}

func TestTrace_JSONFormat(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	path := writeSourceFile(t, simpleSource)

	_, _, err := execute(t, "", "rewrite", path, "--cache", dbPath)
	require.NoError(t, err)

	out, _, err := execute(t, "", "--format", "json", "trace", "--db", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_runs"])
	assert.Equal(t, float64(0), stats["failed"])
	assert.Equal(t, float64(1), stats["asm_blocks"])
}

func TestTrace_SingleRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	path := writeSourceFile(t, simpleSource)

	out, _, err := execute(t, "", "--format", "json", "rewrite", path, "--cache", dbPath)
	require.NoError(t, err)
	_ = out

	// Find the run id through the JSON trace
	out, _, err = execute(t, "", "--format", "json", "trace", "--db", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	runs := resp.Data.(map[string]interface{})["runs"].([]interface{})
	require.Len(t, runs, 1)
	runID := runs[0].(map[string]interface{})["id"].(string)

	out, _, err = execute(t, "", "trace", "--db", dbPath, "--run", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "input.block")
}

func TestTrace_UnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	out, _, err := execute(t, "", "trace", "--db", dbPath, "--run", "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestTrace_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "", "trace")
	require.Error(t, err)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "0190f6f2...deadbeef",
		truncateID("0190f6f2-1111-2222-3333-4444deadbeef"))
}
