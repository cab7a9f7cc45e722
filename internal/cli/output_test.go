package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Error(t *testing.T) {
	err := NewExitError(ExitFailure, "transform failed")
	assert.Equal(t, "transform failed", err.Error())

	wrapped := WrapExitError(ExitCommandError, "failed to open cache", errors.New("no such file"))
	assert.Equal(t, "failed to open cache: no such file", wrapped.Error())
	assert.Equal(t, "no such file", wrapped.Unwrap().Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "cmd error")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "failure")))

	// Wrapped ExitError is still found
	wrapped := WrapExitError(ExitCommandError, "outer", NewExitError(ExitFailure, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestOutputFormatter_SuccessText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("all good"))
	assert.Equal(t, "all good\n", buf.String())
}

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]string{"k": "v"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error(ErrCodeSyntax, "bad constraint", nil))
	assert.Contains(t, buf.String(), "Error [E101]: bad constraint")
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error(ErrCodeUnresolved, "no such variable", "details"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnresolved, resp.Error.Code)
	assert.Equal(t, "no such variable", resp.Error.Message)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer

	// Disabled: nothing written
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut, Verbose: false}
	f.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	// Enabled: goes to ErrWriter, not Writer
	f.Verbose = true
	f.VerboseLog("visible %d", 2)
	assert.Empty(t, out.String())
	assert.Equal(t, "visible 2\n", errOut.String())
}
