package dialect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuelang.org/go/cue/cuecontext"
)

func writeDialectFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialect.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, "llvm", d.Name)
	assert.Equal(t, "asm!", d.Macro)
	assert.Equal(t, "$", d.Sigil)
	assert.Equal(t, "=", d.OutputPrefix)
	assert.Equal(t, "~", d.ClobberPrefix)
}

func TestLoad_FullSpec(t *testing.T) {
	path := writeDialectFile(t, `
dialect: {
	name:           "legacy"
	macro:          "llvm_asm!"
	sigil:          "%"
	output_prefix:  "="
	clobber_prefix: "~"
	options: ["volatile", "intel", "alignstack"]
}
`)

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "legacy", d.Name)
	assert.Equal(t, "llvm_asm!", d.Macro)
	assert.Equal(t, "%", d.Sigil)
	assert.Equal(t, []string{"volatile", "intel", "alignstack"}, d.Options)
}

func TestLoad_DefaultsForUnsetFields(t *testing.T) {
	path := writeDialectFile(t, `dialect: name: "minimal"`)

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", d.Name)
	assert.Equal(t, "asm!", d.Macro)
	assert.Equal(t, "$", d.Sigil)
	assert.Equal(t, "=", d.OutputPrefix)
	assert.Equal(t, "~", d.ClobberPrefix)
	assert.Empty(t, d.Options)
}

func TestLoad_NameRequired(t *testing.T) {
	path := writeDialectFile(t, `dialect: macro: "asm!"`)

	_, err := Load(path)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "name", ce.Field)
}

func TestLoad_DialectStructRequired(t *testing.T) {
	path := writeDialectFile(t, `other: name: "x"`)

	_, err := Load(path)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "dialect", ce.Field)
}

func TestLoad_EmptyMacroRejected(t *testing.T) {
	path := writeDialectFile(t, `
dialect: {
	name:  "broken"
	macro: ""
}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "macro and sigil must be non-empty")
}

func TestLoad_EmptySigilRejected(t *testing.T) {
	path := writeDialectFile(t, `
dialect: {
	name:  "broken"
	sigil: ""
}
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MalformedCUE(t *testing.T) {
	path := writeDialectFile(t, `dialect: { name: `)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_WrongFieldType(t *testing.T) {
	path := writeDialectFile(t, `
dialect: {
	name:  "bad"
	sigil: 5
}
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading dialect file")
}

func TestCompile_FromValue(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`{name: "inline", macro: "go_asm!"}`)

	d, err := Compile(v)
	require.NoError(t, err)
	assert.Equal(t, "inline", d.Name)
	assert.Equal(t, "go_asm!", d.Macro)
}

func TestCompileErrorMessage(t *testing.T) {
	ce := &CompileError{Field: "name", Message: "name is required"}
	assert.Equal(t, "name: name is required", ce.Error())
}
