package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
	"github.com/gaoxiaojun/rusty-asm/internal/parser"
)

func transform(t *testing.T, source string) *Result {
	t.Helper()
	res, err := New(nil).TransformSource("test", source)
	require.NoError(t, err)
	return res
}

func TestTransform_InOutSwap(t *testing.T) {
	res := transform(t, `let mut x: inout("r") = a;
asm { "xchg $x, $x" }
`)

	assert.Equal(t, `{
    let mut x = a;
    asm!("xchg $0, $0" : "=r"(x) : "0"(x) : : );
}
`, res.Output)
	assert.Equal(t, 1, res.AsmBlocks)
	assert.Equal(t, 1, res.Declarations)
	assert.Empty(t, res.Warnings)
}

func TestTransform_NestedShadowing(t *testing.T) {
	res := transform(t, `let x: in("r") = 1;
{
    let x: out("r");
    asm { "mov $x, 8" }
}
asm { "cmp $x, 1" }
`)

	assert.Equal(t, `{
    let x = 1;
    {
        let x;
        asm!("mov $0, 8" : "=r"(x) : : : );
    }
    asm!("cmp $0, 1" : : "r"(x) : : );
}
`, res.Output)
	assert.Equal(t, 2, res.AsmBlocks)
	assert.Equal(t, 2, res.Declarations)
}

func TestTransform_ClobberEmitsNothing(t *testing.T) {
	res := transform(t, `clobber("eax");
asm { "cpuid" }
`)

	assert.Equal(t, `{
    asm!("cpuid" : : : "~eax" : );
}
`, res.Output)
	assert.Equal(t, 0, res.Declarations)
}

func TestTransform_ClobberScopedToBlock(t *testing.T) {
	res := transform(t, `{
    clobber("eax");
}
asm { "nop" }
`)

	// The clobber fell out of scope before the asm block
	assert.Contains(t, res.Output, `asm!("nop" : : : : );`)
}

func TestTransform_EmptyAsmCountedNotEmitted(t *testing.T) {
	res := transform(t, `asm { }`)

	assert.Equal(t, "{\n}\n", res.Output)
	assert.Equal(t, 1, res.AsmBlocks)
}

func TestTransform_OptionsPassedThrough(t *testing.T) {
	res := transform(t, `asm ("volatile") { "nop" }`)
	assert.Contains(t, res.Output, `asm!("nop" : : : : "volatile");`)
}

func TestTransform_UnusedVariableWarning(t *testing.T) {
	res := transform(t, `let x: in("r") = 5;
asm { "nop" }
`)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "`x` not used")
}

func TestTransform_WarningsAccumulateAcrossBlocks(t *testing.T) {
	res := transform(t, `let x: in("r") = 5;
asm { "nop" }
asm { "nop" }
`)
	assert.Len(t, res.Warnings, 2)
}

func TestTransform_UnresolvedReferenceFails(t *testing.T) {
	_, err := New(nil).TransformSource("test", `asm { "mov $ghost, 1" }`)
	require.Error(t, err)
	assert.True(t, IsUnresolvedReference(err))
}

func TestTransform_OutOfScopeReferenceFails(t *testing.T) {
	_, err := New(nil).TransformSource("test", `{
    let x: in("r") = 1;
}
asm { "mov $x, 1" }
`)
	require.Error(t, err)
	assert.True(t, IsUnresolvedReference(err))
}

func TestTransformSource_ParseErrorPassesThrough(t *testing.T) {
	_, err := New(nil).TransformSource("test", `let x: in(r) = 5;`)
	require.Error(t, err)

	var pe *parser.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestTransform_CustomDialect(t *testing.T) {
	d := ir.DefaultDialect()
	d.Macro = "llvm_asm!"
	d.Sigil = "%"

	res, err := New(d).TransformSource("test", `let x: in("r") = 5;
asm { "add $x, 1" }
`)
	require.NoError(t, err)
	assert.Contains(t, res.Output, `llvm_asm!("add %0, 1" : : "r"(x) : : );`)
}

func TestNew_NilDialectUsesDefault(t *testing.T) {
	e := New(nil)
	require.NotNil(t, e.Dialect())
	assert.Equal(t, "asm!", e.Dialect().Macro)
}

func TestTransform_OpaquePassthrough(t *testing.T) {
	res := transform(t, `let a = compute();
a + 1
`)

	assert.Equal(t, "{\n    let a = compute();\n    a + 1\n}\n", res.Output)
	assert.Equal(t, 0, res.AsmBlocks)
	assert.Equal(t, 0, res.Declarations)
}
