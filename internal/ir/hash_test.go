package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockHashDeterministic(t *testing.T) {
	d := DefaultDialect()

	h1, err := BlockHash(`asm { "nop" }`, d)
	require.NoError(t, err)
	h2, err := BlockHash(`asm { "nop" }`, d)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex-encoded SHA-256
}

func TestBlockHashSensitivity(t *testing.T) {
	d := DefaultDialect()
	base := MustBlockHash(`asm { "nop" }`, d)

	// Different source
	assert.NotEqual(t, base, MustBlockHash(`asm { "ret" }`, d))

	// Same source, different dialect rendering
	other := DefaultDialect()
	other.Macro = "llvm_asm!"
	assert.NotEqual(t, base, MustBlockHash(`asm { "nop" }`, other))

	other = DefaultDialect()
	other.Sigil = "%"
	assert.NotEqual(t, base, MustBlockHash(`asm { "nop" }`, other))

	other = DefaultDialect()
	other.ClobberPrefix = ""
	assert.NotEqual(t, base, MustBlockHash(`asm { "nop" }`, other))
}

func TestBlockHashDomainSeparation(t *testing.T) {
	// The same payload under different domains must not collide.
	data := []byte("payload")
	assert.NotEqual(t,
		hashWithDomain(DomainBlock, data),
		hashWithDomain(DomainRun, data))
}

func TestHashWithDomainBoundary(t *testing.T) {
	// domain "ab" + data "c" must differ from domain "a" + data "bc"
	assert.NotEqual(t,
		hashWithDomain("ab", []byte("c")),
		hashWithDomain("a", []byte("bc")))
}
