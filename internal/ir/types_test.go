package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionString(t *testing.T) {
	assert.Equal(t, "main.block:3:7", Position{File: "main.block", Line: 3, Column: 7}.String())
	assert.Equal(t, "3:7", Position{Line: 3, Column: 7}.String())
}

func TestPositionIsValid(t *testing.T) {
	assert.True(t, Position{Line: 1, Column: 1}.IsValid())
	assert.False(t, Position{}.IsValid())
}

func TestDirectionValid(t *testing.T) {
	assert.True(t, DirectionIn.Valid())
	assert.True(t, DirectionOut.Valid())
	assert.True(t, DirectionInOut.Valid())
	assert.False(t, Direction("sideways").Valid())
	assert.False(t, Direction("").Valid())
}

func TestBridgeVarExplicitRegister(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"{eax}", "eax"},
		{"{r15}", "r15"},
		{"r", ""},
		{"m", ""},
		{"{}", ""},
		{"", ""},
		{"{unclosed", ""},
	}

	for _, tt := range tests {
		v := &BridgeVar{Constraint: tt.constraint}
		assert.Equal(t, tt.want, v.ExplicitRegister(), "constraint %q", tt.constraint)
	}
}

func TestDefaultDialect(t *testing.T) {
	d := DefaultDialect()
	assert.Equal(t, "llvm", d.Name)
	assert.Equal(t, "asm!", d.Macro)
	assert.Equal(t, "$", d.Sigil)
	assert.Equal(t, "=", d.OutputPrefix)
	assert.Equal(t, "~", d.ClobberPrefix)
	assert.Empty(t, d.Options)
}

func TestDialectAllowsOption(t *testing.T) {
	// Empty list passes everything through
	d := DefaultDialect()
	assert.True(t, d.AllowsOption("volatile"))
	assert.True(t, d.AllowsOption("anything"))

	d.Options = []string{"volatile", "intel"}
	assert.True(t, d.AllowsOption("volatile"))
	assert.True(t, d.AllowsOption("intel"))
	assert.False(t, d.AllowsOption("alignstack"))
}

func TestUnitPositions(t *testing.T) {
	pos := Position{File: "f", Line: 2, Column: 4}

	units := []Unit{
		&OpaqueStmt{Position: pos},
		&BridgeDecl{Position: pos},
		&ClobberDecl{Position: pos},
		&AsmBlock{Position: pos},
		&NestedBlock{Position: pos},
	}
	for _, u := range units {
		assert.Equal(t, pos, u.Pos())
	}
}
