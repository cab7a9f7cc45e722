package ir

import "fmt"

// Position identifies a location in the input source.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	File   string `json:"file,omitempty"`
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// String renders the position as file:line:col (or line:col without a file).
func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position has been set.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Direction classifies how a bridge variable crosses into an asm block.
type Direction string

const (
	// DirectionIn passes the variable's value into the asm block.
	DirectionIn Direction = "in"

	// DirectionOut receives a value written by the asm block.
	DirectionOut Direction = "out"

	// DirectionInOut does both: the variable's storage is read on entry
	// and holds the result on exit. Expands to one output constraint and
	// one input constraint tied to the output's position.
	DirectionInOut Direction = "inout"
)

// Valid reports whether d is one of the three known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionIn, DirectionOut, DirectionInOut:
		return true
	}
	return false
}

// Unit is one fragment of a block's contents: an ordinary statement
// passed through untouched, a declaration the engine tracks, an embedded
// asm block, or a nested block processed recursively.
type Unit interface {
	// Pos returns the source position where the unit begins.
	Pos() Position
}

// OpaqueStmt is a fragment the engine does not interpret. Its text is
// emitted verbatim, in place.
type OpaqueStmt struct {
	Position Position
	Text     string
}

func (u *OpaqueStmt) Pos() Position { return u.Position }

// BridgeDecl declares a bridge variable: an identifier bound to an asm
// constraint so it can be referenced from instruction text.
//
// Type and Init are opaque source fragments; the engine never interprets
// them beyond passing them through to the emitted ordinary binding.
type BridgeDecl struct {
	Position   Position
	Ident      string
	Mut        bool
	Dir        Direction
	Constraint string // raw constraint string, unprefixed
	Type       string // optional declared type, "" if absent
	Init       string // initializer expression, "" if absent
	HasInit    bool
}

func (u *BridgeDecl) Pos() Position { return u.Position }

// ClobberDecl states that asm blocks in its scope destroy a register
// (or memory). It binds no identifier and emits no statement.
type ClobberDecl struct {
	Position   Position
	Constraint string
}

func (u *ClobberDecl) Pos() Position { return u.Position }

// AsmBlock is one embedded instruction block: optional option strings
// plus the raw instruction text containing $ident references and $$
// escapes. A block with HasText false emits nothing.
type AsmBlock struct {
	Position Position
	Options  []string
	Text     string
	HasText  bool
}

func (u *AsmBlock) Pos() Position { return u.Position }

// NestedBlock is a brace-delimited inner block, transformed recursively
// with its own scope.
type NestedBlock struct {
	Position Position
	Units    []Unit
}

func (u *NestedBlock) Pos() Position { return u.Position }

// Block is the parsed contents of one top-level transform invocation.
type Block struct {
	Units []Unit
}

// BridgeVar is a live bridge variable as tracked by the scope stack.
type BridgeVar struct {
	Ident      string
	Dir        Direction
	Constraint string
	Position   Position
}

// ExplicitRegister returns the register named by an explicit-register
// constraint of the form "{name}", or "" if the constraint is a register
// class or memory constraint.
func (v *BridgeVar) ExplicitRegister() string {
	c := v.Constraint
	if len(c) >= 2 && c[0] == '{' && c[len(c)-1] == '}' {
		return c[1 : len(c)-1]
	}
	return ""
}

// Clobber is a live clobber declaration as tracked by the scope stack.
type Clobber struct {
	Constraint string
	Position   Position
}

// Constraint is one resolved entry in an asm invocation's output or
// input list. Index is the entry's position within the combined
// positional argument list (outputs first, then inputs). For a tied
// input, Expr is the output position rendered as a string and TiedTo
// holds that index; for everything else TiedTo is -1.
type Constraint struct {
	Index      int    `json:"index"`
	Constraint string `json:"constraint"` // prefixed form, e.g. "=r", "r", "0"
	Ident      string `json:"ident"`      // owning bridge variable
	TiedTo     int    `json:"tied_to"`    // output index for tied inputs, else -1
}

// ConstraintList is the resolved constraint set for one asm block, in
// the positional order required by the invocation format.
type ConstraintList struct {
	Outputs  []Constraint `json:"outputs"`
	Inputs   []Constraint `json:"inputs"`
	Clobbers []string     `json:"clobbers"` // prefixed form, e.g. "~eax"
}

// DialectSpec controls how resolved asm blocks are rendered: the
// invocation macro name, the reference sigil, and the prefixes applied
// to output and clobber constraints.
type DialectSpec struct {
	Name          string `json:"name"`
	Macro         string `json:"macro"`
	Sigil         string `json:"sigil"`
	OutputPrefix  string `json:"output_prefix"`
	ClobberPrefix string `json:"clobber_prefix"`

	// Options lists the option strings the dialect accepts in an asm
	// block header. Empty means any option is passed through.
	Options []string `json:"options,omitempty"`
}

// DefaultDialect returns the built-in rendering convention: the `asm!`
// invocation macro, `$N` placeholders, `=` output prefix, `~` clobber
// prefix, and no option restrictions.
func DefaultDialect() *DialectSpec {
	return &DialectSpec{
		Name:          "llvm",
		Macro:         "asm!",
		Sigil:         "$",
		OutputPrefix:  "=",
		ClobberPrefix: "~",
	}
}

// AllowsOption reports whether the dialect accepts the given option
// string in an asm block header.
func (d *DialectSpec) AllowsOption(opt string) bool {
	if len(d.Options) == 0 {
		return true
	}
	for _, o := range d.Options {
		if o == opt {
			return true
		}
	}
	return false
}
