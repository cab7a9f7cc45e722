package lexer

import (
	"fmt"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// Kind classifies a token.
type Kind int

const (
	// EOF marks the end of input.
	EOF Kind = iota

	// Ident is an identifier or keyword. The fragment reader treats
	// keywords (let, mut, in, out, inout, clobber, asm, if, while) as
	// ordinary identifiers and matches on the literal; everything the
	// classifier does not recognize stays opaque.
	Ident

	// Number is an integer or float literal, including prefixed forms
	// (0x, 0o, 0b) and type suffixes. The engine never interprets the
	// value; it only needs the token boundary.
	Number

	// String is a quoted string literal. Literal holds the raw source
	// text including quotes; Value holds the decoded contents.
	String

	// Char is a character literal.
	Char

	// Lifetime is a '<ident> token (a quote not closed as a char
	// literal). Passed through opaquely.
	Lifetime

	// Punct is any operator or punctuation not covered by a dedicated
	// kind, lexed with maximal munch so "==" is never split into two
	// "=" tokens.
	Punct

	// Dedicated delimiters and separators the classifier matches on.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Colon
	Comma
	Eq

	// Illegal is a lexical error; Literal holds the message.
	Illegal
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case String:
		return "String"
	case Char:
		return "Char"
	case Lifetime:
		return "Lifetime"
	case Punct:
		return "Punct"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	case LBrace:
		return "LBrace"
	case RBrace:
		return "RBrace"
	case LBracket:
		return "LBracket"
	case RBracket:
		return "RBracket"
	case Semicolon:
		return "Semicolon"
	case Colon:
		return "Colon"
	case Comma:
		return "Comma"
	case Eq:
		return "Eq"
	case Illegal:
		return "Illegal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit of the input.
type Token struct {
	Kind    Kind
	Literal string // raw source text
	Value   string // decoded contents for String and Char
	Pos     ir.Position
	End     int // byte offset just past the token
}

// Is reports whether the token is an identifier with the given literal.
// Used by the classifier to match keyword forms.
func (t Token) Is(ident string) bool {
	return t.Kind == Ident && t.Literal == ident
}
