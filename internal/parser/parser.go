// Package parser turns the token stream of a block body into the unit
// sequence the transform engine walks: opaque statements, bridge and
// clobber declarations, embedded asm blocks, and nested blocks.
//
// The parser has no grammar for the host language. It recognizes the
// handful of keyword forms the engine owns and otherwise only matches
// delimiter nesting, so an opaque statement's internal braces (a struct
// literal, a closure body inside a call) are never mistaken for a block
// boundary.
package parser

import (
	"github.com/gaoxiaojun/rusty-asm/internal/ir"
	"github.com/gaoxiaojun/rusty-asm/internal/lexer"
)

// Parser consumes a token stream and produces units.
type Parser struct {
	source string
	toks   []lexer.Token
	pos    int
}

// Parse lexes and parses source as the contents of one top-level block
// (without surrounding braces). file is used for diagnostic positions.
func Parse(file, source string) (*ir.Block, error) {
	l := lexer.New(file, source)
	toks := l.Tokens()

	p := &Parser{source: source, toks: toks}
	units, err := p.parseUnits()
	if err != nil {
		return nil, err
	}

	if tok := p.cur(); tok.Kind != lexer.EOF {
		return nil, newError(ErrCodeSyntax, tok.Pos, "unbalanced `}`")
	}

	return &ir.Block{Units: units}, nil
}

// parseUnits parses units until a closing brace or end of input. The
// terminating token is not consumed.
func (p *Parser) parseUnits() ([]ir.Unit, error) {
	var units []ir.Unit

	for {
		tok := p.cur()

		switch {
		case tok.Kind == lexer.EOF || tok.Kind == lexer.RBrace:
			return units, nil

		case tok.Kind == lexer.Illegal:
			return nil, newError(ErrCodeSyntax, tok.Pos, "%s", tok.Literal)

		case tok.Kind == lexer.LBrace:
			unit, err := p.parseNestedBlock()
			if err != nil {
				return nil, err
			}
			units = append(units, unit)

		case tok.Is("let"):
			unit, err := p.parseLet()
			if err != nil {
				return nil, err
			}
			units = append(units, unit)

		case tok.Is("clobber") && p.kindAt(1) == lexer.LParen:
			unit, err := p.parseClobber()
			if err != nil {
				return nil, err
			}
			units = append(units, unit)

		case tok.Is("asm") && (p.kindAt(1) == lexer.LParen || p.kindAt(1) == lexer.LBrace):
			unit, err := p.parseAsm()
			if err != nil {
				return nil, err
			}
			units = append(units, unit)

		case tok.Is("if") || tok.Is("while"):
			unit, err := p.parseConditionalHeader()
			if err != nil {
				return nil, err
			}
			units = append(units, unit)

		case tok.Is("for") || tok.Is("loop") || tok.Is("unsafe") || tok.Is("match"):
			units = append(units, p.parseControlHeader())

		case tok.Is("else"):
			// Emit `else` alone; a following `if` or `{` is picked up
			// as its own unit on the next iteration.
			p.advance()
			units = append(units, &ir.OpaqueStmt{Position: tok.Pos, Text: tok.Literal})

		default:
			units = append(units, p.scanOpaque())
		}
	}
}

// parseNestedBlock consumes a brace-delimited block and parses its
// contents recursively.
func (p *Parser) parseNestedBlock() (*ir.NestedBlock, error) {
	open := p.cur()
	p.advance() // '{'

	units, err := p.parseUnits()
	if err != nil {
		return nil, err
	}

	if tok := p.cur(); tok.Kind != lexer.RBrace {
		return nil, newError(ErrCodeSyntax, open.Pos, "unterminated block")
	}
	p.advance() // '}'

	return &ir.NestedBlock{Position: open.Pos, Units: units}, nil
}

// parseConditionalHeader consumes an if/while header up to (but not
// including) the body's opening brace. `if let` and `while let` forms
// pass through opaquely unless they attempt a bridge-style binding,
// which the engine cannot scope and rejects.
func (p *Parser) parseConditionalHeader() (ir.Unit, error) {
	start := p.pos
	startTok := p.cur()
	p.advance() // if / while

	sawLet := false
	depth := 0
	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.EOF:
			return nil, newError(ErrCodeSyntax, startTok.Pos, "unexpected end of input in `%s` header", startTok.Literal)
		case lexer.LParen, lexer.LBracket:
			depth++
		case lexer.RParen, lexer.RBracket:
			depth--
		case lexer.LBrace:
			if depth == 0 {
				// The body begins; it parses as a nested block next.
				return p.opaqueSpan(start, p.pos), nil
			}
			depth++
		case lexer.RBrace:
			depth--
		case lexer.Ident:
			if tok.Is("let") {
				sawLet = true
			} else if sawLet && isDirectionKeyword(tok) &&
				p.kindAt(1) == lexer.LParen && p.kindAt(2) == lexer.String {
				return nil, newError(ErrCodeUnsupportedContext, tok.Pos,
					"bridge variables cannot be bound inside a `%s let` condition", startTok.Literal)
			}
		}
		p.advance()
	}
}

// parseControlHeader consumes a for/loop/unsafe/match header up to the
// body's opening brace, which parses as a nested block next.
func (p *Parser) parseControlHeader() ir.Unit {
	start := p.pos
	p.advance()

	depth := 0
	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.EOF:
			return p.opaqueSpan(start, p.pos)
		case lexer.LParen, lexer.LBracket:
			depth++
		case lexer.RParen, lexer.RBracket:
			depth--
		case lexer.LBrace:
			if depth == 0 {
				return p.opaqueSpan(start, p.pos)
			}
			depth++
		case lexer.RBrace:
			if depth == 0 {
				return p.opaqueSpan(start, p.pos)
			}
			depth--
		}
		p.advance()
	}
}

// scanOpaque consumes one opaque statement: tokens up to and including a
// semicolon at delimiter depth zero. A brace group encountered
// mid-statement (a struct literal, a closure body) is consumed as part
// of the statement. A statement that runs into the block's closing brace
// or end of input is a tail expression and ends there.
func (p *Parser) scanOpaque() *ir.OpaqueStmt {
	start := p.pos
	paren, brack, brace := 0, 0, 0

	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.EOF:
			return p.opaqueSpan(start, p.pos)

		case lexer.LParen:
			paren++
		case lexer.RParen:
			paren--
		case lexer.LBracket:
			brack++
		case lexer.RBracket:
			brack--

		case lexer.LBrace:
			brace++

		case lexer.RBrace:
			if paren == 0 && brack == 0 && brace == 0 {
				// The enclosing block is closing; tail expression.
				return p.opaqueSpan(start, p.pos)
			}
			brace--
			if paren == 0 && brack == 0 && brace == 0 {
				// A balanced brace group closed at statement level.
				// Take a trailing semicolon if present, then stop.
				p.advance()
				if p.cur().Kind == lexer.Semicolon {
					p.advance()
				}
				return p.opaqueSpan(start, p.pos)
			}

		case lexer.Semicolon:
			if paren == 0 && brack == 0 && brace == 0 {
				p.advance()
				return p.opaqueSpan(start, p.pos)
			}
		}
		p.advance()
	}
}

// opaqueSpan builds an opaque unit from the source text covered by the
// token range [start, end).
func (p *Parser) opaqueSpan(start, end int) *ir.OpaqueStmt {
	if start >= end {
		return &ir.OpaqueStmt{Position: p.toks[start].Pos, Text: ""}
	}
	first := p.toks[start]
	last := p.toks[end-1]
	return &ir.OpaqueStmt{
		Position: first.Pos,
		Text:     p.source[first.Pos.Offset:last.End],
	}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) kindAt(n int) lexer.Kind {
	i := p.pos + n
	if i >= len(p.toks) {
		return lexer.EOF
	}
	return p.toks[i].Kind
}

func (p *Parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func isDirectionKeyword(tok lexer.Token) bool {
	return tok.Is("in") || tok.Is("out") || tok.Is("inout")
}

func directionFor(tok lexer.Token) ir.Direction {
	switch tok.Literal {
	case "in":
		return ir.DirectionIn
	case "out":
		return ir.DirectionOut
	default:
		return ir.DirectionInOut
	}
}
