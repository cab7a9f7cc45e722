package parser

import (
	"strings"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
	"github.com/gaoxiaojun/rusty-asm/internal/lexer"
)

// parseLet classifies a statement beginning with `let`. It commits to a
// bridge declaration only once a direction keyword with a parenthesized
// constraint is in view; anything else falls back to an opaque
// statement, so ordinary bindings (`let x = 5;`, `let x: u32 = f();`)
// pass through untouched.
func (p *Parser) parseLet() (ir.Unit, error) {
	start := p.pos
	letTok := p.cur()
	p.advance() // let

	mut := false
	if p.cur().Is("mut") {
		mut = true
		p.advance()
	}

	// Anonymous form `let in("r") ...`: a direction keyword directly
	// after `let`. Committed; the tail parser reports the direction or
	// identifier error.
	if isDirectionKeyword(p.cur()) && p.kindAt(1) == lexer.LParen && p.kindAt(2) == lexer.String {
		return p.parseBridgeTail(letTok.Pos, "", mut)
	}

	if p.cur().Kind != lexer.Ident {
		// Possible destructuring pattern. If the statement carries
		// bridge constraint syntax it is a rejected pattern binding;
		// otherwise it is ordinary host code.
		if pos, found := p.stmtContainsConstraint(start); found {
			return nil, newError(ErrCodeDuplicatePattern, pos,
				"bridge declarations bind a single identifier; destructuring patterns are not supported")
		}
		p.pos = start
		return p.scanOpaque(), nil
	}

	ident := p.cur().Literal
	p.advance()

	if p.cur().Kind != lexer.Colon {
		p.pos = start
		return p.scanOpaque(), nil
	}
	p.advance() // ':'

	// Scan ahead for `dir (` at depth zero before the initializer or
	// statement end. Without it this is an ordinary typed binding.
	dirIdx := p.findDirectionKeyword()
	if dirIdx < 0 {
		p.pos = start
		return p.scanOpaque(), nil
	}

	// Tokens between the colon and the direction keyword are the
	// declared type, terminated by its own colon.
	typeText := ""
	if dirIdx > p.pos {
		sep := p.toks[dirIdx-1]
		if sep.Kind != lexer.Colon {
			return nil, newError(ErrCodeSyntax, sep.Pos, "expected `:` between type and direction keyword")
		}
		if dirIdx-1 > p.pos {
			first := p.toks[p.pos]
			last := p.toks[dirIdx-2]
			typeText = strings.TrimSpace(p.source[first.Pos.Offset:last.End])
		} else {
			return nil, newError(ErrCodeSyntax, sep.Pos, "expected type before `:`")
		}
	}

	p.pos = dirIdx
	return p.parseBridgeTailTyped(letTok.Pos, ident, mut, typeText)
}

// findDirectionKeyword looks ahead from the current position for a
// direction keyword followed by `(` at delimiter depth zero, stopping at
// `=`, `;`, a depth-zero `{`, or end of input. Returns -1 if absent.
func (p *Parser) findDirectionKeyword() int {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		tok := p.toks[i]
		switch tok.Kind {
		case lexer.EOF:
			return -1
		case lexer.Semicolon, lexer.Eq:
			if depth == 0 {
				return -1
			}
		case lexer.LBrace:
			if depth == 0 {
				return -1
			}
			depth++
		case lexer.LParen, lexer.LBracket:
			depth++
		case lexer.RParen, lexer.RBracket, lexer.RBrace:
			depth--
		case lexer.Ident:
			if depth == 0 && isDirectionKeyword(tok) && i+1 < len(p.toks) && p.toks[i+1].Kind == lexer.LParen {
				return i
			}
		}
	}
	return -1
}

// parseBridgeTail parses from the direction keyword onward and applies
// the direction rules before complaining about a missing identifier, so
// `let in("r");` reports the direction mismatch the programmer can act
// on rather than a generic syntax error.
func (p *Parser) parseBridgeTail(declPos ir.Position, ident string, mut bool) (ir.Unit, error) {
	return p.parseBridgeTailTyped(declPos, ident, mut, "")
}

func (p *Parser) parseBridgeTailTyped(declPos ir.Position, ident string, mut bool, typeText string) (ir.Unit, error) {
	dirTok := p.cur()
	dir := directionFor(dirTok)
	p.advance() // direction keyword

	if p.cur().Kind != lexer.LParen {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "expected `(` after `%s`", dirTok.Literal)
	}
	p.advance() // '('

	if p.cur().Kind != lexer.String {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "constraint must be a quoted string")
	}
	constraint := p.cur().Value
	p.advance()

	if p.cur().Kind != lexer.RParen {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "expected `)` after constraint string")
	}
	p.advance() // ')'

	initText := ""
	hasInit := false
	if p.cur().Kind == lexer.Eq {
		eqTok := p.cur()
		p.advance()
		text, err := p.scanInitializer(eqTok.Pos)
		if err != nil {
			return nil, err
		}
		initText = text
		hasInit = true
	}

	if p.cur().Kind != lexer.Semicolon {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "expected `;` after bridge declaration")
	}
	p.advance() // ';'

	switch {
	case dir == ir.DirectionOut && hasInit:
		return nil, newError(ErrCodeDirectionMismatch, declPos,
			"`out` variable %q must not carry an initializer", ident)
	case dir != ir.DirectionOut && !hasInit:
		return nil, newError(ErrCodeDirectionMismatch, declPos,
			"`%s` variable %q requires an initializer", dir, ident)
	}

	if ident == "" {
		return nil, newError(ErrCodeSyntax, declPos, "expected identifier in bridge declaration")
	}

	return &ir.BridgeDecl{
		Position:   declPos,
		Ident:      ident,
		Mut:        mut,
		Dir:        dir,
		Constraint: constraint,
		Type:       typeText,
		Init:       initText,
		HasInit:    hasInit,
	}, nil
}

// scanInitializer consumes an initializer expression up to (but not
// including) the terminating semicolon at delimiter depth zero.
func (p *Parser) scanInitializer(eqPos ir.Position) (string, error) {
	start := p.pos
	depth := 0
	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.EOF:
			return "", newError(ErrCodeSyntax, eqPos, "unexpected end of input in initializer")
		case lexer.LParen, lexer.LBracket, lexer.LBrace:
			depth++
		case lexer.RParen, lexer.RBracket, lexer.RBrace:
			if depth == 0 {
				return "", newError(ErrCodeSyntax, tok.Pos, "unbalanced delimiter in initializer")
			}
			depth--
		case lexer.Semicolon:
			if depth == 0 {
				if p.pos == start {
					return "", newError(ErrCodeSyntax, eqPos, "expected expression after `=`")
				}
				first := p.toks[start]
				last := p.toks[p.pos-1]
				return strings.TrimSpace(p.source[first.Pos.Offset:last.End]), nil
			}
		}
		p.advance()
	}
}

// stmtContainsConstraint scans the statement starting at token index
// start for a direction keyword followed by a parenthesized string,
// stopping at a depth-zero semicolon or end of input.
func (p *Parser) stmtContainsConstraint(start int) (ir.Position, bool) {
	depth := 0
	for i := start; i < len(p.toks); i++ {
		tok := p.toks[i]
		switch tok.Kind {
		case lexer.EOF:
			return ir.Position{}, false
		case lexer.LParen, lexer.LBracket, lexer.LBrace:
			depth++
		case lexer.RParen, lexer.RBracket, lexer.RBrace:
			depth--
		case lexer.Semicolon:
			if depth <= 0 {
				return ir.Position{}, false
			}
		case lexer.Ident:
			if isDirectionKeyword(tok) &&
				i+2 < len(p.toks) &&
				p.toks[i+1].Kind == lexer.LParen &&
				p.toks[i+2].Kind == lexer.String {
				return tok.Pos, true
			}
		}
	}
	return ir.Position{}, false
}

// parseClobber parses `clobber("constraint");`. The caller has already
// matched the keyword and the opening paren, which commits the form.
func (p *Parser) parseClobber() (ir.Unit, error) {
	clobberTok := p.cur()
	p.advance() // clobber
	p.advance() // '('

	if p.cur().Kind != lexer.String {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "clobber constraint must be a quoted string")
	}
	constraint := p.cur().Value
	p.advance()

	if p.cur().Kind != lexer.RParen {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "expected `)` after clobber constraint")
	}
	p.advance()

	if p.cur().Kind != lexer.Semicolon {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "expected `;` after clobber declaration")
	}
	p.advance()

	return &ir.ClobberDecl{Position: clobberTok.Pos, Constraint: constraint}, nil
}

// parseAsm parses `asm [("opt", ...)] { "text" }`. An empty body is
// allowed and emits nothing.
func (p *Parser) parseAsm() (ir.Unit, error) {
	asmTok := p.cur()
	p.advance() // asm

	var options []string
	if p.cur().Kind == lexer.LParen {
		p.advance()
		for p.cur().Kind != lexer.RParen {
			if p.cur().Kind != lexer.String {
				return nil, newError(ErrCodeSyntax, p.cur().Pos, "asm options must be string literals")
			}
			options = append(options, p.cur().Value)
			p.advance()
			if p.cur().Kind == lexer.Comma {
				p.advance()
				continue
			}
			if p.cur().Kind != lexer.RParen {
				return nil, newError(ErrCodeSyntax, p.cur().Pos, "expected `,` or `)` in asm options")
			}
		}
		p.advance() // ')'
	}

	if p.cur().Kind != lexer.LBrace {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "expected `{` after `asm`")
	}
	p.advance()

	text := ""
	hasText := false
	if p.cur().Kind == lexer.String {
		text = p.cur().Value
		hasText = true
		p.advance()
	}

	if p.cur().Kind != lexer.RBrace {
		return nil, newError(ErrCodeSyntax, p.cur().Pos, "asm block may contain only a single string literal")
	}
	p.advance()

	return &ir.AsmBlock{
		Position: asmTok.Pos,
		Options:  options,
		Text:     text,
		HasText:  hasText,
	}, nil
}
