package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// Lexer tokenizes block source text. It knows just enough of the host
// language's lexical grammar to find token boundaries reliably: string,
// raw-string, and character literals, comments (line and nested block),
// numbers, identifiers, and maximal-munch operators. Everything between
// the boundaries the classifier cares about is passed through opaquely
// by slicing the original source, so the lexer never needs a full
// grammar.
type Lexer struct {
	input   string
	file    string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// New creates a lexer for the given source. file is used only for
// diagnostic positions and may be empty.
func New(file, input string) *Lexer {
	l := &Lexer{
		input: input,
		file:  file,
		line:  1,
		col:   0, // readChar advances to column 1
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() ir.Position {
	return ir.Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// Tokens lexes the whole input. An Illegal token, if any, is the last
// element before EOF is appended.
func (l *Lexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF || tok.Kind == Illegal {
			if tok.Kind == Illegal {
				toks = append(toks, Token{Kind: EOF, Pos: l.position(), End: l.pos})
			}
			return toks
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return *err
	}

	pos := l.position()

	switch {
	case l.ch == 0:
		return l.emit(EOF, pos)

	case l.ch == '(':
		l.readChar()
		return l.emit(LParen, pos)
	case l.ch == ')':
		l.readChar()
		return l.emit(RParen, pos)
	case l.ch == '{':
		l.readChar()
		return l.emit(LBrace, pos)
	case l.ch == '}':
		l.readChar()
		return l.emit(RBrace, pos)
	case l.ch == '[':
		l.readChar()
		return l.emit(LBracket, pos)
	case l.ch == ']':
		l.readChar()
		return l.emit(RBracket, pos)
	case l.ch == ';':
		l.readChar()
		return l.emit(Semicolon, pos)
	case l.ch == ',':
		l.readChar()
		return l.emit(Comma, pos)

	case l.ch == ':':
		l.readChar()
		if l.ch == ':' {
			l.readChar()
			return l.emit(Punct, pos) // path separator "::"
		}
		return l.emit(Colon, pos)

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' || l.ch == '>' {
			l.readChar()
			return l.emit(Punct, pos) // "==" or "=>"
		}
		return l.emit(Eq, pos)

	case l.ch == '"':
		return l.readString(pos)

	case l.ch == 'r' && (l.peekChar() == '"' || l.peekChar() == '#'):
		if tok, ok := l.readRawString(pos); ok {
			return tok
		}
		return l.readIdent(pos)

	case l.ch == '\'':
		return l.readCharOrLifetime(pos)

	case isIdentStart(l.ch):
		return l.readIdent(pos)

	case unicode.IsDigit(l.ch):
		return l.readNumber(pos)

	default:
		return l.readPunct(pos)
	}
}

func (l *Lexer) emit(kind Kind, pos ir.Position) Token {
	return Token{
		Kind:    kind,
		Literal: l.input[pos.Offset:l.pos],
		Pos:     pos,
		End:     l.pos,
	}
}

func (l *Lexer) illegal(pos ir.Position, msg string) Token {
	return Token{Kind: Illegal, Literal: msg, Pos: pos, End: l.pos}
}

// skipWhitespaceAndComments consumes whitespace, // line comments, and
// nested /* */ block comments. Returns an Illegal token on an
// unterminated block comment.
func (l *Lexer) skipWhitespaceAndComments() *Token {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()

		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}

		case l.ch == '/' && l.peekChar() == '*':
			pos := l.position()
			l.readChar() // '/'
			l.readChar() // '*'
			depth := 1
			for depth > 0 {
				if l.ch == 0 {
					tok := l.illegal(pos, "unterminated block comment")
					return &tok
				}
				if l.ch == '/' && l.peekChar() == '*' {
					depth++
					l.readChar()
				} else if l.ch == '*' && l.peekChar() == '/' {
					depth--
					l.readChar()
				}
				l.readChar()
			}

		default:
			return nil
		}
	}
}

// readString lexes a double-quoted string literal, decoding the escape
// sequences the engine itself needs to see through (quote, backslash,
// and the common control escapes). Unrecognized escapes are kept
// verbatim: the text is host-language material and not ours to reject.
func (l *Lexer) readString(pos ir.Position) Token {
	var value strings.Builder
	l.readChar() // opening quote
	for l.ch != '"' {
		if l.ch == 0 {
			return l.illegal(pos, "unterminated string literal")
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '"':
				value.WriteByte('"')
			case '\\':
				value.WriteByte('\\')
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '0':
				value.WriteByte(0)
			case 0:
				return l.illegal(pos, "unterminated string literal")
			default:
				value.WriteByte('\\')
				value.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		value.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote

	tok := l.emit(String, pos)
	tok.Value = value.String()
	return tok
}

// readRawString lexes r"..." and r#"..."# forms. Returns ok=false when
// the input turns out not to be a raw string (an identifier starting
// with 'r' followed by '#' that is not a raw string opener).
func (l *Lexer) readRawString(pos ir.Position) (Token, bool) {
	// Save state so we can back out.
	saved := *l

	l.readChar() // 'r'
	hashes := 0
	for l.ch == '#' {
		hashes++
		l.readChar()
	}
	if l.ch != '"' {
		*l = saved
		return Token{}, false
	}
	l.readChar() // opening quote

	var value strings.Builder
	for {
		if l.ch == 0 {
			return l.illegal(pos, "unterminated raw string literal"), true
		}
		if l.ch == '"' {
			// Check for the closing hash run.
			if hashes == 0 {
				l.readChar()
				break
			}
			if strings.HasPrefix(l.input[l.readPos:], strings.Repeat("#", hashes)) {
				l.readChar() // quote
				for i := 0; i < hashes; i++ {
					l.readChar()
				}
				break
			}
		}
		value.WriteRune(l.ch)
		l.readChar()
	}

	tok := l.emit(String, pos)
	tok.Value = value.String()
	return tok, true
}

// readCharOrLifetime lexes either a character literal ('a', '\n') or a
// lifetime token ('ident with no closing quote).
func (l *Lexer) readCharOrLifetime(pos ir.Position) Token {
	l.readChar() // opening quote

	if l.ch == '\\' {
		// Escaped char literal.
		var value strings.Builder
		l.readChar()
		switch l.ch {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case '\'':
			value.WriteByte('\'')
		case '\\':
			value.WriteByte('\\')
		case '0':
			value.WriteByte(0)
		default:
			value.WriteByte('\\')
			value.WriteRune(l.ch)
		}
		l.readChar()
		if l.ch != '\'' {
			return l.illegal(pos, "unterminated character literal")
		}
		l.readChar()
		tok := l.emit(Char, pos)
		tok.Value = value.String()
		return tok
	}

	if isIdentStart(l.ch) && l.peekChar() != '\'' {
		// Lifetime: 'ident with no closing quote.
		for isIdentContinue(l.ch) {
			l.readChar()
		}
		return l.emit(Lifetime, pos)
	}

	if l.ch == 0 {
		return l.illegal(pos, "unterminated character literal")
	}

	value := string(l.ch)
	l.readChar()
	if l.ch != '\'' {
		return l.illegal(pos, "unterminated character literal")
	}
	l.readChar()
	tok := l.emit(Char, pos)
	tok.Value = value
	return tok
}

func (l *Lexer) readIdent(pos ir.Position) Token {
	for isIdentContinue(l.ch) {
		l.readChar()
	}
	return l.emit(Ident, pos)
}

// readNumber lexes integer and float literals, including radix prefixes
// and identifier-like type suffixes. The engine only needs the boundary.
func (l *Lexer) readNumber(pos ir.Position) Token {
	for unicode.IsDigit(l.ch) || isIdentContinue(l.ch) || l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		l.readChar()
	}
	return l.emit(Number, pos)
}

// multiCharOps holds operators lexed with maximal munch, longest first.
var multiCharOps = []string{
	"<<=", ">>=", "...", "..=",
	"&&", "||", "!=", "<=", ">=", "->", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "..",
}

func (l *Lexer) readPunct(pos ir.Position) Token {
	rest := l.input[l.pos:]
	for _, op := range multiCharOps {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.readChar()
			}
			return l.emit(Punct, pos)
		}
	}
	l.readChar()
	return l.emit(Punct, pos)
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentContinue(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}
