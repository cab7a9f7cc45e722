package parser

import (
	"errors"
	"fmt"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// ParseErrorCode categorizes classification errors.
type ParseErrorCode string

const (
	// ErrCodeSyntax indicates a malformed declaration, clobber, or asm
	// block header.
	ErrCodeSyntax ParseErrorCode = "SYNTAX_ERROR"

	// ErrCodeDirectionMismatch indicates an initializer present or
	// absent contrary to the direction rules: out forbids one, in and
	// inout require one.
	ErrCodeDirectionMismatch ParseErrorCode = "DIRECTION_MISMATCH"

	// ErrCodeDuplicatePattern indicates a destructuring pattern on the
	// left-hand side of a bridge declaration. Bridge declarations bind
	// exactly one identifier.
	ErrCodeDuplicatePattern ParseErrorCode = "DUPLICATE_PATTERN"

	// ErrCodeUnsupportedContext indicates a bridge-style binding inside
	// an if/while header, where the engine cannot scope it.
	ErrCodeUnsupportedContext ParseErrorCode = "UNSUPPORTED_CONTEXT"
)

// ParseError is a classification failure with a source position.
// Parse errors are fatal to the whole transform invocation.
type ParseError struct {
	Code    ParseErrorCode
	Message string
	Pos     ir.Position
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ParseErrorCode, pos ir.Position, format string, args ...any) *ParseError {
	return &ParseError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// IsSyntaxError reports whether err is a ParseError with ErrCodeSyntax.
func IsSyntaxError(err error) bool {
	return hasCode(err, ErrCodeSyntax)
}

// IsDirectionMismatch reports whether err is a direction-rule violation.
func IsDirectionMismatch(err error) bool {
	return hasCode(err, ErrCodeDirectionMismatch)
}

// IsDuplicatePattern reports whether err is a pattern-restriction violation.
func IsDuplicatePattern(err error) bool {
	return hasCode(err, ErrCodeDuplicatePattern)
}

// IsUnsupportedContext reports whether err is a conditional-binding rejection.
func IsUnsupportedContext(err error) bool {
	return hasCode(err, ErrCodeUnsupportedContext)
}

func hasCode(err error, code ParseErrorCode) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
