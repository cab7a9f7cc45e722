package engine

import (
	"errors"
	"fmt"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// TransformErrorCode categorizes resolution errors.
type TransformErrorCode string

const (
	// ErrCodeUnresolvedReference indicates a $identifier reference with
	// no live matching bridge declaration in scope.
	ErrCodeUnresolvedReference TransformErrorCode = "UNRESOLVED_REFERENCE"
)

// TransformError is an error detected while resolving an asm block.
// Transform errors are fatal to the whole invocation: a malformed asm
// block cannot be partially lowered.
type TransformError struct {
	Code    TransformErrorCode
	Message string
	Pos     ir.Position

	// Ident is the offending reference, when the error concerns one.
	Ident string
}

func (e *TransformError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnresolvedReference reports whether err is an unresolved-reference
// error. Uses errors.As to handle wrapped errors.
func IsUnresolvedReference(err error) bool {
	var te *TransformError
	if errors.As(err, &te) {
		return te.Code == ErrCodeUnresolvedReference
	}
	return false
}

// NewUnresolvedReferenceError creates a TransformError for a reference
// that matches no live bridge variable.
func NewUnresolvedReferenceError(pos ir.Position, ident string) *TransformError {
	return &TransformError{
		Code:    ErrCodeUnresolvedReference,
		Message: fmt.Sprintf("unrecognized bridge variable %q: it must be declared in scope with `in`, `out`, or `inout`", ident),
		Pos:     pos,
		Ident:   ident,
	}
}

// Warning is a non-fatal diagnostic produced during a transform.
type Warning struct {
	Pos     ir.Position `json:"pos"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Pos.IsValid() {
		return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
	}
	return fmt.Sprintf("warning: %s", w.Message)
}
