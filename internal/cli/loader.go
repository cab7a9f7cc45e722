package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gaoxiaojun/rusty-asm/internal/dialect"
	"github.com/gaoxiaojun/rusty-asm/internal/engine"
	"github.com/gaoxiaojun/rusty-asm/internal/ir"
	"github.com/gaoxiaojun/rusty-asm/internal/parser"
)

// StdinPath is the source argument that selects standard input.
const StdinPath = "-"

// LoadSource reads the transform input from a file path or, when path
// is "-", from stdin. Returns the source text and the name to use in
// diagnostic positions.
func LoadSource(path string, stdin io.Reader) (source, name string, err error) {
	if path == StdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading stdin: %v", err)}
		}
		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("source file not found: %s", path)}
	}
	if err != nil {
		return "", "", &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return string(data), path, nil
}

// LoadDialect resolves the dialect for a command: the built-in default
// when path is empty, otherwise the CUE file at path.
func LoadDialect(path string) (*ir.DialectSpec, error) {
	if path == "" {
		return dialect.Default(), nil
	}

	spec, err := dialect.Load(path)
	if err != nil {
		var compileErr *dialect.CompileError
		if errors.As(err, &compileErr) {
			return nil, &LoadError{Code: ErrCodeDialectFailed, Message: compileErr.Error()}
		}
		if os.IsNotExist(errors.Unwrap(err)) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("dialect file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeDialectFailed, Message: err.Error()}
	}
	return spec, nil
}

// LoadError represents a failure to load command inputs.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeReadFailed    = "E002" // Source read error
	ErrCodeWriteFailed   = "E003" // Output write error
	ErrCodeNotFound      = "E004" // Path not found
	ErrCodeDialectFailed = "E005" // Dialect load/compile failed
	ErrCodeCacheFailed   = "E006" // Cache database error

	// Transform errors
	ErrCodeSyntax             = "E101" // Malformed declaration or asm block
	ErrCodeDirectionMismatch  = "E102" // Initializer contrary to direction rules
	ErrCodeDuplicatePattern   = "E103" // Destructuring pattern in bridge declaration
	ErrCodeUnsupportedContext = "E104" // Bridge binding in conditional header
	ErrCodeUnresolved         = "E110" // Reference to no live bridge variable
)

// MapTransformError maps a parse or transform error to its CLI error
// code and message, with a position-prefixed message when available.
func MapTransformError(err error) (code, message string) {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		switch pe.Code {
		case parser.ErrCodeSyntax:
			code = ErrCodeSyntax
		case parser.ErrCodeDirectionMismatch:
			code = ErrCodeDirectionMismatch
		case parser.ErrCodeDuplicatePattern:
			code = ErrCodeDuplicatePattern
		case parser.ErrCodeUnsupportedContext:
			code = ErrCodeUnsupportedContext
		default:
			code = ErrCodeGeneric
		}
		if pe.Pos.IsValid() {
			return code, fmt.Sprintf("%s: %s", pe.Pos, pe.Message)
		}
		return code, pe.Message
	}

	var te *engine.TransformError
	if errors.As(err, &te) {
		if te.Pos.IsValid() {
			return ErrCodeUnresolved, fmt.Sprintf("%s: %s", te.Pos, te.Message)
		}
		return ErrCodeUnresolved, te.Message
	}

	var le *LoadError
	if errors.As(err, &le) {
		return le.Code, le.Message
	}

	return ErrCodeGeneric, err.Error()
}
