// Package dialect loads invocation-format dialects from CUE files.
//
// A dialect controls how resolved asm blocks are rendered: the
// invocation macro name, the placeholder sigil, the prefixes applied to
// output and clobber constraints, and optionally the option strings it
// accepts. The built-in default matches the LLVM-style convention
// (`asm!`, `$N`, `=`, `~`).
package dialect

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// Default returns the built-in dialect.
func Default() *ir.DialectSpec {
	return ir.DefaultDialect()
}

// Load reads and compiles a dialect from a CUE file. The file should
// define a `dialect` struct:
//
//	dialect: {
//		name:           "llvm"
//		macro:          "asm!"
//		sigil:          "$"
//		output_prefix:  "="
//		clobber_prefix: "~"
//		options: ["volatile", "intel", "alignstack"]
//	}
//
// Fields other than name default to the built-in convention.
func Load(path string) (*ir.DialectSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dialect file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	dv := v.LookupPath(cue.ParsePath("dialect"))
	if !dv.Exists() {
		return nil, &CompileError{
			Field:   "dialect",
			Message: "dialect struct is required",
			Pos:     v.Pos(),
		}
	}

	return Compile(dv)
}

// Compile parses a CUE value into a DialectSpec.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
func Compile(v cue.Value) (*ir.DialectSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := ir.DefaultDialect()

	// Parse name (required)
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Name = name

	// Optional string fields, defaulted from the built-in convention.
	if err := stringField(v, "macro", &spec.Macro); err != nil {
		return nil, err
	}
	if err := stringField(v, "sigil", &spec.Sigil); err != nil {
		return nil, err
	}
	if err := stringField(v, "output_prefix", &spec.OutputPrefix); err != nil {
		return nil, err
	}
	if err := stringField(v, "clobber_prefix", &spec.ClobberPrefix); err != nil {
		return nil, err
	}

	if spec.Macro == "" || spec.Sigil == "" {
		return nil, &CompileError{
			Field:   "dialect",
			Message: "macro and sigil must be non-empty",
			Pos:     v.Pos(),
		}
	}

	// Parse options (optional). An absent list means any option is
	// passed through; an empty list means the same.
	optsVal := v.LookupPath(cue.ParsePath("options"))
	if optsVal.Exists() {
		iter, err := optsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			opt, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			spec.Options = append(spec.Options, opt)
		}
	}

	return spec, nil
}

// stringField reads an optional string field into dst, leaving the
// default in place when the field is absent.
func stringField(v cue.Value, field string, dst *string) error {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil
	}
	s, err := fv.String()
	if err != nil {
		return formatCUEError(err)
	}
	*dst = s
	return nil
}

// CompileError represents a dialect compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
