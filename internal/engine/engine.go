package engine

import (
	"github.com/gaoxiaojun/rusty-asm/internal/ir"
	"github.com/gaoxiaojun/rusty-asm/internal/parser"
)

// Engine transforms parsed blocks under one dialect. An Engine is
// stateless across invocations; each Transform call builds its own
// scope stack, so a single Engine may serve concurrent callers.
type Engine struct {
	dialect *ir.DialectSpec
}

// New creates an engine for the given dialect. A nil dialect selects
// the built-in default.
func New(dialect *ir.DialectSpec) *Engine {
	if dialect == nil {
		dialect = ir.DefaultDialect()
	}
	return &Engine{dialect: dialect}
}

// Dialect returns the dialect the engine renders under.
func (e *Engine) Dialect() *ir.DialectSpec {
	return e.dialect
}

// Result is the outcome of one successful transform invocation.
type Result struct {
	// Output is the rewritten block, wrapped in braces.
	Output string `json:"output"`

	// Warnings are the non-fatal diagnostics accumulated across the
	// whole invocation, in emission order.
	Warnings []Warning `json:"warnings,omitempty"`

	// AsmBlocks counts the asm blocks resolved (empty ones included).
	AsmBlocks int `json:"asm_blocks"`

	// Declarations counts the bridge variables declared.
	Declarations int `json:"declarations"`
}

// TransformSource parses source as one block body and transforms it.
// file is used only for diagnostic positions.
func (e *Engine) TransformSource(file, source string) (*Result, error) {
	block, err := parser.Parse(file, source)
	if err != nil {
		return nil, err
	}
	return e.Transform(block)
}

// Transform rewrites one parsed block. It either returns the complete
// rewritten output or an error with no partial output.
func (e *Engine) Transform(block *ir.Block) (*Result, error) {
	em := newEmitter(e.dialect)
	st := NewStack()
	res := &Result{}

	if err := e.transformBlock(block.Units, st, em, res); err != nil {
		return nil, err
	}

	res.Output = em.String()
	return res, nil
}

// transformBlock walks one block's units in order under a fresh scope.
// Nested blocks recurse; popping the scope on the way out destroys the
// block's declarations, exactly as the host language would at `}`.
func (e *Engine) transformBlock(units []ir.Unit, st *Stack, em *emitter, res *Result) error {
	st.Push()
	defer st.Pop()

	em.openBlock()
	for _, u := range units {
		switch u := u.(type) {
		case *ir.OpaqueStmt:
			em.opaque(u)

		case *ir.BridgeDecl:
			st.Declare(ir.BridgeVar{
				Ident:      u.Ident,
				Dir:        u.Dir,
				Constraint: u.Constraint,
				Position:   u.Position,
			})
			res.Declarations++
			em.bridgeDecl(u)

		case *ir.ClobberDecl:
			// Clobbers inform the resolver only; no statement comes out.
			st.DeclareClobber(ir.Clobber{
				Constraint: u.Constraint,
				Position:   u.Position,
			})

		case *ir.NestedBlock:
			if err := e.transformBlock(u.Units, st, em, res); err != nil {
				return err
			}

		case *ir.AsmBlock:
			res.AsmBlocks++
			if !u.HasText {
				continue
			}
			list, text, warns, err := resolveAsm(u, st, e.dialect)
			if err != nil {
				return err
			}
			res.Warnings = append(res.Warnings, warns...)
			em.asmInvocation(text, list, u.Options)
		}
	}
	em.closeBlock()

	return nil
}
