package engine

import (
	"strings"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// emitter serializes the transformed block back into host-language
// source. Opaque fragments are copied through verbatim; bridge
// declarations are stripped down to ordinary bindings; each resolved
// asm block becomes one invocation statement. The whole output is
// wrapped in braces so declarations made directly inside it fall out of
// scope at its end.
type emitter struct {
	buf     strings.Builder
	dialect *ir.DialectSpec
	depth   int
}

func newEmitter(d *ir.DialectSpec) *emitter {
	return &emitter{dialect: d}
}

func (em *emitter) String() string {
	return em.buf.String()
}

func (em *emitter) openBlock() {
	em.line("{")
	em.depth++
}

func (em *emitter) closeBlock() {
	em.depth--
	em.line("}")
}

// opaque copies a fragment through unchanged, preserving its internal
// formatting.
func (em *emitter) opaque(u *ir.OpaqueStmt) {
	if u.Text == "" {
		return
	}
	em.line(u.Text)
}

// bridgeDecl emits the declaration as an ordinary binding: the
// direction keyword and constraint are gone, since the host compiler
// must see only a plain `let`.
func (em *emitter) bridgeDecl(u *ir.BridgeDecl) {
	var b strings.Builder
	b.WriteString("let ")
	if u.Mut {
		b.WriteString("mut ")
	}
	b.WriteString(u.Ident)
	if u.Type != "" {
		b.WriteString(": ")
		b.WriteString(u.Type)
	}
	if u.HasInit {
		b.WriteString(" = ")
		b.WriteString(u.Init)
	}
	b.WriteString(";")
	em.line(b.String())
}

// asmInvocation emits one invocation in the positional colon-delimited
// format: instruction text, outputs, inputs, clobbers, options.
func (em *emitter) asmInvocation(text string, list *ir.ConstraintList, options []string) {
	var b strings.Builder
	b.WriteString(em.dialect.Macro)
	b.WriteString("(")
	b.WriteString(quoteHostString(text))

	b.WriteString(" :")
	writeSection(&b, constraintEntries(list.Outputs))
	b.WriteString(" :")
	writeSection(&b, constraintEntries(list.Inputs))
	b.WriteString(" :")
	writeSection(&b, quoteAll(list.Clobbers))
	b.WriteString(" :")
	writeSection(&b, quoteAll(options))
	if len(options) == 0 {
		// An empty final section still separates the colon from the
		// closing paren.
		b.WriteString(" ")
	}

	b.WriteString(");")
	em.line(b.String())
}

func writeSection(b *strings.Builder, entries []string) {
	if len(entries) == 0 {
		return
	}
	b.WriteString(" ")
	b.WriteString(strings.Join(entries, ", "))
}

// constraintEntries renders output/input entries as "constraint"(ident).
func constraintEntries(constraints []ir.Constraint) []string {
	entries := make([]string, 0, len(constraints))
	for _, c := range constraints {
		entries = append(entries, quoteHostString(c.Constraint)+"("+c.Ident+")")
	}
	return entries
}

func quoteAll(ss []string) []string {
	quoted := make([]string, 0, len(ss))
	for _, s := range ss {
		quoted = append(quoted, quoteHostString(s))
	}
	return quoted
}

// line writes one unit at the current indentation.
func (em *emitter) line(text string) {
	for i := 0; i < em.depth; i++ {
		em.buf.WriteString("    ")
	}
	em.buf.WriteString(text)
	em.buf.WriteString("\n")
}

// quoteHostString renders s as a host-language string literal.
func quoteHostString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
