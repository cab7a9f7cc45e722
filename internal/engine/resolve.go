package engine

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

// refEntry is one constraint slot under construction: the owning
// identifier, its raw (unprefixed) constraint, and for tied inputs the
// output position they are bound to.
type refEntry struct {
	ident  string
	raw    string
	tiedTo int // output index for tied inputs, else -1
}

// segment is one piece of scanned instruction text: either literal text
// or a reference to be replaced by a positional placeholder.
type segment struct {
	text  string
	ident string // non-empty for reference segments
}

// resolveAsm resolves one asm block against the current scope stack.
//
// Resolution is two-phase: first every reference is collected against a
// snapshot of the live declarations and assigned a slot in first-use
// order, then the text is rewritten in a single deterministic pass.
// Splitting the phases keeps index assignment independent of later
// clobber fixups, which may append constraint slots.
func resolveAsm(blk *ir.AsmBlock, st *Stack, d *ir.DialectSpec) (*ir.ConstraintList, string, []Warning, error) {
	r := &resolver{stack: st, dialect: d, block: blk}

	if err := r.scan(blk.Text); err != nil {
		return nil, "", nil, err
	}
	r.fixOverlappingClobbers()
	r.warnUnused()
	r.checkOptions()

	return r.finalize(), r.rewrite(), r.warnings, nil
}

type resolver struct {
	stack   *Stack
	dialect *ir.DialectSpec
	block   *ir.AsmBlock

	outs     []refEntry
	ins      []refEntry
	clobbers []string
	segments []segment
	used     map[string]bool
	warnings []Warning
}

// scan tokenizes the instruction text left to right: `$$` is a literal
// escape, `$identifier` is a reference. Each distinct reference is
// resolved and assigned the next slot in its category at first use.
func (r *resolver) scan(text string) error {
	r.used = make(map[string]bool)
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			r.segments = append(r.segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(text) {
		c, size := utf8.DecodeRuneInString(text[i:])
		if c != '$' {
			lit.WriteRune(c)
			i += size
			continue
		}
		i += size

		if i < len(text) && text[i] == '$' {
			// $$ escapes to a literal $ with no resolution attempted.
			lit.WriteByte('$')
			i++
			continue
		}

		ident, length := identAt(text[i:])
		if ident == "" {
			r.warn(blkPos(r.block), "expected an identifier after `$`; use `$$` for a literal dollar sign")
			lit.WriteByte('$')
			continue
		}
		i += length

		if err := r.reference(ident); err != nil {
			return err
		}
		flush()
		r.segments = append(r.segments, segment{ident: ident})
	}
	flush()
	return nil
}

// reference resolves one symbolic reference and, at first use, assigns
// its constraint slot(s).
func (r *resolver) reference(ident string) error {
	v, ok := r.stack.Resolve(ident)
	if !ok {
		return NewUnresolvedReferenceError(blkPos(r.block), ident)
	}
	if r.used[ident] {
		return nil
	}
	r.used[ident] = true

	switch v.Dir {
	case ir.DirectionIn:
		r.ins = append(r.ins, refEntry{ident: ident, raw: v.Constraint, tiedTo: -1})
	case ir.DirectionOut:
		r.outs = append(r.outs, refEntry{ident: ident, raw: v.Constraint, tiedTo: -1})
	case ir.DirectionInOut:
		// One output slot plus one input slot tied to it.
		outIdx := len(r.outs)
		r.outs = append(r.outs, refEntry{ident: ident, raw: v.Constraint, tiedTo: -1})
		r.ins = append(r.ins, refEntry{ident: ident, tiedTo: outIdx})
	}
	return nil
}

// fixOverlappingClobbers reconciles the clobber list with the resolved
// inputs and outputs. A clobber naming the same explicit register as an
// output is dropped (the output already tells the compiler the register
// is written). One naming an input's register promotes the input to an
// output with a tied input, since the value is both consumed and
// destroyed there.
func (r *resolver) fixOverlappingClobbers() {
	for _, c := range r.stack.Clobbers() {
		if r.clobberMatchesOutput(c) {
			continue
		}
		if r.promoteClobberedInput(c) {
			continue
		}
		r.clobbers = append(r.clobbers, r.dialect.ClobberPrefix+c.Constraint)
	}
}

func (r *resolver) clobberMatchesOutput(c ir.Clobber) bool {
	for _, o := range r.outs {
		if reg := explicitReg(o.raw); reg != "" && reg == c.Constraint {
			r.warn(c.Position, "clobber names the same register as output `"+o.ident+"`; ignoring clobber")
			return true
		}
	}
	return false
}

func (r *resolver) promoteClobberedInput(c ir.Clobber) bool {
	for i, in := range r.ins {
		if in.tiedTo >= 0 {
			continue
		}
		if reg := explicitReg(in.raw); reg != "" && reg == c.Constraint {
			r.outs = append(r.outs, refEntry{ident: in.ident, raw: in.raw, tiedTo: -1})
			r.ins[i] = refEntry{ident: in.ident, tiedTo: len(r.outs) - 1}
			return true
		}
	}
	return false
}

// warnUnused flags live bridge variables the block never referenced.
func (r *resolver) warnUnused() {
	for _, v := range r.stack.Visible() {
		if !r.used[v.Ident] {
			r.warn(v.Position, "bridge variable `"+v.Ident+"` not used in asm block")
		}
	}
}

// checkOptions flags option strings the dialect does not accept.
func (r *resolver) checkOptions() {
	for _, opt := range r.block.Options {
		if !r.dialect.AllowsOption(opt) {
			r.warn(blkPos(r.block), "option "+strconv.Quote(opt)+" not recognized by dialect "+strconv.Quote(r.dialect.Name))
		}
	}
}

// finalize freezes the constraint list in the positional order the
// invocation format requires: outputs first, then inputs, then clobbers.
func (r *resolver) finalize() *ir.ConstraintList {
	list := &ir.ConstraintList{Clobbers: r.clobbers}

	for i, o := range r.outs {
		list.Outputs = append(list.Outputs, ir.Constraint{
			Index:      i,
			Constraint: r.dialect.OutputPrefix + o.raw,
			Ident:      o.ident,
			TiedTo:     -1,
		})
	}
	for j, in := range r.ins {
		constraint := in.raw
		if in.tiedTo >= 0 {
			constraint = strconv.Itoa(in.tiedTo)
		}
		list.Inputs = append(list.Inputs, ir.Constraint{
			Index:      len(r.outs) + j,
			Constraint: constraint,
			Ident:      in.ident,
			TiedTo:     in.tiedTo,
		})
	}
	return list
}

// rewrite replaces every reference segment with its positional
// placeholder. Outputs are checked first so an inout variable, present
// in both lists, renders as its output position.
func (r *resolver) rewrite() string {
	var b strings.Builder
	for _, seg := range r.segments {
		if seg.ident == "" {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(r.dialect.Sigil)
		b.WriteString(strconv.Itoa(r.placeholderIndex(seg.ident)))
	}
	return b.String()
}

func (r *resolver) placeholderIndex(ident string) int {
	for i, o := range r.outs {
		if o.ident == ident {
			return i
		}
	}
	for j, in := range r.ins {
		if in.ident == ident {
			return len(r.outs) + j
		}
	}
	// Unreachable: every reference segment was resolved during scan.
	return 0
}

func (r *resolver) warn(pos ir.Position, msg string) {
	r.warnings = append(r.warnings, Warning{Pos: pos, Message: msg})
}

func blkPos(blk *ir.AsmBlock) ir.Position {
	return blk.Position
}

// identAt parses an identifier at the start of text, returning the
// identifier and its byte length, or "" if none is present. A lone
// underscore is not a valid identifier.
func identAt(text string) (string, int) {
	if text == "" {
		return "", 0
	}
	first, size := utf8.DecodeRuneInString(text)
	if first != '_' && !unicode.IsLetter(first) {
		return "", 0
	}
	length := size
	for length < len(text) {
		c, s := utf8.DecodeRuneInString(text[length:])
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		length += s
	}
	ident := text[:length]
	if ident == "_" {
		return "", 0
	}
	return ident, length
}

// explicitReg returns the register named by an explicit-register
// constraint of the form "{name}", or "".
func explicitReg(raw string) string {
	if len(raw) >= 2 && raw[0] == '{' && raw[len(raw)-1] == '}' {
		return raw[1 : len(raw)-1]
	}
	return ""
}
