package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gaoxiaojun/rusty-asm/internal/ir"
)

func TestEmit_BridgeDeclForms(t *testing.T) {
	tests := []struct {
		name string
		decl ir.BridgeDecl
		want string
	}{
		{
			"plain",
			ir.BridgeDecl{Ident: "x", Init: "5", HasInit: true},
			"let x = 5;\n",
		},
		{
			"mut",
			ir.BridgeDecl{Ident: "x", Mut: true, Init: "a + b", HasInit: true},
			"let mut x = a + b;\n",
		},
		{
			"typed",
			ir.BridgeDecl{Ident: "x", Type: "u64", Init: "5", HasInit: true},
			"let x: u64 = 5;\n",
		},
		{
			"no init",
			ir.BridgeDecl{Ident: "x"},
			"let x;\n",
		},
		{
			"typed no init",
			ir.BridgeDecl{Ident: "x", Mut: true, Type: "u32"},
			"let mut x: u32;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := newEmitter(ir.DefaultDialect())
			em.bridgeDecl(&tt.decl)
			assert.Equal(t, tt.want, em.String())
		})
	}
}

func TestEmit_AsmInvocationAllSections(t *testing.T) {
	em := newEmitter(ir.DefaultDialect())
	list := &ir.ConstraintList{
		Outputs: []ir.Constraint{
			{Index: 0, Constraint: "=r", Ident: "x", TiedTo: -1},
		},
		Inputs: []ir.Constraint{
			{Index: 1, Constraint: "0", Ident: "x", TiedTo: 0},
			{Index: 2, Constraint: "m", Ident: "y", TiedTo: -1},
		},
		Clobbers: []string{"~eax", "~memory"},
	}
	em.asmInvocation("xchg $0, $2", list, []string{"volatile"})

	assert.Equal(t,
		`asm!("xchg $0, $2" : "=r"(x) : "0"(x), "m"(y) : "~eax", "~memory" : "volatile");`+"\n",
		em.String())
}

func TestEmit_AsmInvocationEmptySections(t *testing.T) {
	em := newEmitter(ir.DefaultDialect())
	em.asmInvocation("nop", &ir.ConstraintList{}, nil)

	assert.Equal(t, `asm!("nop" : : : : );`+"\n", em.String())
}

func TestEmit_AsmInvocationCustomMacro(t *testing.T) {
	d := ir.DefaultDialect()
	d.Macro = "llvm_asm!"

	em := newEmitter(d)
	em.asmInvocation("nop", &ir.ConstraintList{}, nil)
	assert.Equal(t, `llvm_asm!("nop" : : : : );`+"\n", em.String())
}

func TestEmit_Indentation(t *testing.T) {
	em := newEmitter(ir.DefaultDialect())
	em.openBlock()
	em.opaque(&ir.OpaqueStmt{Text: "let a = 1;"})
	em.openBlock()
	em.opaque(&ir.OpaqueStmt{Text: "let b = 2;"})
	em.closeBlock()
	em.closeBlock()

	assert.Equal(t, "{\n    let a = 1;\n    {\n        let b = 2;\n    }\n}\n", em.String())
}

func TestEmit_EmptyOpaqueSkipped(t *testing.T) {
	em := newEmitter(ir.DefaultDialect())
	em.opaque(&ir.OpaqueStmt{Text: ""})
	assert.Empty(t, em.String())
}

func TestQuoteHostString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nop", `"nop"`},
		{`mov "x"`, `"mov \"x\""`},
		{`back\slash`, `"back\\slash"`},
		{"line\none", `"line\none"`},
		{"tab\there", `"tab\there"`},
		{"cr\rhere", `"cr\rhere"`},
		{"nul\x00here", `"nul\0here"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteHostString(tt.in), "input %q", tt.in)
	}
}
