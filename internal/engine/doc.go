// Package engine implements the rusty-asm transform: a single-pass,
// synchronous walk over a parsed block that tracks bridge and clobber
// declarations on a scope stack, resolves every symbolic reference in
// each embedded asm block, and emits the rewritten source.
//
// ARCHITECTURE:
//
// One invocation, one scope stack:
// Each Transform call owns its scope stack exclusively. There is no
// shared mutable state, no suspension point, and no I/O, so concurrent
// invocations (one per use site in a large compilation) need no
// coordination as long as each gets its own Engine call.
//
// Transform flow:
//  1. The parser's unit sequence is walked in order.
//  2. Bridge and clobber declarations update the top scope.
//  3. Nested blocks push a scope, recurse, and pop it, so inner
//     declarations never leak past their block.
//  4. Each asm block is resolved against a snapshot of the live
//     declarations: references are assigned positional indices in
//     first-use order, then the instruction text is rewritten in a
//     single deterministic pass.
//  5. The emitter assembles the output block, preserving the relative
//     order of everything that was not an asm block.
//
// Errors are fatal to the invocation: the engine either returns a fully
// rewritten block or a diagnostic, never partial output. Warnings
// (unused bridge variables, clobber overlaps, stray sigils) accumulate
// on the result and never abort.
package engine
