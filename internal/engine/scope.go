package engine

import "github.com/gaoxiaojun/rusty-asm/internal/ir"

// scopedVar is one bridge variable entry in a scope. A redeclaration of
// the same identifier in the same scope marks the earlier entry dead
// rather than removing it, so the scope's declaration order stays
// intact for diagnostics while lookups see only the newest binding.
type scopedVar struct {
	v    ir.BridgeVar
	live bool
}

// Scope holds the declarations introduced in one block.
type Scope struct {
	vars     []scopedVar
	clobbers []ir.Clobber
}

// Stack is the scope stack for one transform invocation. It mirrors the
// host language's block scoping exactly: entering a block pushes a
// scope, leaving it pops the scope and destroys everything it owns,
// restoring visibility of anything it shadowed.
//
// A Stack is owned exclusively by one invocation and is not safe for
// concurrent use.
type Stack struct {
	scopes []*Scope
}

// NewStack creates an empty scope stack. The engine pushes a scope for
// the top-level block itself, so declarations made directly in it fall
// out of scope at its end.
func NewStack() *Stack {
	return &Stack{}
}

// Push enters a new block: a fresh empty scope becomes the top.
func (s *Stack) Push() {
	s.scopes = append(s.scopes, &Scope{})
}

// Pop leaves the current block, discarding the top scope and everything
// it owns.
func (s *Stack) Pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// Depth returns the number of active scopes.
func (s *Stack) Depth() int {
	return len(s.scopes)
}

// Declare inserts a bridge variable into the top scope, shadowing any
// live same-named entry already there.
func (s *Stack) Declare(v ir.BridgeVar) {
	top := s.top()
	for i := range top.vars {
		if top.vars[i].live && top.vars[i].v.Ident == v.Ident {
			top.vars[i].live = false
		}
	}
	top.vars = append(top.vars, scopedVar{v: v, live: true})
}

// DeclareClobber inserts a clobber declaration into the top scope.
func (s *Stack) DeclareClobber(c ir.Clobber) {
	top := s.top()
	top.clobbers = append(top.clobbers, c)
}

// Resolve searches the stack innermost-first and returns the first live
// variable with the given identifier, or false if none is visible.
func (s *Stack) Resolve(ident string) (ir.BridgeVar, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		scope := s.scopes[i]
		for j := len(scope.vars) - 1; j >= 0; j-- {
			if scope.vars[j].live && scope.vars[j].v.Ident == ident {
				return scope.vars[j].v, true
			}
		}
	}
	return ir.BridgeVar{}, false
}

// Visible returns every bridge variable a reference could currently
// resolve to: one entry per identifier, innermost binding winning.
// Order is outermost scope first, declaration order within a scope.
func (s *Stack) Visible() []ir.BridgeVar {
	byIdent := make(map[string]ir.BridgeVar)
	var order []string
	for _, scope := range s.scopes {
		for _, sv := range scope.vars {
			if !sv.live {
				continue
			}
			if _, seen := byIdent[sv.v.Ident]; !seen {
				order = append(order, sv.v.Ident)
			}
			byIdent[sv.v.Ident] = sv.v
		}
	}
	vars := make([]ir.BridgeVar, 0, len(order))
	for _, ident := range order {
		vars = append(vars, byIdent[ident])
	}
	return vars
}

// Clobbers returns the clobber declarations currently in scope, in
// declaration order from the outermost scope inward. Identical
// constraint strings collapse to their first occurrence; a register
// destroyed once is destroyed.
func (s *Stack) Clobbers() []ir.Clobber {
	seen := make(map[string]bool)
	var out []ir.Clobber
	for _, scope := range s.scopes {
		for _, c := range scope.clobbers {
			if seen[c.Constraint] {
				continue
			}
			seen[c.Constraint] = true
			out = append(out, c)
		}
	}
	return out
}

func (s *Stack) top() *Scope {
	if len(s.scopes) == 0 {
		s.Push()
	}
	return s.scopes[len(s.scopes)-1]
}
