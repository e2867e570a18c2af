package symbols

import (
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/types"
)

// Symbol is a declared identifier. Offset is the byte displacement assigned at
// declaration time; offsets grow across the whole compilation, not per block.
type Symbol struct {
	Name   string
	Type   *types.Type
	Offset int
	Tok    token.Token
}

// Env is one block scope chained to its enclosing scope.
type Env struct {
	table map[string]*Symbol
	prev  *Env
}

func NewEnv(prev *Env) *Env {
	return &Env{table: make(map[string]*Symbol), prev: prev}
}

// Prev is the enclosing scope, nil at the outermost block.
func (e *Env) Prev() *Env { return e.prev }

// Put binds name in this scope and returns the binding it replaced, if any.
// Bindings in enclosing scopes are never touched.
func (e *Env) Put(name string, sym *Symbol) *Symbol {
	old := e.table[name]
	e.table[name] = sym
	return old
}

// Get finds the nearest binding of name, walking outward.
func (e *Env) Get(name string) *Symbol {
	for env := e; env != nil; env = env.prev {
		if sym, ok := env.table[name]; ok {
			return sym
		}
	}
	return nil
}

// Lookup consults this scope only.
func (e *Env) Lookup(name string) *Symbol { return e.table[name] }

// Scopes tracks the innermost scope of a compilation.
type Scopes struct {
	top *Env
}

func (s *Scopes) Top() *Env { return s.top }

func (s *Scopes) Enter() { s.top = NewEnv(s.top) }

// Leave discards the innermost scope and restores its parent.
func (s *Scopes) Leave() {
	if s.top != nil {
		s.top = s.top.prev
	}
}
