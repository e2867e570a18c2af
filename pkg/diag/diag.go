// Package diag defines the errors that abort a compilation.
package diag

import (
	"errors"
	"fmt"

	"github.com/xplshn/tacc/pkg/token"
)

type Kind int

const (
	SyntaxError Kind = iota
	ScopeError
	TypeError
	ControlFlowError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case ScopeError:
		return "scope error"
	case TypeError:
		return "type error"
	case ControlFlowError:
		return "control-flow error"
	default:
		return "error"
	}
}

// Tag is the short name printed after a rendered diagnostic, e.g. "[syntax]".
func (k Kind) Tag() string {
	switch k {
	case SyntaxError:
		return "syntax"
	case ScopeError:
		return "scope"
	case TypeError:
		return "type"
	case ControlFlowError:
		return "control-flow"
	default:
		return "error"
	}
}

// Error is a compilation failure located at Tok.
type Error struct {
	Kind Kind
	Tok  token.Token
	Msg  string
}

func (e *Error) Error() string {
	if e.Tok.Line > 0 {
		return fmt.Sprintf("%s near line %d: %s", e.Kind, e.Tok.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func Errorf(kind Kind, tok token.Token, format string, args ...any) *Error {
	return &Error{Kind: kind, Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind of err; ok is false for errors not raised by the compiler.
func KindOf(err error) (kind Kind, ok bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
