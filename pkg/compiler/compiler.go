// Package compiler wires the scanner, parser and translator into one call.
package compiler

import (
	"fmt"
	"io"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/ir"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/parser"
	"github.com/xplshn/tacc/pkg/token"
)

// Result is everything one compilation produced. On failure only Warnings is set.
type Result struct {
	Root     *ast.Node
	Prog     *ir.Program
	Warnings []parser.Warning
	Used     int
}

// Compile translates src, a complete program. Every call owns its own scanner, scopes
// and counters.
func Compile(src []rune, fileIndex int, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	p := parser.NewParser(lexer.NewLexer(src, fileIndex, cfg), cfg)
	root, err := p.Parse()
	res := &Result{Warnings: p.Warnings()}
	if err != nil {
		return res, err
	}
	res.Root, res.Used = root, p.Used()
	res.Prog = codegen.NewContext().Program(root)
	return res, nil
}

// CompileString is Compile for callers holding a string, mostly tests.
func CompileString(src string, cfg *config.Config) (string, error) {
	res, err := Compile([]rune(src), 0, cfg)
	if err != nil {
		return "", err
	}
	return res.Prog.String(), nil
}

// DumpTokens writes one line per token up to and including EOF.
func DumpTokens(w io.Writer, src []rune, fileIndex int, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	lx := lexer.NewLexer(src, fileIndex, cfg)
	for {
		tok := lx.Next()
		if _, err := fmt.Fprintf(w, "%d:%d\t%-16s %s\n", tok.Line, tok.Column, tok.Type.Describe(), tok.Value); err != nil {
			return err
		}
		if tok.Type == token.EOF {
			return nil
		}
	}
}
