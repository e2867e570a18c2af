package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/diag"
	"github.com/xplshn/tacc/pkg/token"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

// Reporter renders diagnostics with the offending source line and a caret. Tokens
// locate their file through FileIndex.
type Reporter struct {
	Out   io.Writer
	Files []SourceFileRecord
	Color bool
}

// NewReporter writes to out, coloring only when out is a terminal
func NewReporter(out io.Writer, files []SourceFileRecord) *Reporter {
	r := &Reporter{Out: out, Files: files}
	if f, ok := out.(*os.File); ok {
		r.Color = term.IsTerminal(int(f.Fd()))
	}
	return r
}

func (r *Reporter) paint(code, s string) string {
	if !r.Color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// findFileAndLine converts a token to a file-specific location
func (r *Reporter) findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.Files) {
		return "unknown", tok.Line, tok.Column
	}
	return r.Files[tok.FileIndex].Name, tok.Line, tok.Column
}

// printErrorLine prints the source line and a caret indicating the error position
func (r *Reporter) printErrorLine(tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.Files) || tok.Line == 0 {
		return
	}

	content := r.Files[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, ch := range content {
		if lineNum <= 1 {
			break
		}
		if ch == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(r.Out, "  %s\n", string(content[lineStart:lineEnd]))

	caret := "^"
	if tok.Len > 1 {
		caret += strings.Repeat("~", tok.Len-1)
	}
	col := tok.Column
	if col < 1 {
		col = 1
	}
	fmt.Fprintf(r.Out, "  %s%s\n", strings.Repeat(" ", col-1), r.paint("32", caret))
}

// Error prints a compilation failure. Errors the compiler did not raise are printed
// without a location.
func (r *Reporter) Error(err error) {
	var de *diag.Error
	if !errors.As(err, &de) {
		fmt.Fprintf(r.Out, "%s %v\n", r.paint("31", "error:"), err)
		return
	}
	filename, line, col := r.findFileAndLine(de.Tok)
	fmt.Fprintf(r.Out, "%s:%d:%d: %s %s [%s]\n", filename, line, col, r.paint("31", "error:"), de.Msg, de.Kind.Tag())
	r.printErrorLine(de.Tok)
}

// Warn prints a formatted warning message if the corresponding warning is enabled
func (r *Reporter) Warn(cfg *config.Config, wt config.Warning, tok token.Token, format string, args ...any) {
	if !cfg.IsWarningEnabled(wt) {
		return
	}
	filename, line, col := r.findFileAndLine(tok)
	fmt.Fprintf(r.Out, "%s:%d:%d: %s ", filename, line, col, r.paint("33", "warning:"))
	fmt.Fprintf(r.Out, format, args...)
	fmt.Fprintf(r.Out, " [-W%s]\n", cfg.Warnings[wt].Name)
	r.printErrorLine(tok)
}
