// Package golden extracts translator test cases from Markdown documents. A case starts
// at a heading "Test: <name>" and is made of fenced code blocks:
//
//	source    the program (required)
//	tac       the exact expected output
//	error     "<kind>" or "<kind>: <message>", e.g. "scope: x undeclared"
//	flags     -W/-F flags, --pedantic and --std=<name>, whitespace separated
//	warnings  expected warning names, one per line, in order, or "none"
//
// A case needs a source fence and exactly one of tac or error.
package golden

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type FenceType string

const (
	FenceSource   FenceType = "source"
	FenceTAC      FenceType = "tac"
	FenceError    FenceType = "error"
	FenceFlags    FenceType = "flags"
	FenceWarnings FenceType = "warnings"
)

// ExpectedError is the failure a case must produce.
type ExpectedError struct {
	Kind    string // diag.Kind tag: syntax, scope, type, control-flow
	Message string // empty means any message
}

type Case struct {
	Name     string
	Line     int
	Source   string
	TAC      string
	HasTAC   bool
	Error    *ExpectedError
	Flags    []string
	Warnings []string
}

// Std returns the --std value named in Flags, or "" when none is given.
func (c *Case) Std() string {
	for _, f := range c.Flags {
		if v, ok := strings.CutPrefix(f, "--std="); ok {
			return v
		}
	}
	return ""
}

// ConfigFlags returns the -W/-F flags, without --std and --pedantic.
func (c *Case) ConfigFlags() []string {
	var out []string
	for _, f := range c.Flags {
		if !strings.HasPrefix(f, "--std=") && f != "--pedantic" {
			out = append(out, f)
		}
	}
	return out
}

// Extract parses a Markdown document and returns its cases in document order
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case

	finish := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if name, ok := strings.CutPrefix(heading, "Test: "); ok {
				if err := finish(); err != nil {
					return ast.WalkStop, err
				}
				current = &Case{Name: strings.TrimSpace(name), Line: lineOf(n, markdown)}
			}

		case *ast.FencedCodeBlock:
			lang := FenceType(n.Language(markdown))
			line := lineOf(n, markdown)
			if current == nil {
				if lang != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, lang)
				}
				return ast.WalkContinue, nil
			}
			if err := current.addFence(lang, blockContent(n, markdown)); err != nil {
				return ast.WalkStop, fmt.Errorf("line %d: test '%s': %w", line, current.Name, err)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *Case) addFence(lang FenceType, content string) error {
	switch lang {
	case FenceSource:
		if c.Source != "" {
			return fmt.Errorf("multiple source fences")
		}
		c.Source = content
	case FenceTAC:
		if c.HasTAC {
			return fmt.Errorf("multiple tac fences")
		}
		// The fence always ends in a newline; the output never does.
		c.TAC, c.HasTAC = strings.TrimSuffix(content, "\n"), true
	case FenceError:
		if c.Error != nil {
			return fmt.Errorf("multiple error fences")
		}
		text := strings.TrimSpace(content)
		kind, msg, _ := strings.Cut(text, ":")
		c.Error = &ExpectedError{Kind: strings.TrimSpace(kind), Message: strings.TrimSpace(msg)}
	case FenceFlags:
		c.Flags = append(c.Flags, strings.Fields(content)...)
	case FenceWarnings:
		names := strings.Fields(content)
		if len(names) == 1 && names[0] == "none" {
			names = nil
		}
		c.Warnings = append(c.Warnings, names...)
		if c.Warnings == nil {
			c.Warnings = []string{}
		}
	case "":
	default:
		return fmt.Errorf("unknown fence language '%s'", lang)
	}
	return nil
}

func validate(c *Case) error {
	if c.Source == "" {
		return fmt.Errorf("test '%s' has no source fence", c.Name)
	}
	if !c.HasTAC && c.Error == nil {
		return fmt.Errorf("test '%s' has neither a tac nor an error fence", c.Name)
	}
	if c.HasTAC && c.Error != nil {
		return fmt.Errorf("test '%s' expects both output and an error", c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
