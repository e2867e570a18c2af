package parser

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/diag"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/types"
)

func parse(t *testing.T, src string, cfg *config.Config) (*Parser, *ast.Node, error) {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	p := NewParser(lexer.NewLexer([]rune(src), 0, cfg), cfg)
	root, err := p.Parse()
	return p, root, err
}

func TestParseFromTokenSlice(t *testing.T) {
	toks := []token.Token{
		{Type: token.LBrace, Line: 1},
		{Type: token.Basic, Value: "int", Line: 1},
		{Type: token.Ident, Value: "i", Line: 1},
		{Type: token.Semi, Line: 1},
		{Type: token.Ident, Value: "i", Line: 2},
		{Type: token.Assign, Line: 2},
		{Type: token.Num, Value: "10", Line: 2},
		{Type: token.Semi, Line: 2},
		{Type: token.RBrace, Line: 3},
	}
	p := NewParser(token.NewSliceSource(toks), nil)
	root, err := p.Parse()
	be.Err(t, err, nil)

	be.Equal(t, root.Type, ast.Seq)
	set := root.Data.(ast.SeqNode).Head
	be.Equal(t, set.Type, ast.Set)
	d := set.Data.(ast.SetNode)
	be.Equal(t, d.Id.String(), "i")
	be.Equal(t, d.Expr.String(), "10")
	be.Equal(t, root.Data.(ast.SeqNode).Tail, ast.Null)
}

func TestEmptyProgram(t *testing.T) {
	_, root, err := parse(t, "{}", nil)
	be.Err(t, err, nil)
	be.Equal(t, root, ast.Null)
}

func TestDeclarationOffsets(t *testing.T) {
	p, _, err := parse(t, "{int i; float f; char c; bool b; int[20] arr; {float[2][3] m;}}", nil)
	be.Err(t, err, nil)
	be.Equal(t, p.Used(), 4+8+1+1+80+48)
}

func TestArrayOffsetIsFlattened(t *testing.T) {
	_, root, err := parse(t, "{int[2][3] m; int i; int j; i = m[i][j];}", nil)
	be.Err(t, err, nil)

	set := root.Data.(ast.SeqNode).Head.Data.(ast.SetNode)
	access := set.Expr
	be.Equal(t, access.Type, ast.Access)
	be.Equal(t, access.Typ, types.Int)
	index := access.Data.(ast.AccessNode).Index
	be.Equal(t, index.String(), "i * 12 + j * 4")
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"a + b * c", "a + b * c"},
		{"(a + b) * c", "a + b * c"},
		{"a - b - c", "a - b - c"},
	}
	for _, tt := range tests {
		_, root, err := parse(t, "{int a; int b; int c; a = "+tt.expr+";}", nil)
		be.Err(t, err, nil)
		expr := root.Data.(ast.SeqNode).Head.Data.(ast.SetNode).Expr
		be.Equal(t, expr.Type, ast.Arith)
		be.Equal(t, expr.String(), tt.want)
	}

	// Rendering flattens parentheses, so check the shape of (a + b) * c directly.
	_, root, err := parse(t, "{int a; int b; int c; a = (a + b) * c;}", nil)
	be.Err(t, err, nil)
	mul := root.Data.(ast.SeqNode).Head.Data.(ast.SetNode).Expr
	be.Equal(t, mul.Tok.Type, token.Star)
	be.Equal(t, mul.Data.(ast.ArithNode).Left.Tok.Type, token.Plus)
}

func TestBooleanShape(t *testing.T) {
	_, root, err := parse(t, "{bool a; int i; a = i < 1 || !a && i == 2;}", nil)
	be.Err(t, err, nil)
	or := root.Data.(ast.SeqNode).Head.Data.(ast.SetNode).Expr
	be.Equal(t, or.Type, ast.Or)
	d := or.Data.(ast.LogicalNode)
	be.Equal(t, d.Left.Type, ast.Rel)
	be.Equal(t, d.Right.Type, ast.And)
	be.Equal(t, d.Right.Data.(ast.LogicalNode).Left.Type, ast.Not)
}

func TestTypePromotion(t *testing.T) {
	_, root, err := parse(t, "{char c; int i; float f; f = c + i * f; i = -c;}", nil)
	be.Err(t, err, nil)
	seq := root.Data.(ast.SeqNode)
	be.Equal(t, seq.Head.Data.(ast.SetNode).Expr.Typ, types.Float)
	neg := seq.Tail.Data.(ast.SeqNode).Head.Data.(ast.SetNode).Expr
	be.Equal(t, neg.Type, ast.Unary)
	be.Equal(t, neg.Typ, types.Int)
}

func TestBreakCapturesInnermostLoop(t *testing.T) {
	_, root, err := parse(t, "{while (true) { do break; while (true); break; }}", nil)
	be.Err(t, err, nil)

	outer := root.Data.(ast.SeqNode).Head
	be.Equal(t, outer.Type, ast.While)
	body := outer.Data.(ast.WhileNode).Body.Data.(ast.SeqNode)
	inner := body.Head
	be.Equal(t, inner.Type, ast.Do)

	innerBreak := inner.Data.(ast.DoNode).Body
	be.True(t, innerBreak.Data.(ast.BreakNode).Loop == inner)
	outerBreak := body.Tail.Data.(ast.SeqNode).Head
	be.True(t, outerBreak.Data.(ast.BreakNode).Loop == outer)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.Kind
		msg  string
	}{
		{"{ x = 1; }", diag.ScopeError, "x undeclared"},
		{"{ int i; i = y; }", diag.ScopeError, "y undeclared"},
		{"{ { int i; } i = 1; }", diag.ScopeError, "i undeclared"},
		{"{ break; }", diag.ControlFlowError, "unenclosed break"},
		{"{ bool b; if (b) { while (b) ; break; } }", diag.ControlFlowError, "unenclosed break"},
		{"{ int i; if (i) ; }", diag.TypeError, "Boolean required in if"},
		{"{ int i; if (i) ; else ; }", diag.TypeError, "Boolean required in if"},
		{"{ float f; while (f) ; }", diag.TypeError, "boolean expression required in while"},
		{"{ int i; do ; while (i + 1); }", diag.TypeError, "boolean expression required in do"},
		{"{ bool b; b = !1; }", diag.TypeError, "operand of '!' must be bool, got int"},
		{"{ bool b; b = -b; }", diag.TypeError, "operand of unary '-' must be numeric, got bool"},
		{"{ bool b; int i; b = b && i; }", diag.TypeError, "operands of '&&' must be bool, got bool and int"},
		{"{ int[3] a; int i; i = a; }", diag.TypeError, "cannot assign [3]int to i of type int"},
		{"{ int[3] a; bool b; a[0] = b; }", diag.TypeError, "cannot assign bool to element of type int"},
		{"{ int[3] a; bool b; b = a[b]; }", diag.TypeError, "array index must be numeric, got bool"},
		{"{ int[3] a; int i; i = a[0][1]; }", diag.TypeError, "cannot index a of type int"},
		{"{ int i; i = 1 }", diag.SyntaxError, "expected ';', found '}'"},
		{"{ int i; i = 1; } }", diag.SyntaxError, "expected end of input, found '}'"},
		{"{ int; }", diag.SyntaxError, "expected identifier, found ';'"},
		{"{ int[x] a; }", diag.SyntaxError, "expected integer literal, found identifier 'x'"},
		{"{ int i; i = 1 < 2 < 3; }", diag.SyntaxError, "expected ';', found '<'"},
		{"{ int i; i = 1 & 2; }", diag.SyntaxError, "unexpected '&'"},
		{"{ int i; /* never closed }", diag.SyntaxError, "unterminated comment"},
		{"{ int i; i = 1; int j; }", diag.SyntaxError, "expected statement, found type 'int'"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, root, err := parse(t, tt.src, nil)
			be.True(t, root == nil)
			kind, ok := diag.KindOf(err)
			be.True(t, ok)
			be.Equal(t, kind, tt.kind)
			be.Equal(t, err.(*diag.Error).Msg, tt.msg)
		})
	}
}

func TestErrorLine(t *testing.T) {
	_, _, err := parse(t, "{\n int i;\n\n i = j;\n}", nil)
	de := err.(*diag.Error)
	be.Equal(t, de.Tok.Line, 4)
	be.Equal(t, de.Tok.Column, 6)
	be.Equal(t, err.Error(), "scope error near line 4: j undeclared")
}

func TestRedeclaration(t *testing.T) {
	p, root, err := parse(t, "{int x; float x; x = 1.5;}", nil)
	be.Err(t, err, nil)
	set := root.Data.(ast.SeqNode).Head.Data.(ast.SetNode)
	be.Equal(t, set.Id.Typ, types.Float)
	be.Equal(t, len(p.Warnings()), 1)
	be.Equal(t, p.Warnings()[0].Type, config.WarnRedeclare)

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatRedeclare, false)
	_, _, err = parse(t, "{int x; float x;}", cfg)
	kind, _ := diag.KindOf(err)
	be.Equal(t, kind, diag.ScopeError)
}

func TestWarnings(t *testing.T) {
	cfg := config.NewConfig()
	for i := config.Warning(0); i < config.WarnCount; i++ {
		cfg.SetWarning(i, true)
	}

	tests := []struct {
		src  string
		want []config.Warning
	}{
		{"{int x; {int x;}}", []config.Warning{config.WarnShadow}},
		{"{bool b; if (b) ;}", []config.Warning{config.WarnEmptyBody}},
		{"{bool b; while (b) ;}", []config.Warning{config.WarnEmptyBody}},
		{"{bool b; do ; while (b);}", nil},
		{"{while (true) { break; ; }}", []config.Warning{config.WarnUnreachableCode}},
		{"{char c; int i; c = i;}", []config.Warning{config.WarnNarrowing}},
		{"{char[2] c; float f; c[0] = f;}", []config.Warning{config.WarnNarrowing}},
		{"{int i; float f; f = i;}", nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, _, err := parse(t, tt.src, cfg)
			be.Err(t, err, nil)
			var got []config.Warning
			for _, w := range p.Warnings() {
				got = append(got, w.Type)
			}
			be.Equal(t, got, tt.want)
		})
	}
}

func TestDisabledWarningsAreDropped(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetWarning(config.WarnEmptyBody, false)
	p, _, err := parse(t, "{bool b; while (b) ;}", cfg)
	be.Err(t, err, nil)
	be.Equal(t, len(p.Warnings()), 0)
}

func TestRealConstants(t *testing.T) {
	tests := map[string]string{
		"2.5":  "2.5",
		"2.0":  "2.0",
		"7.":   "7.0",
		"0.25": "0.25",
	}
	for lit, want := range tests {
		_, root, err := parse(t, "{float f; f = "+lit+";}", nil)
		be.Err(t, err, nil)
		c := root.Data.(ast.SeqNode).Head.Data.(ast.SetNode).Expr
		be.Equal(t, c.Typ, types.Float)
		be.Equal(t, c.String(), want)
	}
}
