package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/symbols"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/types"
)

func ident(name string, typ *types.Type) *ast.Node {
	return ast.NewIdent(token.Token{Type: token.Ident, Value: name}, &symbols.Symbol{Name: name, Type: typ})
}

func op(t token.Type) token.Token { return token.Token{Type: t} }

// must returns a checker for constructor results: must(t)(ast.NewIf(...)).
func must(t *testing.T) func(*ast.Node, error) *ast.Node {
	return func(n *ast.Node, err error) *ast.Node {
		t.Helper()
		be.Err(t, err, nil)
		return n
	}
}

// stmtContext returns a context whose labels 1 and 2 are taken, the way a program's
// entry and exit labels would be.
func stmtContext() *Context {
	ctx := NewContext()
	ctx.NewLabel()
	ctx.NewLabel()
	return ctx
}

func TestStatementLabelThreading(t *testing.T) {
	b := ident("b", types.Bool)
	x := ident("x", types.Int)
	setX := func(v int) *ast.Node {
		return must(t)(ast.NewSet(op(token.Assign), x, ast.NewIntConstant(v)))
	}

	whileNode := ast.NewLoop(ast.While, op(token.While))
	be.Err(t, ast.InitWhile(whileNode, b, setX(0)), nil)
	doNode := ast.NewLoop(ast.Do, op(token.Do))
	be.Err(t, ast.InitDo(doNode, setX(0), b), nil)

	tests := []struct {
		name string
		stmt *ast.Node
		want string
	}{
		{"if", must(t)(ast.NewIf(op(token.If), b, setX(0))),
			"\tiffalse b goto L2\nL3:\tx = 0\n"},
		{"else", must(t)(ast.NewElse(op(token.If), b, setX(0), setX(42))),
			"\tiffalse b goto L4\nL3:\tx = 0\n\tgoto L2\nL4:\tx = 42\n"},
		{"while", whileNode,
			"\tiffalse b goto L2\nL3:\tx = 0\n\tgoto L1\n"},
		{"do", doNode,
			"\tx = 0\nL3:\tif b goto L1\n"},
		{"empty", ast.Null, ""},
		{"seq with empty head", ast.NewSeq(ast.Null, setX(7)), "\tx = 7\n"},
		{"seq", ast.NewSeq(setX(1), ast.NewSeq(setX(2), ast.Null)),
			"\tx = 1\nL3:\tx = 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := stmtContext()
			ctx.GenStmt(tt.stmt, 1, 2)
			if diff := cmp.Diff(tt.want, ctx.Prog().String()); diff != "" {
				t.Errorf("GenStmt mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMaterializeBoolean(t *testing.T) {
	x := ident("x", types.Bool)
	y := ident("y", types.Bool)

	tests := []struct {
		name string
		expr *ast.Node
		want string
	}{
		{"not", must(t)(ast.NewNot(op(token.Not), x)),
			"\tif x goto L1\n\tt1 = true\n\tgoto L2\nL1:\tt1 = false\nL2:"},
		{"or", must(t)(ast.NewOr(op(token.OrOr), x, y)),
			"\tif x goto L3\n\tiffalse y goto L1\nL3:\tt1 = true\n\tgoto L2\nL1:\tt1 = false\nL2:"},
		{"and", must(t)(ast.NewAnd(op(token.AndAnd), x, y)),
			"\tiffalse x goto L1\n\tiffalse y goto L1\n\tt1 = true\n\tgoto L2\nL1:\tt1 = false\nL2:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			got := ctx.Gen(tt.expr)
			be.Equal(t, got.Type, ast.Temp)
			be.Equal(t, got.String(), "t1")
			be.Equal(t, got.Typ, types.Bool)
			if diff := cmp.Diff(tt.want, ctx.Prog().String()); diff != "" {
				t.Errorf("Gen mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmitJumps(t *testing.T) {
	tests := []struct {
		to, from int
		want     string
	}{
		{4, 5, "\tif c goto L4\n\tgoto L5\n"},
		{4, 0, "\tif c goto L4\n"},
		{0, 5, "\tiffalse c goto L5\n"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		ctx := NewContext()
		ctx.EmitJumps("c", tt.to, tt.from)
		be.Equal(t, ctx.Prog().String(), tt.want)
	}
}

func TestConstantJumping(t *testing.T) {
	tr := ast.NewBoolConstant(op(token.True), true)
	fa := ast.NewBoolConstant(op(token.False), false)

	tests := []struct {
		name     string
		c        *ast.Node
		to, from int
		want     string
	}{
		{"true to", tr, 3, 4, "\tgoto L3\n"},
		{"true falls through", tr, 0, 4, ""},
		{"false from", fa, 3, 4, "\tgoto L4\n"},
		{"false falls through", fa, 3, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			ctx.Jumping(tt.c, tt.to, tt.from)
			be.Equal(t, ctx.Prog().String(), tt.want)
		})
	}
}

func TestNotSwapsTargets(t *testing.T) {
	i := ident("i", types.Int)
	j := ident("j", types.Int)
	b := ident("b", types.Bool)
	arr := ident("flags", types.NewArray(4, types.Bool))

	rel := must(t)(ast.NewRel(op(token.Lt), i, j))
	elem := ast.NewAccess(arr, must(t)(ast.NewArith(op(token.Star), i, ast.NewIntConstant(1))), types.Bool)
	and := must(t)(ast.NewAnd(op(token.AndAnd), rel, b))
	or := must(t)(ast.NewOr(op(token.OrOr), and, must(t)(ast.NewNot(op(token.Not), b))))

	exprs := map[string]*ast.Node{
		"ident":  b,
		"rel":    rel,
		"access": elem,
		"and":    and,
		"or":     or,
		"true":   ast.NewBoolConstant(op(token.True), true),
	}
	labels := [][2]int{{0, 0}, {7, 0}, {0, 9}, {7, 9}}

	for name, e := range exprs {
		for _, l := range labels {
			negated := NewContext()
			negated.Jumping(must(t)(ast.NewNot(op(token.Not), e)), l[0], l[1])
			swapped := NewContext()
			swapped.Jumping(e, l[1], l[0])
			if diff := cmp.Diff(swapped.Prog().String(), negated.Prog().String()); diff != "" {
				t.Errorf("%s with (%d, %d): !e differs from e with swapped labels:\n%s", name, l[0], l[1], diff)
			}
		}
	}
}

func TestAccessJumping(t *testing.T) {
	i := ident("i", types.Int)
	arr := ident("flags", types.NewArray(4, types.Bool))
	elem := ast.NewAccess(arr, must(t)(ast.NewArith(op(token.Star), i, ast.NewIntConstant(1))), types.Bool)

	ctx := NewContext()
	ctx.Jumping(elem, 5, 0)
	be.Equal(t, ctx.Prog().String(), "\tt1 = i * 1\n\tt2 = flags [ t1 ]\n\tif t2 goto L5\n")
}

func TestReduceSimpleIsIdentity(t *testing.T) {
	ctx := NewContext()
	simple := []*ast.Node{
		ident("x", types.Int),
		ast.NewIntConstant(3),
		ast.NewBoolConstant(op(token.True), true),
		ctx.NewTemp(types.Float),
	}
	for _, n := range simple {
		got := ctx.Reduce(n)
		be.True(t, got == n)
	}
	be.Equal(t, len(ctx.Prog().Instrs), 0)
}

func TestReduceArith(t *testing.T) {
	i := ident("i", types.Int)
	sum := must(t)(ast.NewArith(op(token.Plus), i, ast.NewIntConstant(1)))
	prod := must(t)(ast.NewArith(op(token.Star), sum, i))

	ctx := NewContext()
	got := ctx.Reduce(prod)
	be.Equal(t, got.String(), "t2")
	be.Equal(t, ctx.Prog().String(), "\tt1 = i + 1\n\tt2 = t1 * i\n")
}

func TestCountersAndReset(t *testing.T) {
	ctx := NewContext()
	be.Equal(t, ctx.NewLabel(), 1)
	be.Equal(t, ctx.NewLabel(), 2)
	be.Equal(t, ctx.NewLabel(), 3)
	be.Equal(t, ctx.NewTemp(types.Int).String(), "t1")
	ctx.EmitLabel(3)

	ctx.Reset()
	be.Equal(t, ctx.NewLabel(), 1)
	be.Equal(t, ctx.NewTemp(types.Int).String(), "t1")
	be.Equal(t, len(ctx.Prog().Instrs), 0)
}

func TestProgramIsReproducibleAfterReset(t *testing.T) {
	i := ident("i", types.Int)
	cond := must(t)(ast.NewRel(op(token.Lt), i, ast.NewIntConstant(10)))
	inc := must(t)(ast.NewSet(op(token.Assign), i, must(t)(ast.NewArith(op(token.Plus), i, ast.NewIntConstant(1)))))
	loop := ast.NewLoop(ast.While, op(token.While))
	be.Err(t, ast.InitWhile(loop, cond, inc), nil)
	root := ast.NewSeq(loop, ast.Null)

	ctx := NewContext()
	first := ctx.Program(root).String()
	ctx.Reset()
	second := ctx.Program(root).String()

	be.Equal(t, first, "L1:\tiffalse i < 10 goto L2\nL3:\ti = i + 1\n\tgoto L1\nL2:")
	be.Equal(t, second, first)
	be.Equal(t, ctx.Prog().Labels(), []int{1, 3, 2})
}

func TestBreakUsesItsLoopExit(t *testing.T) {
	b := ident("b", types.Bool)
	inner := ast.NewLoop(ast.While, op(token.While))
	innerBreak := must(t)(ast.NewBreak(op(token.Break), inner))
	be.Err(t, ast.InitWhile(inner, b, innerBreak), nil)

	outer := ast.NewLoop(ast.Do, op(token.Do))
	outerBreak := must(t)(ast.NewBreak(op(token.Break), outer))
	be.Err(t, ast.InitDo(outer, ast.NewSeq(inner, ast.NewSeq(outerBreak, ast.Null)), b), nil)

	ctx := NewContext()
	got := ctx.Program(outer).String()
	want := "L1:\tiffalse b goto L4\nL5:\tgoto L4\n\tgoto L1\nL4:\tgoto L2\nL3:\tif b goto L1\nL2:"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Program mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakBeforeLoopPanics(t *testing.T) {
	loop := ast.NewLoop(ast.While, op(token.While))
	brk := must(t)(ast.NewBreak(op(token.Break), loop))

	defer func() {
		be.True(t, recover() != nil)
	}()
	NewContext().GenStmt(brk, 1, 2)
}

func TestEarlierProgramSurvivesReset(t *testing.T) {
	x := ident("x", types.Int)
	first := must(t)(ast.NewSet(op(token.Assign), x, ast.NewIntConstant(1)))
	second := must(t)(ast.NewSet(op(token.Assign), x, ast.NewIntConstant(2)))

	ctx := NewContext()
	kept := ctx.Program(first)
	ctx.Reset()
	ctx.Program(second)

	be.Equal(t, kept.String(), "L1:\tx = 1\nL2:")
	be.Equal(t, ctx.Prog().String(), "L1:\tx = 2\nL2:")
}
