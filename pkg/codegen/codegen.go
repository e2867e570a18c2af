package codegen

import (
	"fmt"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/ir"
	"github.com/xplshn/tacc/pkg/types"
)

// Context is the state of one translation. Label 0 is the fall-through sentinel, so
// both counters hand out numbers starting at 1.
type Context struct {
	prog        *ir.Program
	labelCount  int
	tempCount   int
	afterLabels map[*ast.Node]int
}

func NewContext() *Context {
	return &Context{
		prog:        &ir.Program{},
		afterLabels: make(map[*ast.Node]int),
	}
}

// Reset rewinds the counters and starts a new program so the next translation numbers
// labels and temporaries exactly as a fresh context would. Programs returned earlier
// are left untouched.
func (ctx *Context) Reset() {
	ctx.labelCount = 0
	ctx.tempCount = 0
	ctx.prog = &ir.Program{}
	clear(ctx.afterLabels)
}

// Prog is the code emitted so far.
func (ctx *Context) Prog() *ir.Program { return ctx.prog }

func (ctx *Context) NewLabel() int {
	ctx.labelCount++
	return ctx.labelCount
}

func (ctx *Context) NewTemp(typ *types.Type) *ast.Node {
	ctx.tempCount++
	return ast.NewTemp(ctx.tempCount, typ)
}

func (ctx *Context) addInstr(instr *ir.Instruction) { ctx.prog.Add(instr) }

func (ctx *Context) EmitLabel(l int) { ctx.addInstr(&ir.Instruction{Op: ir.OpLabel, Label: l}) }

func (ctx *Context) emitGoto(l int) { ctx.addInstr(&ir.Instruction{Op: ir.OpGoto, Label: l}) }

func (ctx *Context) emitCopy(dest, value string) {
	ctx.addInstr(&ir.Instruction{Op: ir.OpCopy, Dest: dest, Value: value})
}

// EmitJumps is the base jumping rule for a rendered test.
func (ctx *Context) EmitJumps(test string, to, from int) {
	switch {
	case to != 0 && from != 0:
		ctx.addInstr(&ir.Instruction{Op: ir.OpIf, Test: test, Label: to})
		ctx.emitGoto(from)
	case to != 0:
		ctx.addInstr(&ir.Instruction{Op: ir.OpIf, Test: test, Label: to})
	case from != 0:
		ctx.addInstr(&ir.Instruction{Op: ir.OpIfFalse, Test: test, Label: from})
	}
}

// Gen translates e into a value: operands of compound nodes are reduced and the node is
// rebuilt over them. Boolean operators are materialized into a temporary.
func (ctx *Context) Gen(e *ast.Node) *ast.Node {
	switch e.Type {
	case ast.Ident, ast.Constant, ast.Temp:
		return e
	case ast.Arith:
		d := e.Data.(ast.ArithNode)
		return &ast.Node{Type: ast.Arith, Tok: e.Tok, Typ: e.Typ,
			Data: ast.ArithNode{Left: ctx.Reduce(d.Left), Right: ctx.Reduce(d.Right)}}
	case ast.Unary:
		d := e.Data.(ast.UnaryNode)
		return &ast.Node{Type: ast.Unary, Tok: e.Tok, Typ: e.Typ,
			Data: ast.UnaryNode{Expr: ctx.Reduce(d.Expr)}}
	case ast.Access:
		d := e.Data.(ast.AccessNode)
		return &ast.Node{Type: ast.Access, Tok: e.Tok, Typ: e.Typ,
			Data: ast.AccessNode{Array: d.Array, Index: ctx.Reduce(d.Index)}}
	case ast.Or, ast.And, ast.Not, ast.Rel:
		return ctx.materialize(e)
	}
	panic(fmt.Sprintf("codegen: %s is not an expression", e.Type))
}

// Reduce forces e into an identifier, constant or temporary.
func (ctx *Context) Reduce(e *ast.Node) *ast.Node {
	v := ctx.Gen(e)
	if v.IsSimple() {
		return v
	}
	t := ctx.NewTemp(e.Typ)
	ctx.emitCopy(t.String(), v.String())
	return t
}

func (ctx *Context) materialize(e *ast.Node) *ast.Node {
	f := ctx.NewLabel()
	a := ctx.NewLabel()
	t := ctx.NewTemp(e.Typ)
	ctx.Jumping(e, 0, f)
	ctx.emitCopy(t.String(), "true")
	ctx.emitGoto(a)
	ctx.EmitLabel(f)
	ctx.emitCopy(t.String(), "false")
	ctx.EmitLabel(a)
	return t
}

// Jumping emits code that transfers to `to` when e is true and to `from` when it is
// false. A zero label means fall through.
func (ctx *Context) Jumping(e *ast.Node, to, from int) {
	switch e.Type {
	case ast.Constant:
		if v, ok := e.BoolValue(); ok {
			if v && to != 0 {
				ctx.emitGoto(to)
			} else if !v && from != 0 {
				ctx.emitGoto(from)
			}
			return
		}
		ctx.EmitJumps(e.String(), to, from)
	case ast.Access:
		ctx.EmitJumps(ctx.Reduce(e).String(), to, from)
	case ast.Rel:
		d := e.Data.(ast.LogicalNode)
		l, r := ctx.Reduce(d.Left), ctx.Reduce(d.Right)
		ctx.EmitJumps(fmt.Sprintf("%s %s %s", l, e.Tok, r), to, from)
	case ast.Not:
		ctx.Jumping(e.Data.(ast.NotNode).Expr, from, to)
	case ast.Or:
		d := e.Data.(ast.LogicalNode)
		label := to
		if to == 0 {
			label = ctx.NewLabel()
		}
		ctx.Jumping(d.Left, label, 0)
		ctx.Jumping(d.Right, to, from)
		if to == 0 {
			ctx.EmitLabel(label)
		}
	case ast.And:
		d := e.Data.(ast.LogicalNode)
		label := from
		if from == 0 {
			label = ctx.NewLabel()
		}
		ctx.Jumping(d.Left, 0, label)
		ctx.Jumping(d.Right, to, from)
		if from == 0 {
			ctx.EmitLabel(label)
		}
	default:
		ctx.EmitJumps(e.String(), to, from)
	}
}

// GenStmt translates s. begin is already defined by the caller; after is where
// control continues on normal completion.
func (ctx *Context) GenStmt(s *ast.Node, begin, after int) {
	switch s.Type {
	case ast.Empty:
	case ast.Seq:
		d := s.Data.(ast.SeqNode)
		switch {
		case d.Head.Type == ast.Empty:
			ctx.GenStmt(d.Tail, begin, after)
		case d.Tail.Type == ast.Empty:
			ctx.GenStmt(d.Head, begin, after)
		default:
			mid := ctx.NewLabel()
			ctx.GenStmt(d.Head, begin, mid)
			ctx.EmitLabel(mid)
			ctx.GenStmt(d.Tail, mid, after)
		}
	case ast.If:
		d := s.Data.(ast.IfNode)
		label := ctx.NewLabel()
		ctx.Jumping(d.Cond, 0, after)
		ctx.EmitLabel(label)
		ctx.GenStmt(d.Body, label, after)
	case ast.Else:
		d := s.Data.(ast.ElseNode)
		thenLabel, elseLabel := ctx.NewLabel(), ctx.NewLabel()
		ctx.Jumping(d.Cond, 0, elseLabel)
		ctx.EmitLabel(thenLabel)
		ctx.GenStmt(d.Then, thenLabel, after)
		ctx.emitGoto(after)
		ctx.EmitLabel(elseLabel)
		ctx.GenStmt(d.Else, elseLabel, after)
	case ast.While:
		d := s.Data.(ast.WhileNode)
		ctx.afterLabels[s] = after
		ctx.Jumping(d.Cond, 0, after)
		label := ctx.NewLabel()
		ctx.EmitLabel(label)
		ctx.GenStmt(d.Body, label, begin)
		ctx.emitGoto(begin)
	case ast.Do:
		d := s.Data.(ast.DoNode)
		ctx.afterLabels[s] = after
		label := ctx.NewLabel()
		ctx.GenStmt(d.Body, begin, label)
		ctx.EmitLabel(label)
		ctx.Jumping(d.Cond, begin, 0)
	case ast.Break:
		loop := s.Data.(ast.BreakNode).Loop
		exit, ok := ctx.afterLabels[loop]
		if !ok {
			panic("codegen: break translated before its loop")
		}
		ctx.emitGoto(exit)
	case ast.Set:
		d := s.Data.(ast.SetNode)
		ctx.emitCopy(d.Id.String(), ctx.Gen(d.Expr).String())
	case ast.SetElem:
		d := s.Data.(ast.SetElemNode)
		index := ctx.Reduce(d.Index)
		value := ctx.Reduce(d.Expr)
		ctx.addInstr(&ir.Instruction{Op: ir.OpStore, Dest: d.Array.String(), Index: index.String(), Value: value.String()})
	default:
		panic(fmt.Sprintf("codegen: %s is not a statement", s.Type))
	}
}

// Program translates a whole program bracketed by its entry and exit labels.
func (ctx *Context) Program(root *ast.Node) *ir.Program {
	begin, after := ctx.NewLabel(), ctx.NewLabel()
	ctx.EmitLabel(begin)
	ctx.GenStmt(root, begin, after)
	ctx.EmitLabel(after)
	return ctx.prog
}
