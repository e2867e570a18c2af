package ast

import (
	"strconv"

	"github.com/xplshn/tacc/pkg/diag"
	"github.com/xplshn/tacc/pkg/symbols"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/types"
)

// --- Expressions ---

func NewIdent(tok token.Token, sym *symbols.Symbol) *Node {
	return &Node{Type: Ident, Tok: tok, Data: IdentNode{Sym: sym}, Typ: sym.Type}
}

func NewConstant(tok token.Token, text string, typ *types.Type) *Node {
	return &Node{Type: Constant, Tok: tok, Data: ConstantNode{Text: text}, Typ: typ}
}

func NewIntConstant(v int) *Node {
	s := strconv.Itoa(v)
	return NewConstant(token.Token{Type: token.Num, Value: s}, s, types.Int)
}

func NewBoolConstant(tok token.Token, v bool) *Node {
	return NewConstant(tok, strconv.FormatBool(v), types.Bool)
}

// BoolValue reports the value of a true/false constant; ok is false for anything else.
func (n *Node) BoolValue() (v, ok bool) {
	if n.Type != Constant || n.Typ != types.Bool {
		return false, false
	}
	return n.Data.(ConstantNode).Text == "true", true
}

func NewTemp(num int, typ *types.Type) *Node {
	return &Node{Type: Temp, Tok: token.Token{Type: token.Ident, Value: "t"}, Data: TempNode{Num: num}, Typ: typ}
}

func NewArith(tok token.Token, left, right *Node) (*Node, error) {
	typ := types.Max(left.Typ, right.Typ)
	if typ == nil {
		return nil, diag.Errorf(diag.TypeError, tok, "operands of '%s' must be numeric, got %s and %s", tok, left.Typ, right.Typ)
	}
	return &Node{Type: Arith, Tok: tok, Data: ArithNode{Left: left, Right: right}, Typ: typ}, nil
}

// NewUnary builds unary minus; the operand is promoted to at least int.
func NewUnary(tok token.Token, expr *Node) (*Node, error) {
	typ := types.Max(types.Int, expr.Typ)
	if typ == nil {
		return nil, diag.Errorf(diag.TypeError, tok, "operand of unary '-' must be numeric, got %s", expr.Typ)
	}
	return &Node{Type: Unary, Tok: tok, Data: UnaryNode{Expr: expr}, Typ: typ}, nil
}

// NewAccess builds an element access; index is the flattened byte offset and typ the
// element type reached after all given dimensions.
func NewAccess(array, index *Node, typ *types.Type) *Node {
	tok := token.Token{Type: token.LBracket, Line: array.Tok.Line, Column: array.Tok.Column, FileIndex: array.Tok.FileIndex}
	return &Node{Type: Access, Tok: tok, Data: AccessNode{Array: array, Index: index}, Typ: typ}
}

func newLogical(kind NodeType, tok token.Token, left, right *Node) (*Node, error) {
	typ := types.CheckLogical(left.Typ, right.Typ)
	if typ == nil {
		return nil, diag.Errorf(diag.TypeError, tok, "operands of '%s' must be bool, got %s and %s", tok, left.Typ, right.Typ)
	}
	return &Node{Type: kind, Tok: tok, Data: LogicalNode{Left: left, Right: right}, Typ: typ}, nil
}

func NewOr(tok token.Token, left, right *Node) (*Node, error) {
	return newLogical(Or, tok, left, right)
}

func NewAnd(tok token.Token, left, right *Node) (*Node, error) {
	return newLogical(And, tok, left, right)
}

func NewNot(tok token.Token, expr *Node) (*Node, error) {
	if expr.Typ != types.Bool {
		return nil, diag.Errorf(diag.TypeError, tok, "operand of '!' must be bool, got %s", expr.Typ)
	}
	return &Node{Type: Not, Tok: tok, Data: NotNode{Expr: expr}, Typ: types.Bool}, nil
}

func NewRel(tok token.Token, left, right *Node) (*Node, error) {
	typ := types.CheckRel(left.Typ, right.Typ)
	if typ == nil {
		return nil, diag.Errorf(diag.TypeError, tok, "cannot compare %s and %s with '%s'", left.Typ, right.Typ, tok)
	}
	return &Node{Type: Rel, Tok: tok, Data: LogicalNode{Left: left, Right: right}, Typ: typ}, nil
}

// --- Statements ---

// Null is the empty statement. Every empty statement in a tree is this node.
var Null = &Node{Type: Empty}

func NewSet(tok token.Token, id, expr *Node) (*Node, error) {
	if types.CheckAssign(id.Typ, expr.Typ) == nil {
		return nil, diag.Errorf(diag.TypeError, tok, "cannot assign %s to %s of type %s", expr.Typ, id, id.Typ)
	}
	return &Node{Type: Set, Tok: tok, Data: SetNode{Id: id, Expr: expr}}, nil
}

func NewSetElem(tok token.Token, access, expr *Node) (*Node, error) {
	if types.CheckElemAssign(access.Typ, expr.Typ) == nil {
		return nil, diag.Errorf(diag.TypeError, tok, "cannot assign %s to element of type %s", expr.Typ, access.Typ)
	}
	a := access.Data.(AccessNode)
	return &Node{Type: SetElem, Tok: tok, Data: SetElemNode{Array: a.Array, Index: a.Index, Expr: expr}}, nil
}

func NewSeq(head, tail *Node) *Node {
	return &Node{Type: Seq, Tok: head.Tok, Data: SeqNode{Head: head, Tail: tail}}
}

func NewIf(tok token.Token, cond, body *Node) (*Node, error) {
	if cond.Typ != types.Bool {
		return nil, diag.Errorf(diag.TypeError, cond.Tok, "Boolean required in if")
	}
	return &Node{Type: If, Tok: tok, Data: IfNode{Cond: cond, Body: body}}, nil
}

func NewElse(tok token.Token, cond, then, els *Node) (*Node, error) {
	if cond.Typ != types.Bool {
		return nil, diag.Errorf(diag.TypeError, cond.Tok, "Boolean required in if")
	}
	return &Node{Type: Else, Tok: tok, Data: ElseNode{Cond: cond, Then: then, Else: els}}, nil
}

// NewLoop allocates a While or Do node before its parts are parsed, so that breaks in
// the body can refer to it. InitWhile or InitDo completes it.
func NewLoop(kind NodeType, tok token.Token) *Node {
	n := &Node{Type: kind, Tok: tok}
	if kind == While {
		n.Data = WhileNode{}
	} else {
		n.Data = DoNode{}
	}
	return n
}

func InitWhile(n, cond, body *Node) error {
	if cond.Typ != types.Bool {
		return diag.Errorf(diag.TypeError, cond.Tok, "boolean expression required in while")
	}
	n.Data = WhileNode{Cond: cond, Body: body}
	return nil
}

func InitDo(n, body, cond *Node) error {
	if cond.Typ != types.Bool {
		return diag.Errorf(diag.TypeError, cond.Tok, "boolean expression required in do")
	}
	n.Data = DoNode{Body: body, Cond: cond}
	return nil
}

func NewBreak(tok token.Token, loop *Node) (*Node, error) {
	if !loop.IsLoop() {
		return nil, diag.Errorf(diag.ControlFlowError, tok, "unenclosed break")
	}
	return &Node{Type: Break, Tok: tok, Data: BreakNode{Loop: loop}}, nil
}
