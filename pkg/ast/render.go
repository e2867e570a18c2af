package ast

import (
	"fmt"
	"strconv"
)

// String renders an expression the way it appears inside an emitted instruction.
// Statements render as their node kind.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case Ident:
		return n.Data.(IdentNode).Sym.Name
	case Constant:
		return n.Data.(ConstantNode).Text
	case Temp:
		return "t" + strconv.Itoa(n.Data.(TempNode).Num)
	case Arith:
		d := n.Data.(ArithNode)
		return fmt.Sprintf("%s %s %s", d.Left, n.Tok, d.Right)
	case Unary:
		return "minus " + n.Data.(UnaryNode).Expr.String()
	case Access:
		d := n.Data.(AccessNode)
		return fmt.Sprintf("%s [ %s ]", d.Array, d.Index)
	case Or, And, Rel:
		d := n.Data.(LogicalNode)
		return fmt.Sprintf("%s %s %s", d.Left, n.Tok, d.Right)
	case Not:
		return "! " + n.Data.(NotNode).Expr.String()
	}
	return n.Type.String()
}

var nodeTypeNames = [...]string{
	Ident: "Ident", Constant: "Constant", Temp: "Temp", Arith: "Arith", Unary: "Unary",
	Access: "Access", Or: "Or", And: "And", Not: "Not", Rel: "Rel",
	Empty: "Empty", Set: "Set", SetElem: "SetElem", Seq: "Seq", If: "If", Else: "Else",
	While: "While", Do: "Do", Break: "Break",
}

func (t NodeType) String() string {
	if int(t) >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}
