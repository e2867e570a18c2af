// Package ast defines the types used to represent the Abstract Syntax Tree (AST)
package ast

import (
	"github.com/xplshn/tacc/pkg/symbols"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/types"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	// Expressions
	Ident NodeType = iota
	Constant
	Temp
	Arith
	Unary
	Access
	Or
	And
	Not
	Rel

	// Statements
	Empty
	Set
	SetElem
	Seq
	If
	Else
	While
	Do
	Break
)

// Node represents a node in the Abstract Syntax Tree. Expression nodes always carry a
// checked Typ; statement nodes leave it nil.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
	Typ  *types.Type
}

// --- Node Data Structs ---
type IdentNode struct{ Sym *symbols.Symbol }
type ConstantNode struct{ Text string }
type TempNode struct{ Num int }
type ArithNode struct{ Left, Right *Node }
type UnaryNode struct{ Expr *Node }
type AccessNode struct{ Array, Index *Node }
type LogicalNode struct{ Left, Right *Node }
type NotNode struct{ Expr *Node }

type SetNode struct{ Id, Expr *Node }
type SetElemNode struct{ Array, Index, Expr *Node }
type SeqNode struct{ Head, Tail *Node }
type IfNode struct{ Cond, Body *Node }
type ElseNode struct{ Cond, Then, Else *Node }
type WhileNode struct{ Cond, Body *Node }
type DoNode struct{ Body, Cond *Node }
type BreakNode struct{ Loop *Node }

// IsExpr reports whether the node produces a value.
func (n *Node) IsExpr() bool { return n.Type < Empty }

// IsLogical reports whether the node is translated as jumping code first.
func (n *Node) IsLogical() bool {
	switch n.Type {
	case Or, And, Not, Rel:
		return true
	}
	return false
}

// IsSimple reports whether the node is already a plain operand: an identifier,
// constant or temporary.
func (n *Node) IsSimple() bool {
	switch n.Type {
	case Ident, Constant, Temp:
		return true
	}
	return false
}

// IsLoop reports whether a break may target the node.
func (n *Node) IsLoop() bool { return n != nil && (n.Type == While || n.Type == Do) }
