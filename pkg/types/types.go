// Package types implements the primitive and array types of the source language,
// their storage widths, and the promotion and compatibility rules the parser applies
// while it builds the tree.
package types

import "fmt"

type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
)

// Type is either a primitive singleton (compare with ==) or an array.
type Type struct {
	Kind  Kind
	Name  string
	width int
	Of    *Type // element type of an array
	Size  int   // element count of an array
}

var (
	Int   = &Type{Kind: KindPrimitive, Name: "int", width: 4}
	Float = &Type{Kind: KindPrimitive, Name: "float", width: 8}
	Char  = &Type{Kind: KindPrimitive, Name: "char", width: 1}
	Bool  = &Type{Kind: KindPrimitive, Name: "bool", width: 1}
)

var byName = map[string]*Type{"int": Int, "float": Float, "char": Char, "bool": Bool}

// Basic returns the primitive named by a reserved type word.
func Basic(name string) (*Type, bool) {
	t, ok := byName[name]
	return t, ok
}

func NewArray(size int, of *Type) *Type {
	return &Type{Kind: KindArray, Name: "[]", width: size * of.Width(), Of: of, Size: size}
}

func (t *Type) Width() int { return t.width }

func (t *Type) IsArray() bool { return t != nil && t.Kind == KindArray }

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.IsArray() {
		return fmt.Sprintf("[%d]%s", t.Size, t.Of)
	}
	return t.Name
}

func IsNumeric(t *Type) bool { return t == Char || t == Int || t == Float }

// Max is the promotion rule for arithmetic and unary minus; nil means the operands
// cannot be combined.
func Max(left, right *Type) *Type {
	if !IsNumeric(left) || !IsNumeric(right) {
		return nil
	}
	if left == Float || right == Float {
		return Float
	}
	if left == Int || right == Int {
		return Int
	}
	return Char
}

// CheckAssign validates "dst = src" for a scalar destination. The result carries the
// source operand's type.
func CheckAssign(dst, src *Type) *Type {
	if IsNumeric(dst) && IsNumeric(src) {
		return src
	}
	if dst == Bool && src == Bool {
		return src
	}
	return nil
}

// CheckElemAssign validates "a[i] = src" where elem is the accessed element type.
// Only the top-level array test is made; a partially indexed target is rejected
// because its type is still an array.
func CheckElemAssign(elem, src *Type) *Type {
	if elem.IsArray() || src.IsArray() {
		return nil
	}
	if elem == src {
		return src
	}
	if IsNumeric(elem) && IsNumeric(src) {
		return src
	}
	return nil
}

// CheckRel validates a relational or equality comparison.
func CheckRel(left, right *Type) *Type {
	if left.IsArray() || right.IsArray() {
		return nil
	}
	if left == right {
		return Bool
	}
	return nil
}

// CheckLogical validates the operands of && and ||.
func CheckLogical(left, right *Type) *Type {
	if left == Bool && right == Bool {
		return Bool
	}
	return nil
}

// Narrows reports whether storing src into dst can lose range or precision.
func Narrows(dst, src *Type) bool {
	if !IsNumeric(dst) || !IsNumeric(src) {
		return false
	}
	return rank(src) > rank(dst)
}

func rank(t *Type) int {
	switch t {
	case Char:
		return 1
	case Int:
		return 2
	case Float:
		return 3
	}
	return 0
}
