package token

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestDescribe(t *testing.T) {
	be.Equal(t, Semi.Describe(), "';'")
	be.Equal(t, AndAnd.Describe(), "'&&'")
	be.Equal(t, EOF.Describe(), "end of input")
	be.Equal(t, Ident.Describe(), "identifier")
	be.Equal(t, Basic.Describe(), "type")
	be.Equal(t, While.Describe(), "while")
}

func TestString(t *testing.T) {
	be.Equal(t, Token{Type: Ident, Value: "count"}.String(), "count")
	be.Equal(t, Token{Type: Lte}.String(), "<=")
	be.Equal(t, Token{Type: EOF}.String(), "end of input")
}

func TestIs(t *testing.T) {
	be.True(t, Token{Type: Plus, Line: 1}.Is(Token{Type: Plus, Line: 9}))
	be.True(t, Token{Type: Ident, Value: "a"}.Is(Token{Type: Ident, Value: "a"}))
	be.True(t, !Token{Type: Ident, Value: "a"}.Is(Token{Type: Ident, Value: "b"}))
	be.True(t, !Token{Type: Lt}.Is(Token{Type: Lte}))
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]Token{{Type: LBrace}, {Type: RBrace}})
	be.Equal(t, src.Next().Type, LBrace)
	be.Equal(t, src.Next().Type, RBrace)
	be.Equal(t, src.Next().Type, EOF)
	be.Equal(t, src.Next().Type, EOF)

	empty := NewSliceSource(nil)
	be.Equal(t, empty.Next().Type, EOF)
}
