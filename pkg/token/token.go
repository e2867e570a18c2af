package token

import "fmt"

type Type int

const (
	EOF Type = iota
	Illegal
	Ident
	Num
	Real
	Basic
	True
	False
	If
	Else
	While
	Do
	Break
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Assign
	Plus
	Minus
	Star
	Slash
	Not
	Lt
	Gt
	Lte
	Gte
	EqEq
	Neq
	AndAnd
	OrOr
)

var KeywordMap = map[string]Type{
	"if":    If,
	"else":  Else,
	"while": While,
	"do":    Do,
	"break": Break,
	"true":  True,
	"false": False,
	"int":   Basic,
	"float": Basic,
	"char":  Basic,
	"bool":  Basic,
}

// Fixed spellings for tokens that carry no Value
var TypeStrings = map[Type]string{
	EOF:      "end of input",
	LParen:   "(",
	RParen:   ")",
	LBrace:   "{",
	RBrace:   "}",
	LBracket: "[",
	RBracket: "]",
	Semi:     ";",
	Assign:   "=",
	Plus:     "+",
	Minus:    "-",
	Star:     "*",
	Slash:    "/",
	Not:      "!",
	Lt:       "<",
	Gt:       ">",
	Lte:      "<=",
	Gte:      ">=",
	EqEq:     "==",
	Neq:      "!=",
	AndAnd:   "&&",
	OrOr:     "||",
}

var kindNames = map[Type]string{
	Illegal: "illegal token",
	Ident:   "identifier",
	Num:     "integer literal",
	Real:    "real literal",
	Basic:   "type",
	True:    "true",
	False:   "false",
	If:      "if",
	Else:    "else",
	While:   "while",
	Do:      "do",
	Break:   "break",
}

// Describe names a token kind for diagnostics, e.g. "';'" or "identifier".
func (t Type) Describe() string {
	if s, ok := TypeStrings[t]; ok {
		if t == EOF {
			return s
		}
		return "'" + s + "'"
	}
	if s, ok := kindNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// String returns the lexeme as it appears in emitted code.
func (t Token) String() string {
	if t.Value != "" {
		return t.Value
	}
	if s, ok := TypeStrings[t.Type]; ok {
		return s
	}
	return ""
}

// Is reports token equality: kind, plus lexeme for words.
func (t Token) Is(o Token) bool {
	if t.Type != o.Type {
		return false
	}
	switch t.Type {
	case Ident, Basic, Illegal:
		return t.Value == o.Value
	}
	return true
}

// SliceSource replays a fixed token slice, repeating the final EOF forever.
type SliceSource struct {
	toks []Token
	pos  int
}

func NewSliceSource(toks []Token) *SliceSource {
	if len(toks) == 0 || toks[len(toks)-1].Type != EOF {
		toks = append(toks, Token{Type: EOF})
	}
	return &SliceSource{toks: toks}
}

func (s *SliceSource) Next() Token {
	tok := s.toks[s.pos]
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
	return tok
}
