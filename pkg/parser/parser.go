package parser

import (
	"strconv"
	"strings"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/diag"
	"github.com/xplshn/tacc/pkg/symbols"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/types"
)

// TokenSource is anything that hands out tokens one at a time. After the end of input
// it must keep returning token.EOF.
type TokenSource interface {
	Next() token.Token
}

// Warning is a non-fatal diagnostic raised while parsing.
type Warning struct {
	Type config.Warning
	Tok  token.Token
	Msg  string
}

// Parser holds the state for the parsing process
type Parser struct {
	src      TokenSource
	current  token.Token
	previous token.Token
	scopes   symbols.Scopes
	used     int
	cfg      *config.Config
	warnings []Warning
}

// NewParser creates a Parser reading from src and primes its one-token lookahead
func NewParser(src TokenSource, cfg *config.Config) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	p := &Parser{src: src, cfg: cfg}
	p.current = src.Next()
	return p
}

// Warnings returns the enabled warnings raised so far, in source order.
func (p *Parser) Warnings() []Warning { return p.warnings }

// Used is the total storage consumed by every declaration parsed so far.
func (p *Parser) Used() int { return p.used }

// Parse reads one program: a single block followed by the end of input. Nothing is
// returned alongside an error.
func (p *Parser) Parse() (*ast.Node, error) {
	root, err := p.parseBlock(nil)
	if err != nil {
		return nil, err
	}
	if !p.check(token.EOF) {
		return nil, p.unexpected("end of input")
	}
	return root, nil
}

// Parser helpers
func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.src.Next()
}

func (p *Parser) check(tokType token.Type) bool { return p.current.Type == tokType }

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type) error {
	if p.match(tokType) {
		return nil
	}
	return p.unexpected(tokType.Describe())
}

func (p *Parser) unexpected(want string) error {
	tok := p.current
	switch tok.Type {
	case token.Illegal:
		if tok.Value == "/*" {
			return diag.Errorf(diag.SyntaxError, tok, "unterminated comment")
		}
		return diag.Errorf(diag.SyntaxError, tok, "unexpected '%s'", tok.Value)
	case token.Ident, token.Num, token.Real, token.Basic:
		return diag.Errorf(diag.SyntaxError, tok, "expected %s, found %s '%s'", want, tok.Type.Describe(), tok.Value)
	}
	return diag.Errorf(diag.SyntaxError, tok, "expected %s, found %s", want, tok.Type.Describe())
}

func (p *Parser) warn(wt config.Warning, tok token.Token, msg string) {
	if p.cfg.IsWarningEnabled(wt) {
		p.warnings = append(p.warnings, Warning{Type: wt, Tok: tok, Msg: msg})
	}
}

// Statement Parsing

// parseBlock parses '{' decls stmts '}'. loop is the innermost enclosing loop, nil
// outside every loop.
func (p *Parser) parseBlock(loop *ast.Node) (*ast.Node, error) {
	if err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	p.scopes.Enter()
	defer p.scopes.Leave()

	if err := p.parseDecls(); err != nil {
		return nil, err
	}
	body, err := p.parseStmts(loop)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseDecls() error {
	for p.check(token.Basic) {
		typ, err := p.parseType()
		if err != nil {
			return err
		}
		tok := p.current
		if err := p.expect(token.Ident); err != nil {
			return err
		}
		if err := p.expect(token.Semi); err != nil {
			return err
		}
		if err := p.declare(tok, typ); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) declare(tok token.Token, typ *types.Type) error {
	top := p.scopes.Top()
	if old := top.Lookup(tok.Value); old != nil {
		if !p.cfg.IsFeatureEnabled(config.FeatRedeclare) {
			return diag.Errorf(diag.ScopeError, tok, "%s redeclared in this block (previous declaration on line %d)", tok.Value, old.Tok.Line)
		}
		p.warn(config.WarnRedeclare, tok, "'"+tok.Value+"' redeclared in this block; the earlier "+old.Type.String()+" is replaced")
	} else if outer := top.Get(tok.Value); outer != nil {
		p.warn(config.WarnShadow, tok, "declaration of '"+tok.Value+"' shadows the one on line "+strconv.Itoa(outer.Tok.Line))
	}
	top.Put(tok.Value, &symbols.Symbol{Name: tok.Value, Type: typ, Offset: p.used, Tok: tok})
	p.used += typ.Width()
	return nil
}

// parseType reads a basic type followed by zero or more [N]; int[2][3] is an array of
// two arrays of three ints.
func (p *Parser) parseType() (*types.Type, error) {
	tok := p.current
	if err := p.expect(token.Basic); err != nil {
		return nil, err
	}
	base, ok := types.Basic(tok.Value)
	if !ok {
		return nil, diag.Errorf(diag.SyntaxError, tok, "unknown type '%s'", tok.Value)
	}
	var sizes []int
	for p.match(token.LBracket) {
		numTok := p.current
		if err := p.expect(token.Num); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(numTok.Value, 10, 32)
		if err != nil {
			return nil, diag.Errorf(diag.SyntaxError, numTok, "array size %s out of range", numTok.Value)
		}
		if err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
		sizes = append(sizes, int(n))
	}
	typ := base
	for i := len(sizes) - 1; i >= 0; i-- {
		typ = types.NewArray(sizes[i], typ)
	}
	return typ, nil
}

// parseStmts reads statements up to the closing brace and chains them right to left,
// ending in the empty statement.
func (p *Parser) parseStmts(loop *ast.Node) (*ast.Node, error) {
	var list []*ast.Node
	afterBreak := false
	for !p.check(token.RBrace) {
		if p.check(token.EOF) {
			return nil, p.unexpected("'}'")
		}
		if afterBreak {
			p.warn(config.WarnUnreachableCode, p.current, "statement is unreachable after 'break'")
			afterBreak = false
		}
		s, err := p.parseStmt(loop)
		if err != nil {
			return nil, err
		}
		if s.Type == ast.Break {
			afterBreak = true
		}
		list = append(list, s)
	}
	seq := ast.Null
	for i := len(list) - 1; i >= 0; i-- {
		seq = ast.NewSeq(list[i], seq)
	}
	return seq, nil
}

func (p *Parser) parseStmt(loop *ast.Node) (*ast.Node, error) {
	tok := p.current
	switch tok.Type {
	case token.Semi:
		p.advance()
		return ast.Null, nil
	case token.If:
		return p.parseIf(loop)
	case token.While:
		return p.parseWhile()
	case token.Do:
		return p.parseDo()
	case token.Break:
		p.advance()
		if err := p.expect(token.Semi); err != nil {
			return nil, err
		}
		return ast.NewBreak(tok, loop)
	case token.LBrace:
		return p.parseBlock(loop)
	case token.Ident:
		return p.parseAssign()
	}
	return nil, p.unexpected("statement")
}

func (p *Parser) parseCond() (*ast.Node, error) {
	if err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseBool()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf(loop *ast.Node) (*ast.Node, error) {
	tok := p.current
	p.advance()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	bodyTok := p.current
	then, err := p.parseStmt(loop)
	if err != nil {
		return nil, err
	}
	if !p.match(token.Else) {
		if then == ast.Null {
			p.warn(config.WarnEmptyBody, bodyTok, "'if' has an empty body")
		}
		return ast.NewIf(tok, cond, then)
	}
	els, err := p.parseStmt(loop)
	if err != nil {
		return nil, err
	}
	return ast.NewElse(tok, cond, then, els)
}

func (p *Parser) parseWhile() (*ast.Node, error) {
	node := ast.NewLoop(ast.While, p.current)
	p.advance()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	bodyTok := p.current
	body, err := p.parseStmt(node)
	if err != nil {
		return nil, err
	}
	if body == ast.Null {
		p.warn(config.WarnEmptyBody, bodyTok, "'while' has an empty body")
	}
	if err := ast.InitWhile(node, cond, body); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseDo() (*ast.Node, error) {
	node := ast.NewLoop(ast.Do, p.current)
	p.advance()
	body, err := p.parseStmt(node)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.While); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	if err := ast.InitDo(node, body, cond); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseAssign() (*ast.Node, error) {
	id, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	target := id
	if p.check(token.LBracket) {
		if target, err = p.parseOffset(id); err != nil {
			return nil, err
		}
	}
	tok := p.current
	if err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	rhs, err := p.parseBool()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	if types.Narrows(target.Typ, rhs.Typ) {
		p.warn(config.WarnNarrowing, tok, "assigning "+rhs.Typ.String()+" to "+target.Typ.String()+" may lose information")
	}
	if target.Type == ast.Access {
		return ast.NewSetElem(tok, target, rhs)
	}
	return ast.NewSet(tok, id, rhs)
}

// Expression Parsing

type binaryCtor func(tok token.Token, left, right *ast.Node) (*ast.Node, error)

// parseLeftAssoc parses next (op next)* for any of ops, folding to the left.
func (p *Parser) parseLeftAssoc(next func() (*ast.Node, error), build binaryCtor, ops ...token.Type) (*ast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.checkAny(ops...) {
		tok := p.current
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		if left, err = build(tok, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) checkAny(ops ...token.Type) bool {
	for _, op := range ops {
		if p.check(op) {
			return true
		}
	}
	return false
}

func (p *Parser) parseBool() (*ast.Node, error) {
	return p.parseLeftAssoc(p.parseJoin, ast.NewOr, token.OrOr)
}

func (p *Parser) parseJoin() (*ast.Node, error) {
	return p.parseLeftAssoc(p.parseEquality, ast.NewAnd, token.AndAnd)
}

func (p *Parser) parseEquality() (*ast.Node, error) {
	return p.parseLeftAssoc(p.parseRel, ast.NewRel, token.EqEq, token.Neq)
}

// parseRel allows at most one relational operator: a < b < c is a syntax error.
func (p *Parser) parseRel() (*ast.Node, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.checkAny(token.Lt, token.Lte, token.Gte, token.Gt) {
		return left, nil
	}
	tok := p.current
	p.advance()
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewRel(tok, left, right)
}

func (p *Parser) parseExpr() (*ast.Node, error) {
	return p.parseLeftAssoc(p.parseTerm, ast.NewArith, token.Plus, token.Minus)
}

func (p *Parser) parseTerm() (*ast.Node, error) {
	return p.parseLeftAssoc(p.parseUnary, ast.NewArith, token.Star, token.Slash)
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	tok := p.current
	switch tok.Type {
	case token.Minus:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(tok, e)
	case token.Not:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNot(tok, e)
	}
	return p.parseFactor()
}

func (p *Parser) parseFactor() (*ast.Node, error) {
	tok := p.current
	switch tok.Type {
	case token.LParen:
		p.advance()
		e, err := p.parseBool()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case token.Num:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 32)
		if err != nil {
			return nil, diag.Errorf(diag.SyntaxError, tok, "integer literal %s out of range", tok.Value)
		}
		return ast.NewConstant(tok, strconv.FormatInt(n, 10), types.Int), nil
	case token.Real:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, diag.Errorf(diag.SyntaxError, tok, "real literal %s out of range", tok.Value)
		}
		return ast.NewConstant(tok, formatReal(v), types.Float), nil
	case token.True:
		p.advance()
		return ast.NewBoolConstant(tok, true), nil
	case token.False:
		p.advance()
		return ast.NewBoolConstant(tok, false), nil
	case token.Ident:
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if !p.check(token.LBracket) {
			return id, nil
		}
		return p.parseOffset(id)
	}
	return nil, p.unexpected("expression")
}

func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (p *Parser) parseIdent() (*ast.Node, error) {
	tok := p.current
	if err := p.expect(token.Ident); err != nil {
		return nil, err
	}
	sym := p.scopes.Top().Get(tok.Value)
	if sym == nil {
		return nil, diag.Errorf(diag.ScopeError, tok, "%s undeclared", tok.Value)
	}
	return ast.NewIdent(tok, sym), nil
}

// parseOffset reads index+ after an array identifier. Each index is scaled by the width
// of the element it selects and the products are summed into one byte offset.
func (p *Parser) parseOffset(id *ast.Node) (*ast.Node, error) {
	typ := id.Typ
	var loc *ast.Node
	for p.check(token.LBracket) {
		bracket := p.current
		if !typ.IsArray() {
			return nil, diag.Errorf(diag.TypeError, bracket, "cannot index %s of type %s", id, typ)
		}
		p.advance()
		index, err := p.parseBool()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
		if !types.IsNumeric(index.Typ) {
			return nil, diag.Errorf(diag.TypeError, index.Tok, "array index must be numeric, got %s", index.Typ)
		}
		typ = typ.Of
		width := ast.NewIntConstant(typ.Width())
		scaled, err := ast.NewArith(token.Token{Type: token.Star, Line: bracket.Line, Column: bracket.Column, FileIndex: bracket.FileIndex}, index, width)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			loc = scaled
			continue
		}
		if loc, err = ast.NewArith(token.Token{Type: token.Plus, Line: bracket.Line, Column: bracket.Column, FileIndex: bracket.FileIndex}, loc, scaled); err != nil {
			return nil, err
		}
	}
	return ast.NewAccess(id, loc, typ), nil
}
