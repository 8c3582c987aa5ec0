// Package exprparser is a small Pratt parser over internal/exprlexer's
// token stream, producing the ast.Expr trees consumed by the
// interpreter's evaluator. Its precedence table and prefix/infix
// registration style follow babyman-slug-lang/internal/parser/parser.go.
package exprparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/liam13141/epp/internal/ast"
	"github.com/liam13141/epp/internal/diag"
	"github.com/liam13141/epp/internal/exprlexer"
	"github.com/liam13141/epp/internal/token"
)

const (
	_ int = iota
	LOWEST
	LOGICAL_OR
	LOGICAL_AND
	EQUALS
	COMPARISON
	SUM
	PRODUCT
	PREFIX
	CALL
	INDEX
)

var precedences = map[token.Type]int{
	token.OR:       LOGICAL_OR,
	token.AND:      LOGICAL_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   CALL,
	token.LBRACKET: INDEX,
}

type (
	prefixParseFn func() (ast.Expr, error)
	infixParseFn  func(ast.Expr) (ast.Expr, error)
)

type Parser struct {
	l   *exprlexer.Lexer
	src string
	line int

	cur  token.Token
	peek token.Token

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// Parse parses a full expression string, originating from source line.
func Parse(src string, line int) (ast.Expr, error) {
	p := &Parser{l: exprlexer.New(src), src: src, line: line}
	p.prefixFns = map[token.Type]prefixParseFn{}
	p.infixFns = map[token.Type]infixParseFn{}

	p.registerPrefix(token.NUMBER, p.parseNumber)
	p.registerPrefix(token.FLOAT, p.parseFloat)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.TRUE, p.parseBool)
	p.registerPrefix(token.FALSE, p.parseBool)
	p.registerPrefix(token.NOTHING, p.parseNothing)
	p.registerPrefix(token.IDENT, p.parseIdentOrCall)
	p.registerPrefix(token.MINUS, p.parsePrefix)
	p.registerPrefix(token.NOT, p.parsePrefix)
	p.registerPrefix(token.LPAREN, p.parseGrouped)
	p.registerPrefix(token.LBRACKET, p.parseListLit)

	for _, t := range []token.Type{token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.LT, token.LT_EQ, token.GT, token.GT_EQ, token.EQ, token.NOT_EQ, token.AND, token.OR} {
		p.registerInfix(t, p.parseInfix)
	}
	p.registerInfix(token.LBRACKET, p.parseIndexOrSlice)

	p.next()
	p.next()

	if p.cur.Type == token.EOF {
		return nil, p.errf("I found an empty expression where one was expected.")
	}

	expr, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, p.errf("I couldn't read the expression '%s' (unexpected '%s').", strings.TrimSpace(src), p.cur.Literal)
	}
	return expr, nil
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixFns[t] = fn }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errf(format string, args ...any) error {
	return &diag.RuntimeError{Line: p.line, Kind: diag.TypeMismatch, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseExpr(precedence int) (ast.Expr, error) {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		return nil, p.errf("I couldn't read the expression '%s' near '%s'.", strings.TrimSpace(p.src), p.cur.Literal)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for p.cur.Type != token.EOF && precedence < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseNumber() (ast.Expr, error) {
	v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
	if err != nil {
		return nil, p.errf("'%s' is not a valid number.", p.cur.Literal)
	}
	n := &ast.NumberLit{LineNo: p.line, Value: v}
	p.next()
	return n, nil
}

func (p *Parser) parseFloat() (ast.Expr, error) {
	v, err := strconv.ParseFloat(p.cur.Literal, 64)
	if err != nil {
		return nil, p.errf("'%s' is not a valid number.", p.cur.Literal)
	}
	n := &ast.FloatLit{LineNo: p.line, Value: v}
	p.next()
	return n, nil
}

func (p *Parser) parseString() (ast.Expr, error) {
	n := &ast.StringLit{LineNo: p.line, Value: p.cur.Literal}
	p.next()
	return n, nil
}

func (p *Parser) parseBool() (ast.Expr, error) {
	n := &ast.BoolLit{LineNo: p.line, Value: p.cur.Type == token.TRUE}
	p.next()
	return n, nil
}

func (p *Parser) parseNothing() (ast.Expr, error) {
	n := &ast.NothingLit{LineNo: p.line}
	p.next()
	return n, nil
}

func (p *Parser) parseIdentOrCall() (ast.Expr, error) {
	name := p.cur.Literal
	if (strings.EqualFold(name, "call") || strings.EqualFold(name, "run")) && p.peek.Type == token.IDENT {
		return p.parseNaturalCall()
	}
	if p.peek.Type == token.LPAREN {
		p.next() // cur = (
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ast.Call{LineNo: p.line, Name: name, Args: args}, nil
	}
	p.next()
	return &ast.Ident{LineNo: p.line, Name: name}, nil
}

// parseNaturalCall recognizes "call F [with A, B]" / "run F [with A,
// B]" as a Call expression wherever an expression appears (the
// right-hand side of set, a say value, a condition, ...), mirroring
// original_source/epp_interpreter.py's _parse_call_expression, which
// is special-cased ahead of generic expression evaluation for exactly
// this phrasing.
func (p *Parser) parseNaturalCall() (ast.Expr, error) {
	p.next() // cur = function name ident
	fnName := p.cur.Literal
	p.next() // past function name; cur = 'with' or whatever follows

	var args []ast.Expr
	if p.cur.Type == token.IDENT && strings.EqualFold(p.cur.Literal, "with") {
		p.next() // consume 'with'
		for {
			arg, err := p.parseExpr(LOWEST)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.Type == token.COMMA {
				p.next()
				continue
			}
			break
		}
	}
	return &ast.Call{LineNo: p.line, Name: fnName, Args: args}, nil
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	p.next() // consume '('
	if p.cur.Type == token.RPAREN {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Type != token.RPAREN {
		return nil, p.errf("I expected ')' to close this call.")
	}
	p.next()
	return args, nil
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	op := p.cur.Literal
	if p.cur.Type == token.NOT {
		op = "not"
	}
	p.next()
	right, err := p.parseExpr(PREFIX)
	if err != nil {
		return nil, err
	}
	return &ast.Unary{LineNo: p.line, Op: op, Right: right}, nil
}

func (p *Parser) parseGrouped() (ast.Expr, error) {
	p.next()
	expr, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.RPAREN {
		return nil, p.errf("I expected ')' in this expression.")
	}
	p.next()
	return expr, nil
}

func (p *Parser) parseListLit() (ast.Expr, error) {
	lit := &ast.ListLit{LineNo: p.line}
	p.next() // consume '['
	if p.cur.Type == token.RBRACKET {
		p.next()
		return lit, nil
	}
	for {
		el, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, el)
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Type != token.RBRACKET {
		return nil, p.errf("I expected ']' to close this list.")
	}
	p.next()
	return lit, nil
}

func (p *Parser) parseInfix(left ast.Expr) (ast.Expr, error) {
	op := string(p.cur.Type)
	if p.cur.Type == token.AND {
		op = "and"
	} else if p.cur.Type == token.OR {
		op = "or"
	}
	precedence := p.curPrecedence()
	p.next()
	right, err := p.parseExpr(precedence)
	if err != nil {
		return nil, err
	}
	return &ast.Binary{LineNo: p.line, Op: op, Left: left, Right: right}, nil
}

// parseIndexOrSlice handles both `a[i]` and `a[i:j]`.
func (p *Parser) parseIndexOrSlice(target ast.Expr) (ast.Expr, error) {
	p.next() // consume '['

	var start ast.Expr
	var err error
	if p.cur.Type != token.COLON {
		start, err = p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
	}

	if p.cur.Type == token.COLON {
		p.next()
		var end ast.Expr
		if p.cur.Type != token.RBRACKET {
			end, err = p.parseExpr(LOWEST)
			if err != nil {
				return nil, err
			}
		}
		if p.cur.Type != token.RBRACKET {
			return nil, p.errf("I expected ']' to close this slice.")
		}
		p.next()
		return &ast.Slice{LineNo: p.line, Target: target, Start: start, End: end}, nil
	}

	if p.cur.Type != token.RBRACKET {
		return nil, p.errf("I expected ']' to close this index.")
	}
	p.next()
	return &ast.Index{LineNo: p.line, Target: target, Index: start}, nil
}
