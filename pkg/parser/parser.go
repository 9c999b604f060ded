// Package parser implements the Kaleidoscope parser: a recursive descent
// parser for declarations over an operator-precedence expression parser.
package parser

import (
	"fmt"

	"github.com/kaleido-lang/kaleido/pkg/ast"
	"github.com/kaleido-lang/kaleido/pkg/lexer"
)

// precedences maps binary operator tokens to their binding strength
var precedences = map[lexer.TokenType]int{
	lexer.TokenLt:    10,
	lexer.TokenGt:    10,
	lexer.TokenPlus:  20,
	lexer.TokenMinus: 20,
	lexer.TokenStar:  40,
	lexer.TokenSlash: 40,
}

// Parser parses Kaleidoscope source into an AST. It holds exactly one token
// of lookahead and never backtracks.
type Parser struct {
	l        *lexer.Lexer
	curToken lexer.Token
	reporter Reporter
}

// New creates a new Parser for the given lexer. Diagnostics from
// ParseProgram go to the reporter.
func New(l *lexer.Lexer, reporter Reporter) *Parser {
	p := &Parser{l: l, reporter: reporter}
	// Read one token to initialize curToken
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

// tokenPrecedence returns the binding strength of the current token, or -1
// when it is not a binary operator.
func (p *Parser) tokenPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return -1
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{
		Line:   p.curToken.Line,
		Column: p.curToken.Column,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// describe renders a token for diagnostics
func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Literal)
}

// ParseExpression parses one expression, leaving the cursor on the first
// token past it.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinaryRHS(0, lhs)
}

// parseBinaryRHS is the precedence-climbing loop. It folds operators of at
// least minPrec binding strength onto lhs; all operators associate left, so
// ties stay with the node already built.
func (p *Parser) parseBinaryRHS(minPrec int, lhs ast.Expr) (ast.Expr, error) {
	for {
		prec := p.tokenPrecedence()
		if prec < minPrec {
			return lhs, nil
		}

		op := rune(p.curToken.Literal[0])
		p.nextToken() // consume the operator

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		// A tighter-binding operator after rhs takes rhs as its own lhs.
		if prec < p.tokenPrecedence() {
			rhs, err = p.parseBinaryRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = ast.Binary{Op: op, Left: lhs, Right: rhs}
	}
}

// parsePrimary dispatches on the current token:
//
//	primary := number | identifier | identifier '(' args ')' | '(' expression ')'
func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.curToken.Type {
	case lexer.TokenNumber:
		return p.parseNumber()
	case lexer.TokenIdentifier:
		return p.parseIdentifier()
	case lexer.TokenLParen:
		return p.parseParen()
	default:
		return nil, p.errorf("expected expression, got %s", describe(p.curToken))
	}
}

func (p *Parser) parseNumber() (ast.Expr, error) {
	n := ast.Number{Value: p.curToken.Value}
	p.nextToken()
	return n, nil
}

func (p *Parser) parseParen() (ast.Expr, error) {
	p.nextToken() // consume '('
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.TokenRParen) {
		return nil, p.errorf("expected ')', got %s", describe(p.curToken))
	}
	p.nextToken() // consume ')'
	return expr, nil
}

// parseIdentifier parses a bare variable reference or, when a '(' follows
// immediately, a call with a comma-separated argument list.
func (p *Parser) parseIdentifier() (ast.Expr, error) {
	name := p.curToken.Literal
	p.nextToken()

	if !p.curTokenIs(lexer.TokenLParen) {
		return ast.Variable{Name: name}, nil
	}

	p.nextToken() // consume '('
	args := []ast.Expr{}
	if !p.curTokenIs(lexer.TokenRParen) {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.curTokenIs(lexer.TokenRParen) {
				break
			}
			if !p.curTokenIs(lexer.TokenComma) {
				return nil, p.errorf("expected ')' or ',' in argument list, got %s", describe(p.curToken))
			}
			p.nextToken() // consume ','
		}
	}
	p.nextToken() // consume ')'

	return ast.Call{Callee: name, Args: args}, nil
}

// parsePrototype parses a function name and its parameter list:
//
//	prototype := identifier '(' identifier* ')'
//
// Parameter names are not checked for duplicates; "def f(x x) x" parses.
func (p *Parser) parsePrototype() (*ast.Prototype, error) {
	if !p.curTokenIs(lexer.TokenIdentifier) {
		return nil, p.errorf("expected function name in prototype, got %s", describe(p.curToken))
	}
	name := p.curToken.Literal
	p.nextToken()

	if !p.curTokenIs(lexer.TokenLParen) {
		return nil, p.errorf("expected '(' in prototype, got %s", describe(p.curToken))
	}

	var params []string
	for p.nextToken(); p.curTokenIs(lexer.TokenIdentifier); p.nextToken() {
		params = append(params, p.curToken.Literal)
	}
	if !p.curTokenIs(lexer.TokenRParen) {
		return nil, p.errorf("expected ')' in prototype, got %s", describe(p.curToken))
	}
	p.nextToken() // consume ')'

	return &ast.Prototype{Name: name, Params: params}, nil
}

// parseDefinition parses 'def' prototype expression
func (p *Parser) parseDefinition() (*ast.Function, error) {
	p.nextToken() // consume 'def'
	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Proto: proto, Body: body}, nil
}

// parseExtern parses 'extern' prototype
func (p *Parser) parseExtern() (*ast.Prototype, error) {
	p.nextToken() // consume 'extern'
	return p.parsePrototype()
}

// parseTopLevelExpr wraps a bare expression in a function with an anonymous
// zero-parameter prototype, so free-standing expressions live alongside
// named definitions.
func (p *Parser) parseTopLevelExpr() (*ast.Function, error) {
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Proto: &ast.Prototype{Name: ""}, Body: body}, nil
}

// ParseDeclaration returns the next top-level construct, skipping bare
// semicolons. At end of input it returns (nil, nil).
func (p *Parser) ParseDeclaration() (ast.Decl, error) {
	for p.curTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
	}

	switch p.curToken.Type {
	case lexer.TokenEOF:
		return nil, nil
	case lexer.TokenDef:
		fn, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		return fn, nil
	case lexer.TokenExtern:
		proto, err := p.parseExtern()
		if err != nil {
			return nil, err
		}
		return proto, nil
	default:
		fn, err := p.parseTopLevelExpr()
		if err != nil {
			return nil, err
		}
		return fn, nil
	}
}

// ParseProgram parses the whole input. Each failed top-level construct is
// reported once and abandoned; parsing resynchronizes at the next 'def',
// 'extern', or ';' and keeps going. The returned program holds every
// construct that did parse.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	failed := 0
	for {
		decl, err := p.ParseDeclaration()
		if err != nil {
			p.reporter.Report(err)
			failed++
			p.synchronize()
			continue
		}
		if decl == nil {
			break
		}
		prog.Decls = append(prog.Decls, decl)
	}
	if failed > 0 {
		return prog, fmt.Errorf("parsing failed with %d errors", failed)
	}
	return prog, nil
}

// synchronize discards tokens until a declaration boundary
func (p *Parser) synchronize() {
	for {
		switch p.curToken.Type {
		case lexer.TokenEOF, lexer.TokenDef, lexer.TokenExtern:
			return
		case lexer.TokenSemicolon:
			p.nextToken()
			return
		}
		p.nextToken()
	}
}
