// Package parser builds an AST from a token stream via one-token
// lookahead recursive descent, with a Shunting-Yard pass for
// expressions.
package parser

import (
	"github.com/vtbassmatt/phonebasic/ast"
	"github.com/vtbassmatt/phonebasic/lexer"
)

// Parser turns a token stream into a slice of top-level ast.Stmt.
type Parser struct {
	lex *lexer.Lexer
	cur lexer.Token
}

// New creates a Parser over the given source text.
func New(source string) (*Parser, error) {
	p := &Parser{lex: lexer.New(source)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) next() error {
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// Parse drives the whole program: a label is any bare ID followed by
// COLON NEWLINE; anything else dispatches to parseStmt. Lone NEWLINEs
// between statements are skipped.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var stmts []ast.Stmt

	for p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.NEWLINE || p.cur.Type == lexer.COMMENT {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}

		if p.cur.Type == lexer.ID {
			label, err := p.parseLabel()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, label)
			continue
		}

		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

func (p *Parser) parseLabel() (ast.Stmt, error) {
	name := p.cur.Value
	id := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.COLON {
		return nil, newError(id, "error parsing line label, expected ':'")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.NEWLINE {
		return nil, newError(p.cur, "error parsing line label, expected newline after ':'")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return ast.Label{Name: name}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Type {
	case lexer.LET:
		return p.parseLet()
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.IF:
		return p.parseIf()
	case lexer.GOTO:
		return p.parseGoto()
	case lexer.INPUT:
		return p.parseInput()
	case lexer.CLEAR:
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.Clear{}, nil
	case lexer.END:
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.End{}, nil
	case lexer.CALL:
		return p.parseCall()
	case lexer.COMPUTE:
		return p.parseCompute()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.ACCEPT:
		return p.parseAccept()
	default:
		return nil, newError(p.cur, "unexpected token")
	}
}

func (p *Parser) parseLet() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume LET
		return nil, err
	}
	if p.cur.Type != lexer.ID {
		return nil, newError(p.cur, "error parsing LET statement, expected identifier")
	}
	name := p.cur.Value
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.ASSIGN {
		return nil, newError(p.cur, "error parsing LET statement, expected BE")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	rhs, err := p.parseExprOrString()
	if err != nil {
		return nil, err
	}
	return ast.Let{Name: name, RHS: rhs}, nil
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume PRINT
		return nil, err
	}
	var items []interface{}
	for {
		if p.cur.Type == lexer.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		if p.cur.Type == lexer.NEWLINE || p.cur.Type == lexer.EOF {
			break
		}
		item, err := p.parseExprOrString()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	items = append(items, ast.String{Value: "\n"})
	return ast.Print{Args: items}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume IF
		return nil, err
	}
	left, err := p.parseExprOrString()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.COMPOP {
		return nil, newError(p.cur, "error parsing IF statement, expected a comparison operator")
	}
	op := p.cur.Value
	if err := p.next(); err != nil {
		return nil, err
	}
	right, err := p.parseExprOrString()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.THEN {
		return nil, newError(p.cur, "error parsing IF statement, expected THEN")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return ast.If{Left: left, Op: op, Right: right, Then: then}, nil
}

func (p *Parser) parseGoto() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume GOTO
		return nil, err
	}
	if p.cur.Type != lexer.ID {
		return nil, newError(p.cur, "error parsing GOTO statement, expected a label")
	}
	label := p.cur.Value
	if err := p.next(); err != nil {
		return nil, err
	}
	return ast.Goto{Label: label}, nil
}

func (p *Parser) parseInput() (ast.Stmt, error) {
	var names []string
	for {
		if err := p.next(); err != nil {
			return nil, err
		}
		switch p.cur.Type {
		case lexer.ID:
			names = append(names, p.cur.Value)
		case lexer.COMMA:
			continue
		case lexer.NEWLINE, lexer.EOF:
			return ast.Input{Names: names}, nil
		default:
			return nil, newError(p.cur, "error parsing INPUT statement")
		}
	}
}

func (p *Parser) parseCall() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume CALL
		return nil, err
	}
	if p.cur.Type != lexer.ID {
		return nil, newError(p.cur, "error parsing CALL, expected a label")
	}
	label := p.cur.Value
	if err := p.next(); err != nil {
		return nil, err
	}
	return ast.Call{Label: label}, nil
}

func (p *Parser) parseCompute() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume COMPUTE
		return nil, err
	}
	if p.cur.Type != lexer.ID {
		return nil, newError(p.cur, "error parsing COMPUTE, expected a target identifier")
	}
	target := p.cur.Value
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.AS {
		return nil, newError(p.cur, "error parsing COMPUTE, expected AS")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.ID {
		return nil, newError(p.cur, "error parsing COMPUTE, expected a label")
	}
	label := p.cur.Value
	if err := p.next(); err != nil {
		return nil, err
	}

	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return ast.Compute{Name: target, Label: label, Args: args}, nil
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	var args []ast.Expr
	for p.cur.Type != lexer.NEWLINE && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (p *Parser) parseAccept() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume ACCEPT
		return nil, err
	}
	var names []string
	for {
		switch p.cur.Type {
		case lexer.ID:
			names = append(names, p.cur.Value)
			if err := p.next(); err != nil {
				return nil, err
			}
		case lexer.COMMA:
			if err := p.next(); err != nil {
				return nil, err
			}
		case lexer.NEWLINE, lexer.EOF:
			return ast.Accept{Names: names}, nil
		default:
			return nil, newError(p.cur, "unexpected token in ACCEPT statement")
		}
	}
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume RETURN
		return nil, err
	}
	if p.cur.Type == lexer.NEWLINE || p.cur.Type == lexer.EOF {
		return ast.Return{Expr: nil}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Return{Expr: &expr}, nil
}
