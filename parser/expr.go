package parser

import (
	"github.com/vtbassmatt/phonebasic/ast"
	"github.com/vtbassmatt/phonebasic/lexer"
)

type opInfo struct {
	precedence      int
	leftAssociative bool
}

var operatorTable = map[string]opInfo{
	"*": {precedence: 3, leftAssociative: true},
	"/": {precedence: 3, leftAssociative: true},
	"+": {precedence: 2, leftAssociative: true},
	"-": {precedence: 2, leftAssociative: true},
}

// parseExpr runs the Shunting-Yard algorithm over NUMBER, ID, ARITHOP,
// LPAREN and RPAREN tokens starting at the current token, stopping at
// the first token of any other kind. It leaves that stopping token as
// the current token for the caller to inspect.
//
// A leading unary '-' (and one following '(' or another ARITHOP) is
// folded into a "0 - x" subtraction so the output stays pure binary
// RPN; the lexer itself never produces signed numbers.
func (p *Parser) parseExpr() (ast.Expr, error) {
	var output []ast.ExprItem
	var opStack []lexer.Token
	expectOperand := true

	for p.cur.Type == lexer.NUMBER || p.cur.Type == lexer.ID ||
		p.cur.Type == lexer.ARITHOP || p.cur.Type == lexer.LPAREN ||
		p.cur.Type == lexer.RPAREN {

		switch p.cur.Type {
		case lexer.NUMBER:
			output = append(output, ast.Number{Value: p.cur.Value})
			expectOperand = false

		case lexer.ID:
			output = append(output, ast.Var{Name: p.cur.Value})
			expectOperand = false

		case lexer.ARITHOP:
			if expectOperand && p.cur.Value == "-" {
				// Unary minus: negate zero minus the operand that follows.
				output = append(output, ast.Number{Value: "0"})
				opStack = append(opStack, p.cur)
				expectOperand = true
				if err := p.next(); err != nil {
					return ast.Expr{}, err
				}
				continue
			}

			o1 := p.cur
			o1info := operatorTable[o1.Value]
			for len(opStack) > 0 {
				o2 := opStack[len(opStack)-1]
				if o2.Type != lexer.ARITHOP {
					break
				}
				o2info := operatorTable[o2.Value]
				if (o1info.leftAssociative && o1info.precedence == o2info.precedence) ||
					o1info.precedence < o2info.precedence {
					opStack = opStack[:len(opStack)-1]
					output = append(output, ast.Arith{Op: o2.Value})
					continue
				}
				break
			}
			opStack = append(opStack, o1)
			expectOperand = true

		case lexer.LPAREN:
			opStack = append(opStack, p.cur)
			expectOperand = true

		case lexer.RPAREN:
			for len(opStack) > 0 && opStack[len(opStack)-1].Type != lexer.LPAREN {
				top := opStack[len(opStack)-1]
				opStack = opStack[:len(opStack)-1]
				output = append(output, ast.Arith{Op: top.Value})
			}
			if len(opStack) == 0 {
				return ast.Expr{}, newError(p.cur, "mismatched parentheses, expected '('")
			}
			opStack = opStack[:len(opStack)-1] // discard the LPAREN
			expectOperand = false
		}

		if err := p.next(); err != nil {
			return ast.Expr{}, err
		}
	}

	for len(opStack) > 0 {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if top.Type == lexer.LPAREN {
			return ast.Expr{}, newError(top, "mismatched parentheses, expected ')'")
		}
		output = append(output, ast.Arith{Op: top.Value})
	}

	return ast.Expr{Items: output}, nil
}

// parseExprOrString parses a STRING literal directly, or falls back
// to parseExpr for everything else.
func (p *Parser) parseExprOrString() (interface{}, error) {
	if p.cur.Type == lexer.STRING {
		s := ast.String{Value: p.cur.Value}
		if err := p.next(); err != nil {
			return nil, err
		}
		return s, nil
	}
	return p.parseExpr()
}
