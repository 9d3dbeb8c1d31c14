// Package mathexpr evaluates the closed arithmetic grammar used by sheet
// formulas: literals, + - * /, parentheses, unary minus, and the functions
// floor, ceil, round, max and min. The grammar is deliberately enumerable:
// formulas arrive from remote configuration, so no general-purpose expression
// engine is allowed anywhere near this package.
package mathexpr

import "math"

// Evaluate parses and evaluates a pure arithmetic expression with standard
// operator precedence. It returns a *MalformedExpressionError when the input
// is outside the grammar.
func Evaluate(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{expr: expr, tokens: tokens}
	val, err := p.expression()
	if err != nil {
		return 0, err
	}
	if !p.done() {
		return 0, malformed(expr, p.peek().Pos, "unexpected trailing token")
	}
	return val, nil
}

// parser walks the token stream with one token of lookahead.
// Grammar:
//
//	expression → term (('+'|'-') term)*
//	term       → factor (('*'|'/') factor)*
//	factor     → number | func '(' args ')' | '(' expression ')' | '-' factor
type parser struct {
	expr   string
	tokens []Token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() Token {
	if p.done() {
		return Token{Pos: len(p.expr)}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) expression() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for !p.done() && p.peek().Kind == TokenOperator && (p.peek().Op == '+' || p.peek().Op == '-') {
		op := p.next().Op
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) term() (float64, error) {
	left, err := p.factor()
	if err != nil {
		return 0, err
	}
	for !p.done() && p.peek().Kind == TokenOperator && (p.peek().Op == '*' || p.peek().Op == '/') {
		op := p.next().Op
		right, err := p.factor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, malformed(p.expr, p.peek().Pos, "division by zero")
			}
			left /= right
		}
	}
	return left, nil
}

func (p *parser) factor() (float64, error) {
	if p.done() {
		return 0, malformed(p.expr, len(p.expr), "unexpected end of expression")
	}
	t := p.next()
	switch t.Kind {
	case TokenNumber:
		return t.Num, nil
	case TokenOperator:
		if t.Op == '-' {
			val, err := p.factor()
			if err != nil {
				return 0, err
			}
			return -val, nil
		}
		return 0, malformed(p.expr, t.Pos, "unexpected operator %q", string(t.Op))
	case TokenLeftParen:
		val, err := p.expression()
		if err != nil {
			return 0, err
		}
		if p.peek().Kind != TokenRightParen {
			return 0, malformed(p.expr, p.peek().Pos, "missing closing parenthesis")
		}
		p.next()
		return val, nil
	case TokenFunc:
		return p.call(t)
	default:
		return 0, malformed(p.expr, t.Pos, "unexpected token")
	}
}

// call parses a function's parenthesized argument list and applies it.
// max and min accept two or more arguments, everything else exactly one.
func (p *parser) call(fn Token) (float64, error) {
	if p.peek().Kind != TokenLeftParen {
		return 0, malformed(p.expr, p.peek().Pos, "%s requires a parenthesized argument list", fn.Name)
	}
	p.next()

	var args []float64
	for {
		val, err := p.expression()
		if err != nil {
			return 0, err
		}
		args = append(args, val)
		if p.peek().Kind == TokenComma {
			p.next()
			continue
		}
		break
	}
	if p.peek().Kind != TokenRightParen {
		return 0, malformed(p.expr, p.peek().Pos, "missing closing parenthesis in %s call", fn.Name)
	}
	p.next()

	switch fn.Name {
	case "floor":
		if len(args) != 1 {
			return 0, malformed(p.expr, fn.Pos, "floor takes exactly one argument")
		}
		return math.Floor(args[0]), nil
	case "ceil":
		if len(args) != 1 {
			return 0, malformed(p.expr, fn.Pos, "ceil takes exactly one argument")
		}
		return math.Ceil(args[0]), nil
	case "round":
		if len(args) != 1 {
			return 0, malformed(p.expr, fn.Pos, "round takes exactly one argument")
		}
		return math.Round(args[0]), nil
	case "max":
		if len(args) < 2 {
			return 0, malformed(p.expr, fn.Pos, "max takes at least two arguments")
		}
		best := args[0]
		for _, a := range args[1:] {
			if a > best {
				best = a
			}
		}
		return best, nil
	case "min":
		if len(args) < 2 {
			return 0, malformed(p.expr, fn.Pos, "min takes at least two arguments")
		}
		best := args[0]
		for _, a := range args[1:] {
			if a < best {
				best = a
			}
		}
		return best, nil
	}
	return 0, malformed(p.expr, fn.Pos, "unknown function %q", fn.Name)
}
