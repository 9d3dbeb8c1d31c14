package mathexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TokenKind enumerates every token the grammar accepts.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenFunc
)

// Token is one lexical unit of an arithmetic expression.
type Token struct {
	Kind  TokenKind
	Num   float64
	Op    byte   // one of + - * / when Kind == TokenOperator
	Name  string // function name when Kind == TokenFunc
	Pos   int    // byte offset in the source expression
}

// functions is the closed set of callable names. Anything else is rejected
// so the evaluator never executes arbitrary identifiers.
var functions = map[string]bool{
	"floor": true,
	"ceil":  true,
	"round": true,
	"max":   true,
	"min":   true,
}

// MalformedExpressionError reports an expression the evaluator cannot parse.
// It is fatal to the single sub-computation that produced it and nothing else.
type MalformedExpressionError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("malformed expression %q at position %d: %s", e.Expr, e.Pos, e.Msg)
}

func malformed(expr string, pos int, format string, args ...any) error {
	return &MalformedExpressionError{Expr: expr, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// tokenize scans the expression left to right exactly once, producing the
// token stream for the parser. Any character outside the accepted set fails.
func tokenize(expr string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(expr) && (expr[i] >= '0' && expr[i] <= '9' || expr[i] == '.') {
				i++
			}
			num, err := strconv.ParseFloat(expr[start:i], 64)
			if err != nil {
				return nil, malformed(expr, start, "invalid number %q", expr[start:i])
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Num: num, Pos: start})
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, Token{Kind: TokenOperator, Op: c, Pos: i})
			i++
		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLeftParen, Pos: i})
			i++
		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRightParen, Pos: i})
			i++
		case c == ',':
			tokens = append(tokens, Token{Kind: TokenComma, Pos: i})
			i++
		case unicode.IsLetter(rune(c)):
			start := i
			for i < len(expr) && unicode.IsLetter(rune(expr[i])) {
				i++
			}
			name := strings.ToLower(expr[start:i])
			if !functions[name] {
				return nil, malformed(expr, start, "unknown function %q", expr[start:i])
			}
			tokens = append(tokens, Token{Kind: TokenFunc, Name: name, Pos: start})
		default:
			return nil, malformed(expr, i, "unexpected character %q", string(c))
		}
	}
	return tokens, nil
}
