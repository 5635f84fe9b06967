package engine

import (
	"fmt"
	"strconv"
)

// maxParseDepth bounds expression nesting so that a pathological formula
// (e.g. thousands of nested parentheses) fails with a syntax error instead
// of exhausting the goroutine stack.
const maxParseDepth = 64

// Parser parses a token stream into an AST
type Parser struct {
	tokens  []*Token
	current int
	depth   int
}

// NewParser creates a new parser over a token stream
func NewParser(tokens []*Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
	}
}

// currentToken returns the current token
func (p *Parser) currentToken() *Token {
	if p.current >= len(p.tokens) {
		return &Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

// advance moves to the next token
func (p *Parser) advance() *Token {
	token := p.currentToken()
	if p.current < len(p.tokens) {
		p.current++
	}
	return token
}

// expect checks that the current token matches the expected type and advances
func (p *Parser) expect(tokenType TokenType) error {
	token := p.currentToken()
	if token.Type != tokenType {
		return fmt.Errorf("%w %q at position %d: expected token type %v", errUnexpectedToken, token.Value, token.Pos, tokenType)
	}
	p.advance()
	return nil
}

// enter tracks recursion depth for nested expressions
func (p *Parser) enter() error {
	p.depth++
	if p.depth > maxParseDepth {
		return fmt.Errorf("%w of %d", errMaxDepth, maxParseDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// Parse parses the tokens into an AST root
func (p *Parser) Parse() (Node, error) {
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	// Verify all tokens were consumed (except EOF)
	if p.currentToken().Type != TokenEOF {
		return nil, fmt.Errorf("%w %q after expression at position %d",
			errUnexpectedToken, p.currentToken().Value, p.currentToken().Pos)
	}

	return node, nil
}

// parseExpression handles relational expressions (lowest precedence)
func (p *Parser) parseExpression() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenOperator && isRelationalOp(p.currentToken().Value) {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:     left,
			Operator: op.Value,
			Right:    right,
		}
	}

	return left, nil
}

// parseAdditive handles addition, subtraction and string concatenation
func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenOperator &&
		(p.currentToken().Value == "+" || p.currentToken().Value == "-" || p.currentToken().Value == "&") {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:     left,
			Operator: op.Value,
			Right:    right,
		}
	}

	return left, nil
}

// parseMultiplicative handles multiplication and division
func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenOperator &&
		(p.currentToken().Value == "*" || p.currentToken().Value == "/") {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:     left,
			Operator: op.Value,
			Right:    right,
		}
	}

	return left, nil
}

// parseUnary handles unary minus
func (p *Parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.currentToken().Type == TokenOperator && p.currentToken().Value == "-" {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			Operator: op.Value,
			Operand:  operand,
		}, nil
	}

	return p.parsePrimary()
}

// parsePrimary handles literals, field references, function calls and
// grouped expressions
func (p *Parser) parsePrimary() (Node, error) {
	token := p.currentToken()

	switch token.Type {
	case TokenLParen:
		p.advance() // consume '('
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenNumber:
		p.advance()
		n, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w %q at position %d", errInvalidNumber, token.Value, token.Pos)
		}
		return &LiteralExpr{Value: Number(n)}, nil

	case TokenString:
		p.advance()
		return &LiteralExpr{Value: String(token.Value)}, nil

	case TokenIdentifier:
		p.advance()
		if p.currentToken().Type == TokenLParen {
			return p.parseFunctionCall(token.Value)
		}
		return &FieldRefExpr{Name: token.Value}, nil
	}

	return nil, fmt.Errorf("%w %q at position %d", errUnexpectedToken, token.Value, token.Pos)
}

// parseFunctionCall parses the argument list of a function call. Arity is
// not checked here; argument count validation belongs to the function
// library at evaluation time.
func (p *Parser) parseFunctionCall(name string) (Node, error) {
	p.advance() // consume '('

	var args []Node
	if p.currentToken().Type != TokenRParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.currentToken().Type != TokenComma {
				break
			}
			p.advance() // consume ','
		}
	}

	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	return &FunctionCallExpr{Name: name, Args: args}, nil
}

func isRelationalOp(op string) bool {
	switch op {
	case "=", "<>", "<", ">", "<=", ">=":
		return true
	}
	return false
}

// ParseSource tokenizes and parses formula source text in one step
func ParseSource(source string) (Node, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}
