package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenIdentifier
	TokenOperator
	TokenLParen
	TokenRParen
	TokenComma
)

// Token represents a single token in a formula expression
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Tokenizer tokenizes formula source text. Positions are byte offsets;
// the reader decodes full UTF-8 runes so multi-byte characters in string
// literals and identifiers pass through intact.
type Tokenizer struct {
	input string
	pos   int
	width int
	ch    rune
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{input: input}
	if len(input) > 0 {
		t.ch, t.width = utf8.DecodeRuneInString(input)
	}
	return t
}

// advance moves to the next character
func (t *Tokenizer) advance() {
	t.pos += t.width
	if t.pos >= len(t.input) {
		t.ch, t.width = 0, 0 // EOF
		return
	}
	t.ch, t.width = utf8.DecodeRuneInString(t.input[t.pos:])
}

// peek looks ahead without advancing
func (t *Tokenizer) peek() rune {
	next := t.pos + t.width
	if next >= len(t.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(t.input[next:])
	return ch
}

// skipWhitespace skips whitespace characters
func (t *Tokenizer) skipWhitespace() {
	for t.ch == ' ' || t.ch == '\t' || t.ch == '\n' || t.ch == '\r' {
		t.advance()
	}
}

// readString reads a quoted string. A backslash escapes the quote character
// and itself; any other escape sequence is kept literally.
func (t *Tokenizer) readString() (string, error) {
	quote := t.ch
	start := t.pos
	t.advance() // skip opening quote

	var result strings.Builder
	for t.ch != 0 && t.ch != quote {
		if t.ch == '\\' && (t.peek() == quote || t.peek() == '\\') {
			t.advance()
		}
		result.WriteRune(t.ch)
		t.advance()
	}

	if t.ch != quote {
		return "", fmt.Errorf("%w at position %d", errUnterminatedString, start)
	}
	t.advance() // skip closing quote

	return result.String(), nil
}

// readNumber reads a decimal number
func (t *Tokenizer) readNumber() string {
	var result strings.Builder

	for unicode.IsDigit(t.ch) {
		result.WriteRune(t.ch)
		t.advance()
	}

	if t.ch == '.' && unicode.IsDigit(t.peek()) {
		result.WriteRune(t.ch)
		t.advance()
		for unicode.IsDigit(t.ch) {
			result.WriteRune(t.ch)
			t.advance()
		}
	}

	return result.String()
}

// readIdentifier reads an identifier (field or function name)
func (t *Tokenizer) readIdentifier() string {
	var result strings.Builder

	for t.ch != 0 && (unicode.IsLetter(t.ch) || unicode.IsDigit(t.ch) || t.ch == '_') {
		result.WriteRune(t.ch)
		t.advance()
	}

	return result.String()
}

// NextToken returns the next token
func (t *Tokenizer) NextToken() (*Token, error) {
	t.skipWhitespace()

	if t.ch == 0 {
		return &Token{Type: TokenEOF, Pos: t.pos}, nil
	}

	pos := t.pos

	if t.ch == '\'' || t.ch == '"' {
		value, err := t.readString()
		if err != nil {
			return nil, err
		}
		return &Token{Type: TokenString, Value: value, Pos: pos}, nil
	}

	if unicode.IsDigit(t.ch) {
		value := t.readNumber()
		return &Token{Type: TokenNumber, Value: value, Pos: pos}, nil
	}

	if token := t.tokenizeOperatorOrPunct(pos); token != nil {
		return token, nil
	}

	if unicode.IsLetter(t.ch) || t.ch == '_' {
		value := t.readIdentifier()
		return &Token{Type: TokenIdentifier, Value: value, Pos: pos}, nil
	}

	return nil, fmt.Errorf("%w '%c' at position %d", errUnexpectedCharacter, t.ch, t.pos)
}

// tokenizeOperatorOrPunct tokenizes operators, parentheses and commas
func (t *Tokenizer) tokenizeOperatorOrPunct(pos int) *Token {
	switch t.ch {
	case '(':
		t.advance()
		return &Token{Type: TokenLParen, Value: "(", Pos: pos}
	case ')':
		t.advance()
		return &Token{Type: TokenRParen, Value: ")", Pos: pos}
	case ',':
		t.advance()
		return &Token{Type: TokenComma, Value: ",", Pos: pos}
	case '+', '-', '*', '/', '&', '=':
		op := string(t.ch)
		t.advance()
		return &Token{Type: TokenOperator, Value: op, Pos: pos}
	case '<':
		t.advance()
		if t.ch == '>' {
			t.advance()
			return &Token{Type: TokenOperator, Value: "<>", Pos: pos}
		}
		if t.ch == '=' {
			t.advance()
			return &Token{Type: TokenOperator, Value: "<=", Pos: pos}
		}
		return &Token{Type: TokenOperator, Value: "<", Pos: pos}
	case '>':
		t.advance()
		if t.ch == '=' {
			t.advance()
			return &Token{Type: TokenOperator, Value: ">=", Pos: pos}
		}
		return &Token{Type: TokenOperator, Value: ">", Pos: pos}
	}
	return nil
}

// Tokenize returns all tokens from the source text, ending with an EOF
// token. A lex failure aborts the whole tokenization; the engine does not
// attempt recovery.
func Tokenize(source string) ([]*Token, error) {
	t := NewTokenizer(source)

	var tokens []*Token
	for {
		token, err := t.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)

		if token.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
