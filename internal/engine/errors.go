package engine

import "errors"

// Pre-defined errors for the lex and parse failure cases. Call sites wrap
// them with position context via fmt.Errorf and %w so callers can match
// with errors.Is.

var (
	errUnterminatedString  = errors.New("unterminated string literal")
	errUnexpectedCharacter = errors.New("unexpected character")
	errInvalidNumber       = errors.New("invalid number literal")
	errUnexpectedToken     = errors.New("unexpected token")
	errMaxDepth            = errors.New("expression exceeds maximum nesting depth")
)
