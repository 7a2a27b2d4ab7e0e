// Package lexer splits assembler source into line-oriented tokens.
package lexer

import (
	"strconv"
)

type Lexer struct {
	input    string // input string to be tokenized
	length   int    // length of the input string
	position int    // current position in the input string
	line     int    // current line number for error reporting
	column   int    // current column number for error reporting
}

// Create a new lexer instance
func NewLexer(s string) *Lexer {
	return &Lexer{
		input:    s,
		length:   len(s),
		position: 0,
		line:     1,
		column:   1,
	}
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	// End of input
	if l.position >= l.length {
		return NewToken(EOF, "", "", l.currentPosition())
	}

	pos := l.currentPosition()
	remaining := l.input[l.position:]
	token_type, lexeme, matched := MatchToken(remaining)

	if !matched {
		l.advance(1)
		return NewToken(ILLEGAL, lexeme, "", pos)
	}

	var literal string
	switch token_type {
	case STRING, CHAR:
		unquoted, err := strconv.Unquote(lexeme)
		if err != nil {
			l.advance(len(lexeme))
			return NewToken(ILLEGAL, lexeme, "", pos)
		}
		literal = unquoted
	default:
		literal = lexeme
	}

	l.advance(len(lexeme))
	return NewToken(token_type, lexeme, literal, pos)
}

// View next token without advancing the position
func (l *Lexer) Peek() Token {
	// save state
	cpos := l.position
	cline := l.line
	ccol := l.column

	token := l.NextToken()

	// restore state
	l.position = cpos
	l.line = cline
	l.column = ccol

	return token
}

// Check if there are more characters to read
func (l *Lexer) HasMore() bool {
	return l.position < l.length
}

// Tokenize returns every token of the input up to and including EOF
func Tokenize(s string) []Token {
	l := NewLexer(s)

	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// Skip blanks and comments. Newlines are tokens and are not skipped.
func (l *Lexer) skipWhitespace() {
	for l.position < l.length {
		token_type, lexeme, matched := MatchToken(l.input[l.position:])
		if !matched || token_type != EOF || lexeme == "" {
			return
		}

		l.advance(len(lexeme))
	}
}

// Advance the lexer position by n characters
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.position >= l.length {
			break
		}

		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}

		l.position++
	}
}

// Get the current position of the lexer
func (l *Lexer) currentPosition() Position {
	return Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}
