package lexer_test

import (
	"testing"

	"golden/pkg/lexer"
)

func TestTokens(t *testing.T) {
	input := `.title "Hello \"VM\""
push -2.5e3, 'A' ; trailing comment
// full line comment
array_new items`

	expected := []struct {
		typ     lexer.TokenType
		literal string
	}{
		{lexer.DIRECTIVE, ".title"},
		{lexer.STRING, `Hello "VM"`},
		{lexer.NEWLINE, "\n"},
		{lexer.ID, "push"},
		{lexer.NUM, "-2.5e3"},
		{lexer.COMMA, ","},
		{lexer.CHAR, "A"},
		{lexer.NEWLINE, "\n"},
		{lexer.NEWLINE, "\n"},
		{lexer.ID, "array_new"},
		{lexer.ID, "items"},
		{lexer.EOF, ""},
	}

	tokens := lexer.Tokenize(input)
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}

	for i, want := range expected {
		if tokens[i].Type != want.typ {
			t.Errorf("Token %d: expected %s, got %s", i, want.typ, tokens[i].Type)
		}
		if tokens[i].Literal != want.literal {
			t.Errorf("Token %d: expected literal %q, got %q", i, want.literal, tokens[i].Literal)
		}
	}
}

func TestPositions(t *testing.T) {
	tokens := lexer.Tokenize("push 1\n  pop")

	expected := []lexer.Position{
		{Line: 1, Column: 1, Offset: 0},
		{Line: 1, Column: 6, Offset: 5},
		{Line: 1, Column: 7, Offset: 6},
		{Line: 2, Column: 3, Offset: 9},
	}

	for i, want := range expected {
		if tokens[i].Pos != want {
			t.Errorf("Token %d (%s): expected %v, got %v", i, tokens[i].Lexeme, want, tokens[i].Pos)
		}
	}
}

func TestIllegal(t *testing.T) {
	tests := []struct {
		input  string
		lexeme string
	}{
		{"@", "@"},
		{`"unterminated`, `"`},
		{`'\q'`, `'\q'`},
	}

	for _, tt := range tests {
		tok := lexer.NewLexer(tt.input).NextToken()
		if tok.Type != lexer.ILLEGAL || tok.Lexeme != tt.lexeme {
			t.Errorf("%q: expected ILLEGAL %q, got %s %q", tt.input, tt.lexeme, tok.Type, tok.Lexeme)
		}
	}
}

func TestPeek(t *testing.T) {
	l := lexer.NewLexer("new Point")

	if tok := l.Peek(); tok.Literal != "new" {
		t.Fatalf("unexpected peek %q", tok.Literal)
	}
	if tok := l.NextToken(); tok.Literal != "new" {
		t.Fatalf("peek advanced the lexer")
	}
	if tok := l.NextToken(); tok.Literal != "Point" || tok.Pos.String() != "1:5" {
		t.Errorf("unexpected token %q at %s", tok.Literal, tok.Pos)
	}
}
