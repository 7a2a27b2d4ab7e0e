package lexer

type TokenType int

type Token struct {
	Type    TokenType // Type of the token
	Lexeme  string    // Actual string from source code
	Literal string    // Literal value (if applicable), empty string if not
	Pos     Position  // Position in source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, Pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     Pos,
	}
}

const (
	EOF TokenType = iota // End of file

	NEWLINE   // end of a statement
	DIRECTIVE // .name
	ID        // mnemonic, kind or symbol name
	NUM       // num (number)
	STRING    // "string literal"
	CHAR      // 'c'
	COMMA     // ,

	ILLEGAL // illegal token
)

var tokenNames = map[TokenType]string{
	EOF:       "EOF",
	NEWLINE:   "newline",
	DIRECTIVE: "directive",
	ID:        "identifier",
	NUM:       "number",
	STRING:    "string",
	CHAR:      "char",
	COMMA:     ",",
	ILLEGAL:   "ILLEGAL",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "UNKNOWN"
}
