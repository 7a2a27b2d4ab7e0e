package lexer

import (
	"regexp"
)

type tokenRegex struct {
	Pattern *regexp.Regexp
	Raw     string
}

// Token regex patterns
var tokenRegexes = map[TokenType]tokenRegex{
	NEWLINE:   {regexp.MustCompile(`^\n`), `^\n`},
	COMMA:     {regexp.MustCompile(`^,`), `^,`},
	DIRECTIVE: {regexp.MustCompile(`^\.[a-zA-Z_][a-zA-Z0-9_]*`), `^\.[a-zA-Z_][a-zA-Z0-9_]*`},

	NUM:    {regexp.MustCompile(`^[-+]?\d+(\.\d+)?([eE][+-]?\d+)?`), `^[-+]?\d+(\.\d+)?([eE][+-]?\d+)?`},
	STRING: {regexp.MustCompile(`^"([^"\\\n]|\\.)*"`), `^"([^"\\\n]|\\.)*"`},
	CHAR:   {regexp.MustCompile(`^'([^'\\\n]|\\.[^']*)'`), `^'([^'\\\n]|\\.[^']*)'`},
	ID:     {regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*`), `^[a-zA-Z_][a-zA-Z0-9_]*`},
}

var (
	whitespaceRegex = regexp.MustCompile(`^[ \t\r]+`)
	commentRegex    = regexp.MustCompile(`^(//|;|#)[^\n]*`)
)

// Token precedence order for matching
var tokenPrecedenceOrder = []TokenType{
	NEWLINE, COMMA, DIRECTIVE, NUM, STRING, CHAR, ID,
}

// Get the regex pattern for a token type
func (t TokenType) Regex() *regexp.Regexp {
	if regex, ok := tokenRegexes[t]; ok {
		return regex.Pattern
	}

	return nil
}

// Get the raw regex string for a token type
func (t TokenType) RawRegex() string {
	if regex, ok := tokenRegexes[t]; ok {
		return regex.Raw
	}

	return ""
}

// Match the first token at the start of the string. Whitespace and
// comments match as EOF with a non-empty lexeme so the caller can skip them.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := commentRegex.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if regex, ok := tokenRegexes[tokenType]; ok {
			if match := regex.Pattern.FindString(s); match != "" {
				return tokenType, match, true
			}
		}
	}

	return ILLEGAL, string(s[0]), false
}
