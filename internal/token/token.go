package token

import "fmt"

// Token is the source anchor the parser attaches to every AST node.
// Only position information survives into semantic analysis.
type Token struct {
	Lexeme    string
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// At builds a single-point token, mostly for tests and synthesized nodes.
func At(line, col int, lexeme string) Token {
	return Token{Lexeme: lexeme, Line: line, Column: col, EndLine: line, EndColumn: col + len(lexeme)}
}

// IsZero reports whether the token carries no position.
func (t Token) IsZero() bool {
	return t.Line == 0 && t.Column == 0
}

// Before orders tokens by line, then column.
func (t Token) Before(o Token) bool {
	if t.Line != o.Line {
		return t.Line < o.Line
	}
	return t.Column < o.Column
}

func (t Token) String() string {
	if t.File != "" {
		return fmt.Sprintf("%s:%d:%d", t.File, t.Line, t.Column)
	}
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
