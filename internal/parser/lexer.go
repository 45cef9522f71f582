package parser

import "fmt"

// lexer turns protocol source text into a token stream. Identifiers are
// letters, digits, underscores and dots (dots allow qualified type names
// like bytes.Chunk); comments run from // to end of line.
type lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	line, col := l.line, l.col

	if l.pos >= len(l.src) {
		return token{typ: tokenEOF, line: line, col: col}, nil
	}

	switch c := l.src[l.pos]; {
	case c == '{':
		l.advance(1)
		return token{typ: tokenLBrace, lit: "{", line: line, col: col}, nil
	case c == '}':
		l.advance(1)
		return token{typ: tokenRBrace, lit: "}", line: line, col: col}, nil
	case c == ';':
		l.advance(1)
		return token{typ: tokenSemicolon, lit: ";", line: line, col: col}, nil
	default:
		start := l.pos
		for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
			l.advance(1)
		}
		if l.pos == start {
			l.advance(1)
			return token{typ: tokenInvalid, lit: string(c), line: line, col: col},
				fmt.Errorf("unexpected character %q at %d:%d", c, line, col)
		}
		return token{typ: tokenIdent, lit: string(l.src[start:l.pos]), line: line, col: col}, nil
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance(1)
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		default:
			return
		}
	}
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
