package lexer

import (
	"fmt"
	"unicode"

	"covenant/internal/token"
)

type Lexer struct {
	input []rune

	pos int

	ch   rune
	eof  bool
	line int
	col  int

	errors []string
}

func New(input string) *Lexer {
	l := &Lexer{
		input: []rune(input),
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors collected so far.
func (l *Lexer) Errors() []string {
	return l.errors
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := token.Position{
		Line:   l.line,
		Column: l.col,
	}

	ch := l.ch

	if l.eof {
		return token.Token{Kind: token.EOF, Lexeme: "", Pos: pos}
	}

	switch {
	case ch == '(':
		l.readChar()
		return token.Token{Kind: token.LParen, Lexeme: "(", Pos: pos}
	case ch == ')':
		l.readChar()
		return token.Token{Kind: token.RParen, Lexeme: ")", Pos: pos}
	case ch == '"':
		l.readChar() // consume opening quote
		lit, ok := l.readString()
		if !ok {
			l.errorf(pos, "unterminated string literal")
			return token.Token{Kind: token.Illegal, Lexeme: lit, Pos: pos}
		}
		return token.Token{Kind: token.String, Lexeme: lit, Pos: pos}
	case ch == '\'':
		l.readChar() // consume quote
		if !isSymbolChar(l.ch) {
			l.errorf(pos, "expected constant name after '")
			return token.Token{Kind: token.Illegal, Lexeme: "'", Pos: pos}
		}
		return token.Token{Kind: token.Quote, Lexeme: l.readSymbol(), Pos: pos}
	case ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X'):
		l.readChar() // '0'
		l.readChar() // 'x'
		lit := l.readSymbol()
		if !isHex(lit) {
			l.errorf(pos, "malformed hex literal 0x%s", lit)
			return token.Token{Kind: token.Illegal, Lexeme: lit, Pos: pos}
		}
		return token.Token{Kind: token.Hex, Lexeme: lit, Pos: pos}
	case isDigit(ch) || (ch == '-' && isDigit(l.peekChar())):
		lit := l.readSymbol()
		if !isInteger(lit) {
			l.errorf(pos, "malformed integer literal %s", lit)
			return token.Token{Kind: token.Illegal, Lexeme: lit, Pos: pos}
		}
		return token.Token{Kind: token.Int, Lexeme: lit, Pos: pos}
	case isSymbolChar(ch):
		return token.Token{Kind: token.Ident, Lexeme: l.readSymbol(), Pos: pos}
	}

	l.readChar()
	l.errorf(pos, "unexpected character %q", ch)
	return token.Token{Kind: token.Illegal, Lexeme: string(ch), Pos: pos}
}

// Helpers

func (l *Lexer) errorf(pos token.Position, format string, args ...interface{}) {
	msg := fmt.Sprintf("%d:%d: ", pos.Line, pos.Column) + fmt.Sprintf(format, args...)
	l.errors = append(l.errors, msg)
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		l.eof = true
		return
	}

	l.ch = l.input[l.pos]
	l.pos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}

		// ';' comments run to the end of the line
		if l.ch == ';' {
			for l.ch != '\n' && !l.eof {
				l.readChar()
			}
			continue
		}

		break
	}
}

func (l *Lexer) readSymbol() string {
	start := l.pos - 1 // current rune is already in l.ch
	for isSymbolChar(l.ch) {
		l.readChar()
	}
	end := l.pos - 1
	if l.eof {
		end = l.pos
	}
	return string(l.input[start:end])
}

func (l *Lexer) readString() (string, bool) {
	var sb []rune
	for {
		if l.eof {
			return string(sb), false
		}
		switch l.ch {
		case '"':
			l.readChar() // consume closing quote
			return string(sb), true
		case '\\':
			l.readChar()
			if l.eof {
				return string(sb), false
			}
			switch l.ch {
			case 'n':
				sb = append(sb, '\n')
			case 't':
				sb = append(sb, '\t')
			case '\\', '"':
				sb = append(sb, l.ch)
			default:
				sb = append(sb, '\\', l.ch)
			}
			l.readChar()
		default:
			sb = append(sb, l.ch)
			l.readChar()
		}
	}
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isSymbolChar(ch rune) bool {
	if ch == 0 || unicode.IsSpace(ch) {
		return false
	}
	switch ch {
	case '(', ')', '"', '\'', ';':
		return false
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || unicode.IsPunct(ch) || unicode.IsSymbol(ch)
}

func isInteger(lit string) bool {
	if lit == "" {
		return false
	}
	start := 0
	if lit[0] == '-' {
		start = 1
	}
	if start == len(lit) {
		return false
	}
	for _, r := range lit[start:] {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func isHex(lit string) bool {
	if lit == "" || len(lit)%2 != 0 {
		return false
	}
	for _, r := range lit {
		if !isDigit(r) && !('a' <= r && r <= 'f') && !('A' <= r && r <= 'F') {
			return false
		}
	}
	return true
}
