package lexer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/solisoft/soli-lang-sub002/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int

	// interpDepths tracks open string interpolations. Each entry is the
	// paren nesting depth inside one `\(...)` segment; a `)` at depth 0
	// closes the segment and resumes string scanning.
	interpDepths []int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	pos2 := l.readPosition + w
	if pos2 >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos2:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, l.ch, l.line, l.column)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.EQ, "==")
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = l.twoCharToken(token.FAT_ARROW, "=>")
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.PLUS_ASSIGN, "+=")
		} else {
			tok = newToken(token.PLUS, l.ch, l.line, l.column)
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok = l.twoCharToken(token.ARROW, "->")
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.MINUS_ASSIGN, "-=")
		} else {
			tok = newToken(token.MINUS, l.ch, l.line, l.column)
		}
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.ASTERISK_ASSIGN, "*=")
		} else {
			tok = newToken(token.ASTERISK, l.ch, l.line, l.column)
		}
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.SLASH_ASSIGN, "/=")
		} else {
			tok = newToken(token.SLASH, l.ch, l.line, l.column)
		}
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.line, l.column)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.NOT_EQ, "!=")
		} else {
			tok = newToken(token.BANG, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.LTE, "<=")
		} else {
			tok = newToken(token.LT, l.ch, l.line, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.twoCharToken(token.GTE, ">=")
		} else {
			tok = newToken(token.GT, l.ch, l.line, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = l.twoCharToken(token.AND, "&&")
		} else if l.peekChar() == '.' {
			l.readChar()
			tok = l.twoCharToken(token.SAFE_DOT, "&.")
		} else {
			tok = newToken(token.AMP, l.ch, l.line, l.column)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = l.twoCharToken(token.OR, "||")
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = l.twoCharToken(token.PIPE_GT, "|>")
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
		}
	case '?':
		if l.peekChar() == '?' {
			l.readChar()
			tok = l.twoCharToken(token.NULL_COALESCE, "??")
		} else {
			tok = newToken(token.QUESTION, l.ch, l.line, l.column)
		}
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			tok = l.twoCharToken(token.COLON_COLON, "::")
		} else {
			tok = newToken(token.COLON, l.ch, l.line, l.column)
		}
	case '.':
		if l.peekChar() == '.' && l.peekChar2() == '.' {
			l.readChar()
			l.readChar()
			tok = token.Token{Type: token.ELLIPSIS, Lexeme: "...", Literal: "...", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.DOT, l.ch, l.line, l.column)
		}
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case '(':
		if len(l.interpDepths) > 0 {
			l.interpDepths[len(l.interpDepths)-1]++
		}
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		if n := len(l.interpDepths); n > 0 {
			if l.interpDepths[n-1] == 0 {
				// Closes the current `\(...)` segment: resume scanning
				// the surrounding string.
				l.interpDepths = l.interpDepths[:n-1]
				return l.resumeString()
			}
			l.interpDepths[n-1]--
		}
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		if l.peekChar() == '[' {
			return l.readRawString()
		}
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case '"':
		return l.readString(true)
	case 0:
		tok.Lexeme = ""
		tok.Type = token.EOF
		tok.Line = l.line
		tok.Column = l.column
	default:
		if isLetter(l.ch) {
			startLine, startCol := l.line, l.column
			lexeme := l.readIdentifier()
			tok.Type = token.LookupIdent(lexeme)
			tok.Lexeme = lexeme
			tok.Literal = lexeme
			tok.Line = startLine
			tok.Column = startCol
			return tok
		} else if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
	}

	l.readChar()
	return tok
}

// readString scans a double-quoted string starting at the opening quote.
// Plain strings come back as one STRING token. A `\(` escape splits the
// string: the chunk scanned so far becomes ISTRING_START (or ISTRING_MID on
// resume) and the lexer switches back to normal tokenization for the
// embedded expression.
func (l *Lexer) readString(opening bool) token.Token {
	startLine, startCol := l.line, l.column
	var sb strings.Builder

	for {
		l.readChar()
		if l.ch == 0 {
			return token.Token{
				Type:    token.ILLEGAL,
				Lexeme:  sb.String(),
				Literal: "unterminated string literal",
				Line:    startLine,
				Column:  startCol,
			}
		}
		if l.ch == '"' {
			l.readChar() // consume closing quote
			typ := token.TokenType(token.STRING)
			if !opening {
				typ = token.ISTRING_END
			}
			content := sb.String()
			return token.Token{Type: typ, Lexeme: fmt.Sprintf("%q", content), Literal: content, Line: startLine, Column: startCol}
		}
		if l.ch == '\\' {
			next := l.peekChar()
			if next == '(' {
				l.readChar() // now at '('
				l.readChar() // past '(' so expression lexing starts cleanly
				l.interpDepths = append(l.interpDepths, 0)
				typ := token.TokenType(token.ISTRING_START)
				if !opening {
					typ = token.ISTRING_MID
				}
				content := sb.String()
				return token.Token{Type: typ, Lexeme: fmt.Sprintf("%q", content), Literal: content, Line: startLine, Column: startCol}
			}
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case 0:
				return token.Token{
					Type:    token.ILLEGAL,
					Lexeme:  sb.String(),
					Literal: "unterminated string literal",
					Line:    startLine,
					Column:  startCol,
				}
			default:
				// Unknown escape: keep both characters.
				sb.WriteByte('\\')
				sb.WriteRune(l.ch)
			}
			continue
		}
		sb.WriteRune(l.ch)
	}
}

// resumeString continues string scanning after the `)` that closed an
// interpolation segment. The current char is that `)`.
func (l *Lexer) resumeString() token.Token {
	return l.readString(false)
}

// readRawString scans a [[ ... ]] raw string. No escape processing; content
// (including newlines and backslashes) is taken verbatim.
func (l *Lexer) readRawString() token.Token {
	startLine, startCol := l.line, l.column
	l.readChar() // second '['
	l.readChar() // first content char
	start := l.position
	for {
		if l.ch == 0 {
			return token.Token{
				Type:    token.ILLEGAL,
				Lexeme:  l.input[start:l.position],
				Literal: "unterminated raw string literal",
				Line:    startLine,
				Column:  startCol,
			}
		}
		if l.ch == ']' && l.peekChar() == ']' {
			break
		}
		l.readChar()
	}
	content := l.input[start:l.position]
	l.readChar() // second ']'
	l.readChar() // past the delimiter
	return token.Token{Type: token.RAW_STRING, Lexeme: "[[" + content + "]]", Literal: content, Line: startLine, Column: startCol}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	base := 10
	isFloat := false

	if l.ch == '0' {
		peek := l.peekChar()
		if peek == 'x' || peek == 'X' {
			l.readChar()
			l.readChar()
			base = 16
		} else if peek == 'b' || peek == 'B' {
			l.readChar()
			l.readChar()
			base = 2
		} else if peek == 'o' || peek == 'O' {
			l.readChar()
			l.readChar()
			base = 8
		}
	}

	for {
		if base == 16 {
			if !isHexDigit(l.ch) {
				break
			}
		} else if !isDigit(l.ch) {
			break
		}
		l.readChar()
	}

	if base == 10 && l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	isDecimal := false
	if l.ch == 'D' {
		isDecimal = true
		l.readChar()
	}

	lexeme := l.input[position:l.position]

	if isDecimal {
		if base != 10 {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "decimal literal must be base 10", Line: startLine, Column: startCol}
		}
		text := lexeme[:len(lexeme)-1] // strip 'D'
		val := new(big.Rat)
		if _, ok := val.SetString(text); !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "invalid decimal literal", Line: startLine, Column: startCol}
		}
		return token.Token{Type: token.DECIMAL, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
	}

	if isFloat {
		val, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Line: startLine, Column: startCol}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
	}

	val, err := strconv.ParseInt(lexeme, 0, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "integer literal out of 64-bit range", Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '/' {
			if l.peekChar() == '/' {
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
				continue
			} else if l.peekChar() == '*' {
				l.readChar()
				l.readChar()
				for l.ch != 0 {
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar()
						l.readChar()
						break
					}
					l.readChar()
				}
				continue
			}
		}
		break
	}
}

func (l *Lexer) twoCharToken(typ token.TokenType, lexeme string) token.Token {
	tok := token.Token{Type: typ, Lexeme: lexeme, Literal: lexeme, Line: l.line, Column: l.column}
	return tok
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
