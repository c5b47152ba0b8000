package lexer

import (
	"math/big"
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/token"
)

func TestNextTokenOperators(t *testing.T) {
	input := `= == => + - -> * / % ! != < <= > >= && || ?? ? |> &. ... :: : . , ; ( ) { } [ ] += -= *= /=`

	expected := []token.TokenType{
		token.ASSIGN, token.EQ, token.FAT_ARROW,
		token.PLUS, token.MINUS, token.ARROW,
		token.ASTERISK, token.SLASH, token.PERCENT,
		token.BANG, token.NOT_EQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.AND, token.OR, token.NULL_COALESCE, token.QUESTION,
		token.PIPE_GT, token.SAFE_DOT, token.ELLIPSIS,
		token.COLON_COLON, token.COLON, token.DOT,
		token.COMMA, token.SEMICOLON,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.ASTERISK_ASSIGN, token.SLASH_ASSIGN,
		token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tokens[%d]: expected %q, got %q (%q)", i, want, tok.Type, tok.Lexeme)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "let const fn class extends new static private protected if else unless while for in match try catch finally throw return break continue true false null this super _ foobar"

	expected := []token.TokenType{
		token.LET, token.CONST, token.FN, token.CLASS, token.EXTENDS, token.NEW,
		token.STATIC, token.PRIVATE, token.PROTECTED,
		token.IF, token.ELSE, token.UNLESS, token.WHILE, token.FOR, token.IN,
		token.MATCH, token.TRY, token.CATCH, token.FINALLY, token.THROW,
		token.RETURN, token.BREAK, token.CONTINUE,
		token.TRUE, token.FALSE, token.NULL, token.THIS, token.SUPER,
		token.UNDERSCORE, token.IDENT, token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tokens[%d]: expected %q, got %q (%q)", i, want, tok.Type, tok.Lexeme)
		}
	}
}

func TestNumericLiterals(t *testing.T) {
	tests := []struct {
		input   string
		typ     token.TokenType
		literal interface{}
	}{
		{"5", token.INT, int64(5)},
		{"0xff", token.INT, int64(255)},
		{"0b101", token.INT, int64(5)},
		{"0o17", token.INT, int64(15)},
		{"3.14", token.FLOAT, 3.14},
		{"10D", token.DECIMAL, nil},
		{"1.50D", token.DECIMAL, nil},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.typ {
			t.Fatalf("%q: expected type %q, got %q", tt.input, tt.typ, tok.Type)
		}
		switch want := tt.literal.(type) {
		case int64:
			if got := tok.Literal.(int64); got != want {
				t.Errorf("%q: expected %d, got %d", tt.input, want, got)
			}
		case float64:
			if got := tok.Literal.(float64); got != want {
				t.Errorf("%q: expected %f, got %f", tt.input, want, got)
			}
		}
	}
}

func TestDecimalLiteralExactness(t *testing.T) {
	l := New("1.50D")
	tok := l.NextToken()
	rat, ok := tok.Literal.(*big.Rat)
	if !ok {
		t.Fatalf("expected *big.Rat literal, got %T", tok.Literal)
	}
	want := big.NewRat(3, 2)
	if rat.Cmp(want) != 0 {
		t.Errorf("expected 3/2, got %s", rat.String())
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\t\"c\\"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %q", tok.Type)
	}
	if tok.Literal.(string) != "a\nb\t\"c\\" {
		t.Errorf("bad escape decoding: %q", tok.Literal)
	}
}

func TestStringInterpolationTokens(t *testing.T) {
	input := `"x = \(a + (b)) and \(c)!"`

	expected := []struct {
		typ     token.TokenType
		literal string
	}{
		{token.ISTRING_START, "x = "},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.LPAREN, "("},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.ISTRING_MID, " and "},
		{token.IDENT, "c"},
		{token.ISTRING_END, "!"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ {
			t.Fatalf("tokens[%d]: expected %q, got %q (%q)", i, want.typ, tok.Type, tok.Lexeme)
		}
		if want.typ == token.ISTRING_START || want.typ == token.ISTRING_MID || want.typ == token.ISTRING_END {
			if tok.Literal.(string) != want.literal {
				t.Errorf("tokens[%d]: expected chunk %q, got %q", i, want.literal, tok.Literal)
			}
		}
	}
}

func TestRawString(t *testing.T) {
	input := "[[line1\nline2 \\n not an escape]]"
	l := New(input)
	tok := l.NextToken()
	if tok.Type != token.RAW_STRING {
		t.Fatalf("expected RAW_STRING, got %q", tok.Type)
	}
	if tok.Literal.(string) != "line1\nline2 \\n not an escape" {
		t.Errorf("raw string content mangled: %q", tok.Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
	if tok.Literal.(string) != "unterminated string literal" {
		t.Errorf("unexpected message: %v", tok.Literal)
	}
}

func TestNewlineTokens(t *testing.T) {
	l := New("a\nb")
	if tok := l.NextToken(); tok.Type != token.IDENT {
		t.Fatalf("expected IDENT, got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != token.NEWLINE {
		t.Fatalf("expected NEWLINE, got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != token.IDENT {
		t.Fatalf("expected IDENT, got %q", tok.Type)
	}
}

func TestComments(t *testing.T) {
	l := New("a // comment\nb /* block\ncomment */ c")
	var types []token.TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	// Block comments swallow their newlines; line comments leave the
	// trailing newline for statement termination.
	want := []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT, token.IDENT, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(types), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("tokens[%d]: expected %q, got %q", i, want[i], types[i])
		}
	}
}

func TestLineTracking(t *testing.T) {
	l := New("a\nbb\n  c")
	a := l.NextToken()
	l.NextToken() // newline
	b := l.NextToken()
	l.NextToken() // newline
	c := l.NextToken()
	if a.Line != 1 || b.Line != 2 || c.Line != 3 {
		t.Errorf("line tracking wrong: a=%d b=%d c=%d", a.Line, b.Line, c.Line)
	}
	if c.Column != 3 {
		t.Errorf("column tracking wrong: c=%d", c.Column)
	}
}
