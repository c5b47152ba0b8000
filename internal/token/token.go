package token

type TokenType string

// Token is a single lexical unit. Literal holds the decoded value for
// literal tokens (int64, float64, *big.Rat, string); for everything else it
// mirrors Lexeme.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers and literals
	IDENT      = "IDENT"
	INT        = "INT"
	FLOAT      = "FLOAT"
	DECIMAL    = "DECIMAL" // D-suffixed exact decimal: 1.50D
	STRING     = "STRING"
	RAW_STRING = "RAW_STRING" // [[ ... ]]

	// Interpolated string segments. "a\(x)-\(y)b" lexes to
	// ISTRING_START("a") <x tokens> ISTRING_MID("-") <y tokens> ISTRING_END("b")
	ISTRING_START = "ISTRING_START"
	ISTRING_MID   = "ISTRING_MID"
	ISTRING_END   = "ISTRING_END"

	// Operators
	ASSIGN          = "="
	PLUS            = "+"
	MINUS           = "-"
	ASTERISK        = "*"
	SLASH           = "/"
	PERCENT         = "%"
	BANG            = "!"
	PLUS_ASSIGN     = "+="
	MINUS_ASSIGN    = "-="
	ASTERISK_ASSIGN = "*="
	SLASH_ASSIGN    = "/="

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	GT     = ">"
	LTE    = "<="
	GTE    = ">="

	AND           = "&&"
	OR            = "||"
	NULL_COALESCE = "??"
	QUESTION      = "?"
	PIPE_GT       = "|>"
	SAFE_DOT      = "&."
	ELLIPSIS      = "..."
	ARROW         = "->"
	FAT_ARROW     = "=>"
	COLON_COLON   = "::"

	// Punctuation
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"
	DOT       = "."
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"
	AMP       = "&"

	// Keywords
	LET       = "LET"
	CONST     = "CONST"
	FN        = "FN"
	CLASS     = "CLASS"
	EXTENDS   = "EXTENDS"
	IMPLEMENTS = "IMPLEMENTS"
	NEW       = "NEW"
	STATIC    = "STATIC"
	PRIVATE   = "PRIVATE"
	PROTECTED = "PROTECTED"
	IF        = "IF"
	ELSE      = "ELSE"
	UNLESS    = "UNLESS"
	WHILE     = "WHILE"
	FOR       = "FOR"
	IN        = "IN"
	MATCH     = "MATCH"
	TRY       = "TRY"
	CATCH     = "CATCH"
	FINALLY   = "FINALLY"
	THROW     = "THROW"
	RETURN    = "RETURN"
	BREAK     = "BREAK"
	CONTINUE  = "CONTINUE"
	TRUE      = "TRUE"
	FALSE     = "FALSE"
	NULL      = "NULL"
	THIS      = "THIS"
	SUPER     = "SUPER"
	UNDERSCORE = "UNDERSCORE"
)

var keywords = map[string]TokenType{
	"let":        LET,
	"const":      CONST,
	"fn":         FN,
	"class":      CLASS,
	"extends":    EXTENDS,
	"implements": IMPLEMENTS,
	"new":        NEW,
	"static":     STATIC,
	"private":    PRIVATE,
	"protected":  PROTECTED,
	"if":         IF,
	"else":       ELSE,
	"unless":     UNLESS,
	"while":      WHILE,
	"for":        FOR,
	"in":         IN,
	"match":      MATCH,
	"try":        TRY,
	"catch":      CATCH,
	"finally":    FINALLY,
	"throw":      THROW,
	"return":     RETURN,
	"break":      BREAK,
	"continue":   CONTINUE,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
	"this":       THIS,
	"super":      SUPER,
	"_":          UNDERSCORE,
}

// LookupIdent maps an identifier lexeme to its keyword token type, or IDENT.
// The keyword set is closed; matching is exact.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
