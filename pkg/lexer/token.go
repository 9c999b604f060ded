package lexer

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenUnknown

	// Literals
	TokenIdentifier // fib, foo, x
	TokenNumber     // 42, 1.5

	// Keywords
	TokenDef    // def
	TokenExtern // extern

	// Operators
	TokenLt    // <
	TokenGt    // >
	TokenPlus  // +
	TokenMinus // -
	TokenStar  // *
	TokenSlash // /

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenSemicolon // ;
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenUnknown:    "UNKNOWN",
	TokenIdentifier: "IDENT",
	TokenNumber:     "NUMBER",
	TokenDef:        "def",
	TokenExtern:     "extern",
	TokenLt:         "<",
	TokenGt:         ">",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenComma:      ",",
	TokenSemicolon:  ";",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token. Literal holds the source text of the
// token; Value is meaningful only for TokenNumber.
type Token struct {
	Type    TokenType
	Literal string
	Value   float64
	Line    int
	Column  int
}

// keywords maps keyword strings to token types
var keywords = map[string]TokenType{
	"def":    TokenDef,
	"extern": TokenExtern,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}
