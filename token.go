package jsonsax

// TokenKind identifies what the lexer found.
type TokenKind byte

const (
	TokenNone TokenKind = iota
	TokenObjectOpen
	TokenObjectClose
	TokenArrayOpen
	TokenArrayClose
	TokenComma
	TokenColon
	TokenBool
	TokenNull
	TokenInteger
	TokenDouble
	TokenString
	TokenStringWithEscapes
	TokenEOF
	TokenError
)

func (k TokenKind) String() string {
	switch k {
	case TokenObjectOpen:
		return "ObjectOpen"
	case TokenObjectClose:
		return "ObjectClose"
	case TokenArrayOpen:
		return "ArrayOpen"
	case TokenArrayClose:
		return "ArrayClose"
	case TokenComma:
		return "Comma"
	case TokenColon:
		return "Colon"
	case TokenBool:
		return "Bool"
	case TokenNull:
		return "Null"
	case TokenInteger:
		return "Integer"
	case TokenDouble:
		return "Double"
	case TokenString:
		return "String"
	case TokenStringWithEscapes:
		return "StringWithEscapes"
	case TokenEOF:
		return "Eof"
	case TokenError:
		return "Error"
	default:
		return "None"
	}
}

// tokenSource tells a token descriptor which buffer its payload bytes
// live in, so the parser/unescaper know whether they're looking at a
// caller-owned window (zero-copy) or the lexer's own carry buffer.
type tokenSource byte

const (
	sourceNone tokenSource = iota
	sourceWindow
	sourceCarry
)

// TokenDescriptor is what Lexer.Lex returns for every call. For token
// kinds carrying a payload (String/StringWithEscapes/Integer/Double, and
// the keyword text for Bool/Null), Off
// and Len locate the payload bytes within either the window passed to Lex
// or the lexer's internal carry buffer, per Source. The payload excludes
// surrounding quotes for strings.
type TokenDescriptor struct {
	Kind   TokenKind
	Source tokenSource
	Off    int
	Len    int
	Err    LexError
}

func (t TokenDescriptor) payloadFrom(w *Window, c *carryBuffer) []byte {
	switch t.Source {
	case sourceWindow:
		return w.Slice(t.Off, t.Off+t.Len)
	case sourceCarry:
		return c.Bytes()[t.Off : t.Off+t.Len]
	default:
		return nil
	}
}

// LexError enumerates the lexical error kinds from spec §4.4/§7.
type LexError int

const (
	LexErrNone LexError = iota
	LexErrUnallowedComment
	LexErrInvalidChar
	LexErrInvalidString
	LexErrStringInvalidHexChar
	LexErrStringInvalidEscapedChar
	LexErrStringInvalidJSONChar
	LexErrStringInvalidUTF8
	LexErrMissingIntegerAfterMinus
	LexErrMissingIntegerAfterDecimal
	LexErrMissingIntegerAfterExponent
)

func (e LexError) String() string {
	switch e {
	case LexErrUnallowedComment:
		return "UNALLOWED_COMMENT"
	case LexErrInvalidChar:
		return "INVALID_CHAR"
	case LexErrInvalidString:
		return "INVALID_STRING"
	case LexErrStringInvalidHexChar:
		return "STRING_INVALID_HEX_CHAR"
	case LexErrStringInvalidEscapedChar:
		return "STRING_INVALID_ESCAPED_CHAR"
	case LexErrStringInvalidJSONChar:
		return "STRING_INVALID_JSON_CHAR"
	case LexErrStringInvalidUTF8:
		return "STRING_INVALID_UTF8"
	case LexErrMissingIntegerAfterMinus:
		return "MISSING_INTEGER_AFTER_MINUS"
	case LexErrMissingIntegerAfterDecimal:
		return "MISSING_INTEGER_AFTER_DECIMAL"
	case LexErrMissingIntegerAfterExponent:
		return "MISSING_INTEGER_AFTER_EXPONENT"
	default:
		return "NONE"
	}
}
