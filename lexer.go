package jsonsax

import (
	"unicode/utf8"

	"github.com/streamsax/jsonsax/internal/classify"
)

// inProgressKind records which token (if any) a previous Lex call left
// half-finished, so the next call can resume the right scan function
// instead of re-dispatching on the first byte of a new window.
type inProgressKind byte

const (
	ipNone inProgressKind = iota
	ipString
	ipNumber
	ipKeyword
	ipCommentPending
	ipCommentLine
	ipCommentBlock
	ipCommentBlockStar
)

type numSubState byte

const (
	numNeedFirstDigit numSubState = iota
	numInInt
	numNeedFracDigit
	numInFrac
	numNeedExpSignOrDigit
	numNeedExpDigitAfterSign
	numInExp
)

type stringSubState byte

const (
	strNormal stringSubState = iota
	strEscapeChar
	strUnicodeHex
	strUTF8Cont
)

// Lexer turns a sequence of byte windows into a sequence of token
// descriptors (spec §4.4, component C4). Like gojsonlex's JSONLexer it
// does its own buffering across calls instead of requiring the caller to
// hand it already-aligned tokens; unlike gojsonlex it never owns the
// input itself — every Lex call takes a caller-supplied Window and
// returns payload offsets into either that window (zero-copy, the common
// case) or its own carry buffer (only when a token straddled two Lex
// calls).
type Lexer struct {
	allowComments bool
	validateUTF8  bool

	carry *carryBuffer

	inProgress   inProgressKind
	carryEngaged bool
	tokenStart   int // window-local offset of the current token's first byte; valid only while !carryEngaged
	matchedLen   int // bytes consumed so far for the in-progress token

	stringState      stringSubState
	stringHasEscapes bool
	hexLeft          int
	utf8Remaining    int
	utf8Buf          [4]byte
	utf8BufLen       int

	numSub      numSubState
	numIsDouble bool

	keywordLiteral string
	keywordKind    TokenKind

	debug func(format string, args ...interface{})
}

// NewLexer constructs a Lexer. allowComments enables '//' and '/* */'
// comments (spec §4.4 "Configuration"); validateUTF8 turns on the
// classification-table-driven strict UTF-8 check over string bodies.
func NewLexer(allowComments, validateUTF8 bool) *Lexer {
	return &Lexer{
		allowComments: allowComments,
		validateUTF8:  validateUTF8,
		carry:         newCarryBuffer(),
		inProgress:    ipNone,
	}
}

// SetDebug wires a printf-style hook for buffer-growth diagnostics, the
// same role gojsonlex's SetDebug(true) plays for its own ring buffer.
func (l *Lexer) SetDebug(fn func(format string, args ...interface{})) {
	l.debug = fn
	l.carry.debug = fn
}

// Reset clears all in-progress lexing state and the carry buffer. Called
// by Parser.Reset.
func (l *Lexer) Reset() {
	l.carry.Clear()
	l.inProgress = ipNone
	l.carryEngaged = false
	l.matchedLen = 0
	l.stringState = strNormal
	l.stringHasEscapes = false
	l.numSub = numNeedFirstDigit
	l.numIsDouble = false
}

// TokenBytes resolves a descriptor's payload against the window it was
// produced from.
func (l *Lexer) TokenBytes(w *Window, t TokenDescriptor) []byte {
	return t.payloadFrom(w, l.carry)
}

func isWhitespace(b byte) bool {
	switch b {
	case '\t', '\n', '\v', '\f', '\r', ' ':
		return true
	default:
		return false
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Lex consumes bytes from w and returns exactly one token descriptor,
// except that whitespace and (if enabled) comments are silently skipped
// without producing a descriptor of their own (spec §4.4).
func (l *Lexer) Lex(w *Window) TokenDescriptor {
	switch l.inProgress {
	case ipString:
		return l.scanString(w)
	case ipNumber:
		return l.scanNumber(w)
	case ipKeyword:
		return l.scanKeyword(w)
	case ipCommentPending, ipCommentLine, ipCommentBlock, ipCommentBlockStar:
		desc, done := l.scanComment(w)
		if !done {
			return desc
		}
		if desc.Kind == TokenError {
			return desc
		}
	}
	return l.lexFresh(w)
}

func (l *Lexer) lexFresh(w *Window) TokenDescriptor {
	for {
		b, ok := w.Peek()
		if !ok {
			return TokenDescriptor{Kind: TokenEOF}
		}

		if isWhitespace(b) {
			w.Advance(1)
			continue
		}

		if b == '/' {
			w.Advance(1)
			if !l.allowComments {
				return l.lexErrorToken(LexErrUnallowedComment)
			}
			l.inProgress = ipCommentPending
			desc, done := l.scanComment(w)
			if !done {
				return desc
			}
			if desc.Kind == TokenError {
				return desc
			}
			continue
		}

		switch b {
		case '{':
			w.Advance(1)
			return TokenDescriptor{Kind: TokenObjectOpen}
		case '}':
			w.Advance(1)
			return TokenDescriptor{Kind: TokenObjectClose}
		case '[':
			w.Advance(1)
			return TokenDescriptor{Kind: TokenArrayOpen}
		case ']':
			w.Advance(1)
			return TokenDescriptor{Kind: TokenArrayClose}
		case ',':
			w.Advance(1)
			return TokenDescriptor{Kind: TokenComma}
		case ':':
			w.Advance(1)
			return TokenDescriptor{Kind: TokenColon}
		case '"':
			return l.beginString(w)
		case 't':
			return l.beginKeyword(w, "true", TokenBool)
		case 'f':
			return l.beginKeyword(w, "false", TokenBool)
		case 'n':
			return l.beginKeyword(w, "null", TokenNull)
		case '-':
			return l.beginNumber(w)
		default:
			if isDigit(b) {
				return l.beginNumber(w)
			}
			w.Advance(1)
			return l.lexErrorToken(LexErrInvalidChar)
		}
	}
}

// consume records b as belonging to the in-progress token: it advances
// the window, and if the token has already crossed one chunk boundary
// (carryEngaged), mirrors the byte into the carry buffer so the final
// payload stays contiguous.
func (l *Lexer) consume(w *Window, b byte) {
	w.Advance(1)
	l.matchedLen++
	if l.carryEngaged {
		l.carry.AppendByte(b)
	}
}

// consumeRun is consume's batched counterpart: it records n bytes starting
// at the window's current position in one shot, the fast path scanString
// takes for a run of bytes that classify.ScanMask says need no special
// handling.
func (l *Lexer) consumeRun(w *Window, n int) {
	if n == 0 {
		return
	}
	if l.carryEngaged {
		l.carry.Append(w.Bytes(), w.Position(), n)
	}
	w.Advance(n)
	l.matchedLen += n
}

// eofInProgress is called when a scan function runs out of window bytes
// mid-token. The first time this happens for a given token it copies the
// bytes consumed so far from the window into the carry buffer; from then
// on consume() keeps the carry in sync directly.
func (l *Lexer) eofInProgress(w *Window) TokenDescriptor {
	if !l.carryEngaged {
		l.carry.Clear()
		l.carry.Append(w.Bytes(), l.tokenStart, w.Position()-l.tokenStart)
		l.carryEngaged = true
	}
	return TokenDescriptor{Kind: TokenEOF}
}

func (l *Lexer) finishToken(kind TokenKind) TokenDescriptor {
	var desc TokenDescriptor
	if l.carryEngaged {
		desc = TokenDescriptor{Kind: kind, Source: sourceCarry, Off: 0, Len: l.matchedLen}
	} else {
		desc = TokenDescriptor{Kind: kind, Source: sourceWindow, Off: l.tokenStart, Len: l.matchedLen}
	}
	l.inProgress = ipNone
	return desc
}

func (l *Lexer) lexErrorToken(code LexError) TokenDescriptor {
	l.inProgress = ipNone
	return TokenDescriptor{Kind: TokenError, Err: code}
}

// ---- strings ----

func (l *Lexer) beginString(w *Window) TokenDescriptor {
	l.inProgress = ipString
	l.stringState = strNormal
	l.stringHasEscapes = false
	l.matchedLen = 0
	l.carryEngaged = false
	l.tokenStart = w.Position()

	b, _ := w.Peek() // guaranteed to be '"' by the caller
	l.consume(w, b)
	return l.scanString(w)
}

func (l *Lexer) scanString(w *Window) TokenDescriptor {
	for {
		switch l.stringState {
		case strNormal:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			cls := classify.Table[b]
			mask := classify.ScanMask(l.validateUTF8)
			if cls&mask == 0 {
				// Run of ordinary bytes: scan ahead directly against the
				// window instead of Peek/consume-ing one byte at a time,
				// the payoff classify.Table/ScanMask exist for.
				start := w.Position()
				lim := w.Limit()
				end := start
				for end < lim && classify.Table[w.Bytes()[end]]&mask == 0 {
					end++
				}
				l.consumeRun(w, end-start)
				continue
			}
			switch {
			case b == '"':
				l.consume(w, b)
				kind := TokenString
				if l.stringHasEscapes {
					kind = TokenStringWithEscapes
				}
				payloadLen := l.matchedLen - 2
				var desc TokenDescriptor
				if l.carryEngaged {
					desc = TokenDescriptor{Kind: kind, Source: sourceCarry, Off: 1, Len: payloadLen}
				} else {
					desc = TokenDescriptor{Kind: kind, Source: sourceWindow, Off: l.tokenStart + 1, Len: payloadLen}
				}
				l.inProgress = ipNone
				return desc
			case b == '\\':
				l.consume(w, b)
				l.stringHasEscapes = true
				l.stringState = strEscapeChar
			default:
				if cls&classify.InvalidJSONChar != 0 {
					return l.lexErrorToken(LexErrStringInvalidJSONChar)
				}
				if l.validateUTF8 && cls&classify.NeedsUTF8Check != 0 {
					n := utf8SeqLen(b)
					if n == 0 {
						return l.lexErrorToken(LexErrStringInvalidUTF8)
					}
					l.consume(w, b)
					l.utf8Buf[0] = b
					l.utf8BufLen = 1
					l.utf8Remaining = n - 1
					l.stringState = strUTF8Cont
					continue
				}
				l.consume(w, b)
			}

		case strEscapeChar:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			if b == 'u' {
				l.consume(w, b)
				l.stringState = strUnicodeHex
				l.hexLeft = 4
				continue
			}
			if classify.Table[b]&classify.ValidEscapeChar == 0 {
				return l.lexErrorToken(LexErrStringInvalidEscapedChar)
			}
			l.consume(w, b)
			l.stringState = strNormal

		case strUnicodeHex:
			for l.hexLeft > 0 {
				b, ok := w.Peek()
				if !ok {
					return l.eofInProgress(w)
				}
				if classify.Table[b]&classify.ValidHexChar == 0 {
					return l.lexErrorToken(LexErrStringInvalidHexChar)
				}
				l.consume(w, b)
				l.hexLeft--
			}
			l.stringState = strNormal

		case strUTF8Cont:
			for l.utf8Remaining > 0 {
				b, ok := w.Peek()
				if !ok {
					return l.eofInProgress(w)
				}
				if b < 0x80 || b > 0xBF {
					return l.lexErrorToken(LexErrStringInvalidUTF8)
				}
				l.consume(w, b)
				l.utf8Buf[l.utf8BufLen] = b
				l.utf8BufLen++
				l.utf8Remaining--
			}
			r, size := utf8.DecodeRune(l.utf8Buf[:l.utf8BufLen])
			if r == utf8.RuneError && size <= 1 {
				return l.lexErrorToken(LexErrStringInvalidUTF8)
			}
			l.stringState = strNormal
		}
	}
}

// utf8SeqLen returns the total byte length (lead + continuations) of the
// UTF-8 sequence starting with lead, or 0 if lead cannot start a
// well-formed sequence (RFC 3629).
func utf8SeqLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		if lead < 0xC2 {
			return 0
		}
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		if lead > 0xF4 {
			return 0
		}
		return 4
	default:
		return 0
	}
}

// ---- numbers ----

func (l *Lexer) beginNumber(w *Window) TokenDescriptor {
	l.inProgress = ipNumber
	l.numSub = numNeedFirstDigit
	l.numIsDouble = false
	l.matchedLen = 0
	l.carryEngaged = false
	l.tokenStart = w.Position()
	return l.scanNumber(w)
}

func (l *Lexer) scanNumber(w *Window) TokenDescriptor {
	for {
		switch l.numSub {
		case numNeedFirstDigit:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			if b == '-' && l.matchedLen == 0 {
				l.consume(w, b)
				continue
			}
			if isDigit(b) {
				l.consume(w, b)
				l.numSub = numInInt
				continue
			}
			return l.lexErrorToken(LexErrMissingIntegerAfterMinus)

		case numInInt:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			switch {
			case isDigit(b):
				l.consume(w, b)
			case b == '.':
				l.consume(w, b)
				l.numIsDouble = true
				l.numSub = numNeedFracDigit
			case b == 'e' || b == 'E':
				l.consume(w, b)
				l.numIsDouble = true
				l.numSub = numNeedExpSignOrDigit
			default:
				return l.finishToken(l.numKind())
			}

		case numNeedFracDigit:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			if isDigit(b) {
				l.consume(w, b)
				l.numSub = numInFrac
				continue
			}
			return l.lexErrorToken(LexErrMissingIntegerAfterDecimal)

		case numInFrac:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			switch {
			case isDigit(b):
				l.consume(w, b)
			case b == 'e' || b == 'E':
				l.consume(w, b)
				l.numIsDouble = true
				l.numSub = numNeedExpSignOrDigit
			default:
				return l.finishToken(l.numKind())
			}

		case numNeedExpSignOrDigit:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			switch {
			case b == '+' || b == '-':
				l.consume(w, b)
				l.numSub = numNeedExpDigitAfterSign
			case isDigit(b):
				l.consume(w, b)
				l.numSub = numInExp
			default:
				return l.lexErrorToken(LexErrMissingIntegerAfterExponent)
			}

		case numNeedExpDigitAfterSign:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			if isDigit(b) {
				l.consume(w, b)
				l.numSub = numInExp
				continue
			}
			return l.lexErrorToken(LexErrMissingIntegerAfterExponent)

		case numInExp:
			b, ok := w.Peek()
			if !ok {
				return l.eofInProgress(w)
			}
			if isDigit(b) {
				l.consume(w, b)
				continue
			}
			return l.finishToken(l.numKind())
		}
	}
}

func (l *Lexer) numKind() TokenKind {
	if l.numIsDouble {
		return TokenDouble
	}
	return TokenInteger
}

// ---- keywords (true / false / null) ----

func (l *Lexer) beginKeyword(w *Window, literal string, kind TokenKind) TokenDescriptor {
	l.inProgress = ipKeyword
	l.keywordLiteral = literal
	l.keywordKind = kind
	l.matchedLen = 0
	l.carryEngaged = false
	l.tokenStart = w.Position()
	return l.scanKeyword(w)
}

func (l *Lexer) scanKeyword(w *Window) TokenDescriptor {
	for l.matchedLen < len(l.keywordLiteral) {
		b, ok := w.Peek()
		if !ok {
			return l.eofInProgress(w)
		}
		if b != l.keywordLiteral[l.matchedLen] {
			return l.lexErrorToken(LexErrInvalidString)
		}
		l.consume(w, b)
	}
	return l.finishToken(l.keywordKind)
}

// ---- comments ----

// scanComment skips a '//' or '/* */' comment, returning done=true once
// the comment has been fully consumed (desc is only meaningful then, and
// only if it's a TokenError for a malformed comment opener) or done=false
// if the window ran out first (desc is always TokenEOF in that case).
func (l *Lexer) scanComment(w *Window) (TokenDescriptor, bool) {
	for {
		switch l.inProgress {
		case ipCommentPending:
			b, ok := w.Peek()
			if !ok {
				return TokenDescriptor{Kind: TokenEOF}, false
			}
			switch b {
			case '*':
				w.Advance(1)
				l.inProgress = ipCommentBlock
			case '/':
				w.Advance(1)
				l.inProgress = ipCommentLine
			default:
				l.inProgress = ipNone
				return l.lexErrorToken(LexErrInvalidChar), true
			}

		case ipCommentLine:
			b, ok := w.Peek()
			if !ok {
				return TokenDescriptor{Kind: TokenEOF}, false
			}
			w.Advance(1)
			if b == '\n' {
				l.inProgress = ipNone
				return TokenDescriptor{}, true
			}

		case ipCommentBlock:
			b, ok := w.Peek()
			if !ok {
				return TokenDescriptor{Kind: TokenEOF}, false
			}
			w.Advance(1)
			if b == '*' {
				l.inProgress = ipCommentBlockStar
			}

		case ipCommentBlockStar:
			b, ok := w.Peek()
			if !ok {
				return TokenDescriptor{Kind: TokenEOF}, false
			}
			w.Advance(1)
			switch b {
			case '/':
				l.inProgress = ipNone
				return TokenDescriptor{}, true
			case '*':
				// stay put: handles runs like "**/"
			default:
				l.inProgress = ipCommentBlock
			}
		}
	}
}
