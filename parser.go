package jsonsax

import "strconv"

// Parser drives a Lexer and a state stack to turn a stream of byte
// windows into callback invocations (spec §4.6, component C6). It is
// built by Builder.Build and is not safe for concurrent use.
type Parser struct {
	handlers Handlers

	lexer *Lexer
	stack *stateStack

	topLevelStrategy       TopLevelStrategy
	eachTokenMustBeHandled bool
	allowPartialValues     bool

	unescapeBuf   []byte
	totalConsumed int64
	lastStickyErr error
}

// State reports the parser's current state tag, mostly useful for tests
// and diagnostics.
func (p *Parser) State() StateTag { return p.stack.top() }

// Depth reports the current container nesting depth (1 at the top
// level).
func (p *Parser) Depth() int { return p.stack.depth() }

// Reset clears all parsing state so the Parser can be reused on a fresh
// document, the same role gojsonlex expects callers to manage themselves
// between unrelated inputs.
func (p *Parser) Reset() {
	p.stack.clear()
	p.lexer.Reset()
	p.totalConsumed = 0
	p.lastStickyErr = nil
	p.unescapeBuf = p.unescapeBuf[:0]
}

// Parse feeds w to the parser, driving callbacks until the window is
// exhausted or a sticky condition (lexical/parse error or handler
// cancellation/exception) is reached.
func (p *Parser) Parse(w *Window) error {
	for {
		if p.stack.top() == StateParseComplete && p.topLevelStrategy == AllowTrailingGarbage {
			return nil
		}
		if p.stack.top().sticky() {
			return p.lastStickyErr
		}

		start := w.Position()
		tok := p.lexer.Lex(w)
		p.totalConsumed += int64(w.Position() - start)

		switch tok.Kind {
		case TokenEOF:
			return nil
		case TokenError:
			return p.fail(StateLexicalError, newParseError("lexical error: "+tok.Err.String(), Position(p.totalConsumed)))
		default:
			if err := p.dispatch(w, tok); err != nil {
				return err
			}
		}
	}
}

// Finish signals end of input. It synthetically feeds a single
// whitespace byte so any number token still held in the lexer's carry
// buffer (with no explicit terminator yet seen) gets flushed and
// dispatched — numbers are the one token that needs a following byte to
// end; an unfinished keyword instead fails as a lexical error on that
// byte. It then checks that the parser ended in an
// acceptable state for its configured TopLevelStrategy.
func (p *Parser) Finish() error {
	if err := p.Parse(NewWindow([]byte{' '})); err != nil {
		return err
	}

	switch p.stack.top() {
	case StateParseComplete:
		return nil
	case StateGotValue:
		if p.topLevelStrategy == AllowMultipleValues {
			return nil
		}
		return newParseError("unexpected end of input after top-level value", Position(p.totalConsumed))
	case StateStart:
		return newParseError("unexpected end of input: no value found", Position(p.totalConsumed))
	default:
		if p.allowPartialValues {
			return nil
		}
		return newParseError("unexpected end of input: incomplete value", Position(p.totalConsumed))
	}
}

func (p *Parser) fail(state StateTag, err *ParseError) error {
	p.stack.set(state)
	p.lastStickyErr = err
	return err
}

func (p *Parser) parseError(msg string) error {
	return p.fail(StateParseError, newParseError(msg, Position(p.totalConsumed)))
}

func (p *Parser) maxDepthError(cause error) error {
	return p.fail(StateParseError, newParseError(cause.Error(), Position(p.totalConsumed)))
}

// dispatch routes one token through the grammar state machine (spec §4.6
// state-transition table), which mirrors the shape of yajl's
// yajl_do_parse: a handful of "expecting a value" states share one
// handler, object/array bodies share the key/separator/comma handling.
func (p *Parser) dispatch(w *Window, tok TokenDescriptor) error {
	state := p.stack.top()
	switch state {
	case StateStart, StateGotValue, StateMapNeedVal, StateArrayNeedVal, StateArrayStart:
		return p.expectValue(w, tok, state)
	case StateMapStart:
		return p.expectMapKey(w, tok, true)
	case StateMapNeedKey:
		return p.expectMapKey(w, tok, false)
	case StateMapSep:
		if tok.Kind != TokenColon {
			return p.parseError("expected ':' after object key")
		}
		p.stack.set(StateMapNeedVal)
		return nil
	case StateMapGotVal:
		switch tok.Kind {
		case TokenObjectClose:
			return p.closeContainer(false)
		case TokenComma:
			p.stack.set(StateMapNeedKey)
			return nil
		default:
			return p.parseError("expected ',' or '}'")
		}
	case StateArrayGotVal:
		switch tok.Kind {
		case TokenArrayClose:
			return p.closeContainer(true)
		case TokenComma:
			p.stack.set(StateArrayNeedVal)
			return nil
		default:
			return p.parseError("expected ',' or ']'")
		}
	case StateParseComplete:
		return p.parseError("trailing data after top-level value")
	default:
		return p.parseError("unexpected token")
	}
}

func (p *Parser) expectValue(w *Window, tok TokenDescriptor, state StateTag) error {
	switch tok.Kind {
	case TokenArrayClose:
		if state == StateArrayStart {
			return p.closeContainer(true)
		}
		return p.parseError("unexpected ']'")
	case TokenObjectOpen:
		if err := p.invoke0(p.handlers.StartObject); err != nil {
			return err
		}
		if err := p.stack.push(StateMapStart); err != nil {
			return p.maxDepthError(err)
		}
		return nil
	case TokenArrayOpen:
		if err := p.invoke0(p.handlers.StartArray); err != nil {
			return err
		}
		if err := p.stack.push(StateArrayStart); err != nil {
			return p.maxDepthError(err)
		}
		return nil
	case TokenBool, TokenNull, TokenInteger, TokenDouble, TokenString, TokenStringWithEscapes:
		if err := p.callScalar(w, tok); err != nil {
			return err
		}
		p.afterValue()
		return nil
	default:
		return p.parseError("expected a value")
	}
}

func (p *Parser) expectMapKey(w *Window, tok TokenDescriptor, allowClose bool) error {
	switch tok.Kind {
	case TokenObjectClose:
		if allowClose {
			return p.closeContainer(false)
		}
		return p.parseError("expected a string key")
	case TokenString, TokenStringWithEscapes:
		s, err := p.decodeString(w, tok)
		if err != nil {
			return p.fail(StateLexicalError, newParseError(err.Error(), Position(p.totalConsumed)))
		}
		if err := p.invoke1Str(p.handlers.Key, s); err != nil {
			return err
		}
		p.stack.set(StateMapSep)
		return nil
	default:
		if allowClose {
			return p.parseError("expected a string key or '}'")
		}
		return p.parseError("expected a string key")
	}
}

func (p *Parser) closeContainer(isArray bool) error {
	p.stack.pop()
	var err error
	if isArray {
		err = p.invoke0(p.handlers.EndArray)
	} else {
		err = p.invoke0(p.handlers.EndObject)
	}
	if err != nil {
		return err
	}
	p.afterValue()
	return nil
}

// afterValue is called once a value (scalar or just-closed container) is
// fully formed, and updates the exposed state to whatever the enclosing
// context needs next.
func (p *Parser) afterValue() {
	if p.stack.depth() == 1 {
		if p.topLevelStrategy == AllowMultipleValues {
			p.stack.set(StateGotValue)
		} else {
			p.stack.set(StateParseComplete)
		}
		return
	}
	switch p.stack.top() {
	case StateMapNeedVal:
		p.stack.set(StateMapGotVal)
	case StateArrayNeedVal, StateArrayStart:
		p.stack.set(StateArrayGotVal)
	}
}

func (p *Parser) callScalar(w *Window, tok TokenDescriptor) error {
	switch tok.Kind {
	case TokenBool:
		payload := p.lexer.TokenBytes(w, tok)
		return p.invoke1Bool(p.handlers.Bool, payload[0] == 't')
	case TokenNull:
		return p.invoke0(p.handlers.Null)
	case TokenInteger:
		payload := p.lexer.TokenBytes(w, tok)
		if p.handlers.RawNumber != nil {
			return p.invoke1Str(p.handlers.RawNumber, BorrowedString{s: unsafeStringFromBytes(payload)})
		}
		n, ok := parseJSONInteger(unsafeStringFromBytes(payload))
		if !ok {
			return p.fail(StateParseError, newParseError("integer overflow", Position(p.totalConsumed)))
		}
		return p.invoke1Int64(p.handlers.Integer, n)
	case TokenDouble:
		payload := p.lexer.TokenBytes(w, tok)
		if p.handlers.RawNumber != nil {
			return p.invoke1Str(p.handlers.RawNumber, BorrowedString{s: unsafeStringFromBytes(payload)})
		}
		f, err := strconv.ParseFloat(unsafeStringFromBytes(payload), 64)
		if err != nil {
			return p.fail(StateParseError, newParseError("numeric (floating point) overflow", Position(p.totalConsumed)))
		}
		return p.invoke1Float64(p.handlers.Double, f)
	case TokenString, TokenStringWithEscapes:
		s, err := p.decodeString(w, tok)
		if err != nil {
			return p.fail(StateLexicalError, newParseError(err.Error(), Position(p.totalConsumed)))
		}
		return p.invoke1Str(p.handlers.String, s)
	}
	return nil
}

// minInt64Accumulator is the cutoff threshold for parseJSONInteger's
// negative-domain accumulator: math.MinInt64 / 10, precomputed so the
// overflow check never itself overflows.
const minInt64Accumulator = -1 << 63 / 10

// parseJSONInteger parses a decimal integer literal already validated by
// the lexer (an optional '-' followed by one or more digits) entirely in
// the negative domain, the same trick strconv's own integer parsing uses
// internally: negating a positive accumulator can't represent -2⁶³, since
// +2⁶³ itself overflows int64, so the accumulator counts down from zero
// instead and is only negated at the end for a literal with no leading
// '-' (spec §4.6/§9: "a hand-rolled accumulator that computes in the
// negative domain to avoid representing −MIN before negation"). Returns
// ok=false on overflow past ±2⁶³, never on malformed syntax — the lexer
// guarantees the string already matches the number grammar.
func parseJSONInteger(s string) (int64, bool) {
	neg := false
	i := 0
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	var acc int64
	for ; i < len(s); i++ {
		d := int64(s[i] - '0')
		if acc < minInt64Accumulator {
			return 0, false
		}
		acc *= 10
		if acc < -1<<63+d {
			return 0, false
		}
		acc -= d
	}
	if !neg {
		if acc == -1<<63 {
			return 0, false
		}
		return -acc, true
	}
	return acc, true
}

// decodeString returns a BorrowedString for a string token: a zero-copy
// view when the token had no escapes, or a view into the parser's
// reusable unescape buffer otherwise.
func (p *Parser) decodeString(w *Window, tok TokenDescriptor) (BorrowedString, error) {
	payload := p.lexer.TokenBytes(w, tok)
	if tok.Kind == TokenString {
		return BorrowedString{s: unsafeStringFromBytes(payload)}, nil
	}
	p.unescapeBuf = p.unescapeBuf[:0]
	out, err := unescape(p.unescapeBuf, payload)
	if err != nil {
		return BorrowedString{}, err
	}
	p.unescapeBuf = out
	return BorrowedString{s: unsafeStringFromBytes(out)}, nil
}

// ---- handler invocation helpers ----
//
// Each wraps a single handler call: a nil handler is either a silent
// no-op or, under SetEachTokenMustBeHandled, a ConfigurationError; a
// handler error drives the parser into HandlerCancel or HandlerException
// depending on whether it returned ErrHandlerCancel.

func (p *Parser) invoke0(fn func() error) error {
	if fn == nil {
		return p.missingHandler()
	}
	if err := fn(); err != nil {
		return p.handlerFailed(err)
	}
	return nil
}

func (p *Parser) invoke1Bool(fn func(bool) error, v bool) error {
	if fn == nil {
		return p.missingHandler()
	}
	if err := fn(v); err != nil {
		return p.handlerFailed(err)
	}
	return nil
}

func (p *Parser) invoke1Int64(fn func(int64) error, v int64) error {
	if fn == nil {
		return p.missingHandler()
	}
	if err := fn(v); err != nil {
		return p.handlerFailed(err)
	}
	return nil
}

func (p *Parser) invoke1Float64(fn func(float64) error, v float64) error {
	if fn == nil {
		return p.missingHandler()
	}
	if err := fn(v); err != nil {
		return p.handlerFailed(err)
	}
	return nil
}

func (p *Parser) invoke1Str(fn func(BorrowedString) error, v BorrowedString) error {
	if fn == nil {
		return p.missingHandler()
	}
	if err := fn(v); err != nil {
		return p.handlerFailed(err)
	}
	return nil
}

func (p *Parser) missingHandler() error {
	if p.eachTokenMustBeHandled {
		return &ConfigurationError{Msg: "token has no registered handler"}
	}
	return nil
}

func (p *Parser) handlerFailed(err error) error {
	if err == ErrHandlerCancel {
		return p.fail(StateHandlerCancel, newParseError("handler cancelled parsing", Position(p.totalConsumed)))
	}
	p.stack.set(StateHandlerException)
	wrapped := wrapHandlerError(err, Position(p.totalConsumed))
	p.lastStickyErr = wrapped
	return wrapped
}
