package jsonsax

// TopLevelStrategy controls what Parser.Finish accepts as a complete
// top-level document (spec §4.6 "Top-level strategies").
type TopLevelStrategy byte

const (
	// SingleObject requires exactly one top-level value, optionally
	// followed only by whitespace.
	SingleObject TopLevelStrategy = iota
	// AllowTrailingGarbage accepts one top-level value followed by
	// anything at all, which is never lexed.
	AllowTrailingGarbage
	// AllowMultipleValues accepts a stream of whitespace-separated
	// top-level values, e.g. newline-delimited JSON.
	AllowMultipleValues
)

// Handlers is the full set of callbacks a Parser can invoke. Every field
// is optional; a Parser only dispatches to the ones that are set (spec
// §4.6 "Callback dispatch"). Any handler may return an error to cancel
// parsing (spec §7, HandlerCancel/HandlerException).
type Handlers struct {
	StartObject func() error
	EndObject   func() error
	StartArray  func() error
	EndArray    func() error
	Key         func(BorrowedString) error
	String      func(BorrowedString) error
	Bool        func(bool) error
	Null        func() error
	Integer     func(int64) error
	Double      func(float64) error

	// RawNumber receives the verbatim number text instead of a parsed
	// value. Mutually exclusive with Integer/Double (spec §5 "Raw number
	// handler").
	RawNumber func(BorrowedString) error
}

// Builder assembles a Parser's handler set and configuration. It mirrors
// gojsonlex's constructor-option style, but since jsonsax's handler set
// is much larger than gojsonlex's single Token() loop, it is exposed as a
// set of plain non-chainable setters rather than functional options — the
// same shape gojsonlex's JSONLexer itself uses for SetDebug/SetMaxDepth.
type Builder struct {
	handlers Handlers

	allowComments          bool
	validateUTF8           bool
	maxDepth               int
	topLevelStrategy       TopLevelStrategy
	eachTokenMustBeHandled bool
	allowPartialValues     bool

	debug func(format string, args ...interface{})
}

// NewBuilder returns a Builder with jsonsax's defaults: comments
// disallowed, UTF-8 validated, unbounded depth, SingleObject top-level
// strategy, and each token required to have a registered handler.
func NewBuilder() *Builder {
	return &Builder{
		validateUTF8:           true,
		topLevelStrategy:       SingleObject,
		eachTokenMustBeHandled: true,
	}
}

func (b *Builder) SetStartObjectHandler(fn func() error)              { b.handlers.StartObject = fn }
func (b *Builder) SetEndObjectHandler(fn func() error)                { b.handlers.EndObject = fn }
func (b *Builder) SetStartArrayHandler(fn func() error)                { b.handlers.StartArray = fn }
func (b *Builder) SetEndArrayHandler(fn func() error)                  { b.handlers.EndArray = fn }
func (b *Builder) SetKeyHandler(fn func(BorrowedString) error)         { b.handlers.Key = fn }
func (b *Builder) SetStringHandler(fn func(BorrowedString) error)      { b.handlers.String = fn }
func (b *Builder) SetBoolHandler(fn func(bool) error)                  { b.handlers.Bool = fn }
func (b *Builder) SetNullHandler(fn func() error)                      { b.handlers.Null = fn }
func (b *Builder) SetIntegerHandler(fn func(int64) error)              { b.handlers.Integer = fn }
func (b *Builder) SetDoubleHandler(fn func(float64) error)             { b.handlers.Double = fn }
func (b *Builder) SetRawNumberHandler(fn func(BorrowedString) error)   { b.handlers.RawNumber = fn }

// SetAllowComments enables '//' and '/* */' comments between tokens.
func (b *Builder) SetAllowComments(v bool) { b.allowComments = v }

// SetValidateUTF8 toggles strict UTF-8 validation of string bodies. Off
// by default in most SAX parsers this was grounded on, but jsonsax
// defaults it on (see NewBuilder); callers that need maximum throughput
// over trusted input may turn it off.
func (b *Builder) SetValidateUTF8(v bool) { b.validateUTF8 = v }

// SetMaxDepth bounds container nesting depth. 0 (the default) means
// unbounded. Exceeding it surfaces as a ParseError, the same way
// gojsonlex's own SetMaxDepth bounds its ring buffer growth.
func (b *Builder) SetMaxDepth(n int) { b.maxDepth = n }

// SetTopLevelStrategy selects what Finish accepts as a complete document.
func (b *Builder) SetTopLevelStrategy(s TopLevelStrategy) { b.topLevelStrategy = s }

// SetEachTokenMustBeHandled makes it a ConfigurationError for a token to
// arrive with no matching handler set, instead of silently dropping it.
func (b *Builder) SetEachTokenMustBeHandled(v bool) { b.eachTokenMustBeHandled = v }

// SetAllowPartialValues lets Finish succeed when input ends inside an
// object or array that was never closed — mostly useful for best-effort
// tooling over truncated logs. Finish still fails when no top-level value
// was started, or when a top-level scalar is cut off before it completes.
func (b *Builder) SetAllowPartialValues(v bool) { b.allowPartialValues = v }

// SetDebug wires a printf-style diagnostic hook through to the lexer and
// state stack, the same role gojsonlex's SetDebug(true) plays.
func (b *Builder) SetDebug(fn func(format string, args ...interface{})) { b.debug = fn }

// Build validates the handler set and returns a ready-to-use Parser.
func (b *Builder) Build() (*Parser, error) {
	if b.handlers.RawNumber != nil && (b.handlers.Integer != nil || b.handlers.Double != nil) {
		return nil, &ConfigurationError{Msg: "raw number handler cannot be combined with integer/double handlers"}
	}

	h := b.handlers
	noHandlers := h.StartObject == nil && h.EndObject == nil && h.StartArray == nil &&
		h.EndArray == nil && h.Key == nil && h.String == nil && h.Bool == nil &&
		h.Null == nil && h.Integer == nil && h.Double == nil && h.RawNumber == nil
	if noHandlers {
		return nil, &ConfigurationError{Msg: "no handlers registered"}
	}

	lex := NewLexer(b.allowComments, b.validateUTF8)
	stack := newStateStack()
	if b.maxDepth > 0 {
		stack.maxSize = b.maxDepth
	}
	if b.debug != nil {
		lex.SetDebug(b.debug)
		stack.debug = b.debug
	}

	return &Parser{
		handlers:               h,
		lexer:                  lex,
		stack:                  stack,
		topLevelStrategy:       b.topLevelStrategy,
		eachTokenMustBeHandled: b.eachTokenMustBeHandled,
		allowPartialValues:     b.allowPartialValues,
	}, nil
}
