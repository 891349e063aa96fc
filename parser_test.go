package jsonsax

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// eventLog accumulates a textual trace of every callback invocation, so
// tests can assert on call order without hand-rolling a tree.
type eventLog struct {
	events []string
}

func (e *eventLog) add(format string, args ...interface{}) {
	e.events = append(e.events, fmt.Sprintf(format, args...))
}

func newRecordingParser(t *testing.T, configure func(b *Builder)) (*Parser, *eventLog) {
	t.Helper()
	log := &eventLog{}
	b := NewBuilder()
	b.SetStartObjectHandler(func() error { log.add("startObject"); return nil })
	b.SetEndObjectHandler(func() error { log.add("endObject"); return nil })
	b.SetStartArrayHandler(func() error { log.add("startArray"); return nil })
	b.SetEndArrayHandler(func() error { log.add("endArray"); return nil })
	b.SetKeyHandler(func(s BorrowedString) error { log.add("key(%s)", s.String()); return nil })
	b.SetStringHandler(func(s BorrowedString) error { log.add("string(%s)", s.String()); return nil })
	b.SetBoolHandler(func(v bool) error { log.add("bool(%v)", v); return nil })
	b.SetNullHandler(func() error { log.add("null"); return nil })
	b.SetIntegerHandler(func(v int64) error { log.add("integer(%d)", v); return nil })
	b.SetDoubleHandler(func(v float64) error { log.add("double(%v)", v); return nil })
	if configure != nil {
		configure(b)
	}
	p, err := b.Build()
	require.NoError(t, err)
	return p, log
}

// feedChunks calls Parse once per chunk (each its own Window, so tokens
// that straddle a chunk boundary exercise the lexer's carry path), then
// calls Finish.
func feedChunks(p *Parser, chunks ...string) error {
	for _, c := range chunks {
		if err := p.Parse(NewWindow([]byte(c))); err != nil {
			return err
		}
	}
	return p.Finish()
}

func TestParserSimpleObject(t *testing.T) {
	p, log := newRecordingParser(t, nil)
	err := feedChunks(p, `{"a":1,"b":true,"c":null,"d":[1,2.5]}`)
	require.NoError(t, err)
	require.Equal(t, []string{
		"startObject",
		"key(a)", "integer(1)",
		"key(b)", "bool(true)",
		"key(c)", "null",
		"key(d)", "startArray", "integer(1)", "double(2.5)", "endArray",
		"endObject",
	}, log.events)
}

func TestParserAcrossManySmallChunks(t *testing.T) {
	p, log := newRecordingParser(t, nil)
	input := `{"hello":"world","nested":{"x":1}}`
	chunks := make([]string, 0, len(input))
	for i := 0; i < len(input); i++ {
		chunks = append(chunks, string(input[i]))
	}
	err := feedChunks(p, chunks...)
	require.NoError(t, err)
	require.Equal(t, []string{
		"startObject",
		"key(hello)", "string(world)",
		"key(nested)", "startObject", "key(x)", "integer(1)", "endObject",
		"endObject",
	}, log.events)
}

func TestParserRejectsTrailingComma(t *testing.T) {
	p, _ := newRecordingParser(t, nil)
	err := feedChunks(p, `{"a":1,}`)
	require.Error(t, err)
	require.Equal(t, StateParseError, p.State())
}

func TestParserRejectsMissingColon(t *testing.T) {
	p, _ := newRecordingParser(t, nil)
	err := feedChunks(p, `{"a" 1}`)
	require.Error(t, err)
}

func TestParserRejectsMismatchedClose(t *testing.T) {
	p, _ := newRecordingParser(t, nil)
	err := feedChunks(p, `{"a":[1,2}`)
	require.Error(t, err)
}

func TestParserStickyAfterError(t *testing.T) {
	p, _ := newRecordingParser(t, nil)
	err := feedChunks(p, `{"a":}`)
	require.Error(t, err)

	// parsing again without a Reset must keep returning the same failure
	err2 := p.Parse(NewWindow([]byte(`{}`)))
	require.Error(t, err2)

	p.Reset()
	require.Equal(t, StateStart, p.State())
	err3 := feedChunks(p, `{}`)
	require.NoError(t, err3)
}

func TestParserEmptyObjectAndArray(t *testing.T) {
	p, log := newRecordingParser(t, nil)
	err := feedChunks(p, `{}`)
	require.NoError(t, err)
	require.Equal(t, []string{"startObject", "endObject"}, log.events)

	p.Reset()
	log.events = nil
	err = feedChunks(p, `[]`)
	require.NoError(t, err)
	require.Equal(t, []string{"startArray", "endArray"}, log.events)
}

func TestParserAllowMultipleValues(t *testing.T) {
	p, log := newRecordingParser(t, func(b *Builder) {
		b.SetTopLevelStrategy(AllowMultipleValues)
	})
	err := feedChunks(p, "1\n2\n3\n")
	require.NoError(t, err)
	require.Equal(t, []string{"integer(1)", "integer(2)", "integer(3)"}, log.events)
}

func TestParserSingleObjectRejectsTrailingData(t *testing.T) {
	p, _ := newRecordingParser(t, nil)
	err := feedChunks(p, `1 2`)
	require.Error(t, err)
}

func TestParserAllowTrailingGarbage(t *testing.T) {
	p, log := newRecordingParser(t, func(b *Builder) {
		b.SetTopLevelStrategy(AllowTrailingGarbage)
	})
	err := feedChunks(p, `1 not valid json at all {{{`)
	require.NoError(t, err)
	require.Equal(t, []string{"integer(1)"}, log.events)
}

func TestParserMaxDepthExceeded(t *testing.T) {
	p, _ := newRecordingParser(t, func(b *Builder) {
		b.SetMaxDepth(2)
	})
	err := feedChunks(p, `[[[1]]]`)
	require.Error(t, err)
}

func TestParserHandlerCancel(t *testing.T) {
	b := NewBuilder()
	b.SetIntegerHandler(func(v int64) error { return ErrHandlerCancel })
	p, err := b.Build()
	require.NoError(t, err)

	err = feedChunks(p, `42`)
	require.Error(t, err)
	require.Equal(t, StateHandlerCancel, p.State())
}

func TestParserHandlerException(t *testing.T) {
	b := NewBuilder()
	boom := fmt.Errorf("boom")
	b.SetIntegerHandler(func(v int64) error { return boom })
	p, err := b.Build()
	require.NoError(t, err)

	err = feedChunks(p, `42`)
	require.Error(t, err)
	require.Equal(t, StateHandlerException, p.State())
	require.ErrorIs(t, err, boom)
}

func TestParserRawNumberHandler(t *testing.T) {
	b := NewBuilder()
	var got string
	b.SetRawNumberHandler(func(s BorrowedString) error { got = s.String(); return nil })
	p, err := b.Build()
	require.NoError(t, err)

	err = feedChunks(p, `123456789012345678901234567890`)
	require.NoError(t, err)
	require.Equal(t, "123456789012345678901234567890", got)
}

func TestBuilderRejectsRawNumberWithIntegerHandler(t *testing.T) {
	b := NewBuilder()
	b.SetRawNumberHandler(func(s BorrowedString) error { return nil })
	b.SetIntegerHandler(func(v int64) error { return nil })
	_, err := b.Build()
	require.Error(t, err)
}

func TestBuilderRejectsNoHandlers(t *testing.T) {
	b := NewBuilder()
	_, err := b.Build()
	require.Error(t, err)
}

func TestParserOversizedIntegerRaisesOverflowError(t *testing.T) {
	p, log := newRecordingParser(t, nil)
	err := feedChunks(p, `9223372036854775808`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "integer overflow")
	require.Equal(t, StateParseError, p.State())
	require.Empty(t, log.events)
}

func TestParserMinInt64IsNotOverflow(t *testing.T) {
	p, log := newRecordingParser(t, nil)
	err := feedChunks(p, `-9223372036854775808`)
	require.NoError(t, err)
	require.Equal(t, []string{"integer(-9223372036854775808)"}, log.events)
}

func TestParserMaxInt64IsNotOverflow(t *testing.T) {
	p, log := newRecordingParser(t, nil)
	err := feedChunks(p, `9223372036854775807`)
	require.NoError(t, err)
	require.Equal(t, []string{"integer(9223372036854775807)"}, log.events)
}

func TestParserEachTokenMustBeHandled(t *testing.T) {
	b := NewBuilder()
	b.SetEachTokenMustBeHandled(true)
	b.SetIntegerHandler(func(v int64) error { return nil })
	p, err := b.Build()
	require.NoError(t, err)

	err = feedChunks(p, `true`)
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
