package jsonsax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowPeekAdvance(t *testing.T) {
	w := NewWindow([]byte("abc"))
	b, ok := w.Peek()
	require.True(t, ok)
	require.Equal(t, byte('a'), b)

	w.Advance(1)
	require.Equal(t, 1, w.Position())
	require.Equal(t, 2, w.Remaining())

	w.Advance(2)
	_, ok = w.Peek()
	require.False(t, ok)
}

func TestWindowSlice(t *testing.T) {
	w := NewWindow([]byte("hello world"))
	require.Equal(t, "hello", string(w.Slice(0, 5)))
	require.Equal(t, "world", string(w.Slice(6, 11)))
}

func TestWindowReadByteAtOutOfRange(t *testing.T) {
	w := NewWindow([]byte("ab"))
	_, err := w.ReadByteAt(5)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestWindowSetLimitShrinksView(t *testing.T) {
	w := NewWindow([]byte("abcdef"))
	w.SetLimit(3)
	require.Equal(t, 3, w.Remaining())
	w.Advance(3)
	_, ok := w.Peek()
	require.False(t, ok)
}

func TestWindowParseInteger(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		ok    bool
		rest  string
	}{
		{"123,", 123, true, ","},
		{"-45x", -45, true, "x"},
		{"abc", 0, false, "abc"},
		{"-", 0, false, "-"},
	}
	for _, c := range cases {
		w := NewWindow([]byte(c.input))
		v, ok := w.ParseInteger()
		require.Equal(t, c.ok, ok, "input %q", c.input)
		require.Equal(t, c.want, v, "input %q", c.input)
		require.Equal(t, c.rest, string(w.Bytes()[w.Position():]), "input %q", c.input)
	}
}
