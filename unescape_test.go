package jsonsax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type unescapeTestCase struct {
	input  string
	output string
}

// Adapted from gojsonlex's TestUnescapeBytesInplace: same escape classes,
// but run through the new forward-pass unescape() which appends to a
// caller-supplied destination instead of mutating in place.
func TestUnescape(t *testing.T) {
	testcases := []unescapeTestCase{
		{"", ""},
		{"a", "a"},
		{"hello\\nworld", "hello\nworld"},
		{"hello\\rworld", "hello\rworld"},
		{"hello\\tworld", "hello\tworld"},
		{"hello\\bworld", "hello\bworld"},
		{"hello\\fworld", "hello\fworld"},
		{"hello\\\\world", "hello\\world"},
		{"hello\\/world", "hello/world"},
		{"hello\\\"world", "hello\"world"},
		{"\\\"hello world\\\"", "\"hello world\""},
		{"hello \\u043f\\u0440\\u0438\\u0432\\u0435\\u0442\\u0020\\u043c\\u0438\\u0440 world", "hello привет мир world"},
	}
	for _, tc := range testcases {
		out, err := unescape(nil, []byte(tc.input))
		require.NoError(t, err, "input %q", tc.input)
		require.Equal(t, tc.output, string(out), "input %q", tc.input)
	}
}

func TestUnescapeFails(t *testing.T) {
	testcases := []string{
		"\\",
		"\\a",
		"\\u043",
	}
	for _, in := range testcases {
		_, err := unescape(nil, []byte(in))
		require.Error(t, err, "input %q", in)
	}
}

// Surrogate pairs are deliberately NOT recombined into a single
// supplementary-plane code point (spec §4.3/§9): each \u escape is
// UTF-8-encoded independently, even when its value falls in the
// surrogate range. That means stdlib's own unicode/utf8 decoder, which
// refuses to decode surrogate-range code points, cannot read this output
// back — only a decoder aware of the same convention can, so the round
// trip below uses a small inverse of appendUTF16CodeUnit rather than
// unicode/utf8.
func TestUnescapeSurrogatePairNotRecombined(t *testing.T) {
	// U+1F4A9 (PILE OF POO) written as its UTF-16 surrogate pair escape,
	// exactly as it would appear in JSON source text.
	out, err := unescape(nil, []byte("\\uD83D\\uDCA9"))
	require.NoError(t, err)
	require.Len(t, out, 6, "two independent 3-byte encodings, not one 4-byte supplementary-plane encoding")

	hi, n1 := decodeWTF8CodeUnit(out)
	require.Equal(t, 3, n1)
	require.Equal(t, uint16(0xD83D), hi)

	lo, n2 := decodeWTF8CodeUnit(out[n1:])
	require.Equal(t, 3, n2)
	require.Equal(t, uint16(0xDCA9), lo)
}

func TestAppendUTF16CodeUnitRoundTrip(t *testing.T) {
	for _, cu := range []uint16{0x0041, 0x00e9, 0x07ff, 0x0800, 0xd800, 0xdbff, 0xdc00, 0xdfff, 0xffff} {
		encoded := appendUTF16CodeUnit(nil, cu)
		decoded, n := decodeWTF8CodeUnit(encoded)
		require.Equal(t, len(encoded), n, "code unit 0x%04x", cu)
		require.Equal(t, cu, decoded, "code unit 0x%04x", cu)
	}
}

// decodeWTF8CodeUnit is the test-only inverse of appendUTF16CodeUnit,
// used to verify the hand-rolled encoder round-trips every 16-bit value,
// including the surrogate range that unicode/utf8 itself won't encode or
// decode.
func decodeWTF8CodeUnit(b []byte) (uint16, int) {
	if len(b) == 0 {
		return 0, 0
	}
	switch {
	case b[0] < 0x80:
		return uint16(b[0]), 1
	case b[0]&0xE0 == 0xC0:
		return uint16(b[0]&0x1F)<<6 | uint16(b[1]&0x3F), 2
	default:
		return uint16(b[0]&0x0F)<<12 | uint16(b[1]&0x3F)<<6 | uint16(b[2]&0x3F), 3
	}
}
