package jsonsax

import "errors"

// ErrOutOfRange is returned by Window operations that would read or seek
// past the window's bounds. The lexer never triggers it: it reads only
// through Peek, which reports an exhausted window instead of erroring.
var ErrOutOfRange = errors.New("jsonsax: read out of range")

// Window is a positioned, limitable view over a contiguous byte region
// owned by the caller. It never copies the region; it only tracks a read
// cursor and an upper bound over it. Callers create one per chunk handed
// to Parser.Parse and must not mutate the backing slice while the parser
// holds the window.
type Window struct {
	base     []byte
	position int
	limit    int
}

// NewWindow wraps buf as a window spanning its whole length.
func NewWindow(buf []byte) *Window {
	return &Window{base: buf, position: 0, limit: len(buf)}
}

// Bytes returns the backing slice. Used internally and by callers that
// want to address the window by absolute offset (e.g. to locate a token
// payload reported by a callback).
func (w *Window) Bytes() []byte { return w.base }

// Position returns the current read cursor.
func (w *Window) Position() int { return w.position }

// SetPosition moves the read cursor. It is the caller's responsibility to
// keep it within [0, limit]; the lexer itself only ever moves it forward,
// via Advance — termination lookahead uses Peek instead of a
// consume-then-pushback scheme, so Lex never needs to back the cursor up.
func (w *Window) SetPosition(p int) { w.position = p }

// Limit returns the current upper bound.
func (w *Window) Limit() int { return w.limit }

// SetLimit moves the upper bound. Used to temporarily shrink a window,
// e.g. by the FIX scanner when holding back a trailing partial field.
func (w *Window) SetLimit(l int) { w.limit = l }

// Remaining reports how many unread bytes lie between position and limit.
func (w *Window) Remaining() int { return w.limit - w.position }

// Peek returns the next unread byte without consuming it.
func (w *Window) Peek() (byte, bool) {
	if w.position >= w.limit {
		return 0, false
	}
	return w.base[w.position], true
}

// Advance consumes n bytes from the window.
func (w *Window) Advance(n int) { w.position += n }

// ReadByteAt reads the byte at an absolute offset into the backing slice,
// without touching the cursor.
func (w *Window) ReadByteAt(off int) (byte, error) {
	if off < 0 || off >= w.limit {
		return 0, ErrOutOfRange
	}
	return w.base[off], nil
}

// Slice returns the backing bytes between two absolute offsets, with no
// copy. This is how zero-copy token payloads are built when a token lies
// wholly within one window.
func (w *Window) Slice(start, end int) []byte {
	return w.base[start:end]
}

// ParseInteger consumes an optionally-signed run of decimal digits
// starting at the cursor and returns its value, stopping at the first
// non-digit (which is left unconsumed). It is used by the FIX scanner to
// parse tag numbers without an intermediate string allocation.
func (w *Window) ParseInteger() (int64, bool) {
	start := w.position
	neg := false
	if b, ok := w.Peek(); ok && b == '-' {
		neg = true
		w.Advance(1)
	}
	var v int64
	digits := 0
	for {
		b, ok := w.Peek()
		if !ok || b < '0' || b > '9' {
			break
		}
		v = v*10 + int64(b-'0')
		digits++
		w.Advance(1)
	}
	if digits == 0 {
		w.position = start
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}
