package jsonsax

import (
	"reflect"
	"unsafe"
)

// unsafeStringFromBytes views a byte slice as a string without copying.
// Adapted from gojsonlex's token.go helper of the same name: it is the
// mechanism behind every zero-copy BorrowedString this package hands to
// callbacks.
func unsafeStringFromBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	slice := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	str := reflect.StringHeader{Data: slice.Data, Len: slice.Len}
	return *(*string)(unsafe.Pointer(&str))
}

// StringDeepCopy returns a copy of s backed by its own array. Handlers
// that want to retain a BorrowedString past the callback's return must
// call Clone, which uses this, the same way gojsonlex callers are told to
// call StringDeepCopy on anything returned from Token().
func StringDeepCopy(s string) string {
	b := make([]byte, len(s))
	copy(b, s)
	return unsafeStringFromBytes(b)
}

// BorrowedString is the character-sequence value delivered to String/Key
// callbacks. When the source token had no escapes, it is a zero-copy view
// straight into the caller's chunk or the lexer's carry buffer; when
// escapes were present, it views the parser's reusable unescape buffer.
// Per spec §6/§9, it is only valid for the duration of the callback that
// received it.
type BorrowedString struct {
	s string
}

// String returns the zero-copy view. Do not retain past the callback.
func (b BorrowedString) String() string { return b.s }

// Clone returns an owned copy safe to retain.
func (b BorrowedString) Clone() string { return StringDeepCopy(b.s) }

// Len reports the byte length of the view.
func (b BorrowedString) Len() int { return len(b.s) }
