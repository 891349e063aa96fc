// Package fix implements the FIX protocol field scanner (spec §4.7,
// component C7): a second, smaller parser sharing jsonsax's byte-window
// idiom to split a FIX message into tag=value fields delimited by SOH
// (0x01), without ever requiring the whole message to be buffered at
// once.
package fix

import (
	"github.com/streamsax/jsonsax"
)

const soh = 0x01

// FieldHandler receives one decoded field. value is a zero-copy slice
// into either the window passed to Scanner.Parse or the scanner's
// internal carry buffer; like jsonsax's BorrowedString it is only valid
// for the duration of the call.
type FieldHandler func(tag int64, value []byte) error

// Scanner splits tag=value\x01 fields out of a FIX message fed in
// arbitrary chunks. It keeps any trailing partial field in an internal
// buffer between Parse calls, mirroring gojsonlex's approach of holding
// back an unlexed remainder rather than requiring chunk-aligned input.
type Scanner struct {
	handler FieldHandler
	carry   []byte
}

// NewScanner constructs a Scanner that invokes h for every complete field
// it finds.
func NewScanner(h FieldHandler) *Scanner {
	return &Scanner{handler: h}
}

// Reset discards any held partial field, for reuse across unrelated
// messages.
func (s *Scanner) Reset() {
	s.carry = s.carry[:0]
}

// Parse scans w for complete fields and invokes the handler for each one
// found, left to right. A field without a trailing SOH yet in w is held
// back and completed by a later Parse call; so is a field whose tag or
// '=' framing cannot be made sense of yet — a malformed tag integer or a
// missing terminator never surfaces as an error, the handler simply
// receives no more fields and the unconsumed bytes are left for the next
// chunk (spec §4.7 "Failure"). Only an error returned by the handler
// itself propagates out of Parse.
func (s *Scanner) Parse(w *jsonsax.Window) error {
	if len(s.carry) > 0 {
		s.carry = append(s.carry, w.Bytes()[w.Position():w.Limit()]...)
		w.SetPosition(w.Limit())

		inner := jsonsax.NewWindow(s.carry)
		remStart, err := s.scanWindow(inner)
		if err != nil {
			return err
		}
		n := copy(s.carry, s.carry[remStart:inner.Limit()])
		s.carry = s.carry[:n]
		return nil
	}

	remStart, err := s.scanWindow(w)
	if err != nil {
		w.SetPosition(w.Limit())
		return err
	}
	if tailLen := w.Limit() - remStart; tailLen > 0 {
		s.carry = append(s.carry[:0], w.Bytes()[remStart:w.Limit()]...)
	}
	w.SetPosition(w.Limit())
	return nil
}

// scanWindow processes every complete field in w up to the last SOH it
// can find, then restores w's limit and returns the offset at which the
// unconsumed tail (if any) begins. The only error it ever returns is one
// from the field handler itself; malformed framing just stops scanning
// and reports the field's start offset as the held-back tail.
func (s *Scanner) scanWindow(w *jsonsax.Window) (int, error) {
	lastSOH := -1
	for i := w.Limit() - 1; i >= w.Position(); i-- {
		b, err := w.ReadByteAt(i)
		if err != nil {
			break
		}
		if b == soh {
			lastSOH = i
			break
		}
	}
	if lastSOH == -1 {
		return w.Position(), nil
	}

	origLimit := w.Limit()
	w.SetLimit(lastSOH + 1)

	for w.Position() < w.Limit() {
		fieldStart := w.Position()

		tag, ok := w.ParseInteger()
		if !ok || tag < 0 {
			w.SetLimit(origLimit)
			return fieldStart, nil
		}
		eq, err := w.ReadByteAt(w.Position())
		if err != nil || eq != '=' {
			w.SetLimit(origLimit)
			return fieldStart, nil
		}
		w.Advance(1)

		valStart := w.Position()
		sohPos := -1
		for i := w.Position(); i < w.Limit(); i++ {
			b, _ := w.ReadByteAt(i)
			if b == soh {
				sohPos = i
				break
			}
		}
		if sohPos == -1 {
			w.SetLimit(origLimit)
			return fieldStart, nil
		}

		value := w.Slice(valStart, sohPos)
		w.SetPosition(sohPos + 1)

		if s.handler != nil {
			if err := s.handler(tag, value); err != nil {
				w.SetLimit(origLimit)
				return fieldStart, err
			}
		}
	}

	w.SetLimit(origLimit)
	return lastSOH + 1, nil
}
