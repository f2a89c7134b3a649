package transfer

// DefaultPINLength is the payment PIN length.
const DefaultPINLength = 4

// PINBuffer is a fixed-length ordered sequence of digit slots. Append and
// Backspace are the only mutations; both are no-ops at the full and empty
// boundaries. The same buffer backs OTP entry with a different length.
type PINBuffer struct {
	digits []byte
	length int
}

// NewPINBuffer creates a buffer of the given length; lengths below one
// fall back to DefaultPINLength.
func NewPINBuffer(length int) *PINBuffer {
	if length < 1 {
		length = DefaultPINLength
	}
	return &PINBuffer{length: length}
}

// Append adds one digit ('0'-'9'). Non-digits and appends past the last
// slot are ignored.
func (b *PINBuffer) Append(d byte) {
	if d < '0' || d > '9' || len(b.digits) >= b.length {
		return
	}
	b.digits = append(b.digits, d)
}

// Backspace removes the last filled slot, if any.
func (b *PINBuffer) Backspace() {
	if len(b.digits) > 0 {
		b.digits = b.digits[:len(b.digits)-1]
	}
}

// Full reports whether every slot is filled.
func (b *PINBuffer) Full() bool { return len(b.digits) == b.length }

// Len returns the number of filled slots.
func (b *PINBuffer) Len() int { return len(b.digits) }

// Clear empties the buffer.
func (b *PINBuffer) Clear() { b.digits = b.digits[:0] }

// String returns the entered digits.
func (b *PINBuffer) String() string { return string(b.digits) }
