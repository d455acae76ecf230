package isa

const (
	OPCODE_SHIFT      = 3
	EXTENDED_BIT      = 1 << 2
	LEFT_POINTER_BIT  = 1 << 1
	RIGHT_POINTER_BIT = 1 << 0
	BYTE_FLAG_BIT     = 1 << 7
	EXTENDED_KIND     = 0x7f
	COMPACT_KIND      = 0x1f
)

// Spec is an operand kind together with its access flags.
type Spec struct {
	Kind    Kind
	Pointer bool // Dereference the value as a memory address.
	Byte    bool // Operate on the low 8 bits only.
}

// Flagged returns true if the operand needs the extended header.
func (s Spec) Flagged() bool {
	return s.Pointer || s.Byte
}

// Header is the decoded form of an instruction header.
type Header struct {
	Opcode Opcode
	Left   Spec
	Right  Spec
}

// Extended returns true if the header must use the 3 byte form.
func (h Header) Extended() bool {
	n := h.Opcode.Operands()
	return (n >= 1 && h.Left.Flagged()) || (n >= 2 && h.Right.Flagged())
}

// Len returns the header length in bytes.
func (h Header) Len() int {
	switch {
	case h.Opcode.Operands() == 0:
		return 1
	case h.Extended():
		return 3
	default:
		return 2
	}
}

// PayloadLen returns the number of immediate bytes following the header.
func (h Header) PayloadLen() (size int) {
	n := h.Opcode.Operands()
	if n >= 1 {
		size += h.Left.Kind.PayloadSize()
	}
	if n >= 2 {
		size += h.Right.Kind.PayloadSize()
	}
	return
}

// Append encodes the header onto dst.
func (h Header) Append(dst []byte) []byte {
	n := h.Opcode.Operands()
	b0 := byte(h.Opcode) << OPCODE_SHIFT

	var left, right Spec
	if n >= 1 {
		left = h.Left
	}
	if n >= 2 {
		right = h.Right
	}

	switch {
	case n == 0:
		return append(dst, b0)
	case h.Extended():
		b0 |= EXTENDED_BIT
		if left.Pointer {
			b0 |= LEFT_POINTER_BIT
		}
		if right.Pointer {
			b0 |= RIGHT_POINTER_BIT
		}
		b1 := byte(left.Kind) & EXTENDED_KIND
		if left.Byte {
			b1 |= BYTE_FLAG_BIT
		}
		b2 := byte(right.Kind) & EXTENDED_KIND
		if right.Byte {
			b2 |= BYTE_FLAG_BIT
		}
		return append(dst, b0, b1, b2)
	default:
		b0 |= (byte(left.Kind) >> 3) & 0x3
		b1 := (byte(left.Kind) << 5) | (byte(right.Kind) & COMPACT_KIND)
		return append(dst, b0, b1)
	}
}

// DecodeFirst splits the first header byte into its opcode index and the
// extended form marker. The opcode is not range checked.
func DecodeFirst(b0 byte) (op Opcode, extended bool) {
	op = Opcode(b0 >> OPCODE_SHIFT)
	extended = (b0 & EXTENDED_BIT) != 0
	return
}

// DecodeCompact decodes the operand kinds of a 2 byte header.
func DecodeCompact(b0, b1 byte) (left, right Spec) {
	left.Kind = Kind(((b0 & 0x3) << 3) | (b1 >> 5))
	right.Kind = Kind(b1 & COMPACT_KIND)
	return
}

// DecodeExtended decodes the operand kinds and flags of a 3 byte header.
func DecodeExtended(b0, b1, b2 byte) (left, right Spec) {
	left = Spec{
		Kind:    Kind(b1 & EXTENDED_KIND),
		Pointer: (b0 & LEFT_POINTER_BIT) != 0,
		Byte:    (b1 & BYTE_FLAG_BIT) != 0,
	}
	right = Spec{
		Kind:    Kind(b2 & EXTENDED_KIND),
		Pointer: (b0 & RIGHT_POINTER_BIT) != 0,
		Byte:    (b2 & BYTE_FLAG_BIT) != 0,
	}
	return
}

// AppendPayload encodes an immediate payload for the given kind.
func AppendPayload(dst []byte, kind Kind, value uint16) []byte {
	switch kind {
	case KIND_IMM16:
		return append(dst, byte(value), byte(value>>8))
	case KIND_IMM8:
		return append(dst, byte(value))
	}
	return dst
}
