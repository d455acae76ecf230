package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeTable(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(30, len(Opcodes()))

	for _, op := range Opcodes() {
		found, ok := LookupOpcode(op.String())
		assert.True(ok, op.String())
		assert.Equal(op, found)
	}

	op, ok := LookupOpcode("JNE")
	assert.True(ok)
	assert.Equal(OP_JNE, op)

	_, ok = LookupOpcode("db")
	assert.False(ok)

	assert.Equal(0, OP_RET.Operands())
	assert.Equal(1, OP_INC.Operands())
	assert.Equal(1, OP_JBE.Operands())
	assert.Equal(2, OP_OUT.Operands())
	assert.False(OP_COUNT.Valid())
}

func TestRegisterNames(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name string
		kind Kind
	}{
		{"R0", KIND_R0},
		{"r9", KIND_R9},
		{"RA", KIND_RA},
		{"rf", KIND_RF},
		{"IP", KIND_IP},
		{"sp", KIND_SP},
	}

	for _, entry := range table {
		kind, ok := LookupRegister(entry.name)
		assert.True(ok, entry.name)
		assert.Equal(entry.kind, kind, entry.name)
	}

	_, ok := LookupRegister("R16")
	assert.False(ok)
	_, ok = LookupRegister("loop")
	assert.False(ok)

	assert.Equal("RC", KIND_RC.String())
	assert.Equal("SP", KIND_SP.String())
	assert.Equal("kind(20)", KIND_COUNT.String())
	assert.Equal("op(30)", OP_COUNT.String())
}

func TestHeaderEncoding(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name   string
		header Header
		bytes  []byte
	}{
		{"ret", Header{Opcode: OP_RET}, []byte{18 << 3}},
		{"set r0, imm", Header{OP_SET, Spec{Kind: KIND_R0}, Spec{Kind: KIND_IMM16}}, []byte{0x00, 0x12}},
		{"set r0, r1", Header{OP_SET, Spec{Kind: KIND_R0}, Spec{Kind: KIND_R1}}, []byte{0x00, 0x01}},
		{"add sp, ip", Header{OP_ADD, Spec{Kind: KIND_SP}, Spec{Kind: KIND_IP}}, []byte{0x08 | 0x2, 0x20 | 0x10}},
		{"jmp imm", Header{Opcode: OP_JMP, Left: Spec{Kind: KIND_IMM16}}, []byte{16<<3 | 0x2, 0x40}},
		{"set [r0], r1", Header{OP_SET, Spec{Kind: KIND_R0, Pointer: true}, Spec{Kind: KIND_R1}}, []byte{0x06, 0x00, 0x01}},
		{"set r2, byte [imm]", Header{OP_SET, Spec{Kind: KIND_R2}, Spec{Kind: KIND_IMM16, Pointer: true, Byte: true}}, []byte{0x05, 0x02, 0x92}},
		{"inc byte r3", Header{Opcode: OP_INC, Left: Spec{Kind: KIND_R3, Byte: true}}, []byte{6<<3 | 0x4, 0x83, 0x00}},
	}

	for _, entry := range table {
		out := entry.header.Append(nil)
		assert.Equal(entry.bytes, out, entry.name)
		assert.Equal(len(entry.bytes), entry.header.Len(), entry.name)
	}
}

func TestHeaderPayloadLen(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(4, Header{OP_OUT, Spec{Kind: KIND_IMM16}, Spec{Kind: KIND_IMM16}}.PayloadLen())
	assert.Equal(2, Header{Opcode: OP_PUSH, Left: Spec{Kind: KIND_IMM16}, Right: Spec{Kind: KIND_IMM16}}.PayloadLen())
	assert.Equal(1, Header{OP_SET, Spec{Kind: KIND_R0}, Spec{Kind: KIND_IMM8}}.PayloadLen())
	assert.Equal(0, Header{Opcode: OP_RET, Left: Spec{Kind: KIND_IMM16}}.PayloadLen())

	assert.Equal([]byte{0x2c, 0x01}, AppendPayload(nil, KIND_IMM16, 300))
	assert.Equal([]byte{0x7f}, AppendPayload(nil, KIND_IMM8, 0x7f))
	assert.Empty(AppendPayload(nil, KIND_R0, 5))
}

func decodeHeader(b []byte) (h Header) {
	op, extended := DecodeFirst(b[0])
	h.Opcode = op
	if op.Operands() == 0 {
		return
	}
	if extended {
		h.Left, h.Right = DecodeExtended(b[0], b[1], b[2])
	} else {
		h.Left, h.Right = DecodeCompact(b[0], b[1])
	}
	if op.Operands() == 1 {
		h.Right = Spec{}
	}
	return
}

func FuzzHeader(f *testing.F) {
	f.Add(uint8(OP_SET), uint8(KIND_R0), uint8(KIND_IMM16), false, false, false, false)
	f.Add(uint8(OP_SET), uint8(KIND_RF), uint8(KIND_SP), true, false, false, true)
	f.Add(uint8(OP_JNE), uint8(KIND_IMM16), uint8(0), true, true, false, false)
	f.Add(uint8(OP_RET), uint8(0), uint8(0), false, false, false, false)

	f.Fuzz(func(t *testing.T, op, left, right uint8, lptr, lbyte, rptr, rbyte bool) {
		assert := assert.New(t)

		h := Header{
			Opcode: Opcode(op) % OP_COUNT,
			Left:   Spec{Kind: Kind(left) % KIND_COUNT, Pointer: lptr, Byte: lbyte},
			Right:  Spec{Kind: Kind(right) % KIND_COUNT, Pointer: rptr, Byte: rbyte},
		}
		switch h.Opcode.Operands() {
		case 0:
			h.Left = Spec{}
			h.Right = Spec{}
		case 1:
			h.Right = Spec{}
		}

		out := h.Append(nil)
		assert.Equal(h.Len(), len(out))

		_, extended := DecodeFirst(out[0])
		assert.Equal(h.Extended(), extended)
		if !extended {
			assert.Equal(byte(0), out[0]&EXTENDED_BIT)
		}

		// Pad so the decoder can always look at three bytes.
		out = append(out, 0, 0)
		assert.Equal(h, decodeHeader(out))
	})
}
