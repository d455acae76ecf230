package isa

import (
	"strconv"
	"strings"
)

// Kind is an operand source or destination, independent of the pointer and
// byte flags.
type Kind uint8

const (
	KIND_R0 = Kind(0)  // r0
	KIND_R1 = Kind(1)  // r1
	KIND_R2 = Kind(2)  // r2
	KIND_R3 = Kind(3)  // r3
	KIND_R4 = Kind(4)  // r4
	KIND_R5 = Kind(5)  // r5
	KIND_R6 = Kind(6)  // r6
	KIND_R7 = Kind(7)  // r7
	KIND_R8 = Kind(8)  // r8
	KIND_R9 = Kind(9)  // r9
	KIND_RA = Kind(10) // ra
	KIND_RB = Kind(11) // rb
	KIND_RC = Kind(12) // rc
	KIND_RD = Kind(13) // rd
	KIND_RE = Kind(14) // re
	KIND_RF = Kind(15) // rf

	KIND_IP    = Kind(16) // ip
	KIND_SP    = Kind(17) // sp
	KIND_IMM16 = Kind(18) // 16-bit immediate, two payload bytes
	KIND_IMM8  = Kind(19) // 8-bit immediate, one payload byte; never emitted by the assembler

	KIND_COUNT = Kind(20) // Number of defined kinds.

	REGISTER_COUNT = 16 // General purpose registers.
)

var registerByName = func() map[string]Kind {
	names := make(map[string]Kind, REGISTER_COUNT+2)
	for n := range REGISTER_COUNT {
		names["r"+strings.ToLower(strconv.FormatInt(int64(n), 16))] = Kind(n)
	}
	names["ip"] = KIND_IP
	names["sp"] = KIND_SP
	return names
}()

// LookupRegister maps R0-R9, RA-RF, IP and SP (any case) to their kind.
func LookupRegister(name string) (kind Kind, ok bool) {
	kind, ok = registerByName[strings.ToLower(name)]
	return
}

// Valid returns true for a defined kind.
func (k Kind) Valid() bool {
	return k < KIND_COUNT
}

// IsRegister returns true for the general purpose registers.
func (k Kind) IsRegister() bool {
	return k < REGISTER_COUNT
}

// IsImmediate returns true for the immediate kinds.
func (k Kind) IsImmediate() bool {
	return k == KIND_IMM16 || k == KIND_IMM8
}

// PayloadSize returns the number of payload bytes that follow the header.
func (k Kind) PayloadSize() int {
	switch k {
	case KIND_IMM16:
		return 2
	case KIND_IMM8:
		return 1
	}
	return 0
}

// String returns the assembly spelling of a register kind.
func (k Kind) String() string {
	switch {
	case k.IsRegister():
		return "R" + strings.ToUpper(strconv.FormatInt(int64(k), 16))
	case k == KIND_IP:
		return "IP"
	case k == KIND_SP:
		return "SP"
	case k == KIND_IMM16:
		return "imm16"
	case k == KIND_IMM8:
		return "imm8"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}
