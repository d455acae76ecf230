package isa

import (
	"strconv"
	"strings"
)

// Opcode is an instruction operation index.
type Opcode uint8

const (
	OP_SET = Opcode(0)  // set
	OP_ADD = Opcode(1)  // add
	OP_SUB = Opcode(2)  // sub
	OP_MUL = Opcode(3)  // mul
	OP_DIV = Opcode(4)  // div
	OP_MOD = Opcode(5)  // mod
	OP_INC = Opcode(6)  // inc
	OP_DEC = Opcode(7)  // dec
	OP_NOT = Opcode(8)  // not
	OP_AND = Opcode(9)  // and
	OP_OR  = Opcode(10) // or
	OP_XOR = Opcode(11) // xor
	OP_SHL = Opcode(12) // shl
	OP_SHR = Opcode(13) // shr

	OP_PUSH = Opcode(14) // push
	OP_POP  = Opcode(15) // pop
	OP_JMP  = Opcode(16) // jmp
	OP_CALL = Opcode(17) // call
	OP_RET  = Opcode(18) // ret

	OP_IN  = Opcode(19) // in
	OP_OUT = Opcode(20) // out

	OP_CMP = Opcode(21) // cmp
	OP_JZ  = Opcode(22) // jz
	OP_JNZ = Opcode(23) // jnz
	OP_JE  = Opcode(24) // je
	OP_JA  = Opcode(25) // ja
	OP_JB  = Opcode(26) // jb
	OP_JAE = Opcode(27) // jae
	OP_JBE = Opcode(28) // jbe
	OP_JNE = Opcode(29) // jne

	OP_COUNT = Opcode(30) // Number of defined opcodes.
)

type opcodeInfo struct {
	name     string
	operands int
}

var opcodeTable = [OP_COUNT]opcodeInfo{
	OP_SET: {"set", 2},
	OP_ADD: {"add", 2},
	OP_SUB: {"sub", 2},
	OP_MUL: {"mul", 2},
	OP_DIV: {"div", 2},
	OP_MOD: {"mod", 2},
	OP_INC: {"inc", 1},
	OP_DEC: {"dec", 1},

	OP_NOT: {"not", 1},
	OP_AND: {"and", 2},
	OP_OR:  {"or", 2},
	OP_XOR: {"xor", 2},
	OP_SHL: {"shl", 2},
	OP_SHR: {"shr", 2},

	OP_PUSH: {"push", 1},
	OP_POP:  {"pop", 1},
	OP_JMP:  {"jmp", 1},
	OP_CALL: {"call", 1},
	OP_RET:  {"ret", 0},

	OP_IN:  {"in", 2},
	OP_OUT: {"out", 2},

	OP_CMP: {"cmp", 2},
	OP_JZ:  {"jz", 1},
	OP_JNZ: {"jnz", 1},
	OP_JE:  {"je", 1},
	OP_JA:  {"ja", 1},
	OP_JB:  {"jb", 1},
	OP_JAE: {"jae", 1},
	OP_JBE: {"jbe", 1},
	OP_JNE: {"jne", 1},
}

var opcodeByName = func() map[string]Opcode {
	names := make(map[string]Opcode, len(opcodeTable))
	for n, info := range opcodeTable {
		names[info.name] = Opcode(n)
	}
	return names
}()

// LookupOpcode finds the opcode for a mnemonic, ignoring case.
func LookupOpcode(name string) (op Opcode, ok bool) {
	op, ok = opcodeByName[strings.ToLower(name)]
	return
}

// Valid returns true if the opcode is defined.
func (op Opcode) Valid() bool {
	return op < OP_COUNT
}

// Operands returns the fixed operand count of the opcode.
func (op Opcode) Operands() int {
	if !op.Valid() {
		return 0
	}
	return opcodeTable[op].operands
}

// String returns the lower case mnemonic.
func (op Opcode) String() string {
	if !op.Valid() {
		return "op(" + strconv.Itoa(int(op)) + ")"
	}
	return opcodeTable[op].name
}

// Opcodes lists every defined opcode in index order.
func Opcodes() []Opcode {
	ops := make([]Opcode, OP_COUNT)
	for n := range ops {
		ops[n] = Opcode(n)
	}
	return ops
}
