// Package isa describes the vm16 instruction set: the opcode table, the
// operand kinds, and the bit layout of the instruction header shared by the
// assembler and the machine.
//
// An instruction is a 1 to 3 byte header followed by a 2 byte little-endian
// payload for every immediate operand, left operand first. Byte 0 always
// carries the opcode in bits 7-3. Headers without pointer or byte flags use
// the compact form:
//
//	byte 0: oooo o0LL    LL  = left kind bits 4-3
//	byte 1: lllr rrrr    lll = left kind bits 2-0, rrrrr = right kind
//
// Any pointer or byte flag forces the extended form:
//
//	byte 0: oooo o1PQ    P = left pointer, Q = right pointer
//	byte 1: Bkkk kkkk    B = left byte flag, k = left kind
//	byte 2: Bkkk kkkk    B = right byte flag, k = right kind
//
// Opcodes without operands are a single byte.
package isa
