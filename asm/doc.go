// Package asm is the vm16 assembler.
//
// Source is one instruction or directive per line:
//
//	#define COUNT 10
//	#include "lib.inc"
//
//	start:
//		set R0, COUNT * 2
//		set byte [R1], "A"
//		out PORT_CONSOLE, "A"
//		jmp start
//	message:
//		db "hello\n", 0
//		dw -1, 0x1234
//		rb 16
//
// Operands are registers (R0-RF, IP, SP), label names, one or two byte
// strings, or constant expressions. Brackets dereference an operand and a
// `byte` prefix restricts it to the low 8 bits.
package asm
