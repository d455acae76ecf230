// Package vm is the vm16 machine: a 32000 byte memory, sixteen 16-bit
// registers, a flags word and a port bus that devices attach to.
//
// Step decodes and executes one instruction. Setting FLAG_TRAP, usually
// through the debugger device, suspends Step until the flag is cleared;
// ForceStep executes a single instruction regardless.
package vm
