// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"fmt"
	"log"
	"strings"

	"github.com/ezrec/vm16/isa"
)

const (
	FLAG_ZERO  = uint16(1 << 0) // Last result was zero.
	FLAG_EQUAL = uint16(1 << 1) // cmp: left == right
	FLAG_ABOVE = uint16(1 << 2) // cmp: left > right
	FLAG_BELOW = uint16(1 << 3) // cmp: left < right
	FLAG_TRAP  = uint16(1 << 15)

	FLAG_CMP_MASK = uint16(0xff) // Flags cleared by cmp.

	STACK_TOP = uint16(MEMORY_SIZE - 1) // Initial stack pointer.
)

// Machine is the vm16 execution engine.
type Machine struct {
	Verbose  bool                       // If set, logs every executed instruction.
	Register [isa.REGISTER_COUNT]uint16 // General purpose registers.
	IP       uint16                     // Instruction pointer.
	SP       uint16                     // Stack pointer.
	Flags    uint16                     // FLAG_* bits.
	Ticks    int                        // Instructions executed since reset.

	memory  Memory
	inputs  map[uint16]InputHandler
	outputs map[uint16]OutputHandler
	devices []Device

	inst Instruction // Decode scratch, reused every step.
}

// NewMachine creates a machine in its reset state.
func NewMachine() (m *Machine) {
	m = &Machine{}
	m.Reset()
	return
}

// Memory returns the machine's address space.
func (m *Machine) Memory() *Memory {
	return &m.memory
}

// Reset clears registers, flags and memory, and resets every device.
func (m *Machine) Reset() {
	clear(m.Register[:])
	m.IP = 0
	m.SP = STACK_TOP
	m.Flags = 0
	m.Ticks = 0
	m.memory.Clear()

	for _, dev := range m.devices {
		dev.Reset()
	}
}

// Trapped returns true if the trap flag is set.
func (m *Machine) Trapped() bool {
	return m.Flags&FLAG_TRAP != 0
}

// SetTrap sets or clears the trap flag.
func (m *Machine) SetTrap(trap bool) {
	if trap {
		m.Flags |= FLAG_TRAP
	} else {
		m.Flags &^= FLAG_TRAP
	}
}

func (m *Machine) String() string {
	var sb strings.Builder
	for n, reg := range m.Register {
		fmt.Fprintf(&sb, "R%X=%04x ", n, reg)
	}
	fmt.Fprintf(&sb, "IP=%04x SP=%04x FLAGS=%04x", m.IP, m.SP, m.Flags)
	return sb.String()
}

// Get reads an operand. Pointer operands are dereferenced only if resolve
// is set.
func (m *Machine) Get(op *Operand, resolve bool) (value uint16, err error) {
	switch {
	case op.Kind.IsRegister():
		value = m.Register[op.Kind]
	case op.Kind == isa.KIND_IP:
		value = m.IP
	case op.Kind == isa.KIND_SP:
		value = m.SP
	default:
		value = op.Value
	}

	if op.Pointer && resolve {
		if op.Byte {
			var b byte
			b, err = m.memory.Get(value)
			value = uint16(b)
		} else {
			value, err = m.memory.Word(value)
		}
		if err != nil {
			return
		}
	}

	if op.Byte {
		value &= 0xff
	}

	return
}

// Set writes an operand. Byte operands only change the low byte of their
// target. Writes to immediates are ignored.
func (m *Machine) Set(op *Operand, value uint16) (err error) {
	if op.Pointer {
		var addr uint16
		addr, err = m.Get(op, false)
		if err != nil {
			return
		}
		if op.Byte {
			return m.memory.Set(addr, byte(value))
		}
		return m.memory.SetWord(addr, value)
	}

	var reg *uint16
	switch {
	case op.Kind.IsRegister():
		reg = &m.Register[op.Kind]
	case op.Kind == isa.KIND_IP:
		reg = &m.IP
	case op.Kind == isa.KIND_SP:
		reg = &m.SP
	default:
		return
	}

	if op.Byte {
		value = (*reg & 0xff00) | (value & 0x00ff)
	}
	*reg = value
	return
}

func (m *Machine) push(value uint16) (err error) {
	err = m.memory.Set(m.SP, byte(value>>8))
	if err != nil {
		return
	}
	m.SP--
	err = m.memory.Set(m.SP, byte(value))
	if err != nil {
		return
	}
	m.SP--
	return
}

func (m *Machine) pop() (value uint16, err error) {
	m.SP++
	lo, err := m.memory.Get(m.SP)
	if err != nil {
		return
	}
	m.SP++
	hi, err := m.memory.Get(m.SP)
	if err != nil {
		return
	}
	value = uint16(lo) | uint16(hi)<<8
	return
}

func (m *Machine) setZero(value uint16) {
	m.Flags &^= FLAG_ZERO
	if value == 0 {
		m.Flags |= FLAG_ZERO
	}
}

func (m *Machine) flag(mask uint16) bool {
	return m.Flags&mask != 0
}

// Step executes one instruction, unless the machine is trapped.
func (m *Machine) Step() (err error) {
	if m.Trapped() {
		return
	}
	return m.execute()
}

// ForceStep executes one instruction even if the machine is trapped.
func (m *Machine) ForceStep() (err error) {
	return m.execute()
}

func (m *Machine) execute() (err error) {
	inst := &m.inst

	m.IP, err = m.memory.Decode(m.IP, inst)
	if err != nil {
		return
	}

	if m.Verbose {
		log.Printf("%04x: %v", inst.Address, inst)
	}

	m.Ticks++

	left := &inst.Left
	right := &inst.Right

	var a, b uint16
	switch inst.Opcode.Operands() {
	case 2:
		b, err = m.Get(right, true)
		if err != nil {
			return
		}
		fallthrough
	case 1:
		a, err = m.Get(left, true)
		if err != nil {
			return
		}
	}

	// Result of an arithmetic or bitwise operation.
	var result uint16

	switch inst.Opcode {
	case isa.OP_SET:
		return m.Set(left, b)
	case isa.OP_ADD:
		result = a + b
	case isa.OP_SUB:
		result = a - b
	case isa.OP_MUL:
		result = a * b
	case isa.OP_DIV, isa.OP_MOD:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		if inst.Opcode == isa.OP_DIV {
			result = uint16(int16(a) / int16(b))
		} else {
			result = uint16(int16(a) % int16(b))
		}
	case isa.OP_INC:
		result = a + 1
	case isa.OP_DEC:
		result = a - 1
	case isa.OP_NOT:
		result = ^a
	case isa.OP_AND:
		result = a & b
	case isa.OP_OR:
		result = a | b
	case isa.OP_XOR:
		result = a ^ b
	case isa.OP_SHL:
		result = uint16(uint32(a) << (b & 31))
	case isa.OP_SHR:
		result = uint16(int32(int16(a)) >> (b & 31))
	case isa.OP_PUSH:
		return m.push(a)
	case isa.OP_POP:
		var value uint16
		value, err = m.pop()
		if err != nil {
			return
		}
		return m.Set(left, value)
	case isa.OP_JMP:
		m.IP = a
		return
	case isa.OP_CALL:
		err = m.push(m.IP)
		if err != nil {
			return
		}
		m.IP = a
		return
	case isa.OP_RET:
		m.IP, err = m.pop()
		return
	case isa.OP_IN:
		result = m.input(b)
	case isa.OP_OUT:
		m.output(a, b)
		return
	case isa.OP_CMP:
		m.Flags &^= FLAG_CMP_MASK
		sa, sb := int16(a), int16(b)
		if sa == 0 {
			m.Flags |= FLAG_ZERO
		}
		if sa == sb {
			m.Flags |= FLAG_EQUAL
		}
		if sa > sb {
			m.Flags |= FLAG_ABOVE
		}
		if sa < sb {
			m.Flags |= FLAG_BELOW
		}
		return
	default:
		var taken bool
		switch inst.Opcode {
		case isa.OP_JZ:
			taken = m.flag(FLAG_ZERO)
		case isa.OP_JNZ:
			taken = !m.flag(FLAG_ZERO)
		case isa.OP_JE:
			taken = m.flag(FLAG_EQUAL)
		case isa.OP_JNE:
			taken = !m.flag(FLAG_EQUAL)
		case isa.OP_JA:
			taken = m.flag(FLAG_ABOVE)
		case isa.OP_JB:
			taken = m.flag(FLAG_BELOW)
		case isa.OP_JAE:
			taken = m.flag(FLAG_ABOVE | FLAG_EQUAL)
		case isa.OP_JBE:
			taken = m.flag(FLAG_BELOW | FLAG_EQUAL)
		}
		if taken {
			m.IP = a
		}
		return
	}

	if left.Byte {
		result &= 0xff
	}

	err = m.Set(left, result)
	if err != nil {
		return
	}
	m.setZero(result)
	return
}
