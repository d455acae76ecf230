package vm

import (
	"strconv"
	"strings"

	"github.com/ezrec/vm16/isa"
)

// Operand is a decoded instruction operand.
type Operand struct {
	isa.Spec
	Value uint16 // Immediate payload.
}

func (op *Operand) String() (text string) {
	switch op.Kind {
	case isa.KIND_IMM16:
		text = strconv.Itoa(int(int16(op.Value)))
	case isa.KIND_IMM8:
		text = strconv.Itoa(int(op.Value))
	default:
		text = op.Kind.String()
	}
	if op.Pointer {
		text = "[" + text + "]"
	}
	if op.Byte {
		text = "byte " + text
	}
	return
}

// Instruction is a decoded instruction.
type Instruction struct {
	Address uint16
	Size    int
	Opcode  isa.Opcode
	Left    Operand
	Right   Operand
}

func (inst *Instruction) String() string {
	name := strings.ToUpper(inst.Opcode.String())
	switch inst.Opcode.Operands() {
	case 0:
		return name
	case 1:
		return name + " " + inst.Left.String()
	}
	return name + " " + inst.Left.String() + ", " + inst.Right.String()
}

// Decode fills inst from the instruction at addr. The returned address is
// past every byte consumed, including when decoding fails.
func (mem *Memory) Decode(addr uint16, inst *Instruction) (next uint16, err error) {
	*inst = Instruction{Address: addr}
	next = addr

	b0, err := mem.Get(next)
	if err != nil {
		return
	}
	next++

	op, extended := isa.DecodeFirst(b0)
	if !op.Valid() {
		err = ErrInvalidOpcode{Address: addr, Opcode: op}
		return
	}
	inst.Opcode = op

	operands := op.Operands()
	if operands > 0 {
		var b1, b2 byte
		b1, err = mem.Get(next)
		if err != nil {
			return
		}
		next++

		var left, right isa.Spec
		if extended {
			b2, err = mem.Get(next)
			if err != nil {
				return
			}
			next++
			left, right = isa.DecodeExtended(b0, b1, b2)
		} else {
			left, right = isa.DecodeCompact(b0, b1)
		}

		inst.Left.Spec = left
		if operands > 1 {
			inst.Right.Spec = right
		}
	}

	for _, operand := range []*Operand{&inst.Left, &inst.Right}[:operands] {
		if !operand.Kind.Valid() {
			err = ErrBadOperand{Address: addr, Kind: operand.Kind}
			return
		}
		switch operand.Kind {
		case isa.KIND_IMM16:
			operand.Value, err = mem.Word(next)
			if err != nil {
				return
			}
			next += 2
		case isa.KIND_IMM8:
			var value byte
			value, err = mem.Get(next)
			if err != nil {
				return
			}
			operand.Value = uint16(value)
			next++
		}
	}

	inst.Size = int(next - addr)
	return
}
