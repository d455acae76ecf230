package vm

import (
	"errors"

	"github.com/ezrec/vm16/isa"
	"github.com/ezrec/vm16/translate"
)

var f = translate.From

var (
	ErrDivideByZero = errors.New(f("division by zero"))
	ErrImageSize    = errors.New(f("image exceeds memory"))
)

// ErrMemory is an access outside of the address space.
type ErrMemory struct {
	Address int
}

func (err ErrMemory) Error() string {
	return f("memory access at %d out of range", err.Address)
}

// ErrInvalidOpcode is an undefined opcode index.
type ErrInvalidOpcode struct {
	Address uint16
	Opcode  isa.Opcode
}

func (err ErrInvalidOpcode) Error() string {
	return f("invalid opcode %d at 0x%04x", uint8(err.Opcode), err.Address)
}

// ErrBadOperand is an undefined operand kind.
type ErrBadOperand struct {
	Address uint16
	Kind    isa.Kind
}

func (err ErrBadOperand) Error() string {
	return f("invalid operand kind %d at 0x%04x", uint8(err.Kind), err.Address)
}

// ErrPortInUse is a second handler for a port and direction.
type ErrPortInUse struct {
	Port      uint16
	Direction Direction
}

func (err ErrPortInUse) Error() string {
	return f("%v port %d already in use", err.Direction, err.Port)
}
