package device

import (
	"iter"

	"github.com/ezrec/vm16/vm"
)

// Debugger controls the machine's trap flag. Writing a non-zero value traps
// the machine; reading returns 1 while trapped.
type Debugger struct {
	Port uint16
}

func (dbg *Debugger) Defines() iter.Seq2[string, string] {
	return defines(map[string]int{"PORT_DEBUG": int(dbg.Port)})
}

func (dbg *Debugger) Attach(m *vm.Machine) (err error) {
	err = m.HandleOutput(dbg.Port, func(value uint16) {
		m.SetTrap(value != 0)
	})
	if err != nil {
		return
	}

	err = m.HandleInput(dbg.Port, func() uint16 {
		if m.Trapped() {
			return 1
		}
		return 0
	})
	return
}

// Reset has no state to clear; the trap flag belongs to the machine.
func (dbg *Debugger) Reset() {
}
