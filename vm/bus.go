package vm

// Direction is the transfer direction of a port handler.
type Direction int

const (
	DIRECTION_INPUT = Direction(iota)
	DIRECTION_OUTPUT
)

func (dir Direction) String() string {
	if dir == DIRECTION_INPUT {
		return f("input")
	}
	return f("output")
}

// InputHandler produces the value of an `in` instruction.
type InputHandler func() uint16

// OutputHandler consumes the value of an `out` instruction.
type OutputHandler func(value uint16)

// Device is a peripheral on the port bus.
type Device interface {
	// Attach registers the device's port handlers.
	Attach(m *Machine) error
	// Reset clears all device state.
	Reset()
}

// HandleInput registers the handler for `in` on port.
func (m *Machine) HandleInput(port uint16, handler InputHandler) (err error) {
	if _, ok := m.inputs[port]; ok {
		err = ErrPortInUse{Port: port, Direction: DIRECTION_INPUT}
		return
	}
	if m.inputs == nil {
		m.inputs = map[uint16]InputHandler{}
	}
	m.inputs[port] = handler
	return
}

// HandleOutput registers the handler for `out` on port.
func (m *Machine) HandleOutput(port uint16, handler OutputHandler) (err error) {
	if _, ok := m.outputs[port]; ok {
		err = ErrPortInUse{Port: port, Direction: DIRECTION_OUTPUT}
		return
	}
	if m.outputs == nil {
		m.outputs = map[uint16]OutputHandler{}
	}
	m.outputs[port] = handler
	return
}

// Attach connects devices to the machine.
func (m *Machine) Attach(devices ...Device) (err error) {
	for _, dev := range devices {
		err = dev.Attach(m)
		if err != nil {
			return
		}
		m.devices = append(m.devices, dev)
	}
	return
}

func (m *Machine) input(port uint16) (value uint16) {
	handler, ok := m.inputs[port]
	if ok {
		value = handler()
	}
	return
}

func (m *Machine) output(port uint16, value uint16) {
	handler, ok := m.outputs[port]
	if ok {
		handler(value)
	}
}
