package device

import (
	"iter"
	"strings"
	"sync"

	"github.com/ezrec/vm16/vm"
)

// Button is a game controller button bit.
type Button uint16

const (
	BUTTON_UP    = Button(1 << 0)
	BUTTON_DOWN  = Button(1 << 1)
	BUTTON_LEFT  = Button(1 << 2)
	BUTTON_RIGHT = Button(1 << 3)
	BUTTON_A     = Button(1 << 4)
	BUTTON_B     = Button(1 << 5)
	BUTTON_C     = Button(1 << 6)

	CONTROLLER_PRESENT = Button(1 << 7) // Always set while attached.
)

var buttonNames = map[string]Button{
	"up":    BUTTON_UP,
	"down":  BUTTON_DOWN,
	"left":  BUTTON_LEFT,
	"right": BUTTON_RIGHT,
	"a":     BUTTON_A,
	"b":     BUTTON_B,
	"c":     BUTTON_C,
}

// LookupButton finds a button by name, ignoring case.
func LookupButton(name string) (button Button, ok bool) {
	button, ok = buttonNames[strings.ToLower(name)]
	return
}

// Controller reports the held buttons of a game controller. Press and
// Release are safe to call from any goroutine.
type Controller struct {
	Port uint16

	mutex sync.Mutex
	state Button
}

func (ctl *Controller) Defines() iter.Seq2[string, string] {
	names := map[string]int{
		"PORT_CONTROLLER":    int(ctl.Port),
		"CONTROLLER_PRESENT": int(CONTROLLER_PRESENT),
	}
	for name, button := range buttonNames {
		names["BUTTON_"+strings.ToUpper(name)] = int(button)
	}
	return defines(names)
}

// Press marks buttons as held.
func (ctl *Controller) Press(buttons Button) {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	ctl.state |= buttons
}

// Release marks buttons as released.
func (ctl *Controller) Release(buttons Button) {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	ctl.state &^= buttons
}

// State returns the port value: the held buttons and the presence bit.
func (ctl *Controller) State() uint16 {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	return uint16(ctl.state | CONTROLLER_PRESENT)
}

func (ctl *Controller) Attach(m *vm.Machine) error {
	return m.HandleInput(ctl.Port, ctl.State)
}

func (ctl *Controller) Reset() {
	ctl.Release(^Button(0))
}
