package device

import (
	"iter"
	"sync"

	"golang.org/x/text/encoding/charmap"

	"github.com/ezrec/vm16/vm"
)

// KEYBOARD_QUEUE is the number of buffered keystrokes.
const KEYBOARD_QUEUE = 16

// Keyboard buffers typed characters as code page 437 bytes. Reading the port
// returns the oldest keystroke, or 0 when none are waiting. Press is safe to
// call from any goroutine.
type Keyboard struct {
	Port uint16

	mutex sync.Mutex
	queue []byte
}

func (kb *Keyboard) Defines() iter.Seq2[string, string] {
	return defines(map[string]int{"PORT_KEYBOARD": int(kb.Port)})
}

// Press queues a keystroke, dropping the oldest one when full. Carriage
// return is delivered as newline; runes outside code page 437 as '?'.
func (kb *Keyboard) Press(key rune) {
	if key == '\r' {
		key = '\n'
	}
	code, ok := charmap.CodePage437.EncodeRune(key)
	if !ok {
		code = '?'
	}

	kb.mutex.Lock()
	defer kb.mutex.Unlock()

	if len(kb.queue) >= KEYBOARD_QUEUE {
		kb.queue = kb.queue[1:]
	}
	kb.queue = append(kb.queue, code)
}

// Type presses every rune of text.
func (kb *Keyboard) Type(text string) {
	for _, key := range text {
		kb.Press(key)
	}
}

func (kb *Keyboard) next() (value uint16) {
	kb.mutex.Lock()
	defer kb.mutex.Unlock()

	if len(kb.queue) > 0 {
		value = uint16(kb.queue[0])
		kb.queue = kb.queue[1:]
	}
	return
}

func (kb *Keyboard) Attach(m *vm.Machine) error {
	return m.HandleInput(kb.Port, kb.next)
}

func (kb *Keyboard) Reset() {
	kb.mutex.Lock()
	defer kb.mutex.Unlock()

	kb.queue = nil
}
