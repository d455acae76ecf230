package device

import (
	"iter"
	"maps"
	"strconv"
)

// Default port assignments.
const (
	PORT_KEYBOARD   = 1
	PORT_CONSOLE    = 2
	PORT_DEBUG      = 3
	PORT_RANDOM     = 9
	PORT_TIMER0     = 10 // First of TIMER_COUNT consecutive ports.
	PORT_CONTROLLER = 100
	PORT_DISK       = 200
)

func defines(names map[string]int) iter.Seq2[string, string] {
	values := make(map[string]string, len(names))
	for name, value := range names {
		values[name] = strconv.Itoa(value)
	}
	return maps.All(values)
}
