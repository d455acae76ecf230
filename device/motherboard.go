package device

import (
	"iter"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/ezrec/vm16/vm"
)

// TIMER_COUNT is the number of countdown timers on the motherboard.
const TIMER_COUNT = 4

type timer struct {
	start  time.Time
	target int // Milliseconds.
}

// Motherboard provides a random number generator and countdown timers.
//
// Writing the random port reseeds the generator; reading it returns a
// random signed 16-bit value. Writing a timer port starts a countdown of
// |value| milliseconds; reading it returns the milliseconds remaining.
type Motherboard struct {
	RandomPort uint16
	TimerPort  uint16           // First timer port; the rest follow it.
	Clock      func() time.Time // Time source, time.Now if nil.

	rng    *rand.Rand
	timers [TIMER_COUNT]timer
}

func (mb *Motherboard) now() time.Time {
	if mb.Clock != nil {
		return mb.Clock()
	}
	return time.Now()
}

func (mb *Motherboard) Defines() iter.Seq2[string, string] {
	names := map[string]int{"PORT_RANDOM": int(mb.RandomPort)}
	for n := range TIMER_COUNT {
		names["PORT_TIMER"+strconv.Itoa(n)] = int(mb.TimerPort) + n
	}
	return defines(names)
}

// Seed restarts the random sequence.
func (mb *Motherboard) Seed(seed uint64) {
	mb.rng = rand.New(rand.NewPCG(seed, 0))
}

// Random returns the next random value.
func (mb *Motherboard) Random() uint16 {
	if mb.rng == nil {
		mb.Seed(rand.Uint64())
	}
	return uint16(math.MinInt16 + mb.rng.IntN(math.MaxUint16))
}

// Remaining returns the milliseconds left on timer n, never negative.
func (mb *Motherboard) Remaining(n int) uint16 {
	tm := &mb.timers[n]
	elapsed := int(mb.now().Sub(tm.start).Milliseconds())
	return uint16(max(tm.target-elapsed, 0))
}

// Start starts timer n counting down |value| milliseconds.
func (mb *Motherboard) Start(n int, value uint16) {
	target := int(int16(value))
	if target < 0 {
		target = -target
	}
	mb.timers[n] = timer{start: mb.now(), target: target}
}

func (mb *Motherboard) Attach(m *vm.Machine) (err error) {
	err = m.HandleOutput(mb.RandomPort, func(value uint16) {
		mb.Seed(uint64(int64(int16(value))))
	})
	if err != nil {
		return
	}
	err = m.HandleInput(mb.RandomPort, mb.Random)
	if err != nil {
		return
	}

	for n := range TIMER_COUNT {
		port := mb.TimerPort + uint16(n)
		err = m.HandleOutput(port, func(value uint16) {
			mb.Start(n, value)
		})
		if err != nil {
			return
		}
		err = m.HandleInput(port, func() uint16 {
			return mb.Remaining(n)
		})
		if err != nil {
			return
		}
	}

	return
}

func (mb *Motherboard) Reset() {
	mb.rng = nil
	for n := range mb.timers {
		mb.timers[n] = timer{}
	}
}
