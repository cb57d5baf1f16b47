package cpu

import (
	"time"
)

const (
	TIMER_HZ     = 60                     // Timer decrement rate.
	TIMER_PERIOD = time.Second / TIMER_HZ // Interval between decrements.
)

// Timers are the delay and sound timers, counting down at TIMER_HZ
// independently of the instruction rate.
type Timers struct {
	Delay uint8
	Sound uint8

	elapsed time.Duration
}

// Tick accumulates elapsed wall-clock time. Once a full TIMER_PERIOD has
// accumulated, both timers are decremented by one (never below zero) and
// the accumulator restarts. At most one decrement happens per call.
func (tm *Timers) Tick(elapsed time.Duration) (decremented bool) {
	if elapsed > 0 {
		tm.elapsed += elapsed
	}

	if tm.elapsed < TIMER_PERIOD {
		return
	}

	if tm.Delay > 0 {
		tm.Delay--
	}
	if tm.Sound > 0 {
		tm.Sound--
	}
	tm.elapsed = 0

	return true
}

// SoundActive is true while the tone should be audible.
func (tm *Timers) SoundActive() bool {
	return tm.Sound > 0
}

// Reset zeros both timers and the accumulator.
func (tm *Timers) Reset() {
	*tm = Timers{}
}
