package io

import (
	"context"
	"sync"
)

// Tone is a mailbox carrying the tone on/off state from the emulator to a
// beeper running on another goroutine. Only changes are sent.
type Tone struct {
	mutex  sync.Mutex
	on     bool
	change chan bool
}

// NewTone creates a silent tone mailbox.
func NewTone() *Tone {
	return &Tone{
		change: make(chan bool, 1),
	}
}

// On returns the last state set.
func (tone *Tone) On() bool {
	tone.mutex.Lock()
	defer tone.mutex.Unlock()

	return tone.on
}

// Set updates the tone state. A pending unreceived change is replaced, so
// a slow receiver only sees the latest state.
func (tone *Tone) Set(on bool) (changed bool) {
	tone.mutex.Lock()
	defer tone.mutex.Unlock()

	if on == tone.on {
		return
	}
	tone.on = on

	select {
	case <-tone.change:
	default:
	}
	tone.change <- on

	changed = true
	return
}

// Changes returns the channel of state changes.
func (tone *Tone) Changes() <-chan bool {
	return tone.change
}

// Play drives a beeper from the state changes until the context is done.
// The beeper is stopped on return.
func (tone *Tone) Play(ctx context.Context, beeper Beeper) error {
	defer beeper.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case on := <-tone.change:
			if on {
				beeper.Start()
			} else {
				beeper.Stop()
			}
		}
	}
}
