package io

import (
	"sync"
)

// Silent is a beeper that only records its state.
type Silent struct {
	mutex   sync.Mutex
	playing bool
	starts  int
}

var _ Beeper = (*Silent)(nil)

func (sb *Silent) Start() {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	if !sb.playing {
		sb.starts++
	}
	sb.playing = true
}

func (sb *Silent) Stop() {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	sb.playing = false
}

// Playing is true between Start and Stop.
func (sb *Silent) Playing() bool {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	return sb.playing
}

// Starts counts the silent to playing transitions.
func (sb *Silent) Starts() int {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	return sb.starts
}

func (sb *Silent) Close() error {
	sb.Stop()
	return nil
}
