package io

import (
	"encoding/binary"
	"math"
)

const (
	SAMPLE_RATE = 44100 // Output sample rate, in Hz.
	TONE_HZ     = 440   // Beeper pitch.
	TONE_VOLUME = 0.25  // Beeper amplitude, of full scale.
)

// Square is an endless mono square wave, as 32-bit little endian floats.
type Square struct {
	SampleRate int
	Frequency  int
	Volume     float32

	phase int
}

// Read fills p with whole samples.
func (sq *Square) Read(p []byte) (n int, err error) {
	period := max(sq.SampleRate/max(sq.Frequency, 1), 2)

	for n+4 <= len(p) {
		value := sq.Volume
		if sq.phase >= period/2 {
			value = -value
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(value))
		n += 4
		sq.phase = (sq.phase + 1) % period
	}

	return
}
