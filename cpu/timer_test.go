package cpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimers_Tick(t *testing.T) {
	assert := assert.New(t)

	tm := &Timers{Delay: 2, Sound: 1}
	assert.True(tm.SoundActive())

	assert.False(tm.Tick(10 * time.Millisecond))
	assert.Equal(uint8(2), tm.Delay)

	assert.True(tm.Tick(7 * time.Millisecond))
	assert.Equal(uint8(1), tm.Delay)
	assert.Equal(uint8(0), tm.Sound)
	assert.False(tm.SoundActive())

	// Accumulator restarted; a huge interval only decrements once.
	assert.True(tm.Tick(time.Hour))
	assert.Equal(uint8(0), tm.Delay)

	// Never below zero.
	assert.True(tm.Tick(TIMER_PERIOD))
	assert.Equal(uint8(0), tm.Delay)
	assert.Equal(uint8(0), tm.Sound)

	// Negative intervals (clock steps backward) are ignored.
	tm.Delay = 5
	assert.False(tm.Tick(-time.Second))
	assert.Equal(uint8(5), tm.Delay)
}

func TestTimers_Reset(t *testing.T) {
	assert := assert.New(t)

	tm := &Timers{Delay: 2, Sound: 3}
	tm.Tick(time.Millisecond)
	tm.Reset()

	assert.Equal(Timers{}, *tm)
}
