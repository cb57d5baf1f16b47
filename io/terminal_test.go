//go:build unix

package io

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8vm/cpu"
)

func TestTerminal_Feed(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	tm := NewTerminal(-1, kp)

	tm.Feed('q')
	tm.Feed('V')
	tm.Feed('p')
	assert.Equal(cpu.MakeKeys(0x4, 0xF), kp.Keys())

	select {
	case <-tm.Done():
		assert.Fail("quit before escape")
	default:
	}

	tm.Feed(KEY_ESCAPE)
	tm.Feed(KEY_CTRL_C)
	_, open := <-tm.Done()
	assert.False(open)
}

func TestTerminal_NotTerminal(t *testing.T) {
	assert := assert.New(t)

	pr, pw, err := os.Pipe()
	if !assert.NoError(err) {
		return
	}
	defer pr.Close()
	defer pw.Close()

	tm := NewTerminal(int(pr.Fd()), &Keypad{})
	assert.ErrorIs(tm.Start(), ErrNotTerminal)
	tm.Stop()
}
