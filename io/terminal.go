//go:build unix

package io

import (
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	KEY_ESCAPE = 0x1b
	KEY_CTRL_C = 0x03
)

// TERMINAL_POLL is the stdin poll interval when no input is pending.
const TERMINAL_POLL = 5 * time.Millisecond

// Terminal reads raw keystrokes from a terminal into a Keypad.
// Escape or Ctrl-C closes Done.
type Terminal struct {
	Verbose bool
	Keypad  *Keypad

	fd       int
	oldState *term.State
	nonblock bool

	stopCh  chan struct{}
	done    chan struct{}
	quit    chan struct{}
	stopped sync.Once
	quitted sync.Once
}

// NewTerminal creates a terminal reader on a file descriptor.
func NewTerminal(fd int, keypad *Keypad) *Terminal {
	return &Terminal{
		Keypad: keypad,
		fd:     fd,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}
}

// Done is closed when the user asks to quit.
func (tm *Terminal) Done() <-chan struct{} {
	return tm.quit
}

// Start puts the terminal in raw non-blocking mode and starts reading.
// Call Stop to restore it.
func (tm *Terminal) Start() (err error) {
	if !term.IsTerminal(tm.fd) {
		err = ErrNotTerminal
		return
	}

	tm.oldState, err = term.MakeRaw(tm.fd)
	if err != nil {
		return
	}

	err = unix.SetNonblock(tm.fd, true)
	if err != nil {
		_ = term.Restore(tm.fd, tm.oldState)
		tm.oldState = nil
		return
	}
	tm.nonblock = true

	go tm.read()

	return
}

func (tm *Terminal) read() {
	defer close(tm.done)

	buf := make([]byte, 16)
	for {
		select {
		case <-tm.stopCh:
			return
		default:
		}

		n, err := unix.Read(tm.fd, buf)
		for _, b := range buf[:max(n, 0)] {
			tm.Feed(b)
		}
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || (err == nil && n == 0) {
			time.Sleep(TERMINAL_POLL)
			continue
		}
		if err != nil {
			if tm.Verbose {
				log.Printf("terminal: %v", err)
			}
			return
		}
	}
}

// Feed handles one input byte.
func (tm *Terminal) Feed(b byte) {
	switch b {
	case KEY_ESCAPE, KEY_CTRL_C:
		tm.quitted.Do(func() { close(tm.quit) })
	default:
		if !tm.Keypad.PressRune(rune(b)) && tm.Verbose {
			log.Printf("terminal: unmapped key %q", rune(b))
		}
	}
}

// Stop stops reading and restores the terminal.
func (tm *Terminal) Stop() {
	tm.stopped.Do(func() {
		close(tm.stopCh)
	})
	if tm.nonblock {
		<-tm.done
		_ = unix.SetNonblock(tm.fd, false)
		tm.nonblock = false
	}
	if tm.oldState != nil {
		_ = term.Restore(tm.fd, tm.oldState)
		tm.oldState = nil
	}
}
