package io

import (
	"errors"

	"github.com/ezrec/chip8vm/translate"
)

var f = translate.From

var (
	// Host errors
	ErrNotTerminal       = errors.New(f("not a terminal"))
	ErrWindowUnavailable = errors.New(f("window support not built"))
	ErrRomEmpty          = errors.New(f("rom empty"))
)
