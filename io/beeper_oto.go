//go:build !headless

package io

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoBeeper plays a square wave through the host audio device.
type OtoBeeper struct {
	ctx    *oto.Context
	player *oto.Player
	mutex  sync.Mutex
}

var _ Beeper = (*OtoBeeper)(nil)

// NewBeeper opens the host audio device.
func NewBeeper() (beeper *OtoBeeper, err error) {
	op := &oto.NewContextOptions{
		SampleRate:   SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return
	}
	<-ready

	beeper = &OtoBeeper{
		ctx: ctx,
	}
	beeper.player = ctx.NewPlayer(&Square{
		SampleRate: SAMPLE_RATE,
		Frequency:  TONE_HZ,
		Volume:     TONE_VOLUME,
	})

	return
}

func (ob *OtoBeeper) Start() {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.player != nil && !ob.player.IsPlaying() {
		ob.player.Play()
	}
}

func (ob *OtoBeeper) Stop() {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.player != nil && ob.player.IsPlaying() {
		ob.player.Pause()
	}
}

func (ob *OtoBeeper) Close() (err error) {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.player != nil {
		err = ob.player.Close()
		ob.player = nil
	}
	return
}
