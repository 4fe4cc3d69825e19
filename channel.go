package sfx

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// channel is one slot of the fixed playback pool. It is either free or bound
// to exactly one playback instance.
//
// The manager mutex guards ctrl and vol; busy and gen are atomics because
// completion callbacks fire on the backend's streaming goroutine and must
// not take the manager lock.
type channel struct {
	id   int
	gen  atomic.Uint64
	busy atomic.Bool

	ctrl *beep.Ctrl
	vol  *effects.Volume
}

// finisher returns the completion callback for one binding. A stale callback
// (the channel was rebound or stopped since) is a no-op.
func (ch *channel) finisher(gen uint64) func() {
	return func() {
		if ch.gen.Load() == gen {
			ch.busy.Store(false)
		}
	}
}

// invalidate detaches the channel from its current binding without touching
// the live streamer; pending completion callbacks become no-ops
func (ch *channel) invalidate() {
	ch.gen.Add(1)
	ch.busy.Store(false)
	ch.ctrl = nil
	ch.vol = nil
}

// newVolume wraps a streamer at the given linear volume.
// math.Log2(0) is -Inf, so zero volume is expressed as Silent.
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// applyVolume retunes a live volume wrapper; caller holds the backend lock
func applyVolume(v *effects.Volume, vol float64) {
	if vol <= 0 {
		v.Volume = 0
		v.Silent = true
		return
	}
	v.Volume = math.Log2(vol)
	v.Silent = false
}
