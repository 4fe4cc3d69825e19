package sfx

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Backend is the playback device boundary. The manager treats it as a black
// box: streamers handed to Play run asynchronously until drained, and any
// mutation of a live streamer must happen between Lock and Unlock.
type Backend interface {
	// Init prepares the device for the given format; idempotent
	Init(rate beep.SampleRate, bufferSize time.Duration) error

	// Play starts a streamer; it is dropped once drained
	Play(s beep.Streamer)

	// Lock and Unlock bracket mutations of live streamers
	Lock()
	Unlock()

	// Clear drops all live streamers
	Clear()

	// Close releases the device
	Close()
}

// SpeakerBackend plays through the beep speaker (the real audio device)
type SpeakerBackend struct {
	initialized bool
}

// NewSpeakerBackend creates an uninitialized speaker backend
func NewSpeakerBackend() *SpeakerBackend {
	return &SpeakerBackend{}
}

func (b *SpeakerBackend) Init(rate beep.SampleRate, bufferSize time.Duration) error {
	if b.initialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(bufferSize)); err != nil {
		return err
	}
	b.initialized = true
	return nil
}

func (b *SpeakerBackend) Play(s beep.Streamer) { speaker.Play(s) }
func (b *SpeakerBackend) Lock()                { speaker.Lock() }
func (b *SpeakerBackend) Unlock()              { speaker.Unlock() }
func (b *SpeakerBackend) Clear()               { speaker.Clear() }

func (b *SpeakerBackend) Close() {
	if !b.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	b.initialized = false
}

// HeadlessBackend runs without an audio device. Streamers are held until
// Pump drives them; used in tests and as the silent-mode fallback when no
// device is available.
type HeadlessBackend struct {
	mu     sync.Mutex
	active []beep.Streamer
}

// NewHeadlessBackend creates a headless backend
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{}
}

func (b *HeadlessBackend) Init(_ beep.SampleRate, _ time.Duration) error {
	return nil
}

func (b *HeadlessBackend) Play(s beep.Streamer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = append(b.active, s)
}

func (b *HeadlessBackend) Lock()   { b.mu.Lock() }
func (b *HeadlessBackend) Unlock() { b.mu.Unlock() }

func (b *HeadlessBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = b.active[:0]
}

func (b *HeadlessBackend) Close() {
	b.Clear()
}

// Pump streams n samples from every live streamer, discarding the audio.
// Drained streamers are dropped, which fires their completion callbacks
// exactly as the speaker would.
func (b *HeadlessBackend) Pump(n int) {
	scratch := make([][2]float64, 512)

	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.active[:0]
	for _, s := range b.active {
		left, drained := n, false
		for left > 0 {
			chunk := scratch
			if left < len(chunk) {
				chunk = chunk[:left]
			}
			sn, ok := s.Stream(chunk)
			left -= sn
			if !ok {
				drained = true
				break
			}
		}
		if !drained {
			remaining = append(remaining, s)
		}
	}
	b.active = remaining
}

// Active reports the number of live streamers
func (b *HeadlessBackend) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}
