package sfx

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Tone is one synthesized note: an oscillator shaped by an attack/release
// envelope and scaled by Gain
type Tone struct {
	Freq     float64
	Wave     WaveType
	Duration time.Duration
	Attack   time.Duration
	Release  time.Duration
	Gain     float64
}

// SynthSpec describes a fully synthesized sound. Tones are mixed together;
// with Chain set they play back to back instead.
type SynthSpec struct {
	Tones []Tone
	Chain bool
}

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// newOscillator creates an oscillator streaming duration worth of samples
func newOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// newEnvelope shapes s with a linear attack and release over duration
func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	if att+rel > total {
		rel = total - att
		if rel < 0 {
			att, rel = total, 0
		}
	}
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.totalSamples - e.releaseSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			remaining := e.totalSamples - e.position
			vol = float64(remaining) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// gain scales a stream by a constant factor
type gain struct {
	streamer beep.Streamer
	factor   float64
}

func (g *gain) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= g.factor
		samples[i][1] *= g.factor
	}
	return n, ok
}

func (g *gain) Err() error { return g.streamer.Err() }

// streamer builds the playback stream for one tone
func (t Tone) streamer(rate beep.SampleRate) beep.Streamer {
	osc := newOscillator(t.Freq, t.Duration, t.Wave, rate)
	shaped := newEnvelope(osc, t.Duration, t.Attack, t.Release, rate)
	factor := t.Gain
	if factor <= 0 {
		factor = 1.0
	}
	return &gain{streamer: shaped, factor: factor}
}

// render synthesizes the spec once into a buffer at the given format
func (s *SynthSpec) render(format beep.Format) *beep.Buffer {
	streamers := make([]beep.Streamer, 0, len(s.Tones))
	for _, t := range s.Tones {
		streamers = append(streamers, t.streamer(format.SampleRate))
	}

	var combined beep.Streamer
	switch {
	case len(streamers) == 0:
		return beep.NewBuffer(format)
	case s.Chain:
		combined = beep.Seq(streamers...)
	default:
		combined = beep.Mix(streamers...)
	}

	buf := beep.NewBuffer(format)
	buf.Append(combined)
	return buf
}

// DefaultBank returns the built-in synthesized sound set: the UI and board
// sounds of a Xiangqi game, playable without any asset files
func DefaultBank() Bank {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }

	return Bank{
		// UI sounds
		"click": {
			Category: CategoryUI, MaxInstances: 2, MinDelay: ms(40),
			Synth: &SynthSpec{Tones: []Tone{
				{Freq: 1200, Wave: WaveSquare, Duration: ms(30), Attack: ms(2), Release: ms(20), Gain: 0.5},
			}},
		},
		"select": {
			Category: CategoryUI, MaxInstances: 2, MinDelay: ms(60),
			Synth: &SynthSpec{Tones: []Tone{
				{Freq: 880, Wave: WaveSine, Duration: ms(90), Attack: ms(5), Release: ms(70), Gain: 0.7},
			}},
		},
		"hover": {
			BaseVolume: Volume(0.7), Category: CategoryUI, MaxInstances: 1, MinDelay: ms(80),
			Synth: &SynthSpec{Tones: []Tone{
				{Freq: 440, Wave: WaveSine, Duration: ms(50), Attack: ms(10), Release: ms(35), Gain: 0.4},
			}},
		},
		"confirm": {
			Category: CategoryUI, MaxInstances: 2, MinDelay: ms(100),
			Synth: &SynthSpec{Chain: true, Tones: []Tone{
				{Freq: 987.77, Wave: WaveSquare, Duration: ms(70), Attack: ms(5), Release: ms(30), Gain: 0.5},
				{Freq: 1318.51, Wave: WaveSquare, Duration: ms(160), Attack: ms(5), Release: ms(120), Gain: 0.5},
			}},
		},

		// Board sounds
		"move": {
			Category: CategoryGame, MaxInstances: 2, MinDelay: ms(60),
			Synth: &SynthSpec{Tones: []Tone{
				{Freq: 180, Wave: WaveSine, Duration: ms(70), Attack: ms(2), Release: ms(55), Gain: 0.9},
			}},
		},
		"capture": {
			Category: CategoryGame, MaxInstances: 2, MinDelay: ms(60),
			Synth: &SynthSpec{Tones: []Tone{
				{Freq: 140, Wave: WaveSaw, Duration: ms(110), Attack: ms(2), Release: ms(80), Gain: 0.6},
				{Freq: 0, Wave: WaveNoise, Duration: ms(60), Attack: ms(2), Release: ms(45), Gain: 0.25},
			}},
		},
		"check": {
			Category: CategoryGame, MaxInstances: 1, MinDelay: ms(250),
			Synth: &SynthSpec{Tones: []Tone{
				{Freq: 660, Wave: WaveSine, Duration: ms(400), Attack: ms(5), Release: ms(350), Gain: 0.7},
				{Freq: 1320, Wave: WaveSine, Duration: ms(400), Attack: ms(5), Release: ms(180), Gain: 0.3},
			}},
		},
		"win": {
			Category: CategoryGame, MaxInstances: 1, MinDelay: ms(500),
			Synth: &SynthSpec{Chain: true, Tones: []Tone{
				{Freq: 523.25, Wave: WaveSquare, Duration: ms(120), Attack: ms(5), Release: ms(60), Gain: 0.5},
				{Freq: 659.25, Wave: WaveSquare, Duration: ms(120), Attack: ms(5), Release: ms(60), Gain: 0.5},
				{Freq: 783.99, Wave: WaveSquare, Duration: ms(320), Attack: ms(5), Release: ms(250), Gain: 0.5},
			}},
		},
		"lose": {
			Category: CategoryGame, MaxInstances: 1, MinDelay: ms(500),
			Synth: &SynthSpec{Chain: true, Tones: []Tone{
				{Freq: 392.00, Wave: WaveSaw, Duration: ms(160), Attack: ms(5), Release: ms(80), Gain: 0.4},
				{Freq: 329.63, Wave: WaveSaw, Duration: ms(160), Attack: ms(5), Release: ms(80), Gain: 0.4},
				{Freq: 261.63, Wave: WaveSaw, Duration: ms(380), Attack: ms(5), Release: ms(300), Gain: 0.4},
			}},
		},
	}
}
