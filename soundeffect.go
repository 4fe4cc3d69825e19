package sfx

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Effects is a convenience layer over a Manager: named sound groups with
// random selection, timed sequences, distance-attenuated playback, and
// shortcuts for the common UI sounds.
type Effects struct {
	m *Manager

	mu     sync.Mutex
	groups map[string][]string
	rng    *rand.Rand
}

// NewEffects wraps a manager. The built-in groups "ui" and "board" cover the
// default bank.
func NewEffects(m *Manager) *Effects {
	return &Effects{
		m: m,
		groups: map[string][]string{
			"ui":    {"click", "select", "hover", "confirm"},
			"board": {"move", "capture", "check"},
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Manager returns the wrapped manager
func (e *Effects) Manager() *Manager { return e.m }

// PlayClick plays the click sound
func (e *Effects) PlayClick() error { return e.m.Play("click") }

// PlaySelect plays the selection sound
func (e *Effects) PlaySelect() error { return e.m.Play("select") }

// PlayHover plays the hover sound at reduced request volume
func (e *Effects) PlayHover() error { return e.m.PlayVolume("hover", 0.7) }

// PlayConfirm plays the confirmation chime
func (e *Effects) PlayConfirm() error { return e.m.Play("confirm") }

// Play plays any sound with a request volume
func (e *Effects) Play(name string, vol float64) error {
	return e.m.PlayVolume(name, vol)
}

// DefineGroup registers or replaces a named sound group
func (e *Effects) DefineGroup(name string, members ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.groups[name] = append([]string(nil), members...)
}

// PlayRandom plays one randomly chosen loaded member of a group and returns
// its name. Unloaded members are skipped.
func (e *Effects) PlayRandom(group string, vol float64) (string, error) {
	e.mu.Lock()
	members, ok := e.groups[group]
	e.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: group %q", ErrNotFound, group)
	}

	loaded := make([]string, 0, len(members))
	for _, name := range members {
		if _, ok := e.m.Info(name); ok {
			loaded = append(loaded, name)
		}
	}
	if len(loaded) == 0 {
		return "", fmt.Errorf("%w: group %q has no loaded members", ErrNotLoaded, group)
	}

	e.mu.Lock()
	name := loaded[e.rng.Intn(len(loaded))]
	e.mu.Unlock()

	if err := e.m.PlayVolume(name, vol); err != nil {
		return "", err
	}
	return name, nil
}

// SequenceStep is one entry of a timed sequence: wait Delay, then play Name
type SequenceStep struct {
	Name  string
	Delay time.Duration
}

// PlaySequence plays steps on their own goroutine, waiting each step's delay
// before playing it. Canceling the context stops the remainder. Individual
// play failures (rate limits, missing sounds) do not abort the sequence.
func (e *Effects) PlaySequence(ctx context.Context, vol float64, steps ...SequenceStep) {
	if len(steps) == 0 {
		return
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()
		for _, step := range steps {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(step.Delay)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			_ = e.m.PlayVolume(step.Name, vol)
		}
	}()
}

// PlaySpatial plays a sound with linear distance attenuation between a
// source and a listener position. Beyond maxDistance nothing plays and
// ErrInaudible is returned; within range volume falls off linearly with a
// floor of 0.1.
func (e *Effects) PlaySpatial(name string, srcX, srcY, listenerX, listenerY, maxDistance float64) error {
	if maxDistance <= 0 {
		return fmt.Errorf("%w: %s", ErrInaudible, name)
	}
	dx := srcX - listenerX
	dy := srcY - listenerY
	distance := math.Hypot(dx, dy)
	if distance >= maxDistance {
		return fmt.Errorf("%w: %s", ErrInaudible, name)
	}

	vol := 1.0 - distance/maxDistance
	if vol < 0.1 {
		vol = 0.1
	}
	return e.m.PlayVolume(name, vol)
}

// Preload loads the named sounds up front; per-sound results, no early abort
func (e *Effects) Preload(names ...string) map[string]error {
	results := make(map[string]error, len(names))
	for _, name := range names {
		results[name] = e.m.Load(name)
	}
	return results
}

// Status is a snapshot of the playback system
type Status struct {
	LoadedSounds  int
	PlayingNow    int
	FreeChannels  int
	MasterVolume  float64
	EffectsVolume float64
}

// Status reports the current playback system state
func (e *Effects) Status() Status {
	return Status{
		LoadedSounds:  len(e.m.Loaded()),
		PlayingNow:    len(e.m.Playing()),
		FreeChannels:  e.m.FreeChannels(),
		MasterVolume:  e.m.MasterVolume(),
		EffectsVolume: e.m.EffectsVolume(),
	}
}

// StopAll stops every sound
func (e *Effects) StopAll() { e.m.StopAll() }

// PauseAll pauses every sound
func (e *Effects) PauseAll() { e.m.PauseAll() }

// ResumeAll resumes after PauseAll
func (e *Effects) ResumeAll() { e.m.ResumeAll() }
