package sfx

import (
	"context"
	"errors"
	"testing"
	"time"
)

// effectsBank provides the default sound names as short synthesized blips
func effectsBank() Bank {
	b := make(Bank)
	for _, name := range []string{"click", "select", "hover", "confirm", "move", "capture", "check"} {
		b[name] = SoundConfig{MaxInstances: 5, Synth: blip()}
	}
	return b
}

func newTestEffects(t *testing.T) (*Effects, *Manager) {
	t.Helper()
	m, _, _ := newTestManager(t, 8, effectsBank())
	return NewEffects(m), m
}

// TestConvenienceShortcuts verifies the UI shortcuts play their sounds, with
// the hover shortcut at reduced request volume
func TestConvenienceShortcuts(t *testing.T) {
	e, m := newTestEffects(t)

	if err := e.PlayClick(); err != nil {
		t.Errorf("PlayClick failed: %v", err)
	}
	if err := e.PlaySelect(); err != nil {
		t.Errorf("PlaySelect failed: %v", err)
	}
	if err := e.PlayConfirm(); err != nil {
		t.Errorf("PlayConfirm failed: %v", err)
	}
	if err := e.PlayHover(); err != nil {
		t.Errorf("PlayHover failed: %v", err)
	}

	m.mu.Lock()
	var hoverVol float64 = -1
	for _, inst := range m.instances {
		if inst.name == "hover" {
			hoverVol = inst.reqVol
		}
	}
	m.mu.Unlock()
	if hoverVol != 0.7 {
		t.Errorf("Expected hover request volume 0.7, got %f", hoverVol)
	}
}

// TestPlayRandomGroup verifies random selection picks a loaded group member
func TestPlayRandomGroup(t *testing.T) {
	e, _ := newTestEffects(t)
	e.Preload("click", "select", "hover", "confirm")

	members := map[string]bool{"click": true, "select": true, "hover": true, "confirm": true}
	name, err := e.PlayRandom("ui", 1.0)
	if err != nil {
		t.Fatalf("PlayRandom failed: %v", err)
	}
	if !members[name] {
		t.Errorf("Expected a ui group member, got %q", name)
	}
}

// TestPlayRandomErrors verifies the unknown-group and empty-group failures
func TestPlayRandomErrors(t *testing.T) {
	e, _ := newTestEffects(t)

	if _, err := e.PlayRandom("nonexistent", 1.0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown group, got %v", err)
	}

	e.DefineGroup("ghosts", "phantom1", "phantom2")
	if _, err := e.PlayRandom("ghosts", 1.0); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded for group with nothing loaded, got %v", err)
	}
}

// TestDefineGroupReplaces verifies redefining a group swaps its members
func TestDefineGroupReplaces(t *testing.T) {
	e, _ := newTestEffects(t)
	e.Preload("move")

	e.DefineGroup("ui", "move")
	name, err := e.PlayRandom("ui", 1.0)
	if err != nil {
		t.Fatalf("PlayRandom failed: %v", err)
	}
	if name != "move" {
		t.Errorf("Expected redefined group to play move, got %q", name)
	}
}

// TestPlaySpatial verifies linear distance attenuation with its volume floor
// and the audible-range cutoff
func TestPlaySpatial(t *testing.T) {
	e, m := newTestEffects(t)
	e.Preload("move")

	// At or beyond max distance nothing plays
	if err := e.PlaySpatial("move", 10, 0, 0, 0, 10); !errors.Is(err, ErrInaudible) {
		t.Errorf("Expected ErrInaudible at max distance, got %v", err)
	}
	if err := e.PlaySpatial("move", 0, 0, 0, 0, 0); !errors.Is(err, ErrInaudible) {
		t.Errorf("Expected ErrInaudible for non-positive range, got %v", err)
	}
	if playing := m.Playing(); len(playing) != 0 {
		t.Fatalf("Expected nothing playing after inaudible requests, got %v", playing)
	}

	// 3-4-5 triangle: distance 5 of max 10 halves the volume
	if err := e.PlaySpatial("move", 3, 4, 0, 0, 10); err != nil {
		t.Fatalf("PlaySpatial failed: %v", err)
	}
	m.mu.Lock()
	got := m.instances[len(m.instances)-1].reqVol
	m.mu.Unlock()
	if got != 0.5 {
		t.Errorf("Expected request volume 0.5 at half range, got %f", got)
	}

	// Near the edge the volume floors at 0.1
	if err := e.PlaySpatial("move", 0, 9.9, 0, 0, 10); err != nil {
		t.Fatalf("PlaySpatial failed: %v", err)
	}
	m.mu.Lock()
	got = m.instances[len(m.instances)-1].reqVol
	m.mu.Unlock()
	if got != 0.1 {
		t.Errorf("Expected request volume floored at 0.1, got %f", got)
	}
}

// TestPreload verifies per-sound results without early abort
func TestPreload(t *testing.T) {
	e, m := newTestEffects(t)

	results := e.Preload("click", "move", "no-such-sound")
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results["click"] != nil || results["move"] != nil {
		t.Errorf("Expected known sounds to load, got %v", results)
	}
	if !errors.Is(results["no-such-sound"], ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown sound, got %v", results["no-such-sound"])
	}

	loaded := m.Loaded()
	if len(loaded) != 2 {
		t.Errorf("Expected 2 loaded sounds, got %v", loaded)
	}
}

// TestStatus verifies the snapshot counters
func TestStatus(t *testing.T) {
	e, _ := newTestEffects(t)
	e.Preload("click", "select")

	if err := e.Play("click", 1.0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	st := e.Status()
	if st.LoadedSounds != 2 {
		t.Errorf("Expected 2 loaded sounds, got %d", st.LoadedSounds)
	}
	if st.PlayingNow != 1 {
		t.Errorf("Expected 1 playing, got %d", st.PlayingNow)
	}
	if st.FreeChannels != 7 {
		t.Errorf("Expected 7 free channels, got %d", st.FreeChannels)
	}
	if st.MasterVolume != 1.0 || st.EffectsVolume != 1.0 {
		t.Errorf("Expected unit volumes, got %f/%f", st.MasterVolume, st.EffectsVolume)
	}
}

// TestPlaySequence verifies steps play in order on their delays
func TestPlaySequence(t *testing.T) {
	e, m := newTestEffects(t)
	e.Preload("move", "capture")

	e.PlaySequence(context.Background(), 1.0,
		SequenceStep{Name: "move", Delay: time.Millisecond},
		SequenceStep{Name: "capture", Delay: time.Millisecond},
	)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		moveInfo, _ := m.Info("move")
		captureInfo, _ := m.Info("capture")
		if moveInfo.PlayCount == 1 && captureInfo.PlayCount == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("Expected both sequence steps to play before the deadline")
}

// TestPlaySequenceCancel verifies a canceled context stops the remainder
func TestPlaySequenceCancel(t *testing.T) {
	e, m := newTestEffects(t)
	e.Preload("move")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.PlaySequence(ctx, 1.0, SequenceStep{Name: "move", Delay: 20 * time.Millisecond})

	time.Sleep(60 * time.Millisecond)
	info, _ := m.Info("move")
	if info.PlayCount != 0 {
		t.Errorf("Expected no plays after cancellation, got %d", info.PlayCount)
	}
}
