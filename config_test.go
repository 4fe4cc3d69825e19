package sfx

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies the standard settings and the built-in bank
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("Expected audio enabled by default")
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", cfg.SampleRate)
	}
	if cfg.Channels != 8 {
		t.Errorf("Expected 8 channels, got %d", cfg.Channels)
	}
	if cfg.MasterVolume != 0.5 {
		t.Errorf("Expected master volume 0.5, got %f", cfg.MasterVolume)
	}
	if cfg.EffectsVolume != 1.0 {
		t.Errorf("Expected effects volume 1.0, got %f", cfg.EffectsVolume)
	}
	if cfg.DefaultMaxInstances != 3 {
		t.Errorf("Expected default max instances 3, got %d", cfg.DefaultMaxInstances)
	}
	if cfg.DefaultMinDelay != 50*time.Millisecond {
		t.Errorf("Expected default min delay 50ms, got %v", cfg.DefaultMinDelay)
	}
	if cfg.StaleAfter != 10*time.Second {
		t.Errorf("Expected stale bound 10s, got %v", cfg.StaleAfter)
	}
	if len(cfg.Bank) == 0 {
		t.Error("Expected default bank to be populated")
	}
	for _, name := range []string{"click", "move", "capture", "check", "win", "lose"} {
		if _, ok := cfg.Bank[name]; !ok {
			t.Errorf("Expected default bank to contain %q", name)
		}
	}
}

// TestLoadConfigEnv verifies environment variables override the defaults
func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("SFX_ENABLED", "false")
	t.Setenv("SFX_MASTER_VOLUME", "30")
	t.Setenv("SFX_EFFECTS_VOLUME", "80")
	t.Setenv("SFX_SAMPLE_RATE", "48000")
	t.Setenv("SFX_CHANNELS", "4")
	t.Setenv("SFX_DIR", "assets/audio")

	cfg := LoadConfig()

	if cfg.Enabled {
		t.Error("Expected audio disabled via SFX_ENABLED")
	}
	if cfg.MasterVolume != 0.3 {
		t.Errorf("Expected master volume 0.3, got %f", cfg.MasterVolume)
	}
	if cfg.EffectsVolume != 0.8 {
		t.Errorf("Expected effects volume 0.8, got %f", cfg.EffectsVolume)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("Expected sample rate 48000, got %d", cfg.SampleRate)
	}
	if cfg.Channels != 4 {
		t.Errorf("Expected 4 channels, got %d", cfg.Channels)
	}
	if cfg.Dir != "assets/audio" {
		t.Errorf("Expected dir assets/audio, got %s", cfg.Dir)
	}
}

// TestLoadConfigEnvClamping verifies out-of-range and malformed values fall
// back safely
func TestLoadConfigEnvClamping(t *testing.T) {
	t.Setenv("SFX_MASTER_VOLUME", "150")
	t.Setenv("SFX_EFFECTS_VOLUME", "not-a-number")
	t.Setenv("SFX_SAMPLE_RATE", "-1")
	t.Setenv("SFX_CHANNELS", "-3")

	cfg := LoadConfig()

	if cfg.MasterVolume != 1.0 {
		t.Errorf("Expected master volume clamped to 1.0, got %f", cfg.MasterVolume)
	}
	if cfg.EffectsVolume != 1.0 {
		t.Errorf("Expected effects volume to keep default 1.0, got %f", cfg.EffectsVolume)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("Expected sample rate to keep default, got %d", cfg.SampleRate)
	}
	if cfg.Channels != 8 {
		t.Errorf("Expected channels to keep default, got %d", cfg.Channels)
	}
}

// TestLoadBankFile verifies the JSON bank wire format
func TestLoadBankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	data := `{
		"move":    {"file": "sounds/move.wav", "volume": 0.6, "category": "game", "max_instances": 2, "min_delay_ms": 120},
		"capture": {"category": "game"},
		"mute":    {"volume": 0}
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	bank, err := LoadBankFile(path)
	if err != nil {
		t.Fatalf("LoadBankFile failed: %v", err)
	}
	if len(bank) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(bank))
	}

	move := bank["move"]
	if move.File != "sounds/move.wav" {
		t.Errorf("Expected file sounds/move.wav, got %s", move.File)
	}
	if move.BaseVolume == nil || *move.BaseVolume != 0.6 {
		t.Errorf("Expected base volume 0.6, got %v", move.BaseVolume)
	}
	if move.Category != CategoryGame {
		t.Errorf("Expected game category, got %s", move.Category)
	}
	if move.MaxInstances != 2 {
		t.Errorf("Expected max instances 2, got %d", move.MaxInstances)
	}
	if move.MinDelay != 120*time.Millisecond {
		t.Errorf("Expected min delay 120ms, got %v", move.MinDelay)
	}

	// Omitted fields stay unset until normalization at load time
	capture := bank["capture"]
	if capture.BaseVolume != nil || capture.MaxInstances != 0 {
		t.Errorf("Expected omitted fields to stay unset, got %+v", capture)
	}

	// An explicit zero volume survives the wire format
	mute := bank["mute"]
	if mute.BaseVolume == nil || *mute.BaseVolume != 0 {
		t.Errorf("Expected explicit zero volume, got %v", mute.BaseVolume)
	}
}

// TestLoadBankFileErrors verifies missing and malformed bank files fail
func TestLoadBankFileErrors(t *testing.T) {
	if _, err := LoadBankFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing bank file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadBankFile(path); err == nil {
		t.Error("Expected error for malformed bank file")
	}
}

// TestNormalize verifies explicit bank entries are clamped but their zero
// min delay and zero base volume are preserved
func TestNormalize(t *testing.T) {
	cfg := DefaultConfig()

	sc := cfg.normalize(SoundConfig{MinDelay: 0, MaxInstances: 0})
	if sc.MinDelay != 0 {
		t.Errorf("Expected explicit zero min delay honored, got %v", sc.MinDelay)
	}
	if sc.MaxInstances != 1 {
		t.Errorf("Expected max instances floored to 1, got %d", sc.MaxInstances)
	}
	if sc.BaseVolume == nil || *sc.BaseVolume != 1.0 {
		t.Errorf("Expected unset base volume to become 1.0, got %v", sc.BaseVolume)
	}
	if sc.Category != CategoryOther {
		t.Errorf("Expected default category, got %s", sc.Category)
	}

	sc = cfg.normalize(SoundConfig{BaseVolume: Volume(3.0), MinDelay: -time.Second})
	if *sc.BaseVolume != 1.0 {
		t.Errorf("Expected base volume clamped to 1.0, got %f", *sc.BaseVolume)
	}
	if sc.MinDelay != 0 {
		t.Errorf("Expected negative min delay floored to 0, got %v", sc.MinDelay)
	}

	// A silent sound is expressible
	sc = cfg.normalize(SoundConfig{BaseVolume: Volume(0)})
	if *sc.BaseVolume != 0 {
		t.Errorf("Expected explicit zero base volume honored, got %f", *sc.BaseVolume)
	}
}

// TestDefaultSound verifies sounds without a bank entry inherit the manager
// defaults
func TestDefaultSound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultMaxInstances = 7
	cfg.DefaultMinDelay = 90 * time.Millisecond

	sc := cfg.defaultSound()
	if sc.BaseVolume == nil || *sc.BaseVolume != 1.0 {
		t.Errorf("Expected base volume 1.0, got %v", sc.BaseVolume)
	}
	if sc.MaxInstances != 7 {
		t.Errorf("Expected max instances 7, got %d", sc.MaxInstances)
	}
	if sc.MinDelay != 90*time.Millisecond {
		t.Errorf("Expected min delay 90ms, got %v", sc.MinDelay)
	}
	if sc.Category != CategoryOther {
		t.Errorf("Expected default category, got %s", sc.Category)
	}
}
