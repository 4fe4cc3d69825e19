package sfx

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds manager-wide settings
type Config struct {
	// Enabled gates audible output; a disabled manager still tracks state
	Enabled bool

	// SampleRate of the playback device in Hz
	SampleRate int

	// BufferSize determines playback latency
	BufferSize time.Duration

	// Channels is the fixed playback pool size
	Channels int

	// MasterVolume and EffectsVolume multiply every play, clamped to [0,1]
	MasterVolume  float64
	EffectsVolume float64

	// DefaultMaxInstances and DefaultMinDelay apply to sounds whose bank
	// entry leaves them unset
	DefaultMaxInstances int
	DefaultMinDelay     time.Duration

	// StaleAfter bounds how long a playback record may outlive its sound
	StaleAfter time.Duration

	// Dir is searched for sound files by the <name>.<ext> convention
	Dir string

	// Bank maps sound names to per-sound configuration
	Bank Bank
}

// Bank maps sound names to their configuration
type Bank map[string]SoundConfig

// DefaultConfig returns the standard configuration with the built-in
// synthesized sound bank
func DefaultConfig() *Config {
	return &Config{
		Enabled:             true,
		SampleRate:          44100,
		BufferSize:          50 * time.Millisecond,
		Channels:            8,
		MasterVolume:        0.5,
		EffectsVolume:       1.0,
		DefaultMaxInstances: 3,
		DefaultMinDelay:     50 * time.Millisecond,
		StaleAfter:          10 * time.Second,
		Dir:                 "sfx",
		Bank:                DefaultBank(),
	}
}

// LoadConfig builds a Config from defaults overridden by SFX_* environment
// variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("SFX_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Volumes are given as 0-100 percentages
	if volume := os.Getenv("SFX_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clamp01(float64(val) / 100.0)
		}
	}
	if volume := os.Getenv("SFX_EFFECTS_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.EffectsVolume = clamp01(float64(val) / 100.0)
		}
	}

	if sampleRate := os.Getenv("SFX_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if channels := os.Getenv("SFX_CHANNELS"); channels != "" {
		if val, err := strconv.Atoi(channels); err == nil && val >= 0 {
			cfg.Channels = val
		}
	}

	if dir := os.Getenv("SFX_DIR"); dir != "" {
		cfg.Dir = dir
	}

	if bank := os.Getenv("SFX_BANK"); bank != "" {
		if loaded, err := LoadBankFile(bank); err == nil {
			cfg.Bank = loaded
		}
	}

	return cfg
}

// bankEntry is the wire form of a SoundConfig
type bankEntry struct {
	File         string   `json:"file,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	Category     Category `json:"category,omitempty"`
	MaxInstances int      `json:"max_instances,omitempty"`
	MinDelayMS   int      `json:"min_delay_ms,omitempty"`
}

// LoadBankFile reads a JSON sound bank: a map of sound name to entry.
// Entries omit fields to inherit manager defaults at load time.
func LoadBankFile(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank %s: %w", path, err)
	}

	var entries map[string]bankEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse bank %s: %w", path, err)
	}

	bank := make(Bank, len(entries))
	for name, e := range entries {
		sc := SoundConfig{
			File:         e.File,
			Category:     e.Category,
			MaxInstances: e.MaxInstances,
			MinDelay:     time.Duration(e.MinDelayMS) * time.Millisecond,
		}
		if e.Volume != nil {
			sc.BaseVolume = Volume(clamp01(*e.Volume))
		}
		bank[name] = sc
	}
	return bank, nil
}

// defaultSound is the configuration for sounds with no bank entry
func (c *Config) defaultSound() SoundConfig {
	return SoundConfig{
		BaseVolume:   Volume(1.0),
		Category:     CategoryOther,
		MaxInstances: c.DefaultMaxInstances,
		MinDelay:     c.DefaultMinDelay,
	}
}

// normalize clamps an explicit SoundConfig and fills unset identity fields.
// Explicit zeroes are honored: a MinDelay of zero disables rate limiting and
// a BaseVolume of zero plays silently; only nil BaseVolume and whole-config
// absence fall back to defaults.
func (c *Config) normalize(sc SoundConfig) SoundConfig {
	if sc.BaseVolume == nil {
		sc.BaseVolume = Volume(1.0)
	} else {
		sc.BaseVolume = Volume(clamp01(*sc.BaseVolume))
	}
	if sc.Category == "" {
		sc.Category = CategoryOther
	}
	if sc.MaxInstances < 1 {
		sc.MaxInstances = 1
	}
	if sc.MinDelay < 0 {
		sc.MinDelay = 0
	}
	return sc
}
