package sfx

import (
	"errors"
	"time"
)

// Category groups sounds for bookkeeping and bank organization
type Category string

const (
	CategoryUI      Category = "ui"
	CategoryGame    Category = "game"
	CategoryAmbient Category = "ambient"
	CategoryOther   Category = "other"
)

// Volume returns a pointer to v for SoundConfig literals
func Volume(v float64) *float64 { return &v }

// SoundConfig holds per-sound playback policy
// Zero fields are replaced with manager defaults at load time
type SoundConfig struct {
	// BaseVolume scales every play of this sound, clamped to [0,1].
	// Nil means the default of 1.0; an explicit zero plays silently.
	BaseVolume *float64

	// Category tags the sound; informational only
	Category Category

	// MaxInstances caps concurrent playback of this sound (>= 1)
	MaxInstances int

	// MinDelay is the minimum gap between successive play starts
	MinDelay time.Duration

	// File overrides the Dir/<name>.<ext> path convention
	File string

	// Synth renders the sound instead of decoding a file
	Synth *SynthSpec
}

// Info reports a loaded sound's configuration and play statistics
type Info struct {
	Name      string
	Config    SoundConfig
	PlayCount int
	Loaded    bool
}

// Sentinel errors
var (
	ErrNotFound           = errors.New("sound file not found")
	ErrDecode             = errors.New("sound decode failed")
	ErrNotLoaded          = errors.New("sound not loaded")
	ErrRateLimited        = errors.New("sound played too recently")
	ErrConcurrencyLimited = errors.New("sound at max concurrent instances")
	ErrNoChannel          = errors.New("no playback channel available")
	ErrClosed             = errors.New("manager is closed")
	ErrInaudible          = errors.New("sound source out of audible range")
)

// clamp01 bounds a volume multiplier to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
