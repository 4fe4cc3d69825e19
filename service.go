package sfx

import (
	"sync/atomic"
)

// Service wraps a Manager in a start/stop lifecycle with graceful
// degradation: when the audio device cannot be initialized the service runs
// on the headless backend instead of failing, so a host application works
// unchanged on machines without audio.
type Service struct {
	cfg     *Config
	manager *Manager
	silent  atomic.Bool
	started atomic.Bool
}

// NewService creates an unstarted service
func NewService() *Service {
	return &Service{}
}

// Name returns the service identifier
func (s *Service) Name() string {
	return "sfx"
}

// Init stores configuration before Start. A nil config loads defaults plus
// SFX_* environment overrides.
func (s *Service) Init(cfg *Config) error {
	if cfg == nil {
		cfg = LoadConfig()
	}
	s.cfg = cfg
	return nil
}

// Start creates the manager and loads the configured bank. Device
// initialization failure switches to silent mode, never an error.
func (s *Service) Start() error {
	if s.started.Load() {
		return nil
	}
	if s.cfg == nil {
		if err := s.Init(nil); err != nil {
			return err
		}
	}

	if s.cfg.Enabled {
		if m, err := New(s.cfg, NewSpeakerBackend()); err == nil {
			s.manager = m
		}
	}
	if s.manager == nil {
		// No device or audio disabled: run silent
		m, err := New(s.cfg, NewHeadlessBackend())
		if err != nil {
			return err
		}
		s.manager = m
		s.silent.Store(true)
	}

	s.manager.LoadBank()
	s.started.Store(true)
	return nil
}

// Stop cleans up the manager; idempotent
func (s *Service) Stop() error {
	if !s.started.CompareAndSwap(true, false) {
		return nil
	}
	if s.manager != nil {
		s.manager.Cleanup()
		s.manager = nil
	}
	return nil
}

// Manager returns the running manager, or nil before Start
func (s *Service) Manager() *Manager {
	return s.manager
}

// IsSilent reports whether the service fell back to the headless backend
func (s *Service) IsSilent() bool {
	return s.silent.Load()
}
