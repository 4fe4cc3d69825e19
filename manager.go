package sfx

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// Manager is the single authority for loading sounds, enforcing playback
// rate and concurrency limits, allocating channels, and reporting playback
// and volume state.
//
// All state is guarded by one mutex; every operation is synchronous and
// non-blocking. Channel completion is observed lazily: the backend flips a
// per-channel atomic when a stream drains, and bookkeeping catches up on the
// next operation.
type Manager struct {
	mu      sync.Mutex
	cfg     *Config
	backend Backend
	format  beep.Format

	channels  []*channel
	assets    map[string]*asset
	instances []instance

	master     float64
	effectsVol float64
	paused     bool
	closed     bool

	// now is swapped for a mock clock in tests
	now func() time.Time
}

// instance records one in-flight playback bound to a channel
type instance struct {
	name    string
	start   time.Time
	channel int
	gen     uint64
	reqVol  float64
}

// New creates a manager over the given backend. A nil config uses
// DefaultConfig; a nil backend selects the speaker, or the headless backend
// when the config disables audio.
func New(cfg *Config, backend Backend) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if backend == nil {
		if cfg.Enabled {
			backend = NewSpeakerBackend()
		} else {
			backend = NewHeadlessBackend()
		}
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(cfg.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := backend.Init(format.SampleRate, cfg.BufferSize); err != nil {
		return nil, err
	}

	channels := make([]*channel, cfg.Channels)
	for i := range channels {
		channels[i] = &channel{id: i}
	}

	return &Manager{
		cfg:        cfg,
		backend:    backend,
		format:     format,
		channels:   channels,
		assets:     make(map[string]*asset),
		master:     clamp01(cfg.MasterVolume),
		effectsVol: clamp01(cfg.EffectsVolume),
		now:        time.Now,
	}, nil
}

// Load loads a sound by name. The bank supplies its file, synth definition
// and config; otherwise the Dir/<name>.<ext> convention and defaults apply.
// Idempotent: loading an already-loaded sound succeeds immediately.
func (m *Manager) Load(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name, "", nil)
}

// LoadFile loads a sound from an explicit path, bypassing the convention
func (m *Manager) LoadFile(name, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name, path, nil)
}

// LoadSynth loads a synthesized sound from an explicit spec
func (m *Manager) LoadSynth(name string, spec SynthSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name, "", &spec)
}

// loadLocked resolves config and audio data for one sound.
// Resolution order: explicit spec, explicit path, bank synth, bank file,
// path convention.
func (m *Manager) loadLocked(name, path string, spec *SynthSpec) error {
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.assets[name]; ok {
		return nil
	}

	sc, inBank := m.cfg.Bank[name]
	if inBank {
		sc = m.cfg.normalize(sc)
	} else {
		sc = m.cfg.defaultSound()
	}

	if spec == nil {
		spec = sc.Synth
	}
	if path == "" {
		path = sc.File
	}

	var (
		buf *beep.Buffer
		err error
	)
	switch {
	case spec != nil && path == "":
		buf = spec.render(m.format)
	case path != "":
		buf, err = decodeFile(path, m.format)
	default:
		path, err = resolvePath(m.cfg.Dir, name)
		if err == nil {
			buf, err = decodeFile(path, m.format)
		}
	}
	if err != nil {
		return err
	}

	m.assets[name] = &asset{name: name, buffer: buf, config: sc}
	return nil
}

// LoadBank loads every sound named in the bank. Failures are reported per
// sound; loading continues for the remainder.
func (m *Manager) LoadBank() map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make(map[string]error, len(m.cfg.Bank))
	for name := range m.cfg.Bank {
		results[name] = m.loadLocked(name, "", nil)
	}
	return results
}

// LoadDir loads every supported file in the sound directory that is not
// already loaded
func (m *Manager) LoadDir() map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make(map[string]error)
	if m.closed {
		return results
	}

	files, err := listDir(m.cfg.Dir)
	if err != nil {
		return results
	}
	for name, path := range files {
		if _, ok := m.assets[name]; ok {
			continue
		}
		results[name] = m.loadLocked(name, path, nil)
	}
	return results
}

// Play plays a sound at full request volume
func (m *Manager) Play(name string) error {
	return m.PlayVolume(name, 1.0)
}

// PlayVolume plays a sound with a request volume multiplier. The final
// channel volume is base x request x master x effects, clamped to [0,1].
//
// Failure conditions are returned as sentinel errors and leave no trace:
// ErrNotLoaded (on-demand load failed), ErrRateLimited, ErrConcurrencyLimited,
// ErrNoChannel (zero-size pool only).
func (m *Manager) PlayVolume(name string, reqVol float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	a, ok := m.assets[name]
	if !ok {
		if err := m.loadLocked(name, "", nil); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotLoaded, name, err)
		}
		a = m.assets[name]
	}

	m.reapLocked()
	now := m.now()

	if a.config.MinDelay > 0 && !a.lastPlay.IsZero() && now.Sub(a.lastPlay) < a.config.MinDelay {
		return fmt.Errorf("%w: %s", ErrRateLimited, name)
	}

	active := 0
	for _, inst := range m.instances {
		if inst.name == name {
			active++
		}
	}
	if active >= a.config.MaxInstances {
		return fmt.Errorf("%w: %s", ErrConcurrencyLimited, name)
	}

	ch := m.acquireLocked()
	if ch == nil {
		return fmt.Errorf("%w: %s", ErrNoChannel, name)
	}

	reqVol = clamp01(reqVol)
	final := clamp01(*a.config.BaseVolume * reqVol * m.master * m.effectsVol)

	gen := ch.gen.Add(1)
	streamer := beep.Seq(
		a.buffer.Streamer(0, a.buffer.Len()),
		beep.Callback(ch.finisher(gen)),
	)
	ch.ctrl = &beep.Ctrl{Streamer: streamer}
	ch.vol = newVolume(ch.ctrl, final)
	ch.busy.Store(true)
	m.backend.Play(ch.vol)

	m.instances = append(m.instances, instance{
		name:    name,
		start:   now,
		channel: ch.id,
		gen:     gen,
		reqVol:  reqVol,
	})
	a.lastPlay = now
	a.playCount++
	return nil
}

// acquireLocked returns a free channel, evicting the oldest active instance
// when the pool is full. Nil only for a zero-size pool.
func (m *Manager) acquireLocked() *channel {
	for _, ch := range m.channels {
		if !ch.busy.Load() {
			return ch
		}
	}
	if len(m.channels) == 0 {
		return nil
	}

	// Oldest start time wins; ties break toward the lowest channel id
	oldest := -1
	for i, inst := range m.instances {
		if oldest < 0 {
			oldest = i
			continue
		}
		o := m.instances[oldest]
		if inst.start.Before(o.start) ||
			(inst.start.Equal(o.start) && inst.channel < o.channel) {
			oldest = i
		}
	}
	if oldest < 0 {
		// Every channel busy yet no bookkeeping: reclaim the first slot
		ch := m.channels[0]
		m.stopChannelLocked(ch)
		return ch
	}

	ch := m.channels[m.instances[oldest].channel]
	m.stopChannelLocked(ch)
	m.instances = append(m.instances[:oldest], m.instances[oldest+1:]...)
	return ch
}

// stopChannelLocked halts a channel's live stream and frees the slot
func (m *Manager) stopChannelLocked(ch *channel) {
	if ch.ctrl != nil {
		m.backend.Lock()
		ch.ctrl.Streamer = nil
		m.backend.Unlock()
	}
	ch.invalidate()
}

// reapLocked drops bookkeeping for instances whose channel has completed or
// been rebound since
func (m *Manager) reapLocked() {
	kept := m.instances[:0]
	for _, inst := range m.instances {
		ch := m.channels[inst.channel]
		if ch.busy.Load() && ch.gen.Load() == inst.gen {
			kept = append(kept, inst)
		}
	}
	m.instances = kept
}

// StopAll halts every channel and clears the active-instance list
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.stopAllLocked()
}

func (m *Manager) stopAllLocked() {
	m.backend.Clear()
	for _, ch := range m.channels {
		ch.invalidate()
	}
	m.instances = m.instances[:0]
	m.paused = false
}

// Stop halts every active instance of one sound and reports how many were
// stopped
func (m *Manager) Stop(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0
	}
	m.reapLocked()

	stopped := 0
	kept := m.instances[:0]
	for _, inst := range m.instances {
		if inst.name != name {
			kept = append(kept, inst)
			continue
		}
		m.stopChannelLocked(m.channels[inst.channel])
		stopped++
	}
	m.instances = kept
	return stopped
}

// PauseAll suspends playback on every busy channel. Bookkeeping and
// timestamps are untouched.
func (m *Manager) PauseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.paused {
		return
	}
	m.paused = true

	m.backend.Lock()
	for _, ch := range m.channels {
		if ch.ctrl != nil {
			ch.ctrl.Paused = true
		}
	}
	m.backend.Unlock()
}

// ResumeAll resumes playback after PauseAll
func (m *Manager) ResumeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || !m.paused {
		return
	}
	m.paused = false

	m.backend.Lock()
	for _, ch := range m.channels {
		if ch.ctrl != nil {
			ch.ctrl.Paused = false
		}
	}
	m.backend.Unlock()
}

// SetMasterVolume clamps and applies the master volume. Live channels are
// rescaled in place; future plays use the new value.
func (m *Manager) SetMasterVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = clamp01(v)
	m.rescaleLocked()
}

// SetEffectsVolume clamps and applies the effects volume, rescaling live
// channels like SetMasterVolume
func (m *Manager) SetEffectsVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effectsVol = clamp01(v)
	m.rescaleLocked()
}

// MasterVolume returns the current master volume
func (m *Manager) MasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.master
}

// EffectsVolume returns the current effects volume
func (m *Manager) EffectsVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectsVol
}

// rescaleLocked re-applies the volume product to every live channel
func (m *Manager) rescaleLocked() {
	if m.closed {
		return
	}
	m.reapLocked()

	m.backend.Lock()
	for _, inst := range m.instances {
		ch := m.channels[inst.channel]
		if ch.vol == nil || ch.gen.Load() != inst.gen {
			continue
		}
		a, ok := m.assets[inst.name]
		if !ok {
			continue
		}
		final := clamp01(*a.config.BaseVolume * inst.reqVol * m.master * m.effectsVol)
		applyVolume(ch.vol, final)
	}
	m.backend.Unlock()
}

// Update performs periodic maintenance: finished instances are reaped and
// records older than StaleAfter are force-stopped, a safety net against
// leaked bookkeeping when a completion callback was missed.
func (m *Manager) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.reapLocked()

	now := m.now()
	kept := m.instances[:0]
	for _, inst := range m.instances {
		if now.Sub(inst.start) < m.cfg.StaleAfter {
			kept = append(kept, inst)
			continue
		}
		ch := m.channels[inst.channel]
		if ch.gen.Load() == inst.gen {
			m.stopChannelLocked(ch)
		}
	}
	m.instances = kept
}

// Info reports a loaded sound's configuration and play count
func (m *Manager) Info(name string) (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[name]
	if !ok {
		return Info{}, false
	}
	return Info{
		Name:      name,
		Config:    a.config,
		PlayCount: a.playCount,
		Loaded:    true,
	}, true
}

// Playing returns the sorted set of sound names currently bound to a busy
// channel
func (m *Manager) Playing() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reapLocked()

	seen := make(map[string]struct{}, len(m.instances))
	names := make([]string, 0, len(m.instances))
	for _, inst := range m.instances {
		if _, dup := seen[inst.name]; dup {
			continue
		}
		seen[inst.name] = struct{}{}
		names = append(names, inst.name)
	}
	sort.Strings(names)
	return names
}

// Loaded returns the sorted names of all loaded sounds
func (m *Manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.assets))
	for name := range m.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FreeChannels reports how many pool slots are currently unbound
func (m *Manager) FreeChannels() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	free := 0
	for _, ch := range m.channels {
		if !ch.busy.Load() {
			free++
		}
	}
	return free
}

// Cleanup stops everything, releases all buffers and bookkeeping, and closes
// the backend. The manager is unusable afterward; mutating operations return
// ErrClosed.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.stopAllLocked()
	m.assets = make(map[string]*asset)
	m.backend.Close()
	m.closed = true
}
