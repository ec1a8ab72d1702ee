package engine

import "github.com/eonplay/eonplay/util"

// Mock is a synchronous test double for Engine. Events are delivered on
// the caller's goroutine before the triggering method returns.
type Mock struct {
	Listeners

	initialized bool
	state       State
	position    int64
	duration    int64
	volume      int
	rate        float64
	origin      string
	hasMedia    bool
	hasVideo    bool
	frame       string
	loadErr     error

	loadCalls  []string
	seekCalls  []int64
	rateCalls  []float64
	frameCalls []int64
	initCalls  int
	shutCalls  int
}

// NewMock returns an initialized mock at volume 100 and rate 1.0.
func NewMock() *Mock {
	return &Mock{initialized: true, volume: 100, rate: 1}
}

func (m *Mock) Name() string { return "backend" }

func (m *Mock) Initialize() error {
	m.initCalls++
	if !m.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (m *Mock) Shutdown() error {
	m.shutCalls++
	m.hasMedia = false
	return nil
}

func (m *Mock) Subscribe(l Listener) func() { return m.Add(l) }

func (m *Mock) Load(origin string) error {
	m.loadCalls = append(m.loadCalls, origin)
	if !m.initialized {
		m.MediaLoaded(false, origin)
		return ErrNotInitialized
	}
	if m.loadErr != nil {
		m.hasMedia = false
		m.MediaLoaded(false, origin)
		return m.loadErr
	}

	m.origin = origin
	m.hasMedia = true
	m.position = 0
	m.setState(Stopped)
	m.MediaLoaded(true, origin)
	if m.duration > 0 {
		m.DurationChanged(m.duration)
	}
	return nil
}

func (m *Mock) Play() error {
	if err := m.ready(); err != nil {
		return err
	}
	m.setState(Playing)
	return nil
}

func (m *Mock) Pause() error {
	if err := m.ready(); err != nil {
		return err
	}
	if m.state == Playing || m.state == Buffering {
		m.setState(Paused)
	}
	return nil
}

func (m *Mock) Stop() error {
	if !m.initialized {
		return ErrNotInitialized
	}
	m.setState(Stopped)
	m.setPosition(0)
	return nil
}

func (m *Mock) Seek(ms int64) error {
	if err := m.ready(); err != nil {
		return err
	}
	if m.duration > 0 {
		ms = util.Clamp(ms, 0, m.duration)
	} else {
		ms = util.Max(ms, 0)
	}
	m.seekCalls = append(m.seekCalls, ms)
	m.setPosition(ms)
	return nil
}

func (m *Mock) SetVolume(pct int) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	m.volume = util.Clamp(pct, 0, 100)
	m.VolumeChanged(m.volume)
	return nil
}

func (m *Mock) SetPlaybackRate(rate float64) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if rate <= 0 {
		return nil
	}
	m.rate = rate
	m.rateCalls = append(m.rateCalls, rate)
	return nil
}

func (m *Mock) VideoFrame(ms int64) string {
	m.frameCalls = append(m.frameCalls, ms)
	if !m.hasMedia || !m.hasVideo {
		return ""
	}
	return m.frame
}

func (m *Mock) State() State { return m.state }
func (m *Mock) Position() int64 { return m.position }
func (m *Mock) Duration() int64 { return m.duration }
func (m *Mock) Volume() int { return m.volume }
func (m *Mock) HasMedia() bool { return m.hasMedia }
func (m *Mock) HasVideo() bool { return m.hasMedia && m.hasVideo }
func (m *Mock) Rate() float64 { return m.rate }
func (m *Mock) Origin() string { return m.origin }

func (m *Mock) ready() error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if !m.hasMedia {
		return ErrNoMedia
	}
	return nil
}

func (m *Mock) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	m.StateChanged(s)
}

func (m *Mock) setPosition(ms int64) {
	if m.position == ms {
		return
	}
	m.position = ms
	m.PositionChanged(ms)
}

// Test helpers

// SetInitialized makes every later operation fail with ErrNotInitialized when false.
func (m *Mock) SetInitialized(ok bool) { m.initialized = ok }

func (m *Mock) SetLoadError(err error) { m.loadErr = err }

func (m *Mock) SetHasVideo(v bool) { m.hasVideo = v }

func (m *Mock) SetFrame(blob string) { m.frame = blob }

// SetDuration changes the duration and emits DurationChanged.
func (m *Mock) SetDuration(ms int64) {
	m.duration = ms
	m.DurationChanged(ms)
}

// SetPosition moves the playhead without recording a seek.
func (m *Mock) SetPosition(ms int64) { m.setPosition(ms) }

// SetState forces a state transition as if reported by the decoder.
func (m *Mock) SetState(s State) { m.setState(s) }

// SetExternalVolume reports a volume change that did not come through SetVolume.
func (m *Mock) SetExternalVolume(pct int) {
	m.volume = pct
	m.VolumeChanged(pct)
}

// Fail simulates a decoder error.
func (m *Mock) Fail(message string) {
	m.setState(Error)
	m.ErrorOccurred(message)
}

// Finish simulates the end of the stream.
func (m *Mock) Finish() {
	m.setPosition(m.duration)
	m.setState(Stopped)
}

func (m *Mock) LoadCalls() []string { return m.loadCalls }
func (m *Mock) SeekCalls() []int64 { return m.seekCalls }
func (m *Mock) RateCalls() []float64 { return m.rateCalls }
func (m *Mock) FrameCalls() []int64 { return m.frameCalls }
func (m *Mock) InitCalls() int { return m.initCalls }
func (m *Mock) ShutdownCalls() int { return m.shutCalls }

// ResetCalls forgets recorded calls.
func (m *Mock) ResetCalls() {
	m.loadCalls, m.seekCalls, m.rateCalls, m.frameCalls = nil, nil, nil, nil
}

var _ Engine = (*Mock)(nil)
