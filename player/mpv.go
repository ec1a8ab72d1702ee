// Package player adapts the mpv media player to the Media Engine contract.
//
// mpv runs as a child process in idle mode and is driven over its JSON-IPC
// socket. Native events are read on a dedicated goroutine and marshalled
// onto the core event loop before any listener sees them.
package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/hwaccel"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/log"
	"github.com/eonplay/eonplay/loop"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
	"github.com/spf13/viper"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	parseTimeout      = 5 * time.Second
	pollInterval      = 100 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

type loadOutcome struct {
	ok      bool
	message string
}

// MPV implements engine.Engine on top of an mpv process.
//
// Listener callbacks may call back into the backend, so sched must run
// posted work asynchronously.
type MPV struct {
	sched     loop.Scheduler
	listeners engine.Listeners

	// generation advances on every load and on shutdown. Callbacks tagged
	// with an older generation are dropped.
	generation atomic.Uint64

	// mu guards the IPC connection and every field below it.
	mu          sync.Mutex
	socketPath  string
	cmd         *exec.Cmd
	exited      chan struct{}
	events      *eventListener
	initialized bool
	handle      *media.Handle
	state       engine.State
	position    int64
	duration    int64
	volume      int
	hasVideo    bool
	paused      bool
	buffering   bool
	pendingLoad chan loadOutcome
	pollStop    chan struct{}
}

// NewMPV returns a backend that delivers its events through sched.
func NewMPV(sched loop.Scheduler) *MPV {
	return &MPV{
		sched:  sched,
		volume: 100,
		exited: make(chan struct{}),
		paused: true,
	}
}

func (m *MPV) Name() string { return "backend" }

// Initialize launches mpv and connects to its IPC socket.
func (m *MPV) Initialize() error {
	binary := viper.GetString(key.PlayerBinary)
	if binary == "" {
		binary = "mpv"
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes))

	args := append(Flags(hwaccel.Probe()), "--input-ipc-server="+socketPath)
	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := waitForSocket(socketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			log.For("player").Warn("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.mu.Lock()
	m.cmd = cmd
	m.exited = exited
	m.mu.Unlock()

	return m.attach(socketPath)
}

// attach binds the backend to a live IPC socket.
func (m *MPV) attach(socketPath string) error {
	m.mu.Lock()
	m.socketPath = socketPath
	m.events = newEventListener(socketPath, m.onNative)
	events := m.events
	m.mu.Unlock()

	if err := events.start(); err != nil {
		return err
	}

	m.mu.Lock()
	m.initialized = true
	if v, err := m.sendLocked("get_property", "volume"); err == nil {
		if f, ok := asFloat(v); ok {
			m.volume = int(f)
		}
	}
	m.mu.Unlock()

	log.For("player").WithField("socket", socketPath).Info("decoder initialized")
	return nil
}

func waitForSocket(socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// Shutdown stops timers, discards pending callbacks and terminates mpv.
func (m *MPV) Shutdown() error {
	m.mu.Lock()
	m.stopPollLocked()
	m.generation.Add(1)
	m.initialized = false
	m.handle = nil
	events := m.events
	cmd := m.cmd
	exited := m.exited
	socketPath := m.socketPath
	if socketPath != "" && cmd != nil {
		_, _ = m.sendLocked("quit")
	}
	m.mu.Unlock()

	if events != nil {
		events.stop()
	}

	if cmd != nil {
		select {
		case <-exited:
		case <-time.After(quitTimeout):
			_ = killProcess(cmd)
		}
		if socketPath != "" {
			_ = os.Remove(socketPath)
		}
	}

	return nil
}

func (m *MPV) Subscribe(l engine.Listener) func() {
	return m.listeners.Add(l)
}

// emit delivers fn on the event loop unless the handle it belongs to has been replaced.
func (m *MPV) emit(gen uint64, fn func(l engine.Listener)) {
	m.sched.Post(func() {
		if gen == m.generation.Load() {
			fn(&m.listeners)
		}
	})
}

// Load replaces the current media with origin and blocks until mpv has
// opened it or the parse timeout expires.
func (m *MPV) Load(origin string) error {
	m.mu.Lock()
	gen := m.generation.Load()
	initialized := m.initialized
	m.mu.Unlock()

	if !initialized {
		m.emit(gen, func(l engine.Listener) { l.MediaLoaded(false, origin) })
		return engine.ErrNotInitialized
	}

	target, err := SanitizeOrigin(origin)
	if err != nil {
		log.For("player").WithField("origin", origin).WithError(err).Warn("origin rejected")
		m.emit(gen, func(l engine.Listener) { l.MediaLoaded(false, origin) })
		return fmt.Errorf("%w: %v", engine.ErrRejectedOrigin, err)
	}

	m.mu.Lock()
	m.stopPollLocked()
	gen = m.generation.Add(1)
	m.handle = media.NewHandle(origin)
	m.position, m.duration, m.hasVideo = 0, 0, false
	m.paused, m.buffering = true, false
	m.state = engine.Stopped
	waiter := make(chan loadOutcome, 1)
	m.pendingLoad = waiter

	cache := localCacheSecs
	if isNetworkOrigin(target) {
		cache = networkCacheSecs
	}
	_, _ = m.sendLocked("set_property", "cache-secs", cache)
	_, _ = m.sendLocked("set_property", "pause", true)
	_, err = m.sendLocked("loadfile", target, "replace")
	m.mu.Unlock()

	if err != nil {
		m.failLoad(gen, origin, err.Error())
		return err
	}

	var outcome loadOutcome
	select {
	case outcome = <-waiter:
	case <-time.After(parseTimeout):
		outcome = loadOutcome{message: "timed out opening media"}
	}

	m.mu.Lock()
	m.pendingLoad = nil
	if gen != m.generation.Load() {
		m.mu.Unlock()
		return fmt.Errorf("load of %s superseded", origin)
	}
	if !outcome.ok {
		m.mu.Unlock()
		m.failLoad(gen, origin, outcome.message)
		return errors.New(outcome.message)
	}

	if v, err := m.sendLocked("get_property", "duration"); err == nil {
		if f, ok := asFloat(v); ok {
			m.duration = secondsToMs(f)
		}
	}
	w, _ := m.sendLocked("get_property", "width")
	h, _ := m.sendLocked("get_property", "height")
	wf, _ := asFloat(w)
	hf, _ := asFloat(h)
	m.hasVideo = wf > 0 && hf > 0
	m.handle.Info = &media.Info{
		Origin:     origin,
		DurationMs: m.duration,
		HasVideo:   m.hasVideo,
		Width:      int(wf),
		Height:     int(hf),
	}
	duration := m.duration
	m.mu.Unlock()

	m.emit(gen, func(l engine.Listener) {
		l.MediaLoaded(true, origin)
		if duration > 0 {
			l.DurationChanged(duration)
		}
	})
	return nil
}

func (m *MPV) failLoad(gen uint64, origin, message string) {
	m.mu.Lock()
	m.handle = nil
	m.state = engine.Error
	m.mu.Unlock()

	log.For("player").WithField("origin", origin).Warn(message)
	m.emit(gen, func(l engine.Listener) {
		l.MediaLoaded(false, origin)
		l.StateChanged(engine.Error)
		l.ErrorOccurred(message)
	})
}

func (m *MPV) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readyLocked(); err != nil {
		return err
	}
	if m.state == engine.Playing {
		return nil
	}

	if m.state == engine.Stopped && m.duration > 0 && m.position >= m.duration {
		if _, err := m.sendLocked("seek", 0, "absolute"); err != nil {
			return err
		}
		m.position = 0
	}
	if _, err := m.sendLocked("set_property", "pause", false); err != nil {
		return err
	}

	m.paused = false
	m.setStateLocked(engine.Playing)
	m.startPollLocked()
	return nil
}

func (m *MPV) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readyLocked(); err != nil {
		return err
	}
	if m.state != engine.Playing && m.state != engine.Buffering {
		return nil
	}
	if _, err := m.sendLocked("set_property", "pause", true); err != nil {
		return err
	}

	m.paused = true
	m.stopPollLocked()
	m.setStateLocked(engine.Paused)
	return nil
}

// Stop pauses and rewinds without unloading the media.
func (m *MPV) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return engine.ErrNotInitialized
	}
	m.stopPollLocked()
	if m.handle == nil {
		return nil
	}

	_, _ = m.sendLocked("set_property", "pause", true)
	_, _ = m.sendLocked("seek", 0, "absolute")
	m.paused = true
	m.setStateLocked(engine.Stopped)
	m.setPositionLocked(0)
	return nil
}

func (m *MPV) Seek(ms int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readyLocked(); err != nil {
		return err
	}
	if m.duration > 0 {
		ms = util.Clamp(ms, 0, m.duration)
	} else {
		ms = util.Max(ms, 0)
	}

	if _, err := m.sendLocked("seek", float64(ms)/1000, "absolute+exact"); err != nil {
		return err
	}
	m.setPositionLocked(ms)
	return nil
}

func (m *MPV) SetVolume(pct int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return engine.ErrNotInitialized
	}
	pct = util.Clamp(pct, 0, 100)
	if _, err := m.sendLocked("set_property", "volume", pct); err != nil {
		return err
	}

	m.volume = pct
	m.emit(m.generation.Load(), func(l engine.Listener) { l.VolumeChanged(pct) })
	return nil
}

func (m *MPV) SetPlaybackRate(rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return engine.ErrNotInitialized
	}
	if rate <= 0 {
		return nil
	}
	_, err := m.sendLocked("set_property", "speed", rate)
	return err
}

func (m *MPV) State() engine.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *MPV) Position() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MPV) Duration() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *MPV) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *MPV) HasMedia() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

func (m *MPV) HasVideo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil && m.hasVideo
}

// Handle returns the active media handle, or nil.
func (m *MPV) Handle() *media.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// VideoFrame grabs the frame at ms with a short-lived decoder.
func (m *MPV) VideoFrame(ms int64) string {
	m.mu.Lock()
	handle := m.handle
	hasVideo := m.hasVideo
	m.mu.Unlock()

	if handle == nil || !hasVideo {
		return ""
	}

	blob, err := GrabFrame(viper.GetString(key.PlayerBinary), handle.Origin, ms)
	if err != nil {
		log.For("player").WithError(err).Debug("frame grab failed")
		return ""
	}
	return blob
}

func (m *MPV) readyLocked() error {
	if !m.initialized {
		return engine.ErrNotInitialized
	}
	if m.handle == nil {
		return engine.ErrNoMedia
	}
	return nil
}

func (m *MPV) setStateLocked(s engine.State) {
	if m.state == s {
		return
	}
	m.state = s
	m.emit(m.generation.Load(), func(l engine.Listener) { l.StateChanged(s) })
}

func (m *MPV) setPositionLocked(ms int64) {
	if m.position == ms {
		return
	}
	m.position = ms
	m.emit(m.generation.Load(), func(l engine.Listener) { l.PositionChanged(ms) })
}

func (m *MPV) startPollLocked() {
	if m.pollStop != nil {
		return
	}

	stop := make(chan struct{})
	m.pollStop = stop
	gen := m.generation.Load()

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.poll(gen, stop)
			}
		}
	}()
}

func (m *MPV) poll(gen uint64, stop chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pollStop != stop || m.generation.Load() != gen {
		return
	}

	v, err := m.sendLocked("get_property", "time-pos")
	if err != nil {
		return
	}
	if f, ok := asFloat(v); ok {
		m.setPositionLocked(secondsToMs(f))
	}
}

func (m *MPV) stopPollLocked() {
	if m.pollStop != nil {
		close(m.pollStop)
		m.pollStop = nil
	}
}

var _ engine.Engine = (*MPV)(nil)
