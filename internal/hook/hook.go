// Package hook implements the cross-platform global input hook: lifecycle
// control over the per-OS capture backends, normalization of raw events and
// synchronous dispatch to the registered handler.
package hook

import (
	"sync"
	"time"

	"uihook/internal/event"
	"uihook/internal/logging"
)

// Handler receives each normalized event, synchronously on the capture
// thread. Handlers must return quickly; a slow handler delays the OS input
// pipeline and can get the hook disabled on macOS.
type Handler interface {
	HandleEvent(event.Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(event.Event)

func (f HandlerFunc) HandleEvent(e event.Event) { f(e) }

// State is the lifecycle state of a Hook.
type State uint8

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

// Options configures a Hook. The click window is a policy knob rather than a
// hardcoded constant because platforms disagree on what they report natively.
type Options struct {
	// ClickInterval is the maximum delay between presses counted as one
	// multi-click sequence. Defaults to 500ms.
	ClickInterval time.Duration

	// ClickDistance is the maximum cursor travel, in pixels per axis,
	// within a multi-click sequence. Defaults to 4.
	ClickDistance int

	// Devices optionally pins the Linux backend to explicit evdev paths
	// instead of discovering devices under /dev/input.
	Devices []string
}

func (o Options) withDefaults() Options {
	if o.ClickInterval <= 0 {
		o.ClickInterval = 500 * time.Millisecond
	}
	if o.ClickDistance <= 0 {
		o.ClickDistance = 4
	}
	return o
}

// backend is the per-OS capture capability. install starts the capture loop
// on a dedicated OS thread and returns once the loop is confirmed alive; emit
// is invoked only from that thread. uninstall may be called from any other
// thread and blocks until the capture thread has fully exited; no raw events
// are delivered after it returns. A backend that dies on its own (hook
// revoked by the OS) releases its resources and then calls fault exactly
// once.
type backend interface {
	install(emit func(RawEvent), fault func(error)) error
	uninstall() error
	mapKeycode(raw uint16) event.Keycode
	diagnose() (string, error)
}

// Hook owns one capture session at a time: the state machine, the backend
// and the handler slot. The zero value is not usable; construct with New.
type Hook struct {
	mu      sync.Mutex
	state   State
	lastErr error
	done    chan struct{}

	backend backend
	norm    *normalizer
	opts    Options

	handlerMu sync.RWMutex
	handler   Handler
}

// New returns a hook backed by the platform capture backend.
func New(opts Options) *Hook {
	opts = opts.withDefaults()
	return newHook(newPlatformBackend(opts), opts)
}

func newHook(b backend, opts Options) *Hook {
	return &Hook{
		backend: b,
		norm:    newNormalizer(b.mapKeycode, opts),
		opts:    opts,
	}
}

// Register atomically replaces the handler. Safe before Start or while
// running; the next dispatched event uses the new handler. A nil handler
// drops events.
func (h *Hook) Register(handler Handler) {
	h.handlerMu.Lock()
	h.handler = handler
	h.handlerMu.Unlock()
}

// Start installs the platform hook and returns once the capture thread is
// alive. Fails with ErrAlreadyRunning unless the hook is stopped.
func (h *Hook) Start() error {
	h.mu.Lock()
	if h.state != Stopped {
		h.mu.Unlock()
		return ErrAlreadyRunning
	}
	h.state = Starting
	h.lastErr = nil
	h.norm.reset()
	h.done = make(chan struct{})
	h.mu.Unlock()

	err := h.backend.install(h.dispatchRaw, h.fault)

	h.mu.Lock()
	if err != nil {
		h.state = Stopped
		h.lastErr = err
		h.closeDoneLocked()
		h.mu.Unlock()
		return err
	}
	if h.state != Starting {
		// The backend faulted between install returning and here.
		err = h.lastErr
		h.mu.Unlock()
		return err
	}
	h.state = Running
	h.mu.Unlock()

	logging.Logger.Debug().Msg("input hook installed")
	h.dispatch(event.Event{Type: event.HookEnabled, When: time.Now()})
	return nil
}

// Stop uninstalls the hook and blocks until the capture thread has exited.
// After Stop returns no further handler invocation occurs. Safe to call from
// any thread; of concurrent calls exactly one performs the teardown, the
// others fail with ErrNotRunning.
func (h *Hook) Stop() error {
	h.mu.Lock()
	if h.state != Running {
		h.mu.Unlock()
		return ErrNotRunning
	}
	h.state = Stopping
	h.mu.Unlock()

	err := h.backend.uninstall()

	h.mu.Lock()
	h.state = Stopped
	h.lastErr = err
	h.closeDoneLocked()
	h.mu.Unlock()

	h.dispatch(event.Event{Type: event.HookDisabled, When: time.Now()})
	logging.Logger.Debug().Msg("input hook uninstalled")
	return err
}

// Run starts the hook and blocks until the session ends, via Stop from
// another goroutine or a backend fault. It returns the error that ended the
// session, if any.
func (h *Hook) Run() error {
	if err := h.Start(); err != nil {
		return err
	}

	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done != nil {
		<-done
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

// Status returns the lifecycle state and the error, if any, that ended the
// last session. A backend revoked by the OS shows up here as a stopped state
// with the backend's error.
func (h *Hook) Status() (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.lastErr
}

// Diagnose probes the platform backend for permission and device problems
// without installing the hook.
func (h *Hook) Diagnose() (string, error) {
	return h.backend.diagnose()
}

// fault is handed to the backend: it marks the session dead after the
// backend has already released its resources on its own. A fault racing an
// in-flight Stop is dropped; that Stop owns the teardown reporting.
func (h *Hook) fault(err error) {
	h.mu.Lock()
	if h.state == Stopped || h.state == Stopping {
		h.mu.Unlock()
		return
	}
	h.state = Stopped
	h.lastErr = err
	h.closeDoneLocked()
	h.mu.Unlock()

	logging.Logger.Error().Err(err).Msg("input hook lost its backend")
	h.dispatch(event.Event{Type: event.HookDisabled, When: time.Now()})
}

func (h *Hook) closeDoneLocked() {
	if h.done != nil {
		close(h.done)
		h.done = nil
	}
}

// dispatchRaw runs on the capture thread only: it is the single writer of
// the normalizer state.
func (h *Hook) dispatchRaw(raw RawEvent) {
	for _, ev := range h.norm.normalize(raw) {
		h.dispatch(ev)
	}
}

// dispatch invokes the registered handler. A panicking handler is contained
// here: letting it propagate into OS callback code would be undefined
// behavior on most platforms, so it is logged and the capture session keeps
// running.
func (h *Hook) dispatch(ev event.Event) {
	h.handlerMu.RLock()
	handler := h.handler
	h.handlerMu.RUnlock()
	if handler == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Error().
				Interface("panic", r).
				Str("event", ev.Type.String()).
				Msg("event handler panicked")
		}
	}()
	handler.HandleEvent(ev)
}
