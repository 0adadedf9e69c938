package hook

import (
	"sync"

	"uihook/internal/event"
)

// FakeBackend is an in-memory capture backend for tests. Raw codes pass
// through to the unified code space unmapped, so tests feed Vc* values
// directly.
type FakeBackend struct {
	mu         sync.Mutex
	emit       func(RawEvent)
	fault      func(error)
	installErr error
	installs   int
	uninstalls int
}

// NewFake returns a hook wired to a fake backend.
func NewFake(opts Options) (*Hook, *FakeBackend) {
	fb := &FakeBackend{}
	return newHook(fb, opts.withDefaults()), fb
}

func (f *FakeBackend) install(emit func(RawEvent), fault func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.installErr != nil {
		return f.installErr
	}
	f.installs++
	f.emit = emit
	f.fault = fault
	return nil
}

func (f *FakeBackend) uninstall() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uninstalls++
	f.emit = nil
	f.fault = nil
	return nil
}

func (f *FakeBackend) mapKeycode(raw uint16) event.Keycode {
	return event.Keycode(raw)
}

func (f *FakeBackend) diagnose() (string, error) {
	return "fake backend, always available", nil
}

// SetInstallErr makes the next install fail with err.
func (f *FakeBackend) SetInstallErr(err error) {
	f.mu.Lock()
	f.installErr = err
	f.mu.Unlock()
}

// Installed reports whether a session is currently installed.
func (f *FakeBackend) Installed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emit != nil
}

// Uninstalls returns how many times uninstall ran.
func (f *FakeBackend) Uninstalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uninstalls
}

// Emit delivers a synthetic raw event as if it arrived on the capture
// thread. Events emitted after uninstall are dropped, matching the real
// backends' contract.
func (f *FakeBackend) Emit(raw RawEvent) {
	f.mu.Lock()
	emit := f.emit
	f.mu.Unlock()
	if emit != nil {
		emit(raw)
	}
}

// Fault simulates the OS revoking the hook.
func (f *FakeBackend) Fault(err error) {
	f.mu.Lock()
	fault := f.fault
	f.emit = nil
	f.fault = nil
	f.mu.Unlock()
	if fault != nil {
		fault(err)
	}
}
