//go:build !linux && !darwin && !windows

package hook

import "uihook/internal/event"

// Stub backend for platforms without a native hook implementation.
type stubBackend struct{}

func newPlatformBackend(opts Options) backend {
	return stubBackend{}
}

func (stubBackend) install(emit func(RawEvent), fault func(error)) error {
	return ErrBackendUnavailable
}

func (stubBackend) uninstall() error {
	return ErrNotRunning
}

func (stubBackend) mapKeycode(raw uint16) event.Keycode {
	return event.VcUndefined
}

func (stubBackend) diagnose() (string, error) {
	return "", ErrBackendUnavailable
}
