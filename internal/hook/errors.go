package hook

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start when a session is active.
	ErrAlreadyRunning = errors.New("hook already running")

	// ErrNotRunning is returned by Stop when no session is active.
	ErrNotRunning = errors.New("hook not running")

	// ErrPermissionDenied indicates the OS refused low-level input access
	// and user action outside the process is required (accessibility
	// permission on macOS, 'input' group membership on Linux).
	ErrPermissionDenied = errors.New("input capture permission denied")

	// ErrBackendUnavailable indicates no usable input device or display
	// connection exists on this system.
	ErrBackendUnavailable = errors.New("input capture backend unavailable")
)

// NativeError wraps an error code surfaced by the platform hook layer.
type NativeError struct {
	Op   string
	Code int64
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("native hook failure: %s (code %d)", e.Op, e.Code)
}
