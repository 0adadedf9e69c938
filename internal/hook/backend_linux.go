//go:build linux

package hook

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"uihook/internal/event"
	"uihook/internal/logging"
)

// Linux capture backend reading evdev devices under /dev/input directly.
// Requires the user to be in the 'input' group (or explicit device paths
// with readable permissions).

// input_event is 24 bytes on 64-bit Linux:
// timeval (16 bytes) + type (2) + code (2) + value (4)
const inputEventSize = 24

const (
	relX      = 0x00
	relY      = 0x01
	relHWheel = 0x06
	relWheel  = 0x08

	keyValueRelease = 0
	keyValuePress   = 1
	keyValueRepeat  = 2

	btnLeft    = 0x110
	btnRight   = 0x111
	btnMiddle  = 0x112
	btnSide    = 0x113
	btnExtra   = 0x114
	btnTask    = 0x117
	wheelTicks = 3 // unit-scroll lines per rotation notch
)

// kernelEvent is one decoded input_event frame tagged with arrival time.
type kernelEvent struct {
	when  time.Time
	typ   uint16
	code  uint16
	value int32
}

type evdevBackend struct {
	devices []string

	files []*os.File
	stop  chan struct{}

	readers    sync.WaitGroup
	dispatched chan struct{}

	// merged carries frames from all device readers to the single
	// dispatcher goroutine, which is the capture thread.
	merged chan kernelEvent

	// virtual cursor: evdev reports relative motion only.
	x, y int32
}

func newPlatformBackend(opts Options) backend {
	return &evdevBackend{devices: opts.Devices}
}

func (b *evdevBackend) install(emit func(RawEvent), fault func(error)) error {
	paths := b.devices
	if len(paths) == 0 {
		var err error
		paths, err = findInputDevices()
		if err != nil {
			return fmt.Errorf("%w: scanning input devices: %v", ErrBackendUnavailable, err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("%w: no keyboard or pointer devices found", ErrBackendUnavailable)
		}
	}

	b.files = nil // may hold dead fds from a faulted session
	var permErr error
	for _, path := range paths {
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			if os.IsPermission(err) {
				permErr = err
			}
			continue
		}
		b.files = append(b.files, f)
	}
	if len(b.files) == 0 {
		if permErr != nil {
			return fmt.Errorf("%w: %v (add the user to the 'input' group)", ErrPermissionDenied, permErr)
		}
		return fmt.Errorf("%w: could not open any input device", ErrBackendUnavailable)
	}

	b.stop = make(chan struct{})
	b.merged = make(chan kernelEvent, 256)
	b.dispatched = make(chan struct{})
	b.x, b.y = 0, 0

	for _, f := range b.files {
		b.readers.Add(1)
		go b.readDevice(f)
	}
	go func() {
		b.readers.Wait()
		close(b.merged)
	}()
	go b.dispatchLoop(emit, fault)

	logging.Logger.Debug().Int("devices", len(b.files)).Msg("evdev capture started")
	return nil
}

func (b *evdevBackend) uninstall() error {
	close(b.stop)
	for _, f := range b.files {
		f.Close()
	}
	// Reader goroutines unblock when their fds close; the dispatcher
	// drains the merged channel and exits after the last reader.
	<-b.dispatched
	b.files = nil
	return nil
}

func (b *evdevBackend) readDevice(f *os.File) {
	defer b.readers.Done()

	buf := make([]byte, inputEventSize*16)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		now := time.Now()

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			ev := kernelEvent{
				when:  now,
				typ:   binary.LittleEndian.Uint16(buf[i+16:]),
				code:  binary.LittleEndian.Uint16(buf[i+18:]),
				value: int32(binary.LittleEndian.Uint32(buf[i+20:])),
			}
			if ev.typ != unix.EV_KEY && ev.typ != unix.EV_REL {
				continue
			}
			select {
			case b.merged <- ev:
			case <-b.stop:
				return
			}
		}
	}
}

// dispatchLoop is the capture thread: the only goroutine invoking emit.
func (b *evdevBackend) dispatchLoop(emit func(RawEvent), fault func(error)) {
	defer close(b.dispatched)

	for ev := range b.merged {
		switch ev.typ {
		case unix.EV_KEY:
			b.handleKey(ev, emit)
		case unix.EV_REL:
			b.handleRel(ev, emit)
		}
	}

	// merged closes when the last reader exits. Outside a requested stop
	// that means every device died under us: release the fds and report
	// the dead session.
	select {
	case <-b.stop:
	default:
		for _, f := range b.files {
			f.Close()
		}
		fault(fmt.Errorf("%w: all input devices closed", ErrBackendUnavailable))
	}
}

func (b *evdevBackend) handleKey(ev kernelEvent, emit func(RawEvent)) {
	if ev.code >= btnLeft && ev.code <= btnTask {
		if ev.value == keyValueRepeat {
			return
		}
		kind := RawButtonDown
		if ev.value == keyValueRelease {
			kind = RawButtonUp
		}
		emit(RawEvent{
			Kind:   kind,
			When:   ev.when,
			Button: buttonFromCode(ev.code),
			X:      clampCoord(b.x),
			Y:      clampCoord(b.y),
		})
		return
	}

	// Key auto-repeat is delivered as another press.
	kind := RawKeyDown
	if ev.value == keyValueRelease {
		kind = RawKeyUp
	}
	emit(RawEvent{Kind: kind, When: ev.when, Code: ev.code})
}

func (b *evdevBackend) handleRel(ev kernelEvent, emit func(RawEvent)) {
	switch ev.code {
	case relX, relY:
		if ev.code == relX {
			b.x += ev.value
		} else {
			b.y += ev.value
		}
		if b.x < 0 {
			b.x = 0
		}
		if b.y < 0 {
			b.y = 0
		}
		emit(RawEvent{
			Kind: RawMove,
			When: ev.when,
			X:    clampCoord(b.x),
			Y:    clampCoord(b.y),
		})
	case relWheel, relHWheel:
		dir := event.WheelVertical
		rotation := int16(-ev.value) // evdev: positive is away from the user
		if ev.code == relHWheel {
			dir = event.WheelHorizontal
			rotation = int16(ev.value)
		}
		emit(RawEvent{
			Kind:           RawWheel,
			When:           ev.when,
			X:              clampCoord(b.x),
			Y:              clampCoord(b.y),
			WheelRotation:  rotation,
			WheelAmount:    wheelTicks,
			WheelDirection: dir,
			WheelKind:      event.WheelUnitScroll,
		})
	}
}

func (b *evdevBackend) diagnose() (string, error) {
	if len(b.devices) > 0 {
		for _, path := range b.devices {
			f, err := os.OpenFile(path, os.O_RDONLY, 0)
			if err != nil {
				return "", fmt.Errorf("cannot open %s: %w", path, err)
			}
			f.Close()
		}
		return fmt.Sprintf("%d configured device(s) readable", len(b.devices)), nil
	}

	paths, err := findInputDevices()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: no keyboard or pointer devices found", ErrBackendUnavailable)
	}

	var opened int
	for _, path := range paths {
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err == nil {
			f.Close()
			opened++
		}
	}
	if opened == 0 {
		return "", fmt.Errorf("%w: found %d device(s) but cannot open any (run: sudo usermod -aG input $USER, then re-login)",
			ErrPermissionDenied, len(paths))
	}
	return fmt.Sprintf("%d input device(s) found, %d readable", len(paths), opened), nil
}

func buttonFromCode(code uint16) event.Button {
	switch code {
	case btnLeft:
		return event.Button1
	case btnRight:
		return event.Button2
	case btnMiddle:
		return event.Button3
	case btnSide:
		return event.Button4
	case btnExtra:
		return event.Button5
	}
	return event.NoButton
}

// findInputDevices returns evdev nodes whose sysfs capability bitmaps look
// like a keyboard or a pointer.
func findInputDevices() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var devices []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) || isPointer(e.Name()) {
			devices = append(devices, filepath.Join("/dev/input", e.Name()))
		}
	}
	return devices, nil
}

func isKeyboard(eventName string) bool {
	caps, err := readCapabilities(eventName, "key")
	if err != nil {
		return false
	}
	// Real keyboards have long key capability bitmaps.
	return len(caps) > 10
}

func isPointer(eventName string) bool {
	caps, err := readCapabilities(eventName, "rel")
	if err != nil {
		return false
	}
	// Any relative axis at all marks a mouse-like device.
	return caps != "" && caps != "0"
}

func readCapabilities(eventName, kind string) (string, error) {
	path := filepath.Join("/sys/class/input", eventName, "device", "capabilities", kind)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
