package hook

import (
	"errors"
	"sync"
	"testing"
	"time"

	"uihook/internal/event"
)

// recorder collects dispatched events.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) HandleEvent(e event.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]event.Type, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func keyDown(code uint16) RawEvent {
	return RawEvent{Kind: RawKeyDown, When: time.Now(), Code: code}
}

func keyUp(code uint16) RawEvent {
	return RawEvent{Kind: RawKeyUp, When: time.Now(), Code: code}
}

func TestStartStopLifecycle(t *testing.T) {
	h, fb := NewFake(Options{})

	if state, _ := h.Status(); state != Stopped {
		t.Fatalf("initial state = %v, want stopped", state)
	}

	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if state, _ := h.Status(); state != Running {
		t.Fatalf("state after Start = %v, want running", state)
	}
	if !fb.Installed() {
		t.Fatal("backend not installed after Start")
	}

	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if state, _ := h.Status(); state != Stopped {
		t.Fatalf("state after Stop = %v, want stopped", state)
	}
	if fb.Installed() {
		t.Fatal("backend still installed after Stop")
	}
}

func TestStartWhileRunning(t *testing.T) {
	h, fb := NewFake(Options{})

	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer h.Stop()

	if err := h.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start() = %v, want ErrAlreadyRunning", err)
	}
	if state, _ := h.Status(); state != Running {
		t.Fatalf("state after failed Start = %v, want running", state)
	}
	if !fb.Installed() {
		t.Fatal("failed Start must not disturb the installed backend")
	}
}

func TestStopWhileStopped(t *testing.T) {
	h, _ := NewFake(Options{})

	if err := h.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop() on stopped hook = %v, want ErrNotRunning", err)
	}
}

func TestStartInstallError(t *testing.T) {
	h, fb := NewFake(Options{})
	fb.SetInstallErr(ErrPermissionDenied)

	if err := h.Start(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Start() = %v, want ErrPermissionDenied", err)
	}

	state, lastErr := h.Status()
	if state != Stopped {
		t.Fatalf("state after failed Start = %v, want stopped", state)
	}
	if !errors.Is(lastErr, ErrPermissionDenied) {
		t.Fatalf("Status() error = %v, want ErrPermissionDenied", lastErr)
	}

	// The hook must be startable again once the cause is gone.
	fb.SetInstallErr(nil)
	if err := h.Start(); err != nil {
		t.Fatalf("Start() after recovery = %v", err)
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

func TestLifecycleEventsBracketSession(t *testing.T) {
	h, fb := NewFake(Options{})
	rec := &recorder{}
	h.Register(rec)

	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	fb.Emit(keyDown(uint16(event.VcA)))
	fb.Emit(keyUp(uint16(event.VcA)))
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}

	types := rec.types()
	want := []event.Type{event.HookEnabled, event.KeyPressed, event.KeyReleased, event.HookDisabled}
	if len(types) != len(want) {
		t.Fatalf("got %d events %v, want %v", len(types), types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestNoDispatchAfterStop(t *testing.T) {
	h, fb := NewFake(Options{})
	rec := &recorder{}
	h.Register(rec)

	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}

	before := rec.count()
	fb.Emit(keyDown(uint16(event.VcA)))
	if got := rec.count(); got != before {
		t.Fatalf("handler invoked after Stop: %d events, want %d", got, before)
	}
}

func TestConcurrentStop(t *testing.T) {
	h, fb := NewFake(Options{})
	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- h.Stop()
		}()
	}
	wg.Wait()
	close(errs)

	var nilErrs, notRunning int
	for err := range errs {
		switch {
		case err == nil:
			nilErrs++
		case errors.Is(err, ErrNotRunning):
			notRunning++
		default:
			t.Fatalf("unexpected Stop() error: %v", err)
		}
	}
	if nilErrs != 1 || notRunning != 1 {
		t.Fatalf("concurrent Stop: %d nil, %d ErrNotRunning, want 1 and 1", nilErrs, notRunning)
	}
	if got := fb.Uninstalls(); got != 1 {
		t.Fatalf("uninstall ran %d times, want 1", got)
	}
}

func TestRegisterWhileRunning(t *testing.T) {
	h, fb := NewFake(Options{})
	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer h.Stop()

	fb.Emit(keyDown(uint16(event.VcA)))

	rec := &recorder{}
	h.Register(rec)
	fb.Emit(keyUp(uint16(event.VcA)))

	types := rec.types()
	if len(types) != 1 || types[0] != event.KeyReleased {
		t.Fatalf("late-registered handler got %v, want [key_released]", types)
	}
}

func TestHandlerPanicContained(t *testing.T) {
	h, fb := NewFake(Options{})
	h.Register(HandlerFunc(func(event.Event) {
		panic("handler bug")
	}))

	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	fb.Emit(keyDown(uint16(event.VcA)))

	if state, _ := h.Status(); state != Running {
		t.Fatalf("state after handler panic = %v, want running", state)
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

func TestBackendFault(t *testing.T) {
	h, fb := NewFake(Options{})
	rec := &recorder{}
	h.Register(rec)

	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	faultErr := errors.New("hook revoked")
	fb.Fault(faultErr)

	state, lastErr := h.Status()
	if state != Stopped {
		t.Fatalf("state after fault = %v, want stopped", state)
	}
	if !errors.Is(lastErr, faultErr) {
		t.Fatalf("Status() error = %v, want %v", lastErr, faultErr)
	}

	types := rec.types()
	if len(types) == 0 || types[len(types)-1] != event.HookDisabled {
		t.Fatalf("events after fault = %v, want trailing hook_disabled", types)
	}

	if err := h.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop() after fault = %v, want ErrNotRunning", err)
	}
}

// teardownFaultBackend raises a fault from inside uninstall, mimicking a
// backend that dies while a Stop is already tearing it down.
type teardownFaultBackend struct {
	fault func(error)
}

func (b *teardownFaultBackend) install(emit func(RawEvent), fault func(error)) error {
	b.fault = fault
	return nil
}

func (b *teardownFaultBackend) uninstall() error {
	b.fault(errors.New("hook revoked mid-teardown"))
	return nil
}

func (b *teardownFaultBackend) mapKeycode(raw uint16) event.Keycode {
	return event.Keycode(raw)
}

func (b *teardownFaultBackend) diagnose() (string, error) { return "", nil }

func TestFaultDuringStopYieldsToStop(t *testing.T) {
	h := newHook(&teardownFaultBackend{}, Options{}.withDefaults())
	rec := &recorder{}
	h.Register(rec)

	if err := h.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}

	state, lastErr := h.Status()
	if state != Stopped {
		t.Fatalf("state after Stop = %v, want stopped", state)
	}
	if lastErr != nil {
		t.Fatalf("Status() error = %v, want nil from the clean uninstall", lastErr)
	}

	var disabled int
	for _, typ := range rec.types() {
		if typ == event.HookDisabled {
			disabled++
		}
	}
	if disabled != 1 {
		t.Fatalf("got %d hook_disabled events, want exactly 1", disabled)
	}
}

func TestRunBlocksUntilStop(t *testing.T) {
	h, _ := NewFake(Options{})

	done := make(chan error, 1)
	go func() {
		done <- h.Run()
	}()

	waitForState(t, h, Running)

	select {
	case err := <-done:
		t.Fatalf("Run() returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after Stop")
	}
}

func TestRunReturnsFaultError(t *testing.T) {
	h, fb := NewFake(Options{})

	done := make(chan error, 1)
	go func() {
		done <- h.Run()
	}()

	waitForState(t, h, Running)

	faultErr := errors.New("device unplugged")
	fb.Fault(faultErr)

	select {
	case err := <-done:
		if !errors.Is(err, faultErr) {
			t.Fatalf("Run() = %v, want %v", err, faultErr)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after fault")
	}
}

func TestRestartAfterStop(t *testing.T) {
	h, fb := NewFake(Options{})
	rec := &recorder{}
	h.Register(rec)

	for i := 0; i < 3; i++ {
		if err := h.Start(); err != nil {
			t.Fatalf("Start() #%d = %v", i, err)
		}
		fb.Emit(keyDown(uint16(event.VcShiftL)))
		if err := h.Stop(); err != nil {
			t.Fatalf("Stop() #%d = %v", i, err)
		}
	}

	// Modifier state must not leak across sessions: every session's press
	// starts from an empty mask plus shift.
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, e := range rec.events {
		if e.Type == event.KeyPressed && e.Modifiers != event.MaskShiftL {
			t.Fatalf("press modifiers = 0x%03X, want shift only", uint16(e.Modifiers))
		}
	}
}

func waitForState(t *testing.T, h *Hook, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if state, _ := h.Status(); state == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	state, _ := h.Status()
	t.Fatalf("state = %v, want %v", state, want)
}
