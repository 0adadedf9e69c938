//go:build darwin

package hook

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

static Boolean axCheckTrusted(Boolean prompt) {
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
	CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
	                                             &kCFTypeDictionaryKeyCallBacks,
	                                             &kCFTypeDictionaryValueCallBacks);
	Boolean trusted = AXIsProcessTrustedWithOptions(options);
	CFRelease(options);
	return trusted;
}

extern CGEventRef goHookEvent(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static CGEventMask hookEventMask(void) {
	return CGEventMaskBit(kCGEventKeyDown) |
	       CGEventMaskBit(kCGEventKeyUp) |
	       CGEventMaskBit(kCGEventFlagsChanged) |
	       CGEventMaskBit(kCGEventLeftMouseDown) |
	       CGEventMaskBit(kCGEventLeftMouseUp) |
	       CGEventMaskBit(kCGEventRightMouseDown) |
	       CGEventMaskBit(kCGEventRightMouseUp) |
	       CGEventMaskBit(kCGEventOtherMouseDown) |
	       CGEventMaskBit(kCGEventOtherMouseUp) |
	       CGEventMaskBit(kCGEventMouseMoved) |
	       CGEventMaskBit(kCGEventLeftMouseDragged) |
	       CGEventMaskBit(kCGEventRightMouseDragged) |
	       CGEventMaskBit(kCGEventOtherMouseDragged) |
	       CGEventMaskBit(kCGEventScrollWheel);
}

static CFRunLoopSourceRef startHookTap(uintptr_t refcon, CFMachPortRef *tapOut) {
	CFMachPortRef tap = CGEventTapCreate(kCGSessionEventTap,
	                                     kCGHeadInsertEventTap,
	                                     kCGEventTapOptionListenOnly,
	                                     hookEventMask(),
	                                     goHookEvent,
	                                     (void *)refcon);
	if (tap == NULL) {
		return NULL;
	}
	CGEventTapEnable(tap, true);
	CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
	*tapOut = tap;
	return source;
}

static void reenableTap(CFMachPortRef tap) {
	CGEventTapEnable(tap, true);
}

static double cgEventGetX(CGEventRef event) {
	return CGEventGetLocation(event).x;
}

static double cgEventGetY(CGEventRef event) {
	return CGEventGetLocation(event).y;
}

static uint16_t cgEventKeyChar(CGEventRef event) {
	UniChar chars[4];
	UniCharCount len = 0;
	CGEventKeyboardGetUnicodeString(event, 4, &len, chars);
	return len > 0 ? chars[0] : 0;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"runtime/cgo"
	"sync"
	"time"
	"unsafe"

	"uihook/internal/event"
	"uihook/internal/logging"
)

// macOS capture backend hosting a listen-only CGEventTap in a CFRunLoop.
// The run loop is the capture thread; teardown signals the loop to exit
// instead of killing the thread, so run-loop-owned structures are released
// on their own thread.
type darwinBackend struct {
	emit  func(RawEvent)
	fault func(error)

	loop     C.CFRunLoopRef
	tap      C.CFMachPortRef
	stopOnce *sync.Once
	done     chan struct{}

	// Written on the run loop thread only.
	reenabled bool
	faultErr  error
}

func newPlatformBackend(opts Options) backend {
	return &darwinBackend{}
}

func (b *darwinBackend) install(emit func(RawEvent), fault func(error)) error {
	if C.axCheckTrusted(C.Boolean(1)) == C.Boolean(0) {
		return fmt.Errorf("%w: grant access under System Settings > Privacy & Security > Accessibility", ErrPermissionDenied)
	}

	b.emit = emit
	b.fault = fault
	b.stopOnce = &sync.Once{}
	b.done = make(chan struct{})
	b.reenabled = false
	b.faultErr = nil

	ready := make(chan error, 1)
	go func() {
		defer close(b.done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		handle := cgo.NewHandle(b)
		defer handle.Delete()

		var tap C.CFMachPortRef
		source := C.startHookTap(C.uintptr_t(handle), &tap)
		if source == 0 {
			ready <- fmt.Errorf("%w: failed to create event tap", ErrBackendUnavailable)
			return
		}
		b.tap = tap
		b.loop = C.CFRunLoopGetCurrent()
		C.CFRunLoopAddSource(b.loop, source, C.kCFRunLoopCommonModes)
		ready <- nil

		logging.Logger.Debug().Msg("event tap installed")
		C.CFRunLoopRun()

		C.CFRelease(C.CFTypeRef(source))
		C.CFRelease(C.CFTypeRef(tap))

		// A loop exit forced by a dead tap is reported only after the
		// run-loop-owned structures are released.
		if b.faultErr != nil {
			fault(b.faultErr)
		}
	}()

	if err := <-ready; err != nil {
		<-b.done
		return err
	}
	return nil
}

func (b *darwinBackend) uninstall() error {
	b.stopLoop()
	<-b.done
	return nil
}

func (b *darwinBackend) stopLoop() {
	b.stopOnce.Do(func() {
		C.CFRunLoopStop(b.loop)
	})
}

func (b *darwinBackend) diagnose() (string, error) {
	if C.axCheckTrusted(C.Boolean(0)) == C.Boolean(0) {
		return "", fmt.Errorf("%w: grant access under System Settings > Privacy & Security > Accessibility", ErrPermissionDenied)
	}
	return "accessibility permission granted, event tap available", nil
}

//export goHookEvent
func goHookEvent(_ C.CGEventTapProxy, eventType C.CGEventType, cgEvent C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	handle := cgo.Handle(uintptr(refcon))
	b, ok := handle.Value().(*darwinBackend)
	if !ok {
		return cgEvent
	}

	// The OS disables taps it considers too slow; a listen-only tap can be
	// re-enabled safely once. A tap that keeps getting disabled, or one
	// disabled by user input, is dead: stop the loop and fault the session.
	if eventType == C.kCGEventTapDisabledByTimeout || eventType == C.kCGEventTapDisabledByUserInput {
		if err := tapDisableError(eventType == C.kCGEventTapDisabledByUserInput, b.reenabled); err != nil {
			b.faultErr = err
			b.stopLoop()
			return cgEvent
		}
		b.reenabled = true
		logging.Logger.Warn().Msg("event tap disabled by timeout, re-enabling")
		C.reenableTap(b.tap)
		return cgEvent
	}

	raw := RawEvent{
		When: time.Now(),
		X:    clampCoord(int32(C.cgEventGetX(cgEvent))),
		Y:    clampCoord(int32(C.cgEventGetY(cgEvent))),
	}

	switch eventType {
	case C.kCGEventKeyDown, C.kCGEventKeyUp:
		raw.Kind = RawKeyDown
		if eventType == C.kCGEventKeyUp {
			raw.Kind = RawKeyUp
		}
		raw.Code = uint16(C.CGEventGetIntegerValueField(cgEvent, C.kCGKeyboardEventKeycode))
		if raw.Kind == RawKeyDown {
			if ch := rune(C.cgEventKeyChar(cgEvent)); ch >= 0x20 && ch != 0x7F {
				raw.Char = ch
			}
		}
		b.emit(raw)

	case C.kCGEventFlagsChanged:
		// Modifier transitions arrive as flag changes; the flag bit tells
		// press from release.
		raw.Code = uint16(C.CGEventGetIntegerValueField(cgEvent, C.kCGKeyboardEventKeycode))
		mask := macModifierFlag(raw.Code)
		if mask == 0 {
			break
		}
		raw.Kind = RawKeyUp
		if uint64(C.CGEventGetFlags(cgEvent))&mask != 0 {
			raw.Kind = RawKeyDown
		}
		b.emit(raw)

	case C.kCGEventLeftMouseDown, C.kCGEventLeftMouseUp,
		C.kCGEventRightMouseDown, C.kCGEventRightMouseUp,
		C.kCGEventOtherMouseDown, C.kCGEventOtherMouseUp:
		raw.Kind = RawButtonDown
		switch eventType {
		case C.kCGEventLeftMouseUp, C.kCGEventRightMouseUp, C.kCGEventOtherMouseUp:
			raw.Kind = RawButtonUp
		}
		raw.Button = macButton(int64(C.CGEventGetIntegerValueField(cgEvent, C.kCGMouseEventButtonNumber)))
		b.emit(raw)

	case C.kCGEventMouseMoved,
		C.kCGEventLeftMouseDragged, C.kCGEventRightMouseDragged, C.kCGEventOtherMouseDragged:
		raw.Kind = RawMove
		b.emit(raw)

	case C.kCGEventScrollWheel:
		raw.Kind = RawWheel
		raw.WheelAmount = wheelUnitAmount
		raw.WheelKind = event.WheelUnitScroll
		if d := int16(C.CGEventGetIntegerValueField(cgEvent, C.kCGScrollWheelEventDeltaAxis1)); d != 0 {
			raw.WheelRotation = -d
			raw.WheelDirection = event.WheelVertical
		} else {
			raw.WheelRotation = int16(C.CGEventGetIntegerValueField(cgEvent, C.kCGScrollWheelEventDeltaAxis2))
			raw.WheelDirection = event.WheelHorizontal
		}
		b.emit(raw)
	}

	return cgEvent
}

const wheelUnitAmount = 3

// tapDisableError decides whether a disabled tap is recoverable: nil means
// re-enable, an error ends the capture session.
func tapDisableError(byUserInput, alreadyReenabled bool) error {
	if byUserInput {
		return fmt.Errorf("%w: event tap disabled by user input", ErrBackendUnavailable)
	}
	if alreadyReenabled {
		return fmt.Errorf("%w: event tap repeatedly disabled by timeout", ErrBackendUnavailable)
	}
	return nil
}

func macButton(number int64) event.Button {
	switch number {
	case 0:
		return event.Button1
	case 1:
		return event.Button2
	case 2:
		return event.Button3
	case 3:
		return event.Button4
	case 4:
		return event.Button5
	}
	return event.NoButton
}

// macModifierFlag returns the CGEventFlags bit for a modifier keycode.
func macModifierFlag(code uint16) uint64 {
	switch code {
	case 54, 55: // command keys
		return uint64(C.kCGEventFlagMaskCommand)
	case 56, 60: // shift keys
		return uint64(C.kCGEventFlagMaskShift)
	case 58, 61: // option keys
		return uint64(C.kCGEventFlagMaskAlternate)
	case 59, 62: // control keys
		return uint64(C.kCGEventFlagMaskControl)
	case 57: // caps lock
		return uint64(C.kCGEventFlagMaskAlphaShift)
	}
	return 0
}
