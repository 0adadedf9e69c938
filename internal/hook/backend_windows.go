//go:build windows

package hook

import (
	"fmt"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"uihook/internal/event"
	"uihook/internal/logging"
)

// Windows capture backend using low-level keyboard and mouse hooks. The
// hooks must live on the thread that runs the message loop, so install spawns
// a locked-OS-thread goroutine owning both.

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
	procGetCurrentThreadId  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C
	wmMouseHWheel = 0x020E

	wmQuit = 0x0012

	wheelDelta = 120
	wheelLines = 3 // unit-scroll lines per notch
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msllHookStruct struct {
	Point       struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type winMsg struct {
	Hwnd    syscall.Handle
	Message uint32
	Wparam  uintptr
	Lparam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Hook procedures registered with syscall.NewCallback cannot carry context,
// so the active backend is package state, written only while no capture
// thread is alive.
var (
	activeBackend *winBackend
	keyboardHook  uintptr
	mouseHook     uintptr

	// Callbacks are created once: NewCallback allocations are never released.
	keyboardCallback = syscall.NewCallback(keyboardHookProc)
	mouseCallback    = syscall.NewCallback(mouseHookProc)
)

type winBackend struct {
	emit     func(RawEvent)
	threadID uint32
	done     chan struct{}
}

func newPlatformBackend(opts Options) backend {
	return &winBackend{}
}

func (b *winBackend) install(emit func(RawEvent), fault func(error)) error {
	b.emit = emit
	b.done = make(chan struct{})
	activeBackend = b

	ready := make(chan error, 1)
	go func() {
		defer close(b.done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		hMod, _, _ := procGetModuleHandle.Call(0)

		kh, _, err := procSetWindowsHookEx.Call(
			whKeyboardLL,
			keyboardCallback,
			hMod,
			0,
		)
		if kh == 0 {
			ready <- installError("SetWindowsHookEx(WH_KEYBOARD_LL)", err)
			return
		}
		keyboardHook = kh

		mh, _, err := procSetWindowsHookEx.Call(
			whMouseLL,
			mouseCallback,
			hMod,
			0,
		)
		if mh == 0 {
			procUnhookWindowsHookEx.Call(kh)
			keyboardHook = 0
			ready <- installError("SetWindowsHookEx(WH_MOUSE_LL)", err)
			return
		}
		mouseHook = mh

		tid, _, _ := procGetCurrentThreadId.Call()
		b.threadID = uint32(tid)
		ready <- nil

		logging.Logger.Debug().Msg("low-level hooks installed")

		var msg winMsg
		for {
			ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) <= 0 {
				break
			}
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
		}

		procUnhookWindowsHookEx.Call(keyboardHook)
		procUnhookWindowsHookEx.Call(mouseHook)
		keyboardHook = 0
		mouseHook = 0
	}()

	if err := <-ready; err != nil {
		<-b.done
		activeBackend = nil
		return err
	}
	return nil
}

func (b *winBackend) uninstall() error {
	procPostThreadMessage.Call(uintptr(b.threadID), wmQuit, 0, 0)
	<-b.done
	activeBackend = nil
	return nil
}

func (b *winBackend) diagnose() (string, error) {
	return "low-level keyboard and mouse hooks available", nil
}

func installError(op string, err error) error {
	if errno, ok := err.(syscall.Errno); ok && errno != 0 {
		if errno == windows.ERROR_ACCESS_DENIED {
			return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, op, err)
		}
		return &NativeError{Op: op, Code: int64(errno)}
	}
	return &NativeError{Op: op}
}

func keyboardHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 && activeBackend != nil {
		kbd := (*kbdllHookStruct)(unsafe.Pointer(lParam))

		var kind RawKind
		deliver := true
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			kind = RawKeyDown
		case wmKeyUp, wmSysKeyUp:
			kind = RawKeyUp
		default:
			deliver = false
		}
		if deliver {
			activeBackend.emit(RawEvent{
				Kind: kind,
				When: time.Now(),
				Code: uint16(kbd.VkCode),
			})
		}
	}

	ret, _, _ := procCallNextHookEx.Call(keyboardHook, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 && activeBackend != nil {
		ms := (*msllHookStruct)(unsafe.Pointer(lParam))
		raw := RawEvent{
			When: time.Now(),
			X:    clampCoord(ms.Point.X),
			Y:    clampCoord(ms.Point.Y),
		}

		deliver := true
		switch wParam {
		case wmMouseMove:
			raw.Kind = RawMove
		case wmLButtonDown:
			raw.Kind, raw.Button = RawButtonDown, event.Button1
		case wmLButtonUp:
			raw.Kind, raw.Button = RawButtonUp, event.Button1
		case wmRButtonDown:
			raw.Kind, raw.Button = RawButtonDown, event.Button2
		case wmRButtonUp:
			raw.Kind, raw.Button = RawButtonUp, event.Button2
		case wmMButtonDown:
			raw.Kind, raw.Button = RawButtonDown, event.Button3
		case wmMButtonUp:
			raw.Kind, raw.Button = RawButtonUp, event.Button3
		case wmXButtonDown, wmXButtonUp:
			raw.Kind = RawButtonDown
			if wParam == wmXButtonUp {
				raw.Kind = RawButtonUp
			}
			if (ms.MouseData >> 16) == 1 {
				raw.Button = event.Button4
			} else {
				raw.Button = event.Button5
			}
		case wmMouseWheel, wmMouseHWheel:
			raw.Kind = RawWheel
			raw.WheelRotation = -int16(ms.MouseData>>16) / wheelDelta
			raw.WheelAmount = wheelLines
			raw.WheelDirection = event.WheelVertical
			raw.WheelKind = event.WheelUnitScroll
			if wParam == wmMouseHWheel {
				raw.WheelDirection = event.WheelHorizontal
				raw.WheelRotation = -raw.WheelRotation
			}
		default:
			deliver = false
		}
		if deliver {
			activeBackend.emit(raw)
		}
	}

	ret, _, _ := procCallNextHookEx.Call(mouseHook, uintptr(nCode), wParam, lParam)
	return ret
}
