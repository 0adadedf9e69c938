// Package event defines the unified, platform-independent input event model.
package event

import (
	"fmt"
	"time"
)

// Type identifies the kind of input event.
type Type uint8

const (
	HookEnabled Type = iota
	HookDisabled
	KeyPressed
	KeyReleased
	KeyTyped
	MousePressed
	MouseReleased
	MouseClicked
	MouseMoved
	MouseDragged
	MouseWheel
)

func (t Type) String() string {
	switch t {
	case HookEnabled:
		return "hook_enabled"
	case HookDisabled:
		return "hook_disabled"
	case KeyPressed:
		return "key_pressed"
	case KeyReleased:
		return "key_released"
	case KeyTyped:
		return "key_typed"
	case MousePressed:
		return "mouse_pressed"
	case MouseReleased:
		return "mouse_released"
	case MouseClicked:
		return "mouse_clicked"
	case MouseMoved:
		return "mouse_moved"
	case MouseDragged:
		return "mouse_dragged"
	case MouseWheel:
		return "mouse_wheel"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// IsKeyboard reports whether the type is one of the key event variants.
func (t Type) IsKeyboard() bool {
	return t == KeyPressed || t == KeyReleased || t == KeyTyped
}

// IsMouse reports whether the type is a mouse button or motion variant.
func (t Type) IsMouse() bool {
	switch t {
	case MousePressed, MouseReleased, MouseClicked, MouseMoved, MouseDragged:
		return true
	}
	return false
}

// Modifiers is a bitmask of modifier keys and mouse buttons held while an
// event was generated. Left and right variants carry distinct bits.
type Modifiers uint16

const (
	MaskShiftL Modifiers = 1 << 0
	MaskCtrlL  Modifiers = 1 << 1
	MaskMetaL  Modifiers = 1 << 2
	MaskAltL   Modifiers = 1 << 3
	MaskShiftR Modifiers = 1 << 4
	MaskCtrlR  Modifiers = 1 << 5
	MaskMetaR  Modifiers = 1 << 6
	MaskAltR   Modifiers = 1 << 7

	MaskButton1 Modifiers = 1 << 8
	MaskButton2 Modifiers = 1 << 9
	MaskButton3 Modifiers = 1 << 10
	MaskButton4 Modifiers = 1 << 11
	MaskButton5 Modifiers = 1 << 12

	MaskShift = MaskShiftL | MaskShiftR
	MaskCtrl  = MaskCtrlL | MaskCtrlR
	MaskMeta  = MaskMetaL | MaskMetaR
	MaskAlt   = MaskAltL | MaskAltR

	MaskButtons = MaskButton1 | MaskButton2 | MaskButton3 | MaskButton4 | MaskButton5
)

// Has reports whether any bit of mask is set.
func (m Modifiers) Has(mask Modifiers) bool {
	return m&mask != 0
}

// Button identifies a mouse button.
type Button uint16

const (
	NoButton Button = iota
	Button1         // left
	Button2         // right
	Button3         // middle
	Button4
	Button5
)

func (b Button) String() string {
	if b == NoButton {
		return "none"
	}
	return fmt.Sprintf("button%d", uint16(b))
}

// Mask returns the held-button modifier bit for the button, or zero for
// NoButton and out-of-range values.
func (b Button) Mask() Modifiers {
	if b < Button1 || b > Button5 {
		return 0
	}
	return MaskButton1 << (b - Button1)
}

// WheelDirection identifies the scroll axis of a wheel event.
type WheelDirection uint8

const (
	WheelVertical   WheelDirection = 3
	WheelHorizontal WheelDirection = 4
)

func (d WheelDirection) String() string {
	if d == WheelHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// WheelKind identifies how the platform reported the scroll amount.
type WheelKind uint8

const (
	WheelUnitScroll  WheelKind = 1
	WheelBlockScroll WheelKind = 2
)

// KeyData is the payload of key events.
type KeyData struct {
	// Keycode is the unified virtual key code.
	Keycode Keycode

	// RawCode is the platform-native code, preserved for diagnostics.
	RawCode uint16

	// Char is the decoded character for KeyTyped events, zero otherwise.
	Char rune
}

// MouseData is the payload of mouse button, motion and wheel events.
type MouseData struct {
	Button Button

	// Clicks is the consecutive click count within the double-click window.
	Clicks uint16

	// X, Y are screen coordinates.
	X, Y int16
}

// WheelData is the payload of wheel events.
type WheelData struct {
	// Amount is the scroll amount per rotation unit.
	Amount uint16

	// Rotation is the signed number of rotation units, negative scrolling
	// up or left.
	Rotation int16

	Direction WheelDirection
	Kind      WheelKind
}

// IsVertical reports whether the wheel event scrolls the vertical axis.
func (w WheelData) IsVertical() bool { return w.Direction != WheelHorizontal }

// IsHorizontal reports whether the wheel event scrolls the horizontal axis.
func (w WheelData) IsHorizontal() bool { return w.Direction == WheelHorizontal }

// Event is one normalized input event. Key is valid for key variants, Mouse
// for mouse and wheel variants, Wheel for MouseWheel only. Events are
// constructed once by the capture session and never mutated afterwards.
type Event struct {
	Type      Type
	When      time.Time
	Modifiers Modifiers
	Key       KeyData
	Mouse     MouseData
	Wheel     WheelData
}

func (e Event) String() string {
	switch {
	case e.Type.IsKeyboard():
		if e.Key.Char != 0 {
			return fmt.Sprintf("%s key=%s raw=0x%X char=%q mask=0x%03X",
				e.Type, e.Key.Keycode.Name(), e.Key.RawCode, e.Key.Char, uint16(e.Modifiers))
		}
		return fmt.Sprintf("%s key=%s raw=0x%X mask=0x%03X",
			e.Type, e.Key.Keycode.Name(), e.Key.RawCode, uint16(e.Modifiers))
	case e.Type == MouseWheel:
		return fmt.Sprintf("%s rotation=%d amount=%d dir=%s at=(%d,%d)",
			e.Type, e.Wheel.Rotation, e.Wheel.Amount, e.Wheel.Direction, e.Mouse.X, e.Mouse.Y)
	case e.Type.IsMouse():
		return fmt.Sprintf("%s btn=%s clicks=%d at=(%d,%d) mask=0x%03X",
			e.Type, e.Mouse.Button, e.Mouse.Clicks, e.Mouse.X, e.Mouse.Y, uint16(e.Modifiers))
	}
	return e.Type.String()
}
