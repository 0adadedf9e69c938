package hook

import (
	"time"

	"uihook/internal/event"
)

// RawKind identifies the kind of a platform raw event.
type RawKind uint8

const (
	RawKeyDown RawKind = iota
	RawKeyUp
	RawButtonDown
	RawButtonUp
	RawMove
	RawWheel
)

// RawEvent is one unnormalized record delivered by a capture backend. Key
// events carry Code (the platform virtual key code) and optionally Char;
// mouse events carry Button and screen coordinates; wheel events additionally
// carry the rotation fields.
type RawEvent struct {
	Kind RawKind
	When time.Time

	Code uint16
	Char rune

	Button event.Button
	X, Y   int16

	WheelRotation  int16
	WheelAmount    uint16
	WheelDirection event.WheelDirection
	WheelKind      event.WheelKind
}

// clampCoord saturates a platform coordinate into the int16 event range
// instead of wrapping on wide multi-monitor layouts.
func clampCoord(v int32) int16 {
	if v > 0x7FFF {
		return 0x7FFF
	}
	if v < -0x8000 {
		return -0x8000
	}
	return int16(v)
}
