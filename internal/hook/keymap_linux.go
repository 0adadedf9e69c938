//go:build linux

package hook

import "uihook/internal/event"

// The kernel's KEY_* codes match XT scan code set 1 for the classic range,
// so only the extended keys need an explicit mapping.
var linuxKeycodes = map[uint16]event.Keycode{
	96:  event.VcEnter, // keypad enter
	97:  event.VcControlR,
	99:  event.VcPrintScreen,
	100: event.VcAltR,
	102: event.VcHome,
	103: event.VcUp,
	104: event.VcPageUp,
	105: event.VcLeft,
	106: event.VcRight,
	107: event.VcEnd,
	108: event.VcDown,
	109: event.VcPageDown,
	110: event.VcInsert,
	111: event.VcDelete,
	119: event.VcPause,
	125: event.VcMetaL,
	126: event.VcMetaR,
	127: event.VcContextMenu,
}

func (b *evdevBackend) mapKeycode(raw uint16) event.Keycode {
	if kc, ok := linuxKeycodes[raw]; ok {
		return kc
	}
	if raw <= uint16(event.VcF12) {
		return event.Keycode(raw)
	}
	return event.VcUndefined
}
