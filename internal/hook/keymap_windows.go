//go:build windows

package hook

import "uihook/internal/event"

// Maps Windows virtual-key codes into the unified code space.
func (b *winBackend) mapKeycode(raw uint16) event.Keycode {
	// Letters A-Z.
	if raw >= 0x41 && raw <= 0x5A {
		return winLetters[raw-0x41]
	}
	// Top-row digits: VK '1'..'9' then '0'.
	if raw >= 0x31 && raw <= 0x39 {
		return event.Vc1 + event.Keycode(raw-0x31)
	}
	if raw == 0x30 {
		return event.Vc0
	}
	// F1-F12.
	if raw >= 0x70 && raw <= 0x79 {
		return event.VcF1 + event.Keycode(raw-0x70)
	}
	if raw == 0x7A {
		return event.VcF11
	}
	if raw == 0x7B {
		return event.VcF12
	}

	switch raw {
	case 0x1B:
		return event.VcEscape
	case 0x08:
		return event.VcBackspace
	case 0x09:
		return event.VcTab
	case 0x0D:
		return event.VcEnter
	case 0x14:
		return event.VcCapsLock
	case 0x20:
		return event.VcSpace
	case 0x10, 0xA0:
		return event.VcShiftL
	case 0xA1:
		return event.VcShiftR
	case 0x11, 0xA2:
		return event.VcControlL
	case 0xA3:
		return event.VcControlR
	case 0x12, 0xA4:
		return event.VcAltL
	case 0xA5:
		return event.VcAltR
	case 0x5B:
		return event.VcMetaL
	case 0x5C:
		return event.VcMetaR
	case 0x5D:
		return event.VcContextMenu
	case 0x21:
		return event.VcPageUp
	case 0x22:
		return event.VcPageDown
	case 0x23:
		return event.VcEnd
	case 0x24:
		return event.VcHome
	case 0x25:
		return event.VcLeft
	case 0x26:
		return event.VcUp
	case 0x27:
		return event.VcRight
	case 0x28:
		return event.VcDown
	case 0x2C:
		return event.VcPrintScreen
	case 0x2D:
		return event.VcInsert
	case 0x2E:
		return event.VcDelete
	case 0x13:
		return event.VcPause
	case 0x91:
		return event.VcScrollLock
	case 0xBA:
		return event.VcSemicolon
	case 0xBB:
		return event.VcEquals
	case 0xBC:
		return event.VcComma
	case 0xBD:
		return event.VcMinus
	case 0xBE:
		return event.VcPeriod
	case 0xBF:
		return event.VcSlash
	case 0xC0:
		return event.VcBackquote
	case 0xDB:
		return event.VcOpenBracket
	case 0xDC:
		return event.VcBackslash
	case 0xDD:
		return event.VcCloseBracket
	case 0xDE:
		return event.VcQuote
	}
	return event.VcUndefined
}

var winLetters = [26]event.Keycode{
	event.VcA, event.VcB, event.VcC, event.VcD, event.VcE, event.VcF,
	event.VcG, event.VcH, event.VcI, event.VcJ, event.VcK, event.VcL,
	event.VcM, event.VcN, event.VcO, event.VcP, event.VcQ, event.VcR,
	event.VcS, event.VcT, event.VcU, event.VcV, event.VcW, event.VcX,
	event.VcY, event.VcZ,
}
