//go:build darwin

package hook

import "uihook/internal/event"

// Maps macOS virtual key codes (Carbon kVK_* layout) into the unified code
// space.
var macKeycodes = map[uint16]event.Keycode{
	0:  event.VcA,
	1:  event.VcS,
	2:  event.VcD,
	3:  event.VcF,
	4:  event.VcH,
	5:  event.VcG,
	6:  event.VcZ,
	7:  event.VcX,
	8:  event.VcC,
	9:  event.VcV,
	11: event.VcB,
	12: event.VcQ,
	13: event.VcW,
	14: event.VcE,
	15: event.VcR,
	16: event.VcY,
	17: event.VcT,
	18: event.Vc1,
	19: event.Vc2,
	20: event.Vc3,
	21: event.Vc4,
	22: event.Vc6,
	23: event.Vc5,
	24: event.VcEquals,
	25: event.Vc9,
	26: event.Vc7,
	27: event.VcMinus,
	28: event.Vc8,
	29: event.Vc0,
	30: event.VcCloseBracket,
	31: event.VcO,
	32: event.VcU,
	33: event.VcOpenBracket,
	34: event.VcI,
	35: event.VcP,
	36: event.VcEnter,
	37: event.VcL,
	38: event.VcJ,
	39: event.VcQuote,
	40: event.VcK,
	41: event.VcSemicolon,
	42: event.VcBackslash,
	43: event.VcComma,
	44: event.VcSlash,
	45: event.VcN,
	46: event.VcM,
	47: event.VcPeriod,
	48: event.VcTab,
	49: event.VcSpace,
	50: event.VcBackquote,
	51: event.VcBackspace,
	53: event.VcEscape,

	54: event.VcMetaR,
	55: event.VcMetaL,
	56: event.VcShiftL,
	57: event.VcCapsLock,
	58: event.VcAltL,
	59: event.VcControlL,
	60: event.VcShiftR,
	61: event.VcAltR,
	62: event.VcControlR,

	96:  event.VcF5,
	97:  event.VcF6,
	98:  event.VcF7,
	99:  event.VcF3,
	100: event.VcF8,
	101: event.VcF9,
	103: event.VcF11,
	109: event.VcF10,
	111: event.VcF12,
	114: event.VcInsert,
	115: event.VcHome,
	116: event.VcPageUp,
	117: event.VcDelete,
	118: event.VcF4,
	119: event.VcEnd,
	120: event.VcF2,
	121: event.VcPageDown,
	122: event.VcF1,
	123: event.VcLeft,
	124: event.VcRight,
	125: event.VcDown,
	126: event.VcUp,
}

func (b *darwinBackend) mapKeycode(raw uint16) event.Keycode {
	if kc, ok := macKeycodes[raw]; ok {
		return kc
	}
	return event.VcUndefined
}
