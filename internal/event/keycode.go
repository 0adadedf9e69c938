package event

import "fmt"

// Keycode is the unified virtual key code space. Values follow XT scan code
// set 1; keys from the extended block are ORed with 0xE000. The classic range
// is shared with the Linux kernel's KEY_* codes, which keeps the evdev
// mapping close to the identity.
type Keycode uint16

const (
	VcUndefined Keycode = 0x0000

	VcEscape Keycode = 0x0001
	Vc1      Keycode = 0x0002
	Vc2      Keycode = 0x0003
	Vc3      Keycode = 0x0004
	Vc4      Keycode = 0x0005
	Vc5      Keycode = 0x0006
	Vc6      Keycode = 0x0007
	Vc7      Keycode = 0x0008
	Vc8      Keycode = 0x0009
	Vc9      Keycode = 0x000A
	Vc0      Keycode = 0x000B

	VcMinus     Keycode = 0x000C
	VcEquals    Keycode = 0x000D
	VcBackspace Keycode = 0x000E
	VcTab       Keycode = 0x000F

	VcQ Keycode = 0x0010
	VcW Keycode = 0x0011
	VcE Keycode = 0x0012
	VcR Keycode = 0x0013
	VcT Keycode = 0x0014
	VcY Keycode = 0x0015
	VcU Keycode = 0x0016
	VcI Keycode = 0x0017
	VcO Keycode = 0x0018
	VcP Keycode = 0x0019

	VcOpenBracket  Keycode = 0x001A
	VcCloseBracket Keycode = 0x001B
	VcEnter        Keycode = 0x001C
	VcControlL     Keycode = 0x001D

	VcA Keycode = 0x001E
	VcS Keycode = 0x001F
	VcD Keycode = 0x0020
	VcF Keycode = 0x0021
	VcG Keycode = 0x0022
	VcH Keycode = 0x0023
	VcJ Keycode = 0x0024
	VcK Keycode = 0x0025
	VcL Keycode = 0x0026

	VcSemicolon Keycode = 0x0027
	VcQuote     Keycode = 0x0028
	VcBackquote Keycode = 0x0029
	VcShiftL    Keycode = 0x002A
	VcBackslash Keycode = 0x002B

	VcZ Keycode = 0x002C
	VcX Keycode = 0x002D
	VcC Keycode = 0x002E
	VcV Keycode = 0x002F
	VcB Keycode = 0x0030
	VcN Keycode = 0x0031
	VcM Keycode = 0x0032

	VcComma  Keycode = 0x0033
	VcPeriod Keycode = 0x0034
	VcSlash  Keycode = 0x0035
	VcShiftR Keycode = 0x0036

	VcAltL     Keycode = 0x0038
	VcSpace    Keycode = 0x0039
	VcCapsLock Keycode = 0x003A

	VcF1  Keycode = 0x003B
	VcF2  Keycode = 0x003C
	VcF3  Keycode = 0x003D
	VcF4  Keycode = 0x003E
	VcF5  Keycode = 0x003F
	VcF6  Keycode = 0x0040
	VcF7  Keycode = 0x0041
	VcF8  Keycode = 0x0042
	VcF9  Keycode = 0x0043
	VcF10 Keycode = 0x0044

	VcScrollLock Keycode = 0x0046

	VcF11 Keycode = 0x0057
	VcF12 Keycode = 0x0058

	// Extended block.
	VcControlR    Keycode = 0xE01D
	VcPrintScreen Keycode = 0xE037
	VcAltR        Keycode = 0xE038
	VcPause       Keycode = 0xE045
	VcHome        Keycode = 0xE047
	VcUp          Keycode = 0xE048
	VcPageUp      Keycode = 0xE049
	VcLeft        Keycode = 0xE04B
	VcRight       Keycode = 0xE04D
	VcEnd         Keycode = 0xE04F
	VcDown        Keycode = 0xE050
	VcPageDown    Keycode = 0xE051
	VcInsert      Keycode = 0xE052
	VcDelete      Keycode = 0xE053
	VcMetaL       Keycode = 0xE05B
	VcMetaR       Keycode = 0xE05C
	VcContextMenu Keycode = 0xE05D
)

var keycodeNames = map[Keycode]string{
	VcEscape: "Escape",
	Vc1:      "1",
	Vc2:      "2",
	Vc3:      "3",
	Vc4:      "4",
	Vc5:      "5",
	Vc6:      "6",
	Vc7:      "7",
	Vc8:      "8",
	Vc9:      "9",
	Vc0:      "0",

	VcMinus:     "Minus",
	VcEquals:    "Equals",
	VcBackspace: "Backspace",
	VcTab:       "Tab",

	VcQ: "Q", VcW: "W", VcE: "E", VcR: "R", VcT: "T",
	VcY: "Y", VcU: "U", VcI: "I", VcO: "O", VcP: "P",
	VcA: "A", VcS: "S", VcD: "D", VcF: "F", VcG: "G",
	VcH: "H", VcJ: "J", VcK: "K", VcL: "L",
	VcZ: "Z", VcX: "X", VcC: "C", VcV: "V", VcB: "B",
	VcN: "N", VcM: "M",

	VcOpenBracket:  "Open Bracket",
	VcCloseBracket: "Close Bracket",
	VcEnter:        "Enter",
	VcControlL:     "Left Control",
	VcSemicolon:    "Semicolon",
	VcQuote:        "Quote",
	VcBackquote:    "Back Quote",
	VcShiftL:       "Left Shift",
	VcBackslash:    "Back Slash",
	VcComma:        "Comma",
	VcPeriod:       "Period",
	VcSlash:        "Slash",
	VcShiftR:       "Right Shift",
	VcAltL:         "Left Alt",
	VcSpace:        "Space",
	VcCapsLock:     "Caps Lock",

	VcF1: "F1", VcF2: "F2", VcF3: "F3", VcF4: "F4",
	VcF5: "F5", VcF6: "F6", VcF7: "F7", VcF8: "F8",
	VcF9: "F9", VcF10: "F10", VcF11: "F11", VcF12: "F12",

	VcScrollLock:  "Scroll Lock",
	VcControlR:    "Right Control",
	VcPrintScreen: "Print Screen",
	VcAltR:        "Right Alt",
	VcPause:       "Pause",
	VcHome:        "Home",
	VcUp:          "Up",
	VcPageUp:      "Page Up",
	VcLeft:        "Left",
	VcRight:       "Right",
	VcEnd:         "End",
	VcDown:        "Down",
	VcPageDown:    "Page Down",
	VcInsert:      "Insert",
	VcDelete:      "Delete",
	VcMetaL:       "Left Meta",
	VcMetaR:       "Right Meta",
	VcContextMenu: "Context Menu",
}

// Name returns a human-readable key name, or the hex code for keys outside
// the named set.
func (k Keycode) Name() string {
	if name, ok := keycodeNames[k]; ok {
		return name
	}
	if k == VcUndefined {
		return "Undefined"
	}
	return fmt.Sprintf("0x%04X", uint16(k))
}

// IsModifier reports whether the keycode is a modifier key.
func (k Keycode) IsModifier() bool {
	return k.ModifierMask() != 0
}

// ModifierMask returns the modifier bit the keycode contributes to the event
// mask, or zero for non-modifier keys.
func (k Keycode) ModifierMask() Modifiers {
	switch k {
	case VcShiftL:
		return MaskShiftL
	case VcShiftR:
		return MaskShiftR
	case VcControlL:
		return MaskCtrlL
	case VcControlR:
		return MaskCtrlR
	case VcAltL:
		return MaskAltL
	case VcAltR:
		return MaskAltR
	case VcMetaL:
		return MaskMetaL
	case VcMetaR:
		return MaskMetaR
	}
	return 0
}
