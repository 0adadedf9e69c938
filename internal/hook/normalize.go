package hook

import (
	"time"

	"uihook/internal/event"
)

// KeycodeMapper translates a platform virtual key code into the unified code
// space.
type KeycodeMapper func(raw uint16) event.Keycode

type clickState struct {
	when  time.Time
	x, y  int16
	count uint16
}

// normalizer converts raw backend events into unified events. It is the only
// component with event-sequence-dependent state (modifier mask, held buttons,
// click windows) and has a single writer: the capture thread. The state is
// reset when a new session starts.
type normalizer struct {
	mapKeycode    KeycodeMapper
	clickInterval time.Duration
	clickDistance int16

	modifiers event.Modifiers
	clicks    map[event.Button]*clickState

	// dragged records whether the pointer moved with a button held since
	// the last press; it suppresses the synthesized click event.
	dragged bool
}

func newNormalizer(mapKeycode KeycodeMapper, opts Options) *normalizer {
	return &normalizer{
		mapKeycode:    mapKeycode,
		clickInterval: opts.ClickInterval,
		clickDistance: int16(opts.ClickDistance),
		clicks:        make(map[event.Button]*clickState),
	}
}

func (n *normalizer) reset() {
	n.modifiers = 0
	n.dragged = false
	n.clicks = make(map[event.Button]*clickState)
}

// normalize maps one raw event to zero or more unified events. KeyTyped is
// synthesized after KeyPressed when the platform decoded a character, and
// MouseClicked after MouseReleased when no drag happened since the press.
func (n *normalizer) normalize(raw RawEvent) []event.Event {
	switch raw.Kind {
	case RawKeyDown:
		return n.keyDown(raw)
	case RawKeyUp:
		return n.keyUp(raw)
	case RawButtonDown:
		return n.buttonDown(raw)
	case RawButtonUp:
		return n.buttonUp(raw)
	case RawMove:
		return n.move(raw)
	case RawWheel:
		return n.wheel(raw)
	}
	return nil
}

func (n *normalizer) keyDown(raw RawEvent) []event.Event {
	kc := n.mapKeycode(raw.Code)
	n.modifiers |= kc.ModifierMask()

	pressed := event.Event{
		Type:      event.KeyPressed,
		When:      raw.When,
		Modifiers: n.modifiers,
		Key:       event.KeyData{Keycode: kc, RawCode: raw.Code},
	}
	if raw.Char == 0 {
		return []event.Event{pressed}
	}

	typed := pressed
	typed.Type = event.KeyTyped
	typed.Key.Char = raw.Char
	return []event.Event{pressed, typed}
}

func (n *normalizer) keyUp(raw RawEvent) []event.Event {
	kc := n.mapKeycode(raw.Code)
	n.modifiers &^= kc.ModifierMask()

	return []event.Event{{
		Type:      event.KeyReleased,
		When:      raw.When,
		Modifiers: n.modifiers,
		Key:       event.KeyData{Keycode: kc, RawCode: raw.Code},
	}}
}

func (n *normalizer) buttonDown(raw RawEvent) []event.Event {
	cs := n.clicks[raw.Button]
	if cs == nil {
		cs = &clickState{}
		n.clicks[raw.Button] = cs
	}
	if cs.count > 0 &&
		raw.When.Sub(cs.when) <= n.clickInterval &&
		absDelta(raw.X, cs.x) <= n.clickDistance &&
		absDelta(raw.Y, cs.y) <= n.clickDistance {
		cs.count++
	} else {
		cs.count = 1
	}
	cs.when = raw.When
	cs.x, cs.y = raw.X, raw.Y

	n.modifiers |= raw.Button.Mask()
	n.dragged = false

	return []event.Event{{
		Type:      event.MousePressed,
		When:      raw.When,
		Modifiers: n.modifiers,
		Mouse: event.MouseData{
			Button: raw.Button,
			Clicks: cs.count,
			X:      raw.X,
			Y:      raw.Y,
		},
	}}
}

func (n *normalizer) buttonUp(raw RawEvent) []event.Event {
	n.modifiers &^= raw.Button.Mask()

	var clicks uint16 = 1
	if cs := n.clicks[raw.Button]; cs != nil && cs.count > 0 {
		clicks = cs.count
	}

	released := event.Event{
		Type:      event.MouseReleased,
		When:      raw.When,
		Modifiers: n.modifiers,
		Mouse: event.MouseData{
			Button: raw.Button,
			Clicks: clicks,
			X:      raw.X,
			Y:      raw.Y,
		},
	}
	if n.dragged {
		return []event.Event{released}
	}

	clicked := released
	clicked.Type = event.MouseClicked
	return []event.Event{released, clicked}
}

func (n *normalizer) move(raw RawEvent) []event.Event {
	typ := event.MouseMoved
	if n.modifiers.Has(event.MaskButtons) {
		typ = event.MouseDragged
		n.dragged = true
	}

	return []event.Event{{
		Type:      typ,
		When:      raw.When,
		Modifiers: n.modifiers,
		Mouse:     event.MouseData{X: raw.X, Y: raw.Y},
	}}
}

func (n *normalizer) wheel(raw RawEvent) []event.Event {
	kind := raw.WheelKind
	if kind == 0 {
		kind = event.WheelUnitScroll
	}

	return []event.Event{{
		Type:      event.MouseWheel,
		When:      raw.When,
		Modifiers: n.modifiers,
		Mouse:     event.MouseData{X: raw.X, Y: raw.Y},
		Wheel: event.WheelData{
			Amount:    raw.WheelAmount,
			Rotation:  raw.WheelRotation,
			Direction: raw.WheelDirection,
			Kind:      kind,
		},
	}}
}

func absDelta(a, b int16) int16 {
	if a > b {
		return a - b
	}
	return b - a
}
