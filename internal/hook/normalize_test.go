package hook

import (
	"reflect"
	"testing"
	"time"

	"uihook/internal/event"
)

func identityMapper(raw uint16) event.Keycode { return event.Keycode(raw) }

func testNormalizer() *normalizer {
	return newNormalizer(identityMapper, Options{}.withDefaults())
}

var testBase = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestKeyTypedSynthesis(t *testing.T) {
	n := testNormalizer()

	evs := n.normalize(RawEvent{Kind: RawKeyDown, When: testBase, Code: uint16(event.VcA), Char: 'a'})
	if len(evs) != 2 {
		t.Fatalf("got %d events, want pressed + typed", len(evs))
	}
	if evs[0].Type != event.KeyPressed || evs[1].Type != event.KeyTyped {
		t.Fatalf("got %v, %v; want key_pressed, key_typed", evs[0].Type, evs[1].Type)
	}
	if evs[0].Key.Char != 0 {
		t.Fatalf("pressed event carries char %q, want none", evs[0].Key.Char)
	}
	if evs[1].Key.Char != 'a' {
		t.Fatalf("typed event char = %q, want 'a'", evs[1].Key.Char)
	}

	// No decoded character, no typed event.
	evs = n.normalize(RawEvent{Kind: RawKeyDown, When: testBase, Code: uint16(event.VcEscape)})
	if len(evs) != 1 || evs[0].Type != event.KeyPressed {
		t.Fatalf("escape down produced %v, want single key_pressed", evs)
	}
}

func TestModifierMaskTracking(t *testing.T) {
	n := testNormalizer()

	evs := n.normalize(RawEvent{Kind: RawKeyDown, When: testBase, Code: uint16(event.VcShiftL)})
	if evs[0].Modifiers != event.MaskShiftL {
		t.Fatalf("shift down modifiers = 0x%03X, want MaskShiftL", uint16(evs[0].Modifiers))
	}

	evs = n.normalize(RawEvent{Kind: RawKeyDown, When: testBase, Code: uint16(event.VcControlR)})
	want := event.MaskShiftL | event.MaskCtrlR
	if evs[0].Modifiers != want {
		t.Fatalf("ctrl down modifiers = 0x%03X, want 0x%03X", uint16(evs[0].Modifiers), uint16(want))
	}

	// A plain key under held modifiers carries the mask but does not change it.
	evs = n.normalize(RawEvent{Kind: RawKeyDown, When: testBase, Code: uint16(event.VcA), Char: 'A'})
	if evs[0].Modifiers != want {
		t.Fatalf("letter down modifiers = 0x%03X, want 0x%03X", uint16(evs[0].Modifiers), uint16(want))
	}

	// Release events carry the mask with their own bit already cleared.
	evs = n.normalize(RawEvent{Kind: RawKeyUp, When: testBase, Code: uint16(event.VcShiftL)})
	if evs[0].Modifiers != event.MaskCtrlR {
		t.Fatalf("shift up modifiers = 0x%03X, want MaskCtrlR", uint16(evs[0].Modifiers))
	}
	evs = n.normalize(RawEvent{Kind: RawKeyUp, When: testBase, Code: uint16(event.VcControlR)})
	if evs[0].Modifiers != 0 {
		t.Fatalf("ctrl up modifiers = 0x%03X, want 0", uint16(evs[0].Modifiers))
	}
}

func TestHeldButtonsInModifierMask(t *testing.T) {
	n := testNormalizer()

	evs := n.normalize(RawEvent{Kind: RawButtonDown, When: testBase, Button: event.Button1, X: 10, Y: 10})
	if !evs[0].Modifiers.Has(event.MaskButton1) {
		t.Fatalf("press modifiers = 0x%03X, want MaskButton1 set", uint16(evs[0].Modifiers))
	}

	evs = n.normalize(RawEvent{Kind: RawButtonUp, When: testBase, Button: event.Button1, X: 10, Y: 10})
	if evs[0].Modifiers.Has(event.MaskButton1) {
		t.Fatalf("release modifiers = 0x%03X, want MaskButton1 cleared", uint16(evs[0].Modifiers))
	}
}

func TestClickCounting(t *testing.T) {
	n := testNormalizer()
	press := func(when time.Time, x, y int16) event.Event {
		return n.normalize(RawEvent{Kind: RawButtonDown, When: when, Button: event.Button1, X: x, Y: y})[0]
	}
	release := func(when time.Time, x, y int16) {
		n.normalize(RawEvent{Kind: RawButtonUp, When: when, Button: event.Button1, X: x, Y: y})
	}

	if got := press(testBase, 100, 100).Mouse.Clicks; got != 1 {
		t.Fatalf("first press clicks = %d, want 1", got)
	}
	release(testBase.Add(10*time.Millisecond), 100, 100)

	// Within the interval, slight jitter inside the distance window.
	if got := press(testBase.Add(200*time.Millisecond), 102, 99).Mouse.Clicks; got != 2 {
		t.Fatalf("second press clicks = %d, want 2", got)
	}
	release(testBase.Add(210*time.Millisecond), 102, 99)

	if got := press(testBase.Add(400*time.Millisecond), 102, 99).Mouse.Clicks; got != 3 {
		t.Fatalf("third press clicks = %d, want 3", got)
	}
	release(testBase.Add(410*time.Millisecond), 102, 99)

	// Too slow resets the count.
	if got := press(testBase.Add(2*time.Second), 102, 99).Mouse.Clicks; got != 1 {
		t.Fatalf("slow press clicks = %d, want 1", got)
	}
	release(testBase.Add(2*time.Second+10*time.Millisecond), 102, 99)

	// Fast but too far away also resets.
	if got := press(testBase.Add(2*time.Second+100*time.Millisecond), 150, 99).Mouse.Clicks; got != 1 {
		t.Fatalf("distant press clicks = %d, want 1", got)
	}
}

func TestClickCountingPerButton(t *testing.T) {
	n := testNormalizer()

	n.normalize(RawEvent{Kind: RawButtonDown, When: testBase, Button: event.Button1, X: 50, Y: 50})
	n.normalize(RawEvent{Kind: RawButtonUp, When: testBase.Add(10 * time.Millisecond), Button: event.Button1, X: 50, Y: 50})

	// A different button inside button1's click window starts its own count.
	evs := n.normalize(RawEvent{Kind: RawButtonDown, When: testBase.Add(50 * time.Millisecond), Button: event.Button2, X: 50, Y: 50})
	if got := evs[0].Mouse.Clicks; got != 1 {
		t.Fatalf("button2 press clicks = %d, want 1", got)
	}
}

func TestMoveVersusDrag(t *testing.T) {
	n := testNormalizer()

	evs := n.normalize(RawEvent{Kind: RawMove, When: testBase, X: 10, Y: 20})
	if evs[0].Type != event.MouseMoved {
		t.Fatalf("unbuttoned motion = %v, want mouse_moved", evs[0].Type)
	}

	n.normalize(RawEvent{Kind: RawButtonDown, When: testBase, Button: event.Button1, X: 10, Y: 20})
	evs = n.normalize(RawEvent{Kind: RawMove, When: testBase, X: 15, Y: 25})
	if evs[0].Type != event.MouseDragged {
		t.Fatalf("buttoned motion = %v, want mouse_dragged", evs[0].Type)
	}

	n.normalize(RawEvent{Kind: RawButtonUp, When: testBase, Button: event.Button1, X: 15, Y: 25})
	evs = n.normalize(RawEvent{Kind: RawMove, When: testBase, X: 20, Y: 30})
	if evs[0].Type != event.MouseMoved {
		t.Fatalf("motion after release = %v, want mouse_moved", evs[0].Type)
	}
}

func TestClickSuppressedAfterDrag(t *testing.T) {
	n := testNormalizer()

	// Plain press/release synthesizes a click.
	n.normalize(RawEvent{Kind: RawButtonDown, When: testBase, Button: event.Button1, X: 10, Y: 10})
	evs := n.normalize(RawEvent{Kind: RawButtonUp, When: testBase, Button: event.Button1, X: 10, Y: 10})
	if len(evs) != 2 || evs[0].Type != event.MouseReleased || evs[1].Type != event.MouseClicked {
		t.Fatalf("plain release = %v, want released + clicked", evs)
	}

	// Press, drag, release: no click.
	n.normalize(RawEvent{Kind: RawButtonDown, When: testBase.Add(time.Second), Button: event.Button1, X: 10, Y: 10})
	n.normalize(RawEvent{Kind: RawMove, When: testBase.Add(time.Second), X: 200, Y: 200})
	evs = n.normalize(RawEvent{Kind: RawButtonUp, When: testBase.Add(time.Second), Button: event.Button1, X: 200, Y: 200})
	if len(evs) != 1 || evs[0].Type != event.MouseReleased {
		t.Fatalf("release after drag = %v, want released only", evs)
	}
}

func TestWheelDefaults(t *testing.T) {
	n := testNormalizer()

	evs := n.normalize(RawEvent{
		Kind:           RawWheel,
		When:           testBase,
		X:              5,
		Y:              6,
		WheelRotation:  -2,
		WheelAmount:    3,
		WheelDirection: event.WheelVertical,
	})
	if len(evs) != 1 || evs[0].Type != event.MouseWheel {
		t.Fatalf("wheel = %v, want single mouse_wheel", evs)
	}
	w := evs[0].Wheel
	if w.Rotation != -2 || w.Amount != 3 {
		t.Fatalf("wheel payload = %+v", w)
	}
	if !w.IsVertical() {
		t.Fatal("wheel direction not vertical")
	}
	if w.Kind != event.WheelUnitScroll {
		t.Fatalf("wheel kind = %v, want unit scroll default", w.Kind)
	}
	if evs[0].Mouse.X != 5 || evs[0].Mouse.Y != 6 {
		t.Fatalf("wheel position = (%d,%d), want (5,6)", evs[0].Mouse.X, evs[0].Mouse.Y)
	}
}

// Normalization depends only on the raw sequence, never on wall-clock reads,
// so the same input replayed after a reset yields identical output.
func TestNormalizeDeterministic(t *testing.T) {
	seq := []RawEvent{
		{Kind: RawKeyDown, When: testBase, Code: uint16(event.VcShiftL)},
		{Kind: RawKeyDown, When: testBase.Add(10 * time.Millisecond), Code: uint16(event.VcA), Char: 'A'},
		{Kind: RawKeyUp, When: testBase.Add(20 * time.Millisecond), Code: uint16(event.VcA)},
		{Kind: RawKeyUp, When: testBase.Add(30 * time.Millisecond), Code: uint16(event.VcShiftL)},
		{Kind: RawButtonDown, When: testBase.Add(40 * time.Millisecond), Button: event.Button1, X: 1, Y: 2},
		{Kind: RawMove, When: testBase.Add(50 * time.Millisecond), X: 30, Y: 40},
		{Kind: RawButtonUp, When: testBase.Add(60 * time.Millisecond), Button: event.Button1, X: 30, Y: 40},
		{Kind: RawWheel, When: testBase.Add(70 * time.Millisecond), WheelRotation: 1, WheelAmount: 3, WheelDirection: event.WheelHorizontal},
	}

	n := testNormalizer()
	run := func() []event.Event {
		var out []event.Event
		for _, raw := range seq {
			out = append(out, n.normalize(raw)...)
		}
		return out
	}

	first := run()
	n.reset()
	second := run()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("replay diverged:\nfirst:  %v\nsecond: %v", first, second)
	}
}
