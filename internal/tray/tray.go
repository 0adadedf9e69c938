// Package tray provides the system tray surface using getlantern/systray.
package tray

import (
	"encoding/binary"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item.
type MenuItem struct {
	ID       int
	Title    string
	Callback func()
	item     *systray.MenuItem
}

// Tray manages the system tray icon and menu.
type Tray struct {
	items   []*MenuItem
	onReady func()
	onExit  func()
	readyCh chan struct{}
	quitCh  chan struct{}
}

// New creates a new system tray.
func New(tooltip string) *Tray {
	t := &Tray{
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}

	t.onReady = func() {
		systray.SetTitle("uihook")
		systray.SetTooltip(tooltip)
		systray.SetIcon(getIcon())
		close(t.readyCh)
	}

	t.onExit = func() {
		close(t.quitCh)
	}

	return t
}

// AddMenuItem adds a menu item to the tray and returns its id.
func (t *Tray) AddMenuItem(title string, callback func()) int {
	id := len(t.items)
	t.items = append(t.items, &MenuItem{
		ID:       id,
		Title:    title,
		Callback: callback,
	})
	return id
}

// AddSeparator adds a separator to the menu.
func (t *Tray) AddSeparator() {
	t.items = append(t.items, nil) // nil indicates separator
}

// SetItemChecked sets the checked state of a menu item.
func (t *Tray) SetItemChecked(id int, checked bool) {
	if id < 0 || id >= len(t.items) || t.items[id] == nil || t.items[id].item == nil {
		return
	}
	if checked {
		t.items[id].item.Check()
	} else {
		t.items[id].item.Uncheck()
	}
}

// Run starts the tray event loop (blocks).
func (t *Tray) Run() {
	systray.Run(t.setupMenu, t.onExit)
}

// setupMenu is called when systray is ready.
func (t *Tray) setupMenu() {
	t.onReady()
	<-t.readyCh

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}
		menuItem.item = systray.AddMenuItem(menuItem.Title, "")

		if menuItem.Callback != nil {
			go func(mi *MenuItem) {
				for {
					select {
					case <-mi.item.ClickedCh:
						mi.Callback()
					case <-t.quitCh:
						return
					}
				}
			}(menuItem)
		}
	}
}

// Stop stops the tray.
func (t *Tray) Stop() {
	systray.Quit()
}

// getIcon renders the tray icon, a 16x16 keyboard glyph, as a 32-bit ICO.
func getIcon() []byte {
	const size = 16

	// BGRA pixel data, rows stored bottom-up per the ICO format.
	pixels := make([]byte, size*size*4)
	set := func(x, y int, b, g, r byte) {
		i := ((size-1-y)*size + x) * 4
		pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = b, g, r, 0xFF
	}

	// Dark keyboard body.
	for y := 3; y < 13; y++ {
		for x := 1; x < 15; x++ {
			set(x, y, 0x38, 0x30, 0x2C)
		}
	}
	// Three rows of four light key caps.
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			x0, y0 := 2+col*3, 4+row*3
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					set(x0+dx, y0+dy, 0xE6, 0xE2, 0xDE)
				}
			}
		}
	}

	// XOR pixels plus a 1-bit AND mask with rows padded to 32 bits.
	const maskSize = size * 4
	image := make([]byte, 40+len(pixels)+maskSize)
	binary.LittleEndian.PutUint32(image[0:], 40)       // BITMAPINFOHEADER size
	binary.LittleEndian.PutUint32(image[4:], size)     // width
	binary.LittleEndian.PutUint32(image[8:], size*2)   // height covers XOR + AND
	binary.LittleEndian.PutUint16(image[12:], 1)       // planes
	binary.LittleEndian.PutUint16(image[14:], 32)      // bits per pixel
	copy(image[40:], pixels)

	icon := make([]byte, 22+len(image))
	binary.LittleEndian.PutUint16(icon[2:], 1) // type: icon
	binary.LittleEndian.PutUint16(icon[4:], 1) // image count
	icon[6], icon[7] = size, size
	binary.LittleEndian.PutUint16(icon[10:], 1)  // planes
	binary.LittleEndian.PutUint16(icon[12:], 32) // bits per pixel
	binary.LittleEndian.PutUint32(icon[14:], uint32(len(image)))
	binary.LittleEndian.PutUint32(icon[18:], 22) // image data offset
	copy(icon[22:], image)
	return icon
}
