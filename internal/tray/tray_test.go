package tray

import (
	"encoding/binary"
	"testing"
)

func TestIconIsValidICO(t *testing.T) {
	icon := getIcon()

	if binary.LittleEndian.Uint16(icon[0:]) != 0 || binary.LittleEndian.Uint16(icon[2:]) != 1 {
		t.Fatal("missing ICO signature")
	}
	if binary.LittleEndian.Uint16(icon[4:]) != 1 {
		t.Fatalf("image count = %d, want 1", binary.LittleEndian.Uint16(icon[4:]))
	}
	if icon[6] != 16 || icon[7] != 16 {
		t.Fatalf("dimensions = %dx%d, want 16x16", icon[6], icon[7])
	}

	imageSize := binary.LittleEndian.Uint32(icon[14:])
	offset := binary.LittleEndian.Uint32(icon[18:])
	if int(offset)+int(imageSize) != len(icon) {
		t.Fatalf("directory says %d bytes at offset %d, blob is %d bytes", imageSize, offset, len(icon))
	}

	// BITMAPINFOHEADER: 32bpp, height doubled for the AND mask.
	if got := binary.LittleEndian.Uint32(icon[offset:]); got != 40 {
		t.Fatalf("DIB header size = %d, want 40", got)
	}
	if got := binary.LittleEndian.Uint32(icon[offset+8:]); got != 32 {
		t.Fatalf("DIB height = %d, want 32", got)
	}
	if got := binary.LittleEndian.Uint16(icon[offset+14:]); got != 32 {
		t.Fatalf("bits per pixel = %d, want 32", got)
	}

	// The glyph is not blank: some pixels are opaque, some transparent.
	var opaque, transparent int
	pixels := icon[offset+40 : offset+40+16*16*4]
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] == 0xFF {
			opaque++
		} else {
			transparent++
		}
	}
	if opaque == 0 || transparent == 0 {
		t.Fatalf("icon alpha: %d opaque, %d transparent, want both nonzero", opaque, transparent)
	}
}
