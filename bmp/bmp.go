// Package bmp implements the subset of the Windows bitmap format the
// OLED128 understands: uncompressed BITMAPINFOHEADER files at 1, 4, 8,
// 16 or 24 bits per pixel, stored bottom-up.
//
// Bitmaps are decoded straight onto a display window one row at a time,
// so a transfer needs memory proportional to the clipped row width, not
// to the image size.
package bmp

import (
	"encoding/binary"
	"errors"
	"image"

	"oled128.dev/colour"
)

// Decode failures. Every format and geometry problem is detected before
// the first write to the display.
var (
	ErrInvalidFormat           = errors.New("bmp: invalid format")
	ErrUnsupportedHeader       = errors.New("bmp: unsupported header")
	ErrTooManyColours          = errors.New("bmp: too many colours")
	ErrCompressionNotSupported = errors.New("bmp: compression not supported")
	ErrOriginOutsideImage      = errors.New("bmp: origin outside image")
)

var bo = binary.LittleEndian

// Header is the parsed fixed region of a bitmap file: the 14-byte file
// header followed by its 40-byte BITMAPINFOHEADER.
type Header struct {
	FileSize     uint32
	DataOffset   uint32
	Width        int
	Height       int
	BitsPerPixel int
	Compression  uint32
	// Colours is the number of colour table entries. It is zero for
	// depths above 8 bits per pixel.
	Colours int
}

// ReadHeader parses and validates the headers of the bitmap in src. It
// is the first step of every blit, exported for tools that inspect
// files without drawing them.
func ReadHeader(src Source) (*Header, error) {
	var buf [54]byte
	if err := src.ReadAt(buf[:], 0); err != nil {
		return nil, err
	}
	if buf[0] != 'B' || buf[1] != 'M' {
		return nil, ErrInvalidFormat
	}
	h := &Header{
		FileSize:     bo.Uint32(buf[2:]),
		DataOffset:   bo.Uint32(buf[10:]),
		Width:        int(int32(bo.Uint32(buf[18:]))),
		Height:       int(int32(bo.Uint32(buf[22:]))),
		BitsPerPixel: int(bo.Uint16(buf[28:])),
		Compression:  bo.Uint32(buf[30:]),
	}
	switch {
	case bo.Uint32(buf[14:]) != 40 || bo.Uint16(buf[26:]) != 1:
		// Only BITMAPINFOHEADER with a single plane.
		return nil, ErrUnsupportedHeader
	case h.Height < 0:
		// A negative height means top-down row order.
		return nil, ErrUnsupportedHeader
	case h.Width <= 0 || h.Height == 0:
		return nil, ErrUnsupportedHeader
	}
	switch h.BitsPerPixel {
	case 1, 4, 8, 16, 24:
	default:
		return nil, ErrUnsupportedHeader
	}
	if h.Compression != 0 {
		return nil, ErrCompressionNotSupported
	}
	if h.BitsPerPixel <= 8 {
		n := int(bo.Uint32(buf[46:]))
		if n == 0 {
			n = 1 << h.BitsPerPixel
		}
		if n > 256 {
			return nil, ErrTooManyColours
		}
		h.Colours = n
	}
	return h, nil
}

// Bounds returns the image extent.
func (h *Header) Bounds() image.Rectangle {
	return image.Rect(0, 0, h.Width, h.Height)
}

// Stride returns the byte length of one stored pixel row, padded to a
// four byte boundary.
func (h *Header) Stride() int {
	return (h.Width*h.BitsPerPixel + 31) / 32 * 4
}

// rowOffset returns the file offset of image row y. Rows are stored
// bottom-up: row Height-1 comes first in the file.
func (h *Header) rowOffset(y int) int64 {
	return int64(h.DataOffset) + int64(h.Height-1-y)*int64(h.Stride())
}

// readPalette loads the colour table that follows the headers. Entries
// are stored as B, G, R, reserved and truncate to panel colours. The
// table is returned by value so a blit holds it on the stack.
func readPalette(src Source, n int) (pal [256]colour.Colour, err error) {
	var buf [4 * 256]byte
	if err := src.ReadAt(buf[:4*n], 54); err != nil {
		return pal, err
	}
	for i := 0; i < n; i++ {
		pal[i] = colour.FromRGB(buf[4*i+2], buf[4*i+1], buf[4*i])
	}
	return pal, nil
}
