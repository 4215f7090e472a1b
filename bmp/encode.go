package bmp

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"

	"oled128.dev/colour"
)

// EncodeOptions configure Encode.
type EncodeOptions struct {
	// BitsPerPixel selects the stored depth: 1, 4, 8, 16 or 24.
	// Zero means 24.
	BitsPerPixel int
	// Palette is the colour table for depths of 8 and below. It
	// defaults to the palette of m when m is a paletted image.
	Palette color.Palette
}

// Encode writes m to w as an uncompressed bottom-up Windows bitmap,
// exactly the layout the decoder reads back.
func Encode(w io.Writer, m image.Image, o *EncodeOptions) error {
	bpp := 24
	var pal color.Palette
	if o != nil {
		if o.BitsPerPixel != 0 {
			bpp = o.BitsPerPixel
		}
		pal = o.Palette
	}
	switch bpp {
	case 1, 4, 8, 16, 24:
	default:
		return fmt.Errorf("bmp: cannot encode %d bits per pixel", bpp)
	}
	b := m.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("bmp: cannot encode an empty image")
	}
	if bpp <= 8 {
		if pal == nil {
			p, ok := m.(*image.Paletted)
			if !ok {
				return fmt.Errorf("bmp: %d bits per pixel needs a palette", bpp)
			}
			pal = p.Palette
		}
		if len(pal) > 1<<bpp {
			return fmt.Errorf("bmp: %d colours do not fit in %d bits per pixel", len(pal), bpp)
		}
	} else {
		pal = nil
	}

	stride := (width*bpp + 31) / 32 * 4
	dataOffset := 54 + 4*len(pal)
	if err := binary.Write(w, bo, struct {
		Magic      [2]byte
		Size       uint32
		_          uint32
		DataOffset uint32
	}{
		Magic:      [2]byte{'B', 'M'},
		Size:       uint32(dataOffset + stride*height),
		DataOffset: uint32(dataOffset),
	}); err != nil {
		return fmt.Errorf("bmp: %w", err)
	}
	if err := binary.Write(w, bo, struct {
		Size          uint32
		Width, Height int32
		Planes        uint16
		BitsPerPixel  uint16
		Compression   uint32
		ImageSize     uint32
		XPPM, YPPM    int32
		Colours       uint32
		Important     uint32
	}{
		Size:         40,
		Width:        int32(width),
		Height:       int32(height),
		Planes:       1,
		BitsPerPixel: uint16(bpp),
		ImageSize:    uint32(stride * height),
		XPPM:         2835, // 72 DPI
		YPPM:         2835,
		Colours:      uint32(len(pal)),
	}); err != nil {
		return fmt.Errorf("bmp: %w", err)
	}
	for _, c := range pal {
		cr, cg, cb, _ := c.RGBA()
		entry := [4]byte{uint8(cb >> 8), uint8(cg >> 8), uint8(cr >> 8), 0}
		if _, err := w.Write(entry[:]); err != nil {
			return fmt.Errorf("bmp: %w", err)
		}
	}

	row := make([]byte, stride)
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		clear(row)
		for x := b.Min.X; x < b.Max.X; x++ {
			i := x - b.Min.X
			switch bpp {
			case 1:
				row[i/8] |= byte(pal.Index(m.At(x, y))) << (7 - i%8)
			case 4:
				row[i/2] |= byte(pal.Index(m.At(x, y))) << (4 * (1 - i%2))
			case 8:
				row[i] = byte(pal.Index(m.At(x, y)))
			case 16:
				c := colour.FromColor(m.At(x, y))
				bo.PutUint16(row[2*i:], uint16(c.R)<<10|uint16(c.G>>1)<<5|uint16(c.B))
			case 24:
				cr, cg, cb, _ := m.At(x, y).RGBA()
				row[3*i] = uint8(cb >> 8)
				row[3*i+1] = uint8(cg >> 8)
				row[3*i+2] = uint8(cr >> 8)
			}
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("bmp: %w", err)
		}
	}
	return nil
}
