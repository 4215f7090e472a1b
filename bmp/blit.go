package bmp

import (
	"image"

	"oled128.dev/colour"
)

// Window is the destination of a blit: a rectangle of display RAM
// selected with SetWindow and filled by consecutive WritePixel calls in
// row-major order, columns fastest. oled.OLED implements it.
type Window interface {
	Bounds() image.Rectangle
	SetWindow(r image.Rectangle) error
	WritePixel(c colour.Colour) error
}

// Blit decodes the bitmap in src onto w with its top-left corner at p.
// The image is clipped to the window bounds; a bitmap with nothing
// visible returns ErrOriginOutsideImage before any display traffic.
func Blit(w Window, src Source, p image.Point) error {
	h, err := ReadHeader(src)
	if err != nil {
		return err
	}
	return blit(w, src, h, h.Bounds(), p)
}

// BlitRect decodes the sub-rectangle sr of the bitmap in src onto w
// with its top-left corner at p.
func BlitRect(w Window, src Source, sr image.Rectangle, p image.Point) error {
	h, err := ReadHeader(src)
	if err != nil {
		return err
	}
	return blit(w, src, h, sr, p)
}

func blit(w Window, src Source, h *Header, sr image.Rectangle, p image.Point) error {
	var pal [256]colour.Colour
	if h.BitsPerPixel <= 8 {
		var err error
		if pal, err = readPalette(src, h.Colours); err != nil {
			return err
		}
	}
	if !sr.Min.In(h.Bounds()) {
		return ErrOriginOutsideImage
	}
	sr = sr.Intersect(h.Bounds())
	if sr.Empty() {
		return ErrOriginOutsideImage
	}
	// Clipping the destination against the window shifts the source
	// rectangle by the same amount, as in image/draw.
	dr := image.Rectangle{Min: p, Max: p.Add(sr.Size())}
	clipped := dr.Intersect(w.Bounds())
	if clipped.Empty() {
		return ErrOriginOutsideImage
	}
	sr = image.Rectangle{
		Min: sr.Min.Add(clipped.Min.Sub(dr.Min)),
		Max: sr.Max.Add(clipped.Max.Sub(dr.Max)),
	}

	// One clipped row of file bytes and its decoded pixels, reused for
	// every row. Transfers run in space proportional to the row width
	// no matter how tall the image is.
	x0, x1 := sr.Min.X, sr.Max.X
	byte0 := x0 * h.BitsPerPixel / 8
	byte1 := (x1*h.BitsPerPixel + 7) / 8
	row := make([]byte, byte1-byte0)
	pixels := make([]colour.Colour, x1-x0)

	if err := w.SetWindow(clipped); err != nil {
		return err
	}
	for y := sr.Min.Y; y < sr.Max.Y; y++ {
		if err := src.ReadAt(row, h.rowOffset(y)+int64(byte0)); err != nil {
			return err
		}
		// The whole row decodes, and any bad palette index rejects,
		// before its first pixel reaches the display.
		if err := decodeRow(h, &pal, row, x0, pixels); err != nil {
			return err
		}
		for _, c := range pixels {
			if err := w.WritePixel(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeRow converts the file bytes of one clipped row into panel
// colours. buf starts at the byte holding pixel x0.
func decodeRow(h *Header, pal *[256]colour.Colour, buf []byte, x0 int, out []colour.Colour) error {
	switch h.BitsPerPixel {
	case 1:
		for i := range out {
			x := x0 + i
			idx := buf[x/8-x0/8] >> (7 - x%8) & 1
			if int(idx) >= h.Colours {
				return ErrInvalidFormat
			}
			out[i] = pal[idx]
		}
	case 4:
		for i := range out {
			x := x0 + i
			idx := buf[x/2-x0/2] >> (4 * (1 - x%2)) & 0x0f
			if int(idx) >= h.Colours {
				return ErrInvalidFormat
			}
			out[i] = pal[idx]
		}
	case 8:
		for i := range out {
			idx := buf[i]
			if int(idx) >= h.Colours {
				return ErrInvalidFormat
			}
			out[i] = pal[idx]
		}
	case 16:
		// X1R5G5B5 words; green widens to six bits full scale.
		for i := range out {
			v := bo.Uint16(buf[2*i:])
			g := uint8(v >> 5 & 0x1f)
			out[i] = colour.Colour{
				R: uint8(v >> 10 & 0x1f),
				G: g<<1 | g>>4,
				B: uint8(v & 0x1f),
			}
		}
	case 24:
		for i := range out {
			out[i] = colour.FromRGB(buf[3*i+2], buf[3*i+1], buf[3*i])
		}
	}
	return nil
}
