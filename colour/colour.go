// package colour implements the 16-bit pixel format of the OLED128
// panel, with 5 bits of red and blue and 6 bits of green.
package colour

import "image/color"

// Colour is a panel colour. R and B range over 0-31, G over 0-63.
type Colour struct {
	R, G, B uint8
}

// Color is an alias for the other spelling.
type Color = Colour

// Channel maximums.
const (
	MaxRed   = 0x1f
	MaxGreen = 0x3f
	MaxBlue  = 0x1f
)

// New returns the colour with the given channels, masked to their
// ranges.
func New(r, g, b uint8) Colour {
	return Colour{R: r & MaxRed, G: g & MaxGreen, B: b & MaxBlue}
}

// FromRGB converts 8-bit channels by truncation.
func FromRGB(r, g, b uint8) Colour {
	return Colour{R: r >> 3, G: g >> 2, B: b >> 3}
}

// FromColor converts a color.Color by truncation.
func FromColor(c color.Color) Colour {
	if c, ok := c.(Colour); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return FromRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Pack returns the colour in the panel's wire format, most
// significant byte first.
func (c Colour) Pack() [2]byte {
	return [2]byte{c.R<<3 | c.G>>3, c.G<<5 | c.B}
}

// Unpack is the inverse of Pack.
func Unpack(hi, lo byte) Colour {
	return Colour{
		R: hi >> 3,
		G: (hi&0x07)<<3 | lo>>5,
		B: lo & MaxBlue,
	}
}

// RGBA implements color.Color. Channels are expanded by replicating
// their high bits so that full scale maps to full scale.
func (c Colour) RGBA() (r, g, b, a uint32) {
	r8 := c.R<<3 | c.R>>2
	g8 := c.G<<2 | c.G>>4
	b8 := c.B<<3 | c.B>>2
	return uint32(r8) * 0x101, uint32(g8) * 0x101, uint32(b8) * 0x101, 0xffff
}

// Model converts colours to Colour.
var Model color.Model = color.ModelFunc(func(c color.Color) color.Color {
	return FromColor(c)
})

var (
	Black   = Colour{}
	White   = Colour{R: 31, G: 63, B: 31}
	Red     = Colour{R: 31}
	Green   = Colour{G: 63}
	Blue    = Colour{B: 31}
	Yellow  = Colour{R: 31, G: 63}
	Cyan    = Colour{G: 63, B: 31}
	Magenta = Colour{R: 31, B: 31}
	Orange  = Colour{R: 31, G: 31}
	Purple  = Colour{R: 15, B: 15}
	Gray    = Colour{R: 15, G: 31, B: 15}
)
