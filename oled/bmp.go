package oled

import (
	"image"

	"oled128.dev/bmp"
)

// DisplayBMP decodes the bitmap in src onto the panel with its
// top-left corner at p. Pixels reach the panel row by row as they
// decode; src is never buffered whole.
func (o *OLED) DisplayBMP(src bmp.Source, p image.Point) error {
	return bmp.Blit(o, src, p)
}

// DisplayBMPRect decodes the sub-rectangle sr of the bitmap in src
// onto the panel at p.
func (o *OLED) DisplayBMPRect(src bmp.Source, sr image.Rectangle, p image.Point) error {
	return bmp.BlitRect(o, src, sr, p)
}

var _ bmp.Window = (*OLED)(nil)
