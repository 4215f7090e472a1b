// package frame contains an image.Image implementation holding
// pixels in the OLED128's 16-bit colour format. It composes images
// off-panel so a finished frame can go out in one transfer.
package frame

import (
	"image"
	"image/color"
	"image/draw"

	"oled128.dev/colour"
)

type Image struct {
	Pix    []colour.Colour
	Stride int
	Rect   image.Rectangle
}

func New(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]colour.Colour, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Image) ColorModel() color.Model {
	return colour.Model
}

func (p *Image) PixOffset(x, y int) int {
	off := image.Pt(x, y).Sub(p.Rect.Min)
	return off.Y*p.Stride + off.X
}

func (p *Image) At(x, y int) color.Color {
	return p.ColourAt(x, y)
}

func (p *Image) ColourAt(x, y int) colour.Colour {
	if !(image.Point{x, y}).In(p.Rect) {
		return colour.Colour{}
	}
	return p.Pix[p.PixOffset(x, y)]
}

func (p *Image) Set(x, y int, c color.Color) {
	p.SetColour(x, y, colour.FromColor(c))
}

func (p *Image) SetColour(x, y int, c colour.Colour) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = c
}

func (p *Image) RGBA64At(x, y int) color.RGBA64 {
	if !(image.Point{x, y}).In(p.Rect) {
		return color.RGBA64{}
	}
	r, g, b, a := p.Pix[p.PixOffset(x, y)].RGBA()
	return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a)}
}

func (p *Image) SetRGBA64(x, y int, c color.RGBA64) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = colour.FromRGB(uint8(c.R>>8), uint8(c.G>>8), uint8(c.B>>8))
}

// DrawOver draws src over the rectangle dr of the frame, reading
// source pixels from sp.
func (p *Image) DrawOver(dr image.Rectangle, src image.Image, sp image.Point) {
	dr = dr.Intersect(p.Rect)
	// Optimize special cases.
	switch src := src.(type) {
	case *image.Uniform:
		if src.Opaque() {
			c := colour.FromColor(src.C)
			for y := 0; y < dr.Dy(); y++ {
				for x := 0; x < dr.Dx(); x++ {
					p.Pix[p.PixOffset(dr.Min.X+x, dr.Min.Y+y)] = c
				}
			}
			return
		}
	case *Image:
		sr := image.Rectangle{Min: sp, Max: sp.Add(dr.Size())}.Intersect(src.Rect)
		if sr.Empty() {
			return
		}
		dr = image.Rectangle{
			Min: dr.Min.Add(sr.Min.Sub(sp)),
			Max: dr.Min.Add(sr.Max.Sub(sp)),
		}
		for y := 0; y < dr.Dy(); y++ {
			so := src.PixOffset(sr.Min.X, sr.Min.Y+y)
			po := p.PixOffset(dr.Min.X, dr.Min.Y+y)
			copy(p.Pix[po:po+dr.Dx()], src.Pix[so:so+dr.Dx()])
		}
		return
	}

	// General case.
	draw.Draw(p, dr, src, sp, draw.Over)
}
