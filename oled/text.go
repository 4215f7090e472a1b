package oled

import (
	"image"

	"oled128.dev/colour"
	"oled128.dev/font"
)

// SelectFont sets the face used by the character and string drawing
// calls. The driver starts out with font.System5x7.
func (o *OLED) SelectFont(f *font.Face) {
	if f == nil {
		f = font.System5x7
	}
	o.face = f
}

// Font returns the selected face.
func (o *OLED) Font() *font.Face {
	return o.face
}

// CharWidth returns the advance of ch in the selected face, including
// the one pixel gap that follows every glyph, or 0 for characters the
// face does not cover.
func (o *OLED) CharWidth(ch byte) int {
	w, ok := o.face.GlyphWidth(ch)
	if !ok {
		return 0
	}
	return w + 1
}

// StringWidth returns the advance of s in the selected face.
func (o *OLED) StringWidth(s string) int {
	w := 0
	for i := 0; i < len(s); i++ {
		w += o.CharWidth(s[i])
	}
	return w
}

// DrawChar draws ch with its top-left corner at (x, y), painting the
// background behind the glyph, and returns its advance. Characters
// the face does not cover draw nothing, and glyphs off the panel edge
// are clipped.
func (o *OLED) DrawChar(x, y int, ch byte, fg, bg colour.Colour) (int, error) {
	g, ok := o.face.Glyph(ch)
	if !ok {
		return 0, nil
	}
	adv := g.Width + 1
	r := image.Rect(x, y, x+g.Width, y+o.face.Height())
	clipped := r.Intersect(o.Bounds())
	if clipped.Empty() {
		return adv, nil
	}
	if err := o.SetWindow(clipped); err != nil {
		return 0, err
	}
	for gy := clipped.Min.Y - y; gy < clipped.Max.Y-y; gy++ {
		for gx := clipped.Min.X - x; gx < clipped.Max.X-x; gx++ {
			c := bg
			if g.At(gx, gy) {
				c = fg
			}
			if err := o.WritePixel(c); err != nil {
				return 0, err
			}
		}
	}
	return adv, nil
}

// DrawString draws s with its top-left corner at (x, y), filling the
// one pixel gap between glyphs with the background. Drawing stops at
// the right panel edge.
func (o *OLED) DrawString(x, y int, s string, fg, bg colour.Colour) error {
	h := o.face.Height()
	for i := 0; i < len(s); i++ {
		if x >= Width {
			break
		}
		adv, err := o.DrawChar(x, y, s[i], fg, bg)
		if err != nil {
			return err
		}
		if adv == 0 {
			continue
		}
		if err := o.FillRect(image.Rect(x+adv-1, y, x+adv, y+h), bg); err != nil {
			return err
		}
		x += adv
	}
	return nil
}
