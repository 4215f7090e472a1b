package oled

import (
	"image"

	"oled128.dev/bresenham"
	"oled128.dev/colour"
)

// DrawLine draws a one pixel line from (x1, y1) to (x2, y2),
// clipping to the panel. Horizontal and vertical lines go out as a
// single window fill.
func (o *OLED) DrawLine(x1, y1, x2, y2 int, c colour.Colour) error {
	if y1 == y2 {
		if x2 < x1 {
			x1, x2 = x2, x1
		}
		return o.FillRect(image.Rect(x1, y1, x2+1, y1+1), c)
	}
	if x1 == x2 {
		if y2 < y1 {
			y1, y2 = y2, y1
		}
		return o.FillRect(image.Rect(x1, y1, x1+1, y2+1), c)
	}
	var line bresenham.Line
	dirx, diry, steps := line.Reset(image.Pt(x2-x1, y2-y1))
	x, y := x1, y1
	if err := o.SetPixel(x, y, c); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		dx, dy := line.Step()
		if dirx == 1 {
			x -= int(dx)
		} else {
			x += int(dx)
		}
		if diry == 1 {
			y -= int(dy)
		} else {
			y += int(dy)
		}
		if err := o.SetPixel(x, y, c); err != nil {
			return err
		}
	}
	return nil
}

// DrawBox outlines r with edges edge pixels wide, growing inward.
// Boxes too small for their edges come out solid.
func (o *OLED) DrawBox(r image.Rectangle, edge int, c colour.Colour) error {
	r = r.Canon()
	if edge <= 0 || r.Empty() {
		return nil
	}
	if 2*edge >= r.Dx() || 2*edge >= r.Dy() {
		return o.FillRect(r, c)
	}
	for _, band := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+edge),
		image.Rect(r.Min.X, r.Max.Y-edge, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+edge, r.Min.X+edge, r.Max.Y-edge),
		image.Rect(r.Max.X-edge, r.Min.Y+edge, r.Max.X, r.Max.Y-edge),
	} {
		if err := o.FillRect(band, c); err != nil {
			return err
		}
	}
	return nil
}

// DrawFilledBox fills r and outlines it with an edge pixels wide
// border in a second colour. A zero edge fills the whole box.
func (o *OLED) DrawFilledBox(r image.Rectangle, fill colour.Colour, edge int, edgeColour colour.Colour) error {
	r = r.Canon()
	if edge > 0 {
		if err := o.DrawBox(r, edge, edgeColour); err != nil {
			return err
		}
		r = r.Inset(edge)
	}
	return o.FillRect(r, fill)
}

// DrawCircle outlines a circle of radius r centred on (x, y) with the
// integer midpoint algorithm.
func (o *OLED) DrawCircle(x, y, r int, c colour.Colour) error {
	if r < 0 {
		return nil
	}
	cx, cy, e := 0, r, 1-r
	for cx <= cy {
		for _, p := range [...]image.Point{
			{x + cx, y + cy}, {x - cx, y + cy},
			{x + cx, y - cy}, {x - cx, y - cy},
			{x + cy, y + cx}, {x - cy, y + cx},
			{x + cy, y - cx}, {x - cy, y - cx},
		} {
			if err := o.SetPixel(p.X, p.Y, c); err != nil {
				return err
			}
		}
		cx++
		if e < 0 {
			e += 2*cx + 1
		} else {
			cy--
			e += 2*(cx-cy) + 1
		}
	}
	return nil
}

// DrawFilledCircle fills a circle of radius r centred on (x, y) with
// horizontal spans.
func (o *OLED) DrawFilledCircle(x, y, r int, c colour.Colour) error {
	if r < 0 {
		return nil
	}
	cx, cy, e := 0, r, 1-r
	for cx <= cy {
		for _, s := range [...]struct{ x0, x1, y int }{
			{x - cx, x + cx, y + cy},
			{x - cx, x + cx, y - cy},
			{x - cy, x + cy, y + cx},
			{x - cy, x + cy, y - cx},
		} {
			if err := o.FillRect(image.Rect(s.x0, s.y, s.x1+1, s.y+1), c); err != nil {
				return err
			}
		}
		cx++
		if e < 0 {
			e += 2*cx + 1
		} else {
			cy--
			e += 2*(cx-cy) + 1
		}
	}
	return nil
}
