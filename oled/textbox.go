package oled

import (
	"image"
	"io"

	"oled128.dev/colour"
)

// TextBox renders a scrolling text region of the panel. It implements
// io.Writer: written bytes draw immediately in the selected font,
// lines wrap at the right edge, and once the box is full each newline
// scrolls the oldest line off through a redraw. A one pixel gap
// separates glyph rows.
//
// Control bytes: '\n' starts a new line, '\r' erases the current one.
type TextBox struct {
	oled   *OLED
	r      image.Rectangle
	fg, bg colour.Colour

	// lines is the retained text after wrapping; the last entry is
	// the cursor line.
	lines [][]byte
}

// NewTextBox returns a text box over r, clipped to the panel, drawing
// white on black until the colours are changed.
func NewTextBox(o *OLED, r image.Rectangle) *TextBox {
	return &TextBox{
		oled:  o,
		r:     r.Canon().Intersect(o.Bounds()),
		fg:    colour.White,
		bg:    colour.Black,
		lines: [][]byte{nil},
	}
}

// SetForeground sets the text colour for subsequent writes.
func (b *TextBox) SetForeground(c colour.Colour) {
	b.fg = c
}

// SetBackground sets the colour painted behind subsequent writes.
func (b *TextBox) SetBackground(c colour.Colour) {
	b.bg = c
}

// Bounds returns the box rectangle.
func (b *TextBox) Bounds() image.Rectangle {
	return b.r
}

// Clear blanks the box and discards the retained text.
func (b *TextBox) Clear() error {
	b.lines = [][]byte{nil}
	return b.oled.FillRect(b.r, b.bg)
}

// Reset discards the retained text and moves the cursor home without
// touching the panel, so new text overdraws the old.
func (b *TextBox) Reset() {
	b.lines = [][]byte{nil}
}

// Write draws p into the box. It never returns a short count unless
// the bus write fails.
func (b *TextBox) Write(p []byte) (int, error) {
	for i, ch := range p {
		if err := b.put(ch); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// rows returns how many glyph rows fit the box with the selected
// font.
func (b *TextBox) rows() int {
	return b.r.Dy() / (b.oled.face.Height() + 1)
}

// lineWidth returns the pixel advance of the retained line row.
func (b *TextBox) lineWidth(row int) int {
	w := 0
	for _, ch := range b.lines[row] {
		w += b.oled.CharWidth(ch)
	}
	return w
}

func (b *TextBox) put(ch byte) error {
	face := b.oled.face
	lineH := face.Height() + 1
	if b.rows() == 0 || b.r.Dx() <= 0 {
		return nil
	}
	switch ch {
	case '\n':
		return b.newline()
	case '\r':
		row := len(b.lines) - 1
		b.lines[row] = b.lines[row][:0]
		top := b.r.Min.Y + row*lineH
		return b.oled.FillRect(image.Rect(b.r.Min.X, top, b.r.Max.X, top+lineH), b.bg)
	}
	w, ok := face.GlyphWidth(ch)
	if !ok || w > b.r.Dx() {
		return nil
	}
	x := b.lineWidth(len(b.lines) - 1)
	if x+w > b.r.Dx() {
		if err := b.newline(); err != nil {
			return err
		}
		x = 0
	}
	row := len(b.lines) - 1
	top := b.r.Min.Y + row*lineH
	if _, err := b.oled.DrawChar(b.r.Min.X+x, top, ch, b.fg, b.bg); err != nil {
		return err
	}
	gap := image.Rect(b.r.Min.X+x+w, top, b.r.Min.X+x+w+1, top+face.Height())
	if err := b.oled.FillRect(gap.Intersect(b.r), b.bg); err != nil {
		return err
	}
	b.lines[row] = append(b.lines[row], ch)
	return nil
}

func (b *TextBox) newline() error {
	b.lines = append(b.lines, nil)
	if len(b.lines) <= b.rows() {
		return nil
	}
	// Scroll: drop the oldest line and repaint the rest.
	b.lines = b.lines[1:]
	return b.redraw()
}

func (b *TextBox) redraw() error {
	if err := b.oled.FillRect(b.r, b.bg); err != nil {
		return err
	}
	lineH := b.oled.face.Height() + 1
	for row, line := range b.lines {
		x := 0
		top := b.r.Min.Y + row*lineH
		for _, ch := range line {
			adv, err := b.oled.DrawChar(b.r.Min.X+x, top, ch, b.fg, b.bg)
			if err != nil {
				return err
			}
			x += adv
		}
	}
	return nil
}

var _ io.Writer = (*TextBox)(nil)
