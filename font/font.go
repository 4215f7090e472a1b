// package font implements bitmap font faces in the compact format
// produced by the FontCreator tool.
//
// A face is a single byte slice. It starts with a six byte header:
// the glyph data size as a little-endian uint16, the fixed glyph
// width (zero for proportional faces), the glyph height in pixels,
// the first covered character and the character count. Proportional
// faces follow the header with one width byte per character. Glyph
// bitmaps come last, column by column; each column is stored as
// pages of eight vertical pixels with the low bit on top.
package font

import (
	"encoding/binary"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Face is a font face backed by its binary representation.
type Face struct {
	data []byte
}

func NewFace(data []byte) *Face {
	return &Face{data}
}

const (
	offSize       = 0
	offFixedWidth = 2
	offHeight     = 3
	offFirstChar  = 4
	offCharCount  = 5
	headerLen     = 6
)

var bo = binary.LittleEndian

// Glyph is the bitmap of a single character.
type Glyph struct {
	Width  int
	height int
	pix    []byte
}

// At reports whether the glyph pixel at (x, y) is set, with y
// counted from the top.
func (g Glyph) At(x, y int) bool {
	if x < 0 || x >= g.Width || y < 0 || y >= g.height {
		return false
	}
	pages := (g.height + 7) / 8
	return g.pix[x*pages+y/8]&(1<<(y%8)) != 0
}

// Height returns the glyph height in pixels.
func (f *Face) Height() int {
	return int(f.data[offHeight])
}

// DataSize returns the declared byte size of the glyph bitmaps.
func (f *Face) DataSize() int {
	return int(bo.Uint16(f.data[offSize:]))
}

func (f *Face) glyphFor(ch byte) (Glyph, bool) {
	first, count := f.data[offFirstChar], f.data[offCharCount]
	if ch < first || uint16(ch) >= uint16(first)+uint16(count) {
		return Glyph{}, false
	}
	i := int(ch - first)
	height := int(f.data[offHeight])
	pages := (height + 7) / 8
	if w := int(f.data[offFixedWidth]); w != 0 {
		start := headerLen + i*w*pages
		return Glyph{Width: w, height: height, pix: f.data[start : start+w*pages]}, true
	}
	widths := f.data[headerLen : headerLen+int(count)]
	start := headerLen + int(count)
	for _, w := range widths[:i] {
		start += int(w) * pages
	}
	w := int(widths[i])
	return Glyph{Width: w, height: height, pix: f.data[start : start+w*pages]}, true
}

// Glyph returns the bitmap for ch.
func (f *Face) Glyph(ch byte) (Glyph, bool) {
	return f.glyphFor(ch)
}

// GlyphWidth returns the width of ch in pixels, without spacing.
func (f *Face) GlyphWidth(ch byte) (int, bool) {
	g, ok := f.glyphFor(ch)
	if !ok {
		return 0, false
	}
	return g.Width, true
}

// GlyphAdvance returns the horizontal advance of r, including the
// column of spacing that follows every glyph.
func (f *Face) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	if r < 0 || r > 0xff {
		return 0, false
	}
	g, ok := f.glyphFor(byte(r))
	if !ok {
		return 0, false
	}
	return fixed.I(g.Width + 1), true
}

// Metrics returns the face metrics. The faces carry no baseline
// information; the full glyph height counts as ascent.
func (f *Face) Metrics() font.Metrics {
	h := fixed.I(f.Height())
	return font.Metrics{
		Ascent: h,
		Height: h + fixed.I(1),
	}
}
