// package oled implements a driver for the Freetronics OLED128, a
// 128x128 colour OLED on the SSD1351 controller, connected over SPI
// with data/command and reset lines.
//
// Drawing goes through the controller's window protocol: SetWindow
// selects a rectangle of display RAM and arms a pixel countdown, then
// WritePixel streams colours until the window is exhausted. The shape,
// text and bitmap layers all sit on those two calls.
package oled

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"oled128.dev/colour"
	"oled128.dev/font"
	"oled128.dev/frame"
)

// Panel dimensions.
const (
	Width  = 128
	Height = 128
)

// Opts configures the panel variant.
type Opts struct {
	// Rotated turns the image 180 degrees for displays mounted
	// upside down.
	Rotated bool
	// BGR swaps the subpixel order for panels wired blue first.
	BGR bool
}

type OLED struct {
	port spi.Port
	conn spi.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut
	dims image.Point

	txBuf   []byte
	txLen   int
	pending int // pixels left in the open window
	remap   byte

	face         *font.Face
	powered      bool
	gpio0, gpio1 GPIOMode
}

// New opens an OLED128 on the SPI port p with the given data/command
// and reset pins. The chip select line belongs to the port. New
// resets the controller, runs the init sequence, clears display RAM
// and powers the panel on.
func New(p spi.Port, dc, rst gpio.PinOut, opts *Opts) (*OLED, error) {
	if opts == nil {
		opts = &Opts{}
	}
	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("oled: %w", err)
	}
	o := &OLED{
		port: p,
		conn: c,
		dc:   dc,
		rst:  rst,
		dims: image.Pt(Width, Height),
		face: font.System5x7,
	}
	maxTx := 4096
	if lim, ok := c.(conn.Limits); ok {
		maxTx = lim.MaxTxSize()
	}
	if maxTx > 2*Width*Height {
		maxTx = 2 * Width * Height
	}
	// Pixels are two bytes; never split one across transfers.
	o.txBuf = make([]byte, maxTx&^1)
	if err := o.setup(opts); err != nil {
		return nil, err
	}
	return o, nil
}

// Close powers the panel down and releases the SPI port when the
// driver was handed a closeable one.
func (o *OLED) Close() error {
	err := o.SetDisplayOn(false)
	if c, ok := o.port.(spi.PortCloser); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (o *OLED) setup(opts *Opts) error {
	for _, p := range []gpio.PinOut{o.dc, o.rst} {
		if err := p.Out(gpio.High); err != nil {
			return fmt.Errorf("oled: %w", err)
		}
	}

	// Reset pulse. The controller needs 2us; be generous.
	if err := o.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("oled: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := o.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("oled: %w", err)
	}
	time.Sleep(10 * time.Millisecond)

	remap := byte(remap65K | remapCOMSplit | remapScanReverse | remapRGB)
	if opts.Rotated {
		remap ^= remapColumnReverse | remapScanReverse
	}
	if opts.BGR {
		remap &^= remapRGB
	}

	var cmdErr error
	sendCommand := func(cmd byte, data ...byte) {
		if cmdErr != nil {
			return
		}
		cmdErr = o.sendCommand(cmd, data...)
	}
	sendCommand(cmdCommandLock, lockUnlock)
	sendCommand(cmdCommandLock, lockAllowSpecial)
	sendCommand(cmdSleep)
	sendCommand(cmdDisplayClock, 0xF1) // divide by 2, fastest oscillator
	sendCommand(cmdMuxRatio, Height-1)
	sendCommand(cmdSetRemap, remap)
	sendCommand(cmdStartLine, 0)
	sendCommand(cmdDisplayOffset, 0)
	sendCommand(cmdSetGPIO, gpioBits(GPIOLow, GPIOLow)) // panel power off
	sendCommand(cmdFunctionSelect, 0x01)                // internal VDD regulator
	sendCommand(cmdPrecharge, 0x32)
	sendCommand(cmdPrechargeLevel, 0x17)
	sendCommand(cmdSecondPrecharge, 0x01)
	sendCommand(cmdVCOMH, 0x05)
	sendCommand(cmdColorContrast, 0xC8, 0x80, 0xC8)
	sendCommand(cmdMasterContrast, 0x0F)
	sendCommand(cmdDefaultLUT)
	sendCommand(cmdDisplayMode + byte(ModeNormal))
	if cmdErr != nil {
		return fmt.Errorf("oled: SPI command: %w", cmdErr)
	}
	o.remap = remap
	o.gpio0, o.gpio1 = GPIOLow, GPIOLow
	if err := o.FillScreen(colour.Black); err != nil {
		return err
	}
	return o.SetDisplayOn(true)
}

// sendCommand writes the command byte with DC low, then its arguments
// with DC high. The controller samples DC on every byte, and data mode
// is left selected afterwards for RAM writes.
func (o *OLED) sendCommand(cmd byte, data ...byte) error {
	if err := o.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := o.conn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if err := o.dc.Out(gpio.High); err != nil {
		return err
	}
	if len(data) > 0 {
		if err := o.conn.Tx(data, nil); err != nil {
			return err
		}
	}
	return nil
}

// SetWindow selects the rectangle r of display RAM for writing and
// arms a countdown of r.Dx()*r.Dy() pixels. The window closes by
// itself once the last pixel arrives; writing fewer pixels leaves it
// open.
func (o *OLED) SetWindow(r image.Rectangle) error {
	if r.Empty() || !r.In(o.Bounds()) {
		return fmt.Errorf("oled: window %v outside %v", r, o.Bounds())
	}
	var cmdErr error
	sendCommand := func(cmd byte, data ...byte) {
		if cmdErr != nil {
			return
		}
		cmdErr = o.sendCommand(cmd, data...)
	}
	sendCommand(cmdSetColumn, byte(r.Min.X), byte(r.Max.X-1))
	sendCommand(cmdSetRow, byte(r.Min.Y), byte(r.Max.Y-1))
	sendCommand(cmdWriteRAM)
	if cmdErr != nil {
		return fmt.Errorf("oled: SPI command: %w", cmdErr)
	}
	o.pending = r.Dx() * r.Dy()
	o.txLen = 0
	return nil
}

// WritePixel streams the next pixel of the open window. Wire bytes
// buffer until the transmit buffer fills or the window's last pixel
// arrives.
func (o *OLED) WritePixel(c colour.Colour) error {
	if o.pending == 0 {
		return fmt.Errorf("oled: pixel write with no open window")
	}
	p := c.Pack()
	o.txBuf[o.txLen] = p[0]
	o.txBuf[o.txLen+1] = p[1]
	o.txLen += 2
	o.pending--
	if o.txLen == len(o.txBuf) || o.pending == 0 {
		return o.flush()
	}
	return nil
}

func (o *OLED) flush() error {
	buf := o.txBuf[:o.txLen]
	o.txLen = 0
	if err := o.conn.Tx(buf, nil); err != nil {
		return fmt.Errorf("oled: blit: %w", err)
	}
	return nil
}

// SetPixel sets a single pixel. Pixels off the panel are ignored.
func (o *OLED) SetPixel(x, y int, c colour.Colour) error {
	if !image.Pt(x, y).In(o.Bounds()) {
		return nil
	}
	if err := o.SetWindow(image.Rect(x, y, x+1, y+1)); err != nil {
		return err
	}
	return o.WritePixel(c)
}

// FillRect floods r, clipped to the panel, with a single colour.
func (o *OLED) FillRect(r image.Rectangle, c colour.Colour) error {
	r = r.Intersect(o.Bounds())
	if r.Empty() {
		return nil
	}
	if err := o.SetWindow(r); err != nil {
		return err
	}
	o.pending = 0
	p := c.Pack()
	n := r.Dx() * r.Dy()
	buf := o.txBuf
	if n*2 < len(buf) {
		buf = buf[:n*2]
	}
	for i := 0; i < len(buf); i += 2 {
		buf[i], buf[i+1] = p[0], p[1]
	}
	for n > 0 {
		chunk := buf
		if n*2 < len(chunk) {
			chunk = chunk[:n*2]
		}
		if err := o.conn.Tx(chunk, nil); err != nil {
			return fmt.Errorf("oled: fill: %w", err)
		}
		n -= len(chunk) / 2
	}
	return nil
}

// FillScreen floods the whole panel with one colour.
func (o *OLED) FillScreen(c colour.Colour) error {
	return o.FillRect(o.Bounds(), c)
}

// ClearScreen blanks the panel.
func (o *OLED) ClearScreen() error {
	return o.FillScreen(colour.Black)
}

// Draw implements display.Drawer by streaming src through the window
// protocol. Frames in the panel's native format skip the per pixel
// colour conversion.
func (o *OLED) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(o.Bounds())
	if r.Empty() {
		return nil
	}
	sr := image.Rectangle{Min: sp, Max: sp.Add(r.Size())}
	clipped := sr.Intersect(src.Bounds())
	if clipped.Empty() {
		return nil
	}
	r = image.Rectangle{
		Min: r.Min.Add(clipped.Min.Sub(sr.Min)),
		Max: r.Max.Add(clipped.Max.Sub(sr.Max)),
	}
	if err := o.SetWindow(r); err != nil {
		return err
	}
	if f, ok := src.(*frame.Image); ok {
		for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
			for x := clipped.Min.X; x < clipped.Max.X; x++ {
				if err := o.WritePixel(f.ColourAt(x, y)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			if err := o.WritePixel(colour.FromColor(src.At(x, y))); err != nil {
				return err
			}
		}
	}
	return nil
}

// Bounds returns the panel extent.
func (o *OLED) Bounds() image.Rectangle {
	return image.Rectangle{Max: o.dims}
}

// Dims returns the panel size in pixels.
func (o *OLED) Dims() image.Point {
	return o.dims
}

// ColorModel returns the panel's 16-bit colour model.
func (o *OLED) ColorModel() color.Model {
	return colour.Model
}

// Halt powers the panel down. It implements conn.Resource.
func (o *OLED) Halt() error {
	return o.SetDisplayOn(false)
}

func (o *OLED) String() string {
	return fmt.Sprintf("oled.OLED{%dx%d}", o.dims.X, o.dims.Y)
}

var _ display.Drawer = (*OLED)(nil)

// Command set of the SSD1351 controller, from the Solomon Systech
// datasheet rev 1.5.
const (
	cmdSetColumn       = 0x15 // Set Column Address
	cmdWriteRAM        = 0x5C // Write RAM
	cmdSetRow          = 0x75 // Set Row Address
	cmdSetRemap        = 0xA0 // Set Re-map / Colour Depth
	cmdStartLine       = 0xA1 // Set Display Start Line
	cmdDisplayOffset   = 0xA2 // Set Display Offset
	cmdDisplayMode     = 0xA4 // Display mode base: all off, all on, normal, inverse
	cmdFunctionSelect  = 0xAB // Function Selection
	cmdSleep           = 0xAE // Sleep mode on (display off)
	cmdWake            = 0xAF // Sleep mode off (display on)
	cmdPrecharge       = 0xB1 // Phase 1 and 2 periods
	cmdDisplayClock    = 0xB3 // Front clock divider / oscillator frequency
	cmdSetGPIO         = 0xB5 // GPIO pin states
	cmdSecondPrecharge = 0xB6 // Second precharge period
	cmdGrayscaleLUT    = 0xB8 // Gray scale pulse width table
	cmdDefaultLUT      = 0xB9 // Reset gray scale table to builtin default
	cmdPrechargeLevel  = 0xBB // Precharge voltage
	cmdVCOMH           = 0xBE // VCOMH voltage
	cmdColorContrast   = 0xC1 // Contrast current for colours A, B, C
	cmdMasterContrast  = 0xC7 // Master contrast current
	cmdMuxRatio        = 0xCA // Multiplex ratio
	cmdCommandLock     = 0xFD // Command lock
)

// Arguments to cmdCommandLock.
const (
	lockUnlock       = 0x12 // accept commands
	lockLock         = 0x16 // ignore everything until the next unlock
	lockSpecialOff   = 0xB0 // lock the extended command set
	lockAllowSpecial = 0xB1 // unlock the extended command set
)

// Remap flags for cmdSetRemap.
const (
	remapVertical      = 1 << 0 // address increments down columns instead of along rows
	remapColumnReverse = 1 << 1 // columns scan right to left
	remapRGB           = 1 << 2 // subpixel order RGB rather than BGR
	remapScanReverse   = 1 << 4 // rows scan bottom to top
	remapCOMSplit      = 1 << 5 // odd/even COM split
	remap65K           = 1 << 6 // 16-bit 5-6-5 colour format
)
