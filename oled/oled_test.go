package oled

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"

	"oled128.dev/colour"
)

// newTestOLED returns a driver on a recording SPI port, with the
// init traffic discarded.
func newTestOLED(t *testing.T, opts *Opts) (*OLED, *spitest.Record) {
	t.Helper()
	rec := &spitest.Record{}
	o, err := New(rec, &gpiotest.Pin{N: "dc"}, &gpiotest.Pin{N: "rst"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	rec.Ops = nil
	return o, rec
}

func checkOps(t *testing.T, got, want []conntest.IO) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("recorded %d transfers, expected %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i].W, want[i].W) {
			t.Errorf("transfer %d: % x, expected % x", i, got[i].W, want[i].W)
		}
	}
}

func TestInitSequence(t *testing.T) {
	rec := &spitest.Record{}
	if _, err := New(rec, &gpiotest.Pin{N: "dc"}, &gpiotest.Pin{N: "rst"}, nil); err != nil {
		t.Fatal(err)
	}
	var want []conntest.IO
	cmd := func(c byte, args ...byte) {
		want = append(want, conntest.IO{W: []byte{c}})
		if len(args) > 0 {
			want = append(want, conntest.IO{W: args})
		}
	}
	cmd(0xFD, 0x12) // unlock
	cmd(0xFD, 0xB1) // allow special commands
	cmd(0xAE)       // sleep
	cmd(0xB3, 0xF1)
	cmd(0xCA, 127)
	cmd(0xA0, 0x74)
	cmd(0xA1, 0x00)
	cmd(0xA2, 0x00)
	cmd(0xB5, 0x0A) // both GPIOs low, panel supply off
	cmd(0xAB, 0x01)
	cmd(0xB1, 0x32)
	cmd(0xBB, 0x17)
	cmd(0xB6, 0x01)
	cmd(0xBE, 0x05)
	cmd(0xC1, 0xC8, 0x80, 0xC8)
	cmd(0xC7, 0x0F)
	cmd(0xB9)
	cmd(0xA6) // normal display mode
	cmd(0x15, 0, 127)
	cmd(0x75, 0, 127)
	cmd(0x5C)
	for i := 0; i < 8; i++ {
		// RAM clear, streamed in transmit buffer sized bursts.
		want = append(want, conntest.IO{W: make([]byte, 4096)})
	}
	cmd(0xB5, 0x0B) // panel supply on
	cmd(0xAF)       // wake
	checkOps(t, rec.Ops, want)
}

func TestInitRemap(t *testing.T) {
	tests := []struct {
		name string
		opts *Opts
		want byte
	}{
		{"default", nil, 0x74},
		{"rotated", &Opts{Rotated: true}, 0x66},
		{"bgr", &Opts{BGR: true}, 0x70},
		{"rotated bgr", &Opts{Rotated: true, BGR: true}, 0x62},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := &spitest.Record{}
			if _, err := New(rec, &gpiotest.Pin{N: "dc"}, &gpiotest.Pin{N: "rst"}, test.opts); err != nil {
				t.Fatal(err)
			}
			for i, op := range rec.Ops {
				if len(op.W) == 1 && op.W[0] == cmdSetRemap {
					if got := rec.Ops[i+1].W; len(got) != 1 || got[0] != test.want {
						t.Fatalf("remap argument % x, expected %#02x", got, test.want)
					}
					return
				}
			}
			t.Fatal("no remap command sent")
		})
	}
}

func TestSetWindow(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetWindow(image.Rect(4, 8, 20, 24)); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0x15}}, {W: []byte{4, 19}},
		{W: []byte{0x75}}, {W: []byte{8, 23}},
		{W: []byte{0x5C}},
	})

	rec.Ops = nil
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 129, 1),
		image.Rect(-1, 0, 5, 5),
		image.Rect(10, 10, 10, 20),
		image.Rect(0, 120, 5, 129),
	} {
		if err := o.SetWindow(r); err == nil {
			t.Errorf("window %v accepted", r)
		}
	}
	if len(rec.Ops) != 0 {
		t.Errorf("rejected windows reached the bus: %v", rec.Ops)
	}
}

func TestWritePixel(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.WritePixel(colour.White); err == nil {
		t.Fatal("pixel write with no open window accepted")
	}
	if err := o.SetWindow(image.Rect(0, 0, 2, 2)); err != nil {
		t.Fatal(err)
	}
	rec.Ops = nil
	for _, c := range []colour.Colour{colour.Red, colour.Green, colour.Blue, colour.White} {
		if err := o.WritePixel(c); err != nil {
			t.Fatal(err)
		}
	}
	// The window's pixels buffer until the countdown hits zero, then
	// leave as one transfer.
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xF8, 0x00, 0x07, 0xE0, 0x00, 0x1F, 0xFF, 0xFF}},
	})
	if err := o.WritePixel(colour.White); err == nil {
		t.Fatal("write past the window end accepted")
	}
}

func TestSetPixel(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetPixel(3, 4, colour.Red); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0x15}}, {W: []byte{3, 3}},
		{W: []byte{0x75}}, {W: []byte{4, 4}},
		{W: []byte{0x5C}},
		{W: []byte{0xF8, 0x00}},
	})

	// Off-panel pixels are dropped silently.
	rec.Ops = nil
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {128, 0}, {0, 128}} {
		if err := o.SetPixel(p.X, p.Y, colour.Red); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec.Ops) != 0 {
		t.Errorf("off-panel pixels reached the bus: %v", rec.Ops)
	}
}

func TestFillRect(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.FillRect(image.Rect(2, 3, 6, 5), colour.Red); err != nil {
		t.Fatal(err)
	}
	pattern := bytes.Repeat([]byte{0xF8, 0x00}, 8)
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0x15}}, {W: []byte{2, 5}},
		{W: []byte{0x75}}, {W: []byte{3, 4}},
		{W: []byte{0x5C}},
		{W: pattern},
	})

	// Fills clip to the panel; a fill entirely outside is a no-op.
	rec.Ops = nil
	if err := o.FillRect(image.Rect(120, 120, 140, 140), colour.Red); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0x15}}, {W: []byte{120, 127}},
		{W: []byte{0x75}}, {W: []byte{120, 127}},
		{W: []byte{0x5C}},
		{W: bytes.Repeat([]byte{0xF8, 0x00}, 64)},
	})
	rec.Ops = nil
	if err := o.FillRect(image.Rect(-10, -10, -1, -1), colour.Red); err != nil {
		t.Fatal(err)
	}
	if len(rec.Ops) != 0 {
		t.Errorf("off-panel fill reached the bus: %v", rec.Ops)
	}
}

func TestDisplayOnOff(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	// Already on after init.
	if err := o.SetDisplayOn(true); err != nil {
		t.Fatal(err)
	}
	if len(rec.Ops) != 0 {
		t.Fatalf("redundant power-up reached the bus: %v", rec.Ops)
	}
	if err := o.SetDisplayOn(false); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xAE}},
		{W: []byte{0xB5}}, {W: []byte{0x0A}},
	})
	rec.Ops = nil
	if err := o.Halt(); err != nil {
		t.Fatal(err)
	}
	if len(rec.Ops) != 0 {
		t.Fatalf("halting a halted panel reached the bus: %v", rec.Ops)
	}
	if err := o.SetDisplayOn(true); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xB5}}, {W: []byte{0x0B}},
		{W: []byte{0xAF}},
	})
}

func TestSetGPIO1(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetGPIO1(GPIOHigh); err != nil {
		t.Fatal(err)
	}
	// GPIO0 stays high: the panel is powered.
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xB5}}, {W: []byte{0x0F}},
	})
	rec.Ops = nil
	if err := o.SetDisplayOn(false); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xAE}},
		{W: []byte{0xB5}}, {W: []byte{0x0E}},
	})
}

func TestSetDisplayMode(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	for m, want := range map[DisplayMode]byte{
		ModeAllOff:  0xA4,
		ModeAllOn:   0xA5,
		ModeNormal:  0xA6,
		ModeInverse: 0xA7,
	} {
		rec.Ops = nil
		if err := o.SetDisplayMode(m); err != nil {
			t.Fatal(err)
		}
		checkOps(t, rec.Ops, []conntest.IO{{W: []byte{want}}})
	}
	rec.Ops = nil
	if err := o.SetDisplayMode(4); err == nil {
		t.Error("invalid display mode accepted")
	}
	if len(rec.Ops) != 0 {
		t.Errorf("invalid display mode reached the bus: %v", rec.Ops)
	}
}

func TestContrast(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetContrast(9); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xC7}}, {W: []byte{9}},
	})
	if err := o.SetContrast(16); err == nil {
		t.Error("out of range contrast accepted")
	}
	rec.Ops = nil
	if err := o.SetColorContrasts(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xC1}}, {W: []byte{1, 2, 3}},
	})
}

func TestGrayscaleTable(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	table := make([]byte, 64)
	for i := range table {
		table[i] = byte(i * 180 / 63)
	}
	if err := o.SetGrayscaleTable(table); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xB8}}, {W: table[1:]},
	})

	bad := [][]byte{
		make([]byte, 63),
		make([]byte, 65),
	}
	tooBig := bytes.Clone(table)
	tooBig[63] = 181
	flat := bytes.Clone(table)
	flat[10] = flat[9]
	bad = append(bad, tooBig, flat)
	for i, table := range bad {
		rec.Ops = nil
		if err := o.SetGrayscaleTable(table); err == nil {
			t.Errorf("table %d accepted", i)
		}
		if len(rec.Ops) != 0 {
			t.Errorf("rejected table %d reached the bus: %v", i, rec.Ops)
		}
	}
}

func TestGrayscalePresets(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetBrightGrayscaleTable(); err != nil {
		t.Fatal(err)
	}
	bright := make([]byte, 63)
	for i := range bright {
		bright[i] = byte((i + 1) * 180 / 63)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xB8}}, {W: bright},
	})
	rec.Ops = nil
	if err := o.SetDimGrayscaleTable(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Ops[len(rec.Ops)-1].W; got[62] != 90 {
		t.Errorf("dim table tops out at %d, expected 90", got[62])
	}
	rec.Ops = nil
	if err := o.SetDefaultGrayscaleTable(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{{W: []byte{0xB9}}})
}

func TestLock(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.Lock(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xFD}}, {W: []byte{0x16}},
	})
	rec.Ops = nil
	if err := o.Unlock(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xFD}}, {W: []byte{0x12}},
		{W: []byte{0xFD}}, {W: []byte{0xB1}},
	})
}

func TestSetDisplayClock(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetDisplayClock(1, 15); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xB3}}, {W: []byte{0xF1}},
	})
	if err := o.SetDisplayClock(11, 0); err == nil {
		t.Error("out of range divisor accepted")
	}
	if err := o.SetDisplayClock(0, 16); err == nil {
		t.Error("out of range frequency accepted")
	}
}

func TestScanPosition(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetStartRow(5); err != nil {
		t.Fatal(err)
	}
	if err := o.SetDisplayOffset(127); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xA1}}, {W: []byte{5}},
		{W: []byte{0xA2}}, {W: []byte{127}},
	})
	if err := o.SetStartRow(128); err == nil {
		t.Error("out of range start row accepted")
	}
	if err := o.SetDisplayOffset(-1); err == nil {
		t.Error("negative display offset accepted")
	}
}

func TestIncrementDirection(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.SetIncrementDirection(IncrementVertical); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xA0}}, {W: []byte{0x75}},
	})
	rec.Ops = nil
	if err := o.SetIncrementDirection(IncrementHorizontal); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xA0}}, {W: []byte{0x74}},
	})
	if err := o.SetIncrementDirection(2); err == nil {
		t.Error("invalid increment direction accepted")
	}
}

func TestResource(t *testing.T) {
	o, _ := newTestOLED(t, nil)
	if got, want := o.String(), "oled.OLED{128x128}"; got != want {
		t.Errorf("String() = %q, expected %q", got, want)
	}
	if got, want := o.Bounds(), image.Rect(0, 0, 128, 128); got != want {
		t.Errorf("Bounds() = %v, expected %v", got, want)
	}
	if got, want := o.Dims(), image.Pt(128, 128); got != want {
		t.Errorf("Dims() = %v, expected %v", got, want)
	}
	got := o.ColorModel().Convert(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	if got != colour.White {
		t.Errorf("ColorModel().Convert(white) = %v, expected %v", got, colour.White)
	}
}

func TestClose(t *testing.T) {
	o, rec := newTestOLED(t, nil)
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, rec.Ops, []conntest.IO{
		{W: []byte{0xAE}},
		{W: []byte{0xB5}}, {W: []byte{0x0A}},
	})
}
