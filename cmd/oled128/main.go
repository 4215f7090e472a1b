// command oled128 drives a Freetronics OLED128 display from the
// command line: it can clear the panel, flood it with a colour, show
// a BMP file and print text.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"oled128.dev/bmp"
	"oled128.dev/colour"
	"oled128.dev/oled"
)

var (
	spiDev   = flag.String("spi", "", "SPI port name, empty for the first available")
	dcPin    = flag.String("dc", "GPIO25", "data/command pin")
	rstPin   = flag.String("rst", "GPIO27", "reset pin")
	rotated  = flag.Bool("rotated", false, "display is mounted upside down")
	bgr      = flag.Bool("bgr", false, "panel is wired blue first")
	clear    = flag.Bool("clear", false, "clear the panel")
	fill     = flag.String("fill", "", "fill the panel with a colour, by name or r,g,b")
	bmpFile  = flag.String("bmp", "", "BMP file to display")
	at       = flag.String("at", "0,0", "top-left corner for -bmp")
	sub      = flag.String("sub", "", "sub-rectangle x0,y0,x1,y1 of -bmp to display")
	text     = flag.String("text", "", "text to print on the panel")
	contrast = flag.Int("contrast", -1, "master contrast, 0-15")
	info     = flag.Bool("info", false, "print the -bmp header and exit")
)

var colourNames = map[string]colour.Colour{
	"black":   colour.Black,
	"white":   colour.White,
	"red":     colour.Red,
	"green":   colour.Green,
	"blue":    colour.Blue,
	"yellow":  colour.Yellow,
	"cyan":    colour.Cyan,
	"magenta": colour.Magenta,
	"orange":  colour.Orange,
	"purple":  colour.Purple,
	"gray":    colour.Gray,
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oled128: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *info {
		if *bmpFile == "" {
			return fmt.Errorf("-info needs -bmp")
		}
		return printInfo(*bmpFile)
	}
	if !*clear && *fill == "" && *bmpFile == "" && *text == "" && *contrast < 0 {
		flag.Usage()
		os.Exit(2)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	port, err := spireg.Open(*spiDev)
	if err != nil {
		return err
	}
	dc := gpioreg.ByName(*dcPin)
	if dc == nil {
		port.Close()
		return fmt.Errorf("no pin named %q", *dcPin)
	}
	rst := gpioreg.ByName(*rstPin)
	if rst == nil {
		port.Close()
		return fmt.Errorf("no pin named %q", *rstPin)
	}
	dev, err := oled.New(port, dc, rst, &oled.Opts{Rotated: *rotated, BGR: *bgr})
	if err != nil {
		port.Close()
		return err
	}

	if *contrast >= 0 {
		if err := dev.SetContrast(byte(*contrast)); err != nil {
			return err
		}
	}
	if *clear {
		if err := dev.ClearScreen(); err != nil {
			return err
		}
	}
	if *fill != "" {
		c, err := parseColour(*fill)
		if err != nil {
			return err
		}
		if err := dev.FillScreen(c); err != nil {
			return err
		}
	}
	if *bmpFile != "" {
		if err := showBMP(dev, *bmpFile); err != nil {
			return err
		}
	}
	if *text != "" {
		box := oled.NewTextBox(dev, dev.Bounds())
		if _, err := io.WriteString(box, *text); err != nil {
			return err
		}
	}
	return port.Close()
}

func showBMP(dev *oled.OLED, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	p, err := parsePoint(*at)
	if err != nil {
		return err
	}
	src := bmp.NewFileSource(f)
	if *sub != "" {
		sr, err := parseRect(*sub)
		if err != nil {
			return err
		}
		return dev.DisplayBMPRect(src, sr, p)
	}
	return dev.DisplayBMP(src, p)
}

func printInfo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	h, err := bmp.ReadHeader(bmp.NewFileSource(f))
	if err != nil {
		return err
	}
	fmt.Printf("%s: %dx%d, %d bits per pixel", path, h.Width, h.Height, h.BitsPerPixel)
	if h.Colours > 0 {
		fmt.Printf(", %d palette entries", h.Colours)
	}
	fmt.Printf(", %d bytes per row\n", h.Stride())
	return nil
}

func parseColour(s string) (colour.Colour, error) {
	if c, ok := colourNames[strings.ToLower(s)]; ok {
		return c, nil
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return colour.Colour{}, fmt.Errorf("invalid colour %q", s)
	}
	return colour.New(r, g, b), nil
}

func parsePoint(s string) (image.Point, error) {
	var p image.Point
	if _, err := fmt.Sscanf(s, "%d,%d", &p.X, &p.Y); err != nil {
		return image.Point{}, fmt.Errorf("invalid point %q", s)
	}
	return p, nil
}

func parseRect(s string) (image.Rectangle, error) {
	var r image.Rectangle
	if _, err := fmt.Sscanf(s, "%d,%d,%d,%d", &r.Min.X, &r.Min.Y, &r.Max.X, &r.Max.Y); err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid rectangle %q", s)
	}
	return r, nil
}
