// command qrshow renders a QR code on the OLED128 panel, or writes
// it as a 1-bit BMP with -out.
package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kortschak/qr"
	flag "github.com/spf13/pflag"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"oled128.dev/bmp"
	"oled128.dev/oled"
)

var out = flag.String("out", "", "write a BMP file instead of driving the panel")
var level = flag.String("level", "M", "error correction level: L, M, Q or H")
var spiDev = flag.String("spi", "", "SPI port name")
var dcPin = flag.String("dc", "GPIO25", "data/command pin")
var rstPin = flag.String("rst", "GPIO27", "reset pin")
var rotated = flag.Bool("rotated", false, "display is mounted upside down")

// quietModules is the white border around the code, in modules.
const quietModules = 4

func main() {
	log.SetFlags(0)
	log.SetPrefix("qrshow: ")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: qrshow [flags] <text>")
		os.Exit(2)
	}
	lvl, err := parseLevel(*level)
	if err != nil {
		log.Fatal(err)
	}
	code, err := qr.Encode(flag.Arg(0), lvl)
	if err != nil {
		log.Fatal(err)
	}
	img, err := render(code)
	if err != nil {
		log.Fatal(err)
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		if err := bmp.Encode(f, img, &bmp.EncodeOptions{BitsPerPixel: 1}); err != nil {
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		return
	}

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	port, err := spireg.Open(*spiDev)
	if err != nil {
		log.Fatal(err)
	}
	dc := gpioreg.ByName(*dcPin)
	rst := gpioreg.ByName(*rstPin)
	if dc == nil || rst == nil {
		log.Fatalf("no pins named %s, %s", *dcPin, *rstPin)
	}
	dev, err := oled.New(port, dc, rst, &oled.Opts{Rotated: *rotated})
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		log.Fatal(err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals
	if err := dev.Close(); err != nil {
		log.Fatal(err)
	}
}

// render draws the code centred on a white panel sized square at the
// largest whole pixel module size that leaves the quiet border.
func render(code *qr.Code) (*image.Paletted, error) {
	scale := oled.Width / (code.Size + 2*quietModules)
	if scale < 1 {
		return nil, fmt.Errorf("code too dense for the panel: %d modules", code.Size)
	}
	img := image.NewPaletted(image.Rect(0, 0, oled.Width, oled.Height), color.Palette{color.White, color.Black})
	off := (oled.Width - code.Size*scale) / 2
	for y := 0; y < code.Size; y++ {
		for x := 0; x < code.Size; x++ {
			if !code.Black(x, y) {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetColorIndex(off+x*scale+dx, off+y*scale+dy, 1)
				}
			}
		}
	}
	return img, nil
}

func parseLevel(s string) (qr.Level, error) {
	switch strings.ToUpper(s) {
	case "L":
		return qr.L, nil
	case "M":
		return qr.M, nil
	case "Q":
		return qr.Q, nil
	case "H":
		return qr.H, nil
	}
	return 0, fmt.Errorf("unknown error correction level %q", s)
}
