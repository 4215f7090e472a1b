// command bmpconvert turns image files into BMPs the OLED128 can
// stream: uncompressed, bottom-up, at any of the panel's supported
// bit depths. Inputs are resized to the panel by default and dithered
// when the depth needs a palette.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	flag "github.com/spf13/pflag"

	"oled128.dev/bmp"
	"oled128.dev/oled"
)

var out = flag.String("out", "", "output file, default input with a .bmp extension")
var depth = flag.Int("depth", 24, "bits per pixel: 1, 4, 8, 16 or 24")
var mode = flag.String("resize", "fit", "fit, fill or none")
var width = flag.Int("width", oled.Width, "target width")
var height = flag.Int("height", oled.Height, "target height")

func main() {
	log.SetFlags(0)
	log.SetPrefix("bmpconvert: ")
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *out != "" && flag.NArg() > 1 {
		log.Fatal("-out needs a single input file")
	}
	for _, path := range flag.Args() {
		dst := *out
		if dst == "" {
			dst = strings.TrimSuffix(path, filepath.Ext(path)) + ".bmp"
		}
		if err := convert(path, dst); err != nil {
			log.Fatal(err)
		}
	}
}

func convert(src, dst string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return err
	}
	switch *mode {
	case "fit":
		img = imaging.Fit(img, *width, *height, imaging.Lanczos)
	case "fill":
		img = imaging.Fill(img, *width, *height, imaging.Center, imaging.Lanczos)
	case "none":
	default:
		return fmt.Errorf("unknown resize mode %q", *mode)
	}
	img = quantise(img, *depth)
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img, &bmp.EncodeOptions{BitsPerPixel: *depth}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// quantise dithers img onto the palette the depth calls for. The
// direct colour depths pass through untouched.
func quantise(img image.Image, depth int) image.Image {
	var pal color.Palette
	switch depth {
	case 1:
		pal = color.Palette{color.Black, color.White}
	case 4:
		pal = ega16
	case 8:
		pal = palette.Plan9
	default:
		return img
	}
	dithered := image.NewPaletted(img.Bounds(), pal)
	draw.FloydSteinberg.Draw(dithered, img.Bounds(), img, img.Bounds().Min)
	return dithered
}

// ega16 is the classic 16 colour text mode palette.
var ega16 = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0x00, 0x00, 0xAA, 0xFF},
	color.RGBA{0x00, 0xAA, 0x00, 0xFF},
	color.RGBA{0x00, 0xAA, 0xAA, 0xFF},
	color.RGBA{0xAA, 0x00, 0x00, 0xFF},
	color.RGBA{0xAA, 0x00, 0xAA, 0xFF},
	color.RGBA{0xAA, 0x55, 0x00, 0xFF},
	color.RGBA{0xAA, 0xAA, 0xAA, 0xFF},
	color.RGBA{0x55, 0x55, 0x55, 0xFF},
	color.RGBA{0x55, 0x55, 0xFF, 0xFF},
	color.RGBA{0x55, 0xFF, 0x55, 0xFF},
	color.RGBA{0x55, 0xFF, 0xFF, 0xFF},
	color.RGBA{0xFF, 0x55, 0x55, 0xFF},
	color.RGBA{0xFF, 0x55, 0xFF, 0xFF},
	color.RGBA{0xFF, 0xFF, 0x55, 0xFF},
	color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
}
