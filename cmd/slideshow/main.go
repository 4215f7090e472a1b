// command slideshow cycles through the BMP files of a directory on an
// OLED128 panel, centring each image.
package main

import (
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"oled128.dev/bmp"
	"oled128.dev/oled"
)

var dir = flag.String("dir", ".", "directory of BMP files")
var interval = flag.String("interval", "5s", "time between slides")
var shuffle = flag.Bool("shuffle", false, "show slides in random order")
var spiDev = flag.String("spi", "", "SPI port name")
var dcPin = flag.String("dc", "GPIO25", "data/command pin")
var rstPin = flag.String("rst", "GPIO27", "reset pin")
var rotated = flag.Bool("rotated", false, "display is mounted upside down")
var bgr = flag.Bool("bgr", false, "panel is wired blue first")

func main() {
	flag.Parse()

	wait, err := time.ParseDuration(*interval)
	if err != nil {
		log.Fatal(err)
	}

	files, err := listBMPs(afero.NewOsFs(), *dir)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatalf("no BMP files in %s", *dir)
	}
	if *shuffle {
		files = lo.Shuffle(files)
	}

	logger, _ := zap.NewDevelopment()

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
	dev, err := oled.New(port, dc, rst, &oled.Opts{Rotated: *rotated, BGR: *bgr})
	if err != nil {
		log.Fatal(err)
	}

	shutdown := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		timer := time.NewTimer(time.Nanosecond)

		defer func() {
			timer.Stop()
			if err := dev.Close(); err != nil {
				logger.With(zap.Error(err)).Info("close failed")
			}
			exited <- struct{}{}
		}()

		next := 0
		for {
			select {
			case <-shutdown:
				return
			case <-timer.C:
				file := files[next]
				next = (next + 1) % len(files)
				if err := show(dev, file); err != nil {
					logger.With(zap.Error(err), zap.String("file", file)).Info("slide failed")
				} else {
					logger.Info("slide", zap.String("file", file))
				}
				timer.Reset(wait)
			}
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	<-signals
	logger.Info("shutting down")
	shutdown <- struct{}{}
	<-exited
	logger.Info("exited")
}

func show(dev *oled.OLED, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	src := bmp.NewFileSource(f)
	h, err := bmp.ReadHeader(src)
	if err != nil {
		return err
	}
	if err := dev.ClearScreen(); err != nil {
		return err
	}
	p := image.Pt((oled.Width-h.Width)/2, (oled.Height-h.Height)/2)
	return dev.DisplayBMP(src, p)
}

// listBMPs returns the BMP files directly under dir, sorted by name.
func listBMPs(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".bmp") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
