//go:build ignore

// gen_fixtures creates small test images plus a blurhash.toml whose
// gallery points at them, for an offline smoke test:
//
//	go run ./e2e/gen_fixtures.go /tmp/bh
//	blurhash build /tmp/bh -o /tmp/bh_out
//	blurhash --config /tmp/bh/blurhash.toml gallery --root /tmp/bh -o /tmp/bh_gallery
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
	"github.com/rodgetech/blurhash-demo/internal/config"
)

type fixture struct {
	rel string
	img *image.NRGBA
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "tiles"), 0o755); err != nil {
		fail(err)
	}

	fixtures := []fixture{
		{"sunset.jpg", gradient(400, 225)},
		{"tiles/rings.png", rings(300, 300)},
		{"tiles/stripes.png", stripes(320, 180, 24)},
		{"tiles/flat.png", solid(200, 150, color.NRGBA{R: 96, G: 140, B: 190, A: 255})},
		{"logo.png", alphaGradient(100, 100)},
	}

	cfg := config.Default()
	cfg.Gallery.Items = nil
	for _, f := range fixtures {
		path := filepath.Join(dir, filepath.FromSlash(f.rel))
		if filepath.Ext(path) == ".jpg" {
			writeJPEG(path, f.img)
		} else {
			writePNG(path, f.img)
		}
		hash, err := blurhash.Encode(f.img, cfg.Codec.ComponentsX, cfg.Codec.ComponentsY)
		if err != nil {
			fail(err)
		}
		cfg.Gallery.Items = append(cfg.Gallery.Items, config.GalleryItem{URL: f.rel, Hash: hash})
	}
	// A broken hash exercises the grey fallback tile.
	cfg.Gallery.Items = append(cfg.Gallery.Items, config.GalleryItem{URL: "missing.png", Hash: "not-a-hash"})

	out, err := os.Create(filepath.Join(dir, config.DefaultPath))
	if err != nil {
		fail(err)
	}
	defer out.Close()
	if err := toml.NewEncoder(out).Encode(cfg); err != nil {
		fail(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d fixtures and %s in %s\n",
		len(fixtures), config.DefaultPath, dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(200 + x*55/w),
				G: uint8(60 + y*120/h),
				B: uint8(40 + (w-x)*60/w),
				A: 255,
			})
		}
	}
	return img
}

func rings(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			v := uint8(127 + 127*math.Cos(d/12))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: 180, A: 255})
		}
	}
	return img
}

func stripes(w, h, period int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 30, G: 30, B: 30, A: 255}
			if (x/period)%2 == 0 {
				c = color.NRGBA{R: 240, G: 220, B: 90, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		fail(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		fail(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		fail(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "[gen_fixtures] %v\n", err)
	os.Exit(1)
}
