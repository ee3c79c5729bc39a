package blurhash

import (
	"image"
	"image/color"
	"sync"
)

// linearBuf is scratch space for one encode: 3 float64 per source pixel.
// Pooled so concurrent encodes of similar sizes allocate once per worker.
type linearBuf struct {
	rgb []float64
}

var linearPool = sync.Pool{New: func() any { return new(linearBuf) }}

func (b *linearBuf) reset(n int) []float64 {
	if cap(b.rgb) < n {
		b.rgb = make([]float64, n)
	}
	b.rgb = b.rgb[:n]
	return b.rgb
}

// extractLinear writes the linear-light colour of every pixel in bounds
// to rgb, row-major. Alpha is ignored: pixels contribute their
// non-premultiplied colour.
func extractLinear(img image.Image, bounds image.Rectangle, rgb []float64) {
	switch src := img.(type) {
	case *image.NRGBA:
		linearNRGBA(src, bounds, rgb)
	case *image.RGBA:
		linearRGBA(src, bounds, rgb)
	case *image.YCbCr:
		linearYCbCr(src, bounds, rgb)
	case *image.Gray:
		linearGray(src, bounds, rgb)
	default:
		linearGeneric(img, bounds, rgb)
	}
}

func linearNRGBA(src *image.NRGBA, bounds image.Rectangle, rgb []float64) {
	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := src.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgb[di] = srgbToLinear[src.Pix[off]]
			rgb[di+1] = srgbToLinear[src.Pix[off+1]]
			rgb[di+2] = srgbToLinear[src.Pix[off+2]]
			di += 3
			off += 4
		}
	}
}

// linearRGBA un-premultiplies translucent pixels before linearising.
func linearRGBA(src *image.RGBA, bounds image.Rectangle, rgb []float64) {
	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := src.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.Pix[off], src.Pix[off+1], src.Pix[off+2], src.Pix[off+3]
			if a != 0 && a != 255 {
				r = unpremul(r, a)
				g = unpremul(g, a)
				b = unpremul(b, a)
			}
			rgb[di] = srgbToLinear[r]
			rgb[di+1] = srgbToLinear[g]
			rgb[di+2] = srgbToLinear[b]
			di += 3
			off += 4
		}
	}
}

func linearYCbCr(src *image.YCbCr, bounds image.Rectangle, rgb []float64) {
	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			yi := src.YOffset(x, y)
			ci := src.COffset(x, y)
			r, g, b := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
			rgb[di] = srgbToLinear[r]
			rgb[di+1] = srgbToLinear[g]
			rgb[di+2] = srgbToLinear[b]
			di += 3
		}
	}
}

func linearGray(src *image.Gray, bounds image.Rectangle, rgb []float64) {
	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := src.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := srgbToLinear[src.Pix[off]]
			rgb[di], rgb[di+1], rgb[di+2] = v, v, v
			di += 3
			off++
		}
	}
}

// linearGeneric goes through image.At, one interface call per pixel.
func linearGeneric(img image.Image, bounds image.Rectangle, rgb []float64) {
	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgb[di] = srgbToLinear[c.R]
			rgb[di+1] = srgbToLinear[c.G]
			rgb[di+2] = srgbToLinear[c.B]
			di += 3
		}
	}
}

func unpremul(c, a uint8) uint8 {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// HasAlpha reports whether any pixel is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.RGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.YCbCr, *image.Gray:
		return false
	default:
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
					return true
				}
			}
		}
		return false
	}
}
