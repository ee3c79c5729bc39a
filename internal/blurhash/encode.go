package blurhash

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Encode computes the BlurHash of img with an xComponents × yComponents
// grid, each in [1, 9]. Every source pixel contributes, so callers with
// large images should prefer EncodeThumbnail.
func Encode(img image.Image, xComponents, yComponents int) (string, error) {
	if xComponents < 1 || xComponents > 9 || yComponents < 1 || yComponents > 9 {
		return "", fmt.Errorf("%w: %dx%d", ErrComponentCount, xComponents, yComponents)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 1 || h < 1 {
		return "", fmt.Errorf("%w: %dx%d image", ErrInvalidDimensions, w, h)
	}

	lb := linearPool.Get().(*linearBuf)
	rgb := lb.reset(w * h * 3)
	extractLinear(img, bounds, rgb)
	factors := analyse(rgb, w, h, xComponents, yComponents)
	linearPool.Put(lb)

	return serialise(factors, xComponents, yComponents)
}

// EncodeThumbnail downsamples img to fit within maxDim × maxDim before
// encoding. The low frequencies a BlurHash keeps survive a box filter
// intact, and the cost drops from O(w·h) to O(maxDim²) per component.
func EncodeThumbnail(img image.Image, xComponents, yComponents, maxDim int) (string, error) {
	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Box)
	}
	return Encode(img, xComponents, yComponents)
}

// SuggestComponents picks a grid with 4 components along the longer side
// and a proportional count along the shorter one.
func SuggestComponents(width, height int) (x, y int) {
	if width < 1 || height < 1 {
		return 4, 3
	}
	short := func(s, l int) int {
		n := int(math.Round(4 * float64(s) / float64(l)))
		if n < 1 {
			n = 1
		}
		return n
	}
	if width >= height {
		return 4, short(height, width)
	}
	return short(width, height), 4
}

func serialise(factors []Factor, nx, ny int) (string, error) {
	dst := make([]byte, 0, 4+2*nx*ny)
	var err error
	put := func(v, digits int) {
		if err == nil {
			dst, err = AppendBase83(dst, v, digits)
		}
	}

	put((nx-1)+(ny-1)*9, 1)

	ac := factors[1:]
	maxValue := 1.0
	if len(ac) > 0 {
		var actualMax float64
		for _, f := range ac {
			actualMax = math.Max(actualMax, math.Abs(f.R))
			actualMax = math.Max(actualMax, math.Abs(f.G))
			actualMax = math.Max(actualMax, math.Abs(f.B))
		}
		quantMax := int(clamp(math.Floor(actualMax*166-0.5), 0, 82))
		maxValue = float64(quantMax+1) / 166
		put(quantMax, 1)
	} else {
		put(0, 1)
	}

	put(encodeDC(factors[0]), 4)
	for _, f := range ac {
		put(encodeAC(f, maxValue), 2)
	}
	if err != nil {
		return "", err
	}
	return string(dst), nil
}

func encodeDC(f Factor) int {
	r := int(LinearToSRGB(f.R))
	g := int(LinearToSRGB(f.G))
	b := int(LinearToSRGB(f.B))
	return r<<16 | g<<8 | b
}

func encodeAC(f Factor, maxValue float64) int {
	q := func(v float64) int {
		return int(clamp(math.Floor(signPow(v/maxValue, 0.5)*9+9.5), 0, 18))
	}
	return q(f.R)*19*19 + q(f.G)*19 + q(f.B)
}
