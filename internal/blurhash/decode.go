package blurhash

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// MaxDecodePixels bounds width × height for Decode and DecodeDraw. At
// 4 bytes per pixel it caps one decoded image at 256 MiB.
const MaxDecodePixels = 1 << 26

// Decode renders hash into a new width × height opaque image. punch
// scales the AC components to raise or lower contrast; values <= 0 mean 1.
func Decode(hash string, width, height int, punch float64) (*image.NRGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	nx, ny, factors, err := parse(hash, punch)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	synthesise(factors, nx, ny, img.Pix, img.Stride, width, height)
	return img, nil
}

// DecodeDraw renders hash over the full bounds of dst. On error dst is
// left untouched, so callers can prefill a fallback colour.
func DecodeDraw(dst draw.Image, hash string, punch float64) error {
	b := dst.Bounds()
	if err := checkDimensions(b.Dx(), b.Dy()); err != nil {
		return err
	}
	if nrgba, ok := dst.(*image.NRGBA); ok {
		nx, ny, factors, err := parse(hash, punch)
		if err != nil {
			return err
		}
		off := nrgba.PixOffset(b.Min.X, b.Min.Y)
		synthesise(factors, nx, ny, nrgba.Pix[off:], nrgba.Stride, b.Dx(), b.Dy())
		return nil
	}
	src, err := Decode(hash, b.Dx(), b.Dy(), punch)
	if err != nil {
		return err
	}
	draw.Draw(dst, b, src, image.Point{}, draw.Src)
	return nil
}

func checkDimensions(width, height int) error {
	if width < 1 || height < 1 || width > MaxDecodePixels || height > MaxDecodePixels ||
		int64(width)*int64(height) > MaxDecodePixels {
		return fmt.Errorf("%w: %dx%d (limit %d pixels)", ErrInvalidDimensions, width, height, MaxDecodePixels)
	}
	return nil
}

// Components reports the component grid announced by hash after checking
// that the hash length agrees with it.
func Components(hash string) (x, y int, err error) {
	if len(hash) < 6 {
		return 0, 0, fmt.Errorf("%w: %d characters, need at least 6", ErrBadLength, len(hash))
	}
	flag, err := DecodeBase83(hash[:1])
	if err != nil {
		return 0, 0, err
	}
	x = flag%9 + 1
	y = flag/9 + 1
	if x < 1 || x > 9 || y < 1 || y > 9 {
		return 0, 0, fmt.Errorf("%w: %d decodes to %dx%d", ErrInvalidSizeFlag, flag, x, y)
	}
	if want := 4 + 2*x*y; len(hash) != want {
		return 0, 0, fmt.Errorf("%w: %d characters, %dx%d components need %d",
			ErrBadLength, len(hash), x, y, want)
	}
	return x, y, nil
}

// Validate reports whether hash is a well-formed BlurHash.
func Validate(hash string) error {
	_, _, _, err := parse(hash, 1)
	return err
}

// AverageColor returns the DC term of hash, which is stored as sRGB.
func AverageColor(hash string) (color.NRGBA, error) {
	if _, _, err := Components(hash); err != nil {
		return color.NRGBA{}, err
	}
	v, err := DecodeBase83(hash[2:6])
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// parse turns hash into its component grid, DC first.
func parse(hash string, punch float64) (nx, ny int, factors []Factor, err error) {
	nx, ny, err = Components(hash)
	if err != nil {
		return 0, 0, nil, err
	}
	if punch <= 0 {
		punch = 1
	}

	quantMax, err := DecodeBase83(hash[1:2])
	if err != nil {
		return 0, 0, nil, err
	}
	maxValue := float64(quantMax+1) / 166 * punch

	factors = make([]Factor, nx*ny)
	dc, err := DecodeBase83(hash[2:6])
	if err != nil {
		return 0, 0, nil, err
	}
	factors[0] = decodeDC(dc)

	for k := 1; k < len(factors); k++ {
		v, err := DecodeBase83(hash[4+k*2 : 6+k*2])
		if err != nil {
			return 0, 0, nil, err
		}
		factors[k] = decodeAC(v, maxValue)
	}
	return nx, ny, factors, nil
}

func decodeDC(v int) Factor {
	return Factor{
		R: SRGBToLinear(uint8(v >> 16)),
		G: SRGBToLinear(uint8(v >> 8)),
		B: SRGBToLinear(uint8(v)),
	}
}

func decodeAC(v int, maxValue float64) Factor {
	q := func(n int) float64 {
		return signPow(float64(n-9)/9, 2) * maxValue
	}
	return Factor{
		R: q(v / (19 * 19)),
		G: q((v / 19) % 19),
		B: q(v % 19),
	}
}
