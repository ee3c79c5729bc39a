package encoder

import (
	"image"
	"image/jpeg"
	"io"
)

// DefaultJPEGQuality is used for out-of-range qualities. Placeholders
// have no hard edges, so block artefacts stay invisible this low.
const DefaultJPEGQuality = 80

type jpegEncoder struct{}

func (jpegEncoder) Format() string    { return "jpeg" }
func (jpegEncoder) Extension() string { return "jpg" }

func (jpegEncoder) Write(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}
