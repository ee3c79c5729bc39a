// Package encoder writes decoded placeholders and previews to image files.
package encoder

import (
	"bytes"
	"image"
	"io"
)

// Encoder writes an image in one file format.
type Encoder interface {
	// Format is the canonical format name ("png", "jpeg").
	Format() string
	// Extension is the preferred file extension without the dot.
	Extension() string
	// Write encodes img to w. Lossless formats ignore quality.
	Write(w io.Writer, img image.Image, quality int) error
}

// Bytes encodes img with enc into memory. Previews are a few KB, so the
// buffer starts there.
func Bytes(enc Encoder, img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(4 << 10)
	if err := enc.Write(&buf, img, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
