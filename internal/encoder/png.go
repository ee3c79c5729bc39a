package encoder

import (
	"image"
	"image/png"
	"io"
	"sync"
)

// pngBuffers reuses deflate state across the many small previews a build
// writes.
type pngBuffers struct {
	pool sync.Pool
}

func (p *pngBuffers) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *pngBuffers) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}

type pngEncoder struct {
	enc *png.Encoder
}

func newPNGEncoder() *pngEncoder {
	return &pngEncoder{enc: &png.Encoder{
		CompressionLevel: png.BestCompression,
		BufferPool:       &pngBuffers{},
	}}
}

func (*pngEncoder) Format() string    { return "png" }
func (*pngEncoder) Extension() string { return "png" }

func (p *pngEncoder) Write(w io.Writer, img image.Image, _ int) error {
	return p.enc.Encode(w, img)
}
