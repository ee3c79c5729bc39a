package hashsvc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Fetcher downloads and decodes remote images.
type Fetcher struct {
	HTTP      *http.Client
	MaxBytes  int64 // body size cap, 0 means unlimited
	MaxPixels int64 // width × height cap checked before decoding, 0 means unlimited
}

// Fetch GETs url and decodes the body with any registered image format.
// Non-2xx responses are reported as ErrNetwork. The header is read first,
// so images declaring more than MaxPixels are rejected as ErrUndecodable
// before any pixel memory is allocated.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: GET %s: %s", ErrNetwork, url, resp.Status)
	}

	var body io.Reader = resp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes)
	}

	var head bytes.Buffer
	conf, _, err := image.DecodeConfig(io.TeeReader(body, &head))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	if f.MaxPixels > 0 && int64(conf.Width)*int64(conf.Height) > f.MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels",
			ErrUndecodable, conf.Width, conf.Height, f.MaxPixels)
	}

	img, format, err := image.Decode(io.MultiReader(&head, body))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return img, format, nil
}
