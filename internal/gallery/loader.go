package gallery

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rodgetech/blurhash-demo/internal/hashsvc"
)

// Loader produces the full-resolution image for a tile source.
type Loader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// SourceLoader loads http(s) sources over the network and everything
// else from disk, relative to Root.
type SourceLoader struct {
	Fetcher *hashsvc.Fetcher
	Root    string
}

func (l *SourceLoader) Load(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		img, _, err := l.Fetcher.Fetch(ctx, source)
		return img, err
	}
	return loadFile(filepath.Join(l.Root, filepath.FromSlash(source)))
}

func loadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
