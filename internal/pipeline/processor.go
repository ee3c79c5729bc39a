package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
	"github.com/rodgetech/blurhash-demo/internal/encoder"
	"github.com/rodgetech/blurhash-demo/internal/hasher"
	"github.com/rodgetech/blurhash-demo/internal/manifest"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// processImage handles a single source image: decode, hash, previews.
func processImage(src Source, cfg Config, registry *encoder.Registry) processResult {
	result := processResult{key: src.Key}

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		result.err = fmt.Errorf("decode %s: %w", src.RelPath, err)
		return result
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	prof := cfg.Profile

	cx, cy := prof.Grid(origW, origH)
	hash, err := blurhash.EncodeThumbnail(img, cx, cy, prof.MaxDim)
	if err != nil {
		result.err = fmt.Errorf("blurhash %s: %w", src.RelPath, err)
		return result
	}
	avg, err := blurhash.AverageColor(hash)
	if err != nil {
		result.err = fmt.Errorf("blurhash %s: %w", src.RelPath, err)
		return result
	}

	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:    origW,
			Height:   origH,
			Format:   src.Format,
			Size:     src.Size,
			HasAlpha: blurhash.HasAlpha(img),
			Hash:     hasher.ContentHash(data, 16),
		},
		BlurHash:    hash,
		Components:  [2]int{cx, cy},
		AspectRatio: float64(origW) / float64(origH),
		AvgColor:    &[3]uint8{avg.R, avg.G, avg.B},
	}

	sizes := prof.PreviewSizes(origW, origH)
	if len(sizes) == 0 || cfg.OutputDir == "" {
		return result
	}
	enc := registry.Get(prof.PreviewFormat)
	if enc == nil {
		result.err = fmt.Errorf("preview format %q: no encoder", prof.PreviewFormat)
		return result
	}

	keyDir := filepath.Dir(src.Key)
	if keyDir != "." {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, keyDir), 0o755); err != nil {
			result.err = fmt.Errorf("mkdir %s: %w", keyDir, err)
			return result
		}
	}

	for _, sz := range sizes {
		w, h := sz[0], sz[1]
		preview, err := blurhash.Decode(hash, w, h, prof.Punch)
		if err != nil {
			result.err = fmt.Errorf("preview %s@%dx%d: %w", src.Key, w, h, err)
			return result
		}
		out, err := encoder.Bytes(enc, preview, prof.Quality)
		if err != nil {
			result.err = fmt.Errorf("encode preview %s@%dx%d: %w", src.Key, w, h, err)
			return result
		}

		// Content hash for filename: key.w.h.hash.ext
		contentHash := hasher.ContentHash(out, 16)
		fileName := fmt.Sprintf("%s.%d.%d.%s.%s",
			filepath.Base(src.Key), w, h, contentHash[:8], enc.Extension())
		relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))

		if err := os.WriteFile(filepath.Join(cfg.OutputDir, relPath), out, 0o644); err != nil {
			result.err = fmt.Errorf("write %s: %w", relPath, err)
			return result
		}

		result.asset.Previews = append(result.asset.Previews, manifest.Preview{
			Format: enc.Format(),
			Width:  w,
			Height: h,
			Size:   int64(len(out)),
			Hash:   contentHash,
			Path:   relPath,
		})
	}

	return result
}
