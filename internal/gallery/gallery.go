// Package gallery renders image tiles the progressive way: every tile
// shows its decoded BlurHash until the real image has loaded, then the
// load-state coordinator flips it over to the image.
package gallery

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
	"github.com/rodgetech/blurhash-demo/internal/hasher"
	"github.com/rodgetech/blurhash-demo/internal/loadstate"
)

// Columns and Gap lay tiles out as a contact sheet.
const (
	Columns = 3
	Gap     = 20
)

var (
	fallbackColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	pageColor     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Item is one entry of the gallery: where the image lives and its hash.
type Item struct {
	Source string
	Hash   string
}

// Options control tile geometry and decoding.
type Options struct {
	Width, Height int
	Resolution    int     // decode size before stretching to the tile, 0 = tile size
	Punch         float64 // AC contrast, <= 0 means 1
	Workers       int     // parallel loads, 0 = NumCPU
	Logf          func(format string, args ...any)
}

// Tile is the render state of one item. The coordinator owns whether it is
// loaded; the tile only holds pixels.
type Tile struct {
	Item Item
	Key  string

	// HashErr is set when the hash failed to decode and the placeholder
	// fell back to a solid colour.
	HashErr error
	// LoadErr is set when the real image could not be loaded.
	LoadErr error

	placeholder *image.NRGBA

	mu    sync.Mutex
	image *image.NRGBA
}

// Gallery is a set of tiles driven by one coordinator.
type Gallery struct {
	opts   Options
	loader Loader
	coord  *loadstate.Coordinator
	tiles  []*Tile
}

// New decodes every placeholder and registers every tile with coord.
// Decoding failures do not abort: the tile keeps a flat placeholder and
// records the error.
func New(items []Item, loader Loader, coord *loadstate.Coordinator, opts Options) (*Gallery, error) {
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("tile size %dx%d: %w", opts.Width, opts.Height, blurhash.ErrInvalidDimensions)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}

	g := &Gallery{opts: opts, loader: loader, coord: coord}
	for _, it := range items {
		t := &Tile{Item: it, Key: hasher.ResourceKey(it.Source)}
		t.placeholder, t.HashErr = g.decodePlaceholder(it.Hash)
		if t.HashErr != nil {
			opts.Logf("placeholder %s: %v", it.Source, t.HashErr)
		}
		coord.Track(t.Key)
		g.tiles = append(g.tiles, t)
	}
	return g, nil
}

// decodePlaceholder always returns a tile-sized image. When the hash is
// bad it is the flat fallback colour, which DecodeDraw leaves in place.
func (g *Gallery) decodePlaceholder(hash string) (*image.NRGBA, error) {
	w, h := g.opts.Width, g.opts.Height
	if r := g.opts.Resolution; r > 0 {
		small := imaging.New(r, r, fallbackColor)
		err := blurhash.DecodeDraw(small, hash, g.opts.Punch)
		return imaging.Resize(small, w, h, imaging.Linear), err
	}
	dst := imaging.New(w, h, fallbackColor)
	return dst, blurhash.DecodeDraw(dst, hash, g.opts.Punch)
}

// Tiles returns the tiles in item order.
func (g *Gallery) Tiles() []*Tile {
	return g.tiles
}

// Load fetches every real image on a bounded worker pool. Each success is
// reported to the coordinator; failures leave the tile on its placeholder.
// It returns the number of tiles that loaded.
func (g *Gallery) Load(ctx context.Context) int {
	var wg sync.WaitGroup
	var loaded int
	var mu sync.Mutex
	sem := make(chan struct{}, g.opts.Workers)

	for _, t := range g.tiles {
		if t.hasImage() {
			continue
		}
		wg.Add(1)
		go func(t *Tile) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := g.loadTile(ctx, t); err != nil {
				t.LoadErr = err
				g.opts.Logf("load %s: %v", t.Item.Source, err)
				return
			}
			mu.Lock()
			loaded++
			mu.Unlock()
			g.opts.Logf("loaded %s", t.Item.Source)
		}(t)
	}
	wg.Wait()
	return loaded
}

func (g *Gallery) loadTile(ctx context.Context, t *Tile) error {
	img, err := g.loader.Load(ctx, t.Item.Source)
	if err != nil {
		return err
	}
	fitted := imaging.Fill(img, g.opts.Width, g.opts.Height, imaging.Center, imaging.Lanczos)

	t.mu.Lock()
	t.image = fitted
	t.mu.Unlock()
	// Pixels first, then the state flip, so a Loaded tile always has an image.
	g.coord.OnImageLoad(t.Key)
	return nil
}

// Await blocks until tile i is Loaded or ctx is done.
func (g *Gallery) Await(ctx context.Context, i int) error {
	select {
	case <-g.coord.Subscribe(g.tiles[i].Key):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tile) hasImage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.image != nil
}

// Frame composites tile i as it looks progress of the way through its
// crossfade. Placeholder tiles ignore progress, and so does a tile whose
// key was marked Loaded by another tile sharing it while its own image
// never arrived.
func (g *Gallery) Frame(i int, progress float64) *image.NRGBA {
	t := g.tiles[i]
	t.mu.Lock()
	img := t.image
	t.mu.Unlock()
	v := loadstate.Crossfade(g.coord.State(t.Key), progress)
	if img == nil {
		v = loadstate.VisibilityFor(loadstate.Placeholder)
	}
	return Compose(t.placeholder, img, v, g.opts.Width, g.opts.Height)
}

// Sheet lays out every tile's frame on a page, Columns per row.
func (g *Gallery) Sheet(progress float64) *image.NRGBA {
	n := len(g.tiles)
	if n == 0 {
		return imaging.New(1, 1, pageColor)
	}
	rows := (n + Columns - 1) / Columns
	cols := Columns
	if n < cols {
		cols = n
	}
	w := cols*g.opts.Width + (cols-1)*Gap
	h := rows*g.opts.Height + (rows-1)*Gap
	sheet := imaging.New(w, h, pageColor)
	for i := range g.tiles {
		x := (i % Columns) * (g.opts.Width + Gap)
		y := (i / Columns) * (g.opts.Height + Gap)
		sheet = imaging.Paste(sheet, g.Frame(i, progress), image.Pt(x, y))
	}
	return sheet
}

// Compose stacks the placeholder and the image on a white page with the
// opacities in v. A nil image is skipped.
func Compose(placeholder, img image.Image, v loadstate.Visibility, w, h int) *image.NRGBA {
	dst := imaging.New(w, h, pageColor)
	if placeholder != nil && v.Placeholder > 0 {
		dst = imaging.Overlay(dst, placeholder, image.Pt(0, 0), v.Placeholder)
	}
	if img != nil && v.Image > 0 {
		dst = imaging.Overlay(dst, img, image.Pt(0, 0), v.Image)
	}
	return dst
}
