package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/gallery"
	"github.com/rodgetech/blurhash-demo/internal/loadstate"
)

var (
	galleryOut  string
	galleryFPS  int
	galleryRoot string
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Render the configured gallery: placeholders, crossfade, loaded",
	Long: `Renders every [[gallery.items]] entry as a contact sheet. The first
sheet shows only BlurHash placeholders; the real images are then loaded
concurrently and the crossfade is written frame by frame.

Outputs in --out:
  placeholders.png   every tile on its placeholder
  fade-NN.png        crossfade frames, --fps over the 0.5s fade
  loaded.png         final state`,
	Args: cobra.NoArgs,
	RunE: runGallery,
}

func init() {
	galleryCmd.Flags().StringVarP(&galleryOut, "out", "o", "./gallery_out", "output directory")
	galleryCmd.Flags().IntVar(&galleryFPS, "fps", 10, "crossfade frame rate (0 = no fade frames)")
	galleryCmd.Flags().StringVar(&galleryRoot, "root", ".", "base directory for non-URL sources")
	rootCmd.AddCommand(galleryCmd)
}

func runGallery(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(galleryOut, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	items := make([]gallery.Item, 0, len(cfg.Gallery.Items))
	for _, it := range cfg.Gallery.Items {
		items = append(items, gallery.Item{Source: it.URL, Hash: it.Hash})
	}

	loader := &gallery.SourceLoader{
		Fetcher: newFetcher(),
		Root:    galleryRoot,
	}
	coord := loadstate.New()
	g, err := gallery.New(items, loader, coord, gallery.Options{
		Width:      cfg.Gallery.Width,
		Height:     cfg.Gallery.Height,
		Resolution: cfg.Gallery.Resolution,
		Punch:      cfg.Codec.Punch,
		Workers:    cfg.Gallery.Workers,
		Logf:       logVerbose,
	})
	if err != nil {
		return err
	}

	if err := saveSheet(g.Sheet(0), "placeholders.png"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Report tiles in the order their images arrive. The waiters are
	// released when Load returns, whether or not their tile loaded.
	waitCtx, release := context.WithCancel(ctx)
	start := time.Now()
	var wg sync.WaitGroup
	for i, t := range g.Tiles() {
		wg.Add(1)
		go func(i int, t *gallery.Tile) {
			defer wg.Done()
			if g.Await(waitCtx, i) == nil {
				logVerbose("tile %d loaded after %s: %s", i, time.Since(start).Round(time.Millisecond), t.Item.Source)
			}
		}(i, t)
	}
	loaded := g.Load(ctx)
	release()
	wg.Wait()

	for i, n := 1, fadeFrames(); i < n; i++ {
		if err := saveSheet(g.Sheet(float64(i)/float64(n)), fmt.Sprintf("fade-%02d.png", i)); err != nil {
			return err
		}
	}
	if err := saveSheet(g.Sheet(1), "loaded.png"); err != nil {
		return err
	}

	printGalleryReport(g, coord, loaded)
	return nil
}

// fadeFrames is the number of frame intervals in one crossfade at
// --fps; frames 1..n-1 are the intermediate ones.
func fadeFrames() int {
	if galleryFPS <= 0 {
		return 0
	}
	n := int(loadstate.CrossfadeDuration.Seconds() * float64(galleryFPS))
	if n < 1 {
		n = 1
	}
	return n
}

func saveSheet(img image.Image, name string) error {
	path := filepath.Join(galleryOut, name)
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	logVerbose("wrote %s", path)
	return nil
}

func printGalleryReport(g *gallery.Gallery, coord *loadstate.Coordinator, loaded int) {
	fmt.Println()
	fmt.Printf("  Tiles:   %d (%d distinct keys)\n", len(g.Tiles()), coord.Len())
	fmt.Printf("  Loaded:  %d\n", loaded)
	fmt.Printf("  Output:  %s\n", galleryOut)
	fmt.Println()

	snap := coord.Snapshot()
	tiles := append([]*gallery.Tile(nil), g.Tiles()...)
	sort.SliceStable(tiles, func(i, j int) bool { return tiles[i].Key < tiles[j].Key })
	for _, t := range tiles {
		note := ""
		switch {
		case t.HashErr != nil:
			note = "  (hash: " + t.HashErr.Error() + ")"
		case t.LoadErr != nil:
			note = "  (load: " + t.LoadErr.Error() + ")"
		}
		fmt.Printf("    %-11s %s%s\n", snap[t.Key], truncKey(t.Item.Source, 60), note)
	}
	fmt.Println()
}
