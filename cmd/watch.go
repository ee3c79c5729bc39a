package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/hasher"
	"github.com/rodgetech/blurhash-demo/internal/manifest"
	"github.com/rodgetech/blurhash-demo/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch <input_dir>",
	Short: "Rebuild placeholders as images in a directory change",
	Long: `Runs a full build, then watches the input directory and re-hashes
only the images that were created, modified or removed. The manifest in
--out is rewritten after every batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&buildOutDir, "out", "o", "./blurhash_out", "output directory")
	watchCmd.Flags().StringVarP(&buildProfile, "profile", "p", "default", "placeholder profile")
	watchCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	watchCmd.Flags().IntVarP(&buildX, "components-x", "x", 0, "horizontal components (overrides profile)")
	watchCmd.Flags().IntVarP(&buildY, "components-y", "y", 0, "vertical components (overrides profile)")
	watchCmd.Flags().BoolVar(&buildGzip, "gzip", false, "also write a gzip-compressed manifest")
	rootCmd.AddCommand(watchCmd)
}

// debouncer coalesces rapid event bursts into a single callback per file.
// Every armed timer counts in pending until its callback returns or stop
// cancels it, so wait covers callbacks that were already running.
type debouncer struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	delay   time.Duration
	onFire  func(path string)
	pending sync.WaitGroup
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok && t.Stop() {
		// Cancelled before firing: its pending slot carries over.
		d.timers[path] = d.arm(path)
		return
	}
	d.pending.Add(1)
	d.timers[path] = d.arm(path)
}

// arm starts the timer for path. d.mu must be held.
func (d *debouncer) arm(path string) *time.Timer {
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.pending.Done()
		d.mu.Lock()
		if d.timers[path] == t {
			delete(d.timers, path)
		}
		d.mu.Unlock()
		d.onFire(path)
	})
	return t
}

// stop cancels timers that have not fired yet.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		if t.Stop() {
			d.pending.Done()
		}
		delete(d.timers, path)
	}
}

// wait blocks until every fired callback has returned.
func (d *debouncer) wait() {
	d.pending.Wait()
}

// liveManifest is a manifest that is patched one asset at a time.
type liveManifest struct {
	mu     sync.Mutex
	m      *manifest.Manifest
	outDir string
}

func (l *liveManifest) put(key string, a manifest.Asset) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.Assets[key] = a
	return l.flush()
}

func (l *liveManifest) remove(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m.Assets[key]; !ok {
		return nil
	}
	delete(l.m.Assets, key)
	return l.flush()
}

// unchanged reports whether src still has the content hash recorded for
// it, so saves that rewrite identical bytes are skipped.
func (l *liveManifest) unchanged(src pipeline.Source) bool {
	l.mu.Lock()
	a, ok := l.m.Assets[src.Key]
	l.mu.Unlock()
	if !ok || a.Original.Hash == "" {
		return false
	}
	f, err := os.Open(src.AbsPath)
	if err != nil {
		return false
	}
	defer f.Close()
	sum, err := hasher.ContentHashReader(f, 16)
	return err == nil && sum == a.Original.Hash
}

func (l *liveManifest) flush() error {
	l.m.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	return writeManifest(l.m, l.outDir)
}

func runWatch(cmd *cobra.Command, args []string) error {
	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(buildOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	prof := buildProfileFor(cmd)
	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Workers:   buildWorkers,
		Verbose:   verbose,
	})

	m, err := p.Run()
	if err != nil {
		// An empty directory is fine; start from an empty manifest.
		logVerbose("initial build: %v", err)
		m = manifest.New(prof.Name)
	}
	live := &liveManifest{m: m, outDir: absOutput}
	live.mu.Lock()
	err = live.flush()
	live.mu.Unlock()
	if err != nil {
		return err
	}
	fmt.Printf("Initial build: %d assets\n", len(m.Assets))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := watchRecursive(w, absInput, absOutput); err != nil {
		return fmt.Errorf("watching %s: %w", absInput, err)
	}
	fmt.Printf("Watching: %s\n", absInput)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := newDebouncer(cfg.Watch.Debounce(), func(path string) {
		if err := rehash(p, live, absInput, path); err != nil {
			fmt.Fprintf(os.Stderr, "[blurhash] %s: %v\n", path, err)
		}
	})

	eventLoop(ctx, w, db, absOutput)
	db.stop()

	fmt.Println("\nWaiting for in-flight rebuilds...")
	db.wait()
	fmt.Println("Shutdown complete.")
	return nil
}

// rehash brings the manifest entry for path in line with the disk.
func rehash(p *pipeline.Pipeline, live *liveManifest, inputDir, path string) error {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		key := strings.TrimSuffix(rel, filepath.Ext(rel))
		logVerbose("removed: %s", key)
		return live.remove(key)
	}

	src, err := pipeline.SourceFor(inputDir, path)
	if err != nil {
		return err
	}
	if live.unchanged(src) {
		logVerbose("unchanged: %s", src.Key)
		return nil
	}
	for key, asset := range p.Process([]pipeline.Source{src}) {
		fmt.Printf("  %s %s\n", key, asset.BlurHash)
		if err := live.put(key, asset); err != nil {
			return err
		}
	}
	return nil
}

func watchRecursive(w *fsnotify.Watcher, dir, skip string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path == skip || (path != dir && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func eventLoop(ctx context.Context, w *fsnotify.Watcher, db *debouncer, outDir string) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					watchRecursive(w, ev.Name, outDir)
					continue
				}
			}
			if !pipeline.IsImage(ev.Name) || (ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write)) {
				continue
			}
			db.trigger(ev.Name)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}
