// Package pipeline computes placeholders for a directory of images.
package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/rodgetech/blurhash-demo/internal/encoder"
	"github.com/rodgetech/blurhash-demo/internal/manifest"
	"github.com/rodgetech/blurhash-demo/internal/profile"
)

// Config holds all parameters for a build pipeline run.
type Config struct {
	InputDir  string
	OutputDir string
	Profile   profile.Profile
	Workers   int
	Verbose   bool
}

// Pipeline orchestrates placeholder generation.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

// Run executes the full build and returns the manifest. Per-image
// failures are reported and skipped; the run fails only if every image does.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.logf("found %d images", len(sources))

	results := p.process(sources)

	m := manifest.New(p.cfg.Profile.Name)
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Assets[r.key] = r.asset
	}

	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[blurhash] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[blurhash] warning: %d of %d images had errors\n",
			len(errs), len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
		MaxDim:  p.cfg.Profile.MaxDim,
	}
	m.ComputeStats()
	return m, nil
}

// Process hashes only the given sources, for incremental rebuilds.
func (p *Pipeline) Process(sources []Source) map[string]manifest.Asset {
	out := make(map[string]manifest.Asset, len(sources))
	for _, r := range p.process(sources) {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "[blurhash] error: %v\n", r.err)
			continue
		}
		out[r.key] = r.asset
	}
	return out
}

func (p *Pipeline) process(sources []Source) []processResult {
	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			p.logf("processing: %s", s.Key)
			results[idx] = processImage(s, p.cfg, p.registry)
			if results[idx].err == nil {
				p.logf("done: %s %s", s.Key, results[idx].asset.BlurHash)
			}
		}(i, src)
	}
	wg.Wait()
	return results
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[blurhash] "+format+"\n", args...)
	}
}
