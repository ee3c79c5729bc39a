package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// New creates an empty manifest with defaults.
func New(profileName string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		BasePath:    "./",
		Assets:      make(map[string]Asset),
	}
}

// ComputeStats recalculates aggregate statistics from assets.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalAssets = len(m.Assets)
	for _, a := range m.Assets {
		s.TotalInputBytes += a.Original.Size
		s.TotalHashBytes += len(a.BlurHash)
		s.TotalPreviews += len(a.Previews)
		for _, p := range a.Previews {
			s.TotalPreviewBytes += p.Size
		}
	}
	m.Stats = s
}

func marshal(m *Manifest) ([]byte, error) {
	m.ComputeStats()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteJSON serializes the manifest to a JSON file. Map keys are sorted
// by encoding/json, so output is stable.
func WriteJSON(m *Manifest, path string) error {
	data, err := marshal(m)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteGzip writes the same JSON gzip-compressed, for static hosts that
// serve precompressed files.
func WriteGzip(m *Manifest, path string) error {
	data, err := marshal(m)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error {
		zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return err
		}
		if _, err := zw.Write(data); err != nil {
			zw.Close()
			return fmt.Errorf("gzip manifest: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("gzip manifest: %w", err)
		}
		return nil
	})
}

// writeAtomic writes to a temp file next to path and renames it into
// place, so readers see either the old manifest or the new one.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err = write(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read loads a manifest from a .json or .json.gz file.
func Read(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if isGzip(path) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

func isGzip(path string) bool {
	return len(path) > 3 && path[len(path)-3:] == ".gz"
}
