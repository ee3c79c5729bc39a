package encoder

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Registry maps format names and extensions to encoders.
type Registry struct {
	byName map[string]Encoder
}

// NewRegistry returns a registry with the PNG and JPEG encoders. It is
// safe for concurrent use once built.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Encoder)}
	r.register(newPNGEncoder(), "png")
	r.register(jpegEncoder{}, "jpg", "jpeg", "jpe")
	return r
}

func (r *Registry) register(enc Encoder, aliases ...string) {
	r.byName[enc.Format()] = enc
	for _, a := range aliases {
		r.byName[a] = enc
	}
}

// Get returns the encoder for a format name or extension, with or without
// the dot, or nil if unknown.
func (r *Registry) Get(name string) Encoder {
	return r.byName[strings.ToLower(strings.TrimPrefix(name, "."))]
}

// ForPath picks an encoder from the extension of path.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := filepath.Ext(path)
	if enc := r.Get(ext); enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("no encoder for %q (want one of %s)", ext, strings.Join(r.Available(), ", "))
}

// Available returns the canonical format names, sorted.
func (r *Registry) Available() []string {
	seen := map[string]bool{}
	var out []string
	for _, enc := range r.byName {
		if !seen[enc.Format()] {
			seen[enc.Format()] = true
			out = append(out, enc.Format())
		}
	}
	sort.Strings(out)
	return out
}
