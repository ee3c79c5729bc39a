package config

import (
	"os"
	"path/filepath"
	"testing"
	"strings"
	"time"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Codec.ComponentsX != 4 || cfg.Codec.ComponentsY != 3 {
		t.Errorf("components: %dx%d", cfg.Codec.ComponentsX, cfg.Codec.ComponentsY)
	}
	if len(cfg.Gallery.Items) != 6 {
		t.Errorf("default gallery: %d items", len(cfg.Gallery.Items))
	}
	if cfg.Watch.Debounce() != 500*time.Millisecond {
		t.Errorf("debounce: %v", cfg.Watch.Debounce())
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blurhash.toml")
	raw := `
[codec]
components_x = 6
punch = 1.5

[service]
endpoint = "https://hash.example.com/generate"
timeout_seconds = 5

[[gallery.items]]
url = "https://example.com/a.jpg"
hash = "00TI:j"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Codec.ComponentsX != 6 || cfg.Codec.ComponentsY != 3 {
		t.Errorf("components: %dx%d", cfg.Codec.ComponentsX, cfg.Codec.ComponentsY)
	}
	if cfg.Codec.Punch != 1.5 {
		t.Errorf("punch: %g", cfg.Codec.Punch)
	}
	if cfg.Service.Endpoint != "https://hash.example.com/generate" {
		t.Errorf("endpoint: %q", cfg.Service.Endpoint)
	}
	if cfg.Service.Timeout() != 5*time.Second {
		t.Errorf("timeout: %v", cfg.Service.Timeout())
	}
	if len(cfg.Gallery.Items) != 1 || cfg.Gallery.Items[0].Hash != "00TI:j" {
		t.Errorf("gallery items: %+v", cfg.Gallery.Items)
	}
	if cfg.Gallery.Width != 400 {
		t.Errorf("untouched default changed: width %d", cfg.Gallery.Width)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax.toml":     "[codec\ncomponents_x = 4",
		"components.toml": "[codec]\ncomponents_x = 12",
		"punch.toml":      "[codec]\npunch = -1",
	}
	for name, raw := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDefault_DemoGallery(t *testing.T) {
	cfg := Default()
	const first = "https://images.unsplash.com/photo-1682685795463-0674c065f315?q=80&w=3126&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDF8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D"
	if cfg.Gallery.Items[0].URL != first {
		t.Errorf("first gallery url %q", cfg.Gallery.Items[0].URL)
	}
	for i, it := range cfg.Gallery.Items {
		if !strings.Contains(it.URL, "&ixlib=rb-4.0.3&ixid=") {
			t.Errorf("item %d: url lost its query: %q", i, it.URL)
		}
		if err := blurhash.Validate(it.Hash); err != nil {
			t.Errorf("item %d: %v", i, err)
		}
	}
	if err := blurhash.Validate(cfg.Service.InitialHash); err != nil {
		t.Errorf("initial hash: %v", err)
	}
	if !strings.Contains(cfg.Service.ImageURL, "photo-1694950888587-7dc43b3f30c8") {
		t.Errorf("image url %q", cfg.Service.ImageURL)
	}
	if cfg.Service.MaxImagePixels <= 0 {
		t.Errorf("max image pixels %d", cfg.Service.MaxImagePixels)
	}
}
