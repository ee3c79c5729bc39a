// Package config loads the TOML configuration shared by all commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where commands look for a config file when --config is
// not given. A missing file is not an error.
const DefaultPath = "blurhash.toml"

type CodecConfig struct {
	ComponentsX int     `toml:"components_x"`
	ComponentsY int     `toml:"components_y"`
	Punch       float64 `toml:"punch"`
	MaxDim      int     `toml:"max_dim"` // downsample bound before encoding
}

type ServiceConfig struct {
	Endpoint       string `toml:"endpoint"` // hash generation URL used by fetch
	Listen         string `toml:"listen"`   // address for serve
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxImageBytes  int64  `toml:"max_image_bytes"`
	MaxImagePixels int64  `toml:"max_image_pixels"` // checked from the image header before decoding

	// ImageURL and InitialHash seed the generate flow: fetch with no
	// argument asks for ImageURL, and InitialHash is what a failed
	// request leaves in place.
	ImageURL    string `toml:"image_url"`
	InitialHash string `toml:"initial_hash"`
}

func (s ServiceConfig) Timeout() time.Duration {
	if s.TimeoutSeconds > 0 {
		return time.Duration(s.TimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

type GalleryItem struct {
	URL  string `toml:"url"`
	Hash string `toml:"hash"`
}

type GalleryConfig struct {
	Width      int           `toml:"width"`
	Height     int           `toml:"height"`
	Resolution int           `toml:"resolution"` // decode size before upscaling to the tile
	Workers    int           `toml:"workers"`
	Items      []GalleryItem `toml:"items"`
}

type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMS > 0 {
		return time.Duration(w.DebounceMS) * time.Millisecond
	}
	return 500 * time.Millisecond
}

type Config struct {
	Codec   CodecConfig   `toml:"codec"`
	Service ServiceConfig `toml:"service"`
	Gallery GalleryConfig `toml:"gallery"`
	Watch   WatchConfig   `toml:"watch"`
}

// Default returns the built-in configuration: 4×3 components, punch 1,
// and the six photos of the original demo gallery.
func Default() *Config {
	return &Config{
		Codec: CodecConfig{
			ComponentsX: 4,
			ComponentsY: 3,
			Punch:       1,
			MaxDim:      64,
		},
		Service: ServiceConfig{
			Listen:         "127.0.0.1:8080",
			TimeoutSeconds: 30,
			MaxImageBytes:  32 << 20,
			MaxImagePixels: 40_000_000,
			ImageURL:       demoImageURL,
			InitialHash:    "U6G,9Z5PoO%300~DWTEK0055a_-W={-X?HNG",
		},
		Gallery: GalleryConfig{
			Width:      400,
			Height:     300,
			Resolution: 32,
			Workers:    4,
			Items:      defaultGallery(),
		},
		Watch: WatchConfig{DebounceMS: 500},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges that the codec would otherwise reject later.
func (c *Config) Validate() error {
	if c.Codec.ComponentsX < 1 || c.Codec.ComponentsX > 9 ||
		c.Codec.ComponentsY < 1 || c.Codec.ComponentsY > 9 {
		return fmt.Errorf("codec components %dx%d outside 1..9",
			c.Codec.ComponentsX, c.Codec.ComponentsY)
	}
	if c.Codec.Punch <= 0 {
		return fmt.Errorf("codec punch must be positive, got %g", c.Codec.Punch)
	}
	if c.Gallery.Width <= 0 || c.Gallery.Height <= 0 {
		return fmt.Errorf("gallery size %dx%d must be positive", c.Gallery.Width, c.Gallery.Height)
	}
	return nil
}

const demoImageURL = "https://images.unsplash.com/photo-1694950888587-7dc43b3f30c8?q=80&w=3087&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D"

func defaultGallery() []GalleryItem {
	return []GalleryItem{
		{
			URL:  "https://images.unsplash.com/photo-1682685795463-0674c065f315?q=80&w=3126&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDF8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Hash: "U23u7jn*0#xaI;j@xYR*0#oe^ORk=_WCENxa",
		},
		{
			URL:  "https://images.unsplash.com/photo-1682687980976-fec0915c6177?q=80&w=2970&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDF8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Hash: "U.Gv-H%fIoRk~XxtNGWW$$jFWWofa$WCoLoe",
		},
		{
			URL:  "https://images.unsplash.com/photo-1699637341383-8a67b4d1adf3?q=80&w=3087&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Hash: "U:K-IqJ7T0slPXxaS4s90$V@r=W;w3aenNS$",
		},
		{
			URL:  "https://images.unsplash.com/photo-1682687221073-53ad74c2cad7?q=80&w=2970&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDF8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Hash: "URI5xntlD%V@T}V@WAofMInhkCbHWXbwe.jF",
		},
		{
			URL:  "https://images.unsplash.com/photo-1699183977963-242cb79d4bc2?q=80&w=2970&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Hash: "UsM?9sxZRka|~BazWCjt9cayj[jt$zoej[az",
		},
		{
			URL:  "https://images.unsplash.com/photo-1699452208069-c67c634b37a4?q=80&w=3164&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Hash: "U14Ldx0000~q~qIUD%%M00~q?b4T00_3~q4n",
		},
	}
}
