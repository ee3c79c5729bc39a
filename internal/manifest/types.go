package manifest

// Manifest is the top-level output of a placeholder build.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers int `json:"workers"`
	MaxDim  int `json:"max_dim"` // downsample bound used before encoding
}

// Asset describes a single source image and its placeholder.
type Asset struct {
	Original    OriginalInfo `json:"original"`
	BlurHash    string       `json:"blurhash"`
	Components  [2]int       `json:"components"`          // [x, y]
	AspectRatio float64      `json:"aspect_ratio"`        // width / height
	AvgColor    *[3]uint8    `json:"avg_color,omitempty"` // DC term as [R,G,B]
	Previews    []Preview    `json:"previews,omitempty"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
	Hash     string `json:"hash"` // first 16 hex chars of xxhash64 of the file
}

// Preview is the placeholder decoded to a file at a specific size.
type Preview struct {
	Format string `json:"format"` // "png", "jpeg"
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // first 16 hex chars of xxhash64
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes   int64 `json:"total_input_bytes"`
	TotalPreviewBytes int64 `json:"total_preview_bytes"`
	TotalHashBytes    int   `json:"total_hash_bytes"`
	TotalAssets       int   `json:"total_assets"`
	TotalPreviews     int   `json:"total_previews"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest name inside an output directory.
const FileName = "blurhash.manifest.json"
