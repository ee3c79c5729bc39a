package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the slash-separated path relative to the input directory.
	RelPath string
	// Key is the asset key (RelPath without extension).
	Key string
	// Format is the source format (png, jpeg, webp, gif, bmp, tiff).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// formats maps recognised extensions to normalised format names.
var formats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".webp": "webp",
	".gif":  "gif",
	".bmp":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
}

// IsImage reports whether path has a recognised image extension.
func IsImage(path string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ScanImages walks inputDir and returns every image below it, skipping
// hidden directories.
func ScanImages(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImage(path) {
			return nil
		}
		src, err := SourceFor(inputDir, path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
		return nil
	})

	return sources, err
}

// SourceFor describes a single file under inputDir.
func SourceFor(inputDir, path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := formats[ext]
	if !ok {
		return Source{}, fmt.Errorf("%s: not an image", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, err
	}
	rel, err := filepath.Rel(inputDir, path)
	if err != nil {
		return Source{}, err
	}
	rel = filepath.ToSlash(rel)
	return Source{
		AbsPath: path,
		RelPath: rel,
		Key:     rel[:len(rel)-len(ext)],
		Format:  format,
		Size:    info.Size(),
	}, nil
}
