package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
	"github.com/rodgetech/blurhash-demo/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a placeholder manifest and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path, err := resolveManifest(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	errs := validateManifest(m, filepath.Dir(path))
	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d assets, %d previews, all hashes well-formed\n", m.Stats.TotalAssets, m.Stats.TotalPreviews)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

// resolveManifest accepts either a manifest file or a build output dir.
func resolveManifest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, manifest.FileName), nil
	}
	return path, nil
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	for key, asset := range m.Assets {
		if asset.Original.Width <= 0 || asset.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, asset.Original.Width, asset.Original.Height))
		}
		if asset.AspectRatio <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid aspect ratio %.4f", key, asset.AspectRatio))
		}

		if err := blurhash.Validate(asset.BlurHash); err != nil {
			errs = append(errs, fmt.Sprintf("asset %q: %v", key, err))
		} else if x, y, _ := blurhash.Components(asset.BlurHash); asset.Components != [2]int{x, y} {
			errs = append(errs, fmt.Sprintf("asset %q: components %v, hash says [%d %d]",
				key, asset.Components, x, y))
		}

		seenPaths := map[string]bool{}
		for i, p := range asset.Previews {
			if p.Width <= 0 || p.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: invalid dimensions %dx%d",
					key, i, p.Width, p.Height))
			}
			if p.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: missing path", key, i))
				continue
			}
			if seenPaths[p.Path] {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: duplicate path %q", key, i, p.Path))
			}
			seenPaths[p.Path] = true

			info, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(p.Path)))
			if err != nil {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: file not found: %s", key, i, p.Path))
			} else if p.Size > 0 && info.Size() != p.Size {
				errs = append(errs, fmt.Sprintf("asset %q preview[%d]: size mismatch: manifest=%d, disk=%d",
					key, i, p.Size, info.Size()))
			}
		}
	}

	previews, hashBytes := 0, 0
	for _, a := range m.Assets {
		previews += len(a.Previews)
		hashBytes += len(a.BlurHash)
	}
	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	if m.Stats.TotalPreviews != previews {
		errs = append(errs, fmt.Sprintf("stats.total_previews mismatch: %d != %d", m.Stats.TotalPreviews, previews))
	}
	if m.Stats.TotalHashBytes != hashBytes {
		errs = append(errs, fmt.Sprintf("stats.total_hash_bytes mismatch: %d != %d", m.Stats.TotalHashBytes, hashBytes))
	}

	return errs
}
