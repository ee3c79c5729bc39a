package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/manifest"
	"github.com/rodgetech/blurhash-demo/internal/pipeline"
	"github.com/rodgetech/blurhash-demo/internal/profile"
)

var (
	buildOutDir  string
	buildProfile string
	buildWorkers int
	buildX       int
	buildY       int
	buildGzip    bool
)

var buildCmd = &cobra.Command{
	Use:   "build <input_dir>",
	Short: "Compute placeholders for a directory of images and write a manifest",
	Long: `Scans input directory for images (png, jpg, jpeg, webp, gif, bmp, tiff),
computes a BlurHash for each, renders small placeholder previews, and
writes blurhash.manifest.json.

Preview filenames are content-addressed: <key>.<w>.<h>.<hash>.ext`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "./blurhash_out", "output directory")
	buildCmd.Flags().StringVarP(&buildProfile, "profile", "p", "default", "placeholder profile (default, auto, detailed, minimal)")
	buildCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	buildCmd.Flags().IntVarP(&buildX, "components-x", "x", 0, "horizontal components (overrides profile)")
	buildCmd.Flags().IntVarP(&buildY, "components-y", "y", 0, "vertical components (overrides profile)")
	buildCmd.Flags().BoolVar(&buildGzip, "gzip", false, "also write a gzip-compressed manifest")
	rootCmd.AddCommand(buildCmd)
}

// buildProfileFor resolves the placeholder profile. Precedence, lowest
// first: the named profile, then the [codec] config section when
// --profile was not given, then -x/-y.
func buildProfileFor(cmd *cobra.Command) profile.Profile {
	prof := profile.Get(buildProfile)
	if !cmd.Flags().Changed("profile") {
		prof.ComponentsX = cfg.Codec.ComponentsX
		prof.ComponentsY = cfg.Codec.ComponentsY
		prof.Punch = cfg.Codec.Punch
		prof.MaxDim = cfg.Codec.MaxDim
	}
	if buildX > 0 {
		prof.ComponentsX = buildX
	}
	if buildY > 0 {
		prof.ComponentsY = buildY
	}
	return prof
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(buildOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof := buildProfileFor(cmd)
	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (components=%dx%d, max-dim=%d)", prof.Name, prof.ComponentsX, prof.ComponentsY, prof.MaxDim)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Workers:   buildWorkers,
		Verbose:   verbose,
	})
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := writeManifest(m, absOutput); err != nil {
		return err
	}
	printBuildReport(m, time.Since(start))
	return nil
}

func writeManifest(m *manifest.Manifest, outDir string) error {
	path := filepath.Join(outDir, manifest.FileName)
	if err := manifest.WriteJSON(m, path); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if buildGzip {
		if err := manifest.WriteGzip(m, path+".gz"); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	return nil
}

func printBuildReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("  blurhash build complete")
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Assets:      %d\n", s.TotalAssets)
	fmt.Printf("  Previews:    %d (%s)\n", s.TotalPreviews, formatBytes(s.TotalPreviewBytes))
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Hash bytes:  %d\n", s.TotalHashBytes)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", m.BuildInfo.Workers)
	}
	fmt.Println()

	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n := len(keys)
	if n > 10 {
		n = 10
	}
	for _, k := range keys[:n] {
		fmt.Printf("    %-40s %s\n", truncKey(k, 40), m.Assets[k].BlurHash)
	}
	if len(keys) > n {
		fmt.Printf("    … %d more\n", len(keys)-n)
	}
	fmt.Println()
	fmt.Printf("  Manifest:    %s\n", manifest.FileName)
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
