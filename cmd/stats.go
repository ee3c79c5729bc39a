package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a built placeholder directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := resolveManifest(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d\n", m.BuildInfo.Workers)
		fmt.Printf("  Max dim:          %dpx\n", m.BuildInfo.MaxDim)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total assets:     %d\n", s.TotalAssets)
	fmt.Printf("  Total previews:   %d\n", s.TotalPreviews)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Preview size:     %s\n", formatBytes(s.TotalPreviewBytes))
	fmt.Printf("  Hash bytes:       %d\n", s.TotalHashBytes)
	if s.TotalAssets > 0 {
		fmt.Printf("  Avg hash length:  %.1f chars\n", float64(s.TotalHashBytes)/float64(s.TotalAssets))
	}
	fmt.Println()

	// Component grid breakdown.
	grids := map[[2]int]int{}
	for _, a := range m.Assets {
		grids[a.Components]++
	}
	keys := make([][2]int, 0, len(grids))
	for g := range grids {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	fmt.Println("  Component grids:")
	for _, g := range keys {
		fmt.Printf("    %dx%d  %4d assets  (%d chars)\n", g[0], g[1], grids[g], 4+2*g[0]*g[1])
	}
	fmt.Println()

	// Preview format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, a := range m.Assets {
		for _, p := range a.Previews {
			fs := formatStats[p.Format]
			fs.count++
			fs.bytes += p.Size
			formatStats[p.Format] = fs
		}
	}
	if len(formatStats) > 0 {
		fmt.Println("  Preview formats:")
		for _, f := range []string{"png", "jpeg"} {
			if fs, ok := formatStats[f]; ok {
				fmt.Printf("    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
			}
		}
		fmt.Println()
	}

	var warnings []string
	for key, a := range m.Assets {
		if a.BlurHash == "" {
			warnings = append(warnings, fmt.Sprintf("asset %q missing blurhash", key))
		}
		if a.Original.HasAlpha {
			warnings = append(warnings, fmt.Sprintf("asset %q has alpha; placeholder is opaque", key))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}
