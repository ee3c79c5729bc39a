package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/config"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blurhash",
	Short: "BlurHash placeholders for progressive image loading",
	Long: `blurhash: compact placeholders that show while the real image loads.

Encodes images to BlurHash strings, decodes hashes to pixels, builds
placeholder manifests for whole directories, and runs the hash
generation service used by the web demo.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// loadConfig runs before every command so flags can fall back to cfg.
func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file (TOML)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"blurhash %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[blurhash] "+format+"\n", args...)
	}
}

// newLogger is the structured logger for long-running commands.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
