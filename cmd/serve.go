package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/hashsvc"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hash-generation service",
	Long: `Serves GET /?url=<image url>. The image is fetched, downsampled and
encoded; the response body is the bare BlurHash.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	addr := serveListen
	if addr == "" {
		addr = cfg.Service.Listen
	}
	log := newLogger()

	handler := &hashsvc.Handler{
		Fetcher:     newFetcher(),
		ComponentsX: cfg.Codec.ComponentsX,
		ComponentsY: cfg.Codec.ComponentsY,
		MaxDim:      cfg.Codec.MaxDim,
		Logger:      log,
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr,
			"components", fmt.Sprintf("%dx%d", cfg.Codec.ComponentsX, cfg.Codec.ComponentsY))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[blurhash] shutdown: %v\n", err)
		return err
	}
	return nil
}

// newFetcher builds the image fetcher shared by serve and gallery from
// the [service] limits.
func newFetcher() *hashsvc.Fetcher {
	return &hashsvc.Fetcher{
		HTTP:      &http.Client{Timeout: cfg.Service.Timeout()},
		MaxBytes:  cfg.Service.MaxImageBytes,
		MaxPixels: cfg.Service.MaxImagePixels,
	}
}
