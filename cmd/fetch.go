package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
	"github.com/rodgetech/blurhash-demo/internal/hashsvc"
)

var (
	fetchEndpoint string
	fetchPreview  string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [image_url]",
	Short: "Ask the hash-generation service for the BlurHash of an image URL",
	Long: `Calls GET <endpoint>?url=<image_url> and prints the returned hash.
The endpoint comes from --endpoint or [service].endpoint in the config.
Without an argument [service].image_url is used. If the request fails
the previous hash ([service].initial_hash) is kept and printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchEndpoint, "endpoint", "e", "", "service endpoint (overrides config)")
	fetchCmd.Flags().StringVar(&fetchPreview, "preview", "", "also decode the hash to this PNG/JPEG file")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(_ *cobra.Command, args []string) error {
	endpoint := fetchEndpoint
	if endpoint == "" {
		endpoint = cfg.Service.Endpoint
	}
	if endpoint == "" {
		return fmt.Errorf("no service endpoint: set --endpoint or [service].endpoint")
	}

	imageURL := cfg.Service.ImageURL
	if len(args) == 1 {
		imageURL = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := hashsvc.NewClient(endpoint, cfg.Service.Timeout())
	client.Logger = newLogger()
	latest := hashsvc.NewLatest(cfg.Service.InitialHash)

	logVerbose("requesting %s?url=%s", endpoint, imageURL)
	stopTicker := reportBusy(client, time.Second)
	hash, err := latest.Refresh(ctx, client, imageURL)
	stopTicker()
	if err != nil {
		if hash != "" {
			fmt.Fprintf(os.Stderr, "[blurhash] keeping previous hash %s\n", hash)
		}
		return err
	}
	fmt.Println(hash)

	if fetchPreview == "" {
		return nil
	}
	w, h := cfg.Gallery.Width, cfg.Gallery.Height
	if r := cfg.Gallery.Resolution; r > 0 {
		w, h = r, r
	}
	preview, err := blurhash.Decode(hash, w, h, cfg.Codec.Punch)
	if err != nil {
		return err
	}
	if cfg.Gallery.Resolution > 0 {
		preview = imaging.Resize(preview, cfg.Gallery.Width, cfg.Gallery.Height, imaging.Linear)
	}
	if err := imaging.Save(preview, fetchPreview); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	logVerbose("wrote %s", fetchPreview)
	return nil
}

// reportBusy logs every interval while c has a request in flight. The
// returned func stops it.
func reportBusy(c *hashsvc.Client, interval time.Duration) func() {
	done := make(chan struct{})
	go func() {
		start := time.Now()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if c.Busy() {
					logVerbose("generating... %s", time.Since(start).Round(time.Second))
				}
			}
		}
	}()
	return func() { close(done) }
}
