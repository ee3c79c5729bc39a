package cmd

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
	"github.com/rodgetech/blurhash-demo/internal/encoder"
)

var (
	decodeOut        string
	decodeWidth      int
	decodeHeight     int
	decodeResolution int
	decodePunch      float64
	decodeQuality    int
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hash>",
	Short: "Render a BlurHash to a PNG or JPEG file",
	Long: `Decodes a BlurHash to pixels and writes an image file. With
--resolution the hash is decoded at a small size and stretched to the
output size, the way the web demo renders its 32x32 canvas.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeOut, "out", "o", "placeholder.png", "output file (.png, .jpg)")
	decodeCmd.Flags().IntVarP(&decodeWidth, "width", "W", 400, "output width")
	decodeCmd.Flags().IntVarP(&decodeHeight, "height", "H", 300, "output height")
	decodeCmd.Flags().IntVarP(&decodeResolution, "resolution", "r", 0, "decode size before stretching (0 = output size)")
	decodeCmd.Flags().Float64VarP(&decodePunch, "punch", "p", 0, "contrast multiplier (0 = config)")
	decodeCmd.Flags().IntVarP(&decodeQuality, "quality", "q", 80, "jpeg quality 1-100")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(_ *cobra.Command, args []string) error {
	hash := args[0]
	punch := decodePunch
	if punch <= 0 {
		punch = cfg.Codec.Punch
	}

	enc, err := encoder.NewRegistry().ForPath(decodeOut)
	if err != nil {
		return err
	}

	w, h := decodeWidth, decodeHeight
	if decodeResolution > 0 {
		w, h = decodeResolution, decodeResolution
	}
	img, err := blurhash.Decode(hash, w, h, punch)
	if err != nil {
		return fmt.Errorf("decode %q: %w", hash, err)
	}
	if decodeResolution > 0 {
		img = imaging.Resize(img, decodeWidth, decodeHeight, imaging.Linear)
	}

	data, err := encoder.Bytes(enc, img, decodeQuality)
	if err != nil {
		return fmt.Errorf("encode %s: %w", enc.Format(), err)
	}
	if err := os.WriteFile(decodeOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", decodeOut, err)
	}

	avg, _ := blurhash.AverageColor(hash)
	x, y, _ := blurhash.Components(hash)
	logVerbose("%dx%d components, average #%02x%02x%02x", x, y, avg.R, avg.G, avg.B)
	fmt.Printf("  ✓ wrote %s (%dx%d, %s)\n", decodeOut, decodeWidth, decodeHeight, formatBytes(int64(len(data))))
	return nil
}
