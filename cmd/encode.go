package cmd

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
)

var (
	encodeX      int
	encodeY      int
	encodeAuto   bool
	encodeMaxDim int
)

var encodeCmd = &cobra.Command{
	Use:   "encode <image>...",
	Short: "Print the BlurHash of one or more image files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEncode,
}

func init() {
	encodeCmd.Flags().IntVarP(&encodeX, "components-x", "x", 0, "horizontal components 1-9 (0 = config)")
	encodeCmd.Flags().IntVarP(&encodeY, "components-y", "y", 0, "vertical components 1-9 (0 = config)")
	encodeCmd.Flags().BoolVar(&encodeAuto, "auto", false, "pick components from the aspect ratio")
	encodeCmd.Flags().IntVar(&encodeMaxDim, "max-dim", -1, "downsample bound before encoding (0 = full resolution, -1 = config)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(_ *cobra.Command, args []string) error {
	maxDim := encodeMaxDim
	if maxDim < 0 {
		maxDim = cfg.Codec.MaxDim
	}
	for _, path := range args {
		img, err := decodeImageFile(path)
		if err != nil {
			return err
		}
		x, y := componentsFor(img.Bounds())
		hash, err := blurhash.EncodeThumbnail(img, x, y, maxDim)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logVerbose("%s: %dx%d image, %dx%d components", path, img.Bounds().Dx(), img.Bounds().Dy(), x, y)
		if len(args) > 1 {
			fmt.Printf("%s\t%s\n", hash, path)
		} else {
			fmt.Println(hash)
		}
	}
	return nil
}

func componentsFor(b image.Rectangle) (int, int) {
	if encodeAuto {
		return blurhash.SuggestComponents(b.Dx(), b.Dy())
	}
	x, y := cfg.Codec.ComponentsX, cfg.Codec.ComponentsY
	if encodeX > 0 {
		x = encodeX
	}
	if encodeY > 0 {
		y = encodeY
	}
	return x, y
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
