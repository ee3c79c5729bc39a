// Package profile holds named placeholder presets.
package profile

import "github.com/rodgetech/blurhash-demo/internal/blurhash"

// Profile defines how placeholders are computed and previewed.
//
// A zero ComponentsX/ComponentsY pair picks the grid from each image's
// aspect ratio.
type Profile struct {
	Name          string
	ComponentsX   int
	ComponentsY   int
	MaxDim        int     // downsample bound before encoding
	Punch         float64 // contrast of rendered previews
	PreviewWidths []int   // widths of decoded placeholder previews; empty = none
	PreviewFormat string  // "png" or "jpeg"
	Quality       int     // jpeg preview quality 1-100
}

// Built-in profiles.
var profiles = map[string]Profile{
	"default": {
		Name:          "default",
		ComponentsX:   4,
		ComponentsY:   3,
		MaxDim:        64,
		Punch:         1,
		PreviewWidths: []int{32},
		PreviewFormat: "png",
		Quality:       80,
	},
	"auto": {
		Name:          "auto",
		MaxDim:        64,
		Punch:         1,
		PreviewWidths: []int{32},
		PreviewFormat: "png",
		Quality:       80,
	},
	"detailed": {
		Name:          "detailed",
		ComponentsX:   6,
		ComponentsY:   5,
		MaxDim:        128,
		Punch:         1.2,
		PreviewWidths: []int{32, 64},
		PreviewFormat: "jpeg",
		Quality:       70,
	},
	"minimal": {
		Name:        "minimal",
		ComponentsX: 3,
		ComponentsY: 3,
		MaxDim:      32,
		Punch:       1,
	},
}

// Get returns a profile by name. Falls back to default if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["default"]
	p.Name = name // preserve requested name
	return p
}

// Grid returns the component grid for an image of the given size. An
// axis left at 0 takes the aspect-ratio suggestion; a fixed axis is kept.
func (p Profile) Grid(width, height int) (x, y int) {
	x, y = p.ComponentsX, p.ComponentsY
	if x > 0 && y > 0 {
		return x, y
	}
	sx, sy := blurhash.SuggestComponents(width, height)
	if x <= 0 {
		x = sx
	}
	if y <= 0 {
		y = sy
	}
	return x, y
}

// PreviewSizes returns (width, height) pairs for previews, never wider
// than the original and never zero tall.
func (p Profile) PreviewSizes(originalWidth, originalHeight int) [][2]int {
	seen := map[int]bool{}
	var out [][2]int
	for _, w := range p.PreviewWidths {
		if w > originalWidth {
			w = originalWidth
		}
		if w < 1 || seen[w] {
			continue
		}
		seen[w] = true
		h := originalHeight * w / originalWidth
		if h < 1 {
			h = 1
		}
		out = append(out, [2]int{w, h})
	}
	return out
}
