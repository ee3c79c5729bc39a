package loadstate

import "time"

// CrossfadeDuration matches the opacity transition of the web demo. It is
// presentation only; state changes are instantaneous.
const CrossfadeDuration = 500 * time.Millisecond

// Visibility is the opacity, in [0, 1], of each layer of a tile.
type Visibility struct {
	Placeholder float64
	Image       float64
}

// VisibilityFor is the steady-state opacity for s.
func VisibilityFor(s State) Visibility {
	if s == Loaded {
		return Visibility{Placeholder: 0, Image: 1}
	}
	return Visibility{Placeholder: 1, Image: 0}
}

// Crossfade interpolates towards the steady state of s. progress is the
// elapsed fraction of the fade and is clamped to [0, 1]; a Placeholder
// tile never fades.
func Crossfade(s State, progress float64) Visibility {
	if s != Loaded {
		return VisibilityFor(Placeholder)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return Visibility{Placeholder: 1 - progress, Image: progress}
}
