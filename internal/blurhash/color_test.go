package blurhash

import "testing"

func TestColor_Roundtrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		if got := LinearToSRGB(SRGBToLinear(uint8(b))); got != uint8(b) {
			t.Errorf("roundtrip %d: got %d", b, got)
		}
	}
}

func TestColor_Monotonic(t *testing.T) {
	prev := -1.0
	for b := 0; b < 256; b++ {
		v := SRGBToLinear(uint8(b))
		if v <= prev {
			t.Fatalf("SRGBToLinear not increasing at %d: %f <= %f", b, v, prev)
		}
		prev = v
	}
	if SRGBToLinear(0) != 0 || SRGBToLinear(255) != 1 {
		t.Errorf("endpoints: %f, %f", SRGBToLinear(0), SRGBToLinear(255))
	}
}

func TestColor_Clamp(t *testing.T) {
	if got := LinearToSRGB(-0.5); got != 0 {
		t.Errorf("negative: got %d", got)
	}
	if got := LinearToSRGB(3); got != 255 {
		t.Errorf("above one: got %d", got)
	}
}
