package profile

import "testing"

func TestGet_Fallback(t *testing.T) {
	p := Get("does-not-exist")
	if p.Name != "does-not-exist" {
		t.Errorf("name: %q", p.Name)
	}
	if p.ComponentsX != 4 || p.ComponentsY != 3 {
		t.Errorf("fallback grid %dx%d", p.ComponentsX, p.ComponentsY)
	}
}

func TestGrid(t *testing.T) {
	if x, y := Get("default").Grid(100, 400); x != 4 || y != 3 {
		t.Errorf("fixed grid ignored: %dx%d", x, y)
	}
	if x, y := Get("auto").Grid(100, 400); x != 1 || y != 4 {
		t.Errorf("auto grid for tall image: %dx%d", x, y)
	}

	// One fixed axis keeps its value; the other is suggested.
	p := Get("auto")
	p.ComponentsX = 6
	if x, y := p.Grid(100, 400); x != 6 || y != 4 {
		t.Errorf("auto grid with x fixed: %dx%d", x, y)
	}
	p = Get("auto")
	p.ComponentsY = 2
	if x, y := p.Grid(400, 100); x != 4 || y != 2 {
		t.Errorf("auto grid with y fixed: %dx%d", x, y)
	}
}

func TestPreviewSizes(t *testing.T) {
	p := Get("detailed")
	sizes := p.PreviewSizes(400, 300)
	if len(sizes) != 2 || sizes[0] != [2]int{32, 24} || sizes[1] != [2]int{64, 48} {
		t.Errorf("sizes: %v", sizes)
	}
	small := p.PreviewSizes(40, 2)
	if len(small) != 2 || small[1] != [2]int{40, 2} || small[0] != [2]int{32, 1} {
		t.Errorf("small: %v", small)
	}
	if got := Get("minimal").PreviewSizes(400, 300); len(got) != 0 {
		t.Errorf("minimal should have no previews: %v", got)
	}
}
