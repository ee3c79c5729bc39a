package loadstate

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCoordinator_DefaultPlaceholder(t *testing.T) {
	c := New()
	if c.IsLoaded("a") {
		t.Error("unknown key reported loaded")
	}
	if c.State("a") != Placeholder {
		t.Errorf("state: got %v", c.State("a"))
	}
	if c.Len() != 0 {
		t.Errorf("query should not create keys, len=%d", c.Len())
	}
}

func TestCoordinator_Transition(t *testing.T) {
	c := New()
	c.Track("a")
	c.Track("b")
	c.OnImageLoad("a")

	if !c.IsLoaded("a") {
		t.Error("a not loaded after OnImageLoad")
	}
	if c.IsLoaded("b") {
		t.Error("b affected by a's transition")
	}

	c.OnImageLoad("a")
	c.Track("a")
	if !c.IsLoaded("a") {
		t.Error("a reverted after repeated calls")
	}
}

func TestCoordinator_UnknownKeyLoads(t *testing.T) {
	c := New()
	c.OnImageLoad("never-tracked")
	if !c.IsLoaded("never-tracked") {
		t.Error("unknown key not created in Loaded")
	}
	if c.Len() != 1 {
		t.Errorf("len: got %d", c.Len())
	}
}

func TestCoordinator_Monotonic_Concurrent(t *testing.T) {
	c := New()
	const keys = 64
	const callers = 8

	var wg sync.WaitGroup
	for g := 0; g < callers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for k := 0; k < keys; k++ {
				key := fmt.Sprintf("img-%d", k)
				if k%2 == 0 {
					c.OnImageLoad(key)
				} else {
					c.Track(key)
				}
				_ = c.IsLoaded(fmt.Sprintf("img-%d", (k+g)%keys))
			}
		}(g)
	}
	wg.Wait()

	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("img-%d", k)
		want := k%2 == 0
		if c.IsLoaded(key) != want {
			t.Errorf("%s: loaded=%v, want %v", key, c.IsLoaded(key), want)
		}
	}
	if c.Len() != keys {
		t.Errorf("len: got %d, want %d", c.Len(), keys)
	}
}

func TestCoordinator_Subscribe(t *testing.T) {
	c := New()
	ch := c.Subscribe("a")
	select {
	case <-ch:
		t.Fatal("channel closed before load")
	default:
	}

	go c.OnImageLoad("a")
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not notified")
	}

	select {
	case <-c.Subscribe("a"):
	default:
		t.Error("subscribing to a loaded key should return a closed channel")
	}
}

func TestCoordinator_Snapshot(t *testing.T) {
	c := New()
	c.Track("x")
	c.OnImageLoad("y")
	snap := c.Snapshot()
	if len(snap) != 2 || snap["x"] != Placeholder || snap["y"] != Loaded {
		t.Errorf("snapshot: %v", snap)
	}
	c.OnImageLoad("x")
	if snap["x"] != Placeholder {
		t.Error("snapshot aliased live state")
	}
}

func TestVisibility(t *testing.T) {
	if v := VisibilityFor(Placeholder); v.Placeholder != 1 || v.Image != 0 {
		t.Errorf("placeholder: %+v", v)
	}
	if v := VisibilityFor(Loaded); v.Placeholder != 0 || v.Image != 1 {
		t.Errorf("loaded: %+v", v)
	}
	if v := Crossfade(Loaded, 0.25); v.Placeholder != 0.75 || v.Image != 0.25 {
		t.Errorf("crossfade 0.25: %+v", v)
	}
	if v := Crossfade(Loaded, 7); v != VisibilityFor(Loaded) {
		t.Errorf("crossfade clamp: %+v", v)
	}
	if v := Crossfade(Placeholder, 0.9); v != VisibilityFor(Placeholder) {
		t.Errorf("placeholder should not fade: %+v", v)
	}
}

func TestStateString(t *testing.T) {
	if Placeholder.String() != "placeholder" || Loaded.String() != "loaded" {
		t.Error("state names")
	}
}
