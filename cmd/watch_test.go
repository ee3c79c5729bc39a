package cmd

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rodgetech/blurhash-demo/internal/manifest"
	"github.com/rodgetech/blurhash-demo/internal/pipeline"
	"github.com/rodgetech/blurhash-demo/internal/profile"
)

func TestDebouncerCoalesces(t *testing.T) {
	var mu sync.Mutex
	fired := map[string]int{}
	done := make(chan struct{}, 4)
	d := newDebouncer(30*time.Millisecond, func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
		done <- struct{}{}
	})
	defer d.stop()

	for i := 0; i < 5; i++ {
		d.trigger("a.png")
	}
	d.trigger("b.png")

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("debouncer never fired")
		}
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired["a.png"] != 1 || fired["b.png"] != 1 {
		t.Errorf("fired = %v, want one call per path", fired)
	}
}

func TestDebouncerStop(t *testing.T) {
	called := make(chan struct{}, 1)
	d := newDebouncer(20*time.Millisecond, func(string) { called <- struct{}{} })
	d.trigger("a.png")
	d.stop()
	select {
	case <-called:
		t.Fatal("stopped timer fired")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncerWaitCoversRunningCallback(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	d := newDebouncer(5*time.Millisecond, func(string) {
		close(started)
		<-release
	})
	d.trigger("a.png")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}
	d.stop()

	waited := make(chan struct{})
	go func() {
		d.wait()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("wait returned while a callback was still running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return after the callback finished")
	}
}

func TestDebouncerWaitAfterStop(t *testing.T) {
	d := newDebouncer(time.Hour, func(string) { t.Error("cancelled timer fired") })
	d.trigger("a.png")
	d.trigger("a.png")
	d.trigger("b.png")
	d.stop()

	waited := make(chan struct{})
	go func() {
		d.wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("wait blocked on cancelled timers")
	}
}

func writeTestPNG(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: shade, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRehashSkipsUnchangedContent(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := filepath.Join(in, "photo.png")
	writeTestPNG(t, path, 10)

	p := pipeline.New(pipeline.Config{InputDir: in, Profile: profile.Get("minimal"), Workers: 1})
	live := &liveManifest{m: manifest.New("minimal"), outDir: out}
	if err := rehash(p, live, in, path); err != nil {
		t.Fatal(err)
	}

	// Mark the entry; a skipped rehash leaves the mark in place.
	a := live.m.Assets["photo"]
	a.BlurHash = "marked"
	live.m.Assets["photo"] = a

	writeTestPNG(t, path, 10)
	if err := rehash(p, live, in, path); err != nil {
		t.Fatal(err)
	}
	if got := live.m.Assets["photo"].BlurHash; got != "marked" {
		t.Fatalf("identical rewrite was rehashed: %q", got)
	}

	writeTestPNG(t, path, 250)
	if err := rehash(p, live, in, path); err != nil {
		t.Fatal(err)
	}
	if got := live.m.Assets["photo"].BlurHash; got == "marked" {
		t.Fatal("changed content was not rehashed")
	}
}

func TestRehashPutAndRemove(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := filepath.Join(in, "photo.png")
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p := pipeline.New(pipeline.Config{InputDir: in, Profile: profile.Get("minimal"), Workers: 1})
	live := &liveManifest{m: manifest.New("minimal"), outDir: out}

	if err := rehash(p, live, in, path); err != nil {
		t.Fatal(err)
	}
	m, err := manifest.Read(filepath.Join(out, manifest.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Assets["photo"]; !ok {
		t.Fatalf("asset missing after rehash: %v", m.Assets)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := rehash(p, live, in, path); err != nil {
		t.Fatal(err)
	}
	m, err = manifest.Read(filepath.Join(out, manifest.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Assets) != 0 {
		t.Errorf("asset not removed: %v", m.Assets)
	}
}
