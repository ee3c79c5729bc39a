package hashsvc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
)

func redPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// imageServer serves a PNG at /red.png, garbage at /junk, 404 elsewhere.
func imageServer(t *testing.T) *httptest.Server {
	data := redPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/red.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		case "/junk":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func hashServer(t *testing.T, cx, cy int) *httptest.Server {
	h := &Handler{
		Fetcher:     &Fetcher{HTTP: http.DefaultClient, MaxBytes: 1 << 20},
		ComponentsX: cx,
		ComponentsY: cy,
		MaxDim:      32,
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_Contract(t *testing.T) {
	imgs := imageServer(t)
	svc := hashServer(t, 4, 3)

	resp, err := http.Get(svc.URL + "?url=" + imgs.URL + "/red.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	hash := string(body)
	if strings.ContainsAny(hash, "\r\n ") {
		t.Errorf("body is not a bare hash: %q", hash)
	}
	x, y, err := blurhash.Components(hash)
	if err != nil || x != 4 || y != 3 {
		t.Fatalf("components %dx%d, %v", x, y, err)
	}
	avg, _ := blurhash.AverageColor(hash)
	if avg.R != 255 || avg.G != 0 || avg.B != 0 {
		t.Errorf("average %v, want red", avg)
	}
}

func TestHandler_Errors(t *testing.T) {
	imgs := imageServer(t)
	svc := hashServer(t, 4, 3)

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"missing url", "", http.StatusBadRequest},
		{"upstream 404", "?url=" + imgs.URL + "/missing.png", http.StatusBadGateway},
		{"not an image", "?url=" + imgs.URL + "/junk", http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, err := http.Get(svc.URL + c.query)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != c.want {
				t.Errorf("status %d, want %d", resp.StatusCode, c.want)
			}
		})
	}

	resp, err := http.Post(svc.URL+"?url=x", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST: status %d", resp.StatusCode)
	}
}

func TestClient_Generate(t *testing.T) {
	imgs := imageServer(t)
	svc := hashServer(t, 3, 3)

	c := NewClient(svc.URL, 5*time.Second)
	hash, err := c.Generate(context.Background(), imgs.URL+"/red.png")
	if err != nil {
		t.Fatal(err)
	}
	if x, y, _ := blurhash.Components(hash); x != 3 || y != 3 {
		t.Errorf("components %dx%d", x, y)
	}
	if c.Busy() {
		t.Error("client still busy after return")
	}
}

func TestClient_EncodesQuery(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("url")
		w.Write([]byte("00TI:j\n"))
	}))
	defer srv.Close()

	const target = "https://example.com/p.jpg?q=80&w=3126&ixid=M3w%3D"
	c := NewClient(srv.URL+"/generate", time.Second)
	hash, err := c.Generate(context.Background(), target)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("service saw url %q, want %q", got, target)
	}
	if hash != "00TI:j" {
		t.Errorf("hash %q: trailing newline not trimmed", hash)
	}
}

func TestClient_Errors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>nope</html>"))
	}))
	defer garbage.Close()

	ctx := context.Background()
	if _, err := NewClient(failing.URL, time.Second).Generate(ctx, ""); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("empty url: got %v", err)
	}
	if _, err := NewClient(failing.URL, time.Second).Generate(ctx, "https://x/y.png"); !errors.Is(err, ErrNetwork) {
		t.Errorf("500: got %v, want ErrNetwork", err)
	}
	if _, err := NewClient(garbage.URL, time.Second).Generate(ctx, "https://x/y.png"); err == nil {
		t.Error("invalid body accepted")
	}
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	if _, err := NewClient(closed.URL, time.Second).Generate(ctx, "https://x/y.png"); !errors.Is(err, ErrNetwork) {
		t.Errorf("connection refused: got %v, want ErrNetwork", err)
	}
}

func TestLatest_FailureKeepsPrevious(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	const initial = "U6G,9Z5PoO%300~DWTEK0055a_-W={-X?HNG"
	l := NewLatest(initial)
	got, err := l.Refresh(context.Background(), NewClient(failing.URL, time.Second), "https://x/y.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if got != initial || l.Get() != initial {
		t.Errorf("hash changed on failure: %q", l.Get())
	}
}

func TestClient_BusyWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-release
		w.Write([]byte("00TI:j"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	l := NewLatest("")
	done := make(chan error, 1)
	go func() {
		_, err := l.Refresh(context.Background(), c, "https://x/a.png")
		done <- err
	}()

	<-entered
	if !c.Busy() {
		t.Error("client not busy during request")
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if c.Busy() {
		t.Error("client busy after completion")
	}
	if l.Get() != "00TI:j" {
		t.Errorf("latest: %q", l.Get())
	}
}

func TestFetcher_Status(t *testing.T) {
	imgs := imageServer(t)
	f := &Fetcher{}
	img, format, err := f.Fetch(context.Background(), imgs.URL+"/red.png")
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 40 {
		t.Errorf("format %q bounds %v", format, img.Bounds())
	}
	if r, g, b, a := img.At(0, 0).RGBA(); r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("pixel %v", color.RGBA64Model.Convert(img.At(0, 0)))
	}
	if _, _, err := f.Fetch(context.Background(), imgs.URL+"/nope"); !errors.Is(err, ErrNetwork) {
		t.Errorf("404: got %v", err)
	}
}

// bigGrayPNG is a flat image that compresses to a few KB but declares
// w×h pixels.
func bigGrayPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetcher_PixelLimit(t *testing.T) {
	big := bigGrayPNG(t, 3000, 3000)
	imgs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big)
	}))
	defer imgs.Close()

	f := &Fetcher{MaxBytes: 32 << 20, MaxPixels: 1 << 20}
	if _, _, err := f.Fetch(context.Background(), imgs.URL+"/big.png"); !errors.Is(err, ErrUndecodable) {
		t.Fatalf("got %v, want ErrUndecodable", err)
	}

	svc := httptest.NewServer(&Handler{Fetcher: f, ComponentsX: 4, ComponentsY: 3, MaxDim: 32})
	defer svc.Close()
	resp, err := http.Get(svc.URL + "?url=" + imgs.URL + "/big.png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status %d, want 422", resp.StatusCode)
	}

	// Under the limit the header bytes consumed by the size check are
	// replayed into the real decode.
	f.MaxPixels = 3000 * 3000
	img, format, err := f.Fetch(context.Background(), imgs.URL+"/big.png")
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 3000 || img.Bounds().Dy() != 3000 {
		t.Errorf("format %q bounds %v", format, img.Bounds())
	}
}

func TestClient_DeadlineIsWrapped(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL, 5*time.Second).Generate(ctx, "https://x/y.png")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("got %v, want ErrNetwork", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want it to wrap context.DeadlineExceeded", err)
	}
}
