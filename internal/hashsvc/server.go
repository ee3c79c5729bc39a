package hashsvc

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
)

// Handler serves GET ?url=<image url> with the BlurHash of that image as
// a text/plain body.
type Handler struct {
	Fetcher     *Fetcher
	ComponentsX int
	ComponentsY int
	MaxDim      int // downsample bound before encoding, 0 = none
	Logger      *slog.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.Logger
	if log == nil {
		log = discardLogger
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	target := r.URL.Query().Get("url")
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	start := time.Now()
	img, format, err := h.Fetcher.Fetch(r.Context(), target)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrUndecodable) {
			status = http.StatusUnprocessableEntity
		}
		log.Warn("fetch failed", "url", target, "status", status, "err", err)
		http.Error(w, err.Error(), status)
		return
	}

	cx, cy := h.ComponentsX, h.ComponentsY
	if cx == 0 || cy == 0 {
		b := img.Bounds()
		cx, cy = blurhash.SuggestComponents(b.Dx(), b.Dy())
	}
	hash, err := blurhash.EncodeThumbnail(img, cx, cy, h.MaxDim)
	if err != nil {
		log.Warn("encode failed", "url", target, "err", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	log.Info("hash generated", "url", target, "format", format,
		"components", [2]int{cx, cy}, "elapsed", time.Since(start))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte(hash))
	}
}
