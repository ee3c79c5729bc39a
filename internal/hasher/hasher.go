// Package hasher derives short, stable identifiers from content and from
// resource locations.
package hasher

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ContentHash returns the xxHash64 of data as hex, truncated to hexLen
// characters (hexLen <= 0 keeps all 16).
func ContentHash(data []byte, hexLen int) string {
	return truncHex(xxhash.Sum64(data), hexLen)
}

// ContentHashReader is ContentHash over a stream.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncHex(h.Sum64(), hexLen), nil
}

// ResourceKey maps an image location to the key used for its load state.
// URLs are normalised (scheme and host lower-cased, fragment dropped,
// default ports removed) so that spellings of one resource share a key.
// Two different resources that normalise alike share state; that is a
// known collision, not something this function tries to detect.
func ResourceKey(location string) string {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "path:" + strings.TrimSpace(location)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !defaultPort(u.Scheme, port) {
		host += ":" + port
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	return "url:" + u.String()
}

func defaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}

func truncHex(v uint64, hexLen int) string {
	full := fmt.Sprintf("%016x", v)
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
