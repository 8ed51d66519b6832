package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// Image proxy defaults.
const (
	DefaultImageProxyURL  = "https://images.weserv.nl/"
	DefaultImageOriginURL = "https://phimimg.com/"
	DefaultPlaceholderURL = "https://placehold.co/400x600/111/ffd700?text=Binh+VietSub"
	DefaultImageWidth     = 400
	DefaultImageQuality   = 80
)

// ImageRewriter routes poster and thumbnail URLs through a resizing proxy that
// returns interlaced WebP at the requested width and quality.
type ImageRewriter struct {
	ProxyURL    string
	OriginURL   string
	Placeholder string
}

// NewImageRewriter creates a rewriter; empty arguments use the defaults.
func NewImageRewriter(proxyURL, originURL string) ImageRewriter {
	if proxyURL == "" {
		proxyURL = DefaultImageProxyURL
	}
	if originURL == "" {
		originURL = DefaultImageOriginURL
	}
	return ImageRewriter{
		ProxyURL:    proxyURL,
		OriginURL:   originURL,
		Placeholder: DefaultPlaceholderURL,
	}
}

// URL rewrites path. Relative paths are resolved against the origin; an empty path
// yields the placeholder. Non-positive width or quality use the defaults.
func (r ImageRewriter) URL(path string, width, quality int) string {
	if path == "" {
		return r.Placeholder
	}
	if width <= 0 {
		width = DefaultImageWidth
	}
	if quality <= 0 {
		quality = DefaultImageQuality
	}

	full := path
	if !strings.HasPrefix(path, "http") {
		full = r.OriginURL + path
	}

	// Spaces are encoded as %20, not +.
	escaped := strings.ReplaceAll(url.QueryEscape(full), "+", "%20")
	return fmt.Sprintf("%s?url=%s&w=%d&q=%d&output=webp&il",
		r.ProxyURL, escaped, width, quality)
}

// ImageURL rewrites path with the default proxy and origin.
func ImageURL(path string, width, quality int) string {
	return NewImageRewriter("", "").URL(path, width, quality)
}
