package qrcode

import (
	"fmt"
	"net/url"
	"strings"
)

// Renderer builds image references for an external QR code service that
// accepts the payload as `data` and the dimensions as `size=<W>x<H>`.
type Renderer struct {
	baseURL string
	width   int
	height  int
}

// NewRenderer creates a renderer with a default image size.
func NewRenderer(baseURL string, width, height int) *Renderer {
	if width <= 0 {
		width = 300
	}
	if height <= 0 {
		height = width
	}
	return &Renderer{baseURL: strings.TrimRight(baseURL, "?&"), width: width, height: height}
}

// ImageURL returns the image reference for data at the default size.
func (r *Renderer) ImageURL(data string) string {
	return r.ImageURLWithSize(data, r.width, r.height)
}

// ImageURLWithSize returns the image reference for data at w x h.
func (r *Renderer) ImageURLWithSize(data string, w, h int) string {
	q := url.Values{}
	q.Set("data", data)
	q.Set("size", fmt.Sprintf("%dx%d", w, h))

	sep := "?"
	if strings.Contains(r.baseURL, "?") {
		sep = "&"
	}
	return r.baseURL + sep + q.Encode()
}
