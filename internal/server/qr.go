package server

import (
	"net/http"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/livetemplate/wrap/internal/bookmark"
)

// qrSize is the edge length of generated codes in pixels.
const qrSize = 256

// serveQR renders the permalink of a slide as a PNG QR code, so an
// audience can open the deck on their own device at the current slide.
func (s *Server) serveQR(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	addr := q.Get("addr")
	if addr == "" {
		http.Error(w, "addr is required", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(q.Get("id"))
	if err != nil || id < 0 {
		http.Error(w, "id must be a slide number", http.StatusBadRequest)
		return
	}

	png, err := qrcode.Encode(bookmark.Permalink(addr, id), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "failed to encode QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
