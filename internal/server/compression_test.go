package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typedHandler(contentType, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	})
}

func TestCompressionText(t *testing.T) {
	body := "<section>hello</section>"
	r := httptest.NewRequest("GET", "/index.html", nil)
	r.Header.Set("Accept-Encoding", "gzip, deflate")
	w := httptest.NewRecorder()
	WithCompression(typedHandler("text/html; charset=utf-8", body)).ServeHTTP(w, r)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Empty(t, w.Header().Get("Content-Length"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestCompressionSkipsImages(t *testing.T) {
	r := httptest.NewRequest("GET", "/ball.png", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	WithCompression(typedHandler("image/png", "PNGDATA")).ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "7", w.Header().Get("Content-Length"))
	assert.Equal(t, "PNGDATA", w.Body.String())
}

func TestCompressionNeedsAcceptEncoding(t *testing.T) {
	w := httptest.NewRecorder()
	WithCompression(typedHandler("text/css", "body{}")).ServeHTTP(w, httptest.NewRequest("GET", "/a.css", nil))
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "body{}", w.Body.String())
}

func TestCompressible(t *testing.T) {
	assert.True(t, compressible("text/css"))
	assert.True(t, compressible("application/javascript"))
	assert.True(t, compressible("image/svg+xml"))
	assert.False(t, compressible("video/mp4"))
	assert.False(t, compressible(""))
}
