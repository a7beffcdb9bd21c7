package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollectorRecords(t *testing.T) {
	c := NewCollector("wrap")
	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()
	c.KeyReceived()
	c.SlideShown("section")
	c.BookmarkOp("set", nil)
	c.BookmarkOp("get", errors.New("down"))
	c.Reloaded()

	out := scrape(t, c)
	assert.Contains(t, out, "wrap_sessions_active 1")
	assert.Contains(t, out, "wrap_sessions_total 2")
	assert.Contains(t, out, "wrap_keys_total 1")
	assert.Contains(t, out, `wrap_slide_shows_total{kind="section"} 1`)
	assert.Contains(t, out, `wrap_bookmark_operations_total{operation="get",status="error"} 1`)
	assert.Contains(t, out, `wrap_bookmark_operations_total{operation="set",status="ok"} 1`)
	assert.Contains(t, out, "wrap_reloads_total 1")
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("wrap")
	b := NewCollector("wrap")
	a.KeyReceived()
	assert.Contains(t, scrape(t, b), "wrap_keys_total 0")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.SessionOpened()
	c.SessionClosed()
	c.KeyReceived()
	c.SlideShown("aside")
	c.BookmarkOp("get", nil)
	c.Reloaded()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
