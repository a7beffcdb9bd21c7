package server

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/livetemplate/wrap/internal/assets"
	"github.com/livetemplate/wrap/internal/cache"
	"github.com/livetemplate/wrap/internal/security"
)

// contentTypes maps file extensions to the type they are served with. An
// empty entry marks a non-standard extension that is refused on purpose.
var contentTypes = map[string]string{
	"html":     "text/html; charset=utf-8",
	"css":      "text/css; charset=utf-8",
	"js":       "application/javascript",
	"mjs":      "application/javascript",
	"png":      "image/png",
	"gif":      "image/gif",
	"jpeg":     "image/jpeg",
	"jpg":      "image/jpeg",
	"svg":      "image/svg+xml",
	"json":     "application/json",
	"pdf":      "application/pdf",
	"txt":      "text/plain; charset=utf-8",
	"c":        "text/plain; charset=utf-8",
	"h":        "text/plain; charset=utf-8",
	"java":     "text/plain; charset=utf-8",
	"ttf":      "application/x-font-ttf",
	"woff":     "application/font-woff",
	"aac":      "audio/aac",
	"mp3":      "audio/mpeg",
	"mp4":      "video/mp4",
	"webm":     "video/webm",
	"ico":      "image/x-icon",
	"makefile": "text/plain; charset=utf-8",
	"xhtml":    "", // use .html
	"htm":      "", // use .html
	"rar":      "", // use .zip
	"doc":      "", // use .pdf
	"docx":     "", // use .pdf
}

// sourceTTL bounds how long a file stays cached without being re-checked.
const sourceTTL = 10 * time.Minute

// Static serves files below a root directory. Request paths are
// lower-cased, so files or folders whose names contain upper-case letters
// are banned; this keeps a deck portable between case-sensitive and
// case-insensitive file systems.
type Static struct {
	root   string
	index  string
	banned []string // lower-case URL prefixes
	globs  []string
	cache  *cache.MemoryCache
	logger *zap.Logger
}

// NewStatic scans root for upper-case names and prepares the ban list.
// globs are doublestar patterns relative to root; extra are URL paths
// banned outright, such as the config file.
func NewStatic(root, index string, globs, extra []string, logger *zap.Logger) (*Static, error) {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid ban pattern %q", g)
		}
	}
	if index == "" {
		index = "index.html"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Static{
		root:   root,
		index:  strings.ToLower(index),
		globs:  globs,
		cache:  cache.NewMemoryCache(),
		logger: logger,
	}
	for _, b := range extra {
		s.banned = append(s.banned, strings.ToLower(b))
	}
	if err := s.banUpperCase(); err != nil {
		s.cache.Stop()
		return nil, err
	}
	return s, nil
}

func (s *Static) banUpperCase() error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path == s.root || name == strings.ToLower(name) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		url := "/" + strings.ToLower(filepath.ToSlash(rel))
		s.banned = append(s.banned, url)
		s.logger.Debug("banned upper-case path", zap.String("path", url))
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
}

// Banned reports whether a lower-cased URL path may not be delivered.
func (s *Static) Banned(url string) bool {
	if security.IsHidden(url) {
		return true
	}
	for _, b := range s.banned {
		if strings.HasPrefix(url, b) {
			return true
		}
	}
	rel := strings.TrimPrefix(url, "/")
	for _, g := range s.globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// Normalize lower-cases a request path and maps directories to the index.
func (s *Static) Normalize(urlPath string) string {
	url := strings.ToLower(urlPath)
	if url == "" || strings.HasSuffix(url, "/") {
		url += s.index
	}
	return url
}

// contentType finds the type for a URL path; ok is false when the type is
// unknown or refused.
func contentType(url string) (string, bool) {
	if strings.HasSuffix(url, "makefile") {
		return contentTypes["makefile"], true
	}
	ext := url[strings.LastIndexByte(url, '.')+1:]
	t := contentTypes[ext]
	return t, t != ""
}

// Read returns the contents of the file behind a normalized URL path.
func (s *Static) Read(url string) ([]byte, error) {
	if s.Banned(url) {
		return nil, fs.ErrPermission
	}
	full, err := security.ResolvePath(s.root, url)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}
	if data, mod, ok := s.cache.Get(full); ok && mod.Equal(info.ModTime()) {
		return data, nil
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	s.cache.Set(full, data, info.ModTime(), sourceTTL)
	return data, nil
}

// Invalidate drops a cached file given its path relative to root.
func (s *Static) Invalidate(rel string) {
	s.cache.Invalidate(filepath.Join(s.root, filepath.FromSlash(rel)))
}

// Close releases the cache.
func (s *Static) Close() {
	s.cache.Stop()
}

// ServeHTTP delivers a file.
func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := s.Normalize(r.URL.Path)
	if s.Banned(url) {
		fail(w, http.StatusNotFound, "URL has been banned")
		return
	}
	if _, err := security.ResolvePath(s.root, url); err != nil {
		fail(w, http.StatusNotFound, "URL has been banned")
		return
	}
	ctype, ok := contentType(url)
	if !ok {
		fail(w, http.StatusUnsupportedMediaType, "File type unsupported")
		return
	}
	content, err := s.Read(url)
	if err != nil {
		fail(w, http.StatusNotFound, "File not found")
		return
	}
	if strings.HasSuffix(url, ".html") {
		content = injectClient(content)
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(content)
	}
}

// fail gives a minimal plain-text failure response.
func fail(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	w.WriteHeader(code)
	w.Write([]byte(text))
}

// injectClient adds the client tags to pages that hold slides.
func injectClient(page []byte) []byte {
	lower := bytes.ToLower(page)
	if !bytes.Contains(lower, []byte("<section")) && !bytes.Contains(lower, []byte("<aside")) {
		return page
	}
	tags := []byte(assets.Tags())
	at := bytes.Index(lower, []byte("</head>"))
	if at < 0 {
		at = bytes.Index(lower, []byte("<body"))
	}
	if at < 0 {
		at = 0
	}
	out := make([]byte, 0, len(page)+len(tags))
	out = append(out, page[:at]...)
	out = append(out, tags...)
	return append(out, page[at:]...)
}
