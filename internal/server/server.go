// Package server is the development server for decks: it serves deck files
// and assets, and runs one navigation session per connected browser window.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/livetemplate/wrap"
	"github.com/livetemplate/wrap/internal/animation"
	"github.com/livetemplate/wrap/internal/assets"
	"github.com/livetemplate/wrap/internal/bookmark"
	"github.com/livetemplate/wrap/internal/config"
	"github.com/livetemplate/wrap/internal/metrics"
)

// Options configures a Server. Zero fields get defaults.
type Options struct {
	Root     string
	Config   *config.Config
	Registry *animation.Registry
	Store    bookmark.Store
	Logger   *zap.Logger
	// Metrics is exposed at /metrics when non-nil.
	Metrics *metrics.Collector
}

// Server is the wrap development server.
type Server struct {
	rootDir  string
	config   *config.Config
	registry *animation.Registry
	store    bookmark.Store
	logger   *zap.Logger
	metrics  *metrics.Collector
	static   *Static
	router   chi.Router

	mu       sync.RWMutex
	sessions map[string]*Session // Connected sessions by id
	watcher  *Watcher            // File watcher for live reload

	cancel     context.CancelFunc
	httpServer *http.Server
}

// New creates a server for the deck directory in opts.Root.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = animation.Builtins()
	}
	var store bookmark.Store = bookmark.NewMemoryStore()
	if opts.Store != nil {
		store = opts.Store
	}

	var extra []string
	for _, name := range config.FileNames {
		extra = append(extra, "/"+name)
	}
	static, err := NewStatic(opts.Root, cfg.Deck.Index, cfg.Server.Ban, extra, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare static files: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		rootDir:  opts.Root,
		config:   cfg,
		registry: registry,
		store:    &instrumentedStore{next: store, metrics: opts.Metrics},
		logger:   logger,
		metrics:  opts.Metrics,
		static:   static,
		sessions: make(map[string]*Session),
		cancel:   cancel,
	}
	s.router = s.buildRouter(ctx)
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter(ctx context.Context) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(SecurityHeadersMiddleware())
	if rl := s.config.RateLimit; rl.Enabled() {
		mw, _ := RateLimitMiddleware(ctx, rl.RequestsPerSecond, rl.GetBurst(), rl.GetMaxTrackedIPs(), s.logger)
		r.Use(mw)
	}
	if s.config.Features.Compression {
		r.Use(compressionMiddleware)
	}

	r.Get("/ws", s.serveWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(CORSMiddleware(s.config.Server.CORSOrigins))
		r.Get(assets.ClientJSPath, s.serveAsset)
		r.Get(assets.ClientCSSPath, s.serveAsset)
		r.Get("/_wrap/qr", s.serveQR)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Handle("/*", s.static)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// serveAsset serves embedded client assets.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	var (
		data  []byte
		err   error
		ctype string
	)
	switch r.URL.Path {
	case assets.ClientJSPath:
		data, err = assets.GetClientJS()
		ctype = "application/javascript"
	case assets.ClientCSSPath:
		data, err = assets.GetClientCSS()
		ctype = "text/css; charset=utf-8"
	default:
		err = os.ErrNotExist
	}
	if err != nil {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", ctype)
	w.Write(data)
}

// LoadDeck parses a fresh copy of the deck at a URL path. Each session gets
// its own tree, so animations in one window never touch another.
func (s *Server) LoadDeck(page string) (*wrap.Deck, string, error) {
	url := s.static.Normalize(page)
	data, err := s.static.Read(url)
	if err != nil {
		return nil, url, wrap.NewDeckError(url, "deck not found").WithCause(err)
	}
	deck, err := wrap.Parse(bytes.NewReader(data), wrap.Options{
		Registry: s.registry,
		Source:   url,
		Markdown: s.config.Deck.Markdown,
	})
	if err != nil {
		return nil, url, err
	}
	for _, w := range deck.Warnings {
		s.logger.Debug("deck warning", zap.String("page", url), zap.String("warning", w))
	}
	return deck, url, nil
}

// readImage decodes an image file referenced from a deck.
func (s *Server) readImage(url string) (image.Image, error) {
	if strings.Contains(url, "://") {
		return nil, errors.New("remote images are not supported")
	}
	data, err := s.static.Read(strings.ToLower(path.Clean("/" + url)))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

func (s *Server) register(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SessionOpened()
	s.logger.Debug("session registered", zap.String("session", sess.id), zap.Int("active", n))
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SessionClosed()
	s.logger.Debug("session unregistered", zap.String("session", sess.id), zap.Int("active", n))
}

// Session finds a connected session by id.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// BroadcastReload tells every connected window to reload.
func (s *Server) BroadcastReload(filePath string) {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	if len(sessions) == 0 {
		return
	}
	s.logger.Info("broadcasting reload", zap.String("file", filePath), zap.Int("sessions", len(sessions)))
	for _, sess := range sessions {
		sess.send(serverMessage{Action: actionReload})
	}
}

// EnableWatch enables file watching for live reload.
func (s *Server) EnableWatch() error {
	watcher, err := NewWatcher(s.rootDir, func(filePath string) {
		s.static.Invalidate(filePath)
		s.metrics.Reloaded()
		s.BroadcastReload(filePath)
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	s.watcher = watcher
	s.watcher.Start()
	s.logger.Info("file watcher started", zap.String("root", s.rootDir))
	return nil
}

// StopWatch stops the file watcher if it's running.
func (s *Server) StopWatch() error {
	if s.watcher != nil {
		return s.watcher.Stop()
	}
	return nil
}

// ListenAndServe serves on the configured address until Shutdown. It
// returns immediately if Shutdown already ran.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections, closes every session and releases
// background work.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.Close()
	return err
}

// Close ends all sessions and stops background goroutines.
func (s *Server) Close() {
	s.mu.RLock()
	for _, sess := range s.sessions {
		sess.conn.Close()
	}
	s.mu.RUnlock()
	s.StopWatch()
	s.cancel()
	s.static.Close()
}

// instrumentedStore counts bookmark operations.
type instrumentedStore struct {
	next    bookmark.Store
	metrics *metrics.Collector
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := i.next.Get(ctx, key)
	i.metrics.BookmarkOp("get", err)
	return v, ok, err
}

func (i *instrumentedStore) Set(ctx context.Context, key, value string) error {
	err := i.next.Set(ctx, key, value)
	i.metrics.BookmarkOp("set", err)
	return err
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}
