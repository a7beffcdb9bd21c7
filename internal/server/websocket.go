package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/livetemplate/wrap"
	"github.com/livetemplate/wrap/internal/animation"
	"github.com/livetemplate/wrap/internal/bookmark"
	"github.com/livetemplate/wrap/internal/loop"
	"github.com/livetemplate/wrap/internal/mirror"
	"github.com/livetemplate/wrap/internal/nav"
	"github.com/livetemplate/wrap/internal/security"
)

// Server to client actions.
const (
	actionSession    = "session"
	actionRender     = "render"
	actionReplaceURL = "replace-url"
	actionOpenChild  = "open-child"
	actionPreview    = "preview"
	actionReload     = "reload"
)

const writeWait = 10 * time.Second

// clientMessage is an input event forwarded by the browser.
type clientMessage struct {
	Type     string  `json:"type"`
	Key      string  `json:"key,omitempty"`
	Shift    bool    `json:"shift,omitempty"`
	Ctrl     bool    `json:"ctrl,omitempty"`
	Alt      bool    `json:"alt,omitempty"`
	Meta     bool    `json:"meta,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Href     string  `json:"href,omitempty"`
	Event    string  `json:"event,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// serverMessage is pushed to the browser.
type serverMessage struct {
	Action  string `json:"action"`
	Session string `json:"session,omitempty"`
	ID      *int   `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	HTML    string `json:"html,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Session is one browser window viewing a deck. All navigation runs on the
// session's event loop; the connection's read goroutine only posts to it.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	loop   *loop.Loop
	nav    *nav.Navigator
	deck   *wrap.Deck
	page   string
	addr   string
	opener *Session
	logger *zap.Logger

	writeMu sync.Mutex

	// Owned by the loop.
	rendered   bool
	lastID     int
	lastHTML   string
	urlDirty   bool
	previewing bool
}

// serveWebSocket opens a deck session.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deck, page, err := s.LoadDeck(q.Get("page"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.Is(err, security.ErrOutsideRoot) {
			status = http.StatusNotFound
		}
		s.logger.Warn("cannot open deck", zap.String("page", page), zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	addr := q.Get("addr")
	if addr == "" {
		addr = page
	}
	sess := s.newSession(conn, deck, page, addr)

	if openerID := q.Get("opener"); openerID != "" {
		if opener, ok := s.Session(openerID); ok {
			sess.opener = opener
			opener.nav.Mirror().Attach(sess)
		}
	}

	s.register(sess)
	defer s.unregister(sess)

	sess.run(r.Context())
}

func (s *Server) newSession(conn *websocket.Conn, deck *wrap.Deck, page, addr string) *Session {
	id := uuid.NewString()
	sess := &Session{
		id:     id,
		server: s,
		conn:   conn,
		deck:   deck,
		page:   page,
		logger: s.logger.With(zap.String("session", id), zap.String("page", page)),
	}
	if stripped, ok := bookmark.StripTicket(addr); ok {
		addr = stripped
		sess.urlDirty = true
	}
	sess.addr = addr
	sess.loop = loop.New(loop.WithAfterEach(sess.push))
	sess.nav = nav.New(nav.Config{
		Deck:     deck,
		Registry: s.registry,
		Env: animation.Env{
			Scheduler: sess.loop,
			LoadImage: sess.loadImage,
			Logger:    sess.logger,
		},
		Store:   s.store,
		Address: addr,
		Logger:  sess.logger,
		Mirror:  &mirror.Mirror{},
		OnShow: func(slide *wrap.Slide) {
			sess.urlDirty = true
			s.metrics.SlideShown(slide.Kind.String())
		},
	})
	return sess
}

// ID is the session identifier a child window uses to name its opener.
func (sess *Session) ID() string { return sess.id }

func (sess *Session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sess.loop.Run(ctx)

	sess.send(serverMessage{Action: actionSession, Session: sess.id})
	sess.loop.Post(func() { sess.nav.Start(ctx) })

	sess.readLoop()

	sess.loop.Call(sess.nav.Close)
	sess.loop.Close()
	if sess.opener != nil {
		sess.opener.nav.Mirror().Detach(sess)
	}
	sess.logger.Debug("session closed")
}

func (sess *Session) readLoop() {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Debug("unexpected close", zap.Error(err))
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.logger.Warn("failed to parse message", zap.Error(err))
			continue
		}
		if !sess.loop.Post(func() { sess.handle(msg) }) {
			return
		}
	}
}

// handle runs on the loop.
func (sess *Session) handle(msg clientMessage) {
	switch msg.Type {
	case "key":
		sess.server.metrics.KeyReceived()
		sess.previewing = false
		cmd := sess.nav.HandleKeyEvent(nav.KeyEvent{
			Key:   msg.Key,
			Shift: msg.Shift,
			Ctrl:  msg.Ctrl,
			Alt:   msg.Alt,
			Meta:  msg.Meta,
		})
		switch cmd {
		case nav.CommandOpenChild:
			sess.send(serverMessage{Action: actionOpenChild, URL: sess.childURL()})
		case nav.CommandPreview:
			sess.previewing = true
			html, err := sess.deck.RenderSlides()
			if err != nil {
				sess.logger.Warn("preview render failed", zap.Error(err))
				return
			}
			sess.send(serverMessage{Action: actionPreview, HTML: html})
		}
	case "grab":
		sess.nav.Grab(nav.Point{X: msg.X, Y: msg.Y})
	case "release":
		sess.previewing = false
		sess.nav.Release(nav.Point{X: msg.X, Y: msg.Y})
	case "jump":
		sess.previewing = false
		sess.nav.Jump(msg.Href)
	case "media":
		switch msg.Event {
		case "ended":
			sess.nav.Notify(animation.Event{Type: animation.MediaEnded})
		case "loaded":
			sess.nav.Notify(animation.Event{Type: animation.MediaLoaded, Duration: msg.Duration})
		}
	default:
		sess.logger.Debug("unknown message type", zap.String("type", msg.Type))
	}
}

// push sends whatever changed after a loop callback.
func (sess *Session) push() {
	if sess.previewing {
		return
	}
	cur := sess.nav.Current()
	if sess.urlDirty && cur != nil {
		sess.urlDirty = false
		sess.send(serverMessage{Action: actionReplaceURL, URL: bookmark.Permalink(sess.addr, cur.ID)})
	}
	if cur == nil {
		if !sess.rendered {
			sess.rendered = true
			sess.send(serverMessage{Action: actionRender})
		}
		return
	}
	html, err := wrap.RenderSlide(cur)
	if err != nil {
		sess.logger.Warn("render failed", zap.String("slide", cur.Name), zap.Error(err))
		return
	}
	if sess.rendered && cur.ID == sess.lastID && html == sess.lastHTML {
		return
	}
	sess.rendered = true
	sess.lastID, sess.lastHTML = cur.ID, html
	id := cur.ID
	sess.send(serverMessage{Action: actionRender, ID: &id, Name: cur.Name, HTML: html})
}

// childURL is the address a mirrored child window opens.
func (sess *Session) childURL() string {
	u := bookmark.Canonical(sess.addr) + "?opener=" + sess.id
	if cur := sess.nav.Current(); cur != nil {
		u += "#" + strconv.Itoa(cur.ID)
	}
	return u
}

// loadImage reads an image referenced by the deck off the loop and hands
// the result back on it.
func (sess *Session) loadImage(src string, done func(image.Image, error)) {
	ref := src
	if !strings.HasPrefix(src, "/") && !strings.Contains(src, "://") {
		ref = path.Join(path.Dir(sess.page), src)
	}
	go func() {
		img, err := sess.server.readImage(ref)
		if err != nil {
			sess.logger.Debug("image load failed", zap.String("src", src), zap.Error(err))
		}
		sess.loop.Post(func() { done(img, err) })
	}()
}

// DoKey replays a key from the opener window.
func (sess *Session) DoKey(key string, shift, ctrl bool) {
	sess.loop.Post(func() {
		sess.previewing = false
		sess.nav.DoKey(key, shift, ctrl)
	})
}

// Closed reports whether the session has ended.
func (sess *Session) Closed() bool {
	return sess.loop.Closed()
}

func (sess *Session) send(msg serverMessage) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteJSON(msg); err != nil {
		sess.logger.Debug("failed to send message", zap.String("action", msg.Action), zap.Error(err))
	}
}
