package handlers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swelljoe/clima/internal/dashboard"
	"github.com/swelljoe/clima/internal/search"
	"github.com/swelljoe/clima/internal/weather"
)

const sessionCookie = "clima_session"

// Search view names, matching the data-view attributes in the templates
const (
	HeaderSearch = "header"
	LeftSearch   = "left"
)

// Session is the server side of one open page: its dashboard and both search views
type Session struct {
	ID          string
	View        *PageView
	Coordinator *dashboard.Coordinator
	Search      *search.Document
	Panels      map[string]*SearchPanel

	ctx      context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	rendered atomic.Bool
	lastSeen atomic.Int64
}

// Render runs one render cycle on the session's own context, so a cycle
// started by a request outlives that request if it has to.
func (s *Session) Render(route dashboard.Route) error {
	s.rendered.Store(true)
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	return s.Coordinator.Render(ctx, route)
}

// Rendered reports whether any render cycle was started
func (s *Session) Rendered() bool {
	return s.rendered.Load()
}

func (s *Session) Panel(name string) (*search.Controller, *SearchPanel, bool) {
	ctrl, ok := s.Search.View(name)
	if !ok {
		return nil, nil, false
	}
	return ctrl, s.Panels[name], true
}

func (s *Session) close() {
	s.Search.Stop()
	s.Coordinator.ShowError()
	s.cancel()
}

// SessionOptions configures the per-session components
type SessionOptions struct {
	IconBase       string
	SearchDebounce time.Duration
	RenderTimeout  time.Duration
}

// Sessions keys sessions by cookie
type Sessions struct {
	source   dashboard.Source
	geocoder search.Geocoder
	opts     SessionOptions
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessions(source dashboard.Source, geocoder search.Geocoder, opts SessionOptions, log zerolog.Logger) *Sessions {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = search.DefaultDelay
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 30 * time.Second
	}
	return &Sessions{
		source:   source,
		geocoder: geocoder,
		opts:     opts,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session named by the request cookie, starting a new one
// and setting the cookie when there is none.
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		sess, ok := s.sessions[c.Value]
		s.mu.Unlock()
		if ok {
			sess.lastSeen.Store(s.now().UnixNano())
			return sess
		}
	}

	sess := s.newSession(uuid.NewString())
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Debug().Str("session", sess.ID).Msg("session started")
	return sess
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than maxIdle and returns how many were closed
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle).UnixNano()

	s.mu.Lock()
	var idle []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		sess.close()
	}
	return len(idle)
}

// Close closes every session
func (s *Sessions) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.close()
	}
}

func (s *Sessions) newSession(id string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	log := s.log.With().Str("session", id).Logger()

	view := &PageView{}
	sess := &Session{
		ID:          id,
		View:        view,
		Coordinator: dashboard.New(s.source, view, s.opts.IconBase, log),
		Search:      &search.Document{},
		Panels:      make(map[string]*SearchPanel),
		ctx:         ctx,
		cancel:      cancel,
		timeout:     s.opts.RenderTimeout,
	}
	sess.lastSeen.Store(s.now().UnixNano())

	navigate := func(c weather.Coordinate) {
		// Failures are already on the error panel
		_ = sess.Render(dashboard.Route{Coordinate: c})
	}

	for _, name := range []string{HeaderSearch, LeftSearch} {
		panel := NewSearchPanel(name)
		ctrl := search.New(ctx, name, s.geocoder, panel, navigate, log)
		ctrl.Delay = s.opts.SearchDebounce
		sess.Panels[name] = panel
		sess.Search.Add(ctrl)
	}
	return sess
}
