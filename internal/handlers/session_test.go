package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSessionsReuseCookie(t *testing.T) {
	s := NewSessions(&fakeService{}, &fakeService{}, SessionOptions{}, zerolog.Nop())

	w := httptest.NewRecorder()
	first := s.Get(w, httptest.NewRequest("GET", "/", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != first.ID {
		t.Fatalf("expected a cookie carrying the session id, got %v", cookies)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	if again := s.Get(w, req); again != first {
		t.Errorf("expected the same session for the same cookie")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Errorf("expected no new cookie for a known session")
	}

	// Unknown ids start a fresh session
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "stale"})
	if other := s.Get(httptest.NewRecorder(), req); other == first || other.ID == "stale" {
		t.Errorf("expected a new session for an unknown id")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", s.Len())
	}
}

func TestSessionsSweep(t *testing.T) {
	s := NewSessions(&fakeService{}, &fakeService{}, SessionOptions{}, zerolog.Nop())
	now := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	idle := s.Get(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	now = now.Add(20 * time.Minute)
	active := s.Get(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	now = now.Add(15 * time.Minute)

	if n := s.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected 1 idle session closed, got %d", n)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 open session, got %d", s.Len())
	}
	if idle.ctx.Err() == nil {
		t.Errorf("expected the idle session to be cancelled")
	}
	if active.ctx.Err() != nil {
		t.Errorf("expected the active session to stay open")
	}
}
