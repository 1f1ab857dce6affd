package handlers

import (
	"embed"
	"errors"
	"html/template"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/swelljoe/clima/internal/dashboard"
	"github.com/swelljoe/clima/internal/search"
	"github.com/swelljoe/clima/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

// Database defines the interface for database operations needed by handlers
type Database interface {
	Ping() error
}

// WeatherService is everything a session fetches: dashboard data and place search
type WeatherService interface {
	dashboard.Source
	search.Geocoder
}

// Options configures the HTTP surface
type Options struct {
	DefaultLocation weather.Coordinate
	StaticDir       string
	SessionOptions
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	db        Database
	sessions  *Sessions
	templates *template.Template
	opts      Options
	log       zerolog.Logger
}

// New creates a new Handlers instance. database may be nil.
func New(database Database, service WeatherService, opts Options, log zerolog.Logger) *Handlers {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"placeLabel": placeLabel,
	}).ParseFS(templateFS, "templates/*.html"))

	return &Handlers{
		db:        database,
		sessions:  NewSessions(service, service, opts.SessionOptions, log),
		templates: tmpl,
		opts:      opts,
		log:       log,
	}
}

// Sessions exposes the session store for sweeping and shutdown
func (h *Handlers) Sessions() *Sessions {
	return h.sessions
}

// Routes registers every handler on a new mux
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	staticDir := h.opts.StaticDir
	if staticDir == "" {
		staticDir = "static"
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /weather", h.HandleWeather)
	mux.HandleFunc("GET /current-location", h.HandleCurrentLocation)
	mux.HandleFunc("GET /search", h.HandleSearch)
	mux.HandleFunc("POST /search/toggle", h.HandleToggle)
	mux.HandleFunc("POST /search/select", h.HandleSelect)
	mux.HandleFunc("POST /click", h.HandleClick)
	mux.HandleFunc("/", h.HandleIndex)
	return mux
}

type pageData struct {
	Page   PageState
	Header PanelState
	Left   PanelState
}

func (h *Handlers) data(sess *Session) pageData {
	return pageData{
		Page:   sess.View.Snapshot(),
		Header: sess.Panels[HeaderSearch].Snapshot(),
		Left:   sess.Panels[LeftSearch].Snapshot(),
	}
}

// render writes the named fragment for htmx requests and the whole page otherwise
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, fragment string, data any) {
	name := "index.html"
	if r.Header.Get("HX-Request") == "true" {
		name = fragment
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("template execution failed")
	}
}

// HandleIndex handles the main page and every unknown path
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.handleNotFound(w, r)
		return
	}

	sess := h.sessions.Get(w, r)
	q := r.URL.Query()

	status := http.StatusOK
	if q.Has("lat") || q.Has("lon") {
		coord, err := parseCoordinate(q.Get("lat"), q.Get("lon"))
		if err != nil {
			h.log.Warn().Err(err).Str("query", r.URL.RawQuery).Msg("malformed route")
			sess.Coordinator.ShowError()
			status = http.StatusBadRequest
		} else {
			_ = sess.Render(dashboard.Route{
				Coordinate:      coord,
				CurrentLocation: q.Get("route") == "current-location",
			})
		}
	} else if !sess.Rendered() {
		_ = sess.Render(dashboard.Route{Coordinate: h.opts.DefaultLocation})
	}

	h.render(w, r, status, "index.html", h.data(sess))
}

func (h *Handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	// Asset lookups such as /favicon.ico must not touch the dashboard
	if strings.Contains(path.Base(r.URL.Path), ".") {
		http.NotFound(w, r)
		return
	}

	sess := h.sessions.Get(w, r)
	sess.Coordinator.ShowError()
	h.render(w, r, http.StatusNotFound, "dashboard", h.data(sess))
}

// HandleHealth handles health check endpoint
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
		}
	} else {
		status = "no_database"
	}

	w.Write([]byte(`{"status":"` + status + `"}`))
}

// HandleWeather renders the dashboard for a searched or linked coordinate
func (h *Handlers) HandleWeather(w http.ResponseWriter, r *http.Request) {
	h.handleRoute(w, r, false)
}

// HandleCurrentLocation renders the dashboard for the browser's position.
// Without a coordinate, geolocation was denied and the default location is used.
func (h *Handlers) HandleCurrentLocation(w http.ResponseWriter, r *http.Request) {
	h.handleRoute(w, r, true)
}

func (h *Handlers) handleRoute(w http.ResponseWriter, r *http.Request, currentLocation bool) {
	sess := h.sessions.Get(w, r)
	q := r.URL.Query()

	var coord weather.Coordinate
	switch {
	case currentLocation && !q.Has("lat") && !q.Has("lon"):
		coord = h.opts.DefaultLocation
	default:
		var err error
		coord, err = parseCoordinate(q.Get("lat"), q.Get("lon"))
		if err != nil {
			h.log.Warn().Err(err).Str("query", r.URL.RawQuery).Msg("malformed route")
			sess.Coordinator.ShowError()
			h.render(w, r, http.StatusBadRequest, "dashboard", h.data(sess))
			return
		}
	}

	err := sess.Render(dashboard.Route{Coordinate: coord, CurrentLocation: currentLocation})
	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		w.WriteHeader(http.StatusNoContent)
	case err != nil:
		h.render(w, r, http.StatusBadGateway, "dashboard", h.data(sess))
	default:
		h.render(w, r, http.StatusOK, "dashboard", h.data(sess))
	}
}

// HandleSearch feeds the typeahead of one search view and waits for it to settle
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	ctrl, panel, ok := sess.Panel(r.URL.Query().Get("view"))
	if !ok {
		http.Error(w, "Unknown search view", http.StatusBadRequest)
		return
	}

	text := r.URL.Query().Get("q")
	panel.SetInput(text)
	ctrl.Input(text)
	state := panel.WaitSettled(r.Context())

	if r.Header.Get("HX-Request") == "true" {
		h.render(w, r, http.StatusOK, "search_results", state)
		return
	}
	h.render(w, r, http.StatusOK, "index.html", h.data(sess))
}

// HandleToggle opens or closes one search view
func (h *Handlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	ctrl, panel, ok := sess.Panel(r.FormValue("view"))
	if !ok {
		http.Error(w, "Unknown search view", http.StatusBadRequest)
		return
	}

	ctrl.Toggle()
	h.renderPanel(w, r, panel)
}

// HandleSelect picks a search result and renders the dashboard for it
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	ctrl, _, ok := sess.Panel(r.FormValue("view"))
	if !ok {
		http.Error(w, "Unknown search view", http.StatusBadRequest)
		return
	}

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "Invalid result index", http.StatusBadRequest)
		return
	}

	if _, err := ctrl.Select(index); err != nil {
		http.Error(w, "Unknown search result", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleClick applies a page click to the search views: every open view
// other than the one clicked in closes.
func (h *Handlers) HandleClick(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	toggler, _ := strconv.ParseBool(r.FormValue("toggler"))
	sess.Search.Click(r.FormValue("view"), toggler)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) renderPanel(w http.ResponseWriter, r *http.Request, panel *SearchPanel) {
	if r.Header.Get("HX-Request") == "true" {
		h.render(w, r, http.StatusOK, "search_panel", panel.Snapshot())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseCoordinate(latStr, lonStr string) (weather.Coordinate, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return weather.Coordinate{}, errors.New("invalid latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return weather.Coordinate{}, errors.New("invalid longitude")
	}
	return weather.Coordinate{Lat: lat, Lon: lon}, nil
}

func placeLabel(p weather.Place) string {
	parts := []string{p.Name}
	if p.State != "" {
		parts = append(parts, p.State)
	}
	if p.Country != "" {
		parts = append(parts, p.Country)
	}
	return strings.Join(parts, ", ")
}
