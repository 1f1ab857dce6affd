package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swelljoe/clima/internal/weather"
)

// DefaultDelay is the quiet period after the last keystroke before a search is issued
const DefaultDelay = 500 * time.Millisecond

// ErrNoSuchResult is returned when selecting a result that is not listed
var ErrNoSuchResult = errors.New("no such search result")

// Panel is the view binding of one search view: its input field, result list and open state
type Panel interface {
	SetOpen(bool)
	Open() bool
	Focus()
	SetSearching(bool)
	ShowResults([]weather.Place)
	ShowNoResults()
	ClearResults()
	ClearInput()
}

type Geocoder interface {
	SearchPlaces(ctx context.Context, query string) ([]weather.Place, error)
}

type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Controller runs the debounced typeahead of one search view. At most one
// debounce timer is pending at a time; each keystroke replaces it.
type Controller struct {
	Delay     time.Duration
	AfterFunc AfterFunc

	name     string
	geocoder Geocoder
	panel    Panel
	navigate func(weather.Coordinate)
	log      zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	stop    context.CancelFunc
	timer   Timer
	seq     uint64
	cancel  context.CancelFunc
	results []weather.Place
}

// New binds a controller to panel. navigate receives the coordinate of a
// selected result. Pending work is abandoned once ctx is done.
func New(ctx context.Context, name string, geocoder Geocoder, panel Panel, navigate func(weather.Coordinate), log zerolog.Logger) *Controller {
	ctx, stop := context.WithCancel(ctx)
	return &Controller{
		Delay:     DefaultDelay,
		AfterFunc: realAfterFunc,
		name:      name,
		geocoder:  geocoder,
		panel:     panel,
		navigate:  navigate,
		log:       log.With().Str("search_view", name).Logger(),
		ctx:       ctx,
		stop:      stop,
	}
}

func (c *Controller) Name() string {
	return c.name
}

// Input handles a change of the input field text
func (c *Controller) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()

	if text == "" {
		c.results = nil
		c.panel.ClearResults()
		c.panel.SetSearching(false)
		return
	}

	c.panel.SetSearching(true)
	seq := c.seq
	c.timer = c.AfterFunc(c.Delay, func() { c.search(seq, text) })
}

// Toggle flips the open state of the view and focuses the input when opened
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	open := !c.panel.Open()
	c.panel.SetOpen(open)
	if open {
		c.panel.Focus()
	}
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel.Open()
}

// Close closes the view and clears its results
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = nil
	c.panel.SetOpen(false)
	c.panel.ClearResults()
}

// Select picks a listed result: the view closes, results and input are
// cleared, and navigate is called once with the result's coordinate.
func (c *Controller) Select(index int) (weather.Coordinate, error) {
	c.mu.Lock()
	if index < 0 || index >= len(c.results) {
		c.mu.Unlock()
		return weather.Coordinate{}, ErrNoSuchResult
	}

	place := c.results[index]
	c.reset()
	c.results = nil
	c.panel.SetOpen(false)
	c.panel.ClearResults()
	c.panel.ClearInput()
	c.panel.SetSearching(false)
	c.mu.Unlock()

	coord := place.Coordinate()
	c.log.Debug().Str("place", place.Name).Msg("search result selected")
	if c.navigate != nil {
		c.navigate(coord)
	}
	return coord, nil
}

// Stop abandons any pending timer or search in flight
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	c.stop()
}

// reset must be called with mu held
func (c *Controller) reset() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
}

func (c *Controller) search(seq uint64, query string) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.mu.Unlock()

	places, err := c.geocoder.SearchPlaces(ctx, query)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer keystroke owns the panel now
	if seq != c.seq {
		return
	}
	c.cancel = nil
	// Results land before the searching flag drops, so a settled panel is complete
	defer c.panel.SetSearching(false)

	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("geocoding search failed")
		c.results = nil
		c.panel.ClearResults()
		c.panel.SetOpen(false)
		return
	}

	if len(places) == 0 {
		c.results = nil
		c.panel.ShowNoResults()
		return
	}

	c.results = places
	c.panel.ShowResults(places)
}
