package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/swelljoe/clima/internal/weather"
)

// ErrSuperseded is returned by a render cycle that a newer one replaced
var ErrSuperseded = errors.New("render superseded")

// Source provides the four payloads of one render cycle
type Source interface {
	CurrentWeather(ctx context.Context, c weather.Coordinate) (*weather.CurrentWeather, error)
	ReverseGeocode(ctx context.Context, c weather.Coordinate) ([]weather.Place, error)
	AirPollution(ctx context.Context, c weather.Coordinate) (*weather.AirPollution, error)
	Forecast(ctx context.Context, c weather.Coordinate) (*weather.Forecast, error)
}

// Route is the location a render cycle was requested for
type Route struct {
	Coordinate weather.Coordinate
	// CurrentLocation is set when the coordinate came from device geolocation
	CurrentLocation bool
}

var tracer = otel.Tracer("clima-dashboard")

// Coordinator drives one View. Only the most recent render cycle may write
// to it; older cycles are cancelled and their late results dropped.
type Coordinator struct {
	source   Source
	view     View
	iconBase string
	log      zerolog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func New(source Source, view View, iconBase string, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		source:   source,
		view:     view,
		iconBase: iconBase,
		log:      log,
	}
}

// Render runs a full render cycle for route and blocks until it settles.
// Any failure leaves the view in the error state. The returned error is for
// logging only; ErrSuperseded means a newer cycle owns the view.
func (c *Coordinator) Render(ctx context.Context, route Route) error {
	ctx, gen := c.begin(ctx)
	defer c.end(gen)

	ctx, span := tracer.Start(ctx, "render", trace.WithAttributes(
		attribute.Float64("lat", route.Coordinate.Lat),
		attribute.Float64("lon", route.Coordinate.Lon),
		attribute.Bool("current_location", route.CurrentLocation),
	))
	defer span.End()

	c.apply(gen, func(v View) {
		v.SetLoading(true)
		v.SetFadeIn(false)
		v.SetError(false)
		v.Clear()
		v.SetCurrentLocationDisabled(route.CurrentLocation)
	})

	err := c.run(ctx, gen, route.Coordinate)
	if err == nil {
		if c.apply(gen, func(v View) {
			v.SetLoading(false)
			v.SetFadeIn(true)
		}) {
			return nil
		}
		err = ErrSuperseded
	}

	if errors.Is(err, ErrSuperseded) || !c.fail(gen) {
		c.log.Debug().Uint64("generation", gen).Msg("render superseded")
		return ErrSuperseded
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.log.Error().Err(err).
		Float64("lat", route.Coordinate.Lat).
		Float64("lon", route.Coordinate.Lon).
		Msg("render failed")
	return err
}

// ShowError cancels any render in flight and shows the error panel
func (c *Coordinator) ShowError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.showError()
}

func (c *Coordinator) run(ctx context.Context, gen uint64, coord weather.Coordinate) error {
	cw, err := c.source.CurrentWeather(ctx, coord)
	if err != nil {
		return err
	}

	card, err := currentCard(cw, c.iconBase)
	if err != nil {
		return err
	}
	if !c.apply(gen, func(v View) { v.RenderCurrent(card) }) {
		return ErrSuperseded
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		places, err := c.source.ReverseGeocode(gctx, coord)
		if err != nil {
			return err
		}
		name, err := locationName(places)
		if err != nil {
			return err
		}
		return c.write(gen, func(v View) { v.SetLocationName(name) })
	})

	g.Go(func() error {
		ap, err := c.source.AirPollution(gctx, coord)
		if err != nil {
			return err
		}
		h, err := highlights(cw, ap)
		if err != nil {
			return err
		}
		return c.write(gen, func(v View) { v.RenderHighlights(h) })
	})

	g.Go(func() error {
		fc, err := c.source.Forecast(gctx, coord)
		if err != nil {
			return err
		}
		temps, winds, err := hourly(fc, c.iconBase)
		if err != nil {
			return err
		}
		dayCards, err := days(fc, c.iconBase)
		if err != nil {
			return err
		}
		return c.write(gen, func(v View) {
			v.RenderHourly(temps, winds)
			v.RenderForecast(dayCards)
		})
	})

	return g.Wait()
}

func (c *Coordinator) begin(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	ctx, c.cancel = context.WithCancel(ctx)
	return ctx, c.generation
}

func (c *Coordinator) end(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen == c.generation && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// apply runs fn against the view if gen is still the current cycle
func (c *Coordinator) apply(gen uint64, fn func(View)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return false
	}
	fn(c.view)
	return true
}

func (c *Coordinator) write(gen uint64, fn func(View)) error {
	if !c.apply(gen, fn) {
		return ErrSuperseded
	}
	return nil
}

func (c *Coordinator) fail(gen uint64) bool {
	return c.apply(gen, func(View) { c.showError() })
}

// showError must be called with mu held
func (c *Coordinator) showError() {
	c.view.SetLoading(false)
	c.view.SetFadeIn(false)
	c.view.Clear()
	c.view.SetError(true)
}
