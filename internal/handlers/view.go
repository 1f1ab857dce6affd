package handlers

import (
	"context"
	"sync"

	"github.com/swelljoe/clima/internal/dashboard"
	"github.com/swelljoe/clima/internal/weather"
)

// PageState is a snapshot of the dashboard render targets
type PageState struct {
	Loading                 bool
	Error                   bool
	FadeIn                  bool
	CurrentLocationDisabled bool

	Current      *dashboard.CurrentCard
	LocationName string
	Highlights   *dashboard.Highlights
	Hourly       []dashboard.HourlyCard
	Wind         []dashboard.WindCard
	Days         []dashboard.DayCard
}

// PageView holds the dashboard sections of one browser session
type PageView struct {
	mu    sync.Mutex
	state PageState
}

func (v *PageView) Snapshot() PageState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *PageView) SetLoading(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Loading = b
}

func (v *PageView) SetError(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Error = b
}

func (v *PageView) SetFadeIn(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.FadeIn = b
}

func (v *PageView) SetCurrentLocationDisabled(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.CurrentLocationDisabled = b
}

func (v *PageView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Current = nil
	v.state.LocationName = ""
	v.state.Highlights = nil
	v.state.Hourly = nil
	v.state.Wind = nil
	v.state.Days = nil
}

func (v *PageView) RenderCurrent(c dashboard.CurrentCard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Current = &c
}

func (v *PageView) SetLocationName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.LocationName = name
}

func (v *PageView) RenderHighlights(h dashboard.Highlights) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Highlights = &h
}

func (v *PageView) RenderHourly(temps []dashboard.HourlyCard, winds []dashboard.WindCard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Hourly = temps
	v.state.Wind = winds
}

func (v *PageView) RenderForecast(days []dashboard.DayCard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Days = days
}

// PanelState is a snapshot of one search view
type PanelState struct {
	Name      string
	Open      bool
	Autofocus bool
	Searching bool
	Input     string
	Results   []weather.Place
	NoResults bool
}

// SearchPanel holds one search view. Every change wakes WaitSettled callers.
type SearchPanel struct {
	mu      sync.Mutex
	state   PanelState
	changed chan struct{}
}

func NewSearchPanel(name string) *SearchPanel {
	return &SearchPanel{
		state:   PanelState{Name: name},
		changed: make(chan struct{}),
	}
}

func (p *SearchPanel) Snapshot() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// WaitSettled blocks until no search is pending on the panel or ctx is done
func (p *SearchPanel) WaitSettled(ctx context.Context) PanelState {
	for {
		p.mu.Lock()
		if !p.state.Searching {
			s := p.state
			p.mu.Unlock()
			return s
		}
		ch := p.changed
		p.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return p.Snapshot()
		}
	}
}

func (p *SearchPanel) update(fn func(*PanelState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.state)
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *SearchPanel) SetInput(text string) {
	p.update(func(s *PanelState) { s.Input = text })
}

func (p *SearchPanel) SetOpen(b bool) {
	p.update(func(s *PanelState) {
		s.Open = b
		if !b {
			s.Autofocus = false
		}
	})
}

func (p *SearchPanel) Open() bool {
	return p.Snapshot().Open
}

func (p *SearchPanel) Focus() {
	p.update(func(s *PanelState) { s.Autofocus = true })
}

func (p *SearchPanel) SetSearching(b bool) {
	p.update(func(s *PanelState) { s.Searching = b })
}

func (p *SearchPanel) ShowResults(places []weather.Place) {
	p.update(func(s *PanelState) {
		s.Results = places
		s.NoResults = false
	})
}

func (p *SearchPanel) ShowNoResults() {
	p.update(func(s *PanelState) {
		s.Results = nil
		s.NoResults = true
	})
}

func (p *SearchPanel) ClearResults() {
	p.update(func(s *PanelState) {
		s.Results = nil
		s.NoResults = false
	})
}

func (p *SearchPanel) ClearInput() {
	p.update(func(s *PanelState) { s.Input = "" })
}
