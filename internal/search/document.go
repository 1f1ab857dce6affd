package search

import "sync"

// Document holds every search view of one page
type Document struct {
	mu    sync.Mutex
	views []*Controller
}

func (d *Document) Add(c *Controller) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.views = append(d.views, c)
}

// View returns the controller registered under name
func (d *Document) View(name string) (*Controller, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.views {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Click handles a click anywhere on the page. target names the search view
// containing the click, or is empty. Clicks on a toggler are left to Toggle.
func (d *Document) Click(target string, onToggler bool) {
	if onToggler {
		return
	}

	d.mu.Lock()
	views := append([]*Controller(nil), d.views...)
	d.mu.Unlock()

	for _, c := range views {
		if c.Name() != target && c.IsOpen() {
			c.Close()
		}
	}
}

// Stop stops every registered controller
func (d *Document) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.views {
		c.Stop()
	}
}
