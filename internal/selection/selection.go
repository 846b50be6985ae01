// Package selection tracks which brief is active and keeps it in sync with
// the shareable location fragment.
package selection

import (
	"strings"
	"sync"

	"github.com/bobmcallan/brief-portal/internal/models"
)

// Page is a top-level view.
type Page string

const (
	PageHome  Page = "home"
	PageAbout Page = "about"
)

// Location is the address-bar fragment holding the selected brief id.
type Location interface {
	Fragment() string
	SetFragment(id string)
	// Subscribe registers fn for fragment changes made outside the
	// controller and returns a function that removes it.
	Subscribe(fn func(fragment string)) (unsubscribe func())
}

// Scroller scrolls the view back to the top.
type Scroller interface {
	ScrollToTop()
}

// Controller holds the selected brief id and current page.
type Controller struct {
	loc      Location
	scroller Scroller

	mu       sync.RWMutex
	known    map[string]bool
	selected string
	page     Page
	unsub    func()
}

// New creates a controller. scroller may be nil.
func New(loc Location, scroller Scroller) *Controller {
	return &Controller{
		loc:      loc,
		scroller: scroller,
		known:    map[string]bool{},
		page:     PageHome,
	}
}

// Init adopts the loaded collection. A fragment naming a known brief wins;
// otherwise the first (newest) brief is selected if nothing is selected yet.
func (c *Controller) Init(briefs []models.Brief) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.known = make(map[string]bool, len(briefs))
	for _, b := range briefs {
		c.known[b.ID] = true
	}

	if id := normalize(c.loc.Fragment()); id != "" && c.known[id] {
		c.selected = id
		return
	}
	if c.selected == "" && len(briefs) > 0 {
		c.selected = briefs[0].ID
	}
}

// Select makes id active, writes it to the fragment and scrolls to top.
// Unknown ids are ignored and reported as false.
func (c *Controller) Select(id string) bool {
	id = normalize(id)
	c.mu.Lock()
	if !c.known[id] {
		c.mu.Unlock()
		return false
	}
	c.selected = id
	c.mu.Unlock()

	c.loc.SetFragment(id)
	c.scrollToTop()
	return true
}

// Attach starts following out-of-band fragment changes.
func (c *Controller) Attach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsub != nil {
		return
	}
	c.unsub = c.loc.Subscribe(c.onFragment)
}

// Detach stops following fragment changes.
func (c *Controller) Detach() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (c *Controller) onFragment(fragment string) {
	id := normalize(fragment)
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" && c.known[id] {
		c.selected = id
	}
}

// Navigate switches the top-level page. The selection is left alone.
func (c *Controller) Navigate(p Page) {
	c.mu.Lock()
	c.page = p
	c.mu.Unlock()
	c.scrollToTop()
}

// SelectedID returns the active brief id, or "" when nothing is selected.
func (c *Controller) SelectedID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Page returns the current top-level view.
func (c *Controller) Page() Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Selected returns the active brief from briefs.
func (c *Controller) Selected(briefs []models.Brief) (models.Brief, bool) {
	id := c.SelectedID()
	for _, b := range briefs {
		if b.ID == id {
			return b, true
		}
	}
	return models.Brief{}, false
}

func (c *Controller) scrollToTop() {
	if c.scroller != nil {
		c.scroller.ScrollToTop()
	}
}

func normalize(fragment string) string {
	return strings.TrimPrefix(strings.TrimSpace(fragment), "#")
}
