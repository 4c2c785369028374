package view

import (
	"sync"

	"github.com/isdelr/marketfront/internal/models"
)

// Overlay is the transient detail view over the browsing list. It reads
// only from data already in memory; opening never fetches. At most one
// product is on display at a time, and closing leaves the underlying view
// untouched.
type Overlay struct {
	mu      sync.Mutex
	current *models.Product
}

// Open puts the product on display, replacing whatever was shown before.
func (o *Overlay) Open(p models.Product) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = &p
}

// Close dismisses the overlay. Close control, backdrop, and escape key all
// funnel here. Closing an already-closed overlay is a no-op.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}

// Current returns the product on display, if any.
func (o *Overlay) Current() (models.Product, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return models.Product{}, false
	}
	return *o.current, true
}
