package view

import (
	"sync"

	"github.com/isdelr/marketfront/internal/catalog"
	"github.com/isdelr/marketfront/internal/models"
)

// Home is the browsing view's state: the full catalog plus the criteria
// narrowing it. The visible slice is recomputed through the pure pipeline
// on every input change, never patched incrementally.
type Home struct {
	mu       sync.Mutex
	products []models.Product
	criteria catalog.Criteria
	visible  []models.Product
}

// NewHome creates a browsing view starting from the given criteria.
func NewHome(criteria catalog.Criteria) *Home {
	return &Home{criteria: criteria}
}

// SetCatalog replaces the catalog snapshot.
func (h *Home) SetCatalog(products []models.Product) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.products = products
	h.recompute()
}

// SetSearch updates the search text.
func (h *Home) SetSearch(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.criteria.Search = text
	h.recompute()
}

// SetPriceRange updates the inclusive price bounds.
func (h *Home) SetPriceRange(min, max float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.criteria.PriceMin = min
	h.criteria.PriceMax = max
	h.recompute()
}

// SetSort updates the sort key.
func (h *Home) SetSort(key catalog.SortKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.criteria.Sort = key
	h.recompute()
}

// ResetFilters restores the default criteria with the given price ceiling.
func (h *Home) ResetFilters(priceMax float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.criteria = catalog.DefaultCriteria(priceMax)
	h.recompute()
}

// Visible returns the currently displayed sequence.
func (h *Home) Visible() []models.Product {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.Product, len(h.visible))
	copy(out, h.visible)
	return out
}

// Criteria returns the active filter criteria.
func (h *Home) Criteria() catalog.Criteria {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.criteria
}

func (h *Home) recompute() {
	h.visible = h.criteria.Apply(h.products)
}
