package catalog

import (
	"sort"
	"strings"

	"github.com/isdelr/marketfront/internal/models"
)

// SortKey selects the ordering of the displayed catalog.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price-low"
	SortPriceDesc SortKey = "price-high"
)

// Criteria is the combination of search text, price bounds, and sort key
// that determines the displayed subset and order.
type Criteria struct {
	Search   string
	PriceMin float64
	PriceMax float64
	Sort     SortKey
}

// DefaultCriteria returns the criteria a fresh browsing view starts with.
func DefaultCriteria(priceMax float64) Criteria {
	return Criteria{PriceMin: 0, PriceMax: priceMax, Sort: SortNewest}
}

// Apply derives the display sequence from the full catalog. It is pure:
// the input is never mutated and identical inputs yield identical output.
//
// Products are retained when the name contains the search text
// (case-insensitive, empty matches all) and the price lies within
// [PriceMin, PriceMax] inclusive. Price sorts are stable, so equal prices
// keep their original relative order. "Newest" orders by creation time
// descending with ID descending as the tie-break, which stays
// deterministic even when the catalog arrives unsorted.
func (c Criteria) Apply(products []models.Product) []models.Product {
	needle := strings.ToLower(c.Search)

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if p.Price < c.PriceMin || p.Price > c.PriceMax {
			continue
		}
		out = append(out, p)
	}

	switch c.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	default: // SortNewest
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
	}
	return out
}
