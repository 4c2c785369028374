package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/isdelr/marketfront/internal/api"
	"github.com/isdelr/marketfront/internal/models"
	"github.com/rs/zerolog/log"
)

// Loader fetches the product catalog in bulk. The catalog is a read-mostly
// snapshot: it is only ever replaced wholesale, never mutated in place.
type Loader struct {
	api *api.Client

	mu       sync.Mutex
	products []models.Product
	loading  bool
	gen      uint64
}

// NewLoader creates a catalog loader over the given API client.
func NewLoader(apiClient *api.Client) *Loader {
	return &Loader{api: apiClient}
}

// LoadAll fetches every product. On failure the catalog is left empty and
// the error is returned without retry. A response that lands after a newer
// load started is discarded rather than applied.
func (l *Loader) LoadAll(ctx context.Context) ([]models.Product, error) {
	return l.load(ctx, "/products/all")
}

// LoadForUser fetches one seller's products with the same contract as
// LoadAll.
func (l *Loader) LoadForUser(ctx context.Context, userID string) ([]models.Product, error) {
	return l.load(ctx, "/products/user/"+userID)
}

func (l *Loader) load(ctx context.Context, path string) ([]models.Product, error) {
	l.mu.Lock()
	l.gen++
	myGen := l.gen
	l.loading = true
	l.mu.Unlock()

	body, err := l.api.Get(ctx, path)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != myGen {
		// A newer load superseded this one while it was in flight.
		log.Debug().Str("path", path).Msg("Discarding stale catalog response")
		return nil, nil
	}
	l.loading = false

	if err != nil {
		l.products = nil
		log.Error().Err(err).Str("path", path).Msg("Failed to fetch products")
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(body, &products); err != nil {
		l.products = nil
		log.Error().Err(err).Str("path", path).Msg("Failed to decode product list")
		return nil, fmt.Errorf("failed to decode product list: %w", err)
	}

	l.products = products
	return l.snapshotLocked(), nil
}

// Products returns the current catalog snapshot.
func (l *Loader) Products() []models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Loading reports whether a fetch is in flight.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *Loader) snapshotLocked() []models.Product {
	out := make([]models.Product, len(l.products))
	copy(out, l.products)
	return out
}
