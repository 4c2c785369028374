package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/marketfront/internal/catalog"
	"github.com/isdelr/marketfront/internal/models"
)

func sampleCatalog() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Lamp", Price: 20},
		{ID: "2", Name: "Chair", Price: 50},
		{ID: "3", Name: "Lamp Shade", Price: 15},
	}
}

func TestHomeRecomputesOnEveryInputChange(t *testing.T) {
	h := NewHome(catalog.DefaultCriteria(1000))
	assert.Empty(t, h.Visible())

	h.SetCatalog(sampleCatalog())
	assert.Len(t, h.Visible(), 3)

	h.SetSearch("lamp")
	assert.Len(t, h.Visible(), 2)

	h.SetSort(catalog.SortPriceAsc)
	visible := h.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "3", visible[0].ID)
	assert.Equal(t, "1", visible[1].ID)

	h.SetPriceRange(18, 1000)
	visible = h.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "1", visible[0].ID)

	h.ResetFilters(1000)
	assert.Len(t, h.Visible(), 3)
	assert.Equal(t, catalog.SortNewest, h.Criteria().Sort)
}

func TestHomeCatalogReplacementKeepsCriteria(t *testing.T) {
	h := NewHome(catalog.DefaultCriteria(1000))
	h.SetCatalog(sampleCatalog())
	h.SetSearch("chair")
	require.Len(t, h.Visible(), 1)

	// A refetched catalog flows through the same criteria.
	h.SetCatalog(append(sampleCatalog(), models.Product{ID: "4", Name: "Armchair", Price: 80}))
	assert.Len(t, h.Visible(), 2)
}

func TestOverlayHoldsOneProductAtATime(t *testing.T) {
	var o Overlay
	_, open := o.Current()
	assert.False(t, open)

	o.Open(models.Product{ID: "1", Name: "Lamp"})
	cur, open := o.Current()
	require.True(t, open)
	assert.Equal(t, "1", cur.ID)

	// Opening again replaces the display, it never stacks.
	o.Open(models.Product{ID: "2", Name: "Chair"})
	cur, _ = o.Current()
	assert.Equal(t, "2", cur.ID)

	o.Close()
	_, open = o.Current()
	assert.False(t, open)

	// Closing twice (control then backdrop) stays harmless.
	o.Close()
}

func TestOverlayDoesNotDisturbHomeState(t *testing.T) {
	h := NewHome(catalog.DefaultCriteria(1000))
	h.SetCatalog(sampleCatalog())
	h.SetSearch("lamp")
	before := h.Visible()

	var o Overlay
	o.Open(before[0])
	o.Close()

	assert.Equal(t, before, h.Visible())
	assert.Equal(t, "lamp", h.Criteria().Search)
}
