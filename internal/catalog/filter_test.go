package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/isdelr/marketfront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestSearchMatchesExactlyTheContainingNames(t *testing.T) {
	cat := []models.Product{
		{ID: "1", Name: "Vintage Camera", Price: 80},
		{ID: "2", Name: "Desk Lamp", Price: 20},
		{ID: "3", Name: "CAMERA bag", Price: 15},
		{ID: "4", Name: "Chair", Price: 50},
	}
	c := DefaultCriteria(1000)
	c.Search = "camera"

	got := c.Apply(cat)

	// Every result contains the search text, and every catalog product
	// whose name contains it is present.
	for _, p := range got {
		assert.Contains(t, strings.ToLower(p.Name), "camera")
	}
	assert.ElementsMatch(t, []string{"1", "3"}, ids(got))
}

func TestEmptySearchMatchesAll(t *testing.T) {
	cat := []models.Product{
		{ID: "1", Name: "Lamp", Price: 20},
		{ID: "2", Name: "Chair", Price: 50},
	}
	got := DefaultCriteria(1000).Apply(cat)
	assert.Len(t, got, 2)
}

func TestPriceBoundsAreInclusive(t *testing.T) {
	cat := []models.Product{
		{ID: "below", Name: "a", Price: 9.99},
		{ID: "lo", Name: "b", Price: 10},
		{ID: "mid", Name: "c", Price: 25},
		{ID: "hi", Name: "d", Price: 50},
		{ID: "above", Name: "e", Price: 50.01},
	}
	c := Criteria{PriceMin: 10, PriceMax: 50, Sort: SortPriceAsc}

	got := c.Apply(cat)
	assert.Equal(t, []string{"lo", "mid", "hi"}, ids(got))
}

func TestPriceSortsReverseEachOtherAndKeepTies(t *testing.T) {
	cat := []models.Product{
		{ID: "a", Name: "A", Price: 30},
		{ID: "b", Name: "B", Price: 10},
		{ID: "c", Name: "C", Price: 30}, // same price as "a", listed after it
		{ID: "d", Name: "D", Price: 20},
	}

	asc := Criteria{PriceMax: 1000, Sort: SortPriceAsc}.Apply(cat)
	desc := Criteria{PriceMax: 1000, Sort: SortPriceDesc}.Apply(cat)

	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(asc))
	// Distinct prices reverse; the a/c tie keeps original order both ways.
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(desc))
}

func TestNewestOrdersByCreationThenID(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cat := []models.Product{
		{ID: "1", Name: "Old", Price: 5, CreatedAt: base},
		{ID: "3", Name: "Tied B", Price: 5, CreatedAt: base.Add(time.Hour)},
		{ID: "2", Name: "Tied A", Price: 5, CreatedAt: base.Add(time.Hour)},
		{ID: "4", Name: "New", Price: 5, CreatedAt: base.Add(2 * time.Hour)},
	}
	got := DefaultCriteria(1000).Apply(cat)
	require.Equal(t, []string{"4", "3", "2", "1"}, ids(got))

	// Deterministic regardless of arrival order.
	shuffled := []models.Product{cat[2], cat[0], cat[3], cat[1]}
	assert.Equal(t, ids(got), ids(DefaultCriteria(1000).Apply(shuffled)))
}

func TestApplyIsIdempotentAndPure(t *testing.T) {
	cat := []models.Product{
		{ID: "2", Name: "Chair", Price: 50},
		{ID: "1", Name: "Lamp", Price: 20},
	}
	c := Criteria{PriceMax: 1000, Sort: SortPriceAsc}

	first := c.Apply(cat)
	second := c.Apply(cat)
	assert.Equal(t, first, second)

	// The input slice is untouched.
	assert.Equal(t, "2", cat[0].ID)
	assert.Equal(t, "1", cat[1].ID)
}

func TestLampScenario(t *testing.T) {
	cat := []models.Product{
		{ID: "1", Name: "Lamp", Price: 20},
		{ID: "2", Name: "Chair", Price: 50},
		{ID: "3", Name: "Lamp Shade", Price: 15},
	}
	c := Criteria{Search: "lamp", PriceMin: 0, PriceMax: 100, Sort: SortPriceAsc}

	got := c.Apply(cat)
	assert.Equal(t, []string{"3", "1"}, ids(got))
}
