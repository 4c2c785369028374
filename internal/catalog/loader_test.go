package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/marketfront/internal/api"
	"github.com/isdelr/marketfront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productServer(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.New(srv.URL)
}

func writeProducts(w http.ResponseWriter, products []models.Product) {
	json.NewEncoder(w).Encode(products)
}

func TestLoadAllReplacesSnapshot(t *testing.T) {
	loader := NewLoader(productServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/all", r.URL.Path)
		writeProducts(w, []models.Product{{ID: "1", Name: "Lamp", Price: 20}})
	}))

	got, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lamp", got[0].Name)
	assert.Equal(t, got, loader.Products())
	assert.False(t, loader.Loading())
}

func TestLoadForUserHitsScopedPath(t *testing.T) {
	loader := NewLoader(productServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/user/u1", r.URL.Path)
		writeProducts(w, []models.Product{{ID: "1", SellerID: "u1"}})
	}))

	got, err := loader.LoadForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].SellerID)
}

func TestLoadFailureLeavesCatalogEmpty(t *testing.T) {
	fail := false
	loader := NewLoader(productServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeProducts(w, []models.Product{{ID: "1", Name: "Lamp"}})
	}))

	_, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loader.Products(), 1)

	fail = true
	_, err = loader.LoadAll(context.Background())
	require.Error(t, err)
	assert.Empty(t, loader.Products())
	assert.False(t, loader.Loading())
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	first := true

	loader := NewLoader(productServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		isFirst := first
		first = false
		mu.Unlock()
		if isFirst {
			close(started)
			<-release
			writeProducts(w, []models.Product{{ID: "stale"}})
			return
		}
		writeProducts(w, []models.Product{{ID: "fresh"}})
	}))

	firstDone := make(chan []models.Product, 1)
	go func() {
		got, err := loader.LoadAll(context.Background())
		assert.NoError(t, err)
		firstDone <- got
	}()

	<-started
	fresh, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "fresh", fresh[0].ID)

	close(release)
	select {
	case got := <-firstDone:
		// The superseded load reports nothing and must not clobber state.
		assert.Nil(t, got)
	case <-time.After(5 * time.Second):
		t.Fatal("first load never returned")
	}

	snapshot := loader.Products()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "fresh", snapshot[0].ID)
}
