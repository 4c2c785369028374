package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/marketfront/internal/api"
	"github.com/isdelr/marketfront/internal/models"
	"github.com/isdelr/marketfront/internal/watch"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "devapi.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(New(store, "test-secret").Router())
	t.Cleanup(srv.Close)
	return srv
}

func signup(t *testing.T, client *api.Client, name, email string) models.AuthResponse {
	t.Helper()
	body, err := client.Post(context.Background(), "/auth/signup", models.SignupRequest{
		Name:     name,
		Email:    email,
		Phone:    "555-0100",
		Password: "secret123",
	})
	require.NoError(t, err)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.User)
	require.NotEmpty(t, resp.Token)
	return resp
}

func createProduct(t *testing.T, client *api.Client, np models.NewProduct) models.Product {
	t.Helper()
	body, err := client.Post(context.Background(), "/products/add", np)
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, json.Unmarshal(body, &product))
	return product
}

func TestListingLifecycle(t *testing.T) {
	srv := newTestServer(t)
	alice := api.New(srv.URL)

	auth := signup(t, alice, "Alice", "alice@example.com")
	alice.SetToken(auth.Token)

	product := createProduct(t, alice, models.NewProduct{
		UserID: auth.User.ID,
		Name:   "Vintage Camera",
		Price:  80,
		Image:  "https://example.com/camera.jpg",
	})
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "Alice", product.SellerName)
	assert.Equal(t, "555-0100", product.SellerPhone)
	assert.False(t, product.CreatedAt.IsZero())

	// The listing shows up in both catalog views.
	body, err := alice.Get(context.Background(), "/products/all")
	require.NoError(t, err)
	var all []models.Product
	require.NoError(t, json.Unmarshal(body, &all))
	require.Len(t, all, 1)

	body, err = alice.Get(context.Background(), "/products/user/"+auth.User.ID)
	require.NoError(t, err)
	var mine []models.Product
	require.NoError(t, json.Unmarshal(body, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, product.ID, mine[0].ID)

	// Another user cannot delete it.
	bob := api.New(srv.URL)
	bobAuth := signup(t, bob, "Bob", "bob@example.com")
	bob.SetToken(bobAuth.Token)
	_, err = bob.Delete(context.Background(), "/products/"+product.ID)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	// The owner can.
	_, err = alice.Delete(context.Background(), "/products/"+product.ID)
	require.NoError(t, err)

	body, err = alice.Get(context.Background(), "/products/all")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Empty(t, all)
}

func TestLoginRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	client := api.New(srv.URL)
	signup(t, client, "Alice", "alice@example.com")

	body, err := client.Post(context.Background(), "/auth/login", models.Credentials{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	_, err = client.Post(context.Background(), "/auth/login", models.Credentials{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	client := api.New(srv.URL)
	signup(t, client, "Alice", "alice@example.com")

	_, err := client.Post(context.Background(), "/auth/signup", models.SignupRequest{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		Password: "secret456",
	})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestWritesRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	client := api.New(srv.URL) // no token

	_, err := client.Post(context.Background(), "/products/add", models.NewProduct{
		UserID: "whoever", Name: "Lamp", Price: 20, Image: "https://example.com/l.jpg",
	})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = client.Delete(context.Background(), "/products/some-id")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	srv := newTestServer(t)
	client := api.New(srv.URL)
	auth := signup(t, client, "Alice", "alice@example.com")
	client.SetToken(auth.Token)

	_, err := client.Post(context.Background(), "/products/add", models.NewProduct{
		UserID: auth.User.ID, Name: "Lamp", Price: 0, Image: "https://example.com/l.jpg",
	})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	// Creating under someone else's identity is refused.
	_, err = client.Post(context.Background(), "/products/add", models.NewProduct{
		UserID: "someone-else", Name: "Lamp", Price: 20, Image: "https://example.com/l.jpg",
	})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestProductEventsReachWatcher(t *testing.T) {
	srv := newTestServer(t)
	client := api.New(srv.URL)
	auth := signup(t, client, "Alice", "alice@example.com")
	client.SetToken(auth.Token)

	events := make(chan watch.Event, 4)
	watcher := watch.New("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", func(ev watch.Event) {
		events <- ev
	})
	go watcher.Run()
	defer watcher.Stop()

	// Give the hub a moment to register the subscriber.
	time.Sleep(100 * time.Millisecond)

	product := createProduct(t, client, models.NewProduct{
		UserID: auth.User.ID, Name: "Lamp", Price: 20, Image: "https://example.com/l.jpg",
	})

	select {
	case ev := <-events:
		assert.Equal(t, "product.created", ev.Action)
		var got models.Product
		require.NoError(t, json.Unmarshal(ev.Payload, &got))
		assert.Equal(t, product.ID, got.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("no product.created event arrived")
	}

	_, err := client.Delete(context.Background(), "/products/"+product.ID)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "product.deleted", ev.Action)
	case <-time.After(3 * time.Second):
		t.Fatal("no product.deleted event arrived")
	}
}
