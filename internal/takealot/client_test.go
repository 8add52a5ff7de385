package takealot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		HealthURL:    baseURL + "/health",
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, zap.NewNop())
}

func TestUpdateOfferPrice_Success(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	err := c.UpdateOfferPrice(context.Background(), "12345", 94.5)
	require.NoError(t, err)
	assert.Equal(t, "Key test-key", gotAuth)
	assert.Equal(t, "/v2/offers/offer/12345", gotPath)
}

func TestUpdateOfferPrice_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	err := c.UpdateOfferPrice(context.Background(), "1", 100)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestUpdateOfferPrice_FatalStatusNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	err := c.UpdateOfferPrice(context.Background(), "1", 100)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestOffers_ParsesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page_number"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"offers": [{
				"offer_id": 111,
				"sku": "SKU-1",
				"title": "Widget",
				"selling_price": 99.5,
				"status": "Buyable",
				"leadtime_stock": [
					{"merchant_warehouse": {"warehouse_id": 1, "name": "JHB"}, "quantity_available": 4},
					{"merchant_warehouse": {"warehouse_id": 2, "name": "CPT"}, "quantity_available": 6}
				]
			}],
			"total_results": 1
		}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	page, err := c.Offers(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, page.Offers, 1)
	assert.Equal(t, "SKU-1", page.Offers[0].SKU)
	assert.Equal(t, 10, page.Offers[0].TotalStock())
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"offers": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.OK)
	assert.Equal(t, http.StatusOK, h.Status)
}
