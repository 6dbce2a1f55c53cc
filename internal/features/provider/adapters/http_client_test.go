package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/provider/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredential(baseURL string) domain.Credential {
	return domain.Credential{ID: "c1", APIKey: "secret", BaseURL: baseURL}
}

func TestHTTPClient_FetchPageBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("page_size"))
		w.Write([]byte(`[{"id": 1}, {"id": 2}]`))
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)

	page, err := client.FetchPage(context.Background(), testCredential(srv.URL), "/orders", 1, 100)
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, "1", page.Orders[0].OrderID())
	assert.Zero(t, page.TotalEntries)
	assert.Zero(t, page.TotalPages)
}

func TestHTTPClient_FetchPageWrappedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"id": "a-1"}], "total": 150, "total_pages": 2}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)

	page, err := client.FetchPage(context.Background(), testCredential(srv.URL), "/orders", 1, 100)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, 150, page.TotalEntries)
	assert.Equal(t, 2, page.TotalPages)
}

func TestHTTPClient_FetchPagePreservesCandidateQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s1", r.URL.Query().Get("shop_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)

	_, err := client.FetchPage(context.Background(), testCredential(srv.URL), "/orders?shop_id=s1", 2, 100)
	require.NoError(t, err)
}

func TestHTTPClient_NotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)

	_, err := client.FetchPage(context.Background(), testCredential(srv.URL), "/orders", 1, 100)
	assert.ErrorIs(t, err, ports.ErrEndpointNotFound)
}

func TestHTTPClient_ServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)

	_, err := client.FetchPage(context.Background(), testCredential(srv.URL), "/orders", 1, 100)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrEndpointNotFound)
}

func TestHTTPClient_FetchShops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shops", r.URL.Path)
		w.Write([]byte(`{"data": [
			{"shop_id": "12.0", "shop_name": "Twelve"},
			{"id": 7, "name": "Seven"},
			{"shop_name": "no id, skipped"}
		]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)

	shops, err := client.FetchShops(context.Background(), testCredential(srv.URL))
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "12", shops[0].ID, "shop ids are normalized on ingest")
	assert.Equal(t, "7", shops[1].ID)
	assert.Equal(t, "Seven", shops[1].Name)
}

func TestParseEnvelope_UnrecognizedWrapperYieldsEmptyPage(t *testing.T) {
	page, err := parseEnvelope([]byte(`{"weird": true}`))
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
}
