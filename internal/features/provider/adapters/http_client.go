package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shop-order-sync/internal/core/httpclient"
	"shop-order-sync/internal/core/logger"
	"shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/provider/ports"

	"go.uber.org/zap"
)

// HTTPClient implements the ports.Client interface against JSON REST
// provider endpoints with heterogeneous response envelopes.
type HTTPClient struct {
	// client is the HTTP client used for API requests.
	client *http.Client
}

// NewHTTPClient creates a new provider HTTP client.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: httpclient.NewClient(timeout),
	}
}

// FetchPage performs one paginated call and normalizes the envelope.
func (c *HTTPClient) FetchPage(ctx context.Context, cred domain.Credential, endpoint string, page, pageSize int) (*domain.Page, error) {
	reqURL, err := buildURL(cred.BaseURL, endpoint, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}

	body, err := c.do(ctx, cred, reqURL)
	if err != nil {
		return nil, err
	}

	pageResult, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return pageResult, nil
}

// FetchShops retrieves the shop list reported under the credential.
func (c *HTTPClient) FetchShops(ctx context.Context, cred domain.Credential) ([]domain.Shop, error) {
	reqURL := strings.TrimSuffix(cred.BaseURL, "/") + "/shops"

	body, err := c.do(ctx, cred, reqURL)
	if err != nil {
		return nil, err
	}

	records, err := recordsFromEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode shop list: %w", err)
	}

	shops := make([]domain.Shop, 0, len(records))
	for _, rec := range records {
		id := rec.String("shop_id", "id", "store_id")
		if id == "" {
			continue
		}
		shops = append(shops, domain.Shop{
			ID:   domain.NormalizeShopID(id),
			Name: rec.String("shop_name", "name", "store_name"),
		})
	}
	return shops, nil
}

// do executes one authenticated GET and returns the body on HTTP 200.
// A 404 maps to ports.ErrEndpointNotFound.
func (c *HTTPClient) do(ctx context.Context, cred domain.Credential, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("Authorization", "Bearer "+cred.APIKey)
	req.Header.Add("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ports.ErrEndpointNotFound, reqURL)
		}
		return nil, fmt.Errorf("provider API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// buildURL attaches pagination parameters to the endpoint path, preserving
// any query the candidate template already carries.
func buildURL(baseURL, endpoint string, page, pageSize int) (string, error) {
	full := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(endpoint, "/") {
		full += "/"
	}
	full += endpoint

	u, err := url.Parse(full)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("page_size", fmt.Sprintf("%d", pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// envelopeKeys are the wrapper fields providers use around their record array.
var envelopeKeys = []string{"data", "orders", "items", "results"}

// totalEntryKeys and totalPageKeys are the envelope fields that may report
// pagination totals; providers that report neither are paged by short-page
// detection instead.
var (
	totalEntryKeys = []string{"total", "total_entries", "total_count", "count"}
	totalPageKeys  = []string{"total_pages", "last_page", "pages"}
)

// parseEnvelope normalizes the heterogeneous response shapes into a Page.
func parseEnvelope(body []byte) (*domain.Page, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var records []domain.RawOrder
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return &domain.Page{Orders: records}, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, err
	}

	page := &domain.Page{}
	for _, key := range envelopeKeys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		var records []domain.RawOrder
		if err := json.Unmarshal(raw, &records); err != nil {
			continue
		}
		page.Orders = records
		break
	}

	page.TotalEntries = intField(wrapper, totalEntryKeys)
	page.TotalPages = intField(wrapper, totalPageKeys)

	if page.Orders == nil {
		logger.Named("provider").Debug("Envelope carried no recognizable order array",
			zap.Int("body_len", len(body)),
		)
		page.Orders = []domain.RawOrder{}
	}
	return page, nil
}

// recordsFromEnvelope extracts a record list regardless of wrapping.
func recordsFromEnvelope(body []byte) ([]domain.RawOrder, error) {
	page, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}
	return page.Orders, nil
}

// intField returns the first numeric value found among the candidate keys.
func intField(wrapper map[string]json.RawMessage, keys []string) int {
	for _, key := range keys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return int(n)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			var parsed float64
			if _, scanErr := fmt.Sscanf(s, "%f", &parsed); scanErr == nil {
				return int(parsed)
			}
		}
	}
	return 0
}
