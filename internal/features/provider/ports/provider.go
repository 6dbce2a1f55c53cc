package ports

import (
	"context"
	"errors"

	"shop-order-sync/internal/features/provider/domain"
)

// ErrEndpointNotFound signals an HTTP 404 on a candidate endpoint. During
// resolution this is expected and advances to the next candidate; it never
// aborts a shop on its own.
var ErrEndpointNotFound = errors.New("endpoint not found")

// Client defines the interface for talking to one provider account.
// This is a Secondary Port (Driven Port).
type Client interface {
	// FetchPage performs one HTTP call against the given endpoint path with
	// pagination parameters and normalizes the response envelope into a Page.
	// Returns ErrEndpointNotFound on HTTP 404.
	FetchPage(ctx context.Context, cred domain.Credential, endpoint string, page, pageSize int) (*domain.Page, error)

	// FetchShops retrieves the shop list reported under the credential.
	FetchShops(ctx context.Context, cred domain.Credential) ([]domain.Shop, error)
}
