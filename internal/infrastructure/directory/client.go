package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tillbooks/ledger/internal/domain"
)

// Client verifies owner references against an external party directory
// service. A reference exists when the directory answers 200 for it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new party directory client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Exists checks whether the referenced party is known to the directory.
func (c *Client) Exists(ctx context.Context, kind domain.PartyKind, ownerID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/parties/%s/%s",
		c.baseURL, url.PathEscape(string(kind)), url.PathEscape(ownerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build directory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("directory lookup failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("directory lookup returned status %d", resp.StatusCode)
	}
}

// AllowAll accepts every owner reference. It is used when no party
// directory is configured.
type AllowAll struct{}

// NewAllowAll creates a directory that accepts everything.
func NewAllowAll() *AllowAll {
	return &AllowAll{}
}

// Exists always reports true.
func (a *AllowAll) Exists(ctx context.Context, kind domain.PartyKind, ownerID string) (bool, error) {
	return true, nil
}
