package badge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dressly/storefront/internal/event"
	"github.com/dressly/storefront/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Counter serves the cart badge count. Counts are fetched from the remote
// cart and cached per user; a cart-changed event on the bus invalidates the
// user's entry so the next read refetches.
type Counter struct {
	httpClient HTTPDoer
	cartURL    string
	logger     *slog.Logger

	mu     sync.RWMutex
	counts map[string]int
}

// NewCounter creates a cart badge counter.
func NewCounter(httpClient HTTPDoer, cartURL string, logger *slog.Logger) *Counter {
	return &Counter{
		httpClient: httpClient,
		cartURL:    cartURL,
		logger:     logger,
		counts:     make(map[string]int),
	}
}

// Listen consumes cart-changed events until the channel closes. Run it in
// its own goroutine.
func (c *Counter) Listen(ch <-chan event.CartChange) {
	for change := range ch {
		c.invalidate(change.UserID)
	}
}

func (c *Counter) invalidate(userID string) {
	c.mu.Lock()
	delete(c.counts, userID)
	c.mu.Unlock()
}

// Count returns the user's current cart item count, from cache when fresh.
func (c *Counter) Count(ctx context.Context, userID, token string) (int, error) {
	c.mu.RLock()
	count, ok := c.counts[userID]
	c.mu.RUnlock()
	if ok {
		return count, nil
	}

	count, err := c.fetch(ctx, token)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.counts[userID] = count
	c.mu.Unlock()

	return count, nil
}

func (c *Counter) fetch(ctx context.Context, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cartURL+"/api/v1/cart/count", nil)
	if err != nil {
		return 0, fmt.Errorf("create cart count request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("call cart service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, httpclient.ParseResponseError(resp, "cart")
	}

	var envelope struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("decode cart count response: %w", err)
	}

	return envelope.Data.Count, nil
}
