// Package estimator talks to an external price-estimate service used to
// fill in prices for shopping list items the user has never priced.
package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

const serviceName = "price-estimator"

// Config configures the estimate client
type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	MaxAttempts       int
}

// Client requests price estimates over HTTP
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	maxAttempts int
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

type estimateRequest struct {
	Name     string `json:"name"`
	Amount   string `json:"amount,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category,omitempty"`
}

type estimateResponse struct {
	Price *decimal.Decimal `json:"price"`
}

// NewClient creates a new estimate client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxAttempts: cfg.MaxAttempts,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:      logger.Named("estimator"),
	}
}

// Estimate asks the service for a typical price of the item.
// Every failure is returned as a domain.UpstreamServiceError.
func (c *Client) Estimate(ctx context.Context, item domain.ShoppingListItem) (decimal.Decimal, error) {
	body, err := json.Marshal(estimateRequest{
		Name:     item.Name,
		Amount:   item.Amount,
		Unit:     item.Unit,
		Category: item.Category,
	})
	if err != nil {
		return decimal.Zero, upstream(fmt.Errorf("failed to encode request: %w", err))
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return decimal.Zero, upstream(fmt.Errorf("rate limiter error: %w", err))
		}

		price, retry, err := c.do(ctx, body)
		if err == nil {
			return price, nil
		}
		lastErr = err
		c.logger.Debug("estimate attempt failed",
			zap.String("item", item.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !retry {
			break
		}

		select {
		case <-ctx.Done():
			return decimal.Zero, upstream(ctx.Err())
		case <-time.After(time.Duration(attempt*200) * time.Millisecond):
		}
	}

	return decimal.Zero, upstream(lastErr)
}

// do performs one request; retry reports whether the failure is transient
func (c *Client) do(ctx context.Context, body []byte) (decimal.Decimal, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/estimates", bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "FoodInventoryPriceEngine/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Zero, true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return decimal.Zero, transient, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded estimateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Price == nil || !decoded.Price.IsPositive() {
		return decimal.Zero, false, fmt.Errorf("response has no positive price")
	}
	return decoded.Price.Round(2), false, nil
}

func upstream(err error) error {
	return &domain.UpstreamServiceError{Service: serviceName, Err: err}
}
