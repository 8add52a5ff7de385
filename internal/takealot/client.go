// Package takealot wraps the Takealot Seller API surface this system
// consumes: pushing offer prices, listing offers, and a health probe.
package takealot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// transient statuses worth retrying
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

type Config struct {
	APIKey       string
	BaseURL      string
	HealthURL    string
	MaxRetries   int
	RetryBackoff time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Configured reports whether marketplace credentials are present. Callers
// skip remote pushes when they are not.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// UpdateOfferPrice pushes a new selling price for an offer. Transient
// failures (429/502/503/504, network errors) are retried with exponential
// backoff; anything else fails immediately.
func (c *Client) UpdateOfferPrice(ctx context.Context, offerID string, sellingPrice float64) error {
	payload, err := json.Marshal(map[string]float64{"selling_price": sellingPrice})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v2/offers/offer/%s", c.cfg.BaseURL, offerID)
	resp, err := c.doWithRetries(ctx, http.MethodPatch, url, payload)
	if err != nil {
		return fmt.Errorf("takealot price update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("takealot API error: %d - %s", resp.StatusCode, string(body))
	}
	return nil
}

// LeadtimeStock is the per-warehouse availability block on an offer.
type LeadtimeStock struct {
	MerchantWarehouse struct {
		WarehouseID int    `json:"warehouse_id"`
		Name        string `json:"name"`
	} `json:"merchant_warehouse"`
	QuantityAvailable int `json:"quantity_available"`
}

type Offer struct {
	OfferID       int64           `json:"offer_id"`
	SKU           string          `json:"sku"`
	Title         string          `json:"title"`
	SellingPrice  float64         `json:"selling_price"`
	LeadtimeStock []LeadtimeStock `json:"leadtime_stock"`
	ImageURL      string          `json:"image_url"`
	BuyBoxWinner  bool            `json:"buy_box_winner"`
	CostPrice     *float64        `json:"cost_price"`
	Status        string          `json:"status"`
}

// TotalStock sums quantity across all warehouses.
func (o Offer) TotalStock() int {
	total := 0
	for _, ls := range o.LeadtimeStock {
		total += ls.QuantityAvailable
	}
	return total
}

type OffersPage struct {
	Offers       []Offer `json:"offers"`
	TotalResults int     `json:"total_results"`
}

// Offers fetches one page of the seller's offers.
func (c *Client) Offers(ctx context.Context, pageNumber, pageSize int) (*OffersPage, error) {
	url := fmt.Sprintf("%s/v2/offers?page_number=%d&page_size=%d", c.cfg.BaseURL, pageNumber, pageSize)
	resp, err := c.doWithRetries(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("takealot offers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("takealot API error: %d - %s", resp.StatusCode, string(body))
	}

	var page OffersPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode offers page: %w", err)
	}
	return &page, nil
}

// HealthStatus is the result of probing the Seller API with the configured
// credentials.
type HealthStatus struct {
	OK          bool   `json:"ok"`
	Status      int    `json:"status"`
	BodyPreview string `json:"body_preview,omitempty"`
}

// Health probes the Seller API once, without retries.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.HealthURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
	return &HealthStatus{
		OK:          resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:      resp.StatusCode,
		BodyPreview: string(body),
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Key "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// doWithRetries issues the request, rebuilding it per attempt, and retries
// transient statuses and network errors with exponential backoff.
func (c *Client) doWithRetries(ctx context.Context, method, url string, payload []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.cfg.RetryBackoff * time.Duration(1<<(attempt-1))
			c.log.Warn("retrying takealot request",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if retryableStatus[resp.StatusCode] && attempt < c.cfg.MaxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("transient status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("exceeded retries: %w", lastErr)
}
