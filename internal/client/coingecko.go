package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
	nanoCoinID   = "nano"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client. An empty baseURL uses
// the public API.
func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = coingeckoAPI
	}
	return &CoinGeckoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PriceResponse response from CoinGecko API, keyed by coin id then currency
type PriceResponse map[string]map[string]float64

// GetNanoPrice gets the price of one NANO in currency (e.g. "usd")
func (c *CoinGeckoClient) GetNanoPrice(ctx context.Context, currency string) (string, error) {
	currency = strings.ToLower(currency)
	q := url.Values{}
	q.Set("ids", nanoCoinID)
	q.Set("vs_currencies", currency)
	reqURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return "", fmt.Errorf("failed to decode rate: %w", err)
	}

	price, ok := priceResp[nanoCoinID][currency]
	if !ok {
		return "", fmt.Errorf("no %s price in response", currency)
	}
	rate := strconv.FormatFloat(price, 'f', 2, 64)
	return rate, nil
}
