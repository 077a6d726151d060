package retailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kelviy/leadtime-order-sync/internal/config"
)

var ErrNotConfigured = errors.New("retailer API credentials not configured")

// BatchResponse is the retailer's acknowledgement of a batch update.
type BatchResponse struct {
	BatchID string `json:"batch_id"`
	ID      string `json:"id"`
}

// Client posts batch stock updates to the retailer seller API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL: cfg.RetailerBaseURL,
		apiKey:  cfg.RetailerAPIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendBatch posts the payload to the stock batch endpoint. Retry and
// back-off are left to the caller; one upload maps to one attempt.
func (c *Client) SendBatch(payload BatchRequest) (*BatchResponse, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch payload: %w", err)
	}

	endpoint := strings.TrimSuffix(c.baseURL, "/") + "/stock/create_batch"
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to retailer API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("retailer API returned %s", resp.Status)
	}

	var response BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode retailer response: %w", err)
	}

	return &response, nil
}
