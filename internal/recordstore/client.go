// Package recordstore is the HTTP client for a remote record-store query
// service speaking the complaints-query contract. It lets the search
// orchestrator run against a separately deployed store instead of the
// in-process one.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/beatwatch/complaint-server/internal/models"
)

// Client implements services.Querier over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a record-store client. The request timeout doubles as
// the page-fetch deadline: the query contract has no built-in timeout, so a
// hung store surfaces as a page-fetch failure the orchestrator absorbs.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Query fetches one page of complaints for a single status.
func (c *Client) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal query request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/complaints/query", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoke record store: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("record store returned %d", httpResp.StatusCode)
	}

	var resp models.QueryResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode record store response: %w", err)
	}
	return &resp, nil
}
