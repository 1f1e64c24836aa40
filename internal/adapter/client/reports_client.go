package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"emergencyreport/internal/domain/entity"
)

const defaultTimeout = 15 * time.Second

// ReportsClient reads reports from a running API server.
type ReportsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewReportsClient(baseURL string, httpClient *http.Client) *ReportsClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &ReportsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type listResponse struct {
	Success bool             `json:"success"`
	Reports []*entity.Report `json:"reports"`
	Error   string           `json:"error"`
	Details string           `json:"details"`
}

// FetchAll returns every stored report. A failed or unsuccessful response is
// an error, never an empty list.
func (c *ReportsClient) FetchAll(ctx context.Context) ([]*entity.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/reports", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports response: %w", err)
	}

	var out listResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, describe(out))
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", decodeErr)
	}
	if !out.Success {
		return nil, fmt.Errorf("server reported failure: %s", describe(out))
	}

	if out.Reports == nil {
		out.Reports = []*entity.Report{}
	}
	return out.Reports, nil
}

func describe(r listResponse) string {
	msg := r.Error
	if msg == "" {
		msg = "unknown error"
	}
	if r.Details != "" {
		msg += " (" + r.Details + ")"
	}
	return msg
}
