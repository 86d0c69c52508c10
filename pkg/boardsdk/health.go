package boardsdk

import (
	"context"
	"net/http"
)

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service can reach its store and event bus.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	// A degraded service answers 503 with the same body.
	expected := http.StatusOK
	if resp.StatusCode == http.StatusServiceUnavailable {
		expected = http.StatusServiceUnavailable
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, expected); err != nil {
		return nil, err
	}
	return &health, nil
}
