package boardsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListClients returns every client with its projects nested.
func (c *SDKClient) ListClients(ctx context.Context) ([]Client, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/clients", nil)
	if err != nil {
		return nil, err
	}

	var out []Client
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateClient creates a client and returns it.
func (c *SDKClient) CreateClient(ctx context.Context, name string) (*Client, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/clients", CreateClientRequest{Name: name})
	if err != nil {
		return nil, err
	}

	var out Client
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteClient deletes a client. The server removes its projects and
// unassigns their consultants in the same transaction.
func (c *SDKClient) DeleteClient(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/clients/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
