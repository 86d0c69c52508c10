package boardsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListConsultants returns every consultant with project and client embedded.
func (c *SDKClient) ListConsultants(ctx context.Context) ([]Consultant, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/consultants", nil)
	if err != nil {
		return nil, err
	}

	var out []Consultant
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConsultant creates a consultant, optionally already on a project.
func (c *SDKClient) CreateConsultant(ctx context.Context, req CreateConsultantRequest) (*Consultant, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/consultants", req)
	if err != nil {
		return nil, err
	}

	var out Consultant
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReassignConsultant moves a consultant to projectID, or to the available
// pool when projectID is nil.
func (c *SDKClient) ReassignConsultant(ctx context.Context, id string, projectID *string) (*Consultant, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/v1/consultants/"+url.PathEscape(id), ReassignConsultantRequest{
		ProjectID: projectID,
	})
	if err != nil {
		return nil, err
	}

	var out Consultant
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConsultant deletes a consultant.
func (c *SDKClient) DeleteConsultant(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/consultants/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
