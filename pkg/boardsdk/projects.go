package boardsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListProjects returns every project with its client and consultants.
func (c *SDKClient) ListProjects(ctx context.Context) ([]Project, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/projects", nil)
	if err != nil {
		return nil, err
	}

	var out []Project
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProject creates a project under clientID. The response embeds the
// owning client.
func (c *SDKClient) CreateProject(ctx context.Context, title, clientID string) (*Project, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/projects", CreateProjectRequest{
		Title:    title,
		ClientID: clientID,
	})
	if err != nil {
		return nil, err
	}

	var out Project
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameProject changes a project's title.
func (c *SDKClient) RenameProject(ctx context.Context, id, title string) (*Project, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/v1/projects/"+url.PathEscape(id), RenameProjectRequest{Title: title})
	if err != nil {
		return nil, err
	}

	var out Project
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project; its consultants become available.
func (c *SDKClient) DeleteProject(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/projects/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
