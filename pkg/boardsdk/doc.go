/*
Package boardsdk is the HTTP client for the consultboard API.

# Overview

An SDKClient wraps the CRUD endpoints for the three board entities: clients,
projects and consultants. Every mutation the server accepts is also
published on the kanban-updates channel (see pkg/boardevents), so callers
that keep a local copy of the board only need the direct response to stay
current for their own actions.

	c := boardsdk.NewSDKClient("http://localhost:8080")
	c.Token = os.Getenv("BOARD_TOKEN") // optional, only when the server enforces auth

	acme, err := c.CreateClient(ctx, "Acme")
	p, err := c.CreateProject(ctx, "Migration", acme.ID)
	x, err := c.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana", ProjectID: &p.ID})

	// Move a consultant back to the available pool.
	x, err = c.ReassignConsultant(ctx, x.ID, nil)

# Errors

Every non-success response is returned as an *APIError carrying the HTTP
status and the server's error code. Use IsNotFound and IsValidation to
branch on the common cases:

	if boardsdk.IsNotFound(err) {
		// the entity was deleted by someone else
	}

Transport failures (connection refused, context cancelled) are returned
wrapped and are not APIErrors.
*/
package boardsdk
