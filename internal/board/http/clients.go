package http

import (
	"net/http"

	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/httpx"
)

// ClientsHandler handles all client endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleList handles GET /v1/clients
//
//	@Summary		List Clients
//	@Description	Returns every client with its projects nested.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		boardsdk.Client			"clients"
//	@Failure		401	{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse		"error, error_description"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.ClientService.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list clients")
		return
	}
	if clients == nil {
		clients = []boardsdk.Client{}
	}
	httpx.WriteJSON(w, http.StatusOK, clients)
}

// HandleCreate handles POST /v1/clients
//
//	@Summary		Create Client
//	@Description	Creates a client and publishes client-added.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		boardsdk.CreateClientRequest	true	"Client creation request"
//	@Success		201		{object}	boardsdk.Client					"created client"
//	@Failure		400		{object}	httpx.ErrorResponse				"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse				"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse				"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req boardsdk.CreateClientRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	c, err := h.ClientService.CreateClient(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err, "failed to create client")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// HandleDelete handles DELETE /v1/clients/{id}
//
//	@Summary		Delete Client
//	@Description	Deletes a client and its projects. Their consultants become available. Publishes client-deleted.
//	@Tags			Clients
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Client ID"
//	@Success		204	"No Content"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ClientService.DeleteClient(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "failed to delete client")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
