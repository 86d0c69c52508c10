package http

import (
	"net/http"

	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/httpx"
)

// ConsultantsHandler handles all consultant endpoints.
type ConsultantsHandler struct {
	ConsultantService *service.ConsultantService
}

// HandleList handles GET /v1/consultants
//
//	@Summary		List Consultants
//	@Description	Returns every consultant with its project and the project's client.
//	@Tags			Consultants
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		boardsdk.Consultant		"consultants"
//	@Failure		401	{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse		"error, error_description"
//	@Router			/v1/consultants [get].
func (h *ConsultantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	consultants, err := h.ConsultantService.ListConsultants(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list consultants")
		return
	}
	if consultants == nil {
		consultants = []boardsdk.Consultant{}
	}
	httpx.WriteJSON(w, http.StatusOK, consultants)
}

// HandleCreate handles POST /v1/consultants
//
//	@Summary		Create Consultant
//	@Description	Creates a consultant, optionally assigned to a project, and publishes consultant-added.
//	@Tags			Consultants
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		boardsdk.CreateConsultantRequest	true	"Consultant creation request"
//	@Success		201		{object}	boardsdk.Consultant					"created consultant"
//	@Failure		400		{object}	httpx.ErrorResponse					"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse					"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse					"unknown project"
//	@Failure		500		{object}	httpx.ErrorResponse					"error, error_description"
//	@Router			/v1/consultants [post].
func (h *ConsultantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req boardsdk.CreateConsultantRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	x, err := h.ConsultantService.CreateConsultant(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create consultant")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, x)
}

// HandleReassign handles PUT /v1/consultants/{id}
//
//	@Summary		Reassign Consultant
//	@Description	Moves a consultant to a project, or to the available bucket when project_id is null.
//	@Description	Publishes consultant-moved.
//	@Tags			Consultants
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"Consultant ID"
//	@Param			request	body		boardsdk.ReassignConsultantRequest	true	"Target project"
//	@Success		200		{object}	boardsdk.Consultant					"moved consultant"
//	@Failure		400		{object}	httpx.ErrorResponse					"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse					"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse					"unknown consultant or project"
//	@Failure		500		{object}	httpx.ErrorResponse					"error, error_description"
//	@Router			/v1/consultants/{id} [put].
func (h *ConsultantsHandler) HandleReassign(w http.ResponseWriter, r *http.Request) {
	var req boardsdk.ReassignConsultantRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	x, err := h.ConsultantService.ReassignConsultant(r.Context(), r.PathValue("id"), req.ProjectID)
	if err != nil {
		writeServiceError(w, r, err, "failed to reassign consultant")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, x)
}

// HandleDelete handles DELETE /v1/consultants/{id}
//
//	@Summary		Delete Consultant
//	@Description	Deletes a consultant and publishes consultant-deleted.
//	@Tags			Consultants
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Consultant ID"
//	@Success		204	"No Content"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/consultants/{id} [delete].
func (h *ConsultantsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ConsultantService.DeleteConsultant(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "failed to delete consultant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
