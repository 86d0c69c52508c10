package http

import (
	"net/http"

	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/httpx"
)

// ProjectsHandler handles all project endpoints.
type ProjectsHandler struct {
	ProjectService *service.ProjectService
}

// HandleList handles GET /v1/projects
//
//	@Summary		List Projects
//	@Description	Returns every project with its client and assigned consultants.
//	@Tags			Projects
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		boardsdk.Project		"projects"
//	@Failure		401	{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse		"error, error_description"
//	@Router			/v1/projects [get].
func (h *ProjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.ProjectService.ListProjects(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []boardsdk.Project{}
	}
	httpx.WriteJSON(w, http.StatusOK, projects)
}

// HandleCreate handles POST /v1/projects
//
//	@Summary		Create Project
//	@Description	Creates a project for an existing client and publishes project-added.
//	@Description	The title "Disponível" is reserved for the available bucket.
//	@Tags			Projects
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		boardsdk.CreateProjectRequest	true	"Project creation request"
//	@Success		201		{object}	boardsdk.Project				"created project with its client"
//	@Failure		400		{object}	httpx.ErrorResponse				"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse				"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse				"unknown client"
//	@Failure		500		{object}	httpx.ErrorResponse				"error, error_description"
//	@Router			/v1/projects [post].
func (h *ProjectsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req boardsdk.CreateProjectRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	p, err := h.ProjectService.CreateProject(r.Context(), req.Title, req.ClientID)
	if err != nil {
		writeServiceError(w, r, err, "failed to create project")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

// HandleRename handles PUT /v1/projects/{id}
//
//	@Summary		Rename Project
//	@Description	Changes a project's title and publishes project-renamed.
//	@Tags			Projects
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Project ID"
//	@Param			request	body		boardsdk.RenameProjectRequest	true	"New title"
//	@Success		200		{object}	boardsdk.Project				"renamed project"
//	@Failure		400		{object}	httpx.ErrorResponse				"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse				"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse				"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse				"error, error_description"
//	@Router			/v1/projects/{id} [put].
func (h *ProjectsHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req boardsdk.RenameProjectRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	p, err := h.ProjectService.RenameProject(r.Context(), r.PathValue("id"), req.Title)
	if err != nil {
		writeServiceError(w, r, err, "failed to rename project")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /v1/projects/{id}
//
//	@Summary		Delete Project
//	@Description	Deletes a project. Its consultants become available. Publishes project-deleted.
//	@Tags			Projects
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Project ID"
//	@Success		204	"No Content"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/projects/{id} [delete].
func (h *ProjectsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ProjectService.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
