package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaulty-hq/vaulty/internal/api/middleware"
	"github.com/vaulty-hq/vaulty/internal/services"
	"github.com/vaulty-hq/vaulty/internal/utils"
)

type ProjectHandler struct {
	projects *services.ProjectService
	logger   *logrus.Logger
}

func NewProjectHandler(projects *services.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// Create godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} utils.Payload
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		validationError(w, map[string]string{"body": "Invalid JSON body"})
		return
	}
	if input.Name == "" {
		validationError(w, map[string]string{"name": "Required field"})
		return
	}

	project, err := h.projects.Create(userID, input.Name, input.Description, input.IsPublic)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Project created successfully",
		Data:    project,
	})
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.List(userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Projects retrieved",
		Data:    projects,
	})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "Project not found"})
		return
	}

	project, err := h.projects.Get(middleware.PrincipalFrom(r.Context()), projectID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Project retrieved",
		Data:    project,
	})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "Project not found"})
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"is_public"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		validationError(w, map[string]string{"body": "Invalid JSON body"})
		return
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}

	if err := h.projects.Update(middleware.PrincipalFrom(r.Context()), projectID, updates); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Project updated successfully",
	})
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "Project not found"})
		return
	}

	if err := h.projects.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), projectID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Project deleted successfully",
	})
}

// requireUser enforces user scope: project-management operations are never
// available to an API key alone.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	p := middleware.PrincipalFrom(r.Context())
	userID, ok := p.UserID()
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Missing authentication token",
		})
		return uuid.Nil, false
	}
	return userID, true
}
