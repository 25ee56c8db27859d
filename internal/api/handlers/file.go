package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaulty-hq/vaulty/internal/api/middleware"
	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/models"
	"github.com/vaulty-hq/vaulty/internal/services"
	"github.com/vaulty-hq/vaulty/internal/utils"
)

type FileHandler struct {
	files       *services.FileService
	maxFileSize int64
	logger      *logrus.Logger
}

func NewFileHandler(files *services.FileService, maxFileSize int64, logger *logrus.Logger) *FileHandler {
	return &FileHandler{files: files, maxFileSize: maxFileSize, logger: logger}
}

// Upload godoc
// @Summary Upload a file into a project
// @Description Multipart upload; project comes from the api_key binding or an explicit project_id field
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param metadata formData string false "JSON-encoded metadata object"
// @Success 201 {object} utils.Payload
// @Failure 422 {object} utils.Payload
// @Router /files [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	// Slack for the multipart framing around the size ceiling.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+(10<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		validationError(w, map[string]string{"file": "Invalid file upload form"})
		return
	}

	projectID, errs := h.resolveProjectID(principal, r.FormValue("project_id"))
	if errs != nil {
		validationError(w, errs)
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		validationError(w, map[string]string{"file": "No file uploaded"})
		return
	}
	defer src.Close()

	metadata := models.Metadata{}
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			validationError(w, map[string]string{"metadata": "Invalid JSON object"})
			return
		}
	}

	file, err := h.files.Upload(
		r.Context(),
		principal,
		projectID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		src,
		metadata,
	)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "File uploaded successfully",
		Data: map[string]any{
			"file_id":       file.ID,
			"filename":      file.StoredName,
			"original_name": file.OriginalName,
			"size":          file.Size,
			"mime_type":     file.MimeType,
			"content_hash":  file.ContentHash,
		},
	})
}

// Download godoc
// @Summary Download a file by id
// @Tags Files
// @Produce json
// @Param id path string true "File id"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Router /files/{id} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "File not found"})
		return
	}

	file, rc, err := h.files.Download(r.Context(), middleware.PrincipalFrom(r.Context()), fileID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		respondServiceError(w, h.logger, services.Internal("Failed to read file", err))
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File retrieved",
		Data: map[string]any{
			"file":    file,
			"content": base64.StdEncoding.EncodeToString(content),
		},
	})
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("projectId"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "Project not found"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	files, err := h.files.List(middleware.PrincipalFrom(r.Context()), projectID, limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved",
		Data: map[string]any{
			"files": files,
			"count": len(files),
		},
	})
}

func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("projectId"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "Project not found"})
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		validationError(w, map[string]string{"q": "Search query required"})
		return
	}

	files, err := h.files.Search(middleware.PrincipalFrom(r.Context()), projectID, query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Search results",
		Data: map[string]any{
			"files": files,
			"count": len(files),
		},
	})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "File not found"})
		return
	}

	if err := h.files.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), fileID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted successfully",
	})
}

func (h *FileHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: "File not found"})
		return
	}

	var input struct {
		Metadata models.Metadata `json:"metadata"`
		IsPublic *bool           `json:"is_public"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		validationError(w, map[string]string{"body": "Invalid JSON body"})
		return
	}

	file, err := h.files.UpdateMetadata(middleware.PrincipalFrom(r.Context()), fileID, input.Metadata, input.IsPublic)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Metadata updated successfully",
		Data:    file,
	})
}

// resolveProjectID picks the upload target: an explicit project_id field if
// present, otherwise the project bound to the API key. A mismatch between
// the two is left to the authorization rules.
func (h *FileHandler) resolveProjectID(p *auth.Principal, formValue string) (uuid.UUID, map[string]string) {
	if formValue != "" {
		id, err := uuid.Parse(formValue)
		if err != nil {
			return uuid.Nil, map[string]string{"project_id": "Invalid project id"}
		}
		return id, nil
	}
	if p.HasProject() {
		return p.Project.ID, nil
	}
	return uuid.Nil, map[string]string{"project_id": "Required field"}
}
