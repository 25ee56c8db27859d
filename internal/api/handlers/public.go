package handlers

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vaulty-hq/vaulty/internal/services"
	"github.com/vaulty-hq/vaulty/internal/utils"
)

// PublicHandler serves the one unauthenticated route: download by stored
// name, gated purely on file and project visibility.
type PublicHandler struct {
	files  *services.FileService
	logger *logrus.Logger
}

func NewPublicHandler(files *services.FileService, logger *logrus.Logger) *PublicHandler {
	return &PublicHandler{files: files, logger: logger}
}

// Download godoc
// @Summary Download a public file by stored name
// @Tags Public
// @Produce json
// @Param filename path string true "Stored filename"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /public/{filename} [get]
func (h *PublicHandler) Download(w http.ResponseWriter, r *http.Request) {
	storedName := r.PathValue("filename")

	file, rc, err := h.files.GetPublicFile(r.Context(), storedName)
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
