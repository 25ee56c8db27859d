package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vaulty-hq/vaulty/internal/services"
	"github.com/vaulty-hq/vaulty/internal/utils"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Internal causes are logged here and never written to the client.
func respondServiceError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	var se *services.ServiceError
	if !errors.As(err, &se) {
		logger.WithError(err).Error("unhandled service failure")
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Internal server error",
		})
		return
	}

	switch se.Kind {
	case services.KindValidation:
		utils.JSONResponse(w, http.StatusUnprocessableEntity, utils.Payload{Success: false, Message: se.Message})
	case services.KindUnauthorized:
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{Success: false, Message: se.Message})
	case services.KindForbidden:
		utils.JSONResponse(w, http.StatusForbidden, utils.Payload{Success: false, Message: se.Message})
	case services.KindNotFound:
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: se.Message})
	case services.KindConflict:
		utils.JSONResponse(w, http.StatusConflict, utils.Payload{Success: false, Message: se.Message})
	default:
		logger.WithError(se.Err).WithField("message", se.Message).Error("internal service failure")
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Internal server error",
		})
	}
}

func validationError(w http.ResponseWriter, errs map[string]string) {
	utils.JSONResponse(w, http.StatusUnprocessableEntity, utils.Payload{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}
