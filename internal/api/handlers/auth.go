package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/vaulty-hq/vaulty/internal/api/middleware"
	"github.com/vaulty-hq/vaulty/internal/services"
	"github.com/vaulty-hq/vaulty/internal/utils"
)

type AuthHandler struct {
	auth     *services.AuthService
	oauth    *oauth2.Config
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewAuthHandler(auth *services.AuthService, oauth *oauth2.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		oauth:    oauth,
		validate: validator.New(),
		logger:   logger,
	}
}

type registerInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Create a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if errs := h.decodeAndValidate(r, &input); errs != nil {
		validationError(w, errs)
		return
	}

	user, err := h.auth.Register(input.Username, input.Email, input.Password)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data: map[string]any{
			"user_id":  user.ID,
			"username": user.Username,
		},
	})
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login godoc
// @Summary Exchange credentials for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if errs := h.decodeAndValidate(r, &input); errs != nil {
		validationError(w, errs)
		return
	}

	token, user, err := h.auth.Login(input.Username, input.Password)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data: map[string]any{
			"token": token,
			"user": map[string]any{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"role":     user.Role,
			},
		},
	})
}

// Me returns the account behind the presented bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Missing authentication token",
		})
		return
	}

	user, err := h.auth.CurrentUser(token)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "User info",
		Data: map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Refresh issues a fresh token for a still-valid one. The presented token
// stays usable until its own expiry.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Missing authentication token",
		})
		return
	}

	newToken, err := h.auth.Refresh(token)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Token refreshed",
		Data:    map[string]any{"token": newToken},
	})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	flow := r.URL.Query().Get("flow")
	if flow == "" {
		flow = "login"
	}

	state, err := GenerateState(map[string]string{"flow": flow})
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Internal server error",
		})
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if _, err := DecodeState(r.FormValue("state")); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid OAuth state",
		})
		return
	}

	token, err := h.oauth.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.WithError(err).Warn("oauth code exchange failed")
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Code exchange failed",
		})
		return
	}

	client := h.oauth.Client(r.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadGateway, utils.Payload{
			Success: false,
			Message: "Failed to get user info",
		})
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var googleUser struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &googleUser); err != nil || googleUser.Email == "" {
		utils.JSONResponse(w, http.StatusBadGateway, utils.Payload{
			Success: false,
			Message: "Failed to parse user info",
		})
		return
	}

	sessionToken, user, err := h.auth.LoginWithGoogle(googleUser.Email, googleUser.Name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data: map[string]any{
			"token": sessionToken,
			"user": map[string]any{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"role":     user.Role,
			},
		},
	})
}

// decodeAndValidate fills input from the JSON body and returns a field error
// map on failure, nil on success.
func (h *AuthHandler) decodeAndValidate(r *http.Request, input any) map[string]string {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(input); err != nil {
		return map[string]string{"body": "Invalid JSON body"}
	}

	if err := h.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return map[string]string{"body": "Invalid input"}
		}
		errs := make(map[string]string)
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "required":
				errs[fe.Field()] = "Required field"
			case "email":
				errs[fe.Field()] = "Invalid email address"
			default:
				errs[fe.Field()] = "Invalid value"
			}
		}
		return errs
	}
	return nil
}
