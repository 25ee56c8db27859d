package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/repositories"
	"github.com/vaulty-hq/vaulty/internal/utils"
)

type contextKey string

const principalKey contextKey = "principal"

// Resolver turns the two optional request credentials into one Principal.
// API key (X-API-Key header, falling back to an api_key parameter) binds
// project scope; a bearer token binds user scope. With an API key present a
// bad bearer token is simply ignored; without one the bearer is mandatory.
type Resolver struct {
	tokens   *auth.TokenService
	projects *repositories.ProjectRepository
}

func NewResolver(tokens *auth.TokenService, projects *repositories.ProjectRepository) *Resolver {
	return &Resolver{tokens: tokens, projects: projects}
}

func (rv *Resolver) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := rv.resolve(r)
		if err != nil {
			utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
				Success: false,
				Message: err.Error(),
			})
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (rv *Resolver) resolve(r *http.Request) (*auth.Principal, error) {
	apiKey := APIKey(r)
	bearer := BearerToken(r)

	if apiKey != "" {
		project, err := rv.projects.FindByAPIKey(apiKey)
		if err != nil {
			return nil, errors.New("Invalid API key")
		}
		if project == nil {
			return nil, errors.New("Invalid API key")
		}

		principal := &auth.Principal{Project: project}
		if bearer != "" {
			if claims, err := rv.tokens.Validate(bearer); err == nil {
				principal.User = claims
			}
		}
		return principal, nil
	}

	if bearer == "" {
		return nil, errors.New("Missing credentials")
	}
	claims, err := rv.tokens.Validate(bearer)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, errors.New("Token expired")
		}
		return nil, errors.New("Invalid token")
	}
	return &auth.Principal{User: claims}, nil
}

// PrincipalFrom returns the Principal the resolver attached, or nil on
// routes mounted outside it.
func PrincipalFrom(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalKey).(*auth.Principal)
	return p
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// APIKey extracts the project API key from the X-API-Key header, falling
// back to an api_key query or form parameter.
func APIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if key := r.URL.Query().Get("api_key"); key != "" {
		return key
	}
	// Multipart bodies are parsed by the handlers, under their size caps.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return ""
	}
	return r.PostFormValue("api_key")
}
