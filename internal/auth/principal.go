package auth

import (
	"github.com/google/uuid"

	"github.com/vaulty-hq/vaulty/internal/models"
)

// Principal is the resolved identity a request is authorized as: project
// scope from a valid API key, user scope from a valid bearer token, or both
// when an API-key request also carries a valid token. A Principal with
// neither scope is never produced by the resolver.
type Principal struct {
	Project *models.Project
	User    *TokenClaims
}

func (p *Principal) HasProject() bool {
	return p != nil && p.Project != nil
}

func (p *Principal) HasUser() bool {
	return p != nil && p.User != nil
}

// UserID parses the user id out of the token claims. The second return is
// false when the principal has no user scope or the claim is malformed.
func (p *Principal) UserID() (uuid.UUID, bool) {
	if !p.HasUser() {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(p.User.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
