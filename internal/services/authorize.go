package services

import (
	"github.com/google/uuid"

	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/repositories"
)

// authorizeProject applies the access rules every project-scoped operation
// shares. A principal carrying project scope is authorized for exactly the
// project its API key is bound to, with no ownership re-check; a user-only
// principal must own the target project. The decision runs before any side
// effect.
func authorizeProject(p *auth.Principal, projectID uuid.UUID, projects *repositories.ProjectRepository) error {
	if p.HasProject() {
		if p.Project.ID == projectID {
			return nil
		}
		return Forbidden("Access denied")
	}

	userID, ok := p.UserID()
	if !ok {
		return Unauthorized("Missing credentials")
	}

	owned, err := projects.OwnedBy(projectID, userID)
	if err != nil {
		return Internal("Failed to check project access", err)
	}
	if !owned {
		return Forbidden("Access denied")
	}
	return nil
}

// requireOwner is the stricter gate for project-management operations:
// user scope plus ownership, always. API-key scope alone is never enough.
func requireOwner(p *auth.Principal, projectID uuid.UUID, projects *repositories.ProjectRepository) error {
	userID, ok := p.UserID()
	if !ok {
		return Unauthorized("Missing authentication token")
	}

	owned, err := projects.OwnedBy(projectID, userID)
	if err != nil {
		return Internal("Failed to check project access", err)
	}
	if !owned {
		return Forbidden("Access denied")
	}
	return nil
}
