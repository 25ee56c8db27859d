package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/models"
	"github.com/vaulty-hq/vaulty/internal/repositories"
	"github.com/vaulty-hq/vaulty/internal/storage"
	"github.com/vaulty-hq/vaulty/internal/utils"
)

const apiKeyBytes = 32 // 256-bit keys, rendered as 64 hex chars

type ProjectService struct {
	projects *repositories.ProjectRepository
	files    *repositories.FileRepository
	store    storage.Storage
	logger   *logrus.Logger
}

func NewProjectService(projects *repositories.ProjectRepository, files *repositories.FileRepository, store storage.Storage, logger *logrus.Logger) *ProjectService {
	return &ProjectService{projects: projects, files: files, store: store, logger: logger}
}

func (s *ProjectService) Create(ownerID uuid.UUID, name, description string, isPublic bool) (*models.Project, error) {
	apiKey, err := utils.GenerateAPIKey(apiKeyBytes)
	if err != nil {
		return nil, Internal("Failed to generate API key", err)
	}

	project := &models.Project{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		IsPublic:    isPublic,
		APIKey:      apiKey,
	}
	if err := s.projects.Create(project); err != nil {
		return nil, Internal("Failed to create project", err)
	}
	return project, nil
}

func (s *ProjectService) List(ownerID uuid.UUID) ([]models.Project, error) {
	projects, err := s.projects.FindByOwner(ownerID)
	if err != nil {
		return nil, Internal("Failed to list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(p *auth.Principal, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.FindByID(projectID)
	if err != nil {
		return nil, Internal("Failed to look up project", err)
	}
	if project == nil {
		return nil, NotFound("Project not found")
	}
	if err := requireOwner(p, projectID, s.projects); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(p *auth.Principal, projectID uuid.UUID, updates map[string]any) error {
	if err := requireOwner(p, projectID, s.projects); err != nil {
		return err
	}
	if err := s.projects.Update(projectID, updates); err != nil {
		return Internal("Failed to update project", err)
	}
	return nil
}

// Delete removes the project, its file rows, and their blobs. Blob removal
// is best-effort and runs concurrently; the record deletes are authoritative.
func (s *ProjectService) Delete(ctx context.Context, p *auth.Principal, projectID uuid.UUID) error {
	if err := requireOwner(p, projectID, s.projects); err != nil {
		return err
	}

	files, err := s.files.FindByProject(projectID, -1, 0)
	if err != nil {
		return Internal("Failed to list project files", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, f := range files {
		g.Go(func() error {
			if err := s.store.Delete(gctx, f.StoragePath); err != nil {
				s.logger.WithError(err).WithField("path", f.StoragePath).Warn("failed to remove stored blob")
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range files {
		if err := s.files.Delete(f.ID); err != nil {
			return Internal("Failed to delete project files", err)
		}
	}

	if err := s.projects.Delete(projectID); err != nil {
		return Internal("Failed to delete project", err)
	}
	return nil
}
