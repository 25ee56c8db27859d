package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaulty-hq/vaulty/internal/models"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepository) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("id = ?", id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) FindByAPIKey(apiKey string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("api_key = ?", apiKey).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) FindByOwner(ownerID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// OwnedBy reports whether the project's owner id equals userID. There is no
// secondary grant mechanism.
func (r *ProjectRepository) OwnedBy(projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("id = ? AND owner_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// Update applies the allowed mutable fields only; the API key is never
// touched after creation.
func (r *ProjectRepository) Update(id uuid.UUID, updates map[string]any) error {
	allowed := map[string]bool{"name": true, "description": true, "is_public": true}
	filtered := make(map[string]any, len(updates))
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return r.db.Model(&models.Project{}).Where("id = ?", id).Updates(filtered).Error
}

func (r *ProjectRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.Project{}).Error
}
