package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaulty-hq/vaulty/internal/models"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(file *models.File) error {
	return r.db.Create(file).Error
}

func (r *FileRepository) FindByID(id uuid.UUID) (*models.File, error) {
	var file models.File
	err := r.db.Where("id = ?", id).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) FindByProject(projectID uuid.UUID, limit, offset int) ([]models.File, error) {
	var files []models.File
	err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&files).Error
	return files, err
}

func (r *FileRepository) Search(projectID uuid.UUID, query string, limit int) ([]models.File, error) {
	var files []models.File
	pattern := "%" + query + "%"
	err := r.db.Where("project_id = ?", projectID).
		Where("stored_name LIKE ? OR original_name LIKE ? OR metadata LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&files).Error
	return files, err
}

// FindPublicByStoredName resolves a file for anonymous download. Both the
// file and its owning project must be public; anything else looks exactly
// like the file not existing.
func (r *FileRepository) FindPublicByStoredName(storedName string) (*models.File, error) {
	var file models.File
	err := r.db.Joins("JOIN projects ON projects.id = files.project_id").
		Where("files.stored_name = ? AND files.is_public = ? AND projects.is_public = ?", storedName, true, true).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) UpdateMetadata(id uuid.UUID, metadata models.Metadata) error {
	return r.db.Model(&models.File{}).Where("id = ?", id).Update("metadata", metadata).Error
}

func (r *FileRepository) SetPublic(id uuid.UUID, isPublic bool) error {
	return r.db.Model(&models.File{}).Where("id = ?", id).Update("is_public", isPublic).Error
}

func (r *FileRepository) IncrementDownloadCount(id uuid.UUID) error {
	return r.db.Model(&models.File{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

func (r *FileRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.File{}).Error
}
