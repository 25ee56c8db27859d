package services

import (
	"context"
	"io"
	"mime"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/models"
	"github.com/vaulty-hq/vaulty/internal/repositories"
	"github.com/vaulty-hq/vaulty/internal/storage"
)

const (
	defaultListLimit   = 50
	defaultSearchLimit = 50
)

type FileService struct {
	files       *repositories.FileRepository
	projects    *repositories.ProjectRepository
	store       storage.Storage
	maxFileSize int64
	logger      *logrus.Logger
}

func NewFileService(files *repositories.FileRepository, projects *repositories.ProjectRepository, store storage.Storage, maxFileSize int64, logger *logrus.Logger) *FileService {
	return &FileService{
		files:       files,
		projects:    projects,
		store:       store,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Upload persists the blob and then creates the file record. The stored name
// is a fresh random identifier plus the original extension; identical bytes
// uploaded twice get two distinct stored names. The content hash is kept for
// lookup and integrity, never for storage-path collapsing.
func (s *FileService) Upload(ctx context.Context, p *auth.Principal, projectID uuid.UUID, originalName, declaredType string, declaredSize int64, r io.Reader, metadata models.Metadata) (*models.File, error) {
	if err := authorizeProject(p, projectID, s.projects); err != nil {
		return nil, err
	}

	if declaredSize > s.maxFileSize {
		return nil, Validation("File size exceeds limit")
	}

	ext := filepath.Ext(originalName)
	storedName := uuid.New().String() + ext

	res, err := s.store.Save(ctx, storedName, r)
	if err != nil {
		return nil, Internal("Failed to save file", err)
	}
	if res.Size > s.maxFileSize {
		// Declared size lied; drop the blob and reject.
		if derr := s.store.Delete(ctx, res.Path); derr != nil {
			s.logger.WithError(derr).WithField("path", res.Path).Warn("failed to remove oversized blob")
		}
		return nil, Validation("File size exceeds limit")
	}

	mimeType := declaredType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var uploadedBy *uuid.UUID
	if userID, ok := p.UserID(); ok {
		uploadedBy = &userID
	}
	if metadata == nil {
		metadata = models.Metadata{}
	}

	file := &models.File{
		ProjectID:    projectID,
		StoredName:   storedName,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         res.Size,
		ContentHash:  res.ContentHash,
		StoragePath:  res.Path,
		UploadedBy:   uploadedBy,
		Metadata:     metadata,
	}
	if err := s.files.Create(file); err != nil {
		// Never leave a record pointing at a failed write; the blob side
		// is cleaned up best-effort.
		if derr := s.store.Delete(ctx, res.Path); derr != nil {
			s.logger.WithError(derr).WithField("path", res.Path).Warn("failed to remove orphaned blob")
		}
		return nil, Internal("Failed to create file record", err)
	}

	return file, nil
}

// Download returns the file record and an open reader over its bytes, and
// counts the download.
func (s *FileService) Download(ctx context.Context, p *auth.Principal, fileID uuid.UUID) (*models.File, io.ReadCloser, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		return nil, nil, Internal("Failed to look up file", err)
	}
	if file == nil {
		return nil, nil, NotFound("File not found")
	}

	if err := authorizeProject(p, file.ProjectID, s.projects); err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, NotFound("File not found on disk")
	}

	if err := s.files.IncrementDownloadCount(file.ID); err != nil {
		s.logger.WithError(err).WithField("file_id", file.ID).Warn("failed to count download")
	}
	return file, rc, nil
}

// GetPublicFile serves the anonymous download path. It succeeds only when
// both the file and its owning project are public; every other outcome is
// NotFound so a guessed stored name confirms nothing about private files.
func (s *FileService) GetPublicFile(ctx context.Context, storedName string) (*models.File, io.ReadCloser, error) {
	file, err := s.files.FindPublicByStoredName(storedName)
	if err != nil {
		return nil, nil, Internal("Failed to look up file", err)
	}
	if file == nil {
		return nil, nil, NotFound("File not found")
	}

	rc, err := s.store.Open(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, NotFound("File not found on disk")
	}

	if err := s.files.IncrementDownloadCount(file.ID); err != nil {
		s.logger.WithError(err).WithField("file_id", file.ID).Warn("failed to count download")
	}
	return file, rc, nil
}

func (s *FileService) List(p *auth.Principal, projectID uuid.UUID, limit, offset int) ([]models.File, error) {
	if err := authorizeProject(p, projectID, s.projects); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	files, err := s.files.FindByProject(projectID, limit, offset)
	if err != nil {
		return nil, Internal("Failed to list files", err)
	}
	return files, nil
}

func (s *FileService) Search(p *auth.Principal, projectID uuid.UUID, query string) ([]models.File, error) {
	if err := authorizeProject(p, projectID, s.projects); err != nil {
		return nil, err
	}

	files, err := s.files.Search(projectID, query, defaultSearchLimit)
	if err != nil {
		return nil, Internal("Failed to search files", err)
	}
	return files, nil
}

// Delete is best-effort on storage and authoritative on the record: a blob
// that is already gone does not block removal of the row.
func (s *FileService) Delete(ctx context.Context, p *auth.Principal, fileID uuid.UUID) error {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		return Internal("Failed to look up file", err)
	}
	if file == nil {
		return NotFound("File not found")
	}

	if err := authorizeProject(p, file.ProjectID, s.projects); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.StoragePath); err != nil {
		s.logger.WithError(err).WithField("path", file.StoragePath).Warn("failed to remove stored blob")
	}
	if err := s.files.Delete(file.ID); err != nil {
		return Internal("Failed to delete file", err)
	}
	return nil
}

// UpdateMetadata replaces the metadata object (last write wins) and
// optionally toggles the file's public flag.
func (s *FileService) UpdateMetadata(p *auth.Principal, fileID uuid.UUID, metadata models.Metadata, isPublic *bool) (*models.File, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		return nil, Internal("Failed to look up file", err)
	}
	if file == nil {
		return nil, NotFound("File not found")
	}

	if err := authorizeProject(p, file.ProjectID, s.projects); err != nil {
		return nil, err
	}

	if metadata != nil {
		if err := s.files.UpdateMetadata(file.ID, metadata); err != nil {
			return nil, Internal("Failed to update metadata", err)
		}
		file.Metadata = metadata
	}
	if isPublic != nil {
		if err := s.files.SetPublic(file.ID, *isPublic); err != nil {
			return nil, Internal("Failed to update file visibility", err)
		}
		file.IsPublic = *isPublic
	}
	return file, nil
}
