package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metadata is an arbitrary JSON object stored as text.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported metadata column type")
	}
	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

type File struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;index;not null"`
	// StoredName is the opaque random identifier the bytes are persisted
	// under, independent of the client-supplied name.
	StoredName   string `json:"filename" gorm:"uniqueIndex;not null"`
	OriginalName string `json:"originalName" gorm:"not null"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size" gorm:"not null"` // bytes
	// ContentHash is the sha256 of the bytes as written to storage. It is
	// kept for lookup and integrity only; uploads are never deduplicated
	// by hash.
	ContentHash   string     `json:"contentHash" gorm:"index"`
	StoragePath   string     `json:"-" gorm:"not null"`
	UploadedBy    *uuid.UUID `json:"uploadedBy" gorm:"type:uuid;index"` // nil for API-key-only uploads
	Metadata      Metadata   `json:"metadata" gorm:"type:text"`
	IsPublic      bool       `json:"isPublic" gorm:"default:false"`
	DownloadCount int64      `json:"downloadCount" gorm:"default:0"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
