package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is single-owner: there is no collaborator list, and access beyond
// the owner is only possible through the project API key or public-file rules.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"ownerId" gorm:"type:uuid;index;not null"`
	IsPublic    bool      `json:"isPublic" gorm:"default:false"`
	// APIKey is generated once at creation and never rotated.
	APIKey    string    `json:"apiKey" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
