package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the recipe author row. Credential management lives in the auth
// service; this backend only reads display data for listings.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	DisplayName string         `gorm:"size:100;not null" json:"display_name"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	AvatarURL   *string        `gorm:"size:255" json:"avatar_url"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
