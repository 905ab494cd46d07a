package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is one dish submission. ThumbnailURL and LargeURL are either both
// null or both set; partial image state is never persisted.
type Recipe struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Title              string           `gorm:"size:255;not null" json:"title"`
	Description        string           `gorm:"type:text" json:"description"`
	Ingredients        JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	PrepTimeMinutes    int              `gorm:"not null;default:0" json:"prep_time_minutes"`
	CookingTimeMinutes int              `gorm:"not null;default:0" json:"cooking_time_minutes"`
	ServingSize        int              `gorm:"not null;default:1" json:"serving_size"`
	IsPublished        bool             `gorm:"not null;default:false" json:"is_published"`
	ThumbnailURL       *string          `gorm:"size:255" json:"thumbnail_url"`
	LargeURL           *string          `gorm:"size:255" json:"large_url"`
	AuthorID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"author_id"`
}

// BeforeCreate assigns the row id up front so it is available to transaction
// callbacks before commit, on every dialect.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
