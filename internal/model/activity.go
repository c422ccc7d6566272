package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityTypeRated         = "rated"
	ActivityTypeStatusChanged = "status_changed"
	ActivityTypeCommented     = "commented"
)

// ActivityData is the per-action payload stored as jsonb. Fields are pointers
// so that merging two activities only overwrites what the later one actually set.
type ActivityData struct {
	Rating         *string `json:"rating,omitempty"`
	Status         *string `json:"status,omitempty"`
	PreviousStatus *string `json:"previous_status,omitempty"`
	CommentID      *string `json:"comment_id,omitempty"`
}

func (d ActivityData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *ActivityData) Scan(value interface{}) error {
	if value == nil {
		*d = ActivityData{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported type for ActivityData: %T", value)
	}
}

// Merge overlays other on top of d, field by field. Unset (nil) fields in
// other leave the existing value alone.
func (d *ActivityData) Merge(other ActivityData) {
	if other.Rating != nil {
		d.Rating = other.Rating
	}
	if other.Status != nil {
		d.Status = other.Status
	}
	if other.PreviousStatus != nil {
		d.PreviousStatus = other.PreviousStatus
	}
	if other.CommentID != nil {
		d.CommentID = other.CommentID
	}
}

// Activity is one discrete user action on one media item. Rows are immutable
// once created; display grouping is derived at read time, never written back.
type Activity struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_id"`
	User         User         `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	MediaID      string       `gorm:"size:50;index;not null" json:"media_id"`
	MediaType    string       `gorm:"size:20;not null" json:"media_type"` // 'movie' or 'tv'
	ActivityType string       `gorm:"size:50;not null" json:"activity_type"`
	ActivityData ActivityData `gorm:"type:jsonb" json:"activity_data"`
	GroupID      *string      `gorm:"size:100;index" json:"group_id,omitempty"`
	CreatedAt    time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
