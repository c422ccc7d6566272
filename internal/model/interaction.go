package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RatingMeh  = "meh"
	RatingLike = "like"
	RatingLove = "love"
)

const (
	StatusWatching    = "watching"
	StatusWantToWatch = "want_to_watch"
	StatusWatched     = "watched"
)

// Rating is one user's verdict on one media item. Upsert-keyed on
// (user_id, media_id) so repeated writes converge to last-write-wins.
type Rating struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	MediaID   string    `gorm:"size:50;primaryKey" json:"media_id"`
	MediaType string    `gorm:"size:20;not null" json:"media_type"`
	Value     string    `gorm:"size:20;not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WatchStatus tracks where one media item sits on a user's watchlist.
type WatchStatus struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	MediaID   string    `gorm:"size:50;primaryKey" json:"media_id"`
	MediaType string    `gorm:"size:20;not null" json:"media_type"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ActivityID uuid.UUID `gorm:"type:uuid;index;not null" json:"activity_id"`
	MediaID    string    `gorm:"size:50;index;not null" json:"media_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// ActivityLike is a unique (user, activity) pair.
type ActivityLike struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ActivityID uuid.UUID `gorm:"type:uuid;primaryKey" json:"activity_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
