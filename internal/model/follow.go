package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	FollowStatusPending  = "pending"
	FollowStatusAccepted = "accepted"
)

// Follow is a directed edge in the follow graph. Private followees leave the
// edge in 'pending' until they accept.
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"followee_id"`
	Status     string    `gorm:"size:20;not null" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Follower *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee *User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}

// TasteMatch is a cached compatibility score between two users. It is derived
// data; clearing it is always safe.
type TasteMatch struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	OtherID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"other_id"`
	Score     int       `gorm:"not null" json:"score"` // 0-100
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
