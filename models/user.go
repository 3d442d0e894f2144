package models

import (
	"time"
)

// User is a pool player. Authentication and sessions live behind the
// gateway; this service only keeps the identity fields that picks and
// standings need.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"not null"`
	DisplayName    string    `json:"display_name" gorm:"not null"`
	IsAdmin        bool      `json:"is_admin" gorm:"default:false"`
	IsActivePlayer bool      `json:"is_active_player" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`

	Picks []Pick `json:"picks,omitempty" gorm:"foreignKey:UserID"`
}
