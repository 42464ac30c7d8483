// Package models contains database model definitions.
package models

import (
	"time"
)

// Base holds the columns shared by every table. Embed it in application models.
type Base struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
