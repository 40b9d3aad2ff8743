package models

import (
	"time"
)

// CardView tracks which cards have been opened on the detail page. The home
// page lists the most recent ones and the refresh worker keeps their
// snapshots warm.
type CardView struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CardUUID     string    `json:"card_uuid" gorm:"not null;uniqueIndex"`
	Name         string    `json:"name"`
	Set          string    `json:"set"`
	ImageURL     string    `json:"image_url"`
	ViewCount    int       `json:"view_count" gorm:"default:1"`
	LastViewedAt time.Time `json:"last_viewed_at" gorm:"index"`
}
