package models

import "time"

// Alert rows back the in-app alert feed. UserID 0 marks operator alerts
// (e.g. archival failures) that are not tied to a single account.
type Alert struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	Type      string    `gorm:"size:20"` // "warning" | "info"
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time
}
