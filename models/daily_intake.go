package models

import "time"

// DailyIntake is the live aggregate document, one row per (user, current
// day). DateKey is YYYY-MM-DD in the configured boundary timezone.
type DailyIntake struct {
	ID        uint        `gorm:"primaryKey" json:"-"`
	UserID    uint        `gorm:"not null;uniqueIndex:uidx_intake_user_date" json:"user_id"`
	DateKey   string      `gorm:"size:10;not null;uniqueIndex:uidx_intake_user_date" json:"date"`
	Entries   []FoodEntry `gorm:"serializer:json" json:"entries"`
	Totals    MacroTotals `gorm:"embedded;embeddedPrefix:total_" json:"totals"`
	CreatedAt time.Time   `json:"-"`
	UpdatedAt time.Time   `json:"-"`
}

// IntakeArchive is the immutable snapshot of one finished day. A row is
// written exactly once per (user, date); re-archiving identical data is a
// no-op and differing data is rejected.
type IntakeArchive struct {
	ID         uint        `gorm:"primaryKey" json:"-"`
	UserID     uint        `gorm:"not null;uniqueIndex:uidx_archive_user_date" json:"user_id"`
	DateKey    string      `gorm:"size:10;not null;uniqueIndex:uidx_archive_user_date" json:"date"`
	Entries    []FoodEntry `gorm:"serializer:json" json:"entries"`
	Totals     MacroTotals `gorm:"embedded;embeddedPrefix:total_" json:"totals"`
	ArchivedAt time.Time   `json:"archived_at"`
}
