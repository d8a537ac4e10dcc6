package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Day lifecycle states, derived from the nullable timestamps.
const (
	DayNotStarted = "not_started"
	DayOngoing    = "ongoing"
	DayClosed     = "closed"
)

// DailyClosing is the one row per calendar date of the closing registry.
// ReportDate and StartDate are YYYY-MM-DD in the register's time zone.
// Once ClosingTime is set, Payload holds the frozen Z-report and is the only
// source of truth for that date.
type DailyClosing struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ReportDate  string     `gorm:"type:varchar(10);uniqueIndex;not null"`
	StartDate   string     `gorm:"type:varchar(10);not null"`
	OpeningTime *time.Time
	ClosingTime *time.Time
	ClosedByID  *uuid.UUID `gorm:"type:uuid"`
	Payload     datatypes.JSON
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ClosedBy *User `gorm:"foreignKey:ClosedByID"`
}

// State maps the timestamps onto not_started | ongoing | closed.
func (d *DailyClosing) State() string {
	switch {
	case d == nil || d.OpeningTime == nil:
		return DayNotStarted
	case d.ClosingTime == nil:
		return DayOngoing
	default:
		return DayClosed
	}
}
