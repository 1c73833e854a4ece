package models

import (
	"time"
)

// Settings represents schedule configuration, stored as a singleton row.
// MinShowMinutes is persisted and served but not yet enforced by the
// schedule builder.
type Settings struct {
	ID             int       `json:"id" gorm:"type:integer;primaryKey;default:1;column:id"`
	AdBreakMinutes int       `json:"ad_break_minutes" gorm:"type:integer;not null;default:3;column:ad_break_minutes" validate:"gte=1,lte=30"`
	MinShowMinutes int       `json:"min_show_minutes" gorm:"type:integer;not null;default:5;column:min_show_minutes" validate:"gte=1"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// DefaultSettings returns settings with default values
func DefaultSettings() *Settings {
	return &Settings{
		ID:             1,
		AdBreakMinutes: 3,
		MinShowMinutes: 5,
		UpdatedAt:      time.Now().UTC(),
	}
}

// AdBreakTargetMS returns the ad break budget in milliseconds
func (s *Settings) AdBreakTargetMS() int64 {
	return int64(s.AdBreakMinutes) * 60 * 1000
}
