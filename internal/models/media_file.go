package models

import (
	"time"

	"github.com/google/uuid"
)

// Media kind constants
const (
	KindShow       = "show"
	KindCommercial = "commercial"
)

// MediaFile represents a probed media file and its cached duration.
// Durations are immutable once probed; the row is the durable half of the
// read-through duration cache.
type MediaFile struct {
	ID         uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Path       string    `json:"path" gorm:"type:text;not null;uniqueIndex;column:path" validate:"required"`
	Channel    string    `json:"channel" gorm:"type:text;not null;column:channel"`
	Kind       string    `json:"kind" gorm:"type:text;not null;column:kind" validate:"oneof=show commercial"`
	DurationMS int64     `json:"duration_ms" gorm:"type:integer;not null;column:duration_ms" validate:"required,gte=1000"`
	ProbedAt   time.Time `json:"probed_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:probed_at"`
}

// NewMediaFile creates a new MediaFile with generated UUID and timestamp
func NewMediaFile(path, channel, kind string, durationMS int64) *MediaFile {
	return &MediaFile{
		ID:         uuid.New(),
		Path:       path,
		Channel:    channel,
		Kind:       kind,
		DurationMS: durationMS,
		ProbedAt:   time.Now().UTC(),
	}
}
