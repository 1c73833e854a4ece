package db

import (
	"context"
	"fmt"
	"time"

	"github.com/airwave-tv/airwave/internal/models"
)

// MediaFileRepository handles database operations for probed media files
type MediaFileRepository struct {
	db *DB
}

// NewMediaFileRepository creates a new media file repository
func NewMediaFileRepository(db *DB) *MediaFileRepository {
	return &MediaFileRepository{db: db}
}

// GetByPath retrieves a media file record by its absolute path
func (r *MediaFileRepository) GetByPath(ctx context.Context, path string) (*models.MediaFile, error) {
	var file models.MediaFile
	result := r.db.WithContext(ctx).Where("path = ?", path).First(&file)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &file, nil
}

// Upsert stores a probed duration, replacing any existing record for the path
func (r *MediaFileRepository) Upsert(ctx context.Context, file *models.MediaFile) error {
	err := r.db.WithContext(ctx).Create(file).Error
	if err == nil {
		return nil
	}
	if !IsDuplicate(MapGormError(err)) {
		return MapGormError(err)
	}

	// Path already probed; keep the original row identity, refresh the facts
	existing, err := r.GetByPath(ctx, file.Path)
	if err != nil {
		return fmt.Errorf("failed to fetch existing media file after duplicate: %w", err)
	}
	file.ID = existing.ID
	file.ProbedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.MediaFile{}).
		Where("id = ?", existing.ID.String()).
		Updates(map[string]interface{}{
			"channel":     file.Channel,
			"kind":        file.Kind,
			"duration_ms": file.DurationMS,
			"probed_at":   file.ProbedAt,
		})
	if result.Error != nil {
		return MapGormError(result.Error)
	}
	return nil
}

// ListByChannel retrieves all cached media file records for a channel
func (r *MediaFileRepository) ListByChannel(ctx context.Context, channel string) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	result := r.db.WithContext(ctx).
		Where("channel = ?", channel).
		Order("path ASC").
		Find(&files)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return files, nil
}

// DeleteByPath removes a cached record, e.g. after a file disappears
func (r *MediaFileRepository) DeleteByPath(ctx context.Context, path string) error {
	result := r.db.WithContext(ctx).Where("path = ?", path).Delete(&models.MediaFile{})
	if result.Error != nil {
		return MapGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
