package db

import (
	"context"

	"github.com/airwave-tv/airwave/internal/models"
	"gorm.io/gorm/clause"
)

// ShowOrderRepository persists the last shuffled show order per channel
type ShowOrderRepository struct {
	db *DB
}

// NewShowOrderRepository creates a new show order repository
func NewShowOrderRepository(db *DB) *ShowOrderRepository {
	return &ShowOrderRepository{db: db}
}

// Get retrieves the remembered order for a channel.
// Missing records return ErrNotFound; callers treat that as "no prior order".
func (r *ShowOrderRepository) Get(ctx context.Context, channel string) (*models.ShowOrder, error) {
	var order models.ShowOrder
	result := r.db.WithContext(ctx).Where("channel = ?", channel).First(&order)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &order, nil
}

// Save overwrites the remembered order for a channel
func (r *ShowOrderRepository) Save(ctx context.Context, order *models.ShowOrder) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"paths", "updated_at"}),
	}).Create(order)
	if result.Error != nil {
		return MapGormError(result.Error)
	}
	return nil
}

// Delete removes the remembered order for a channel
func (r *ShowOrderRepository) Delete(ctx context.Context, channel string) error {
	result := r.db.WithContext(ctx).Where("channel = ?", channel).Delete(&models.ShowOrder{})
	if result.Error != nil {
		return MapGormError(result.Error)
	}
	return nil
}
