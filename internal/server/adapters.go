package server

import (
	"context"

	"github.com/airwave-tv/airwave/internal/db"
	"github.com/airwave-tv/airwave/internal/models"
)

// orderStore adapts the show-order repository to schedule.OrderStore.
// Missing or corrupt records surface as "no prior order".
type orderStore struct {
	repos *db.Repositories
}

func (s *orderStore) LastOrder(ctx context.Context, channel string) ([]string, error) {
	record, err := s.repos.ShowOrders.Get(ctx, channel)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record.Order(), nil
}

func (s *orderStore) SaveOrder(ctx context.Context, channel string, order []string) error {
	record, err := models.NewShowOrder(channel, order)
	if err != nil {
		return err
	}
	return s.repos.ShowOrders.Save(ctx, record)
}

// settingsSource adapts the settings repository to schedule.SettingsSource
type settingsSource struct {
	repos *db.Repositories
}

func (s *settingsSource) AdBreakTargetMS(ctx context.Context) (int64, error) {
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	return settings.AdBreakTargetMS(), nil
}
