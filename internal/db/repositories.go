package db

// Repositories provides access to all database repositories
type Repositories struct {
	MediaFiles *MediaFileRepository
	ShowOrders *ShowOrderRepository
	Settings   *SettingsRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		MediaFiles: NewMediaFileRepository(db),
		ShowOrders: NewShowOrderRepository(db),
		Settings:   NewSettingsRepository(db),
	}
}
