package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/airwave-tv/airwave/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repositories {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, RunMigrations(sqlDB, "file://../../migrations"))

	return NewRepositories(database)
}

func TestMediaFileUpsert(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	file := models.NewMediaFile("/media/Comedy/Shows/s1.mp4", "Comedy", models.KindShow, 1800000)
	require.NoError(t, repos.MediaFiles.Upsert(ctx, file))

	got, err := repos.MediaFiles.GetByPath(ctx, file.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(1800000), got.DurationMS)
	assert.Equal(t, models.KindShow, got.Kind)

	// Re-probing the same path overwrites the duration, keeps the row
	again := models.NewMediaFile(file.Path, "Comedy", models.KindShow, 1850000)
	require.NoError(t, repos.MediaFiles.Upsert(ctx, again))

	got, err = repos.MediaFiles.GetByPath(ctx, file.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(1850000), got.DurationMS)

	files, err := repos.MediaFiles.ListByChannel(ctx, "Comedy")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestMediaFileGetByPath_NotFound(t *testing.T) {
	repos := setupTestDB(t)

	_, err := repos.MediaFiles.GetByPath(context.Background(), "/media/missing.mp4")
	assert.True(t, IsNotFound(err))
}

func TestMediaFileListByChannel(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repos.MediaFiles.Upsert(ctx,
		models.NewMediaFile("/media/Comedy/Shows/b.mp4", "Comedy", models.KindShow, 1800000)))
	require.NoError(t, repos.MediaFiles.Upsert(ctx,
		models.NewMediaFile("/media/Comedy/Commercials/a.mp4", "Comedy", models.KindCommercial, 30000)))
	require.NoError(t, repos.MediaFiles.Upsert(ctx,
		models.NewMediaFile("/media/Action/Shows/c.mp4", "Action", models.KindShow, 2700000)))

	files, err := repos.MediaFiles.ListByChannel(ctx, "Comedy")
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Sorted by path
	assert.Equal(t, "/media/Comedy/Commercials/a.mp4", files[0].Path)
	assert.Equal(t, "/media/Comedy/Shows/b.mp4", files[1].Path)
}

func TestMediaFileDeleteByPath(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	file := models.NewMediaFile("/media/Comedy/Shows/gone.mp4", "Comedy", models.KindShow, 1800000)
	require.NoError(t, repos.MediaFiles.Upsert(ctx, file))

	require.NoError(t, repos.MediaFiles.DeleteByPath(ctx, file.Path))

	_, err := repos.MediaFiles.GetByPath(ctx, file.Path)
	assert.True(t, IsNotFound(err))

	err = repos.MediaFiles.DeleteByPath(ctx, file.Path)
	assert.True(t, IsNotFound(err))
}

func TestShowOrderRoundTrip(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	_, err := repos.ShowOrders.Get(ctx, "Comedy")
	assert.True(t, IsNotFound(err))

	first, err := models.NewShowOrder("Comedy", []string{"s2.mp4", "s1.mp4"})
	require.NoError(t, err)
	require.NoError(t, repos.ShowOrders.Save(ctx, first))

	got, err := repos.ShowOrders.Get(ctx, "Comedy")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2.mp4", "s1.mp4"}, got.Order())

	// Saving again overwrites, one row per channel
	second, err := models.NewShowOrder("Comedy", []string{"s1.mp4", "s2.mp4"})
	require.NoError(t, err)
	require.NoError(t, repos.ShowOrders.Save(ctx, second))

	got, err = repos.ShowOrders.Get(ctx, "Comedy")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1.mp4", "s2.mp4"}, got.Order())
}

func TestShowOrderDelete(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	order, err := models.NewShowOrder("Comedy", []string{"s1.mp4"})
	require.NoError(t, err)
	require.NoError(t, repos.ShowOrders.Save(ctx, order))

	require.NoError(t, repos.ShowOrders.Delete(ctx, "Comedy"))

	_, err = repos.ShowOrders.Get(ctx, "Comedy")
	assert.True(t, IsNotFound(err))
}

func TestSettingsGetCreatesDefaults(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	settings, err := repos.Settings.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, settings.AdBreakMinutes)
	assert.Equal(t, 5, settings.MinShowMinutes)
	assert.Equal(t, int64(180000), settings.AdBreakTargetMS())

	// Second read returns the persisted row, not a new one
	again, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.AdBreakMinutes, again.AdBreakMinutes)
}

func TestSettingsUpdate(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	settings, err := repos.Settings.Get(ctx)
	require.NoError(t, err)

	settings.AdBreakMinutes = 5
	require.NoError(t, repos.Settings.Update(ctx, settings))

	got, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AdBreakMinutes)
	assert.Equal(t, int64(300000), got.AdBreakTargetMS())
}
