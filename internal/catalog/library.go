// Package catalog provides access to the on-disk media library: channel
// discovery, media file gathering, and duration probing with a read-through
// cache.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/airwave-tv/airwave/internal/db"
	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/airwave-tv/airwave/internal/models"
	"github.com/airwave-tv/airwave/internal/schedule"
)

// Channel folder layout
const (
	showsDirName       = "Shows"
	commercialsDirName = "Commercials"
)

// Supported video file extensions
var supportedVideoFormats = []string{
	".mp4", ".avi", ".mkv", ".mov", ".ts", ".m4v", ".wmv", ".flv", ".webm",
}

// ErrChannelNotFound is returned when a named channel folder does not exist
var ErrChannelNotFound = errors.New("channel not found")

// ChannelInfo summarizes one discovered channel
type ChannelInfo struct {
	Name            string `json:"name"`
	ShowCount       int    `json:"show_count"`
	CommercialCount int    `json:"commercial_count"`
}

// Library is the media catalog accessor. It discovers channels under the
// configured root, lists their media files, and probes durations through a
// two-level (memory, database) read-through cache so each file is probed at
// most once.
type Library struct {
	root               string
	prober             *Prober
	repos              *db.Repositories
	fallbackDurationMS int64

	mu        sync.RWMutex
	durations map[string]int64
}

// NewLibrary creates a media library accessor rooted at the given folder
func NewLibrary(root string, prober *Prober, repos *db.Repositories, fallbackDurationMS int64) *Library {
	return &Library{
		root:               root,
		prober:             prober,
		repos:              repos,
		fallbackDurationMS: fallbackDurationMS,
		durations:          make(map[string]int64),
	}
}

// Root returns the channels root folder
func (l *Library) Root() string {
	return l.root
}

// DiscoverChannels returns the channel folders under the root, sorted by
// name. A folder is a channel only if it contains both Shows/ and
// Commercials/ subfolders.
func (l *Library) DiscoverChannels() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read channels root: %w", err)
	}

	var channels []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(l.root, entry.Name())
		if dirExists(filepath.Join(dir, showsDirName)) && dirExists(filepath.Join(dir, commercialsDirName)) {
			channels = append(channels, entry.Name())
		}
	}

	sort.Slice(channels, func(i, j int) bool {
		return strings.ToLower(channels[i]) < strings.ToLower(channels[j])
	})

	return channels, nil
}

// ChannelExists reports whether a named channel folder is present
func (l *Library) ChannelExists(channel string) bool {
	dir := filepath.Join(l.root, channel)
	return dirExists(filepath.Join(dir, showsDirName)) && dirExists(filepath.Join(dir, commercialsDirName))
}

// ChannelInfos returns summary data for every discovered channel
func (l *Library) ChannelInfos() ([]ChannelInfo, error) {
	channels, err := l.DiscoverChannels()
	if err != nil {
		return nil, err
	}

	infos := make([]ChannelInfo, 0, len(channels))
	for _, channel := range channels {
		dir := filepath.Join(l.root, channel)
		infos = append(infos, ChannelInfo{
			Name:            channel,
			ShowCount:       len(GatherFiles(filepath.Join(dir, showsDirName))),
			CommercialCount: len(GatherFiles(filepath.Join(dir, commercialsDirName))),
		})
	}
	return infos, nil
}

// ChannelContent returns the shows and commercials for a channel with
// durations resolved. A file that cannot be probed gets the fallback
// duration; a bad file never fails the whole channel.
func (l *Library) ChannelContent(ctx context.Context, channel string) (shows, ads []schedule.Item, err error) {
	if !l.ChannelExists(channel) {
		return nil, nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channel)
	}

	dir := filepath.Join(l.root, channel)

	for _, path := range GatherFiles(filepath.Join(dir, showsDirName)) {
		shows = append(shows, schedule.Item{
			Path:       path,
			DurationMS: l.Duration(ctx, path, channel, models.KindShow),
		})
	}
	for _, path := range GatherFiles(filepath.Join(dir, commercialsDirName)) {
		ads = append(ads, schedule.Item{
			Path:       path,
			DurationMS: l.Duration(ctx, path, channel, models.KindCommercial),
		})
	}

	logger.Log.Debug().
		Str("channel", channel).
		Int("shows", len(shows)).
		Int("commercials", len(ads)).
		Msg("Listed channel content")

	return shows, ads, nil
}

// Duration returns the duration of a media file in milliseconds, consulting
// the memory cache, then the database, then ffprobe. Probe failures are
// soft: the fallback duration is substituted and cached so the cost is paid
// at most once per file.
func (l *Library) Duration(ctx context.Context, path, channel, kind string) int64 {
	l.mu.RLock()
	cached, ok := l.durations[path]
	l.mu.RUnlock()
	if ok {
		return cached
	}

	if record, err := l.repos.MediaFiles.GetByPath(ctx, path); err == nil {
		l.remember(path, record.DurationMS)
		return record.DurationMS
	} else if !db.IsNotFound(err) {
		logger.Log.Warn().
			Err(err).
			Str("file_path", path).
			Msg("Duration cache lookup failed")
	}

	durationMS, err := l.prober.ProbeDuration(ctx, path)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("file_path", path).
			Int64("fallback_ms", l.fallbackDurationMS).
			Msg("Duration probe failed, using fallback duration")
		durationMS = l.fallbackDurationMS
	}

	l.remember(path, durationMS)

	if err := l.repos.MediaFiles.Upsert(ctx, models.NewMediaFile(path, channel, kind, durationMS)); err != nil {
		logger.Log.Warn().
			Err(err).
			Str("file_path", path).
			Msg("Failed to persist probed duration")
	}

	return durationMS
}

func (l *Library) remember(path string, durationMS int64) {
	l.mu.Lock()
	l.durations[path] = durationMS
	l.mu.Unlock()
}

// GatherFiles returns the media files under dir, recursively, sorted by
// path. Subfolders allow season groupings inside Shows/ or Commercials/.
func GatherFiles(dir string) []string {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return err
			}
			logger.Log.Warn().
				Str("path", path).
				Err(err).
				Msg("Error during media directory walk")
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if isVideoFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Str("dir", dir).Msg("Media directory walk failed")
	}

	sort.Strings(files)
	return files
}

// isVideoFile checks if a file has a supported video extension
func isVideoFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range supportedVideoFormats {
		if ext == supported {
			return true
		}
	}
	return false
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
