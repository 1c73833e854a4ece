package schedule

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/airwave-tv/airwave/internal/logger"
)

// Library is the media catalog the cache builds schedules from
type Library interface {
	// DiscoverChannels returns the names of all available channels.
	DiscoverChannels() ([]string, error)
	// ChannelContent returns the shows and commercials for a channel with
	// durations already resolved (probe failures substituted internally).
	ChannelContent(ctx context.Context, channel string) (shows, ads []Item, err error)
}

// OrderStore persists the last accepted show order per channel.
// A missing or corrupt record is reported as (nil, nil).
type OrderStore interface {
	LastOrder(ctx context.Context, channel string) ([]string, error)
	SaveOrder(ctx context.Context, channel string, order []string) error
}

// SettingsSource supplies the schedule-affecting settings at build time
type SettingsSource interface {
	AdBreakTargetMS(ctx context.Context) (int64, error)
}

// fallbackAdBreakMS is used when the settings source fails at build time
const fallbackAdBreakMS = 3 * 60 * 1000

// ChannelBuildResult reports the outcome of building one channel during a
// full rebuild.
type ChannelBuildResult struct {
	Channel string `json:"channel"`
	Entries int    `json:"entries"`
	OnAir   bool   `json:"on_air"`
	Error   string `json:"error,omitempty"`
}

// Cache owns every channel's timeline and the single global epoch all
// timelines are anchored to. Timelines build lazily on first access and are
// dropped wholesale when content or settings change. Builds happen off the
// cache lock and swap in atomically, so concurrent readers always see a
// complete timeline (or none).
type Cache struct {
	library   Library
	orders    OrderStore
	settings  SettingsSource
	horizonMS int64

	rngMu sync.Mutex
	rng   *rand.Rand

	mu        sync.RWMutex
	epoch     time.Time
	timelines map[string]*Timeline

	buildMu    sync.Mutex
	buildLocks map[string]*sync.Mutex
}

// NewCache creates a schedule cache anchored at the given epoch.
// DefaultEpoch (midnight of the current day) is the usual startup choice.
func NewCache(library Library, orders OrderStore, settings SettingsSource, horizon time.Duration, epoch time.Time) *Cache {
	return &Cache{
		library:    library,
		orders:     orders,
		settings:   settings,
		horizonMS:  horizon.Milliseconds(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		epoch:      epoch,
		timelines:  make(map[string]*Timeline),
		buildLocks: make(map[string]*sync.Mutex),
	}
}

// DefaultEpoch returns midnight (UTC) of the current day, so every process
// started on the same day agrees on the same schedule anchor.
func DefaultEpoch(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Epoch returns the current global schedule epoch
func (c *Cache) Epoch() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// GetOrBuild returns the cached timeline for a channel, building it on
// first access.
func (c *Cache) GetOrBuild(ctx context.Context, channel string) (*Timeline, error) {
	tl, _, err := c.snapshot(ctx, channel)
	return tl, err
}

// Current resolves what is airing on a channel right now
func (c *Cache) Current(ctx context.Context, channel string) (*Position, error) {
	return c.CurrentAt(ctx, channel, time.Now().UTC())
}

// CurrentAt resolves what is airing on a channel at an arbitrary instant
func (c *Cache) CurrentAt(ctx context.Context, channel string, now time.Time) (*Position, error) {
	tl, epoch, err := c.snapshot(ctx, channel)
	if err != nil {
		return nil, err
	}
	return CurrentPosition(tl, epoch, now)
}

// GuideWindow returns the entries whose airing start falls inside
// [windowStart, windowStart+window), reprojected through the loop so that
// windows beyond the built horizon still resolve. When the entry airing at
// windowStart began before the window, it is prepended so a guide view has
// no gap at its left edge.
func (c *Cache) GuideWindow(ctx context.Context, channel string, windowStart time.Time, window time.Duration) ([]Entry, error) {
	tl, epoch, err := c.snapshot(ctx, channel)
	if err != nil {
		return nil, err
	}
	if tl.Empty() {
		return nil, nil
	}

	windowEnd := windowStart.Add(window)
	total := time.Duration(tl.TotalMS) * time.Millisecond

	// First loop iteration that can reach the window
	loop := windowStart.Sub(epoch).Milliseconds() / tl.TotalMS
	if loop < 0 {
		loop = 0
	}

	var items []Entry
	for loopStart := epoch.Add(time.Duration(loop) * total); loopStart.Before(windowEnd); loopStart = loopStart.Add(total) {
		var accumulated int64
		for _, entry := range tl.Entries {
			start := loopStart.Add(time.Duration(accumulated) * time.Millisecond)
			accumulated += entry.DurationMS
			if start.Before(windowStart) {
				continue
			}
			if !start.Before(windowEnd) {
				break
			}
			projected := entry
			projected.Start = start
			items = append(items, projected)
		}
	}

	// Prepend the in-progress entry straddling the window's left edge
	pos, err := CurrentPosition(tl, epoch, windowStart)
	if err == nil && pos.ProgramStart.Before(windowStart) && pos.End().After(windowStart) {
		if len(items) == 0 || !items[0].Start.Equal(pos.ProgramStart) {
			leading := Entry{
				Start:      pos.ProgramStart,
				Ref:        pos.Ref,
				DurationMS: pos.DurationMS,
				IsAd:       pos.IsAd,
			}
			items = append([]Entry{leading}, items...)
		}
	}

	return items, nil
}

// InvalidateAll drops every cached timeline and resets the global epoch.
// Required whenever channel content changes, a schedule-affecting setting
// changes, or an explicit reload is requested. The next access per channel
// rebuilds from scratch with a fresh shuffle.
func (c *Cache) InvalidateAll(newEpoch time.Time) {
	c.mu.Lock()
	c.timelines = make(map[string]*Timeline)
	c.epoch = newEpoch
	c.mu.Unlock()

	logger.Log.Info().
		Time("epoch", newEpoch).
		Msg("All channel schedules invalidated")
}

// RebuildAll builds every discovered channel's timeline, isolating faults:
// one channel's failure never aborts the rest.
func (c *Cache) RebuildAll(ctx context.Context) []ChannelBuildResult {
	channels, err := c.library.DiscoverChannels()
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to discover channels for rebuild")
		return nil
	}

	results := make([]ChannelBuildResult, 0, len(channels))
	for _, channel := range channels {
		result := ChannelBuildResult{Channel: channel}
		tl, err := c.GetOrBuild(ctx, channel)
		if err != nil {
			logger.Log.Error().
				Err(err).
				Str("channel", channel).
				Msg("Failed to build channel schedule")
			result.Error = err.Error()
		} else {
			result.Entries = len(tl.Entries)
			result.OnAir = !tl.Empty()
		}
		results = append(results, result)
	}

	logger.Log.Info().
		Int("channels", len(results)).
		Msg("Rebuilt all channel schedules")

	return results
}

// snapshot returns a consistent (timeline, epoch) pair for a channel,
// building the timeline if needed.
func (c *Cache) snapshot(ctx context.Context, channel string) (*Timeline, time.Time, error) {
	c.mu.RLock()
	tl, ok := c.timelines[channel]
	epoch := c.epoch
	c.mu.RUnlock()
	if ok {
		return tl, epoch, nil
	}

	// Serialize builds per channel so concurrent readers trigger one build
	lock := c.buildLock(channel)
	lock.Lock()
	defer lock.Unlock()

	// An invalidation can race a build; retry against the fresh epoch.
	for attempt := 0; attempt < 3; attempt++ {
		c.mu.RLock()
		tl, ok = c.timelines[channel]
		epoch = c.epoch
		c.mu.RUnlock()
		if ok {
			return tl, epoch, nil
		}

		built, err := c.build(ctx, channel, epoch)
		if err != nil {
			return nil, time.Time{}, err
		}

		c.mu.Lock()
		if c.epoch.Equal(epoch) {
			c.timelines[channel] = built
			c.mu.Unlock()
			return built, epoch, nil
		}
		c.mu.Unlock()
	}

	return nil, time.Time{}, fmt.Errorf("schedule build for %s kept racing invalidation", channel)
}

// build constructs a timeline for one channel against a fixed epoch
func (c *Cache) build(ctx context.Context, channel string, epoch time.Time) (*Timeline, error) {
	start := time.Now()

	shows, ads, err := c.library.ChannelContent(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel content: %w", err)
	}

	adBreakMS, err := c.settings.AdBreakTargetMS(ctx)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("channel", channel).
			Msg("Failed to load ad break setting, using default")
		adBreakMS = fallbackAdBreakMS
	}

	prevOrder, err := c.orders.LastOrder(ctx, channel)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("channel", channel).
			Msg("Failed to load previous show order, shuffling without history")
		prevOrder = nil
	}

	c.rngMu.Lock()
	tl, newOrder := Build(BuildParams{
		Shows:           shows,
		Ads:             ads,
		Epoch:           epoch,
		AdBreakTargetMS: adBreakMS,
		HorizonMS:       c.horizonMS,
		PrevOrder:       prevOrder,
	}, c.rng)
	c.rngMu.Unlock()

	if len(newOrder) > 0 {
		if err := c.orders.SaveOrder(ctx, channel, newOrder); err != nil {
			logger.Log.Warn().
				Err(err).
				Str("channel", channel).
				Msg("Failed to persist show order")
		}
	}

	if tl.Empty() {
		logger.Log.Warn().
			Str("channel", channel).
			Msg("Channel has no shows, built empty schedule")
	} else {
		logger.Log.Info().
			Str("channel", channel).
			Int("entries", len(tl.Entries)).
			Int64("total_ms", tl.TotalMS).
			Dur("build_time", time.Since(start)).
			Msg("Built channel schedule")
	}

	return tl, nil
}

// buildLock returns the per-channel build mutex, creating it on first use
func (c *Cache) buildLock(channel string) *sync.Mutex {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	lock, ok := c.buildLocks[channel]
	if !ok {
		lock = &sync.Mutex{}
		c.buildLocks[channel] = lock
	}
	return lock
}
