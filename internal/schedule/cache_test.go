package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLibrary struct {
	mu       sync.Mutex
	channels []string
	shows    map[string][]Item
	ads      map[string][]Item
	errs     map[string]error
	calls    map[string]int
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		shows: make(map[string][]Item),
		ads:   make(map[string][]Item),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeLibrary) DiscoverChannels() ([]string, error) {
	return f.channels, nil
}

func (f *fakeLibrary) ChannelContent(ctx context.Context, channel string) ([]Item, []Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[channel]++
	if err := f.errs[channel]; err != nil {
		return nil, nil, err
	}
	return f.shows[channel], f.ads[channel], nil
}

func (f *fakeLibrary) contentCalls(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[channel]
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string][]string
	saves  int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string][]string)}
}

func (f *fakeOrderStore) LastOrder(ctx context.Context, channel string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[channel], nil
}

func (f *fakeOrderStore) SaveOrder(ctx context.Context, channel string, order []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[channel] = order
	f.saves++
	return nil
}

type fakeSettings struct {
	adBreakMS int64
}

func (f *fakeSettings) AdBreakTargetMS(ctx context.Context) (int64, error) {
	return f.adBreakMS, nil
}

func newTestCache(lib *fakeLibrary, orders *fakeOrderStore, adBreakMS int64, epoch time.Time) *Cache {
	return NewCache(lib, orders, &fakeSettings{adBreakMS: adBreakMS}, 2*time.Hour, epoch)
}

func TestCacheGetOrBuild_CachesTimeline(t *testing.T) {
	epoch := testEpoch()
	lib := newFakeLibrary()
	lib.channels = []string{"Comedy"}
	lib.shows["Comedy"] = []Item{{Path: "s1.mp4", DurationMS: 1800000}}

	cache := newTestCache(lib, newFakeOrderStore(), 0, epoch)

	first, err := cache.GetOrBuild(context.Background(), "Comedy")
	require.NoError(t, err)
	require.False(t, first.Empty())

	second, err := cache.GetOrBuild(context.Background(), "Comedy")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, lib.contentCalls("Comedy"))
}

func TestCacheGetOrBuild_PropagatesContentError(t *testing.T) {
	lib := newFakeLibrary()
	lib.errs["Broken"] = errors.New("unreadable directory")

	cache := newTestCache(lib, newFakeOrderStore(), 0, testEpoch())

	_, err := cache.GetOrBuild(context.Background(), "Broken")
	assert.Error(t, err)
}

func TestCacheCurrentAt_ResolvesAgainstEpoch(t *testing.T) {
	epoch := testEpoch()
	lib := newFakeLibrary()
	lib.shows["Movies"] = []Item{{Path: "movie.mp4", DurationMS: 3600000}}

	cache := newTestCache(lib, newFakeOrderStore(), 0, epoch)

	pos, err := cache.CurrentAt(context.Background(), "Movies", epoch.Add(90*time.Minute))
	require.NoError(t, err)

	// Single-show channel loops the one file; 90 minutes in is 30 minutes
	// into its second airing.
	assert.Equal(t, ShowRef{Path: "movie.mp4"}, pos.Ref)
	assert.Equal(t, int64(1800000), pos.OffsetMS)
	assert.True(t, pos.ProgramStart.Equal(epoch.Add(time.Hour)))
}

func TestCacheCurrentAt_EmptyChannel(t *testing.T) {
	lib := newFakeLibrary()
	lib.shows["Empty"] = nil

	cache := newTestCache(lib, newFakeOrderStore(), 0, testEpoch())

	_, err := cache.CurrentAt(context.Background(), "Empty", testEpoch())
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestCacheInvalidateAll_ResetsEpochAndRebuilds(t *testing.T) {
	epoch := testEpoch()
	lib := newFakeLibrary()
	lib.shows["Comedy"] = []Item{{Path: "s1.mp4", DurationMS: 1800000}}

	cache := newTestCache(lib, newFakeOrderStore(), 0, epoch)

	_, err := cache.GetOrBuild(context.Background(), "Comedy")
	require.NoError(t, err)
	require.Equal(t, 1, lib.contentCalls("Comedy"))

	newEpoch := epoch.Add(6 * time.Hour)
	cache.InvalidateAll(newEpoch)

	assert.True(t, cache.Epoch().Equal(newEpoch))

	_, err = cache.GetOrBuild(context.Background(), "Comedy")
	require.NoError(t, err)
	assert.Equal(t, 2, lib.contentCalls("Comedy"))
}

func TestCacheRebuildAll_IsolatesFailures(t *testing.T) {
	lib := newFakeLibrary()
	lib.channels = []string{"Broken", "Comedy", "Empty"}
	lib.shows["Comedy"] = []Item{{Path: "s1.mp4", DurationMS: 1800000}}
	lib.errs["Broken"] = errors.New("unreadable directory")

	cache := newTestCache(lib, newFakeOrderStore(), 0, testEpoch())

	results := cache.RebuildAll(context.Background())
	require.Len(t, results, 3)

	byChannel := make(map[string]ChannelBuildResult, len(results))
	for _, r := range results {
		byChannel[r.Channel] = r
	}

	assert.NotEmpty(t, byChannel["Broken"].Error)
	assert.False(t, byChannel["Broken"].OnAir)

	assert.Empty(t, byChannel["Comedy"].Error)
	assert.True(t, byChannel["Comedy"].OnAir)
	assert.Greater(t, byChannel["Comedy"].Entries, 0)

	assert.Empty(t, byChannel["Empty"].Error)
	assert.False(t, byChannel["Empty"].OnAir)
}

func TestCacheBuild_PersistsShowOrder(t *testing.T) {
	lib := newFakeLibrary()
	lib.shows["Comedy"] = []Item{
		{Path: "s1.mp4", DurationMS: 1800000},
		{Path: "s2.mp4", DurationMS: 1800000},
	}
	orders := newFakeOrderStore()

	cache := newTestCache(lib, orders, 0, testEpoch())

	_, err := cache.GetOrBuild(context.Background(), "Comedy")
	require.NoError(t, err)

	saved, err := orders.LastOrder(context.Background(), "Comedy")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1.mp4", "s2.mp4"}, saved)
	assert.Equal(t, 1, orders.saves)
}

func TestCacheGuideWindow_WithinFirstLoop(t *testing.T) {
	epoch := testEpoch()
	lib := newFakeLibrary()
	lib.shows["Movies"] = []Item{
		{Path: "m1.mp4", DurationMS: 1800000},
		{Path: "m2.mp4", DurationMS: 1800000},
	}

	cache := newTestCache(lib, newFakeOrderStore(), 0, epoch)

	entries, err := cache.GuideWindow(context.Background(), "Movies", epoch, time.Hour)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Start.Equal(epoch))
	assert.True(t, entries[1].Start.Equal(epoch.Add(30*time.Minute)))
}

func TestCacheGuideWindow_ReprojectsBeyondHorizon(t *testing.T) {
	epoch := testEpoch()
	lib := newFakeLibrary()
	lib.shows["Movies"] = []Item{{Path: "m1.mp4", DurationMS: 1800000}}

	// Horizon is 2h; ask for a window three days out
	cache := newTestCache(lib, newFakeOrderStore(), 0, epoch)

	windowStart := epoch.Add(72 * time.Hour)
	entries, err := cache.GuideWindow(context.Background(), "Movies", windowStart, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	// 72h is an exact multiple of the 30-minute loop, so the window opens
	// on a fresh airing.
	assert.True(t, entries[0].Start.Equal(windowStart))
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].Start.Equal(entries[i-1].Start.Add(30*time.Minute)))
	}
}

func TestCacheGuideWindow_PrependsInProgressEntry(t *testing.T) {
	epoch := testEpoch()
	lib := newFakeLibrary()
	lib.shows["Movies"] = []Item{{Path: "m1.mp4", DurationMS: 1800000}}

	cache := newTestCache(lib, newFakeOrderStore(), 0, epoch)

	// Window opens 10 minutes into an airing
	windowStart := epoch.Add(10 * time.Minute)
	entries, err := cache.GuideWindow(context.Background(), "Movies", windowStart, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	assert.True(t, entries[0].Start.Equal(epoch))
	assert.True(t, entries[0].Start.Before(windowStart))
	assert.True(t, entries[1].Start.Equal(epoch.Add(30*time.Minute)))
}

func TestCacheGuideWindow_EmptyChannel(t *testing.T) {
	lib := newFakeLibrary()
	lib.shows["Empty"] = nil

	cache := newTestCache(lib, newFakeOrderStore(), 0, testEpoch())

	entries, err := cache.GuideWindow(context.Background(), "Empty", testEpoch(), time.Hour)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultEpoch(t *testing.T) {
	now := time.Date(2026, 8, 27, 15, 42, 10, 0, time.UTC)
	assert.True(t, DefaultEpoch(now).Equal(time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)))

	// Non-UTC inputs normalize to UTC midnight
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 8, 27, 2, 0, 0, 0, loc) // 21:00 the 26th in UTC
	assert.True(t, DefaultEpoch(local).Equal(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)))
}

func TestCacheConcurrentReadersSingleBuild(t *testing.T) {
	lib := newFakeLibrary()
	lib.shows["Comedy"] = []Item{{Path: "s1.mp4", DurationMS: 1800000}}

	cache := newTestCache(lib, newFakeOrderStore(), 0, testEpoch())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetOrBuild(context.Background(), "Comedy")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, lib.contentCalls("Comedy"))
}
