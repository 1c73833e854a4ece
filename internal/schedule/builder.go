package schedule

import (
	"math/rand"
	"time"

	"github.com/airwave-tv/airwave/internal/logger"
)

// maxShuffleAttempts bounds the retries used to avoid repeating the exact
// previous show order on a rebuild.
const maxShuffleAttempts = 5

// adBreakInterval is how many shows play between ad breaks
const adBreakInterval = 2

// BuildParams carries everything the builder needs for one channel
type BuildParams struct {
	Shows []Item
	Ads   []Item
	// Epoch anchors the first entry; shared across all channels.
	Epoch time.Time
	// AdBreakTargetMS is the budget for one ad break.
	AdBreakTargetMS int64
	// HorizonMS is how far past the epoch to place entries. The last
	// show or break may overrun it; coverage of [epoch, epoch+horizon)
	// is exact.
	HorizonMS int64
	// PrevOrder is the previously persisted show order, used only to bias
	// the new shuffle away from exact repetition. Nil means no prior order.
	PrevOrder []string
}

// Build constructs a channel timeline and returns it together with the
// accepted show order (for persistence by the caller). An empty shows list
// yields an empty timeline: the channel is off air.
//
// Shows play in one shuffled order, repeating in that same relative order
// every cycle. After every second show an ad break is inserted, filled from
// the independently shuffled ads until the break budget is spent; the final
// ad of a break is truncated to fit. Shows are never truncated.
func Build(params BuildParams, rng *rand.Rand) (*Timeline, []string) {
	if len(params.Shows) == 0 {
		return &Timeline{}, nil
	}

	shows := shuffleShows(params.Shows, params.PrevOrder, rng)

	ads := make([]Item, len(params.Ads))
	copy(ads, params.Ads)
	rng.Shuffle(len(ads), func(i, j int) {
		ads[i], ads[j] = ads[j], ads[i]
	})

	order := make([]string, len(shows))
	for i, show := range shows {
		order[i] = show.Path
	}

	var entries []Entry
	current := params.Epoch
	end := params.Epoch.Add(time.Duration(params.HorizonMS) * time.Millisecond)

	showIndex := 0
	adIndex := 0

	for current.Before(end) {
		show := shows[showIndex%len(shows)]
		entries = append(entries, Entry{
			Start:      current,
			Ref:        ShowRef{Path: show.Path},
			DurationMS: show.DurationMS,
			IsAd:       false,
		})
		current = current.Add(time.Duration(show.DurationMS) * time.Millisecond)
		showIndex++

		if len(ads) > 0 && showIndex%adBreakInterval == 0 {
			remaining := params.AdBreakTargetMS
			for remaining > 0 {
				ad := ads[adIndex%len(ads)]
				segmentMS := ad.DurationMS
				if segmentMS > remaining {
					segmentMS = remaining
				}
				entries = append(entries, Entry{
					Start: current,
					Ref: AdSegmentRef{
						Path:            ad.Path,
						StartOffsetMS:   0,
						SegmentDuration: segmentMS,
					},
					DurationMS: segmentMS,
					IsAd:       true,
				})
				current = current.Add(time.Duration(segmentMS) * time.Millisecond)
				remaining -= segmentMS
				adIndex++
			}
		}
	}

	var total int64
	showCount, adCount := 0, 0
	for _, e := range entries {
		total += e.DurationMS
		if e.IsAd {
			adCount++
		} else {
			showCount++
		}
	}

	logger.Log.Debug().
		Time("epoch", params.Epoch).
		Int("shows", showCount).
		Int("ad_segments", adCount).
		Int64("total_ms", total).
		Msg("Built channel timeline")

	return &Timeline{Entries: entries, TotalMS: total}, order
}

// shuffleShows returns a shuffled copy of shows, retrying up to
// maxShuffleAttempts when the result matches prevOrder element for element.
// With fewer than two shows a shuffle cannot differ, so the check is
// skipped.
func shuffleShows(shows []Item, prevOrder []string, rng *rand.Rand) []Item {
	shuffled := make([]Item, len(shows))
	copy(shuffled, shows)

	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if len(shuffled) < 2 || !sameOrder(shuffled, prevOrder) {
			break
		}
	}

	return shuffled
}

// sameOrder reports whether items match the path order exactly
func sameOrder(items []Item, order []string) bool {
	if order == nil || len(items) != len(order) {
		return false
	}
	for i, item := range items {
		if item.Path != order[i] {
			return false
		}
	}
	return true
}
