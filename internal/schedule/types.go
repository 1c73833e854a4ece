// Package schedule implements the live broadcast schedule engine: building
// per-channel looping timelines, resolving wall-clock instants to the
// program airing at that moment, and caching timelines across rebuilds.
package schedule

import (
	"time"
)

// Item is a playable unit handed to the builder: one show or commercial
// file with its probed duration in milliseconds.
type Item struct {
	Path       string
	DurationMS int64
}

// ItemRef identifies what a timeline entry plays. It is a tagged variant:
// a full show file (ShowRef) or a slice of a commercial file (AdSegmentRef).
type ItemRef interface {
	// ItemPath returns the underlying media file path
	ItemPath() string
}

// ShowRef references a show played in full
type ShowRef struct {
	Path string
}

// ItemPath returns the show file path
func (r ShowRef) ItemPath() string { return r.Path }

// AdSegmentRef references a slice of a commercial. StartOffset is reserved
// sub-file addressing and is always 0 at build time; SegmentDuration may be
// shorter than the file when the final ad of a break is truncated to fit
// the break budget.
type AdSegmentRef struct {
	Path            string
	StartOffsetMS   int64
	SegmentDuration int64
}

// ItemPath returns the commercial file path
func (r AdSegmentRef) ItemPath() string { return r.Path }

// Entry is one timeline slot. Entries are contiguous and non-overlapping:
// Start + Duration of one entry equals Start of the next.
type Entry struct {
	Start      time.Time
	Ref        ItemRef
	DurationMS int64
	IsAd       bool
}

// End returns the instant this entry's slot ends
func (e Entry) End() time.Time {
	return e.Start.Add(time.Duration(e.DurationMS) * time.Millisecond)
}

// Timeline is one channel's built schedule: an ordered sequence of entries
// covering at least the build horizon from the epoch, conceptually looped
// forever. TotalMS is the loop modulus.
type Timeline struct {
	Entries []Entry
	TotalMS int64
}

// Empty reports whether the timeline has no playable content
func (t *Timeline) Empty() bool {
	return t == nil || len(t.Entries) == 0 || t.TotalMS == 0
}
