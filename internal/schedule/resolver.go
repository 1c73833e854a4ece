package schedule

import (
	"time"
)

// Position is the result of resolving a wall-clock instant against a
// timeline: the entry airing at that moment and where within it we are.
type Position struct {
	// ProgramStart is when this airing of the entry actually began,
	// adjusted for completed loops — not the entry's build-time start.
	ProgramStart time.Time
	// Ref identifies the media to play (show, or ad segment with metadata).
	Ref ItemRef
	// DurationMS is the entry's slot duration.
	DurationMS int64
	// IsAd marks ad-break segments.
	IsAd bool
	// OffsetMS is how far into the entry the resolved instant falls.
	OffsetMS int64
	// EntryIndex is the entry's index within the timeline's single cycle.
	EntryIndex int
}

// CurrentPosition resolves the entry airing at now for a timeline anchored
// at epoch. It is a pure function: the same (timeline, epoch, now) triple
// always yields the same result, so independent callers agree on what's on
// without shared playback state.
//
// The loop position is elapsed mod total; instants before the epoch clamp
// to the start of the first entry. O(n) in timeline length.
func CurrentPosition(tl *Timeline, epoch, now time.Time) (*Position, error) {
	if tl.Empty() {
		return nil, ErrNoContent
	}

	elapsed := now.Sub(epoch).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	position := elapsed % tl.TotalMS
	loops := elapsed / tl.TotalMS

	var accumulated int64
	for i, entry := range tl.Entries {
		if position < accumulated+entry.DurationMS {
			programStart := epoch.Add(time.Duration(loops*tl.TotalMS+accumulated) * time.Millisecond)
			return &Position{
				ProgramStart: programStart,
				Ref:          entry.Ref,
				DurationMS:   entry.DurationMS,
				IsAd:         entry.IsAd,
				OffsetMS:     position - accumulated,
				EntryIndex:   i,
			}, nil
		}
		accumulated += entry.DurationMS
	}

	// Unreachable when the timeline invariants hold (total == sum of
	// durations); kept as a guard against a corrupted timeline.
	return nil, ErrNoContent
}

// End returns when this airing of the entry finishes
func (p *Position) End() time.Time {
	return p.ProgramStart.Add(time.Duration(p.DurationMS) * time.Millisecond)
}

// SeekOffset computes the player seek offset for joining this entry at now.
// For ad segments the segment's start offset within the physical file is
// added. ok is false when now has moved past the entry's end — the caller
// must re-resolve rather than seek out of bounds.
func (p *Position) SeekOffset(now time.Time) (offsetMS int64, ok bool) {
	elapsed := now.Sub(p.ProgramStart).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= p.DurationMS {
		return 0, false
	}
	if ref, isSegment := p.Ref.(AdSegmentRef); isSegment {
		elapsed += ref.StartOffsetMS
	}
	return elapsed, true
}
