package models

import (
	"math"
	"time"
)

// SourceTier is the provenance marker attached to every volume result.
// It tells downstream consumers which acquisition strategy produced the
// figure and therefore how much to trust it.
//
// swagger:model SourceTier
type SourceTier string

const (
	// SourceAuthenticated means the figure came from the venue's private
	// account or trade endpoints (tier 1 or 2).
	SourceAuthenticated SourceTier = "authenticated"

	// SourcePublic means authentication was unavailable and the figure is a
	// day-multiplied projection of public 24h market data (tier 3).
	SourcePublic SourceTier = "public"

	// SourceError means every network path failed and the figure is a
	// placeholder, not data (tier 4).
	SourceError SourceTier = "error"
)

const (
	// FullHistoryDays is the default lookback for the heavy-weight call site
	// (the "full-history" window).
	FullHistoryDays = 730

	// RecentDays is the default lookback for the lighter-weight call site
	// (the "recent" window).
	RecentDays = 30
)

// VolumeQuery is the immutable time range of one volume fetch.
// EndTime is always >= StartTime.
type VolumeQuery struct {
	StartTime time.Time
	EndTime   time.Time
}

// FullHistoryRange returns the default full-history query: the last 730 days
// ending at now.
func FullHistoryRange(now time.Time) VolumeQuery {
	return VolumeQuery{StartTime: now.AddDate(0, 0, -FullHistoryDays), EndTime: now}
}

// RecentRange returns the default recent query: the last 30 days ending at now.
func RecentRange(now time.Time) VolumeQuery {
	return VolumeQuery{StartTime: now.AddDate(0, 0, -RecentDays), EndTime: now}
}

// Days returns the day count the public estimation tier multiplies by:
// ceil((EndTime-StartTime)/24h), never less than 1. The formula is
// user-visible (it scales the public estimate) and must stay reproducible.
func (q VolumeQuery) Days() int {
	d := int(math.Ceil(q.EndTime.Sub(q.StartTime).Hours() / 24))
	if d < 1 {
		return 1
	}
	return d
}

// VolumeResult is the outcome of one connector fetch. Produced fresh per
// call and never mutated after construction.
//
// TotalVolumeUSD is always finite and non-negative; when no real data is
// obtainable a placeholder is substituted and SourceTier says so.
type VolumeResult struct {
	TotalVolumeUSD float64    `json:"total_volume_usd" example:"1523000.75"`
	SampleTrades   []Trade    `json:"sample_trades"`
	SourceTier     SourceTier `json:"source_tier" example:"authenticated"`
	RangeStart     time.Time  `json:"range_start"`
	RangeEnd       time.Time  `json:"range_end"`
	Note           string     `json:"note,omitempty"` // diagnostic message, set only by the terminal tier
}
