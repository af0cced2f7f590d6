package dto

import "github.com/guttosm/volpulse/internal/domain/models"

// VenueVolume is the per-venue block of the combined volume response.
//
// History carries the snapshot written for the current run first, followed
// by previously stored snapshots for the same venue, newest first.
type VenueVolume struct {
	TotalVolumeUSD float64                 `json:"total_volume_usd" example:"1523000.75"` // Current total for the queried range
	SourceTier     models.SourceTier       `json:"source_tier" example:"authenticated"`   // Provenance of the current total
	SampleTrades   []models.Trade          `json:"sample_trades"`                         // Capped display sample
	History        []models.VolumeSnapshot `json:"history"`                               // Current snapshot + stored history, newest first
	Note           string                  `json:"note,omitempty"`                        // Terminal-tier diagnostics, when degraded
}

// VolumeResponse is the JSON structure returned by GET /api/v1/volume.
//
// Fields match the API contract and may differ from internal domain models.
// This ensures loose coupling between the API surface and business logic.
type VolumeResponse struct {
	Woox    VenueVolume `json:"woox"`
	Paradex VenueVolume `json:"paradex"`
	Window  string      `json:"window" example:"recent"` // Named window the totals cover
}
