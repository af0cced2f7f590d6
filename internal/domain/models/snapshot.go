package models

import "time"

// Platform identifies one of the configured venues.
//
// swagger:model Platform
type Platform string

const (
	PlatformWoox    Platform = "woox"
	PlatformParadex Platform = "paradex"
)

// Valid reports whether p names a configured venue.
func (p Platform) Valid() bool {
	return p == PlatformWoox || p == PlatformParadex
}

// VolumeSnapshot is one persisted volume observation for a venue.
//
// Snapshots are append-only: one row is written per venue per aggregation
// run and existing rows are never updated. Retrieval orders by CapturedAt
// descending.
type VolumeSnapshot struct {
	Platform   Platform  `json:"platform" example:"woox"`
	VolumeUSD  float64   `json:"volume_usd" example:"1523000.75"`
	CapturedAt time.Time `json:"captured_at" example:"2025-08-30T14:05:00Z"`
}
