package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a single executed order as reported by a venue.
//
// Venue payloads carry prices and sizes as JSON strings or floats of varying
// precision, so both are held as decimals until volume is computed. Trades
// are transient: connectors consume them to compute volume and return at
// most a capped sample for display.
type Trade struct {
	Price      decimal.Decimal `json:"price" example:"64250.5"`
	Size       decimal.Decimal `json:"size" example:"0.25"`
	ExecutedAt time.Time       `json:"executed_at" example:"2025-08-30T14:05:00Z"`
}

// NotionalUSD returns price × size for this trade.
func (t Trade) NotionalUSD() decimal.Decimal {
	return t.Price.Mul(t.Size)
}

// SampleTradeCap bounds how many trades a VolumeResult retains for display.
const SampleTradeCap = 50
