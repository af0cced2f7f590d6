package connector

import (
	"context"
	"math/rand"

	"github.com/guttosm/volpulse/internal/domain/models"
	"github.com/rs/zerolog"
)

// Connector is one venue's volume acquisition pipeline.
//
// Implementations are safe for concurrent use: they hold only immutable
// configuration and an http.Client.
type Connector interface {
	// Platform identifies the venue this connector talks to.
	Platform() models.Platform

	// MarketSummary returns the venue's public market overview, decoded
	// loosely for display.
	MarketSummary(ctx context.Context) (map[string]any, error)

	// HistoricalVolume runs the tiered acquisition for the query range.
	// It never fails: when every tier is exhausted it returns the terminal
	// fallback result tagged models.SourceError.
	HistoricalVolume(ctx context.Context, cred *models.Credential, q models.VolumeQuery) models.VolumeResult
}

// tier is one ranked acquisition strategy in the fallback chain. All tiers
// share this signature so the driver can iterate them uniformly instead of
// nesting error handling per strategy.
type tier struct {
	name string
	run  func(ctx context.Context, cred *models.Credential, q models.VolumeQuery) (*models.VolumeResult, error)
}

// fallbackPolicy configures the terminal tier.
//
// By default the terminal result carries volume 0 with the error tag. When
// synthetic is enabled the result instead carries a pseudo-random placeholder
// in [0, ceiling), reproducing the behaviour of the original system. Either
// way the error tag and diagnostic note make the degradation visible.
type fallbackPolicy struct {
	synthetic bool
	ceiling   float64
}

// runTiers iterates the ordered tier list until one succeeds.
//
// Each tier gets exactly one attempt; a failure is logged and causes
// fallthrough to the next tier, never a retry and never an error to the
// caller. If every tier fails, the terminal fallback result is built from
// the last error so the caller always receives a numeric volume and a
// source tag explaining its trustworthiness.
func runTiers(
	ctx context.Context,
	log zerolog.Logger,
	tiers []tier,
	fb fallbackPolicy,
	cred *models.Credential,
	q models.VolumeQuery,
) models.VolumeResult {
	var lastErr error
	for _, t := range tiers {
		res, err := t.run(ctx, cred, q)
		if err == nil && res != nil {
			log.Debug().
				Str("tier", t.name).
				Str("source", string(res.SourceTier)).
				Float64("total_volume_usd", res.TotalVolumeUSD).
				Msg("tier succeeded")
			return *res
		}
		lastErr = err
		log.Warn().Str("tier", t.name).Err(err).Msg("tier failed, falling through")
	}

	volume := 0.0
	if fb.synthetic && fb.ceiling > 0 {
		volume = rand.Float64() * fb.ceiling
	}
	note := "all acquisition tiers failed"
	if lastErr != nil {
		note = lastErr.Error()
	}
	log.Error().Str("note", note).Float64("placeholder_usd", volume).Msg("all tiers exhausted, returning terminal fallback")

	return models.VolumeResult{
		TotalVolumeUSD: volume,
		SampleTrades:   []models.Trade{},
		SourceTier:     models.SourceError,
		RangeStart:     q.StartTime,
		RangeEnd:       q.EndTime,
		Note:           note,
	}
}

// capSample truncates trades to the display cap without mutating the input.
func capSample(trades []models.Trade) []models.Trade {
	if len(trades) > models.SampleTradeCap {
		trades = trades[:models.SampleTradeCap]
	}
	out := make([]models.Trade, len(trades))
	copy(out, trades)
	return out
}
