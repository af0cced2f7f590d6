package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/volpulse/internal/connector"
	"github.com/guttosm/volpulse/internal/domain/models"
	"github.com/guttosm/volpulse/internal/logger"
	"github.com/guttosm/volpulse/internal/storage"
)

// historyLimit is how many stored snapshots one aggregation reads back.
const historyLimit = 100

// VenueVolume is one venue's slice of a combined aggregation result.
type VenueVolume struct {
	Result  models.VolumeResult
	History []models.VolumeSnapshot
}

// CombinedVolume is the merged, persisted volume view for both venues.
type CombinedVolume struct {
	Woox       VenueVolume
	Paradex    VenueVolume
	CapturedAt time.Time
}

// VolumeService produces the combined volume view consumed by the UI.
type VolumeService interface {
	// GetCombinedVolume fetches both venues concurrently over the query
	// range, merges with stored history, persists one snapshot per venue,
	// and returns the tagged per-venue results. The contract is
	// best-effort: degraded venues are reported through their source tier
	// instead of an error, so the returned error is reserved for failures
	// to produce any result at all.
	GetCombinedVolume(ctx context.Context, q models.VolumeQuery) (*CombinedVolume, error)
}

// DefaultCredentials are the injected stand-ins used when the credential
// store has no entry for a venue. They keep the connector running so its
// public and terminal tiers still execute instead of the venue being
// skipped.
type DefaultCredentials struct {
	Woox    models.Credential
	Paradex models.Credential
}

type volumeService struct {
	woox     connector.Connector
	paradex  connector.Connector
	creds    storage.CredentialRepository
	snaps    storage.SnapshotRepository
	defaults DefaultCredentials

	// now is an indirection for deterministic snapshot timestamps in tests.
	now func() time.Time
}

// NewVolumeService wires the aggregator from its collaborators.
func NewVolumeService(
	woox, paradex connector.Connector,
	creds storage.CredentialRepository,
	snaps storage.SnapshotRepository,
	defaults DefaultCredentials,
) VolumeService {
	return &volumeService{
		woox:     woox,
		paradex:  paradex,
		creds:    creds,
		snaps:    snaps,
		defaults: defaults,
		now:      time.Now,
	}
}

func (s *volumeService) GetCombinedVolume(ctx context.Context, q models.VolumeQuery) (*CombinedVolume, error) {
	log := logger.Component("volume_service")

	wooxCred := s.resolveCredential(ctx, models.PlatformWoox, s.defaults.Woox)
	paradexCred := s.resolveCredential(ctx, models.PlatformParadex, s.defaults.Paradex)

	// Fan out the two venue fetches; each branch owns its result slot, so
	// no locking is needed. A branch converts any panic into a terminal
	// result rather than erroring the group: one venue blowing up must not
	// suppress the other's data.
	var wooxRes, paradexRes models.VolumeResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wooxRes = s.fetchVenue(gctx, s.woox, wooxCred, q)
		return nil
	})
	g.Go(func() error {
		paradexRes = s.fetchVenue(gctx, s.paradex, paradexCred, q)
		return nil
	})
	_ = g.Wait()

	// History read is best-effort: a broken store degrades the response to
	// current totals only, it never fails the call.
	history, err := s.snaps.ListSnapshots(ctx, historyLimit)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot history read failed, proceeding with empty history")
		history = nil
	}

	capturedAt := s.now().UTC()
	wooxSnap := models.VolumeSnapshot{Platform: models.PlatformWoox, VolumeUSD: wooxRes.TotalVolumeUSD, CapturedAt: capturedAt}
	paradexSnap := models.VolumeSnapshot{Platform: models.PlatformParadex, VolumeUSD: paradexRes.TotalVolumeUSD, CapturedAt: capturedAt}

	// Appends are independent per venue; a partial write (one persisted,
	// one not) is acceptable and never fails the in-memory response.
	for _, snap := range []models.VolumeSnapshot{wooxSnap, paradexSnap} {
		if err := s.snaps.AppendSnapshot(ctx, snap); err != nil {
			log.Warn().Str("platform", string(snap.Platform)).Err(err).Msg("snapshot append failed")
		}
	}

	return &CombinedVolume{
		Woox: VenueVolume{
			Result:  wooxRes,
			History: prependSnapshot(wooxSnap, filterByPlatform(history, models.PlatformWoox)),
		},
		Paradex: VenueVolume{
			Result:  paradexRes,
			History: prependSnapshot(paradexSnap, filterByPlatform(history, models.PlatformParadex)),
		},
		CapturedAt: capturedAt,
	}, nil
}

// resolveCredential looks up the stored credential for a platform and falls
// back to the injected default on absence or store failure.
func (s *volumeService) resolveCredential(ctx context.Context, platform models.Platform, def models.Credential) *models.Credential {
	cred, err := s.creds.GetCredential(ctx, platform)
	if err != nil {
		log := logger.Component("volume_service")
		log.Warn().
			Str("platform", string(platform)).Err(err).
			Msg("credential lookup failed, using configured default")
		cred = nil
	}
	if cred == nil {
		def.Platform = platform
		return &def
	}
	return cred
}

// fetchVenue runs one connector and guarantees a result even if the
// connector panics.
func (s *volumeService) fetchVenue(ctx context.Context, conn connector.Connector, cred *models.Credential, q models.VolumeQuery) (res models.VolumeResult) {
	defer func() {
		if r := recover(); r != nil {
			log := logger.Component("volume_service")
			log.Error().
				Str("platform", string(conn.Platform())).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("connector panicked, substituting terminal result")
			res = models.VolumeResult{
				TotalVolumeUSD: 0,
				SampleTrades:   []models.Trade{},
				SourceTier:     models.SourceError,
				RangeStart:     q.StartTime,
				RangeEnd:       q.EndTime,
				Note:           fmt.Sprintf("connector panic: %v", r),
			}
		}
	}()
	return conn.HistoricalVolume(ctx, cred, q)
}

// filterByPlatform keeps only the snapshots belonging to one venue,
// preserving order.
func filterByPlatform(snaps []models.VolumeSnapshot, platform models.Platform) []models.VolumeSnapshot {
	var out []models.VolumeSnapshot
	for _, s := range snaps {
		if s.Platform == platform {
			out = append(out, s)
		}
	}
	return out
}

// prependSnapshot puts the current run's snapshot ahead of the stored
// history, keeping the newest-first ordering.
func prependSnapshot(current models.VolumeSnapshot, history []models.VolumeSnapshot) []models.VolumeSnapshot {
	out := make([]models.VolumeSnapshot, 0, len(history)+1)
	out = append(out, current)
	return append(out, history...)
}
