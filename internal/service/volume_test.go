package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/volpulse/internal/domain/models"
)

// stubConnector returns a canned result and records the credential it was
// handed. When panicMsg is set it panics instead.
type stubConnector struct {
	platform models.Platform
	result   models.VolumeResult
	panicMsg string

	gotCred *models.Credential
}

func (s *stubConnector) Platform() models.Platform { return s.platform }

func (s *stubConnector) MarketSummary(ctx context.Context) (map[string]any, error) {
	return map[string]any{}, nil
}

func (s *stubConnector) HistoricalVolume(ctx context.Context, cred *models.Credential, q models.VolumeQuery) models.VolumeResult {
	s.gotCred = cred
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.result
}

type stubCredentialRepo struct {
	creds map[models.Platform]*models.Credential
	err   error
	saved []models.Credential
}

func (s *stubCredentialRepo) GetCredential(ctx context.Context, platform models.Platform) (*models.Credential, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.creds[platform], nil
}

func (s *stubCredentialRepo) UpsertCredential(ctx context.Context, cred models.Credential) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, cred)
	return nil
}

func (s *stubCredentialRepo) ListCredentials(ctx context.Context) ([]models.Credential, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Credential
	for _, c := range s.creds {
		out = append(out, *c)
	}
	return out, nil
}

type stubSnapshotRepo struct {
	stored   []models.VolumeSnapshot
	listErr  error
	writeErr error
	appended []models.VolumeSnapshot
}

func (s *stubSnapshotRepo) ListSnapshots(ctx context.Context, limit int) ([]models.VolumeSnapshot, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit > 0 && len(s.stored) > limit {
		return s.stored[:limit], nil
	}
	return s.stored, nil
}

func (s *stubSnapshotRepo) AppendSnapshot(ctx context.Context, snap models.VolumeSnapshot) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.appended = append(s.appended, snap)
	return nil
}

func authenticatedResult(volume float64) models.VolumeResult {
	return models.VolumeResult{
		TotalVolumeUSD: volume,
		SampleTrades:   []models.Trade{},
		SourceTier:     models.SourceAuthenticated,
	}
}

func newTestService(woox, paradex *stubConnector, creds *stubCredentialRepo, snaps *stubSnapshotRepo) *volumeService {
	svc := NewVolumeService(woox, paradex, creds, snaps, DefaultCredentials{
		Woox:    models.Credential{APIKey: "default-key", APISecret: "default-secret"},
		Paradex: models.Credential{Token: "default-token"},
	}).(*volumeService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetCombinedVolume_MergesBothVenues(t *testing.T) {
	woox := &stubConnector{platform: models.PlatformWoox, result: authenticatedResult(1000)}
	paradex := &stubConnector{platform: models.PlatformParadex, result: authenticatedResult(500)}
	snaps := &stubSnapshotRepo{}
	svc := newTestService(woox, paradex, &stubCredentialRepo{}, snaps)

	combined, err := svc.GetCombinedVolume(context.Background(), models.RecentRange(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if combined.Woox.Result.TotalVolumeUSD != 1000 {
		t.Fatalf("woox volume %v, want 1000", combined.Woox.Result.TotalVolumeUSD)
	}
	if combined.Paradex.Result.TotalVolumeUSD != 500 {
		t.Fatalf("paradex volume %v, want 500", combined.Paradex.Result.TotalVolumeUSD)
	}

	// One snapshot persisted per venue with the run's totals.
	if len(snaps.appended) != 2 {
		t.Fatalf("appended %d snapshots, want 2", len(snaps.appended))
	}
	byPlatform := map[models.Platform]float64{}
	for _, s := range snaps.appended {
		byPlatform[s.Platform] = s.VolumeUSD
	}
	if byPlatform[models.PlatformWoox] != 1000 || byPlatform[models.PlatformParadex] != 500 {
		t.Fatalf("persisted snapshots %v", byPlatform)
	}
}

func TestGetCombinedVolume_HistoryFilteredAndPrepended(t *testing.T) {
	older := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	stored := []models.VolumeSnapshot{
		{Platform: models.PlatformWoox, VolumeUSD: 900, CapturedAt: older},
		{Platform: models.PlatformParadex, VolumeUSD: 450, CapturedAt: older},
		{Platform: models.PlatformWoox, VolumeUSD: 800, CapturedAt: older.Add(-24 * time.Hour)},
	}
	woox := &stubConnector{platform: models.PlatformWoox, result: authenticatedResult(1000)}
	paradex := &stubConnector{platform: models.PlatformParadex, result: authenticatedResult(500)}
	svc := newTestService(woox, paradex, &stubCredentialRepo{}, &stubSnapshotRepo{stored: stored})

	combined, err := svc.GetCombinedVolume(context.Background(), models.RecentRange(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wooxHist := combined.Woox.History
	if len(wooxHist) != 3 {
		t.Fatalf("woox history length %d, want 3", len(wooxHist))
	}
	// Current run first, then stored snapshots in stored order.
	if wooxHist[0].VolumeUSD != 1000 || wooxHist[1].VolumeUSD != 900 || wooxHist[2].VolumeUSD != 800 {
		t.Fatalf("woox history out of order: %+v", wooxHist)
	}
	for _, s := range wooxHist {
		if s.Platform != models.PlatformWoox {
			t.Fatalf("foreign platform %q in woox history", s.Platform)
		}
	}

	if len(combined.Paradex.History) != 2 {
		t.Fatalf("paradex history length %d, want 2", len(combined.Paradex.History))
	}
}

func TestGetCombinedVolume_StoreFailuresAreNonFatal(t *testing.T) {
	woox := &stubConnector{platform: models.PlatformWoox, result: authenticatedResult(1000)}
	paradex := &stubConnector{platform: models.PlatformParadex, result: authenticatedResult(500)}
	snaps := &stubSnapshotRepo{
		listErr:  errors.New("db down"),
		writeErr: errors.New("db down"),
	}
	svc := newTestService(woox, paradex, &stubCredentialRepo{err: errors.New("db down")}, snaps)

	combined, err := svc.GetCombinedVolume(context.Background(), models.RecentRange(time.Now()))
	if err != nil {
		t.Fatalf("store failures must not fail the call, got %v", err)
	}

	if combined.Woox.Result.TotalVolumeUSD != 1000 || combined.Paradex.Result.TotalVolumeUSD != 500 {
		t.Fatal("venue totals lost on store failure")
	}
	// History degrades to just the current run.
	if len(combined.Woox.History) != 1 || len(combined.Paradex.History) != 1 {
		t.Fatalf("history lengths %d/%d, want 1/1",
			len(combined.Woox.History), len(combined.Paradex.History))
	}
}

func TestGetCombinedVolume_PanickingVenueIsIsolated(t *testing.T) {
	woox := &stubConnector{platform: models.PlatformWoox, panicMsg: "boom"}
	paradex := &stubConnector{platform: models.PlatformParadex, result: authenticatedResult(500)}
	svc := newTestService(woox, paradex, &stubCredentialRepo{}, &stubSnapshotRepo{})

	combined, err := svc.GetCombinedVolume(context.Background(), models.RecentRange(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if combined.Woox.Result.SourceTier != models.SourceError {
		t.Fatalf("woox source tier %q, want error", combined.Woox.Result.SourceTier)
	}
	if combined.Woox.Result.Note == "" {
		t.Fatal("panicking venue must carry a diagnostic note")
	}
	if combined.Paradex.Result.TotalVolumeUSD != 500 {
		t.Fatal("healthy venue suppressed by the other venue's panic")
	}
}

func TestGetCombinedVolume_CredentialResolution(t *testing.T) {
	stored := &models.Credential{Platform: models.PlatformWoox, APIKey: "stored-key", APISecret: "stored-secret"}
	woox := &stubConnector{platform: models.PlatformWoox, result: authenticatedResult(1)}
	paradex := &stubConnector{platform: models.PlatformParadex, result: authenticatedResult(1)}
	creds := &stubCredentialRepo{creds: map[models.Platform]*models.Credential{
		models.PlatformWoox: stored,
	}}
	svc := newTestService(woox, paradex, creds, &stubSnapshotRepo{})

	if _, err := svc.GetCombinedVolume(context.Background(), models.RecentRange(time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if woox.gotCred == nil || woox.gotCred.APIKey != "stored-key" {
		t.Fatalf("woox credential %+v, want stored credential", woox.gotCred)
	}
	// No stored paradex credential: the injected default is substituted with
	// the platform filled in.
	if paradex.gotCred == nil || paradex.gotCred.Token != "default-token" {
		t.Fatalf("paradex credential %+v, want injected default", paradex.gotCred)
	}
	if paradex.gotCred.Platform != models.PlatformParadex {
		t.Fatalf("default credential platform %q not set", paradex.gotCred.Platform)
	}
}
