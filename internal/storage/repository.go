package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/guttosm/volpulse/internal/domain/models"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

// CredentialRepository reads and writes venue credentials.
//
// The pipeline itself only reads; the write path exists for the credential
// management endpoints. GetCredential returns (nil, nil) when no credential
// is stored for the platform: absence is not an error, the caller
// substitutes its configured placeholder.
type CredentialRepository interface {
	GetCredential(ctx context.Context, platform models.Platform) (*models.Credential, error)
	UpsertCredential(ctx context.Context, cred models.Credential) error
	ListCredentials(ctx context.Context) ([]models.Credential, error)
}

// SnapshotRepository is the append-only volume snapshot store.
type SnapshotRepository interface {
	// ListSnapshots returns up to limit snapshots ordered by captured_at
	// descending.
	ListSnapshots(ctx context.Context, limit int) ([]models.VolumeSnapshot, error)
	// AppendSnapshot inserts one snapshot row; existing rows are never
	// updated.
	AppendSnapshot(ctx context.Context, snap models.VolumeSnapshot) error
}

type repository struct {
	db *sql.DB
}

// NewCredentialRepository builds a CredentialRepository over db.
func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &repository{db: db}
}

// NewSnapshotRepository builds a SnapshotRepository over db.
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &repository{db: db}
}

// GetCredential fetches the stored credential for one platform.
func (r *repository) GetCredential(ctx context.Context, platform models.Platform) (*models.Credential, error) {
	var (
		cred      models.Credential
		apiKey    sql.NullString
		apiSecret sql.NullString
		token     sql.NullString
		createdAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT platform, api_key, api_secret, token, created_at
		FROM credentials
		WHERE platform = $1
	`, string(platform)).Scan(&cred.Platform, &apiKey, &apiSecret, &token, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cred.APIKey = apiKey.String
	cred.APISecret = apiSecret.String
	cred.Token = token.String
	if createdAt.Valid {
		cred.CreatedAt = createdAt.Time
	}
	return &cred, nil
}

// UpsertCredential stores or replaces the credential for its platform.
func (r *repository) UpsertCredential(ctx context.Context, cred models.Credential) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (platform, api_key, api_secret, token, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (platform)
		DO UPDATE SET api_key = EXCLUDED.api_key,
					  api_secret = EXCLUDED.api_secret,
					  token = EXCLUDED.token,
					  created_at = NOW()
	`, string(cred.Platform), cred.APIKey, cred.APISecret, cred.Token)
	return err
}

// ListCredentials returns all stored credentials, newest first. Callers
// exposing these over HTTP must strip the key material.
func (r *repository) ListCredentials(ctx context.Context) ([]models.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT platform, api_key, api_secret, token, created_at
		FROM credentials
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var creds []models.Credential
	for rows.Next() {
		var (
			cred      models.Credential
			apiKey    sql.NullString
			apiSecret sql.NullString
			token     sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&cred.Platform, &apiKey, &apiSecret, &token, &createdAt); err != nil {
			return nil, err
		}
		cred.APIKey = apiKey.String
		cred.APISecret = apiSecret.String
		cred.Token = token.String
		if createdAt.Valid {
			cred.CreatedAt = createdAt.Time
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// ListSnapshots returns the most recent snapshots across all platforms.
func (r *repository) ListSnapshots(ctx context.Context, limit int) ([]models.VolumeSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT platform, volume_usd, captured_at
		FROM volume_snapshots
		ORDER BY captured_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snaps []models.VolumeSnapshot
	for rows.Next() {
		var (
			snap       models.VolumeSnapshot
			capturedAt time.Time
		)
		if err := rows.Scan(&snap.Platform, &snap.VolumeUSD, &capturedAt); err != nil {
			return nil, err
		}
		snap.CapturedAt = capturedAt
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// AppendSnapshot inserts one snapshot row.
func (r *repository) AppendSnapshot(ctx context.Context, snap models.VolumeSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO volume_snapshots (platform, volume_usd, captured_at)
		VALUES ($1, $2, $3)
	`, string(snap.Platform), snap.VolumeUSD, snap.CapturedAt)
	return err
}
