package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/volpulse/internal/domain/models"
	"github.com/guttosm/volpulse/internal/storage"
)

// ErrInvalidInput marks a credential rejected by shape validation, as
// opposed to a storage failure.
var ErrInvalidInput = errors.New("invalid credential input")

// CredentialService validates and stores venue credentials for the
// management endpoints.
type CredentialService interface {
	// List returns stored credentials; callers must not expose key material.
	List(ctx context.Context) ([]models.Credential, error)
	// Save validates the credential shape against its platform and upserts it.
	Save(ctx context.Context, cred models.Credential) error
}

type credentialService struct {
	repo storage.CredentialRepository
}

// NewCredentialService builds a CredentialService over the repository.
func NewCredentialService(repo storage.CredentialRepository) CredentialService {
	return &credentialService{repo: repo}
}

func (s *credentialService) List(ctx context.Context) ([]models.Credential, error) {
	return s.repo.ListCredentials(ctx)
}

func (s *credentialService) Save(ctx context.Context, cred models.Credential) error {
	if !cred.Platform.Valid() {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, cred.Platform)
	}
	switch cred.Platform {
	case models.PlatformWoox:
		if cred.APIKey == "" || cred.APISecret == "" {
			return fmt.Errorf("%w: woox credentials require api_key and api_secret", ErrInvalidInput)
		}
	case models.PlatformParadex:
		if cred.BearerToken() == "" {
			return fmt.Errorf("%w: paradex credentials require a token", ErrInvalidInput)
		}
	}
	return s.repo.UpsertCredential(ctx, cred)
}
