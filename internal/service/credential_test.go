package service

import (
	"context"
	"errors"
	"testing"

	"github.com/guttosm/volpulse/internal/domain/models"
)

func TestCredentialService_Save(t *testing.T) {
	tests := []struct {
		name    string
		cred    models.Credential
		wantErr bool
	}{
		{
			name: "valid woox pair",
			cred: models.Credential{Platform: models.PlatformWoox, APIKey: "k", APISecret: "s"},
		},
		{
			name: "valid paradex token",
			cred: models.Credential{Platform: models.PlatformParadex, Token: "tok"},
		},
		{
			name: "paradex token with scheme prefix",
			cred: models.Credential{Platform: models.PlatformParadex, Token: "Bearer tok"},
		},
		{
			name:    "unknown platform",
			cred:    models.Credential{Platform: "binance", APIKey: "k", APISecret: "s"},
			wantErr: true,
		},
		{
			name:    "woox missing secret",
			cred:    models.Credential{Platform: models.PlatformWoox, APIKey: "k"},
			wantErr: true,
		},
		{
			name:    "woox missing key",
			cred:    models.Credential{Platform: models.PlatformWoox, APISecret: "s"},
			wantErr: true,
		},
		{
			name:    "paradex empty token",
			cred:    models.Credential{Platform: models.PlatformParadex},
			wantErr: true,
		},
		{
			name:    "paradex token that is only the scheme",
			cred:    models.Credential{Platform: models.PlatformParadex, Token: "Bearer "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubCredentialRepo{}
			svc := NewCredentialService(repo)

			err := svc.Save(context.Background(), tt.cred)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				if len(repo.saved) != 0 {
					t.Fatal("rejected credential must not reach the repository")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(repo.saved) != 1 {
				t.Fatalf("saved %d credentials, want 1", len(repo.saved))
			}
		})
	}
}

func TestCredentialService_SaveStorageError(t *testing.T) {
	repo := &stubCredentialRepo{err: errors.New("db down")}
	svc := NewCredentialService(repo)

	err := svc.Save(context.Background(), models.Credential{Platform: models.PlatformParadex, Token: "tok"})
	if err == nil || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestCredentialService_List(t *testing.T) {
	repo := &stubCredentialRepo{creds: map[models.Platform]*models.Credential{
		models.PlatformWoox: {Platform: models.PlatformWoox, APIKey: "k", APISecret: "s"},
	}}
	svc := NewCredentialService(repo)

	creds, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creds) != 1 || creds[0].Platform != models.PlatformWoox {
		t.Fatalf("got %+v", creds)
	}
}
