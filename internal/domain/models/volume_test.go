package models

import (
	"testing"
	"time"
)

func TestVolumeQuery_Days(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		span time.Duration
		want int
	}{
		{"zero span floors at one", 0, 1},
		{"half day rounds up", 12 * time.Hour, 1},
		{"exactly one day", 24 * time.Hour, 1},
		{"one day and a second rounds up", 24*time.Hour + time.Second, 2},
		{"exactly five days", 5 * 24 * time.Hour, 5},
		{"thirty days", 30 * 24 * time.Hour, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := VolumeQuery{StartTime: base.Add(-tt.span), EndTime: base}
			if got := q.Days(); got != tt.want {
				t.Fatalf("Days()=%d, want %d", got, tt.want)
			}
		})
	}
}

func TestDefaultRanges(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	full := FullHistoryRange(now)
	if !full.EndTime.Equal(now) || full.Days() != FullHistoryDays {
		t.Fatalf("full-history range spans %d days, want %d", full.Days(), FullHistoryDays)
	}

	recent := RecentRange(now)
	if !recent.EndTime.Equal(now) || recent.Days() != RecentDays {
		t.Fatalf("recent range spans %d days, want %d", recent.Days(), RecentDays)
	}
}

func TestCredential_BearerToken(t *testing.T) {
	tests := []struct {
		name string
		cred *Credential
		want string
	}{
		{"plain token", &Credential{Token: "tok-123"}, "tok-123"},
		{"stored with scheme", &Credential{Token: "Bearer tok-123"}, "tok-123"},
		{"surrounding whitespace", &Credential{Token: "  Bearer tok-123  "}, "tok-123"},
		{"empty", &Credential{}, ""},
		{"nil receiver", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.BearerToken(); got != tt.want {
				t.Fatalf("BearerToken()=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlatform_Valid(t *testing.T) {
	if !PlatformWoox.Valid() || !PlatformParadex.Valid() {
		t.Fatal("configured venues must be valid")
	}
	if Platform("binance").Valid() || Platform("").Valid() {
		t.Fatal("unknown platform must be invalid")
	}
}
