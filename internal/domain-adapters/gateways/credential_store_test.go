package gateways

import (
	"context"
	"errors"
	"testing"

	"github.com/ochairo/scangate/internal/domain/entities"
)

type mapStore map[string]string

func (m mapStore) Lookup(_ context.Context, ref string) (string, error) {
	if v, ok := m[ref]; ok {
		return v, nil
	}
	return "", entities.ErrMissingCredential
}

type brokenStore struct{ err error }

func (b brokenStore) Lookup(context.Context, string) (string, error) { return "", b.err }

func TestEnvCredentialStore_Lookup(t *testing.T) {
	s := NewEnvCredentialStore(map[string]string{
		"SNYK_TOKEN": "tok-123",
		"BLANK":      "   ",
	})

	got, err := s.Lookup(context.Background(), "SNYK_TOKEN")
	if err != nil || got != "tok-123" {
		t.Errorf("Lookup(SNYK_TOKEN) = %q, %v", got, err)
	}

	for _, ref := range []string{"BLANK", "MISSING"} {
		if _, err := s.Lookup(context.Background(), ref); !errors.Is(err, entities.ErrMissingCredential) {
			t.Errorf("Lookup(%s) error = %v, want ErrMissingCredential", ref, err)
		}
	}
}

func TestCredentialChain_Lookup(t *testing.T) {
	chain := NewCredentialChain(
		mapStore{"snyk-prod": "from-file"},
		NewEnvCredentialStore(map[string]string{"SNYK_TOKEN": "from-env"}),
	)

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"snyk-prod", "from-file", false},
		{"SNYK_TOKEN", "from-env", false},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := chain.Lookup(context.Background(), tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, entities.ErrMissingCredential) {
				t.Errorf("Lookup() error = %v, want ErrMissingCredential", err)
			}
			if got != tt.want {
				t.Errorf("Lookup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCredentialChain_StopsOnHardError(t *testing.T) {
	boom := errors.New("credentials file unreadable")
	chain := NewCredentialChain(brokenStore{err: boom}, mapStore{"ref": "secret"})

	if _, err := chain.Lookup(context.Background(), "ref"); !errors.Is(err, boom) {
		t.Errorf("Lookup() error = %v, want %v", err, boom)
	}
}
