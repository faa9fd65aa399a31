package yaml

import (
	"context"
	"errors"
	"testing"

	"github.com/ochairo/scangate/internal/domain/entities"
)

func TestInstallationRepository(t *testing.T) {
	repo := NewInstallationRepository([]entities.InstallationRecord{
		{Name: "snyk-latest", Version: "latest", NodeHomes: map[string]string{"agent": "/opt/a"}},
		{Name: "snyk-pinned", Version: "1.1290.0"},
	})

	rec, err := repo.GetInstallation(context.Background(), "snyk-pinned")
	if err != nil {
		t.Fatalf("GetInstallation() error = %v", err)
	}
	if rec.Version != "1.1290.0" {
		t.Errorf("Version = %q", rec.Version)
	}

	first, err := repo.GetInstallation(context.Background(), "snyk-latest")
	if err != nil {
		t.Fatal(err)
	}
	first.Version = "mutated"
	first.NodeHomes["agent"] = "/mutated"

	again, _ := repo.GetInstallation(context.Background(), "snyk-latest")
	if again.Version != "latest" || again.NodeHomes["agent"] != "/opt/a" {
		t.Errorf("snapshot was mutated through a returned record: %+v", again)
	}

	_, err = repo.GetInstallation(context.Background(), "missing")
	if !errors.Is(err, entities.ErrMissingInstallation) {
		t.Errorf("GetInstallation(missing) error = %v, want ErrMissingInstallation", err)
	}

	all, err := repo.ListInstallations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Name != "snyk-latest" || all[1].Name != "snyk-pinned" {
		t.Errorf("ListInstallations() order = %v", all)
	}
}
