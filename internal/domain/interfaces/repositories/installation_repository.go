// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// InstallationRepository is a read-only snapshot of configured installations
type InstallationRepository interface {
	// GetInstallation retrieves an installation by name
	GetInstallation(ctx context.Context, name string) (*entities.InstallationRecord, error)

	// ListInstallations returns all configured installations
	ListInstallations(ctx context.Context) ([]*entities.InstallationRecord, error)
}
