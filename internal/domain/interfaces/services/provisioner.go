// Package services defines interfaces for domain service contracts.
package services

import (
	"context"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// Provisioner makes sure scanner binaries are present and fresh
type Provisioner interface {
	// Ensure installs rec.Version of both binaries into the installation
	// directory when the freshness marker is stale or absent, honoring
	// rec.UpdateIntervalHours and rec.PlatformOverride. A fresh installation
	// is returned without touching the network.
	Ensure(ctx context.Context, rec entities.InstallationRecord) (entities.InstallationRecord, error)
}
