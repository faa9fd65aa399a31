package yaml

import (
	"context"
	"fmt"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// InstallationRepository implements repositories.InstallationRepository over
// the installations section of a parsed step configuration. It is a read-only
// snapshot; callers receive copies.
type InstallationRepository struct {
	records map[string]entities.InstallationRecord
	order   []string
}

// NewInstallationRepository creates a snapshot of the given records
func NewInstallationRepository(records []entities.InstallationRecord) *InstallationRepository {
	r := &InstallationRepository{
		records: make(map[string]entities.InstallationRecord, len(records)),
	}
	for _, rec := range records {
		if _, dup := r.records[rec.Name]; !dup {
			r.order = append(r.order, rec.Name)
		}
		r.records[rec.Name] = rec
	}
	return r
}

// GetInstallation retrieves an installation by name
func (r *InstallationRepository) GetInstallation(_ context.Context, name string) (*entities.InstallationRecord, error) {
	rec, ok := r.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrMissingInstallation, name)
	}
	return copyRecord(rec), nil
}

// ListInstallations returns all configured installations in file order
func (r *InstallationRepository) ListInstallations(_ context.Context) ([]*entities.InstallationRecord, error) {
	out := make([]*entities.InstallationRecord, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, copyRecord(r.records[name]))
	}
	return out, nil
}

func copyRecord(rec entities.InstallationRecord) *entities.InstallationRecord {
	if rec.NodeHomes != nil {
		homes := make(map[string]string, len(rec.NodeHomes))
		for k, v := range rec.NodeHomes {
			homes[k] = v
		}
		rec.NodeHomes = homes
	}
	return &rec
}
