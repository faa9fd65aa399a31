// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/domain/interfaces"
	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
	"github.com/ochairo/scangate/internal/domain/services"
)

// VerifierFactory builds the download verification chain for an installation.
// A nil verifier means no verification was requested.
type VerifierFactory interface {
	VerifierFor(rec entities.InstallationRecord) (gateways.BinaryVerifier, error)
}

// ProvisionOrchestrator installs and refreshes scanner binaries in the local tool cache
type ProvisionOrchestrator struct {
	resolver   gateways.ReleaseResolver
	downloader gateways.ToolDownloader
	verifiers  VerifierFactory
	host       gateways.HostProbe
	toolsRoot  string
	now        func() time.Time
	log        interfaces.Logger
}

// ProvisionOrchestratorConfig holds configuration for the orchestrator
type ProvisionOrchestratorConfig struct {
	ToolsRoot string
	Now       func() time.Time
}

// NewProvisionOrchestrator creates a new provision orchestrator
func NewProvisionOrchestrator(
	resolver gateways.ReleaseResolver,
	downloader gateways.ToolDownloader,
	verifiers VerifierFactory,
	host gateways.HostProbe,
	config ProvisionOrchestratorConfig,
	logger interfaces.Logger,
) *ProvisionOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	toolsRoot := config.ToolsRoot
	if toolsRoot == "" {
		toolsRoot = filepath.Join(os.TempDir(), "scangate", "tools")
	}

	return &ProvisionOrchestrator{
		resolver:   resolver,
		downloader: downloader,
		verifiers:  verifiers,
		host:       host,
		toolsRoot:  toolsRoot,
		now:        now,
		log:        logger,
	}
}

// Ensure returns rec with HomePath and FreshnessMarker filled in, reinstalling
// both binaries first when the marker is absent, unreadable or older than
// rec.UpdateIntervalHours
func (o *ProvisionOrchestrator) Ensure(ctx context.Context, rec entities.InstallationRecord) (entities.InstallationRecord, error) {
	if strings.TrimSpace(rec.HomePath) == "" {
		rec.HomePath = services.DefaultHome(o.toolsRoot, rec.Name)
	}
	home, err := filepath.Abs(rec.HomePath)
	if err != nil {
		return rec, &entities.ProvisioningError{Installation: rec.Name, Err: err}
	}
	rec.HomePath = home

	now := o.now()
	rec.FreshnessMarker = readMarker(filepath.Join(rec.HomePath, services.TimestampFile))
	if services.IsFresh(rec.FreshnessMarker, now, rec.UpdateIntervalHours) {
		o.log.Debug("Installation is fresh",
			interfaces.F("installation", rec.Name),
			interfaces.F("home", rec.HomePath),
			interfaces.F("installedAt", rec.FreshnessMarker.Format(time.RFC3339)))
		return rec, nil
	}

	if err := o.install(ctx, &rec, now); err != nil {
		return rec, &entities.ProvisioningError{Installation: rec.Name, Err: err}
	}
	return rec, nil
}

func (o *ProvisionOrchestrator) install(ctx context.Context, rec *entities.InstallationRecord, now time.Time) error {
	profile, err := o.platform(ctx, rec.PlatformOverride)
	if err != nil {
		return err
	}

	if resolved, err := o.resolver.ResolveAlias(ctx, rec.Version); err != nil {
		o.log.Warn("Could not resolve scanner version",
			interfaces.F("installation", rec.Name),
			interfaces.F("version", rec.Version),
			interfaces.F("error", err))
	} else {
		o.log.Info("Installing scanner",
			interfaces.F("installation", rec.Name),
			interfaces.F("version", resolved),
			interfaces.F("platform", string(profile.ID)),
			interfaces.F("home", rec.HomePath))
	}

	var verifier gateways.BinaryVerifier
	if o.verifiers != nil {
		if verifier, err = o.verifiers.VerifierFor(*rec); err != nil {
			return fmt.Errorf("failed to prepare download verification: %w", err)
		}
	}

	if err := os.MkdirAll(rec.HomePath, 0750); err != nil {
		return fmt.Errorf("failed to create installation directory: %w", err)
	}

	scannerURL := o.resolver.ScannerURL(rec.Version, profile.ScannerBinary)
	reportURL := o.resolver.ReportURL(rec.Version, profile.ReportBinary)

	downloads := []struct {
		url  string
		dest string
	}{
		{scannerURL, rec.ScannerPath(profile)},
		{reportURL, rec.ReportPath(profile)},
	}
	for _, d := range downloads {
		n, err := o.downloader.DownloadFile(ctx, d.url, d.dest)
		if err != nil {
			return fmt.Errorf("download %s: %w", d.url, err)
		}
		o.log.Debug("Downloaded binary", interfaces.F("url", d.url), interfaces.F("bytes", n))

		if verifier != nil {
			if err := verifier.Verify(ctx, d.dest, d.url); err != nil {
				return fmt.Errorf("verify %s: %w", d.url, err)
			}
		}

		if !profile.IsWindows() {
			//nolint:gosec // G302: scanner binaries must be executable
			if err := os.Chmod(d.dest, 0755); err != nil {
				return fmt.Errorf("failed to mark %s executable: %w", d.dest, err)
			}
		}
	}

	provenance := scannerURL + "\n" + reportURL + "\n"
	if err := os.WriteFile(filepath.Join(rec.HomePath, services.SourceFile), []byte(provenance), 0600); err != nil {
		return fmt.Errorf("failed to write provenance file: %w", err)
	}

	// Written last: an interrupted install is never considered fresh
	marker := services.FormatFreshnessMarker(now)
	if err := os.WriteFile(filepath.Join(rec.HomePath, services.TimestampFile), []byte(marker), 0600); err != nil {
		return fmt.Errorf("failed to write freshness marker: %w", err)
	}
	rec.FreshnessMarker = services.ParseFreshnessMarker(marker)

	o.log.Info("Installation ready",
		interfaces.F("installation", rec.Name),
		interfaces.F("home", rec.HomePath))
	return nil
}

func (o *ProvisionOrchestrator) platform(ctx context.Context, override string) (entities.PlatformProfile, error) {
	if strings.TrimSpace(override) != "" {
		return services.PlatformByID(override)
	}
	if o.host == nil {
		return entities.PlatformProfile{}, entities.ErrNoExecutionHost
	}
	info, err := o.host.Probe(ctx)
	if err != nil {
		return entities.PlatformProfile{}, fmt.Errorf("%w: %v", entities.ErrNoExecutionHost, err)
	}
	return services.DetectPlatform(info.OSName, info.OSArch)
}

func readMarker(path string) time.Time {
	//nolint:gosec // G304: marker lives in the installation directory
	data, err := os.ReadFile(path)
	if err != nil {
		return services.ParseFreshnessMarker("")
	}
	return services.ParseFreshnessMarker(string(data))
}
