package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/domain/services"
	"github.com/ochairo/scangate/internal/external-adapters/yaml"
)

func newInstallCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install [installation...]",
		Short: "Download or refresh scanner installations",
		Long: `Provision the scanner and report renderer binaries ahead of a scan.
Installations whose freshness marker is younger than their update interval
are left untouched. Without arguments every configured installation is
provisioned.`,
		Example: `  scangate install
  scangate install snyk-latest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), global, args)
		},
	}
}

func runInstall(ctx context.Context, global *globalOptions, names []string) error {
	a, err := newApp(global)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck // Defer flush, error not actionable

	if len(names) == 0 {
		names = a.installationNames()
	}
	if len(names) == 0 {
		return &entities.ConfigurationError{Reason: "no installations configured", Err: entities.ErrMissingInstallation}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := yaml.NewInstallationRepository(a.config.Installations)
	host, err := a.hostInfo(ctx)
	if err != nil {
		return err
	}
	provisioner := a.provisioner()

	for _, name := range names {
		rec, err := repo.GetInstallation(ctx, name)
		if err != nil {
			return &entities.ConfigurationError{Reason: fmt.Sprintf("installation %q", name), Err: err}
		}

		spec := services.ForEnvironment(services.ForNode(*rec, host), a.env)
		installed, err := provisioner.Ensure(ctx, spec)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(global.stdout, "%s\t%s\t%s\n",
			installed.Name, installed.HomePath, installed.FreshnessMarker.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}
