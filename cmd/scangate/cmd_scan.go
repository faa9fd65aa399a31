package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ochairo/scangate/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/scangate/internal/domain-orchestrators"
	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/domain/interfaces"
	"github.com/ochairo/scangate/internal/external-adapters/htmlreport"
	"github.com/ochairo/scangate/internal/external-adapters/scanjson"
	"github.com/ochairo/scangate/internal/external-adapters/yaml"
)

type scanOptions struct {
	workspace         string
	runID             string
	timeout           time.Duration
	installation      string
	severityThreshold string
	targetFile        string
	organisation      string
	projectName       string
	additionalArgs    string
	credentialRef     string
	stylesheetURL     string
	monitor           bool
	failOnIssues      bool
	failOnError       bool
}

func newScanCmd(global *globalOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the build workspace and publish the HTML report",
		Example: `  scangate scan
  scangate scan --installation snyk-stable --severity-threshold high
  scangate scan --monitor=false --fail-on-issues=false --timeout 30m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.workspace, "workspace", "w", "", "Build workspace (default: current directory)")
	f.StringVar(&opts.runID, "run-id", "", "Run identifier (default: $"+runIDEnvVar+" or a random UUID)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Abort the run after this duration (0 disables)")
	f.StringVarP(&opts.installation, "installation", "i", "", "Scanner installation name")
	f.StringVar(&opts.severityThreshold, "severity-threshold", "", "Minimum severity to report (low, medium, high, critical)")
	f.StringVar(&opts.targetFile, "file", "", "Manifest file to scan")
	f.StringVar(&opts.organisation, "org", "", "Organisation to run the scan under")
	f.StringVar(&opts.projectName, "project-name", "", "Project name reported by monitor")
	f.StringVar(&opts.additionalArgs, "args", "", "Additional scanner arguments")
	f.StringVar(&opts.credentialRef, "credential", "", "Credential reference for the API token")
	f.StringVar(&opts.stylesheetURL, "stylesheet-url", "", "Stylesheet linked from the HTML report")
	f.BoolVar(&opts.monitor, "monitor", true, "Record a monitor snapshot of the project")
	f.BoolVar(&opts.failOnIssues, "fail-on-issues", true, "Fail the build when vulnerabilities are found")
	f.BoolVar(&opts.failOnError, "fail-on-error", true, "Fail the build when the scanner cannot complete")

	return cmd
}

func runScan(cmd *cobra.Command, global *globalOptions, opts *scanOptions) error {
	a, err := newApp(global)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck // Defer flush, error not actionable

	cfg := mergeScanFlags(cmd, a.config, opts)

	workspace, err := resolveWorkspace(opts.workspace)
	if err != nil {
		return err
	}
	runID := resolveRunID(opts.runID, a.env)

	credentials, err := a.credentials()
	if err != nil {
		return err
	}
	sink, err := a.artifactSink(workspace)
	if err != nil {
		return err
	}

	stylesheet := a.config.StylesheetURL
	if cmd.Flags().Changed("stylesheet-url") {
		stylesheet = opts.stylesheetURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	scanner := orchestrators.NewScanOrchestrator(
		yaml.NewInstallationRepository(a.config.Installations),
		a.provisioner(),
		gateways.NewProcessLauncher(),
		credentials,
		sink,
		gateways.NewHostProbe(),
		scanjson.FileDecoder{},
		htmlreport.PostProcessor{},
		orchestrators.ScanOrchestratorConfig{
			RunID:              runID,
			Workspace:          workspace,
			Env:                a.env,
			StylesheetURL:      stylesheet,
			IntegrationVersion: version,
		},
		a.log,
	)

	a.log.Info("Starting scan",
		interfaces.F("runId", runID),
		interfaces.F("workspace", workspace),
		interfaces.F("installation", cfg.InstallationName))

	report, err := scanner.Run(ctx, cfg)
	if report != nil && report.Outcome != "" {
		_, _ = fmt.Fprint(global.stdout, orchestrators.RunSummary(report))
	}
	return err
}

// mergeScanFlags overlays explicitly set flags on the file configuration
func mergeScanFlags(cmd *cobra.Command, step *yaml.StepConfig, opts *scanOptions) entities.ScanConfig {
	cfg := step.Scan
	flags := cmd.Flags()

	texts := []struct {
		name  string
		value string
		dest  *string
	}{
		{"installation", opts.installation, &cfg.InstallationName},
		{"severity-threshold", opts.severityThreshold, &cfg.SeverityThreshold},
		{"file", opts.targetFile, &cfg.TargetFile},
		{"org", opts.organisation, &cfg.Organisation},
		{"project-name", opts.projectName, &cfg.ProjectName},
		{"args", opts.additionalArgs, &cfg.AdditionalArguments},
		{"credential", opts.credentialRef, &cfg.CredentialRef},
	}
	for _, s := range texts {
		if flags.Changed(s.name) {
			*s.dest = s.value
		}
	}

	bools := []struct {
		name  string
		value bool
		dest  *bool
	}{
		{"monitor", opts.monitor, &cfg.MonitorOnBuild},
		{"fail-on-issues", opts.failOnIssues, &cfg.FailOnIssues},
		{"fail-on-error", opts.failOnError, &cfg.FailOnError},
	}
	for _, b := range bools {
		if flags.Changed(b.name) {
			*b.dest = b.value
		}
	}

	return cfg
}

// resolveWorkspace returns the absolute workspace directory; scanner output
// paths and the child working directory are both derived from it
func resolveWorkspace(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &entities.ConfigurationError{Reason: "workspace", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &entities.ConfigurationError{Reason: "workspace", Err: err}
	}
	if !info.IsDir() {
		return "", &entities.ConfigurationError{Reason: fmt.Sprintf("workspace %s is not a directory", dir)}
	}
	return abs, nil
}

func resolveRunID(flagValue string, env map[string]string) string {
	if flagValue != "" {
		return flagValue
	}
	if id := env[runIDEnvVar]; id != "" {
		return id
	}
	return uuid.NewString()
}
