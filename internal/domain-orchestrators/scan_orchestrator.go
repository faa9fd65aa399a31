package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/domain/interfaces"
	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
	"github.com/ochairo/scangate/internal/domain/interfaces/repositories"
	"github.com/ochairo/scangate/internal/domain/interfaces/services"
	domainservices "github.com/ochairo/scangate/internal/domain/services"
)

// Workspace file names
const (
	ReportJSONFile  = "snyk_report.json"
	ReportHTMLFile  = "snyk_report.html"
	FinalReportName = "snyk_report.html"
)

// ResultDecoder reads the scanner test output
type ResultDecoder interface {
	DecodeFile(path string) (*entities.ScanResult, error)
}

// ReportPostProcessor rewrites the rendered HTML report
type ReportPostProcessor interface {
	PostProcess(rawHTML []byte, stylesheetURL, monitorURL string) ([]byte, error)
}

// State is a scan pipeline stage
type State string

// Pipeline stages
const (
	StateIdle       State = "idle"
	StateResolving  State = "resolving"
	StateTesting    State = "testing"
	StateMonitoring State = "monitoring"
	StateReporting  State = "reporting"
	StateDone       State = "done"
	StateAborted    State = "aborted"
)

// ScanOrchestrator runs one scan build step: resolve, test, monitor, report, decide
type ScanOrchestrator struct {
	repo        repositories.InstallationRepository
	provisioner services.Provisioner
	launcher    gateways.ProcessLauncher
	credentials gateways.CredentialStore
	sink        gateways.ArtifactSink
	host        gateways.HostProbe
	decoder     ResultDecoder
	post        ReportPostProcessor
	builder     *domainservices.CommandBuilder
	config      ScanOrchestratorConfig
	log         interfaces.Logger
}

// ScanOrchestratorConfig holds per-run settings
type ScanOrchestratorConfig struct {
	RunID              string
	Workspace          string
	Env                map[string]string
	StylesheetURL      string
	IntegrationVersion string
}

// NewScanOrchestrator creates a new scan orchestrator
func NewScanOrchestrator(
	repo repositories.InstallationRepository,
	provisioner services.Provisioner,
	launcher gateways.ProcessLauncher,
	credentials gateways.CredentialStore,
	sink gateways.ArtifactSink,
	host gateways.HostProbe,
	decoder ResultDecoder,
	post ReportPostProcessor,
	config ScanOrchestratorConfig,
	logger interfaces.Logger,
) *ScanOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	if config.Env == nil {
		config.Env = map[string]string{}
	}
	// Children run with Dir set to the workspace, so every path handed to
	// them must not depend on the current directory.
	if abs, err := filepath.Abs(config.Workspace); err == nil {
		config.Workspace = abs
	}

	return &ScanOrchestrator{
		repo:        repo,
		provisioner: provisioner,
		launcher:    launcher,
		credentials: credentials,
		sink:        sink,
		host:        host,
		decoder:     decoder,
		post:        post,
		builder:     domainservices.NewCommandBuilder(config.IntegrationVersion),
		config:      config,
		log:         logger,
	}
}

// run carries the state of a single pipeline execution
type run struct {
	cfg      entities.ScanConfig
	state    State
	log      *domainservices.RedactingLogger
	report   *entities.RunReport
	secret   string
	test     *domainservices.Command
	monitor  *domainservices.Command
	renderer []string
	jsonPath string
	htmlPath string
}

// Run executes the pipeline. The returned report is never nil. The error is
// the build verdict: *entities.ConfigurationError or *entities.ProvisioningError
// when the run aborted before scanning, *entities.IssuesFoundError or
// *entities.ExecutionError according to the fail-on policy, nil otherwise.
func (o *ScanOrchestrator) Run(ctx context.Context, cfg entities.ScanConfig) (*entities.RunReport, error) {
	r := &run{
		cfg:   cfg,
		state: StateIdle,
		log:   domainservices.NewRedactingLogger(o.log),
		report: &entities.RunReport{
			RunID: o.config.RunID,
		},
		jsonPath: filepath.Join(o.config.Workspace, ReportJSONFile),
		htmlPath: filepath.Join(o.config.Workspace, ReportHTMLFile),
	}

	o.transition(r, StateResolving)
	if err := o.resolve(ctx, r); err != nil {
		o.transition(r, StateAborted)
		r.log.Error("Scan aborted", interfaces.F("error", err))
		return r.report, err
	}

	o.transition(r, StateTesting)
	if err := o.runTest(ctx, r); err != nil {
		return o.abort(r, err)
	}

	if cfg.MonitorOnBuild {
		o.transition(r, StateMonitoring)
		o.runMonitor(ctx, r)
		if ctx.Err() != nil {
			return o.abort(r, ctx.Err())
		}
	}

	o.transition(r, StateReporting)
	if err := o.runReport(ctx, r); err != nil {
		o.recordFailure(r, err)
		if ctx.Err() != nil {
			return o.abort(r, ctx.Err())
		}
	} else {
		o.cleanup(r)
	}

	r.report.ExecutionFailed = len(r.report.ExecutionErrors) > 0
	verdict := domainservices.DecideVerdict(r.report, cfg)
	o.transition(r, StateDone)

	r.log.Info("Scan finished",
		interfaces.F("outcome", string(r.report.Outcome)),
		interfaces.F("issuesFound", r.report.IssuesFound),
		interfaces.F("executionFailed", r.report.ExecutionFailed))
	return r.report, verdict
}

func (o *ScanOrchestrator) transition(r *run, next State) {
	r.log.Debug("Pipeline state change",
		interfaces.F("from", string(r.state)),
		interfaces.F("to", string(next)),
		interfaces.F("runId", o.config.RunID))
	r.state = next
}

// abort stops after host cancellation; partial files are left in place
func (o *ScanOrchestrator) abort(r *run, cause error) (*entities.RunReport, error) {
	phase := string(r.state)
	o.transition(r, StateAborted)
	err := &entities.ExecutionError{Phase: phase, ExitCode: -1, Detail: "interrupted", Err: cause}
	r.report.ExecutionErrors = append(r.report.ExecutionErrors, err)
	r.report.ExecutionFailed = true
	r.report.Outcome = entities.OutcomeExecutionError
	r.log.Error("Scan interrupted", interfaces.F("error", cause))
	return r.report, err
}

func (o *ScanOrchestrator) resolve(ctx context.Context, r *run) error {
	if o.config.RunID == "" {
		return &entities.ConfigurationError{Reason: "run id is required"}
	}

	name := strings.TrimSpace(r.cfg.InstallationName)
	if name == "" {
		return &entities.ConfigurationError{Reason: "no scanner installation selected", Err: entities.ErrMissingInstallation}
	}

	if o.host == nil {
		return &entities.ConfigurationError{Reason: "host probe not configured", Err: entities.ErrNoExecutionHost}
	}
	host, err := o.host.Probe(ctx)
	if err != nil {
		return &entities.ConfigurationError{Reason: err.Error(), Err: entities.ErrNoExecutionHost}
	}

	rec, err := o.repo.GetInstallation(ctx, name)
	if err != nil {
		return &entities.ConfigurationError{Reason: fmt.Sprintf("installation %q", name), Err: err}
	}

	if r.secret, err = o.lookupSecret(ctx, r.cfg.CredentialRef); err != nil {
		return err
	}
	r.log.AddSecret(r.secret)

	if _, err := domainservices.SplitArguments(r.cfg.AdditionalArguments); err != nil {
		return &entities.ConfigurationError{Reason: "scanner arguments", Err: err}
	}

	spec := domainservices.ForEnvironment(domainservices.ForNode(*rec, host.NodeName), o.config.Env)
	provisioned, err := o.provisioner.Ensure(ctx, spec)
	if err != nil {
		var provErr *entities.ProvisioningError
		if errors.As(err, &provErr) {
			return err
		}
		return &entities.ProvisioningError{Installation: name, Err: err}
	}
	if provisioned.HomePath, err = filepath.Abs(provisioned.HomePath); err != nil {
		return &entities.ConfigurationError{Reason: "installation home", Err: err}
	}
	r.report.Installation = provisioned

	profile, err := domainservices.ResolvePlatform(provisioned.PlatformOverride, host.OSName, host.OSArch)
	if err != nil {
		return err
	}
	r.report.Platform = profile

	scanner := provisioned.ScannerPath(profile)
	renderer := provisioned.ReportPath(profile)
	for _, bin := range []string{scanner, renderer} {
		if info, statErr := os.Stat(bin); statErr != nil || info.IsDir() {
			return &entities.ConfigurationError{Reason: bin, Err: entities.ErrMissingBinary}
		}
	}

	if r.test, err = o.builder.Build(scanner, entities.CommandTest, r.cfg, o.config.Env, r.secret); err != nil {
		return &entities.ConfigurationError{Reason: "scanner arguments", Err: err}
	}
	if r.cfg.MonitorOnBuild {
		if r.monitor, err = o.builder.Build(scanner, entities.CommandMonitor, r.cfg, o.config.Env, r.secret); err != nil {
			return &entities.ConfigurationError{Reason: "scanner arguments", Err: err}
		}
	}
	r.renderer = []string{renderer, "-i", r.jsonPath}

	r.log.Info("Scanner ready",
		interfaces.F("installation", provisioned.Name),
		interfaces.F("platform", string(profile.ID)),
		interfaces.F("home", provisioned.HomePath))
	return nil
}

// lookupSecret resolves the credential reference, falling back to SNYK_TOKEN
// in the run environment when no reference is configured
func (o *ScanOrchestrator) lookupSecret(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref != "" {
		if o.credentials == nil {
			return "", &entities.ConfigurationError{Reason: "credential store not configured", Err: entities.ErrMissingCredential}
		}
		secret, err := o.credentials.Lookup(ctx, ref)
		if err != nil {
			return "", &entities.ConfigurationError{Reason: fmt.Sprintf("credential %q", ref), Err: err}
		}
		if secret == "" {
			return "", &entities.ConfigurationError{Reason: fmt.Sprintf("credential %q is empty", ref), Err: entities.ErrMissingCredential}
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(o.config.Env[domainservices.TokenEnvVar]); secret != "" {
		return secret, nil
	}
	return "", &entities.ConfigurationError{
		Reason: fmt.Sprintf("no credential reference and %s is not set", domainservices.TokenEnvVar),
		Err:    entities.ErrMissingCredential,
	}
}

// runTest returns an error only when the host cancelled the run
func (o *ScanOrchestrator) runTest(ctx context.Context, r *run) error {
	//nolint:gosec // G304: report file lives in the build workspace
	out, err := os.Create(r.jsonPath)
	if err != nil {
		o.recordFailure(r, &entities.ExecutionError{Phase: "scanner test", ExitCode: -1, Detail: "cannot create result file", Err: err})
		return nil
	}

	stderr := domainservices.NewLogWriter(r.log, "scanner test")
	r.log.Info("Running scanner", interfaces.F("command", r.test.String()))

	exitCode, launchErr := o.launcher.Launch(ctx, gateways.ProcessSpec{
		Args:   r.test.Args,
		Dir:    o.config.Workspace,
		Env:    r.test.Env,
		Stdout: out,
		Stderr: stderr,
	})
	stderr.Flush()
	if closeErr := out.Close(); closeErr != nil {
		r.log.Warn("Failed to close result file", interfaces.F("error", closeErr))
	}
	r.report.TestExitCode = exitCode

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if launchErr != nil {
		o.recordFailure(r, &entities.ExecutionError{Phase: "scanner test", ExitCode: exitCode, Err: launchErr})
		return nil
	}

	result, decodeErr := o.decoder.DecodeFile(r.jsonPath)
	if errors.Is(decodeErr, entities.ErrMalformedEncoding) {
		r.log.Warn("Scanner output is not valid UTF-8, using exit code only", interfaces.F("error", decodeErr))
		result, decodeErr = nil, nil
	}
	r.report.Result = result

	issues, execErr := domainservices.ClassifyTest(exitCode, result)
	r.report.IssuesFound = issues
	switch {
	case execErr != nil:
		o.recordFailure(r, execErr)
	case decodeErr != nil:
		o.recordFailure(r, &entities.ExecutionError{Phase: "scanner test", ExitCode: exitCode, Detail: "unreadable scanner output", Err: decodeErr})
	}

	fields := []interfaces.Field{interfaces.F("exitCode", exitCode), interfaces.F("issuesFound", issues)}
	if result != nil {
		fields = append(fields,
			interfaces.F("uniqueCount", result.UniqueCount),
			interfaces.F("dependencyCount", result.DependencyCount))
	}
	r.log.Info("Scanner test finished", fields...)
	return nil
}

// runMonitor never fails the run; problems are logged as warnings
func (o *ScanOrchestrator) runMonitor(ctx context.Context, r *run) {
	var captured bytes.Buffer
	stdout := domainservices.NewLogWriter(r.log, "scanner monitor")
	stderr := domainservices.NewLogWriter(r.log, "scanner monitor")
	r.log.Info("Running scanner", interfaces.F("command", r.monitor.String()))

	exitCode, err := o.launcher.Launch(ctx, gateways.ProcessSpec{
		Args:   r.monitor.Args,
		Dir:    o.config.Workspace,
		Env:    r.monitor.Env,
		Stdout: io.MultiWriter(&captured, stdout),
		Stderr: stderr,
	})
	stdout.Flush()
	stderr.Flush()
	r.report.MonitorExitCode = exitCode

	switch {
	case err != nil:
		r.log.Warn("Scanner monitor could not run", interfaces.F("error", err))
		return
	case exitCode != 0:
		r.log.Warn("Scanner monitor failed", interfaces.F("exitCode", exitCode))
		return
	}

	r.report.MonitorURL = domainservices.ExtractMonitorURL(captured.String())
	if r.report.MonitorURL == "" {
		r.log.Warn("Scanner monitor printed no project URL")
		return
	}
	r.log.Info("Project monitored", interfaces.F("url", r.report.MonitorURL))
}

func (o *ScanOrchestrator) runReport(ctx context.Context, r *run) error {
	//nolint:gosec // G304: report file lives in the build workspace
	out, err := os.Create(r.htmlPath)
	if err != nil {
		return &entities.ExecutionError{Phase: "report rendering", ExitCode: -1, Detail: "cannot create report file", Err: err}
	}

	stderr := domainservices.NewLogWriter(r.log, "report renderer")
	exitCode, launchErr := o.launcher.Launch(ctx, gateways.ProcessSpec{
		Args:   r.renderer,
		Dir:    o.config.Workspace,
		Env:    o.config.Env,
		Stdout: out,
		Stderr: stderr,
	})
	stderr.Flush()
	if closeErr := out.Close(); closeErr != nil && launchErr == nil {
		launchErr = closeErr
	}
	if launchErr != nil || exitCode != 0 {
		return &entities.ExecutionError{Phase: "report rendering", ExitCode: exitCode, Err: launchErr}
	}

	//nolint:gosec // G304: report file lives in the build workspace
	raw, err := os.ReadFile(r.htmlPath)
	if err != nil {
		return &entities.ExecutionError{Phase: "report rendering", Detail: "cannot read rendered report", Err: err}
	}

	final, err := o.post.PostProcess(raw, o.config.StylesheetURL, r.report.MonitorURL)
	if err != nil {
		return &entities.ExecutionError{Phase: "report post-processing", Err: err}
	}

	name := o.config.RunID + "_" + FinalReportName
	finalPath := filepath.Join(o.config.Workspace, name)
	if err := os.WriteFile(finalPath, final, 0600); err != nil {
		return &entities.ExecutionError{Phase: "report post-processing", Detail: "cannot write report", Err: err}
	}
	r.report.ReportPath = finalPath

	if o.sink == nil {
		r.log.Info("Report written", interfaces.F("path", finalPath))
		return nil
	}
	registered, err := o.sink.Register(ctx, o.config.RunID, name, finalPath)
	if err != nil {
		return &entities.ExecutionError{Phase: "report archiving", Err: err}
	}
	r.report.ReportRegistered = registered
	if registered {
		r.log.Info("Report archived", interfaces.F("name", name))
	} else {
		r.log.Info("Report already archived for this run", interfaces.F("name", name))
	}
	return nil
}

// cleanup removes intermediate files once the final report exists
func (o *ScanOrchestrator) cleanup(r *run) {
	for _, p := range []string{r.jsonPath, r.htmlPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			r.log.Warn("Failed to remove intermediate file", interfaces.F("path", p), interfaces.F("error", err))
		}
	}
}

func (o *ScanOrchestrator) recordFailure(r *run, err error) {
	r.report.ExecutionErrors = append(r.report.ExecutionErrors, err)
	r.log.Error("Scan step failed", interfaces.F("error", err))
}

// RunSummary returns a human-readable summary of a finished run
func RunSummary(report *entities.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s\n", report.Outcome)
	fmt.Fprintf(&b, "Installation: %s (%s)\n", report.Installation.Name, report.Platform.ID)
	fmt.Fprintf(&b, "Test exit code: %d\n", report.TestExitCode)
	if report.Result != nil {
		fmt.Fprintf(&b, "Vulnerabilities: %d unique across %d dependencies\n",
			report.Result.UniqueCount, report.Result.DependencyCount)
	}
	if report.MonitorURL != "" {
		fmt.Fprintf(&b, "Monitor: %s\n", report.MonitorURL)
	}
	if report.ReportPath != "" {
		fmt.Fprintf(&b, "Report: %s\n", report.ReportPath)
	}
	for _, err := range report.ExecutionErrors {
		fmt.Fprintf(&b, "Error: %v\n", err)
	}
	return b.String()
}
