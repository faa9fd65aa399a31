package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ochairo/scangate/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/scangate/internal/domain-orchestrators"
	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/domain/interfaces"
	gatewayifaces "github.com/ochairo/scangate/internal/domain/interfaces/gateways"
	"github.com/ochairo/scangate/internal/external-adapters/minio"
	"github.com/ochairo/scangate/internal/external-adapters/yaml"
	"github.com/ochairo/scangate/internal/external-adapters/zaplog"
)

// defaultEnvFiles are merged into the run environment when present
var defaultEnvFiles = []string{".env", ".env.local"}

// app holds what every command needs after startup
type app struct {
	config *yaml.StepConfig
	env    map[string]string
	log    *zaplog.Logger
}

// newApp loads the step configuration, the run environment and the logger
func newApp(opts *globalOptions) (*app, error) {
	cfg, err := yaml.NewConfigParser().ParseFile(opts.configPath)
	if err != nil {
		return nil, &entities.ConfigurationError{Reason: "step configuration", Err: err}
	}

	env, err := loadEnvironment(os.Environ(), opts.envFiles)
	if err != nil {
		return nil, &entities.ConfigurationError{Reason: "environment files", Err: err}
	}

	log, err := newLogger(opts, cfg.Logging)
	if err != nil {
		return nil, &entities.ConfigurationError{Reason: "logging", Err: err}
	}

	return &app{config: cfg, env: env, log: log}, nil
}

func newLogger(opts *globalOptions, lc yaml.LoggingConfig) (*zaplog.Logger, error) {
	level := lc.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	format := lc.Format
	if opts.logFormat != "" {
		format = opts.logFormat
	}
	return zaplog.New(zaplog.Options{Level: level, Format: format, Output: opts.stderr})
}

// loadEnvironment merges .env files under the process environment. The
// process environment wins; explicitly named files must exist.
func loadEnvironment(environ []string, extraFiles []string) (map[string]string, error) {
	env := map[string]string{}

	for _, f := range defaultEnvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := mergeEnvFile(env, f); err != nil {
			return nil, err
		}
	}
	for _, f := range extraFiles {
		if err := mergeEnvFile(env, f); err != nil {
			return nil, err
		}
	}

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env, nil
}

func mergeEnvFile(env map[string]string, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for k, v := range values {
		env[k] = v
	}
	return nil
}

// toolsRoot is the directory holding installations without an explicit home
func (a *app) toolsRoot() string {
	if root := strings.TrimSpace(a.env[toolsRootEnvVar]); root != "" {
		return root
	}
	return a.config.Tools.Root
}

func (a *app) provisioner() *orchestrators.ProvisionOrchestrator {
	return orchestrators.NewProvisionOrchestrator(
		gateways.NewReleaseResolver(a.config.Tools.ScannerBaseURL, a.config.Tools.ReportBaseURL),
		gateways.NewDownloader(),
		gateways.NewVerifierFactory(),
		gateways.NewHostProbe(),
		orchestrators.ProvisionOrchestratorConfig{ToolsRoot: a.toolsRoot()},
		a.log,
	)
}

// credentials chains the credentials file, when configured, before the
// run environment
func (a *app) credentials() (gatewayifaces.CredentialStore, error) {
	var stores []gatewayifaces.CredentialStore
	if path := strings.TrimSpace(a.config.Credentials.File); path != "" {
		file, err := yaml.LoadCredentialsFile(path)
		if err != nil {
			return nil, &entities.ConfigurationError{Reason: "credentials file", Err: err}
		}
		stores = append(stores, file)
	}
	stores = append(stores, gateways.NewEnvCredentialStore(a.env))
	return gateways.NewCredentialChain(stores...), nil
}

// artifactSink prefers S3-compatible storage and falls back to a local
// directory, by default inside the workspace
func (a *app) artifactSink(workspace string) (gatewayifaces.ArtifactSink, error) {
	if s3 := a.config.Artifacts.S3; s3 != nil {
		accessKey := a.env[s3.AccessKeyEnv]
		secretKey := a.env[s3.SecretKeyEnv]
		if accessKey == "" || secretKey == "" {
			return nil, &entities.ConfigurationError{
				Reason: fmt.Sprintf("S3 credentials %s/%s are not set", s3.AccessKeyEnv, s3.SecretKeyEnv),
				Err:    entities.ErrMissingCredential,
			}
		}
		sink, err := minio.NewArtifactSink(minio.Config{
			Endpoint:  s3.Endpoint,
			AccessKey: accessKey,
			SecretKey: secretKey,
			Region:    s3.Region,
			Bucket:    s3.Bucket,
			Prefix:    s3.Prefix,
			UseSSL:    s3.UseSSL,
		})
		if err != nil {
			return nil, &entities.ConfigurationError{Reason: "artifact storage", Err: err}
		}
		a.log.Debug("Archiving reports to S3", interfaces.F("bucket", s3.Bucket), interfaces.F("endpoint", s3.Endpoint))
		return sink, nil
	}

	dir := a.config.Artifacts.Dir
	if dir == "" {
		dir = filepath.Join(workspace, "scangate-artifacts")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &entities.ConfigurationError{Reason: "artifact directory", Err: err}
	}
	a.log.Debug("Archiving reports locally", interfaces.F("dir", abs))
	return gateways.NewLocalArtifactSink(abs), nil
}

// installationNames lists the configured installations in a stable order
func (a *app) installationNames() []string {
	names := make([]string, 0, len(a.config.Installations))
	for _, rec := range a.config.Installations {
		names = append(names, rec.Name)
	}
	sort.Strings(names)
	return names
}

// hostInfo returns the node name used to specialize installations
func (a *app) hostInfo(ctx context.Context) (string, error) {
	info, err := gateways.NewHostProbe().Probe(ctx)
	if err != nil {
		return "", &entities.ConfigurationError{Reason: err.Error(), Err: entities.ErrNoExecutionHost}
	}
	return info.NodeName, nil
}
