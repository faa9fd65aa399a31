// Package yaml provides YAML-based step configuration, installation snapshot
// and credentials file adapters.
package yaml

import (
	"fmt"
	"os"
	"strings"

	"github.com/ochairo/scangate/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// DefaultUpdateIntervalHours applies when an installation omits updateIntervalHours
const DefaultUpdateIntervalHours = 24

// yamlStepConfig represents the raw scangate.yaml structure
type yamlStepConfig struct {
	Scan          yamlScan           `yaml:"scan"`
	Report        yamlReport         `yaml:"report"`
	Tools         yamlTools          `yaml:"tools"`
	Installations []yamlInstallation `yaml:"installations"`
	Credentials   yamlCredentials    `yaml:"credentials"`
	Artifacts     yamlArtifacts      `yaml:"artifacts"`
	Logging       yamlLogging        `yaml:"logging"`
}

type yamlScan struct {
	SeverityThreshold   string `yaml:"severityThreshold"`
	TargetFile          string `yaml:"targetFile"`
	Organisation        string `yaml:"organisation"`
	ProjectName         string `yaml:"projectName"`
	AdditionalArguments string `yaml:"additionalArguments"`
	Installation        string `yaml:"installation"`
	CredentialRef       string `yaml:"credentialRef"`
	MonitorOnBuild      *bool  `yaml:"monitorOnBuild"`
	FailOnIssues        *bool  `yaml:"failOnIssues"`
	FailOnError         *bool  `yaml:"failOnError"`
}

type yamlReport struct {
	StylesheetURL string `yaml:"stylesheetUrl"`
}

type yamlTools struct {
	Root           string `yaml:"root"`
	ScannerBaseURL string `yaml:"scannerBaseUrl"`
	ReportBaseURL  string `yaml:"reportBaseUrl"`
}

type yamlInstallation struct {
	Name                string            `yaml:"name"`
	Version             string            `yaml:"version"`
	Home                string            `yaml:"home"`
	UpdateIntervalHours *int              `yaml:"updateIntervalHours"`
	Platform            string            `yaml:"platform"`
	Nodes               map[string]string `yaml:"nodes"`
	Verify              yamlVerify        `yaml:"verify"`
}

type yamlVerify struct {
	Checksum   bool   `yaml:"checksum"`
	GPGKeyFile string `yaml:"gpgKeyFile"`
}

type yamlCredentials struct {
	File string `yaml:"file"`
}

type yamlArtifacts struct {
	Dir string `yaml:"dir"`
	S3  yamlS3 `yaml:"s3"`
}

type yamlS3 struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Prefix       string `yaml:"prefix"`
	AccessKeyEnv string `yaml:"accessKeyEnv"`
	SecretKeyEnv string `yaml:"secretKeyEnv"`
	UseSSL       *bool  `yaml:"useSSL"`
}

type yamlLogging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StepConfig is the parsed step configuration file
type StepConfig struct {
	Scan          entities.ScanConfig
	StylesheetURL string
	Tools         ToolsConfig
	Installations []entities.InstallationRecord
	Credentials   CredentialsConfig
	Artifacts     ArtifactsConfig
	Logging       LoggingConfig
}

// ToolsConfig locates the tool cache and download mirrors
type ToolsConfig struct {
	Root           string
	ScannerBaseURL string
	ReportBaseURL  string
}

// CredentialsConfig points at an optional credentials file
type CredentialsConfig struct {
	File string
}

// ArtifactsConfig selects where reports are archived
type ArtifactsConfig struct {
	Dir string
	S3  *S3Config
}

// S3Config configures an S3-compatible artifact bucket.
// Keys are read from the named environment variables, never from the file.
type S3Config struct {
	Endpoint     string
	Bucket       string
	Region       string
	Prefix       string
	AccessKeyEnv string
	SecretKeyEnv string
	UseSSL       bool
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// ConfigParser parses scangate.yaml files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a YAML step configuration file
func (p *ConfigParser) ParseFile(filePath string) (*StepConfig, error) {
	//nolint:gosec // G304: filePath is the step configuration chosen by the user
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a StepConfig, applying defaults
func (p *ConfigParser) Parse(data []byte) (*StepConfig, error) {
	var raw yamlStepConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	installations, err := convertInstallations(raw.Installations)
	if err != nil {
		return nil, err
	}

	cfg := &StepConfig{
		Scan:          convertScan(raw.Scan),
		StylesheetURL: strings.TrimSpace(raw.Report.StylesheetURL),
		Tools: ToolsConfig{
			Root:           raw.Tools.Root,
			ScannerBaseURL: raw.Tools.ScannerBaseURL,
			ReportBaseURL:  raw.Tools.ReportBaseURL,
		},
		Installations: installations,
		Credentials:   CredentialsConfig{File: raw.Credentials.File},
		Artifacts:     convertArtifacts(raw.Artifacts),
		Logging: LoggingConfig{
			Level:  raw.Logging.Level,
			Format: raw.Logging.Format,
		},
	}

	if cfg.Scan.InstallationName == "" && len(installations) == 1 {
		cfg.Scan.InstallationName = installations[0].Name
	}

	return cfg, nil
}

func convertScan(ys yamlScan) entities.ScanConfig {
	return entities.ScanConfig{
		SeverityThreshold:   ys.SeverityThreshold,
		TargetFile:          ys.TargetFile,
		Organisation:        ys.Organisation,
		ProjectName:         ys.ProjectName,
		AdditionalArguments: ys.AdditionalArguments,
		InstallationName:    ys.Installation,
		CredentialRef:       ys.CredentialRef,
		MonitorOnBuild:      boolOr(ys.MonitorOnBuild, true),
		FailOnIssues:        boolOr(ys.FailOnIssues, true),
		FailOnError:         boolOr(ys.FailOnError, true),
	}
}

func convertInstallations(raw []yamlInstallation) ([]entities.InstallationRecord, error) {
	seen := make(map[string]bool, len(raw))
	records := make([]entities.InstallationRecord, 0, len(raw))

	for i, yi := range raw {
		name := strings.TrimSpace(yi.Name)
		if name == "" {
			return nil, fmt.Errorf("installation #%d must have a name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate installation %q", name)
		}
		seen[name] = true

		hours := DefaultUpdateIntervalHours
		if yi.UpdateIntervalHours != nil {
			if *yi.UpdateIntervalHours < 0 {
				return nil, fmt.Errorf("installation %q: updateIntervalHours must not be negative", name)
			}
			hours = *yi.UpdateIntervalHours
		}

		version := strings.TrimSpace(yi.Version)
		if version == "" {
			version = "latest"
		}

		records = append(records, entities.InstallationRecord{
			Name:                name,
			Version:             version,
			HomePath:            yi.Home,
			UpdateIntervalHours: hours,
			PlatformOverride:    strings.TrimSpace(yi.Platform),
			NodeHomes:           yi.Nodes,
			VerifyChecksum:      yi.Verify.Checksum,
			GPGKeyFile:          yi.Verify.GPGKeyFile,
		})
	}

	return records, nil
}

func convertArtifacts(ya yamlArtifacts) ArtifactsConfig {
	out := ArtifactsConfig{Dir: ya.Dir}
	if ya.S3.Bucket != "" {
		out.S3 = &S3Config{
			Endpoint:     ya.S3.Endpoint,
			Bucket:       ya.S3.Bucket,
			Region:       ya.S3.Region,
			Prefix:       ya.S3.Prefix,
			AccessKeyEnv: stringOr(ya.S3.AccessKeyEnv, "SCANGATE_S3_ACCESS_KEY"),
			SecretKeyEnv: stringOr(ya.S3.SecretKeyEnv, "SCANGATE_S3_SECRET_KEY"),
			UseSSL:       boolOr(ya.S3.UseSSL, true),
		}
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
