package services

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// Environment keys handed to the scanner process
const (
	TokenEnvVar              = "SNYK_TOKEN"
	IntegrationNameEnvVar    = "SNYK_INTEGRATION_NAME"
	IntegrationVersionEnvVar = "SNYK_INTEGRATION_VERSION"

	IntegrationName = "SCANGATE"
)

const redactedValue = "********"

// Command is a ready-to-launch scanner invocation
type Command struct {
	Args []string
	Env  map[string]string

	secrets []string
}

// String renders the command line with secrets masked; safe for logs
func (c *Command) String() string {
	return RedactSecrets(strings.Join(c.Args, " "), c.secrets...)
}

// CommandBuilder turns a scan configuration into scanner invocations
type CommandBuilder struct {
	integrationVersion string
}

// NewCommandBuilder creates a builder that reports integrationVersion to the scanner
func NewCommandBuilder(integrationVersion string) *CommandBuilder {
	return &CommandBuilder{integrationVersion: integrationVersion}
}

// Build assembles the argument vector and process environment.
//
// Flags are emitted in a fixed order and only for non-blank values:
// --severity-threshold, --file, --org, --project-name, then the free-form
// additional arguments. Every value is expanded against env.
func (b *CommandBuilder) Build(
	executable string,
	kind entities.CommandKind,
	cfg entities.ScanConfig,
	env map[string]string,
	secret string,
) (*Command, error) {
	args, err := BuildArgs(executable, kind, cfg, env)
	if err != nil {
		return nil, err
	}

	return &Command{
		Args:    args,
		Env:     ProcessEnv(env, secret, b.integrationVersion),
		secrets: []string{secret},
	}, nil
}

// BuildArgs assembles only the argument vector
func BuildArgs(executable string, kind entities.CommandKind, cfg entities.ScanConfig, env map[string]string) ([]string, error) {
	args := []string{executable, string(kind)}
	if kind == entities.CommandTest {
		args = append(args, "--json")
	}

	flags := []struct {
		name  string
		value string
	}{
		{"--severity-threshold", cfg.SeverityThreshold},
		{"--file", cfg.TargetFile},
		{"--org", cfg.Organisation},
		{"--project-name", cfg.ProjectName},
	}
	for _, f := range flags {
		if v := strings.TrimSpace(f.value); v != "" {
			args = append(args, f.name+"="+Expand(v, env))
		}
	}

	extra, err := SplitArguments(cfg.AdditionalArguments)
	if err != nil {
		return nil, err
	}
	for _, token := range extra {
		args = append(args, Expand(token, env))
	}

	return args, nil
}

// SplitArguments splits a free-form argument string on whitespace, honoring
// single and double quotes. Empty tokens are dropped.
func SplitArguments(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	tokens, err := parser.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("invalid additional arguments %q: %w", line, err)
	}

	out := tokens[:0]
	for _, t := range tokens {
		if t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// ProcessEnv overlays the run environment with the authentication secret and
// integration identification. env is not modified.
func ProcessEnv(env map[string]string, secret, integrationVersion string) map[string]string {
	out := make(map[string]string, len(env)+3)
	for k, v := range env {
		out[k] = v
	}
	out[TokenEnvVar] = secret
	out[IntegrationNameEnvVar] = IntegrationName
	out[IntegrationVersionEnvVar] = integrationVersion
	return out
}

// RedactSecrets masks every occurrence of the given secrets in s
func RedactSecrets(s string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, redactedValue)
	}
	return s
}
