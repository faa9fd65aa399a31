package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// Process exit codes
const (
	exitSuccess   = 0
	exitIssues    = 1
	exitExecution = 2
	exitMisconfig = 3
)

const (
	defaultConfig   = "scangate.yaml"
	runIDEnvVar     = "SCANGATE_RUN_ID"
	toolsRootEnvVar = "SCANGATE_TOOLS_ROOT"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// globalOptions are shared by every subcommand
type globalOptions struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string
	stdout     io.Writer
	stderr     io.Writer
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitCodeFor(err)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "scangate",
		Short: "scangate - dependency vulnerability gate for CI builds",
		Long: `scangate provisions the Snyk CLI and its HTML report renderer, runs a
dependency scan of the build workspace, optionally monitors the project,
publishes a styled HTML report and fails the build according to policy.

Exit codes:
  0  success
  1  vulnerabilities found (fail-on-issues)
  2  scanner or report execution error (fail-on-error)
  3  configuration or provisioning error`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", defaultConfig, "Step configuration file")
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, "Additional .env files merged into the run environment")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format (console, json)")

	root.AddCommand(
		newScanCmd(opts),
		newInstallCmd(opts),
		newPostprocessCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// exitCodeFor maps the error taxonomy onto process exit codes
func exitCodeFor(err error) int {
	var (
		issues  *entities.IssuesFoundError
		execErr *entities.ExecutionError
		config  *entities.ConfigurationError
		provErr *entities.ProvisioningError
	)

	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &issues):
		return exitIssues
	case errors.As(err, &provErr), errors.As(err, &config):
		return exitMisconfig
	case errors.As(err, &execErr):
		return exitExecution
	default:
		return exitMisconfig
	}
}
