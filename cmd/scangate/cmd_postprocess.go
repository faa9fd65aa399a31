package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/external-adapters/htmlreport"
)

type postprocessOptions struct {
	input         string
	output        string
	stylesheetURL string
	monitorURL    string
}

func newPostprocessCmd(global *globalOptions) *cobra.Command {
	opts := &postprocessOptions{}

	cmd := &cobra.Command{
		Use:   "postprocess",
		Short: "Restyle a rendered HTML report",
		Long: `Replace the inline styles of a rendered report with a stylesheet link and,
when a monitor URL is given, add a link to the online results at the top of
the page. Running it again on its own output changes nothing.`,
		Example: `  scangate postprocess --in snyk_report.html --out report.html \
    --stylesheet-url https://ci.example.com/static/report.css`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPostprocess(global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input, "in", "", "Rendered HTML report")
	f.StringVar(&opts.output, "out", "", "Output file (default: overwrite --in)")
	f.StringVar(&opts.stylesheetURL, "stylesheet-url", "", "Stylesheet to link")
	f.StringVar(&opts.monitorURL, "monitor-url", "", "Online results URL for the banner")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("stylesheet-url")

	return cmd
}

func runPostprocess(global *globalOptions, opts *postprocessOptions) error {
	//nolint:gosec // G304: input is the report path chosen by the user
	raw, err := os.ReadFile(opts.input)
	if err != nil {
		return &entities.ConfigurationError{Reason: "report input", Err: err}
	}

	out, err := htmlreport.PostProcess(raw, opts.stylesheetURL, opts.monitorURL)
	if err != nil {
		return &entities.ExecutionError{Phase: "report post-processing", Err: err}
	}

	dest := opts.output
	if dest == "" {
		dest = opts.input
	}
	if err := os.WriteFile(dest, out, 0600); err != nil {
		return &entities.ExecutionError{Phase: "report post-processing", Detail: "cannot write report", Err: err}
	}

	_, _ = fmt.Fprintf(global.stdout, "Report written to %s\n", dest)
	return nil
}
