package services

import (
	"github.com/ochairo/scangate/internal/domain/entities"
)

// Scanner exit codes
const (
	ExitClean       = 0
	ExitIssuesFound = 1
)

// ClassifyTest interprets the test phase. Issues and execution errors are
// independent: a run can report both.
// Pure business logic - no I/O
func ClassifyTest(exitCode int, result *entities.ScanResult) (issuesFound bool, execErr *entities.ExecutionError) {
	if exitCode == ExitIssuesFound || (result != nil && !result.OK) {
		issuesFound = true
	}

	switch {
	case exitCode > ExitIssuesFound:
		execErr = &entities.ExecutionError{Phase: "scanner test", ExitCode: exitCode}
		if result != nil {
			execErr.Detail = result.Error
		}
	case exitCode < ExitClean:
		execErr = &entities.ExecutionError{Phase: "scanner test", ExitCode: exitCode, Detail: "process did not exit normally"}
	case result != nil && result.Error != "":
		execErr = &entities.ExecutionError{Phase: "scanner test", ExitCode: exitCode, Detail: result.Error}
	}

	return issuesFound, execErr
}

// DecideVerdict maps the run observations onto the build result.
// The issues check runs first; the error check only when it did not fire.
// Pure business logic - no I/O
func DecideVerdict(report *entities.RunReport, cfg entities.ScanConfig) error {
	switch {
	case cfg.FailOnIssues && report.IssuesFound:
		report.Outcome = entities.OutcomeIssuesFound
		return &entities.IssuesFoundError{ExitCode: report.TestExitCode, Result: report.Result}
	case cfg.FailOnError && report.ExecutionFailed:
		report.Outcome = entities.OutcomeExecutionError
		if len(report.ExecutionErrors) > 0 {
			return report.ExecutionErrors[0]
		}
		return &entities.ExecutionError{Phase: "scan", ExitCode: report.TestExitCode}
	}

	switch {
	case report.IssuesFound:
		report.Outcome = entities.OutcomeIssuesFound
	case report.ExecutionFailed:
		report.Outcome = entities.OutcomeExecutionError
	default:
		report.Outcome = entities.OutcomeSuccess
	}
	return nil
}
