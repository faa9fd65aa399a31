package entities

// ScanResult is the canonical outcome decoded from scanner output.
// Multi-module output is folded into a single value.
type ScanResult struct {
	OK              bool
	Error           string
	UniqueCount     int
	DependencyCount int
}

// RunOutcome classifies a finished pipeline run
type RunOutcome string

// Possible run outcomes
const (
	OutcomeSuccess        RunOutcome = "success"
	OutcomeIssuesFound    RunOutcome = "issues-found"
	OutcomeExecutionError RunOutcome = "execution-error"
)

// RunReport collects everything a pipeline run observed
type RunReport struct {
	RunID            string
	Platform         PlatformProfile
	Installation     InstallationRecord
	TestExitCode     int
	MonitorExitCode  int
	Result           *ScanResult
	IssuesFound      bool
	ExecutionFailed  bool
	ExecutionErrors  []error
	MonitorURL       string
	ReportPath       string
	ReportRegistered bool
	Outcome          RunOutcome
}
