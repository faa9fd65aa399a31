package entities

// CommandKind is the scanner sub-command to run
type CommandKind string

// Scanner sub-commands
const (
	CommandTest    CommandKind = "test"
	CommandMonitor CommandKind = "monitor"
)

// ScanConfig is the build-step definition. String fields may reference
// run environment variables as $NAME or ${NAME}.
type ScanConfig struct {
	SeverityThreshold   string
	TargetFile          string
	Organisation        string
	ProjectName         string
	AdditionalArguments string
	InstallationName    string
	CredentialRef       string
	MonitorOnBuild      bool
	FailOnIssues        bool
	FailOnError         bool
}
