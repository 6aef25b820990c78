package scan

import "time"

// Status of a scan job. Jobs move Queued → Running → Completed|Failed;
// terminal states are immutable.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Params are the resolved scan parameters, captured at job creation and
// never mutated thereafter.
type Params struct {
	Regions    []string `json:"regions"`
	Services   []string `json:"services"`
	Frameworks []string `json:"frameworks,omitempty"`
}

// Credentials is what the external scanner process authenticates with:
// either a named profile from the shared AWS config, or temporary role keys.
type Credentials struct {
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// HasKeys reports whether temporary keys are present.
func (c Credentials) HasKeys() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Job is a snapshot of one scan execution.
type Job struct {
	ID          string     `json:"job_id"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	CurrentTask string     `json:"current_task"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ReportPath  string     `json:"report_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	Params      Params     `json:"params"`
}
