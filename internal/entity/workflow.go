package entity

import "time"

// Pipeline stages, in required order. Attach only exists for health; the
// printer stages only exist for motor.
const (
	StageUpload        = "upload"
	StageGenerate      = "generate"
	StageAttach        = "attach"
	StageMerge         = "merge"
	StageEmail         = "email"
	StageGeneratePrint = "generate-printer"
	StageMergePrint    = "merge-printer"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// StageRun is one recorded invocation of a pipeline stage. Rows are the
// source of truth for workflow status; directories are only consulted for
// the file listings themselves.
type StageRun struct {
	ID         string     `json:"id"`
	Team       string     `json:"team"`
	Stage      string     `json:"stage"`
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Artifact is a generated document on disk. Identity is the filename.
type Artifact struct {
	Name        string    `json:"name"`
	DownloadURL string    `json:"downloadUrl"`
	SizeKB      int64     `json:"size"`
	Modified    time.Time `json:"modified"`
}

// Progress is the polled snapshot of the stage currently running for a team.
type Progress struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Step     string `json:"step,omitempty"`
	RunID    string `json:"runId,omitempty"`
}

// WorkflowStatus reports which stages have completed and what the dashboard
// should show as the current step.
type WorkflowStatus struct {
	Upload        bool `json:"upload"`
	Generate      bool `json:"generate"`
	Attach        bool `json:"attach,omitempty"`
	Merge         bool `json:"merge"`
	CanSendEmails bool `json:"canSendEmails"`
	CurrentStep   int  `json:"currentStep"`
}
