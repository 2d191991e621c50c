package usecase

import (
	"context"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

// EmailMessage is what the dispatcher hands to whichever transport is
// configured (Brevo API or plain SMTP).
type EmailMessage struct {
	SenderName  string
	SenderEmail string
	ReplyTo     string
	To          string
	ToName      string
	Subject     string
	HTML        string
	Text        string
	Attachment  *EmailAttachment
}

type EmailAttachment struct {
	Name    string
	Content []byte
}

// EmailSender sends a single transactional e-mail.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// TeamRegistry resolves identities to teams. Implemented by the config
// package so the list can be reloaded without a restart.
type TeamRegistry interface {
	TeamFor(email string) *entity.Team
	Team(id string) *entity.Team
}

// RowCounter counts data rows in an uploaded listing. The primary
// implementation parses in-process and falls back to an external script.
type RowCounter interface {
	CountRows(ctx context.Context, path string) (int, error)
}

// SheetReader reads the listing as header-keyed records for recipient
// building.
type SheetReader interface {
	ReadRecords(path string) ([]map[string]string, error)
}

// StageRunner invokes one external document-processing script, streaming
// output lines to onLine. It returns the combined stdout on success, or an
// error carrying the captured output on failure.
type StageRunner interface {
	Run(ctx context.Context, script string, onLine func(line string)) (string, error)
}

// ProgressSink receives stage progress updates keyed by team and run.
type ProgressSink interface {
	Update(team, runID, status string, progress int, message, step string)
}

// RunRepository persists stage runs; the workflow-status endpoint consults
// these rows instead of probing directories.
type RunRepository interface {
	Create(ctx context.Context, run *entity.StageRun) error
	Finish(ctx context.Context, id, status, message string) error
	LatestByStage(ctx context.Context, team string) (map[string]*entity.StageRun, error)
}

// ArtifactStore is the filesystem bookkeeping around stage outputs.
type ArtifactStore interface {
	List(dir, urlPrefix string) ([]entity.Artifact, error)
	CountPDFs(dir string) (int, error)
	Clear(dir string) error
	Exists(path string) bool
	Read(path string) ([]byte, error)
}
