package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

// Pipeline is one team's fixed directory and script layout. The generation
// and merge scripts are opaque collaborators: they read the listing from a
// fixed path in their working directory and write PDFs to fixed output
// directories.
type Pipeline struct {
	Team           string
	UploadDir      string
	UploadFile     string
	ScriptDir      string
	WorkFile       string
	OutputDir      string
	MergedDir      string
	GenerateScript string
	AttachScript   string
	MergeScript    string
	CountScript    string
	RequiredForms  []string
	Printer        *PrinterPipeline
}

// PrinterPipeline is the stationery-formatted variant of generate and merge,
// with its own output directories.
type PrinterPipeline struct {
	OutputDir      string
	MergedDir      string
	GenerateScript string
	MergeScript    string
}

func (p Pipeline) UploadPath() string {
	return filepath.Join(p.UploadDir, p.UploadFile)
}

func (p Pipeline) HasAttach() bool {
	return p.AttachScript != ""
}

// WorkflowUseCase orchestrates the pipeline stages for one team.
type WorkflowUseCase struct {
	Pipe     Pipeline
	runner   StageRunner
	counter  RowCounter
	reader   SheetReader
	store    ArtifactStore
	progress ProgressSink
	runs     RunRepository
	dispatch *DispatchUseCase
}

func NewWorkflowUseCase(pipe Pipeline, runner StageRunner, counter RowCounter, reader SheetReader,
	store ArtifactStore, progress ProgressSink, runs RunRepository, dispatch *DispatchUseCase) *WorkflowUseCase {
	return &WorkflowUseCase{
		Pipe:     pipe,
		runner:   runner,
		counter:  counter,
		reader:   reader,
		store:    store,
		progress: progress,
		runs:     runs,
		dispatch: dispatch,
	}
}

// Ingest counts the rows of the just-uploaded listing and records the upload
// stage. Counting failures degrade to zero rather than failing the upload.
func (uc *WorkflowUseCase) Ingest(ctx context.Context) (int, error) {
	count, err := uc.counter.CountRows(ctx, uc.Pipe.UploadPath())
	if err != nil {
		log.Printf("%s record counting failed: %v", uc.Pipe.Team, err)
		count = 0
	}
	uc.recordRun(ctx, entity.StageUpload, entity.RunCompleted, fmt.Sprintf("%d records", count))
	return count, nil
}

// Generate runs the document-generation script. Prior outputs (both
// individual and merged) are cleared first; a cleanup failure is logged, not
// fatal. The uploaded listing is copied to the fixed path the script expects
// and removed again after the run.
func (uc *WorkflowUseCase) Generate(ctx context.Context, printer bool) (string, string, error) {
	script, outputDir, mergedDir, stage := uc.Pipe.GenerateScript, uc.Pipe.OutputDir, uc.Pipe.MergedDir, entity.StageGenerate
	if printer {
		if uc.Pipe.Printer == nil {
			return "", "", NewDomainError(CodeValidation, "No printer variant for this team")
		}
		script, outputDir, mergedDir, stage = uc.Pipe.Printer.GenerateScript, uc.Pipe.Printer.OutputDir, uc.Pipe.Printer.MergedDir, entity.StageGeneratePrint
	}

	if !uc.store.Exists(filepath.Join(uc.Pipe.ScriptDir, script)) {
		return "", "", NewTechnicalError(CodeUpstream, "Renewal script not found", script)
	}
	if !uc.store.Exists(uc.Pipe.UploadPath()) {
		return "", "", NewDomainError(CodePrecondition, "Please upload Excel file first")
	}

	runID := uc.startRun(ctx, stage)
	uc.progress.Update(uc.Pipe.Team, runID, "running", 10, "Cleaning up old files...", stage)
	for _, dir := range []string{outputDir, mergedDir} {
		if err := uc.store.Clear(dir); err != nil {
			log.Printf("Warning: could not clean up %s: %v", dir, err)
		}
	}

	uc.progress.Update(uc.Pipe.Team, runID, "running", 15, "Preparing Excel file...", stage)
	workPath := filepath.Join(uc.Pipe.ScriptDir, uc.Pipe.WorkFile)
	if err := copyFile(uc.Pipe.UploadPath(), workPath); err != nil {
		uc.failRun(ctx, runID, stage, "Could not stage Excel file")
		return runID, "", NewTechnicalError(CodeUpstream, "Could not stage Excel file", err.Error())
	}
	defer func() {
		if err := os.Remove(workPath); err != nil {
			log.Printf("Cleanup of %s failed: %v", workPath, err)
		}
	}()

	uc.progress.Update(uc.Pipe.Team, runID, "running", 20, "Starting PDF generation...", stage)
	output, err := uc.runScript(ctx, runID, script, stage, 20, "Generating PDFs...")
	if err != nil {
		uc.failRun(ctx, runID, stage, "PDF generation failed")
		return runID, output, err
	}
	uc.completeRun(ctx, runID, stage, "PDFs generated successfully")
	return runID, output, nil
}

// Attach runs the form-attachment script over the generated PDFs in place.
func (uc *WorkflowUseCase) Attach(ctx context.Context) (string, string, error) {
	if !uc.Pipe.HasAttach() {
		return "", "", NewDomainError(CodeValidation, "No attach step for this team")
	}
	if !uc.store.Exists(filepath.Join(uc.Pipe.ScriptDir, uc.Pipe.AttachScript)) {
		return "", "", NewTechnicalError(CodeUpstream, "Attach script not found", uc.Pipe.AttachScript)
	}
	if err := uc.requirePDFs(uc.Pipe.OutputDir, "No PDFs found. Please generate PDFs first."); err != nil {
		return "", "", err
	}
	for _, form := range uc.Pipe.RequiredForms {
		if !uc.store.Exists(filepath.Join(uc.Pipe.ScriptDir, form)) {
			return "", "", NewDomainError(CodePrecondition, "Required form not found: "+form)
		}
	}

	runID := uc.startRun(ctx, entity.StageAttach)
	uc.progress.Update(uc.Pipe.Team, runID, "running", 10, "Attaching forms...", entity.StageAttach)
	output, err := uc.runScript(ctx, runID, uc.Pipe.AttachScript, entity.StageAttach, 10, "Attaching forms in progress...")
	if err != nil {
		uc.failRun(ctx, runID, entity.StageAttach, "Forms attachment failed")
		return runID, output, err
	}
	uc.completeRun(ctx, runID, entity.StageAttach, "Forms attached successfully")
	return runID, output, nil
}

// Merge consolidates the individual PDFs into the merged directory.
func (uc *WorkflowUseCase) Merge(ctx context.Context, printer bool) (string, string, error) {
	script, outputDir, stage := uc.Pipe.MergeScript, uc.Pipe.OutputDir, entity.StageMerge
	if printer {
		if uc.Pipe.Printer == nil {
			return "", "", NewDomainError(CodeValidation, "No printer variant for this team")
		}
		script, outputDir, stage = uc.Pipe.Printer.MergeScript, uc.Pipe.Printer.OutputDir, entity.StageMergePrint
	}
	if !uc.store.Exists(filepath.Join(uc.Pipe.ScriptDir, script)) {
		return "", "", NewTechnicalError(CodeUpstream, "Merge script not found", script)
	}
	count, err := uc.store.CountPDFs(outputDir)
	if err != nil || count == 0 {
		return "", "", NewDomainError(CodePrecondition, "No PDFs found. Please generate PDFs first.")
	}

	runID := uc.startRun(ctx, stage)
	uc.progress.Update(uc.Pipe.Team, runID, "running", 10, fmt.Sprintf("Merging %d PDFs...", count), stage)
	output, err := uc.runScript(ctx, runID, script, stage, 10, "Merging PDFs in progress...")
	if err != nil {
		uc.failRun(ctx, runID, stage, "PDF merge failed")
		return runID, output, err
	}
	uc.completeRun(ctx, runID, stage, "PDFs merged successfully")
	return runID, output, nil
}

// SendEmails parses recipients from the uploaded listing and dispatches one
// e-mail per recipient with the matched artifact attached.
func (uc *WorkflowUseCase) SendEmails(ctx context.Context, team *entity.Team) (DispatchResult, error) {
	if err := uc.requirePDFs(uc.Pipe.MergedDir, "No PDFs found. Please complete the merge process first."); err != nil {
		return DispatchResult{}, err
	}

	records, err := uc.reader.ReadRecords(uc.Pipe.UploadPath())
	if err != nil {
		return DispatchResult{}, NewTechnicalError(CodeUpstream, "Could not read Excel file", err.Error())
	}
	var recipients []entity.Recipient
	if uc.Pipe.Team == "motor" {
		recipients = BuildMotorRecipients(records, time.Now())
	} else {
		recipients = BuildHealthRecipients(records)
	}
	if len(recipients) == 0 {
		return DispatchResult{}, NewDomainError(CodeValidation,
			"No valid email addresses found in Excel file. Please check the \"Email ID\" column.")
	}

	runID := uc.startRun(ctx, entity.StageEmail)
	uc.progress.Update(uc.Pipe.Team, runID, "running", 10, "Preparing emails...", entity.StageEmail)
	uc.progress.Update(uc.Pipe.Team, runID, "running", 50, "Sending emails...", entity.StageEmail)
	result := uc.dispatch.Execute(ctx, team, recipients, uc.Pipe.OutputDir)
	summary := fmt.Sprintf("Emails sent: %d success, %d failed", result.Success, result.Failed)
	uc.progress.Update(uc.Pipe.Team, runID, "completed", 100, summary, entity.StageEmail)
	uc.finishRun(ctx, runID, entity.RunCompleted, summary)
	return result, nil
}

// Status derives the dashboard flags from the latest recorded run per stage.
func (uc *WorkflowUseCase) Status(ctx context.Context) (entity.WorkflowStatus, error) {
	latest, err := uc.runs.LatestByStage(ctx, uc.Pipe.Team)
	if err != nil {
		return entity.WorkflowStatus{}, NewTechnicalError(CodeUpstream, "Failed to check status", err.Error())
	}
	completed := func(stage string) bool {
		run, ok := latest[stage]
		return ok && run.Status == entity.RunCompleted
	}

	status := entity.WorkflowStatus{CurrentStep: 1}
	if completed(entity.StageUpload) {
		status.Upload = true
		status.CurrentStep = 2
	}
	if status.Upload && completed(entity.StageGenerate) {
		status.Generate = true
		status.CurrentStep = 3
	}
	if uc.Pipe.HasAttach() {
		if status.Generate && completed(entity.StageAttach) {
			status.Attach = true
			status.CurrentStep = 4
		}
		if status.Attach && completed(entity.StageMerge) {
			status.Merge = true
			status.CurrentStep = 5
			status.CanSendEmails = true
		}
	} else if status.Generate && completed(entity.StageMerge) {
		status.Merge = true
		status.CurrentStep = 4
		status.CanSendEmails = true
	}
	return status, nil
}

func (uc *WorkflowUseCase) runScript(ctx context.Context, runID, script, stage string, base int, message string) (string, error) {
	lines := 0
	output, err := uc.runner.Run(ctx, script, func(string) {
		lines++
		progress := base + lines*2
		if progress > 90 {
			progress = 90
		}
		uc.progress.Update(uc.Pipe.Team, runID, "running", progress, message, stage)
	})
	return output, err
}

func (uc *WorkflowUseCase) requirePDFs(dir, message string) error {
	count, err := uc.store.CountPDFs(dir)
	if err != nil || count == 0 {
		return NewDomainError(CodePrecondition, message)
	}
	return nil
}

func (uc *WorkflowUseCase) startRun(ctx context.Context, stage string) string {
	runID := uuid.New().String()
	run := &entity.StageRun{
		ID:        runID,
		Team:      uc.Pipe.Team,
		Stage:     stage,
		Status:    entity.RunRunning,
		StartedAt: time.Now(),
	}
	if err := uc.runs.Create(ctx, run); err != nil {
		log.Printf("Could not record %s run: %v", stage, err)
	}
	return runID
}

func (uc *WorkflowUseCase) recordRun(ctx context.Context, stage, status, message string) {
	runID := uc.startRun(ctx, stage)
	uc.finishRun(ctx, runID, status, message)
}

func (uc *WorkflowUseCase) completeRun(ctx context.Context, runID, stage, message string) {
	uc.progress.Update(uc.Pipe.Team, runID, "completed", 100, message, stage)
	uc.finishRun(ctx, runID, entity.RunCompleted, message)
}

func (uc *WorkflowUseCase) failRun(ctx context.Context, runID, stage, message string) {
	uc.progress.Update(uc.Pipe.Team, runID, "failed", 0, message, stage)
	uc.finishRun(ctx, runID, entity.RunFailed, message)
}

func (uc *WorkflowUseCase) finishRun(ctx context.Context, runID, status, message string) {
	if err := uc.runs.Finish(ctx, runID, status, message); err != nil {
		log.Printf("Could not finalize run %s: %v", runID, err)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
