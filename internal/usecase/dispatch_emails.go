package usecase

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

// DispatchResult is the aggregate tally of one send-emails batch. The batch
// itself only fails when its precondition (artifacts present) is unmet;
// individual failures are recorded here.
type DispatchResult struct {
	Success int             `json:"success"`
	Failed  int             `json:"failed"`
	Errors  []RecipientFail `json:"errors"`
}

type RecipientFail struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// DispatchUseCase matches each recipient to a generated artifact and sends
// it as an e-mail attachment.
type DispatchUseCase struct {
	mailer RenewalMailer
}

func NewDispatchUseCase(mailer RenewalMailer) *DispatchUseCase {
	return &DispatchUseCase{mailer: mailer}
}

// Execute sends one e-mail per recipient. A missing artifact or a provider
// rejection is a per-recipient failure and never aborts the batch.
func (uc *DispatchUseCase) Execute(ctx context.Context, team *entity.Team, recipients []entity.Recipient, artifactDir string) DispatchResult {
	result := DispatchResult{Errors: []RecipientFail{}}
	pdfs := listPDFNames(artifactDir)

	log.Printf("Starting %s email batch for %d recipients", team.ID, len(recipients))
	for _, recipient := range recipients {
		name := resolveArtifact(recipient, pdfs)
		if name == "" {
			result.Failed++
			result.Errors = append(result.Errors, RecipientFail{Email: recipient.Email, Error: "PDF file not found"})
			continue
		}

		content, err := os.ReadFile(filepath.Join(artifactDir, name))
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RecipientFail{Email: recipient.Email, Error: err.Error()})
			continue
		}

		attachment := EmailAttachment{Name: name, Content: content}
		if err := uc.mailer.SendRenewalNotice(ctx, team, recipient, attachment); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RecipientFail{Email: recipient.Email, Error: err.Error()})
			log.Printf("Failed to send to %s: %v", recipient.Email, err)
			continue
		}
		result.Success++
	}
	log.Printf("Email batch done: %d sent, %d failed", result.Success, result.Failed)
	return result
}

var fuzzyStrip = regexp.MustCompile(`[^a-z0-9]+`)

// resolveArtifact tries the precomputed expected filename first, then falls
// back to substring search on policy number, display name, and the e-mail
// local part. The fuzzy paths can match the wrong file when recipients share
// a substring; that is a known gap of the matching rule.
func resolveArtifact(r entity.Recipient, pdfs []string) string {
	if r.ExpectedFilename != "" {
		for _, f := range pdfs {
			if f == r.ExpectedFilename {
				return f
			}
		}
	}
	terms := []string{r.PolicyNo, r.Name, strings.SplitN(r.Email, "@", 2)[0]}
	for _, term := range terms {
		if term == "" {
			continue
		}
		needle := fuzzyStrip.ReplaceAllString(strings.ToLower(term), "_")
		needle = strings.Trim(needle, "_")
		if needle == "" {
			continue
		}
		for _, f := range pdfs {
			if strings.Contains(strings.ToLower(f), needle) {
				return f
			}
		}
	}
	return ""
}

func listPDFNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			pdfs = append(pdfs, e.Name())
		}
	}
	return pdfs
}
