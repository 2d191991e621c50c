package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

const codeTTL = 10 * time.Minute

// RenewalMailer builds and sends the system's e-mails. Implemented by
// infra/mail on top of whichever transport is configured.
type RenewalMailer interface {
	SendOTP(ctx context.Context, team *entity.Team, email, code string) error
	SendRenewalNotice(ctx context.Context, team *entity.Team, r entity.Recipient, attachment EmailAttachment) error
}

// AuthUseCase issues and verifies one-time login codes and checks team
// passwords. Pending codes live in memory; one per identity, reissue
// overwrites.
type AuthUseCase struct {
	registry TeamRegistry
	mailer   RenewalMailer
	devMode  bool

	// Now is swappable for expiry tests.
	Now func() time.Time

	mu      sync.Mutex
	pending map[string]*entity.PendingCode
}

func NewAuthUseCase(registry TeamRegistry, mailer RenewalMailer, devMode bool) *AuthUseCase {
	return &AuthUseCase{
		registry: registry,
		mailer:   mailer,
		devMode:  devMode,
		Now:      time.Now,
		pending:  make(map[string]*entity.PendingCode),
	}
}

// IssueCode generates a 6-digit code for an authorized identity and attempts
// delivery. Delivery is best-effort: a provider failure is logged, not
// returned. The code is echoed back only in development mode.
func (uc *AuthUseCase) IssueCode(ctx context.Context, email string) (*entity.Team, string, error) {
	team := uc.registry.TeamFor(email)
	if team == nil {
		return nil, "", NewDomainError(CodeUnauthorized, "Email not authorized for any team")
	}

	code, err := generateCode()
	if err != nil {
		return nil, "", NewTechnicalError(CodeUpstream, "Failed to generate OTP", err.Error())
	}

	uc.mu.Lock()
	uc.pending[email] = &entity.PendingCode{
		Email:     email,
		Code:      code,
		Team:      team.ID,
		ExpiresAt: uc.Now().Add(codeTTL),
	}
	uc.mu.Unlock()

	if uc.mailer != nil {
		if err := uc.mailer.SendOTP(ctx, team, email, code); err != nil {
			log.Printf("OTP delivery to %s failed: %v", email, err)
		}
	}
	if uc.devMode {
		log.Printf("OTP for %s (%s team): %s", email, team.ID, code)
		return team, code, nil
	}
	return team, "", nil
}

// VerifyCode consumes a pending code. Success deletes the entry, so a code
// verifies at most once.
func (uc *AuthUseCase) VerifyCode(email, code string) (*entity.Team, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	stored, ok := uc.pending[email]
	if !ok {
		return nil, NewDomainError(CodeNotFound, "No OTP found for this email")
	}
	if stored.Expired(uc.Now()) {
		delete(uc.pending, email)
		return nil, NewDomainError(CodeExpired, "OTP has expired")
	}
	if stored.Code != code {
		return nil, NewDomainError(CodeMismatch, "Invalid OTP")
	}
	delete(uc.pending, email)
	team := uc.registry.Team(stored.Team)
	if team == nil {
		// The roster can be reloaded between issue and verify.
		return nil, NewDomainError(CodeUnauthorized, "Email not authorized for any team")
	}
	return team, nil
}

// PasswordLogin checks the team password, bypassing code issuance.
func (uc *AuthUseCase) PasswordLogin(email, password string) (*entity.Team, error) {
	team := uc.registry.TeamFor(email)
	if team == nil {
		return nil, NewDomainError(CodeUnauthorized, "Email not authorized for any team")
	}
	if password != team.SuperPassword {
		return nil, NewDomainError(CodeMismatch, "Invalid password")
	}
	return team, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
