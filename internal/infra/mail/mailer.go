package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	texttemplate "text/template"

	"github.com/nicl-mu/renewal-portal/internal/entity"
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Mailer builds the system's e-mails from templates and hands them to the
// configured transport. It satisfies usecase.RenewalMailer.
type Mailer struct {
	sender usecase.EmailSender

	html *template.Template
	text *texttemplate.Template
}

func NewMailer(sender usecase.EmailSender) (*Mailer, error) {
	html, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing text templates: %w", err)
	}
	return &Mailer{sender: sender, html: html, text: text}, nil
}

type templateData struct {
	TeamLabel string
	TeamName  string
	Color     string
	IsMotor   bool

	Code string

	Name         string
	PolicyNo     string
	ExpiryDate   string
	RenewalStart string
	RenewalEnd   string
	Premium      string
}

func baseData(team *entity.Team) templateData {
	if team.ID == "motor" {
		return templateData{TeamLabel: "Motor", TeamName: "Motor Insurance", Color: "#1e40af", IsMotor: true}
	}
	return templateData{TeamLabel: "Health", TeamName: "Healthcare Insurance", Color: "#059669"}
}

func (m *Mailer) SendOTP(ctx context.Context, team *entity.Team, email, code string) error {
	data := baseData(team)
	data.Code = code

	html, text, err := m.render("otp", data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, usecase.EmailMessage{
		SenderName:  team.SenderName,
		SenderEmail: team.SenderEmail,
		ReplyTo:     team.ReplyTo,
		To:          email,
		Subject:     "NICL Renewal System - OTP Verification",
		HTML:        html,
		Text:        text,
	})
}

func (m *Mailer) SendRenewalNotice(ctx context.Context, team *entity.Team, r entity.Recipient, attachment usecase.EmailAttachment) error {
	data := baseData(team)
	data.Name = r.Name
	if data.Name == "" {
		data.Name = "Valued Customer"
	}
	data.PolicyNo = r.PolicyNo
	data.ExpiryDate = r.ExpiryDate
	data.RenewalStart = r.RenewalStart
	data.RenewalEnd = r.RenewalEnd
	data.Premium = formatCurrency(r.Premium)

	html, text, err := m.render("renewal", data)
	if err != nil {
		return err
	}

	policy := r.PolicyNo
	if policy == "" {
		policy = "N/A"
	}
	toName := r.Name
	if toName == "" {
		toName = r.Email
	}
	return m.sender.Send(ctx, usecase.EmailMessage{
		SenderName:  team.SenderName,
		SenderEmail: team.SenderEmail,
		ReplyTo:     team.ReplyTo,
		To:          r.Email,
		ToName:      toName,
		Subject:     fmt.Sprintf("%s - Insurance Renewal Notice - Policy %s", team.SenderName, policy),
		HTML:        html,
		Text:        text,
		Attachment:  &attachment,
	})
}

func (m *Mailer) render(name string, data templateData) (string, string, error) {
	var html bytes.Buffer
	if err := m.html.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return "", "", fmt.Errorf("rendering %s html: %w", name, err)
	}
	var text bytes.Buffer
	if err := m.text.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return "", "", fmt.Errorf("rendering %s text: %w", name, err)
	}
	return html.String(), text.String(), nil
}

// formatCurrency rounds the premium to whole rupees and adds thousand
// separators. Unparseable input passes through unchanged.
func formatCurrency(amount string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return amount
	}
	rounded := int64(math.Round(value))

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}
	digits := strconv.FormatInt(rounded, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}
