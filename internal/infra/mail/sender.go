package mail

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

// SMTPSender delivers e-mail over plain SMTP. Used when no Brevo API key is
// configured; satisfies usecase.EmailSender.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
}

func NewSMTPSender(host string, port int, user, password string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

func (s *SMTPSender) Send(_ context.Context, msg usecase.EmailMessage) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.SenderEmail, msg.SenderName)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	if msg.Attachment != nil {
		content := msg.Attachment.Content
		m.Attach(msg.Attachment.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}
