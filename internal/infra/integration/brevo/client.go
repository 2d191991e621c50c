package brevo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nicl-mu/renewal-portal/internal/infra/http/middleware"
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

// Client sends transactional e-mail through Brevo's REST API. It satisfies
// usecase.EmailSender.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Send(ctx context.Context, msg usecase.EmailMessage) error {
	url := fmt.Sprintf("%s/v3/smtp/email", c.baseURL)

	payload := sendEmailRequest{
		Sender:      emailAddress{Name: msg.SenderName, Email: msg.SenderEmail},
		To:          []emailAddress{{Name: msg.ToName, Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = &emailAddress{Email: msg.ReplyTo}
	}
	if msg.Attachment != nil {
		payload.Attachment = []attachmentEntry{{
			Content: base64.StdEncoding.EncodeToString(msg.Attachment.Content),
			Name:    msg.Attachment.Name,
		}}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		middleware.RecordIntegrationError("brevo")
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		middleware.RecordIntegrationError("brevo")
		return fmt.Errorf("brevo send failed (status %d): %s", resp.StatusCode, string(body))
	}

	var response sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err == nil && response.MessageID != "" {
		log.Printf("Brevo accepted message %s for %s", response.MessageID, msg.To)
	}
	return nil
}
