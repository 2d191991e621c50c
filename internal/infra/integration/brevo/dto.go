package brevo

// sendEmailRequest is Brevo's POST /v3/smtp/email payload.
type sendEmailRequest struct {
	Sender      emailAddress      `json:"sender"`
	To          []emailAddress    `json:"to"`
	ReplyTo     *emailAddress     `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	TextContent string            `json:"textContent,omitempty"`
	Attachment  []attachmentEntry `json:"attachment,omitempty"`
}

type emailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// attachmentEntry carries the file inline, base64 encoded.
type attachmentEntry struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

type sendEmailResponse struct {
	MessageID string `json:"messageId"`
}
