package entity

import "time"

// Team is a static workflow team loaded at startup. The authorized e-mail
// list and the shared secret come from configuration, never from code.
type Team struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	AuthorizedEmails []string `json:"authorized_emails"`
	SuperPassword    string   `json:"-"`
	SenderName       string   `json:"sender_name"`
	SenderEmail      string   `json:"sender_email"`
	ReplyTo          string   `json:"reply_to"`
}

func (t *Team) Authorizes(email string) bool {
	for _, e := range t.AuthorizedEmails {
		if e == email {
			return true
		}
	}
	return false
}

// Session binds an authenticated identity to its team for the lifetime of a
// browser session.
type Session struct {
	Token     string    `json:"-"`
	User      string    `json:"user"`
	Team      string    `json:"team"`
	LoginTime time.Time `json:"loginTime"`
	ExpiresAt time.Time `json:"-"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// PendingCode is a one-time login code awaiting verification. At most one
// live entry exists per identity; a reissue overwrites the previous one.
type PendingCode struct {
	Email     string
	Code      string
	Team      string
	ExpiresAt time.Time
}

func (p *PendingCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
