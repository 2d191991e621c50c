package brevo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

func TestSendBuildsBrevoPayload(t *testing.T) {
	var got sendEmailRequest
	var apiKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		apiKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(sendEmailResponse{MessageID: "msg-1"})
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	err := client.Send(context.Background(), usecase.EmailMessage{
		SenderName:  "NICL Motor",
		SenderEmail: "noreply@niclmauritius.site",
		ReplyTo:     "motor@niclmauritius.site",
		To:          "john@example.com",
		ToName:      "Mr John Smith",
		Subject:     "Renewal Notice",
		HTML:        "<p>hello</p>",
		Text:        "hello",
		Attachment:  &usecase.EmailAttachment{Name: "notice.pdf", Content: []byte("%PDF")},
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "NICL Motor", got.Sender.Name)
	require.Len(t, got.To, 1)
	assert.Equal(t, "john@example.com", got.To[0].Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "motor@niclmauritius.site", got.ReplyTo.Email)
	require.Len(t, got.Attachment, 1)
	assert.Equal(t, "notice.pdf", got.Attachment[0].Name)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), got.Attachment[0].Content)
}

func TestSendOmitsEmptyOptionalFields(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient("k", server.URL)
	err := client.Send(context.Background(), usecase.EmailMessage{
		SenderEmail: "a@b.c", To: "d@e.f", Subject: "s", HTML: "<p></p>",
	})
	require.NoError(t, err)

	_, hasReplyTo := raw["replyTo"]
	assert.False(t, hasReplyTo)
	_, hasAttachment := raw["attachment"]
	assert.False(t, hasAttachment)
}

func TestSendSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Key not found"}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", server.URL)
	err := client.Send(context.Background(), usecase.EmailMessage{To: "x@y.z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Key not found")
}
