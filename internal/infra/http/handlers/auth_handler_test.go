package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicl-mu/renewal-portal/internal/entity"
	"github.com/nicl-mu/renewal-portal/internal/infra/http/middleware"
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

type stubRegistry struct {
	teams map[string]*entity.Team
}

func (s *stubRegistry) TeamFor(email string) *entity.Team {
	for _, team := range s.teams {
		if team.Authorizes(email) {
			return team
		}
	}
	return nil
}

func (s *stubRegistry) Team(id string) *entity.Team { return s.teams[id] }

func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := &stubRegistry{teams: map[string]*entity.Team{
		"motor":  {ID: "motor", Name: "Motor", AuthorizedEmails: []string{"alice@nicl.mu"}, SuperPassword: "s3cret"},
		"health": {ID: "health", Name: "Health", AuthorizedEmails: []string{"carol@nicl.mu"}, SuperPassword: "other"},
	}}

	sessions := middleware.NewSessionStore(false)
	authUC := usecase.NewAuthUseCase(registry, nil, true)
	authHandler := NewAuthHandler(authUC, sessions, true)

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/send-otp", authHandler.SendOTP)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/password-login", authHandler.PasswordLogin)
		r.Get("/session", authHandler.Session)
		r.Post("/logout", authHandler.Logout)
	})
	r.Route("/api/motor", func(r chi.Router) {
		r.Use(sessions.RequireTeam("motor", "Motor"))
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"team": middleware.SessionFrom(r.Context()).Team})
		})
	})
	r.Route("/api/health", func(r chi.Router) {
		r.Use(sessions.RequireTeam("health", "Health"))
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"team": "health"})
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func clientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func TestSendOTPUnauthorizedEmail(t *testing.T) {
	server := newAuthTestServer(t)

	resp := postJSON(t, http.DefaultClient, server.URL+"/api/auth/send-otp", `{"email":"stranger@example.com"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Email not authorized for any team", body["error"])
}

func TestOTPLoginFlow(t *testing.T) {
	server := newAuthTestServer(t)
	client := clientWithJar(t)

	// Dev mode echoes the code back
	resp := postJSON(t, client, server.URL+"/api/auth/send-otp", `{"email":"alice@nicl.mu"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sent := decodeBody(t, resp)
	assert.Equal(t, "motor", sent["team"])
	code, ok := sent["otp"].(string)
	require.True(t, ok)

	resp = postJSON(t, client, server.URL+"/api/auth/verify-otp",
		`{"email":"alice@nicl.mu","otp":"`+code+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	verified := decodeBody(t, resp)
	assert.Equal(t, true, verified["success"])
	assert.Equal(t, "motor", verified["team"])

	// Session cookie now grants the team routes
	resp, err := client.Get(server.URL + "/api/motor/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "motor", decodeBody(t, resp)["team"])

	// But not the other team's
	resp, err = client.Get(server.URL + "/api/health/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Health team access required", decodeBody(t, resp)["error"])

	// Session endpoint reflects the login
	resp, err = client.Get(server.URL + "/api/auth/session")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeBody(t, resp)
	assert.Equal(t, "alice@nicl.mu", session["user"])
	assert.Equal(t, "motor", session["team"])

	// Logout destroys it
	resp = postJSON(t, client, server.URL+"/api/auth/logout", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Get(server.URL + "/api/auth/session")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestVerifyOTPRejectsBadCode(t *testing.T) {
	server := newAuthTestServer(t)
	client := clientWithJar(t)

	resp := postJSON(t, client, server.URL+"/api/auth/send-otp", `{"email":"alice@nicl.mu"}`)
	code := decodeBody(t, resp)["otp"].(string)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	resp = postJSON(t, client, server.URL+"/api/auth/verify-otp",
		`{"email":"alice@nicl.mu","otp":"`+wrong+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid OTP", decodeBody(t, resp)["error"])
}

func TestPasswordLoginFlow(t *testing.T) {
	server := newAuthTestServer(t)
	client := clientWithJar(t)

	resp := postJSON(t, client, server.URL+"/api/auth/password-login",
		`{"email":"carol@nicl.mu","password":"other"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "health", decodeBody(t, resp)["team"])

	resp, err := client.Get(server.URL + "/api/health/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/api/auth/password-login",
		`{"email":"carol@nicl.mu","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTeamRoutesRequireSession(t *testing.T) {
	server := newAuthTestServer(t)

	resp, err := http.Get(server.URL + "/api/motor/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required", decodeBody(t, resp)["error"])
}
