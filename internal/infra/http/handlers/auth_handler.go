package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nicl-mu/renewal-portal/internal/infra/http/middleware"
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

type AuthHandler struct {
	Auth     *usecase.AuthUseCase
	Sessions *middleware.SessionStore
	DevMode  bool
}

func NewAuthHandler(auth *usecase.AuthUseCase, sessions *middleware.SessionStore, devMode bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, DevMode: devMode}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type passwordLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendOTP (POST /api/auth/send-otp) issues a login code for an authorized
// e-mail address. In development the code is echoed in the response.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var input sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	team, code, err := h.Auth.IssueCode(r.Context(), input.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	response := map[string]any{
		"success": true,
		"message": "OTP sent successfully",
		"team":    team.ID,
	}
	if h.DevMode && code != "" {
		response["otp"] = code
	}
	writeJSON(w, http.StatusOK, response)
}

// VerifyOTP (POST /api/auth/verify-otp) consumes the code and establishes a
// session on success.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" || input.OTP == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	team, err := h.Auth.VerifyCode(input.Email, input.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Sessions.Establish(w, input.Email, team.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"team":    team.ID,
		"user":    input.Email,
	})
}

// PasswordLogin (POST /api/auth/password-login) bypasses code issuance with
// the team password.
func (h *AuthHandler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var input passwordLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" || input.Password == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	team, err := h.Auth.PasswordLogin(input.Email, input.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Sessions.Establish(w, input.Email, team.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"team":    team.ID,
		"user":    input.Email,
	})
}

// Session (GET /api/auth/session) reports the current session, or 401.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := h.Sessions.Get(r)
	if session == nil {
		writeErrorMessage(w, http.StatusUnauthorized, "No active session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Logout (POST /api/auth/logout) destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Destroy(w, r)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}
