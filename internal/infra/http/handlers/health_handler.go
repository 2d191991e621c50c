package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type HealthHandler struct {
	DB         *sql.DB
	ScriptsDir string
	BrevoSet   bool
	StartTime  time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db *sql.DB, scriptsDir string, brevoSet bool) *HealthHandler {
	return &HealthHandler{
		DB:         db,
		ScriptsDir: scriptsDir,
		BrevoSet:   brevoSet,
		StartTime:  time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.DB != nil {
		if err := h.DB.Ping(); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.BrevoSet {
		deps["brevo"] = "configured"
	} else {
		deps["brevo"] = "not configured"
	}

	if info, err := os.Stat(h.ScriptsDir); err != nil || !info.IsDir() {
		deps["scripts"] = "unhealthy: directory missing"
	} else {
		deps["scripts"] = "healthy"
	}

	status := "healthy"
	code := http.StatusOK
	for _, state := range deps {
		if strings.HasPrefix(state, "unhealthy") {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
