package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

// Registry holds the team roster loaded from a JSON file. It satisfies
// usecase.TeamRegistry and supports reloading in place (wired to SIGHUP),
// so roster edits do not require a restart.
type Registry struct {
	path string

	mu    sync.RWMutex
	teams map[string]*entity.Team
}

// teamFile is the on-disk shape of one roster entry.
type teamFile struct {
	Teams []struct {
		ID               string   `json:"id"`
		Name             string   `json:"name"`
		AuthorizedEmails []string `json:"authorizedEmails"`
		SuperPassword    string   `json:"superPassword"`
		SenderName       string   `json:"senderName"`
		SenderEmail      string   `json:"senderEmail"`
		ReplyTo          string   `json:"replyTo"`
	} `json:"teams"`
}

func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the roster file and swaps the table atomically. Per-team
// password overrides come from <TEAM>_SUPER_PASSWORD environment variables.
func (r *Registry) Reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading teams file %s: %w", r.path, err)
	}
	var file teamFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing teams file %s: %w", r.path, err)
	}
	if len(file.Teams) == 0 {
		return fmt.Errorf("teams file %s lists no teams", r.path)
	}

	teams := make(map[string]*entity.Team, len(file.Teams))
	for _, t := range file.Teams {
		password := t.SuperPassword
		if override := os.Getenv(strings.ToUpper(t.ID) + "_SUPER_PASSWORD"); override != "" {
			password = override
		}
		emails := make([]string, len(t.AuthorizedEmails))
		for i, e := range t.AuthorizedEmails {
			emails[i] = strings.ToLower(strings.TrimSpace(e))
		}
		teams[t.ID] = &entity.Team{
			ID:               t.ID,
			Name:             t.Name,
			AuthorizedEmails: emails,
			SuperPassword:    password,
			SenderName:       t.SenderName,
			SenderEmail:      t.SenderEmail,
			ReplyTo:          t.ReplyTo,
		}
	}

	r.mu.Lock()
	r.teams = teams
	r.mu.Unlock()
	return nil
}

// TeamFor returns the team whose roster lists the e-mail, or nil.
func (r *Registry) TeamFor(email string) *entity.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, team := range r.teams {
		if team.Authorizes(needle) {
			return team
		}
	}
	return nil
}

func (r *Registry) Team(id string) *entity.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.teams[id]
}

func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.teams))
	for id := range r.teams {
		ids = append(ids, id)
	}
	return ids
}
