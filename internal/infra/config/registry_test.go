package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterJSON = `{
  "teams": [
    {
      "id": "motor",
      "name": "Motor",
      "authorizedEmails": ["Alice@NICL.mu", "bob@nicl.mu"],
      "superPassword": "from-file",
      "senderName": "NICL Motor",
      "senderEmail": "noreply@niclmauritius.site",
      "replyTo": "motor@niclmauritius.site"
    },
    {
      "id": "health",
      "name": "Health",
      "authorizedEmails": ["carol@nicl.mu"],
      "superPassword": "health-pass",
      "senderName": "NICL Health",
      "senderEmail": "noreply@niclmauritius.site",
      "replyTo": "health@niclmauritius.site"
    }
  ]
}`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teams.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistryResolvesTeams(t *testing.T) {
	registry, err := NewRegistry(writeRoster(t, rosterJSON))
	require.NoError(t, err)

	// Case-insensitive on the roster side
	team := registry.TeamFor("alice@nicl.mu")
	require.NotNil(t, team)
	assert.Equal(t, "motor", team.ID)

	// And on the lookup side
	team = registry.TeamFor("  CAROL@nicl.mu ")
	require.NotNil(t, team)
	assert.Equal(t, "health", team.ID)

	assert.Nil(t, registry.TeamFor("stranger@example.com"))

	assert.Equal(t, "NICL Motor", registry.Team("motor").SenderName)
	assert.Nil(t, registry.Team("missing"))
	assert.ElementsMatch(t, []string{"motor", "health"}, registry.IDs())
}

func TestRegistryPasswordOverrideFromEnv(t *testing.T) {
	t.Setenv("MOTOR_SUPER_PASSWORD", "from-env")

	registry, err := NewRegistry(writeRoster(t, rosterJSON))
	require.NoError(t, err)

	assert.Equal(t, "from-env", registry.Team("motor").SuperPassword)
	assert.Equal(t, "health-pass", registry.Team("health").SuperPassword)
}

func TestRegistryReload(t *testing.T) {
	path := writeRoster(t, rosterJSON)
	registry, err := NewRegistry(path)
	require.NoError(t, err)
	require.NotNil(t, registry.TeamFor("bob@nicl.mu"))

	updated := `{"teams": [{"id": "motor", "name": "Motor", "authorizedEmails": ["dave@nicl.mu"], "superPassword": "x"}]}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, registry.Reload())

	assert.Nil(t, registry.TeamFor("bob@nicl.mu"))
	assert.NotNil(t, registry.TeamFor("dave@nicl.mu"))
}

func TestRegistryRejectsBadFiles(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = NewRegistry(writeRoster(t, "not json"))
	assert.Error(t, err)

	_, err = NewRegistry(writeRoster(t, `{"teams": []}`))
	assert.Error(t, err)
}

func TestReloadFailureKeepsPreviousRoster(t *testing.T) {
	path := writeRoster(t, rosterJSON)
	registry, err := NewRegistry(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("broken"), 0o644))
	assert.Error(t, registry.Reload())

	// The old table stays in place
	assert.NotNil(t, registry.TeamFor("alice@nicl.mu"))
}
