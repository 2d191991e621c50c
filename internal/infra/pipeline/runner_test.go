package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755))
}

func TestRunStreamsStdoutLines(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gen.sh", "echo line one\necho line two\n")
	runner := NewScriptRunner(dir, "/bin/sh")

	var lines []string
	output, err := runner.Run(context.Background(), "gen.sh", func(line string) {
		lines = append(lines, line)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"line one", "line two"}, lines)
	assert.Equal(t, "line one\nline two", output)
}

func TestRunNonZeroExitCarriesStderr(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "fail.sh", "echo partial\necho boom >&2\nexit 3\n")
	runner := NewScriptRunner(dir, "/bin/sh")

	output, err := runner.Run(context.Background(), "fail.sh", nil)
	require.Error(t, err)
	assert.Equal(t, "partial", output)

	techErr, ok := err.(*usecase.TechnicalError)
	require.True(t, ok)
	assert.Equal(t, usecase.CodeUpstream, techErr.Code)
	assert.Contains(t, techErr.Message, "code 3")
	assert.Contains(t, techErr.Details, "boom")
}

func TestRunFallsBackToStdoutWhenStderrEmpty(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "fail.sh", "echo only stdout\nexit 1\n")
	runner := NewScriptRunner(dir, "/bin/sh")

	_, err := runner.Run(context.Background(), "fail.sh", nil)
	require.Error(t, err)
	techErr := err.(*usecase.TechnicalError)
	assert.Contains(t, techErr.Details, "only stdout")
}

func TestRunMissingInterpreterIsSpawnError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gen.sh", "echo hi\n")
	runner := NewScriptRunner(dir, filepath.Join(dir, "no-such-binary"))

	_, err := runner.Run(context.Background(), "gen.sh", nil)
	require.Error(t, err)
	techErr, ok := err.(*usecase.TechnicalError)
	require.True(t, ok)
	assert.Equal(t, usecase.CodeSpawn, techErr.Code)
}

func TestRunOutlivesCallerCancellation(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gen.sh", "echo done\n")
	runner := NewScriptRunner(dir, "/bin/sh")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Once spawned, a stage runs to process exit even when the triggering
	// request has gone away.
	output, err := runner.Run(ctx, "gen.sh", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", output)
}
