package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerIdleBeforeAnyRun(t *testing.T) {
	tracker := NewTracker()

	p := tracker.Latest("motor")
	assert.Equal(t, "idle", p.Status)
	assert.Equal(t, 0, p.Progress)
}

func TestTrackerLatestPerTeam(t *testing.T) {
	tracker := NewTracker()
	tracker.Update("motor", "run-1", "running", 20, "Generating PDFs...", "generate")
	tracker.Update("health", "run-2", "running", 50, "Merging PDFs...", "merge")
	tracker.Update("motor", "run-1", "completed", 100, "PDFs generated successfully", "generate")

	motor := tracker.Latest("motor")
	assert.Equal(t, "completed", motor.Status)
	assert.Equal(t, "run-1", motor.RunID)

	health := tracker.Latest("health")
	assert.Equal(t, 50, health.Progress)
	assert.Equal(t, "run-2", health.RunID)
}

func TestTrackerLookupByRun(t *testing.T) {
	tracker := NewTracker()
	tracker.Update("motor", "run-1", "completed", 100, "done", "generate")
	tracker.Update("motor", "run-2", "running", 30, "working", "merge")

	p, ok := tracker.Run("run-1")
	assert.True(t, ok)
	assert.Equal(t, "completed", p.Status)

	_, ok = tracker.Run("unknown")
	assert.False(t, ok)
}

func TestTrackerEvictsOldRuns(t *testing.T) {
	tracker := NewTracker()
	for i := 0; i < maxRetainedRuns+10; i++ {
		tracker.Update("motor", fmt.Sprintf("run-%d", i), "completed", 100, "done", "generate")
	}

	_, ok := tracker.Run("run-0")
	assert.False(t, ok)
	_, ok = tracker.Run(fmt.Sprintf("run-%d", maxRetainedRuns+9))
	assert.True(t, ok)
}
