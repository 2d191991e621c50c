package pipeline

import (
	"sync"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

const maxRetainedRuns = 100

// Tracker holds in-memory stage progress, per team (latest run) and per run
// id. It satisfies usecase.ProgressSink; the progress endpoints read from it.
type Tracker struct {
	mu     sync.RWMutex
	latest map[string]entity.Progress
	byRun  map[string]entity.Progress
	order  []string
}

func NewTracker() *Tracker {
	return &Tracker{
		latest: make(map[string]entity.Progress),
		byRun:  make(map[string]entity.Progress),
	}
}

func (t *Tracker) Update(team, runID, status string, progress int, message, step string) {
	p := entity.Progress{
		Status:   status,
		Progress: progress,
		Message:  message,
		Step:     step,
		RunID:    runID,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[team] = p
	if _, seen := t.byRun[runID]; !seen {
		t.order = append(t.order, runID)
		if len(t.order) > maxRetainedRuns {
			delete(t.byRun, t.order[0])
			t.order = t.order[1:]
		}
	}
	t.byRun[runID] = p
}

// Latest returns the most recent progress for a team. Before any run it
// reports the idle state.
func (t *Tracker) Latest(team string) entity.Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.latest[team]; ok {
		return p
	}
	return entity.Progress{Status: "idle", Message: "No process running"}
}

// Run returns the progress recorded for one run id.
func (t *Tracker) Run(runID string) (entity.Progress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.byRun[runID]
	return p, ok
}
