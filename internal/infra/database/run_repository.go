package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nicl-mu/renewal-portal/internal/entity"
)

type RunRepository struct {
	DB *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{DB: db}
}

// EnsureSchema creates the stage_runs table when it does not exist yet.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS stage_runs (
			id          UUID PRIMARY KEY,
			team        TEXT NOT NULL,
			stage       TEXT NOT NULL,
			status      TEXT NOT NULL,
			message     TEXT NOT NULL DEFAULT '',
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS stage_runs_team_stage_idx
			ON stage_runs (team, stage, started_at DESC);
	`
	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensuring stage_runs schema: %w", err)
	}
	return nil
}

func (r *RunRepository) Create(ctx context.Context, run *entity.StageRun) error {
	query := `
		INSERT INTO stage_runs (id, team, stage, status, message, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.Team,
		run.Stage,
		run.Status,
		run.Message,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("creating stage run: %w", err)
	}
	return nil
}

func (r *RunRepository) Finish(ctx context.Context, id, status, message string) error {
	query := `
		UPDATE stage_runs
		SET status = $1, message = $2, finished_at = NOW()
		WHERE id = $3
	`
	result, err := r.DB.ExecContext(ctx, query, status, message, id)
	if err != nil {
		return fmt.Errorf("finishing stage run %s: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("stage run %s not found", id)
	}
	return nil
}

// LatestByStage returns the most recent run per stage for one team.
func (r *RunRepository) LatestByStage(ctx context.Context, team string) (map[string]*entity.StageRun, error) {
	query := `
		SELECT DISTINCT ON (stage)
			id, team, stage, status, message, started_at, finished_at
		FROM stage_runs
		WHERE team = $1
		ORDER BY stage, started_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("querying latest runs for %s: %w", team, err)
	}
	defer rows.Close()

	latest := make(map[string]*entity.StageRun)
	for rows.Next() {
		var run entity.StageRun
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Team, &run.Stage, &run.Status, &run.Message, &run.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning stage run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		latest[run.Stage] = &run
	}
	return latest, rows.Err()
}

// Get returns one run by id, or nil when absent.
func (r *RunRepository) Get(ctx context.Context, id string) (*entity.StageRun, error) {
	query := `
		SELECT id, team, stage, status, message, started_at, finished_at
		FROM stage_runs
		WHERE id = $1
	`
	var run entity.StageRun
	var finished sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&run.ID, &run.Team, &run.Stage, &run.Status, &run.Message, &run.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading stage run %s: %w", id, err)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
