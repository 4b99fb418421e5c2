package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/shared"
)

// RunRepository persists completed final-video runs [models.Run].
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	run.Sequence = sequence
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, name_a, name_b, event_date, poster_video_url, polaroid_video_url, couple_video_url, final_video_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, run.ID, run.Sequence, run.NameA, run.NameB, run.EventDate,
		run.PosterVideoURL, run.PolaroidVideoURL, run.CoupleVideoURL, run.FinalVideoURL, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, name_a, name_b, event_date, poster_video_url, polaroid_video_url, couple_video_url, final_video_url, created_at, deleted_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all runs matching the given criteria, excluding soft-deleted runs
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT id, sequence, name_a, name_b, event_date, poster_video_url, polaroid_video_url, couple_video_url, final_video_url, created_at, deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if date, ok := criteria["event_date"].(string); ok && date != "" {
		query += " AND event_date = ?"
		args = append(args, date)
	}
	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND (name_a = ? OR name_b = ?)"
		args = append(args, name, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var (
		run       models.Run
		deletedAt sql.NullTime
	)

	err := s.Scan(&run.ID, &run.Sequence, &run.NameA, &run.NameB, &run.EventDate,
		&run.PosterVideoURL, &run.PolaroidVideoURL, &run.CoupleVideoURL, &run.FinalVideoURL,
		&run.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		run.DeletedAt = &deletedAt.Time
	}

	return &run, nil
}
