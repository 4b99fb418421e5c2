package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labastilla/wedx/internal/models"
)

// formSlot is the fixed key for the single wizard form record.
const formSlot = "wizard"

// FormRepository persists the wizard's form record in a single slot.
//
// Reads that find no row, or a row whose payload no longer parses, fall back
// to the default record so a corrupted slot never blocks the wizard.
// Mutation is whole-record replacement.
type FormRepository struct {
	db *sql.DB
}

// NewFormRepository creates a new [FormRepository] with the given database connection
func NewFormRepository(db *sql.DB) *FormRepository {
	return &FormRepository{db: db}
}

// Load reads the current form record, returning defaults when none is stored.
func (r *FormRepository) Load() (models.FormState, error) {
	query := `SELECT data FROM form_states WHERE slot = ?`

	var data string
	err := r.db.QueryRow(query, formSlot).Scan(&data)
	if err == sql.ErrNoRows {
		return models.DefaultFormState(), nil
	}
	if err != nil {
		return models.FormState{}, fmt.Errorf("failed to query form state: %w", err)
	}

	var form models.FormState
	if err := json.Unmarshal([]byte(data), &form); err != nil {
		return models.DefaultFormState(), nil
	}

	return form, nil
}

// Replace overwrites the stored form record with the given one.
func (r *FormRepository) Replace(form models.FormState) error {
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to serialize form state: %w", err)
	}

	query := `
		INSERT INTO form_states (slot, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, formSlot, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to store form state: %w", err)
	}

	return nil
}

// Reset deletes the stored record so the next Load returns defaults.
func (r *FormRepository) Reset() error {
	if _, err := r.db.Exec(`DELETE FROM form_states WHERE slot = ?`, formSlot); err != nil {
		return fmt.Errorf("failed to reset form state: %w", err)
	}
	return nil
}
