package repositories

import (
	"database/sql"
	"testing"

	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestFormRepository(t *testing.T) {
	t.Run("Load returns defaults when empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFormRepository(db)
		form, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load form state: %v", err)
		}
		if form.ID != "" || form.PersonA.Name != "" {
			t.Errorf("expected the default record, got %+v", form)
		}
	})

	t.Run("Replace then Load round-trips", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFormRepository(db)
		form := models.FormState{
			ID:        "run-1",
			PersonA:   models.Person{Name: "Maria", Phone: "600111222", Email: "maria@example.com"},
			PersonB:   models.Person{Name: "Jon", Email: "jon@example.com"},
			EventDate: "12-09-2026",
		}
		if err := repo.Replace(form); err != nil {
			t.Fatalf("failed to replace form state: %v", err)
		}

		got, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load form state: %v", err)
		}
		if got.ID != "run-1" || got.PersonA.Name != "Maria" || got.EventDate != "12-09-2026" {
			t.Errorf("round-trip mismatch: %+v", got)
		}
	})

	t.Run("Replace overwrites the whole record", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFormRepository(db)
		if err := repo.Replace(models.FormState{ID: "run-1", EventDate: "12-09-2026"}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Replace(models.FormState{ID: "run-1"}); err != nil {
			t.Fatal(err)
		}

		got, _ := repo.Load()
		if got.EventDate != "" {
			t.Errorf("expected replacement to drop the date, got %q", got.EventDate)
		}
	})

	t.Run("Load falls back to defaults on an unparseable payload", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := db.Exec(
			`INSERT INTO form_states (slot, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
			"wizard", "{not json",
		); err != nil {
			t.Fatal(err)
		}

		repo := NewFormRepository(db)
		form, err := repo.Load()
		if err != nil {
			t.Fatalf("corrupted slot must not error: %v", err)
		}
		if form.ID != "" {
			t.Errorf("expected defaults, got %+v", form)
		}
	})

	t.Run("Reset clears the slot", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFormRepository(db)
		if err := repo.Replace(models.FormState{ID: "run-1"}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Reset(); err != nil {
			t.Fatalf("failed to reset: %v", err)
		}

		got, _ := repo.Load()
		if got.ID != "" {
			t.Errorf("expected defaults after reset, got %+v", got)
		}
	})
}

func TestRunRepository(t *testing.T) {
	sample := func() *models.Run {
		return &models.Run{
			NameA:          "Maria",
			NameB:          "Jon",
			EventDate:      "12-09-2026",
			PosterVideoURL: "http://x/poster.mp4",
			CoupleVideoURL: "http://x/couple.mp4",
			FinalVideoURL:  "http://x/final.mp4",
		}
	}

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := sample()

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence == 0 {
			t.Error("run sequence should be assigned")
		}
	})

	t.Run("Create rejects a run without a final video", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := sample()
		run.FinalVideoURL = ""

		if err := repo.Create(run); err == nil {
			t.Error("expected a validation error")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := sample()
		if err := repo.Create(run); err != nil {
			t.Fatal(err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.NameA != "Maria" || got.FinalVideoURL != run.FinalVideoURL {
			t.Errorf("retrieved run mismatch: %+v", got)
		}
	})

	t.Run("List orders by sequence", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		first := sample()
		second := sample()
		second.NameA = "Ana"
		if err := repo.Create(first); err != nil {
			t.Fatal(err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatal(err)
		}

		runs, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Sequence >= runs[1].Sequence {
			t.Error("expected ascending sequence order")
		}
	})

	t.Run("List filters by name", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if err := repo.Create(sample()); err != nil {
			t.Fatal(err)
		}
		other := sample()
		other.NameA = "Ana"
		other.NameB = "Luis"
		if err := repo.Create(other); err != nil {
			t.Fatal(err)
		}

		runs, err := repo.List(map[string]any{"name": "Luis"})
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 || runs[0].NameB != "Luis" {
			t.Errorf("unexpected filter result: %+v", runs)
		}
	})

	t.Run("Delete soft-deletes", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := sample()
		if err := repo.Create(run); err != nil {
			t.Fatal(err)
		}

		if err := repo.Delete(run.ID); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID); err == nil {
			t.Error("deleted run should not be retrievable")
		}
		if err := repo.Delete(run.ID); err == nil {
			t.Error("double delete should fail")
		}

		// Row survives for audit, only hidden from queries.
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("expected the row to survive soft delete, found %d", count)
		}
	})
}
