package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/services"
	"github.com/labastilla/wedx/internal/tasks"
)

type memStore struct {
	form models.FormState
}

func (s *memStore) Load() (models.FormState, error) {
	return s.form, nil
}

func (s *memStore) Replace(next models.FormState) error {
	s.form = next
	return nil
}

func (s *memStore) Reset() error {
	s.form = models.DefaultFormState()
	return nil
}

type memRuns struct {
	runs []models.Run
}

func (r *memRuns) Create(run *models.Run) error {
	r.runs = append(r.runs, *run)
	return nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	gen := services.NewGenerationClient("http://localhost:1", nil)
	engine := tasks.NewEngine(gen, &memStore{}, &memRuns{}, 100)
	return NewModel(context.Background(), engine, nil)
}

// drainGeneration runs startGeneration's command loop the way the bubbletea
// runtime would, feeding progress messages back through Update until the
// completion message arrives.
func drainGeneration(t *testing.T, m *Model) generateDoneMsg {
	t.Helper()
	cmd := m.startGeneration()
	deadline := time.Now().Add(5 * time.Second)
	for cmd != nil {
		if time.Now().After(deadline) {
			t.Fatal("generation never completed")
		}
		msg := cmd()
		if done, ok := msg.(generateDoneMsg); ok {
			return done
		}
		_, cmd = m.Update(msg)
	}
	t.Fatal("command chain ended without a completion message")
	return generateDoneMsg{}
}

func TestModelGenerationCompletion(t *testing.T) {
	t.Run("completion message detaches the progress channel", func(t *testing.T) {
		m := newTestModel(t)
		done := drainGeneration(t, m)

		var cmd tea.Cmd
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Update(generateDoneMsg) panicked: %v", r)
				}
			}()
			_, cmd = m.Update(done)
		}()

		if cmd != nil {
			t.Error("expected no follow-up command after completion")
		}
		if m.progressChan != nil {
			t.Error("expected the progress channel to be detached")
		}
	})

	t.Run("repeated completion messages are harmless", func(t *testing.T) {
		m := newTestModel(t)
		done := drainGeneration(t, m)

		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("second Update(generateDoneMsg) panicked: %v", r)
			}
		}()
		m.Update(done)
		m.Update(done)
	})
}
