package formatter

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labastilla/wedx/internal/models"
)

func sampleRuns() []*models.Run {
	created := time.Date(2026, 9, 12, 18, 30, 0, 0, time.UTC)
	return []*models.Run{
		{
			ID:               "run-1",
			Sequence:         1,
			NameA:            "Maria",
			NameB:            "Jon",
			EventDate:        "12-09-2026",
			PosterVideoURL:   "http://x/poster.mp4",
			PolaroidVideoURL: "http://x/polaroid.mp4",
			CoupleVideoURL:   "http://x/couple.mp4",
			FinalVideoURL:    "http://x/final.mp4",
			CreatedAt:        created,
		},
		{
			ID:            "run-2",
			Sequence:      2,
			NameA:         "Ana",
			EventDate:     "01-01-2027",
			FinalVideoURL: "http://x/final2.mp4",
			CreatedAt:     created,
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("CSV includes headers and one row per run", func(t *testing.T) {
		data, err := ExportToCSV(sampleRuns())
		if err != nil {
			t.Fatalf("failed to export CSV: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header + 2 rows, got %d", len(records))
		}
		if records[1][2] != "Maria & Jon" {
			t.Errorf("unexpected couple label: %q", records[1][2])
		}
		if records[2][2] != "Ana" {
			t.Errorf("single-name runs use the one name, got %q", records[2][2])
		}
	})

	t.Run("Markdown links every generated clip", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleRuns()[0])
		if err != nil {
			t.Fatalf("failed to export Markdown: %v", err)
		}

		md := string(data)
		if !strings.HasPrefix(md, "# Maria & Jon") {
			t.Errorf("unexpected heading: %q", strings.SplitN(md, "\n", 2)[0])
		}
		for _, link := range []string{"[Poster]", "[Polaroid]", "[Couple]", "[Final]"} {
			if !strings.Contains(md, link) {
				t.Errorf("expected %s link in markdown", link)
			}
		}
	})

	t.Run("Markdown omits missing clips", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleRuns()[1])
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "[Polaroid]") {
			t.Error("missing clips should not be linked")
		}
	})

	t.Run("Text lists runs with final URLs", func(t *testing.T) {
		data, err := ExportToText(sampleRuns())
		if err != nil {
			t.Fatal(err)
		}
		text := string(data)
		if !strings.Contains(text, "Runs: 2") || !strings.Contains(text, "http://x/final2.mp4") {
			t.Errorf("unexpected text output: %q", text)
		}
	})
}

func TestArtifactSummary(t *testing.T) {
	out := string(ArtifactSummary([]models.Artifact{
		{Kind: models.PosterVideo, URL: "http://x/poster.mp4"},
		{Kind: models.Polaroid, Loading: true},
		{Kind: models.CoupleVideo, Error: "backend busy"},
		{Kind: models.FinalVideo},
	}))

	for _, want := range []string{"http://x/poster.mp4", "generating...", "error: backend busy", "pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestDownloadMedia(t *testing.T) {
	t.Run("rejects an empty URL", func(t *testing.T) {
		if _, err := DownloadMedia(""); err == nil {
			t.Error("expected an error for empty URL")
		}
	})

	t.Run("propagates non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := DownloadMedia(srv.URL + "/missing.mp4"); err == nil {
			t.Error("expected an error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "history")
		result, err := WriteCSVExport(sampleRuns(), base)
		if err != nil {
			t.Fatalf("failed to write CSV export: %v", err)
		}
		if _, err := os.Stat(result.RunsFile); err != nil {
			t.Errorf("expected runs file on disk: %v", err)
		}
	})

	t.Run("WriteMarkdownExport with download", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("fake-mp4-bytes"))
		}))
		defer srv.Close()

		run := sampleRuns()[0]
		run.FinalVideoURL = srv.URL + "/final.mp4"

		dir := filepath.Join(t.TempDir(), "export")
		result, err := WriteMarkdownExport(run, dir, true)
		if err != nil {
			t.Fatalf("failed to write Markdown export: %v", err)
		}
		if result.FinalVideo == "" {
			t.Error("expected the final video to be downloaded")
		}
		if len(result.Files) != 2 {
			t.Errorf("expected video + README, got %v", result.Files)
		}
	})
}
