// package formatter provides functions to export run history and artifact summaries to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/shared"
)

// ExportToCSV converts runs to CSV format with columns: ID, Seq, Couple, Date, Final Video, Created
func ExportToCSV(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Seq", "Couple", "Date", "Final Video", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			run.ID,
			strconv.Itoa(run.Sequence),
			coupleLabel(run),
			run.EventDate,
			run.FinalVideoURL,
			run.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a run to Markdown format with every generated clip linked
func ExportToMarkdown(run *models.Run) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", coupleLabel(run)))

	if run.EventDate != "" {
		buf.WriteString(fmt.Sprintf("**Date**: %s\n", run.EventDate))
	}
	buf.WriteString(fmt.Sprintf("**Created**: %s\n\n", run.CreatedAt.Format("2006-01-02 15:04")))

	buf.WriteString("## Videos\n\n")
	for _, clip := range []struct {
		label string
		url   string
	}{
		{"Poster", run.PosterVideoURL},
		{"Polaroid", run.PolaroidVideoURL},
		{"Couple", run.CoupleVideoURL},
		{"Final", run.FinalVideoURL},
	} {
		if clip.url == "" {
			continue
		}
		buf.WriteString(fmt.Sprintf("- [%s](%s)\n", clip.label, clip.url))
	}

	return buf.Bytes(), nil
}

// ExportToText converts runs to plain text format
func ExportToText(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Runs: %d\n\n", len(runs)))
	for i, run := range runs {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n   %s\n", i+1, coupleLabel(run), run.EventDate, run.FinalVideoURL))
	}

	return buf.Bytes(), nil
}

// ArtifactSummary renders the artifact states as a short status listing for CLI output
func ArtifactSummary(artifacts []models.Artifact) []byte {
	var buf bytes.Buffer

	for _, a := range artifacts {
		status := "pending"
		switch {
		case a.Loading:
			status = "generating..."
		case a.Error != "":
			status = "error: " + a.Error
		case a.IsPlaceholder:
			status = "placeholder: " + a.URL
		case a.URL != "":
			status = a.URL
		}
		buf.WriteString(fmt.Sprintf("%-14s %s\n", a.Kind.String(), status))
	}

	return buf.Bytes()
}

func coupleLabel(run *models.Run) string {
	switch {
	case run.NameA != "" && run.NameB != "":
		return run.NameA + " & " + run.NameB
	case run.NameA != "":
		return run.NameA
	case run.NameB != "":
		return run.NameB
	default:
		return run.ID
	}
}

// DownloadMedia downloads a generated asset from the given URL and returns the raw bytes
func DownloadMedia(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media data: %w", err)
	}

	return data, nil
}

// ToRunJSON generates a JSON representation of a run
func ToRunJSON(run *models.Run) ([]byte, error) {
	return shared.MarshalJSON(run, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	RunsFile string
}

// WriteCSVExport writes the run history to {base}_runs.csv.
//
// Defaults to "wedx" as the base filename.
func WriteCSVExport(runs []*models.Run, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "wedx"
	}

	csvData, err := ExportToCSV(runs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	runsFile := baseFilepath + "_runs.csv"
	if err := os.WriteFile(runsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	return &CSVExportResult{RunsFile: runsFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	FinalVideo string
}

// WriteMarkdownExport exports a run to Markdown format in a dedicated directory.
//
// Directory name defaults to the run ID. When downloadFinal is set, the final
// video is fetched next to the summary as final.mp4; a download failure is a
// warning, not an error.
func WriteMarkdownExport(run *models.Run, outputDir string, downloadFinal bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = run.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	if downloadFinal && run.FinalVideoURL != "" {
		data, err := DownloadMedia(run.FinalVideoURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download final video: %v\n", err)
		} else {
			videoFile := outputDir + "/final.mp4"
			if err := os.WriteFile(videoFile, data, 0644); err != nil {
				return nil, fmt.Errorf("failed to write video file: %w", err)
			}
			result.FinalVideo = videoFile
			result.Files = append(result.Files, videoFile)
		}
	}

	mdData, err := ExportToMarkdown(run)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	readmeFile := outputDir + "/README.md"
	if err := os.WriteFile(readmeFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, readmeFile)

	return result, nil
}
