package main

import (
	"context"
	"fmt"

	"github.com/labastilla/wedx/internal/formatter"
	"github.com/labastilla/wedx/internal/repositories"
	"github.com/urfave/cli/v3"
)

// RunsList prints the run history.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureEngine(); err != nil {
		return err
	}
	repo := repositories.NewRunRepository(r.db)

	criteria := map[string]any{}
	if name := cmd.String("name"); name != "" {
		criteria["name"] = name
	}
	if date := cmd.String("date"); date != "" {
		criteria["event_date"] = date
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	data, err := formatter.ExportToText(runs)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// RunsShow prints one run, optionally as Markdown.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureEngine(); err != nil {
		return err
	}
	repo := repositories.NewRunRepository(r.db)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("run id is required")
	}

	run, err := repo.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.ToRunJSON(run)
		if err != nil {
			return err
		}
		r.output.Write(data)
		r.writePlain("\n")
		return nil
	}

	data, err := formatter.ExportToMarkdown(run)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// RunsDelete soft-deletes a run from the history.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureEngine(); err != nil {
		return err
	}
	repo := repositories.NewRunRepository(r.db)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("run id is required")
	}

	if err := repo.Delete(id); err != nil {
		return err
	}
	r.writePlain("✓ Run deleted: %s\n", id)
	return nil
}

// RunsExport writes the history to CSV, or one run to a Markdown directory.
func (r *Runner) RunsExport(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureEngine(); err != nil {
		return err
	}
	repo := repositories.NewRunRepository(r.db)

	if id := cmd.String("id"); id != "" {
		run, err := repo.Get(id)
		if err != nil {
			return err
		}
		result, err := formatter.WriteMarkdownExport(run, cmd.String("output"), cmd.Bool("download"))
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", result.Directory)
		return nil
	}

	runs, err := repo.List(nil)
	if err != nil {
		return err
	}
	result, err := formatter.WriteCSVExport(runs, cmd.String("output"))
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d runs to %s\n", len(runs), result.RunsFile)
	return nil
}
