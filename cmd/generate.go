package main

import (
	"context"

	"github.com/labastilla/wedx/internal/formatter"
	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload sends the couple photo to the backend.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	if path := cmd.StringArg("path"); path != "" {
		form, err := engine.FormState()
		if err != nil {
			return err
		}
		form.ImagePath = path
		if err := engine.ReplaceForm(form); err != nil {
			return err
		}
	}

	form, err := engine.Upload(ctx, nil)
	if err != nil {
		return err
	}

	r.writePlain("✓ Photo uploaded\n")
	r.writePlain("Run ID: %s\n", form.ID)
	r.writePlain("URL:    %s\n", form.CoupleImageURL)
	return nil
}

// GeneratePoster renders the save-the-date poster image.
func (r *Runner) GeneratePoster(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if cmd.Bool("force") {
		artifact, err = engine.RegeneratePosterImage(ctx, nil)
	} else {
		artifact, err = engine.GeneratePosterImage(ctx, nil)
	}
	if err != nil {
		return err
	}

	r.writePlain("✓ Poster image: %s\n", artifact.URL)
	return nil
}

// GeneratePosterVideo animates the poster image.
func (r *Runner) GeneratePosterVideo(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	artifact, err := engine.GeneratePosterVideo(ctx, nil)
	if err != nil {
		return err
	}

	r.printArtifact("Poster video", artifact)
	return nil
}

// GeneratePolaroid generates the polaroid image and video.
func (r *Runner) GeneratePolaroid(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	artifact, err := engine.GeneratePolaroid(ctx, nil)
	if err != nil {
		return err
	}

	r.printArtifact("Polaroid", artifact)
	return nil
}

// GenerateCouple generates the AI couple video.
func (r *Runner) GenerateCouple(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	artifact, err := engine.GenerateCoupleVideo(ctx, nil)
	if err != nil {
		return err
	}

	r.printArtifact("Couple video", artifact)
	return nil
}

// GenerateAll triggers every eligible generation and reports progress.
func (r *Runner) GenerateAll(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan error, 1)
	go func() {
		done <- engine.GenerateAll(ctx, progress)
		close(progress)
	}()

	for update := range progress {
		r.logger.Info(update.Message, "phase", update.Phase.String())
	}
	if err := <-done; err != nil {
		return err
	}

	artifacts := []models.Artifact{
		engine.Artifact(models.PosterVideo),
		engine.Artifact(models.Polaroid),
		engine.Artifact(models.CoupleVideo),
	}

	r.writePlainHeader("Generation Results")
	r.output.Write(formatter.ArtifactSummary(artifacts))
	return nil
}

// GenerateFinal submits the generated clips for final composition.
func (r *Runner) GenerateFinal(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	videoURL, err := engine.AssembleFinal(ctx, nil)
	if err != nil {
		return err
	}

	r.writePlain("✓ Final video ready\n%s\n", videoURL)
	return nil
}

func (r *Runner) printArtifact(label string, artifact models.Artifact) {
	switch {
	case artifact.IsPlaceholder:
		r.writePlain("✓ %s (placeholder): %s\n", label, artifact.URL)
	case artifact.URL != "":
		r.writePlain("✓ %s: %s\n", label, artifact.URL)
	default:
		r.writePlain("✗ %s: %s\n", label, artifact.Error)
	}
	if artifact.ImageURL != "" && artifact.ImageURL != artifact.URL {
		r.writePlain("  image: %s\n", artifact.ImageURL)
	}
}
