package main

import (
	"context"
	"fmt"

	"github.com/labastilla/wedx/internal/models"
	"github.com/urfave/cli/v3"
)

// FormSet updates fields of the persisted wizard form.
//
// Only flags that were provided change the record; the whole record is
// rewritten in one replacement.
func (r *Runner) FormSet(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	form, err := engine.FormState()
	if err != nil {
		return err
	}

	if cmd.IsSet("name1") {
		form.PersonA.Name = cmd.String("name1")
	}
	if cmd.IsSet("phone1") {
		form.PersonA.Phone = cmd.String("phone1")
	}
	if cmd.IsSet("email1") {
		form.PersonA.Email = cmd.String("email1")
	}
	if cmd.IsSet("name2") {
		form.PersonB.Name = cmd.String("name2")
	}
	if cmd.IsSet("phone2") {
		form.PersonB.Phone = cmd.String("phone2")
	}
	if cmd.IsSet("email2") {
		form.PersonB.Email = cmd.String("email2")
	}
	if cmd.IsSet("date") {
		form.EventDate = models.NormalizeDate(cmd.String("date"))
	}
	if cmd.IsSet("image") {
		form.ImagePath = cmd.String("image")
	}
	if cmd.IsSet("demo") {
		form.DemoMode = cmd.Bool("demo")
	}

	if err := engine.ReplaceForm(form); err != nil {
		return err
	}

	r.logger.Info("form updated")
	return r.FormShow(ctx, cmd)
}

// FormShow prints the current wizard form.
func (r *Runner) FormShow(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	form, err := engine.FormState()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(form, true)
	}

	r.writePlainHeader("Wedding Form")
	r.writePlain("Person 1: %s  %s  %s\n", form.PersonA.Name, form.PersonA.Phone, form.PersonA.Email)
	r.writePlain("Person 2: %s  %s  %s\n", form.PersonB.Name, form.PersonB.Phone, form.PersonB.Email)
	r.writePlain("Date:     %s\n", form.EventDate)
	r.writePlain("Photo:    %s\n", form.ImagePath)
	if form.DemoMode {
		r.writePlain("Mode:     demo\n")
	}
	if form.ID != "" {
		r.writePlain("Run ID:   %s\n", form.ID)
	}
	if form.CoupleImageURL != "" {
		r.writePlain("Uploaded: %s\n", form.CoupleImageURL)
	}
	if form.PosterImageURL != "" {
		r.writePlain("Poster:   %s\n", form.PosterImageURL)
	}

	if err := form.Validate(); err != nil && !form.DemoMode {
		r.writePlainln("Incomplete: %v", err)
	}

	return nil
}

// FormReset clears the form and all artifact state to start a new run.
func (r *Runner) FormReset(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	if err := engine.ResetRun(); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}

	r.writePlain("✓ Form reset, ready for a new video\n")
	return nil
}
