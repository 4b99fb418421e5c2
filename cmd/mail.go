package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/services"
	"github.com/labastilla/wedx/internal/shared"
	"github.com/urfave/cli/v3"
)

// MailStatus reports whether a delegated mail session exists.
func (r *Runner) MailStatus(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureMailFlow(); err != nil {
		return err
	}

	authed, err := r.mail.Me(ctx)
	if err != nil {
		return err
	}

	if authed {
		r.writePlain("✓ Mail session active\n")
	} else {
		r.writePlain("✗ Not authenticated (run 'wedx mail login')\n")
	}
	return nil
}

// MailLogin runs the browser login flow without sending anything.
func (r *Runner) MailLogin(ctx context.Context, cmd *cli.Command) error {
	flow, err := r.ensureMailFlow()
	if err != nil {
		return err
	}

	r.writePlain("Opening a browser window for login...\n")
	if err := flow.EnsureSession(ctx); err != nil {
		return err
	}

	r.writePlain("✓ Mail session established\n")
	return nil
}

// MailSend delivers the final video link by email.
//
// Recipients default to both partners' addresses from the form; the video URL
// defaults to the current run's assembled final video.
func (r *Runner) MailSend(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	form, err := engine.FormState()
	if err != nil {
		return err
	}

	recipients := cmd.StringSlice("to")
	if len(recipients) == 0 {
		if form.PersonA.Email != "" {
			recipients = append(recipients, form.PersonA.Email)
		}
		if form.PersonB.Email != "" {
			recipients = append(recipients, form.PersonB.Email)
		}
	}

	videoURL := cmd.String("video")
	if videoURL == "" {
		videoURL = engine.Artifact(models.FinalVideo).URL
	}

	subject := cmd.String("subject")
	if subject == "" {
		subject = r.config.Mail.DefaultSubject
	}
	message := cmd.String("message")
	if message == "" {
		message = r.config.Mail.DefaultMessage
	}

	if cmd.Bool("direct") {
		return r.sendDirect(ctx, recipients, subject, message, videoURL)
	}

	flow, err := r.ensureMailFlow()
	if err != nil {
		return err
	}

	if err := flow.SendVideo(ctx, recipients, subject, message, videoURL); err != nil {
		return err
	}

	r.writePlain("✓ Video sent to %s\n", strings.Join(recipients, ", "))
	return nil
}

// sendDirect bypasses the delegated session and sends through the Graph API
// with application credentials from the config.
func (r *Runner) sendDirect(ctx context.Context, to []string, subject, message, videoURL string) error {
	mc := r.config.Mail
	if mc.TenantID == "" || mc.ClientID == "" || mc.ClientSecret == "" || mc.SenderEmail == "" {
		return fmt.Errorf("%w: graph credentials are not configured", shared.ErrMissingConfig)
	}
	if videoURL == "" {
		return fmt.Errorf("%w: no final video to send", shared.ErrMissingArtifact)
	}

	mailer, err := services.NewGraphMailer(mc.TenantID, mc.ClientID, mc.ClientSecret, mc.SenderEmail)
	if err != nil {
		return err
	}

	bodyHTML := fmt.Sprintf("<p>%s</p><p><a href=%q>%s</a></p>", message, videoURL, videoURL)
	err = mailer.SendMail(ctx, services.SendMailRequest{
		To:              to,
		Subject:         subject,
		BodyHTML:        bodyHTML,
		BodyText:        fmt.Sprintf("%s\n\n%s", message, videoURL),
		SaveToSentItems: true,
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Video sent directly via Graph to %s\n", strings.Join(to, ", "))
	return nil
}

// WhatsAppSend triggers the backend's WhatsApp template message.
func (r *Runner) WhatsAppSend(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	if to := cmd.String("to"); to != "" {
		if err := r.gen.SendWhatsApp(ctx, to); err != nil {
			return err
		}
		r.writePlain("✓ WhatsApp sent to %s\n", services.EnsureE164(to))
		return nil
	}

	if err := engine.NotifyWhatsApp(ctx); err != nil {
		return err
	}
	r.writePlain("✓ WhatsApp sent\n")
	return nil
}
