// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
	}
}

// formCommand handles the wizard form record
func formCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "form",
		Usage: "Manage the couple's details",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set form fields",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name1", Usage: "First person's name"},
					&cli.StringFlag{Name: "phone1", Usage: "First person's phone"},
					&cli.StringFlag{Name: "email1", Usage: "First person's email"},
					&cli.StringFlag{Name: "name2", Usage: "Second person's name"},
					&cli.StringFlag{Name: "phone2", Usage: "Second person's phone"},
					&cli.StringFlag{Name: "email2", Usage: "Second person's email"},
					&cli.StringFlag{Name: "date", Usage: "Wedding date (DD-MM-YYYY or YYYY-MM-DD)"},
					&cli.StringFlag{Name: "image", Usage: "Path to the couple photo"},
					&cli.BoolFlag{Name: "demo", Usage: "Demo mode (skips validation, uses canned assets)"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.FormSet,
			},
			{
				Name:  "show",
				Usage: "Print the current form",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.FormShow,
			},
			{
				Name:   "reset",
				Usage:  "Clear the form and start a new video",
				Action: r.FormReset,
			},
		},
	}
}

// uploadCommand sends the couple photo to the backend
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload the couple photo",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Action: r.Upload,
	}
}

// generateCommand handles artifact generation
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate videos and the final composition",
		Commands: []*cli.Command{
			{
				Name:  "poster",
				Usage: "Render the save-the-date poster image",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Discard the cached poster and render a new one"},
				},
				Action: r.GeneratePoster,
			},
			{
				Name:   "poster-video",
				Usage:  "Animate the poster image",
				Action: r.GeneratePosterVideo,
			},
			{
				Name:   "polaroid",
				Usage:  "Generate the polaroid image and video",
				Action: r.GeneratePolaroid,
			},
			{
				Name:   "couple",
				Usage:  "Generate the AI couple video",
				Action: r.GenerateCouple,
			},
			{
				Name:   "all",
				Usage:  "Generate every eligible video concurrently",
				Action: r.GenerateAll,
			},
			{
				Name:   "final",
				Usage:  "Compose the final video from the generated clips",
				Action: r.GenerateFinal,
			},
		},
	}
}

// runsCommand handles the run history
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Browse and export finished videos",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List finished runs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Filter by either partner's name"},
					&cli.StringFlag{Name: "date", Usage: "Filter by wedding date"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show one run as Markdown",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.RunsShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a run from the history",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.RunsDelete,
			},
			{
				Name:  "export",
				Usage: "Export history to CSV, or one run to a Markdown directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Export a single run instead of the full history"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path or directory"},
					&cli.BoolFlag{Name: "download", Usage: "Download the final video next to the summary"},
				},
				Action: r.RunsExport,
			},
		},
	}
}

// mailCommand handles email delivery of the final video
func mailCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mail",
		Usage: "Deliver the final video by email",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Check whether a mail session exists",
				Action: r.MailStatus,
			},
			{
				Name:   "login",
				Usage:  "Run the browser login flow",
				Action: r.MailLogin,
			},
			{
				Name:  "send",
				Usage: "Send the final video link",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "to", Usage: "Recipient address (repeatable; defaults to the form's emails)"},
					&cli.StringFlag{Name: "video", Usage: "Video URL (defaults to the assembled final video)"},
					&cli.StringFlag{Name: "subject", Usage: "Email subject"},
					&cli.StringFlag{Name: "message", Usage: "Email message body"},
					&cli.BoolFlag{Name: "direct", Usage: "Send via Graph with application credentials, skipping the login flow"},
				},
				Action: r.MailSend,
			},
		},
	}
}

// whatsappCommand triggers the backend's WhatsApp notification
func whatsappCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "whatsapp",
		Usage: "Send the WhatsApp notification",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Phone number (defaults to the form's first phone, +34 assumed)"},
		},
		Action: r.WhatsAppSend,
	}
}

// wizardCommand launches the interactive TUI
func wizardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wizard",
		Aliases: []string{"tui"},
		Usage:   "Interactive terminal wizard",
		Action:  r.Wizard,
	}
}
