package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/labastilla/wedx/internal/repositories"
	"github.com/labastilla/wedx/internal/services"
	"github.com/labastilla/wedx/internal/shared"
	"github.com/labastilla/wedx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	gen        *services.GenerationClient
	mail       *services.MailClient
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db     *sql.DB
	engine *tasks.Engine
	flow   *tasks.MailFlow
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Gen        *services.GenerationClient
	Mail       *services.MailClient
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Gen == nil {
		opts.Gen = services.NewGenerationClient(opts.Config.Backend.BaseURL, opts.HTTPClient)
	}

	return &Runner{
		config:     opts.Config,
		gen:        opts.Gen,
		mail:       opts.Mail,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, e.g. to a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// ensureEngine lazily opens the database and builds the generation engine.
func (r *Runner) ensureEngine() (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database (run 'wedx setup' first): %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	forms := repositories.NewFormRepository(db)
	runs := repositories.NewRunRepository(db)
	r.engine = tasks.NewEngine(r.gen, forms, runs, r.config.Backend.RateLimit)
	return r.engine, nil
}

// ensureMailFlow lazily builds the delegated-auth mail flow.
func (r *Runner) ensureMailFlow() (*tasks.MailFlow, error) {
	if r.flow != nil {
		return r.flow, nil
	}

	if r.mail == nil {
		mail, err := services.NewMailClient(r.config.Backend.BaseURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create mail client: %w", err)
		}
		r.mail = mail
	}

	r.flow = tasks.NewMailFlow(r.mail, r.config.Relay.Host, r.config.Relay.Port, r.logger)
	return r.flow, nil
}

// Close releases the runner's database handle.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, formCommand, uploadCommand, generateCommand, runsCommand, mailCommand, whatsappCommand, wizardCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
