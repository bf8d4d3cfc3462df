package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/repositories"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/session"
	"github.com/desertthunder/spotiverse/internal/shared"
	"github.com/desertthunder/spotiverse/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, session and API clients are opened on first use so that setup and serve run without them.
type Runner struct {
	config      *shared.Config
	configPath  string
	fixedConfig bool
	logger      *log.Logger
	output      io.Writer
	httpClient  *http.Client

	db      *sql.DB
	store   models.Storage
	session *session.Session
	spotify services.Service
	api     *services.APIService
	loader  *tasks.DashboardLoader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	Store      models.Storage  // Durable token store; defaults to the configured SQLite database
	Spotify    services.Service // Defaults to the HTTP client for [shared.ClientConfig.BaseURL]
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	fixed := opts.Config != nil
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

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		fixedConfig: fixed,
		logger:      opts.Logger,
		output:      opts.Output,
		httpClient:  opts.HTTPClient,
		store:       opts.Store,
		spotify:     opts.Spotify,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, authCommand, statsCommand, exportCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if !r.fixedConfig {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	if err := r.config.ApplyEnv(nil); err != nil {
		return ctx, err
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// SetLogger replaces the logger. Clients opened afterwards log through it.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// connect opens the token store, restores the session and builds the API clients.
func (r *Runner) connect() error {
	if r.session != nil {
		return nil
	}

	if r.store == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database (run `spotiverse setup`?): %w", err)
		}
		r.db = db
		r.store = repositories.NewStorageRepository(db)
	}

	sess := session.New(r.store, session.WithLogger(r.logger))
	if _, err := sess.Start(""); err != nil {
		return err
	}
	r.session = sess

	client := services.NewClient(sess.TokenSource(), r.httpClient)
	if r.spotify == nil {
		r.spotify = services.NewSpotifyService(
			r.config.Client.BaseURL,
			sess.TokenSource(),
			services.WithHTTPClient(client),
			services.WithRateLimit(r.config.Client.RateLimit),
			services.WithServiceLogger(r.logger),
		)
	}
	r.api = services.NewAPIService(r.config.Client.BaseURL, client)
	r.loader = r.newLoader(0)

	return nil
}

// newLoader builds a dashboard loader bound to the session. A positive limit overrides the configured one.
func (r *Runner) newLoader(limit int) *tasks.DashboardLoader {
	if limit <= 0 {
		limit = r.config.Client.Limit
	}
	return tasks.NewDashboardLoader(
		r.spotify,
		tasks.WithSession(r.session),
		tasks.WithLimits(limit, r.config.Client.RecommendationLimit),
		tasks.WithLoaderLogger(r.logger),
	)
}

// requireAuth connects and fails unless a valid token is held.
func (r *Runner) requireAuth() error {
	if err := r.connect(); err != nil {
		return err
	}
	if !r.session.Authenticated() {
		return fmt.Errorf("%w: run `spotiverse auth login` first", shared.ErrNotAuthenticated)
	}
	return nil
}

// trackProgress logs progress updates until the returned stop function is called.
func (r *Runner) trackProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

// Close releases the database handle.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
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
