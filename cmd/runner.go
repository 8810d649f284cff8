package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotrack/internal/formatter"
	"github.com/desertthunder/spotrack/internal/repositories"
	"github.com/desertthunder/spotrack/internal/services"
	"github.com/desertthunder/spotrack/internal/shared"
	"github.com/desertthunder/spotrack/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds shared dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{logger: opts.Logger, output: opts.Output}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, reportCommand, authCommand, migrateCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the config file named by the --config flag.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.ConfigStore, error) {
	path := cmd.String("config")

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}

	return &shared.ConfigStore{Config: config, Path: path}, nil
}

// openDatabase opens the configured SQLite database and applies migrations.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// buildReporter wires the report pipeline against an open database.
func (r *Runner) buildReporter(config *shared.Config, db *sql.DB) *tasks.Reporter {
	channels := tasks.ReportChannels{
		Daily:   config.Discord.DailyWebhook,
		Weekly:  config.Discord.WeeklyWebhook,
		Monthly: config.Discord.MonthlyWebhook,
		Yearly:  config.Discord.YearlyWebhook,
	}

	notifier := services.NewDiscordService(nil)
	events := repositories.NewListeningRepository(db)

	return tasks.NewReporter(events, notifier, channels, r.logger)
}

// RunDaemon starts the poll and report jobs and blocks until interrupted.
func (r *Runner) RunDaemon(ctx context.Context, cmd *cli.Command) error {
	store, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	config := store.Config

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	spotify, err := services.NewSpotifyService(config.Spotify)
	if err != nil {
		return err
	}

	tracker := tasks.NewTracker(tasks.TrackerOpts{
		Player:    spotify,
		Notifier:  services.NewDiscordService(nil),
		Creds:     store,
		Tracks:    repositories.NewTrackRepository(db),
		Artists:   repositories.NewArtistRepository(db),
		Playlists: repositories.NewPlaylistRepository(db),
		Events:    repositories.NewListeningRepository(db),
		Channel:   config.Discord.TrackingWebhook,
		Logger:    r.logger,
	})

	scheduler := tasks.NewScheduler(tracker, r.buildReporter(config, db), config.Tracker.ReportHour, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("spotrack started", "db", config.Database.Path)
	scheduler.Run(ctx)
	return nil
}

// ReportAll builds all four report windows immediately. With --print the
// reports are rendered to stdout instead of being sent to the webhooks.
func (r *Runner) ReportAll(ctx context.Context, cmd *cli.Command) error {
	store, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(store.Config)
	if err != nil {
		return err
	}
	defer db.Close()

	reporter := r.buildReporter(store.Config, db)
	now := time.Now()

	if !cmd.Bool("print") {
		reporter.SendAll(ctx, now)
		return nil
	}

	for _, window := range tasks.AllWindows(now) {
		report, err := reporter.BuildReport(window.Start, window.End)
		if err != nil {
			r.logger.Error("skipping report window", "window", window.Kind.String(), "err", err)
			continue
		}

		if _, err := fmt.Fprintln(r.output, formatter.RenderReport(report, window.Title())); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	return nil
}

// Auth walks through the OAuth2 authorization-code flow. Without --code it
// prints the authorization URL; with --code it exchanges the code and
// persists the token pair into the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	store, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	spotify, err := services.NewSpotifyService(store.Config.Spotify)
	if err != nil {
		return err
	}

	code := cmd.String("code")
	if code == "" {
		fmt.Fprintln(r.output, "Open the URL below, authorize the app, then re-run with --code <code>:")
		fmt.Fprintln(r.output, spotify.AuthURL("spotrack"))
		return nil
	}

	token, err := spotify.Exchange(ctx, code)
	if err != nil {
		return err
	}

	store.Config.Spotify.AccessToken = token.AccessToken
	store.Config.Spotify.RefreshToken = token.RefreshToken
	if err := store.Save(); err != nil {
		return err
	}

	fmt.Fprintln(r.output, "Tokens saved.")
	return nil
}

// MigrateUp applies pending migrations.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	store, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(store.Config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("migrations applied")
	return nil
}

// MigrateDown rolls back the most recent migration.
func (r *Runner) MigrateDown(ctx context.Context, cmd *cli.Command) error {
	store, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(store.Config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.logger.Info("migration rolled back")
	return nil
}

// Setup writes the embedded example config to the --config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	fmt.Fprintf(r.output, "Wrote %s. Fill in your credentials and run `spotrack auth`.\n", path)
	return nil
}
