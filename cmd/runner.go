package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listbridge/internal/formatter"
	"github.com/desertthunder/listbridge/internal/mapping"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/repositories"
	"github.com/desertthunder/listbridge/internal/services"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/desertthunder/listbridge/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// ProviderYouTubePublic selects the read-only public playlist reader as a source.
const ProviderYouTubePublic = "youtube-public"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	providers  map[string]services.Provider
	openURL    func(string) error
	db         *sql.DB
	ownsDB     bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	// Config skips loading config.toml when set.
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer

	// Providers replaces the OAuth-backed provider clients by name.
	Providers map[string]services.Provider

	// DB replaces the configured database. The Runner does not close it.
	DB      *sql.DB
	OpenURL func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		providers:  opts.Providers,
		openURL:    opts.OpenURL,
		db:         opts.DB,
	}
}

// SetLogger replaces the logger, e.g. with a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database opened by the Runner.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, collectionCommand, matchCommand,
		transferCommand, reportsCommand, quotaCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// action loads configuration before running fn.
func (r *Runner) action(fn cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.prepare(cmd); err != nil {
			return err
		}
		return fn(ctx, cmd)
	}
}

func (r *Runner) prepare(cmd *cli.Command) error {
	if path := cmd.String("config"); path != "" && r.config == nil {
		r.configPath = path
	}
	if r.configPath == "" {
		r.configPath = "config.toml"
	}

	if r.config == nil {
		config, err := shared.LoadConfig(r.configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
			config = shared.DefaultConfig()
		case err != nil:
			return err
		}
		if err := shared.ApplyEnv(config, ".env"); err != nil {
			return err
		}
		if err := config.Validate(); err != nil {
			return err
		}
		r.config = config
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
		return nil
	}
	return shared.ApplyLogLevel(r.logger, r.config.Log.Level)
}

// database opens the configured database on first use and applies migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

// provider resolves a provider by name. playlists configures the public YouTube reader.
func (r *Runner) provider(ctx context.Context, name string, playlists []string) (services.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if p, ok := r.providers[name]; ok {
		return p, nil
	}

	switch name {
	case models.ProviderSpotify:
		conf, err := services.SpotifyOAuthConfig(r.config.Credentials.Spotify)
		if err != nil {
			return nil, err
		}
		client, err := r.oauthClient(ctx, conf, name)
		if err != nil {
			return nil, err
		}
		return services.NewSpotifyProvider(services.SpotifyOpts{HTTPClient: client, Logger: r.logger}), nil

	case models.ProviderYouTube, "yt":
		conf, err := services.GoogleOAuthConfig(r.config.Credentials.Google.OAuthClientConfig)
		if err != nil {
			return nil, err
		}
		client, err := r.oauthClient(ctx, conf, models.ProviderYouTube)
		if err != nil {
			return nil, err
		}
		quota, err := r.quotaTracker()
		if err != nil {
			return nil, err
		}
		yt, err := services.NewYouTubeProvider(ctx, services.YouTubeOpts{HTTPClient: client, Quota: quota, Logger: r.logger})
		if err != nil {
			return nil, err
		}
		return yt, nil

	case ProviderYouTubePublic:
		if len(playlists) == 0 {
			return nil, fmt.Errorf("%w: --playlist is required for %s", shared.ErrMissingArgument, ProviderYouTubePublic)
		}
		return services.NewPublicYouTubeReader(playlists), nil

	case "":
		return nil, fmt.Errorf("%w: provider", shared.ErrMissingArgument)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q (spotify, youtube or %s)", shared.ErrInvalidArgument, name, ProviderYouTubePublic)
	}
}

func (r *Runner) oauthClient(ctx context.Context, conf *oauth2.Config, provider string) (*http.Client, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return services.ClientFromStore(ctx, conf, repositories.NewTokenRepository(db), provider, r.logger)
}

func (r *Runner) quotaTracker() (*services.QuotaTracker, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return services.NewQuotaTracker(r.config.Credentials.Google.DailyQuota, repositories.NewQuotaRepository(db)), nil
}

func (r *Runner) thresholds() mapping.Thresholds {
	return mapping.Thresholds{AutoAccept: r.config.Matching.AutoAccept, Review: r.config.Matching.Review}
}

// orchestrator wires the engine to the database repositories.
func (r *Runner) orchestrator(observer tasks.Observer) (*tasks.Orchestrator, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	cache, err := mapping.NewSearchCache(r.config.Matching.CacheSize)
	if err != nil {
		return nil, err
	}
	searcher, err := mapping.NewSearcher(mapping.SearcherOpts{
		Cache:      cache,
		Thresholds: r.thresholds(),
		Logger:     shared.WithLogger(r.logger, "component", "searcher"),
	})
	if err != nil {
		return nil, err
	}

	return tasks.NewOrchestrator(tasks.OrchestratorOpts{
		Searcher:          searcher,
		Checkpoints:       repositories.NewCheckpointRepository(db),
		Matches:           repositories.NewMatchRepository(db),
		Reviews:           repositories.NewReviewRepository(db),
		Reports:           repositories.NewReportRepository(db),
		Observer:          observer,
		Logger:            shared.WithLogger(r.logger, "component", "orchestrator"),
		AppName:           r.config.Transfer.AppName,
		Locale:            r.config.Matching.Locale,
		DefaultVisibility: models.ParseVisibility(r.config.Transfer.Visibility),
	})
}

// sourceCollection reads the collection named by --file, or by --from and --playlist.
func (r *Runner) sourceCollection(ctx context.Context, cmd *cli.Command) (*models.Collection, error) {
	if path := cmd.String("file"); path != "" {
		r.logger.Info("reading collection", "path", path)
		return formatter.ReadCollection(path)
	}

	ids := cmd.StringSlice("playlist")
	src, err := r.provider(ctx, cmd.String("from"), ids)
	if err != nil {
		return nil, err
	}
	r.logger.Info("fetching collection", "provider", src.Name(), "playlists", len(ids))
	return services.FetchCollection(ctx, src, ids)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := formatter.MarshalJSON(data, pretty)
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
