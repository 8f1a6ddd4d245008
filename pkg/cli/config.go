package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/adapter"
	"github.com/overleg-dev/overleg/pkg/repository"
	"github.com/overleg-dev/overleg/pkg/usecase/reminder"
	syncengine "github.com/overleg-dev/overleg/pkg/usecase/sync"
	"github.com/overleg-dev/overleg/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// config holds configuration values
type config struct {
	configDir string
	storePath string
	logLevel  string
	localOnly bool
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config-dir",
			Usage:       "Directory for config, token and local store",
			Sources:     cli.EnvVars("OVERLEG_CONFIG_DIR"),
			Destination: &cfg.configDir,
		},
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Path of the local store file",
			Sources:     cli.EnvVars("OVERLEG_STORE"),
			Destination: &cfg.storePath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("OVERLEG_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.BoolFlag{
			Name:        "local-only",
			Usage:       "Skip Drive sync, use the local store only",
			Sources:     cli.EnvVars("OVERLEG_LOCAL_ONLY"),
			Destination: &cfg.localOnly,
		},
	}
}

func (cfg *config) dir() (string, error) {
	if cfg.configDir != "" {
		return cfg.configDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve config directory")
	}
	return filepath.Join(base, "overleg"), nil
}

func (cfg *config) configPath() (string, error) {
	dir, err := cfg.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

func (cfg *config) tokenPath() (string, error) {
	dir, err := cfg.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token.json"), nil
}

// newStore creates the local store
func (cfg *config) newStore() (repository.Store, error) {
	path := cfg.storePath
	if path == "" {
		dir, err := cfg.dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "store.json")
	}
	return repository.NewFile(path)
}

// newLogger applies the configured log level as the process default
func (cfg *config) newLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

// loadAppConfig reads the YAML config file, creating defaults on first run
func (cfg *config) loadAppConfig() (*AppConfig, error) {
	path, err := cfg.configPath()
	if err != nil {
		return nil, err
	}
	return LoadAppConfig(path)
}

// oauthConfig builds the OAuth2 config for the Drive appdata scope
func (cfg *config) oauthConfig(app *AppConfig) (*oauth2.Config, error) {
	clientID := app.ClientID
	clientSecret := app.ClientSecret
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		clientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		clientSecret = v
	}
	if clientID == "" || clientSecret == "" {
		return nil, goerr.New("no OAuth client configured; set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or run 'overleg auth'")
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{drive.DriveAppdataScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// newRemote creates the Drive document store from the saved token. It
// returns nil without error when sync is disabled or not set up yet; the
// engine then runs against the local store only.
func (cfg *config) newRemote(ctx context.Context, app *AppConfig) (adapter.DocumentStore, error) {
	if cfg.localOnly {
		return nil, nil
	}

	tokenPath, err := cfg.tokenPath()
	if err != nil {
		return nil, err
	}
	token, err := tokenFromFile(tokenPath)
	if err != nil {
		logging.Default().Debug("no Drive token, running local-only", "path", tokenPath)
		return nil, nil
	}

	oc, err := cfg.oauthConfig(app)
	if err != nil {
		return nil, err
	}

	return adapter.NewDrive(ctx, oc.Client(ctx, token))
}

// newNotifier creates the notification surface from the saved preference
func (cfg *config) newNotifier(app *AppConfig) adapter.Notifier {
	return adapter.NewDesktop(app.Notifications)
}

// newScheduler creates the reminder scheduler
func (cfg *config) newScheduler(app *AppConfig, notifier adapter.Notifier, store repository.Store) (*reminder.Scheduler, error) {
	loc := time.Local
	if app.Timezone != "" {
		l, err := time.LoadLocation(app.Timezone)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid timezone in config", goerr.V("timezone", app.Timezone))
		}
		loc = l
	}
	return reminder.New(notifier,
		reminder.WithLocation(loc),
		reminder.WithStore(store),
	), nil
}

// newEngine composes the full engine with scheduler and status stream
func (cfg *config) newEngine(ctx context.Context) (*syncengine.Engine, *reminder.Scheduler, error) {
	cfg.newLogger()

	app, err := cfg.loadAppConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := cfg.newStore()
	if err != nil {
		return nil, nil, err
	}

	notifier := cfg.newNotifier(app)
	scheduler, err := cfg.newScheduler(app, notifier, store)
	if err != nil {
		return nil, nil, err
	}

	remote, err := cfg.newRemote(ctx, app)
	if err != nil {
		return nil, nil, err
	}

	opts := []syncengine.Option{
		syncengine.WithScheduler(scheduler),
		syncengine.WithStatusFunc(printStatus),
	}
	if remote != nil {
		opts = append(opts, syncengine.WithRemote(remote))
	}
	if app.DocumentName != "" {
		opts = append(opts, syncengine.WithDocumentName(app.DocumentName))
	}

	return syncengine.New(store, opts...), scheduler, nil
}
