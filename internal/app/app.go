package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pocketkit/internal/config"
	"pocketkit/internal/logger"
	"pocketkit/internal/models"
	"pocketkit/internal/pocket"
)

// Authenticator runs one of the interactive login flows.
type Authenticator interface {
	LoginLocal(ctx context.Context) (models.Authorization, error)
	LoginBrowser(ctx context.Context) (models.Authorization, error)
}

// App holds the application's core dependencies and configuration.
type App struct {
	Config        *config.Config
	ConfigPath    string
	PocketClient  pocket.ClientInterface
	Authenticator Authenticator
	Logger        *logger.Logger
	Out           io.Writer
}

// Option is a functional option for configuring the App.
type Option func(*App)

// NewApp creates a new App instance with the given options.
func NewApp(opts ...Option) *App {
	app := &App{
		Logger: logger.Nop(),
		Out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// WithConfig sets the application configuration and the file credentials are saved to.
func WithConfig(cfg *config.Config, path string) Option {
	return func(a *App) {
		a.Config = cfg
		a.ConfigPath = path
	}
}

// WithPocketClient sets the Pocket API client.
func WithPocketClient(client pocket.ClientInterface) Option {
	return func(a *App) {
		a.PocketClient = client
	}
}

// WithAuthenticator sets the login flow driver.
func WithAuthenticator(auth Authenticator) Option {
	return func(a *App) {
		a.Authenticator = auth
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithOutput sets where command results are written.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.Out = w
	}
}

// Login runs the configured login flow and saves the resulting credentials.
func (a *App) Login(ctx context.Context, mode string) (models.Authorization, error) {
	var (
		auth models.Authorization
		err  error
	)
	switch mode {
	case config.LoginModeLocal:
		auth, err = a.Authenticator.LoginLocal(ctx)
	case config.LoginModeBrowser:
		auth, err = a.Authenticator.LoginBrowser(ctx)
	default:
		return models.Authorization{}, fmt.Errorf("unknown login mode: %s", mode)
	}
	if err != nil {
		return models.Authorization{}, fmt.Errorf("login failed: %w", err)
	}

	if a.ConfigPath != "" {
		if err := a.Config.SaveCredentials(a.ConfigPath, auth); err != nil {
			return auth, err
		}
		a.Logger.Infof("Saved credentials for %s to %s", auth.Username, a.ConfigPath)
	}

	if _, err := fmt.Fprintf(a.Out, "Logged in as %s\n", auth.Username); err != nil {
		return auth, err
	}
	return auth, nil
}

// Add saves an item and prints the API result.
func (a *App) Add(ctx context.Context, req models.AddRequest) error {
	res, err := a.PocketClient.Add(ctx, req)
	if err != nil {
		return err
	}
	return a.writeJSON(res)
}

// Retrieve prints the items matching req.
func (a *App) Retrieve(ctx context.Context, req models.RetrieveRequest) error {
	res, err := a.PocketClient.Retrieve(ctx, req)
	if err != nil {
		return err
	}
	return a.writeJSON(res)
}

// Modify applies one named action to each item id.
func (a *App) Modify(ctx context.Context, action string, itemIDs ...string) error {
	if len(itemIDs) == 0 {
		return fmt.Errorf("no item ids given for action %s", action)
	}

	actions := make([]models.Action, 0, len(itemIDs))
	for _, id := range itemIDs {
		act, err := ActionFor(action, id)
		if err != nil {
			return err
		}
		actions = append(actions, act)
	}

	res, err := a.PocketClient.Modify(ctx, models.ModifyRequest{Actions: actions})
	if err != nil {
		return err
	}
	return a.writeJSON(res)
}

// ActionFor maps a command name onto a modify action for one item.
func ActionFor(action, itemID string) (models.Action, error) {
	switch action {
	case "archive":
		return models.ArchiveAction(itemID), nil
	case "readd":
		return models.ReaddAction(itemID), nil
	case "favorite":
		return models.FavoriteAction(itemID), nil
	case "unfavorite":
		return models.UnfavoriteAction(itemID), nil
	case "delete":
		return models.DeleteAction(itemID), nil
	case "tags_clear":
		return models.TagsClearAction(itemID), nil
	default:
		return models.Action{}, fmt.Errorf("unknown action: %s", action)
	}
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
