package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/careerflow/careerflow-cli/internal/api"
	"github.com/careerflow/careerflow-cli/internal/app"
	"github.com/careerflow/careerflow-cli/internal/auth"
	"github.com/careerflow/careerflow-cli/internal/config"
	"github.com/careerflow/careerflow-cli/internal/render"
	"github.com/careerflow/careerflow-cli/internal/store"
	"github.com/careerflow/careerflow-cli/internal/transport"
)

// appContext bundles the wired components a command needs. Build one
// per invocation with newAppContext and Close it when done.
type appContext struct {
	cfg        *config.Config
	logger     *slog.Logger
	transport  transport.Client
	sessions   *auth.Controller
	controller *app.Controller
	history    store.Store
	renderer   render.Renderer
}

// newAppContext loads configuration, applies flag overrides and wires
// the full client stack: transport → backend client → session
// controller → view controller.
func newAppContext(cmd *cobra.Command) (*appContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.RequestTimeout, _ = cmd.Flags().GetDuration("timeout")
	}

	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	format, _ := cmd.Flags().GetString("format")
	renderer, err := render.New(format)
	if err != nil {
		return nil, err
	}

	hc, err := transport.NewClient(transport.ClientOptions{
		Timeout: cfg.RequestTimeout,
		MaxRPS:  cfg.MaxRPS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	backend := api.New(cfg.APIBaseURL, hc,
		api.WithCacheTTL(cfg.CacheTTL),
		api.WithLogger(logger),
	)

	provider := auth.NewRESTProvider(cfg.IdentityBaseURL, cfg.IdentityAPIKey, hc)
	sessions := auth.NewController(provider,
		auth.WithLogger(logger),
		auth.WithTokenCache(auth.NewTokenCache(cfg.TokenPath())),
	)

	history, err := store.NewSQLiteStore(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history store %q: %w", cfg.HistoryPath(), err)
	}

	controller := app.NewController(backend, sessions,
		app.WithLogger(logger),
		app.WithHistory(history),
		app.WithRevertDelay(cfg.RevertDelay),
	)

	return &appContext{
		cfg:        cfg,
		logger:     logger,
		transport:  hc,
		sessions:   sessions,
		controller: controller,
		history:    history,
		renderer:   renderer,
	}, nil
}

func (a *appContext) Close() {
	stats := a.transport.Stats()
	if stats.TotalRequests > 0 {
		a.logger.Debug("transport stats",
			slog.Int64("requests", stats.TotalRequests),
			slog.Duration("avg_duration", stats.AvgDuration),
		)
	}
	a.controller.Close()
	if err := a.history.Close(); err != nil {
		a.logger.Warn("failed to close history store", "error", err)
	}
}

// render writes the controller's current view to stdout, or to the
// file named by --output.
func (a *appContext) render(cmd *cobra.Command) error {
	out, closeFn, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	return a.renderer.Render(a.controller.State(), out)
}

func outputWriter(cmd *cobra.Command) (io.Writer, func(), error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
