package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/auth"
	authPostgres "github.com/hrmspro/hrms/internal/auth/postgres"
	"github.com/hrmspro/hrms/internal/dashboard"
	dashboardPostgres "github.com/hrmspro/hrms/internal/dashboard/postgres"
	"github.com/hrmspro/hrms/internal/database"
	"github.com/hrmspro/hrms/internal/migrations"
	"github.com/hrmspro/hrms/internal/resource"
	resourcePostgres "github.com/hrmspro/hrms/internal/resource/postgres"
	"github.com/hrmspro/hrms/internal/telemetry"
	"github.com/hrmspro/hrms/internal/transport/rest"
	"github.com/hrmspro/hrms/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var autoMigrate bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the HRMS REST API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer(cmd.Context())
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Shutdown func(context.Context) error
}

func startHTTPServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	setupServerLogger(cfg)

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "version", internal.Version)

	server := &http.Server{
		Addr:              addr,
		Handler:           rest.Instrument(deps.Router),
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := deps.Shutdown(flushCtx); err != nil {
		deps.Logger.Warn("Tracer shutdown error", "error", err)
	}
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
	return runErr
}

// setupServerLogger switches the process logger to the server's configured
// sink: JSON on stdout for production or LOG_FORMAT=json, text otherwise.
func setupServerLogger(c *internal.Config) {
	env := c.Env
	if c.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Setup(os.Stdout, env, c.Observability.Logging.Level)
}

func initializeDependencies(ctx context.Context, c *internal.Config) (*Dependencies, error) {
	lg := logger.LoggerWrapper()

	db, err := database.Open(c.Database)
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := migrateUp(ctx, db, lg); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	gdb, err := database.Gorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	authService := auth.NewService(
		authPostgres.NewRepository(gdb),
		auth.NewJWTTokenGenerator(
			c.Security.AccessTokenSecret,
			c.Security.RefreshTokenSecret,
			c.Security.AccessTokenDuration,
			c.Security.RefreshTokenDuration,
		),
		c.Security.BCryptCost,
	)
	resourceService := resource.NewService(resourcePostgres.NewResourceRepository(db), resource.NewSchemas(), lg)
	dashboardService := dashboard.NewService(dashboardPostgres.NewDashboardRepository(db))

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:      auth.NewHandler(authService),
		Resources: resource.NewHandler(resourceService),
		Dashboard: dashboard.NewHandler(dashboardService),
	}, c.Security, c.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config:   c,
		DB:       db,
		Router:   router,
		Logger:   lg,
		Shutdown: telemetry.Setup(c.Observability.Tracing, lg),
	}, nil
}

func migrateUp(ctx context.Context, db *sqlx.DB, lg *slog.Logger) error {
	dialect, err := database.Dialect(db)
	if err != nil {
		return err
	}
	results, err := migrations.Up(ctx, db.DB, dialect)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, r := range results {
		lg.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}
