// @title           Design Order API
// @version         1.0.0
// @description     Order wizard, Stripe checkout and fulfillment backend for custom design orders.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an operator JWT.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"design-order-backend/internal/checkout"
	"design-order-backend/internal/config"
	"design-order-backend/internal/database"
	"design-order-backend/internal/draft"
	"design-order-backend/internal/handlers"
	"design-order-backend/internal/notify"
	"design-order-backend/internal/payments"
	"design-order-backend/internal/services"
	"design-order-backend/internal/supabase"
	"design-order-backend/internal/wizard"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	app := &cli.App{
		Name:  "design-order-backend",
		Usage: "order wizard and fulfillment API",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files to load before reading the environment",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (applies migrations when DATABASE_URL is set)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("exiting")
	}
}

func loadConfig(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func migrate(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required to run migrations")
	}
	return runMigrations(c.Context, cfg.DatabaseURL, log)
}

func runMigrations(ctx context.Context, dbURL string, log logrus.FieldLogger) error {
	migrator, err := database.NewMigrator(dbURL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations completed successfully")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	go app.registry.Run(ctx, sweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router(cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// application holds the wired collaborators. Optional integrations that are
// not configured stay nil and their routes answer 503.
type application struct {
	db       *supabase.DatabaseClient
	redis    *draft.RedisSlot
	registry *wizard.Registry
	// fulfillment is kept to drain background confirmation emails on exit.
	fulfillment *services.FulfillmentService

	wizard   *handlers.WizardHandler
	checkout *handlers.CheckoutHandler
	orders   *handlers.OrdersHandler
	webhook  *handlers.WebhookHandler
	admin    *handlers.AdminHandler
	health   *handlers.HealthHandler
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*application, error) {
	app := &application{}
	deps := map[string]handlers.Pinger{}

	var (
		orderRepo   checkout.OrderRepository
		orderReader handlers.OrderReader
		recorder    handlers.PaymentRecorder
		fulfillment handlers.Fulfillment
		mailer      services.Mailer
	)

	search, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize supabase client: %w", err)
	}
	storage := supabase.NewStorageClient(cfg.SupabaseURL, cfg.StorageKey(), cfg.ReferencesBucket, cfg.DeliverablesBucket)
	stripeClient := payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set: orders will not be recorded and fulfillment routes are disabled")
	} else {
		if err := runMigrations(ctx, cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
		db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database client: %w", err)
		}
		app.db = db
		orderRepo, orderReader = db, db
		deps["database"] = db
	}

	var slot draft.Slot
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set: drafts are kept in memory and lost on restart")
		slot = draft.NewMemorySlot()
	} else {
		app.redis = draft.NewRedisSlot(cfg.RedisAddr, cfg.DraftTTL)
		slot = app.redis
		deps["drafts"] = app.redis
	}

	if cfg.ResendAPIKey == "" {
		log.Warn("RESEND_API_KEY not set: confirmation emails are disabled")
	} else {
		mailer = notify.NewClient(cfg.ResendBaseURL, cfg.ResendAPIKey)
	}

	if app.db != nil {
		svc := services.NewFulfillmentService(app.db, mailer, storage, cfg.EmailFrom, cfg.AppURL, log)
		recorder, fulfillment = svc, svc
		app.fulfillment = svc
	}

	checkoutService := checkout.NewService(stripeClient, orderRepo, cfg.AppURL, log)
	handoff := checkout.NewHandoff(checkoutService, storage, log)
	app.registry = wizard.NewRegistry(draft.NewPersister(slot), handoff, log, cfg.DraftIdleTimeout)

	app.wizard = handlers.NewWizardHandler(app.registry, int(cfg.DraftTTL.Seconds()), cfg.IsProduction(), log)
	app.checkout = handlers.NewCheckoutHandler(checkoutService, checkout.NewStatusLookup(checkoutService, orderReader), app.registry, log)
	app.orders = handlers.NewOrdersHandler(orderReader, search, storage, log)
	app.webhook = handlers.NewWebhookHandler(stripeClient, recorder, log)
	app.admin = handlers.NewAdminHandler(fulfillment, log)
	app.health = handlers.NewHealthHandler(deps)
	return app, nil
}

func (a *application) close() {
	if a.fulfillment != nil {
		a.fulfillment.Wait()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
