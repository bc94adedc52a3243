package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wishlist/internal/api"
	"github.com/Kerhoff/wishlist/internal/config"
	"github.com/Kerhoff/wishlist/internal/handlers"
	"github.com/Kerhoff/wishlist/internal/metrics"
	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/repository"
	"github.com/Kerhoff/wishlist/internal/repository/filestore"
	"github.com/Kerhoff/wishlist/internal/repository/memory"
	"github.com/Kerhoff/wishlist/internal/repository/postgres"
	"github.com/Kerhoff/wishlist/internal/service"
	"github.com/Kerhoff/wishlist/internal/telegram"
	"github.com/Kerhoff/wishlist/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting wishlist service...")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	store, closeStore, err := openStore(ctx, cfg, l)
	if err != nil {
		l.Fatalf("Failed to open %s store: %v", cfg.StorageBackend, err)
	}
	store = metrics.InstrumentStore(store, m)

	// Service layer
	svc := service.New(store, l)

	seed, err := loadSeed(cfg, l)
	if err != nil {
		l.Fatalf("Failed to load roster: %v", err)
	}
	if err := svc.EnsureInitialized(ctx, seed); err != nil {
		l.Fatalf("Failed to initialize data: %v", err)
	}

	// HTTP server for the web client
	apiServer := api.NewServer(svc, l, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		Metrics:        m,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	servers := []*http.Server{httpServer}

	go serve(l, "HTTP", httpServer)

	if cfg.MetricsEnabled() {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", m.Handler())
		metricsServer := &http.Server{
			Addr:              ":" + cfg.PrometheusPort,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, metricsServer)
		go serve(l, "Metrics", metricsServer)
	}

	// Telegram bot
	botDone := make(chan struct{})
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
		registerCommands(bot, svc, l)

		go func() {
			defer close(botDone)
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	} else {
		close(botDone)
		l.Info("TELEGRAM_TOKEN not set, chat bot disabled")
	}

	l.Info("Wishlist service started successfully")

	<-ctx.Done()
	l.Info("Received shutdown signal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var result *multierror.Error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}
	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		result = multierror.Append(result, errors.New("telegram bot did not stop in time"))
	}
	if err := closeStore(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close store: %w", err))
	}

	if err := result.ErrorOrNil(); err != nil {
		l.WithError(err).Error("Unclean shutdown")
		os.Exit(1)
	}
	l.Info("Wishlist service stopped")
}

// openStore builds the configured backend. The returned func releases
// everything the store holds, including the database pool.
func openStore(ctx context.Context, cfg *config.Config, l *logrus.Logger) (repository.StateStore, func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		l.Warn("Using in-memory storage, data is lost on restart")
		s := memory.NewStore()
		return s, s.Close, nil

	case config.BackendPostgres:
		db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}
		s := postgres.NewStateStore(db.DB)
		return s, func() error {
			var result *multierror.Error
			result = multierror.Append(result, s.Close(), db.Close())
			return result.ErrorOrNil()
		}, nil

	default:
		s, err := filestore.NewStore(cfg.DataFile, l)
		if err != nil {
			return nil, nil, err
		}
		l.Infof("Using file storage at %s", s.Path())
		return s, s.Close, nil
	}
}

func loadSeed(cfg *config.Config, l *logrus.Logger) (*models.State, error) {
	if cfg.RosterFile == "" {
		return service.DefaultSeed(), nil
	}
	l.Infof("Loading roster from %s", cfg.RosterFile)
	return service.LoadSeed(cfg.RosterFile)
}

func registerCommands(bot *telegram.Bot, svc *service.Service, l *logrus.Logger) {
	ids := handlers.NewIdentities()

	bot.RegisterCommand("start", "Introduction", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", "Show all commands", handlers.NewHelpHandler(l))

	// Family
	bot.RegisterCommand("members", "Show the family roster", handlers.NewMembersHandler(svc, l))
	bot.RegisterCommand("iam", "Tell me which member you are", handlers.NewIAmHandler(svc, ids, l))

	// Wishlists
	bot.RegisterCommand("wishlist", "Show a member's wishlist", handlers.NewWishlistHandler(svc, ids, l))
	bot.RegisterCommand("wish", "Add an item to a wishlist", handlers.NewWishAddHandler(svc, l))
	bot.RegisterCommand("bought", "Toggle an item as bought", handlers.NewBoughtHandler(svc, ids, l))
	bot.RegisterCommand("unwish", "Remove an item from a wishlist", handlers.NewUnwishHandler(svc, l))
}

func serve(l *logrus.Logger, name string, srv *http.Server) {
	l.Infof("%s server listening on %s", name, srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Errorf("%s server error: %v", name, err)
	}
}
