package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nattapol/villaharvester/config"
	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/browser"
	"nattapol/villaharvester/internal/harvest"
	"nattapol/villaharvester/internal/store"
	"nattapol/villaharvester/logger"
	"nattapol/villaharvester/services/cache"
	"nattapol/villaharvester/services/proxy"
	"nattapol/villaharvester/services/publisher"
	"nattapol/villaharvester/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("locations", len(cfg.Locations)).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// "harvest", "enrich" or "all"
	mode := os.Getenv("RUN_MODE")
	if mode == "" {
		mode = "all"
	}

	pipelineDone := make(chan error, 1)
	go func() {
		pipelineDone <- runPipeline(ctx, mode, cfg, services)
	}()

	// Wait for shutdown signal or pipeline completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-pipelineDone
	case err := <-pipelineDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Pipeline exited with error")
		} else {
			log.Info().Msg("Pipeline finished")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}

// runPipeline runs the harvest and enrichment phases per the mode.
func runPipeline(ctx context.Context, mode string, cfg *config.Config, services *Services) error {
	if mode == "harvest" || mode == "all" {
		page := services.Session.NewPage()
		harvester := harvest.New(page, services.Store, services.Cache, cfg)
		err := harvester.Run(ctx)
		page.Close()
		if err != nil {
			return err
		}
	}

	if mode == "enrich" || mode == "all" {
		w := worker.NewWorker(services.Session, services.Store, services.Publisher, cfg)
		if err := w.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Services holds all the initialized services
type Services struct {
	Store     store.RecordStore
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Session   *browser.Session
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Session != nil {
		s.Session.Close()
	}
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Pick a proxy before anything opens outbound connections.
	if len(cfg.ProxyServers) > 0 {
		manager := proxy.NewManager(cfg.ProxyServers)
		fastest, err := manager.Fastest()
		if err != nil {
			logger.Warn("No working proxy, connecting directly: %v", err)
		} else {
			cfg.ProxyServer = fastest
			if err := helpers.UseProxy(fastest); err != nil {
				return nil, err
			}
			logger.Info("Routing traffic through proxy %s", fastest)
		}
	}

	recordStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	services.Store = recordStore
	logger.Info("Connected to Postgres")

	// Initialize cache service
	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher
	services.Publisher = publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Launch the browser last so a config failure does not leave a
	// zombie Chrome behind
	session, err := browser.NewSession(cfg)
	if err != nil {
		services.Cleanup()
		return nil, err
	}
	services.Session = session

	return services, nil
}
