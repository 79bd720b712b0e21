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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/fortis-steel/chatbot-api/cmd/mainconfig"
	"github.com/fortis-steel/chatbot-api/internal/api/router"
	"github.com/fortis-steel/chatbot-api/internal/app/bootstrap"
	"github.com/fortis-steel/chatbot-api/internal/chat"
	appconfig "github.com/fortis-steel/chatbot-api/internal/config"
	httpmiddleware "github.com/fortis-steel/chatbot-api/internal/http/middleware"
	"github.com/fortis-steel/chatbot-api/internal/leads"
	"github.com/fortis-steel/chatbot-api/internal/observability/metrics"
	"github.com/fortis-steel/chatbot-api/internal/qualification"
	"github.com/fortis-steel/chatbot-api/internal/worker/keepalive"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting fortis chatbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"version", version,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

// application is the fully wired process.
type application struct {
	handler  http.Handler
	sweeper  *leads.Sweeper
	pinger   *keepalive.Pinger
	closeFns []func() error
}

func (a *application) Close() {
	for _, fn := range a.closeFns {
		_ = fn()
	}
}

func buildApplication(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*application, error) {
	app := &application{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leadMetrics := metrics.NewLeadMetrics(reg)

	var awsCfg *aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	// Lead qualification
	store := leads.NewMemoryStore()
	notifier := bootstrap.BuildNotifier(cfg, awsCfg, leadMetrics, logger)
	app.sweeper = leads.NewSweeper(store, notifier, leads.SweeperConfig{
		IncompleteAfter: cfg.LeadIncompleteAfter,
		TTL:             cfg.LeadSessionTTL,
		Interval:        cfg.LeadSweepInterval,
	}, leadMetrics, logger)
	policy := qualification.NewPolicy(store, notifier, qualification.Config{
		Threshold: cfg.LeadAmountThreshold,
	}, logger)

	// AI replies
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		app.closeFns = append(app.closeFns, redisClient.Close)
	}
	llm, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closer, ok := llm.(interface{ Close() error }); ok {
		app.closeFns = append(app.closeFns, closer.Close)
	}
	replier := bootstrap.BuildReplier(llm, bootstrap.BuildTranscriptStore(redisClient, cfg), cfg, leadMetrics, logger)

	// HTTP
	service := chat.NewService(policy, replier, app.sweeper, leadMetrics, logger)
	chatHandler := chat.NewHandler(service, store, notifier, chat.Info{
		Name:    cfg.ServiceName,
		Version: version,
		Env:     cfg.Env,
	}, logger)
	app.handler = router.New(&router.Config{
		Logger:         logger,
		ChatHandler:    chatHandler,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORS: httpmiddleware.CORSPolicy{
			Origins: cfg.CORSAllowedOrigins,
			Headers: cfg.CORSAllowedHeaders,
			MaxAge:  cfg.CORSMaxAge,
		},
		StaticDir: cfg.StaticDir,
	})

	app.pinger = keepalive.NewPinger(cfg.KeepAliveURL, cfg.KeepAliveInterval, nil, logger)

	logger.Info("application wired",
		"notifier_backend", notifier.Backend(),
		"ai_configured", replier.Configured(),
		"redis", redisClient != nil,
		"threshold", policy.Threshold(),
	)
	return app, nil
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return app.sweeper.Run(gctx) })
	g.Go(func() error { return app.pinger.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
