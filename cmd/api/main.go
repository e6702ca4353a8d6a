package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mehdi-chebbi/k8s-chat/internal/api/router"
	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
	appconfig "github.com/mehdi-chebbi/k8s-chat/internal/config"
	"github.com/mehdi-chebbi/k8s-chat/internal/http/handlers"
	"github.com/mehdi-chebbi/k8s-chat/internal/kube"
	"github.com/mehdi-chebbi/k8s-chat/internal/llm"
	"github.com/mehdi-chebbi/k8s-chat/internal/observability/metrics"
	"github.com/mehdi-chebbi/k8s-chat/internal/store"
	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting k8s-chat API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(context.Background()); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	st := store.New(
		store.NewPostgres(db),
		store.NewMirror(redisClient, cfg.SessionTTL),
		logger,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	llmTimeouts := llm.Timeouts{
		Suggest:  cfg.LLMSuggestTimeout,
		FollowUp: cfg.LLMFollowUpTimeout,
		Analyze:  cfg.LLMAnalyzeTimeout,
		Connect:  cfg.LLMConnectTimeout,
	}

	// A fresh provider per turn so activating a different LLM configuration
	// takes effect without a restart.
	providerFactory := func(ctx context.Context) (chat.Provider, error) {
		llmCfg, err := st.ActiveLLMConfig(ctx)
		if err != nil {
			return nil, err
		}
		return llm.New(llmCfg,
			llm.WithTimeouts(llmTimeouts),
			llm.WithHistoryWindow(cfg.HistoryWindow),
			llm.WithLogger(logger),
			llm.WithFallbackHook(pipelineMetrics.ObserveProviderFallback),
		), nil
	}

	// Likewise the executor follows the active kubeconfig profile.
	runnerFactory := func(ctx context.Context) (chat.CommandRunner, error) {
		kubeconfigPath := cfg.KubeconfigPath
		if profile, err := st.ActiveKubeconfig(ctx); err == nil && profile.Path != "" {
			kubeconfigPath = profile.Path
		} else if err != nil {
			logger.Warn("kubeconfig lookup failed, using default", "error", err)
		}
		return kube.NewExecutor(kube.Options{
			Binary:         cfg.KubectlBin,
			KubeconfigPath: kubeconfigPath,
			Timeout:        cfg.CommandTimeout,
			ProbeTimeout:   cfg.ProbeTimeout,
			Logger:         logger,
		}), nil
	}

	orchestrator := chat.NewOrchestrator(providerFactory, runnerFactory, st,
		chat.WithLogger(logger),
		chat.WithMetrics(pipelineMetrics),
		chat.WithFollowUpCategories(cfg.FollowUpCategories),
	)

	healthExecutor := kube.NewExecutor(kube.Options{
		Binary:         cfg.KubectlBin,
		KubeconfigPath: cfg.KubeconfigPath,
		Timeout:        cfg.CommandTimeout,
		ProbeTimeout:   cfg.ProbeTimeout,
		Logger:         logger,
	})

	routerCfg := &router.Config{
		Logger:  logger,
		Chat:    handlers.NewChatHandler(orchestrator, logger),
		LLMTest: handlers.NewLLMTestHandler(st, nil, logger),
		Health:  handlers.NewHealthHandler(healthExecutor, cfg.HealthCacheWindow),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			Registry: registry,
		}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
