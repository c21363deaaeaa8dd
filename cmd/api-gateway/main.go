// Package main 文章生成 HTTP 入口：同步生成、异步提交与任务查询
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

	"github.com/joho/godotenv"

	"z-article-ai-api/internal/config"
	einoobs "z-article-ai-api/internal/observability/eino"
	"z-article-ai-api/internal/wire"
	"z-article-ai-api/pkg/logger"
	"z-article-ai-api/pkg/tracer"
)

// Version 构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// syncGenerateSlack 同步生成在流水线超时之外预留的写回时间
const syncGenerateSlack = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-gateway",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
		"storage", cfg.Storage.Driver,
		"pipeline_timeout", cfg.Pipeline.Timeout,
	)

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	einoobs.Init()

	app, cleanup, err := wire.InitializeApp(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize app", err)
	}
	defer cleanup()

	// 同步生成整个请求期间都在跑流水线，写超时不能短于流水线超时
	writeTimeout := cfg.Server.HTTP.WriteTimeout
	if need := cfg.Pipeline.Timeout + syncGenerateSlack; cfg.Pipeline.Timeout > 0 && writeTimeout < need {
		log.Warn("raising http write timeout to cover synchronous generation",
			"configured", writeTimeout, "effective", need)
		writeTimeout = need
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case <-sigCtx.Done():
	case err := <-serveErr:
		log.Error("http server error", "error", err)
	}

	// 等待进行中的同步生成结束，最长一个流水线超时
	grace := 30 * time.Second
	if cfg.Pipeline.Timeout > grace {
		grace = cfg.Pipeline.Timeout
	}
	log.Info("shutting down api-gateway", "grace", grace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("api-gateway exited")
}
