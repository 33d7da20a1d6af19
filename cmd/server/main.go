package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/adapters/parser"
	"wynn-raid-parser/internal/cache"
	"wynn-raid-parser/internal/core/services"
	applog "wynn-raid-parser/internal/log"
	"wynn-raid-parser/internal/mojang"
	"wynn-raid-parser/internal/pkg/config"
	"wynn-raid-parser/internal/server"
	"wynn-raid-parser/internal/server/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	configPath := flag.String("config", config.DefaultConfigFile, "Path to config file")
	detach := flag.Bool("daemon", false, "Run in background (unix only)")
	pidFile := flag.String("pidfile", "raid-server.pid", "PID file used with -daemon")
	logFile := flag.String("logfile", "raid-server.log", "Log file used with -daemon")
	flag.Parse()

	if *detach {
		child, release, err := daemonize(*pidFile, *logFile)
		if err != nil {
			return fmt.Errorf("failed to daemonize: %w", err)
		}
		if !child {
			return nil
		}
		defer release()
	}

	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера
	logger := applog.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	fixedReporter, _ := cfg.ReporterUUID()

	// 4. Инициализация зависимостей
	raidStore := server.NewRaidStore()
	cacheStore := cache.NewCacheStore()
	profiles := mojang.NewClient(mojang.Config{
		BaseURL:    cfg.Mojang.BaseURL,
		Timeout:    cfg.Mojang.Timeout,
		CacheTTL:   cfg.Mojang.CacheTTL,
		MaxRetries: cfg.Mojang.MaxRetries,
	},
		mojang.WithLogger(logger),
		mojang.WithCache(cacheStore),
	)

	processor := usecase.NewProcessLineUseCase(
		parser.NewJsonParser(),
		services.NewExtractionService(services.WithExtractionLogger(logger)),
		services.NewReporterResolver(fixedReporter, cfg.Reporter.Username, profiles),
		usecase.WithLogger(logger),
		usecase.WithMaxLineBytes(cfg.Processing.MaxLineBytes),
	)
	if fixedReporter == uuid.Nil && cfg.Reporter.Username == "" {
		slog.Warn("No reporter configured, lines without X-Reporter-UUID will be rejected")
	}

	// 5. Создание HTTP-сервера
	srv, err := server.New(cfg, processor, raidStore, cacheStore,
		server.WithLogger(logger),
		server.WithProfileHealth(profiles),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("Signal received, shutting down...")
	case <-serverDone:
		return fmt.Errorf("server stopped unexpectedly")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("Application exited gracefully")
	return nil
}
