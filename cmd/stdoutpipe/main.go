package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jmorran/stdoutchan"
	"github.com/jmorran/stdoutchan/internal/config"
	"github.com/jmorran/stdoutchan/internal/debughttp"
	"github.com/jmorran/stdoutchan/internal/logging"
	"github.com/jmorran/stdoutchan/ratelimit"
)

const maxLineBytes = 1024 * 1024

func main() {
	logger, err := logging.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	opts := []stdoutchan.Option[string]{
		stdoutchan.WithName[string]("stdoutpipe"),
		stdoutchan.WithLogger[string](logger),
	}
	if cfg.RateLimitLPS > 0 {
		limiter := ratelimit.NewWithBurst(cfg.RateLimitLPS, time.Second, cfg.RateLimitBurst)
		opts = append(opts, stdoutchan.WithRateLimiter[string](limiter))
		logger.Info("rate limit enabled",
			zap.Int("lines_per_second", cfg.RateLimitLPS),
			zap.Int("burst", cfg.RateLimitBurst))
	}
	ch := stdoutchan.New(opts...)
	start := time.Now()

	var srv *http.Server
	if cfg.DebugServerEnabled {
		router := debughttp.NewRouter(logger, func() debughttp.Health {
			outDepth, errDepth := ch.Depths()
			return debughttp.Health{
				UptimeSeconds:    time.Since(start).Seconds(),
				StdoutQueueDepth: outDepth,
				StderrQueueDepth: errDepth,
				Closed:           ch.Closed(),
			}
		})
		srv = &http.Server{
			Addr:         ":" + cfg.DebugServerPort,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("debug server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("debug server", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanDone := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			ch.Send(scanner.Text())
		}
		scanDone <- scanner.Err()
	}()

	select {
	case <-ctx.Done():
		logger.Info("signal received, draining")
	case err := <-scanDone:
		if err != nil {
			ch.SendErr("read stdin: " + err.Error())
			logger.Error("stdin read", zap.Error(err))
		}
	}

	exitCode := 0
	if err := ch.Close(); err != nil {
		logger.Error("pipe close", zap.Error(err))
		exitCode = 1
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("debug server shutdown", zap.Error(err))
		}
		cancel()
	}

	logger.Info("pipe complete", zap.Duration("uptime", time.Since(start)))
	if exitCode != 0 {
		_ = logger.Sync()
		os.Exit(exitCode)
	}
}
