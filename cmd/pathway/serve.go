package main

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

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/container"
	"github.com/climatevia/pathway/transport"
)

// ServeCmd starts the chat HTTP server.
type ServeCmd struct {
	Port int `help:"Port to listen on (overrides the config file's server.port)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("serve: shutting down")
		cancel()
	}()

	if cli.Config == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer app.Close()

	srv := transport.NewServer(cfg.Server, transport.Dependencies{
		Supervisor: app.Supervisor,
		Empathy:    app.Empathy,
		Delegate:   app.Team.Supervisor,
		Sessions:   app.Sessions,
		Auth:       app.Auth,
		Cache:      app.Cache,
		Metrics:    app.Metrics,
	})

	fmt.Printf("\npathway server ready on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("   Chat:    POST /chat/message, POST /chat/stream, POST /chat/delegate\n")
	fmt.Printf("   Health:  GET  /health\n")
	if app.Metrics != nil {
		fmt.Printf("   Metrics: GET  /metrics\n")
	}
	fmt.Println("\nPress Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}
}
