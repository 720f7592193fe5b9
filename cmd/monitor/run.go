package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"linkmon/internal/cache"
	"linkmon/internal/config"
	"linkmon/internal/database"
	"linkmon/internal/monitor"
	"linkmon/internal/ping"
	"linkmon/internal/transport"
	"linkmon/internal/web"
)

func runMonitor(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return err
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := transport.NewClient(cfg.APIURL, cfg.RequestTimeout, cfg.Providers)
	placeholder := ping.NewPlaceholder(ping.New(), cfg.PingHosts, cfg.PingTimeout)
	opts := []monitor.Option{
		monitor.WithArchive(db),
		monitor.WithPlaceholder(placeholder),
	}

	if cfg.RedisAddr != "" {
		mirror, err := cache.NewMirror(cfg.RedisAddr, cfg.RedisTTL)
		if err != nil {
			log.Printf("Snapshot mirror disabled: %v", err)
		} else {
			defer mirror.Close()
			go mirror.Run(ctx)
			opts = append(opts, monitor.WithRenderHook(mirror.Hook))
			log.Printf("Mirroring link state to redis at %s", cfg.RedisAddr)
		}
	}

	mon := monitor.New(cfg, client, opts...)
	if err := mon.Start(); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	webServer := web.New(mon, cfg.Port)
	go func() {
		if err := webServer.Start(); err != nil {
			log.Fatalf("Failed to start web server: %v", err)
		}
	}()

	log.Printf("Web interface available at http://localhost:%d", cfg.Port)

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Web server shutdown: %v", err)
	}

	mon.Stop()
	mon.Wait()
	return nil
}
