package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/ncecere/copilot_usage_dashboard/internal/app"
	"github.com/ncecere/copilot_usage_dashboard/internal/config"
	"github.com/ncecere/copilot_usage_dashboard/internal/httpserver"
	"github.com/ncecere/copilot_usage_dashboard/internal/observability"
	"github.com/ncecere/copilot_usage_dashboard/internal/redisclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient = redisclient.New(cfg.Cache)
		if err := redisclient.Ping(ctx, redisClient); err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer redisClient.Close()
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		log.Fatalf("setup observability: %v", err)
	}
	if obs != nil {
		defer obs.Shutdown(ctx)
	}

	container, err := app.NewContainer(ctx, cfg, redisClient, obs)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}

	server, err := httpserver.New(container)
	if err != nil {
		log.Fatalf("construct server: %v", err)
	}

	log.Printf("dashboard listening on %s (source=%s)", cfg.Server.ListenAddr, container.SourceName)
	if err := server.Listen(ctx); err != nil && err != context.Canceled {
		log.Fatalf("server stopped: %v", err)
	}
}
