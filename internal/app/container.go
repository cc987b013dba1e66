package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/ncecere/copilot_usage_dashboard/internal/cache"
	"github.com/ncecere/copilot_usage_dashboard/internal/config"
	"github.com/ncecere/copilot_usage_dashboard/internal/dynamostore"
	"github.com/ncecere/copilot_usage_dashboard/internal/githubapi"
	"github.com/ncecere/copilot_usage_dashboard/internal/observability"
	"github.com/ncecere/copilot_usage_dashboard/internal/services/seatsvc"
	usagesvc "github.com/ncecere/copilot_usage_dashboard/internal/services/usage"
	"github.com/ncecere/copilot_usage_dashboard/internal/source"
)

// Container aggregates runtime dependencies for handlers and services. The
// metrics and seats sources are selected once here and reused for the
// process lifetime.
type Container struct {
	Config        *config.Config
	Redis         *redis.Client
	Cache         *cache.ResponseCache
	Observability *observability.Provider
	Usage         *usagesvc.Service
	Seats         *seatsvc.Service
	SourceName    string
}

// NewContainer builds a dependency container from the provided primitives.
// redisClient and obs may be nil.
func NewContainer(ctx context.Context, cfg *config.Config, redisClient *redis.Client, obs *observability.Provider) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var responseCache *cache.ResponseCache
	if cfg.Cache.Enabled && redisClient != nil {
		responseCache = cache.NewResponseCache(redisClient, cfg.Cache.TTL)
	}

	metricsSource, seatsSource, sourceName, err := buildSources(ctx, cfg)
	if err != nil {
		return nil, err
	}

	scope := source.Scope(cfg.GitHub.Scope)
	usageService := usagesvc.NewService(usagesvc.Options{
		Source:        metricsSource,
		SourceName:    sourceName,
		Cache:         responseCache,
		Observability: obs,
		Scope:         scope,
		Enterprise:    cfg.GitHub.Enterprise,
		Organization:  cfg.GitHub.Organization,
	})
	seatsService := seatsvc.NewService(seatsvc.Options{
		Source:        seatsSource,
		SourceName:    sourceName,
		Cache:         responseCache,
		Observability: obs,
		Scope:         scope,
		Enterprise:    cfg.GitHub.Enterprise,
		Organization:  cfg.GitHub.Organization,
	})

	return &Container{
		Config:        cfg,
		Redis:         redisClient,
		Cache:         responseCache,
		Observability: obs,
		Usage:         usageService,
		Seats:         seatsService,
		SourceName:    sourceName,
	}, nil
}

func buildSources(ctx context.Context, cfg *config.Config) (source.MetricsSource, source.SeatsSource, string, error) {
	if cfg.Dynamo.Enabled {
		store, err := dynamostore.New(ctx, dynamostore.Options{
			Region:          cfg.Dynamo.Region,
			Endpoint:        cfg.Dynamo.Endpoint,
			Profile:         cfg.Dynamo.Profile,
			AccessKeyID:     cfg.Dynamo.AccessKeyID,
			SecretAccessKey: cfg.Dynamo.SecretAccessKey,
			SessionToken:    cfg.Dynamo.SessionToken,
			TablePrefix:     cfg.Dynamo.TablePrefix,
		})
		if err != nil {
			return nil, nil, "", fmt.Errorf("build dynamodb source: %w", err)
		}
		return store, store, "dynamodb", nil
	}

	client, err := githubapi.New(githubapi.Options{
		Token:      cfg.GitHub.Token,
		APIVersion: cfg.GitHub.APIVersion,
		BaseURL:    cfg.GitHub.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.GitHub.HTTPTimeout},
	})
	if err != nil {
		return nil, nil, "", fmt.Errorf("build github source: %w", err)
	}
	return client, client, "github", nil
}
