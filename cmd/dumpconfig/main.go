// Command dumpconfig loads the merged configuration and prints the effective
// values with secrets masked. Handy when debugging env overrides.
package main

import (
	"flag"
	"log"

	"github.com/ncecere/copilot_usage_dashboard/internal/config"
)

func main() {
	configFile := flag.String("config", "", "path to a dashboard config file")
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigFile: *configFile})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	log.Printf("server: listen_addr=%s read_timeout=%s", cfg.Server.ListenAddr, cfg.Server.ReadTimeout)
	log.Printf("github: scope=%s enterprise=%q organization=%q token=%s", cfg.GitHub.Scope, cfg.GitHub.Enterprise, cfg.GitHub.Organization, mask(cfg.GitHub.Token))
	log.Printf("dynamo: enabled=%t table_prefix=%q region=%q endpoint=%q", cfg.Dynamo.Enabled, cfg.Dynamo.TablePrefix, cfg.Dynamo.Region, cfg.Dynamo.Endpoint)
	log.Printf("cache: enabled=%t redis_url=%q ttl=%s", cfg.Cache.Enabled, cfg.Cache.RedisURL, cfg.Cache.TTL)
	log.Printf("features: dashboard=%t seats=%t", cfg.Features.Dashboard, cfg.Features.Seats)
	log.Printf("observability: metrics=%t otlp=%t endpoint=%q", cfg.Observability.EnableMetrics, cfg.Observability.EnableOTLP, cfg.Observability.OTLPEndpoint)
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "(set)"
}
