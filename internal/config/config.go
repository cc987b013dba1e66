package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Scope names for the GitHub API source.
const (
	ScopeOrganization = "organization"
	ScopeEnterprise   = "enterprise"
)

// Config captures the runtime configuration for the dashboard service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	GitHub        GitHubConfig        `mapstructure:"github"`
	Dynamo        DynamoConfig        `mapstructure:"dynamo"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Features      FeaturesConfig      `mapstructure:"features"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

type GitHubConfig struct {
	Token        string        `mapstructure:"token"`
	APIVersion   string        `mapstructure:"api_version"`
	BaseURL      string        `mapstructure:"base_url"`
	Scope        string        `mapstructure:"scope"`
	Enterprise   string        `mapstructure:"enterprise"`
	Organization string        `mapstructure:"organization"`
	Team         string        `mapstructure:"team"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

type DynamoConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	TablePrefix     string `mapstructure:"table_prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Profile         string `mapstructure:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	RedisDB  int           `mapstructure:"redis_db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type FeaturesConfig struct {
	Dashboard bool `mapstructure:"dashboard"`
	Seats     bool `mapstructure:"seats"`
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else {
		if cfg := os.Getenv("DASHBOARD_CONFIG_FILE"); cfg != "" {
			v.SetConfigFile(cfg)
			explicitFile = true
		}
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("dashboard")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set and normalizes defaults.
func (c *Config) Validate() error {
	scope := strings.ToLower(strings.TrimSpace(c.GitHub.Scope))
	if scope == "" {
		scope = ScopeOrganization
	}
	if scope != ScopeOrganization && scope != ScopeEnterprise {
		return fmt.Errorf("github.scope must be %q or %q", ScopeOrganization, ScopeEnterprise)
	}
	c.GitHub.Scope = scope

	if scope == ScopeEnterprise && strings.TrimSpace(c.GitHub.Enterprise) == "" {
		return fmt.Errorf("github.enterprise must be provided when scope is %q", ScopeEnterprise)
	}
	if scope == ScopeOrganization && strings.TrimSpace(c.GitHub.Organization) == "" {
		return fmt.Errorf("github.organization must be provided when scope is %q", ScopeOrganization)
	}

	if c.Dynamo.Enabled {
		if strings.TrimSpace(c.Dynamo.TablePrefix) == "" {
			return fmt.Errorf("dynamo.table_prefix must be provided when dynamo is enabled")
		}
	} else if strings.TrimSpace(c.GitHub.Token) == "" {
		return fmt.Errorf("github.token must be provided when dynamo is disabled")
	}

	if c.GitHub.HTTPTimeout <= 0 {
		c.GitHub.HTTPTimeout = 30 * time.Second
	}

	if c.Cache.Enabled && strings.TrimSpace(c.Cache.RedisURL) == "" {
		return fmt.Errorf("cache.redis_url must be provided when caching is enabled")
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 10 * time.Minute
	}

	if c.Server.BodyLimitMB <= 0 {
		c.Server.BodyLimitMB = 4
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.GracefulShutdownDelay <= 0 {
		c.Server.GracefulShutdownDelay = 5 * time.Second
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.body_limit_mb", 4)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	// Empty-string defaults register the key with viper so AutomaticEnv can
	// populate it without an entry in the config file.
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.enterprise", "")
	v.SetDefault("github.organization", "")
	v.SetDefault("github.team", "")
	v.SetDefault("github.api_version", "2022-11-28")
	v.SetDefault("github.scope", ScopeOrganization)
	v.SetDefault("github.http_timeout", "30s")

	v.SetDefault("dynamo.enabled", false)
	v.SetDefault("dynamo.table_prefix", "")
	v.SetDefault("dynamo.region", "")
	v.SetDefault("dynamo.endpoint", "")
	v.SetDefault("dynamo.profile", "")
	v.SetDefault("dynamo.access_key_id", "")
	v.SetDefault("dynamo.secret_access_key", "")
	v.SetDefault("dynamo.session_token", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("features.dashboard", true)
	v.SetDefault("features.seats", true)

	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
