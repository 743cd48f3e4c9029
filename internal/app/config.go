package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr string `default:"127.0.0.1:8090" usage:"Storefront API listen address"`
	// Session namespaces every storage key, so several carts can share one
	// backend.
	Session     string `default:"" usage:"Storage key namespace for this client session"`
	CatalogFile string `default:"" usage:"Products file (.json or .json.gz) served instead of PostgreSQL" flag:"catalog-file"`
	Store       StoreConfig
	Keys        KeysConfig
	Remote      RemoteConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StoreConfig selects and configures the durable key-value backend.
type StoreConfig struct {
	Backend       string `default:"memory" usage:"Key-value backend: memory, redis or postgres"`
	RedisAddr     string `default:"localhost:6379" usage:"Redis address" flag:"redis-addr"`
	RedisPassword string `default:"" usage:"Redis password" flag:"redis-password"`
	RedisDB       int    `default:"0" usage:"Redis database" flag:"redis-db"`
	DatabaseURL   string `default:"" usage:"PostgreSQL connection URL (STOREFRONT_STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
}

// KeysConfig names the persisted records.
type KeysConfig struct {
	Cart    string `default:"cartItems" usage:"Key of the persisted cart"`
	Orders  string `default:"orders" usage:"Key of the order log"`
	Profile string `default:"user" usage:"Key of the buyer profile"`
}

// RemoteConfig controls best-effort order submission to the backend.
type RemoteConfig struct {
	URL     string        `default:"http://localhost:8080/api/orders" usage:"Backend order endpoint; empty disables submission" flag:"remote-url"`
	Timeout time.Duration `default:"10s" usage:"Timeout of one remote submission" flag:"remote-timeout"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"1s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from flags, environment variables and YAML
// config files, then validates it.
func LoadConfig() (*Config, error) {
	return loadConfig(false)
}

func loadConfig(skipFlags bool) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: skipFlags,
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("database URL is required for the postgres backend: set STOREFRONT_STORE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Remote.Timeout <= 0 {
		return errors.Errorf("remote timeout must be positive, got %s", c.Remote.Timeout)
	}
	return nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL variable.
func (c *Config) applyPlatformDefaults() {
	if c.Store.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Store.DatabaseURL = v
		}
	}
}
