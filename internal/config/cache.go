package config

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// CacheConfig configures the Redis response cache on the public menu
// routes (restaurants, tables, categories, products).  Entries are keyed by
// KeyStrategy: route, method_route, method_route_query or route_query.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	MethodList   []string      `env:"CACHE_METHODS" envDefault:"GET" envSeparator:","`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"menu-cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

	methods map[string]bool
}

// Caches reports whether responses to method are cached.
func (c CacheConfig) Caches(method string) bool { return c.methods[strings.ToUpper(method)] }

// ParseCacheConfig binds the CACHE_* variables.  Prices and availability
// flags change during service, so the default TTL is short.
func ParseCacheConfig() (CacheConfig, error) {
	var cfg CacheConfig
	if err := env.Parse(&cfg); err != nil {
		return CacheConfig{}, err
	}
	cfg.methods = map[string]bool{}
	for _, m := range cfg.MethodList {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			cfg.methods[m] = true
		}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg, nil
}

// LoadCacheConfig is ParseCacheConfig that exits on malformed values.
func LoadCacheConfig() CacheConfig {
	cfg, err := ParseCacheConfig()
	if err != nil {
		log.Fatalf("config: cache: %v", err)
	}
	return cfg
}
