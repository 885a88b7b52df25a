package config

// Redis backs the menu response cache and the auth rate limiter.  When the
// server cannot be reached at startup NewRedisClient returns nil and both
// middlewares degrade to pass-through.

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis server.  REDIS_HOST and REDIS_PORT, when
// both set, take precedence over REDIS_ADDR.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	TLS      bool   `env:"REDIS_TLS" envDefault:"false"`
}

// Address resolves the host:port to dial.
func (r RedisConfig) Address() string {
	if r.Host != "" && r.Port != "" {
		return net.JoinHostPort(r.Host, r.Port)
	}
	return r.Addr
}

// Options converts the configuration into go-redis options.
func (r RedisConfig) Options() *redis.Options {
	opts := &redis.Options{
		Addr:     r.Address(),
		Password: r.Password,
		DB:       r.DB,
	}
	if r.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient connects using REDIS_* variables.  It returns nil when the
// variables are malformed or a ping fails within two seconds.
func NewRedisClient(ctx context.Context) *redis.Client {
	var cfg RedisConfig
	if err := env.Parse(&cfg); err != nil {
		log.Printf("config: redis: %v", err)
		return nil
	}
	client := redis.NewClient(cfg.Options())
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
