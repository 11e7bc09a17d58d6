package redis

import (
	"time"

	"github.com/udelar-dtx/dtx_backend/config"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// FromCentralConfig converts central config.RedisConfig to package Config,
// filling unset pool sizes and timeouts with defaults.
func FromCentralConfig(c config.RedisConfig) Config {
	return Config{
		Addr:         c.Addr,
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     orDefault(c.PoolSize, 10),
		MinIdleConns: orDefault(c.MinIdleConns, 2),
		DialTimeout:  time.Duration(orDefault(c.DialTimeoutSeconds, 5)) * time.Second,
		ReadTimeout:  time.Duration(orDefault(c.ReadTimeoutSeconds, 3)) * time.Second,
		WriteTimeout: time.Duration(orDefault(c.WriteTimeoutSeconds, 3)) * time.Second,
	}
}
