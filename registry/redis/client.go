package redis

import (
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/govkit/registry"
)

// newClient builds the go-redis client. Durations are validated by
// registry.Config.Validate; unparsable values fall back to the driver defaults.
func newClient(cfg registry.RedisConfig) *goredis.Client {
	dialTimeout, _ := time.ParseDuration(cfg.DialTimeout)
	readTimeout, _ := time.ParseDuration(cfg.ReadTimeout)

	return goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: dialTimeout,
		ReadTimeout: readTimeout,
	})
}
