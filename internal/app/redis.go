package app

import "github.com/odyssey-erp/recon-portal/internal/platform/cache"

// RedisOptions returns the Redis settings shared by every binary.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}
