package config

import (
    "os"
    "time"
)

// ModuleCacheConfig defines settings for the redis read-through cache that
// sits in front of module lookups.  Only module metadata (parent course and
// video asset id) is cached; enrollment checks always hit the database.
// When Enabled is false or no Redis client is configured, lookups go
// straight to MySQL.
type ModuleCacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadModuleCacheConfig reads environment variables to build a
// ModuleCacheConfig.  Defaults are used when variables are not set.
func LoadModuleCacheConfig() ModuleCacheConfig {
    return ModuleCacheConfig{
        Enabled: getenv("MODULE_CACHE_ENABLED", "true") == "true",
        TTL:     parseDur(getenv("MODULE_CACHE_TTL", "60s")),
        Prefix:  getenv("MODULE_CACHE_PREFIX", "module"),
    }
}

// getenv returns the value of key, or def when it is unset.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
