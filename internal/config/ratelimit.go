package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig configures one redis token bucket.  The login and video
// view routes each get their own bucket so a burst of playback requests
// cannot starve sign-in and vice versa.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig builds the bucket for scope (e.g. "login", "view").
// Every variable may be given per scope (RATE_LIMIT_LOGIN_CAPACITY) or
// globally (RATE_LIMIT_CAPACITY); the scoped value wins.
func LoadRateLimitConfig(scope string, capacity int, every time.Duration, strategy string) RateLimitConfig {
    sc := strings.ToUpper(scope)
    key := func(name string) string { return scopedKey(sc, name) }
    def := RateLimitConfig{
        Enabled:        envBool(key("ENABLED"), true),
        Capacity:       envInt(key("CAPACITY"), capacity),
        RefillTokens:   envInt(key("REFILL_TOKENS"), 1),
        RefillInterval: envDur(key("REFILL_INTERVAL"), every),
        TTL:            envDur(key("TTL"), 10*time.Minute),
        KeyStrategy:    envStr(key("KEY_STRATEGY"), strategy),
        Prefix:         envStr(key("PREFIX"), "rl:"+strings.ToLower(scope)),
        Debug:          envBool(key("DEBUG"), false),
    }
    if def.Capacity < 1 {
        def.Capacity = 1
    }
    if def.RefillTokens < 1 {
        def.RefillTokens = 1
    }
    if def.RefillInterval <= 0 {
        def.RefillInterval = time.Second
    }
    // a bucket must outlive at least a few refills or it resets to full
    if floor := 5 * def.RefillInterval; def.TTL < floor {
        def.TTL = floor
    }
    return def
}

// scopedKey picks RATE_LIMIT_<SCOPE>_<NAME> when it is set and falls back
// to the global RATE_LIMIT_<NAME>.
func scopedKey(scope, name string) string {
    if k := "RATE_LIMIT_" + scope + "_" + name; os.Getenv(k) != "" {
        return k
    }
    return "RATE_LIMIT_" + name
}

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

// envBool accepts strconv.ParseBool forms plus yes/no and on/off.
func envBool(k string, d bool) bool {
	switch v := strings.ToLower(envStr(k, "")); v {
	case "":
		return d
	case "yes", "on":
		return true
	case "no", "off":
		return false
	default:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		return d
	}
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(envStr(k, "")); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(envStr(k, "")); err == nil {
		return dur
	}
	return d
}
