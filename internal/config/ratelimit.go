package config

import "time"

// RateLimitConfig controls the Redis-backed request limiter. The
// limiter keys on client IP and route; with no authentication layer
// in this service there is no per-user identity to key on.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int           // bucket size, i.e. the allowed burst
    RefillTokens   int           // tokens added per refill interval
    RefillInterval time.Duration // how often tokens are added
    TTL            time.Duration // idle lifetime of a bucket key
    Prefix         string        // key namespace in Redis
}

// LoadRateLimitConfig reads the rate-limit settings from environment
// variables, normalizing degenerate values.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envStr("RATE_LIMIT_ENABLED", "true") == "true",
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}
