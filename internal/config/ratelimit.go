package config

import "time"

// RateLimitConfig parameterises the Redis token bucket.  A bucket holds
// up to Capacity tokens and regains RefillTokens every RefillInterval.
// KeyStrategy picks the bucket: "ip", "user", "ip_route" or
// "principal_route" (the default).
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
}

func LoadRateLimitConfig() RateLimitConfig {
	rc := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "principal_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if rc.Capacity < 1 {
		rc.Capacity = 1
	}
	if rc.RefillTokens < 1 {
		rc.RefillTokens = 1
	}
	if rc.RefillInterval <= 0 {
		rc.RefillInterval = time.Second
	}
	// a bucket must outlive a few refill periods or it resets to full
	if minTTL := 5 * rc.RefillInterval; rc.TTL < minTTL {
		rc.TTL = minTTL
	}
	return rc
}
