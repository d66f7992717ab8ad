package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func Port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}

// FrontendOrigins lists the browser origins allowed by CORS.
func FrontendOrigins() []string {
	raw := os.Getenv("FRONTEND_ORIGINS")
	if raw == "" {
		raw = "http://localhost:3000"
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func FeedCacheTTL() time.Duration {
	return envDuration("FEED_CACHE_TTL", 30*time.Second)
}

func InteractionWorkers() int {
	if n, err := strconv.Atoi(os.Getenv("INTERACTION_WORKERS")); err == nil && n > 0 {
		return n
	}
	return 2
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
