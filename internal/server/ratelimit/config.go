package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "SITEGEN_RATE_LIMIT_"

// Rule limits the requests a client may make to the routes matching Pattern.
// A Rule with no Limit leaves its routes unlimited.
type Rule struct {
	Pattern string
	Limit   int
	Window  time.Duration
	Burst   int // zero means Limit
}

// DefaultRules limits the generation routes, which call the model once per
// unit, to a handful of sites per hour. Job reads use the default limit.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "POST /v1/generate", Limit: 20, Window: time.Hour, Burst: 3},
		{Pattern: "POST /v1/generate/stream", Limit: 20, Window: time.Hour, Burst: 3},
		{Pattern: "GET /health"},
		{Pattern: "GET /metrics"},
	}
}

// LoadConfig reads the limiter settings from SITEGEN_RATE_LIMIT_* variables.
// Unparseable values keep their defaults.
func LoadConfig() *Config {
	return configFromEnv(os.LookupEnv)
}

func configFromEnv(lookup func(string) (string, bool)) *Config {
	env := envReader(lookup)

	cfg := &Config{Enabled: env.boolean("ENABLED", true)}
	if !cfg.Enabled {
		return cfg
	}
	cfg.DefaultLimit = env.integer("DEFAULT_LIMIT", 1000)
	cfg.DefaultWindow = env.duration("DEFAULT_WINDOW", time.Minute)
	cfg.CleanupInterval = env.duration("CLEANUP_INTERVAL", 5*time.Minute)
	cfg.Whitelist = clientSet(env.str("WHITELIST"))
	cfg.Blacklist = clientSet(env.str("BLACKLIST"))
	cfg.Rules = DefaultRules()

	if limit := env.integer("GENERATE_LIMIT", 0); limit > 0 {
		for i := range cfg.Rules {
			if strings.HasPrefix(cfg.Rules[i].Pattern, "POST /v1/generate") {
				cfg.Rules[i].Limit = limit
			}
		}
	}
	return cfg
}

type envReader func(string) (string, bool)

func (e envReader) str(name string) string {
	v, _ := e(envPrefix + name)
	return strings.TrimSpace(v)
}

func (e envReader) integer(name string, def int) int {
	if n, err := strconv.Atoi(e.str(name)); err == nil {
		return n
	}
	return def
}

func (e envReader) boolean(name string, def bool) bool {
	if b, err := strconv.ParseBool(e.str(name)); err == nil {
		return b
	}
	return def
}

func (e envReader) duration(name string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e.str(name)); err == nil {
		return d
	}
	return def
}

// clientSet splits a comma-separated list of client addresses.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, client := range strings.Split(list, ",") {
		if client = strings.TrimSpace(client); client != "" {
			set[client] = true
		}
	}
	return set
}
