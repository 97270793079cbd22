package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server settings in correct types
type Config struct {
	Port              string
	TempDir           string
	MaxConcurrentJobs int
	JobTTL            time.Duration
	SweepInterval     time.Duration
	ProgressPoll      time.Duration
	SubscribeGrace    time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
	AllowedOrigins    []string
}

// Load: the only way to get config in the app
func Load() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", ":8080"),
		TempDir:           getEnv("TEMP_DIR", "temp"),
		MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 3),
		JobTTL:            time.Duration(getEnvAsInt("JOB_TTL_MINUTES", 10)) * time.Minute,
		SweepInterval:     time.Duration(getEnvAsInt("SWEEP_INTERVAL_MINUTES", 1)) * time.Minute,
		ProgressPoll:      time.Duration(getEnvAsInt("PROGRESS_POLL_MS", 300)) * time.Millisecond,
		SubscribeGrace:    time.Duration(getEnvAsInt("SUBSCRIBE_GRACE_SECONDS", 15)) * time.Second,
		RateLimitRPS:      float64(getEnvAsInt("RATE_LIMIT_RPS", 20)),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 40),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	validate(cfg)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	str := getEnv(key, "")
	if val, err := strconv.Atoi(str); err == nil {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// validate ensures the server won't crash due to misconfiguration
func validate(cfg *Config) {
	if cfg.MaxConcurrentJobs < 1 {
		log.Println("warning: MAX_CONCURRENT_JOBS must be at least 1, resetting to 3")
		cfg.MaxConcurrentJobs = 3
	}
	if cfg.JobTTL < time.Minute {
		log.Println("warning: JOB_TTL_MINUTES must be at least 1, resetting to 10")
		cfg.JobTTL = 10 * time.Minute
	}
	if cfg.ProgressPoll < 100*time.Millisecond {
		cfg.ProgressPoll = 100 * time.Millisecond
	}
	if cfg.SubscribeGrace < time.Second {
		cfg.SubscribeGrace = time.Second
	}
}
