package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             string
	ProviderBaseURL  string
	RedisURL         string
	FlushToken       string
	CacheTTLMomentum time.Duration
	CacheTTLChannel  time.Duration
	CacheTTLCompass  time.Duration
	CacheTTLTable    time.Duration
	CacheTTLPrice    time.Duration
	CacheTTLClose    time.Duration
	RequestTimeout   time.Duration
	ProviderTimeout  time.Duration
	RateLimitPerMin  int
	CircuitFailLimit int
	CircuitCooldown  time.Duration
	MaxSymbols       int
}

func Load() Config {
	return Config{
		Port:             getEnv("PORT", "8080"),
		ProviderBaseURL:  getEnv("PROVIDER_BASE_URL", "http://localhost:8001"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		FlushToken:       getEnv("FLUSH_API_TOKEN", ""),
		CacheTTLMomentum: getEnvDuration("CACHE_TTL_MOMENTUM", 86400*time.Second),
		CacheTTLChannel:  getEnvDuration("CACHE_TTL_CHANNEL", 86000*time.Second),
		CacheTTLCompass:  getEnvDuration("CACHE_TTL_COMPASS", 2629757*time.Second),
		CacheTTLTable:    getEnvDuration("CACHE_TTL_TABLE", 86000*time.Second),
		CacheTTLPrice:    getEnvDuration("CACHE_TTL_PRICE", 60*time.Second),
		CacheTTLClose:    getEnvDuration("CACHE_TTL_CLOSE", 86000*time.Second),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ProviderTimeout:  getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MIN", 120),
		CircuitFailLimit: getEnvInt("CIRCUIT_FAIL_LIMIT", 3),
		CircuitCooldown:  getEnvDuration("CIRCUIT_COOLDOWN", 20*time.Second),
		MaxSymbols:       getEnvInt("MAX_SYMBOLS", 30),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Second
}
