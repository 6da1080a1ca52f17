// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type CacheCfg struct {
	LocalSize    int
	TTL          time.Duration
	OpTimeout    time.Duration
	RedisEnabled bool
	RedisAddr    string

	RedisPoolSize     int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration
}

type QueryEventsCfg struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	QueueSize int
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr            string
	LogLevel        string
	LogConsole      bool
	LogSampleN      int
	DataPath        string
	Scenario        string
	H3Res           int
	ShutdownTimeout time.Duration
	Cache           CacheCfg
	QueryEvents     QueryEventsCfg
	Metrics         MetricsCfg
}

func FromEnv() Config {
	return Config{
		Addr:            getenv("ADDR", ":8090"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogConsole:      getbool("LOG_CONSOLE", false),
		LogSampleN:      getint("LOG_SAMPLE_N", 0),
		DataPath:        getenv("DATA_PATH", "data_baltimore.csv"),
		Scenario:        getenv("SCENARIO", "baseline"),
		H3Res:           getint("H3_RES", 9),
		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Cache: CacheCfg{
			LocalSize:    getint("CACHE_LOCAL_SIZE", 512),
			TTL:          getduration("CACHE_TTL", 5*time.Minute),
			OpTimeout:    getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
			RedisEnabled: getbool("REDIS_ENABLED", false),
			RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),

			RedisPoolSize:     getint("REDIS_POOL_SIZE", 32),
			RedisDialTimeout:  getduration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			RedisReadTimeout:  getduration("REDIS_READ_TIMEOUT", 1*time.Second),
			RedisWriteTimeout: getduration("REDIS_WRITE_TIMEOUT", 1*time.Second),
		},
		QueryEvents: QueryEventsCfg{
			Enabled:   getbool("QUERY_EVENTS_ENABLED", false),
			Brokers:   splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
			Topic:     getenv("QUERY_EVENTS_TOPIC", "incident-queries"),
			QueueSize: getint("QUERY_EVENTS_QUEUE", 1024),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

// Validate reports settings the service cannot start with. H3Res of -1
// disables cell annotation.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataPath) == "" {
		errs = append(errs, errors.New("DATA_PATH is required"))
	}
	if c.H3Res < -1 || c.H3Res > 15 {
		errs = append(errs, fmt.Errorf("H3_RES must be -1 (disabled) or 0..15, got %d", c.H3Res))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.Scenario == "cache" {
		if c.Cache.LocalSize <= 0 {
			errs = append(errs, errors.New("CACHE_LOCAL_SIZE must be positive"))
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, errors.New("CACHE_TTL must be positive"))
		}
		if c.Cache.RedisEnabled && c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ENABLED is true but REDIS_ADDR is empty"))
		}
		if c.Cache.RedisEnabled {
			if c.Cache.RedisPoolSize <= 0 {
				errs = append(errs, errors.New("REDIS_POOL_SIZE must be positive"))
			}
			if c.Cache.RedisDialTimeout <= 0 || c.Cache.RedisReadTimeout <= 0 || c.Cache.RedisWriteTimeout <= 0 {
				errs = append(errs, errors.New("REDIS_DIAL_TIMEOUT, REDIS_READ_TIMEOUT and REDIS_WRITE_TIMEOUT must be positive"))
			}
		}
	}
	if c.QueryEvents.Enabled {
		if len(c.QueryEvents.Brokers) == 0 {
			errs = append(errs, errors.New("QUERY_EVENTS_ENABLED is true but KAFKA_BROKERS is empty"))
		}
		if c.QueryEvents.Topic == "" {
			errs = append(errs, errors.New("QUERY_EVENTS_TOPIC is required"))
		}
	}
	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// splits "a:9092, b:9092" and drops empty entries
func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
