package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Nominatim geocoding configuration. The endpoint may embed basic-auth
	// credentials as "user:password@https://host".
	NominatimEndpoint string
	NominatimEnabled  bool
	NominatimTimeout  time.Duration
	NominatimQPS      int
	NominatimRetries  int
	NominatimPoolSize int
	NominatimBackoff  time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	batchSize, err := intEnv("BATCH_SIZE", 50, 1, 1000)
	if err != nil {
		return nil, err
	}

	flushInterval, err := durationEnv("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	nominatimTimeout, err := durationEnv("NOMINATIM_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}

	nominatimBackoff, err := durationEnv("NOMINATIM_BACKOFF", 250*time.Millisecond)
	if err != nil {
		return nil, err
	}

	nominatimQPS, err := intEnv("NOMINATIM_QPS", 50, 1, 1000)
	if err != nil {
		return nil, err
	}

	nominatimRetries, err := intEnv("NOMINATIM_RETRIES", 3, 1, 10)
	if err != nil {
		return nil, err
	}

	nominatimPoolSize, err := intEnv("NOMINATIM_POOL_SIZE", 3, 1, 100)
	if err != nil {
		return nil, err
	}

	nominatimEndpoint := os.Getenv("NOMINATIM_ENDPOINT")
	nominatimEnabled := nominatimEndpoint != ""
	if v := os.Getenv("NOMINATIM_ENABLED"); v != "" {
		nominatimEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "place-reports"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "enriched-places"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "place-enrich"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		NominatimEndpoint: nominatimEndpoint,
		NominatimEnabled:  nominatimEnabled,
		NominatimTimeout:  nominatimTimeout,
		NominatimQPS:      nominatimQPS,
		NominatimRetries:  nominatimRetries,
		NominatimPoolSize: nominatimPoolSize,
		NominatimBackoff:  nominatimBackoff,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.NominatimEnabled && cfg.NominatimEndpoint == "" {
		return nil, errors.New("NOMINATIM_ENABLED is true but NOMINATIM_ENDPOINT is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intEnv(key string, fallback, min, max int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("invalid %s: %q (want %d-%d)", key, s, min, max)
	}
	return n, nil
}
