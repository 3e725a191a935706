package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Notification sinks.
const (
	SinkKafka = "kafka"
	SinkMQTT  = "mqtt"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Feed source.
	FeedURL       string
	FeedTimeout   time.Duration
	FeedUserAgent string
	FeedParser    string
	PollInterval  time.Duration

	RecipientsFile string
	ReportFrom     string
	ReportSubject  string

	NotifySink         string
	KafkaBrokers       []string
	KafkaNotifyTopic   string
	MQTTBroker         string
	MQTTClientID       string
	MQTTTopic          string
	MaxPublishAttempts int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("POLL_INTERVAL", "6h"))
	if err != nil || pollInterval < 0 {
		return nil, errors.New("invalid POLL_INTERVAL")
	}

	maxAttempts, err := parseMaxPublishAttempts()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedURL:       sharedcfg.EnvOrDefault("FEED_URL", "https://www.nodc.noaa.gov/dsdt/cwtg/rss/all.xml"),
		FeedTimeout:   feedTimeout,
		FeedUserAgent: sharedcfg.EnvOrDefault("FEED_USER_AGENT", "openwater-etl/1.0"),
		FeedParser:    sharedcfg.EnvOrDefault("FEED_PARSER", "landmark"),
		PollInterval:  pollInterval,

		RecipientsFile: sharedcfg.EnvOrDefault("RECIPIENTS_FILE", "recipients.yaml"),
		ReportFrom:     sharedcfg.EnvOrDefault("REPORT_FROM", "igotdarighttemperature@gmail.com"),
		ReportSubject:  sharedcfg.EnvOrDefault("REPORT_SUBJECT", "Your Water Temperatures from OpenWater"),

		NotifySink:         sharedcfg.EnvOrDefault("NOTIFY_SINK", SinkKafka),
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaNotifyTopic:   sharedcfg.EnvOrDefault("KAFKA_NOTIFY_TOPIC", "water-temp-notifications"),
		MQTTBroker:         sharedcfg.EnvOrDefault("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:       sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "openwater-etl"),
		MQTTTopic:          sharedcfg.EnvOrDefault("MQTT_TOPIC", "openwater/notifications"),
		MaxPublishAttempts: maxAttempts,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("FEED_URL is required")
	}
	if cfg.FeedParser != "landmark" && cfg.FeedParser != "gofeed" {
		return nil, fmt.Errorf("FEED_PARSER must be landmark or gofeed, got %q", cfg.FeedParser)
	}
	if cfg.RecipientsFile == "" {
		return nil, errors.New("RECIPIENTS_FILE is required")
	}

	switch cfg.NotifySink {
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaNotifyTopic == "" {
			return nil, errors.New("KAFKA_NOTIFY_TOPIC is required")
		}
	case SinkMQTT:
		if cfg.MQTTBroker == "" {
			return nil, errors.New("MQTT_BROKER is required")
		}
		if cfg.MQTTTopic == "" {
			return nil, errors.New("MQTT_TOPIC is required")
		}
	default:
		return nil, fmt.Errorf("NOTIFY_SINK must be kafka or mqtt, got %q", cfg.NotifySink)
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMaxPublishAttempts() (int, error) {
	s := os.Getenv("MAX_PUBLISH_ATTEMPTS")
	if s == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid MAX_PUBLISH_ATTEMPTS")
	}
	return n, nil
}
