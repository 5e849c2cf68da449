package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration of the gateway and the import watcher.
type Config struct {
	API      APIConfig
	Server   ServerConfig
	Logging  LoggingConfig
	Kafka    KafkaConfig
	Security SecurityConfig
}

type APIConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

// KafkaConfig enables the import event consumer when Brokers is not empty.
type KafkaConfig struct {
	Brokers     []string
	GroupID     string
	ImportTopic string
}

type SecurityConfig struct {
	// JWTSecret enables inbound token checks on the gateway when set.
	JWTSecret string
}

var envBindings = map[string][]string{
	"api.token":           {"API_TOKEN", "SUPABASE_ANON_KEY"},
	"api.base_url":        {"API_BASE_URL"},
	"api.timeout_ms":      {"API_TIMEOUT"},
	"server.port":         {"PORT"},
	"logging.level":       {"LOG_LEVEL"},
	"logging.format":      {"LOG_FORMAT"},
	"logging.directory":   {"LOG_DIR"},
	"kafka.brokers":       {"KAFKA_BROKERS", "KAFKA_BROKER"},
	"kafka.group_id":      {"KAFKA_GROUP_ID"},
	"kafka.import_topic":  {"KAFKA_IMPORT_TOPIC"},
	"security.jwt_secret": {"JWT_SECRET"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.token", "mock-jwt-token-for-development")
	v.SetDefault("api.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("api.timeout_ms", 30000)
	v.SetDefault("server.port", "8090")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.directory", "./logs")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.group_id", "outreach-desk")
	v.SetDefault("kafka.import_topic", "leads.import.updated")
	v.SetDefault("security.jwt_secret", "")
}

// Load resolves configuration from the environment. When CONFIG_FILE points to a
// yaml file its values sit between the defaults and the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("bind env config_file: %w", err)
	}
	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeoutMs := v.GetInt("api.timeout_ms")
	if timeoutMs <= 0 {
		return nil, fmt.Errorf("api timeout must be positive, got %d", timeoutMs)
	}
	port := strings.TrimSpace(v.GetString("server.port"))
	if port == "" {
		return nil, fmt.Errorf("server port is required")
	}

	return &Config{
		API: APIConfig{
			Token:   strings.TrimSpace(v.GetString("api.token")),
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("api.base_url")), "/"),
			Timeout: time.Duration(timeoutMs) * time.Millisecond,
		},
		Server: ServerConfig{Port: port},
		Logging: LoggingConfig{
			Level:     v.GetString("logging.level"),
			Format:    v.GetString("logging.format"),
			Directory: v.GetString("logging.directory"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka.brokers")),
			GroupID:     strings.TrimSpace(v.GetString("kafka.group_id")),
			ImportTopic: strings.TrimSpace(v.GetString("kafka.import_topic")),
		},
		Security: SecurityConfig{JWTSecret: strings.TrimSpace(v.GetString("security.jwt_secret"))},
	}, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
