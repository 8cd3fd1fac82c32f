package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/matchcontrol/go/internal/match"
)

type Config struct {
	Match   match.Settings `yaml:"match"`
	Server  ServerConfig   `yaml:"server"`
	Store   StoreConfig    `yaml:"store"`
	Mirror  MirrorConfig   `yaml:"mirror"`
	Uploads UploadsConfig  `yaml:"uploads"`
}

type ServerConfig struct {
	Port              string        `yaml:"port"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	SubscriberBuffer  int           `yaml:"subscriber_buffer"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend"`
	DBDriver      string `yaml:"db_driver"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

type MirrorConfig struct {
	QueueSize     int           `yaml:"queue_size"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	NATSURL       string        `yaml:"nats_url"`
	StreamName    string        `yaml:"stream_name"`
	SubjectPrefix string        `yaml:"subject_prefix"`
}

type UploadsConfig struct {
	Endpoint          string `yaml:"endpoint"`
	APIKey            string `yaml:"api_key"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

func defaultConfig() *Config {
	return &Config{
		Match: match.DefaultSettings(),
		Server: ServerConfig{
			Port:              "5000",
			BroadcastInterval: time.Second,
			SubscriberBuffer:  16,
			ShutdownTimeout:   10 * time.Second,
		},
		Store: StoreConfig{
			Backend:     "memory",
			DBDriver:    "postgres",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "matchcontrol",
		},
		Mirror: MirrorConfig{
			QueueSize:     256,
			WriteTimeout:  5 * time.Second,
			StreamName:    "MATCH_STATE",
			SubjectPrefix: "match.state",
		},
		Uploads: UploadsConfig{
			RequestsPerMinute: 30,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// loadConfig reads path over the defaults, then applies environment overrides. A missing
// file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Store.Backend = getEnv("STORE_BACKEND", config.Store.Backend)
	config.Store.DBDriver = getEnv("DB_DRIVER", config.Store.DBDriver)
	config.Store.RedisAddr = getEnv("REDIS_ADDR", config.Store.RedisAddr)
	config.Store.RedisPassword = getEnv("REDIS_PASSWORD", config.Store.RedisPassword)
	config.Store.RedisDB = getEnvAsInt("REDIS_DB", config.Store.RedisDB)
	config.Mirror.NATSURL = getEnv("NATS_URL", config.Mirror.NATSURL)
	config.Uploads.APIKey = getEnv("FREEIMAGE_API_KEY", config.Uploads.APIKey)
	config.Match.PitOpenThreshold = getEnvAsInt("PIT_OPEN_THRESHOLD", config.Match.PitOpenThreshold)

	return config, nil
}
