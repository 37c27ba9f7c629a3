package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration for the guidance engine
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	API        APIConfig        `mapstructure:"api"`
	Firebase   FirebaseConfig   `mapstructure:"firebase"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	QuietHours QuietHoursConfig `mapstructure:"quiet_hours"`
	Periodic   PeriodicConfig   `mapstructure:"periodic"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds the behavioral-event topic configuration
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// APIConfig holds API server configuration
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// FirebaseConfig holds the push delivery configuration
type FirebaseConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
	DeviceToken     string `mapstructure:"device_token"`
}

// MetricsConfig holds monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// QuietHoursConfig holds the default quiet-hours window, used until the
// user's persisted settings override it
type QuietHoursConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	StartHour int  `mapstructure:"start_hour"`
	EndHour   int  `mapstructure:"end_hour"`
}

// PeriodicConfig holds cron expressions for recurring scheduling checks
type PeriodicConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	HydrationCron    string `mapstructure:"hydration_cron"`
	DidYouKnowCron   string `mapstructure:"did_you_know_cron"`
	GoalReminderCron string `mapstructure:"goal_reminder_cron"`
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Read from environment variables
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("Config file not found, using environment variables and defaults")
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.database", "fastlife")
	viper.SetDefault("database.ssl_mode", "disable")

	// Redis defaults
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Kafka defaults
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "behavioral-events")

	// API defaults
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9091)
	viper.SetDefault("metrics.path", "/metrics")

	// Quiet hours default to the classic overnight window
	viper.SetDefault("quiet_hours.enabled", true)
	viper.SetDefault("quiet_hours.start_hour", 21)
	viper.SetDefault("quiet_hours.end_hour", 7)

	// Periodic checks: hydration every 2h during the day, a daily fact
	// mid-morning, a goal reminder in the evening
	viper.SetDefault("periodic.enabled", true)
	viper.SetDefault("periodic.hydration_cron", "0 0 8-20/2 * * *")
	viper.SetDefault("periodic.did_you_know_cron", "0 0 10 * * *")
	viper.SetDefault("periodic.goal_reminder_cron", "0 0 18 * * *")

	// Map environment variables
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.database", "DB_NAME")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("firebase.credentials_path", "FIREBASE_CREDENTIALS_PATH")
	viper.BindEnv("firebase.device_token", "FIREBASE_DEVICE_TOKEN")
}
