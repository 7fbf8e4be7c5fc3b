package config

import (
	"errors"
	"fmt"
	"os"

	"rentdesk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
	API           APIConfig           `yaml:"api"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Exports       ExportConfig        `yaml:"exports"`
	Vehicles      []models.Vehicle    `yaml:"vehicles"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	JWTSecret string             `yaml:"jwt_secret"`
	AdminKeys []AdminKey         `yaml:"admin_keys"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type AdminKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type NotificationsConfig struct {
	Email    EmailConfig        `yaml:"email"`
	Telegram TelegramConfig     `yaml:"telegram"`
	Worker   NotifyWorkerConfig `yaml:"worker"`
}

type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type NotifyWorkerConfig struct {
	MaxRetries          int `yaml:"max_retries"`
	InitialDelaySeconds int `yaml:"initial_delay_seconds"`
	MaxDelaySeconds     int `yaml:"max_delay_seconds"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	BatchSize           int `yaml:"batch_size"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// Load reads the YAML config, expanding ${VAR} references from the
// environment. A .env file is picked up when present but is not required.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.API.JWTSecret == "" {
		return errors.New("api jwt secret is required")
	}
	if c.Notifications.Email.Enabled {
		if c.Notifications.Email.Host == "" || c.Notifications.Email.From == "" {
			return errors.New("email notifications require host and from address")
		}
	}
	if c.Notifications.Telegram.Enabled {
		if c.Notifications.Telegram.BotToken == "" || c.Notifications.Telegram.ChatID == 0 {
			return errors.New("telegram notifications require bot_token and chat_id")
		}
	}
	return ValidateVehicles(c.Vehicles)
}

func ValidateVehicles(vehicles []models.Vehicle) error {
	seen := make(map[int64]bool, len(vehicles))
	for _, v := range vehicles {
		if v.ID == 0 {
			return fmt.Errorf("vehicle '%s' has invalid ID 0", v.Name)
		}
		if seen[v.ID] {
			return fmt.Errorf("duplicate vehicle ID found: %d", v.ID)
		}
		if v.DailyRate < 0 {
			return fmt.Errorf("vehicle '%s' has negative daily rate", v.Name)
		}
		seen[v.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Notifications.Email.Port == 0 {
		c.Notifications.Email.Port = 587
	}
	if c.Notifications.Worker.MaxRetries == 0 {
		c.Notifications.Worker.MaxRetries = models.DefaultMaxRetries
	}
	if c.Notifications.Worker.InitialDelaySeconds == 0 {
		c.Notifications.Worker.InitialDelaySeconds = 2
	}
	if c.Notifications.Worker.MaxDelaySeconds == 0 {
		c.Notifications.Worker.MaxDelaySeconds = 60
	}
	if c.Notifications.Worker.PollIntervalSeconds == 0 {
		c.Notifications.Worker.PollIntervalSeconds = 2
	}
	if c.Notifications.Worker.BatchSize == 0 {
		c.Notifications.Worker.BatchSize = 20
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
