// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwt"`
	RabbitMQ                `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":3000"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	Secret   string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"1h"`
}

// RabbitMQ структура для публикации событий; пустой URL отключает публикацию
type RabbitMQ struct {
	URL            string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange       string        `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"auth.events"`
	ConnectRetries int           `yaml:"connect_retries" env:"RABBITMQ_CONNECT_RETRIES" env-default:"5"`
	RetryDelay     time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// Load читает конфиг из YAML-файла CONFIG_PATH, если он задан,
// иначе только из переменных окружения. Переменные окружения
// переопределяют значения из файла.
func Load() (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("%s: config file %s: %w", op, configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch {
	case c.StorageConnectionString == "":
		return errors.New("storage connection string is empty")
	case c.Secret == "":
		return errors.New("jwt secret is empty")
	case c.TokenTTL <= 0:
		return fmt.Errorf("jwt token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// String возвращает конфиг в читаемом виде; секреты скрыты
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  Secret: %s\n"+
			"  TokenTTL: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.Address,
		c.Timeout,
		c.IdleTimeout,
		mask(c.Secret),
		c.TokenTTL,
		mask(c.URL),
		c.Exchange,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
