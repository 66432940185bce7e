// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	GRPCHealthAddress       string `yaml:"grpc_health_address" env:"GRPC_HEALTH_ADDRESS"`
	SeedDemoData            bool   `yaml:"seed_demo_data" env:"SEED_DEMO_DATA"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwt"`
	RedisConnection         `yaml:"redis_connection"`
	RateLimit               `yaml:"rate_limit"`
	RabbitMQ                `yaml:"rabbitmq"`
	Billing                 `yaml:"billing"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токенами.
// Access-токен короткоживущий, refresh-токен долгоживущий.
type JWTToken struct {
	JWTSecretKey    string        `yaml:"secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env-default:"30m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env-default:"168h"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает, что redis не используется.
type RedisConnection struct {
	AddressRedis string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeout" env-default:"3s"`
}

// RateLimit задает фиксированное окно: не более Requests запросов за Window
// для одного пользователя или IP.
type RateLimit struct {
	Requests int           `yaml:"requests" env-default:"60"`
	Window   time.Duration `yaml:"window" env-default:"1m"`
}

// RabbitMQ настройки публикации событий биллинга. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL      string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string        `yaml:"exchange" env-default:"billing"`
	Retries  int           `yaml:"retries" env-default:"5"`
	Delay    time.Duration `yaml:"delay" env-default:"2s"`
}

// Billing настройки заглушки платежного провайдера.
type Billing struct {
	CheckoutBaseURL string `yaml:"checkout_base_url" env-default:"https://example.com/checkout"`
}

// ResolvePath возвращает путь к конфигу: явно переданный или из CONFIG_PATH.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path, nil
	}
	return "", errors.New("config path is not set: use --config or CONFIG_PATH")
}

// Load читает конфиг из файла, значения из окружения имеют приоритет.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	if cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("%s: rate_limit requests and window must be positive", op)
	}
	return &cfg, nil
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWT:\n"+
			"  AccessTokenTTL: %s\n"+
			"  RefreshTokenTTL: %s\n"+
			"Redis: %s\n"+
			"RateLimit: %d per %s\n"+
			"RabbitMQ exchange: %s\n"+
			"GRPCHealthAddress: %s\n"+
			"SeedDemoData: %t\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AccessTokenTTL,
		c.RefreshTokenTTL,
		c.AddressRedis,
		c.Requests,
		c.Window,
		c.Exchange,
		c.GRPCHealthAddress,
		c.SeedDemoData,
	)
}
