// Package config предоставляет структуры и функции для загрузки конфигурации консоли.
// Значения читаются из YAML-файла, переменные окружения имеют приоритет над файлом.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"local"`
	API         `yaml:"api"`
	Session     `yaml:"session"`
	AdBenefits  `yaml:"ad_benefits"`
	NetStatus   `yaml:"network_status"`
	Push        `yaml:"push"`
	HTTPServer  `yaml:"http_server"`
	RateLimiter `yaml:"rate_limit"`
}

// API настройки HTTP-клиента бэкенда.
type API struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:5000/api"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"30s"`
	// RequestsPerSecond ограничивает исходящие запросы, 0 отключает ограничение.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"API_RPS" env-default:"0"`
	Burst             int     `yaml:"burst" env:"API_BURST" env-default:"10"`
}

// Session настройки хранилища сессии. Пустой RedisAddress означает хранение в памяти.
type Session struct {
	RedisAddress  string        `yaml:"redis_address" env:"SESSION_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"SESSION_REDIS_PASSWORD"`
	RedisUser     string        `yaml:"redis_user" env:"SESSION_REDIS_USER"`
	RedisDB       int           `yaml:"redis_db" env:"SESSION_REDIS_DB" env-default:"0"`
	KeyPrefix     string        `yaml:"key_prefix" env:"SESSION_KEY_PREFIX" env-default:"console:"`
	DialTimeout   time.Duration `yaml:"dial_timeout" env-default:"5s"`
}

// AdBenefits настройки обновления рекламных привилегий.
type AdBenefits struct {
	RefreshInterval  time.Duration `yaml:"refresh_interval" env-default:"15m"`
	MaxRetries       int           `yaml:"max_retries" env-default:"3"`
	AuthRetryDelay   time.Duration `yaml:"auth_retry_delay" env-default:"2s"`
	NetworkRetryBase time.Duration `yaml:"network_retry_base" env-default:"1s"`
	PremiumPackageID string        `yaml:"premium_package_id" env-default:"premium_no_ads"`
	AdFreeRoute      string        `yaml:"ad_free_route" env-default:"/premium"`
}

// NetStatus настройки определения сетевого подключения.
type NetStatus struct {
	PollInterval    time.Duration `yaml:"poll_interval" env-default:"30s"`
	ReconnectedTTL  time.Duration `yaml:"reconnected_ttl" env-default:"3s"`
	OfflineRedirect time.Duration `yaml:"offline_redirect" env-default:"5s"`
	PingTimeout     time.Duration `yaml:"ping_timeout" env-default:"5s"`
}

// Push настройки websocket-канала уведомлений и пересылки событий в RabbitMQ.
type Push struct {
	WebSocketURL string `yaml:"websocket_url" env:"PUSH_WS_URL" env-default:"ws://localhost:5000"`
	Enabled      bool   `yaml:"enabled" env:"PUSH_ENABLED" env-default:"true"`
	AMQPURL      string `yaml:"amqp_url" env:"PUSH_AMQP_URL"`
	Exchange     string `yaml:"exchange" env-default:"console.events"`
	// AMQPMaxRetries число попыток подключения к RabbitMQ при старте.
	AMQPMaxRetries int           `yaml:"amqp_max_retries" env-default:"5"`
	AMQPRetryDelay time.Duration `yaml:"amqp_retry_delay" env-default:"2s"`
	// ReconnectBase начальная задержка переподключения websocket.
	ReconnectBase time.Duration `yaml:"reconnect_base" env-default:"1s"`
	ReconnectMax  time.Duration `yaml:"reconnect_max" env-default:"30s"`
}

// HTTPServer структура для настройки сервера консоли
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RateLimiter настройки ограничения входящих запросов к API консоли.
type RateLimiter struct {
	Rate  float64 `yaml:"rate" env-default:"20"`
	Burst int     `yaml:"burst" env-default:"40"`
}

// Load читает конфиг из файла path. Пустой path означает конфигурацию только из окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"Session:\n"+
			"  RedisAddress: %s\n"+
			"  KeyPrefix: %s\n"+
			"AdBenefits:\n"+
			"  RefreshInterval: %s\n"+
			"  PremiumPackageID: %s\n"+
			"NetStatus:\n"+
			"  PollInterval: %s\n"+
			"Push:\n"+
			"  WebSocketURL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n",
		c.Env,
		c.BaseURL,
		c.API.Timeout,
		c.RedisAddress,
		c.KeyPrefix,
		c.RefreshInterval,
		c.PremiumPackageID,
		c.PollInterval,
		c.WebSocketURL,
		c.AddressHTTP,
	)
}
