package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Polling  PollingConfig  `mapstructure:"polling"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Leader   LeaderConfig   `mapstructure:"leader"`
	Instance InstanceConfig `mapstructure:"instance"`
	Desktop  DesktopConfig  `mapstructure:"desktop"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// APIConfig holds the base origin of the marketplace REST API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RealtimeConfig struct {
	Endpoint             string        `mapstructure:"endpoint"`
	ReconnectDelay       time.Duration `mapstructure:"reconnect_delay"`
	HeartbeatIncoming    time.Duration `mapstructure:"heartbeat_incoming"`
	HeartbeatOutgoing    time.Duration `mapstructure:"heartbeat_outgoing"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
}

type PollingConfig struct {
	NotificationsInterval time.Duration `mapstructure:"notifications_interval"`
	PaymentsInterval      time.Duration `mapstructure:"payments_interval"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type LeaderConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

type DesktopConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Icon    string `mapstructure:"icon"`
}

// SessionConfig optionally carries a bearer token so the agent can log in at
// startup without a call to the session API.
type SessionConfig struct {
	Token string `mapstructure:"token"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("realtime.endpoint", "ws://localhost:8080/ws/websocket")
	v.SetDefault("realtime.reconnect_delay", 5*time.Second)
	v.SetDefault("realtime.heartbeat_incoming", 4*time.Second)
	v.SetDefault("realtime.heartbeat_outgoing", 4*time.Second)
	v.SetDefault("realtime.max_reconnect_attempts", 5)
	v.SetDefault("polling.notifications_interval", 30*time.Second)
	v.SetDefault("polling.payments_interval", 30*time.Second)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "auction_updates")
	v.SetDefault("mysql.dsn", "auction_user:auction_pass@tcp(localhost:3306)/auction_db?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 10)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("leader.ttl", 30*time.Second)
	v.SetDefault("instance.id", "")
	v.SetDefault("desktop.enabled", true)
	v.SetDefault("desktop.icon", "")
	v.SetDefault("session.token", "")
	v.SetDefault("log.level", "info")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("api.base_url", "API_BASE_URL")
	v.BindEnv("api.timeout", "API_TIMEOUT")
	v.BindEnv("realtime.endpoint", "REALTIME_ENDPOINT")
	v.BindEnv("realtime.reconnect_delay", "REALTIME_RECONNECT_DELAY")
	v.BindEnv("realtime.max_reconnect_attempts", "REALTIME_MAX_RECONNECT_ATTEMPTS")
	v.BindEnv("polling.notifications_interval", "POLLING_NOTIFICATIONS_INTERVAL")
	v.BindEnv("polling.payments_interval", "POLLING_PAYMENTS_INTERVAL")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.channel", "REDIS_CHANNEL")
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("leader.ttl", "LEADER_TTL")
	v.BindEnv("instance.id", "INSTANCE_ID")
	v.BindEnv("desktop.enabled", "DESKTOP_NOTIFICATIONS")
	v.BindEnv("session.token", "AUCTION_TOKEN")
	v.BindEnv("log.level", "LOG_LEVEL")
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment. A .env file in the working directory is loaded first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/auction-sync/")

	v.AutomaticEnv()
	bindEnv(v)

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path on top of the defaults.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Realtime.Endpoint == "" {
		return errors.New("realtime.endpoint is required")
	}
	if c.Realtime.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("realtime.max_reconnect_attempts must be positive, got %d", c.Realtime.MaxReconnectAttempts)
	}
	if c.Polling.NotificationsInterval < time.Second || c.Polling.PaymentsInterval < time.Second {
		return errors.New("polling intervals must be at least 1s")
	}
	return nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, API: %s, Realtime: %s, Redis: %s (enabled=%t), Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.API.BaseURL,
		c.Realtime.Endpoint,
		c.Redis.Address,
		c.Redis.Enabled,
		c.Instance.ID,
	)
}
