// Package config holds every tunable of the server. Values come from
// defaults, then INTOUCH_* environment variables, then an optional JSON file.
package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	HTTP      HTTPConfig      `json:"http"`
	WebSocket WebSocketConfig `json:"websocket"`
	Auth      AuthConfig      `json:"auth"`
	Presence  PresenceConfig  `json:"presence"`
	Delivery  DeliveryConfig  `json:"delivery"`
	Chat      ChatConfig      `json:"chat"`
	API       APIConfig       `json:"api"`
	Log       LogConfig       `json:"log"`
}

type DatabaseConfig struct {
	Path           string        `validate:"required"`
	MaxConnections int           `validate:"gte=1"`
	BusyTimeout    time.Duration `validate:"gte=0"`
	WriteTimeout   time.Duration `validate:"gt=0"`
}

type HTTPConfig struct {
	Host            string        `validate:"required"`
	Port            int           `validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// Addr is the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type WebSocketConfig struct {
	PingInterval time.Duration `validate:"gt=0,ltfield=PongWait"`
	PongWait     time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
	SendBuffer   int           `validate:"gte=1"`
	ReadLimit    int64         `validate:"gte=1024"`
	// AllowedOrigins applies to the upgrade and to CORS. Empty allows all.
	AllowedOrigins []string
}

type AuthConfig struct {
	Secret     string        `validate:"required,min=16"`
	Issuer     string        `validate:"required"`
	TokenTTL   time.Duration `validate:"gt=0"`
	CookieName string
}

type PresenceConfig struct {
	// ActivityThrottle spaces UserActive broadcasts per user. Zero disables it.
	ActivityThrottle time.Duration `validate:"gte=0"`
}

type DeliveryConfig struct {
	PumpInterval time.Duration `validate:"gt=0"`
	PendingTTL   time.Duration `validate:"gt=0"`
	TypingTTL    time.Duration `validate:"gt=0"`
}

type ChatConfig struct {
	MaxContentRunes     int           `validate:"gte=0"`
	MaxMalformedFrames  int           `validate:"gte=0"`
	RateLimit           int           `validate:"gte=0"`
	RateWindow          time.Duration `validate:"gt=0"`
	MaintenanceInterval time.Duration `validate:"gt=0"`
}

type APIConfig struct {
	DefaultHistoryLimit int `validate:"gte=1,ltefield=MaxHistoryLimit"`
	MaxHistoryLimit     int `validate:"gte=1"`
}

type LogConfig struct {
	Level string `validate:"oneof=DEBUG INFO WARN ERROR"`
}

func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:           "./data/intouch.db",
			MaxConnections: 10,
			BusyTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			PongWait:     60 * time.Second,
			WriteTimeout: 5 * time.Second,
			SendBuffer:   100,
			ReadLimit:    64 * 1024,
		},
		Auth: AuthConfig{
			Issuer:     "intouch",
			TokenTTL:   24 * time.Hour,
			CookieName: "intouch_token",
		},
		Presence: PresenceConfig{
			ActivityThrottle: time.Minute,
		},
		Delivery: DeliveryConfig{
			PumpInterval: 2 * time.Second,
			PendingTTL:   24 * time.Hour,
			TypingTTL:    10 * time.Second,
		},
		Chat: ChatConfig{
			MaxContentRunes:     4000,
			MaxMalformedFrames:  3,
			RateLimit:           100,
			RateWindow:          time.Minute,
			MaintenanceInterval: 5 * time.Minute,
		},
		API: APIConfig{
			DefaultHistoryLimit: 50,
			MaxHistoryLimit:     200,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// environment is the flat view of Config read from INTOUCH_* variables.
// Fields start from the current values, so unset variables change nothing.
type environment struct {
	DatabasePath           string        `env:"INTOUCH_DATABASE_PATH"`
	DatabaseMaxConnections int           `env:"INTOUCH_DATABASE_MAX_CONNECTIONS"`
	DatabaseBusyTimeout    time.Duration `env:"INTOUCH_DATABASE_BUSY_TIMEOUT"`
	DatabaseWriteTimeout   time.Duration `env:"INTOUCH_DATABASE_WRITE_TIMEOUT"`

	HTTPHost            string        `env:"INTOUCH_HTTP_HOST"`
	HTTPPort            int           `env:"INTOUCH_HTTP_PORT"`
	HTTPReadTimeout     time.Duration `env:"INTOUCH_HTTP_READ_TIMEOUT"`
	HTTPWriteTimeout    time.Duration `env:"INTOUCH_HTTP_WRITE_TIMEOUT"`
	HTTPShutdownTimeout time.Duration `env:"INTOUCH_HTTP_SHUTDOWN_TIMEOUT"`

	WebSocketPingInterval   time.Duration `env:"INTOUCH_WEBSOCKET_PING_INTERVAL"`
	WebSocketPongWait       time.Duration `env:"INTOUCH_WEBSOCKET_PONG_WAIT"`
	WebSocketWriteTimeout   time.Duration `env:"INTOUCH_WEBSOCKET_WRITE_TIMEOUT"`
	WebSocketSendBuffer     int           `env:"INTOUCH_WEBSOCKET_SEND_BUFFER"`
	WebSocketReadLimit      int64         `env:"INTOUCH_WEBSOCKET_READ_LIMIT"`
	WebSocketAllowedOrigins string        `env:"INTOUCH_ALLOWED_ORIGINS"`

	AuthSecret     string        `env:"INTOUCH_AUTH_SECRET"`
	AuthIssuer     string        `env:"INTOUCH_AUTH_ISSUER"`
	AuthTokenTTL   time.Duration `env:"INTOUCH_AUTH_TOKEN_TTL"`
	AuthCookieName string        `env:"INTOUCH_AUTH_COOKIE_NAME"`

	PresenceActivityThrottle time.Duration `env:"INTOUCH_PRESENCE_ACTIVITY_THROTTLE"`

	DeliveryPumpInterval time.Duration `env:"INTOUCH_DELIVERY_PUMP_INTERVAL"`
	DeliveryPendingTTL   time.Duration `env:"INTOUCH_DELIVERY_PENDING_TTL"`
	DeliveryTypingTTL    time.Duration `env:"INTOUCH_DELIVERY_TYPING_TTL"`

	ChatMaxContentRunes     int           `env:"INTOUCH_CHAT_MAX_CONTENT_RUNES"`
	ChatMaxMalformedFrames  int           `env:"INTOUCH_CHAT_MAX_MALFORMED_FRAMES"`
	ChatRateLimit           int           `env:"INTOUCH_CHAT_RATE_LIMIT"`
	ChatRateWindow          time.Duration `env:"INTOUCH_CHAT_RATE_WINDOW"`
	ChatMaintenanceInterval time.Duration `env:"INTOUCH_CHAT_MAINTENANCE_INTERVAL"`

	APIDefaultHistoryLimit int `env:"INTOUCH_API_DEFAULT_HISTORY_LIMIT"`
	APIMaxHistoryLimit     int `env:"INTOUCH_API_MAX_HISTORY_LIMIT"`

	LogLevel string `env:"INTOUCH_LOG_LEVEL"`
}

// ApplyEnv overlays INTOUCH_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	e := environment{
		DatabasePath:             c.Database.Path,
		DatabaseMaxConnections:   c.Database.MaxConnections,
		DatabaseBusyTimeout:      c.Database.BusyTimeout,
		DatabaseWriteTimeout:     c.Database.WriteTimeout,
		HTTPHost:                 c.HTTP.Host,
		HTTPPort:                 c.HTTP.Port,
		HTTPReadTimeout:          c.HTTP.ReadTimeout,
		HTTPWriteTimeout:         c.HTTP.WriteTimeout,
		HTTPShutdownTimeout:      c.HTTP.ShutdownTimeout,
		WebSocketPingInterval:    c.WebSocket.PingInterval,
		WebSocketPongWait:        c.WebSocket.PongWait,
		WebSocketWriteTimeout:    c.WebSocket.WriteTimeout,
		WebSocketSendBuffer:      c.WebSocket.SendBuffer,
		WebSocketReadLimit:       c.WebSocket.ReadLimit,
		WebSocketAllowedOrigins:  strings.Join(c.WebSocket.AllowedOrigins, ","),
		AuthSecret:               c.Auth.Secret,
		AuthIssuer:               c.Auth.Issuer,
		AuthTokenTTL:             c.Auth.TokenTTL,
		AuthCookieName:           c.Auth.CookieName,
		PresenceActivityThrottle: c.Presence.ActivityThrottle,
		DeliveryPumpInterval:     c.Delivery.PumpInterval,
		DeliveryPendingTTL:       c.Delivery.PendingTTL,
		DeliveryTypingTTL:        c.Delivery.TypingTTL,
		ChatMaxContentRunes:      c.Chat.MaxContentRunes,
		ChatMaxMalformedFrames:   c.Chat.MaxMalformedFrames,
		ChatRateLimit:            c.Chat.RateLimit,
		ChatRateWindow:           c.Chat.RateWindow,
		ChatMaintenanceInterval:  c.Chat.MaintenanceInterval,
		APIDefaultHistoryLimit:   c.API.DefaultHistoryLimit,
		APIMaxHistoryLimit:       c.API.MaxHistoryLimit,
		LogLevel:                 c.Log.Level,
	}

	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c.Database = DatabaseConfig{
		Path:           e.DatabasePath,
		MaxConnections: e.DatabaseMaxConnections,
		BusyTimeout:    e.DatabaseBusyTimeout,
		WriteTimeout:   e.DatabaseWriteTimeout,
	}
	c.HTTP = HTTPConfig{
		Host:            e.HTTPHost,
		Port:            e.HTTPPort,
		ReadTimeout:     e.HTTPReadTimeout,
		WriteTimeout:    e.HTTPWriteTimeout,
		ShutdownTimeout: e.HTTPShutdownTimeout,
	}
	c.WebSocket = WebSocketConfig{
		PingInterval:   e.WebSocketPingInterval,
		PongWait:       e.WebSocketPongWait,
		WriteTimeout:   e.WebSocketWriteTimeout,
		SendBuffer:     e.WebSocketSendBuffer,
		ReadLimit:      e.WebSocketReadLimit,
		AllowedOrigins: splitList(e.WebSocketAllowedOrigins),
	}
	c.Auth = AuthConfig{
		Secret:     e.AuthSecret,
		Issuer:     e.AuthIssuer,
		TokenTTL:   e.AuthTokenTTL,
		CookieName: e.AuthCookieName,
	}
	c.Presence.ActivityThrottle = e.PresenceActivityThrottle
	c.Delivery = DeliveryConfig{
		PumpInterval: e.DeliveryPumpInterval,
		PendingTTL:   e.DeliveryPendingTTL,
		TypingTTL:    e.DeliveryTypingTTL,
	}
	c.Chat = ChatConfig{
		MaxContentRunes:     e.ChatMaxContentRunes,
		MaxMalformedFrames:  e.ChatMaxMalformedFrames,
		RateLimit:           e.ChatRateLimit,
		RateWindow:          e.ChatRateWindow,
		MaintenanceInterval: e.ChatMaintenanceInterval,
	}
	c.API = APIConfig{
		DefaultHistoryLimit: e.APIDefaultHistoryLimit,
		MaxHistoryLimit:     e.APIMaxHistoryLimit,
	}
	c.Log.Level = strings.ToUpper(e.LogLevel)
	return nil
}

func splitList(raw string) []string {
	items := lo.Map(strings.Split(raw, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return lo.Compact(items)
}

// LoadFromEnv returns the defaults overlaid with the environment.
func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load resolves the configuration with precedence file > environment >
// defaults and validates the result. path may be empty.
func Load(path string) (*Config, error) {
	cfg, err := LoadFromEnv()
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
