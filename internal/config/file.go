package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Duration reads "30s"-style strings from JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// file mirrors Config with optional fields; only keys present in the
// document override the current values.
type file struct {
	Database *struct {
		Path           *string   `json:"path"`
		MaxConnections *int      `json:"max_connections"`
		BusyTimeout    *Duration `json:"busy_timeout"`
		WriteTimeout   *Duration `json:"write_timeout"`
	} `json:"database"`
	HTTP *struct {
		Host            *string   `json:"host"`
		Port            *int      `json:"port"`
		ReadTimeout     *Duration `json:"read_timeout"`
		WriteTimeout    *Duration `json:"write_timeout"`
		ShutdownTimeout *Duration `json:"shutdown_timeout"`
	} `json:"http"`
	WebSocket *struct {
		PingInterval   *Duration `json:"ping_interval"`
		PongWait       *Duration `json:"pong_wait"`
		WriteTimeout   *Duration `json:"write_timeout"`
		SendBuffer     *int      `json:"send_buffer"`
		ReadLimit      *int64    `json:"read_limit"`
		AllowedOrigins []string  `json:"allowed_origins"`
	} `json:"websocket"`
	Auth *struct {
		Secret     *string   `json:"secret"`
		Issuer     *string   `json:"issuer"`
		TokenTTL   *Duration `json:"token_ttl"`
		CookieName *string   `json:"cookie_name"`
	} `json:"auth"`
	Presence *struct {
		ActivityThrottle *Duration `json:"activity_throttle"`
	} `json:"presence"`
	Delivery *struct {
		PumpInterval *Duration `json:"pump_interval"`
		PendingTTL   *Duration `json:"pending_ttl"`
		TypingTTL    *Duration `json:"typing_ttl"`
	} `json:"delivery"`
	Chat *struct {
		MaxContentRunes     *int      `json:"max_content_runes"`
		MaxMalformedFrames  *int      `json:"max_malformed_frames"`
		RateLimit           *int      `json:"rate_limit"`
		RateWindow          *Duration `json:"rate_window"`
		MaintenanceInterval *Duration `json:"maintenance_interval"`
	} `json:"chat"`
	API *struct {
		DefaultHistoryLimit *int `json:"default_history_limit"`
		MaxHistoryLimit     *int `json:"max_history_limit"`
	} `json:"api"`
	Log *struct {
		Level *string `json:"level"`
	} `json:"log"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *Duration) {
	if src != nil {
		*dst = time.Duration(*src)
	}
}

// ApplyFile overlays the JSON document at path onto c.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f file
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidFile, path, err)
	}

	if d := f.Database; d != nil {
		set(&c.Database.Path, d.Path)
		set(&c.Database.MaxConnections, d.MaxConnections)
		setDuration(&c.Database.BusyTimeout, d.BusyTimeout)
		setDuration(&c.Database.WriteTimeout, d.WriteTimeout)
	}
	if h := f.HTTP; h != nil {
		set(&c.HTTP.Host, h.Host)
		set(&c.HTTP.Port, h.Port)
		setDuration(&c.HTTP.ReadTimeout, h.ReadTimeout)
		setDuration(&c.HTTP.WriteTimeout, h.WriteTimeout)
		setDuration(&c.HTTP.ShutdownTimeout, h.ShutdownTimeout)
	}
	if w := f.WebSocket; w != nil {
		setDuration(&c.WebSocket.PingInterval, w.PingInterval)
		setDuration(&c.WebSocket.PongWait, w.PongWait)
		setDuration(&c.WebSocket.WriteTimeout, w.WriteTimeout)
		set(&c.WebSocket.SendBuffer, w.SendBuffer)
		set(&c.WebSocket.ReadLimit, w.ReadLimit)
		if w.AllowedOrigins != nil {
			c.WebSocket.AllowedOrigins = w.AllowedOrigins
		}
	}
	if a := f.Auth; a != nil {
		set(&c.Auth.Secret, a.Secret)
		set(&c.Auth.Issuer, a.Issuer)
		setDuration(&c.Auth.TokenTTL, a.TokenTTL)
		set(&c.Auth.CookieName, a.CookieName)
	}
	if p := f.Presence; p != nil {
		setDuration(&c.Presence.ActivityThrottle, p.ActivityThrottle)
	}
	if d := f.Delivery; d != nil {
		setDuration(&c.Delivery.PumpInterval, d.PumpInterval)
		setDuration(&c.Delivery.PendingTTL, d.PendingTTL)
		setDuration(&c.Delivery.TypingTTL, d.TypingTTL)
	}
	if ch := f.Chat; ch != nil {
		set(&c.Chat.MaxContentRunes, ch.MaxContentRunes)
		set(&c.Chat.MaxMalformedFrames, ch.MaxMalformedFrames)
		set(&c.Chat.RateLimit, ch.RateLimit)
		setDuration(&c.Chat.RateWindow, ch.RateWindow)
		setDuration(&c.Chat.MaintenanceInterval, ch.MaintenanceInterval)
	}
	if a := f.API; a != nil {
		set(&c.API.DefaultHistoryLimit, a.DefaultHistoryLimit)
		set(&c.API.MaxHistoryLimit, a.MaxHistoryLimit)
	}
	if l := f.Log; l != nil && l.Level != nil {
		c.Log.Level = strings.ToUpper(*l.Level)
	}
	return nil
}
