// Package config loads service settings from an optional YAML file and the
// process environment. Environment variables win over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"
)

type AuthConf struct {
	Mode        string `json:",default=jwt,options=jwt|remote"`
	SupabaseURL string `json:",optional"`
	AnonKey     string `json:",optional"`
	JWTSecret   string `json:",optional"`
	Audience    string `json:",default=authenticated"`
}

type LLMConf struct {
	APIKey         string `json:",optional"`
	BaseURL        string `json:",default=https://openrouter.ai/api/v1"`
	Model          string `json:",default=openai/gpt-5-nano"`
	TimeoutSeconds int    `json:",default=60"`
}

type RedisConf struct {
	Addr string `json:",optional"`
	Pass string `json:",optional"`
}

type RateLimitConf struct {
	WriteMax      int `json:",default=60"`
	WindowSeconds int `json:",default=60"`
}

type TelegramConf struct {
	Token string `json:",optional"`
}

type Config struct {
	Port        string `json:",default=8080"`
	DatabaseURL string `json:",optional"`
	CorsOrigin  string `json:",default=*"`
	Timezone    string `json:",optional"`

	Auth      AuthConf
	LLM       LLMConf
	Redis     RedisConf
	RateLimit RateLimitConf
	Telegram  TelegramConf
	Log       logx.LogConf
}

// Load reads path when set, otherwise starts from defaults, then applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	var c Config
	var err error
	if path != "" {
		err = conf.Load(path, &c, conf.UseEnv())
	} else {
		err = conf.FillDefault(&c)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	c.applyEnv()
	if c.Log.ServiceName == "" {
		c.Log.ServiceName = "greenledger"
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.CorsOrigin, "CORS_ORIGIN")
	setString(&c.Timezone, "TIMEZONE")

	setString(&c.Auth.Mode, "AUTH_MODE")
	setString(&c.Auth.SupabaseURL, "SUPABASE_URL")
	setString(&c.Auth.AnonKey, "SUPABASE_ANON_KEY")
	setString(&c.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	setString(&c.Auth.Audience, "SUPABASE_JWT_AUDIENCE")

	setString(&c.LLM.APIKey, "OPENROUTER_API_KEY")
	setString(&c.LLM.BaseURL, "OPENROUTER_BASE_URL")
	setString(&c.LLM.Model, "OPENROUTER_MODEL")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Pass, "REDIS_PASS")

	setInt(&c.RateLimit.WriteMax, "RATE_LIMIT_WRITE_MAX")
	setInt(&c.RateLimit.WindowSeconds, "RATE_LIMIT_WINDOW_SECONDS")

	setString(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setString(&c.Log.Level, "LOG_LEVEL")

	c.Auth.Mode = strings.ToLower(c.Auth.Mode)
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("SUPABASE_JWT_SECRET is not set")
		}
	case AuthModeRemote:
		if c.Auth.SupabaseURL == "" || c.Auth.AnonKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required for remote auth")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, falling back to the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			*dst = parsed
		}
	}
}
