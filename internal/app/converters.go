package app

import (
	"github.com/redis/go-redis/v9"

	"github.com/billalcoder/skinCare/internal/ai"
	"github.com/billalcoder/skinCare/internal/auth"
	"github.com/billalcoder/skinCare/internal/database"
	"github.com/billalcoder/skinCare/internal/ocr"
	"github.com/billalcoder/skinCare/pkg/mail"
)

// DatabaseConfig maps the loaded configuration onto the storage layer's options.
func (c *Config) DatabaseConfig() database.Config {
	cfg := database.Config{
		Driver: c.Database.Driver,
		Path:   c.Database.Path,
		DSN:    c.Database.DSN,
	}

	switch c.Database.Driver {
	case "postgres", "postgresql":
		cfg.Host = c.Database.Postgres.Host
		cfg.Port = c.Database.Postgres.Port
		cfg.Name = c.Database.Postgres.Database
		cfg.User = c.Database.Postgres.Username
		cfg.Password = c.Database.Postgres.Password
	case "mysql":
		cfg.Host = c.Database.MySQL.Host
		cfg.Port = c.Database.MySQL.Port
		cfg.Name = c.Database.MySQL.Database
		cfg.User = c.Database.MySQL.Username
		cfg.Password = c.Database.MySQL.Password
	}

	return cfg
}

// JWTConfig maps the auth settings onto the token authority's options.
func (c *Config) JWTConfig() auth.JWTConfig {
	return auth.JWTConfig{
		Secret:   c.Auth.JWT.Secret,
		Issuer:   c.Auth.JWT.Issuer,
		TokenTTL: c.Auth.JWT.TTL,
	}
}

// SMTPSettings maps the email settings onto the mailer's options.
func (c *Config) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.Email.SMTP.Enabled,
		Host:     c.Email.SMTP.Host,
		Port:     c.Email.SMTP.Port,
		Username: c.Email.SMTP.Username,
		Password: c.Email.SMTP.Password,
		From:     c.Email.SMTP.From,
		UseTLS:   c.Email.SMTP.UseTLS,
		Timeout:  c.Email.SMTP.Timeout,
	}
}

// OCRClientConfig maps the OCR settings onto the extractor client's options.
func (c *Config) OCRClientConfig() ocr.Config {
	return ocr.Config{
		BaseURL: c.OCR.BaseURL,
		APIKey:  c.OCR.APIKey,
		Timeout: c.OCR.Timeout,
	}
}

// AIClientConfig maps the advisor settings onto the AI client's options.
func (c *Config) AIClientConfig() ai.Config {
	return ai.Config{
		BaseURL: c.AI.BaseURL,
		APIKey:  c.AI.APIKey,
		Model:   c.AI.Model,
		Timeout: c.AI.Timeout,
	}
}

// RedisClient builds the optional session-cache client; nil when disabled.
func (c *Config) RedisClient() redis.UniversalClient {
	if !c.Cache.Redis.Enabled {
		return nil
	}

	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       []string{c.Cache.Redis.Address},
		Username:    c.Cache.Redis.Username,
		Password:    c.Cache.Redis.Password,
		DB:          c.Cache.Redis.DB,
		DialTimeout: c.Cache.Redis.Timeout,
	})
}
