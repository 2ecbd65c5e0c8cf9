// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// DefaultAllowedOrigins are the browser origins accepted by CORS when nothing is configured.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8000",
	"http://127.0.0.1:8000",
	"http://127.0.0.1:5500",
}

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Feed     FeedConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host           string
	Port           int
	MaxBodySize    int // in MB
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical
	SecretKey     string // HMAC secret for signing access tokens
	Algorithm     string // HS256, HS384, HS512
	TokenTTL      time.Duration
	CookieName    string
	CookieSecure  bool
	AllowDevKey   bool // generate a throwaway secret when SecretKey is empty
	DefaultExpiry time.Duration
}

type FeedConfig struct {
	Interval time.Duration
}

func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		Server: ServerConfig{
			Host:           cmd.String("host"),
			Port:           int(cmd.Int("port")),
			MaxBodySize:    int(cmd.Int("max-body-size")),
			AllowedOrigins: splitOrigins(cmd.StringSlice("cors-allowed-origins")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Auth: AuthConfig{
			SecretKey:     cmd.String("secret-key"),
			Algorithm:     strings.ToUpper(cmd.String("algorithm")),
			TokenTTL:      time.Duration(cmd.Int("access-token-expire-minutes")) * time.Minute,
			CookieName:    cmd.String("cookie-name"),
			CookieSecure:  cmd.Bool("cookie-secure"),
			AllowDevKey:   IsLocalhost(cmd.String("host")),
			DefaultExpiry: 15 * time.Minute,
		},
		Feed: FeedConfig{
			Interval: cmd.Duration("feed-interval"),
		},
	}
}

// splitOrigins flattens comma separated entries, which is how env vars and TOML strings arrive.
func splitOrigins(values []string) []string {
	var origins []string
	for _, v := range values {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	if len(origins) == 0 {
		return DefaultAllowedOrigins
	}
	return origins
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8000,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   5,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringSliceFlag{
			Name:    "cors-allowed-origins",
			Value:   DefaultAllowedOrigins,
			Usage:   "Origins allowed to make cross-origin requests",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CORS_ALLOWED_ORIGINS"), toml.TOML("server.cors_allowed_origins", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:  "database-dsn",
			Value: "./data/app.db",
			Usage: "Database DSN (SQLite path or postgres:// URL)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DATABASE_DSN"),
				cli.EnvVar("DATABASE_URL"),
				toml.TOML("database.dsn", configFile),
			),
		},
		// Auth flags
		&cli.StringFlag{
			Name:    "secret-key",
			Usage:   "Secret used to sign access tokens (random in local dev if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SECRET_KEY"), toml.TOML("auth.secret_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "algorithm",
			Value:   "HS256",
			Usage:   "Token signing algorithm (HS256, HS384, HS512)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ALGORITHM"), toml.TOML("auth.algorithm", configFile)),
		},
		&cli.IntFlag{
			Name:    "access-token-expire-minutes",
			Value:   10080, // 7 days
			Usage:   "Lifetime of access tokens issued at login, in minutes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ACCESS_TOKEN_EXPIRE_MINUTES"), toml.TOML("auth.access_token_expire_minutes", configFile)),
		},
		&cli.StringFlag{
			Name:    "cookie-name",
			Value:   "access_token",
			Usage:   "Name of the access token cookie",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COOKIE_NAME"), toml.TOML("auth.cookie_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "cookie-secure",
			Value:   true,
			Usage:   "Mark the access token cookie as Secure",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COOKIE_SECURE"), toml.TOML("auth.cookie_secure", configFile)),
		},
		// Feed flags
		&cli.DurationFlag{
			Name:    "feed-interval",
			Value:   3 * time.Second,
			Usage:   "Delay between live feed updates",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FEED_INTERVAL"), toml.TOML("feed.interval", configFile)),
		},
	}
}
