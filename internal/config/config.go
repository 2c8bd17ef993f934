package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Content    ContentConfig    `mapstructure:"content"`
	DB         DBConfig         `mapstructure:"db"`
	CMS        CMSConfig        `mapstructure:"cms"`
	OAuth      OAuthConfig      `mapstructure:"oauth"`
	Owner      OwnerConfig      `mapstructure:"owner"`
	Session    SessionConfig    `mapstructure:"session"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Preview    PreviewConfig    `mapstructure:"preview"`
	Newsletter NewsletterConfig `mapstructure:"newsletter"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port    string    `mapstructure:"port"`
	BaseURL string    `mapstructure:"base_url"`
	TLS     TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// Content backends.
const (
	BackendCMS = "cms"
	BackendSQL = "sql"
)

// ContentConfig selects the store that serves article, pillar and author reads.
type ContentConfig struct {
	Backend string `mapstructure:"backend"` // "cms" or "sql"
}

// DBConfig holds database-specific configuration.
// An empty DSN is allowed; the relational store then reports itself as unconfigured.
type DBConfig struct {
	Driver string `mapstructure:"driver"` // "mysql", "sqlite3" or "pgx"
	DSN    string `mapstructure:"dsn"`
}

// CMSConfig holds headless CMS connection settings.
type CMSConfig struct {
	ProjectID  string `mapstructure:"project_id"`
	Dataset    string `mapstructure:"dataset"`
	APIVersion string `mapstructure:"api_version"`
	APIHost    string `mapstructure:"api_host"`
	UseCDN     bool   `mapstructure:"use_cdn"`
	Token      string `mapstructure:"token"`
}

// OAuthConfig holds OIDC client configuration.
type OAuthConfig struct {
	ServerURL    string `mapstructure:"server_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// OwnerConfig identifies the site owner.
type OwnerConfig struct {
	OpenID string `mapstructure:"open_id"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	Lifetime   int    `mapstructure:"lifetime"` // hours
	CookieName string `mapstructure:"cookie_name"`
}

// CacheConfig holds settings for the CMS response cache.
type CacheConfig struct {
	FilePath string        `mapstructure:"file_path"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// PreviewConfig controls access to draft content.
type PreviewConfig struct {
	RequireAdmin bool `mapstructure:"require_admin"`
}

// NewsletterConfig holds newsletter form settings.
type NewsletterConfig struct {
	RatePerMinute int `mapstructure:"rate_per_minute"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("content.backend", BackendCMS)
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "")
	v.SetDefault("cms.project_id", "")
	v.SetDefault("cms.dataset", "production")
	v.SetDefault("cms.api_version", "2021-06-07")
	v.SetDefault("cms.api_host", "")
	v.SetDefault("cms.use_cdn", false)
	v.SetDefault("cms.token", "")
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("oauth.server_url", "")
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_url", "")
	v.SetDefault("owner.open_id", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.lifetime", 24*365)
	v.SetDefault("session.cookie_name", "app_session_id")
	v.SetDefault("cache.file_path", "file::memory:")
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("preview.require_admin", true)
	v.SetDefault("newsletter.rate_per_minute", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	return Load(viper.New(), "")
}

// Load reads configuration into a Config using v. When path is non-empty it is
// used as the config file instead of searching the default locations.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mbs-hub/")
		v.AddConfigPath("$HOME/.mbs-hub")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	v.SetEnvPrefix("MBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Content.Backend = strings.ToLower(strings.TrimSpace(cfg.Content.Backend))

	return &cfg, nil
}
