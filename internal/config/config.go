package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/teemow/outlook-mcp/internal/outlook"
)

// EnvPrefix prefixes every environment override, e.g.
// OUTLOOK_MCP_SERVER_READ_ONLY=true.
const EnvPrefix = "OUTLOOK_MCP"

// Transports accepted by the serve command.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

type Config struct {
	Outlook OutlookConfig `mapstructure:"outlook" yaml:"outlook"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type OutlookConfig struct {
	// ExcludedStores are store display names (shared or team mailboxes)
	// skipped by folder lookups and listings.
	ExcludedStores  []string        `mapstructure:"excluded_stores" yaml:"excluded_stores"`
	DefaultDaysBack int             `mapstructure:"default_days_back" yaml:"default_days_back"`
	AutoReply       AutoReplyConfig `mapstructure:"auto_reply" yaml:"auto_reply"`
}

// AutoReplyConfig holds the property schema names used for out-of-office
// settings. Leave a field empty when the mail server does not expose it.
type AutoReplyConfig struct {
	Enabled          string `mapstructure:"enabled" yaml:"enabled"`
	Scheduled        string `mapstructure:"scheduled" yaml:"scheduled"`
	StartTime        string `mapstructure:"start_time" yaml:"start_time"`
	EndTime          string `mapstructure:"end_time" yaml:"end_time"`
	InternalReply    string `mapstructure:"internal_reply" yaml:"internal_reply"`
	ExternalReply    string `mapstructure:"external_reply" yaml:"external_reply"`
	ExternalAudience string `mapstructure:"external_audience" yaml:"external_audience"`
}

// Properties converts the configuration for the outlook client.
func (a AutoReplyConfig) Properties() outlook.AutoReplyProperties {
	return outlook.AutoReplyProperties{
		Enabled:          a.Enabled,
		Scheduled:        a.Scheduled,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		InternalReply:    a.InternalReply,
		ExternalReply:    a.ExternalReply,
		ExternalAudience: a.ExternalAudience,
	}
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

type ServerConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	HTTPAddr  string `mapstructure:"http_addr" yaml:"http_addr"`
	ReadOnly  bool   `mapstructure:"read_only" yaml:"read_only"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		Outlook: OutlookConfig{
			ExcludedStores:  []string{},
			DefaultDaysBack: outlook.DefaultDaysBack,
			AutoReply:       AutoReplyConfig{Enabled: outlook.PropOOFState},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			HTTPAddr:  ":8080",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "outlook-mcp", "config.yaml"), nil
}

// FlagKeys maps serve command flags to configuration keys.
var FlagKeys = map[string]string{
	"transport":       "server.transport",
	"http-addr":       "server.http_addr",
	"read-only":       "server.read_only",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"log-file":        "log.file",
	"metrics-enabled": "metrics.enabled",
	"metrics-addr":    "metrics.addr",
	"excluded-stores": "outlook.excluded_stores",
	"days-back":       "outlook.default_days_back",
}

// Load reads path (DefaultPath when empty), applies OUTLOOK_MCP_* env
// overrides and then any flags in flags that were set explicitly. A missing
// config file is not an error.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return cfg, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("outlook.excluded_stores", cfg.Outlook.ExcludedStores)
	v.SetDefault("outlook.default_days_back", cfg.Outlook.DefaultDaysBack)
	v.SetDefault("outlook.auto_reply.enabled", cfg.Outlook.AutoReply.Enabled)
	v.SetDefault("outlook.auto_reply.scheduled", cfg.Outlook.AutoReply.Scheduled)
	v.SetDefault("outlook.auto_reply.start_time", cfg.Outlook.AutoReply.StartTime)
	v.SetDefault("outlook.auto_reply.end_time", cfg.Outlook.AutoReply.EndTime)
	v.SetDefault("outlook.auto_reply.internal_reply", cfg.Outlook.AutoReply.InternalReply)
	v.SetDefault("outlook.auto_reply.external_reply", cfg.Outlook.AutoReply.ExternalReply)
	v.SetDefault("outlook.auto_reply.external_audience", cfg.Outlook.AutoReply.ExternalAudience)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
	v.SetDefault("log.compress", cfg.Log.Compress)

	v.SetDefault("server.transport", cfg.Server.Transport)
	v.SetDefault("server.http_addr", cfg.Server.HTTPAddr)
	v.SetDefault("server.read_only", cfg.Server.ReadOnly)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
}

func Validate(cfg Config) error {
	switch cfg.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("invalid transport %q: must be %q or %q", cfg.Server.Transport, TransportStdio, TransportStreamableHTTP)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", cfg.Log.Format)
	}
	if cfg.Outlook.DefaultDaysBack < 0 {
		return errors.New("outlook.default_days_back must not be negative")
	}
	if cfg.Outlook.AutoReply.Enabled == "" {
		return errors.New("outlook.auto_reply.enabled must name a property")
	}
	return nil
}
