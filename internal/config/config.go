// Package config loads and validates the application configuration from
// config.yaml, TELEARR_* environment variables, and built-in defaults.
package config

import (
	"fmt"
	"time"
)

// ServerConfig describes how to reach one HTTP service.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Port int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path string `mapstructure:"path"`
	SSL  bool   `mapstructure:"ssl"`
}

// URL builds the base URL for the service, including any base path.
func (s ServerConfig) URL() string {
	scheme := "http"
	if s.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, s.Addr, s.Port, s.Path)
}

// ArrConfig configures one of the *arr services (Radarr, Sonarr, Lidarr).
type ArrConfig struct {
	Enabled             bool         `mapstructure:"enabled"`
	Server              ServerConfig `mapstructure:"server"`
	APIKey              string       `mapstructure:"api_key"`
	ExcludedRootFolders []string     `mapstructure:"excluded_root_folders"`
}

// SABnzbdConfig configures the SABnzbd download queue manager.
type SABnzbdConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Server  ServerConfig `mapstructure:"server"`
	APIKey  string       `mapstructure:"api_key"`
}

// TransmissionConfig configures the Transmission torrent client RPC endpoint.
type TransmissionConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	SSL      bool   `mapstructure:"ssl"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// TelegramConfig holds the bot token and authorization settings.
type TelegramConfig struct {
	Token          string  `mapstructure:"token" validate:"required"`
	AdminUserID    int64   `mapstructure:"admin_user_id" validate:"required,gt=0"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids"`
	ChatPassword   string  `mapstructure:"chat_password"`
	AdminNotifyID  int64   `mapstructure:"admin_notify_id"`
}

// LogConfig controls log level, format, and optional rotating file output.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"omitempty,min=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"omitempty,min=0"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TaskConfig enables one scheduled task and sets its cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// HealthConfig controls the periodic service health checks.
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"min=1m"`
}

// NotifierConfig lists additional shoutrrr notification URLs that receive
// admin-level notifications alongside the Telegram admin chat.
type NotifierConfig struct {
	URLs []string `mapstructure:"urls"`
}

// Config is the root application configuration.
type Config struct {
	Log          LogConfig          `mapstructure:"log"`
	Telegram     TelegramConfig     `mapstructure:"telegram"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Health       HealthConfig       `mapstructure:"health"`
	Notifier     NotifierConfig     `mapstructure:"notifier"`
	Radarr       ArrConfig          `mapstructure:"radarr"`
	Sonarr       ArrConfig          `mapstructure:"sonarr"`
	Lidarr       ArrConfig          `mapstructure:"lidarr"`
	SABnzbd      SABnzbdConfig      `mapstructure:"sabnzbd"`
	Transmission TransmissionConfig `mapstructure:"transmission"`
}

// IsUserAllowed reports whether a user may issue media commands. The admin is
// always allowed; an empty allow-list admits everyone.
func (c *Config) IsUserAllowed(userID int64) bool {
	if userID == c.Telegram.AdminUserID {
		return true
	}
	if len(c.Telegram.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.Telegram.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
