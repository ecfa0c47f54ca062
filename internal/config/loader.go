package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration in precedence order: defaults, the YAML file
// at path (missing file is tolerated), then TELEARR_* environment variables.
// The merged result is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TELEARR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func isNotExist(err error) bool {
	// viper wraps fs.PathError for explicit SetConfigFile paths
	return err != nil && strings.Contains(err.Error(), "no such file")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 3)

	// Keys must exist for AutomaticEnv to surface them during Unmarshal.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("database.path", "telearr.db")

	v.SetDefault("health.interval", 15*time.Minute)

	v.SetDefault("scheduler.tasks.health_check.enabled", true)
	v.SetDefault("scheduler.tasks.health_check.schedule", "*/15 * * * *")
	v.SetDefault("scheduler.tasks.store_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.store_maintenance.schedule", "0 4 * * *")

	v.SetDefault("radarr.server.port", 7878)
	v.SetDefault("sonarr.server.port", 8989)
	v.SetDefault("lidarr.server.port", 8686)
	v.SetDefault("sabnzbd.server.port", 8080)
	v.SetDefault("transmission.host", "localhost")
	v.SetDefault("transmission.port", 9091)
}
