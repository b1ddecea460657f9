// Package config loads bot configuration from defaults, an optional YAML
// file and TGOPS_* environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full runtime configuration.
type Config struct {
	Telegram TelegramConfig `koanf:"telegram"`
	Apps     AppsConfig     `koanf:"apps"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
	Kube     KubeConfig     `koanf:"kube"`

	// Users is the comma-separated allow-list of Telegram user IDs.
	Users string `koanf:"users"`
	// Loglinks maps app name to log URL, given as a JSON object.
	Loglinks string `koanf:"loglinks"`
}

type TelegramConfig struct {
	Token string `koanf:"token"`
	// Timeout is the long-poll timeout in seconds.
	Timeout int `koanf:"timeout"`
}

type AppsConfig struct {
	// Selector is the label selector for application pods.
	Selector string `koanf:"selector"`
	// Prefix marks the main container of a pod.
	Prefix string `koanf:"prefix"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type KubeConfig struct {
	// Kubeconfig overrides the in-cluster / $KUBECONFIG lookup.
	Kubeconfig string `koanf:"kubeconfig"`
}

// Load reads configuration. path may be empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("telegram.timeout", 30)
	k.Set("apps.selector", "tgops=true")
	k.Set("apps.prefix", "main-")
	k.Set("metrics.addr", ":8000")
	k.Set("log.level", "info")
	k.Set("log.format", "console")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// TGOPS_TELEGRAM_TOKEN -> telegram.token, TGOPS_USERS -> users, ...
	if err := k.Load(env.Provider("TGOPS_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TGOPS_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields without which the bot cannot start.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is not set (TGOPS_TELEGRAM_TOKEN)")
	}
	if strings.TrimSpace(c.Users) == "" {
		return errors.New("allowed users list is not set (TGOPS_USERS)")
	}
	if _, err := c.AllowedUsers(); err != nil {
		return err
	}
	if _, err := c.LogLinks(); err != nil {
		return err
	}
	return nil
}

// AllowedUsers parses the allow-list into user IDs.
func (c *Config) AllowedUsers() ([]int64, error) {
	var users []int64
	for _, part := range strings.Split(c.Users, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("allowed users must be comma-separated integers, got %q", part)
		}
		users = append(users, id)
	}
	return users, nil
}

// LogLinks parses the app→URL log-link map. An empty setting is a valid
// empty map.
func (c *Config) LogLinks() (map[string]string, error) {
	if strings.TrimSpace(c.Loglinks) == "" {
		return map[string]string{}, nil
	}
	links := map[string]string{}
	if err := json.Unmarshal([]byte(c.Loglinks), &links); err != nil {
		return nil, fmt.Errorf("loglinks must be a JSON object of app to URL: %w", err)
	}
	return links, nil
}
