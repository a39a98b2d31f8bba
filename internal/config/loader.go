package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigPaths are searched in priority order when no path is given
var ConfigPaths = []string{
	"./.playground.yaml",
	"~/.config/playground/config.yaml",
}

// Loader merges defaults, the first config file found and environment
// overrides. Command line flags are applied by the caller.
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

func (l *Loader) Load(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, errors.Wrapf(err, "failed to load config from %s", customPath)
		}
	} else {
		for _, path := range l.configPaths {
			expanded := expandHome(path)
			if _, err := os.Stat(expanded); err != nil {
				continue
			}
			if err := l.loadFromFile(config, expanded); err != nil {
				return nil, errors.Wrapf(err, "failed to load config from %s", expanded)
			}
			break
		}
	}

	if err := l.applyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func (l *Loader) applyEnv(config *Config) error {
	if v := l.getenv("PLAYGROUND_SERVER_ORIGIN"); v != "" {
		config.Server.Origin = v
	}
	if v := l.getenv("PLAYGROUND_SERVER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "invalid PLAYGROUND_SERVER_TIMEOUT")
		}
		config.Server.Timeout = d
	}
	if v := l.getenv("PLAYGROUND_STORE_BACKEND"); v != "" {
		config.Store.Backend = v
	}
	if v := l.getenv("PLAYGROUND_REDIS_ADDRESS"); v != "" {
		config.Store.RedisAddress = v
	}
	if v := l.getenv("PLAYGROUND_WEB_ADDRESS"); v != "" {
		config.Web.Address = v
	}
	if v := l.getenv("PLAYGROUND_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "invalid PLAYGROUND_WORKERS")
		}
		config.Batch.Workers = n
	}
	if v := l.getenv("PLAYGROUND_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := l.getenv("PLAYGROUND_SENTRY_DSN"); v != "" {
		config.Sentry.DSN = v
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
