package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 5555
)

type (
	Config struct {
		LogLevel logrus.Level
		// Verbose installs a tracer on every queue.
		Verbose bool
		// MallocFail is the percentage of allocations the harness refuses.
		MallocFail int
		HTTP       HTTP
	}

	HTTP struct {
		Host string
		Port int
	}
)

// Load reads QLAB_* environment variables, falling back to defaults for
// the ones that are unset.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		LogLevel: logrus.InfoLevel,
		HTTP: HTTP{
			Host: DefaultHost,
			Port: DefaultPort,
		},
	}

	if v := getenv("QLAB_API_HOST"); v != "" {
		cfg.HTTP.Host = v
	}

	if v := getenv("QLAB_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(err, "config: invalid QLAB_API_PORT %q", v)
		}
		cfg.HTTP.Port = port
	}

	if v := getenv("QLAB_LOG_LEVEL"); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, errors.Wrap(err, "config: invalid QLAB_LOG_LEVEL")
		}
		cfg.LogLevel = level
	}

	if v := getenv("QLAB_VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "config: invalid QLAB_VERBOSE %q", v)
		}
		cfg.Verbose = verbose
	}

	if v := getenv("QLAB_MALLOC_FAIL"); v != "" {
		pct, err := strconv.Atoi(v)
		if err != nil || pct < 0 || pct > 100 {
			return nil, errors.Errorf("config: QLAB_MALLOC_FAIL must be between 0 and 100, got %q", v)
		}
		cfg.MallocFail = pct
	}

	return cfg, nil
}
