package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // option files or directories, merged in order

	// Value overrides the value option of the files when HasValue is set.
	Value    any
	HasValue bool

	LogFormat string
	LogLevel  string

	Watch    bool
	Debounce time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	return &cfg, nil
}
