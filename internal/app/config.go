package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowPath string // hcl files

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Workers         int
	TaskTimeout     time.Duration

	// ContinueOnError keeps the run going past failed tasks instead of
	// failing fast.
	ContinueOnError bool
	// NoRecovery disables error classification and automated fix runs.
	NoRecovery bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
