package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/ssmdeploy/internal/errors"
)

// SSM accepts TimeoutSeconds between 30 seconds and 30 days.
const (
	MinTimeout = 30 * time.Second
	MaxTimeout = 30 * 24 * time.Hour
)

var validColorModes = map[string]bool{
	"auto":   true,
	"always": true,
	"never":  true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but ssmdeploy only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest ssmdeploy release.")
	}

	if err := validateDeploy(cfg.Deploy); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'deploy' section in your .ssmdeploy.yaml.")
	}

	if !validColorModes[cfg.Output.Color] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("output.color must be auto, always, or never (got %q)", cfg.Output.Color),
			"Check the 'output' section in your .ssmdeploy.yaml.")
	}

	return nil
}

func validateDeploy(d DeployConfig) error {
	if strings.TrimSpace(d.User) == "" {
		return fmt.Errorf("deploy.user is required")
	}
	if strings.ContainsAny(d.User, " \t\n") {
		return fmt.Errorf("deploy.user %q cannot contain whitespace", d.User)
	}
	if d.User == "root" {
		return fmt.Errorf("deploy.user cannot be root")
	}
	if strings.TrimSpace(d.Dir) == "" {
		return fmt.Errorf("deploy.dir is required")
	}
	if strings.TrimSpace(d.Script) == "" {
		return fmt.Errorf("deploy.script is required")
	}
	if strings.TrimSpace(d.Document) == "" {
		return fmt.Errorf("deploy.document is required")
	}
	if d.Timeout < MinTimeout || d.Timeout > MaxTimeout {
		return fmt.Errorf("deploy.timeout must be between %s and %s (got %s)", MinTimeout, MaxTimeout, d.Timeout)
	}
	if d.Timeout%time.Second != 0 {
		return fmt.Errorf("deploy.timeout must be whole seconds (got %s)", d.Timeout)
	}
	if d.PollInterval <= 0 {
		return fmt.Errorf("deploy.poll_interval must be positive (got %s)", d.PollInterval)
	}
	if d.InitialDelay < 0 {
		return fmt.Errorf("deploy.initial_delay cannot be negative (got %s)", d.InitialDelay)
	}
	return nil
}
