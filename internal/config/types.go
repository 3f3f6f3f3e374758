package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .ssmdeploy.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Region is used when neither --region nor AWS_REGION is set.
	Region string `yaml:"region" mapstructure:"region"`

	// Profile selects a named profile from the AWS shared config files.
	Profile string `yaml:"profile" mapstructure:"profile"`

	// EndpointURL overrides the EC2 and SSM endpoints (local simulators).
	EndpointURL string `yaml:"endpoint_url,omitempty" mapstructure:"endpoint_url"`

	Deploy DeployConfig `yaml:"deploy" mapstructure:"deploy"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// DeployConfig describes the remote command and how it is polled.
type DeployConfig struct {
	// User is the unprivileged account the script runs as (via sudo -u).
	User string `yaml:"user" mapstructure:"user"`

	// Dir is the directory the script runs from on the instance.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Script is run with bash from Dir.
	Script string `yaml:"script" mapstructure:"script"`

	// Document is the SSM document used to run the command.
	Document string `yaml:"document" mapstructure:"document"`

	// Timeout is enforced by SSM, not locally. Sent as whole seconds.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// InitialDelay is how long to wait after sending before the first status check.
	InitialDelay time.Duration `yaml:"initial_delay" mapstructure:"initial_delay"`

	// PollInterval is the wait between status checks.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// Defaults for the deploy command.
const (
	DefaultUser         = "ubuntu"
	DefaultDir          = "/home/ubuntu/Github/networth"
	DefaultScript       = "deploy.sh"
	DefaultDocument     = "AWS-RunShellScript"
	DefaultTimeout      = 600 * time.Second
	DefaultInitialDelay = 5 * time.Second
	DefaultPollInterval = 5 * time.Second
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Deploy: DeployConfig{
			User:         DefaultUser,
			Dir:          DefaultDir,
			Script:       DefaultScript,
			Document:     DefaultDocument,
			Timeout:      DefaultTimeout,
			InitialDelay: DefaultInitialDelay,
			PollInterval: DefaultPollInterval,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
