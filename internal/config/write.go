package config

import (
	"os"

	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"gopkg.in/yaml.v3"
)

const fileHeader = `# ssmdeploy configuration
# Run 'ssmdeploy' to pick an instance and deploy to it
# Precedence for region: --region, AWS_REGION, this file, interactive prompt

`

// fileDeploy mirrors DeployConfig with durations as strings so the written
// file reads "10m0s" instead of nanoseconds.
type fileDeploy struct {
	User         string `yaml:"user"`
	Dir          string `yaml:"dir"`
	Script       string `yaml:"script"`
	Document     string `yaml:"document"`
	Timeout      string `yaml:"timeout"`
	InitialDelay string `yaml:"initial_delay"`
	PollInterval string `yaml:"poll_interval"`
}

type fileConfig struct {
	Version     int          `yaml:"version"`
	Region      string       `yaml:"region,omitempty"`
	Profile     string       `yaml:"profile,omitempty"`
	EndpointURL string       `yaml:"endpoint_url,omitempty"`
	Deploy      fileDeploy   `yaml:"deploy"`
	Output      OutputConfig `yaml:"output"`
}

// Marshal renders cfg as YAML with a header comment.
func Marshal(cfg *Config) ([]byte, error) {
	doc := fileConfig{
		Version:     cfg.Version,
		Region:      cfg.Region,
		Profile:     cfg.Profile,
		EndpointURL: cfg.EndpointURL,
		Deploy: fileDeploy{
			User:         cfg.Deploy.User,
			Dir:          cfg.Deploy.Dir,
			Script:       cfg.Deploy.Script,
			Document:     cfg.Deploy.Document,
			Timeout:      cfg.Deploy.Timeout.String(),
			InitialDelay: cfg.Deploy.InitialDelay.String(),
			PollInterval: cfg.Deploy.PollInterval.String(),
		},
		Output: cfg.Output,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	return append([]byte(fileHeader), data...), nil
}

// Write marshals cfg and writes it to path.
func Write(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check directory permissions")
	}
	return nil
}
