// Package region decides which AWS region a run targets.
package region

import (
	"context"
	"os"

	"github.com/rileyhilliard/ssmdeploy/internal/logger"
)

// EnvVar is the environment variable consulted for the region.
const EnvVar = "AWS_REGION"

// Prompter asks the operator for a region. An empty answer is valid.
type Prompter interface {
	PromptRegion(ctx context.Context) (string, error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(ctx context.Context) (string, error)

// PromptRegion implements Prompter.
func (f PromptFunc) PromptRegion(ctx context.Context) (string, error) {
	return f(ctx)
}

// Source says where a resolved region came from.
type Source string

const (
	SourceFlag   Source = "flag"
	SourceEnv    Source = "env"
	SourceConfig Source = "config"
	SourcePrompt Source = "prompt"
)

// Resolver picks the region from, in order: the --region flag, AWS_REGION,
// the config file, and finally an interactive prompt.
type Resolver struct {
	Getenv   func(string) string
	Prompter Prompter
	Log      logger.Logger
}

// NewResolver returns a Resolver reading the process environment.
func NewResolver(p Prompter, log logger.Logger) *Resolver {
	return &Resolver{Getenv: os.Getenv, Prompter: p, Log: log}
}

// Resolve returns the region and its source. Values are used verbatim. When
// the prompt is reached and the operator enters nothing, Resolve returns ""
// with a nil error; the caller decides to stop.
func (r *Resolver) Resolve(ctx context.Context, flagValue, configValue string) (string, Source, error) {
	if flagValue != "" {
		return flagValue, SourceFlag, nil
	}

	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvVar); v != "" {
		return v, SourceEnv, nil
	}

	if configValue != "" {
		return configValue, SourceConfig, nil
	}

	log := r.Log
	if log == nil {
		log = logger.Noop()
	}
	log.Warn("%s environment variable not set.", EnvVar)

	if r.Prompter == nil {
		return "", SourcePrompt, nil
	}

	v, err := r.Prompter.PromptRegion(ctx)
	if err != nil {
		return "", SourcePrompt, err
	}
	return v, SourcePrompt, nil
}
