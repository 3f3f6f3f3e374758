package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rileyhilliard/ssmdeploy/internal/cloud"
	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/instance"
	"github.com/rileyhilliard/ssmdeploy/internal/logger"
	"github.com/rileyhilliard/ssmdeploy/internal/region"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
)

// PickFunc asks the operator to choose one instance.
type PickFunc func(ctx context.Context, instances []instance.Instance) (*instance.Instance, error)

// Env holds everything a workflow reads from or writes to the outside world.
// Commands build it with newEnv; tests swap in fakes.
type Env struct {
	Out         io.Writer // progress and the command report
	ErrOut      io.Writer // warnings
	NewSession  cloud.Factory
	Credentials func(ctx context.Context, opts cloud.Options) (aws.Credentials, error)
	Pick        PickFunc
	Prompter    region.Prompter
	Getenv      func(string) string
	Log         logger.Logger
	Interactive bool // stdin and stdout are terminals
	Quiet       bool // drop progress lines, keep the report
}

// newEnv builds the Env commands run with.
var newEnv = defaultEnv

// defaultEnv wires the real terminal, AWS SDK, and prompts.
func defaultEnv() Env {
	interactive := ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)

	env := Env{
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		NewSession:  cloud.NewSession,
		Credentials: cloud.Credentials,
		Pick:        ui.PickInstance,
		Getenv:      os.Getenv,
		Log:         logger.NewEnvLogger("ssmdeploy"),
		Interactive: interactive,
		Quiet:       quietFlag,
	}
	if interactive {
		env.Prompter = &ui.RegionPrompter{}
	}
	return env
}

// WorkflowContext carries the state shared by the steps of one run.
type WorkflowContext struct {
	Config  *config.Config
	Region  string
	Source  region.Source
	Session *cloud.Session
	Phase   *ui.PhaseDisplay
	Warn    *ui.PhaseDisplay
	Log     logger.Logger
}

// setupWorkflow resolves the region and opens the AWS session. An empty
// region aborts with ExitAborted and no message, since the operator was
// just asked for it.
func setupWorkflow(ctx context.Context, cfg *config.Config, flags CloudFlags, env Env) (*WorkflowContext, error) {
	log := env.Log
	if log == nil {
		log = logger.Noop()
	}

	progress, warnings := env.Out, env.ErrOut
	if progress == nil || env.Quiet {
		progress = io.Discard
	}
	if warnings == nil {
		warnings = io.Discard
	}

	wf := &WorkflowContext{
		Config: cfg,
		Phase:  ui.NewPhaseDisplay(progress),
		Warn:   ui.NewPhaseDisplay(warnings),
		Log:    log,
	}

	resolver := &region.Resolver{Getenv: env.Getenv, Prompter: env.Prompter, Log: log}
	r, src, err := resolver.Resolve(ctx, flags.Region, cfg.Region)
	if err != nil {
		return nil, err
	}
	if r == "" {
		log.Debug("no region given, stopping")
		return nil, errors.NewExitError(errors.ExitAborted)
	}
	wf.Region, wf.Source = r, src
	wf.Phase.RenderInfo("Region "+r, sourceLabel(src))

	sess, err := env.NewSession(ctx, sessionOptions(r, cfg, flags))
	if err != nil {
		return nil, err
	}
	wf.Session = sess

	return wf, nil
}

// listInstances fetches every instance in the region, rendering the step.
func (wf *WorkflowContext) listInstances(ctx context.Context) ([]instance.Instance, error) {
	start := time.Now()
	instances, err := instance.NewLister(wf.Session.EC2, wf.Log).List(ctx)
	if err != nil {
		wf.Phase.RenderFailed("Listing instances", time.Since(start))
		return nil, err
	}
	wf.Phase.RenderSuccess(fmt.Sprintf("Found %s", plural(len(instances), "instance")), time.Since(start))
	return instances, nil
}

// sessionOptions prefers --profile over the config file's profile.
func sessionOptions(r string, cfg *config.Config, flags CloudFlags) cloud.Options {
	profile := flags.Profile
	if profile == "" {
		profile = cfg.Profile
	}
	return cloud.Options{
		Region:      r,
		Profile:     profile,
		EndpointURL: cfg.EndpointURL,
	}
}

func sourceLabel(src region.Source) string {
	switch src {
	case region.SourceFlag:
		return "from --region"
	case region.SourceEnv:
		return "from " + region.EnvVar
	case region.SourceConfig:
		return "from config"
	default:
		return "entered"
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
