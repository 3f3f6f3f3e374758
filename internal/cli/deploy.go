package cli

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/dispatch"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
	"github.com/spf13/cobra"
)

// DeployOptions holds options for the deploy command.
type DeployOptions struct {
	CloudFlags
	Instance string // skip listing and the picker
	Timeout  string // overrides deploy.timeout
}

var deployOpts DeployOptions

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Pick an instance and run the deploy script on it",
	Long: `Resolve the region, list its EC2 instances, let you pick one, then run the
deploy script on it through SSM Run Command and wait for the result.

The script runs as the configured user (default: ubuntu):
  sudo -u ubuntu bash -c 'cd /home/ubuntu/Github/networth && bash deploy.sh'

Exit codes:
  0    the command finished with status Success
  1    configuration, AWS, or polling error
  2    the command finished with any other status
  3    no region given or no instances found
  130  cancelled

Examples:
  ssmdeploy deploy
  ssmdeploy deploy --region us-east-1
  ssmdeploy deploy --instance i-0123456789abcdef0 --timeout 20m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeploy(cmd, deployOpts)
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
	addDeployFlags(deployCmd, &deployOpts)
}

func addDeployFlags(cmd *cobra.Command, opts *DeployOptions) {
	AddCloudFlags(cmd, &opts.CloudFlags)
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "instance id to deploy to, skipping the picker")
	cmd.Flags().StringVar(&opts.Timeout, "timeout", "", "SSM execution timeout (e.g., 10m)")
}

func runDeploy(cmd *cobra.Command, opts DeployOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return Deploy(cmd.Context(), cfg, opts, newEnv())
}

// Deploy runs the whole workflow: region, listing, selection, dispatch,
// polling, report. Every failure stops the run; nothing is retried.
func Deploy(ctx context.Context, cfg *config.Config, opts DeployOptions, env Env) error {
	if err := applyTimeout(cfg, opts.Timeout); err != nil {
		return err
	}

	wf, err := setupWorkflow(ctx, cfg, opts.CloudFlags, env)
	if err != nil {
		return err
	}

	instanceID := opts.Instance
	if instanceID == "" {
		instanceID, err = chooseInstance(ctx, wf, env)
		if err != nil {
			return err
		}
	} else {
		wf.Phase.RenderInfo("Instance "+instanceID, "from --instance")
	}

	return runCommand(ctx, wf, instanceID, env)
}

func applyTimeout(cfg *config.Config, flag string) error {
	timeout, err := ParseTimeout(flag)
	if err != nil {
		return err
	}
	if timeout == 0 {
		return nil
	}
	cfg.Deploy.Timeout = timeout
	return config.Validate(cfg)
}

// chooseInstance lists the region and shows the picker. Listing errors and
// an empty region stop the run before the picker is shown.
func chooseInstance(ctx context.Context, wf *WorkflowContext, env Env) (string, error) {
	instances, err := wf.listInstances(ctx)
	if err != nil {
		return "", err
	}

	if len(instances) == 0 {
		wf.Warn.RenderWarning(fmt.Sprintf("No instances found in %s.", wf.Region))
		return "", errors.NewExitError(errors.ExitAborted)
	}

	if !env.Interactive || env.Pick == nil {
		return "", errors.New(errors.ErrConfig,
			"Picking an instance needs an interactive terminal",
			"Pass --instance <id>, or run 'ssmdeploy instances' to see the ids.")
	}

	picked, err := env.Pick(ctx, instances)
	if err != nil {
		return "", err
	}
	if picked == nil {
		return "", errors.NewCancelled("Instance selection")
	}

	wf.Phase.RenderInfo("Instance "+picked.Label(), "")
	return picked.ID, nil
}

// runCommand sends the deploy command, waits for it, and prints the report.
// A terminal status other than Success exits with ExitCommandFailed.
func runCommand(ctx context.Context, wf *WorkflowContext, instanceID string, env Env) error {
	deployCfg := wf.Config.Deploy
	d := dispatch.New(wf.Session.SSM, deployCfg, wf.Log)

	var spinner *ui.Spinner
	d.SetEventHandler(func(e dispatch.Event) {
		switch e.Type {
		case dispatch.EventSent:
			wf.Phase.RenderSent(e.InstanceID, e.CommandID)
			if env.Interactive && !env.Quiet {
				spinner = ui.NewSpinner("Running "+deployCfg.Script, wf.Phase.Writer())
				spinner.Start()
			}
		case dispatch.EventPolled:
			if spinner != nil {
				spinner.SetDetail(e.Status)
			}
		}
	})

	wf.Phase.CommandPrompt(dispatch.BuildCommand(deployCfg))

	inv, err := d.Run(ctx, instanceID)
	if spinner != nil {
		switch {
		case err == nil && inv.Succeeded():
			spinner.Success()
		case errors.IsCode(err, errors.ErrCancelled):
			spinner.Skip()
		default:
			spinner.Fail()
		}
	}
	if err != nil {
		return err
	}

	wf.Phase.Divider()
	dispatch.WriteReport(env.Out, inv)

	if !inv.Succeeded() {
		return errors.NewExitError(errors.ExitCommandFailed)
	}
	return nil
}
