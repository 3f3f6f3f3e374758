package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/instance"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
	"github.com/spf13/cobra"
)

// InstancesOptions holds options for the instances command.
type InstancesOptions struct {
	CloudFlags
	JSON bool
}

// InstancesOutput is the --json payload.
type InstancesOutput struct {
	Region    string              `json:"region"`
	Instances []instance.Instance `json:"instances"`
}

var instancesOpts InstancesOptions

var instancesCmd = &cobra.Command{
	Use:     "instances",
	Aliases: []string{"ls"},
	Short:   "List the EC2 instances in a region",
	Long: `List every EC2 instance in the region with its name, id, state, and tags.
Use the id with 'ssmdeploy deploy --instance' to skip the picker.

Examples:
  ssmdeploy instances --region us-east-1
  ssmdeploy instances --json | jq -r '.data.instances[].id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstances(cmd, instancesOpts)
	},
}

func init() {
	rootCmd.AddCommand(instancesCmd)
	AddCloudFlags(instancesCmd, &instancesOpts.CloudFlags)
	instancesCmd.Flags().BoolVar(&instancesOpts.JSON, "json", false, "print a JSON envelope instead of a table")
}

func runInstances(cmd *cobra.Command, opts InstancesOptions) error {
	env := newEnv()
	if opts.JSON {
		// Nothing but the envelope goes to stdout.
		env.Quiet = true
		env.Prompter = nil
	}

	cfg, err := loadConfig()
	if err == nil {
		err = Instances(cmd.Context(), cfg, opts, env)
	}
	if err == nil || !opts.JSON {
		return err
	}

	code := errors.ExitCodeFor(err)
	report := err
	switch {
	case code == errors.ExitAborted:
		report = errors.New(errors.ErrConfig, "No AWS region given", "Pass --region or set AWS_REGION.")
	case errors.IsSilent(err):
		return err
	}
	if jsonErr := WriteJSONFromError(env.Out, report); jsonErr != nil {
		return jsonErr
	}
	return errors.NewExitError(code)
}

// Instances lists the region and prints a table, or the JSON envelope with
// --json. An empty region is not an error here.
func Instances(ctx context.Context, cfg *config.Config, opts InstancesOptions, env Env) error {
	wf, err := setupWorkflow(ctx, cfg, opts.CloudFlags, env)
	if err != nil {
		return err
	}

	instances, err := wf.listInstances(ctx)
	if err != nil {
		return err
	}

	if opts.JSON {
		return WriteJSONSuccess(env.Out, InstancesOutput{Region: wf.Region, Instances: instances})
	}
	return writeInstanceTable(env.Out, wf, instances)
}

func writeInstanceTable(w io.Writer, wf *WorkflowContext, instances []instance.Instance) error {
	if len(instances) == 0 {
		wf.Warn.RenderWarning(fmt.Sprintf("No instances found in %s.", wf.Region))
		return nil
	}
	_, err := fmt.Fprintln(w, ui.RenderInstanceTable(instances))
	return err
}
