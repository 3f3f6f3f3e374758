package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/logger"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile     string
	verboseFlag bool
	quietFlag   bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "ssmdeploy",
	Short: "Pick an EC2 instance and run its deploy script through SSM",
	Long: `ssmdeploy lists the EC2 instances in a region, lets you pick one, and runs
the deploy script on it through SSM Run Command. It then waits for the
command to finish and prints its output.

Running ssmdeploy with no subcommand is the same as 'ssmdeploy deploy'.

Examples:
  ssmdeploy
  AWS_REGION=us-east-1 ssmdeploy
  ssmdeploy --region eu-west-1 --instance i-0123456789abcdef0
  ssmdeploy instances --json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verboseFlag)
		if noColorFlag {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeploy(cmd, deployOpts)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .ssmdeploy.yaml, then ~/.config/ssmdeploy/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "only print the command report")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")

	// The bare command deploys, so it takes the deploy flags too.
	addDeployFlags(rootCmd, &deployOpts)
}

// Execute runs the root command and exits with the code matching the result.
// SIGINT and SIGTERM cancel the context shared by every blocking step.
func Execute() {
	os.Exit(execute(os.Stderr))
}

// execute runs the root command and returns its exit code. Errors are
// reported as cancellation only when a signal actually arrived.
func execute(stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			err = errors.NewCancelled("Deploy")
		}
		printError(stderr, err)
	}
	return errors.ExitCodeFor(err)
}

// printError writes err to w unless it only carries an exit code.
func printError(w io.Writer, err error) {
	if err == nil || errors.IsSilent(err) {
		return
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			err = errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a ssmdeploy command", name),
				"Run 'ssmdeploy --help' to see what's available.")
		}
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, "✗") {
		msg = "✗ " + msg
	}
	fmt.Fprintln(w, ui.ErrorStyle().Render(strings.TrimRight(msg, "\n")))
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "ssmdeploy"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// loadConfig finds, loads, and validates the config for this run, then
// applies its color setting unless --no-color was given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if !noColorFlag {
		ui.SetColorMode(cfg.Output.Color)
	}
	return cfg, nil
}
