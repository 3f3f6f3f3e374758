package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/region"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // where to write; defaults to ./.ssmdeploy.yaml
	Region         string
	User           string
	Dir            string
	Script         string
	Overwrite      bool // overwrite an existing file without asking
	NonInteractive bool // skip prompts, use flags and defaults
}

// initDefaults are the values pre-filled into the form.
type initDefaults struct {
	Region         string
	NonInteractive bool
}

// getInitDefaults reads pre-fill values from the environment. CI or
// SSMDEPLOY_NON_INTERACTIVE skip the form.
func getInitDefaults() initDefaults {
	nonInteractive := os.Getenv(config.EnvPrefix + "_NON_INTERACTIVE")
	return initDefaults{
		Region:         os.Getenv(region.EnvVar),
		NonInteractive: nonInteractive == "true" || nonInteractive == "1" || os.Getenv("CI") != "",
	}
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .ssmdeploy.yaml config",
	Long: `Create a .ssmdeploy.yaml config file in the current directory.

Asks for the region and where the deploy script lives on the instances. Use
--non-interactive (or set CI) to write flags and defaults without prompting.

Examples:
  ssmdeploy init
  ssmdeploy init --non-interactive --region us-east-1 --dir /srv/app`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if getInitDefaults().NonInteractive {
			opts.NonInteractive = true
		}
		return Init(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initOpts.Region, "region", "", "default AWS region")
	initCmd.Flags().StringVar(&initOpts.User, "user", "", "user the deploy script runs as (default: ubuntu)")
	initCmd.Flags().StringVar(&initOpts.Dir, "dir", "", "directory holding the deploy script")
	initCmd.Flags().StringVar(&initOpts.Script, "script", "", "deploy script name (default: deploy.sh)")
	initCmd.Flags().BoolVar(&initOpts.Overwrite, "force", false, "overwrite an existing config file")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt; use flags and defaults")
}

// Init writes a new config file.
func Init(ctx context.Context, opts InitOptions, out io.Writer) error {
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		overwrite, err := ui.Confirm(ctx, fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath))
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Region = firstNonEmpty(opts.Region, getInitDefaults().Region)
	cfg.Deploy.User = firstNonEmpty(opts.User, cfg.Deploy.User)
	cfg.Deploy.Dir = firstNonEmpty(opts.Dir, cfg.Deploy.Dir)
	cfg.Deploy.Script = firstNonEmpty(opts.Script, cfg.Deploy.Script)

	if !opts.NonInteractive {
		if err := runInitForm(ctx, cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Write(cfg, configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SuccessStyle().Render(ui.SymbolSuccess), configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  ssmdeploy instances  - See the instances in your region")
	fmt.Fprintln(out, "  ssmdeploy            - Pick one and deploy")
	return nil
}

func runInitForm(ctx context.Context, cfg *config.Config) error {
	required := func(what string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", what)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("AWS region").
				Description("Used when AWS_REGION isn't set (leave empty to be asked each run)").
				Placeholder("us-east-1").
				Value(&cfg.Region),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Deploy user").
				Description("The script runs as this user via sudo").
				Value(&cfg.Deploy.User).
				Validate(func(s string) error {
					if err := required("user")(s); err != nil {
						return err
					}
					if strings.ContainsAny(s, " \t\n") {
						return fmt.Errorf("user cannot contain whitespace")
					}
					return nil
				}),
			huh.NewInput().
				Title("Project directory").
				Description("Directory on the instance that holds the deploy script").
				Value(&cfg.Deploy.Dir).
				Validate(required("directory")),
			huh.NewInput().
				Title("Deploy script").
				Description("Run with bash from the project directory").
				Value(&cfg.Deploy.Script).
				Validate(required("script")),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if err == huh.ErrUserAborted || ctx.Err() != nil {
			return errors.NewCancelled("Init")
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive")
	}

	cfg.Region = strings.TrimSpace(cfg.Region)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
