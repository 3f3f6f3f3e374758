package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/doctor"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/logger"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	CloudFlags
	ConfigPath string
	JSON       bool
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Checks  []doctor.CheckResult `json:"checks"`
	Summary SummaryOutput        `json:"summary"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

var doctorOpts DoctorOptions

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, credentials, and AWS access",
	Long: `Run diagnostics before a deploy: config file and schema, region,
AWS credentials, EC2 access, and SSM-managed instances in the region.

Never prompts. Exits 1 when any check fails; warnings alone exit 0.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := doctorOpts
		opts.ConfigPath = cfgFile
		env := newEnv()
		env.Out = cmd.OutOrStdout()
		env.Prompter = nil
		return Doctor(cmd.Context(), opts, env)
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	AddCloudFlags(doctorCmd, &doctorOpts.CloudFlags)
	doctorCmd.Flags().BoolVar(&doctorOpts.JSON, "json", false, "output in JSON format")
}

// Doctor runs the config checks, resolves the region, and when one is
// found runs the AWS checks against it in parallel.
func Doctor(ctx context.Context, opts DoctorOptions, env Env) error {
	log := env.Log
	if log == nil {
		log = logger.Noop()
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		// The schema check reports it.
		cfg = config.DefaultConfig()
	}

	regionCheck := &doctor.RegionCheck{Flag: opts.Region, Config: cfg.Region, Getenv: env.Getenv}
	checks := append(doctor.NewConfigChecks(opts.ConfigPath), regionCheck)
	results := doctor.RunAll(ctx, checks)

	if regionCheck.Region != "" {
		cloudOpts := sessionOptions(regionCheck.Region, cfg, opts.CloudFlags)

		sess, err := env.NewSession(ctx, cloudOpts)
		if err != nil {
			log.Debug("no AWS session: %v", err)
			sess = nil
		}

		retrieve := func(ctx context.Context) (aws.Credentials, error) {
			if env.Credentials == nil {
				return aws.Credentials{}, errors.New(errors.ErrAuth, "No credential source configured", "Run with AWS credentials available")
			}
			return env.Credentials(ctx, cloudOpts)
		}
		results = append(results, doctor.RunAllParallel(ctx, doctor.NewAWSChecks(sess, retrieve))...)
	}

	if opts.JSON {
		if err := WriteJSONSuccess(env.Out, doctorOutput(results)); err != nil {
			return err
		}
	} else {
		writeDoctorText(env.Out, results)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(errors.ExitFailure)
	}
	return nil
}

func doctorOutput(results []doctor.CheckResult) DoctorOutput {
	counts := doctor.CountByStatus(results)
	return DoctorOutput{
		Checks: results,
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			AllClear: !doctor.HasIssues(results),
		},
	}
}

// writeDoctorText prints results grouped by category, then a summary line.
func writeDoctorText(w io.Writer, results []doctor.CheckResult) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("ssmdeploy Diagnostic Report"))
	fmt.Fprintln(w)

	for _, category := range []string{doctor.CategoryConfig, doctor.CategoryAWS} {
		var rows []doctor.CheckResult
		for _, r := range results {
			if r.Category == category {
				rows = append(rows, r)
			}
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintln(w, headerStyle.Render(category))
		for _, r := range rows {
			writeCheckResult(w, r)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, ui.FormatDivider(ui.DividerWidth))
	fmt.Fprintln(w)

	if doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), doctor.Summary(results))
	}
	fmt.Fprintln(w)
}

func writeCheckResult(w io.Writer, r doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch r.Status {
	case doctor.StatusPass:
		symbol, style = ui.SymbolComplete, ui.SuccessStyle()
	case doctor.StatusWarn:
		symbol, style = ui.SymbolWarning, ui.WarningStyle()
	default:
		symbol, style = ui.SymbolFail, ui.ErrorStyle()
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), r.Message)

	if r.Suggestion != "" && r.Status != doctor.StatusPass {
		for _, line := range strings.Split(r.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(line))
		}
	}
}
