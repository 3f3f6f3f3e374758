package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/spf13/cobra"
)

// CloudFlags holds the flags that pick the AWS account and region.
type CloudFlags struct {
	Region  string
	Profile string
}

// AddCloudFlags registers --region and --profile on a command.
func AddCloudFlags(cmd *cobra.Command, flags *CloudFlags) {
	cmd.Flags().StringVar(&flags.Region, "region", "", "AWS region (overrides AWS_REGION and the config file)")
	cmd.Flags().StringVar(&flags.Profile, "profile", "", "AWS shared config profile")
}

// ParseTimeout parses the --timeout flag. Returns zero if the flag is empty.
func ParseTimeout(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid timeout", flag),
			"Try something like 90s, 10m, or 1h.")
	}
	return duration, nil
}
