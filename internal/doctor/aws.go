package doctor

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rileyhilliard/ssmdeploy/internal/cloud"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/region"
)

// RegionCheck resolves the region without prompting. After Run, Region
// holds the resolved value, empty when nothing set one.
type RegionCheck struct {
	Flag   string
	Config string
	Getenv func(string) string

	Region string
	Source region.Source
}

func (c *RegionCheck) Name() string     { return "region" }
func (c *RegionCheck) Category() string { return CategoryAWS }

func (c *RegionCheck) Run(ctx context.Context) CheckResult {
	r := &region.Resolver{Getenv: c.Getenv}
	v, src, err := r.Resolve(ctx, c.Flag, c.Config)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	c.Region, c.Source = v, src

	if v == "" {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No region set, deploy will prompt for one",
			Suggestion: "Set " + region.EnvVar + ", pass --region, or add 'region' to the config file",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Region %s (from %s)", v, sourceName(src)),
	}
}

func sourceName(src region.Source) string {
	switch src {
	case region.SourceFlag:
		return "--region"
	case region.SourceEnv:
		return region.EnvVar
	default:
		return string(src)
	}
}

// CredentialsFunc retrieves AWS credentials.
type CredentialsFunc func(ctx context.Context) (aws.Credentials, error)

// CredentialsCheck verifies the credential chain yields usable credentials.
type CredentialsCheck struct {
	Retrieve CredentialsFunc
}

func (c *CredentialsCheck) Name() string     { return "credentials" }
func (c *CredentialsCheck) Category() string { return CategoryAWS }

func (c *CredentialsCheck) Run(ctx context.Context) CheckResult {
	creds, err := c.Retrieve(ctx)
	if err != nil {
		return failure(err, "")
	}

	if creds.CanExpire && creds.Expired() {
		return CheckResult{
			Status:     StatusFail,
			Message:    "AWS credentials have expired",
			Suggestion: "Refresh them, e.g. 'aws sso login'",
		}
	}

	msg := "Credentials found"
	if creds.Source != "" {
		msg += " (" + creds.Source + ")"
	}
	return CheckResult{Status: StatusPass, Message: msg}
}

// EC2AccessCheck confirms DescribeInstances is allowed in the region.
type EC2AccessCheck struct {
	Client cloud.EC2API
}

func (c *EC2AccessCheck) Name() string     { return "ec2_access" }
func (c *EC2AccessCheck) Category() string { return CategoryAWS }

func (c *EC2AccessCheck) Run(ctx context.Context) CheckResult {
	out, err := c.Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		MaxResults: aws.Int32(5),
	})
	if err != nil {
		return failure(errors.Classify(err, "EC2 DescribeInstances failed"),
			"Grant ec2:DescribeInstances to the caller")
	}

	n := 0
	if out != nil {
		for _, r := range out.Reservations {
			n += len(r.Instances)
		}
	}
	if n == 0 {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "EC2 reachable, but no instances in this region",
			Suggestion: "Check the region is the one your instances run in",
		}
	}
	return CheckResult{Status: StatusPass, Message: "EC2 reachable"}
}

// SSMInventoryAPI is the SSM call used to list managed instances.
type SSMInventoryAPI interface {
	DescribeInstanceInformation(ctx context.Context, params *ssm.DescribeInstanceInformationInput, optFns ...func(*ssm.Options)) (*ssm.DescribeInstanceInformationOutput, error)
}

// SSMManagedCheck counts instances registered with SSM. Only those can
// receive Run Command invocations.
type SSMManagedCheck struct {
	Client SSMInventoryAPI
}

func (c *SSMManagedCheck) Name() string     { return "ssm_managed" }
func (c *SSMManagedCheck) Category() string { return CategoryAWS }

func (c *SSMManagedCheck) Run(ctx context.Context) CheckResult {
	out, err := c.Client.DescribeInstanceInformation(ctx, &ssm.DescribeInstanceInformationInput{
		MaxResults: aws.Int32(50),
	})
	if err != nil {
		return failure(errors.Classify(err, "SSM DescribeInstanceInformation failed"),
			"Grant ssm:DescribeInstanceInformation, ssm:SendCommand and ssm:GetCommandInvocation to the caller")
	}

	var n int
	more := false
	if out != nil {
		n = len(out.InstanceInformationList)
		more = aws.ToString(out.NextToken) != ""
	}

	if n == 0 {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No instances are registered with SSM",
			Suggestion: "Instances need the SSM agent running and an instance profile with AmazonSSMManagedInstanceCore",
		}
	}

	count := fmt.Sprintf("%d", n)
	if more {
		count += "+"
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s managed instance%s", count, pluralize(n)),
	}
}

// failure builds a fail result from err. An empty suggestion falls back to
// the one carried by a structured error.
func failure(err error, suggestion string) CheckResult {
	res := CheckResult{Status: StatusFail, Message: err.Error(), Suggestion: suggestion}

	var e *errors.Error
	if stderrors.As(err, &e) {
		res.Message = e.Message
		if e.Cause != nil {
			res.Message += ": " + e.Cause.Error()
		}
		if suggestion == "" {
			res.Suggestion = e.Suggestion
		}
	}
	return res
}

// NewAWSChecks creates the checks that need an AWS session.
func NewAWSChecks(sess *cloud.Session, creds CredentialsFunc) []Check {
	checks := []Check{&CredentialsCheck{Retrieve: creds}}
	if sess == nil {
		return checks
	}

	checks = append(checks, &EC2AccessCheck{Client: sess.EC2})
	if inv, ok := sess.SSM.(SSMInventoryAPI); ok {
		checks = append(checks, &SSMManagedCheck{Client: inv})
	}
	return checks
}
