// Package cloud builds the AWS session shared by the instance lister and the
// command dispatcher. The session is constructed once per run and passed
// explicitly; nothing in this module reads SDK state from globals.
package cloud

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
)

// EC2API is the subset of the EC2 client used here. It satisfies
// ec2.DescribeInstancesAPIClient so the SDK paginator can drive it.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// SSMAPI is the subset of the SSM client used here.
type SSMAPI interface {
	SendCommand(ctx context.Context, params *ssm.SendCommandInput, optFns ...func(*ssm.Options)) (*ssm.SendCommandOutput, error)
	GetCommandInvocation(ctx context.Context, params *ssm.GetCommandInvocationInput, optFns ...func(*ssm.Options)) (*ssm.GetCommandInvocationOutput, error)
}

// Options controls how the session is built.
type Options struct {
	Region      string
	Profile     string
	EndpointURL string
}

// Session holds the region and the service clients for one run.
type Session struct {
	Region string
	EC2    EC2API
	SSM    SSMAPI
}

// Factory builds a Session. The CLI takes one so tests can swap in fakes.
type Factory func(ctx context.Context, opts Options) (*Session, error)

// NewSession loads the default AWS credential chain for the given region
// and builds EC2 and SSM clients from it.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewSessionFromConfig(cfg, opts.EndpointURL), nil
}

// LoadConfig resolves the shared AWS config and credential chain for
// opts.Region, honouring opts.Profile when set.
func LoadConfig(ctx context.Context, opts Options) (aws.Config, error) {
	if strings.TrimSpace(opts.Region) == "" {
		return aws.Config{}, errors.New(errors.ErrConfig,
			"No AWS region given",
			"Set AWS_REGION, pass --region, or add 'region' to .ssmdeploy.yaml")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, errors.WrapWithCode(err, errors.ErrAuth,
			"Unable to load AWS configuration",
			"Check ~/.aws/config and ~/.aws/credentials, or the profile passed with --profile")
	}
	return cfg, nil
}

// Credentials loads the config for opts and retrieves credentials from it.
// Unlike NewSession, which defers credential lookup to the first API call,
// this fails fast when no provider in the chain has credentials.
func Credentials(ctx context.Context, opts Options) (aws.Credentials, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return aws.Credentials{}, err
	}
	if cfg.Credentials == nil {
		return aws.Credentials{}, errors.New(errors.ErrAuth,
			"No AWS credential provider configured",
			"Configure credentials with 'aws configure' or set AWS_PROFILE")
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, errors.WrapWithCode(err, errors.ErrAuth,
			"Unable to retrieve AWS credentials",
			"Configure credentials with 'aws configure', set AWS_PROFILE, or refresh an expired SSO session")
	}
	return creds, nil
}

// NewSessionFromConfig builds the service clients from an already-loaded config.
func NewSessionFromConfig(cfg aws.Config, endpointURL string) *Session {
	ec2Client := ec2.NewFromConfig(cfg, func(o *ec2.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	})
	ssmClient := ssm.NewFromConfig(cfg, func(o *ssm.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	})

	return &Session{
		Region: cfg.Region,
		EC2:    ec2Client,
		SSM:    ssmClient,
	}
}
