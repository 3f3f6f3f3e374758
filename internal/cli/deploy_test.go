package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/rileyhilliard/ssmdeploy/internal/cloud"
	cloudtesting "github.com/rileyhilliard/ssmdeploy/internal/cloud/testing"
	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/instance"
	"github.com/rileyhilliard/ssmdeploy/internal/logger"
	"github.com/rileyhilliard/ssmdeploy/internal/region"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHarness records every interaction the deploy workflow has with the
// outside world.
type testHarness struct {
	ec2      *cloudtesting.FakeEC2
	ssm      *cloudtesting.FakeSSM
	out      bytes.Buffer
	errOut   bytes.Buffer
	log      *logger.BufferLogger
	sessions []cloud.Options
	picks    [][]instance.Instance
	pickID   string // id to pick; "" cancels
	prompts  int
	answer   string
	env      map[string]string
}

func newHarness(ec2 *cloudtesting.FakeEC2, ssm *cloudtesting.FakeSSM) *testHarness {
	return &testHarness{
		ec2: ec2,
		ssm: ssm,
		log: logger.NewBufferLogger(),
		env: map[string]string{region.EnvVar: "us-east-1"},
	}
}

func (h *testHarness) Env() Env {
	return Env{
		Out:    &h.out,
		ErrOut: &h.errOut,
		NewSession: func(ctx context.Context, opts cloud.Options) (*cloud.Session, error) {
			h.sessions = append(h.sessions, opts)
			return &cloud.Session{Region: opts.Region, EC2: h.ec2, SSM: h.ssm}, nil
		},
		Pick: func(ctx context.Context, instances []instance.Instance) (*instance.Instance, error) {
			h.picks = append(h.picks, instances)
			if h.pickID == "" {
				return nil, errors.NewCancelled("Instance selection")
			}
			for i := range instances {
				if instances[i].ID == h.pickID {
					return &instances[i], nil
				}
			}
			return nil, nil
		},
		Prompter: region.PromptFunc(func(ctx context.Context) (string, error) {
			h.prompts++
			return h.answer, nil
		}),
		Getenv:      func(k string) string { return h.env[k] },
		Log:         h.log,
		Interactive: true,
	}
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func twoInstances() *cloudtesting.FakeEC2 {
	return cloudtesting.NewFakeEC2([]ec2types.Reservation{
		cloudtesting.Reservation(
			cloudtesting.Instance("i-0aaa", "Name", "web-1", "env", "prod"),
			cloudtesting.Instance("i-0bbb", "Name", "worker"),
		),
	})
}

func advancingContext(t *testing.T) context.Context {
	ctx, _, stop := cloudtesting.NewAdvancingClock(context.Background())
	t.Cleanup(stop)
	return ctx
}

func TestDeploySuccess(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM(
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusInProgress},
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusSuccess, Stdout: "deployed ok"},
	))
	h.pickID = "i-0bbb"

	err := Deploy(advancingContext(t), testConfig(), DeployOptions{}, h.Env())
	require.NoError(t, err)
	assert.Equal(t, errors.ExitOK, errors.ExitCodeFor(err))

	require.Len(t, h.picks, 1)
	assert.Len(t, h.picks[0], 2)
	assert.Equal(t, "i-0aaa", h.picks[0][0].ID, "picker gets instances in provider order")

	require.Len(t, h.ssm.SendInputs, 1)
	assert.Equal(t, []string{"i-0bbb"}, h.ssm.SendInputs[0].InstanceIds)
	assert.Equal(t, 2, h.ssm.PollCount())

	out := h.out.String()
	assert.Contains(t, out, "Region us-east-1")
	assert.Contains(t, out, "Command sent to i-0bbb. Command ID: "+h.ssm.CommandID)
	assert.Contains(t, out, "Command Status:")
	assert.Contains(t, out, "Success")
	assert.Contains(t, out, "deployed ok")
	assert.NotContains(t, out, "Command Error:")
	assert.Equal(t, 0, h.prompts)
}

func TestDeployFailedStatusExitCode(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM(
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusFailed, Stdout: "step 1", Stderr: "step 2 broke", ResponseCode: 1},
	))
	h.pickID = "i-0aaa"

	err := Deploy(advancingContext(t), testConfig(), DeployOptions{}, h.Env())
	require.Error(t, err)
	assert.Equal(t, errors.ExitCommandFailed, errors.ExitCodeFor(err))
	assert.True(t, errors.IsSilent(err), "the report already explains the failure")

	out := h.out.String()
	assert.Contains(t, out, "Failed")
	assert.Contains(t, out, "Command Error:")
	assert.Contains(t, out, "step 2 broke")
}

func TestDeployListingErrorSkipsPicker(t *testing.T) {
	ec2 := cloudtesting.NewFakeEC2().FailWith(&smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "denied"})
	h := newHarness(ec2, cloudtesting.NewFakeSSM())
	h.pickID = "i-0aaa"

	err := Deploy(context.Background(), testConfig(), DeployOptions{}, h.Env())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.Equal(t, errors.ExitFailure, errors.ExitCodeFor(err))
	assert.False(t, errors.IsSilent(err))

	assert.Empty(t, h.picks, "picker must not open after a listing error")
	assert.Empty(t, h.ssm.SendInputs)
}

func TestDeployNoInstancesAborts(t *testing.T) {
	h := newHarness(cloudtesting.NewFakeEC2(), cloudtesting.NewFakeSSM())
	h.pickID = "i-0aaa"

	err := Deploy(context.Background(), testConfig(), DeployOptions{}, h.Env())
	assert.Equal(t, errors.ExitAborted, errors.ExitCodeFor(err))
	assert.True(t, errors.IsSilent(err))

	assert.Empty(t, h.picks)
	assert.Empty(t, h.ssm.SendInputs)
	assert.Contains(t, h.errOut.String(), "No instances found in us-east-1.")
}

func TestDeployEmptyRegionAborts(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM())
	h.env = nil
	h.answer = ""

	err := Deploy(context.Background(), testConfig(), DeployOptions{}, h.Env())
	assert.Equal(t, errors.ExitAborted, errors.ExitCodeFor(err))
	assert.True(t, errors.IsSilent(err))

	assert.Equal(t, 1, h.prompts)
	assert.True(t, h.log.HasLevel("warn"), "missing AWS_REGION is warned about")
	assert.Empty(t, h.sessions, "no AWS calls without a region")
	assert.Equal(t, 0, h.ec2.Calls)
}

func TestDeployPromptedRegion(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM(
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusSuccess},
	))
	h.env = nil
	h.answer = "ap-southeast-2"
	h.pickID = "i-0aaa"

	require.NoError(t, Deploy(advancingContext(t), testConfig(), DeployOptions{}, h.Env()))
	require.Len(t, h.sessions, 1)
	assert.Equal(t, "ap-southeast-2", h.sessions[0].Region)
}

func TestDeployPickerCancelled(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM())
	h.pickID = ""

	err := Deploy(context.Background(), testConfig(), DeployOptions{}, h.Env())
	assert.Equal(t, errors.ExitCancelled, errors.ExitCodeFor(err))
	assert.True(t, errors.IsSilent(err))
	assert.Empty(t, h.ssm.SendInputs, "nothing is sent after a cancel")
}

func TestDeployInstanceFlagSkipsListing(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM(
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusSuccess},
	))

	opts := DeployOptions{Instance: "i-0ccc", CloudFlags: CloudFlags{Region: "eu-west-1", Profile: "ops"}}
	require.NoError(t, Deploy(advancingContext(t), testConfig(), opts, h.Env()))

	assert.Equal(t, 0, h.ec2.Calls)
	assert.Empty(t, h.picks)
	require.Len(t, h.ssm.SendInputs, 1)
	assert.Equal(t, []string{"i-0ccc"}, h.ssm.SendInputs[0].InstanceIds)

	require.Len(t, h.sessions, 1)
	assert.Equal(t, "eu-west-1", h.sessions[0].Region)
	assert.Equal(t, "ops", h.sessions[0].Profile)
}

func TestDeployNonInteractiveNeedsInstance(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM())
	env := h.Env()
	env.Interactive = false

	err := Deploy(context.Background(), testConfig(), DeployOptions{}, env)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "--instance")
	assert.Empty(t, h.picks)
}

func TestDeploySendError(t *testing.T) {
	ssm := cloudtesting.NewFakeSSM()
	ssm.SendErr = &smithy.GenericAPIError{Code: "InvalidInstanceId", Message: "not connected to SSM"}
	h := newHarness(twoInstances(), ssm)
	h.pickID = "i-0aaa"

	err := Deploy(context.Background(), testConfig(), DeployOptions{}, h.Env())
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	assert.Equal(t, errors.ExitFailure, errors.ExitCodeFor(err))
	assert.Equal(t, 0, ssm.PollCount())
	assert.NotContains(t, h.out.String(), "Command Status:")
}

func TestDeployConfigValues(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM(
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusSuccess},
	))
	h.pickID = "i-0aaa"

	cfg := testConfig()
	cfg.Profile = "from-config"
	cfg.EndpointURL = "http://localhost:4566"
	cfg.Deploy.Document = "Custom-Doc"

	opts := DeployOptions{Timeout: "20m"}
	require.NoError(t, Deploy(advancingContext(t), cfg, opts, h.Env()))

	require.Len(t, h.sessions, 1)
	assert.Equal(t, "from-config", h.sessions[0].Profile)
	assert.Equal(t, "http://localhost:4566", h.sessions[0].EndpointURL)

	in := h.ssm.SendInputs[0]
	assert.Equal(t, "Custom-Doc", aws.ToString(in.DocumentName))
	assert.Equal(t, int32(1200), aws.ToInt32(in.TimeoutSeconds))
}

func TestDeployBadTimeout(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM())

	err := Deploy(context.Background(), testConfig(), DeployOptions{Timeout: "5s"}, h.Env())
	assert.True(t, errors.IsCode(err, errors.ErrConfig), "below the SSM minimum")
	assert.Empty(t, h.sessions)
}

func TestDeployQuietKeepsReport(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM(
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusSuccess, Stdout: "done"},
	))
	h.pickID = "i-0aaa"
	env := h.Env()
	env.Quiet = true

	require.NoError(t, Deploy(advancingContext(t), testConfig(), DeployOptions{}, env))

	out := h.out.String()
	assert.NotContains(t, out, "Region us-east-1")
	assert.NotContains(t, out, "Command sent to")
	assert.Contains(t, out, "Command Output:")
	assert.Contains(t, out, "done")
}

func TestDeployCancelledWhilePolling(t *testing.T) {
	h := newHarness(twoInstances(), cloudtesting.NewFakeSSM(
		cloudtesting.PollResponse{Status: ssmtypes.CommandInvocationStatusInProgress},
	))

	cfg := testConfig()
	cfg.Deploy.InitialDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	env := h.Env()
	env.NewSession = func(ctx context.Context, opts cloud.Options) (*cloud.Session, error) {
		return &cloud.Session{Region: opts.Region, EC2: h.ec2, SSM: h.ssm}, nil
	}
	env.Pick = func(ctx context.Context, instances []instance.Instance) (*instance.Instance, error) {
		cancel() // operator hits ctrl+c right after choosing
		return &instances[0], nil
	}

	err := Deploy(ctx, cfg, DeployOptions{}, env)
	assert.Equal(t, errors.ExitCancelled, errors.ExitCodeFor(err))
	assert.Equal(t, 0, h.ssm.PollCount())
	assert.Contains(t, h.out.String(), ui.SymbolSkipped, "spinner marks the run as skipped")
	assert.NotContains(t, h.out.String(), ui.SymbolFail)
}
