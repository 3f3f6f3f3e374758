package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/rileyhilliard/ssmdeploy/internal/cloud"
)

// PollResponse is one scripted GetCommandInvocation answer.
type PollResponse struct {
	Status       ssmtypes.CommandInvocationStatus
	Stdout       string
	Stderr       string
	ResponseCode int32
	Err          error
}

// FakeSSM simulates SSM Run Command. SendCommand returns CommandID, and
// GetCommandInvocation walks through the scripted responses, repeating the
// last one once the script runs out.
type FakeSSM struct {
	mu        sync.Mutex
	CommandID string
	SendErr   error
	responses []PollResponse

	// Managed lists instance ids reported by DescribeInstanceInformation.
	Managed      []string
	InventoryErr error

	// Tracking for assertions
	SendInputs []*ssm.SendCommandInput
	PollInputs []*ssm.GetCommandInvocationInput
}

var _ cloud.SSMAPI = (*FakeSSM)(nil)

// NewFakeSSM creates a fake with the given poll script.
func NewFakeSSM(responses ...PollResponse) *FakeSSM {
	return &FakeSSM{
		CommandID: "cmd-0123456789abcdef",
		responses: responses,
	}
}

// Statuses builds a poll script from bare statuses.
func Statuses(statuses ...ssmtypes.CommandInvocationStatus) []PollResponse {
	out := make([]PollResponse, len(statuses))
	for i, s := range statuses {
		out[i] = PollResponse{Status: s}
	}
	return out
}

// SendCommand implements cloud.SSMAPI.
func (f *FakeSSM) SendCommand(ctx context.Context, params *ssm.SendCommandInput, optFns ...func(*ssm.Options)) (*ssm.SendCommandOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SendInputs = append(f.SendInputs, params)
	if f.SendErr != nil {
		return nil, f.SendErr
	}

	out := &ssm.SendCommandOutput{Command: &ssmtypes.Command{
		InstanceIds:    params.InstanceIds,
		DocumentName:   params.DocumentName,
		TimeoutSeconds: params.TimeoutSeconds,
		Status:         ssmtypes.CommandStatusPending,
	}}
	if f.CommandID != "" {
		out.Command.CommandId = aws.String(f.CommandID)
	}
	return out, nil
}

// GetCommandInvocation implements cloud.SSMAPI.
func (f *FakeSSM) GetCommandInvocation(ctx context.Context, params *ssm.GetCommandInvocationInput, optFns ...func(*ssm.Options)) (*ssm.GetCommandInvocationOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PollInputs = append(f.PollInputs, params)
	if len(f.responses) == 0 {
		return nil, errors.New("fake ssm: no poll responses scripted")
	}

	idx := len(f.PollInputs) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	if resp.Err != nil {
		return nil, resp.Err
	}

	return &ssm.GetCommandInvocationOutput{
		CommandId:             params.CommandId,
		InstanceId:            params.InstanceId,
		Status:                resp.Status,
		StatusDetails:         aws.String(string(resp.Status)),
		ResponseCode:          resp.ResponseCode,
		StandardOutputContent: aws.String(resp.Stdout),
		StandardErrorContent:  aws.String(resp.Stderr),
	}, nil
}

// DescribeInstanceInformation reports the Managed instances as online.
func (f *FakeSSM) DescribeInstanceInformation(ctx context.Context, params *ssm.DescribeInstanceInformationInput, optFns ...func(*ssm.Options)) (*ssm.DescribeInstanceInformationOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.InventoryErr != nil {
		return nil, f.InventoryErr
	}

	out := &ssm.DescribeInstanceInformationOutput{}
	for _, id := range f.Managed {
		out.InstanceInformationList = append(out.InstanceInformationList, ssmtypes.InstanceInformation{
			InstanceId: aws.String(id),
			PingStatus: ssmtypes.PingStatusOnline,
		})
	}
	return out, nil
}

// PollCount returns how many times GetCommandInvocation was called.
func (f *FakeSSM) PollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.PollInputs)
}
