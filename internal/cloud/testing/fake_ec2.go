// Package testing provides test doubles for the cloud package.
package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rileyhilliard/ssmdeploy/internal/cloud"
)

// FakeEC2 serves DescribeInstances from canned pages.
// Each page is a slice of reservations; pages are linked with NextToken
// values "page-1", "page-2", ...
type FakeEC2 struct {
	mu    sync.Mutex
	pages [][]types.Reservation
	err   error

	// Tracking for assertions
	Calls  int
	Tokens []string
}

var _ cloud.EC2API = (*FakeEC2)(nil)

// NewFakeEC2 creates a fake returning the given pages in order.
func NewFakeEC2(pages ...[]types.Reservation) *FakeEC2 {
	if len(pages) == 0 {
		pages = [][]types.Reservation{nil}
	}
	return &FakeEC2{pages: pages}
}

// FailWith makes every call return err.
func (f *FakeEC2) FailWith(err error) *FakeEC2 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// DescribeInstances implements cloud.EC2API.
func (f *FakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	token := aws.ToString(params.NextToken)
	f.Tokens = append(f.Tokens, token)

	if f.err != nil {
		return nil, f.err
	}

	idx := 0
	if token != "" {
		if _, err := fmt.Sscanf(token, "page-%d", &idx); err != nil || idx <= 0 || idx >= len(f.pages) {
			return nil, fmt.Errorf("fake ec2: unknown NextToken %q", token)
		}
	}

	out := &ec2.DescribeInstancesOutput{Reservations: f.pages[idx]}
	if idx+1 < len(f.pages) {
		out.NextToken = aws.String(fmt.Sprintf("page-%d", idx+1))
	}
	return out, nil
}

// Reservation builds a reservation holding the given instances.
func Reservation(instances ...types.Instance) types.Reservation {
	return types.Reservation{Instances: instances}
}

// Instance builds an instance with the given id and tags given as
// alternating key, value strings.
func Instance(id string, kv ...string) types.Instance {
	inst := types.Instance{
		InstanceId: aws.String(id),
		State:      &types.InstanceState{Name: types.InstanceStateNameRunning},
	}
	for i := 0; i+1 < len(kv); i += 2 {
		inst.Tags = append(inst.Tags, types.Tag{
			Key:   aws.String(kv[i]),
			Value: aws.String(kv[i+1]),
		})
	}
	return inst
}
