// Package instance turns EC2 DescribeInstances output into flat instance
// records for selection.
package instance

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
)

// NameTagKey is the well-known EC2 tag holding a human-readable name.
const NameTagKey = "Name"

// Tag is a single EC2 tag.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Instance is a read-only snapshot of one EC2 instance.
type Instance struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
	Tags  []Tag  `json:"tags"`
}

// DisplayName returns the value of the first tag keyed exactly "Name", or id
// when there is none. Later duplicates of the Name tag are ignored.
func DisplayName(id string, tags []Tag) string {
	for _, t := range tags {
		if t.Key == NameTagKey {
			return t.Value
		}
	}
	return id
}

// FromEC2 converts an SDK instance. An instance without an id is a
// malformed response.
func FromEC2(inst types.Instance) (Instance, error) {
	id := aws.ToString(inst.InstanceId)
	if id == "" {
		return Instance{}, errors.New(errors.ErrMalformed,
			"EC2 returned an instance without an InstanceId",
			"Try again, or run with --verbose to see the raw response.")
	}

	tags := make([]Tag, 0, len(inst.Tags))
	for _, t := range inst.Tags {
		tags = append(tags, Tag{Key: aws.ToString(t.Key), Value: aws.ToString(t.Value)})
	}

	var state string
	if inst.State != nil {
		state = string(inst.State.Name)
	}

	return Instance{
		ID:    id,
		Name:  DisplayName(id, tags),
		State: state,
		Tags:  tags,
	}, nil
}

// Flatten walks reservations in order and returns every instance they hold,
// preserving provider order.
func Flatten(reservations []types.Reservation) ([]Instance, error) {
	out := make([]Instance, 0)
	for _, r := range reservations {
		for _, inst := range r.Instances {
			rec, err := FromEC2(inst)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// TagString renders tags as "[k=v, k=v]" in their original order.
func (i Instance) TagString() string {
	parts := make([]string, len(i.Tags))
	for n, t := range i.Tags {
		parts[n] = t.Key + "=" + t.Value
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Label is the single-line form shown to the operator:
// "<name> (<id>) - [k=v, ...]".
func (i Instance) Label() string {
	return fmt.Sprintf("%s (%s) - %s", i.Name, i.ID, i.TagString())
}
