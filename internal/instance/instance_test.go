package instance

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	cloudtesting "github.com/rileyhilliard/ssmdeploy/internal/cloud/testing"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		id   string
		tags []Tag
		want string
	}{
		{
			name: "no tags falls back to id",
			id:   "i-0abc",
			tags: nil,
			want: "i-0abc",
		},
		{
			name: "no Name tag falls back to id",
			id:   "i-0abc",
			tags: []Tag{{Key: "env", Value: "prod"}},
			want: "i-0abc",
		},
		{
			name: "Name tag first",
			id:   "i-0abc",
			tags: []Tag{{Key: "Name", Value: "web-1"}, {Key: "env", Value: "prod"}},
			want: "web-1",
		},
		{
			name: "Name tag last",
			id:   "i-0abc",
			tags: []Tag{{Key: "env", Value: "prod"}, {Key: "team", Value: "core"}, {Key: "Name", Value: "web-1"}},
			want: "web-1",
		},
		{
			name: "key match is case-sensitive",
			id:   "i-0abc",
			tags: []Tag{{Key: "name", Value: "lower"}, {Key: "NAME", Value: "upper"}},
			want: "i-0abc",
		},
		{
			name: "duplicate Name tags use the first",
			id:   "i-0abc",
			tags: []Tag{{Key: "Name", Value: "first"}, {Key: "Name", Value: "second"}},
			want: "first",
		},
		{
			name: "empty Name value is still used",
			id:   "i-0abc",
			tags: []Tag{{Key: "Name", Value: ""}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.id, tt.tags))
		})
	}
}

func TestFromEC2(t *testing.T) {
	inst, err := FromEC2(cloudtesting.Instance("i-123", "env", "prod", "Name", "api"))
	require.NoError(t, err)

	assert.Equal(t, "i-123", inst.ID)
	assert.Equal(t, "api", inst.Name)
	assert.Equal(t, "running", inst.State)
	assert.Equal(t, []Tag{{Key: "env", Value: "prod"}, {Key: "Name", Value: "api"}}, inst.Tags)
}

func TestFromEC2MissingID(t *testing.T) {
	_, err := FromEC2(types.Instance{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMalformed))
}

func TestFlatten(t *testing.T) {
	mk := func(ids ...string) types.Reservation {
		insts := make([]types.Instance, len(ids))
		for i, id := range ids {
			insts[i] = cloudtesting.Instance(id)
		}
		return cloudtesting.Reservation(insts...)
	}

	tests := []struct {
		name         string
		reservations []types.Reservation
		want         []string
	}{
		{
			name:         "two empty groups",
			reservations: []types.Reservation{mk(), mk()},
			want:         []string{},
		},
		{
			name:         "single instance",
			reservations: []types.Reservation{mk("i-1")},
			want:         []string{"i-1"},
		},
		{
			name:         "groups of two and three",
			reservations: []types.Reservation{mk("i-1", "i-2"), mk("i-3", "i-4", "i-5")},
			want:         []string{"i-1", "i-2", "i-3", "i-4", "i-5"},
		},
		{
			name:         "empty group then two",
			reservations: []types.Reservation{mk(), mk("i-9", "i-8")},
			want:         []string{"i-9", "i-8"},
		},
		{
			name:         "no reservations",
			reservations: nil,
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Flatten(tt.reservations)
			require.NoError(t, err)
			require.NotNil(t, got)

			ids := make([]string, len(got))
			for i, inst := range got {
				ids[i] = inst.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFlattenMalformed(t *testing.T) {
	_, err := Flatten([]types.Reservation{cloudtesting.Reservation(cloudtesting.Instance("i-1"), types.Instance{})})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMalformed))
}

func TestLabel(t *testing.T) {
	inst := Instance{
		ID:   "i-0f00",
		Name: "worker",
		Tags: []Tag{{Key: "Name", Value: "worker"}, {Key: "env", Value: "staging"}},
	}

	assert.Equal(t, "[Name=worker, env=staging]", inst.TagString())
	assert.Equal(t, "worker (i-0f00) - [Name=worker, env=staging]", inst.Label())
}

func TestLabelNoTags(t *testing.T) {
	inst := Instance{ID: "i-1", Name: "i-1"}
	assert.Equal(t, "i-1 (i-1) - []", inst.Label())
}
