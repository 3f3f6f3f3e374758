package ui

import (
	"strings"
	"testing"

	"github.com/rileyhilliard/ssmdeploy/internal/instance"
	"github.com/stretchr/testify/assert"
)

func TestRenderSimpleTableEmpty(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "A", Width: 3}}, nil))
}

func TestRenderInstanceTable(t *testing.T) {
	instances := []instance.Instance{
		{
			ID:    "i-0aaa",
			Name:  "web-1",
			State: "running",
			Tags:  []instance.Tag{{Key: "Name", Value: "web-1"}, {Key: "env", Value: "prod"}},
		},
		{
			ID:    "i-0bbb",
			Name:  "i-0bbb",
			State: "stopped",
		},
	}

	out := RenderInstanceTable(instances)

	for _, want := range []string{"NAME", "INSTANCE ID", "STATE", "TAGS", "web-1", "i-0aaa", "running", "env=prod", "i-0bbb", "stopped"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "i-0aaa"), strings.Index(out, "i-0bbb"), "provider order is kept")
}
