package dispatch

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DeployConfig
	}{
		{
			name: "defaults",
			cfg:  config.DefaultConfig().Deploy,
		},
		{
			name: "paths with spaces",
			cfg:  config.DeployConfig{User: "deploy", Dir: "/srv/my app", Script: "run it.sh"},
		},
		{
			name: "shell metacharacters",
			cfg:  config.DeployConfig{User: "deploy", Dir: "/srv/$HOME;rm", Script: "it's.sh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := shellquote.Split(BuildCommand(tt.cfg))
			require.NoError(t, err)
			require.Len(t, args, 6)
			assert.Equal(t, []string{"sudo", "-u", tt.cfg.User, "bash", "-c"}, args[:5])

			inner, err := shellquote.Split(args[5])
			require.NoError(t, err)
			assert.Equal(t, []string{"cd", tt.cfg.Dir, "&&", "bash", tt.cfg.Script}, inner)
		})
	}
}

func TestBuildCommandDefaults(t *testing.T) {
	assert.Equal(t,
		"cd /home/ubuntu/Github/networth && bash deploy.sh",
		ScriptCommand(config.DefaultConfig().Deploy))
}

func TestComment(t *testing.T) {
	cfg := config.DefaultConfig().Deploy
	assert.Equal(t, "ssmdeploy: bash deploy.sh as ubuntu", comment(cfg))

	cfg.Script = strings.Repeat("x", 200)
	assert.Len(t, comment(cfg), maxCommentLen)
}

func TestCommentKeepsMultibyteRunesWhole(t *testing.T) {
	cfg := config.DefaultConfig().Deploy
	cfg.Script = "x" + strings.Repeat("é", 60) + ".sh"

	c := comment(cfg)
	assert.True(t, utf8.ValidString(c), "comment %q is not valid UTF-8", c)
	assert.Len(t, c, maxCommentLen-1, "the last é would straddle the limit, so it is dropped")
	assert.True(t, strings.HasSuffix(c, "é"))
}
