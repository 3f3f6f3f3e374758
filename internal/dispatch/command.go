package dispatch

import (
	"fmt"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
	"github.com/rileyhilliard/ssmdeploy/internal/config"
)

// maxCommentLen is the SSM limit for SendCommand comments.
const maxCommentLen = 100

// ScriptCommand is the command run by the deploy user:
// cd <dir> && bash <script>.
func ScriptCommand(cfg config.DeployConfig) string {
	return fmt.Sprintf("cd %s && bash %s",
		shellquote.Join(cfg.Dir),
		shellquote.Join(cfg.Script))
}

// BuildCommand wraps ScriptCommand so it runs as the unprivileged deploy user:
// sudo -u <user> bash -c '<script command>'.
// SSM runs RunShellScript documents as root, hence the sudo.
func BuildCommand(cfg config.DeployConfig) string {
	return shellquote.Join("sudo", "-u", cfg.User, "bash", "-c", ScriptCommand(cfg))
}

// comment is the human-readable note attached to the SSM command.
func comment(cfg config.DeployConfig) string {
	c := fmt.Sprintf("ssmdeploy: bash %s as %s", cfg.Script, cfg.User)
	if len(c) <= maxCommentLen {
		return c
	}
	// Cut on a rune boundary so the comment stays valid UTF-8.
	n := maxCommentLen
	for n > 0 && !utf8.RuneStart(c[n]) {
		n--
	}
	return c[:n]
}
