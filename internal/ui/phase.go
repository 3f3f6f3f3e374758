package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DividerWidth is the default width for divider lines.
const DividerWidth = 64

// PhaseDisplay renders the deploy workflow's steps, one line per step.
type PhaseDisplay struct {
	w io.Writer
}

// NewPhaseDisplay creates a phase display writing to w.
func NewPhaseDisplay(w io.Writer) *PhaseDisplay {
	return &PhaseDisplay{w: w}
}

// Writer returns the underlying writer.
func (pd *PhaseDisplay) Writer() io.Writer {
	return pd.w
}

// RenderSuccess renders a completed step.
// Shows: ● Listed 3 instances 0.4s
func (pd *PhaseDisplay) RenderSuccess(name string, duration time.Duration) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolComplete, ColorSuccess, name, formatDuration(duration)))
}

// RenderFailed renders a failed step.
// Shows: ✗ Listing instances 2.3s
func (pd *PhaseDisplay) RenderFailed(name string, duration time.Duration) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolFail, ColorError, name, formatDuration(duration)))
}

// RenderInfo renders a step with a muted detail instead of a timing.
// Shows: ● Region us-east-1 (from AWS_REGION)
func (pd *PhaseDisplay) RenderInfo(name, detail string) {
	line := FormatPhase(SymbolComplete, ColorInfo, name, "")
	if detail != "" {
		line += " " + lipgloss.NewStyle().Foreground(ColorMuted).Render("("+detail+")")
	}
	fmt.Fprintln(pd.w, line)
}

// RenderWarning renders a yellow warning line.
func (pd *PhaseDisplay) RenderWarning(msg string) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolWarning, ColorWarning, msg, ""))
}

// RenderSent renders the confirmation that SSM accepted the command.
// Shows: ✓ Command sent to i-0abc. Command ID: 1234-...
func (pd *PhaseDisplay) RenderSent(instanceID, commandID string) {
	style := lipgloss.NewStyle().Foreground(ColorSuccess)
	fmt.Fprintf(pd.w, "%s %s\n",
		style.Render(SymbolSuccess),
		style.Render(fmt.Sprintf("Command sent to %s. Command ID: %s", instanceID, commandID)),
	)
}

// CommandPrompt renders the command about to be executed.
// Shows: $ sudo -u ubuntu bash -c 'cd /srv/app && bash deploy.sh'
func (pd *PhaseDisplay) CommandPrompt(cmd string) {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(pd.w, "%s %s\n", style.Render("$"), cmd)
}

// Divider renders a horizontal line between progress and command output.
func (pd *PhaseDisplay) Divider() {
	fmt.Fprintf(pd.w, "\n%s\n\n", FormatDivider(DividerWidth))
}

// FormatPhase returns a formatted phase line as a string.
func FormatPhase(symbol string, symbolColor lipgloss.Color, name string, timing string) string {
	symbolStyle := lipgloss.NewStyle().Foreground(symbolColor)
	timingStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	if timing == "" {
		return fmt.Sprintf("%s %s", symbolStyle.Render(symbol), name)
	}
	return fmt.Sprintf("%s %s %s", symbolStyle.Render(symbol), name, timingStyle.Render(timing))
}

// FormatDivider returns a divider line as a string.
func FormatDivider(width int) string {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	return style.Render(strings.Repeat("━", width))
}
