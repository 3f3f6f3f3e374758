package dispatch

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/ssmdeploy/internal/ui"
)

// WriteReport prints the final status, then stdout, then stderr when there
// is any. Output is printed as returned by SSM, which truncates long output.
func WriteReport(w io.Writer, inv *Invocation) {
	label := lipgloss.NewStyle().Bold(true)
	status := lipgloss.NewStyle().Foreground(ui.StatusColor(inv.Status))

	fmt.Fprintf(w, "%s %s\n", label.Render("Command Status:"), status.Render(inv.Status))
	fmt.Fprintf(w, "%s\n%s\n", label.Render("Command Output:"), inv.Stdout)

	if inv.Stderr != "" {
		errLabel := label.Foreground(ui.ColorError)
		fmt.Fprintf(w, "%s\n%s\n", errLabel.Render("Command Error:"), inv.Stderr)
	}
}
