// Package ui provides the terminal pieces of ssmdeploy: the instance picker,
// the region prompt, spinners, phase lines, and the instance table.
//
// # Components Overview
//
//	InstancePicker - Filterable Bubble Tea list for choosing one EC2 instance
//	RegionPrompter - Huh input asking for a region when none is configured
//	Spinner        - Animated indicator while the command runs remotely
//	PhaseDisplay   - One line per workflow step (region, listing, send)
//	Table          - Fixed-width instance listing for 'ssmdeploy instances'
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess (green)  - Success status, completed steps
//	ColorError   (red)    - Failed status, stderr
//	ColorWarning (yellow) - Pending and timed-out statuses, warnings
//	ColorInfo    (cyan)   - In-progress status, informational lines
//	ColorMuted   (gray)   - Timing and secondary text
//
// StatusColor maps an SSM invocation status to one of these. Use
// DisableColors() for monochrome output (--no-color).
//
// # Picker Usage
//
//	inst, err := ui.PickInstance(ctx, instances)
//	if errors.IsCode(err, errors.ErrCancelled) {
//		// operator pressed q, esc, or ctrl+c
//	}
//
// # Spinner Usage
//
//	s := ui.NewSpinner("Running deploy.sh", os.Stdout)
//	s.Start()
//	s.SetDetail("InProgress")
//	s.Success() // or s.Fail() or s.Skip()
package ui
