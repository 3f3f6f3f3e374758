package ui

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
)

// RegionPrompter asks for an AWS region with a huh input. Nil Input/Output
// fall back to the terminal.
type RegionPrompter struct {
	Input      io.Reader
	Output     io.Writer
	Accessible bool // plain line-based prompt, no TUI
}

// PromptRegion asks once and returns the answer as typed, like AWS_REGION.
// An empty answer comes back as "" so the caller can abort.
func (p *RegionPrompter) PromptRegion(ctx context.Context) (string, error) {
	var region string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Please enter the AWS region").
				Description("Set AWS_REGION or pass --region to skip this prompt").
				Placeholder("us-east-1").
				Value(&region),
		),
	).WithAccessible(p.Accessible)

	if p.Input != nil {
		form = form.WithInput(p.Input)
	}
	if p.Output != nil {
		form = form.WithOutput(p.Output)
	}

	if err := form.RunWithContext(ctx); err != nil {
		return "", formError(ctx, err, "Region prompt")
	}
	return region, nil
}

// Confirm asks a yes/no question. Declining returns false with no error.
func Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, formError(ctx, err, "Prompt")
	}
	return ok, nil
}

// formError maps huh's abort and context errors to CANCELLED.
func formError(ctx context.Context, err error, what string) error {
	if stderrors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
		return errors.NewCancelled(what)
	}
	return errors.WrapWithCode(err, errors.ErrConfig,
		"Failed to get user input",
		"Check terminal compatibility or pass the value as a flag")
}
