// Package dispatch sends the deploy command through SSM Run Command and
// polls the invocation until it reaches a terminal status.
package dispatch

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rileyhilliard/ssmdeploy/internal/cloud"
	"github.com/rileyhilliard/ssmdeploy/internal/config"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/logger"
	"github.com/tilinna/clock"
)

// EventType identifies dispatcher progress events.
type EventType int

const (
	// EventSent fires once the command has been accepted by SSM.
	EventSent EventType = iota
	// EventPolled fires after every status fetch.
	EventPolled
)

// Event describes dispatcher progress.
type Event struct {
	Type       EventType
	CommandID  string
	InstanceID string
	Status     string
	Poll       int // 1-based poll number for EventPolled
}

// EventHandler receives dispatcher events.
type EventHandler func(Event)

// Dispatcher runs the configured deploy command on a single instance.
type Dispatcher struct {
	client  cloud.SSMAPI
	cfg     config.DeployConfig
	log     logger.Logger
	handler EventHandler
}

// New creates a dispatcher.
func New(client cloud.SSMAPI, cfg config.DeployConfig, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Dispatcher{client: client, cfg: cfg, log: log}
}

// SetEventHandler registers a callback for progress events.
func (d *Dispatcher) SetEventHandler(h EventHandler) {
	d.handler = h
}

func (d *Dispatcher) emit(e Event) {
	if d.handler != nil {
		d.handler(e)
	}
}

// Run sends the command to instanceID and waits for a terminal status.
func (d *Dispatcher) Run(ctx context.Context, instanceID string) (*Invocation, error) {
	commandID, err := d.Send(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return d.Wait(ctx, commandID, instanceID)
}

// Send submits the command. The instance id is not checked beforehand; an
// unknown id comes back as a NOT_FOUND error from SSM.
func (d *Dispatcher) Send(ctx context.Context, instanceID string) (string, error) {
	cmd := BuildCommand(d.cfg)
	d.log.Debug("sending %q to %s via %s", cmd, instanceID, d.cfg.Document)

	out, err := d.client.SendCommand(ctx, &ssm.SendCommandInput{
		InstanceIds:    []string{instanceID},
		DocumentName:   aws.String(d.cfg.Document),
		Parameters:     map[string][]string{"commands": {cmd}},
		TimeoutSeconds: aws.Int32(int32(d.cfg.Timeout / time.Second)),
		Comment:        aws.String(comment(d.cfg)),
	})
	if err != nil {
		return "", errors.Classify(err, "Couldn't send the command to "+instanceID)
	}

	if out == nil || out.Command == nil || aws.ToString(out.Command.CommandId) == "" {
		return "", errors.New(errors.ErrMalformed,
			"SSM accepted the command but returned no command id",
			"Check the SSM console for a command sent to "+instanceID)
	}

	commandID := aws.ToString(out.Command.CommandId)
	d.emit(Event{Type: EventSent, CommandID: commandID, InstanceID: instanceID})
	return commandID, nil
}

// Wait pauses for the initial delay so the invocation can register, then
// fetches its status every poll interval while it is Pending or InProgress.
// There is no client-side cap; SSM's own timeout ends a stuck command.
// Cancelling ctx stops the wait.
func (d *Dispatcher) Wait(ctx context.Context, commandID, instanceID string) (*Invocation, error) {
	if err := sleep(ctx, d.cfg.InitialDelay); err != nil {
		return nil, errors.Classify(err, "Stopped waiting for "+commandID)
	}

	poll := 0
	for {
		poll++
		inv, err := d.fetch(ctx, commandID, instanceID)
		if err != nil {
			return nil, err
		}
		d.log.Debug("poll %d: %s is %s", poll, commandID, inv.Status)
		d.emit(Event{Type: EventPolled, CommandID: commandID, InstanceID: instanceID, Status: inv.Status, Poll: poll})

		if !IsPending(inv.Status) {
			return inv, nil
		}

		if err := sleep(ctx, d.cfg.PollInterval); err != nil {
			return nil, errors.Classify(err, "Stopped waiting for "+commandID)
		}
	}
}

func (d *Dispatcher) fetch(ctx context.Context, commandID, instanceID string) (*Invocation, error) {
	out, err := d.client.GetCommandInvocation(ctx, &ssm.GetCommandInvocationInput{
		CommandId:  aws.String(commandID),
		InstanceId: aws.String(instanceID),
	})
	if err != nil {
		return nil, errors.Classify(err, "Couldn't get the status of command "+commandID)
	}
	if out == nil {
		return nil, errors.New(errors.ErrMalformed,
			"SSM returned an empty invocation for "+commandID,
			"Check the SSM console for the command status")
	}

	return &Invocation{
		CommandID:     commandID,
		InstanceID:    instanceID,
		Status:        string(out.Status),
		StatusDetails: aws.ToString(out.StatusDetails),
		ResponseCode:  out.ResponseCode,
		Stdout:        aws.ToString(out.StandardOutputContent),
		Stderr:        aws.ToString(out.StandardErrorContent),
	}, nil
}

// sleep blocks for d on the context's clock, returning early with ctx.Err()
// if ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(ctx, d):
		return nil
	}
}
