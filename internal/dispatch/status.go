package dispatch

import (
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// Invocation is the client-side view of one SSM command on one instance.
// It is only ever filled from provider responses.
type Invocation struct {
	CommandID     string `json:"command_id"`
	InstanceID    string `json:"instance_id"`
	Status        string `json:"status"`
	StatusDetails string `json:"status_details,omitempty"`
	ResponseCode  int32  `json:"response_code"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
}

// IsPending reports whether status keeps the poll loop going. Only Pending
// and InProgress do; every other value, including ones SSM adds later, ends it.
func IsPending(status string) bool {
	switch ssmtypes.CommandInvocationStatus(status) {
	case ssmtypes.CommandInvocationStatusPending, ssmtypes.CommandInvocationStatusInProgress:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the invocation finished with status Success.
func (i *Invocation) Succeeded() bool {
	return ssmtypes.CommandInvocationStatus(i.Status) == ssmtypes.CommandInvocationStatusSuccess
}
