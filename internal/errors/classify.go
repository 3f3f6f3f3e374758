package errors

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// API error codes returned by EC2 and SSM, grouped by category.
var (
	authErrorCodes = map[string]bool{
		"AuthFailure":                 true,
		"UnauthorizedOperation":       true,
		"AccessDeniedException":       true,
		"AccessDenied":                true,
		"ExpiredToken":                true,
		"ExpiredTokenException":       true,
		"InvalidClientTokenId":        true,
		"UnrecognizedClientException": true,
		"SignatureDoesNotMatch":       true,
		"OptInRequired":               true,
	}

	notFoundErrorCodes = map[string]bool{
		"InvalidInstanceId":           true,
		"InvalidInstanceID.NotFound":  true,
		"InvalidInstanceID.Malformed": true,
		"InvocationDoesNotExist":      true,
		"InvalidCommandId":            true,
		"InvalidDocument":             true,
	}
)

var suggestions = map[string]string{
	ErrAuth:      "Check your AWS credentials (aws sts get-caller-identity) and that they allow ec2:DescribeInstances and ssm:SendCommand.",
	ErrNetwork:   "Check your network connection and that the region name is correct.",
	ErrNotFound:  "Check that the instance exists in this region and is registered with SSM.",
	ErrMalformed: "The AWS response could not be understood. Try again, or run with --verbose for details.",
	ErrProvider:  "Run with --verbose for details.",
}

// Classify wraps an AWS SDK error in a structured Error whose code reflects
// the failure category. Errors that are already structured are returned as-is.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}

	var sdErr *Error
	if errors.As(err, &sdErr) {
		return err
	}

	code := categorize(err)
	if code == ErrCancelled {
		return WrapWithCode(err, ErrCancelled, message, "")
	}
	return WrapWithCode(err, code, message, suggestions[code])
}

func categorize(err error) string {
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch {
		case authErrorCodes[apiErr.ErrorCode()]:
			return ErrAuth
		case notFoundErrorCodes[apiErr.ErrorCode()]:
			return ErrNotFound
		default:
			return ErrProvider
		}
	}

	var deserErr *smithy.DeserializationError
	if errors.As(err, &deserErr) {
		return ErrMalformed
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return ErrNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetwork
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrNetwork
	}

	return ErrProvider
}
