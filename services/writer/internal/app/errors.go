package app

import (
	"errors"

	"mailcraft/pkg/ai"
)

var (
	// ErrEmptyThoughts is returned for blank thoughts; no call is made and nothing is shown.
	ErrEmptyThoughts = errors.New("thoughts are required")
	ErrUnknownTone   = errors.New("unknown tone")
)

// Failure kinds reported to the form alongside the user-facing message.
const (
	KindServiceError      = "service_error"
	KindMalformedResponse = "malformed_response"
	KindTransportFault    = "transport_fault"
)

// ErrorKind classifies a generation failure.
func ErrorKind(err error) string {
	var svcErr *ai.ServiceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &svcErr):
		return KindServiceError
	case errors.Is(err, ai.ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindTransportFault
	}
}
